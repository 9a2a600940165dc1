package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"chocan/internal/core"
	"chocan/pkg/domain"
)

func parseID(s string) (uint32, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return uint32(id), nil
}

type personOps struct {
	add       func(context.Context, domain.Person) error
	remove    func(context.Context, uint32) error
	suspend   func(context.Context, uint32) error
	reinstate func(context.Context, uint32) error
	validate  func(context.Context, uint32) (bool, error)
}

func opsFor(svc *core.Service, role string) personOps {
	if role == "provider" {
		return personOps{svc.AddProvider, svc.RemoveProvider, svc.SuspendProvider, svc.ReinstateProvider, svc.ValidateProvider}
	}
	return personOps{svc.AddMember, svc.RemoveMember, svc.SuspendMember, svc.ReinstateMember, svc.ValidateMember}
}

// personCmd builds the member or provider command tree.
func personCmd(a *app, role string) *cobra.Command {
	cmd := &cobra.Command{Use: role, Short: "Maintain " + role + " records"}

	var (
		id                                uint32
		name, address, city, state, email string
		zip                               uint32
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add an active " + role,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			loc, err := domain.NewLocation(address, city, state, zip)
			if err != nil {
				return err
			}
			p, err := domain.NewPerson(name, id, loc, email)
			if err != nil {
				return err
			}
			if err := opsFor(a.svc, role).add(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d added\n", role, p.ID)
			return nil
		},
	}
	add.Flags().Uint32Var(&id, "id", 0, "9-digit number")
	add.Flags().StringVar(&name, "name", "", "name (up to 25 characters)")
	add.Flags().StringVar(&address, "address", "", "street address (up to 25 characters)")
	add.Flags().StringVar(&city, "city", "", "city (up to 14 characters)")
	add.Flags().StringVar(&state, "state", "", "two-letter state")
	add.Flags().Uint32Var(&zip, "zip", 0, "5-digit zip code")
	add.Flags().StringVar(&email, "email", "", "report address")
	for _, f := range []string{"id", "name", "address", "city", "state", "zip", "email"} {
		_ = add.MarkFlagRequired(f)
	}

	byID := func(use, short, done string, fn func(personOps) func(context.Context, uint32) error) *cobra.Command {
		return &cobra.Command{
			Use:   use + " <id>",
			Short: short,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				if err := fn(opsFor(a.svc, role))(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n", role, id, done)
				return nil
			},
		}
	}
	validate := &cobra.Command{
		Use:   "validate <id>",
		Short: "Report whether the " + role + " is on file and active",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ok, err := opsFor(a.svc, role).validate(cmd.Context(), id)
			if err != nil {
				return err
			}
			status := "invalid"
			if ok {
				status = "valid"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %d %s\n", role, id, status)
			return nil
		},
	}

	cmd.AddCommand(
		add,
		byID("remove", "Delete the "+role, "removed", func(o personOps) func(context.Context, uint32) error { return o.remove }),
		byID("suspend", "Mark the "+role+" inactive", "suspended", func(o personOps) func(context.Context, uint32) error { return o.suspend }),
		byID("reinstate", "Mark the "+role+" active", "reinstated", func(o personOps) func(context.Context, uint32) error { return o.reinstate }),
		validate,
	)
	return cmd
}

func serviceCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "service", Short: "Maintain the service directory"}
	var (
		id   uint32
		name string
		fee  float64
	)
	add := &cobra.Command{
		Use:   "add",
		Short: "Add a service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := a.svc.AddService(cmd.Context(), id, name, fee); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "service %d added\n", id)
			return nil
		},
	}
	add.Flags().Uint32Var(&id, "id", 0, "6-digit service code")
	add.Flags().StringVar(&name, "name", "", "service name")
	add.Flags().Float64Var(&fee, "fee", 0, "fee")
	for _, f := range []string{"id", "name", "fee"} {
		_ = add.MarkFlagRequired(f)
	}
	list := &cobra.Command{
		Use:   "list",
		Short: "Print the directory ordered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries, err := a.svc.ListServices(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s, ID: %d, Fee: %s\n", e.Name, e.ID, strconv.FormatFloat(e.Fee, 'f', -1, 64))
			}
			return nil
		},
	}
	cmd.AddCommand(add, list)
	return cmd
}

func consultationCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "consultation", Short: "Record consultations"}
	var req core.ConsultationRequest
	add := &cobra.Command{
		Use:   "add",
		Short: "Record a consultation for an active member and provider",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.svc.RecordConsultation(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "consultation recorded at %s\n", c.CapturedAt)
			return nil
		},
	}
	add.Flags().StringVar(&req.ServiceDate, "date", "", "date of service, MM-DD-YYYY")
	add.Flags().Uint32Var(&req.ProviderID, "provider", 0, "provider number")
	add.Flags().Uint32Var(&req.MemberID, "member", 0, "member number")
	add.Flags().Uint32Var(&req.ServiceCode, "service", 0, "service code")
	add.Flags().StringVar(&req.Comments, "comments", "", "comments (under 100 characters)")
	for _, f := range []string{"date", "provider", "member", "service"} {
		_ = add.MarkFlagRequired(f)
	}
	cmd.AddCommand(add)
	return cmd
}
