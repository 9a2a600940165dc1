package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"chocan/internal/core"
	"chocan/pkg/domain"
)

// seedCmd loads the demo data set: one service, four members, two
// providers and six consultations dated yesterday. Records that already
// exist are left alone.
func seedCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load demo records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			loc, err := domain.NewLocation("1234 Main st", "Portland", "OR", 56789)
			if err != nil {
				return err
			}
			person := func(name string, id uint32) (domain.Person, error) {
				return domain.NewPerson(name, id, loc, name+"@pdx.edu")
			}
			var added int
			note := func(err error) error {
				if err == nil {
					added++
					return nil
				}
				// Duplicates from an earlier seed are expected.
				if errors.Is(err, domain.ErrConstraint) {
					a.log.Debug().Err(err).Msg("seed record skipped")
					return nil
				}
				return err
			}

			if err := note(a.svc.AddService(ctx, 123456, "ServiceName123456", 99.99)); err != nil {
				return err
			}
			for i := uint32(1); i <= 4; i++ {
				p, err := person(fmt.Sprintf("MemberName%d", i), i)
				if err != nil {
					return err
				}
				if err := note(a.svc.AddMember(ctx, p)); err != nil {
					return err
				}
			}
			for i := uint32(1); i <= 2; i++ {
				p, err := person(fmt.Sprintf("ProviderName%d", i), i)
				if err != nil {
					return err
				}
				if err := note(a.svc.AddProvider(ctx, p)); err != nil {
					return err
				}
			}
			yesterday := domain.FormatServiceDate(time.Now().AddDate(0, 0, -1))
			for _, member := range []uint32{1, 2, 2, 3, 3, 3} {
				if _, err := a.svc.RecordConsultation(ctx, core.ConsultationRequest{
					ServiceDate: yesterday,
					ProviderID:  1,
					MemberID:    member,
					ServiceCode: 123456,
					Comments:    "This is a comment created by the demo seed",
				}); err != nil {
					return err
				}
				added++
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", added)
			return nil
		},
	}
}
