package report

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"chocan/pkg/domain"
)

// ErrNoSink is returned by NewEngine when no sink is supplied.
var ErrNoSink = errors.New("report sink is required")

// Engine scans the consultation log and delivers one document per addressee.
type Engine struct {
	src  domain.ReportSource
	sink Sink
	opts engineOptions
}

// NewEngine wires an engine to its record source and sink.
func NewEngine(src domain.ReportSource, sink Sink, opts ...Option) (*Engine, error) {
	if src == nil {
		return nil, errors.New("report source is required")
	}
	if sink == nil {
		return nil, ErrNoSink
	}
	o := defaultEngineOptions()
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return &Engine{src: src, sink: sink, opts: o}, nil
}

// resolved is a consultation with its references loaded.
type resolved struct {
	c        domain.Consultation
	date     time.Time
	member   domain.Person
	provider domain.Person
	service  domain.ServiceEntry
}

type document struct {
	id   uint32
	name string
	to   string
	subj string
	body string
}

// MemberReports delivers one document per member with recent consultations.
func (e *Engine) MemberReports(ctx context.Context) (Summary, error) {
	return e.run(ctx, "member_reports", CategoryMember, func(ctx context.Context, sum *Summary) ([]document, error) {
		items, err := e.recent(ctx, sum)
		if err != nil {
			return nil, err
		}
		groups := group(items, func(it resolved) uint32 { return it.c.MemberID })
		docs := make([]document, 0, len(groups))
		for _, g := range groups {
			m := g[0].member
			var b strings.Builder
			writePersonHeader(&b, "Member", m)
			for _, it := range g {
				writeMemberItem(&b, it)
			}
			docs = append(docs, document{
				id: m.ID, name: m.Name, to: m.Email,
				subj: "Member Report for " + m.Name,
				body: b.String(),
			})
		}
		return docs, nil
	})
}

// ProviderReports delivers one document per provider with recent
// consultations, optionally closed by a totals footer.
func (e *Engine) ProviderReports(ctx context.Context) (Summary, error) {
	return e.run(ctx, "provider_reports", CategoryProvider, func(ctx context.Context, sum *Summary) ([]document, error) {
		items, err := e.recent(ctx, sum)
		if err != nil {
			return nil, err
		}
		groups := group(items, func(it resolved) uint32 { return it.c.ProviderID })
		docs := make([]document, 0, len(groups))
		for _, g := range groups {
			p := g[0].provider
			var b strings.Builder
			writePersonHeader(&b, "Provider", p)
			var total float64
			for _, it := range g {
				writeProviderItem(&b, it)
				total += it.service.Fee
			}
			if e.opts.providerTotals {
				writeProviderFooter(&b, len(g), total)
			}
			docs = append(docs, document{
				id: p.ID, name: p.Name, to: p.Email,
				subj: "Provider Report for " + p.Name,
				body: b.String(),
			})
		}
		return docs, nil
	})
}

// ManagerReport delivers every consultation, in the order they were recorded,
// to the manager. It is sent even when the log is empty.
func (e *Engine) ManagerReport(ctx context.Context) (Summary, error) {
	return e.run(ctx, "manager_report", CategoryManager, func(ctx context.Context, sum *Summary) ([]document, error) {
		list, err := e.src.ListConsultations(ctx)
		if err != nil {
			return nil, fmt.Errorf("list consultations: %w", err)
		}
		sum.Scanned = len(list)
		var b strings.Builder
		for _, c := range list {
			writeManagerItem(&b, c)
		}
		return []document{{
			name: e.opts.managerName, to: e.opts.managerAddress,
			subj: "Manager report", body: b.String(),
		}}, nil
	})
}

// ProviderDirectory delivers the service directory, ordered by name, to addr.
func (e *Engine) ProviderDirectory(ctx context.Context, addr string) (Summary, error) {
	return e.run(ctx, "provider_directory", CategoryDirectory, func(ctx context.Context, sum *Summary) ([]document, error) {
		if strings.TrimSpace(addr) == "" {
			return nil, fmt.Errorf("directory recipient: %w", domain.ErrEmptyInput)
		}
		entries, err := e.src.ListServices(ctx)
		if err != nil {
			return nil, fmt.Errorf("list services: %w", err)
		}
		sum.Scanned = len(entries)
		var b strings.Builder
		for _, s := range entries {
			writeDirectoryLine(&b, s)
		}
		return []document{{
			name: DefaultDirectoryName, to: addr,
			subj: "Provider Directory", body: b.String(),
		}}, nil
	})
}

// RunAccounting runs the weekly member, provider and manager reports in turn.
// A run that fails to resolve still lets the remaining runs proceed.
func (e *Engine) RunAccounting(ctx context.Context) ([]Summary, error) {
	runs := []func(context.Context) (Summary, error){e.MemberReports, e.ProviderReports, e.ManagerReport}
	sums := make([]Summary, 0, len(runs))
	var errs []error
	for _, fn := range runs {
		sum, err := fn(ctx)
		sums = append(sums, sum)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return sums, errors.Join(errs...)
}

// recent loads consultations inside the recency window, sorted by service
// date, and resolves their references under the configured policy. Nothing
// is delivered until every record has been resolved.
func (e *Engine) recent(ctx context.Context, sum *Summary) ([]resolved, error) {
	list, err := e.src.ListConsultations(ctx)
	if err != nil {
		return nil, fmt.Errorf("list consultations: %w", err)
	}
	sum.Scanned = len(list)

	now := e.opts.clock.Now().In(e.opts.location)
	cutoff := time.Date(now.Year(), now.Month(), now.Day()-e.opts.recencyDays, 0, 0, 0, 0, e.opts.location)

	items := make([]resolved, 0, len(list))
	for _, c := range list {
		date, err := domain.ParseServiceDate(c.ServiceDate, e.opts.location)
		if err != nil {
			if err := e.skip(sum, c, err); err != nil {
				return nil, err
			}
			continue
		}
		if date.Before(cutoff) {
			sum.Stale++
			continue
		}
		items = append(items, resolved{c: c, date: date})
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].date.Before(items[j].date) })

	kept := items[:0]
	for _, it := range items {
		if err := e.resolve(ctx, &it); err != nil {
			if err := e.skip(sum, it.c, err); err != nil {
				return nil, err
			}
			continue
		}
		kept = append(kept, it)
	}
	return kept, nil
}

func (e *Engine) resolve(ctx context.Context, it *resolved) error {
	var err error
	if it.member, err = e.src.GetMember(ctx, it.c.MemberID); err != nil {
		return fmt.Errorf("member %d: %w", it.c.MemberID, err)
	}
	if it.provider, err = e.src.GetProvider(ctx, it.c.ProviderID); err != nil {
		return fmt.Errorf("provider %d: %w", it.c.ProviderID, err)
	}
	if it.service, err = e.src.GetService(ctx, it.c.ServiceCode); err != nil {
		return fmt.Errorf("service %d: %w", it.c.ServiceCode, err)
	}
	return nil
}

// skip applies the missing-reference policy. It returns the error to abort
// with under FailFast and nil when the record was skipped.
func (e *Engine) skip(sum *Summary, c domain.Consultation, err error) error {
	if e.opts.policy == FailFast {
		return fmt.Errorf("consultation %s provider %d member %d: %w", c.ServiceDate, c.ProviderID, c.MemberID, err)
	}
	e.opts.logger.Warn("report skipped consultation",
		"service_date", c.ServiceDate, "provider_id", c.ProviderID, "member_id", c.MemberID, "error", err)
	sum.Skipped = append(sum.Skipped, Skipped{Consultation: c, Err: err})
	return nil
}

// group buckets items by key and returns the buckets in ascending key order,
// each keeping the order of items.
func group(items []resolved, key func(resolved) uint32) [][]resolved {
	buckets := make(map[uint32][]resolved)
	var ids []uint32
	for _, it := range items {
		k := key(it)
		if _, ok := buckets[k]; !ok {
			ids = append(ids, k)
		}
		buckets[k] = append(buckets[k], it)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([][]resolved, 0, len(ids))
	for _, id := range ids {
		out = append(out, buckets[id])
	}
	return out
}

func (e *Engine) run(ctx context.Context, op string, cat Category, build func(context.Context, *Summary) ([]document, error)) (Summary, error) {
	ctx, span := e.opts.tracer.Start(ctx, op)
	start := time.Now()
	sum := Summary{Category: cat}

	docs, err := build(ctx, &sum)
	if err == nil {
		err = e.deliver(ctx, &sum, cat, docs)
	}

	elapsed := time.Since(start)
	span.End(err)
	e.opts.metrics.Observe(ctx, op, err == nil, elapsed)
	if err != nil {
		e.opts.logger.Error("report run failed", "operation", op, "delivered", len(sum.Delivered), "failed", len(sum.Failed), "error", err)
		return sum, err
	}
	e.opts.logger.Info("report run completed", "operation", op, "scanned", sum.Scanned, "stale", sum.Stale,
		"skipped", len(sum.Skipped), "delivered", len(sum.Delivered), "duration", elapsed)
	return sum, nil
}

// deliver hands every document to the sink. A rejected document is recorded
// and the next one is still attempted.
func (e *Engine) deliver(ctx context.Context, sum *Summary, cat Category, docs []document) error {
	generated := e.opts.clock.Now()
	var errs []error
	for _, d := range docs {
		r := Report{
			Category:      cat,
			To:            d.to,
			From:          e.opts.sender,
			Subject:       d.subj,
			Body:          d.body,
			RecipientName: d.name,
			RecipientID:   d.id,
			GeneratedAt:   generated,
		}
		start := time.Now()
		err := e.sink.Deliver(ctx, r)
		e.opts.metrics.Observe(ctx, "deliver_"+string(cat), err == nil, time.Since(start))
		if err != nil {
			de := &DeliveryError{Category: cat, To: d.to, RecipientID: d.id, Err: err}
			e.opts.logger.Warn("report delivery failed", "category", string(cat), "to", d.to, "id", d.id, "error", err)
			sum.Failed = append(sum.Failed, de)
			errs = append(errs, de)
			continue
		}
		sum.Delivered = append(sum.Delivered, Delivered{To: d.to, RecipientID: d.id, Subject: d.subj})
	}
	return errors.Join(errs...)
}
