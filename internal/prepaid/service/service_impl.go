package service

import (
	"context"
	"strings"

	"github.com/smallbiznis/prepaid/internal/clock"
	"github.com/smallbiznis/prepaid/internal/config"
	obslogger "github.com/smallbiznis/prepaid/internal/observability/logger"
	"github.com/smallbiznis/prepaid/internal/observability/metrics"
	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
	"github.com/smallbiznis/prepaid/internal/prepaid/history"
	"github.com/smallbiznis/prepaid/internal/prepaid/ledger"
	"github.com/smallbiznis/prepaid/internal/prepaid/reconcile"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// OverviewRequest carries the caller's contract snapshot for one customer.
type OverviewRequest struct {
	CustomerID string
	ContractID string
	Contracts  []domain.Contract
}

// Overview is everything the presentation layer needs for the prepaid panel.
type Overview struct {
	CustomerID                string                   `json:"customer_id"`
	Balance                   domain.ReconciledBalance `json:"balance"`
	ContractsWithPrepaidCount int                      `json:"contracts_with_prepaid_count"`
	ContractsWithPrepaid      []domain.Contract        `json:"contracts_with_prepaid"`
	Entries                   []ledger.Entry           `json:"entries"`
	Categories                map[ledger.Category]int  `json:"categories"`
	Summary                   domain.Summary           `json:"summary"`
	Loading                   bool                     `json:"loading"`
	// Degraded is set when the history could not be fetched and the totals
	// reflect the contract cache alone.
	Degraded bool `json:"degraded"`
}

// History is a normalized ledger for one scope.
type History struct {
	Query      domain.HistoryQuery     `json:"-"`
	Entries    []ledger.Entry          `json:"entries"`
	Categories map[ledger.Category]int `json:"categories"`
	Summary    domain.Summary          `json:"summary"`
	Count      int                     `json:"count"`
	Degraded   bool                    `json:"degraded"`
}

type Params struct {
	fx.In

	Fetcher    domain.RecordFetcher
	Config     *config.PrepaidConfigHolder `optional:"true"`
	Metrics    *metrics.Metrics            `optional:"true"`
	Clock      clock.Clock                 `optional:"true"`
	Reconciler reconcile.Reconciler        `optional:"true"`
	Log        *zap.Logger
}

type Service struct {
	fetcher    domain.RecordFetcher
	cfg        *config.PrepaidConfigHolder
	metrics    *metrics.Metrics
	clock      clock.Clock
	reconciler reconcile.Reconciler
	log        *zap.Logger
}

func New(p Params) *Service {
	log := p.Log
	if log == nil {
		log = zap.NewNop()
	}
	clk := p.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	return &Service{
		fetcher:    p.Fetcher,
		cfg:        p.Config,
		metrics:    p.Metrics,
		clock:      clk,
		reconciler: p.Reconciler,
		log:        log.Named("prepaid.service"),
	}
}

// Overview loads the customer's history and reconciles it against the
// supplied contracts. A failed fetch degrades to contract totals; it is never
// returned as an error.
func (s *Service) Overview(ctx context.Context, req OverviewRequest) (Overview, error) {
	query := domain.HistoryQuery{
		CustomerID: strings.TrimSpace(req.CustomerID),
		ContractID: strings.TrimSpace(req.ContractID),
	}

	snapshot := s.load(ctx, query)
	result := s.reconciler.Reconcile(req.Contracts, snapshot.Records)
	entries := s.normalize(ctx, snapshot.Records)

	s.observeReconciliation(ctx, query, result.Balance)

	return Overview{
		CustomerID:                query.CustomerID,
		Balance:                   result.Balance,
		ContractsWithPrepaidCount: len(result.ContractsWithPrepaid),
		ContractsWithPrepaid:      result.ContractsWithPrepaid,
		Entries:                   entries,
		Categories:                ledger.CountByCategory(entries),
		Summary:                   ledger.Summarize(snapshot.Records),
		Loading:                   snapshot.Loading,
		Degraded:                  snapshot.Failed,
	}, nil
}

// CustomerHistory returns the normalized ledger for a customer, optionally
// scoped to one contract. A blank customer id yields an empty ledger without
// a fetch.
func (s *Service) CustomerHistory(ctx context.Context, customerID, contractID string) (History, error) {
	query := domain.HistoryQuery{
		CustomerID: strings.TrimSpace(customerID),
		ContractID: strings.TrimSpace(contractID),
	}

	snapshot := s.load(ctx, query)
	entries := s.normalize(ctx, snapshot.Records)
	return History{
		Query:      query,
		Entries:    entries,
		Categories: ledger.CountByCategory(entries),
		Summary:    ledger.Summarize(snapshot.Records),
		Count:      countOf(snapshot.Count, snapshot.Records),
		Degraded:   snapshot.Failed,
	}, nil
}

// ContractHistory returns the normalized ledger for a single contract.
func (s *Service) ContractHistory(ctx context.Context, contractID string) (History, error) {
	query := domain.HistoryQuery{ContractID: strings.TrimSpace(contractID)}
	if query.ContractID == "" {
		return History{}, domain.ErrInvalidContract
	}

	start := s.clock.Now()
	resp, err := s.fetcher.FetchByContract(ctx, query.ContractID)
	elapsed := s.clock.Now().Sub(start)

	records := []domain.PrepaidRecord{}
	degraded := false
	if err != nil {
		degraded = true
		s.metrics.RecordHistoryFetch(ctx, "error", elapsed)
		obslogger.WithContext(ctx, s.log).Warn("failed to load contract prepaid history",
			zap.String("contract_id", query.ContractID),
			zap.Error(err),
		)
	} else {
		s.metrics.RecordHistoryFetch(ctx, "ok", elapsed)
		if resp.Data != nil {
			records = resp.Data
		}
	}

	entries := s.normalize(ctx, records)
	return History{
		Query:      query,
		Entries:    entries,
		Categories: ledger.CountByCategory(entries),
		Summary:    ledger.Summarize(records),
		Count:      countOf(resp.Count, records),
		Degraded:   degraded,
	}, nil
}

// load runs one request-scoped Loader. Callers that keep a Loader across
// requests get the stale-response guard; here each request is its own scope.
func (s *Service) load(ctx context.Context, query domain.HistoryQuery) history.Snapshot {
	loader := history.NewLoader(s.fetcher, s.metrics, s.clock, obslogger.WithContext(ctx, s.log))
	snapshot, _ := loader.Load(ctx, query)
	return snapshot
}

func (s *Service) normalize(ctx context.Context, records []domain.PrepaidRecord) []ledger.Entry {
	entries := ledger.Normalize(records, labeler{holder: s.cfg})

	fallback := 0
	for _, entry := range entries {
		if entry.Unspecified {
			fallback++
		}
	}
	s.metrics.RecordFallbackTags(ctx, fallback)
	return entries
}

func (s *Service) observeReconciliation(ctx context.Context, query domain.HistoryQuery, balance domain.ReconciledBalance) {
	source := "equal"
	switch {
	case balance.TotalFromRecords > balance.TotalFromContracts:
		source = "records"
	case balance.TotalFromContracts > balance.TotalFromRecords:
		source = "contracts"
	}
	s.metrics.RecordReconciliation(ctx, source, balance.Discrepancy)

	threshold := s.cfg.Get().DiscrepancyWarnThreshold
	if threshold > 0 && balance.Discrepancy > threshold {
		obslogger.WithContext(ctx, s.log).Warn("prepaid sources disagree",
			zap.String("customer_id", query.CustomerID),
			zap.Float64("total_from_records", balance.TotalFromRecords),
			zap.Float64("total_from_contracts", balance.TotalFromContracts),
			zap.Float64("discrepancy", balance.Discrepancy),
		)
	}
}

func countOf(reported int, records []domain.PrepaidRecord) int {
	if reported > 0 {
		return reported
	}
	return len(records)
}

// labeler reads overrides from the hot-reloaded config on every call.
type labeler struct {
	holder *config.PrepaidConfigHolder
}

func (l labeler) Label(c ledger.Category) string {
	return ledger.LabelMap{c: l.holder.Label(string(c))}.Label(c)
}
