// Package history owns the loading state of a customer's prepaid history and
// guards it against late responses from superseded requests.
package history

import (
	"context"
	"strings"
	"sync"

	"github.com/smallbiznis/prepaid/internal/clock"
	"github.com/smallbiznis/prepaid/internal/observability/metrics"
	"github.com/smallbiznis/prepaid/internal/prepaid/domain"
	"go.uber.org/zap"
)

const (
	outcomeOK      = "ok"
	outcomeError   = "error"
	outcomeSkipped = "skipped"
)

// Snapshot is the state handed to the presentation layer.
type Snapshot struct {
	Query      domain.HistoryQuery
	Records    []domain.PrepaidRecord
	Count      int
	Loading    bool
	Failed     bool
	Generation uint64
}

// Sink receives every state change. Publish is called with the loader's lock
// held, so implementations must not call back into the Loader.
type Sink interface {
	Publish(Snapshot)
}

// Loader fetches history for the current query. Each Load starts a new
// generation; a completion whose generation is no longer current is dropped.
//
// The generation guard and Subscribe only matter for a Loader that outlives
// a single Load, such as one held per connected viewer. The HTTP service
// builds one Loader per request, so there every Load is current.
type Loader struct {
	fetcher domain.RecordFetcher
	metrics *metrics.Metrics
	clock   clock.Clock
	log     *zap.Logger

	mu         sync.Mutex
	generation uint64
	current    Snapshot
	sinks      []Sink
}

func NewLoader(fetcher domain.RecordFetcher, m *metrics.Metrics, clk clock.Clock, log *zap.Logger) *Loader {
	if clk == nil {
		clk = clock.SystemClock{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{
		fetcher: fetcher,
		metrics: m,
		clock:   clk,
		log:     log.Named("prepaid.history"),
	}
}

// Subscribe registers a sink. It does not replay the current snapshot.
func (l *Loader) Subscribe(s Sink) {
	if s == nil {
		return
	}
	l.mu.Lock()
	l.sinks = append(l.sinks, s)
	l.mu.Unlock()
}

// Current returns the latest applied snapshot.
func (l *Loader) Current() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current
}

// Load fetches history for query and applies the result if no newer Load
// started meanwhile. The returned bool is false when the result was stale;
// the snapshot then describes the discarded result and was not published.
func (l *Loader) Load(ctx context.Context, query domain.HistoryQuery) (Snapshot, bool) {
	query.CustomerID = strings.TrimSpace(query.CustomerID)
	query.ContractID = strings.TrimSpace(query.ContractID)

	l.mu.Lock()
	l.generation++
	gen := l.generation

	if query.CustomerID == "" {
		l.current = Snapshot{Query: query, Records: []domain.PrepaidRecord{}, Generation: gen}
		snapshot := l.current
		l.publishLocked(snapshot)
		l.mu.Unlock()
		l.metrics.RecordHistoryFetch(ctx, outcomeSkipped, 0)
		return snapshot, true
	}

	loading := Snapshot{Query: query, Records: []domain.PrepaidRecord{}, Loading: true, Generation: gen}
	if l.current.Query == query {
		// Same scope refresh: keep what is on screen until the new result lands.
		loading.Records = l.current.Records
		loading.Count = l.current.Count
	}
	l.current = loading
	l.publishLocked(loading)
	l.mu.Unlock()

	start := l.clock.Now()
	resp, err := l.fetcher.FetchHistory(ctx, query.CustomerID, query.ContractID)
	elapsed := l.clock.Now().Sub(start)

	result := Snapshot{Query: query, Records: []domain.PrepaidRecord{}, Generation: gen}
	outcome := outcomeOK
	if err != nil {
		outcome = outcomeError
		result.Failed = true
	} else if resp.Data != nil {
		result.Records = resp.Data
		result.Count = resp.Count
	}
	l.metrics.RecordHistoryFetch(ctx, outcome, elapsed)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.metrics.RecordStaleDiscarded(ctx)
		l.log.Debug("discarding stale prepaid history",
			zap.String("customer_id", query.CustomerID),
			zap.Uint64("generation", gen),
			zap.Uint64("current_generation", l.generation),
		)
		return result, false
	}

	if err != nil {
		l.log.Warn("failed to load prepaid history",
			zap.String("customer_id", query.CustomerID),
			zap.String("contract_id", query.ContractID),
			zap.Duration("elapsed", elapsed),
			zap.Error(err),
		)
	}

	l.current = result
	l.publishLocked(result)
	return result, true
}

func (l *Loader) publishLocked(s Snapshot) {
	for _, sink := range l.sinks {
		sink.Publish(s)
	}
}
