package retrieval

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ziadkadry99/physio-intake/internal/conversation"
	"github.com/ziadkadry99/physio-intake/internal/observability"
)

// DefaultLimit is the number of hits requested per query.
const DefaultLimit = 10

// Result is an assembled grounding context.
type Result struct {
	// Text is the formatted context block; empty when nothing was found.
	Text    string
	Queries int
	Failed  int
	Hits    int
}

// Retriever turns conversations into grounding context.
type Retriever struct {
	index       SearchIndex
	limit       int
	concurrency int
	logger      *slog.Logger
	metrics     *observability.Metrics
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLimit sets the number of hits requested per query.
func WithLimit(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.limit = n
		}
	}
}

// WithConcurrency bounds the number of queries in flight.
func WithConcurrency(n int) Option {
	return func(r *Retriever) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Retriever) { r.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(r *Retriever) { r.metrics = m }
}

// New creates a Retriever over index.
func New(index SearchIndex, opts ...Option) *Retriever {
	r := &Retriever{
		index:       index,
		limit:       DefaultLimit,
		concurrency: 4,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve builds queries from the conversation and assembles their hits.
// Failing queries are logged and skipped; if every query fails the result
// is empty.
func (r *Retriever) Retrieve(ctx context.Context, msgs []conversation.Message) Result {
	return r.RetrieveQueries(ctx, BuildQueries(msgs))
}

// RetrieveQuery assembles context for a single free-form question.
func (r *Retriever) RetrieveQuery(ctx context.Context, query string) Result {
	return r.RetrieveQueries(ctx, []string{query})
}

// RetrieveQueries runs queries concurrently and assembles their hits in
// query order, so the result does not depend on completion order.
func (r *Retriever) RetrieveQueries(ctx context.Context, queries []string) Result {
	perQuery := make([][]Hit, len(queries))
	failed := make([]bool, len(queries))

	var g errgroup.Group
	g.SetLimit(r.concurrency)
	for i, q := range queries {
		g.Go(func() error {
			hits, err := r.index.Search(ctx, q, r.limit)
			r.metrics.ObserveQuery(err)
			if err != nil {
				failed[i] = true
				r.logger.Warn("knowledge query failed", "query_index", i, "error", err)
				return nil
			}
			perQuery[i] = hits
			return nil
		})
	}
	_ = g.Wait()

	var all []Hit
	res := Result{Queries: len(queries)}
	for i := range queries {
		if failed[i] {
			res.Failed++
			continue
		}
		all = append(all, perQuery[i]...)
	}
	kept := Dedupe(all)
	res.Hits = len(kept)
	res.Text = Format(kept)

	r.metrics.ObserveContext(len(res.Text))
	r.logger.Debug("context assembled", "queries", res.Queries, "failed", res.Failed, "hits", res.Hits)
	return res
}
