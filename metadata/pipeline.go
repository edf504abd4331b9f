package metadata

import (
	"context"
	"net/http"

	"golang.org/x/sync/errgroup"
)

// Pipeline runs the parsers a matched operation needs and extracts its
// parameter values. It holds no per-request state and is shared by every
// request.
type Pipeline struct {
	parsers map[ParserKind]Parser
	logger  Logger
	metrics *metrics
}

func newPipeline(cfg *config, m *metrics) *Pipeline {
	return &Pipeline{
		parsers: defaultParsers(cfg),
		logger:  cfg.logger,
		metrics: m,
	}
}

// Run executes the parsers of plan that have not already filled state.
//
// The query string and the body are independent, so the query lane and the
// body lane run concurrently; Run returns once both settle. Parsers within the
// body lane run in plan order. The first error cancels the other lane and is
// returned.
func (p *Pipeline) Run(ctx context.Context, r *http.Request, state *RequestState, plan *Plan) error {
	var queryLane, bodyLane []ParserKind
	for _, kind := range plan.Parsers {
		if kind == ParserQuery {
			queryLane = append(queryLane, kind)
		} else {
			bodyLane = append(bodyLane, kind)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, lane := range [][]ParserKind{queryLane, bodyLane} {
		if len(lane) == 0 {
			continue
		}
		g.Go(func() error {
			return p.runLane(gctx, r, state, plan, lane)
		})
	}
	return g.Wait()
}

func (p *Pipeline) runLane(ctx context.Context, r *http.Request, state *RequestState, plan *Plan, lane []ParserKind) error {
	for _, kind := range lane {
		if err := ctx.Err(); err != nil {
			return err
		}
		if state.parsed(kind) {
			p.logger.Debug("parser skipped, state already populated", "parser", kind.String())
			continue
		}

		parser, ok := p.parsers[kind]
		if !ok {
			continue
		}

		p.metrics.parserRuns.WithLabelValues(kind.String()).Inc()
		if err := parser.Parse(r, state, plan); err != nil {
			p.metrics.parseErrors.WithLabelValues(kind.String()).Inc()
			return err
		}
	}
	return nil
}
