package app

import (
	"context"
	"errors"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apm"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/logger"
)

const instrumentationName = "github.com/fd1az/solana-router/business/routing"

// Result is the outcome of one routing request.
type Result struct {
	Request    domain.Request
	SnapshotAt time.Time
	// Best is Routes[0].
	Best *domain.Route
	// Routes holds every strategy that found a route, best first.
	Routes []*domain.Route
	// Failures holds strategies that found nothing, keyed by strategy.
	Failures map[domain.Strategy]error
}

// RouterService runs routing strategies against the provider's snapshot.
type RouterService struct {
	provider VenueProvider
	single   *SingleVenueRouter
	split    *SplitRouter
	multihop *MultiHopRouter
	log      logger.LoggerInterface
	tracer   apm.Tracer
	metrics  *serviceMetrics
}

// NewRouterService creates a RouterService.
func NewRouterService(
	provider VenueProvider,
	single *SingleVenueRouter,
	split *SplitRouter,
	multihop *MultiHopRouter,
	log logger.LoggerInterface,
) *RouterService {
	return &RouterService{
		provider: provider,
		single:   single,
		split:    split,
		multihop: multihop,
		log:      log,
		tracer:   apm.NewTracer(instrumentationName),
		metrics:  newServiceMetrics(),
	}
}

// Route runs one strategy.
func (s *RouterService) Route(ctx context.Context, strategy domain.Strategy, req domain.Request) (*Result, error) {
	return s.compute(ctx, req, []domain.Strategy{strategy})
}

// Best runs every strategy concurrently on the same snapshot and ranks
// what they found.
func (s *RouterService) Best(ctx context.Context, req domain.Request) (*Result, error) {
	return s.compute(ctx, req, domain.Strategies)
}

func (s *RouterService) compute(ctx context.Context, req domain.Request, strategies []domain.Strategy) (*Result, error) {
	snap, err := s.provider.Snapshot(ctx)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeSnapshotMissing, "venue provider")
	}

	routes := make([]*domain.Route, len(strategies))
	errs := make([]error, len(strategies))

	g, gctx := errgroup.WithContext(ctx)
	for i, st := range strategies {
		g.Go(func() error {
			routes[i], errs[i] = s.run(gctx, snap, st, req)
			if errs[i] != nil && !errors.Is(errs[i], apperror.ErrNoRouteFound) {
				return errs[i]
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		Request:    req,
		SnapshotAt: snap.TakenAt(),
		Failures:   make(map[domain.Strategy]error),
	}
	for i, st := range strategies {
		if errs[i] != nil {
			res.Failures[st] = errs[i]
			continue
		}
		res.Routes = append(res.Routes, routes[i])
	}
	if len(res.Routes) == 0 {
		return res, apperror.New(apperror.CodeNoRouteFound,
			apperror.WithContextf("%d strategies tried: %s -> %s amount=%d",
				len(strategies), req.TokenIn.Short(), req.TokenOut.Short(), req.AmountIn))
	}

	slices.SortStableFunc(res.Routes, domain.CompareRoutes)
	res.Best = res.Routes[0]

	s.log.Info(ctx, "route selected",
		"strategy", res.Best.Strategy(),
		"route_id", res.Best.IDHex(),
		"amount_in", res.Best.AmountIn(),
		"amount_out", res.Best.AmountOut(),
		"hops", res.Best.HopCount(),
		"impact_bps", res.Best.PriceImpactBps(),
	)
	return res, nil
}

func (s *RouterService) run(ctx context.Context, snap domain.Snapshot, st domain.Strategy, req domain.Request) (*domain.Route, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ctx, span := s.tracer.StartSpanFromContext(ctx, "routing."+string(st))
	defer span.End()
	span.SetAttributes(
		attribute.String("routing.token_in", req.TokenIn.String()),
		attribute.String("routing.token_out", req.TokenOut.String()),
		attribute.Int64("routing.amount_in", int64(req.AmountIn)),
		attribute.Int("routing.venues", snap.Len()),
	)

	start := time.Now()
	var (
		route *domain.Route
		err   error
	)
	switch st {
	case domain.StrategySingle:
		route, err = s.single.FindBest(snap, req)
	case domain.StrategySplit:
		route, err = s.split.FindBest(snap, req)
	case domain.StrategyMultiHop:
		route, err = s.multihop.FindBest(snap, req)
	default:
		err = apperror.New(apperror.CodeInvalidRequest, apperror.WithContextf("unknown strategy %q", st))
	}
	s.metrics.record(ctx, st, snap.Len(), route, err, time.Since(start))

	if err != nil {
		span.Fail(err, string(apperror.GetCode(err)))
		if errors.Is(err, apperror.ErrNoRouteFound) {
			s.log.Debug(ctx, "strategy found no route", "strategy", st, "error", err)
		} else {
			s.log.Warn(ctx, "strategy failed", "strategy", st, "error", err)
		}
		return nil, err
	}

	span.SetAttributes(
		attribute.Int64("routing.amount_out", int64(route.AmountOut())),
		attribute.Int("routing.hops", route.HopCount()),
	)
	s.log.Debug(ctx, "strategy found route",
		"strategy", st,
		"route_id", route.IDHex(),
		"amount_out", route.AmountOut(),
		"hops", route.HopCount(),
		"impact_bps", route.PriceImpactBps(),
	)
	return route, nil
}

type serviceMetrics struct {
	computed metric.Int64Counter
	duration metric.Float64Histogram
	venues   metric.Int64Histogram
	hops     metric.Int64Histogram
}

// newServiceMetrics binds to the global meter provider; without one
// configured the instruments are no-ops.
func newServiceMetrics() *serviceMetrics {
	m := otel.Meter(instrumentationName)

	computed, _ := m.Int64Counter("router.routes.computed",
		metric.WithDescription("Routing strategy runs by outcome"))
	duration, _ := m.Float64Histogram("router.strategy.duration",
		metric.WithDescription("Strategy run time"), metric.WithUnit("ms"))
	venues, _ := m.Int64Histogram("router.snapshot.venues",
		metric.WithDescription("Venues in the snapshot a strategy ran against"))
	hops, _ := m.Int64Histogram("router.route.hops",
		metric.WithDescription("Hops or legs in the route a strategy returned"))

	return &serviceMetrics{computed: computed, duration: duration, venues: venues, hops: hops}
}

func (m *serviceMetrics) record(ctx context.Context, st domain.Strategy, venues int, route *domain.Route, err error, took time.Duration) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperror.GetCode(err))
	}
	attrs := metric.WithAttributes(
		attribute.String("strategy", string(st)),
		attribute.String("outcome", outcome),
	)

	m.computed.Add(ctx, 1, attrs)
	m.duration.Record(ctx, float64(took.Microseconds())/1000, attrs)
	m.venues.Record(ctx, int64(venues), attrs)
	if route != nil {
		m.hops.Record(ctx, int64(route.HopCount()), attrs)
	}
}
