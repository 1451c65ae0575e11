package infra

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fd1az/solana-router/business/routing/domain"
	"github.com/fd1az/solana-router/internal/apm"
	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
	"github.com/fd1az/solana-router/internal/circuitbreaker"
	"github.com/fd1az/solana-router/internal/config"
	"github.com/fd1az/solana-router/internal/httpclient"
	"github.com/fd1az/solana-router/internal/logger"
	"github.com/fd1az/solana-router/internal/ratelimit"
)

const tracerName = "github.com/fd1az/solana-router/business/routing/infra"

// snapshotPayload is the pool indexer response.
type snapshotPayload struct {
	Slot    uint64     `json:"slot"`
	TakenAt *time.Time `json:"taken_at"`
	Venues  []venueDTO `json:"venues"`
}

// venueDTO mirrors config.VenueConfig on the wire.
type venueDTO struct {
	ID       string `json:"id"`
	Dex      string `json:"dex"`
	Kind     string `json:"kind"`
	Address  string `json:"address"`
	TokenA   string `json:"token_a"`
	TokenB   string `json:"token_b"`
	ReserveA uint64 `json:"reserve_a"`
	ReserveB uint64 `json:"reserve_b"`
	FeeBps   int    `json:"fee_bps"`
	BestBid  uint64 `json:"best_bid"`
	BestAsk  uint64 `json:"best_ask"`
	MaxInput uint64 `json:"max_input"`
}

func (d venueDTO) config() config.VenueConfig {
	return config.VenueConfig{
		ID:       d.ID,
		Dex:      d.Dex,
		Kind:     d.Kind,
		Address:  d.Address,
		TokenA:   d.TokenA,
		TokenB:   d.TokenB,
		ReserveA: d.ReserveA,
		ReserveB: d.ReserveB,
		FeeBps:   d.FeeBps,
		BestBid:  d.BestBid,
		BestAsk:  d.BestAsk,
		MaxInput: d.MaxInput,
	}
}

// HTTPProvider polls a pool indexer for venue snapshots. A fetched snapshot
// is reused for RefreshInterval and, when the indexer is failing, served
// until it is MaxAge old.
type HTTPProvider struct {
	cfg     config.SourceConfig
	liq     config.LiquidityConfig
	reg     *asset.Registry
	client  *httpclient.Client
	limiter *ratelimit.Limiter
	cb      *circuitbreaker.CircuitBreaker[domain.Snapshot]
	log     logger.LoggerInterface
	tracer  apm.Tracer
	now     func() time.Time

	mu        sync.RWMutex
	last      domain.Snapshot
	fetchedAt time.Time
	lastErr   error
}

// NewHTTPProvider builds a provider for cfg.URL.
func NewHTTPProvider(cfg config.SourceConfig, liq config.LiquidityConfig, reg *asset.Registry, log logger.LoggerInterface) (*HTTPProvider, error) {
	headers := map[string]string{}
	if cfg.APIKey != "" {
		headers["Authorization"] = "Bearer " + cfg.APIKey
	}
	opts := []httpclient.ClientOption{
		httpclient.WithProviderName("pool-indexer"),
		httpclient.WithBaseURL(cfg.URL),
		httpclient.WithHeaders(headers),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, httpclient.WithRequestTimeout(cfg.Timeout))
	}
	client, err := httpclient.NewInstrumentedClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP client: %w", err)
	}

	p := &HTTPProvider{
		cfg:     cfg,
		liq:     liq,
		reg:     reg,
		client:  client,
		limiter: ratelimit.New(cfg.RequestsPerSec, 1),
		log:     log,
		tracer:  apm.NewTracer(tracerName),
		now:     time.Now,
	}

	cbCfg := circuitbreaker.DefaultConfig("pool-indexer")
	cbCfg.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Info(context.Background(), "circuit breaker state change",
			"breaker", name, "from", from.String(), "to", to.String())
	}
	p.cb = circuitbreaker.New[domain.Snapshot](cbCfg)
	return p, nil
}

// Snapshot returns a frozen venue snapshot, fetching a new one when the
// cached one is older than the refresh interval.
func (p *HTTPProvider) Snapshot(ctx context.Context) (domain.Snapshot, error) {
	cached, age, ok := p.cached()
	if ok && age < p.cfg.RefreshInterval {
		return cached, nil
	}

	ctx, span := p.tracer.StartSpanFromContext(ctx, "routing.snapshot.fetch")
	defer span.End()

	snap, err := p.refresh(ctx)
	if err == nil {
		span.SetAttributes(attribute.Int("routing.venues", snap.Len()))
		return snap, nil
	}
	span.Fail(err, "snapshot fetch failed")

	if ok && age <= p.cfg.MaxAge {
		span.AddEvent("cached snapshot served", attribute.String("routing.snapshot_age", age.String()))
		p.log.Warn(ctx, "serving cached snapshot", "age", age.String(), "error", err)
		return cached, nil
	}
	return domain.Snapshot{}, apperror.New(apperror.CodeSnapshotMissing,
		apperror.WithContext(p.cfg.URL), apperror.WithCause(err))
}

func (p *HTTPProvider) refresh(ctx context.Context) (domain.Snapshot, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return domain.Snapshot{}, err
	}

	snap, err := p.cb.Execute(func() (domain.Snapshot, error) {
		return p.fetch(ctx)
	})

	p.mu.Lock()
	defer p.mu.Unlock()
	p.lastErr = err
	if err != nil {
		return domain.Snapshot{}, err
	}
	p.last = snap
	p.fetchedAt = p.now()
	return snap, nil
}

func (p *HTTPProvider) fetch(ctx context.Context) (domain.Snapshot, error) {
	var payload snapshotPayload
	err := p.client.GetJSON(ctx, "", nil, &payload,
		httpclient.WithLabels(httpclient.Label{Key: "endpoint", Value: "snapshot"}),
		httpclient.WithResponseErrorHandler(indexerErrorHandler),
	)
	if err != nil {
		return domain.Snapshot{}, err
	}

	takenAt := p.now().UTC()
	if payload.TakenAt != nil {
		takenAt = payload.TakenAt.UTC()
	}

	venues := make([]domain.Venue, 0, len(payload.Venues))
	for _, d := range payload.Venues {
		v, err := BuildVenue(d.config(), p.liq, p.reg)
		if err != nil {
			p.log.Warn(ctx, "skipping venue", "venue", d.ID, "error", err)
			continue
		}
		venues = append(venues, v)
	}
	if len(venues) == 0 {
		return domain.Snapshot{}, apperror.New(apperror.CodeSnapshotMissing,
			apperror.WithContextf("slot %d: no usable venues in %d entries", payload.Slot, len(payload.Venues)))
	}

	p.log.Debug(ctx, "fetched venue snapshot", "slot", payload.Slot, "venues", len(venues), "skipped", len(payload.Venues)-len(venues))
	return domain.NewSnapshot(takenAt, venues...), nil
}

// Ready is healthy while a snapshot no older than MaxAge is cached.
func (p *HTTPProvider) Ready(ctx context.Context) (bool, string) {
	snap, age, ok := p.cached()
	if !ok {
		p.mu.RLock()
		err := p.lastErr
		p.mu.RUnlock()
		if err != nil {
			return false, "no snapshot: " + err.Error()
		}
		return false, "no snapshot fetched yet"
	}
	if age > p.cfg.MaxAge {
		return false, fmt.Sprintf("snapshot stale (%s old)", age.Truncate(time.Millisecond))
	}
	if p.cb.State() == gobreaker.StateOpen {
		return true, fmt.Sprintf("%d venues, indexer circuit open", snap.Len())
	}
	return true, fmt.Sprintf("%d venues, %s old", snap.Len(), age.Truncate(time.Millisecond))
}

func (p *HTTPProvider) cached() (domain.Snapshot, time.Duration, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.last.IsEmpty() {
		return domain.Snapshot{}, 0, false
	}
	return p.last, p.now().Sub(p.fetchedAt), true
}

// indexerError is the indexer's JSON error body.
type indexerError struct {
	Message string `json:"error"`
}

func indexerErrorHandler(statusCode int, body []byte) error {
	if statusCode < 400 {
		return nil
	}
	var e indexerError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return fmt.Errorf("indexer HTTP %d: %s", statusCode, e.Message)
	}
	return fmt.Errorf("indexer HTTP %d", statusCode)
}
