package usecase

import (
	"math/rand"
	"sync"
	"time"

	"github.com/vlah-sh/mosaic/pkg/domain/interfaces"
	"github.com/vlah-sh/mosaic/pkg/domain/model/config"
	"github.com/vlah-sh/mosaic/pkg/service/embedding"
)

// RetrievalMode is fixed at construction time: vector-backed retrieval when
// an embedding service is configured, usage-only ranking otherwise.
type RetrievalMode int

const (
	RetrievalUsageOnly RetrievalMode = iota
	RetrievalVectorBacked
)

func (m RetrievalMode) String() string {
	switch m {
	case RetrievalVectorBacked:
		return "vector-backed"
	default:
		return "usage-only"
	}
}

// lockedRand guards a rand.Rand for use across concurrent requests
type lockedRand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (r *lockedRand) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Intn(n)
}

func (r *lockedRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rng.Float64()
}

func (r *lockedRand) Shuffle(n int, swap func(i, j int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rng.Shuffle(n, swap)
}

type UseCases struct {
	catalog  interfaces.CatalogRepository
	ledger   interfaces.LedgerRepository
	embedder embedding.Service
	policy   *config.Policy
	mode     RetrievalMode
	now      func() time.Time
	rng      *lockedRand

	Selection *SelectionUseCase
	Layout    *LayoutUseCase
	Cooldown  *CooldownUseCase
	Tracker   *TrackerUseCase
	Effects   *EffectUseCase
}

type Option func(*UseCases)

// WithEmbedder wires the embedding producer and switches retrieval to
// vector-backed mode
func WithEmbedder(svc embedding.Service) Option {
	return func(uc *UseCases) {
		uc.embedder = svc
	}
}

// WithPolicy overrides the default selection policy
func WithPolicy(policy *config.Policy) Option {
	return func(uc *UseCases) {
		uc.policy = policy
	}
}

// WithClock overrides the time source, used by tests
func WithClock(now func() time.Time) Option {
	return func(uc *UseCases) {
		uc.now = now
	}
}

// WithRand overrides the random source, used by tests
func WithRand(rng *rand.Rand) Option {
	return func(uc *UseCases) {
		uc.rng = &lockedRand{rng: rng}
	}
}

func New(catalog interfaces.CatalogRepository, ledger interfaces.LedgerRepository, opts ...Option) *UseCases {
	uc := &UseCases{
		catalog: catalog,
		ledger:  ledger,
		policy:  config.DefaultPolicy(),
		now:     time.Now,
		rng:     &lockedRand{rng: rand.New(rand.NewSource(time.Now().UnixNano()))},
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.mode = RetrievalUsageOnly
	if uc.embedder != nil {
		uc.mode = RetrievalVectorBacked
	}

	uc.Selection = &SelectionUseCase{parent: uc}
	uc.Layout = &LayoutUseCase{parent: uc}
	uc.Cooldown = &CooldownUseCase{parent: uc}
	uc.Tracker = &TrackerUseCase{parent: uc}
	uc.Effects = &EffectUseCase{parent: uc}

	return uc
}

// Mode returns the retrieval mode chosen at construction
func (uc *UseCases) Mode() RetrievalMode {
	return uc.mode
}

// Policy returns the active selection policy
func (uc *UseCases) Policy() *config.Policy {
	return uc.policy
}
