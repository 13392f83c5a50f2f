package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/variantcatalog/internal/catalog"
	"github.com/utafrali/variantcatalog/internal/combination"
	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/event"
	"github.com/utafrali/variantcatalog/internal/repository"
	rediscache "github.com/utafrali/variantcatalog/internal/repository/redis"
	"github.com/utafrali/variantcatalog/internal/resolver"
	"github.com/utafrali/variantcatalog/internal/service"
	"github.com/utafrali/variantcatalog/internal/variant"
	apperrors "github.com/utafrali/variantcatalog/pkg/errors"
	"github.com/utafrali/variantcatalog/pkg/health"
	pkgkafka "github.com/utafrali/variantcatalog/pkg/kafka"
	"github.com/utafrali/variantcatalog/pkg/middleware"
)

// --- fakes ---

type memRepo struct {
	mu        sync.Mutex
	byProduct map[string][]domain.ProductCombination
	failWith  error
}

func newMemRepo() *memRepo {
	return &memRepo{byProduct: make(map[string][]domain.ProductCombination)}
}

func (m *memRepo) ReplaceForProduct(_ context.Context, productID string, combos []domain.ProductCombination) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	stored := make([]domain.ProductCombination, len(combos))
	for i, c := range combos {
		c.ProductID = productID
		stored[i] = c
	}
	m.byProduct[productID] = stored
	return nil
}

func (m *memRepo) ListByProduct(_ context.Context, productID string) ([]domain.ProductCombination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return nil, m.failWith
	}
	return append([]domain.ProductCombination{}, m.byProduct[productID]...), nil
}

func (m *memRepo) find(id string) (string, int) {
	for pid, combos := range m.byProduct {
		for i, c := range combos {
			if c.ID == id {
				return pid, i
			}
		}
	}
	return "", -1
}

func (m *memRepo) GetByID(_ context.Context, id string) (*domain.ProductCombination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pid, i := m.find(id)
	if i < 0 {
		return nil, apperrors.NotFound("combination", id)
	}
	c := m.byProduct[pid][i]
	return &c, nil
}

func (m *memRepo) Search(_ context.Context, filter repository.CombinationFilter) ([]domain.ProductCombination, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []domain.ProductCombination{}
	pids := make([]string, 0, len(m.byProduct))
	for pid := range m.byProduct {
		pids = append(pids, pid)
	}
	sort.Strings(pids)
	for _, pid := range pids {
		if filter.ProductID != nil && *filter.ProductID != pid {
			continue
		}
		for _, c := range m.byProduct[pid] {
			if containsAll(c.Filters.ExactMatch, filter.ExactMatch) && containsAll(c.Filters.TypeMatch, filter.TypeMatch) {
				out = append(out, c)
			}
		}
	}
	return out, len(out), nil
}

func containsAll(have, want []string) bool {
	set := make(map[string]bool, len(have))
	for _, h := range have {
		set[h] = true
	}
	for _, w := range want {
		if !set[w] {
			return false
		}
	}
	return true
}

func (m *memRepo) UpdateQuantity(_ context.Context, id string, quantity int) (*domain.ProductCombination, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pid, i := m.find(id)
	if i < 0 {
		return nil, apperrors.NotFound("combination", id)
	}
	m.byProduct[pid][i].Quantity = quantity
	c := m.byProduct[pid][i]
	return &c, nil
}

func (m *memRepo) DeleteByProduct(_ context.Context, productID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := int64(len(m.byProduct[productID]))
	delete(m.byProduct, productID)
	return n, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	topics []string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ *pkgkafka.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.topics = append(p.topics, topic)
	return nil
}

// --- harness ---

const (
	adminToken = "admin-token"
	userToken  = "user-token"
)

func testValidator(token string) (*middleware.Claims, error) {
	switch token {
	case adminToken:
		return &middleware.Claims{UserID: "u-1", Role: middleware.RoleAdmin}, nil
	case userToken:
		return &middleware.Claims{UserID: "u-2", Role: "customer"}, nil
	default:
		return nil, errors.New("invalid token")
	}
}

type harness struct {
	handler   http.Handler
	repo      *memRepo
	publisher *recordingPublisher
	redis     *miniredis.Miniredis
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWith(t, nil)
}

func newHarnessWith(t *testing.T, configure func(*RouterConfig)) *harness {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

	registry := catalog.MustNew(catalog.DefaultSeed())
	encoder := variant.NewEncoder(registry)
	catalogSvc := service.NewCatalogService(registry, resolver.New(registry, logger), encoder)

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	repo := newMemRepo()
	pub := &recordingPublisher{}
	combinationSvc := service.NewCombinationService(
		combination.NewGenerator(encoder),
		registry,
		repo,
		event.NewProducer(pub, logger),
		logger,
		service.WithCache(rediscache.NewCombinationCache(client, time.Minute)),
		service.WithLimits(50, false),
	)

	cfg := RouterConfig{
		ServiceName:    "variant-service-test",
		CORS:           middleware.DefaultCORSConfig(),
		CatalogMaxAge:  5 * time.Minute,
		TokenValidator: testValidator,
	}
	if configure != nil {
		configure(&cfg)
	}
	router := NewRouter(catalogSvc, combinationSvc, health.NewHandler(), cfg, logger)

	return &harness{handler: router, repo: repo, publisher: pub, redis: mr}
}

func (h *harness) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader = http.NoBody
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Fields  map[string]string `json:"fields"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &out))
	return out
}

func teeRequest() map[string]any {
	return map[string]any{
		"base_sku":   "TEE",
		"base_price": "20",
		"variants": []map[string]any{
			{"template_id": "color", "values": []string{"red", "blue"}},
			{"template_id": "size", "values": []string{"m", "xl"}},
		},
	}
}
