package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/adapters/view"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/mocks"
)

var fixtureNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func init() {
	gin.SetMode(gin.TestMode)
}

type fixture struct {
	engine   *gin.Engine
	store    *domain.QuoteStore
	repo     *storage.Repository
	renderer *view.Renderer
	quotes   *app.QuoteService
	sync     *app.SyncService
	remote   *mocks.MockRemoteSource
}

func fixtureQuotes() []domain.Quote {
	return []domain.Quote{
		{ID: "1", Text: "one", Category: "life"},
		{ID: "2", Text: "two", Category: "work"},
		{ID: "3", Text: "three", Category: "life"},
	}
}

// newFixture mounts every business handler on /api/v1 over real services
// backed by in-memory storage and a mocked remote source.
func newFixture(t *testing.T, scheduler NextRunner, seed ...domain.Quote) *fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := domain.NewQuoteStore(seed...)
	repo := storage.NewRepository(storage.NewMemoryKV(), storage.NewMemoryKV(), logger)
	renderer := view.NewRenderer()
	remote := mocks.NewMockRemoteSource(t)

	quotes := app.NewQuoteService(app.QuoteServiceConfig{
		Store:    store,
		Repo:     repo,
		Renderer: renderer,
		Picker:   func(int) int { return 0 },
		Logger:   logger,
	})

	syncSvc := app.NewSyncService(app.SyncServiceConfig{
		Quotes:   quotes,
		Remote:   remote,
		Repo:     repo,
		Renderer: renderer,
		Metrics:  app.NewMetrics(prometheus.NewRegistry()),
		Now:      func() time.Time { return fixtureNow },
		Logger:   logger,
	})

	engine := gin.New()
	api := engine.Group("/api/v1")
	NewQuoteHandler(quotes).RegisterQuoteRoutes(api)
	NewTransferHandler(quotes).RegisterTransferRoutes(api)
	NewSyncHandler(syncSvc, scheduler).RegisterSyncRoutes(api)
	NewViewHandler(renderer).RegisterViewRoutes(api)

	return &fixture{
		engine:   engine,
		store:    store,
		repo:     repo,
		renderer: renderer,
		quotes:   quotes,
		sync:     syncSvc,
		remote:   remote,
	}
}

func (f *fixture) do(method, path, body string) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)

	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())

	return v
}

// assertErrorCode checks status and the envelope's error code.
func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()

	require.Equal(t, status, w.Code, w.Body.String())

	resp := decode[dto.ErrorResponse](t, w)
	require.Equal(t, code, resp.Error.Code)
}
