//go:build integration

package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/cucumber/godog"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/acl"
	"github.com/jsamuelsen/quotesync/internal/adapters/clients/simulated"
	httpserver "github.com/jsamuelsen/quotesync/internal/adapters/http"
	"github.com/jsamuelsen/quotesync/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quotesync/internal/adapters/storage"
	"github.com/jsamuelsen/quotesync/internal/adapters/view"
	"github.com/jsamuelsen/quotesync/internal/app"
	"github.com/jsamuelsen/quotesync/internal/platform/config"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// testContext holds state shared across step definitions within a scenario.
// Without BASE_URL every scenario gets a fresh in-process service backed by
// memory storage and a simulated remote.
type testContext struct {
	baseURL      string
	client       *http.Client
	response     *http.Response
	responseBody []byte

	posts   *simulated.Server
	closers []func()
}

func newTestContext() *testContext {
	return &testContext{
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (tc *testContext) start() error {
	if url := os.Getenv("BASE_URL"); url != "" {
		tc.baseURL = strings.TrimRight(url, "/")
		return nil
	}

	logger := discardLogger()

	tc.posts = simulated.NewServer("/posts", simulated.DefaultPosts())
	remoteSrv := httptest.NewServer(tc.posts)
	tc.closers = append(tc.closers, remoteSrv.Close)

	client, err := clients.New(clientConfig(remoteSrv.URL, 1))
	if err != nil {
		return err
	}

	remote := acl.NewRemoteSource(acl.RemoteSourceConfig{
		Client:     client,
		Collection: "/posts",
		Limit:      10,
		UserID:     1,
		Logger:     logger,
	})

	session := storage.NewMemoryKV()
	repo := storage.NewRepository(storage.NewMemoryKV(), session, logger)
	renderer := view.NewRenderer()

	quotes := app.NewQuoteService(app.QuoteServiceConfig{Repo: repo, Renderer: renderer, Logger: logger})
	quotes.Restore(context.Background())

	syncSvc := app.NewSyncService(app.SyncServiceConfig{
		Quotes:   quotes,
		Remote:   remote,
		Repo:     repo,
		Renderer: renderer,
		Metrics:  app.NewMetrics(prometheus.NewRegistry()),
		Logger:   logger,
	})

	registry := ports.NewHealthRegistry()
	if err := registry.Register(session); err != nil {
		return err
	}

	if err := registry.RegisterOptional(remote); err != nil {
		return err
	}

	appCfg := &config.AppConfig{Name: "quotesync", Version: "test", Environment: "test"}

	cfg := httpserver.NewDefaultRouterConfig(logger, appCfg,
		handlers.NewHealthHandler(registry, handlers.NewBuildInfo("test", "none", "now")))
	cfg.QuoteHandler = handlers.NewQuoteHandler(quotes)
	cfg.TransferHandler = handlers.NewTransferHandler(quotes)
	cfg.SyncHandler = handlers.NewSyncHandler(syncSvc, nil)
	cfg.ViewHandler = handlers.NewViewHandler(renderer)

	gin.SetMode(gin.TestMode)

	engine := gin.New()
	httpserver.SetupRouter(engine, cfg)

	srv := httptest.NewServer(engine)
	tc.closers = append(tc.closers, srv.Close)
	tc.baseURL = srv.URL

	return nil
}

// reset clears response state and stops the in-process service.
func (tc *testContext) reset() {
	if tc.response != nil && tc.response.Body != nil {
		_ = tc.response.Body.Close()
	}

	for i := len(tc.closers) - 1; i >= 0; i-- {
		tc.closers[i]()
	}

	tc.response = nil
	tc.responseBody = nil
	tc.posts = nil
	tc.closers = nil
}

// InitializeScenario registers step definitions for each scenario.
func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := newTestContext()

	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, tc.start()
	})

	ctx.After(func(ctx context.Context, _ *godog.Scenario, _ error) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	ctx.Step(`^the service is running$`, tc.theServiceIsRunning)
	ctx.Step(`^I request GET "([^"]*)"$`, tc.iRequestGET)
	ctx.Step(`^I request (POST|PUT) "([^"]*)"$`, tc.iRequestWithoutBody)
	ctx.Step(`^I request (POST|PUT) "([^"]*)" with body:$`, tc.iRequestWithBody)
	ctx.Step(`^the response status should be (\d+)$`, tc.theResponseStatusShouldBe)
	ctx.Step(`^the response should contain "([^"]*)"$`, tc.theResponseShouldContain)
	ctx.Step(`^the JSON field "([^"]*)" should be "([^"]*)"$`, tc.theJSONFieldShouldBe)
	ctx.Step(`^the JSON field "([^"]*)" should have (\d+) items?$`, tc.theJSONFieldShouldHaveItems)
	ctx.Step(`^the remote post (\d+) is retitled "([^"]*)"$`, tc.theRemotePostIsRetitled)
	ctx.Step(`^the remote source is down$`, tc.theRemoteSourceIsDown)
}

// theServiceIsRunning verifies the service is reachable.
func (tc *testContext) theServiceIsRunning() error {
	if err := tc.do(http.MethodGet, "/-/live", "", nil); err != nil {
		return fmt.Errorf("service is not running at %s: %w", tc.baseURL, err)
	}

	if tc.response.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status %d", tc.response.StatusCode)
	}

	return nil
}

func (tc *testContext) iRequestGET(path string) error {
	return tc.do(http.MethodGet, path, "", nil)
}

func (tc *testContext) iRequestWithoutBody(method, path string) error {
	return tc.do(method, path, "", nil)
}

func (tc *testContext) iRequestWithBody(method, path string, body *godog.DocString) error {
	return tc.do(method, path, "application/json", strings.NewReader(body.Content))
}

func (tc *testContext) do(method, path, contentType string, body io.Reader) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if body == nil {
		body = http.NoBody
	}

	req, err := http.NewRequestWithContext(ctx, method, tc.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	if tc.response != nil {
		_ = tc.response.Body.Close()
	}

	tc.response, err = tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	tc.responseBody, err = io.ReadAll(tc.response.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	return nil
}

// theResponseStatusShouldBe asserts the response status code.
func (tc *testContext) theResponseStatusShouldBe(expectedCode int) error {
	if tc.response == nil {
		return errors.New("no response received")
	}

	if tc.response.StatusCode != expectedCode {
		return fmt.Errorf("expected status %d, got %d. Body: %s",
			expectedCode, tc.response.StatusCode, string(tc.responseBody))
	}

	return nil
}

// theResponseShouldContain asserts the response body contains the given text.
func (tc *testContext) theResponseShouldContain(text string) error {
	if tc.responseBody == nil {
		return errors.New("no response body")
	}

	if !bytes.Contains(tc.responseBody, []byte(text)) {
		return fmt.Errorf("response body does not contain %q.\nBody: %s", text, tc.responseBody)
	}

	return nil
}

func (tc *testContext) theJSONFieldShouldBe(path, want string) error {
	v, err := tc.jsonField(path)
	if err != nil {
		return err
	}

	if got := fmt.Sprint(v); got != want {
		return fmt.Errorf("%s: expected %q, got %q", path, want, got)
	}

	return nil
}

func (tc *testContext) theJSONFieldShouldHaveItems(path string, n int) error {
	v, err := tc.jsonField(path)
	if err != nil {
		return err
	}

	items, ok := v.([]any)
	if !ok {
		return fmt.Errorf("%s is %T, not an array", path, v)
	}

	if len(items) != n {
		return fmt.Errorf("%s: expected %d items, got %d", path, n, len(items))
	}

	return nil
}

// jsonField walks a dotted path such as "items.0.text" through the body.
func (tc *testContext) jsonField(path string) (any, error) {
	var v any
	if err := json.Unmarshal(tc.responseBody, &v); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}

	for part := range strings.SplitSeq(path, ".") {
		switch node := v.(type) {
		case map[string]any:
			next, ok := node[part]
			if !ok {
				return nil, fmt.Errorf("%s: no field %q in %s", path, part, tc.responseBody)
			}
			v = next
		case []any:
			i, err := strconv.Atoi(part)
			if err != nil || i < 0 || i >= len(node) {
				return nil, fmt.Errorf("%s: bad index %q", path, part)
			}
			v = node[i]
		default:
			return nil, fmt.Errorf("%s: cannot descend into %T", path, v)
		}
	}

	return v, nil
}

func (tc *testContext) theRemotePostIsRetitled(id int, title string) error {
	if tc.posts == nil {
		return errors.New("remote posts are only reachable in-process")
	}

	for _, p := range tc.posts.Posts() {
		if p.ID == id {
			p.Title = title
			tc.posts.Upsert(p)

			return nil
		}
	}

	return fmt.Errorf("no remote post %d", id)
}

func (tc *testContext) theRemoteSourceIsDown() error {
	if tc.posts == nil {
		return errors.New("remote posts are only reachable in-process")
	}

	tc.posts.SetFailing(true)

	return nil
}

// TestFeatures runs the GoDog BDD test suite. Scenarios tagged @inprocess
// drive the simulated remote and are skipped against a deployed BASE_URL.
func TestFeatures(t *testing.T) {
	tags := os.Getenv("GODOG_TAGS")
	if tags == "" && os.Getenv("BASE_URL") != "" {
		tags = "~@inprocess"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"../features"},
			TestingT: t,
			Tags:     tags,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
