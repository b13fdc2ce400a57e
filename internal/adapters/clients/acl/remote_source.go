package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quotesync/internal/adapters/clients"
	"github.com/jsamuelsen/quotesync/internal/domain"
	"github.com/jsamuelsen/quotesync/internal/platform/logging"
	"github.com/jsamuelsen/quotesync/internal/ports"
)

// RemoteIDPrefix is prepended to provider IDs and group IDs so remote quotes
// can never collide with locally generated identifiers.
const RemoteIDPrefix = "remote-"

// RemoteSourceConfig configures a RemoteSource.
type RemoteSourceConfig struct {
	// Client is the HTTP client; its BaseURL points at the provider.
	Client *clients.Client

	// Collection is the provider path, e.g. "/posts".
	Collection string

	// Limit is sent as _limit on fetch.
	Limit int

	// UserID is sent as userId for quotes that do not carry one.
	UserID int

	// PushConcurrency bounds parallel POSTs in PushLocal.
	PushConcurrency int

	Logger *slog.Logger
}

// RemoteSource implements ports.RemoteSource against a JSONPlaceholder-style
// posts API. Provider records are {id, title, body, userId}.
type RemoteSource struct {
	BaseAdapter

	collection  string
	limit       int
	userID      int
	concurrency int
	logger      *slog.Logger
}

var _ ports.RemoteSource = (*RemoteSource)(nil)

// NewRemoteSource creates a remote source adapter.
// Panics if Client is nil.
func NewRemoteSource(cfg RemoteSourceConfig) *RemoteSource {
	if cfg.Client == nil {
		panic("RemoteSource: Client is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	collection := "/" + strings.Trim(cfg.Collection, "/")

	return &RemoteSource{
		BaseAdapter: NewBaseAdapter(cfg.Client),
		collection:  collection,
		limit:       max(cfg.Limit, 1),
		userID:      max(cfg.UserID, 1),
		concurrency: max(cfg.PushConcurrency, 1),
		logger:      logger.With(slog.String("component", "acl.RemoteSource")),
	}
}

// postRecord is the provider's post. Never leaves this package.
type postRecord struct {
	ID     int    `json:"id,omitempty"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// FetchRemote retrieves up to Limit posts and translates them into quotes.
// Posts with an empty title are skipped.
func (r *RemoteSource) FetchRemote(ctx context.Context) ([]domain.Quote, error) {
	query := url.Values{"_limit": []string{strconv.Itoa(r.limit)}}
	path := r.collection + "?" + query.Encode()

	logger := logging.FromContext(ctx)
	logger.Log(ctx, logging.LevelTrace, "fetching remote quotes", slog.String("path", path))

	body, err := r.Get(ctx, path, "fetch quotes", "")
	if err != nil {
		return nil, err
	}

	records, err := decode[[]postRecord](body, r.ServiceName())
	if err != nil {
		return nil, err
	}

	quotes, rejected := TranslateValid(records, translatePost)
	for _, s := range rejected {
		logger.WarnContext(ctx, "skipping remote record",
			slog.Int("index", s.Index),
			slog.Any("error", s.Err),
		)
	}

	logger.DebugContext(ctx, "fetched remote quotes",
		slog.Int("received", len(records)),
		slog.Int("kept", len(quotes)),
	)

	return quotes, nil
}

// PushLocal POSTs every quote with bounded concurrency. Failures are
// collected per quote; an error is returned only when every push failed.
func (r *RemoteSource) PushLocal(ctx context.Context, quotes []domain.Quote) (ports.PushResult, error) {
	result := ports.PushResult{Attempted: len(quotes)}
	if len(quotes) == 0 {
		return result, nil
	}

	var (
		mu      sync.Mutex
		lastErr error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for _, q := range quotes {
		g.Go(func() error {
			err := r.create(gctx, q)

			mu.Lock()
			defer mu.Unlock()

			if err != nil {
				result.Failed = append(result.Failed, q.ID)
				lastErr = err
				return nil
			}

			result.Pushed++

			return nil
		})
	}

	_ = g.Wait()

	if result.Pushed == 0 {
		return result, fmt.Errorf("pushing %d quotes: %w", len(quotes), lastErr)
	}

	if len(result.Failed) > 0 {
		logging.FromContext(ctx).WarnContext(ctx, "some quotes were not pushed",
			slog.Int("failed", len(result.Failed)),
			slog.Any("error", lastErr),
		)
	}

	return result, nil
}

// PushQuote overwrites one quote upstream. Quotes that came from this source
// are PUT back to their post; any other quote is created.
func (r *RemoteSource) PushQuote(ctx context.Context, q domain.Quote) error {
	postID, ok := parseRemoteID(q.ID)
	if !ok {
		return r.create(ctx, q)
	}

	rec := r.toPost(q)
	rec.ID = postID

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encoding post: %w", err)
	}

	path := fmt.Sprintf("%s/%d", r.collection, postID)

	body, err := r.Put(ctx, path, bytes.NewReader(payload), "overwrite quote", q.ID)
	if err != nil {
		return err
	}

	_ = body.Close()

	return nil
}

func (r *RemoteSource) create(ctx context.Context, q domain.Quote) error {
	payload, err := json.Marshal(r.toPost(q))
	if err != nil {
		return fmt.Errorf("encoding post: %w", err)
	}

	body, err := r.Post(ctx, r.collection, bytes.NewReader(payload), "push quote", q.ID)
	if err != nil {
		return err
	}

	_ = body.Close()

	return nil
}

// toPost maps a quote onto the provider shape. A category of the form
// remote-<n> maps back to userId n so a round trip keeps the category.
func (r *RemoteSource) toPost(q domain.Quote) postRecord {
	userID := r.userID
	if n, ok := parseRemoteID(q.Category); ok {
		userID = n
	}

	return postRecord{Title: q.Text, Body: q.Category, UserID: userID}
}

// translatePost converts a provider post to a domain quote.
func translatePost(p *postRecord) (domain.Quote, error) {
	if p.ID <= 0 {
		return domain.Quote{}, domain.NewValidationErrorWithValue("id", "must be positive", p.ID)
	}

	text := strings.TrimSpace(p.Title)
	if text == "" {
		return domain.Quote{}, domain.NewValidationError("title", "is required")
	}

	return domain.Quote{
		ID:       RemoteIDPrefix + strconv.Itoa(p.ID),
		Text:     text,
		Category: RemoteIDPrefix + strconv.Itoa(p.UserID),
	}, nil
}

func parseRemoteID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, RemoteIDPrefix)
	if !ok {
		return 0, false
	}

	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}

	return n, true
}

// Name implements ports.HealthChecker.
func (r *RemoteSource) Name() string {
	return r.ServiceName()
}

// Check fetches a single post to verify connectivity.
// Implements ports.HealthChecker.
func (r *RemoteSource) Check(ctx context.Context) error {
	body, err := r.Get(ctx, r.collection+"?_limit=1", "health check", "")
	if err != nil {
		return err
	}

	return body.Close()
}
