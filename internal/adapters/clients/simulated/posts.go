// Package simulated serves a JSONPlaceholder-style posts API in-process so the
// sync loop can run without network access.
//
// Like the public service, created posts are echoed back with a new ID but are
// not added to the listing. Updates to existing posts are kept.
package simulated

import (
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
)

// Post is the provider record shape.
type Post struct {
	ID     int    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// Server is an in-memory posts collection behind a gin engine.
type Server struct {
	mu      sync.Mutex
	posts   map[int]Post
	nextID  int
	created []Post
	fail    bool

	engine *gin.Engine
}

// DefaultPosts is the listing served when no seed is given.
func DefaultPosts() []Post {
	return []Post{
		{ID: 1, Title: "Well done is better than well said.", Body: "wisdom", UserID: 1},
		{ID: 2, Title: "The best way out is always through.", Body: "perseverance", UserID: 1},
		{ID: 3, Title: "Simplicity is the ultimate sophistication.", Body: "design", UserID: 2},
		{ID: 4, Title: "Whatever you are, be a good one.", Body: "life", UserID: 2},
		{ID: 5, Title: "Action is the foundational key to all success.", Body: "inspirational", UserID: 3},
	}
}

// NewServer creates a server listing seed under collection (e.g. "/posts").
func NewServer(collection string, seed []Post) *Server {
	s := &Server{posts: make(map[int]Post, len(seed))}

	for _, p := range seed {
		s.posts[p.ID] = p
		s.nextID = max(s.nextID, p.ID)
	}

	gin.SetMode(gin.ReleaseMode)

	s.engine = gin.New()

	collection = "/" + strings.Trim(collection, "/")
	s.engine.GET(collection, s.list)
	s.engine.POST(collection, s.create)
	s.engine.PUT(collection+"/:id", s.update)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// Transport returns a RoundTripper that serves every request in-process.
func (s *Server) Transport() http.RoundTripper {
	return roundTripperFunc(func(req *http.Request) (*http.Response, error) {
		if err := req.Context().Err(); err != nil {
			return nil, err
		}

		rec := httptest.NewRecorder()
		s.ServeHTTP(rec, req)

		resp := rec.Result()
		resp.Request = req

		return resp, nil
	})
}

// SetFailing makes every request answer 503 until reset.
func (s *Server) SetFailing(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.fail = fail
}

// Upsert sets a post in the listing, as if another client had written it.
func (s *Server) Upsert(p Post) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts[p.ID] = p
	s.nextID = max(s.nextID, p.ID)
}

// Posts returns the listing sorted by ID.
func (s *Server) Posts() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sortedLocked()
}

// Created returns every post received via POST, in arrival order.
func (s *Server) Created() []Post {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.created)
}

func (s *Server) sortedLocked() []Post {
	out := make([]Post, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, p)
	}

	slices.SortFunc(out, func(a, b Post) int { return a.ID - b.ID })

	return out
}

func (s *Server) unavailable(c *gin.Context) bool {
	s.mu.Lock()
	fail := s.fail
	s.mu.Unlock()

	if fail {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "simulated outage"})
	}

	return fail
}

func (s *Server) list(c *gin.Context) {
	if s.unavailable(c) {
		return
	}

	s.mu.Lock()
	posts := s.sortedLocked()
	s.mu.Unlock()

	if raw := c.Query("_limit"); raw != "" {
		if limit, err := strconv.Atoi(raw); err == nil && limit >= 0 && limit < len(posts) {
			posts = posts[:limit]
		}
	}

	c.JSON(http.StatusOK, posts)
}

func (s *Server) create(c *gin.Context) {
	if s.unavailable(c) {
		return
	}

	var p Post
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	s.nextID++
	p.ID = s.nextID
	s.created = append(s.created, p)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, p)
}

func (s *Server) update(c *gin.Context) {
	if s.unavailable(c) {
		return
	}

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "post not found"})
		return
	}

	var p Post
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.posts[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"message": "post not found"})
		return
	}

	p.ID = id
	s.posts[id] = p

	c.JSON(http.StatusOK, p)
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}
