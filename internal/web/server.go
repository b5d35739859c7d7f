// Package web serves the trainer as a JSON API with a websocket boss battle.
package web

import (
	"bufio"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verte-zerg/typist/internal/generator"
	"github.com/verte-zerg/typist/internal/logs"
	"github.com/verte-zerg/typist/internal/model"
	"github.com/verte-zerg/typist/internal/session"
	"github.com/verte-zerg/typist/internal/story"
)

// CookieName holds the player session id.
const CookieName = "typist_session"

const lastScores = 10

//go:embed static/index.html
var static embed.FS

// ScoreStore records and lists scores without failing.
type ScoreStore interface {
	session.ScoreLog
	LastScores(ctx context.Context, n int) []model.ScoreRecord
}

// Options configures a Server.
type Options struct {
	Practice   model.Config
	Story      *story.Engine
	Scores     ScoreStore
	Logger     *slog.Logger
	SessionTTL time.Duration
	// Now and Tick are injectable for tests.
	Now  func() time.Time
	Tick time.Duration
}

// Server holds shared dependencies for HTTP handlers.
type Server struct {
	players  *Players
	story    *story.Engine
	scores   ScoreStore
	logger   *slog.Logger
	now      func() time.Time
	tick     time.Duration
	upgrader websocket.Upgrader

	socketsMu sync.Mutex
	sockets   map[*websocket.Conn]struct{}
	closed    bool
	live      sync.WaitGroup
}

// New builds a server.
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Tick <= 0 {
		opts.Tick = time.Second
	}
	s := &Server{
		story:  opts.Story,
		scores: opts.Scores,
		logger: opts.Logger,
		now:    opts.Now,
		tick:   opts.Tick,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	practice := opts.Practice
	s.players = NewPlayers(opts.SessionTTL, opts.Now, func() *session.Trainer {
		tr := session.NewTrainer(practice, generator.New(), opts.Scores, opts.Story)
		tr.SetClock(opts.Now)
		return tr
	})
	return s
}

// Close drops live boss sockets and waits for their handlers to finish.
// Sockets opened afterwards are closed right away.
func (s *Server) Close() {
	s.socketsMu.Lock()
	s.closed = true
	conns := make([]*websocket.Conn, 0, len(s.sockets))
	for c := range s.sockets {
		conns = append(conns, c)
	}
	s.socketsMu.Unlock()

	for _, c := range conns {
		if cerr := c.Close(); cerr != nil {
			// Best-effort close; the handler sees the read error.
			_ = cerr
		}
	}
	s.live.Wait()
}

func (s *Server) trackSocket(c *websocket.Conn) bool {
	s.socketsMu.Lock()
	defer s.socketsMu.Unlock()
	if s.closed {
		return false
	}
	if s.sockets == nil {
		s.sockets = make(map[*websocket.Conn]struct{})
	}
	s.sockets[c] = struct{}{}
	s.live.Add(1)
	return true
}

func (s *Server) untrackSocket(c *websocket.Conn) {
	s.socketsMu.Lock()
	delete(s.sockets, c)
	s.socketsMu.Unlock()
	s.live.Done()
}

// Players exposes the session store for sweeping.
func (s *Server) Players() *Players {
	return s.players
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /health", s.handleHealth)

	mux.HandleFunc("GET /api/settings", s.withPlayer(s.handleSettings))
	mux.HandleFunc("POST /api/settings/potty", s.withPlayer(s.handleTogglePotty))
	mux.HandleFunc("GET /api/scores/last", s.handleLastScores)

	mux.HandleFunc("POST /api/drills/start", s.withPlayer(s.handleDrillsStart))
	mux.HandleFunc("GET /api/drills/next", s.withPlayer(s.runNext(drillsRun)))
	mux.HandleFunc("POST /api/drills/submit", s.withPlayer(s.runSubmit(drillsRun)))

	mux.HandleFunc("POST /api/sprints/start", s.withPlayer(s.handleSprintsStart))
	mux.HandleFunc("GET /api/sprints/next", s.withPlayer(s.runNext(sprintsRun)))
	mux.HandleFunc("POST /api/sprints/submit", s.withPlayer(s.runSubmit(sprintsRun)))

	mux.HandleFunc("POST /api/boss/start", s.withPlayer(s.handleBossStart))
	mux.HandleFunc("GET /api/boss/next", s.withPlayer(s.handleBossNext))
	mux.HandleFunc("POST /api/boss/submit", s.withPlayer(s.handleBossSubmit))
	mux.HandleFunc("GET /ws/boss", s.handleBossSocket)

	mux.HandleFunc("GET /api/story/current", s.withPlayer(s.handleStoryCurrent))
	mux.HandleFunc("POST /api/story/reset", s.withPlayer(s.handleStoryReset))
	mux.HandleFunc("POST /api/story/start", s.withPlayer(s.handleStoryStart))
	mux.HandleFunc("GET /api/story/next", s.withPlayer(s.runNext(storyRun)))
	mux.HandleFunc("POST /api/story/submit", s.withPlayer(s.handleStorySubmit))
	mux.HandleFunc("POST /api/story/choose", s.withPlayer(s.handleStoryChoose))

	return s.logRequests(corsMiddleware(mux))
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"elapsed", time.Since(start),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// Hijack hands the connection to the websocket upgrader.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer cannot hijack")
	}
	return h.Hijack()
}

type playerHandler func(w http.ResponseWriter, r *http.Request, p *Player)

// withPlayer resolves the cookie session, creating one when needed, and
// serializes requests of the same player.
func (s *Server) withPlayer(h playerHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, cookie := s.resolvePlayer(r)
		if cookie != nil {
			http.SetCookie(w, cookie)
		}
		p.mu.Lock()
		defer p.mu.Unlock()
		h(w, r.WithContext(logs.WithPlayer(r.Context(), p.ID)), p)
	}
}

func (s *Server) resolvePlayer(r *http.Request) (*Player, *http.Cookie) {
	if c, err := r.Cookie(CookieName); err == nil {
		if p, ok := s.players.Get(c.Value); ok {
			return p, nil
		}
	}
	p := s.players.Create()
	return p, &http.Cookie{
		Name:     CookieName,
		Value:    p.ID,
		Path:     "/",
		MaxAge:   int(s.players.ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	page, err := static.ReadFile("static/index.html")
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(page)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request, p *Player) {
	writeJSON(w, http.StatusOK, map[string]bool{"potty_mode": p.trainer.Config().Potty})
}

func (s *Server) handleTogglePotty(w http.ResponseWriter, r *http.Request, p *Player) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := readJSON(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	on := !p.trainer.Config().Potty
	if req.Enabled != nil {
		on = *req.Enabled
	}
	p.trainer.SetPotty(on)
	writeJSON(w, http.StatusOK, map[string]bool{"potty_mode": on})
}

func (s *Server) handleLastScores(w http.ResponseWriter, r *http.Request) {
	scores := s.scores.LastScores(r.Context(), lastScores)
	if scores == nil {
		scores = []model.ScoreRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"scores": scores})
}

var (
	errNoRun      = errors.New("no active run")
	errBadRequest = errors.New("bad request")
)

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Node    string `json:"node,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	body := errorBody{Message: err.Error()}
	status := http.StatusConflict
	var missing *story.MissingNodeError
	switch {
	case errors.As(err, &missing):
		body.Error = "missing_node"
		body.Node = missing.ID
	case errors.Is(err, story.ErrChoicePending):
		body.Error = "choice_pending"
	case errors.Is(err, story.ErrNoPendingChoice):
		body.Error = "no_pending_choice"
	case errors.Is(err, story.ErrStaleChapter):
		body.Error = "stale_chapter"
	case errors.Is(err, session.ErrNoPrompt):
		body.Error = "no_prompt"
	case errors.Is(err, session.ErrRunFinished):
		body.Error = "run_finished"
	case errors.Is(err, errNoRun):
		status = http.StatusNotFound
		body.Error = "no_active_run"
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
		body.Error = "bad_request"
	default:
		status = http.StatusInternalServerError
		body.Error = "internal"
		s.logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// readJSON decodes the request body into v. An empty body leaves v untouched.
func readJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return errors.Join(errBadRequest, err)
}
