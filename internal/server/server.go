package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"

	"github.com/lox/holdemtrainer/internal/bot"
	"github.com/lox/holdemtrainer/internal/game"
	"github.com/lox/holdemtrainer/internal/gameid"
	"github.com/lox/holdemtrainer/internal/randutil"
	"github.com/lox/holdemtrainer/internal/store"
)

const defaultHumanName = "hero"

// Server exposes trainer games over HTTP and websockets.
type Server struct {
	cfg      *Config
	logger   *log.Logger
	clock    quartz.Clock
	games    *store.MemoryStore[*Session]
	repo     *store.SnapshotRepo
	ids      *gameid.Generator
	upgrader websocket.Upgrader
	router   chi.Router

	seedMu sync.Mutex
	seeds  *rand.Rand
}

// Option configures a Server.
type Option func(*Server)

// WithServerClock sets the clock shared by sessions and the game store.
func WithServerClock(clock quartz.Clock) Option {
	return func(s *Server) { s.clock = clock }
}

// WithSnapshotRepo persists a snapshot after every hand and restores games
// that are no longer in memory.
func WithSnapshotRepo(repo *store.SnapshotRepo) Option {
	return func(s *Server) { s.repo = repo }
}

// WithSeed makes the seeds of new games reproducible.
func WithSeed(seed int64) Option {
	return func(s *Server) { s.seeds = randutil.New(seed) }
}

// WithIDGenerator sets the game ID generator.
func WithIDGenerator(g *gameid.Generator) Option {
	return func(s *Server) { s.ids = g }
}

// New creates a server for a validated configuration.
func New(cfg *Config, logger *log.Logger, opts ...Option) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	s := &Server{
		cfg:    cfg,
		logger: logger.WithPrefix("server"),
		upgrader: websocket.Upgrader{
			// Browsers served from another origin are expected in development.
			CheckOrigin:     func(r *http.Request) bool { return true },
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.clock == nil {
		s.clock = quartz.NewReal()
	}
	if s.seeds == nil {
		s.seeds = randutil.New(time.Now().UnixNano())
	}
	if s.ids == nil {
		s.ids = gameid.NewGenerator(nil)
	}

	s.games = store.NewMemoryStore[*Session](s.clock, cfg.GameTTL())
	s.games.OnExpire(func(id string, sess *Session) {
		sess.Close()
		s.logger.Info("game expired", "game", id)
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/health", s.handleHealth)
	r.Post("/games", s.handleCreateGame)
	r.Route("/games/{id}", func(r chi.Router) {
		r.Get("/", s.handleGetGame)
		r.Delete("/", s.handleDeleteGame)
		r.Post("/actions", s.handleAction)
		r.Post("/next", s.handleNextHand)
		r.Get("/ws", s.handleWebSocket)
	})
	s.router = r
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Games returns the number of games held in memory.
func (s *Server) Games() int { return s.games.Len() }

// Run serves until ctx is cancelled, sweeping idle games in the background.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Addr:              s.cfg.Address(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		s.logger.Info("listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return s.games.Run(ctx, sweepInterval(s.cfg.GameTTL()))
	})
	g.Go(func() error {
		<-ctx.Done()
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

func sweepInterval(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return time.Minute
	}
	return max(ttl/4, time.Second)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := s.clock.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request", "method", r.Method, "path", r.URL.Path,
			"status", ww.Status(), "duration", s.clock.Since(start))
	})
}

func (s *Server) nextSeed() int64 {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()
	return s.seeds.Int64()
}

// newSession builds a session for id. With a snapshot the game resumes from
// it; opponents always come from the current configuration.
func (s *Server) newSession(id, name string, seed int64, snap *game.Snapshot) (*Session, error) {
	rng := randutil.New(seed)
	names := []string{name}
	bots := make([]game.Strategy, 1, len(s.cfg.Opponents)+1)
	for _, o := range s.cfg.Opponents {
		strat, err := bot.New(o.Personality, randutil.Child(rng), s.logger.With("game", id))
		if err != nil {
			return nil, err
		}
		names = append(names, o.Name)
		bots = append(bots, strat)
	}

	gameLogger := s.logger.WithPrefix("game").With("game", id)
	var g *game.Game
	if snap != nil {
		var err error
		g, err = game.RestoreGame(*snap, rng, game.WithLogger(gameLogger))
		if err != nil {
			return nil, fmt.Errorf("restore game %s: %w", id, err)
		}
		if len(g.Players) != len(bots) {
			return nil, fmt.Errorf("restore game %s: snapshot has %d seats, table has %d", id, len(g.Players), len(bots))
		}
	} else {
		t := s.cfg.Table
		g = game.NewGame(rng, names, t.SmallBlind, t.BigBlind,
			game.WithUniformStacks(t.StartingStack),
			game.WithButton(rng.IntN(len(names))),
			game.WithLogger(gameLogger),
		)
	}

	return NewSession(id, g, 0, bots,
		WithClock(s.clock),
		WithThinkTime(s.cfg.ThinkTime()),
		WithActionTimeout(s.cfg.ActionTimeout()),
		WithSessionLogger(s.logger.WithPrefix("session")),
		WithHandDone(s.persist),
	), nil
}

func (s *Server) persist(sess *Session, snap game.Snapshot) {
	if s.repo == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.repo.Save(ctx, sess.ID, snap); err != nil {
		s.logger.Error("failed to save snapshot", "game", sess.ID, "error", err)
	}
}

// session finds a live game, restoring it from the snapshot repo if it has
// been swept from memory.
func (s *Server) session(ctx context.Context, id string) (*Session, error) {
	if err := gameid.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}
	sess, err := s.games.Get(ctx, id)
	if err == nil || s.repo == nil || !errors.Is(err, store.ErrNotFound) {
		return sess, err
	}

	snap, err := s.repo.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	sess, err = s.newSession(id, defaultHumanName, s.nextSeed(), &snap)
	if err != nil {
		return nil, err
	}
	if err := s.games.Create(ctx, id, sess); errors.Is(err, store.ErrExists) {
		// Restored concurrently by another request.
		return s.games.Get(ctx, id)
	} else if err != nil {
		return nil, err
	}
	s.logger.Info("game restored", "game", id, "hand", snap.HandNumber)
	return sess, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": s.Games()})
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req CreateGameRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if req.Name == "" {
		req.Name = defaultHumanName
	}
	seed := s.nextSeed()
	if req.Seed != nil {
		seed = *req.Seed
	}

	id := s.ids.Generate()
	sess, err := s.newSession(id, req.Name, seed, nil)
	if err != nil {
		s.writeError(w, err)
		return
	}
	// The game is only stored once its first hand is dealt.
	if err := sess.NextHand(r.Context()); err != nil {
		sess.Close()
		s.writeError(w, err)
		return
	}
	if err := s.games.Create(r.Context(), id, sess); err != nil {
		sess.Close()
		s.writeError(w, err)
		return
	}
	s.logger.Info("game created", "game", id, "seed", seed, "seats", len(s.cfg.Opponents)+1)
	writeJSON(w, http.StatusCreated, CreateGameResponse{ID: id, Seed: seed, State: sess.State()})
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := gameid.Validate(id); err != nil {
		s.writeError(w, fmt.Errorf("%w: %w", errBadRequest, err))
		return
	}
	sess, err := s.games.Get(r.Context(), id)
	found := err == nil
	if found {
		sess.Close()
		_ = s.games.Delete(r.Context(), id)
	}
	if s.repo != nil {
		err := s.repo.Delete(r.Context(), id)
		switch {
		case err == nil:
			found = true
		case !errors.Is(err, store.ErrNotFound):
			s.writeError(w, err)
			return
		}
	}
	if !found {
		s.writeError(w, fmt.Errorf("game %s: %w", id, store.ErrNotFound))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	var a *game.Action
	if err := decodeJSON(r, &a); err != nil {
		s.writeError(w, err)
		return
	}
	if a == nil {
		s.writeError(w, fmt.Errorf("%w: missing action", errBadRequest))
		return
	}
	if err := sess.HumanAct(r.Context(), *a); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func (s *Server) handleNextHand(w http.ResponseWriter, r *http.Request) {
	sess, err := s.session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := sess.NextHand(r.Context()); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

func decodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}
	return fmt.Errorf("%w: %w", errBadRequest, err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v) // Ignore write errors, the client is gone
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status, _ := errorStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]*ErrorData{"error": errorData(err)})
}
