package web

import (
    "context"
    "net/http"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/go-chi/chi/v5/middleware"
    "github.com/sirupsen/logrus"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
    "github.com/jaminalder/tictactoe-fancy/internal/app"
    "github.com/jaminalder/tictactoe-fancy/internal/stats"
)

// Leaderboard reads recorded results.
type Leaderboard interface {
    Leaderboard(ctx context.Context) ([]stats.PlayerStat, error)
}

// Option customises the server.
type Option func(*handlers)

// WithLeaderboard enables the /leaderboard page.
func WithLeaderboard(lb Leaderboard) Option { return func(h *handlers) { h.lb = lb } }

// WithSelector sets the selector behind /api/move.
func WithSelector(sel *ai.Selector) Option { return func(h *handlers) { h.sel = sel } }

// NewServer wires routes and returns an http.Handler.
func NewServer(s *app.Service, opts ...Option) http.Handler {
    h := &handlers{svc: s, tpl: loadTemplates()}
    for _, opt := range opts {
        opt(h)
    }
    if h.sel == nil {
        h.sel = ai.NewSelector(nil)
    }
    // broadcast rendered boards to SSE subscribers
    s.SetRenderer(func(gs app.GameState) []byte {
        return flattenHTML(h.renderBoard(gs, ""))
    })

    r := chi.NewRouter()
    r.Use(middleware.RequestID)
    r.Use(middleware.RealIP)
    r.Use(requestLogger)
    r.Use(middleware.Recoverer)

    r.Get("/", h.index)
    r.Get("/leaderboard", h.leaderboard)
    r.Post("/game", h.create)
    r.Route("/game/{id}", func(r chi.Router) {
        r.Get("/", h.view)
        r.Post("/join", h.join)
        r.Post("/play", h.play)
        r.Post("/reset", h.reset)
        r.Post("/new", h.newGame)
        r.Post("/mode", h.toggleMode)
        r.Post("/difficulty", h.difficulty)
        r.Get("/events", h.events)
        r.Get("/ws", h.ws)
    })
    r.Post("/api/move", h.apiMove)
    return r
}

// requestLogger logs one line per request through logrus.
func requestLogger(next http.Handler) http.Handler {
    return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
        start := time.Now()
        next.ServeHTTP(ww, r)
        logrus.WithFields(logrus.Fields{
            "request":  middleware.GetReqID(r.Context()),
            "method":   r.Method,
            "path":     r.URL.Path,
            "status":   ww.Status(),
            "bytes":    ww.BytesWritten(),
            "duration": time.Since(start),
        }).Debug("http request")
    })
}
