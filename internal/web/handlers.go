package web

import (
    "encoding/json"
    "errors"
    "fmt"
    "html/template"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/go-chi/chi/v5"
    "github.com/gorilla/websocket"
    "github.com/sirupsen/logrus"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
    "github.com/jaminalder/tictactoe-fancy/internal/app"
    "github.com/jaminalder/tictactoe-fancy/internal/domain"
    "github.com/jaminalder/tictactoe-fancy/internal/stats"
)

type handlers struct {
    svc *app.Service
    tpl *templates
    lb  Leaderboard
    sel *ai.Selector
}

type boardData struct {
    ID           string
    Game         domain.Game
    Mode         string
    Difficulty   string
    Difficulties []string
    Status       string
    ScoreX       int
    ScoreO       int
    WinCells     [9]bool
    Error        string
}

// statusLine mirrors what a player sees above the board.
func statusLine(gs app.GameState) string {
    g := gs.Game
    if !g.Over {
        return g.Turn.String() + " turn"
    }
    if g.Winner == domain.Empty {
        return "DRAW"
    }
    if gs.Mode == app.VsAI {
        if g.Winner == app.HumanMark {
            return "VICTORY"
        }
        return "DEFEATED"
    }
    return g.Winner.String() + " WINS"
}

func (h *handlers) renderBoard(gs app.GameState, errMsg string) []byte {
    data := boardData{
        ID:           gs.ID,
        Game:         gs.Game,
        Mode:         gs.Mode.String(),
        Difficulty:   gs.Difficulty.String(),
        Difficulties: []string{ai.Easy.String(), ai.Normal.String(), ai.Hard.String()},
        Status:       statusLine(gs),
        ScoreX:       gs.ScoreX,
        ScoreO:       gs.ScoreO,
        Error:        errMsg,
    }
    if gs.Game.Over && gs.Game.Winner != domain.Empty {
        for _, i := range gs.Game.Line {
            data.WinCells[i] = true
        }
    }
    return renderTemplate(h.tpl.board, "", data)
}

func (h *handlers) writeBoard(w http.ResponseWriter, status int, gs app.GameState, errMsg string) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(status)
    _, _ = w.Write(h.renderBoard(gs, errMsg))
}

func (h *handlers) index(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.index, "", nil))
}

func (h *handlers) create(w http.ResponseWriter, r *http.Request) {
    _ = r.ParseForm()
    d, err := ai.ParseDifficulty(r.Form.Get("difficulty"))
    if err != nil {
        http.Error(w, "unknown difficulty", http.StatusBadRequest)
        return
    }
    gs, err := h.svc.CreateGame(app.Options{
        Mode:       app.ParseMode(r.Form.Get("mode")),
        Difficulty: d,
        PlayerName: r.Form.Get("name"),
    })
    if err != nil {
        http.Error(w, "failed to create", http.StatusInternalServerError)
        return
    }
    http.Redirect(w, r, "/game/"+gs.ID, http.StatusSeeOther)
}

func (h *handlers) view(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    // ensure cookie and auto-claim seat
    pid := ensurePlayerCookie(w, r)
    _, _, _ = h.svc.Join(id, pid)

    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    data := struct {
        ID        string
        Game      struct{ ID string }
        BoardHTML template.HTML
    }{ID: gs.ID}
    data.Game.ID = gs.ID
    data.BoardHTML = template.HTML(h.renderBoard(*gs, ""))

    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    // Render page with embedded board container
    _, _ = w.Write(renderTemplate(h.tpl.game, "", data))
}

func (h *handlers) join(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    _, gs, err := h.svc.Join(id, pid)
    if err != nil || gs == nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, http.StatusOK, *gs, "")
}

func playError(err error) string {
    switch {
    case errors.Is(err, app.ErrNotYourTurn):
        return "Not your turn"
    case errors.Is(err, app.ErrNotAPlayer):
        return "You are a spectator"
    case errors.Is(err, domain.ErrOccupied):
        return "Cell is occupied"
    case errors.Is(err, domain.ErrOutOfBounds):
        return "Out of bounds"
    case errors.Is(err, domain.ErrGameOver):
        return "Game is over"
    default:
        return "Invalid move"
    }
}

func (h *handlers) play(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    pid := ensurePlayerCookie(w, r)
    _ = r.ParseForm()
    ri, errR := strconv.Atoi(r.Form.Get("r"))
    ci, errC := strconv.Atoi(r.Form.Get("c"))
    var gs *app.GameState
    var err error
    if errR != nil || errC != nil {
        err = domain.ErrOutOfBounds
    } else {
        gs, err = h.svc.Play(id, pid, ri, ci)
    }
    var errMsg string
    if err != nil {
        if gs == nil {
            if g, ok := h.svc.Get(id); ok {
                gs = g
            }
        }
        errMsg = playError(err)
    }
    if gs == nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, http.StatusOK, *gs, errMsg)
}

func (h *handlers) reset(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.Reset(chi.URLParam(r, "id"))
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, http.StatusOK, *gs, "")
}

func (h *handlers) newGame(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.NewGame(chi.URLParam(r, "id"))
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, http.StatusOK, *gs, "")
}

func (h *handlers) toggleMode(w http.ResponseWriter, r *http.Request) {
    gs, err := h.svc.ToggleMode(chi.URLParam(r, "id"))
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, http.StatusOK, *gs, "")
}

func (h *handlers) difficulty(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    _ = r.ParseForm()
    d, err := ai.ParseDifficulty(r.Form.Get("difficulty"))
    if err != nil {
        gs, ok := h.svc.Get(id)
        if !ok {
            http.NotFound(w, r)
            return
        }
        h.writeBoard(w, http.StatusBadRequest, *gs, "Unknown difficulty")
        return
    }
    gs, err := h.svc.SetDifficulty(id, d)
    if err != nil {
        http.NotFound(w, r)
        return
    }
    h.writeBoard(w, http.StatusOK, *gs, "")
}

func (h *handlers) leaderboard(w http.ResponseWriter, r *http.Request) {
    var rows []stats.PlayerStat
    if h.lb != nil {
        var err error
        rows, err = h.lb.Leaderboard(r.Context())
        if err != nil {
            logrus.WithError(err).Error("leaderboard query failed")
            http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
            return
        }
    }
    w.Header().Set("Content-Type", "text/html; charset=utf-8")
    w.WriteHeader(http.StatusOK)
    _, _ = w.Write(renderTemplate(h.tpl.leaderboard, "", rows))
}

var heartbeatInterval = 15 * time.Second

func (h *handlers) events(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    w.Header().Set("Content-Type", "text/event-stream")
    w.Header().Set("Cache-Control", "no-cache")
    w.Header().Set("X-Accel-Buffering", "no")
    // In tests or non-EventSource requests, just acknowledge headers and return
    if r.Header.Get("Accept") != "text/event-stream" {
        w.WriteHeader(http.StatusOK)
        return
    }
    flusher, ok := w.(http.Flusher)
    if !ok {
        w.WriteHeader(http.StatusOK)
        return
    }
    ctx := r.Context()
    ch, _ := h.svc.Subscribe(ctx, id)
    // heartbeat ticker
    ticker := time.NewTicker(heartbeatInterval)
    defer ticker.Stop()
    // Initial flush of headers
    flusher.Flush()
    for {
        select {
        case <-ctx.Done():
            return
        case <-ticker.C:
            _, _ = io.WriteString(w, ": ping\n\n")
            flusher.Flush()
        case b, ok := <-ch:
            if !ok {
                return
            }
            // Emit board event
            _, _ = fmt.Fprintf(w, "event: board\n")
            _, _ = fmt.Fprintf(w, "data: %s\n\n", b)
            flusher.Flush()
        }
    }
}

// stateMessage is the JSON form of a game pushed over the websocket.
type stateMessage struct {
    Type       string   `json:"type"`
    ID         string   `json:"id"`
    Board      []string `json:"board"`
    Turn       string   `json:"turn"`
    Over       bool     `json:"over"`
    Winner     string   `json:"winner,omitempty"`
    Line       []int    `json:"line,omitempty"`
    Status     string   `json:"status"`
    Mode       string   `json:"mode"`
    Difficulty string   `json:"difficulty"`
    ScoreX     int      `json:"score_x"`
    ScoreO     int      `json:"score_o"`
    Round      int      `json:"round"`
}

func newStateMessage(gs app.GameState) stateMessage {
    msg := stateMessage{
        Type:       "state",
        ID:         gs.ID,
        Board:      make([]string, len(gs.Game.Board)),
        Turn:       gs.Game.Turn.String(),
        Over:       gs.Game.Over,
        Winner:     gs.Game.Winner.String(),
        Status:     statusLine(gs),
        Mode:       gs.Mode.String(),
        Difficulty: gs.Difficulty.String(),
        ScoreX:     gs.ScoreX,
        ScoreO:     gs.ScoreO,
        Round:      gs.Round,
    }
    for i, c := range gs.Game.Board {
        msg.Board[i] = c.String()
    }
    if gs.Game.Over && gs.Game.Winner != domain.Empty {
        msg.Line = gs.Game.Line[:]
    }
    return msg
}

var wsPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ws streams the game state as JSON after every change.
func (h *handlers) ws(w http.ResponseWriter, r *http.Request) {
    id := chi.URLParam(r, "id")
    gs, ok := h.svc.Get(id)
    if !ok {
        http.NotFound(w, r)
        return
    }
    conn, err := upgrader.Upgrade(w, r, nil)
    if err != nil {
        logrus.WithError(err).WithField("game", id).Debug("websocket upgrade failed")
        return
    }
    defer conn.Close()

    ctx := r.Context()
    ch, unsub := h.svc.Subscribe(ctx, id)
    defer unsub()

    // reader: detect client close
    closed := make(chan struct{})
    go func() {
        defer close(closed)
        for {
            if _, _, err := conn.ReadMessage(); err != nil {
                return
            }
        }
    }()

    if err := conn.WriteJSON(newStateMessage(*gs)); err != nil {
        return
    }
    ticker := time.NewTicker(wsPingInterval)
    defer ticker.Stop()
    for {
        select {
        case <-closed:
            return
        case <-ctx.Done():
            return
        case <-ticker.C:
            if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
                return
            }
        case _, ok := <-ch:
            if !ok {
                return
            }
            latest, found := h.svc.Get(id)
            if !found {
                return
            }
            if err := conn.WriteJSON(newStateMessage(*latest)); err != nil {
                return
            }
        }
    }
}

const maxAPIBody = 1 << 10

type apiMoveRequest struct {
    Board      string `json:"board"`
    AI         string `json:"ai"`
    Opponent   string `json:"opponent"`
    Difficulty string `json:"difficulty"`
}

type apiMoveResponse struct {
    Move   int             `json:"move"`
    OK     bool            `json:"ok"`
    Scores []ai.ScoredMove `json:"scores,omitempty"`
}

// apiMove runs the selector on a posted board, e.g.
// {"board":"X___X____","ai":"O","difficulty":"hard"}.
func (h *handlers) apiMove(w http.ResponseWriter, r *http.Request) {
    var req apiMoveRequest
    r.Body = http.MaxBytesReader(w, r.Body, maxAPIBody)
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
        return
    }
    b, err := domain.ParseBoard(req.Board)
    if err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
        return
    }
    if req.AI == "" {
        req.AI = "O"
    }
    aiMark, errA := domain.ParseCell(req.AI)
    oppMark := aiMark.Opponent()
    var errO error
    if req.Opponent != "" {
        oppMark, errO = domain.ParseCell(req.Opponent)
    }
    d, errD := ai.ParseDifficulty(req.Difficulty)
    if err := errors.Join(errA, errO, errD); err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
        return
    }
    move, ok, scores, err := h.sel.SelectScored(b, aiMark, oppMark, d)
    if err != nil {
        writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
        return
    }
    writeJSON(w, http.StatusOK, apiMoveResponse{Move: move, OK: ok, Scores: scores})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(status)
    _ = json.NewEncoder(w).Encode(data)
}
