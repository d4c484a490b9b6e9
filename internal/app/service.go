package app

import (
    "context"
    "errors"
    "strings"
    "sync"
    "time"

    "github.com/google/uuid"
    "github.com/sirupsen/logrus"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
    "github.com/jaminalder/tictactoe-fancy/internal/domain"
    "github.com/jaminalder/tictactoe-fancy/internal/stats"
)

// Errors exposed by the service layer.
var (
    ErrNotFound    = errors.New("game not found")
    ErrNotYourTurn = errors.New("not your turn")
    ErrNotAPlayer  = errors.New("not a player")
)

// Seats in a game against the computer.
const (
    HumanMark = domain.X
    AIMark    = domain.O
    // AIName is the leaderboard name and seat holder of the computer player.
    AIName = "AI"
)

const recordTimeout = 5 * time.Second

// Mode selects who plays O.
type Mode uint8

const (
    VsAI Mode = iota
    PvP
)

func (m Mode) String() string {
    if m == PvP {
        return "pvp"
    }
    return "ai"
}

// ParseMode accepts "ai" (default) or "pvp".
func ParseMode(s string) Mode {
    if strings.EqualFold(strings.TrimSpace(s), "pvp") {
        return PvP
    }
    return VsAI
}

// Mover chooses the computer's move.
type Mover interface {
    SelectMove(b domain.Board, aiMark, oppMark domain.Cell, d ai.Difficulty) (int, bool, error)
}

// Recorder stores finished-game results.
type Recorder interface {
    Record(ctx context.Context, name string, r stats.Result) error
}

// Options configures a new game. A zero Difficulty means Normal.
type Options struct {
    Mode       Mode
    Difficulty ai.Difficulty
    PlayerName string
}

// GameState is the in-memory state tracked per game.
type GameState struct {
    ID         string
    Game       domain.Game
    Mode       Mode
    Difficulty ai.Difficulty
    PlayerName string
    X          string
    O          string
    ScoreX     int
    ScoreO     int
    Round      int
    Created    time.Time
    Updated    time.Time
}

type subscriber struct {
    mu     sync.Mutex
    ch     chan []byte
    closed bool
    seq    uint64
}

// broadcast is a rendered state and the subscribers it goes to. seq orders
// broadcasts so that fanouts racing outside the lock never deliver an older
// state after a newer one.
type broadcast struct {
    subs    map[*subscriber]struct{}
    payload []byte
    seq     uint64
}

// deliver replaces any unread payload with the latest one. It never blocks
// and is a no-op once the subscriber is closed.
func (s *subscriber) deliver(payload []byte, seq uint64) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if s.closed || seq <= s.seq {
        return
    }
    s.seq = seq
    select {
    case s.ch <- payload:
        return
    default:
    }
    // drop the stale payload
    select {
    case <-s.ch:
    default:
    }
    select {
    case s.ch <- payload:
    default:
    }
}

func (s *subscriber) close() {
    s.mu.Lock()
    defer s.mu.Unlock()
    if !s.closed {
        s.closed = true
        close(s.ch)
    }
}

// Service manages games, the computer opponent and subscribers.
type Service struct {
    mu       sync.Mutex
    games    map[string]*GameState
    subs     map[string]map[*subscriber]struct{}
    render   func(GameState) []byte
    seq      uint64
    mover    Mover
    recorder Recorder
}

// Option customises a Service.
type Option func(*Service)

// WithMover sets the move selector used for the computer player.
func WithMover(m Mover) Option { return func(s *Service) { s.mover = m } }

// WithRecorder sets where finished games against the computer are recorded.
func WithRecorder(r Recorder) Option { return func(s *Service) { s.recorder = r } }

// NewService creates a service with a default renderer (encodes nothing useful).
func NewService(opts ...Option) *Service {
    return NewServiceWithRenderer(func(gs GameState) []byte { return nil }, opts...)
}

// NewServiceWithRenderer allows injecting a renderer for broadcast payloads.
func NewServiceWithRenderer(renderer func(GameState) []byte, opts ...Option) *Service {
    if renderer == nil {
        renderer = func(gs GameState) []byte { return nil }
    }
    s := &Service{
        games:  make(map[string]*GameState),
        subs:   make(map[string]map[*subscriber]struct{}),
        render: renderer,
    }
    for _, opt := range opts {
        opt(s)
    }
    if s.mover == nil {
        s.mover = ai.NewSelector(nil)
    }
    return s
}

// SetRenderer replaces the broadcast renderer function.
func (s *Service) SetRenderer(renderer func(GameState) []byte) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if renderer == nil {
        s.render = func(gs GameState) []byte { return nil }
        return
    }
    s.render = renderer
}

// CreateGame creates and registers a new game.
func (s *Service) CreateGame(opts Options) (*GameState, error) {
    if opts.Difficulty == 0 {
        opts.Difficulty = ai.Normal
    }
    if !opts.Difficulty.Valid() {
        return nil, ai.ErrUnknownDifficulty
    }
    if strings.TrimSpace(opts.PlayerName) == "" {
        opts.PlayerName = "Player 1"
    }
    s.mu.Lock()
    defer s.mu.Unlock()
    id := uuid.NewString()
    now := time.Now()
    gs := &GameState{
        ID:         id,
        Game:       domain.New(),
        Mode:       opts.Mode,
        Difficulty: opts.Difficulty,
        PlayerName: opts.PlayerName,
        Created:    now,
        Updated:    now,
    }
    seatAILocked(gs)
    s.games[id] = gs
    logrus.WithFields(logrus.Fields{"game": id, "mode": gs.Mode, "difficulty": gs.Difficulty}).Info("game created")
    cp := *gs
    return &cp, nil
}

// Get returns a copy of the game state if present.
func (s *Service) Get(id string) (*GameState, bool) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return nil, false
    }
    cp := *gs
    return &cp, true
}

// Join assigns a seat to the player if available; returns Empty for spectators.
// The O seat of a game against the computer is never free.
func (s *Service) Join(id, playerID string) (domain.Cell, *GameState, error) {
    s.mu.Lock()
    defer s.mu.Unlock()
    gs, ok := s.games[id]
    if !ok {
        return domain.Empty, nil, ErrNotFound
    }
    side := domain.Empty
    if gs.X == "" || gs.X == playerID {
        gs.X = playerID
        side = domain.X
    } else if gs.Mode == PvP && (gs.O == "" || gs.O == playerID) {
        gs.O = playerID
        side = domain.O
    }
    gs.Updated = time.Now()
    cp := *gs
    return side, &cp, nil
}

// Play validates seat and turn, applies a move, updates timestamps, and
// broadcasts. In a game against the computer the reply is played before
// returning.
func (s *Service) Play(id, playerID string, r, c int) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    // Validate player is seated
    var seat domain.Cell
    if gs.X == playerID {
        seat = domain.X
    } else if gs.O == playerID && gs.Mode == PvP {
        seat = domain.O
    } else {
        s.mu.Unlock()
        return nil, ErrNotAPlayer
    }
    // Validate turn
    if !gs.Game.Over && seat != gs.Game.Turn {
        s.mu.Unlock()
        return nil, ErrNotYourTurn
    }
    // Apply move
    if err := gs.Game.Play(r, c); err != nil {
        s.mu.Unlock()
        return nil, err
    }
    scoreLocked(gs)
    cp, b := s.commitLocked(gs)
    s.mu.Unlock()

    logrus.WithFields(logrus.Fields{"game": id, "player": playerID, "move": r*3 + c}).Debug("move played")
    s.fanout(b)
    s.finish(cp)

    if cp.Mode == VsAI && !cp.Game.Over && cp.Game.Turn == AIMark {
        return s.playAI(cp)
    }
    return &cp, nil
}

// playAI searches on a snapshot without holding the lock and applies the
// result only if the game has not moved on in the meantime.
func (s *Service) playAI(snap GameState) (*GameState, error) {
    log := logrus.WithFields(logrus.Fields{"game": snap.ID, "difficulty": snap.Difficulty})
    move, ok, err := s.mover.SelectMove(snap.Game.Board, AIMark, HumanMark, snap.Difficulty)
    if err != nil {
        log.WithError(err).Error("ai move selection failed")
        return &snap, err
    }
    if !ok {
        return &snap, nil
    }

    s.mu.Lock()
    gs, found := s.games[snap.ID]
    if !found {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if gs.Round != snap.Round || gs.Game.Moves != snap.Game.Moves || gs.Game.Over || gs.Game.Turn != AIMark {
        cp := *gs
        s.mu.Unlock()
        log.WithField("move", move).Debug("discarding stale ai move")
        return &cp, nil
    }
    if err := gs.Game.PlayIndex(move); err != nil {
        s.mu.Unlock()
        log.WithError(err).WithField("move", move).Error("ai produced an illegal move")
        return nil, err
    }
    scoreLocked(gs)
    cp, b := s.commitLocked(gs)
    s.mu.Unlock()

    log.WithField("move", move).Debug("ai moved")
    s.fanout(b)
    s.finish(cp)
    return &cp, nil
}

// Reset starts a new round on the same game; scores are kept.
func (s *Service) Reset(id string) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    gs.Game = domain.New()
    gs.Round++
    cp, b := s.commitLocked(gs)
    s.mu.Unlock()
    s.fanout(b)
    return &cp, nil
}

// NewGame starts a new round and clears both scores.
func (s *Service) NewGame(id string) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    cp, b := s.newGameLocked(gs)
    s.mu.Unlock()
    s.fanout(b)
    return &cp, nil
}

// ToggleMode switches between VsAI and PvP and starts a new game.
func (s *Service) ToggleMode(id string) (*GameState, error) {
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    if gs.Mode == VsAI {
        gs.Mode = PvP
    } else {
        gs.Mode = VsAI
    }
    seatAILocked(gs)
    cp, b := s.newGameLocked(gs)
    s.mu.Unlock()

    logrus.WithFields(logrus.Fields{"game": id, "mode": cp.Mode}).Debug("mode toggled")
    s.fanout(b)
    return &cp, nil
}

func (s *Service) newGameLocked(gs *GameState) (GameState, broadcast) {
    gs.Game = domain.New()
    gs.Round++
    gs.ScoreX, gs.ScoreO = 0, 0
    return s.commitLocked(gs)
}

// seatAILocked gives the O seat to the computer in VsAI mode and frees it
// when switching to PvP.
func seatAILocked(gs *GameState) {
    switch {
    case gs.Mode == VsAI:
        gs.O = AIName
    case gs.O == AIName:
        gs.O = ""
    }
}

// SetDifficulty changes the policy used for the computer's next moves.
func (s *Service) SetDifficulty(id string, d ai.Difficulty) (*GameState, error) {
    if !d.Valid() {
        return nil, ai.ErrUnknownDifficulty
    }
    s.mu.Lock()
    gs, ok := s.games[id]
    if !ok {
        s.mu.Unlock()
        return nil, ErrNotFound
    }
    gs.Difficulty = d
    cp, b := s.commitLocked(gs)
    s.mu.Unlock()
    s.fanout(b)
    return &cp, nil
}

// scoreLocked credits the winner; call it once, right after the final move.
func scoreLocked(gs *GameState) {
    if !gs.Game.Over {
        return
    }
    switch gs.Game.Winner {
    case domain.X:
        gs.ScoreX++
    case domain.O:
        gs.ScoreO++
    }
}

// commitLocked snapshots state, subscribers and payload for a broadcast.
func (s *Service) commitLocked(gs *GameState) (GameState, broadcast) {
    gs.Updated = time.Now()
    cp := *gs
    s.seq++
    return cp, broadcast{subs: s.copySubsLocked(gs.ID), payload: s.render(cp), seq: s.seq}
}

// finish reports a finished game against the computer to the recorder.
func (s *Service) finish(gs GameState) {
    if !gs.Game.Over || gs.Mode != VsAI || s.recorder == nil {
        return
    }
    out := gs.Game.Outcome()
    log := logrus.WithFields(logrus.Fields{"game": gs.ID, "outcome": out.Kind, "winner": out.Mark.String()})
    log.Info("game finished")

    ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
    defer cancel()
    for _, p := range []struct {
        name string
        mark domain.Cell
    }{{gs.PlayerName, HumanMark}, {AIName, AIMark}} {
        r, _ := stats.ResultFor(out, p.mark)
        if err := s.recorder.Record(ctx, p.name, r); err != nil {
            log.WithError(err).WithField("player", p.name).Error("failed to record result")
        }
    }
}

// fanout delivers payload to every subscriber. A subscriber that has not
// read the previous payload only sees the latest one.
func (s *Service) fanout(b broadcast) {
    for sub := range b.subs {
        sub.deliver(b.payload, b.seq)
    }
}

// Subscribe registers a subscriber for a game. Returns a channel and an unsubscribe func.
func (s *Service) Subscribe(ctx context.Context, id string) (<-chan []byte, func()) {
    s.mu.Lock()
    defer s.mu.Unlock()
    if _, ok := s.games[id]; !ok {
        // create lazily to allow subscriptions before CreateGame in some flows
        s.games[id] = &GameState{ID: id, Game: domain.New(), Mode: PvP, Difficulty: ai.Normal, PlayerName: "Player 1", Created: time.Now(), Updated: time.Now()}
    }
    set := s.subs[id]
    if set == nil {
        set = make(map[*subscriber]struct{})
        s.subs[id] = set
    }
    sub := &subscriber{ch: make(chan []byte, 1)}
    set[sub] = struct{}{}

    unsubOnce := &sync.Once{}
    unsub := func() {
        unsubOnce.Do(func() {
            s.mu.Lock()
            if set, ok := s.subs[id]; ok {
                delete(set, sub)
            }
            s.mu.Unlock()
            sub.close()
        })
    }
    go func() {
        <-ctx.Done()
        unsub()
    }()
    return sub.ch, unsub
}

func (s *Service) copySubsLocked(id string) map[*subscriber]struct{} {
    out := make(map[*subscriber]struct{})
    if set, ok := s.subs[id]; ok {
        for k := range set {
            out[k] = struct{}{}
        }
    }
    return out
}
