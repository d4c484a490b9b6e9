package web

import (
    "bytes"
    "html/template"
    "net/http"
    "strings"

    "github.com/google/uuid"

    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

type templates struct {
    base        *template.Template
    game        *template.Template
    board       *template.Template
    index       *template.Template
    leaderboard *template.Template
}

func funcs() template.FuncMap {
    return template.FuncMap{
        "iter": func(n int) []int { a := make([]int, n); for i := range a { a[i] = i }; return a },
        "cellSymbol": func(c domain.Cell) string { return c.String() },
        "eq":  func(a, b any) bool { return a == b },
        "add": func(a, b int) int { return a + b },
        "mul": func(a, b int) int { return a * b },
    }
}

func loadTemplates() *templates {
    base := template.Must(template.New("base").Funcs(funcs()).Parse(`<!doctype html><html><head>
<meta charset="utf-8"/>
<script src="https://unpkg.com/htmx.org@1.9.12"></script>
<script src="https://unpkg.com/htmx.org/dist/ext/sse.js"></script>
</head><body>{{template "content" .}}</body></html>`))
    index := template.Must(template.Must(base.Clone()).New("content").Parse(indexTemplate))
    game := template.Must(template.Must(base.Clone()).New("content").Parse(`
<div hx-ext="sse" hx-sse="connect:/game/{{.Game.ID}}/events">
  <div id="board-container" hx-sse="swap:board">{{.BoardHTML}}</div>
</div>
<p><a href="/leaderboard">Leaderboard</a></p>`))
    leaderboard := template.Must(template.Must(base.Clone()).New("content").Parse(leaderboardTemplate))
    // Standalone board template used for fragment rendering
    board := template.Must(template.New("board_only").Funcs(funcs()).Parse(boardTemplate))
    return &templates{base: base, game: game, board: board, index: index, leaderboard: leaderboard}
}

func renderTemplate(t *template.Template, name string, data any) []byte {
    var buf bytes.Buffer
    if name == "" {
        _ = t.Execute(&buf, data)
    } else {
        _ = t.ExecuteTemplate(&buf, name, data)
    }
    return buf.Bytes()
}

// flattenHTML keeps a fragment on one line so it fits in a single SSE data field.
func flattenHTML(b []byte) []byte {
    return []byte(strings.Join(strings.Fields(string(b)), " "))
}

const indexTemplate = `<h1>TicTacToe</h1>
<form action="/game" method="post">
  <label>Name <input name="name" value="Player 1"></label>
  <select name="mode">
    <option value="ai" selected>vs AI</option>
    <option value="pvp">Two players</option>
  </select>
  <select name="difficulty">
    <option value="easy">Easy</option>
    <option value="normal" selected>Normal</option>
    <option value="hard">Hard</option>
  </select>
  <button>Create</button>
</form>
<p><a href="/leaderboard">Leaderboard</a></p>`

const boardTemplate = `
<div id="board" data-mode="{{.Mode}}" data-difficulty="{{.Difficulty}}">
  {{if .Error}}
  <div class="alert">{{.Error}}</div>
  {{end}}
  <div class="status">{{.Status}}</div>
  <div class="score">X {{.ScoreX}} : {{.ScoreO}} O</div>
  {{/* 3x3 grid */}}
  {{range $r := iter 3}}
  <div class="row">
    {{range $c := iter 3}}
      {{$i := add (mul $r 3) $c}}
      <form hx-post="/game/{{$.ID}}/play" hx-target="#board" hx-swap="outerHTML" method="post">
        <input type="hidden" name="r" value="{{$r}}">
        <input type="hidden" name="c" value="{{$c}}">
        <button type="submit"{{if index $.WinCells $i}} class="winner"{{end}}>{{cellSymbol (index $.Game.Board $i)}}</button>
      </form>
    {{end}}
  </div>
  {{end}}
  {{if eq .Mode "ai"}}
  <form hx-post="/game/{{.ID}}/difficulty" hx-target="#board" hx-swap="outerHTML" method="post">
    {{range .Difficulties}}
    <button name="difficulty" value="{{.}}"{{if eq . $.Difficulty}} class="selected"{{end}}>{{.}}</button>
    {{end}}
  </form>
  {{end}}
  <form hx-post="/game/{{.ID}}/reset" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">Reset</button>
  </form>
  <form hx-post="/game/{{.ID}}/new" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">New game</button>
  </form>
  <form hx-post="/game/{{.ID}}/mode" hx-target="#board" hx-swap="outerHTML" method="post">
    <button type="submit">{{if eq .Mode "ai"}}Play a friend{{else}}Play the computer{{end}}</button>
  </form>
</div>
`

const leaderboardTemplate = `<h1>Leaderboard</h1>
<table id="leaderboard">
  <tr><th>Name</th><th>Wins</th><th>Losses</th><th>Draws</th><th>Last played</th></tr>
  {{range .}}
  <tr><td>{{.Name}}</td><td>{{.Wins}}</td><td>{{.Losses}}</td><td>{{.Draws}}</td><td>{{.LastPlayed.Format "2006-01-02 15:04"}}</td></tr>
  {{end}}
</table>
<p><a href="/">Back</a></p>`

// Helper to set cookie
func ensurePlayerCookie(w http.ResponseWriter, r *http.Request) string {
    if c, err := r.Cookie("player_id"); err == nil && c.Value != "" {
        return c.Value
    }
    // Generate UUIDv4 for player ID
    v := uuid.NewString()
    http.SetCookie(w, &http.Cookie{Name: "player_id", Value: v, Path: "/"})
    return v
}
