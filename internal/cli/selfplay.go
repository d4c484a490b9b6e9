package cli

import (
    "fmt"
    "io"
    "os"
    "time"

    "github.com/MakeNowJust/heredoc/v2"
    "github.com/briandowns/spinner"
    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
    "github.com/jaminalder/tictactoe-fancy/internal/config"
    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

// Tally counts finished self-play games.
type Tally struct {
    XWins, OWins, Draws int
}

func (t *Tally) add(out domain.Outcome) {
    switch {
    case out.Kind == domain.Draw:
        t.Draws++
    case out.Mark == domain.X:
        t.XWins++
    default:
        t.OWins++
    }
}

func (t Tally) Total() int { return t.XWins + t.OWins + t.Draws }

// SelfPlayOptions configures a run of computer-vs-computer games.
type SelfPlayOptions struct {
    Games int
    X, O  ai.Difficulty
    // EachOpening replays every game once per opening cell for X.
    EachOpening bool
}

// RunSelfPlay plays the configured games and tallies the outcomes.
func RunSelfPlay(sel *ai.Selector, opts SelfPlayOptions) (Tally, error) {
    var t Tally
    openings := []int{-1}
    if opts.EachOpening {
        openings = []int{0, 1, 2, 3, 4, 5, 6, 7, 8}
    }
    for g := 0; g < opts.Games; g++ {
        for _, open := range openings {
            var b domain.Board
            toMove := domain.X
            if open >= 0 {
                b[open] = domain.X
                toMove = domain.O
            }
            final, out, err := ai.PlayOut(sel, b, toMove, opts.X, opts.O)
            if err != nil {
                return t, err
            }
            logrus.WithFields(logrus.Fields{
                "board":   final.String(),
                "outcome": out.Kind,
                "winner":  out.Mark,
            }).Trace("self-play game finished")
            t.add(out)
        }
    }
    return t, nil
}

func SelfPlay(cfg *config.Config) *cobra.Command {
    cmd := &cobra.Command{
        Use:   "selfplay",
        Short: "Play the computer against itself",
        Long: heredoc.Doc(`selfplay runs games between two computer players and prints
            how many were won by each side or drawn. Two hard players should
            never produce anything but draws.`),
        Example: "  tictactoe selfplay --x hard --o easy --games 100",
        Args:    cobra.NoArgs,

        RunE: func(cmd *cobra.Command, args []string) error {
            var opts SelfPlayOptions
            var err error
            opts.Games, _ = cmd.Flags().GetInt("games")
            opts.EachOpening, _ = cmd.Flags().GetBool("each-opening")
            xs, _ := cmd.Flags().GetString("x")
            if opts.X, err = ai.ParseDifficulty(xs); err != nil {
                return err
            }
            oName, _ := cmd.Flags().GetString("o")
            if opts.O, err = ai.ParseDifficulty(oName); err != nil {
                return err
            }
            if opts.Games < 1 {
                return fmt.Errorf("--games must be positive, got %d", opts.Games)
            }

            s := spinner.New(spinner.CharSets[spinnerCharSet], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
            s.Suffix = fmt.Sprintf(" %s vs %s", opts.X, opts.O)
            s.Start()
            t, err := RunSelfPlay(ai.NewSelector(cfg.Source()), opts)
            s.Stop()
            if err != nil {
                return err
            }
            printTally(cmd.OutOrStdout(), opts, t)
            return nil
        },
    }
    cmd.Flags().IntP("games", "n", 10, "Number of games to play")
    cmd.Flags().String("x", "hard", "Difficulty of the X player")
    cmd.Flags().String("o", "hard", "Difficulty of the O player")
    cmd.Flags().Bool("each-opening", false, "Play every opening cell for X once per game")
    return cmd
}

const spinnerCharSet = 31

func printTally(w io.Writer, opts SelfPlayOptions, t Tally) {
    fmt.Fprintf(w, "X (%s) wins: %d\n", opts.X, t.XWins)
    fmt.Fprintf(w, "O (%s) wins: %d\n", opts.O, t.OWins)
    fmt.Fprintf(w, "draws: %d\n", t.Draws)
    fmt.Fprintf(w, "games: %d\n", t.Total())
}
