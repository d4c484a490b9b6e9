package cli

import (
    "fmt"
    "text/tabwriter"

    "github.com/MakeNowJust/heredoc/v2"
    "github.com/spf13/cobra"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
    "github.com/jaminalder/tictactoe-fancy/internal/config"
    "github.com/jaminalder/tictactoe-fancy/internal/domain"
)

func Move(cfg *config.Config) *cobra.Command {
    cmd := &cobra.Command{
        Use:   "move board",
        Short: "Pick a move for the given board",
        Long: heredoc.Doc(`move prints the cell (0-8, row-major) the computer would
            play on board, written as nine characters of X, O and _.

            With --scores the minimax value of every empty cell is
            listed as well.`),
        Example: "  tictactoe move X___X____ --ai O --difficulty hard",
        Args:    cobra.ExactArgs(1),

        RunE: func(cmd *cobra.Command, args []string) error {
            b, err := domain.ParseBoard(args[0])
            if err != nil {
                return fmt.Errorf("%w: %q", err, args[0])
            }
            markFlag, _ := cmd.Flags().GetString("ai")
            aiMark, err := domain.ParseCell(markFlag)
            if err != nil {
                return err
            }
            d := cfg.Difficulty
            if cmd.Flags().Changed("difficulty") {
                v, _ := cmd.Flags().GetString("difficulty")
                if d, err = ai.ParseDifficulty(v); err != nil {
                    return err
                }
            }

            move, ok, err := ai.NewSelector(cfg.Source()).SelectMove(b, aiMark, aiMark.Opponent(), d)
            if err != nil {
                return err
            }
            out := cmd.OutOrStdout()
            if !ok {
                fmt.Fprintln(out, "no move")
            } else {
                fmt.Fprintln(out, move)
            }

            if show, _ := cmd.Flags().GetBool("scores"); show {
                tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
                fmt.Fprintln(tw, "cell\tscore")
                for _, m := range ai.ScoreMoves(b, aiMark, aiMark.Opponent()) {
                    fmt.Fprintf(tw, "%d\t%d\n", m.Index, m.Score)
                }
                return tw.Flush()
            }
            return nil
        },
    }
    cmd.Flags().String("ai", "O", "Mark played by the computer")
    cmd.Flags().StringP("difficulty", "d", "", "easy, normal or hard (default from config)")
    cmd.Flags().Bool("scores", false, "List the minimax score of every empty cell")
    return cmd
}
