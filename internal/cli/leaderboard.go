package cli

import (
    "fmt"
    "text/tabwriter"

    "github.com/spf13/cobra"

    "github.com/jaminalder/tictactoe-fancy/internal/config"
    "github.com/jaminalder/tictactoe-fancy/internal/stats"
)

func Leaderboard(cfg *config.Config) *cobra.Command {
    cmd := &cobra.Command{
        Use:   "leaderboard",
        Short: "Print recorded results",
        Args:  cobra.NoArgs,

        RunE: func(cmd *cobra.Command, args []string) error {
            if cmd.Flags().Changed("db") {
                cfg.DBPath, _ = cmd.Flags().GetString("db")
            }
            store, err := stats.Open(cfg.DBPath)
            if err != nil {
                return err
            }
            defer store.Close()

            rows, err := store.Leaderboard(cmd.Context())
            if err != nil {
                return err
            }
            tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
            fmt.Fprintln(tw, "#\tplayer\twins\tlosses\tdraws")
            for i, r := range rows {
                fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%d\n", i+1, r.Name, r.Wins, r.Losses, r.Draws)
            }
            return tw.Flush()
        },
    }
    cmd.Flags().String("db", "", "Stats database path")
    return cmd
}
