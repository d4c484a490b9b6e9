package cli

import (
    "github.com/MakeNowJust/heredoc/v2"
    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "github.com/jaminalder/tictactoe-fancy/internal/config"
)

// Root builds the tictactoe command tree.
func Root() *cobra.Command {
    cfg := &config.Config{}

    root := &cobra.Command{
        Use:   "tictactoe",
        Short: "Tic-tac-toe against a minimax opponent",
        Long: heredoc.Doc(`tictactoe serves a browser game of tic-tac-toe against a
            computer opponent with easy, normal and hard difficulty, keeps a
            leaderboard of results, and exposes the move engine on the
            command line.`),
        Args: cobra.NoArgs,

        SilenceErrors: true,
        SilenceUsage:  true,

        PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
            path, _ := cmd.Flags().GetString("config")
            loaded, err := config.Load(path)
            if err != nil {
                return err
            }
            *cfg = loaded
            if cmd.Flags().Changed("log-level") {
                cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
            }

            level, err := logrus.ParseLevel(cfg.LogLevel)
            if err != nil {
                return err
            }
            logrus.SetLevel(level)
            // If --trace flag is provided, set logging level to Trace.
            if cmd.Flag("trace").Changed {
                logrus.SetLevel(logrus.TraceLevel)
            }
            return nil
        },
    }

    // global flags
    root.PersistentFlags().StringP("config", "c", "", "Path to a YAML config file")
    root.PersistentFlags().BoolP("trace", "t", false, "Show Trace Information")
    root.PersistentFlags().String("log-level", "", "Logging level (default from config, info)")

    root.AddCommand(Serve(cfg))
    root.AddCommand(Move(cfg))
    root.AddCommand(SelfPlay(cfg))
    root.AddCommand(Leaderboard(cfg))

    return root
}
