package cli

import (
    "context"
    "errors"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/MakeNowJust/heredoc/v2"
    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "github.com/jaminalder/tictactoe-fancy/internal/ai"
    "github.com/jaminalder/tictactoe-fancy/internal/app"
    "github.com/jaminalder/tictactoe-fancy/internal/config"
    "github.com/jaminalder/tictactoe-fancy/internal/stats"
    "github.com/jaminalder/tictactoe-fancy/internal/web"
)

func Serve(cfg *config.Config) *cobra.Command {
    cmd := &cobra.Command{
        Use:   "serve",
        Short: "Run the web game",
        Long: heredoc.Doc(`serve starts the HTTP server. Finished games against the
            computer are recorded in the stats database, which defaults to
            game_stats.db under the XDG data directory.`),
        Args: cobra.NoArgs,

        RunE: func(cmd *cobra.Command, args []string) error {
            if cmd.Flags().Changed("addr") {
                cfg.Addr, _ = cmd.Flags().GetString("addr")
            }
            if cmd.Flags().Changed("db") {
                cfg.DBPath, _ = cmd.Flags().GetString("db")
            }
            return serve(cmd.Context(), *cfg)
        },
    }
    cmd.Flags().String("addr", "", "Listen address (default from config, :8080)")
    cmd.Flags().String("db", "", "Stats database path")
    return cmd
}

func serve(ctx context.Context, cfg config.Config) error {
    store, err := stats.Open(cfg.DBPath)
    if err != nil {
        return err
    }
    defer store.Close()

    sel := ai.NewSelector(cfg.Source())
    svc := app.NewService(app.WithMover(sel), app.WithRecorder(store))
    server := &http.Server{
        Addr:    cfg.Addr,
        Handler: web.NewServer(svc, web.WithLeaderboard(store), web.WithSelector(sel)),
    }

    serverErrCh := make(chan error, 1)
    go func() {
        if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            serverErrCh <- err
        }
        close(serverErrCh)
    }()

    if ctx == nil {
        ctx = context.Background()
    }
    sigCtx, stopSignals := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
    defer stopSignals()

    logrus.WithFields(logrus.Fields{"addr": cfg.Addr, "db": cfg.DBPath}).Info("listening")
    var runErr error
    select {
    case <-sigCtx.Done():
        logrus.Info("shutdown signal received")
    case err, ok := <-serverErrCh:
        if ok {
            runErr = err
        }
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
    defer cancel()
    if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
        logrus.WithError(err).Error("graceful shutdown failed")
        _ = server.Close()
    }
    return runErr
}
