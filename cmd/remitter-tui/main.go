package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v2"

	"github.com/Azahorscak/remitter-tui/internal/api"
	"github.com/Azahorscak/remitter-tui/internal/config"
	"github.com/Azahorscak/remitter-tui/internal/logger"
	"github.com/Azahorscak/remitter-tui/internal/mockserver"
	"github.com/Azahorscak/remitter-tui/internal/tui"
)

const (
	envAPIURL   = "REMITTER_API_URL"
	envAPIToken = "REMITTER_API_TOKEN"
)

func main() {
	app := &cli.App{
		Name:  "remitter-tui",
		Usage: "view and edit your remittance bank details",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api-url", Usage: "remitter API base URL", EnvVars: []string{envAPIURL}},
			&cli.StringFlag{Name: "token", Usage: "bearer token for the remitter API", EnvVars: []string{envAPIToken}},
			&cli.StringFlag{Name: "secret", Usage: "Kubernetes secret holding the token, as namespace/name"},
			&cli.StringFlag{Name: "kubeconfig", Usage: "path to kubeconfig (default: in-cluster, then ~/.kube/config)"},
			&cli.BoolFlag{Name: "read-only", Usage: "disable editing; only show the stored details"},
			&cli.DurationFlag{Name: "timeout", Usage: "per-request timeout", Value: config.DefaultTimeout},
			&cli.StringFlag{Name: "env-file", Usage: "dotenv file to load before resolving settings", Value: ".env"},
			&cli.StringFlag{Name: "log-file", Usage: "write JSON logs to this file"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error", Value: "info"},
		},
		Before: func(c *cli.Context) error {
			return config.LoadEnvFile(c.String("env-file"), c.IsSet("env-file"))
		},
		Action: runTUI,
		Commands: []*cli.Command{
			{
				Name:  "mock",
				Usage: "serve an in-memory remitter API for local development",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "addr", Usage: "listen address", Value: ":8000"},
					&cli.StringSliceFlag{Name: "token", Usage: "authorised bearer token (repeatable)"},
					&cli.StringSliceFlag{Name: "read-only-token", Usage: "bearer token that may only read (repeatable)"},
				},
				Action: runMock,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "remitter-tui: %v\n", err)
		os.Exit(1)
	}
}

// fromFlagOrEnv prefers an explicit flag value, then the environment. The
// environment is consulted again here because the env file is loaded after
// flags are parsed.
func fromFlagOrEnv(c *cli.Context, name, env string) string {
	if v := c.String(name); v != "" {
		return v
	}
	return os.Getenv(env)
}

func openLogger(c *cli.Context) (*slog.Logger, func(), error) {
	path := c.String("log-file")
	if path == "" {
		return logger.Discard(), func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return logger.New(c.String("log-level"), f), func() { _ = f.Close() }, nil
}

func runTUI(c *cli.Context) error {
	log, closeLog, err := openLogger(c)
	if err != nil {
		return err
	}
	defer closeLog()

	cfg, err := config.Load(c.Context, config.Options{
		BaseURL:    fromFlagOrEnv(c, "api-url", envAPIURL),
		Token:      fromFlagOrEnv(c, "token", envAPIToken),
		Secret:     c.String("secret"),
		Kubeconfig: c.String("kubeconfig"),
		Timeout:    c.Duration("timeout"),
	})
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	log.Info("starting", "base_url", cfg.BaseURL, "timeout", cfg.Timeout.String())

	client := api.NewClient(cfg, log)
	m := tui.New(client,
		tui.WithLogger(log),
		tui.WithTimeout(cfg.Timeout),
		tui.WithReadOnly(c.Bool("read-only")),
	)

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

func runMock(c *cli.Context) error {
	log := logger.New(c.String("log-level"), os.Stderr)

	srv := mockserver.New(log)
	for _, t := range c.StringSlice("token") {
		srv.AddUser(t, false)
	}
	for _, t := range c.StringSlice("read-only-token") {
		srv.AddUser(t, true)
	}

	httpServer := &http.Server{
		Addr:              c.String("addr"),
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	log.Info("mock remitter API listening", "addr", httpServer.Addr)

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errChan:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}
