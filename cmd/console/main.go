package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/otcheredev/hms-console/internal/config"
	"github.com/otcheredev/hms-console/internal/console"
	"github.com/otcheredev/hms-console/internal/guard"
	"github.com/otcheredev/hms-console/internal/metrics"
	"github.com/otcheredev/hms-console/internal/store"
	apperrors "github.com/otcheredev/hms-console/pkg/errors"
	"github.com/otcheredev/hms-console/pkg/logger"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "hms-console",
		Short:         "Hospital staff console",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(loginCmd())
	rootCmd.AddCommand(logoutCmd())
	rootCmd.AddCommand(whoamiCmd())
	rootCmd.AddCommand(menuCmd())
	rootCmd.AddCommand(navigateCmd())
	rootCmd.AddCommand(dashboardCmd())
	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(appointmentsCmd())
	rootCmd.AddCommand(recordsCmd())
	rootCmd.AddCommand(billsCmd())
	rootCmd.AddCommand(doctorsCmd())
	rootCmd.AddCommand(healthCmd())

	if err := rootCmd.Execute(); err != nil {
		if appErr, ok := apperrors.As(err); ok {
			fmt.Fprintln(os.Stderr, "error:", appErr.UserMessage())
		} else {
			fmt.Fprintln(os.Stderr, "error:", err)
		}
		os.Exit(1)
	}
}

// app is one console run: configuration, the console itself and an optional
// metrics endpoint
type app struct {
	cfg     *config.Config
	console *console.Console
	metrics *http.Server
}

func openApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	logger.InitWithWriter(cfg.Log.Level, cfg.Log.Format, os.Stderr)

	st, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg}
	m := metrics.Noop()
	if cfg.Metrics.Enabled {
		reg := prometheus.NewRegistry()
		m = metrics.New(reg)
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		a.metrics = &http.Server{Addr: cfg.Metrics.Addr, Handler: mux}
		go func() {
			if err := a.metrics.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Warn().Err(err).Msg("Metrics endpoint failed")
			}
		}()
	}

	a.console = console.New(console.Config{
		BaseURL: cfg.API.BaseURL,
		Timeout: cfg.API.Timeout,
		Store:   st,
		Metrics: m,
	})
	if err := a.console.Start(ctx); err != nil {
		a.Close()
		return nil, err
	}
	return a, nil
}

func openStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Session.Store {
	case "redis":
		st, err := store.NewRedisStore(cfg.RedisAddr(), cfg.Redis.Password, cfg.Redis.DB, cfg.Scope())
		if err != nil {
			return nil, fmt.Errorf("failed to open redis session store: %w", err)
		}
		return st, nil
	case "file":
		st, err := store.NewFileStore(cfg.Session.FilePath, cfg.Scope())
		if err != nil {
			return nil, fmt.Errorf("failed to open session file: %w", err)
		}
		return st, nil
	default:
		return store.NewMemoryStore(cfg.Scope()), nil
	}
}

func (a *app) Close() {
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		a.metrics.Shutdown(ctx)
	}
	if err := a.console.Close(); err != nil {
		log.Warn().Err(err).Msg("Failed to close console")
	}
}

// open shows location, failing when the guard sends the user elsewhere
func (a *app) open(ctx context.Context, location string) error {
	d, err := a.console.Navigate(ctx, location)
	if err != nil {
		return err
	}
	switch d.State {
	case guard.StateGranted:
		return nil
	case guard.StateDeniedUnauthenticated:
		return apperrors.NewAuthError(apperrors.AuthReasonSessionExpired, "sign in to open "+location, nil)
	default:
		return apperrors.NewForbiddenError(fmt.Sprintf("%s is not available to your role; go to %s", location, d.RedirectTo))
	}
}

// run opens the app, runs fn and closes it
func run(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
