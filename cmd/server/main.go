package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dkeye/lanhub/internal/adapters/control"
	router "github.com/dkeye/lanhub/internal/adapters/http"
	"github.com/dkeye/lanhub/internal/app"
	"github.com/dkeye/lanhub/internal/app/orch"
	"github.com/dkeye/lanhub/internal/config"
	"github.com/dkeye/lanhub/internal/server"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "lanhub",
		Short:         "LAN relay for chat, files, screen sharing and media",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				log.Error().Err(err).Msg("failed to load config")
				return err
			}
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			if err := run(ctx, cfg); err != nil {
				log.Error().Err(err).Msg("server error")
				return err
			}
			return nil
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

func init() {
	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}

func setLogLevel(name string) {
	lvl, err := zerolog.ParseLevel(name)
	if err != nil {
		log.Warn().Str("level", name).Msg("unknown log level, keeping current")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}

func run(ctx context.Context, cfg *config.Config) error {
	setLogLevel(cfg.LogLevel)
	cfg.Watch(func(next *config.Config) {
		setLogLevel(next.LogLevel)
	})

	policy, err := app.PolicyByName(cfg.Backpressure)
	if err != nil {
		return err
	}
	reg := app.NewRegistry()
	o := orch.New(reg, app.NewPresenter(), app.NewFileStore(), policy)
	o.MaxFileSize = cfg.MaxFileSize

	hub := router.NewEventHub(cfg.SendQueue)
	o.Events = hub

	ctl := control.NewController(o)
	ctl.MaxFrameSize = cfg.MaxFrameSize
	ctl.SendQueue = cfg.SendQueue
	ctl.WriteTimeout = cfg.WriteTimeout
	if cfg.ChatRateLimit > 0 {
		ctl.ChatLimiter = control.NewRateLimiter(cfg.ChatRateLimit, cfg.ChatRateInterval)
	}

	srv := server.New(server.Options{
		Host:          cfg.Host,
		ControlPort:   cfg.ControlPort,
		VideoPort:     cfg.VideoPort,
		AudioPort:     cfg.AudioPort,
		UDPBufferSize: cfg.UDPBufferSize,
	}, ctl, reg)
	if err := srv.Listen(); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.Run(ctx) })

	if cfg.HTTPPort > 0 {
		addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.HTTPPort))
		httpSrv := &http.Server{
			Addr:    addr,
			Handler: router.SetupRouter(ctx, cfg, o, srv.Relays(), hub),
		}
		g.Go(func() error {
			log.Info().Str("addr", addr).Msg("admin API started")
			if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("admin API: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer shutdownCancel()
			hub.Close()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				log.Error().Err(err).Msg("admin API forced to shutdown")
			}
			return nil
		})
	}

	log.Info().Msg("lanhub started")
	err = g.Wait()
	log.Info().Msg("Server exited gracefully")
	return err
}
