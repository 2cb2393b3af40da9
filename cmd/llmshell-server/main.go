package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/llmshell/supervisor/internal/config"
	"github.com/llmshell/supervisor/internal/httpapi"
	"github.com/llmshell/supervisor/internal/logstore"
	"github.com/llmshell/supervisor/internal/probe"
	"github.com/llmshell/supervisor/internal/supervisor"
	"github.com/llmshell/supervisor/pkg/fmtt"
)

func newLogger() *zap.Logger {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	return zap.Must(logConfig.Build())
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "llmshell-server",
		Short: "single-session process supervisor over a local HTTP API",
	}
	v := config.Bind(cmd)

	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return run(v)
	}
	return cmd
}

func run(v *viper.Viper) error {
	log := newLogger()
	defer log.Sync()
	log = log.Named("main")

	cfg, err := config.Resolve(v)
	if err != nil {
		log.Error("invalid configuration", zap.Error(err))
		return err
	}

	store := logstore.NewStore(cfg.LogDir)
	probeSrc := probe.NewGopsutilSource(200 * time.Millisecond)
	sup := supervisor.New(log, store, probeSrc, supervisor.Config{
		WorkDir: cfg.WorkDir,
		Env:     supervisor.DefaultEnviron(),
	})

	router := httpapi.NewRouter(log, sup, store, httpapi.Options{
		DevCORS: os.Getenv("ENV") == "dev",
	})

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr()))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			if os.Getenv("LLM_SHELL_DEBUG_ERRORS") != "" {
				fmtt.PrintErrChainDebug(err)
			} else {
				fmtt.PrintErrChain(err)
			}
			return err
		}
	case <-ctx.Done():
		log.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		sup.Shutdown(shutdownCtx)
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn("server shutdown error", zap.Error(err))
		}
	}

	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
