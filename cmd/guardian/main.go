// Command guardian runs the treasury guardian API: it scans Ethereum
// addresses for treasury holdings, scores their risk, proposes protective
// actions and applies the governance policy.
//
// Usage:
//
//	guardian --config config.yaml
//	guardian --setup          (interactive configuration wizard)
//	guardian                  (flags / environment variables)
//
// Optional environment variables: PORT, RPC_URL, LLM_ENDPOINT, LLM_MODEL,
// LLM_ENABLED. A .env file in the working directory is loaded when present.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/fyclub/treasury-guardian/config"
	"github.com/fyclub/treasury-guardian/internal/history"
	"github.com/fyclub/treasury-guardian/internal/llm"
	"github.com/fyclub/treasury-guardian/internal/scheduler"
	"github.com/fyclub/treasury-guardian/internal/server"
	"github.com/fyclub/treasury-guardian/internal/services/governance"
	"github.com/fyclub/treasury-guardian/internal/services/planner"
	"github.com/fyclub/treasury-guardian/internal/services/risk"
	"github.com/fyclub/treasury-guardian/internal/services/watcher"
	"github.com/fyclub/treasury-guardian/internal/services/workflow"
	"github.com/fyclub/treasury-guardian/internal/setup"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) > 1 && os.Args[1] == "--setup" {
		if err := setup.RunTUI(); err != nil {
			log.Fatal(err)
		}
		os.Args = append(os.Args[:1], "--config", setup.GeneratedConfigFile)
	}

	cfg, err := config.Get()
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	var llmClient llm.Client
	if cfg.LLM.Enabled {
		llmClient = llm.NewOllamaClient(llm.Config{
			Endpoint:    cfg.LLM.Endpoint,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			TopP:        cfg.LLM.TopP,
			Timeout:     cfg.LLM.Timeout,
			MaxRetries:  cfg.LLM.MaxRetries,
		})
	} else {
		logger.Info("LLM disabled, running deterministic fallbacks only")
	}

	store := history.NewStore(cfg.HistoryCapacity)
	wf := workflow.New(
		watcher.New(cfg.RPCURL, cfg.ETHPriceUSD),
		risk.New(llmClient, logger),
		planner.New(llmClient, logger),
		governance.New(llmClient, logger),
		store,
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(wf, cfg.Watch.Addresses, logger)
	if err := sched.Start(ctx, cfg.Watch.Interval); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	srv := server.New(cfg.ListenAddr, wf, store, logger)

	errCh := make(chan error, 1)
	go func() {
		if len(cfg.TLSDomains) > 0 {
			errCh <- srv.StartWithAutoTLS(ctx, cfg.TLSDomains, cfg.TLSCacheDir)
			return
		}
		errCh <- srv.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		cancel()
		<-errCh
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server failed", zap.Error(err))
		}
	}
}
