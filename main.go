package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"daily-pick-ranker/app"
	"daily-pick-ranker/config"
	"daily-pick-ranker/logger"
)

const usage = `usage: daily-pick-ranker [command]

commands:
  serve    run the HTTP API (default)
  rank     run one ranking pass and print the result
  ingest   refresh price history and news for the universe
  daily    ingest, then rank
`

func main() {
	// Load config from .env file
	cfg := config.LoadFromEnv()

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	command := "serve"
	if len(os.Args) > 1 {
		command = os.Args[1]
	}

	if err := run(context.Background(), command, cfg, log); err != nil {
		log.Error("command failed", zap.String("command", command), zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, command string, cfg *config.Config, log *zap.Logger) error {
	switch command {
	case "serve", "rank", "ingest", "daily":
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}

	if !cfg.EnvFileLoaded {
		log.Info("no .env file found, using environment variables")
	}

	application := app.New(cfg, log)
	defer func() {
		if err := application.Close(); err != nil {
			log.Warn("shutdown error", zap.Error(err))
		}
	}()
	if err := application.Init(ctx); err != nil {
		return err
	}

	switch command {
	case "rank":
		result, err := application.Rank(ctx)
		printJSON(result)
		return err
	case "ingest":
		result, err := application.Ingest(ctx)
		printJSON(result)
		return err
	case "daily":
		result, err := application.Daily(ctx)
		printJSON(result)
		return err
	default:
		return application.Serve(ctx)
	}
}

func printJSON(v interface{}) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
