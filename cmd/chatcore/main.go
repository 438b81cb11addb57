package main

import (
	"context"

	"github.com/joho/godotenv"

	"chatcore/internal/app"
	"chatcore/pkg/config"
	"chatcore/pkg/logger"
	"chatcore/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	_ = godotenv.Load(".env")
	logger.Init()

	flags := config.ParseCommandFlags()
	cfgPath := config.ResolveConfigPath(flags.Config, flags.Set["config"])

	cfg, envUsed, err := config.LoadEffective(cfgPath)
	if err != nil {
		shutdown.Abort("failed to load config", err, "", 0)
	}
	logger.InitWithLevel(cfg.Logging.Level)

	// flags win over env/config for addr and db path
	addr := cfg.Addr()
	if flags.Set["addr"] {
		addr = flags.Addr
	}
	dbPath := cfg.Server.DBPath
	if dbPath == "" || flags.Set["db"] {
		dbPath = flags.DB
	}

	source := "config"
	switch {
	case len(flags.Set) > 0:
		source = "flags"
	case envUsed:
		source = "env"
	}

	eff := config.EffectiveConfigResult{Config: cfg, Addr: addr, DBPath: dbPath, Source: source}

	a, err := app.New(eff, version, commit, buildDate)
	if err != nil {
		shutdown.Abort("startup failed", err, dbPath, 0)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		shutdown.Abort("server exited", err, dbPath, 0)
	}
	logger.Info("shutdown_complete")
}
