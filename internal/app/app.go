package app

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"

	"chatcore/internal/maintenance"
	"chatcore/pkg/chat"
	"chatcore/pkg/config"
	"chatcore/pkg/migrate"
	"chatcore/pkg/models"
	"chatcore/pkg/state"
	"chatcore/pkg/store"
	"chatcore/pkg/validation"
)

// App encapsulates the server components and lifecycle.
type App struct {
	eff       config.EffectiveConfigResult
	version   string
	commit    string
	buildDate string
}

// New initializes resources that do not require a running context (DB,
// runtime keys, messaging limits, validation rules). Call Run to start the
// HTTP server and maintenance scheduler and block until shutdown.
func New(eff config.EffectiveConfigResult, version, commit, buildDate string) (*App, error) {
	_ = godotenv.Load(".env")

	// validate effective config early and fail fast
	if err := validateConfig(eff); err != nil {
		return nil, err
	}

	// runtime keys: backend keys double as signing secrets
	runtimeCfg := &config.RuntimeConfig{BackendKeys: map[string]struct{}{}, SigningKeys: map[string]struct{}{}}
	for _, k := range eff.Config.Security.APIKeys.Backend {
		runtimeCfg.BackendKeys[k] = struct{}{}
		runtimeCfg.SigningKeys[k] = struct{}{}
	}
	config.SetRuntime(runtimeCfg)

	// messaging limits
	msg := eff.Config.Messaging
	chat.Configure(msg.DefaultPageSize, msg.MaxPageSize, msg.MaxContentBytes.Int64())

	// validation rules
	initValidation(eff)

	// runtime folder layout, then open store
	if err := state.EnsureStateDirs(eff.DBPath); err != nil {
		return nil, fmt.Errorf("state dirs under %s: %w", eff.DBPath, err)
	}
	if err := store.Open(eff.DBPath); err != nil {
		return nil, fmt.Errorf("failed to open pebble at %s: %w", eff.DBPath, err)
	}
	if err := migrate.Sync(context.Background()); err != nil {
		return nil, fmt.Errorf("schema migration: %w", err)
	}

	return &App{eff: eff, version: version, commit: commit, buildDate: buildDate}, nil
}

// Run starts the maintenance scheduler and the HTTP server, and blocks
// until ctx is canceled or a fatal server error occurs.
func (a *App) Run(ctx context.Context) error {
	a.printBanner()

	stopMaint, err := maintenance.Start(ctx, a.eff)
	if err != nil {
		return err
	}
	defer stopMaint()

	errCh := a.startHTTP(ctx)

	select {
	case <-ctx.Done():
		return nil
	case err := <-errCh:
		return err
	}
}

// initValidation builds content rules from config and sets them globally.
func initValidation(eff config.EffectiveConfigResult) {
	var vr validation.Rules
	for _, t := range eff.Config.Messaging.AllowedTypes {
		vr.AllowedTypes = append(vr.AllowedTypes, models.ParseMessageType(t))
	}
	vr.MaxAttachments = eff.Config.Messaging.MaxAttachments
	validation.SetRules(vr)
}
