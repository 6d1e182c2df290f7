package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/scribekit/scribe/internal/agent"
	"github.com/scribekit/scribe/internal/config"
	"github.com/scribekit/scribe/internal/events"
	"github.com/scribekit/scribe/internal/ledger"
	"github.com/scribekit/scribe/internal/models"
	"github.com/scribekit/scribe/internal/skills"
	"github.com/scribekit/scribe/internal/storage"
)

// runtime bundles the long-lived pieces a command needs to serve
// conversations.
type runtime struct {
	cfg      *config.Config
	bus      *events.Bus
	registry *skills.Registry
	engine   *agent.Engine
	eventLog *storage.EventLogger
}

// setupLogging points slog at stderr with the level chosen by --debug.
func setupLogging(cmd *cli.Command) {
	level := slog.LevelInfo
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// loadConfig loads the config named by --config, falling back to defaults
// when the file is missing.
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	path := cmd.String("config")
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	return cfg, nil
}

// setupRuntime wires the full conversation stack: event bus, skill
// registry (builtins plus discovered packages), model, ledger, and engine.
func setupRuntime(ctx context.Context, cmd *cli.Command) (*runtime, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	bus := events.NewBus(cfg.Events.BufferSize)

	registry, err := setupSkills(ctx, cfg, bus)
	if err != nil {
		bus.Close()
		return nil, err
	}

	modelRegistry := models.NewRegistry(cfg.Models)
	chatModel, err := modelRegistry.Default(ctx)
	if err != nil {
		registry.Close(ctx)
		bus.Close()
		return nil, fmt.Errorf("init default model: %w", err)
	}

	store := ledger.NewFileStore(config.ConversationsPath())

	loop := agent.NewLoop(agent.LoopConfig{
		ChatModel:     chatModel,
		Invoker:       agent.NewInvoker(registry, bus),
		Registry:      registry,
		SystemPrompt:  cfg.Agent.SystemPrompt,
		MaxIterations: cfg.Agent.MaxIterations,
	})

	return &runtime{
		cfg:      cfg,
		bus:      bus,
		registry: registry,
		engine:   agent.NewEngine(store, loop, bus),
		eventLog: storage.NewEventLogger(config.LogsPath(), bus),
	}, nil
}

// setupSkills builds the registry with builtins and every configured
// skill directory.
func setupSkills(ctx context.Context, cfg *config.Config, bus *events.Bus) (*skills.Registry, error) {
	registry := skills.NewRegistry()

	if err := skills.RegisterBuiltins(ctx, registry); err != nil {
		return nil, fmt.Errorf("register builtin skills: %w", err)
	}

	for _, dir := range cfg.Skills.Dirs {
		if err := registry.Discover(ctx, dir); err != nil {
			registry.Close(ctx)
			return nil, fmt.Errorf("discover skills in %s: %w", dir, err)
		}
	}

	for _, d := range registry.List() {
		bus.Publish(events.NewTypedEvent(events.SourceRegistry, events.SkillRegisteredPayload{
			Name:        d.Name,
			Description: d.Description,
		}))
	}
	for _, w := range registry.Warnings() {
		bus.Publish(events.NewTypedEvent(events.SourceRegistry, events.SkillSkippedPayload{
			Path:   w.Path,
			Reason: w.Reason,
		}))
	}

	return registry, nil
}

// close releases everything setupRuntime acquired.
func (rt *runtime) close(ctx context.Context) {
	rt.eventLog.Close()
	rt.registry.Close(ctx)
	rt.bus.Close()
}
