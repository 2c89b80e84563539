package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"mc-launcher/apperr"
	"mc-launcher/config"
	"mc-launcher/db"
	"mc-launcher/identity"
	"mc-launcher/logger"
	"mc-launcher/mods"
	"mc-launcher/mojang"
	"mc-launcher/pipeline"
	"mc-launcher/profile"
	"mc-launcher/session"
	"mc-launcher/skin"

	"go.uber.org/zap"
)

// app bundles the components every command works with.
type app struct {
	cfg        config.Config
	identities *identity.Store
	profiles   *profile.Store
	mods       *mods.Registry
	client     *mojang.Client
}

// bootstrap handles shared initialization logic for commands.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := db.OpenStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", cfg.StoreBackend, err)
	}
	logger.Log.Infow("Store initialized", zap.String("backend", cfg.StoreBackend), zap.String("path", cfg.DatabasePath))

	return newApp(cfg, store)
}

func newApp(cfg config.Config, store db.Store) (*app, error) {
	client, err := mojang.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:        cfg,
		identities: identity.NewStore(store, identity.WithLogger(logger.Named("identity"))),
		profiles: profile.NewStore(store,
			profile.WithGameRoot(filepath.ToSlash(cfg.MinecraftDir)),
			profile.WithJavaPath(cfg.JavaPath),
			profile.WithLogger(logger.Named("profile"))),
		mods: mods.NewRegistry(store,
			mods.WithInstallDelay(pipeline.Delay{Min: cfg.InstallDelayMin, Max: cfg.InstallDelayMax}),
			mods.WithLogger(logger.Named("mods"))),
		client: client,
	}, nil
}

func (a *app) newSession() *session.Session {
	return session.New(
		session.WithTiming(session.Timing{
			Phase:  pipeline.Delay{Min: a.cfg.LaunchDelayMin, Max: a.cfg.LaunchDelayMax},
			Settle: a.cfg.LaunchSettleDelay,
		}),
		session.WithLogger(logger.Named("session")),
	)
}

func (a *app) skinStorage(ctx context.Context) (skin.Storage, error) {
	return skin.NewStorage(ctx, a.cfg)
}

// resolveProfile returns profile id, or the default profile when id is empty.
// Without a default it falls back to the first stored profile.
func (a *app) resolveProfile(ctx context.Context, id string) (profile.Profile, error) {
	if id != "" {
		p, ok, err := a.profiles.Get(ctx, id)
		if err != nil {
			return profile.Profile{}, err
		}
		if !ok {
			return profile.Profile{}, fmt.Errorf("%w: no profile with id %q", apperr.ErrNotFound, id)
		}
		return p, nil
	}

	all, err := a.profiles.Load(ctx)
	if err != nil {
		return profile.Profile{}, err
	}
	for _, p := range all {
		if p.ID == profile.DefaultID {
			return p, nil
		}
	}
	if len(all) == 0 {
		return profile.Profile{}, fmt.Errorf("%w: no profiles exist, create one with 'profile create'", apperr.ErrNotFound)
	}
	return all[0], nil
}

// resolveIdentity returns the named identity, or the most recent one.
func (a *app) resolveIdentity(ctx context.Context, username string) (identity.Identity, error) {
	if username != "" {
		id, ok, err := a.identities.Find(ctx, username)
		if err != nil {
			return identity.Identity{}, err
		}
		if !ok {
			return identity.Identity{}, fmt.Errorf("%w: no account named %q, run 'login %s' first", apperr.ErrNotFound, username, username)
		}
		return id, nil
	}
	id, ok, err := a.identities.MostRecent(ctx)
	if err != nil {
		return identity.Identity{}, err
	}
	if !ok {
		return identity.Identity{}, fmt.Errorf("%w: no account, run 'login <username>' first", apperr.ErrNotFound)
	}
	return id, nil
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}
