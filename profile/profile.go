package profile

import (
	"context"
	"fmt"
	"math/rand"
	"path"
	"strings"
	"time"

	"mc-launcher/apperr"
	"mc-launcher/db"
	"mc-launcher/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollectionKey is the blob key holding all game profiles.
const CollectionKey = "game_profiles"

const (
	DefaultID      = "default-vanilla"
	DefaultName    = "Latest Release"
	DefaultVersion = "1.21.1"

	defaultRAMMin      = 2
	defaultRAMMax      = 4
	defaultResolutionW = 1920
	defaultResolutionH = 1080
	defaultJVMArgs     = "-XX:+UseG1GC -XX:+UnlockExperimentalVMOptions"
	copySuffix         = " (Copy)"
)

var icons = []string{"🧱", "⚔️", "📦", "🧪", "🏹"}

// Loader is the mod loader a profile runs with.
type Loader string

const (
	Vanilla Loader = "vanilla"
	Forge   Loader = "forge"
	Fabric  Loader = "fabric"
)

var Loaders = []Loader{Vanilla, Forge, Fabric}

func ParseLoader(s string) (Loader, error) {
	l := Loader(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Loaders {
		if l == known {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown loader %q (want vanilla, forge or fabric)", apperr.ErrValidation, s)
}

// SupportsMods is false for vanilla, where mods are a no-op concept.
func (l Loader) SupportsMods() bool {
	return l == Forge || l == Fabric
}

// Profile is a named launch configuration. RAM bounds are in gigabytes.
type Profile struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	VersionID     string    `json:"versionId"`
	Loader        Loader    `json:"loader"`
	LoaderVersion string    `json:"loaderVersion,omitempty"`
	GameDir       string    `json:"gameDir"`
	JavaPath      string    `json:"javaPath"`
	RAMMin        int       `json:"ramMin"`
	RAMMax        int       `json:"ramMax"`
	JVMArgs       string    `json:"jvmArgs"`
	ResolutionW   int       `json:"resolutionW"`
	ResolutionH   int       `json:"resolutionH"`
	LastPlayed    time.Time `json:"lastPlayed"`
	Created       time.Time `json:"created"`
	Icon          string    `json:"icon"`
}

// Settings holds the user-editable launch settings of a profile.
type Settings struct {
	JavaPath    *string
	RAMMin      *int
	RAMMax      *int
	JVMArgs     *string
	ResolutionW *int
	ResolutionH *int
}

// Store persists game profiles as one collection.
type Store struct {
	col      *db.Collection[Profile]
	gameRoot string
	javaPath string
	now      func() time.Time
	newID    func() string
	pickIcon func() string
	log      *zap.SugaredLogger
}

type Option func(*Store)

// WithGameRoot sets the directory profile game directories are derived from.
func WithGameRoot(root string) Option {
	return func(s *Store) { s.gameRoot = root }
}

func WithJavaPath(javaPath string) Option {
	return func(s *Store) { s.javaPath = javaPath }
}

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(s *Store) { s.log = log }
}

func NewStore(store db.Store, opts ...Option) *Store {
	s := &Store{
		col:      db.NewCollection[Profile](store, CollectionKey),
		gameRoot: ".minecraft",
		javaPath: "java",
		now:      time.Now,
		newID:    uuid.NewString,
		pickIcon: func() string { return icons[rand.Intn(len(icons))] },
		log:      logger.Log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GameDirFor derives the game directory of a profile from its id.
func (s *Store) GameDirFor(id string) string {
	return path.Join(s.gameRoot, "profiles", id) + "/"
}

func (s *Store) defaultProfile() Profile {
	now := s.now()
	return Profile{
		ID:          DefaultID,
		Name:        DefaultName,
		VersionID:   DefaultVersion,
		Loader:      Vanilla,
		GameDir:     strings.TrimSuffix(s.gameRoot, "/") + "/",
		JavaPath:    "internal",
		RAMMin:      defaultRAMMin,
		RAMMax:      defaultRAMMax,
		ResolutionW: defaultResolutionW,
		ResolutionH: defaultResolutionH,
		LastPlayed:  now,
		Created:     now,
		Icon:        "👑",
	}
}

func (s *Store) withSeed(items []Profile, found bool) []Profile {
	if !found {
		return []Profile{s.defaultProfile()}
	}
	return items
}

// Load returns all profiles, or the single built-in default when nothing has
// been stored yet.
func (s *Store) Load(ctx context.Context) ([]Profile, error) {
	items, found, err := s.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	return s.withSeed(items, found), nil
}

func (s *Store) Save(ctx context.Context, profiles []Profile) error {
	return s.col.Save(ctx, profiles)
}

func (s *Store) Get(ctx context.Context, id string) (Profile, bool, error) {
	items, err := s.Load(ctx)
	if err != nil {
		return Profile{}, false, err
	}
	for _, p := range items {
		if p.ID == id {
			return p, true, nil
		}
	}
	return Profile{}, false, nil
}

// Create appends a new profile with default launch settings.
func (s *Store) Create(ctx context.Context, name, versionID string, loader Loader) (Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Profile{}, fmt.Errorf("%w: profile name must not be empty", apperr.ErrValidation)
	}
	if _, err := ParseLoader(string(loader)); err != nil {
		return Profile{}, err
	}
	if strings.TrimSpace(versionID) == "" {
		versionID = DefaultVersion
	}

	id := s.newID()
	p := Profile{
		ID:          id,
		Name:        name,
		VersionID:   versionID,
		Loader:      loader,
		GameDir:     s.GameDirFor(id),
		JavaPath:    s.javaPath,
		RAMMin:      defaultRAMMin,
		RAMMax:      defaultRAMMax,
		JVMArgs:     defaultJVMArgs,
		ResolutionW: defaultResolutionW,
		ResolutionH: defaultResolutionH,
		Created:     s.now(),
		Icon:        s.pickIcon(),
	}

	err := s.col.Update(ctx, func(items []Profile, found bool) ([]Profile, bool, error) {
		return append(s.withSeed(items, found), p), true, nil
	})
	if err != nil {
		return Profile{}, err
	}
	s.log.Infow("Profile created", zap.String("id", p.ID), zap.String("name", p.Name), zap.String("loader", string(p.Loader)))
	return p, nil
}

// Duplicate copies profile id under a fresh id. A missing id is a no-op.
func (s *Store) Duplicate(ctx context.Context, id string) (Profile, bool, error) {
	var dup Profile
	var ok bool
	err := s.col.Update(ctx, func(items []Profile, found bool) ([]Profile, bool, error) {
		items = s.withSeed(items, found)
		for _, p := range items {
			if p.ID != id {
				continue
			}
			dup = p
			dup.ID = s.newID()
			dup.Name = p.Name + copySuffix
			dup.Created = s.now()
			dup.LastPlayed = time.Time{}
			ok = true
			return append(items, dup), true, nil
		}
		return items, false, nil
	})
	if err != nil || !ok {
		return Profile{}, false, err
	}
	s.log.Infow("Profile duplicated", zap.String("source", id), zap.String("id", dup.ID))
	return dup, true, nil
}

// Delete removes profile id. It never touches mod records; a missing id is a no-op.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	var removed bool
	err := s.col.Update(ctx, func(items []Profile, found bool) ([]Profile, bool, error) {
		items = s.withSeed(items, found)
		kept := make([]Profile, 0, len(items))
		for _, p := range items {
			if p.ID == id {
				removed = true
				continue
			}
			kept = append(kept, p)
		}
		return kept, removed, nil
	})
	if err != nil {
		return false, err
	}
	if removed {
		s.log.Infow("Profile deleted", zap.String("id", id))
	}
	return removed, nil
}

// Update applies the non-nil settings to profile id.
func (s *Store) Update(ctx context.Context, id string, set Settings) (Profile, bool, error) {
	var out Profile
	var ok bool
	err := s.col.Update(ctx, func(items []Profile, found bool) ([]Profile, bool, error) {
		items = s.withSeed(items, found)
		for i := range items {
			if items[i].ID != id {
				continue
			}
			next, err := applySettings(items[i], set)
			if err != nil {
				return nil, false, err
			}
			items[i], out, ok = next, next, true
			return items, true, nil
		}
		return items, false, nil
	})
	return out, ok, err
}

func applySettings(p Profile, set Settings) (Profile, error) {
	if set.JavaPath != nil {
		p.JavaPath = *set.JavaPath
	}
	if set.RAMMin != nil {
		p.RAMMin = *set.RAMMin
	}
	if set.RAMMax != nil {
		p.RAMMax = *set.RAMMax
	}
	if set.JVMArgs != nil {
		p.JVMArgs = *set.JVMArgs
	}
	if set.ResolutionW != nil {
		p.ResolutionW = *set.ResolutionW
	}
	if set.ResolutionH != nil {
		p.ResolutionH = *set.ResolutionH
	}
	if p.RAMMin < 1 || p.RAMMin > p.RAMMax {
		return Profile{}, fmt.Errorf("%w: ram bounds must satisfy 1 <= min <= max (got %d..%d)", apperr.ErrValidation, p.RAMMin, p.RAMMax)
	}
	if p.ResolutionW <= 0 || p.ResolutionH <= 0 {
		return Profile{}, fmt.Errorf("%w: resolution must be positive", apperr.ErrValidation)
	}
	return p, nil
}

// MarkPlayed stamps LastPlayed on profile id.
func (s *Store) MarkPlayed(ctx context.Context, id string) (bool, error) {
	var ok bool
	err := s.col.Update(ctx, func(items []Profile, found bool) ([]Profile, bool, error) {
		items = s.withSeed(items, found)
		for i := range items {
			if items[i].ID == id {
				items[i].LastPlayed = s.now()
				ok = true
				return items, true, nil
			}
		}
		return items, false, nil
	})
	return ok, err
}
