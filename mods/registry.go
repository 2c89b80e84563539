// Package mods tracks installed mods per game profile and offers a small
// remote catalog.
package mods

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"math/rand"
	"path/filepath"
	"strings"
	"time"

	"mc-launcher/apperr"
	"mc-launcher/db"
	"mc-launcher/logger"
	"mc-launcher/pipeline"
	"mc-launcher/profile"

	"github.com/gosimple/slug"
	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// CollectionKey is the blob key holding all mod records.
const CollectionKey = "mod_records"

const (
	localVersion     = "1.0.0"
	localAuthor      = "Local User"
	localDescription = "Manually imported local modification."
)

// Registry persists mod records as one collection.
type Registry struct {
	col      *db.Collection[Record]
	now      func() time.Time
	newID    func() string
	delay    pipeline.Delay
	randSize func() int64
	log      *zap.SugaredLogger
}

type Option func(*Registry)

func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

func WithIDGenerator(newID func() string) Option {
	return func(r *Registry) { r.newID = newID }
}

// WithInstallDelay sets the pause taken before each remote install stage.
func WithInstallDelay(d pipeline.Delay) Option {
	return func(r *Registry) { r.delay = d }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(r *Registry) { r.log = log }
}

func NewRegistry(store db.Store, opts ...Option) *Registry {
	r := &Registry{
		col:   db.NewCollection[Record](store, CollectionKey),
		now:   time.Now,
		newID: func() string { return strings.ToLower(ulid.Make().String()) },
		delay: pipeline.Delay{Min: 400 * time.Millisecond, Max: time.Second},
		randSize: func() int64 {
			const mb = 1024 * 1024
			return mb + rand.Int63n(5*mb)
		},
		log: logger.Log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Registry) load(ctx context.Context) ([]Record, error) {
	items, _, err := r.col.Load(ctx)
	if err != nil {
		return nil, err
	}
	return normalize(items), nil
}

// All returns every stored record regardless of scope.
func (r *Registry) All(ctx context.Context) ([]Record, error) {
	return r.load(ctx)
}

// List returns the records of one (profile, loader) scope. Vanilla scopes are
// always empty.
func (r *Registry) List(ctx context.Context, profileID string, loader profile.Loader) ([]Record, error) {
	if !loader.SupportsMods() {
		return []Record{}, nil
	}
	items, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	scoped := []Record{}
	for _, m := range items {
		if m.inScope(profileID, loader) {
			scoped = append(scoped, m)
		}
	}
	return scoped, nil
}

// Has reports whether any record carries id.
func (r *Registry) Has(ctx context.Context, id string) (bool, error) {
	_, ok, err := r.Get(ctx, id)
	return ok, err
}

func (r *Registry) Get(ctx context.Context, id string) (Record, bool, error) {
	items, err := r.load(ctx)
	if err != nil {
		return Record{}, false, err
	}
	for _, m := range items {
		if m.ID == id {
			return m, true, nil
		}
	}
	return Record{}, false, nil
}

// InstallLocal records a local jar under (profileID, loader). It fails with
// ErrConflict when the scope already holds a mod with the same base file name.
func (r *Registry) InstallLocal(ctx context.Context, fileName string, data []byte, profileID string, loader profile.Loader) (Record, error) {
	fileName = baseFileName(filepath.Base(fileName))
	if !strings.EqualFold(filepath.Ext(fileName), ".jar") {
		return Record{}, fmt.Errorf("%w: %s is not a .jar file", apperr.ErrValidation, fileName)
	}
	if !loader.SupportsMods() {
		return Record{}, fmt.Errorf("%w: %s profiles do not support mods", apperr.ErrValidation, loader)
	}

	sum := sha1.Sum(data)
	rec := Record{
		ID:          r.newID(),
		Name:        displayName(fileName),
		Version:     localVersion,
		Author:      localAuthor,
		Enabled:     true,
		Description: localDescription,
		Size:        int64(len(data)),
		FileName:    fileName,
		SHA1:        hex.EncodeToString(sum[:]),
		ProfileID:   profileID,
		Loader:      loader,
		InstalledAt: r.now(),
	}

	err := r.col.Update(ctx, func(items []Record, _ bool) ([]Record, bool, error) {
		for _, m := range normalize(items) {
			if m.inScope(profileID, loader) && m.FileName == fileName {
				return nil, false, fmt.Errorf("%w: a mod named %s already exists in this profile", apperr.ErrConflict, fileName)
			}
		}
		return append(items, rec), true, nil
	})
	if err != nil {
		return Record{}, err
	}

	r.log.Infow("Local mod installed",
		zap.String("id", rec.ID),
		zap.String("file", rec.FileName),
		zap.String("profile", profileID),
		zap.String("loader", string(loader)))
	return rec, nil
}

// HasCatalogEntry reports whether catalogID is installed in the (profileID,
// loader) scope.
func (r *Registry) HasCatalogEntry(ctx context.Context, profileID string, loader profile.Loader, catalogID string) (bool, error) {
	scoped, err := r.List(ctx, profileID, loader)
	if err != nil {
		return false, err
	}
	for _, m := range scoped {
		if m.CatalogID == catalogID {
			return true, nil
		}
	}
	return false, nil
}

// InstallRemote installs a catalog entry into profileID, reporting each stage
// to onProgress in order before the record is returned. The record gets a
// fresh id and keeps the entry id in CatalogID. Callers check HasCatalogEntry
// beforehand; duplicates are not rejected here.
func (r *Registry) InstallRemote(ctx context.Context, entry CatalogEntry, profileID string, onProgress func(pipeline.Event)) (Record, error) {
	rec := Record{
		ID:          r.newID(),
		CatalogID:   entry.ID,
		Name:        entry.Name,
		Version:     entry.Version,
		Author:      entry.Author,
		Enabled:     true,
		Description: entry.Summary,
		FileName:    fmt.Sprintf("%s-%s.jar", slug.Make(entry.Name), entry.Version),
		ProfileID:   profileID,
		Loader:      entry.Loader,
	}

	steps := []pipeline.Step{
		{Progress: 10, Status: "Initializing handshake...", Run: func(context.Context) (string, error) {
			return fmt.Sprintf("Resolved %s %s for %s", entry.Name, entry.Version, entry.Loader), nil
		}},
		{Progress: 40, Status: "Downloading source binaries...", Run: func(context.Context) (string, error) {
			rec.Size = r.randSize()
			return fmt.Sprintf("Received %s", rec.HumanSize()), nil
		}},
		{Progress: 70, Status: "Verifying MD5 Checksum...", Run: func(context.Context) (string, error) {
			return "Checksum OK", nil
		}},
		{Progress: 90, Status: "Mapping to profile directory...", Run: func(context.Context) (string, error) {
			return "Placed " + rec.FileName, nil
		}},
		{Progress: 100, Status: "Installation complete.", Run: func(ctx context.Context) (string, error) {
			rec.InstalledAt = r.now()
			err := r.col.Update(ctx, func(items []Record, _ bool) ([]Record, bool, error) {
				return append(items, rec), true, nil
			})
			return rec.Name + " installed", err
		}},
	}

	if err := pipeline.Run(ctx, steps, r.delay, onProgress); err != nil {
		r.log.Warnw("Remote mod install failed", zap.String("id", entry.ID), zap.Error(err))
		return Record{}, err
	}

	r.log.Infow("Remote mod installed", zap.String("id", rec.ID), zap.String("catalog_id", rec.CatalogID), zap.String("file", rec.FileName), zap.String("profile", profileID))
	return rec, nil
}

// SetEnabled toggles a record. A missing id is a no-op and reports false.
func (r *Registry) SetEnabled(ctx context.Context, id string, enabled bool) (bool, error) {
	var ok bool
	err := r.col.Update(ctx, func(items []Record, _ bool) ([]Record, bool, error) {
		items = normalize(items)
		for i := range items {
			if items[i].ID == id {
				items[i].Enabled = enabled
				ok = true
				return items, true, nil
			}
		}
		return items, false, nil
	})
	if err == nil && ok {
		r.log.Infow("Mod toggled", zap.String("id", id), zap.Bool("enabled", enabled))
	}
	return ok, err
}

// Remove deletes a record by id. A missing id is a no-op and reports false.
func (r *Registry) Remove(ctx context.Context, id string) (bool, error) {
	n, err := r.removeWhere(ctx, func(m Record) bool { return m.ID == id })
	if err == nil && n > 0 {
		r.log.Infow("Mod removed", zap.String("id", id))
	}
	return n > 0, err
}

// PurgeProfile removes every record belonging to profileID across all loaders.
func (r *Registry) PurgeProfile(ctx context.Context, profileID string) (int, error) {
	n, err := r.removeWhere(ctx, func(m Record) bool { return m.ProfileID == profileID })
	if err == nil && n > 0 {
		r.log.Infow("Mods purged", zap.String("profile", profileID), zap.Int("count", n))
	}
	return n, err
}

func (r *Registry) removeWhere(ctx context.Context, match func(Record) bool) (int, error) {
	var removed int
	err := r.col.Update(ctx, func(items []Record, _ bool) ([]Record, bool, error) {
		kept := make([]Record, 0, len(items))
		for _, m := range items {
			if match(m) {
				removed++
				continue
			}
			kept = append(kept, m)
		}
		return kept, removed > 0, nil
	})
	return removed, err
}
