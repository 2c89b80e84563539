// Package identity stores offline player identities keyed by username.
package identity

import (
	"context"
	"crypto/md5"
	"fmt"
	"regexp"
	"time"
	"unicode/utf8"

	"mc-launcher/apperr"
	"mc-launcher/db"
	"mc-launcher/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CollectionKey is the blob key holding all identities.
const CollectionKey = "identities"

const LoginOffline = "OFFLINE"

// Skin models accepted by the game client.
const (
	SkinClassic = "classic"
	SkinSlim    = "slim"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 16
)

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// Identity is a locally remembered player.
type Identity struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	UUID          string    `json:"uuid"`
	LoginType     string    `json:"loginType"`
	LastLoginTime time.Time `json:"lastLoginTime"`
	SkinURL       string    `json:"skinUrl,omitempty"`
	SkinModel     string    `json:"skinModel,omitempty"`
}

// ValidateUsername reports why candidate cannot be used as an offline username.
func ValidateUsername(candidate string) error {
	if n := utf8.RuneCountInString(candidate); n < minUsernameLen || n > maxUsernameLen {
		return fmt.Errorf("%w: username must be %d-%d characters", apperr.ErrValidation, minUsernameLen, maxUsernameLen)
	}
	if !usernamePattern.MatchString(candidate) {
		return fmt.Errorf("%w: only letters, numbers, and underscores allowed", apperr.ErrValidation)
	}
	return nil
}

// DeriveUUID returns the offline-mode player UUID for username: the MD5 of
// "OfflinePlayer:<username>" stamped as a version 3 RFC 4122 UUID.
func DeriveUUID(username string) string {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = (sum[6] & 0x0f) | 0x30
	sum[8] = (sum[8] & 0x3f) | 0x80
	return uuid.UUID(sum).String()
}

// Store persists identities as one collection.
type Store struct {
	col   *db.Collection[Identity]
	now   func() time.Time
	newID func() string
	log   *zap.SugaredLogger
}

type Option func(*Store)

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
		col:   db.NewCollection[Identity](store, CollectionKey),
		now:   time.Now,
		newID: uuid.NewString,
		log:   logger.Log,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load returns identities in persisted order.
func (s *Store) Load(ctx context.Context) ([]Identity, error) {
	items, _, err := s.col.Load(ctx)
	return items, err
}

// Save overwrites the whole collection.
func (s *Store) Save(ctx context.Context, identities []Identity) error {
	return s.col.Save(ctx, identities)
}

// Upsert stores in under its username. An existing record keeps its id and
// takes every non-empty field of in; LastLoginTime is always set to now.
func (s *Store) Upsert(ctx context.Context, in Identity) (Identity, error) {
	var out Identity
	err := s.col.Update(ctx, func(items []Identity, _ bool) ([]Identity, bool, error) {
		now := s.now()
		for i := range items {
			if items[i].Username != in.Username {
				continue
			}
			out = merge(items[i], in)
			out.LastLoginTime = now
			items[i] = out
			return items, true, nil
		}

		out = in
		if out.ID == "" {
			out.ID = s.newID()
		}
		out.UUID = DeriveUUID(out.Username)
		out.LoginType = LoginOffline
		out.LastLoginTime = now
		return append(items, out), true, nil
	})
	if err != nil {
		return Identity{}, err
	}
	s.log.Infow("Identity saved", zap.String("username", out.Username), zap.String("uuid", out.UUID))
	return out, nil
}

func merge(old, in Identity) Identity {
	merged := old
	if in.SkinURL != "" {
		merged.SkinURL = in.SkinURL
	}
	if in.SkinModel != "" {
		merged.SkinModel = in.SkinModel
	}
	merged.UUID = DeriveUUID(merged.Username)
	merged.LoginType = LoginOffline
	return merged
}

// Login validates username and upserts the matching identity.
func (s *Store) Login(ctx context.Context, username string) (Identity, error) {
	if err := ValidateUsername(username); err != nil {
		return Identity{}, err
	}
	return s.Upsert(ctx, Identity{Username: username})
}

// SetSkin records a skin reference for an existing or new username.
func (s *Store) SetSkin(ctx context.Context, username, skinURL, model string) (Identity, error) {
	if err := ValidateUsername(username); err != nil {
		return Identity{}, err
	}
	model, err := ValidateSkinModel(model)
	if err != nil {
		return Identity{}, err
	}
	return s.Upsert(ctx, Identity{Username: username, SkinURL: skinURL, SkinModel: model})
}

// ValidateSkinModel returns model, defaulting to classic, or a validation error.
func ValidateSkinModel(model string) (string, error) {
	if model == "" {
		return SkinClassic, nil
	}
	if model != SkinClassic && model != SkinSlim {
		return "", fmt.Errorf("%w: skin model must be %q or %q", apperr.ErrValidation, SkinClassic, SkinSlim)
	}
	return model, nil
}

// Find returns the identity with the given username.
func (s *Store) Find(ctx context.Context, username string) (Identity, bool, error) {
	items, err := s.Load(ctx)
	if err != nil {
		return Identity{}, false, err
	}
	for _, it := range items {
		if it.Username == username {
			return it, true, nil
		}
	}
	return Identity{}, false, nil
}

// MostRecent returns the identity with the latest LastLoginTime.
func (s *Store) MostRecent(ctx context.Context) (Identity, bool, error) {
	items, err := s.Load(ctx)
	if err != nil || len(items) == 0 {
		return Identity{}, false, err
	}
	latest := items[0]
	for _, it := range items[1:] {
		if it.LastLoginTime.After(latest.LastLoginTime) {
			latest = it
		}
	}
	return latest, true, nil
}
