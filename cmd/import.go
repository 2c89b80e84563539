package cmd

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"mc-launcher/apperr"
	"mc-launcher/logger"
	"mc-launcher/mods"
	"mc-launcher/profile"

	"go.uber.org/zap"
)

type importResult struct {
	imported int
	skipped  int
}

// importModDir installs every jar under dir into p. Jars whose content is
// already installed in the profile, or whose name conflicts, are skipped.
func importModDir(ctx context.Context, registry *mods.Registry, dir string, p profile.Profile) (importResult, error) {
	var res importResult
	logger.Log.Infow("Scanning for mods to import", zap.String("dir", dir), zap.String("profile", p.ID))

	if _, err := os.Stat(dir); err != nil {
		return res, err
	}

	existing, err := registry.List(ctx, p.ID, p.Loader)
	if err != nil {
		return res, err
	}
	known := make(map[string]bool, len(existing))
	for _, m := range existing {
		if m.SHA1 != "" {
			known[m.SHA1] = true
		}
	}

	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) != ".jar" {
			return nil
		}

		hash, err := calculateSHA1(path)
		if err != nil {
			logger.Log.Warnw("Failed to calculate hash", zap.String("file", info.Name()), zap.Error(err))
			res.skipped++
			return nil
		}
		if known[hash] {
			logger.Log.Debugw("Mod content already installed", zap.String("file", info.Name()))
			res.skipped++
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		rec, err := registry.InstallLocal(ctx, path, data, p.ID, p.Loader)
		if errors.Is(err, apperr.ErrConflict) {
			logger.Log.Infow("Skipping conflicting mod", zap.String("file", info.Name()))
			res.skipped++
			return nil
		}
		if err != nil {
			return err
		}

		known[hash] = true
		res.imported++
		logger.Log.Infow("Imported mod", zap.String("name", rec.Name), zap.String("file", rec.FileName))
		return nil
	})
	return res, err
}

func calculateSHA1(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha1.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
