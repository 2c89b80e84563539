package mods

import (
	"fmt"
	"strings"
	"time"

	"mc-launcher/profile"
)

// DisabledSuffix is appended to the on-disk file name of a disabled mod.
const DisabledSuffix = ".disabled"

// Record is an installed mod, scoped by (ProfileID, Loader).
type Record struct {
	ID          string         `json:"id"`
	CatalogID   string         `json:"catalogId,omitempty"` // catalog entry of a remote install
	Name        string         `json:"name"`
	Version     string         `json:"version"`
	Author      string         `json:"author"`
	Enabled     bool           `json:"enabled"`
	Description string         `json:"description"`
	Size        int64          `json:"size"`
	FileName    string         `json:"fileName"`
	SHA1        string         `json:"sha1,omitempty"`
	ProfileID   string         `json:"profileId"`
	Loader      profile.Loader `json:"loader"`
	InstalledAt time.Time      `json:"installedAt"`
}

// DiskFileName is the name the jar has in the profile's mods directory.
func (r Record) DiskFileName() string {
	if r.Enabled {
		return r.FileName
	}
	return r.FileName + DisabledSuffix
}

func (r Record) HumanSize() string {
	return fmt.Sprintf("%.2f MB", float64(r.Size)/1024/1024)
}

func (r Record) inScope(profileID string, loader profile.Loader) bool {
	return r.ProfileID == profileID && r.Loader == loader
}

// normalize strips a disabled suffix persisted into FileName by older data.
// Enabled stays as recorded. Older remote installs used the catalog id as
// their record id; those get CatalogID filled in.
func normalize(items []Record) []Record {
	for i := range items {
		items[i].FileName = baseFileName(items[i].FileName)
		if items[i].CatalogID == "" {
			if _, ok := Lookup(items[i].ID); ok {
				items[i].CatalogID = items[i].ID
			}
		}
	}
	return items
}

func baseFileName(name string) string {
	return strings.TrimSuffix(name, DisabledSuffix)
}

// displayName derives a mod name from a jar file name: the part before the
// first '-' or '_'.
func displayName(fileName string) string {
	stem := strings.TrimSuffix(baseFileName(fileName), ".jar")
	if i := strings.IndexAny(stem, "-_"); i > 0 {
		return stem[:i]
	}
	return stem
}
