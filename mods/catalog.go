package mods

import (
	"strings"

	"mc-launcher/profile"
)

// CatalogEntry is a mod offered for remote installation.
type CatalogEntry struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Summary   string         `json:"summary"`
	Author    string         `json:"author"`
	Downloads string         `json:"downloads"`
	Icon      string         `json:"icon"`
	Version   string         `json:"version"`
	Loader    profile.Loader `json:"loader"`
}

// Catalog is the fixed set of mods available for remote installation.
var Catalog = []CatalogEntry{
	{ID: "m-1", Name: "Sodium", Summary: "Modern rendering engine for Minecraft", Author: "jellysquid", Downloads: "12M", Icon: "🧪", Version: "0.5.8", Loader: profile.Fabric},
	{ID: "m-2", Name: "Iris Shaders", Summary: "The modern shaders mod", Author: "coderbot", Downloads: "8M", Icon: "🌈", Version: "1.7.0", Loader: profile.Fabric},
	{ID: "m-3", Name: "JourneyMap", Summary: "Real-time mapping in-game", Author: "techbrew", Downloads: "45M", Icon: "🗺️", Version: "5.9.7", Loader: profile.Forge},
	{ID: "m-4", Name: "Biomes O Plenty", Summary: "Adds 80+ new biomes", Author: "Forstride", Downloads: "90M", Icon: "🌳", Version: "18.0.0", Loader: profile.Forge},
	{ID: "m-5", Name: "Roughly Enough Items", Summary: "Clean and efficient recipe viewer", Author: "shedaniel", Downloads: "25M", Icon: "📦", Version: "12.0.0", Loader: profile.Fabric},
	{ID: "m-6", Name: "JEI", Summary: "Just Enough Items", Author: "mezz", Downloads: "200M", Icon: "📖", Version: "15.0.0", Loader: profile.Forge},
}

// Search matches query case-insensitively against name or summary and keeps
// only entries built for loader. An empty query matches every entry.
func Search(query string, loader profile.Loader) []CatalogEntry {
	q := strings.ToLower(strings.TrimSpace(query))
	results := []CatalogEntry{}
	for _, e := range Catalog {
		if e.Loader != loader {
			continue
		}
		if strings.Contains(strings.ToLower(e.Name), q) || strings.Contains(strings.ToLower(e.Summary), q) {
			results = append(results, e)
		}
	}
	return results
}

// Lookup returns the catalog entry with the given id.
func Lookup(id string) (CatalogEntry, bool) {
	for _, e := range Catalog {
		if e.ID == id {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
