package mods

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"mc-launcher/apperr"
	"mc-launcher/db"
	"mc-launcher/pipeline"
	"mc-launcher/profile"
)

func newTestRegistry() (*Registry, *db.MemoryStore) {
	mem := db.NewMemoryStore()
	ids := 0
	reg := NewRegistry(mem,
		WithInstallDelay(pipeline.NoDelay),
		WithClock(func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }),
		WithIDGenerator(func() string {
			ids++
			return fmt.Sprintf("mod-%d", ids)
		}),
	)
	return reg, mem
}

func TestModdedKingdomScenario(t *testing.T) {
	ctx := context.Background()
	mem := db.NewMemoryStore()
	profiles := profile.NewStore(mem)
	reg := NewRegistry(mem, WithInstallDelay(pipeline.NoDelay))

	p, err := profiles.Create(ctx, "Modded Kingdom", "1.21.1", profile.Forge)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	list, err := reg.List(ctx, p.ID, profile.Forge)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("expected empty list for new profile, got %+v", list)
	}

	if _, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("PK\x03\x04jar"), p.ID, profile.Forge); err != nil {
		t.Fatalf("InstallLocal failed: %v", err)
	}
	list, _ = reg.List(ctx, p.ID, profile.Forge)
	if len(list) != 1 {
		t.Fatalf("expected one mod, got %d", len(list))
	}
	m := list[0]
	if !m.Enabled || m.FileName != "examplemod.jar" || m.DiskFileName() != "examplemod.jar" {
		t.Errorf("unexpected installed record %+v", m)
	}

	ok, err := reg.SetEnabled(ctx, m.ID, false)
	if err != nil || !ok {
		t.Fatalf("SetEnabled = %v, %v", ok, err)
	}
	list, _ = reg.List(ctx, p.ID, profile.Forge)
	if list[0].Enabled {
		t.Error("expected mod to be disabled")
	}
	if !strings.HasSuffix(list[0].DiskFileName(), DisabledSuffix) {
		t.Errorf("expected disabled file name, got %q", list[0].DiskFileName())
	}
	if list[0].FileName != "examplemod.jar" {
		t.Errorf("base file name must be kept, got %q", list[0].FileName)
	}

	// Toggling back restores the plain name
	if _, err := reg.SetEnabled(ctx, m.ID, true); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	list, _ = reg.List(ctx, p.ID, profile.Forge)
	if !list[0].Enabled || list[0].DiskFileName() != "examplemod.jar" {
		t.Errorf("unexpected record after re-enable %+v", list[0])
	}
}

func TestInstallLocal(t *testing.T) {
	ctx := context.Background()

	t.Run("record fields", func(t *testing.T) {
		reg, _ := newTestRegistry()
		rec, err := reg.InstallLocal(ctx, "/tmp/downloads/jei-1.20.1-forge.jar", []byte("abc"), "p1", profile.Forge)
		if err != nil {
			t.Fatalf("InstallLocal failed: %v", err)
		}
		if rec.Name != "jei" || rec.FileName != "jei-1.20.1-forge.jar" {
			t.Errorf("unexpected name %q / file %q", rec.Name, rec.FileName)
		}
		if rec.Size != 3 || rec.Version != "1.0.0" || rec.Author != "Local User" {
			t.Errorf("unexpected record %+v", rec)
		}
		if rec.SHA1 != "a9993e364706816aba3e25717850c26c9cd0d89d" {
			t.Errorf("unexpected sha1 %s", rec.SHA1)
		}
		if rec.ID != "mod-1" {
			t.Errorf("unexpected id %s", rec.ID)
		}
	})

	t.Run("duplicate in scope conflicts", func(t *testing.T) {
		reg, _ := newTestRegistry()
		if _, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p1", profile.Forge); err != nil {
			t.Fatalf("first install failed: %v", err)
		}
		_, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p1", profile.Forge)
		if !errors.Is(err, apperr.ErrConflict) {
			t.Fatalf("expected conflict, got %v", err)
		}
		list, _ := reg.List(ctx, "p1", profile.Forge)
		if len(list) != 1 {
			t.Errorf("expected count to stay at 1, got %d", len(list))
		}
	})

	t.Run("disabled mod still conflicts", func(t *testing.T) {
		reg, _ := newTestRegistry()
		rec, _ := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p1", profile.Fabric)
		if _, err := reg.SetEnabled(ctx, rec.ID, false); err != nil {
			t.Fatalf("SetEnabled failed: %v", err)
		}
		if _, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p1", profile.Fabric); !errors.Is(err, apperr.ErrConflict) {
			t.Errorf("expected conflict against disabled mod, got %v", err)
		}
	})

	t.Run("other scope is independent", func(t *testing.T) {
		reg, _ := newTestRegistry()
		if _, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p1", profile.Forge); err != nil {
			t.Fatalf("install failed: %v", err)
		}
		if _, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p2", profile.Forge); err != nil {
			t.Errorf("other profile should accept same file: %v", err)
		}
		if _, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p1", profile.Fabric); err != nil {
			t.Errorf("other loader should accept same file: %v", err)
		}
	})

	t.Run("validation", func(t *testing.T) {
		reg, mem := newTestRegistry()
		if _, err := reg.InstallLocal(ctx, "readme.txt", []byte("x"), "p1", profile.Forge); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected validation error for non-jar, got %v", err)
		}
		if _, err := reg.InstallLocal(ctx, "examplemod.jar", []byte("x"), "p1", profile.Vanilla); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("expected validation error for vanilla, got %v", err)
		}
		if _, err := mem.Get(ctx, CollectionKey); !errors.Is(err, db.ErrKeyNotFound) {
			t.Errorf("rejected installs must not write, got %v", err)
		}
	})
}

func TestListVanillaIsEmpty(t *testing.T) {
	ctx := context.Background()
	reg, mem := newTestRegistry()

	// Stray data under a vanilla scope is never listed
	col := db.NewCollection[Record](mem, CollectionKey)
	if err := col.Save(ctx, []Record{{ID: "x", FileName: "a.jar", ProfileID: "p1", Loader: profile.Vanilla}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	list, err := reg.List(ctx, "p1", profile.Vanilla)
	if err != nil || len(list) != 0 {
		t.Errorf("List(vanilla) = %+v, %v; want empty", list, err)
	}
}

func TestLegacyDisabledSuffixNormalized(t *testing.T) {
	ctx := context.Background()
	reg, mem := newTestRegistry()

	col := db.NewCollection[Record](mem, CollectionKey)
	legacy := []Record{{ID: "old", FileName: "sodium-0.5.8.jar.disabled", Enabled: false, ProfileID: "p1", Loader: profile.Fabric}}
	if err := col.Save(ctx, legacy); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	list, _ := reg.List(ctx, "p1", profile.Fabric)
	if len(list) != 1 || list[0].FileName != "sodium-0.5.8.jar" {
		t.Fatalf("expected normalized file name, got %+v", list)
	}
	if list[0].DiskFileName() != "sodium-0.5.8.jar.disabled" {
		t.Errorf("unexpected disk name %q", list[0].DiskFileName())
	}

	if _, err := reg.SetEnabled(ctx, "old", true); err != nil {
		t.Fatalf("SetEnabled failed: %v", err)
	}
	list, _ = reg.List(ctx, "p1", profile.Fabric)
	if list[0].DiskFileName() != "sodium-0.5.8.jar" {
		t.Errorf("expected suffix to be gone after enabling, got %q", list[0].DiskFileName())
	}
}

func TestInstallRemote(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()
	entry, ok := Lookup("m-4")
	if !ok {
		t.Fatal("catalog entry m-4 missing")
	}

	var progress []int
	rec, err := reg.InstallRemote(ctx, entry, "p1", func(ev pipeline.Event) {
		progress = append(progress, ev.Progress)
	})
	if err != nil {
		t.Fatalf("InstallRemote failed: %v", err)
	}

	want := []int{10, 40, 70, 90, 100}
	if fmt.Sprint(progress) != fmt.Sprint(want) {
		t.Errorf("progress = %v, want %v", progress, want)
	}
	if rec.ID != "mod-1" || rec.CatalogID != "m-4" || rec.FileName != "biomes-o-plenty-18.0.0.jar" || rec.Loader != profile.Forge {
		t.Errorf("unexpected record %+v", rec)
	}
	if rec.Size < 1024*1024 || rec.Size > 6*1024*1024 {
		t.Errorf("size %d out of range", rec.Size)
	}

	has, err := reg.HasCatalogEntry(ctx, "p1", profile.Forge, "m-4")
	if err != nil || !has {
		t.Errorf("HasCatalogEntry(m-4) = %v, %v", has, err)
	}
	if has, _ := reg.HasCatalogEntry(ctx, "p2", profile.Forge, "m-4"); has {
		t.Error("another profile should not see the install")
	}
}

func TestInstallRemoteIntoTwoProfiles(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()
	entry, _ := Lookup("m-1")

	first, err := reg.InstallRemote(ctx, entry, "fab-1", nil)
	if err != nil {
		t.Fatalf("first InstallRemote failed: %v", err)
	}
	second, err := reg.InstallRemote(ctx, entry, "fab-2", nil)
	if err != nil {
		t.Fatalf("second InstallRemote failed: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("records share id %s", first.ID)
	}

	if _, err := reg.SetEnabled(ctx, first.ID, false); err != nil {
		t.Fatal(err)
	}
	other, _, _ := reg.Get(ctx, second.ID)
	if !other.Enabled {
		t.Error("toggling one profile's copy must not touch the other")
	}

	if _, err := reg.Remove(ctx, first.ID); err != nil {
		t.Fatal(err)
	}
	list, _ := reg.List(ctx, "fab-2", profile.Fabric)
	if len(list) != 1 || list[0].CatalogID != "m-1" {
		t.Errorf("fab-2 should keep its copy, got %+v", list)
	}
}

func TestLegacyRemoteRecordGetsCatalogID(t *testing.T) {
	ctx := context.Background()
	reg, mem := newTestRegistry()
	legacy := []Record{{ID: "m-3", Name: "JourneyMap", FileName: "journeymap-5.9.7.jar", Enabled: true, ProfileID: "p1", Loader: profile.Forge}}
	if err := db.NewCollection[Record](mem, CollectionKey).Save(ctx, legacy); err != nil {
		t.Fatal(err)
	}
	has, err := reg.HasCatalogEntry(ctx, "p1", profile.Forge, "m-3")
	if err != nil || !has {
		t.Errorf("HasCatalogEntry(m-3) = %v, %v", has, err)
	}
}

func TestInstallRemoteCancelledLeavesNoRecord(t *testing.T) {
	reg, _ := newTestRegistry()
	ctx, cancel := context.WithCancel(context.Background())

	entry, _ := Lookup("m-1")
	var seen int
	_, err := reg.InstallRemote(ctx, entry, "p1", func(ev pipeline.Event) {
		seen++
		if ev.Progress == 40 {
			cancel()
		}
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if seen != 2 {
		t.Errorf("expected two stages before cancellation, got %d", seen)
	}
	if all, _ := reg.All(context.Background()); len(all) != 0 {
		t.Error("cancelled install must not persist a record")
	}
}

func TestRemoveAndPurge(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry()

	a, _ := reg.InstallLocal(ctx, "a.jar", nil, "p1", profile.Forge)
	reg.InstallLocal(ctx, "b.jar", nil, "p1", profile.Fabric)
	reg.InstallLocal(ctx, "c.jar", nil, "p2", profile.Forge)

	ok, err := reg.Remove(ctx, a.ID)
	if err != nil || !ok {
		t.Fatalf("Remove = %v, %v", ok, err)
	}
	if ok, _ := reg.Remove(ctx, a.ID); ok {
		t.Error("second Remove should be a no-op")
	}
	if ok, _ := reg.SetEnabled(ctx, "missing", false); ok {
		t.Error("SetEnabled on missing id should be a no-op")
	}

	n, err := reg.PurgeProfile(ctx, "p1")
	if err != nil || n != 1 {
		t.Fatalf("PurgeProfile = %d, %v; want 1", n, err)
	}
	all, _ := reg.All(ctx)
	if len(all) != 1 || all[0].ProfileID != "p2" {
		t.Errorf("unexpected remaining records %+v", all)
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		query  string
		loader profile.Loader
		want   []string
	}{
		{"sodium", profile.Fabric, []string{"Sodium"}},
		{"sodium", profile.Forge, nil},
		{"SODIUM", profile.Fabric, []string{"Sodium"}},
		{"items", profile.Forge, []string{"JEI"}},
		{"items", profile.Fabric, []string{"Roughly Enough Items"}},
		{"biomes", profile.Forge, []string{"Biomes O Plenty"}},
		{"", profile.Fabric, []string{"Sodium", "Iris Shaders", "Roughly Enough Items"}},
		{"anything", profile.Vanilla, nil},
	}

	for _, tt := range tests {
		t.Run(tt.query+"/"+string(tt.loader), func(t *testing.T) {
			var got []string
			for _, e := range Search(tt.query, tt.loader) {
				got = append(got, e.Name)
			}
			if fmt.Sprint(got) != fmt.Sprint(tt.want) {
				t.Errorf("Search(%q, %s) = %v, want %v", tt.query, tt.loader, got, tt.want)
			}
		})
	}
}

func TestDisplayName(t *testing.T) {
	tests := map[string]string{
		"examplemod.jar":      "examplemod",
		"jei-1.20.1.jar":      "jei",
		"journey_map_5.jar":   "journey",
		"sodium.jar.disabled": "sodium",
		"-leading.jar":        "-leading",
	}
	for in, want := range tests {
		if got := displayName(in); got != want {
			t.Errorf("displayName(%q) = %q, want %q", in, got, want)
		}
	}
}
