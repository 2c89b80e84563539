package cmd

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"mc-launcher/db"
	"mc-launcher/identity"
	"mc-launcher/profile"
)

func TestPrintStatus(t *testing.T) {
	ctx := context.Background()
	a := newTestApp(t)

	var buf bytes.Buffer
	if err := printStatus(ctx, a, &buf); err != nil {
		t.Fatalf("printStatus failed: %v", err)
	}
	if !strings.Contains(buf.String(), "none, run 'login <username>'") {
		t.Errorf("expected a login hint, got %q", buf.String())
	}

	if _, err := a.identities.Login(ctx, "Steve"); err != nil {
		t.Fatal(err)
	}
	p, err := a.profiles.Create(ctx, "Modded", "1.20.1", profile.Forge)
	if err != nil {
		t.Fatal(err)
	}
	installLocal(t, a, "a.jar", p)
	installLocal(t, a, "b.jar", profile.Profile{ID: "gone", Loader: profile.Forge})

	buf.Reset()
	if err := printStatus(ctx, a, &buf); err != nil {
		t.Fatalf("printStatus failed: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Steve (" + identity.DeriveUUID("Steve") + ")", "profiles: 2", "1 mods", "1 mod records belong to deleted profiles"} {
		if !strings.Contains(out, want) {
			t.Errorf("output does not contain %q:\n%s", want, out)
		}
	}
}

func TestPrintAccounts(t *testing.T) {
	ctx := context.Background()
	clock := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := identity.NewStore(db.NewMemoryStore(), identity.WithClock(func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}))

	var buf bytes.Buffer
	if err := printAccounts(ctx, store, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(buf.String(), "No accounts yet") {
		t.Errorf("unexpected output %q", buf.String())
	}

	for _, name := range []string{"Alex", "Steve"} {
		if _, err := store.Login(ctx, name); err != nil {
			t.Fatal(err)
		}
	}
	buf.Reset()
	if err := printAccounts(ctx, store, &buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Steve") {
		t.Errorf("most recent account should come first:\n%s", buf.String())
	}
}
