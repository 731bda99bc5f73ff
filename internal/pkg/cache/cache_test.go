package cache

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nope", "cache.json")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("Load missing file: %v", err)
	}
	if _, ok := c.GetString("tm", "player_profile", "x"); ok {
		t.Error("empty cache should miss every key")
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	c.Set("https://example.com/profile/1", "transfermarkt", "player_profile", "jan kowalski")
	c.Set(42, "transfermarkt", "club_id", "example")
	c.Set([]string{"a", "b"}, "sofascore", "match_url", "2026-01-10|x|y")

	if err := c.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// Fresh load simulates a new process.
	c2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	if got, ok := c2.GetString("transfermarkt", "player_profile", "jan kowalski"); !ok || got != "https://example.com/profile/1" {
		t.Errorf("string round-trip = %q, %v", got, ok)
	}
	var id int
	if ok := c2.GetJSON(&id, "transfermarkt", "club_id", "example"); !ok || id != 42 {
		t.Errorf("int round-trip = %d, %v", id, ok)
	}
	var list []string
	if ok := c2.GetJSON(&list, "sofascore", "match_url", "2026-01-10|x|y"); !ok || len(list) != 2 || list[0] != "a" {
		t.Errorf("slice round-trip = %v, %v", list, ok)
	}
}

func TestMissIsDistinguishedFromEmpty(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "cache.json"))
	if err != nil {
		t.Fatal(err)
	}

	c.Set("", "ns", "k")
	if _, ok := c.GetString("ns", "k"); ok {
		t.Error("empty string value should not count as a hit")
	}
	if _, ok := c.Get("ns", "missing"); ok {
		t.Error("missing key should miss")
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cache.json")

	c, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	c.Set("v1", "a", "b")
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}
	c.Set("v2", "a", "b")
	if err := c.Save(); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries in dir", len(entries))
	}

	c2, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := c2.GetString("a", "b"); got != "v2" {
		t.Errorf("reloaded value = %q, want v2", got)
	}
}

func TestCorruptFileResetsToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load(path)
	if err != nil {
		t.Fatalf("corrupt cache should load as empty, got error: %v", err)
	}
	if _, ok := c.Get("anything"); ok {
		t.Error("corrupt cache should be empty")
	}
}
