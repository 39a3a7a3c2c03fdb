package slug

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestMake(t *testing.T) {
	cases := map[string]string{
		"Bahar Kampanyası 2026!":     "bahar-kampanyasi-2026",
		"  Özel Şişli Koleji  ":      "ozel-sisli-koleji",
		"Çağdaş -- Eğitim & Öğretim": "cagdas-egitim-ogretim",
		"İstanbul":                   "istanbul",
		"???":                        "item",
		"Already-a-slug":             "already-a-slug",
	}
	for in, want := range cases {
		if got := Make(in); got != want {
			t.Errorf("Make(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestUnique_BaseFree(t *testing.T) {
	exists := func(_ context.Context, _ string) (bool, error) { return false, nil }

	got, err := Unique(context.Background(), "Yaz Okulu", exists)
	if err != nil {
		t.Fatalf("Unique should succeed: %v", err)
	}
	if got != "yaz-okulu" {
		t.Errorf("expected yaz-okulu, got %s", got)
	}
}

func TestUnique_BaseTaken(t *testing.T) {
	taken := map[string]bool{"yaz-okulu": true}
	exists := func(_ context.Context, s string) (bool, error) { return taken[s], nil }

	got, err := Unique(context.Background(), "Yaz Okulu", exists)
	if err != nil {
		t.Fatalf("Unique should succeed: %v", err)
	}
	if got == "yaz-okulu" {
		t.Error("colliding base must not be returned")
	}
	if !strings.HasPrefix(got, "yaz-okulu-") {
		t.Errorf("result should keep the normalized base, got %s", got)
	}
}

func TestUnique_SuffixAlsoTaken(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	// base and the time-based candidate are both taken
	exists := func(_ context.Context, s string) (bool, error) {
		return s != "yaz-okulu-2", nil
	}

	got, err := uniqueAt(context.Background(), "Yaz Okulu", exists, now)
	if err != nil {
		t.Fatalf("uniqueAt should succeed: %v", err)
	}
	if got != "yaz-okulu-2" {
		t.Errorf("expected counter fallback yaz-okulu-2, got %s", got)
	}
}

func TestUnique_PropagatesError(t *testing.T) {
	boom := errors.New("db down")
	exists := func(_ context.Context, _ string) (bool, error) { return false, boom }

	if _, err := Unique(context.Background(), "x", exists); !errors.Is(err, boom) {
		t.Errorf("expected db error, got %v", err)
	}
}

func TestUnique_Exhausted(t *testing.T) {
	exists := func(_ context.Context, _ string) (bool, error) { return true, nil }

	if _, err := Unique(context.Background(), "x", exists); !errors.Is(err, ErrExhausted) {
		t.Errorf("expected ErrExhausted, got %v", err)
	}
}
