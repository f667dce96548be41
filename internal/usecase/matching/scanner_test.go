package matching

import (
	"testing"

	"github.com/advancehq/affinity/internal/domain/tag"
)

func TestScanTranscript(t *testing.T) {
	snap := NewSnapshot([]tag.Tag{
		tag.Reconstruct("1", "Ice Hockey", tag.Personal, ""),
		tag.Reconstruct("2", "Rowing", tag.Personal, ""),
		tag.Reconstruct("3", "Business Analytics", tag.Professional, ""),
	})

	t.Run("literal occurrence", func(t *testing.T) {
		got := ScanTranscript("She loves watching Ice Hockey games", snap)
		if len(got) != 1 || got[0] != "Ice Hockey" {
			t.Fatalf("got %v, want [Ice Hockey]", got)
		}
	})

	t.Run("containment tolerates plurals", func(t *testing.T) {
		// "rowing" appears inside "rowings"; token containment accepts it.
		got := ScanTranscript("he mentioned his rowings days", snap)
		if len(got) != 1 || got[0] != "Rowing" {
			t.Fatalf("got %v, want [Rowing]", got)
		}
	})

	t.Run("all tokens required", func(t *testing.T) {
		// "business" alone must not recover "Business Analytics".
		got := ScanTranscript("they run a family business downtown", snap)
		for _, name := range got {
			if name == "Business Analytics" {
				t.Fatal("partial token coverage must not match")
			}
		}
	})

	t.Run("empty transcript", func(t *testing.T) {
		if got := ScanTranscript("", snap); got != nil {
			t.Fatalf("got %v, want nil", got)
		}
	})

	t.Run("short tokens discarded", func(t *testing.T) {
		// Tokens under 3 chars never participate, so "it" cannot
		// accidentally cover anything.
		if got := ScanTranscript("it is so he an at", snap); got != nil {
			t.Fatalf("got %v, want nil", got)
		}
	})

	t.Run("empty tag name never matches", func(t *testing.T) {
		degenerate := NewSnapshot([]tag.Tag{tag.Reconstruct("x", "", "", "")})
		if got := ScanTranscript("anything at all here", degenerate); got != nil {
			t.Fatalf("got %v, want nil", got)
		}
	})
}

func TestScanTokens(t *testing.T) {
	got := scanTokens("She loves watching Ice-Hockey games!")
	want := []string{"she", "loves", "watching", "ice", "hockey", "games"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d = %q, want %q", i, got[i], want[i])
		}
	}
}
