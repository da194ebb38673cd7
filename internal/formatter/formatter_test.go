package formatter

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/tasks"
)

func TestScenarioList(t *testing.T) {
	sections := map[string]map[string]string{
		"pl_a": {"title": "Mix A", "source": "One, Two", "limit": "10"},
		"pl_b": {"title": "Mix B", "source": "Three"},
	}

	t.Run("Names Only", func(t *testing.T) {
		got := string(ScenarioList([]string{"pl_a", "pl_b"}, sections, false))
		want := "0. pl_a\n1. pl_b\n"
		if got != want {
			t.Errorf("expected %q, got %q", want, got)
		}
	})

	t.Run("Verbose", func(t *testing.T) {
		got := string(ScenarioList([]string{"pl_a", "pl_b"}, sections, true))

		for _, want := range []string{"Title: Mix A", "Sources: One, Two", "Limit: 10", "1. pl_b", "Sources: Three"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in output:\n%s", want, got)
			}
		}
		if strings.Count(got, "Limit:") != 1 {
			t.Errorf("expected limit only for pl_a, got:\n%s", got)
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := string(ScenarioList(nil, nil, true)); got != "No scenarios configured.\n" {
			t.Errorf("unexpected output %q", got)
		}
	})
}

func TestScenarioInfo(t *testing.T) {
	got := string(ScenarioInfo("pl_a", map[string]string{
		"note":   "extra",
		"source": "One",
		"title":  "Mix",
		"type":   "shuffled",
		"color":  "red",
	}))

	want := "[pl_a]\ntype = shuffled\ntitle = Mix\nsource = One\ncolor = red\nnote = extra\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestPlaylistsToText(t *testing.T) {
	t.Run("Table", func(t *testing.T) {
		got := string(PlaylistsToText([]models.Playlist{
			{ID: 11, Title: "Jazz", TrackCount: 40, Public: true},
			{ID: 12, Title: "Chill", TrackCount: 7},
		}))

		lines := strings.Split(got, "\n")
		if !strings.HasPrefix(lines[0], "ID") || !strings.Contains(lines[0], "TITLE") {
			t.Errorf("expected header first, got %q", lines[0])
		}
		if !strings.Contains(lines[1], "11") || !strings.Contains(lines[1], "public") || !strings.HasSuffix(lines[1], "Jazz") {
			t.Errorf("unexpected first row %q", lines[1])
		}
		if !strings.Contains(lines[2], "private") {
			t.Errorf("unexpected second row %q", lines[2])
		}
		if !strings.Contains(got, "Total: 2 playlists") {
			t.Error("expected total line")
		}
	})

	t.Run("Empty", func(t *testing.T) {
		if got := string(PlaylistsToText(nil)); got != "No playlists found.\n" {
			t.Errorf("unexpected output %q", got)
		}
	})
}

func TestPlaylistsToCSV(t *testing.T) {
	data, err := PlaylistsToCSV([]models.Playlist{{ID: 1, Title: "Rock, Roll", TrackCount: 3, Description: "Reset 10:00 01.01.2024"}})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
	if err != nil {
		t.Fatalf("expected valid CSV, got %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected header and one row, got %d records", len(records))
	}
	if records[1][1] != "Rock, Roll" || records[1][2] != "3" || records[1][3] != "false" {
		t.Errorf("unexpected row %v", records[1])
	}
}

func TestTracksToText(t *testing.T) {
	got := string(TracksToText("Mix", []models.Track{
		{ID: 1, Title: "So What", Duration: 562, Artist: models.Artist{Name: "Miles Davis"}, Album: models.Album{Title: "Kind of Blue"}},
		{ID: 2, Title: "Untitled", Duration: 65, Artist: models.Artist{Name: "Someone"}},
	}))

	for _, want := range []string{
		"Playlist: Mix\n",
		"Tracks: 2\n",
		"1. Miles Davis - So What (Kind of Blue) [9:22]\n",
		"2. Someone - Untitled [1:05]\n",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("expected %q in output:\n%s", want, got)
		}
	}
}

func TestResultToText(t *testing.T) {
	t.Run("Created", func(t *testing.T) {
		got := string(ResultToText(&tasks.ShuffleResult{
			PlaylistID: 5, Title: "Mix", Created: true, Removed: 2,
			Sources: []string{"A", "B"}, Found: 7, Duplicates: 2, Added: 5,
		}))

		for _, want := range []string{"Created playlist: Mix (ID: 5)", "Removed duplicates of target: 2", "Sources: A, B", "Tracks found: 7 (2 duplicates)", "Tracks added: 5"} {
			if !strings.Contains(got, want) {
				t.Errorf("expected %q in output:\n%s", want, got)
			}
		}
	})

	t.Run("Reset", func(t *testing.T) {
		got := string(ResultToText(&tasks.ShuffleResult{PlaylistID: 5, Title: "Mix"}))
		if !strings.HasPrefix(got, "Reset playlist: Mix") || strings.Contains(got, "Removed") {
			t.Errorf("unexpected output:\n%s", got)
		}
	})
}

func TestToJSON(t *testing.T) {
	data, err := ToJSON(&tasks.ShuffleResult{PlaylistID: 5, Title: "Mix", Added: 3})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("expected valid JSON, got %v", err)
	}
	if decoded["playlist_id"] != float64(5) || decoded["added"] != float64(3) {
		t.Errorf("unexpected JSON %s", data)
	}
	if !strings.Contains(string(data), "\n  ") {
		t.Error("expected indented output")
	}
}
