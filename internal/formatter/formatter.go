// package formatter renders scenarios, playlists and reconciliation results as plain text, CSV or JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/desertthunder/dzshuffled/internal/models"
	"github.com/desertthunder/dzshuffled/internal/shared"
	"github.com/desertthunder/dzshuffled/internal/tasks"
)

// leading options of a scenario section, printed in this order before any others
var scenarioKeys = []string{"type", "title", "source", "limit"}

// ScenarioList renders numbered scenario names. Verbose adds the title, sources and limit of each one.
func ScenarioList(names []string, sections map[string]map[string]string, verbose bool) []byte {
	var buf bytes.Buffer
	if len(names) == 0 {
		buf.WriteString("No scenarios configured.\n")
		return buf.Bytes()
	}

	for i, name := range names {
		fmt.Fprintf(&buf, "%d. %s\n", i, name)
		if !verbose {
			continue
		}

		section := sections[name]
		fmt.Fprintf(&buf, "   Title: %s\n", section["title"])
		fmt.Fprintf(&buf, "   Sources: %s\n", section["source"])
		if limit := section["limit"]; limit != "" {
			fmt.Fprintf(&buf, "   Limit: %s\n", limit)
		}
	}
	return buf.Bytes()
}

// ScenarioInfo renders every option of a scenario section, well-known options first.
func ScenarioInfo(name string, section map[string]string) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "[%s]\n", name)

	for _, key := range orderedKeys(section) {
		fmt.Fprintf(&buf, "%s = %s\n", key, section[key])
	}
	return buf.Bytes()
}

func orderedKeys(section map[string]string) []string {
	keys := make([]string, 0, len(section))
	for _, key := range scenarioKeys {
		if _, ok := section[key]; ok {
			keys = append(keys, key)
		}
	}

	var rest []string
	for key := range section {
		if !slices.Contains(scenarioKeys, key) {
			rest = append(rest, key)
		}
	}
	slices.Sort(rest)
	return append(keys, rest...)
}

// PlaylistsToText renders playlists as an aligned table.
func PlaylistsToText(playlists []models.Playlist) []byte {
	var buf bytes.Buffer
	if len(playlists) == 0 {
		buf.WriteString("No playlists found.\n")
		return buf.Bytes()
	}

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTRACKS\tVISIBILITY\tTITLE")
	for _, pl := range playlists {
		fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", pl.ID, pl.TrackCount, shared.VisibilityString(pl.Public), pl.Title)
	}
	w.Flush()

	fmt.Fprintf(&buf, "\nTotal: %d playlists\n", len(playlists))
	return buf.Bytes()
}

// PlaylistsToCSV converts playlists to CSV format with columns: ID, Title, Tracks, Public, Description
func PlaylistsToCSV(playlists []models.Playlist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Tracks", "Public", "Description"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pl := range playlists {
		record := []string{
			strconv.FormatInt(pl.ID, 10),
			pl.Title,
			strconv.Itoa(pl.TrackCount),
			strconv.FormatBool(pl.Public),
			pl.Description,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// TracksToText renders a numbered track listing.
func TracksToText(title string, tracks []models.Track) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Playlist: %s\n", title)
	fmt.Fprintf(&buf, "Tracks: %d\n\n", len(tracks))

	for i, track := range tracks {
		albumPart := ""
		if track.Album.Title != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album.Title)
		}
		fmt.Fprintf(&buf, "%d. %s - %s%s [%s]\n", i+1, track.Artist.Name, track.Title, albumPart, shared.FormatDuration(track.Duration))
	}
	return buf.Bytes()
}

// ResultToText summarizes a reconciliation.
func ResultToText(result *tasks.ShuffleResult) []byte {
	var buf bytes.Buffer

	action := "Reset"
	if result.Created {
		action = "Created"
	}
	fmt.Fprintf(&buf, "%s playlist: %s (ID: %d)\n", action, result.Title, result.PlaylistID)
	if result.Removed > 0 {
		fmt.Fprintf(&buf, "Removed duplicates of target: %d\n", result.Removed)
	}
	fmt.Fprintf(&buf, "Sources: %s\n", strings.Join(result.Sources, ", "))
	fmt.Fprintf(&buf, "Tracks found: %d (%d duplicates)\n", result.Found, result.Duplicates)
	fmt.Fprintf(&buf, "Tracks added: %d\n", result.Added)
	return buf.Bytes()
}

// ToJSON renders v as indented JSON.
func ToJSON(v any) ([]byte, error) {
	return shared.MarshalJSON(v, true)
}
