package models

// Track represents a Deezer track.
//
// Only ID takes part in identity; the remaining fields are passed through for display.
type Track struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Link     string `json:"link,omitempty"`
	Duration int    `json:"duration,omitempty"` // Duration in seconds
	Artist   Artist `json:"artist"`
	Album    Album  `json:"album"`
}

// Artist is the artist summary embedded in track payloads.
type Artist struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Album is the album summary embedded in track payloads.
type Album struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Playlist represents a playlist in the user's library.
type Playlist struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	TrackCount  int    `json:"nb_tracks"`
	Public      bool   `json:"public"`
	Link        string `json:"link,omitempty"`
}

// User represents a Deezer user profile as returned by /user/me.
type User struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country,omitempty"`
	Link    string `json:"link,omitempty"`
	Type    string `json:"type"`
}

// TrackIDs returns the ids of tracks in order.
func TrackIDs(tracks []Track) []int64 {
	ids := make([]int64, len(tracks))
	for i, t := range tracks {
		ids[i] = t.ID
	}
	return ids
}

// FilterByTitle returns every playlist whose title equals one of titles, preserving library order.
func FilterByTitle(playlists []Playlist, titles ...string) []Playlist {
	wanted := make(map[string]struct{}, len(titles))
	for _, t := range titles {
		wanted[t] = struct{}{}
	}

	var matched []Playlist
	for _, pl := range playlists {
		if _, ok := wanted[pl.Title]; ok {
			matched = append(matched, pl)
		}
	}
	return matched
}
