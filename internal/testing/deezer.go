package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/desertthunder/dzshuffled/internal/models"
)

// DeezerServer is a fake Deezer API backed by [httptest.Server].
//
// Requests must carry Token as access_token. List endpoints are paginated by PageSize with absolute next links.
type DeezerServer struct {
	*httptest.Server

	mu        sync.Mutex
	Token     string
	User      models.User
	Playlists []models.Playlist
	Tracks    map[int64][]models.Track
	PageSize  int
	Requests  []string
	Purged    []string // songs value of every track delete, in order
	nextID    int64
}

// NewDeezerServer starts a fake API accepting token, closed when the test finishes.
func NewDeezerServer(t *testing.T, token string) *DeezerServer {
	t.Helper()

	d := &DeezerServer{
		Token:  token,
		User:   models.User{ID: 42, Name: "tester", Type: "user"},
		Tracks: map[int64][]models.Track{},
		nextID: 5000,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /user/me", d.handleMe)
	mux.HandleFunc("GET /user/me/playlists", d.handleMyPlaylists)
	mux.HandleFunc("POST /user/{user}/playlists", d.handleCreate)
	mux.HandleFunc("POST /playlist/{id}", d.handleDescription)
	mux.HandleFunc("DELETE /playlist/{id}", d.handleRemove)
	mux.HandleFunc("GET /playlist/{id}/tracks", d.handleTracks)
	mux.HandleFunc("POST /playlist/{id}/tracks", d.handleAdd)
	mux.HandleFunc("DELETE /playlist/{id}/tracks", d.handlePurge)

	d.Server = httptest.NewServer(d.authorized(mux))
	t.Cleanup(d.Close)
	return d
}

// RequestCount returns how many requests matched method and path.
func (d *DeezerServer) RequestCount(method, path string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, r := range d.Requests {
		if r == method+" "+path {
			n++
		}
	}
	return n
}

// PlaylistTracks returns a snapshot of a playlist's track ids.
func (d *DeezerServer) PlaylistTracks(id int64) []int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return models.TrackIDs(d.Tracks[id])
}

func (d *DeezerServer) authorized(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		d.mu.Lock()
		d.Requests = append(d.Requests, r.Method+" "+r.URL.Path)
		token := d.Token
		d.mu.Unlock()

		if r.FormValue("access_token") != token {
			writeJSON(w, map[string]any{
				"error": map[string]any{"type": "OAuthException", "message": "Invalid OAuth access token.", "code": 300},
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (d *DeezerServer) handleMe(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	writeJSON(w, d.User)
}

func (d *DeezerServer) handleMyPlaylists(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	items := slices.Clone(d.Playlists)
	d.mu.Unlock()
	writePage(w, r, d.pageSize(), items)
}

func (d *DeezerServer) handleTracks(w http.ResponseWriter, r *http.Request) {
	id, ok := d.playlistID(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	items := slices.Clone(d.Tracks[id])
	d.mu.Unlock()
	writePage(w, r, d.pageSize(), items)
}

func (d *DeezerServer) handleCreate(w http.ResponseWriter, r *http.Request) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := d.nextID
	d.nextID++
	d.Playlists = append(d.Playlists, models.Playlist{ID: id, Title: r.FormValue("title")})
	writeJSON(w, map[string]int64{"id": id})
}

func (d *DeezerServer) handleDescription(w http.ResponseWriter, r *http.Request) {
	id, ok := d.playlistID(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.Playlists {
		if d.Playlists[i].ID == id {
			d.Playlists[i].Description = r.FormValue("description")
		}
	}
	writeJSON(w, true)
}

func (d *DeezerServer) handleRemove(w http.ResponseWriter, r *http.Request) {
	id, ok := d.playlistID(w, r)
	if !ok {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Playlists = slices.DeleteFunc(d.Playlists, func(p models.Playlist) bool { return p.ID == id })
	delete(d.Tracks, id)
	writeJSON(w, true)
}

func (d *DeezerServer) handleAdd(w http.ResponseWriter, r *http.Request) {
	id, ok := d.playlistID(w, r)
	if !ok {
		return
	}
	ids := parseIDs(r.FormValue("songs"))
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, trackID := range ids {
		d.Tracks[id] = append(d.Tracks[id], models.Track{ID: trackID})
	}
	writeJSON(w, true)
}

func (d *DeezerServer) handlePurge(w http.ResponseWriter, r *http.Request) {
	id, ok := d.playlistID(w, r)
	if !ok {
		return
	}
	songs := r.URL.Query().Get("songs")
	remove := parseIDs(songs)
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Purged = append(d.Purged, songs)
	d.Tracks[id] = slices.DeleteFunc(d.Tracks[id], func(t models.Track) bool { return slices.Contains(remove, t.ID) })
	writeJSON(w, true)
}

func (d *DeezerServer) pageSize() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.PageSize
}

func (d *DeezerServer) playlistID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeJSON(w, map[string]any{
			"error": map[string]any{"type": "DataException", "message": "no data", "code": 800},
		})
		return 0, false
	}
	return id, true
}

func writePage[T any](w http.ResponseWriter, r *http.Request, size int, items []T) {
	index, _ := strconv.Atoi(r.URL.Query().Get("index"))
	if size <= 0 {
		size = len(items)
	}

	start := min(index, len(items))
	end := min(start+size, len(items))
	data := items[start:end]
	if data == nil {
		data = []T{}
	}
	page := map[string]any{"data": data, "total": len(items)}

	if end < len(items) {
		q := r.URL.Query()
		q.Set("index", strconv.Itoa(end))
		page["next"] = "http://" + r.Host + r.URL.Path + "?" + q.Encode()
	}
	writeJSON(w, page)
}

func parseIDs(raw string) []int64 {
	var ids []int64
	for part := range strings.SplitSeq(raw, ",") {
		if id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
