//go:build integration

package integration

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"
	"time"
)

// fakePost mirrors a record on the remote list resource.
type fakePost struct {
	ID     any    `json:"id"`
	Title  string `json:"title"`
	Body   string `json:"body"`
	UserID int    `json:"userId"`
}

// fakeRemote serves GET and POST on /posts the way the public placeholder
// API does: GET honours _limit and POST answers with a fresh id.
type fakeRemote struct {
	*httptest.Server

	mu      sync.Mutex
	posts   []fakePost
	created []fakePost
	nextID  int
	status  int
	delay   time.Duration
	gets    int
	postsN  int
}

func newFakeRemote() *fakeRemote {
	f := &fakeRemote{nextID: 101}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts", f.list)
	mux.HandleFunc("POST /posts", f.create)
	f.Server = httptest.NewServer(mux)

	return f
}

func startFakeRemote(t *testing.T) *fakeRemote {
	t.Helper()

	f := newFakeRemote()
	t.Cleanup(f.Close)

	return f
}

// seed replaces the records served by GET.
func (f *fakeRemote) seed(posts ...fakePost) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.posts = posts
}

// failWith makes every request answer with status; 0 restores normal service.
func (f *fakeRemote) failWith(status int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.status = status
}

// slowDown delays every GET by d.
func (f *fakeRemote) slowDown(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.delay = d
}

func (f *fakeRemote) createdPosts() []fakePost {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]fakePost, len(f.created))
	copy(out, f.created)

	return out
}

func (f *fakeRemote) calls() (gets, posts int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.gets, f.postsN
}

func (f *fakeRemote) list(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.gets++
	status := f.status
	posts := f.posts
	delay := f.delay
	f.mu.Unlock()

	time.Sleep(delay)

	if status != 0 {
		writeJSON(w, status, map[string]any{"error": map[string]string{"message": http.StatusText(status)}})
		return
	}

	if limit, err := strconv.Atoi(r.URL.Query().Get("_limit")); err == nil && limit < len(posts) {
		posts = posts[:limit]
	}

	if posts == nil {
		posts = []fakePost{}
	}

	writeJSON(w, http.StatusOK, posts)
}

func (f *fakeRemote) create(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.postsN++

	if f.status != 0 {
		writeJSON(w, f.status, map[string]any{"error": map[string]string{"message": http.StatusText(f.status)}})
		return
	}

	var p fakePost
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": map[string]string{"message": err.Error()}})
		return
	}

	p.ID = f.nextID
	f.nextID++
	f.created = append(f.created, p)

	writeJSON(w, http.StatusCreated, p)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
