// AngelaMos | 2026
// changelog_test.go

package changelog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
)

type fakeRepo struct {
	entries   []Entry
	lastLimit int
}

func (f *fakeRepo) List(_ context.Context, limit int) ([]Entry, error) {
	f.lastLimit = limit
	if len(f.entries) > limit {
		return f.entries[:limit], nil
	}
	return f.entries, nil
}

func TestList(t *testing.T) {
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeRepo{entries: []Entry{
		{ID: "2", Version: "1.1.0", Title: "Exports", PublishedAt: base.AddDate(0, 1, 0)},
		{ID: "1", Version: "1.0.0", Title: "Launch", PublishedAt: base},
	}}

	r := chi.NewRouter()
	NewHandler(repo).RegisterRoutes(r)

	tests := []struct {
		name      string
		query     string
		status    int
		wantLimit int
	}{
		{"default limit", "", http.StatusOK, defaultLimit},
		{"explicit limit", "?limit=1", http.StatusOK, 1},
		{"capped limit", "?limit=1000", http.StatusOK, maxLimit},
		{"bad limit", "?limit=abc", http.StatusBadRequest, 0},
		{"zero limit", "?limit=0", http.StatusBadRequest, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo.lastLimit = 0
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/changelogs"+tt.query, nil))

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if repo.lastLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", repo.lastLimit, tt.wantLimit)
			}
		})
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/changelogs", nil))

	var body struct {
		Success bool    `json:"success"`
		Data    []Entry `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if !body.Success || len(body.Data) != 2 || body.Data[0].Version != "1.1.0" {
		t.Errorf("body = %+v", body)
	}
}
