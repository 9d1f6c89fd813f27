// AngelaMos | 2026
// changelog.go

package changelog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/carterperez-dev/debt-manager/internal/core"
)

const (
	defaultLimit = 20
	maxLimit     = 100
)

type Entry struct {
	ID          string    `db:"id"           json:"id"`
	Version     string    `db:"version"      json:"version"`
	Title       string    `db:"title"        json:"title"`
	Body        string    `db:"body"         json:"body"`
	PublishedAt time.Time `db:"published_at" json:"published_at"`
}

type Repository interface {
	List(ctx context.Context, limit int) ([]Entry, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, limit int) ([]Entry, error) {
	entries := []Entry{}
	err := r.db.SelectContext(ctx, &entries, `
		SELECT id, version, title, body, published_at
		FROM changelogs
		WHERE published_at <= NOW()
		ORDER BY published_at DESC, version DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list changelogs: %w", err)
	}
	return entries, nil
}

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the public release notes feed.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/changelogs", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			core.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = min(n, maxLimit)
	}

	entries, err := h.repo.List(r.Context(), limit)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OK(w, entries)
}
