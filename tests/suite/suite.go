package suite

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"tutelo/internal/config"
	"tutelo/internal/domain/models"
	"tutelo/internal/lib/imageurl"
	"tutelo/internal/repository"
	adminservice "tutelo/internal/services/admin_service"
	catalogservice "tutelo/internal/services/catalog_service"
	"tutelo/internal/storage/credstore"
)

type Suite struct {
	*testing.T
	Cfg      *config.Config
	Catalog  *catalogservice.CatalogService
	Admin    *adminservice.AdminService
	Store    *credstore.FileStore
	Upstream *FakeUpstream
}

// New wires the catalog and admin services against an in-process fake of the
// upstream hotels service.
func New(t *testing.T) (context.Context, *Suite) {
	t.Helper()
	t.Parallel()

	cfg := config.MustLoadPath(configPath())

	ctx, cancelCtx := context.WithTimeout(context.Background(), time.Minute)

	upstream := NewFakeUpstream()
	t.Cleanup(upstream.Close)

	store, err := credstore.New(filepath.Join(t.TempDir(), "admin_basic.json"))
	if err != nil {
		t.Fatalf("credstore: %v", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	repo := repository.NewHotelRepository(upstream.URL(), store)
	composer := imageurl.NewComposer(upstream.URL(), cfg.Upstream.MediaOrigin)

	catalog := catalogservice.NewCatalogService(log, repo, composer, cfg.Catalog.PageSize, cfg.Catalog.HydrateConcurrency)
	admin := adminservice.NewAdminService(log, repo, catalog)

	t.Cleanup(func() {
		t.Helper()
		cancelCtx()
	})

	return ctx, &Suite{
		T:        t,
		Cfg:      cfg,
		Catalog:  catalog,
		Admin:    admin,
		Store:    store,
		Upstream: upstream,
	}
}

func configPath() string {
	const key = "CONFIG_PATH"

	if v := os.Getenv(key); v != "" {
		return v
	}

	return "../config/config.yaml"
}

// FakeUpstream is an in-memory stand-in for the hotels service. Admin routes
// demand the admin/admin123 Basic pair; the create route rejects duplicate
// names with 409 the way the real service does.
type FakeUpstream struct {
	mu     sync.Mutex
	nextID int64
	hotels map[int64]models.Hotel

	srv *httptest.Server
}

func NewFakeUpstream() *FakeUpstream {
	u := &FakeUpstream{
		nextID: 1,
		hotels: make(map[int64]models.Hotel),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /hotels", u.listHotels)
	mux.HandleFunc("GET /hotels/{id}", u.getHotel)
	mux.HandleFunc("POST /admin/hotels", u.adminOnly(u.createHotel))
	mux.HandleFunc("PUT /admin/hotels/{id}", u.adminOnly(u.updateHotel))
	mux.HandleFunc("DELETE /admin/hotels/{id}", u.adminOnly(u.deleteHotel))
	mux.HandleFunc("DELETE /admin/hotels/{id}/images", u.adminOnly(u.removeImage))

	u.srv = httptest.NewServer(mux)
	return u
}

func (u *FakeUpstream) URL() string { return u.srv.URL }

func (u *FakeUpstream) Close() { u.srv.Close() }

// Seed inserts a hotel directly, bypassing the admin routes.
func (u *FakeUpstream) Seed(h models.Hotel) models.Hotel {
	u.mu.Lock()
	defer u.mu.Unlock()

	if h.ID == 0 {
		h.ID = u.nextID
	}
	if h.ID >= u.nextID {
		u.nextID = h.ID + 1
	}
	u.hotels[h.ID] = h
	return h
}

func (u *FakeUpstream) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	expected := "Basic " + base64.StdEncoding.EncodeToString([]byte("admin:admin123"))

	return func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != expected {
			http.Error(w, "bad credentials", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}

func (u *FakeUpstream) listHotels(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	hotels := make([]models.Hotel, 0, len(u.hotels))
	for id := int64(1); id < u.nextID; id++ {
		if h, ok := u.hotels[id]; ok {
			hotels = append(hotels, h)
		}
	}
	u.mu.Unlock()

	writeJSON(w, http.StatusOK, hotels)
}

func (u *FakeUpstream) getHotel(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	u.mu.Lock()
	h, ok := u.hotels[id]
	u.mu.Unlock()

	if !ok {
		http.Error(w, "no such hotel", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, h)
}

func (u *FakeUpstream) createHotel(w http.ResponseWriter, r *http.Request) {
	var in models.HotelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	for _, h := range u.hotels {
		if strings.EqualFold(h.Name, in.Name) {
			http.Error(w, fmt.Sprintf("hotel %q already exists", in.Name), http.StatusConflict)
			return
		}
	}

	h := models.Hotel{
		ID:          u.nextID,
		Name:        in.Name,
		City:        in.City,
		Address:     in.Address,
		Description: in.Description,
	}
	u.nextID++
	u.hotels[h.ID] = h

	writeJSON(w, http.StatusCreated, h)
}

func (u *FakeUpstream) updateHotel(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	var in models.HotelInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	h, ok := u.hotels[id]
	if !ok {
		http.Error(w, "no such hotel", http.StatusNotFound)
		return
	}

	h.Name = in.Name
	h.City = in.City
	h.Address = in.Address
	h.Description = in.Description
	u.hotels[id] = h

	writeJSON(w, http.StatusOK, h)
}

func (u *FakeUpstream) deleteHotel(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)

	u.mu.Lock()
	defer u.mu.Unlock()

	if _, ok := u.hotels[id]; !ok {
		http.Error(w, "no such hotel", http.StatusNotFound)
		return
	}
	delete(u.hotels, id)

	w.WriteHeader(http.StatusNoContent)
}

func (u *FakeUpstream) removeImage(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	target := r.URL.Query().Get("url")

	u.mu.Lock()
	defer u.mu.Unlock()

	h, ok := u.hotels[id]
	if !ok {
		http.Error(w, "no such hotel", http.StatusNotFound)
		return
	}

	kept := make([]string, 0, len(h.ImageURLs))
	for _, img := range h.ImageURLs {
		if img != target {
			kept = append(kept, img)
		}
	}
	h.ImageURLs = kept
	u.hotels[id] = h

	writeJSON(w, http.StatusOK, h)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
