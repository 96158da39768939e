package repository

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"tutelo/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticAuth string

func (a staticAuth) BasicAuth() string { return string(a) }

const testAuthHeader = "Basic dGVzdDp0ZXN0"

func TestHotelRepo_ListHotels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/hotels", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[{"id": 1, "name": "Grand"}, {"id": 2, "name": "Plaza"}]`)
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

	hotels, err := repo.ListHotels(context.Background())
	require.NoError(t, err)
	require.Len(t, hotels, 2)
	assert.Equal(t, int64(1), hotels[0].ID)
	assert.Equal(t, "Plaza", hotels[1].Name)
}

func TestHotelRepo_GetHotel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hotels/7", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": 7, "name": "Grand", "images": ["/uploads/a.jpg"]}`)
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

	hotel, err := repo.GetHotel(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, int64(7), hotel.ID)
	assert.Equal(t, json.RawMessage(`["/uploads/a.jpg"]`), hotel.Images)
}

func TestHotelRepo_CreateHotel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/admin/hotels", r.URL.Path)
		assert.Equal(t, testAuthHeader, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in models.HotelInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Grand", in.Name)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		io.WriteString(w, `{"id": 11, "name": "Grand", "city": "Oslo", "address": "Main st 1"}`)
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

	created, err := repo.CreateHotel(context.Background(), models.HotelInput{
		Name:    "Grand",
		City:    "Oslo",
		Address: "Main st 1",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(11), created.ID)
}

func TestHotelRepo_UpdateHotel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/admin/hotels/11", r.URL.Path)
		assert.Equal(t, testAuthHeader, r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"id": 11, "name": "Grand Renamed"}`)
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

	updated, err := repo.UpdateHotel(context.Background(), 11, models.HotelInput{
		Name:    "Grand Renamed",
		City:    "Oslo",
		Address: "Main st 1",
	})
	require.NoError(t, err)
	assert.Equal(t, "Grand Renamed", updated.Name)
}

func TestHotelRepo_DeleteHotel(t *testing.T) {
	var called bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin/hotels/11", r.URL.Path)
		assert.Equal(t, testAuthHeader, r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

	require.NoError(t, repo.DeleteHotel(context.Background(), 11))
	assert.True(t, called)
}

func TestHotelRepo_RemoveImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/admin/hotels/11/images", r.URL.Path)
		assert.Equal(t, "/uploads/a.jpg", r.URL.Query().Get("url"))
		assert.Equal(t, testAuthHeader, r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

	require.NoError(t, repo.RemoveImage(context.Background(), 11, "/uploads/a.jpg"))
}

func TestHotelRepo_StatusError(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantBody string
	}{
		{"unauthorized", http.StatusUnauthorized, "bad credentials", "bad credentials"},
		{"forbidden", http.StatusForbidden, "", ""},
		{"conflict", http.StatusConflict, "duplicate name\n", "duplicate name"},
		{"server error", http.StatusInternalServerError, "boom", "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

			_, err := repo.ListHotels(context.Background())
			require.Error(t, err)

			var status *StatusError
			require.True(t, errors.As(err, &status))
			assert.Equal(t, tt.status, status.Code)
			assert.Equal(t, tt.wantBody, status.Body)
		})
	}
}

func TestHotelRepo_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL, staticAuth(testAuthHeader))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListHotels(ctx)
	assert.Error(t, err)
}

func TestHotelRepo_TrailingSlashTrimmed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/hotels", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[]`)
	}))
	defer srv.Close()

	repo := NewHotelRepository(srv.URL+"/", staticAuth(testAuthHeader))

	_, err := repo.ListHotels(context.Background())
	require.NoError(t, err)
}
