package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"tutelo/internal/domain/models"
)

// HeaderSource hands out the Authorization value attached to admin requests.
type HeaderSource interface {
	BasicAuth() string
}

// HotelRepo talks to the upstream hotels service. The client carries no
// timeout and no retry: a request that hangs keeps its operation in flight
// until the upstream settles it.
type HotelRepo struct {
	baseURL string
	client  *http.Client
	auth    HeaderSource
}

func NewHotelRepository(baseURL string, auth HeaderSource) *HotelRepo {
	return &HotelRepo{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{},
		auth:    auth,
	}
}

func (r *HotelRepo) ListHotels(ctx context.Context) ([]models.Hotel, error) {
	const op = "repository.hotel_repository.ListHotels"

	var hotels []models.Hotel
	if err := r.do(ctx, http.MethodGet, "/hotels", nil, nil, "", false, &hotels); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return hotels, nil
}

func (r *HotelRepo) GetHotel(ctx context.Context, id int64) (models.Hotel, error) {
	const op = "repository.hotel_repository.GetHotel"

	var hotel models.Hotel
	if err := r.do(ctx, http.MethodGet, fmt.Sprintf("/hotels/%d", id), nil, nil, "", false, &hotel); err != nil {
		return models.Hotel{}, fmt.Errorf("%s: %w", op, err)
	}

	return hotel, nil
}

func (r *HotelRepo) CreateHotel(ctx context.Context, in models.HotelInput) (models.Hotel, error) {
	const op = "repository.hotel_repository.CreateHotel"

	body, err := json.Marshal(in)
	if err != nil {
		return models.Hotel{}, fmt.Errorf("%s: marshal: %w", op, err)
	}

	var hotel models.Hotel
	if err := r.do(ctx, http.MethodPost, "/admin/hotels", nil, bytes.NewReader(body), "application/json", true, &hotel); err != nil {
		return models.Hotel{}, fmt.Errorf("%s: %w", op, err)
	}

	return hotel, nil
}

func (r *HotelRepo) UpdateHotel(ctx context.Context, id int64, in models.HotelInput) (models.Hotel, error) {
	const op = "repository.hotel_repository.UpdateHotel"

	body, err := json.Marshal(in)
	if err != nil {
		return models.Hotel{}, fmt.Errorf("%s: marshal: %w", op, err)
	}

	var hotel models.Hotel
	if err := r.do(ctx, http.MethodPut, fmt.Sprintf("/admin/hotels/%d", id), nil, bytes.NewReader(body), "application/json", true, &hotel); err != nil {
		return models.Hotel{}, fmt.Errorf("%s: %w", op, err)
	}

	return hotel, nil
}

func (r *HotelRepo) DeleteHotel(ctx context.Context, id int64) error {
	const op = "repository.hotel_repository.DeleteHotel"

	if err := r.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/hotels/%d", id), nil, nil, "", true, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// UploadImages forwards the selected files as one multipart request; the
// upstream appends them to the hotel's photo list and answers with the
// stored URLs.
func (r *HotelRepo) UploadImages(ctx context.Context, id int64, files []*multipart.FileHeader) ([]string, error) {
	const op = "repository.hotel_repository.UploadImages"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, fh := range files {
		src, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("%s: open %s: %w", op, fh.Filename, err)
		}

		part, err := mw.CreateFormFile("files", fh.Filename)
		if err != nil {
			src.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		if _, err := io.Copy(part, src); err != nil {
			src.Close()
			return nil, fmt.Errorf("%s: copy %s: %w", op, fh.Filename, err)
		}
		src.Close()
	}

	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result struct {
		ImageURLs []string `json:"imageUrls"`
	}
	if err := r.do(ctx, http.MethodPost, fmt.Sprintf("/admin/hotels/%d/images", id), nil, &buf, mw.FormDataContentType(), true, &result); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return result.ImageURLs, nil
}

// RemoveImage deletes exactly one photo, addressed by its stored URL string
// rather than an index so a concurrent append cannot shift the target.
func (r *HotelRepo) RemoveImage(ctx context.Context, id int64, imageURL string) error {
	const op = "repository.hotel_repository.RemoveImage"

	q := url.Values{"url": []string{imageURL}}
	if err := r.do(ctx, http.MethodDelete, fmt.Sprintf("/admin/hotels/%d/images", id), q, nil, "", true, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *HotelRepo) do(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string, admin bool, out interface{}) error {
	target := r.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return err
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if admin {
		req.Header.Set("Authorization", r.auth.BasicAuth())
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return &StatusError{
			Code: resp.StatusCode,
			Body: strings.TrimSpace(string(data)),
		}
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}
