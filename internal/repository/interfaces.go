package repository

import (
	"context"
	"mime/multipart"

	"tutelo/internal/domain/models"
)

type HotelRepository interface {
	ListHotels(ctx context.Context) ([]models.Hotel, error)
	GetHotel(ctx context.Context, id int64) (models.Hotel, error)
	CreateHotel(ctx context.Context, in models.HotelInput) (models.Hotel, error)
	UpdateHotel(ctx context.Context, id int64, in models.HotelInput) (models.Hotel, error)
	DeleteHotel(ctx context.Context, id int64) error
	UploadImages(ctx context.Context, id int64, files []*multipart.FileHeader) ([]string, error)
	RemoveImage(ctx context.Context, id int64, url string) error
}
