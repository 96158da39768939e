package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"tutelo/internal/domain/models"
	"tutelo/internal/lib/imageurl"
	"tutelo/internal/lib/logger/sl"
	"tutelo/internal/lib/pager"
	"tutelo/internal/metrics"
	"tutelo/internal/repository"
	"tutelo/internal/transport/http/dto"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
)

// CatalogService owns the browsing state: the committed hotel list, the
// pager position, and the photo hydration cache that backfills listings the
// list endpoint returned without photos.
type CatalogService struct {
	log      *slog.Logger
	repo     repository.HotelRepository
	composer imageurl.Composer
	photos   *cache.Cache
	pageSize int
	hydrateN int

	mu      sync.Mutex
	hotels  []models.Hotel
	current int
	total   int
	gen     uint64
}

func NewCatalogService(log *slog.Logger, repo repository.HotelRepository, composer imageurl.Composer, pageSize, hydrateConcurrency int) *CatalogService {
	if pageSize < 1 {
		pageSize = 10
	}
	if hydrateConcurrency < 1 {
		hydrateConcurrency = 4
	}

	return &CatalogService{
		log:      log,
		repo:     repo,
		composer: composer,
		photos:   cache.New(cache.NoExpiration, 0),
		pageSize: pageSize,
		hydrateN: hydrateConcurrency,
		current:  1,
		total:    1,
	}
}

// Reload fetches the catalog and commits it. The pager's current page is
// clamped against the new total rather than reset, so a shrinking catalog
// never leaves the position past the end. A photo hydration pass for the
// committed list starts in the background; any pass still running for an
// older list is left to finish and its results are dropped.
func (s *CatalogService) Reload(ctx context.Context) error {
	const op = "service.CatalogService.Reload"
	log := s.log.With(slog.String("op", op))

	hotels, err := s.repo.ListHotels(ctx)
	if err != nil {
		log.Error("failed to load catalog", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.hotels = hotels
	s.total = pager.TotalPages(len(hotels), s.pageSize)
	s.current = pager.Clamp(s.current, s.total)
	s.gen++
	gen := s.gen
	s.mu.Unlock()

	log.Info("catalog reloaded", slog.Int("hotels", len(hotels)))

	go s.hydrate(gen, hotels)

	return nil
}

// Page commits page as the current position (clamped) and assembles its
// view: the hotels of that page with merged photo URLs and the pager marker
// sequence.
func (s *CatalogService) Page(page int) dto.CatalogPage {
	s.mu.Lock()
	defer s.mu.Unlock()

	safe := pager.Clamp(page, s.total)
	s.current = safe

	start := (safe - 1) * s.pageSize
	end := start + s.pageSize
	if end > len(s.hotels) {
		end = len(s.hotels)
	}

	summaries := make([]dto.HotelSummary, 0, end-start)
	for _, h := range s.hotels[start:end] {
		summaries = append(summaries, dto.HotelSummary{
			ID:          h.ID,
			Name:        h.Name,
			City:        h.City,
			Address:     h.Address,
			Description: h.Description,
			ImageURLs:   s.absolutized(s.resolvedURLs(h)),
		})
	}

	return dto.CatalogPage{
		Page:       safe,
		TotalPages: s.total,
		Pager:      pager.Window(safe, s.total),
		Hotels:     summaries,
	}
}

// PagerState reports the committed pager position.
func (s *CatalogService) PagerState() (current, total int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current, s.total
}

// Hotel fetches one listing in full and resolves its photos for rendering.
func (s *CatalogService) Hotel(ctx context.Context, id int64) (dto.HotelDetail, error) {
	const op = "service.CatalogService.Hotel"
	log := s.log.With(slog.String("op", op), slog.Int64("hotel_id", id))

	hotel, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		log.Error("failed to fetch hotel", sl.Err(err))
		return dto.HotelDetail{}, fmt.Errorf("%s: %w", op, err)
	}

	return dto.HotelDetail{
		ID:          hotel.ID,
		Name:        hotel.Name,
		City:        hotel.City,
		Address:     hotel.Address,
		Description: hotel.Description,
		ImageURLs:   s.absolutized(imageurl.FromHotel(hotel)),
	}, nil
}

// resolvedURLs prefers a hotel's own photos; the hydration cache is
// consulted only when they resolve to nothing. Caller holds s.mu.
func (s *CatalogService) resolvedURLs(h models.Hotel) []string {
	if urls := imageurl.FromHotel(h); len(urls) > 0 {
		return urls
	}
	return s.cachedURLs(h.ID)
}

func (s *CatalogService) cachedURLs(id int64) []string {
	if v, ok := s.photos.Get(photoKey(id)); ok {
		if urls, ok := v.([]string); ok {
			return urls
		}
	}
	return nil
}

func (s *CatalogService) absolutized(urls []string) []string {
	if len(urls) == 0 {
		return nil
	}
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		out = append(out, s.composer.Absolute(u))
	}
	return out
}

// hydrate backfills photos for every committed hotel whose own photo fields
// resolved to nothing and whose cache entry is still empty. Fetches run
// concurrently up to the configured width; a failed fetch contributes
// nothing and is never surfaced past this pass. Results are committed only
// if the catalog has not been reloaded since the pass started.
func (s *CatalogService) hydrate(gen uint64, hotels []models.Hotel) {
	const op = "service.CatalogService.hydrate"
	log := s.log.With(
		slog.String("op", op),
		slog.String("pass_id", uuid.New().String()),
	)

	var targets []models.Hotel
	s.mu.Lock()
	for _, h := range hotels {
		if len(imageurl.FromHotel(h)) == 0 && len(s.cachedURLs(h.ID)) == 0 {
			targets = append(targets, h)
		}
	}
	s.mu.Unlock()

	if len(targets) == 0 {
		return
	}

	log.Info("hydrating missing photos", slog.Int("targets", len(targets)))

	var (
		wg    sync.WaitGroup
		sem   = make(chan struct{}, s.hydrateN)
		resMu sync.Mutex
		found = make(map[int64][]string, len(targets))
	)

	for _, target := range targets {
		wg.Add(1)
		go func(h models.Hotel) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			full, err := s.repo.GetHotel(context.Background(), h.ID)
			if err != nil {
				metrics.HydrationFetchesTotal.WithLabelValues("error").Inc()
				log.Warn("hydration fetch failed",
					slog.Int64("hotel_id", h.ID),
					sl.Err(err),
				)
				return
			}
			metrics.HydrationFetchesTotal.WithLabelValues("ok").Inc()

			resMu.Lock()
			found[h.ID] = imageurl.FromHotel(full)
			resMu.Unlock()
		}(target)
	}
	wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		log.Info("stale hydration pass dropped", slog.Int("results", len(found)))
		return
	}

	for id, urls := range found {
		s.photos.Set(photoKey(id), urls, cache.NoExpiration)
	}
}

func photoKey(id int64) string {
	return strconv.FormatInt(id, 10)
}
