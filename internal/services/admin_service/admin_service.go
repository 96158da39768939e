package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"sync"

	"tutelo/internal/domain/models"
	"tutelo/internal/lib/logger/sl"
	"tutelo/internal/repository"
	"tutelo/internal/transport/http/dto"

	"github.com/go-playground/validator/v10"
)

// Phase is the workflow's coarse state.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseSubmitting Phase = "submitting"
	PhaseError      Phase = "error"
)

// Op names the mutation a submitting workflow is running.
type Op string

const (
	OpCreate Op = "create"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// CatalogRefresher re-fetches the catalog after a successful mutation. Every
// visible effect of a mutation comes from this re-fetch; the workflow keeps
// no speculative local copy of upstream state.
type CatalogRefresher interface {
	Reload(ctx context.Context) error
}

// AdminService drives the admin create/edit/delete workflow against the
// upstream service. One mutation at a time: a second submit while one is
// pending is rejected, not queued.
type AdminService struct {
	log      *slog.Logger
	repo     repository.HotelRepository
	catalog  CatalogRefresher
	validate *validator.Validate

	mu            sync.Mutex
	phase         Phase
	op            Op
	lastErr       *WorkflowError
	pendingDelete *dto.DeleteTarget
}

func NewAdminService(log *slog.Logger, repo repository.HotelRepository, catalog CatalogRefresher) *AdminService {
	return &AdminService{
		log:      log,
		repo:     repo,
		catalog:  catalog,
		validate: validator.New(),
		phase:    PhaseIdle,
	}
}

// State snapshots the workflow for rendering.
func (s *AdminService) State() dto.WorkflowState {
	s.mu.Lock()
	defer s.mu.Unlock()

	state := dto.WorkflowState{
		Phase:         string(s.phase),
		Op:            string(s.op),
		PendingDelete: s.pendingDelete,
	}
	if s.lastErr != nil {
		state.Error = &dto.WorkflowError{
			Kind:    string(s.lastErr.Kind),
			Message: s.lastErr.Message,
		}
	}
	return state
}

// Dismiss acknowledges a rendered error and returns the workflow to idle.
func (s *AdminService) Dismiss() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseError {
		s.phase = PhaseIdle
		s.op = ""
		s.lastErr = nil
	}
}

// Create validates locally, creates the hotel, then uploads the selected
// files against the new id. An upload failure is surfaced as an error but
// the created record is not rolled back; the operator retries the photos
// separately. On full success the catalog is re-fetched before the workflow
// settles.
func (s *AdminService) Create(ctx context.Context, in models.HotelInput, files []*multipart.FileHeader) (models.Hotel, error) {
	const op = "service.AdminService.Create"
	log := s.log.With(slog.String("op", op), slog.String("name", in.Name))

	if err := s.begin(OpCreate); err != nil {
		return models.Hotel{}, err
	}

	in = in.Trimmed()
	if werr := s.validateInput(in); werr != nil {
		s.fail(werr)
		return models.Hotel{}, werr
	}

	log.Info("creating hotel")

	created, err := s.repo.CreateHotel(ctx, in)
	if err != nil {
		werr := classify(OpCreate, err)
		log.Error("create failed", sl.Err(err))
		s.fail(werr)
		return models.Hotel{}, werr
	}

	if len(files) > 0 {
		if _, err := s.repo.UploadImages(ctx, created.ID, files); err != nil {
			// Record persists; only the photo upload is reported.
			werr := classify(OpCreate, err)
			log.Error("image upload failed after create",
				slog.Int64("hotel_id", created.ID),
				sl.Err(err),
			)
			s.fail(werr)
			return created, werr
		}
	}

	s.refresh(ctx, log)
	s.settle()

	log.Info("hotel created", slog.Int64("hotel_id", created.ID))
	return created, nil
}

// Update writes the text fields, appends any selected files, then re-fetches
// the edited record (its photo list may have changed) and the catalog.
func (s *AdminService) Update(ctx context.Context, id int64, in models.HotelInput, files []*multipart.FileHeader) (models.Hotel, error) {
	const op = "service.AdminService.Update"
	log := s.log.With(slog.String("op", op), slog.Int64("hotel_id", id))

	if err := s.begin(OpUpdate); err != nil {
		return models.Hotel{}, err
	}

	in = in.Trimmed()
	if werr := s.validateInput(in); werr != nil {
		s.fail(werr)
		return models.Hotel{}, werr
	}

	log.Info("updating hotel")

	if _, err := s.repo.UpdateHotel(ctx, id, in); err != nil {
		werr := classify(OpUpdate, err)
		log.Error("update failed", sl.Err(err))
		s.fail(werr)
		return models.Hotel{}, werr
	}

	if len(files) > 0 {
		if _, err := s.repo.UploadImages(ctx, id, files); err != nil {
			werr := classify(OpUpdate, err)
			log.Error("image upload failed", sl.Err(err))
			s.fail(werr)
			return models.Hotel{}, werr
		}
	}

	refreshed, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		werr := classify(OpUpdate, err)
		log.Error("refetch after update failed", sl.Err(err))
		s.fail(werr)
		return models.Hotel{}, werr
	}

	s.refresh(ctx, log)
	s.settle()

	log.Info("hotel updated")
	return refreshed, nil
}

// RequestDelete opens the confirmation step for one hotel. Nothing is sent
// to the upstream until ConfirmDelete.
func (s *AdminService) RequestDelete(id int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingDelete = &dto.DeleteTarget{ID: id, Name: name}
}

// CancelDelete closes the confirmation step without deleting.
func (s *AdminService) CancelDelete() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pendingDelete = nil
}

// ConfirmDelete issues the delete for the pending target. The target stays
// pending on failure so the confirmation can be retried or cancelled.
func (s *AdminService) ConfirmDelete(ctx context.Context) error {
	const op = "service.AdminService.ConfirmDelete"

	s.mu.Lock()
	target := s.pendingDelete
	s.mu.Unlock()

	if target == nil {
		return ErrNoPendingDelete
	}

	log := s.log.With(slog.String("op", op), slog.Int64("hotel_id", target.ID))

	if err := s.begin(OpDelete); err != nil {
		return err
	}

	log.Info("deleting hotel")

	if err := s.repo.DeleteHotel(ctx, target.ID); err != nil {
		werr := classify(OpDelete, err)
		log.Error("delete failed", sl.Err(err))
		s.fail(werr)
		return werr
	}

	s.mu.Lock()
	s.pendingDelete = nil
	s.mu.Unlock()

	s.refresh(ctx, log)
	s.settle()

	log.Info("hotel deleted")
	return nil
}

// RemoveImage detaches one photo by its exact stored URL, then re-fetches
// the record for the edit view and the catalog.
func (s *AdminService) RemoveImage(ctx context.Context, id int64, imageURL string) (models.Hotel, error) {
	const op = "service.AdminService.RemoveImage"
	log := s.log.With(slog.String("op", op), slog.Int64("hotel_id", id))

	if err := s.begin(OpUpdate); err != nil {
		return models.Hotel{}, err
	}

	log.Info("removing image", slog.String("url", imageURL))

	if err := s.repo.RemoveImage(ctx, id, imageURL); err != nil {
		werr := classify(OpUpdate, err)
		log.Error("image removal failed", sl.Err(err))
		s.fail(werr)
		return models.Hotel{}, werr
	}

	refreshed, err := s.repo.GetHotel(ctx, id)
	if err != nil {
		werr := classify(OpUpdate, err)
		log.Error("refetch after image removal failed", sl.Err(err))
		s.fail(werr)
		return models.Hotel{}, werr
	}

	s.refresh(ctx, log)
	s.settle()

	log.Info("image removed")
	return refreshed, nil
}

// begin gates duplicate submissions and marks the workflow submitting.
func (s *AdminService) begin(op Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.phase == PhaseSubmitting {
		return ErrSubmitInFlight
	}

	s.phase = PhaseSubmitting
	s.op = op
	s.lastErr = nil
	return nil
}

func (s *AdminService) fail(werr *WorkflowError) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseError
	s.lastErr = werr
}

func (s *AdminService) settle() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.phase = PhaseIdle
	s.op = ""
	s.lastErr = nil
}

// refresh re-fetches the catalog after a successful mutation. A refresh
// failure is logged, not treated as a failure of the mutation itself.
func (s *AdminService) refresh(ctx context.Context, log *slog.Logger) {
	if err := s.catalog.Reload(ctx); err != nil {
		log.Warn("catalog refresh failed", sl.Err(err))
	}
}

// validateInput rejects missing required fields before anything leaves the
// process. Messages are static and name the field.
func (s *AdminService) validateInput(in models.HotelInput) *WorkflowError {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "Name":
			return &WorkflowError{KindValidation, "name is required"}
		case "City":
			return &WorkflowError{KindValidation, "city is required"}
		case "Address":
			return &WorkflowError{KindValidation, "address is required"}
		}
	}

	return &WorkflowError{KindValidation, "name, city and address are required"}
}
