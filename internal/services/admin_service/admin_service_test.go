package services

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"testing"
	"time"

	"tutelo/internal/domain/models"
	"tutelo/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockHotelRepository struct {
	mock.Mock
}

func (m *MockHotelRepository) ListHotels(ctx context.Context) ([]models.Hotel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Hotel), args.Error(1)
}

func (m *MockHotelRepository) GetHotel(ctx context.Context, id int64) (models.Hotel, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Hotel), args.Error(1)
}

func (m *MockHotelRepository) CreateHotel(ctx context.Context, in models.HotelInput) (models.Hotel, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(models.Hotel), args.Error(1)
}

func (m *MockHotelRepository) UpdateHotel(ctx context.Context, id int64, in models.HotelInput) (models.Hotel, error) {
	args := m.Called(ctx, id, in)
	return args.Get(0).(models.Hotel), args.Error(1)
}

func (m *MockHotelRepository) DeleteHotel(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockHotelRepository) UploadImages(ctx context.Context, id int64, files []*multipart.FileHeader) ([]string, error) {
	args := m.Called(ctx, id, files)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockHotelRepository) RemoveImage(ctx context.Context, id int64, imageURL string) error {
	args := m.Called(ctx, id, imageURL)
	return args.Error(0)
}

type MockCatalogRefresher struct {
	mock.Mock
}

func (m *MockCatalogRefresher) Reload(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func statusErr(code int, body string) error {
	return &repository.StatusError{Code: code, Body: body}
}

func validInput() models.HotelInput {
	return models.HotelInput{Name: "Grand", City: "Oslo", Address: "Main st 1"}
}

func TestAdminService_CreateValidation(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()

	tests := []struct {
		name        string
		input       models.HotelInput
		expectedMsg string
	}{
		{
			name:        "missing name",
			input:       models.HotelInput{City: "Oslo", Address: "Main st 1"},
			expectedMsg: "name is required",
		},
		{
			name:        "missing city",
			input:       models.HotelInput{Name: "Grand", Address: "Main st 1"},
			expectedMsg: "city is required",
		},
		{
			name:        "missing address",
			input:       models.HotelInput{Name: "Grand", City: "Oslo"},
			expectedMsg: "address is required",
		},
		{
			name:        "whitespace only name rejected after trimming",
			input:       models.HotelInput{Name: "   ", City: "Oslo", Address: "Main st 1"},
			expectedMsg: "name is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockHotelRepository)
			mockCatalog := new(MockCatalogRefresher)
			service := NewAdminService(log, mockRepo, mockCatalog)

			_, err := service.Create(ctx, tt.input, nil)

			var werr *WorkflowError
			require.ErrorAs(t, err, &werr)
			assert.Equal(t, KindValidation, werr.Kind)
			assert.Equal(t, tt.expectedMsg, werr.Message)

			state := service.State()
			assert.Equal(t, string(PhaseError), state.Phase)
			require.NotNil(t, state.Error)
			assert.Equal(t, tt.expectedMsg, state.Error.Message)

			// Nothing left the process.
			mockRepo.AssertExpectations(t)
			mockCatalog.AssertExpectations(t)
		})
	}
}

func TestAdminService_CreateSuccess(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	created := models.Hotel{ID: 11, Name: "Grand", City: "Oslo", Address: "Main st 1"}
	mockRepo.On("CreateHotel", ctx, validInput()).Return(created, nil).Once()
	mockCatalog.On("Reload", ctx).Return(nil).Once()

	got, err := service.Create(ctx, validInput(), nil)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	state := service.State()
	assert.Equal(t, string(PhaseIdle), state.Phase)
	assert.Nil(t, state.Error)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_CreateTrimsInput(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	mockRepo.On("CreateHotel", ctx, validInput()).
		Return(models.Hotel{ID: 11}, nil).Once()
	mockCatalog.On("Reload", ctx).Return(nil).Once()

	_, err := service.Create(ctx, models.HotelInput{
		Name:    "  Grand  ",
		City:    " Oslo ",
		Address: " Main st 1 ",
	}, nil)
	require.NoError(t, err)

	mockRepo.AssertExpectations(t)
}

func TestAdminService_CreateConflict(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	mockRepo.On("CreateHotel", ctx, validInput()).
		Return(models.Hotel{}, statusErr(http.StatusConflict, "duplicate")).Once()

	_, err := service.Create(ctx, validInput(), nil)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindConflict, werr.Kind)
	assert.Equal(t, "a hotel with that name already exists", werr.Message)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_CreateUploadFailureKeepsRecord(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	files := []*multipart.FileHeader{{Filename: "a.jpg"}}
	created := models.Hotel{ID: 11, Name: "Grand"}

	mockRepo.On("CreateHotel", ctx, validInput()).Return(created, nil).Once()
	mockRepo.On("UploadImages", ctx, int64(11), files).
		Return(nil, statusErr(http.StatusInternalServerError, "disk full")).Once()

	got, err := service.Create(ctx, validInput(), files)

	// The record was created; only the photo upload failed, and the catalog
	// is not re-fetched on this path.
	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindUnclassified, werr.Kind)
	assert.Equal(t, "disk full", werr.Message)
	assert.Equal(t, created, got)

	state := service.State()
	assert.Equal(t, string(PhaseError), state.Phase)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_UpdateUnauthorized(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	mockRepo.On("UpdateHotel", ctx, int64(11), validInput()).
		Return(models.Hotel{}, statusErr(http.StatusUnauthorized, "")).Once()

	_, err := service.Update(ctx, 11, validInput(), nil)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindUnauthorized, werr.Kind)
	assert.Contains(t, werr.Message, "401")

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_UpdateSuccessRefetches(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	files := []*multipart.FileHeader{{Filename: "a.jpg"}}
	refreshed := models.Hotel{ID: 11, Name: "Grand", ImageURLs: []string{"/uploads/a.jpg"}}

	mockRepo.On("UpdateHotel", ctx, int64(11), validInput()).
		Return(models.Hotel{ID: 11}, nil).Once()
	mockRepo.On("UploadImages", ctx, int64(11), files).
		Return([]string{"/uploads/a.jpg"}, nil).Once()
	mockRepo.On("GetHotel", ctx, int64(11)).Return(refreshed, nil).Once()
	mockCatalog.On("Reload", ctx).Return(nil).Once()

	got, err := service.Update(ctx, 11, validInput(), files)
	require.NoError(t, err)
	assert.Equal(t, refreshed, got)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_UpdateForbidden(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	mockRepo.On("UpdateHotel", ctx, int64(11), validInput()).
		Return(models.Hotel{}, statusErr(http.StatusForbidden, "")).Once()

	_, err := service.Update(ctx, 11, validInput(), nil)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindForbidden, werr.Kind)

	mockRepo.AssertExpectations(t)
}

func TestAdminService_ConflictOutsideCreateIsUnclassified(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	mockRepo.On("UpdateHotel", ctx, int64(11), validInput()).
		Return(models.Hotel{}, statusErr(http.StatusConflict, "version clash")).Once()

	_, err := service.Update(ctx, 11, validInput(), nil)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindUnclassified, werr.Kind)
	assert.Equal(t, "version clash", werr.Message)

	mockRepo.AssertExpectations(t)
}

func TestAdminService_DeleteTwoStep(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	// Confirming with nothing pending is rejected.
	err := service.ConfirmDelete(ctx)
	assert.ErrorIs(t, err, ErrNoPendingDelete)

	service.RequestDelete(11, "Grand")

	state := service.State()
	require.NotNil(t, state.PendingDelete)
	assert.Equal(t, int64(11), state.PendingDelete.ID)
	assert.Equal(t, "Grand", state.PendingDelete.Name)

	mockRepo.On("DeleteHotel", ctx, int64(11)).Return(nil).Once()
	mockCatalog.On("Reload", ctx).Return(nil).Once()

	require.NoError(t, service.ConfirmDelete(ctx))

	state = service.State()
	assert.Nil(t, state.PendingDelete)
	assert.Equal(t, string(PhaseIdle), state.Phase)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_CancelDelete(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	service.RequestDelete(11, "Grand")
	service.CancelDelete()

	err := service.ConfirmDelete(ctx)
	assert.ErrorIs(t, err, ErrNoPendingDelete)

	mockRepo.AssertExpectations(t)
}

func TestAdminService_DeleteFailureKeepsPendingTarget(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	service.RequestDelete(11, "Grand")

	mockRepo.On("DeleteHotel", ctx, int64(11)).
		Return(statusErr(http.StatusForbidden, "")).Once()

	err := service.ConfirmDelete(ctx)

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindForbidden, werr.Kind)

	// The target survives the failure so the confirmation can be retried.
	state := service.State()
	require.NotNil(t, state.PendingDelete)
	assert.Equal(t, int64(11), state.PendingDelete.ID)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_RemoveImage(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	refreshed := models.Hotel{ID: 11, Name: "Grand"}

	mockRepo.On("RemoveImage", ctx, int64(11), "/uploads/a.jpg").Return(nil).Once()
	mockRepo.On("GetHotel", ctx, int64(11)).Return(refreshed, nil).Once()
	mockCatalog.On("Reload", ctx).Return(nil).Once()

	got, err := service.RemoveImage(ctx, 11, "/uploads/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, refreshed, got)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_RemoveImageBadRequest(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	mockRepo.On("RemoveImage", ctx, int64(11), "/uploads/missing.jpg").
		Return(statusErr(http.StatusBadRequest, "")).Once()

	_, err := service.RemoveImage(ctx, 11, "/uploads/missing.jpg")

	var werr *WorkflowError
	require.ErrorAs(t, err, &werr)
	assert.Equal(t, KindBadRequest, werr.Kind)
	assert.Contains(t, werr.Message, "required fields")

	mockRepo.AssertExpectations(t)
}

func TestAdminService_RefreshFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	mockRepo.On("CreateHotel", ctx, validInput()).
		Return(models.Hotel{ID: 11}, nil).Once()
	mockCatalog.On("Reload", ctx).Return(errors.New("upstream down")).Once()

	_, err := service.Create(ctx, validInput(), nil)
	assert.NoError(t, err)

	state := service.State()
	assert.Equal(t, string(PhaseIdle), state.Phase)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_SubmitGate(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	release := make(chan struct{})
	entered := make(chan struct{})

	mockRepo.On("CreateHotel", ctx, validInput()).
		Run(func(args mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(models.Hotel{ID: 11}, nil).Once()
	mockCatalog.On("Reload", ctx).Return(nil).Once()

	done := make(chan error, 1)
	go func() {
		_, err := service.Create(ctx, validInput(), nil)
		done <- err
	}()

	select {
	case <-entered:
	case <-time.After(time.Second):
		t.Fatal("first submission never reached the repository")
	}

	// A second submission while the first is in flight is rejected, not
	// queued.
	_, err := service.Create(ctx, validInput(), nil)
	assert.ErrorIs(t, err, ErrSubmitInFlight)

	close(release)
	require.NoError(t, <-done)

	state := service.State()
	assert.Equal(t, string(PhaseIdle), state.Phase)

	mockRepo.AssertExpectations(t)
	mockCatalog.AssertExpectations(t)
}

func TestAdminService_Dismiss(t *testing.T) {
	ctx := context.Background()
	log := slog.Default()
	mockRepo := new(MockHotelRepository)
	mockCatalog := new(MockCatalogRefresher)
	service := NewAdminService(log, mockRepo, mockCatalog)

	_, err := service.Create(ctx, models.HotelInput{}, nil)
	require.Error(t, err)

	state := service.State()
	assert.Equal(t, string(PhaseError), state.Phase)

	service.Dismiss()

	state = service.State()
	assert.Equal(t, string(PhaseIdle), state.Phase)
	assert.Nil(t, state.Error)
	assert.Empty(t, state.Op)
}
