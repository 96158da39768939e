package http

import (
	"context"
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"tutelo/internal/domain/models"
	"tutelo/internal/lib/logger/sl"
	"tutelo/internal/repository"
	adminservice "tutelo/internal/services/admin_service"
	"tutelo/internal/transport/http/dto"
	"tutelo/internal/transport/http/dto/request"
	"tutelo/internal/transport/http/dto/response"

	"github.com/labstack/echo/v4"
)

type CatalogService interface {
	Reload(ctx context.Context) error
	Page(page int) dto.CatalogPage
	Hotel(ctx context.Context, id int64) (dto.HotelDetail, error)
}

type AdminService interface {
	State() dto.WorkflowState
	Dismiss()
	Create(ctx context.Context, in models.HotelInput, files []*multipart.FileHeader) (models.Hotel, error)
	Update(ctx context.Context, id int64, in models.HotelInput, files []*multipart.FileHeader) (models.Hotel, error)
	RequestDelete(id int64, name string)
	CancelDelete()
	ConfirmDelete(ctx context.Context) error
	RemoveImage(ctx context.Context, id int64, imageURL string) (models.Hotel, error)
}

type SessionStore interface {
	Load() (models.AdminCredential, error)
	Save(cred models.AdminCredential) error
	Clear() error
}

type Routers struct {
	log            *slog.Logger
	CatalogService CatalogService
	AdminService   AdminService
	Sessions       SessionStore
}

func NewRouter(log *slog.Logger, catalogService CatalogService, adminService AdminService, sessions SessionStore) *Routers {
	return &Routers{
		log:            log,
		CatalogService: catalogService,
		AdminService:   adminService,
		Sessions:       sessions,
	}
}

// ListHotels godoc
// @Summary Browse the hotel catalog
// @Description Reloads the catalog from the upstream service and returns the requested page with merged photo URLs and the pager sequence.
// @Tags hotels
// @Produce json
// @Param page query int false "Page number (clamped into range)"
// @Success 200 {object} response.Response{data=dto.CatalogPage}
// @Failure 502 {object} response.ErrorResponse
// @Router /api/v1/hotels [get]
func (r *Routers) ListHotels(c echo.Context) error {
	const op = "http.routers.ListHotels"

	log := r.log.With(slog.String("op", op))

	if err := r.CatalogService.Reload(c.Request().Context()); err != nil {
		log.Error("catalog reload failed", sl.Err(err))
		return c.JSON(http.StatusBadGateway, response.ErrCatalogUnavailable)
	}

	page := 1
	if raw := c.QueryParam("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			page = n
		}
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(r.CatalogService.Page(page)))
}

// GetHotel godoc
// @Summary Fetch one hotel with resolved photos
// @Tags hotels
// @Produce json
// @Param id path int true "Hotel id"
// @Success 200 {object} response.Response{data=dto.HotelDetail}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/hotels/{id} [get]
func (r *Routers) GetHotel(c echo.Context) error {
	const op = "http.routers.GetHotel"

	log := r.log.With(slog.String("op", op))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidHotelID)
	}

	detail, err := r.CatalogService.Hotel(c.Request().Context(), id)
	if err != nil {
		log.Error("hotel fetch failed", slog.Int64("hotel_id", id), sl.Err(err))
		return c.JSON(upstreamStatus(err), response.ErrorResponseWithDetails("hotel_unavailable", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(detail))
}

// Login godoc
// @Summary Store the admin credential pair
// @Description Persists the pair verbatim; nothing is verified here. Admin requests echo it as a Basic auth header and the upstream is the only arbiter.
// @Tags admin
// @Accept json
// @Produce json
// @Param request body request.LoginRequest true "Admin credential"
// @Success 200 {object} response.Response{data=dto.SessionInfo}
// @Failure 400 {object} response.ErrorResponse
// @Router /api/v1/admin/login [post]
func (r *Routers) Login(c echo.Context) error {
	const op = "http.routers.Login"

	log := r.log.With(slog.String("op", op))

	var req request.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	req.User = strings.TrimSpace(req.User)
	req.Pass = strings.TrimSpace(req.Pass)

	if err := c.Validate(req); err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	if err := r.Sessions.Save(models.AdminCredential{User: req.User, Pass: req.Pass}); err != nil {
		log.Error("failed to store credential", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("credential_store_failed", err.Error()))
	}

	log.Info("admin logged in", slog.String("user", req.User))

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.SessionInfo{LoggedIn: true, User: req.User}))
}

// Logout godoc
// @Summary Forget the stored admin credential
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=dto.SessionInfo}
// @Router /api/v1/admin/logout [post]
func (r *Routers) Logout(c echo.Context) error {
	const op = "http.routers.Logout"

	log := r.log.With(slog.String("op", op))

	if err := r.Sessions.Clear(); err != nil {
		log.Error("failed to clear credential", sl.Err(err))
		return c.JSON(http.StatusInternalServerError, response.ErrorResponseWithDetails("credential_store_failed", err.Error()))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.SessionInfo{LoggedIn: false}))
}

// Session godoc
// @Summary Report the stored admin session
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=dto.SessionInfo}
// @Router /api/v1/admin/session [get]
func (r *Routers) Session(c echo.Context) error {
	cred, err := r.Sessions.Load()
	if err != nil || cred.User == "" || cred.Pass == "" {
		return c.JSON(http.StatusOK, response.SuccessResponse(dto.SessionInfo{LoggedIn: false}))
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(dto.SessionInfo{LoggedIn: true, User: cred.User}))
}

// CreateHotel godoc
// @Summary Create a hotel, optionally with photos
// @Description Accepts JSON or multipart/form-data; multipart submissions may attach files under "files", uploaded against the new id after the create succeeds.
// @Tags admin
// @Accept json
// @Accept mpfd
// @Produce json
// @Param request body request.HotelForm true "Hotel fields"
// @Success 201 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Failure 409 {object} response.ErrorResponse
// @Router /api/v1/admin/hotels [post]
func (r *Routers) CreateHotel(c echo.Context) error {
	const op = "http.routers.CreateHotel"

	log := r.log.With(slog.String("op", op))

	in, files, err := bindHotelForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	created, err := r.AdminService.Create(c.Request().Context(), in, files)
	if err != nil {
		log.Warn("create rejected", sl.Err(err))
		return workflowJSON(c, err)
	}

	return c.JSON(http.StatusCreated, response.SuccessResponse(created))
}

// UpdateHotel godoc
// @Summary Update a hotel's text fields, optionally appending photos
// @Tags admin
// @Accept json
// @Accept mpfd
// @Produce json
// @Param id path int true "Hotel id"
// @Param request body request.HotelForm true "Hotel fields"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/v1/admin/hotels/{id} [put]
func (r *Routers) UpdateHotel(c echo.Context) error {
	const op = "http.routers.UpdateHotel"

	log := r.log.With(slog.String("op", op))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidHotelID)
	}

	in, files, err := bindHotelForm(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	updated, err := r.AdminService.Update(c.Request().Context(), id, in, files)
	if err != nil {
		log.Warn("update rejected", slog.Int64("hotel_id", id), sl.Err(err))
		return workflowJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(updated))
}

// DeleteHotel godoc
// @Summary Delete a hotel
// @Description The workflow's confirmation step is driven by the caller: the DELETE request is the confirmation.
// @Tags admin
// @Produce json
// @Param id path int true "Hotel id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/v1/admin/hotels/{id} [delete]
func (r *Routers) DeleteHotel(c echo.Context) error {
	const op = "http.routers.DeleteHotel"

	log := r.log.With(slog.String("op", op))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidHotelID)
	}

	r.AdminService.RequestDelete(id, c.QueryParam("name"))

	if err := r.AdminService.ConfirmDelete(c.Request().Context()); err != nil {
		log.Warn("delete rejected", slog.Int64("hotel_id", id), sl.Err(err))
		return workflowJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(nil))
}

// UploadHotelImages godoc
// @Summary Append photos to a hotel
// @Tags admin
// @Accept mpfd
// @Produce json
// @Param id path int true "Hotel id"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/v1/admin/hotels/{id}/images [post]
func (r *Routers) UploadHotelImages(c echo.Context) error {
	const op = "http.routers.UploadHotelImages"

	log := r.log.With(slog.String("op", op))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidHotelID)
	}

	form, err := c.MultipartForm()
	if err != nil || len(form.File["files"]) == 0 {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidRequestFormat)
	}

	// Append-only: current text fields are replayed so the update request
	// changes nothing but the photo list.
	current, err := r.CatalogService.Hotel(c.Request().Context(), id)
	if err != nil {
		log.Error("hotel fetch failed", slog.Int64("hotel_id", id), sl.Err(err))
		return c.JSON(upstreamStatus(err), response.ErrorResponseWithDetails("hotel_unavailable", err.Error()))
	}

	in := models.HotelInput{
		Name:        current.Name,
		City:        current.City,
		Address:     current.Address,
		Description: current.Description,
	}

	updated, err := r.AdminService.Update(c.Request().Context(), id, in, form.File["files"])
	if err != nil {
		log.Warn("image upload rejected", slog.Int64("hotel_id", id), sl.Err(err))
		return workflowJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(updated))
}

// RemoveHotelImage godoc
// @Summary Remove one photo by its stored URL
// @Tags admin
// @Produce json
// @Param id path int true "Hotel id"
// @Param url query string true "Stored photo URL, e.g. /uploads/a.jpg"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse
// @Failure 401 {object} response.ErrorResponse
// @Failure 403 {object} response.ErrorResponse
// @Router /api/v1/admin/hotels/{id}/images [delete]
func (r *Routers) RemoveHotelImage(c echo.Context) error {
	const op = "http.routers.RemoveHotelImage"

	log := r.log.With(slog.String("op", op))

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, response.ErrInvalidHotelID)
	}

	imageURL := c.QueryParam("url")
	if imageURL == "" {
		return c.JSON(http.StatusBadRequest, response.ErrMissingImageURL)
	}

	updated, err := r.AdminService.RemoveImage(c.Request().Context(), id, imageURL)
	if err != nil {
		log.Warn("image removal rejected", slog.Int64("hotel_id", id), sl.Err(err))
		return workflowJSON(c, err)
	}

	return c.JSON(http.StatusOK, response.SuccessResponse(updated))
}

// WorkflowState godoc
// @Summary Inspect the admin workflow state machine
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=dto.WorkflowState}
// @Router /api/v1/admin/workflow [get]
func (r *Routers) WorkflowState(c echo.Context) error {
	return c.JSON(http.StatusOK, response.SuccessResponse(r.AdminService.State()))
}

// DismissWorkflowError godoc
// @Summary Acknowledge the rendered workflow error
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=dto.WorkflowState}
// @Router /api/v1/admin/workflow/dismiss [post]
func (r *Routers) DismissWorkflowError(c echo.Context) error {
	r.AdminService.Dismiss()
	return c.JSON(http.StatusOK, response.SuccessResponse(r.AdminService.State()))
}

// bindHotelForm accepts the hotel fields either as JSON or as multipart
// form values with optional "files" attachments. Field validation is the
// workflow's job; only malformed requests are rejected here.
func bindHotelForm(c echo.Context) (models.HotelInput, []*multipart.FileHeader, error) {
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(contentType, echo.MIMEMultipartForm) {
		form, err := c.MultipartForm()
		if err != nil {
			return models.HotelInput{}, nil, err
		}

		in := models.HotelInput{
			Name:        c.FormValue("name"),
			City:        c.FormValue("city"),
			Address:     c.FormValue("address"),
			Description: c.FormValue("description"),
		}
		return in, form.File["files"], nil
	}

	var req request.HotelForm
	if err := c.Bind(&req); err != nil {
		return models.HotelInput{}, nil, err
	}

	return models.HotelInput{
		Name:        req.Name,
		City:        req.City,
		Address:     req.Address,
		Description: req.Description,
	}, nil, nil
}

// workflowJSON renders a workflow failure with the HTTP status its
// classification implies.
func workflowJSON(c echo.Context, err error) error {
	var werr *adminservice.WorkflowError
	if errors.As(err, &werr) {
		status := http.StatusBadGateway
		switch werr.Kind {
		case adminservice.KindValidation, adminservice.KindBadRequest:
			status = http.StatusBadRequest
		case adminservice.KindUnauthorized:
			status = http.StatusUnauthorized
		case adminservice.KindForbidden:
			status = http.StatusForbidden
		case adminservice.KindConflict:
			status = http.StatusConflict
		}
		return c.JSON(status, response.ErrorResponseWithDetails(string(werr.Kind), werr.Message))
	}

	if errors.Is(err, adminservice.ErrSubmitInFlight) {
		return c.JSON(http.StatusConflict, response.ErrorResponseWithDetails("submission_in_flight", err.Error()))
	}
	if errors.Is(err, adminservice.ErrNoPendingDelete) {
		return c.JSON(http.StatusBadRequest, response.ErrorResponseWithDetails("no_pending_delete", err.Error()))
	}

	return c.JSON(http.StatusBadGateway, response.ErrorResponseWithDetails("upstream_failure", err.Error()))
}

// upstreamStatus forwards the upstream's own status for pass-through reads,
// defaulting to 502 for transport-level failures.
func upstreamStatus(err error) int {
	var status *repository.StatusError
	if errors.As(err, &status) {
		return status.Code
	}
	return http.StatusBadGateway
}
