package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
	"github.com/noah-isme/contact-log-api/pkg/response"
)

type entryService interface {
	Calendar(ctx context.Context) (*dto.TargetDateResponse, error)
	Today(ctx context.Context, actor *models.JWTClaims) (*dto.TodayEntry, error)
	Submit(ctx context.Context, actor *models.JWTClaims, req dto.SubmitEntryRequest) (*dto.SubmitResult, error)
	Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.SubmitEntryRequest) (*models.Entry, error)
	ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.EntryDetail, *models.Pagination, error)
	Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.EntryDetail, error)
	Review(ctx context.Context, actor *models.JWTClaims, id string) (*dto.ReviewResult, error)
	Unlock(ctx context.Context, actor *models.JWTClaims, id string) (*models.Entry, error)
	MarkReadBulk(ctx context.Context, actor *models.JWTClaims, req dto.BulkEntryRequest) (*dto.BulkResult, error)
	UnlockBulk(ctx context.Context, actor *models.JWTClaims, req dto.BulkEntryRequest) (*dto.BulkResult, error)
	Delete(ctx context.Context, actor *models.JWTClaims, id string) error
}

// EntryHandler exposes the contact-log entry lifecycle to students, teachers and administrators.
type EntryHandler struct {
	service entryService
}

// NewEntryHandler constructs the handler.
func NewEntryHandler(service entryService) *EntryHandler {
	return &EntryHandler{service: service}
}

// TargetDate godoc
// @Summary Current target school day
// @Description The single school day entries are accepted for right now
// @Tags Calendar
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /calendar/target-date [get]
func (h *EntryHandler) TargetDate(c *gin.Context) {
	res, err := h.service.Calendar(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Today godoc
// @Summary Student entry for the target day
// @Tags Student Entries
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /student/entries/today [get]
func (h *EntryHandler) Today(c *gin.Context) {
	res, err := h.service.Today(c.Request.Context(), claimsFromContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Submit godoc
// @Summary Submit today's entry
// @Description Creates or updates the entry for the target day. A read entry is returned unchanged with outcome EDIT_LOCKED.
// @Tags Student Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.SubmitEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/entries [post]
func (h *EntryHandler) Submit(c *gin.Context) {
	var req dto.SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entry payload"))
		return
	}
	res, err := h.service.Submit(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	if res.Outcome == dto.SubmitOutcomeCreated {
		response.Created(c, res)
		return
	}
	response.OK(c, res)
}

// Update godoc
// @Summary Edit an entry
// @Description Strict save: a read entry or a stale target date is rejected
// @Tags Student Entries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Param payload body dto.SubmitEntryRequest true "Entry payload"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /student/entries/{id} [put]
func (h *EntryHandler) Update(c *gin.Context) {
	var req dto.SubmitEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid entry payload"))
		return
	}
	entry, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// ListMine godoc
// @Summary Student entry history
// @Tags Student Entries
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /student/entries [get]
func (h *EntryHandler) ListMine(c *gin.Context) {
	page, size := pageParams(c)
	entries, pagination, err := h.service.ListMine(c.Request.Context(), claimsFromContext(c), page, size)
	if err != nil {
		response.Error(c, err)
		return
	}
	if entries == nil {
		entries = []models.EntryDetail{}
	}
	response.JSON(c, http.StatusOK, entries, pagination)
}

// Get godoc
// @Summary Get an entry
// @Tags Student Entries
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /student/entries/{id} [get]
func (h *EntryHandler) Get(c *gin.Context) {
	entry, err := h.service.Get(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// Review godoc
// @Summary Mark an entry as read
// @Description Idempotent; transitioned reports whether this call performed the change
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/entries/{id}/read [post]
func (h *EntryHandler) Review(c *gin.Context) {
	res, err := h.service.Review(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Unlock godoc
// @Summary Return an entry to unread
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/entries/{id}/unlock [post]
func (h *EntryHandler) Unlock(c *gin.Context) {
	entry, err := h.service.Unlock(c.Request.Context(), claimsFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, entry)
}

// MarkReadBulk godoc
// @Summary Mark many entries as read
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkEntryRequest true "Entry IDs"
// @Success 200 {object} response.Envelope
// @Router /admin/entries/bulk-read [post]
func (h *EntryHandler) MarkReadBulk(c *gin.Context) {
	h.bulk(c, h.service.MarkReadBulk)
}

// UnlockBulk godoc
// @Summary Unlock many entries
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.BulkEntryRequest true "Entry IDs"
// @Success 200 {object} response.Envelope
// @Router /admin/entries/bulk-unlock [post]
func (h *EntryHandler) UnlockBulk(c *gin.Context) {
	h.bulk(c, h.service.UnlockBulk)
}

func (h *EntryHandler) bulk(c *gin.Context, action func(context.Context, *models.JWTClaims, dto.BulkEntryRequest) (*dto.BulkResult, error)) {
	var req dto.BulkEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid bulk payload"))
		return
	}
	res, err := action(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Delete godoc
// @Summary Delete an entry
// @Description Returns the student to not-submitted for that day
// @Tags Admin
// @Security BearerAuth
// @Param id path string true "Entry ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /admin/entries/{id} [delete]
func (h *EntryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), claimsFromContext(c), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
