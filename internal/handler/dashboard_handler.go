package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/middleware"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
	"github.com/noah-isme/contact-log-api/pkg/response"
)

type dashboardService interface {
	Teacher(ctx context.Context, actor *models.JWTClaims, q string) (*dto.TeacherDashboard, bool, error)
}

// DashboardHandler wires dashboard service to HTTP endpoints.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(service dashboardService) *DashboardHandler {
	return &DashboardHandler{service: service}
}

// Teacher godoc
// @Summary Homeroom dashboard
// @Description Target day entries, students who have not submitted, and recent history
// @Tags Teacher
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search history by content or student name"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /teacher/dashboard [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	summary, cacheHit, err := h.service.Teacher(c.Request.Context(), claimsFromContext(c), c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, summary, nil, middleware.ExtractMeta(c))
}
