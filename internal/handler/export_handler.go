package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	"github.com/noah-isme/contact-log-api/pkg/response"
)

type exportService interface {
	Export(ctx context.Context, actor *models.JWTClaims, req dto.ExportRequest) (*dto.ExportFile, error)
}

// ExportHandler serves class entry downloads.
type ExportHandler struct {
	service exportService
}

// NewExportHandler constructs the handler.
func NewExportHandler(service exportService) *ExportHandler {
	return &ExportHandler{service: service}
}

// ClassEntries godoc
// @Summary Download a class's entries for one day
// @Description Students without an entry are listed as NOT_SUBMITTED. date defaults to the current target day.
// @Tags Teacher
// @Produce text/csv
// @Produce application/pdf
// @Security BearerAuth
// @Param classId path string true "Class room ID"
// @Param date query string false "Day (YYYY-MM-DD)"
// @Param format query string false "csv or pdf" default(csv)
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /teacher/classes/{classId}/export [get]
func (h *ExportHandler) ClassEntries(c *gin.Context) {
	req := dto.ExportRequest{
		ClassRoomID: c.Param("classId"),
		Date:        c.Query("date"),
		Format:      dto.ExportFormat(c.DefaultQuery("format", string(dto.ExportFormatCSV))),
	}
	file, err := h.service.Export(c.Request.Context(), claimsFromContext(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
