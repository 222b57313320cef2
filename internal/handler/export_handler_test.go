package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
)

type fakeExportSrv struct {
	last dto.ExportRequest
	err  error
}

func (f *fakeExportSrv) Export(ctx context.Context, actor *models.JWTClaims, req dto.ExportRequest) (*dto.ExportFile, error) {
	f.last = req
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ExportFile{Filename: "contact-log_1-A_2024-05-14.csv", ContentType: "text/csv; charset=utf-8", Body: []byte("a,b\n")}, nil
}

func TestExportHandlerStreamsAttachment(t *testing.T) {
	srv := &fakeExportSrv{}
	c, rec := newTestContext(http.MethodGet, "/teacher/classes/c1/export?date=2024-05-14", &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})
	c.Params = append(c.Params, ginParam("classId", "c1"))

	NewExportHandler(srv).ClassEntries(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "a,b\n", rec.Body.String())
	assert.Equal(t, `attachment; filename="contact-log_1-A_2024-05-14.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, dto.ExportRequest{ClassRoomID: "c1", Date: "2024-05-14", Format: dto.ExportFormatCSV}, srv.last)
}

func TestExportHandlerError(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/teacher/classes/c1/export?format=pdf", &models.JWTClaims{Role: models.RoleTeacher})
	srv := &fakeExportSrv{err: appErrors.ErrForbidden}

	NewExportHandler(srv).ClassEntries(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, dto.ExportFormatPDF, srv.last.Format)
}
