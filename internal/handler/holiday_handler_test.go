package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
)

type fakeHolidaySrv struct {
	filter  dto.HolidayFilter
	created dto.CreateHolidayRequest
	deleted string
	err     error
}

func (f *fakeHolidaySrv) List(ctx context.Context, filter dto.HolidayFilter) ([]models.Holiday, error) {
	f.filter = filter
	return nil, f.err
}

func (f *fakeHolidaySrv) Create(ctx context.Context, req dto.CreateHolidayRequest, actor *models.JWTClaims) (*models.Holiday, error) {
	f.created = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Holiday{ID: "h1", Date: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC), Name: req.Name}, nil
}

func (f *fakeHolidaySrv) Delete(ctx context.Context, id string, actor *models.JWTClaims) error {
	f.deleted = id
	return f.err
}

var adminClaims = &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}

func TestHolidayHandlerList(t *testing.T) {
	srv := &fakeHolidaySrv{}
	handler := NewHolidayHandler(srv)

	c, rec := newTestContext(http.MethodGet, "/admin/holidays?year=2025", adminClaims)
	handler.List(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2025, srv.filter.Year)
	assert.Contains(t, rec.Body.String(), `"data":[]`)

	c, rec = newTestContext(http.MethodGet, "/admin/holidays?year=next", adminClaims)
	handler.List(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHolidayHandlerCreateAndDelete(t *testing.T) {
	srv := &fakeHolidaySrv{}
	handler := NewHolidayHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/admin/holidays", adminClaims)
	c.Request.Body = jsonBody(`{"date":"2024-05-03","name":"Constitution Day","recurring_yearly":true}`)
	handler.Create(c)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, srv.created.RecurringYearly)
	assert.Contains(t, rec.Body.String(), `"date":"2024-05-03T00:00:00Z"`)

	srv.err = appErrors.ErrNotFound
	c, rec = newTestContext(http.MethodDelete, "/admin/holidays/h1", adminClaims)
	c.Params = append(c.Params, ginParam("id", "h1"))
	handler.Delete(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "h1", srv.deleted)
}
