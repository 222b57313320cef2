package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/contact-log-api/internal/dto"
	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
)

type fakeEntrySrv struct {
	submitRes  *dto.SubmitResult
	reviewRes  *dto.ReviewResult
	bulkRes    *dto.BulkResult
	err        error
	lastID     string
	lastSubmit dto.SubmitEntryRequest
	lastBulk   dto.BulkEntryRequest
	lastPage   [2]int
}

func (f *fakeEntrySrv) Calendar(ctx context.Context) (*dto.TargetDateResponse, error) {
	return &dto.TargetDateResponse{Today: "2024-05-15", TargetDate: "2024-05-14", Timezone: "Asia/Tokyo"}, f.err
}

func (f *fakeEntrySrv) Today(ctx context.Context, actor *models.JWTClaims) (*dto.TodayEntry, error) {
	return &dto.TodayEntry{TargetDate: "2024-05-14", Editable: true}, f.err
}

func (f *fakeEntrySrv) Submit(ctx context.Context, actor *models.JWTClaims, req dto.SubmitEntryRequest) (*dto.SubmitResult, error) {
	f.lastSubmit = req
	return f.submitRes, f.err
}

func (f *fakeEntrySrv) Update(ctx context.Context, actor *models.JWTClaims, id string, req dto.SubmitEntryRequest) (*models.Entry, error) {
	f.lastID = id
	f.lastSubmit = req
	if f.err != nil {
		return nil, f.err
	}
	return &models.Entry{ID: id, Content: req.Content}, nil
}

func (f *fakeEntrySrv) ListMine(ctx context.Context, actor *models.JWTClaims, page, pageSize int) ([]models.EntryDetail, *models.Pagination, error) {
	f.lastPage = [2]int{page, pageSize}
	return nil, &models.Pagination{Page: 1, PageSize: 20}, f.err
}

func (f *fakeEntrySrv) Get(ctx context.Context, actor *models.JWTClaims, id string) (*models.EntryDetail, error) {
	f.lastID = id
	return &models.EntryDetail{Entry: models.Entry{ID: id}}, f.err
}

func (f *fakeEntrySrv) Review(ctx context.Context, actor *models.JWTClaims, id string) (*dto.ReviewResult, error) {
	f.lastID = id
	return f.reviewRes, f.err
}

func (f *fakeEntrySrv) Unlock(ctx context.Context, actor *models.JWTClaims, id string) (*models.Entry, error) {
	f.lastID = id
	return &models.Entry{ID: id, Status: models.EntryStatusSubmitted}, f.err
}

func (f *fakeEntrySrv) MarkReadBulk(ctx context.Context, actor *models.JWTClaims, req dto.BulkEntryRequest) (*dto.BulkResult, error) {
	f.lastBulk = req
	return f.bulkRes, f.err
}

func (f *fakeEntrySrv) UnlockBulk(ctx context.Context, actor *models.JWTClaims, req dto.BulkEntryRequest) (*dto.BulkResult, error) {
	f.lastBulk = req
	return f.bulkRes, f.err
}

func (f *fakeEntrySrv) Delete(ctx context.Context, actor *models.JWTClaims, id string) error {
	f.lastID = id
	return f.err
}

var studentClaims = &models.JWTClaims{UserID: "u1", Role: models.RoleStudent}

func TestEntryHandlerSubmitStatusFollowsOutcome(t *testing.T) {
	cases := []struct {
		outcome dto.SubmitOutcome
		status  int
	}{
		{dto.SubmitOutcomeCreated, http.StatusCreated},
		{dto.SubmitOutcomeUpdated, http.StatusOK},
		{dto.SubmitOutcomeEditLocked, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(string(tc.outcome), func(t *testing.T) {
			srv := &fakeEntrySrv{submitRes: &dto.SubmitResult{Outcome: tc.outcome, TargetDate: "2024-05-14"}}
			c, rec := newTestContext(http.MethodPost, "/student/entries", studentClaims)
			c.Request.Body = jsonBody(`{"content":"ok","mood_rating":4}`)

			NewEntryHandler(srv).Submit(c)

			require.Equal(t, tc.status, rec.Code)
			var envelope responseEnvelope
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
			assert.Equal(t, string(tc.outcome), envelope.Data["outcome"])
			require.NotNil(t, srv.lastSubmit.MoodRating)
			assert.Equal(t, 4, *srv.lastSubmit.MoodRating)
			assert.Nil(t, srv.lastSubmit.ConditionRating)
		})
	}
}

func TestEntryHandlerSubmitRejectsMalformedJSON(t *testing.T) {
	c, rec := newTestContext(http.MethodPost, "/student/entries", studentClaims)
	c.Request.Body = jsonBody(`{"content":`)

	NewEntryHandler(&fakeEntrySrv{}).Submit(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEntryHandlerUpdateLocked(t *testing.T) {
	srv := &fakeEntrySrv{err: appErrors.ErrEntryLocked}
	c, rec := newTestContext(http.MethodPut, "/student/entries/e1", studentClaims)
	c.Params = append(c.Params, ginParam("id", "e1"))
	c.Request.Body = jsonBody(`{"content":"late edit"}`)

	NewEntryHandler(srv).Update(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "ENTRY_LOCKED", envelope.Error["code"])
	assert.Equal(t, "e1", srv.lastID)
}

func TestEntryHandlerReview(t *testing.T) {
	srv := &fakeEntrySrv{reviewRes: &dto.ReviewResult{Transitioned: false, Entry: &models.Entry{ID: "e1"}}}
	c, rec := newTestContext(http.MethodPost, "/teacher/entries/e1/read", &models.JWTClaims{UserID: "t1", Role: models.RoleTeacher})
	c.Params = append(c.Params, ginParam("id", "e1"))

	NewEntryHandler(srv).Review(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, false, envelope.Data["transitioned"])
}

func TestEntryHandlerBulkAndDelete(t *testing.T) {
	srv := &fakeEntrySrv{bulkRes: &dto.BulkResult{Requested: 2, Affected: 1, Missing: []string{"x"}}}
	admin := &models.JWTClaims{UserID: "a1", Role: models.RoleAdmin}
	handler := NewEntryHandler(srv)

	c, rec := newTestContext(http.MethodPost, "/admin/entries/bulk-unlock", admin)
	c.Request.Body = jsonBody(`{"ids":["a","x"]}`)
	handler.UnlockBulk(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"a", "x"}, srv.lastBulk.IDs)

	c, _ = newTestContext(http.MethodDelete, "/admin/entries/e9", admin)
	c.Params = append(c.Params, ginParam("id", "e9"))
	handler.Delete(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, "e9", srv.lastID)

	srv.err = appErrors.ErrNotFound
	c, rec = newTestContext(http.MethodPost, "/admin/entries/e9/unlock", admin)
	handler.Unlock(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEntryHandlerListMinePassesPaging(t *testing.T) {
	srv := &fakeEntrySrv{}
	c, rec := newTestContext(http.MethodGet, "/student/entries?page=2&page_size=abc", studentClaims)

	NewEntryHandler(srv).ListMine(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [2]int{2, 0}, srv.lastPage)
	assert.True(t, strings.Contains(rec.Body.String(), `"data":[]`))
}

func TestEntryHandlerTargetDate(t *testing.T) {
	c, rec := newTestContext(http.MethodGet, "/calendar/target-date", studentClaims)

	NewEntryHandler(&fakeEntrySrv{}).TargetDate(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var envelope responseEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, "2024-05-14", envelope.Data["target_date"])
}
