package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/contact-log-api/internal/models"
	appErrors "github.com/noah-isme/contact-log-api/pkg/errors"
)

type classDirectoryStub struct {
	classes []models.ClassRoomDetail
	err     error
}

func (c *classDirectoryStub) ListByHomeroomTeacher(ctx context.Context, teacherID string) ([]models.ClassRoomDetail, error) {
	if c.err != nil {
		return nil, c.err
	}
	var out []models.ClassRoomDetail
	for _, class := range c.classes {
		if class.HomeroomTeacherID == teacherID {
			out = append(out, class)
		}
	}
	return out, nil
}

func (c *classDirectoryStub) FindByID(ctx context.Context, id string) (*models.ClassRoomDetail, error) {
	if c.err != nil {
		return nil, c.err
	}
	for _, class := range c.classes {
		if class.ID == id {
			copy := class
			return &copy, nil
		}
	}
	return nil, sql.ErrNoRows
}

type rosterStub struct {
	students []models.StudentDetail
}

func (r *rosterStub) ListByClassRooms(ctx context.Context, classRoomIDs []string) ([]models.StudentDetail, error) {
	var out []models.StudentDetail
	for _, s := range r.students {
		for _, id := range classRoomIDs {
			if s.ClassRoomID == id {
				out = append(out, s)
			}
		}
	}
	return out, nil
}

type targetStub struct {
	day time.Time
	err error
}

func (t targetStub) TargetDate(ctx context.Context) (time.Time, error) {
	return t.day, t.err
}

type countingLister struct {
	entryLister
	calls int
}

func (c *countingLister) List(ctx context.Context, filter models.EntryFilter) ([]models.EntryDetail, int, error) {
	c.calls++
	return c.entryLister.List(ctx, filter)
}

func homeroomClasses() *classDirectoryStub {
	return &classDirectoryStub{classes: []models.ClassRoomDetail{
		{ClassRoom: models.ClassRoom{ID: classA, Name: "1-A", HomeroomTeacherID: homeroomTeacherID}, GradeName: "Year 1"},
		{ClassRoom: models.ClassRoom{ID: "class-b", Name: "1-B", HomeroomTeacherID: otherTeacherID}, GradeName: "Year 1"},
	}}
}

func TestDashboardServiceTeacher(t *testing.T) {
	store := newMemEntryStore(studentAlice, studentBob)
	store.seed(models.Entry{StudentID: studentAlice.ID, TargetDate: targetDay, Content: "fine", ConditionRating: 3, MoodRating: 3})
	store.seed(models.Entry{StudentID: studentBob.ID, TargetDate: targetDay.AddDate(0, 0, -1), Content: "tired", ConditionRating: 2, MoodRating: 2})
	lister := &countingLister{entryLister: store}
	cacheRepo := newMemCacheRepo()

	svc := NewDashboardService(homeroomClasses(), &rosterStub{students: []models.StudentDetail{*studentAlice, *studentBob}},
		lister, targetStub{day: targetDay}, NewCacheService(cacheRepo, nil, time.Minute, nil, true), zap.NewNop(), DashboardServiceConfig{})

	dash, hit, err := svc.Teacher(context.Background(), teacherActor(homeroomTeacherID), " ")
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "2024-05-14", dash.TargetDate)
	require.Len(t, dash.Classes, 1)
	assert.Equal(t, classA, dash.Classes[0].ID)
	require.Len(t, dash.EntriesToday, 1)
	assert.Equal(t, studentAlice.ID, dash.EntriesToday[0].StudentID)
	require.Len(t, dash.NotSubmitted, 1)
	assert.Equal(t, studentBob.ID, dash.NotSubmitted[0].ID)
	assert.Len(t, dash.History, 2)
	assert.True(t, cacheRepo.has("dashboard:teacher-1:2024-05-14:"))

	calls := lister.calls
	cached, hit, err := svc.Teacher(context.Background(), teacherActor(homeroomTeacherID), "")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, calls, lister.calls)
	assert.Len(t, cached.NotSubmitted, 1)
}

func TestDashboardServiceTeacherWithoutClasses(t *testing.T) {
	svc := NewDashboardService(homeroomClasses(), &rosterStub{}, newMemEntryStore(), targetStub{day: targetDay}, nil, nil, DashboardServiceConfig{})

	dash, _, err := svc.Teacher(context.Background(), teacherActor("teacher-without-class"), "")
	require.NoError(t, err)
	assert.Empty(t, dash.Classes)
	assert.NotNil(t, dash.NotSubmitted)
	assert.NotNil(t, dash.History)
}

func TestDashboardServiceTeacherErrors(t *testing.T) {
	svc := NewDashboardService(homeroomClasses(), &rosterStub{}, newMemEntryStore(), targetStub{day: targetDay}, nil, nil, DashboardServiceConfig{})
	ctx := context.Background()

	_, _, err := svc.Teacher(ctx, nil, "")
	assert.ErrorIs(t, err, appErrors.ErrUnauthorized)
	_, _, err = svc.Teacher(ctx, studentActor(studentAlice), "")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)
	_, _, err = svc.Teacher(ctx, adminActor(), "")
	assert.ErrorIs(t, err, appErrors.ErrForbidden)

	failing := NewDashboardService(&classDirectoryStub{err: errors.New("db down")}, &rosterStub{}, newMemEntryStore(), targetStub{day: targetDay}, nil, nil, DashboardServiceConfig{})
	_, _, err = failing.Teacher(ctx, teacherActor(homeroomTeacherID), "")
	assert.ErrorIs(t, err, appErrors.ErrInternal)

	noCalendar := NewDashboardService(homeroomClasses(), &rosterStub{}, newMemEntryStore(), targetStub{err: appErrors.ErrInternal}, nil, nil, DashboardServiceConfig{})
	_, _, err = noCalendar.Teacher(ctx, teacherActor(homeroomTeacherID), "")
	assert.ErrorIs(t, err, appErrors.ErrInternal)
}

func TestCollectEntriesFollowsPages(t *testing.T) {
	store := newMemEntryStore()
	for i := 0; i < dashboardEntriesPageSize+3; i++ {
		store.seed(models.Entry{StudentID: "s", TargetDate: targetDay.AddDate(0, 0, -i), Content: "x"})
	}
	lister := &countingLister{entryLister: store}

	entries, err := collectEntries(context.Background(), lister, models.EntryFilter{})
	require.NoError(t, err)
	assert.Len(t, entries, dashboardEntriesPageSize+3)
	assert.Equal(t, 2, lister.calls)
}
