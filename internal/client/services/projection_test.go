package services

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/dmitrijs2005/pocketschool/internal/client/client"
	"github.com/dmitrijs2005/pocketschool/internal/client/state"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runScenario(t *testing.T, h *harness) string {
	t.Helper()
	ctx := context.Background()

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)

	s := h.proj.Snapshot()
	require.Len(t, s.Courses, 1)
	assert.Equal(t, models.CourseActive, s.Courses[0].Status)
	assert.Empty(t, s.Courses[0].Lectures)
	assert.Empty(t, s.Courses[0].Assignments)

	l1, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L1", VideoURL: "http://v", Order: 1})
	require.NoError(t, err)
	assert.Equal(t, models.LectureNotStarted, l1.Status)

	got, _ := h.proj.Snapshot().Course(c.ID)
	p := models.CourseProgress(got)
	assert.Equal(t, 0, p.Completed)
	assert.Equal(t, 1, p.Total)
	assert.Equal(t, 0.0, p.Ratio)
	assert.Equal(t, models.CourseActive, got.Status)

	require.NoError(t, h.proj.UpdateLectureStatus(ctx, c.ID, l1.ID, models.LectureCompleted))
	got, _ = h.proj.Snapshot().Course(c.ID)
	assert.Equal(t, 1.0, models.CourseProgress(got).Ratio)
	assert.Equal(t, models.CourseCompleted, got.Status)

	_, err = h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L2", VideoURL: "http://v2", Status: models.LectureNotStarted})
	require.NoError(t, err)
	got, _ = h.proj.Snapshot().Course(c.ID)
	assert.Equal(t, models.CourseActive, got.Status)
	assert.Equal(t, 2, got.SortedLectures()[1].Order)

	assert.Empty(t, h.proj.Snapshot().Err)
	return c.ID
}

func TestProjection_ScenarioOnline(t *testing.T) {
	h := newHarness(t, true)
	id := runScenario(t, h)

	assert.Empty(t, h.pending(t))
	assert.Equal(t, []string{
		"CreateCourse:Algo", "CreateLecture:" + id + "/L1", "UpdateLecture:" + h.proj.Snapshot().Courses[0].SortedLectures()[0].ID,
		"CreateLecture:" + id + "/L2",
	}, h.api.Calls())

	// the store mirrors the projection
	want, _ := h.proj.Snapshot().Course(id)
	if diff := cmp.Diff(want, h.storedCourse(t, id)); diff != "" {
		t.Fatalf("stored course differs (-projection +store):\n%s", diff)
	}
	assert.Equal(t, models.CourseActive, h.api.courses[id].Status)
}

func TestProjection_ScenarioOfflineThenReplay(t *testing.T) {
	h := newHarness(t, false)
	id := runScenario(t, h)

	assert.Empty(t, h.api.Calls())
	assert.Len(t, h.pending(t), 4)
	assert.Equal(t, 4, h.proj.Snapshot().Pending)

	h.monitor.SetOnline(true)

	assert.Empty(t, h.pending(t))
	s := h.proj.Snapshot()
	assert.True(t, s.Online)
	assert.Equal(t, 0, s.Pending)

	server := h.api.courses[id]
	assert.Equal(t, models.CourseActive, server.Status)
	require.Len(t, server.Lectures, 2)

	got, ok := s.Course(id)
	require.True(t, ok)
	assert.Len(t, got.Lectures, 2)
}

func TestProjection_UpdateAssignmentStatusRollsBack(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)
	a, err := h.proj.AddAssignment(ctx, c.ID, models.NewAssignment{Title: "PS1"})
	require.NoError(t, err)
	require.Equal(t, models.AssignmentNotStarted, a.Status)

	h.api.setFail("UpdateAssignment", serverErr(http.StatusInternalServerError, "database exploded"))

	err = h.proj.UpdateAssignmentStatus(ctx, c.ID, a.ID, models.AssignmentSubmitted)
	require.Error(t, err)

	s := h.proj.Snapshot()
	got, ok := s.Assignment(c.ID, a.ID)
	require.True(t, ok)
	assert.Equal(t, models.AssignmentNotStarted, got.Status)
	assert.Equal(t, "database exploded", s.Err)
	assert.False(t, s.Loading.Active)

	stored := h.storedCourse(t, c.ID)
	assert.Equal(t, models.AssignmentNotStarted, stored.Assignments[0].Status)
	assert.Empty(t, h.pending(t))
}

func TestProjection_FailedCreateIsRemoved(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.api.setFail("CreateCourse", serverErr(http.StatusConflict, "duplicate"))

	_, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.Error(t, err)

	s := h.proj.Snapshot()
	assert.Empty(t, s.Courses)
	assert.Equal(t, "duplicate", s.Err)

	stored, err := h.store.Courses(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestProjection_TransportFailureQueuesAndGoesOffline(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.api.setFail("CreateCourse", client.ErrUnavailable)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)

	s := h.proj.Snapshot()
	assert.False(t, s.Online)
	assert.Empty(t, s.Err)
	assert.Equal(t, 1, s.Pending)
	_, ok := s.Course(c.ID)
	assert.True(t, ok)

	h.api.setFail("CreateCourse", nil)
	h.monitor.SetOnline(true)

	assert.Empty(t, h.pending(t))
	assert.Contains(t, h.api.courses, c.ID)
}

func TestProjection_ValidationIsNotDispatched(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	_, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "  ", Source: "ftp://x"})
	require.ErrorIs(t, err, models.ErrValidation)

	s := h.proj.Snapshot()
	assert.Contains(t, s.Err, "title")
	assert.Contains(t, s.Err, "source")
	assert.Empty(t, s.Courses)
	assert.Empty(t, h.api.Calls())
	assert.Empty(t, h.pending(t))
}

func TestProjection_ErrorClearedByNextMutation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	_, err := h.proj.AddCourse(ctx, models.NewCourse{})
	require.Error(t, err)
	require.NotEmpty(t, h.proj.Snapshot().Err)

	_, err = h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "https://x"})
	require.NoError(t, err)
	assert.Empty(t, h.proj.Snapshot().Err)
}

func TestProjection_UnknownEntities(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	err := h.proj.UpdateLectureStatus(ctx, "nope", "l1", models.LectureCompleted)
	assert.Equal(t, KindNotFound, KindOf(err))

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)
	assert.Equal(t, KindNotFound, KindOf(h.proj.DeleteLecture(ctx, c.ID, "missing")))
	assert.Equal(t, KindNotFound, KindOf(h.proj.DeleteAssignment(ctx, c.ID, "missing")))
}

func TestProjection_CourseEditsAndDelete(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)

	require.NoError(t, h.proj.UpdateCourseNotes(ctx, c.ID, "week 1 done"))
	parked := models.CourseParked
	require.NoError(t, h.proj.UpdateCourse(ctx, c.ID, models.CoursePatch{Status: &parked}))

	got, _ := h.proj.Snapshot().Course(c.ID)
	assert.Equal(t, "week 1 done", got.Notes)
	assert.Equal(t, models.CourseParked, got.Status)

	require.NoError(t, h.proj.DeleteCourse(ctx, c.ID))
	assert.Empty(t, h.proj.Snapshot().Courses)
	assert.NotContains(t, h.api.courses, c.ID)

	_, err = h.store.Course(ctx, c.ID)
	assert.Error(t, err)
}

func TestProjection_LectureAndAssignmentNotes(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)
	l, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L1", VideoURL: "http://v"})
	require.NoError(t, err)
	a, err := h.proj.AddAssignment(ctx, c.ID, models.NewAssignment{Title: "PS1"})
	require.NoError(t, err)

	require.NoError(t, h.proj.UpdateLectureNote(ctx, c.ID, l.ID, "rewatch"))
	require.NoError(t, h.proj.UpdateAssignmentNote(ctx, c.ID, a.ID, "hard"))
	require.NoError(t, h.proj.DeleteLecture(ctx, c.ID, l.ID))

	s := h.proj.Snapshot()
	got, _ := s.Course(c.ID)
	assert.Empty(t, got.Lectures)
	assert.Equal(t, "hard", got.Assignments[0].Note)
	assert.Equal(t, 6, s.Pending)
}

func TestProjection_RefreshOnlineReplacesWholesale(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	h.api.courses["srv"] = models.NewCourse{Title: "From server", Source: "http://s"}.Build("srv", serverNow)
	_, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Local", Source: "http://x"})
	require.NoError(t, err)

	require.NoError(t, h.proj.Refresh(ctx))
	s := h.proj.Snapshot()
	assert.Len(t, s.Courses, 2)
	assert.Equal(t, "ann", s.User.DisplayName)

	stored, err := h.store.Courses(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestProjection_RefreshOfflineReadsStore(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)

	c := models.NewCourse{Title: "Cached", Source: "http://x"}.Build("c1", serverNow)
	require.NoError(t, h.store.SaveCourse(ctx, c))

	require.NoError(t, h.proj.Refresh(ctx))
	s := h.proj.Snapshot()
	require.Len(t, s.Courses, 1)
	assert.Equal(t, "Cached", s.Courses[0].Title)
	require.NotNil(t, s.User)
	assert.Equal(t, "u1", s.User.ID)
	assert.Empty(t, h.api.Calls())
}

func TestProjection_RefreshUnauthorizedSignsOut(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	h.api.setFail("Me", &client.ServerError{Status: http.StatusUnauthorized, Code: "unauthorized", Message: "Token expired"})

	err := h.proj.Refresh(ctx)
	require.True(t, errors.Is(err, client.ErrUnauthorized))

	assert.False(t, h.auth.Authenticated())
	s := h.proj.Snapshot()
	assert.Nil(t, s.User)
	assert.Equal(t, "Token expired", s.Err)
}

func TestProjection_RefreshTransportFallsBackToStore(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	require.NoError(t, h.store.SaveCourse(ctx, models.NewCourse{Title: "Cached", Source: "http://x"}.Build("c1", serverNow)))
	h.api.setFail("ListCourses", client.ErrUnavailable)

	require.NoError(t, h.proj.Refresh(ctx))
	s := h.proj.Snapshot()
	assert.False(t, s.Online)
	require.Len(t, s.Courses, 1)
}

func TestProjection_ProfileRequiresConnection(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	require.NoError(t, h.proj.Refresh(ctx))

	require.NoError(t, h.proj.SetDisplayName(ctx, "Ann B"))
	assert.Equal(t, "Ann B", h.proj.Snapshot().User.DisplayName)
	assert.Equal(t, "Ann B", h.session.User().DisplayName)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)
	require.NoError(t, h.proj.SetFocusCourse(ctx, &c.ID))
	require.NotNil(t, h.proj.Snapshot().User.FocusCourseID)

	h.monitor.SetOnline(false)
	err = h.proj.SetDisplayName(ctx, "Offline")
	assert.Equal(t, KindTransport, KindOf(err))
	assert.Equal(t, "Ann B", h.proj.Snapshot().User.DisplayName)
}

func TestProjection_ProfileRollback(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)
	require.NoError(t, h.proj.Refresh(ctx))
	h.api.setFail("UpdateProfile", serverErr(http.StatusBadRequest, "Invalid fields"))

	require.Error(t, h.proj.SetDisplayName(ctx, "New"))
	s := h.proj.Snapshot()
	assert.Equal(t, "ann", s.User.DisplayName)
	assert.Equal(t, "Invalid fields", s.Err)
}

func TestProjection_Logout(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, false)
	_, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)

	require.NoError(t, h.proj.Logout(ctx))
	s := h.proj.Snapshot()
	assert.Empty(t, s.Courses)
	assert.Equal(t, 0, s.Pending)
	assert.False(t, h.auth.Authenticated())

	courses, err := h.store.Courses(ctx)
	require.NoError(t, err)
	assert.Empty(t, courses)

	assert.Equal(t, KindAuth, KindOf(h.proj.Refresh(ctx)))
}

func TestProjection_RefreshKeepsQueuedEdits(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)
	l, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L1", VideoURL: "http://v"})
	require.NoError(t, err)

	h.monitor.SetOnline(false)
	require.NoError(t, h.proj.UpdateCourseNotes(ctx, c.ID, "A"))
	require.NoError(t, h.proj.UpdateLectureStatus(ctx, c.ID, l.ID, models.LectureCompleted))
	_, err = h.proj.AddAssignment(ctx, c.ID, models.NewAssignment{Title: "PS1"})
	require.NoError(t, err)

	h.api.setFail("UpdateCourse", serverErr(http.StatusInternalServerError, "boom"))
	h.monitor.SetOnline(true)
	require.Len(t, h.pending(t), 3)

	s := h.proj.Snapshot()
	assert.Equal(t, 3, s.Pending)
	got, ok := s.Course(c.ID)
	require.True(t, ok)
	assert.Equal(t, "A", got.Notes)
	assert.Equal(t, models.LectureCompleted, got.Lectures[0].Status)
	assert.Equal(t, models.CourseCompleted, got.Status)
	require.Len(t, got.Assignments, 1)
	assert.Equal(t, "PS1", got.Assignments[0].Title)

	// the cache keeps them too, so a restart while offline still shows them
	stored := h.storedCourse(t, c.ID)
	assert.Equal(t, "A", stored.Notes)
	assert.Len(t, stored.Assignments, 1)

	assert.Empty(t, h.api.courses[c.ID].Notes)
}

func TestProjection_LectureOrderIsUnique(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)
	l1, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L1", VideoURL: "http://v", Order: 1})
	require.NoError(t, err)

	_, err = h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "Dup", VideoURL: "http://v", Order: 1})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "order")

	l2, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L2", VideoURL: "http://v"})
	require.NoError(t, err)
	l3, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L3", VideoURL: "http://v"})
	require.NoError(t, err)
	assert.Equal(t, 3, l3.Order)

	taken := 3
	err = h.proj.UpdateLecture(ctx, c.ID, l2.ID, models.LecturePatch{Order: &taken})
	require.ErrorAs(t, err, &verr)

	require.NoError(t, h.proj.DeleteLecture(ctx, c.ID, l1.ID))
	l4, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L4", VideoURL: "http://v"})
	require.NoError(t, err)
	assert.Equal(t, 4, l4.Order)

	got, _ := h.proj.Snapshot().Course(c.ID)
	var orders []int
	for _, l := range got.SortedLectures() {
		orders = append(orders, l.Order)
	}
	assert.Equal(t, []int{2, 3, 4}, orders)
	assert.Equal(t, []string{"CreateCourse:Algo", "CreateLecture:" + c.ID + "/L1", "CreateLecture:" + c.ID + "/L2",
		"CreateLecture:" + c.ID + "/L3", "DeleteLecture:" + l1.ID, "CreateLecture:" + c.ID + "/L4"}, h.api.Calls())
}

func TestProjection_LateResultForRemovedChild(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, true)

	c, err := h.proj.AddCourse(ctx, models.NewCourse{Title: "Algo", Source: "http://x"})
	require.NoError(t, err)
	l, err := h.proj.AddLecture(ctx, c.ID, models.NewLecture{Title: "L1", VideoURL: "http://v"})
	require.NoError(t, err)
	a, err := h.proj.AddAssignment(ctx, c.ID, models.NewAssignment{Title: "PS1"})
	require.NoError(t, err)

	// another writer drops the entity while its update is in flight
	h.api.onCall = func(method string) {
		switch method {
		case "UpdateLecture":
			h.proj.dispatch(state.RemoveLecture{CourseID: c.ID, LectureID: l.ID})
		case "UpdateAssignment":
			h.proj.dispatch(state.RemoveAssignment{CourseID: c.ID, AssignmentID: a.ID})
		}
	}

	require.NoError(t, h.proj.UpdateLectureStatus(ctx, c.ID, l.ID, models.LectureCompleted))
	require.NoError(t, h.proj.UpdateAssignmentStatus(ctx, c.ID, a.ID, models.AssignmentSubmitted))

	s := h.proj.Snapshot()
	_, ok := s.Lecture(c.ID, l.ID)
	assert.False(t, ok)
	_, ok = s.Assignment(c.ID, a.ID)
	assert.False(t, ok)
	_, ok = s.Course(c.ID)
	assert.True(t, ok)
}
