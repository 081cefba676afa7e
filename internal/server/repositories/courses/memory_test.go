package courses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
)

func TestMemoryRepository_CourseLifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, r.Create(ctx, "u1", models.Course{ID: "c2", Title: "B", CreatedAt: t0.Add(time.Hour)}))
	require.NoError(t, r.Create(ctx, "u1", models.Course{ID: "c1", Title: "A", CreatedAt: t0}))
	require.NoError(t, r.Create(ctx, "u2", models.Course{ID: "c3", Title: "Other"}))
	require.ErrorIs(t, r.Create(ctx, "u2", models.Course{ID: "c1"}), common.ErrorAlreadyExists)

	list, err := r.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "c1", list[0].ID)

	_, err = r.Get(ctx, "u2", "c1")
	require.ErrorIs(t, err, common.ErrorNotFound)

	ok, _ := r.Exists(ctx, "c3")
	assert.True(t, ok)

	require.NoError(t, r.CreateLecture(ctx, models.Lecture{ID: "l2", CourseID: "c1", Order: 2, CreatedAt: t0}))
	require.NoError(t, r.CreateLecture(ctx, models.Lecture{ID: "l1", CourseID: "c1", Order: 1, CreatedAt: t0}))
	require.NoError(t, r.CreateAssignment(ctx, models.Assignment{ID: "a1", CourseID: "c1"}))

	require.NoError(t, r.Update(ctx, "u1", models.Course{ID: "c1", Title: "A2"}))
	c, err := r.Get(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "A2", c.Title)
	assert.Equal(t, t0, c.CreatedAt, "update keeps creation time")
	require.Len(t, c.Lectures, 2, "update keeps children")
	assert.Equal(t, "l1", c.Lectures[0].ID, "lectures come back ordered")

	c.Lectures[0].Title = "mutated"
	again, _ := r.Get(ctx, "u1", "c1")
	assert.Empty(t, again.Lectures[0].Title)

	require.NoError(t, r.UpdateLecture(ctx, models.Lecture{ID: "l1", CourseID: "c1", Order: 1, Status: models.LectureCompleted}))
	require.ErrorIs(t, r.UpdateLecture(ctx, models.Lecture{ID: "zz", CourseID: "c1"}), common.ErrorNotFound)
	require.NoError(t, r.DeleteLecture(ctx, "c1", "l2"))
	require.ErrorIs(t, r.DeleteAssignment(ctx, "c1", "zz"), common.ErrorNotFound)

	require.NoError(t, r.DeleteLectures(ctx, "c1"))
	require.NoError(t, r.DeleteAssignments(ctx, "c1"))
	require.NoError(t, r.Delete(ctx, "u1", "c1"))
	require.ErrorIs(t, r.Delete(ctx, "u1", "c1"), common.ErrorNotFound)
	require.NoError(t, r.DeleteLectures(ctx, "c1"), "children of a missing course are already gone")
}
