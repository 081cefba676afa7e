package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func validID(s string) bool {
	return uuid.Validate(s) == nil
}

// pathIDs reads the named uuid path params. A malformed id is reported as
// a missing entity.
func pathIDs(c *gin.Context, params ...string) ([]string, bool) {
	entities := map[string]string{"id": "course", "lid": "lecture", "aid": "assignment"}
	out := make([]string, len(params))
	for i, p := range params {
		v := c.Param(p)
		if !validID(v) {
			notFound(c, entities[p])
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

func (h *Handler) ListCourses(c *gin.Context) {
	list, err := h.courses.List(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

func (h *Handler) GetCourse(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}
	course, err := h.courses.Get(c.Request.Context(), currentUser(c), ids[0])
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

func (h *Handler) CreateCourse(c *gin.Context) {
	var req models.NewCourse
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	course, err := h.courses.Create(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, course)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}
	var req models.CoursePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	course, err := h.courses.Update(c.Request.Context(), currentUser(c), ids[0], req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, course)
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}
	if err := h.courses.Delete(c.Request.Context(), currentUser(c), ids[0]); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateLecture(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}
	var req models.NewLecture
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	l, _, err := h.courses.CreateLecture(c.Request.Context(), currentUser(c), ids[0], req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, l)
}

func (h *Handler) UpdateLecture(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "lid")
	if !ok {
		return
	}
	var req models.LecturePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	l, _, err := h.courses.UpdateLecture(c.Request.Context(), currentUser(c), ids[0], ids[1], req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, l)
}

func (h *Handler) DeleteLecture(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "lid")
	if !ok {
		return
	}
	if _, err := h.courses.DeleteLecture(c.Request.Context(), currentUser(c), ids[0], ids[1]); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) CreateAssignment(c *gin.Context) {
	ids, ok := pathIDs(c, "id")
	if !ok {
		return
	}
	var req models.NewAssignment
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	a, err := h.courses.CreateAssignment(c.Request.Context(), currentUser(c), ids[0], req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, a)
}

func (h *Handler) UpdateAssignment(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "aid")
	if !ok {
		return
	}
	var req models.AssignmentPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	a, err := h.courses.UpdateAssignment(c.Request.Context(), currentUser(c), ids[0], ids[1], req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, a)
}

func (h *Handler) DeleteAssignment(c *gin.Context) {
	ids, ok := pathIDs(c, "id", "aid")
	if !ok {
		return
	}
	if err := h.courses.DeleteAssignment(c.Request.Context(), currentUser(c), ids[0], ids[1]); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
