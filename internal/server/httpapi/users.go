package httpapi

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/gin-gonic/gin"
)

func (h *Handler) Register(c *gin.Context) {
	var req models.Registration
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	res, err := h.users.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req models.Credentials
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	res, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			respondError(c, http.StatusBadRequest, "invalid_credentials", "Email and password are required", ve.Fields)
			return
		}
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.users.Me(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	var req models.ProfilePatch
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	u, err := h.users.UpdateProfile(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *Handler) SetFocusCourse(c *gin.Context) {
	var req models.FocusCourse
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c)
		return
	}
	if req.CourseID != nil && !validID(*req.CourseID) {
		notFound(c, "course")
		return
	}
	u, err := h.users.SetFocusCourse(c.Request.Context(), currentUser(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond(c, http.StatusOK, u)
}

func (h *Handler) Export(c *gin.Context) {
	exp, url, err := h.exports.Export(c.Request.Context(), currentUser(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	respondMeta(c, http.StatusOK, exp, Meta{DownloadURL: url})
}
