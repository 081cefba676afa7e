package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/models"
	"github.com/dmitrijs2005/pocketschool/internal/server/services"
	"github.com/gin-gonic/gin"
)

type Meta struct {
	TraceID     string `json:"traceId,omitempty"`
	DownloadURL string `json:"downloadUrl,omitempty"`
}

type APIError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

type SuccessEnvelope struct {
	Data any  `json:"data"`
	Meta Meta `json:"meta"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
	Meta  Meta     `json:"meta"`
}

func respond(c *gin.Context, status int, data any) {
	respondMeta(c, status, data, Meta{})
}

func respondMeta(c *gin.Context, status int, data any, meta Meta) {
	meta.TraceID = traceID(c)
	c.JSON(status, SuccessEnvelope{Data: data, Meta: meta})
}

func respondError(c *gin.Context, status int, code, message string, fields map[string]string) {
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{Code: code, Message: message, Fields: fields},
		Meta:  Meta{TraceID: traceID(c)},
	})
}

// fail maps a service error to its HTTP status and error code.
func (h *Handler) fail(c *gin.Context, err error) {
	var (
		ve *models.ValidationError
		nf *services.NotFoundError
	)

	switch {
	case errors.As(err, &ve):
		respondError(c, http.StatusBadRequest, "invalid_fields", "Some fields are invalid", ve.Fields)
	case errors.Is(err, services.ErrEmailExists):
		respondError(c, http.StatusConflict, "email_exists", "Email already registered", nil)
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", "Invalid email or password", nil)
	case errors.Is(err, services.ErrIDConflict):
		respondError(c, http.StatusConflict, "id_conflict", "Id already in use", nil)
	case errors.As(err, &nf):
		notFound(c, nf.Entity)
	case errors.Is(err, common.ErrorNotFound):
		respondError(c, http.StatusNotFound, "not_found", "Not found", nil)
	default:
		h.logger.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "err", err, "traceId", traceID(c))
		respondError(c, http.StatusInternalServerError, "server_error", "Something went wrong", nil)
	}
}

func notFound(c *gin.Context, entity string) {
	msg := strings.ToUpper(entity[:1]) + entity[1:] + " not found"
	respondError(c, http.StatusNotFound, entity+"_not_found", msg, nil)
}

func badJSON(c *gin.Context) {
	respondError(c, http.StatusBadRequest, "invalid_json", "Request body is not valid JSON", nil)
}
