// Package httpapi exposes the server's services as a JSON REST API under
// /api/v1, using gin.
package httpapi

import (
	"net/http"
	"time"

	"github.com/dmitrijs2005/pocketschool/internal/common"
	"github.com/dmitrijs2005/pocketschool/internal/logging"
	"github.com/dmitrijs2005/pocketschool/internal/server/config"
	"github.com/dmitrijs2005/pocketschool/internal/server/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	users   *services.UserService
	courses *services.CourseService
	exports *services.ExportService
	logger  logging.Logger
}

func NewHandler(u *services.UserService, c *services.CourseService, e *services.ExportService, l logging.Logger) *Handler {
	return &Handler{users: u, courses: c, exports: e, logger: l.With("module", "http_api")}
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", common.AuthorizationHeader, TraceIDHeader}
	cfg.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	cfg.ExposeHeaders = []string{TraceIDHeader, "Retry-After"}
	cfg.MaxAge = 12 * time.Hour

	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
		return cfg
	}
	cfg.AllowOrigins = origins
	cfg.AllowCredentials = true
	return cfg
}

func NewRouter(cfg *config.Config, h *Handler, limiter Limiter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), Trace(), RequestLogger(h.logger), cors.New(corsConfig(cfg.CORSOrigins)))

	r.GET("/health", h.Health)

	api := r.Group(common.APIBasePath)
	api.GET("/health", h.Health)

	auth := api.Group("/auth")
	{
		auth.POST("/register", RateLimit(limiter, "register", cfg.RegisterLimit, cfg.RateWindow), h.Register)
		auth.POST("/login", RateLimit(limiter, "login", cfg.LoginLimit, cfg.RateWindow), h.Login)
	}

	me := api.Group("/users/me", RequireAuth(h.users))
	{
		me.GET("", h.Me)
		me.PATCH("", h.UpdateProfile)
		me.PATCH("/focus-course", h.SetFocusCourse)
		me.GET("/export", h.Export)
	}

	courses := api.Group("/courses", RequireAuth(h.users))
	{
		courses.GET("", h.ListCourses)
		courses.POST("", h.CreateCourse)
		courses.GET("/:id", h.GetCourse)
		courses.PATCH("/:id", h.UpdateCourse)
		courses.DELETE("/:id", h.DeleteCourse)

		courses.POST("/:id/lectures", h.CreateLecture)
		courses.PATCH("/:id/lectures/:lid", h.UpdateLecture)
		courses.DELETE("/:id/lectures/:lid", h.DeleteLecture)

		courses.POST("/:id/assignments", h.CreateAssignment)
		courses.PATCH("/:id/assignments/:aid", h.UpdateAssignment)
		courses.DELETE("/:id/assignments/:aid", h.DeleteAssignment)
	}

	r.NoRoute(func(c *gin.Context) {
		respondError(c, http.StatusNotFound, "not_found", "Route not found", nil)
	})

	return r
}

func (h *Handler) Health(c *gin.Context) {
	respond(c, http.StatusOK, map[string]string{"status": "ok"})
}
