package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/smart-edu-api/internal/middleware"
	"github.com/noah-isme/smart-edu-api/internal/service"
	"github.com/noah-isme/smart-edu-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/smart-edu-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/smart-edu-api/pkg/middleware/requestid"
)

// RouteRegistrar mounts a resource under its group.
type RouteRegistrar interface {
	Register(group *gin.RouterGroup)
}

// RouterConfig carries the transport settings of the HTTP server.
type RouterConfig struct {
	APIPrefix      string
	AllowedOrigins []string
	UploadsDir     string
}

// Handlers groups the handlers mounted by NewRouter. Nil handlers leave their routes unmounted.
type Handlers struct {
	Timetable   *TimetableHandler
	Exams       *ExamHandler
	Courses     *CourseHandler
	Assignments *AssignmentHandler
	Reports     *ReportHandler
	Metrics     *MetricsHandler
	// Directory maps a plural kind ("students") to its CRUD handler.
	Directory   map[string]RouteRegistrar
	Messages    *MessageHandler
}

// NewRouter builds the gin engine with the shared middleware chain.
func NewRouter(cfg RouterConfig, log *zap.Logger, metrics *service.MetricsService, h Handlers) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(cfg.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))

	if h.Metrics != nil {
		r.GET("/health", h.Metrics.Health)
		r.GET("/ready", h.Metrics.Ready)
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if cfg.UploadsDir != "" {
		r.Static("/uploads", cfg.UploadsDir)
	}

	prefix := cfg.APIPrefix
	if prefix == "" {
		prefix = "/api/v1"
	}
	core := r.Group(prefix)
	if h.Timetable != nil {
		core.GET("/timetable", h.Timetable.List)
		core.POST("/timetable/entries", h.Timetable.Create)
		core.PUT("/timetable/entries/:index", h.Timetable.Update)
		core.DELETE("/timetable/entries/:index", h.Timetable.Delete)
		core.POST("/timetable/check", h.Timetable.Check)
		core.GET("/timetable/export", h.Timetable.Export)
	}
	if h.Exams != nil {
		core.GET("/exams/results", h.Exams.List)
		core.POST("/exams/results", h.Exams.Create)
		core.GET("/exams/results/:id", h.Exams.Get)
		core.PUT("/exams/results/:id", h.Exams.Update)
		core.DELETE("/exams/results/:id", h.Exams.Delete)
		core.GET("/exams/summary", h.Exams.Summary)
		core.GET("/exams/top", h.Exams.Top)
		core.GET("/exams/export", h.Exams.Export)
	}
	if h.Courses != nil {
		core.GET("/courses", h.Courses.List)
		core.POST("/courses", h.Courses.Create)
		core.GET("/courses/summary", h.Courses.Summary)
		core.GET("/courses/:id", h.Courses.Get)
		core.PUT("/courses/:id", h.Courses.Update)
		core.DELETE("/courses/:id", h.Courses.Delete)
	}
	if h.Assignments != nil {
		core.GET("/assignments", h.Assignments.List)
		core.POST("/assignments", h.Assignments.Create)
		core.GET("/assignments/:id", h.Assignments.Get)
		core.PUT("/assignments/:id", h.Assignments.Update)
		core.DELETE("/assignments/:id", h.Assignments.Delete)
		core.GET("/assignments/:id/submissions", h.Assignments.Submissions)
		core.POST("/assignments/:id/submissions", h.Assignments.Submit)
	}
	if h.Reports != nil {
		core.GET("/reports/dashboard", h.Reports.Dashboard)
		core.GET("/reports/templates", h.Reports.ListTemplates)
		core.POST("/reports/templates", h.Reports.CreateTemplate)
		core.DELETE("/reports/templates/:id", h.Reports.DeleteTemplate)
		core.GET("/reports/schedules", h.Reports.ListSchedules)
		core.POST("/reports/schedules", h.Reports.Schedule)
	}
	if h.Metrics != nil {
		core.GET("/metrics/summary", h.Metrics.Summary)
	}

	collab := r.Group("/api")
	for kind, registrar := range h.Directory {
		registrar.Register(collab.Group("/" + kind))
	}
	if h.Messages != nil {
		collab.GET("/messages", h.Messages.List)
		collab.POST("/messages", h.Messages.Send)
		collab.PUT("/messages/:id", h.Messages.UpdateFlags)
		collab.POST("/messages/:id/replies", h.Messages.Reply)
		collab.DELETE("/messages/:id", h.Messages.Delete)
		collab.GET("/notifications", h.Messages.ListNotifications)
		collab.POST("/notifications", h.Messages.CreateNotification)
		collab.DELETE("/notifications/:id", h.Messages.DeleteNotification)
	}
	return r
}
