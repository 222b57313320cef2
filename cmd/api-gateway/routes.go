package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/contact-log-api/internal/handler"
	internalmiddleware "github.com/noah-isme/contact-log-api/internal/middleware"
	"github.com/noah-isme/contact-log-api/internal/models"
)

type routeDeps struct {
	tokens internalmiddleware.TokenValidator
	audit  internalmiddleware.AuditWriter
	logger *zap.Logger

	auth      *handler.AuthHandler
	entries   *handler.EntryHandler
	dashboard *handler.DashboardHandler
	export    *handler.ExportHandler
	holidays  *handler.HolidayHandler
	metrics   *handler.MetricsHandler
}

func registerRoutes(r *gin.Engine, prefix string, deps routeDeps) {
	r.GET("/health", deps.metrics.Health)
	r.GET("/ready", deps.metrics.Ready)
	r.GET("/metrics", deps.metrics.Prometheus)

	api := r.Group(prefix)
	api.Use(internalmiddleware.WithResponseMeta())

	auth := api.Group("/auth")
	auth.POST("/login", deps.auth.Login)
	auth.POST("/refresh", deps.auth.Refresh)

	secured := api.Group("")
	secured.Use(internalmiddleware.JWT(deps.tokens))
	secured.POST("/auth/logout", deps.auth.Logout)
	secured.GET("/auth/me", deps.auth.Me)
	secured.GET("/calendar/target-date", deps.entries.TargetDate)

	student := secured.Group("/student", internalmiddleware.RequireRoles(models.RoleStudent))
	student.GET("/entries/today", deps.entries.Today)
	student.GET("/entries", deps.entries.ListMine)
	student.POST("/entries", deps.entries.Submit)
	student.GET("/entries/:id", deps.entries.Get)
	student.PUT("/entries/:id", deps.entries.Update)

	teacher := secured.Group("/teacher", internalmiddleware.RequireRoles(models.RoleTeacher, models.RoleAdmin, models.RoleSuperAdmin))
	teacher.GET("/dashboard", internalmiddleware.RequireRoles(models.RoleTeacher), deps.dashboard.Teacher)
	teacher.POST("/entries/:id/read", deps.entries.Review)
	teacher.GET("/classes/:classId/export",
		internalmiddleware.Audit(deps.audit, deps.logger, models.AuditActionEntryExport, "class_room", "classId"),
		deps.export.ClassEntries,
	)

	admin := secured.Group("/admin", internalmiddleware.RequireRoles(models.RoleAdmin, models.RoleSuperAdmin))
	admin.POST("/entries/bulk-read", deps.entries.MarkReadBulk)
	admin.POST("/entries/bulk-unlock", deps.entries.UnlockBulk)
	admin.POST("/entries/:id/read", deps.entries.Review)
	admin.POST("/entries/:id/unlock", deps.entries.Unlock)
	admin.DELETE("/entries/:id", deps.entries.Delete)
	admin.GET("/holidays", deps.holidays.List)
	admin.POST("/holidays", deps.holidays.Create)
	admin.DELETE("/holidays/:id", deps.holidays.Delete)
}
