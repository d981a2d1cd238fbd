package main

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/hydra/internal/backup"
	"github.com/Nixie-Tech-LLC/hydra/internal/config"
	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	adminapi "github.com/Nixie-Tech-LLC/hydra/internal/http/admin/endpoints"
	deviceapi "github.com/Nixie-Tech-LLC/hydra/internal/http/device/endpoints"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/hydra/internal/identity"
	"github.com/Nixie-Tech-LLC/hydra/internal/integrity"
	"github.com/Nixie-Tech-LLC/hydra/internal/maintenance"
	"github.com/Nixie-Tech-LLC/hydra/internal/storage"
)

// RegisterRoutes sets up all application routes.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	store *db.Store,
	videos *storage.VideoStore,
	resolver *identity.Resolver,
	auditor *integrity.Auditor,
	scheduler *backup.Scheduler,
	manager *maintenance.Manager,
) {
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool { return true },
		AllowMethods: []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
			"HEAD",
		},
		AllowHeaders: []string{
			"Origin",
			"Content-Type",
			"Authorization",
			"Accept",
		},
		AllowCredentials: false,
	}))

	// public auth routes first
	admin := r.Group("/api/admin")
	adminapi.RegisterAuthPublicRoutes(admin, cfg.JWTSecret, store)

	// everything else under /api/admin requires a valid JWT
	admin.Use(middleware.JWTMiddleware(cfg.JWTSecret, store))
	adminapi.RegisterUserRoutes(admin, cfg.JWTSecret, store)
	adminapi.RegisterVideoRoutes(admin, store, videos)
	adminapi.RegisterPlaylistRoutes(admin, store)
	adminapi.RegisterDeviceRoutes(admin, store)
	adminapi.RegisterLocationRoutes(admin, store)
	adminapi.RegisterEventRoutes(admin, store)
	adminapi.RegisterMaintenanceRoutes(admin, manager, auditor, scheduler)

	// device-facing routes: callers authenticate by announcement, not JWT
	device := r.Group("/api/device")
	deviceapi.RegisterDeviceRoutes(device, store, resolver)

	// video bytes for the device cache
	r.Static("/videos", videos.Dir())
}
