package endpoints

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/backup"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/api"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/hydra/internal/integrity"
	"github.com/Nixie-Tech-LLC/hydra/internal/maintenance"
	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

type MaintenanceController struct {
	manager   *maintenance.Manager
	auditor   *integrity.Auditor
	scheduler *backup.Scheduler
}

func RegisterMaintenanceRoutes(r gin.IRoutes, manager *maintenance.Manager, auditor *integrity.Auditor, scheduler *backup.Scheduler) {
	ctl := &MaintenanceController{manager: manager, auditor: auditor, scheduler: scheduler}
	r.GET("/maintenance/database", ctl.downloadDatabase)
	r.POST("/maintenance/database", api.ResolveEndpointWithAuth(ctl.restoreDatabase))
	r.POST("/maintenance/reset", api.ResolveEndpointWithAuth(ctl.reset))
	r.POST("/maintenance/integrity", api.ResolveEndpointWithAuth(ctl.auditIntegrity))
	r.GET("/maintenance/backup/policy", api.ResolveEndpointWithAuth(ctl.getBackupPolicy))
	r.PUT("/maintenance/backup/policy", api.ResolveEndpointWithAuth(ctl.setBackupPolicy))
	r.POST("/maintenance/backup/run", api.ResolveEndpointWithAuth(ctl.runBackup))
	r.GET("/maintenance/backups", api.ResolveEndpointWithAuth(ctl.listBackups))
}

// GET /api/admin/maintenance/database - raw store file download.
func (m *MaintenanceController) downloadDatabase(ctx *gin.Context) {
	user, ok := middleware.GetCurrentUser(ctx)
	if !ok || user.Role != model.RoleAdmin {
		ctx.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return
	}
	ctx.FileAttachment(m.manager.DatabasePath(), "hydra.db")
}

// POST /api/admin/maintenance/database - replace the live store from a
// multipart upload. The previous file survives as .pre-restore.
func (m *MaintenanceController) restoreDatabase(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "missing file field"}
	}
	src, err := fileHeader.Open()
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "could not read upload"}
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close restore upload")
		}
	}()

	if err := m.manager.Restore(src); err != nil {
		if errors.Is(err, maintenance.ErrNotADatabase) {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
		}
		log.Error().Err(err).Msg("database restore failed")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "restore failed"}
	}
	return gin.H{"status": "restored"}, nil
}

// POST /api/admin/maintenance/reset
func (m *MaintenanceController) reset(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	if ctx.Query("confirm") != "yes" {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "reset requires confirm=yes"}
	}
	if err := m.manager.Reset(); err != nil {
		log.Error().Err(err).Msg("system reset failed")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "reset failed"}
	}
	return gin.H{"status": "reset"}, nil
}

// POST /api/admin/maintenance/integrity?repair=true - divergence report,
// optionally repairing both directions.
func (m *MaintenanceController) auditIntegrity(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	repair := ctx.Query("repair") == "true"
	report, err := m.auditor.Audit(repair)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "integrity audit failed"}
	}
	return report, nil
}

// GET /api/admin/maintenance/backup/policy
func (m *MaintenanceController) getBackupPolicy(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	return m.scheduler.Policy(), nil
}

// PUT /api/admin/maintenance/backup/policy
func (m *MaintenanceController) setBackupPolicy(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	var policy backup.Policy
	if err := ctx.ShouldBindJSON(&policy); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := m.scheduler.SetPolicy(policy); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	return m.scheduler.Policy(), nil
}

// POST /api/admin/maintenance/backup/run - on-demand snapshot, independent
// of the timer.
func (m *MaintenanceController) runBackup(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	name, err := m.scheduler.RunOnce()
	if err != nil {
		log.Error().Err(err).Msg("on-demand backup failed")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "backup failed"}
	}
	return gin.H{"name": name}, nil
}

// GET /api/admin/maintenance/backups
func (m *MaintenanceController) listBackups(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	snaps, err := m.scheduler.List()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list backups"}
	}
	if snaps == nil {
		snaps = []backup.SnapshotInfo{}
	}
	return snaps, nil
}
