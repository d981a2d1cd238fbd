package endpoints

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/api"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/admin/packets"
	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

type DeviceController struct {
	store *db.Store
}

func NewDeviceController(store *db.Store) *DeviceController {
	return &DeviceController{store: store}
}

func RegisterDeviceRoutes(r gin.IRoutes, store *db.Store) {
	ctl := NewDeviceController(store)
	r.GET("/devices", api.ResolveEndpointWithAuth(ctl.listDevices))
	r.POST("/devices", api.ResolveEndpointWithAuth(ctl.createDevice))
	r.GET("/devices/:name", api.ResolveEndpointWithAuth(ctl.getDevice))
	r.PUT("/devices/:name", api.ResolveEndpointWithAuth(ctl.updateDevice))
	r.DELETE("/devices/:name", api.ResolveEndpointWithAuth(ctl.deleteDevice))
	r.PUT("/devices/:name/config", api.ResolveEndpointWithAuth(ctl.writeConfig))
	r.DELETE("/devices/:name/config", api.ResolveEndpointWithAuth(ctl.clearConfig))
	r.POST("/devices/:name/config/import", api.ResolveEndpointWithAuth(ctl.importReportedConfig))
	r.DELETE("/devices/:name/playlist", api.ResolveEndpointWithAuth(ctl.unassignPlaylist))
}

// GET /api/admin/devices
func (d *DeviceController) listDevices(ctx *gin.Context, user *model.User) (any, *api.Error) {
	all, err := d.store.ListDevices()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list devices"}
	}
	return all, nil
}

// POST /api/admin/devices - pre-registers a caller. The server issues the
// stable identifier here; field installers paste it into the device.
func (d *DeviceController) createDevice(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var request packets.CreateDeviceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	hardwareID := uuid.NewString()
	if _, err := d.store.CreateDevice(request.Name, &hardwareID, request.Description, nil); err != nil {
		if db.IsConflict(err) {
			return nil, &api.Error{Code: http.StatusConflict, Message: "device name already exists"}
		}
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create device"}
	}
	return packets.DeviceCreatedResponse{Name: request.Name, HardwareID: hardwareID}, nil
}

// GET /api/admin/devices/:name
func (d *DeviceController) getDevice(ctx *gin.Context, user *model.User) (any, *api.Error) {
	device, err := d.store.GetDeviceByName(ctx.Param("name"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "device not found"}
	}
	return device, nil
}

// PUT /api/admin/devices/:name
func (d *DeviceController) updateDevice(ctx *gin.Context, user *model.User) (any, *api.Error) {
	name := ctx.Param("name")
	var request packets.UpdateDeviceRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := d.store.GetDeviceByName(name); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "device not found"}
	}
	if err := d.store.UpdateDevice(name,
		request.Description, request.Notes, request.Location, request.Sublocation,
		request.Resolution, request.Layout, request.Hardware, request.Photo); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update device"}
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/admin/devices/:name
func (d *DeviceController) deleteDevice(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if err := d.store.DeleteDevice(ctx.Param("name")); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete device"}
	}
	return gin.H{"status": "ok"}, nil
}

// PUT /api/admin/devices/:name/config - stores the operator override blob
// verbatim after a well-formedness check.
func (d *DeviceController) writeConfig(ctx *gin.Context, user *model.User) (any, *api.Error) {
	name := ctx.Param("name")
	var request packets.DeviceConfigRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := d.store.GetDeviceByName(name); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "device not found"}
	}
	if len(request.Config) == 0 {
		if err := d.store.SetConfigOverride(name, nil); err != nil {
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not clear config"}
		}
		return gin.H{"status": "cleared"}, nil
	}
	if !json.Valid(request.Config) {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "config is not valid JSON"}
	}
	cfg := string(request.Config)
	if err := d.store.SetConfigOverride(name, &cfg); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not store config"}
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/admin/devices/:name/config
func (d *DeviceController) clearConfig(ctx *gin.Context, user *model.User) (any, *api.Error) {
	name := ctx.Param("name")
	if _, err := d.store.GetDeviceByName(name); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "device not found"}
	}
	if err := d.store.SetConfigOverride(name, nil); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not clear config"}
	}
	return gin.H{"status": "cleared"}, nil
}

// POST /api/admin/devices/:name/config/import - copies the device-reported
// configuration into the operator override, so an operator can adopt what a
// device is actually running.
func (d *DeviceController) importReportedConfig(ctx *gin.Context, user *model.User) (any, *api.Error) {
	name := ctx.Param("name")
	device, err := d.store.GetDeviceByName(name)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "device not found"}
	}
	if device.ReportedConfig == nil {
		return nil, &api.Error{Code: http.StatusConflict, Message: "device has not reported a configuration"}
	}
	if err := d.store.SetConfigOverride(name, device.ReportedConfig); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not import config"}
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/admin/devices/:name/playlist
func (d *DeviceController) unassignPlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	name := ctx.Param("name")
	if _, err := d.store.GetDeviceByName(name); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "device not found"}
	}
	if err := d.store.AssignPlaylist(name, nil); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not unassign playlist"}
	}
	return gin.H{"status": "ok"}, nil
}
