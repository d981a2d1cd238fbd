package endpoints

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/api"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/device/packets"
	"github.com/Nixie-Tech-LLC/hydra/internal/identity"
)

type DeviceController struct {
	store    *db.Store
	resolver *identity.Resolver
}

func NewDeviceController(store *db.Store, resolver *identity.Resolver) *DeviceController {
	return &DeviceController{store: store, resolver: resolver}
}

func RegisterDeviceRoutes(r gin.IRoutes, store *db.Store, resolver *identity.Resolver) {
	ctl := NewDeviceController(store, resolver)
	r.POST("/report", api.ResolveEndpoint(ctl.report))
	r.POST("/events", api.ResolveEndpoint(ctl.appendEvent))
	r.GET("/playlist", api.ResolveEndpoint(ctl.currentPlaylist))
	r.GET("/config", api.ResolveEndpoint(ctl.currentConfig))
}

// POST /api/device/report - the announcement path. Identity is resolved
// through the precedence rules, then last-seen/status/reported-config are
// refreshed.
func (d *DeviceController) report(ctx *gin.Context) (any, *api.Error) {
	var request packets.ReportRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	address := request.Address
	if address == nil {
		ip := ctx.ClientIP()
		address = &ip
	}
	var status *string
	if len(request.Status) > 0 {
		if !json.Valid(request.Status) {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "status is not valid JSON"}
		}
		s := string(request.Status)
		status = &s
	}

	device, err := d.resolver.Resolve(identity.Announcement{
		Name:        request.Name,
		HardwareID:  request.HardwareID,
		Address:     address,
		Status:      status,
		Description: request.Description,
	})
	if err != nil {
		log.Error().Err(err).Str("name", request.Name).Msg("device resolution failed")
		return nil, &api.Error{Code: http.StatusConflict, Message: err.Error()}
	}

	if len(request.ReportedConfig) > 0 {
		if !json.Valid(request.ReportedConfig) {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "reported_config is not valid JSON"}
		}
		if err := d.store.SetReportedConfig(device.Name, string(request.ReportedConfig)); err != nil {
			return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not store reported config"}
		}
	}
	return device, nil
}

// POST /api/device/events - append-only play history.
func (d *DeviceController) appendEvent(ctx *gin.Context) (any, *api.Error) {
	var request packets.PlayEventRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	device, err := d.store.GetDeviceByName(request.Name)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "unknown device"}
	}

	playedAt := time.Now()
	if request.PlayedAt != nil {
		t, err := time.Parse(time.RFC3339, *request.PlayedAt)
		if err != nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid played_at timestamp"}
		}
		playedAt = t
	}

	// location is snapshotted at play time, not joined at read time
	if err := d.store.AppendPlayEvent(device.Name, request.Filename, request.VideoID, playedAt, request.DurationSecs, device.Location); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not record play event"}
	}
	return gin.H{"status": "ok"}, nil
}

// GET /api/device/playlist?name= - the device's current playlist.
func (d *DeviceController) currentPlaylist(ctx *gin.Context) (any, *api.Error) {
	name := ctx.Query("name")
	if name == "" {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "missing name"}
	}
	device, err := d.store.GetDeviceByName(name)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "unknown device"}
	}
	if device.PlaylistID == nil {
		return packets.PlaylistResponse{Items: []packets.PlaylistItemResponse{}}, nil
	}
	playlist, err := d.store.GetPlaylistByID(*device.PlaylistID)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	out := packets.PlaylistResponse{Name: playlist.Name, Items: make([]packets.PlaylistItemResponse, 0, len(playlist.Items))}
	for _, item := range playlist.Items {
		out.Items = append(out.Items, packets.PlaylistItemResponse{Filename: item.Filename, Position: item.Position})
	}
	return out, nil
}

// GET /api/device/config?name= - the operator-authored override blob.
func (d *DeviceController) currentConfig(ctx *gin.Context) (any, *api.Error) {
	name := ctx.Query("name")
	if name == "" {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "missing name"}
	}
	device, err := d.store.GetDeviceByName(name)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "unknown device"}
	}
	resp := packets.ConfigResponse{}
	if device.ConfigOverride != nil {
		resp.Config = json.RawMessage(*device.ConfigOverride)
	}
	if device.ConfigUpdatedAt != nil {
		s := device.ConfigUpdatedAt.Format(time.RFC3339)
		resp.UpdatedAt = &s
	}
	return resp, nil
}
