package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/api"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/admin/packets"
	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

type PlaylistController struct {
	store *db.Store
}

func NewPlaylistController(store *db.Store) *PlaylistController {
	return &PlaylistController{store: store}
}

func RegisterPlaylistRoutes(r gin.IRoutes, store *db.Store) {
	ctl := NewPlaylistController(store)
	r.GET("/playlists", api.ResolveEndpointWithAuth(ctl.listPlaylists))
	r.POST("/playlists", api.ResolveEndpointWithAuth(ctl.createPlaylist))
	r.GET("/playlists/:id", api.ResolveEndpointWithAuth(ctl.getPlaylist))
	r.PUT("/playlists/:id", api.ResolveEndpointWithAuth(ctl.updatePlaylist))
	r.DELETE("/playlists/:id", api.ResolveEndpointWithAuth(ctl.deletePlaylist))
	r.PUT("/playlists/:id/items", api.ResolveEndpointWithAuth(ctl.replaceItems))
	r.POST("/playlists/:id/assign", api.ResolveEndpointWithAuth(ctl.assignToDevice))
}

// GET /api/admin/playlists
func (p *PlaylistController) listPlaylists(ctx *gin.Context, user *model.User) (any, *api.Error) {
	all, err := p.store.ListPlaylists()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list playlists"}
	}
	return all, nil
}

// POST /api/admin/playlists
func (p *PlaylistController) createPlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var request packets.CreatePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	playlist, err := p.store.CreatePlaylist(request.Name, request.Description)
	if err != nil {
		if db.IsConflict(err) {
			return nil, &api.Error{Code: http.StatusConflict, Message: "playlist name already exists"}
		}
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create playlist"}
	}
	return playlist, nil
}

// GET /api/admin/playlists/:id
func (p *PlaylistController) getPlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	playlist, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	return playlist, nil
}

// PUT /api/admin/playlists/:id
func (p *PlaylistController) updatePlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.UpdatePlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := p.store.UpdatePlaylist(id, request.Name, request.Description); err != nil {
		if db.IsConflict(err) {
			return nil, &api.Error{Code: http.StatusConflict, Message: "playlist name already exists"}
		}
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update playlist"}
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/admin/playlists/:id - devices referencing the playlist are
// unassigned, never deleted.
func (p *PlaylistController) deletePlaylist(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := p.store.DeletePlaylist(id); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete playlist"}
	}
	return gin.H{"status": "ok"}, nil
}

// PUT /api/admin/playlists/:id/items - atomic full replacement; repeated
// videos and sparse positions round-trip unchanged.
func (p *PlaylistController) replaceItems(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if _, err := p.store.GetPlaylistByID(id); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	var request packets.ReplaceItemsRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	entries := make([]db.PlaylistEntry, 0, len(request.Items))
	for i, item := range request.Items {
		pos := i + 1
		if item.Position != nil {
			pos = *item.Position
		}
		entries = append(entries, db.PlaylistEntry{VideoID: item.VideoID, Position: pos})
	}
	if err := p.store.ReplacePlaylistItems(id, entries); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not replace playlist items"}
	}
	playlist, err := p.store.GetPlaylistByID(id)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not reload playlist"}
	}
	return playlist, nil
}

// POST /api/admin/playlists/:id/assign
func (p *PlaylistController) assignToDevice(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.AssignPlaylistRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if _, err := p.store.GetPlaylistByID(id); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "playlist not found"}
	}
	if _, err := p.store.GetDeviceByName(request.DeviceName); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "device not found"}
	}
	if err := p.store.AssignPlaylist(request.DeviceName, &id); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not assign playlist"}
	}
	return gin.H{"status": "ok"}, nil
}
