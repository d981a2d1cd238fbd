package endpoints

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/api"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/admin/packets"
	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

type LocationController struct {
	store *db.Store
}

func RegisterLocationRoutes(r gin.IRoutes, store *db.Store) {
	ctl := &LocationController{store: store}
	r.GET("/locations", api.ResolveEndpointWithAuth(ctl.listLocations))
	r.POST("/locations", api.ResolveEndpointWithAuth(ctl.createLocation))
	r.DELETE("/locations/:id", api.ResolveEndpointWithAuth(ctl.deleteLocation))
}

// GET /api/admin/locations
func (l *LocationController) listLocations(ctx *gin.Context, user *model.User) (any, *api.Error) {
	all, err := l.store.ListLocations()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list locations"}
	}
	return all, nil
}

// POST /api/admin/locations
func (l *LocationController) createLocation(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var request packets.CreateLocationRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	loc, err := l.store.CreateLocation(request.Name)
	if err != nil {
		if db.IsConflict(err) {
			return nil, &api.Error{Code: http.StatusConflict, Message: "location already exists"}
		}
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create location"}
	}
	return loc, nil
}

// DELETE /api/admin/locations/:id - referencing devices keep the label as
// free text.
func (l *LocationController) deleteLocation(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := l.store.DeleteLocation(id); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not delete location"}
	}
	return gin.H{"status": "ok"}, nil
}

type EventController struct {
	store *db.Store
}

func RegisterEventRoutes(r gin.IRoutes, store *db.Store) {
	ctl := &EventController{store: store}
	r.GET("/events", api.ResolveEndpointWithAuth(ctl.listEvents))
}

// GET /api/admin/events?device=&from=&to=&limit=
func (e *EventController) listEvents(ctx *gin.Context, user *model.User) (any, *api.Error) {
	var device *string
	if s := ctx.Query("device"); s != "" {
		device = &s
	}
	var from, to *time.Time
	if s := ctx.Query("from"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid from timestamp"}
		}
		from = &t
	}
	if s := ctx.Query("to"); s != "" {
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid to timestamp"}
		}
		to = &t
	}
	limit := 1000
	if s := ctx.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid limit"}
		}
		limit = n
	}

	events, err := e.store.ListPlayEvents(device, from, to, limit)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list play events"}
	}
	return events, nil
}
