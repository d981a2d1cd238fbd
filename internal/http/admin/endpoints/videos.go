package endpoints

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/api"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/admin/packets"
	"github.com/Nixie-Tech-LLC/hydra/internal/model"
	"github.com/Nixie-Tech-LLC/hydra/internal/storage"
)

type VideoController struct {
	store  *db.Store
	videos *storage.VideoStore
}

func NewVideoController(store *db.Store, videos *storage.VideoStore) *VideoController {
	return &VideoController{store: store, videos: videos}
}

func RegisterVideoRoutes(r gin.IRoutes, store *db.Store, videos *storage.VideoStore) {
	ctl := NewVideoController(store, videos)
	r.GET("/videos", api.ResolveEndpointWithAuth(ctl.listVideos))
	r.POST("/videos", api.ResolveEndpointWithAuth(ctl.uploadVideo))
	r.GET("/videos/:id", api.ResolveEndpointWithAuth(ctl.getVideo))
	r.PUT("/videos/:id", api.ResolveEndpointWithAuth(ctl.updateVideo))
	r.DELETE("/videos/:id", api.ResolveEndpointWithAuth(ctl.deleteVideo))
	r.GET("/videos/:id/file", ctl.downloadVideo)
}

// GET /api/admin/videos
func (v *VideoController) listVideos(ctx *gin.Context, user *model.User) (any, *api.Error) {
	all, err := v.store.ListVideos()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list videos"}
	}
	return all, nil
}

// POST /api/admin/videos - multipart upload: file lands on disk, bytes are
// hashed in the same pass, and only then does the catalog row appear.
func (v *VideoController) uploadVideo(ctx *gin.Context, user *model.User) (any, *api.Error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "missing file field"}
	}
	var description, category *string
	if s := ctx.PostForm("description"); s != "" {
		description = &s
	}
	if s := ctx.PostForm("category"); s != "" {
		category = &s
	}

	src, err := fileHeader.Open()
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "could not read upload"}
	}
	defer func() {
		if err := src.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close upload stream")
		}
	}()

	filename, sha, size, err := v.videos.Save(src, fileHeader.Filename)
	if err != nil {
		log.Error().Err(err).Str("original", fileHeader.Filename).Msg("video upload failed")
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not store video"}
	}

	video, err := v.store.CreateVideo(filename, fileHeader.Filename, sha, size, description, category)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not register video"}
	}
	return video, nil
}

// GET /api/admin/videos/:id
func (v *VideoController) getVideo(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	video, err := v.store.GetVideoByID(id)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "video not found"}
	}
	return video, nil
}

// PUT /api/admin/videos/:id
func (v *VideoController) updateVideo(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.UpdateVideoRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := v.store.UpdateVideo(id, request.Description, request.Category); err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not update video"}
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/admin/videos/:id - removes memberships, catalog row, and the
// on-disk file.
func (v *VideoController) deleteVideo(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	filename, err := v.store.DeleteVideo(id)
	if err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "video not found"}
	}
	if err := v.videos.Delete(filename); err != nil {
		// the catalog row is gone; a leftover file is an orphan the
		// integrity auditor can clean up
		log.Error().Err(err).Str("filename", filename).Msg("failed to delete video file")
	}
	return gin.H{"status": "ok"}, nil
}

// GET /api/admin/videos/:id/file
func (v *VideoController) downloadVideo(ctx *gin.Context) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	video, err := v.store.GetVideoByID(id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "video not found"})
		return
	}
	ctx.FileAttachment(v.videos.Path(video.Filename), video.OriginalName)
}
