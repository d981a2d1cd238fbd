package endpoints

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/api"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/admin/packets"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/middleware"
	"github.com/Nixie-Tech-LLC/hydra/internal/model"
)

type AccountManager struct {
	jwtSecret string
	store     *db.Store
}

func NewAccountManager(secret string, store *db.Store) *AccountManager {
	return &AccountManager{jwtSecret: secret, store: store}
}

// RegisterAuthPublicRoutes mounts the login endpoint (no JWT required).
func RegisterAuthPublicRoutes(r gin.IRoutes, secret string, store *db.Store) {
	ctl := NewAccountManager(secret, store)
	r.POST("/auth/login", api.ResolveEndpoint(ctl.login))
}

// RegisterUserRoutes mounts user management (JWT required; admin role for
// anything beyond the current profile).
func RegisterUserRoutes(r gin.IRoutes, secret string, store *db.Store) {
	ctl := NewAccountManager(secret, store)
	r.GET("/auth/current_profile", api.ResolveEndpointWithAuth(ctl.currentProfile))
	r.GET("/users", api.ResolveEndpointWithAuth(ctl.listUsers))
	r.POST("/users", api.ResolveEndpointWithAuth(ctl.createUser))
	r.PUT("/users/:id/role", api.ResolveEndpointWithAuth(ctl.updateRole))
	r.PUT("/users/:id/password", api.ResolveEndpointWithAuth(ctl.updatePassword))
	r.DELETE("/users/:id", api.ResolveEndpointWithAuth(ctl.deleteUser))
}

// POST /api/admin/auth/login
func (a *AccountManager) login(ctx *gin.Context) (any, *api.Error) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	user, err := a.store.GetUserByUsername(request.Username)
	if err != nil || user == nil || !middleware.CheckPassword(user.HashedPassword, request.Password) {
		log.Warn().Str("username", request.Username).Msg("failed login attempt")
		return nil, &api.Error{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	token, err := middleware.GenerateJWT(user.ID, a.jwtSecret)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}
	return packets.TokenResponse{Token: token}, nil
}

// GET /api/admin/auth/current_profile
func (a *AccountManager) currentProfile(ctx *gin.Context, user *model.User) (any, *api.Error) {
	return packets.UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Role:      user.Role,
		CreatedAt: user.CreatedAt.Format(time.RFC3339),
	}, nil
}

// GET /api/admin/users
func (a *AccountManager) listUsers(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	users, err := a.store.ListUsers()
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not list users"}
	}
	out := make([]packets.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, packets.UserResponse{
			ID:        u.ID,
			Username:  u.Username,
			Role:      u.Role,
			CreatedAt: u.CreatedAt.Format(time.RFC3339),
		})
	}
	return out, nil
}

// POST /api/admin/users
func (a *AccountManager) createUser(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	var request packets.CreateUserRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}

	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not hash password"}
	}
	id, err := a.store.CreateUser(request.Username, hashed, request.Role)
	if err != nil {
		if db.IsConflict(err) {
			return nil, &api.Error{Code: http.StatusConflict, Message: "username already exists"}
		}
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not create user"}
	}
	return gin.H{"id": id}, nil
}

// PUT /api/admin/users/:id/role
func (a *AccountManager) updateRole(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	var request packets.UpdateUserRoleRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	if err := a.store.UpdateUserRole(id, request.Role); err != nil {
		if errors.Is(err, db.ErrProtectedUser) {
			return nil, &api.Error{Code: http.StatusForbidden, Message: err.Error()}
		}
		return nil, &api.Error{Code: http.StatusNotFound, Message: "user not found"}
	}
	return gin.H{"status": "ok"}, nil
}

// PUT /api/admin/users/:id/password
func (a *AccountManager) updatePassword(ctx *gin.Context, user *model.User) (any, *api.Error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	// non-admins may only change their own password
	if user.Role != model.RoleAdmin && user.ID != id {
		return nil, &api.Error{Code: http.StatusForbidden, Message: "forbidden"}
	}
	var request packets.UpdateUserPasswordRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: err.Error()}
	}
	hashed, err := middleware.HashPassword(request.Password)
	if err != nil {
		return nil, &api.Error{Code: http.StatusInternalServerError, Message: "could not hash password"}
	}
	if err := a.store.UpdateUserPassword(id, hashed); err != nil {
		return nil, &api.Error{Code: http.StatusNotFound, Message: "user not found"}
	}
	return gin.H{"status": "ok"}, nil
}

// DELETE /api/admin/users/:id
func (a *AccountManager) deleteUser(ctx *gin.Context, user *model.User) (any, *api.Error) {
	if apiErr := requireAdmin(user); apiErr != nil {
		return nil, apiErr
	}
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return nil, &api.Error{Code: http.StatusBadRequest, Message: "invalid id"}
	}
	if err := a.store.DeleteUser(id); err != nil {
		if errors.Is(err, db.ErrProtectedUser) {
			return nil, &api.Error{Code: http.StatusForbidden, Message: err.Error()}
		}
		return nil, &api.Error{Code: http.StatusNotFound, Message: "user not found"}
	}
	return gin.H{"status": "ok"}, nil
}

func requireAdmin(user *model.User) *api.Error {
	if user.Role != model.RoleAdmin {
		return &api.Error{Code: http.StatusForbidden, Message: "admin role required"}
	}
	return nil
}
