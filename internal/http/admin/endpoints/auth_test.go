package endpoints

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/hydra/internal/db"
	"github.com/Nixie-Tech-LLC/hydra/internal/http/middleware"
)

const testSecret = "test-secret"

func newAuthRouter(t *testing.T) (*gin.Engine, *db.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := db.New(filepath.Join(t.TempDir(), "hydra.db"))
	require.NoError(t, store.Open())
	t.Cleanup(func() { _ = store.Close() })

	r := gin.New()
	group := r.Group("/api/admin")
	RegisterAuthPublicRoutes(group, testSecret, store)
	group.Use(middleware.JWTMiddleware(testSecret, store))
	RegisterUserRoutes(group, testSecret, store)
	return r, store
}

func doJSON(r *gin.Engine, method, path, token string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		_ = json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func login(t *testing.T, r *gin.Engine, username, password string) string {
	t.Helper()
	w := doJSON(r, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestLoginSeededAdmin(t *testing.T) {
	r, _ := newAuthRouter(t)
	token := login(t, r, "admin", "admin")

	w := doJSON(r, http.MethodGet, "/api/admin/auth/current_profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "admin", profile.Username)
	assert.Equal(t, "admin", profile.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
		"username": "admin",
		"password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodPost, "/api/admin/auth/login", "", map[string]string{
		"username": "nobody",
		"password": "whatever",
	})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := doJSON(r, http.MethodGet, "/api/admin/users", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(r, http.MethodGet, "/api/admin/users", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserManagementRoundTrip(t *testing.T) {
	r, _ := newAuthRouter(t)
	adminToken := login(t, r, "admin", "admin")

	// create an ordinary operator account
	w := doJSON(r, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"username": "operator",
		"password": "hunter22",
		"role":     "user",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var created struct {
		ID int `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	// duplicate username conflicts
	w = doJSON(r, http.MethodPost, "/api/admin/users", adminToken, map[string]string{
		"username": "operator",
		"password": "hunter22",
		"role":     "user",
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// the operator can log in but cannot manage users
	opToken := login(t, r, "operator", "hunter22")
	w = doJSON(r, http.MethodGet, "/api/admin/users", opToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// non-admins may change their own password only
	w = doJSON(r, http.MethodPut, "/api/admin/users/1/password", opToken, map[string]string{
		"password": "newpass",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminAccountCannotBeDeleted(t *testing.T) {
	r, store := newAuthRouter(t)
	token := login(t, r, "admin", "admin")

	admin, err := store.GetUserByUsername("admin")
	require.NoError(t, err)

	w := doJSON(r, http.MethodDelete, "/api/admin/users/"+strconv.Itoa(admin.ID), token, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(r, http.MethodPut, "/api/admin/users/"+strconv.Itoa(admin.ID)+"/role", token, map[string]string{
		"role": "user",
	})
	assert.Equal(t, http.StatusForbidden, w.Code)
}
