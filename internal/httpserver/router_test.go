package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"tripcore/internal/auth"
	"tripcore/internal/httpserver"
	"tripcore/internal/models"
	"tripcore/internal/store/storetest"
)

type env struct {
	router http.Handler
	fake   *storetest.Fake
	svc    *auth.Service
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fake := storetest.New()
	hasher := auth.BcryptHasher{}
	issuer := auth.NewTokenIssuer("test-secret", "tripcore", "tripcore-api", time.Hour)
	refresh := auth.NewMemoryRefreshStore(24 * time.Hour)
	lg := zap.NewNop().Sugar()
	svc := auth.NewService(fake, hasher, issuer, refresh, lg)
	router := httpserver.NewRouter(httpserver.Deps{
		Store:   fake,
		Service: svc,
		Issuer:  issuer,
		Checker: auth.NewChecker(fake),
		Hasher:  hasher,
		Logger:  lg,
	})
	return &env{router: router, fake: fake, svc: svc}
}

func (e *env) do(t *testing.T, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	res := httptest.NewRecorder()
	e.router.ServeHTTP(res, req)
	return res
}

func (e *env) registerAlice(t *testing.T) *auth.Session {
	t.Helper()
	res := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": "alice",
		"email":    "alice@x.com",
		"password": "password1",
	})
	require.Equal(t, http.StatusCreated, res.Code)
	var sess auth.Session
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &sess))
	return &sess
}

func TestHealthz(t *testing.T) {
	e := newEnv(t)
	res := e.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestRegisterAndLoginFlow(t *testing.T) {
	e := newEnv(t)
	sess := e.registerAlice(t)
	require.NotEmpty(t, sess.AccessToken)
	require.NotEmpty(t, sess.RefreshToken)
	require.Equal(t, "alice", sess.User.Username)

	res := e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "password1",
	})
	require.Equal(t, http.StatusOK, res.Code)

	res = e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestRegisterValidation(t *testing.T) {
	e := newEnv(t)
	res := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": "x", "email": "not-an-email", "password": "short",
	})
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	e := newEnv(t)
	e.registerAlice(t)
	res := e.do(t, http.MethodPost, "/v1/auth/register", "", map[string]string{
		"username": "alice2", "email": "alice@x.com", "password": "password2",
	})
	require.Equal(t, http.StatusConflict, res.Code)
}

func TestRefreshRotationOverHTTP(t *testing.T) {
	e := newEnv(t)
	sess := e.registerAlice(t)

	res := e.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": sess.RefreshToken,
	})
	require.Equal(t, http.StatusOK, res.Code)
	var next auth.Session
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &next))
	require.NotEqual(t, sess.RefreshToken, next.RefreshToken)

	res = e.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": sess.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, res.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	e := newEnv(t)
	res := e.do(t, http.MethodGet, "/v1/me", "", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = e.do(t, http.MethodGet, "/v1/me", "not-a-token", nil)
	require.Equal(t, http.StatusUnauthorized, res.Code)

	sess := e.registerAlice(t)
	res = e.do(t, http.MethodGet, "/v1/me", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)

	var me models.User
	require.NoError(t, json.Unmarshal(res.Body.Bytes(), &me))
	require.Equal(t, "alice", me.Username)
}

func TestChangePasswordOverHTTP(t *testing.T) {
	e := newEnv(t)
	sess := e.registerAlice(t)

	res := e.do(t, http.MethodPost, "/v1/auth/password", sess.AccessToken, map[string]string{
		"current_password": "wrong", "new_password": "password2",
	})
	require.Equal(t, http.StatusUnauthorized, res.Code)

	res = e.do(t, http.MethodPost, "/v1/auth/password", sess.AccessToken, map[string]string{
		"current_password": "password1", "new_password": "password2",
	})
	require.Equal(t, http.StatusOK, res.Code)

	res = e.do(t, http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": "alice", "password": "password2",
	})
	require.Equal(t, http.StatusOK, res.Code)
}

func TestAdminRoutesRequireAdministrator(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.registerAlice(t)

	res := e.do(t, http.MethodGet, "/v1/admin/users", sess.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, res.Code)

	admin := models.Role{Name: "Administrator", IsActive: true}
	require.NoError(t, e.fake.CreateRole(ctx, &admin))
	require.NoError(t, e.fake.AddUserRole(ctx, sess.User.ID, admin.ID))

	res = e.do(t, http.MethodGet, "/v1/admin/users", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
}

func TestRoleAssignmentEndpoints(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.registerAlice(t)

	admin := models.Role{Name: "Administrator", IsActive: true}
	require.NoError(t, e.fake.CreateRole(ctx, &admin))
	require.NoError(t, e.fake.AddUserRole(ctx, sess.User.ID, admin.ID))

	editor := models.Role{Name: "Editor", IsActive: true}
	require.NoError(t, e.fake.CreateRole(ctx, &editor))

	path := "/v1/admin/users/" + sess.User.ID + "/roles/" + editor.ID
	res := e.do(t, http.MethodPost, path, sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)

	res = e.do(t, http.MethodDelete, path, sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"removed":true`)

	res = e.do(t, http.MethodDelete, path, sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"removed":false`)

	res = e.do(t, http.MethodPost, "/v1/admin/users/"+sess.User.ID+"/roles/missing", sess.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, res.Code)
}

func TestPermissionCheckEndpoint(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	sess := e.registerAlice(t)

	admin := models.Role{Name: "Administrator", IsActive: true}
	require.NoError(t, e.fake.CreateRole(ctx, &admin))
	require.NoError(t, e.fake.AddUserRole(ctx, sess.User.ID, admin.ID))

	perm := models.Permission{Name: "tours.read", Resource: "tours", Action: "read"}
	require.NoError(t, e.fake.CreatePermission(ctx, &perm))
	require.NoError(t, e.fake.AddRolePermission(ctx, admin.ID, perm.ID))

	res := e.do(t, http.MethodGet, "/v1/admin/roles/"+admin.ID+"/permissions/check?resource=tours&action=read", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"allowed":true`)

	res = e.do(t, http.MethodGet, "/v1/admin/roles/"+admin.ID+"/permissions/check?resource=tours&action=write", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
	require.Contains(t, res.Body.String(), `"allowed":false`)

	res = e.do(t, http.MethodGet, "/v1/admin/roles/"+admin.ID+"/permissions/check", sess.AccessToken, nil)
	require.Equal(t, http.StatusBadRequest, res.Code)
}

func TestLogoutOverHTTP(t *testing.T) {
	e := newEnv(t)
	sess := e.registerAlice(t)

	res := e.do(t, http.MethodPost, "/v1/auth/logout", sess.AccessToken, map[string]string{
		"refresh_token": sess.RefreshToken,
	})
	require.Equal(t, http.StatusOK, res.Code)

	res = e.do(t, http.MethodPost, "/v1/auth/refresh", "", map[string]string{
		"refresh_token": sess.RefreshToken,
	})
	require.Equal(t, http.StatusUnauthorized, res.Code)

	// Access token stays valid until natural expiry.
	res = e.do(t, http.MethodGet, "/v1/me", sess.AccessToken, nil)
	require.Equal(t, http.StatusOK, res.Code)
}
