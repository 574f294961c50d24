package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"tripcore/internal/auth"
	"tripcore/internal/httpserver/handlers"
	"tripcore/internal/store"
)

// Deps bundles everything the router needs.
type Deps struct {
	Store   store.CredentialStore
	Service *auth.Service
	Issuer  *auth.TokenIssuer
	Checker *auth.Checker
	Hasher  auth.PasswordHasher
	Logger  *zap.SugaredLogger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)

	r.Post("/v1/auth/register", handlers.Register(d.Service, d.Logger))
	r.Post("/v1/auth/login", handlers.Login(d.Service, d.Logger))
	r.Post("/v1/auth/refresh", handlers.Refresh(d.Service, d.Logger))

	r.Group(func(protected chi.Router) {
		protected.Use(auth.JWTAuth(d.Issuer))
		protected.Get("/v1/me", handlers.Me(d.Store, d.Logger))
		protected.Post("/v1/auth/logout", handlers.Logout(d.Service, d.Logger))
		protected.Post("/v1/auth/password", handlers.ChangePassword(d.Service, d.Logger))
		protected.Get("/v1/logs", handlers.MyLogs(d.Store, d.Logger))

		protected.Group(func(admin chi.Router) {
			admin.Use(auth.RequireRole(d.Store, "Administrator"))
			admin.Get("/v1/admin/users", handlers.ListUsers(d.Store, d.Logger))
			admin.Post("/v1/admin/users", handlers.CreateUser(d.Store, d.Hasher, d.Logger))
			admin.Patch("/v1/admin/users/{id}", handlers.UpdateUser(d.Store, d.Hasher, d.Logger))
			admin.Delete("/v1/admin/users/{id}", handlers.DeactivateUser(d.Store, d.Service, d.Logger))
			admin.Post("/v1/admin/users/{id}/roles/{roleID}", handlers.AssignRole(d.Service, d.Logger))
			admin.Delete("/v1/admin/users/{id}/roles/{roleID}", handlers.RemoveRole(d.Service, d.Logger))

			admin.Get("/v1/admin/roles", handlers.ListRoles(d.Store, d.Logger))
			admin.Post("/v1/admin/roles", handlers.CreateRole(d.Store, d.Logger))
			admin.Patch("/v1/admin/roles/{id}", handlers.UpdateRole(d.Store, d.Logger))
			admin.Post("/v1/admin/roles/{id}/permissions/{permID}", handlers.AssignPermission(d.Service, d.Logger))
			admin.Delete("/v1/admin/roles/{id}/permissions/{permID}", handlers.RemovePermission(d.Service, d.Logger))
			admin.Get("/v1/admin/roles/{id}/permissions/check", handlers.CheckPermission(d.Checker, d.Logger))

			admin.Get("/v1/admin/permissions", handlers.ListPermissions(d.Store, d.Logger))
			admin.Post("/v1/admin/permissions", handlers.CreatePermission(d.Store, d.Logger))
			admin.Patch("/v1/admin/permissions/{id}", handlers.UpdatePermission(d.Store, d.Logger))
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
