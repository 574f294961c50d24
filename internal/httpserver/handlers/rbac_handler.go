package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"tripcore/internal/auth"
	"tripcore/internal/models"
	"tripcore/internal/store"
)

func ListRoles(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roles, err := st.ListRoles(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, roles)
	}
}

type roleReq struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

func CreateRole(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req roleReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		role := models.Role{Name: req.Name, Description: req.Description, IsActive: true}
		if err := st.CreateRole(r.Context(), &role); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondCreated(w, role)
	}
}

func UpdateRole(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Description *string `json:"description"`
			IsActive    *bool   `json:"is_active"`
		}
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		role, err := st.FindRoleByID(r.Context(), id)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		if req.Description != nil {
			role.Description = *req.Description
		}
		if req.IsActive != nil {
			role.IsActive = *req.IsActive
		}
		if err := st.SaveRole(r.Context(), role); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, role)
	}
}

func ListPermissions(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		perms, err := st.ListPermissions(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, perms)
	}
}

type permissionReq struct {
	Name        string `json:"name" validate:"required"`
	Resource    string `json:"resource" validate:"required"`
	Action      string `json:"action" validate:"required"`
	Description string `json:"description"`
}

func CreatePermission(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req permissionReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		perm := models.Permission{
			Name:        req.Name,
			Resource:    req.Resource,
			Action:      req.Action,
			Description: req.Description,
		}
		if err := st.CreatePermission(r.Context(), &perm); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		respondCreated(w, perm)
	}
}

// UpdatePermission edits the description only; the (resource, action)
// identity of a permission is fixed at creation.
func UpdatePermission(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		var req struct {
			Description string `json:"description"`
		}
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		perm, err := st.FindPermissionByID(r.Context(), id)
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		perm.Description = req.Description
		if err := st.SavePermission(r.Context(), perm); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, perm)
	}
}

func AssignRole(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.AssignRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "roleID")); err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func RemoveRole(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := svc.RemoveRole(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "roleID"))
		if err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, map[string]any{"removed": removed})
	}
}

func AssignPermission(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.AssignPermission(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "permID")); err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func RemovePermission(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		removed, err := svc.RemovePermission(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "permID"))
		if err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, map[string]any{"removed": removed})
	}
}

func CheckPermission(checker *auth.Checker, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resource := r.URL.Query().Get("resource")
		action := r.URL.Query().Get("action")
		if resource == "" || action == "" {
			http.Error(w, "resource and action required", http.StatusBadRequest)
			return
		}
		allowed, err := checker.HasPermission(r.Context(), chi.URLParam(r, "id"), resource, action)
		if err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, map[string]any{"allowed": allowed})
	}
}
