package handlers

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"tripcore/internal/auth"
	"tripcore/internal/store"
)

type registerReq struct {
	Username  string `json:"username" validate:"required,min=3"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

func Register(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess, err := svc.Register(r.Context(), auth.RegisterInput{
			Username:  strings.TrimSpace(req.Username),
			Email:     strings.TrimSpace(strings.ToLower(req.Email)),
			Password:  req.Password,
			FirstName: req.FirstName,
			LastName:  req.LastName,
		})
		if err != nil {
			respondAuthError(w, err)
			return
		}
		respondCreated(w, sess)
	}
}

type loginReq struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func Login(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess, err := svc.Login(r.Context(), strings.TrimSpace(req.Username), req.Password)
		if err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, sess)
	}
}

type refreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

func Refresh(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req refreshReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		sess, err := svc.Refresh(r.Context(), req.RefreshToken)
		if err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, sess)
	}
}

type logoutReq struct {
	RefreshToken string `json:"refresh_token"`
	All          bool   `json:"all"`
}

func Logout(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logoutReq
		_ = decodeValid(r, &req)
		claims := auth.FromContext(r.Context())
		if req.All && claims != nil {
			if err := svc.LogoutAll(r.Context(), claims.Username); err != nil {
				lg.Warnw("logout all", "error", err)
			}
		} else if req.RefreshToken != "" {
			if err := svc.Logout(r.Context(), req.RefreshToken); err != nil {
				lg.Warnw("logout", "error", err)
			}
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

type changePasswordReq struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8"`
}

func ChangePassword(svc *auth.Service, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req changePasswordReq
		if err := decodeValid(r, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if err := svc.ChangePassword(r.Context(), auth.Subject(r.Context()), req.CurrentPassword, req.NewPassword); err != nil {
			respondAuthError(w, err)
			return
		}
		respondJSON(w, map[string]any{"ok": true})
	}
}

func Me(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := st.FindUserByID(r.Context(), auth.Subject(r.Context()))
		if err != nil {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		respondJSON(w, u)
	}
}
