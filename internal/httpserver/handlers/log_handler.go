package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"tripcore/internal/auth"
	"tripcore/internal/models"
	"tripcore/internal/store"
)

// MyLogs returns recent audit entries. Regular users see their own;
// Administrators can pass ?all=1 for everyone's recent activity.
func MyLogs(st store.CredentialStore, lg *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		all := r.URL.Query().Get("all") == "1"
		uid := auth.Subject(r.Context())
		var (
			logs []models.AuditLog
			err  error
		)
		if all && hasRole(r, st, "Administrator") {
			logs, err = st.RecentAudit(r.Context(), "", 200)
		} else {
			logs, err = st.RecentAudit(r.Context(), uid, 200)
		}
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		respondJSON(w, logs)
	}
}

func hasRole(r *http.Request, st store.CredentialStore, role string) bool {
	names, err := st.RoleNamesForUser(r.Context(), auth.Subject(r.Context()))
	if err != nil {
		return false
	}
	for _, n := range names {
		if n == role {
			return true
		}
	}
	return false
}
