package main

import (
	"context"
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"tripcore/internal/auth"
	"tripcore/internal/config"
	"tripcore/internal/httpserver"
	"tripcore/internal/logger"
	"tripcore/internal/models"
	"tripcore/internal/store"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	lg := logger.New(cfg.LogLevel)
	defer lg.Sync()

	db, err := gorm.Open(postgres.Open(cfg.DatabaseURL), &gorm.Config{})
	if err != nil {
		lg.Fatalw("db connect failed", "error", err)
	}
	credStore := store.NewGormStore(db)
	if err := credStore.Migrate(); err != nil {
		lg.Fatalw("migrate failed", "error", err)
	}

	hasher := auth.BcryptHasher{}
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTokenTTL)

	var refresh auth.RefreshTokenStore
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			lg.Fatalw("redis connect failed", "addr", cfg.RedisAddr, "error", err)
		}
		refresh = auth.NewRedisRefreshStore(client, cfg.RefreshTTL)
		lg.Infow("refresh tokens in redis", "addr", cfg.RedisAddr)
	} else {
		refresh = auth.NewMemoryRefreshStore(cfg.RefreshTTL)
		lg.Infow("refresh tokens in memory")
	}

	svc := auth.NewService(credStore, hasher, issuer, refresh, lg)
	checker := auth.NewChecker(credStore)

	seed(credStore, hasher, lg)

	router := httpserver.NewRouter(httpserver.Deps{
		Store:   credStore,
		Service: svc,
		Issuer:  issuer,
		Checker: checker,
		Hasher:  hasher,
		Logger:  lg,
	})
	lg.Infow("listening", "port", cfg.HTTPPort)
	if err := http.ListenAndServe(":"+cfg.HTTPPort, router); err != nil {
		lg.Fatalw("server stopped", "error", err)
	}
}

// seed creates the baseline roles, a starter permission set and the default
// admin account on first boot. Every write is idempotent.
func seed(st *store.GormStore, hasher auth.PasswordHasher, lg *zap.SugaredLogger) {
	ctx := context.Background()

	roles := map[string]string{
		"Administrator": "Full access to administrative operations",
		"User":          "Default role for self-registered accounts",
	}
	for name, desc := range roles {
		if _, err := st.FindRoleByName(ctx, name); err == nil {
			continue
		}
		if err := st.CreateRole(ctx, &models.Role{Name: name, Description: desc, IsActive: true}); err != nil {
			lg.Warnw("seed role", "role", name, "error", err)
		}
	}

	perms := []models.Permission{
		{Name: "users.read", Resource: "users", Action: "read"},
		{Name: "users.write", Resource: "users", Action: "write"},
		{Name: "roles.read", Resource: "roles", Action: "read"},
		{Name: "roles.write", Resource: "roles", Action: "write"},
	}
	for i := range perms {
		if _, err := st.FindPermissionByName(ctx, perms[i].Name); err == nil {
			continue
		}
		if err := st.CreatePermission(ctx, &perms[i]); err != nil {
			lg.Warnw("seed permission", "permission", perms[i].Name, "error", err)
		}
	}

	if admin, err := st.FindRoleByName(ctx, "Administrator"); err == nil {
		for i := range perms {
			if p, err := st.FindPermissionByName(ctx, perms[i].Name); err == nil {
				_ = st.AddRolePermission(ctx, admin.ID, p.ID)
			}
		}
	}

	if _, err := st.FindUserByUsername(ctx, "admin"); err == nil {
		return
	}
	hash, err := hasher.Hash("changeme-on-first-login")
	if err != nil {
		lg.Warnw("seed admin hash", "error", err)
		return
	}
	u := models.User{
		Username:     "admin",
		Email:        "admin@tripcore.local",
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := st.CreateUser(ctx, &u); err != nil {
		lg.Warnw("seed admin", "error", err)
		return
	}
	if admin, err := st.FindRoleByName(ctx, "Administrator"); err == nil {
		_ = st.AddUserRole(ctx, u.ID, admin.ID)
	}
	lg.Infow("seeded default admin", "email", u.Email)
}
