package main

import (
	"log"
	"os"

	"github.com/psd401/aistudio-auth/idtoken"
	"github.com/psd401/aistudio-auth/migrate"
	"github.com/psd401/aistudio-auth/permission"
	"github.com/psd401/aistudio-auth/seed"
	"github.com/psd401/aistudio-auth/server"
	"github.com/psd401/aistudio-auth/store"
)

func main() {
	logger := log.New(os.Stdout, "[aistudio-auth] ", log.LstdFlags)
	cfg := server.GetConfig()
	if cfg.Idp.HMACSecret == "" {
		// An empty signing key would verify tokens signed with the empty key.
		logger.Fatal("idp hmac secret is not configured (AISTUDIO_IDP__HMAC_SECRET)")
	}

	if err := migrate.RunFromEnv(); err != nil {
		logger.Fatalf("migrate: %v", err)
	}
	if err := seed.RunFromEnv(); err != nil {
		logger.Fatalf("seed: %v", err)
	}

	db, err := store.Open(cfg.DatabaseDSN())
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}

	var settingsCache *store.SettingsCache
	if cfg.Valkey.Addr != "" {
		settingsCache, err = store.NewSettingsCache(cfg.Valkey.Addr, cfg.Valkey.Prefix)
		if err != nil {
			logger.Fatalf("connect valkey: %v", err)
		}
		defer settingsCache.Close()
	}

	users := store.NewUserStore(db)
	roles := store.NewRoleStore(db)
	tools := store.NewToolStore(db)
	settings := store.NewSettingsStore(db, settingsCache)

	engine := permission.NewEngine(users, roles, permission.NewTTLCache(permission.DefaultCacheTTL))
	roles.SetCacheInvalidator(engine)
	tools.SetCacheInvalidator(engine)

	verifier := idtoken.NewVerifier(cfg.Idp.Issuer, cfg.Idp.Audience, []byte(cfg.Idp.HMACSecret))

	srv := server.NewServer(cfg, verifier, users, roles, tools, settings, engine)
	srv.SetLogger(logger)

	r := server.NewGinEngine(srv)
	logger.Printf("listening on %s (env %s)", cfg.ListenAddr, cfg.Env)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatalf("serve: %v", err)
	}
}
