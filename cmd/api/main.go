package main

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/joho/godotenv"

	apiconfig "property_dashboard/pkg/api/config"
	"property_dashboard/pkg/api/financials"
	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/config"
	"property_dashboard/pkg/core/logging"
	"property_dashboard/pkg/core/overrides"
	"property_dashboard/pkg/core/store"
)

func main() {
	// Load environment variables
	godotenv.Load()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/defaults.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("[FATAL] Config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Server.LogLevel, cfg.Server.LogFormat)
	defer log.Sync()

	ctx := context.Background()

	// Postgres is optional: without it the API still serves inline
	// calculations and overrides, just nothing persisted.
	var props financials.PropertySource
	var snapshots financials.SnapshotStore
	var payloads financials.PayloadStore
	var reviews financials.ReviewStore
	if cfg.DatabaseURL != "" {
		if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
			fmt.Printf("[WARNING] Database unavailable, running without persistence: %v\n", err)
		} else {
			props = store.NewPropertyRepo()
			snapshots = store.NewFinancialsRepo()
			payloads = store.NewSourcePayloadRepo(store.GetPool(), "")
			reviews = store.NewReviewRepo(store.GetPool())
			fmt.Println("[STORE] Postgres connected")
		}
	}

	// Override store: Redis when configured, in-memory otherwise.
	var ovStore overrides.Store
	if cfg.Redis.Addr != "" {
		client, err := overrides.DialRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			fmt.Printf("[WARNING] Redis unavailable, using in-memory overrides: %v\n", err)
			ovStore = overrides.NewMemoryStore()
		} else {
			ovStore = overrides.NewRedisStore(client)
			fmt.Printf("[STORE] Redis connected at %s\n", cfg.Redis.Addr)
		}
	} else {
		ovStore = overrides.NewMemoryStore()
	}

	engine := calc.NewEngine(ovStore, cfg.Assumptions.Model(), log)

	financials.InitHandler(financials.Deps{
		Engine:     engine,
		Properties: props,
		Snapshots:  snapshots,
		Payloads:   payloads,
		Reviews:    reviews,
		Overrides:  ovStore,
		Tolerances: cfg.Tolerances,
		Logger:     log,
	})

	cfgHandler := apiconfig.NewHandler(cfg.Assumptions.Model(), cfg.Tolerances)

	http.HandleFunc("/api/financials/calculate", financials.HandleCalculate)
	http.HandleFunc("/api/portfolio/metrics", financials.HandlePortfolio)
	http.HandleFunc("/api/overrides", financials.HandleOverrides)
	http.HandleFunc("/api/properties/sources", financials.HandleSourceUpload)
	http.HandleFunc("/api/reports/property", financials.HandlePropertyReport)
	http.HandleFunc("/api/reports/portfolio", financials.HandlePortfolioReport)
	http.HandleFunc("/api/reviews", financials.HandleReviews)
	http.HandleFunc("/api/reviews/resolve", financials.HandleReviewResolve)
	http.HandleFunc("/api/config", cfgHandler.HandleConfig)

	fmt.Printf("API server starting on %s...\n", cfg.Server.Addr)
	fmt.Println("  - POST /api/financials/calculate  (?shape=legacy for the old dashboard)")
	fmt.Println("  - POST /api/portfolio/metrics")
	fmt.Println("  - GET/PUT/DELETE /api/overrides")
	fmt.Println("  - POST /api/properties/sources")
	fmt.Println("  - GET  /api/reports/property?id=...  (?format=html)")
	fmt.Println("  - GET  /api/reports/portfolio")
	fmt.Println("  - GET  /api/reviews")
	fmt.Println("  - POST /api/reviews/resolve")
	fmt.Println("  - GET  /api/config")

	// Use log.Fatal-style exit so a bind failure is visible and non-zero.
	if err := http.ListenAndServe(cfg.Server.Addr, nil); err != nil {
		fmt.Printf("[FATAL] Server failed to start: %v\n", err)
		os.Exit(1)
	}
}
