// Batch drift audit: recompute every property in the database and compare
// the fresh financials against the metric rows the legacy dashboard still
// maintains. Intended for cron; exits non-zero when any property drifts
// beyond tolerance.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"property_dashboard/pkg/core/calc"
	"property_dashboard/pkg/core/config"
	"property_dashboard/pkg/core/overrides"
	"property_dashboard/pkg/core/report"
	"property_dashboard/pkg/core/source"
	"property_dashboard/pkg/core/store"
	"property_dashboard/pkg/core/validate"
	"property_dashboard/pkg/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, assuming environment variables are set.")
	}

	cfgPath := flag.String("config", "config/defaults.yaml", "Config file path")
	save := flag.Bool("save", false, "Persist exceeded drift reports to the review queue")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("Error: config load failed: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("Error: DATABASE_URL is not set; the audit reads the property database.")
	}

	ctx := context.Background()
	if err := store.InitDB(ctx, cfg.DatabaseURL); err != nil {
		log.Fatalf("Error: database connection failed: %v", err)
	}

	props := store.NewPropertyRepo()
	snapshots := store.NewFinancialsRepo()
	reviews := store.NewReviewRepo(store.GetPool())

	// Audit what users actually see: overrides included when Redis is up.
	var ovStore overrides.Store = overrides.NewMemoryStore()
	if cfg.Redis.Addr != "" {
		client, err := overrides.DialRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			log.Printf("Warning: Redis unavailable, auditing without user overrides: %v", err)
		} else {
			ovStore = overrides.NewRedisStore(client)
		}
	}

	engine := calc.NewEngine(ovStore, cfg.Assumptions.Model(), nil)

	list, err := props.ListProperties(ctx)
	if err != nil {
		log.Fatalf("Error: listing properties: %v", err)
	}

	fmt.Println("🔍 Drift Audit: recomputing portfolio against legacy metrics...")
	fmt.Printf("📂 %d properties | tolerances: cash flow %.1f%%, NOI %.1f%%, CoC %.2fpt, cap rate %.2fpt\n",
		len(list), cfg.Tolerances.CashFlowPct, cfg.Tolerances.NOIPct,
		cfg.Tolerances.CashOnCashPoints, cfg.Tolerances.CapRatePoints)

	fmt.Println("\n################################################################################")
	fmt.Println("                     DRIFT AUDIT - PER PROPERTY")
	fmt.Println("################################################################################")
	fmt.Printf("%-24s | %-14s | %12s | %8s | %s\n", "Property", "Status", "NOI", "Cap Rate", "Result")
	fmt.Println(strings.Repeat("-", 80))

	var clean, drifted, missing, degraded int
	for _, p := range list {
		name := p.Name
		if name == "" {
			name = p.ID
		}

		bundles, _, err := props.LoadBundles(ctx, p.ID)
		if err != nil {
			log.Printf("Warning: loading bundles for %s: %v", p.ID, err)
			continue
		}

		fin := auditCalculate(ctx, engine, p, bundles)
		if fin.Degraded {
			degraded++
			fmt.Printf("%-24s | %-14s | %12s | %8s | DEGRADED\n",
				truncate(name, 24), p.Status, "-", "-")
			continue
		}

		legacy, err := snapshots.LegacyMetrics(ctx, p.ID)
		if err != nil {
			log.Printf("Warning: legacy metrics for %s: %v", p.ID, err)
			continue
		}
		if legacy == nil {
			missing++
			fmt.Printf("%-24s | %-14s | %12s | %8s | no legacy row\n",
				truncate(name, 24), p.Status, report.FormatCurrency(fin.NOI), report.FormatPercent(fin.CapRate))
			continue
		}

		dr := validate.CheckAgainstLegacy(p.ID, fin, *legacy, cfg.Tolerances)
		if dr.AllWithin {
			clean++
			fmt.Printf("%-24s | %-14s | %12s | %8s | ok\n",
				truncate(name, 24), p.Status, report.FormatCurrency(fin.NOI), report.FormatPercent(fin.CapRate))
			continue
		}

		drifted++
		fmt.Printf("%-24s | %-14s | %12s | %8s | DRIFT: %s\n",
			truncate(name, 24), p.Status, report.FormatCurrency(fin.NOI), report.FormatPercent(fin.CapRate),
			strings.Join(dr.FailedChecks, ", "))
		for _, c := range dr.Checks {
			if c.Exceeded {
				fmt.Printf("    %-22s fresh %.2f vs legacy %.2f (%s)\n", c.Metric, c.Fresh, c.Legacy, c.Reason)
			}
		}

		if *save {
			if _, err := reviews.SaveReport(ctx, dr); err != nil {
				log.Printf("Warning: saving review for %s: %v", p.ID, err)
			}
		}
	}

	fmt.Println(strings.Repeat("-", 80))
	fmt.Println("\n[SUMMARY]")
	fmt.Printf("Within tolerance:  %d\n", clean)
	fmt.Printf("Drifted:           %d\n", drifted)
	fmt.Printf("No legacy row:     %d\n", missing)
	fmt.Printf("Degraded:          %d\n", degraded)

	if drifted > 0 {
		fmt.Println("\n[Done] Drift found; exiting non-zero for the cron monitor.")
		os.Exit(1)
	}
	fmt.Println("\n[Done] Portfolio matches legacy metrics.")
}

// auditCalculate keeps one property's panic from aborting the whole audit.
func auditCalculate(ctx context.Context, engine *calc.Engine, p models.Property, bs source.BundleSet) (fin calc.Financials) {
	defer func() {
		if r := recover(); r != nil {
			fin = calc.DegradedFinancials(p, fmt.Sprint(r))
		}
	}()
	return engine.Calculate(ctx, p, bs)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
