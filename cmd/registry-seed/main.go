package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/db"
	"github.com/EmpoweredVote/LSG-Trends/internal/registry"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

// CLI flags
var (
	csvDir      = flag.String("dir", "public/data/csv", "Directory holding local_bodies.csv, wards.csv and polling_stations.csv")
	dsn         = flag.String("dsn", "", "Postgres DSN (default: env DATABASE_URL)")
	dryRun      = flag.Bool("dry-run", false, "Parse + validate only; no DB writes")
	confirm     = flag.Bool("confirm", false, "Required to perform destructive replace")
	migrate     = flag.Bool("migrate", true, "Create the registry schema and tables first")
	advisoryKey = flag.Int64("advisory-lock", 0, "Optional Postgres advisory lock key (e.g., 424242). 0 = disabled")
)

func main() {
	_ = godotenv.Load(".env.local")
	flag.Parse()
	if *dsn == "" {
		*dsn = os.Getenv("DATABASE_URL")
	}

	reg, err := registry.LoadDir(*csvDir)
	if err != nil {
		fatalf("CSV error: %v", err)
	}
	kpis := reg.KPIs()
	fmt.Printf("Loaded %d local bodies, %d wards, %d polling stations from %s\n",
		len(reg.Units()), len(reg.Wards()), len(reg.PollingStations()), *csvDir)
	fmt.Printf("  corporations=%d municipalities=%d grama=%d block=%d district=%d voters=%d\n",
		kpis.Corporations, kpis.Municipalities, kpis.GramaPanchayats,
		kpis.BlockPanchayats, kpis.DistrictPanchayats, kpis.Voters)

	for _, m := range reg.ValidateWardCounts() {
		fmt.Printf("  warning: %s ward_count=%d ward_rows=%d\n", m.LBCode, m.WardCount, m.WardRows)
	}

	if *dryRun {
		fmt.Println("Dry run complete. No changes made.")
		return
	}
	if *dsn == "" {
		fatalf("--dsn not provided and DATABASE_URL not set")
	}
	if !*confirm {
		fatalf("Refusing to run without --confirm. Add --dry-run to preview.")
	}

	if *migrate {
		if err := db.Connect(*dsn); err != nil {
			fatalf("connect: %v", err)
		}
		if err := registry.NewStore(db.DB).Migrate(); err != nil {
			fatalf("migrate: %v", err)
		}
		if sqlDB, err := db.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	conn, err := sqlx.ConnectContext(ctx, "pgx", *dsn)
	if err != nil {
		fatalf("connect: %v", err)
	}
	defer conn.Close()

	start := time.Now()
	counts, err := registry.NewSeeder(conn, *advisoryKey).Replace(ctx, reg)
	if err != nil {
		fatalf("seed: %v", err)
	}
	fmt.Printf("Seeded local_bodies=%d wards=%d polling_stations=%d in %s\n",
		counts.Units, counts.Wards, counts.Stations, time.Since(start).Round(time.Millisecond))
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
