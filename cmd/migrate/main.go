// Package main applies the database schema and seeds the reference
// data (categories and benefits) the core expects before first use.
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vozurbana/civic-server/internal/config"
	"github.com/vozurbana/civic-server/internal/database"
	"go.uber.org/zap"
)

type categorySeed struct {
	name   string
	points int
}

type benefitSeed struct {
	name        string
	cost        int
	description string
}

var categorySeeds = []categorySeed{
	{"Buraco na via", 10},
	{"Iluminação pública", 8},
	{"Descarte irregular de lixo", 12},
	{"Vazamento de água", 15},
	{"Sinalização danificada", 6},
}

var benefitSeeds = []benefitSeed{
	{"Desconto IPTU 5%", 100, "5% de desconto no IPTU do próximo exercício"},
	{"Passe de ônibus", 15, "Um passe de transporte público"},
	{"Entrada de cinema", 40, "Uma entrada no cinema municipal"},
}

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("Failed to load config: %v", err)
	}

	pool, err := database.NewPool(cfg.DatabaseURL)
	if err != nil {
		sugar.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	if err := database.Migrate(ctx, pool); err != nil {
		sugar.Fatalf("Migration failed: %v", err)
	}
	sugar.Info("Schema applied")

	if err := seed(ctx, pool); err != nil {
		sugar.Fatalf("Seed failed: %v", err)
	}
	sugar.Infow("Reference data seeded",
		"categories", len(categorySeeds),
		"benefits", len(benefitSeeds),
	)
}

// seed inserts the reference rows, skipping any that already exist so
// the migration stays re-runnable.
func seed(ctx context.Context, pool *pgxpool.Pool) error {
	for _, c := range categorySeeds {
		if _, err := pool.Exec(ctx,
			`INSERT INTO categories (id, name, point_value) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO NOTHING`,
			uuid.New(), c.name, c.points,
		); err != nil {
			return err
		}
	}
	for _, b := range benefitSeeds {
		if _, err := pool.Exec(ctx,
			`INSERT INTO benefits (name, point_cost, description) VALUES ($1, $2, $3)
			 ON CONFLICT (name) DO NOTHING`,
			b.name, b.cost, b.description,
		); err != nil {
			return err
		}
	}
	return nil
}
