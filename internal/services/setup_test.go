package services

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
	"github.com/vozurbana/civic-server/internal/database"
	"go.uber.org/zap"
)

// testPool connects to the database named by TEST_DATABASE_URL, applies
// the schema and truncates all tables. Tests that need a database are
// skipped when the variable is unset.
func testPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping database integration test")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err, "connect to test database")
	t.Cleanup(pool.Close)

	require.NoError(t, database.Migrate(ctx, pool), "apply schema")

	_, err = pool.Exec(ctx, `
		TRUNCATE update_history, point_credits, redemptions, media, ratings,
		         comments, interactions, reports, benefits, categories,
		         employees, citizens, persons CASCADE
	`)
	require.NoError(t, err, "truncate tables")

	return pool
}

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

func seedCitizen(t *testing.T, pool *pgxpool.Pool, cpf, name string) {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx,
		`INSERT INTO persons (cpf, name, email, birth_date, role)
		 VALUES ($1, $2, $3, $4, 'citizen')`,
		cpf, name, name+"@example.com", time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `INSERT INTO citizens (cpf, points_balance) VALUES ($1, 0)`, cpf)
	require.NoError(t, err)
}

func seedEmployee(t *testing.T, pool *pgxpool.Pool, cpf, name, department string) {
	t.Helper()
	ctx := context.Background()
	_, err := pool.Exec(ctx,
		`INSERT INTO persons (cpf, name, email, birth_date, role)
		 VALUES ($1, $2, $3, $4, 'employee')`,
		cpf, name, name+"@prefeitura.example.com", time.Date(1985, 6, 15, 0, 0, 0, 0, time.UTC),
	)
	require.NoError(t, err)
	_, err = pool.Exec(ctx,
		`INSERT INTO employees (cpf, department, city) VALUES ($1, $2, 'Campinas')`,
		cpf, department,
	)
	require.NoError(t, err)
}

func seedCategory(t *testing.T, pool *pgxpool.Pool, name string, points int) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO categories (id, name, point_value) VALUES ($1, $2, $3)`,
		id, name, points,
	)
	require.NoError(t, err)
	return id
}

func seedBenefit(t *testing.T, pool *pgxpool.Pool, name string, cost int) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO benefits (name, point_cost, description) VALUES ($1, $2, $3)`,
		name, cost, "test benefit",
	)
	require.NoError(t, err)
}
