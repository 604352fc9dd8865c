package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Schema is the full DDL for the civic reporting tables. Statements are
// idempotent so the migration can be re-run safely.
const Schema = `
CREATE TABLE IF NOT EXISTS persons (
	cpf        TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	email      TEXT NOT NULL,
	birth_date DATE NOT NULL,
	role       TEXT NOT NULL CHECK (role IN ('citizen', 'employee'))
);

CREATE TABLE IF NOT EXISTS citizens (
	cpf            TEXT PRIMARY KEY REFERENCES persons(cpf),
	points_balance INTEGER NOT NULL DEFAULT 0 CHECK (points_balance >= 0)
);

CREATE TABLE IF NOT EXISTS employees (
	cpf        TEXT PRIMARY KEY REFERENCES persons(cpf),
	department TEXT NOT NULL,
	city       TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS categories (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL UNIQUE,
	point_value INTEGER NOT NULL CHECK (point_value >= 0)
);

CREATE TABLE IF NOT EXISTS reports (
	id          UUID PRIMARY KEY,
	title       TEXT NOT NULL,
	location    TEXT NOT NULL,
	description TEXT NOT NULL,
	status      TEXT NOT NULL CHECK (status IN ('open', 'in_review', 'resolved', 'closed')),
	category_id UUID NOT NULL REFERENCES categories(id),
	author_cpf  TEXT NOT NULL REFERENCES citizens(cpf),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_reports_location ON reports(location);
CREATE INDEX IF NOT EXISTS idx_reports_status ON reports(status);

CREATE TABLE IF NOT EXISTS interactions (
	id          UUID PRIMARY KEY,
	report_id   UUID NOT NULL REFERENCES reports(id),
	citizen_cpf TEXT NOT NULL REFERENCES citizens(cpf),
	kind        TEXT NOT NULL CHECK (kind IN ('comment', 'upvote', 'rating')),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_interactions_report ON interactions(report_id);

CREATE TABLE IF NOT EXISTS comments (
	interaction_id UUID PRIMARY KEY REFERENCES interactions(id),
	text           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS ratings (
	interaction_id UUID PRIMARY KEY REFERENCES interactions(id),
	score          INTEGER NOT NULL CHECK (score BETWEEN 1 AND 5),
	note           TEXT
);

CREATE TABLE IF NOT EXISTS media (
	id          UUID PRIMARY KEY,
	report_id   UUID NOT NULL REFERENCES reports(id),
	link        TEXT NOT NULL,
	uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS benefits (
	name        TEXT PRIMARY KEY,
	point_cost  INTEGER NOT NULL CHECK (point_cost > 0),
	description TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS redemptions (
	id           BIGSERIAL PRIMARY KEY,
	citizen_cpf  TEXT NOT NULL REFERENCES citizens(cpf),
	benefit_name TEXT NOT NULL REFERENCES benefits(name),
	points_spent INTEGER NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS point_credits (
	report_id   UUID PRIMARY KEY,
	citizen_cpf TEXT NOT NULL REFERENCES citizens(cpf),
	amount      INTEGER NOT NULL CHECK (amount >= 0),
	created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS update_history (
	id                BIGSERIAL PRIMARY KEY,
	employee_cpf      TEXT NOT NULL REFERENCES employees(cpf),
	report_id         UUID NOT NULL REFERENCES reports(id),
	created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	attribute_changed TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_update_history_report ON update_history(report_id);
CREATE INDEX IF NOT EXISTS idx_update_history_employee ON update_history(employee_cpf);
`

// Migrate applies the schema.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
