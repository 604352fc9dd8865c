package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vozurbana/civic-server/internal/models"
	"go.uber.org/zap"
)

// CatalogService manages the reference data: report categories and
// redeemable benefits. Rows are created once and read often.
type CatalogService struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewCatalogService creates a new catalog service
func NewCatalogService(db *pgxpool.Pool, logger *zap.SugaredLogger) *CatalogService {
	return &CatalogService{db: db, logger: logger}
}

// CreateCategory adds a report category with its point value.
func (s *CatalogService) CreateCategory(ctx context.Context, name string, pointValue int) (*models.Category, error) {
	if name == "" {
		return nil, models.E(models.KindInvalidInput, "category", "", "name must not be empty")
	}
	if pointValue < 0 {
		return nil, models.E(models.KindInvalidInput, "category", name, "point value must be non-negative")
	}

	category := &models.Category{ID: uuid.New(), Name: name, PointValue: pointValue}
	if _, err := s.db.Exec(ctx,
		`INSERT INTO categories (id, name, point_value) VALUES ($1, $2, $3)`,
		category.ID, category.Name, category.PointValue,
	); err != nil {
		return nil, fmt.Errorf("insert category: %w", err)
	}

	s.logger.Infow("Category created", "id", category.ID, "name", name, "points", pointValue)
	return category, nil
}

// GetCategory returns one category by id.
func (s *CatalogService) GetCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRow(ctx,
		`SELECT id, name, point_value FROM categories WHERE id = $1`,
		id,
	).Scan(&c.ID, &c.Name, &c.PointValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "category", id.String(), "category does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select category: %w", err)
	}
	return &c, nil
}

// ListCategories returns all categories ordered by name.
func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name, point_value FROM categories ORDER BY name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.PointValue); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// CreateBenefit adds a redeemable benefit.
func (s *CatalogService) CreateBenefit(ctx context.Context, name string, pointCost int, description string) (*models.Benefit, error) {
	if name == "" {
		return nil, models.E(models.KindInvalidInput, "benefit", "", "name must not be empty")
	}
	if pointCost <= 0 {
		return nil, models.E(models.KindInvalidInput, "benefit", name, "point cost must be positive")
	}

	benefit := &models.Benefit{Name: name, PointCost: pointCost, Description: description}
	if _, err := s.db.Exec(ctx,
		`INSERT INTO benefits (name, point_cost, description) VALUES ($1, $2, $3)`,
		benefit.Name, benefit.PointCost, benefit.Description,
	); err != nil {
		return nil, fmt.Errorf("insert benefit: %w", err)
	}

	s.logger.Infow("Benefit created", "name", name, "cost", pointCost)
	return benefit, nil
}

// ListBenefits returns all benefits ordered by cost, cheapest first.
func (s *CatalogService) ListBenefits(ctx context.Context) ([]models.Benefit, error) {
	rows, err := s.db.Query(ctx,
		`SELECT name, point_cost, description FROM benefits ORDER BY point_cost ASC, name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select benefits: %w", err)
	}
	defer rows.Close()

	var benefits []models.Benefit
	for rows.Next() {
		var b models.Benefit
		if err := rows.Scan(&b.Name, &b.PointCost, &b.Description); err != nil {
			return nil, fmt.Errorf("scan benefit: %w", err)
		}
		benefits = append(benefits, b)
	}
	return benefits, rows.Err()
}
