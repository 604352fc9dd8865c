// Package services contains business logic layers.
// Services are called by handlers and interact with the database.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vozurbana/civic-server/internal/models"
	"go.uber.org/zap"
)

// ReportService owns the report lifecycle: filing, status transitions
// and attribute edits. Every employee edit appends an update_history
// row in the same transaction as the change itself.
type ReportService struct {
	db     *pgxpool.Pool
	points *PointsService
	logger *zap.SugaredLogger
}

// NewReportService creates a new report service
func NewReportService(db *pgxpool.Pool, points *PointsService, logger *zap.SugaredLogger) *ReportService {
	return &ReportService{db: db, points: points, logger: logger}
}

// File creates a new report in state Open and credits the author with
// the category's point value. Report insert and credit commit together.
func (s *ReportService) File(ctx context.Context, authorCPF string, categoryID uuid.UUID, title, location, description string) (*models.Report, error) {
	if strings.TrimSpace(title) == "" {
		return nil, models.E(models.KindInvalidInput, "report", "", "title must not be empty")
	}
	if strings.TrimSpace(description) == "" {
		return nil, models.E(models.KindInvalidInput, "report", "", "description must not be empty")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin file tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var pointValue int
	err = tx.QueryRow(ctx,
		`SELECT point_value FROM categories WHERE id = $1`,
		categoryID,
	).Scan(&pointValue)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "category", categoryID.String(), "category does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select category: %w", err)
	}

	report := &models.Report{
		ID:          uuid.New(),
		Title:       title,
		Location:    location,
		Description: description,
		Status:      models.StatusOpen,
		CategoryID:  categoryID,
		AuthorCPF:   authorCPF,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO reports (id, title, location, description, status, category_id, author_cpf)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING created_at`,
		report.ID, report.Title, report.Location, report.Description,
		report.Status, report.CategoryID, report.AuthorCPF,
	).Scan(&report.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert report: %w", err)
	}

	// The credit locks the citizen row; a missing author surfaces as
	// NotFound here before anything is committed.
	if _, err := s.points.CreditInTx(ctx, tx, authorCPF, pointValue, report.ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit file tx: %w", err)
	}

	s.logger.Infow("Report filed",
		"id", report.ID,
		"author", authorCPF,
		"category", categoryID,
		"credit", pointValue,
	)
	return report, nil
}

// TransitionStatus moves a report along a legal status edge and appends
// the audit row. The report row is locked so the legality check and the
// write are one atomic step.
func (s *ReportService) TransitionStatus(ctx context.Context, reportID uuid.UUID, newStatus models.ReportStatus, employeeCPF string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transition tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var current models.ReportStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM reports WHERE id = $1 FOR UPDATE`,
		reportID,
	).Scan(&current)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.E(models.KindNotFound, "report", reportID.String(), "report does not exist")
	}
	if err != nil {
		return fmt.Errorf("select report status: %w", err)
	}

	if !models.CanTransition(current, newStatus) {
		return models.E(models.KindIllegalTransition, "report", reportID.String(),
			fmt.Sprintf("cannot transition %s -> %s", current, newStatus))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE reports SET status = $1 WHERE id = $2`,
		newStatus, reportID,
	); err != nil {
		return fmt.Errorf("update report status: %w", err)
	}

	if err := appendUpdateHistory(ctx, tx, employeeCPF, reportID, "status"); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transition tx: %w", err)
	}

	s.logger.Infow("Report status changed",
		"id", reportID,
		"from", current,
		"to", newStatus,
		"employee", employeeCPF,
	)
	return nil
}

// editableColumns maps the attributes an employee may edit to their
// columns. The audit row records the attribute name, never the value.
var editableColumns = map[string]string{
	"title":       "title",
	"location":    "location",
	"description": "description",
	"category":    "category_id",
}

// EditAttribute changes one report attribute and appends the audit row.
func (s *ReportService) EditAttribute(ctx context.Context, reportID uuid.UUID, attribute, newValue, employeeCPF string) error {
	column, ok := editableColumns[attribute]
	if !ok {
		return models.E(models.KindInvalidInput, "report", reportID.String(),
			fmt.Sprintf("attribute %q is not editable", attribute))
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin edit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var value any = newValue
	if attribute == "category" {
		categoryID, err := uuid.Parse(newValue)
		if err != nil {
			return models.E(models.KindInvalidInput, "category", newValue, "invalid category id")
		}
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`,
			categoryID,
		).Scan(&exists); err != nil {
			return fmt.Errorf("check category: %w", err)
		}
		if !exists {
			return models.E(models.KindNotFound, "category", newValue, "category does not exist")
		}
		value = categoryID
	}

	tag, err := tx.Exec(ctx,
		fmt.Sprintf(`UPDATE reports SET %s = $1 WHERE id = $2`, column),
		value, reportID,
	)
	if err != nil {
		return fmt.Errorf("update report %s: %w", attribute, err)
	}
	if tag.RowsAffected() == 0 {
		return models.E(models.KindNotFound, "report", reportID.String(), "report does not exist")
	}

	if err := appendUpdateHistory(ctx, tx, employeeCPF, reportID, attribute); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit edit tx: %w", err)
	}

	s.logger.Infow("Report attribute edited",
		"id", reportID,
		"attribute", attribute,
		"employee", employeeCPF,
	)
	return nil
}

// Get returns one report by id.
func (s *ReportService) Get(ctx context.Context, reportID uuid.UUID) (*models.Report, error) {
	var r models.Report
	err := s.db.QueryRow(ctx,
		`SELECT id, title, location, description, status, category_id, author_cpf, created_at
		 FROM reports WHERE id = $1`,
		reportID,
	).Scan(&r.ID, &r.Title, &r.Location, &r.Description, &r.Status, &r.CategoryID, &r.AuthorCPF, &r.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "report", reportID.String(), "report does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select report: %w", err)
	}
	return &r, nil
}

// List returns all reports, newest first.
func (s *ReportService) List(ctx context.Context) ([]models.Report, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, title, location, description, status, category_id, author_cpf, created_at
		 FROM reports ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select reports: %w", err)
	}
	defer rows.Close()

	var reports []models.Report
	for rows.Next() {
		var r models.Report
		if err := rows.Scan(&r.ID, &r.Title, &r.Location, &r.Description,
			&r.Status, &r.CategoryID, &r.AuthorCPF, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// History returns the audit trail for a report, oldest first.
func (s *ReportService) History(ctx context.Context, reportID uuid.UUID) ([]models.UpdateHistory, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, employee_cpf, report_id, created_at, attribute_changed
		 FROM update_history WHERE report_id = $1 ORDER BY created_at ASC, id ASC`,
		reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("select update history: %w", err)
	}
	defer rows.Close()

	var history []models.UpdateHistory
	for rows.Next() {
		var h models.UpdateHistory
		if err := rows.Scan(&h.ID, &h.EmployeeCPF, &h.ReportID, &h.CreatedAt, &h.AttributeChanged); err != nil {
			return nil, fmt.Errorf("scan update history: %w", err)
		}
		history = append(history, h)
	}
	return history, rows.Err()
}

// appendUpdateHistory writes one audit row inside the caller's
// transaction. A missing employee violates the FK and fails the whole
// transaction, keeping the edit and its audit row all-or-nothing.
func appendUpdateHistory(ctx context.Context, tx pgx.Tx, employeeCPF string, reportID uuid.UUID, attribute string) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO update_history (employee_cpf, report_id, attribute_changed)
		 VALUES ($1, $2, $3)`,
		employeeCPF, reportID, attribute,
	)
	if err != nil {
		return fmt.Errorf("insert update history: %w", err)
	}
	return nil
}
