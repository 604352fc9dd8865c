package services

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vozurbana/civic-server/internal/models"
	"go.uber.org/zap"
)

// AnalyticsService runs the read-only aggregate queries. It never
// mutates state, and every query returns an empty slice for zero rows.
type AnalyticsService struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(db *pgxpool.Pool, logger *zap.SugaredLogger) *AnalyticsService {
	return &AnalyticsService{db: db, logger: logger}
}

// InteractionCountsByReport ranks every report by engagement. Reports
// with zero interactions are included (outer join), ties break on
// ascending report id.
func (s *AnalyticsService) InteractionCountsByReport(ctx context.Context) ([]models.ReportInteractionCount, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.title, c.name, r.status, COUNT(i.id) AS total
		FROM reports r
		JOIN categories c ON c.id = r.category_id
		LEFT JOIN interactions i ON i.report_id = r.id
		GROUP BY r.id, r.title, c.name, r.status
		ORDER BY total DESC, r.id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("interaction counts: %w", err)
	}
	defer rows.Close()

	results := []models.ReportInteractionCount{}
	for rows.Next() {
		var row models.ReportInteractionCount
		if err := rows.Scan(&row.ReportID, &row.Title, &row.Category, &row.Status, &row.TotalInteractions); err != nil {
			return nil, fmt.Errorf("scan interaction count: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// EmployeeProductivity ranks employees by how many distinct reports
// they have touched, including employees with zero updates.
func (s *AnalyticsService) EmployeeProductivity(ctx context.Context) ([]models.EmployeeProductivity, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.cpf, p.name, e.department, COUNT(DISTINCT uh.report_id) AS updated
		FROM employees e
		JOIN persons p ON p.cpf = e.cpf
		LEFT JOIN update_history uh ON uh.employee_cpf = e.cpf
		GROUP BY e.cpf, p.name, e.department
		ORDER BY updated DESC, p.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("employee productivity: %w", err)
	}
	defer rows.Close()

	results := []models.EmployeeProductivity{}
	for rows.Next() {
		var row models.EmployeeProductivity
		if err := rows.Scan(&row.CPF, &row.Name, &row.Department, &row.DistinctReportsUpdated); err != nil {
			return nil, fmt.Errorf("scan productivity: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// HighQualityCategories returns categories whose average rating, over
// reports in the given statuses, is strictly above minAverage.
func (s *AnalyticsService) HighQualityCategories(ctx context.Context, statuses []models.ReportStatus, minAverage float64) ([]models.CategoryQuality, error) {
	filter := make([]string, len(statuses))
	for i, st := range statuses {
		filter[i] = string(st)
	}

	rows, err := s.db.Query(ctx, `
		SELECT c.id, c.name, AVG(rt.score)::float8 AS avg_score
		FROM categories c
		JOIN reports r ON r.category_id = c.id
		JOIN interactions i ON i.report_id = r.id AND i.kind = 'rating'
		JOIN ratings rt ON rt.interaction_id = i.id
		WHERE r.status = ANY($1)
		GROUP BY c.id, c.name
		HAVING AVG(rt.score) > $2
		ORDER BY avg_score DESC
	`, filter, minAverage)
	if err != nil {
		return nil, fmt.Errorf("high quality categories: %w", err)
	}
	defer rows.Close()

	results := []models.CategoryQuality{}
	for rows.Next() {
		var row models.CategoryQuality
		if err := rows.Scan(&row.CategoryID, &row.Category, &row.AverageRating); err != nil {
			return nil, fmt.Errorf("scan category quality: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// ExpertEmployees returns the employees whose updates span the entire
// category catalog: relational division via double NOT EXISTS. The
// EXISTS guard makes an empty catalog exclude everyone instead of
// vacuously including everyone.
func (s *AnalyticsService) ExpertEmployees(ctx context.Context) ([]models.ExpertEmployee, error) {
	rows, err := s.db.Query(ctx, `
		SELECT e.cpf, p.name, e.department
		FROM employees e
		JOIN persons p ON p.cpf = e.cpf
		WHERE EXISTS (SELECT 1 FROM categories)
		AND NOT EXISTS (
			SELECT 1 FROM categories c
			WHERE NOT EXISTS (
				SELECT 1
				FROM update_history uh
				JOIN reports r ON r.id = uh.report_id
				WHERE uh.employee_cpf = e.cpf AND r.category_id = c.id
			)
		)
		ORDER BY p.name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("expert employees: %w", err)
	}
	defer rows.Close()

	results := []models.ExpertEmployee{}
	for rows.Next() {
		var row models.ExpertEmployee
		if err := rows.Scan(&row.CPF, &row.Name, &row.Department); err != nil {
			return nil, fmt.Errorf("scan expert employee: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// CriticalReports returns still-active reports with at least
// minInteractions interactions whose last employee touch (or creation,
// if never touched) is older than the caller-supplied staleness.
func (s *AnalyticsService) CriticalReports(ctx context.Context, minInteractions int, staleness time.Duration) ([]models.CriticalReport, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.id, r.title, r.location, r.status, COUNT(i.id) AS total
		FROM reports r
		LEFT JOIN interactions i ON i.report_id = r.id
		WHERE r.status IN ('open', 'in_review')
		AND COALESCE(
			(SELECT MAX(uh.created_at) FROM update_history uh WHERE uh.report_id = r.id),
			r.created_at
		) < NOW() - make_interval(secs => $2)
		GROUP BY r.id, r.title, r.location, r.status
		HAVING COUNT(i.id) >= $1
		ORDER BY total DESC, r.id ASC
	`, minInteractions, staleness.Seconds())
	if err != nil {
		return nil, fmt.Errorf("critical reports: %w", err)
	}
	defer rows.Close()

	results := []models.CriticalReport{}
	for rows.Next() {
		var row models.CriticalReport
		if err := rows.Scan(&row.ReportID, &row.Title, &row.Location, &row.Status, &row.TotalInteractions); err != nil {
			return nil, fmt.Errorf("scan critical report: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}

// HotspotLocations ranks locations by their concentration of active
// reports, with average report age in hours. Truncated to limit.
func (s *AnalyticsService) HotspotLocations(ctx context.Context, minReports, limit int) ([]models.HotspotLocation, error) {
	rows, err := s.db.Query(ctx, `
		SELECT r.location,
		       COUNT(*) AS active,
		       AVG(EXTRACT(EPOCH FROM (NOW() - r.created_at)) / 3600.0)::float8 AS avg_hours
		FROM reports r
		WHERE r.status IN ('open', 'in_review')
		GROUP BY r.location
		HAVING COUNT(*) >= $1
		ORDER BY active DESC, avg_hours DESC
		LIMIT $2
	`, minReports, limit)
	if err != nil {
		return nil, fmt.Errorf("hotspot locations: %w", err)
	}
	defer rows.Close()

	results := []models.HotspotLocation{}
	for rows.Next() {
		var row models.HotspotLocation
		if err := rows.Scan(&row.Location, &row.ActiveReportCount, &row.AverageHoursOpen); err != nil {
			return nil, fmt.Errorf("scan hotspot: %w", err)
		}
		results = append(results, row)
	}
	return results, rows.Err()
}
