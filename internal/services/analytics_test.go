package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vozurbana/civic-server/internal/models"
)

func insertReport(t *testing.T, pool *pgxpool.Pool, categoryID uuid.UUID, authorCPF, location string, status models.ReportStatus, createdAt time.Time) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO reports (id, title, location, description, status, category_id, author_cpf, created_at)
		 VALUES ($1, 'relato', $2, 'descrição', $3, $4, $5, $6)`,
		id, location, status, categoryID, authorCPF, createdAt,
	)
	require.NoError(t, err)
	return id
}

func insertInteraction(t *testing.T, pool *pgxpool.Pool, reportID uuid.UUID, citizenCPF string, kind models.InteractionKind) uuid.UUID {
	t.Helper()
	id := uuid.New()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO interactions (id, report_id, citizen_cpf, kind) VALUES ($1, $2, $3, $4)`,
		id, reportID, citizenCPF, kind,
	)
	require.NoError(t, err)
	return id
}

func insertRating(t *testing.T, pool *pgxpool.Pool, reportID uuid.UUID, citizenCPF string, score int) {
	t.Helper()
	interactionID := insertInteraction(t, pool, reportID, citizenCPF, models.KindRating)
	_, err := pool.Exec(context.Background(),
		`INSERT INTO ratings (interaction_id, score) VALUES ($1, $2)`,
		interactionID, score,
	)
	require.NoError(t, err)
}

func insertUpdate(t *testing.T, pool *pgxpool.Pool, employeeCPF string, reportID uuid.UUID, at time.Time) {
	t.Helper()
	_, err := pool.Exec(context.Background(),
		`INSERT INTO update_history (employee_cpf, report_id, created_at, attribute_changed)
		 VALUES ($1, $2, $3, 'status')`,
		employeeCPF, reportID, at,
	)
	require.NoError(t, err)
}

// TestHotspotLocations: three open reports in Centro form one hotspot
// row; a lone report elsewhere stays below the threshold.
func TestHotspotLocations(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())

	category := seedCategory(t, pool, "Buraco na via", 10)
	seedCitizen(t, pool, "10000000003", "Caio")

	now := time.Now()
	insertReport(t, pool, category, "10000000003", "Centro", models.StatusOpen, now.Add(-2*time.Hour))
	insertReport(t, pool, category, "10000000003", "Centro", models.StatusOpen, now.Add(-4*time.Hour))
	insertReport(t, pool, category, "10000000003", "Centro", models.StatusOpen, now.Add(-6*time.Hour))
	insertReport(t, pool, category, "10000000003", "Barão Geraldo", models.StatusOpen, now.Add(-1*time.Hour))
	// Closed reports are not active and never count.
	insertReport(t, pool, category, "10000000003", "Centro", models.StatusClosed, now.Add(-50*time.Hour))

	hotspots, err := analytics.HotspotLocations(context.Background(), 2, 5)
	require.NoError(t, err)
	require.Len(t, hotspots, 1)
	assert.Equal(t, "Centro", hotspots[0].Location)
	assert.Equal(t, 3, hotspots[0].ActiveReportCount)
	assert.InDelta(t, 4.0, hotspots[0].AverageHoursOpen, 0.1)
}

func TestInteractionCountsIncludesZero(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())

	category := seedCategory(t, pool, "Sinalização danificada", 6)
	seedCitizen(t, pool, "10000000004", "Dora")

	busy := insertReport(t, pool, category, "10000000004", "Centro", models.StatusOpen, time.Now())
	quiet := insertReport(t, pool, category, "10000000004", "Taquaral", models.StatusOpen, time.Now())
	insertInteraction(t, pool, busy, "10000000004", models.KindUpvote)
	insertInteraction(t, pool, busy, "10000000004", models.KindUpvote)

	counts, err := analytics.InteractionCountsByReport(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2, "zero-interaction reports must be included")
	assert.Equal(t, busy, counts[0].ReportID)
	assert.Equal(t, 2, counts[0].TotalInteractions)
	assert.Equal(t, quiet, counts[1].ReportID)
	assert.Equal(t, 0, counts[1].TotalInteractions)
	assert.Equal(t, "Sinalização danificada", counts[0].Category)
}

func TestEmployeeProductivity(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())

	category := seedCategory(t, pool, "Buraco na via", 10)
	seedCitizen(t, pool, "10000000005", "Eva")
	seedEmployee(t, pool, "90000000005", "Tiago", "Obras")
	seedEmployee(t, pool, "90000000006", "Vera", "Obras")

	r1 := insertReport(t, pool, category, "10000000005", "Centro", models.StatusOpen, time.Now())
	r2 := insertReport(t, pool, category, "10000000005", "Centro", models.StatusOpen, time.Now())
	now := time.Now()
	insertUpdate(t, pool, "90000000005", r1, now)
	insertUpdate(t, pool, "90000000005", r1, now) // same report twice: distinct count stays 1
	insertUpdate(t, pool, "90000000005", r2, now)

	ranking, err := analytics.EmployeeProductivity(context.Background())
	require.NoError(t, err)
	require.Len(t, ranking, 2, "zero-update employees must be included")
	assert.Equal(t, "90000000005", ranking[0].CPF)
	assert.Equal(t, 2, ranking[0].DistinctReportsUpdated)
	assert.Equal(t, "90000000006", ranking[1].CPF)
	assert.Equal(t, 0, ranking[1].DistinctReportsUpdated)
}

// TestExpertEmployees exercises the relational division: only the
// employee whose updates span every category qualifies.
func TestExpertEmployees(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())

	catA := seedCategory(t, pool, "Buraco na via", 10)
	catB := seedCategory(t, pool, "Iluminação pública", 8)
	seedCitizen(t, pool, "10000000006", "Gil")
	seedEmployee(t, pool, "90000000007", "Alice", "Obras")
	seedEmployee(t, pool, "90000000008", "Bento", "Obras")
	seedEmployee(t, pool, "90000000009", "Caro", "Obras")

	ra := insertReport(t, pool, catA, "10000000006", "Centro", models.StatusOpen, time.Now())
	rb := insertReport(t, pool, catB, "10000000006", "Centro", models.StatusOpen, time.Now())

	now := time.Now()
	// Alice touches both categories, Bento only one, Caro none.
	insertUpdate(t, pool, "90000000007", ra, now)
	insertUpdate(t, pool, "90000000007", rb, now)
	insertUpdate(t, pool, "90000000008", ra, now)

	experts, err := analytics.ExpertEmployees(context.Background())
	require.NoError(t, err)
	require.Len(t, experts, 1)
	assert.Equal(t, "90000000007", experts[0].CPF)
}

// TestExpertEmployeesEmptyCatalog: an empty catalog excludes everyone
// instead of vacuously including everyone.
func TestExpertEmployeesEmptyCatalog(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())

	seedEmployee(t, pool, "90000000010", "Duda", "Obras")

	experts, err := analytics.ExpertEmployees(context.Background())
	require.NoError(t, err)
	assert.Empty(t, experts)
}

func TestHighQualityCategories(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())

	good := seedCategory(t, pool, "Vazamento de água", 15)
	bad := seedCategory(t, pool, "Descarte irregular de lixo", 12)
	seedCitizen(t, pool, "10000000007", "Hugo")

	rGood := insertReport(t, pool, good, "10000000007", "Centro", models.StatusResolved, time.Now())
	rBad := insertReport(t, pool, bad, "10000000007", "Centro", models.StatusResolved, time.Now())
	insertRating(t, pool, rGood, "10000000007", 5)
	insertRating(t, pool, rGood, "10000000007", 4)
	insertRating(t, pool, rBad, "10000000007", 2)

	results, err := analytics.HighQualityCategories(context.Background(),
		[]models.ReportStatus{models.StatusResolved}, 3.0)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Vazamento de água", results[0].Category)
	assert.InDelta(t, 4.5, results[0].AverageRating, 0.001)

	// Strictly greater: an average equal to the threshold is excluded.
	results, err = analytics.HighQualityCategories(context.Background(),
		[]models.ReportStatus{models.StatusResolved}, 4.5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Status filter excludes reports outside it.
	results, err = analytics.HighQualityCategories(context.Background(),
		[]models.ReportStatus{models.StatusClosed}, 1.0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestCriticalReports(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())

	category := seedCategory(t, pool, "Buraco na via", 10)
	seedCitizen(t, pool, "10000000008", "Iris")
	seedEmployee(t, pool, "90000000011", "Nina", "Obras")

	now := time.Now()
	stale := insertReport(t, pool, category, "10000000008", "Centro", models.StatusOpen, now.Add(-72*time.Hour))
	tended := insertReport(t, pool, category, "10000000008", "Centro", models.StatusInReview, now.Add(-72*time.Hour))
	quiet := insertReport(t, pool, category, "10000000008", "Centro", models.StatusOpen, now.Add(-72*time.Hour))

	for i := 0; i < 3; i++ {
		insertInteraction(t, pool, stale, "10000000008", models.KindUpvote)
		insertInteraction(t, pool, tended, "10000000008", models.KindUpvote)
	}
	_ = quiet // zero interactions: below the threshold

	// tended was touched recently, so its last-touch is fresh.
	insertUpdate(t, pool, "90000000011", tended, now)

	results, err := analytics.CriticalReports(context.Background(), 2, 24*time.Hour)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, stale, results[0].ReportID)
	assert.Equal(t, 3, results[0].TotalInteractions)
}

// TestAnalyticsEmptyDatabase: every query tolerates zero rows.
func TestAnalyticsEmptyDatabase(t *testing.T) {
	pool := testPool(t)
	analytics := NewAnalyticsService(pool, testLogger())
	ctx := context.Background()

	counts, err := analytics.InteractionCountsByReport(ctx)
	require.NoError(t, err)
	assert.Empty(t, counts)

	ranking, err := analytics.EmployeeProductivity(ctx)
	require.NoError(t, err)
	assert.Empty(t, ranking)

	quality, err := analytics.HighQualityCategories(ctx, []models.ReportStatus{models.StatusResolved}, 1.0)
	require.NoError(t, err)
	assert.Empty(t, quality)

	experts, err := analytics.ExpertEmployees(ctx)
	require.NoError(t, err)
	assert.Empty(t, experts)

	critical, err := analytics.CriticalReports(ctx, 0, time.Hour)
	require.NoError(t, err)
	assert.Empty(t, critical)

	hotspots, err := analytics.HotspotLocations(ctx, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, hotspots)
}
