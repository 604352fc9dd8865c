package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vozurbana/civic-server/internal/models"
)

func newReportFixture(t *testing.T) (*ReportService, *PointsService, uuid.UUID) {
	pool := testPool(t)
	points := NewPointsService(pool, testLogger())
	reports := NewReportService(pool, points, testLogger())

	category := seedCategory(t, pool, "Iluminação pública", 8)
	seedCitizen(t, pool, "10000000001", "Ana")
	seedEmployee(t, pool, "90000000001", "Rui", "Obras")

	return reports, points, category
}

func TestFileReport(t *testing.T) {
	reports, points, category := newReportFixture(t)
	ctx := context.Background()

	report, err := reports.File(ctx, "10000000001", category, "Poste apagado", "Vila Nova", "Poste sem luz há uma semana")
	require.NoError(t, err)

	assert.Equal(t, models.StatusOpen, report.Status)
	assert.Equal(t, category, report.CategoryID)
	assert.False(t, report.CreatedAt.IsZero())

	// Filing credits the author with the category's point value.
	balance, err := points.Balance(ctx, "10000000001")
	require.NoError(t, err)
	assert.Equal(t, 8, balance)
}

func TestFileReportValidation(t *testing.T) {
	reports, _, category := newReportFixture(t)
	ctx := context.Background()

	_, err := reports.File(ctx, "10000000001", category, "", "Centro", "descrição")
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	_, err = reports.File(ctx, "10000000001", category, "título", "Centro", "   ")
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err))

	_, err = reports.File(ctx, "10000000001", uuid.New(), "título", "Centro", "descrição")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

// TestTransitionOpenToClosed: Open→Closed is a listed edge, so the
// direct close succeeds and appends exactly one audit row.
func TestTransitionOpenToClosed(t *testing.T) {
	reports, _, category := newReportFixture(t)
	ctx := context.Background()

	report, err := reports.File(ctx, "10000000001", category, "Poste apagado", "Centro", "sem luz")
	require.NoError(t, err)

	require.NoError(t, reports.TransitionStatus(ctx, report.ID, models.StatusClosed, "90000000001"))

	got, err := reports.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusClosed, got.Status)

	history, err := reports.History(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "status", history[0].AttributeChanged)
	assert.Equal(t, "90000000001", history[0].EmployeeCPF)
}

// TestIllegalTransitionLeavesStatusUnchanged attempts a skipped edge
// and checks nothing was written, audit trail included.
func TestIllegalTransitionLeavesStatusUnchanged(t *testing.T) {
	reports, _, category := newReportFixture(t)
	ctx := context.Background()

	report, err := reports.File(ctx, "10000000001", category, "Poste apagado", "Centro", "sem luz")
	require.NoError(t, err)

	err = reports.TransitionStatus(ctx, report.ID, models.StatusResolved, "90000000001")
	require.Error(t, err)
	assert.Equal(t, models.KindIllegalTransition, models.KindOf(err))

	got, err := reports.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, got.Status)

	history, err := reports.History(ctx, report.ID)
	require.NoError(t, err)
	assert.Empty(t, history, "a rejected transition must not leave an audit row")
}

// TestFullLifecycle drives a report through review, back to open, into
// review again, resolution and closure.
func TestFullLifecycle(t *testing.T) {
	reports, _, category := newReportFixture(t)
	ctx := context.Background()

	report, err := reports.File(ctx, "10000000001", category, "Poste apagado", "Centro", "sem luz")
	require.NoError(t, err)

	steps := []models.ReportStatus{
		models.StatusInReview,
		models.StatusOpen, // returned for more information
		models.StatusInReview,
		models.StatusResolved,
		models.StatusClosed,
	}
	for _, next := range steps {
		require.NoError(t, reports.TransitionStatus(ctx, report.ID, next, "90000000001"))
	}

	// Closed is terminal.
	err = reports.TransitionStatus(ctx, report.ID, models.StatusOpen, "90000000001")
	assert.Equal(t, models.KindIllegalTransition, models.KindOf(err))

	history, err := reports.History(ctx, report.ID)
	require.NoError(t, err)
	assert.Len(t, history, len(steps))
}

func TestEditAttribute(t *testing.T) {
	reports, _, category := newReportFixture(t)
	ctx := context.Background()

	report, err := reports.File(ctx, "10000000001", category, "Poste apagado", "Centro", "sem luz")
	require.NoError(t, err)

	require.NoError(t, reports.EditAttribute(ctx, report.ID, "location", "Vila Industrial", "90000000001"))
	require.NoError(t, reports.EditAttribute(ctx, report.ID, "title", "Poste apagado na esquina", "90000000001"))

	got, err := reports.Get(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "Vila Industrial", got.Location)
	assert.Equal(t, "Poste apagado na esquina", got.Title)

	// The audit trail records attribute names only.
	history, err := reports.History(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "location", history[0].AttributeChanged)
	assert.Equal(t, "title", history[1].AttributeChanged)
}

func TestEditAttributeErrors(t *testing.T) {
	reports, _, category := newReportFixture(t)
	ctx := context.Background()

	report, err := reports.File(ctx, "10000000001", category, "Poste apagado", "Centro", "sem luz")
	require.NoError(t, err)

	err = reports.EditAttribute(ctx, report.ID, "status", "closed", "90000000001")
	assert.Equal(t, models.KindInvalidInput, models.KindOf(err), "status edits must go through TransitionStatus")

	err = reports.EditAttribute(ctx, uuid.New(), "title", "x", "90000000001")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))

	err = reports.EditAttribute(ctx, report.ID, "category", uuid.New().String(), "90000000001")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}
