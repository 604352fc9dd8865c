package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vozurbana/civic-server/internal/models"
)

func newInteractionFixture(t *testing.T) (*InteractionService, *ReportService, *models.Report) {
	pool := testPool(t)
	points := NewPointsService(pool, testLogger())
	reports := NewReportService(pool, points, testLogger())
	interactions := NewInteractionService(pool, testLogger())

	category := seedCategory(t, pool, "Vazamento de água", 15)
	seedCitizen(t, pool, "10000000002", "Bia")
	seedEmployee(t, pool, "90000000002", "Sol", "Saneamento")

	report, err := reports.File(context.Background(), "10000000002", category,
		"Vazamento na calçada", "Cambuí", "Água limpa vazando há dois dias")
	require.NoError(t, err)

	return interactions, reports, report
}

func TestRecordInteractionKinds(t *testing.T) {
	interactions, _, report := newInteractionFixture(t)
	ctx := context.Background()

	comment, err := interactions.Record(ctx, "10000000002", report.ID, models.KindComment,
		models.InteractionPayload{Text: "Também vi esse vazamento"})
	require.NoError(t, err)
	require.NotNil(t, comment.Text)
	assert.Equal(t, "Também vi esse vazamento", *comment.Text)

	upvote, err := interactions.Record(ctx, "10000000002", report.ID, models.KindUpvote, models.InteractionPayload{})
	require.NoError(t, err)
	assert.Nil(t, upvote.Text)
	assert.Nil(t, upvote.Score)

	rating, err := interactions.Record(ctx, "10000000002", report.ID, models.KindRating,
		models.InteractionPayload{Score: 4, Note: "resolvido rápido"})
	require.NoError(t, err)
	require.NotNil(t, rating.Score)
	assert.Equal(t, 4, *rating.Score)

	// Ordered by timestamp ascending, payloads joined in.
	list, err := interactions.ForReport(ctx, report.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, models.KindComment, list[0].Kind)
	assert.Equal(t, models.KindUpvote, list[1].Kind)
	assert.Equal(t, models.KindRating, list[2].Kind)
}

// TestRatingRange rejects out-of-range scores before any write, so a
// bad score can never be read back.
func TestRatingRange(t *testing.T) {
	interactions, _, report := newInteractionFixture(t)
	ctx := context.Background()

	for _, score := range []int{0, -1, 6, 100} {
		_, err := interactions.Record(ctx, "10000000002", report.ID, models.KindRating,
			models.InteractionPayload{Score: score})
		require.Error(t, err, "score %d", score)
		assert.Equal(t, models.KindInvalidInput, models.KindOf(err))
	}

	list, err := interactions.ForReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Empty(t, list, "rejected ratings must not be persisted")
}

// TestClosedReportRejectsInteractions: no new interactions on a closed
// report, and the rejected interaction leaves no row behind.
func TestClosedReportRejectsInteractions(t *testing.T) {
	interactions, reports, report := newInteractionFixture(t)
	ctx := context.Background()

	require.NoError(t, reports.TransitionStatus(ctx, report.ID, models.StatusClosed, "90000000002"))

	_, err := interactions.Record(ctx, "10000000002", report.ID, models.KindComment,
		models.InteractionPayload{Text: "ainda está vazando"})
	require.Error(t, err)
	assert.Equal(t, models.KindIllegalState, models.KindOf(err))

	list, err := interactions.ForReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestRecordInteractionUnknownReport(t *testing.T) {
	interactions, _, _ := newInteractionFixture(t)

	_, err := interactions.Record(context.Background(), "10000000002", uuid.New(), models.KindUpvote,
		models.InteractionPayload{})
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}

func TestAttachMedia(t *testing.T) {
	interactions, reports, report := newInteractionFixture(t)
	ctx := context.Background()

	media, err := interactions.AttachMedia(ctx, report.ID, "https://cdn.example.com/foto1.jpg")
	require.NoError(t, err)
	assert.Equal(t, report.ID, media.ReportID)
	assert.False(t, media.UploadedAt.IsZero())

	// Media is allowed on any status, closed included.
	require.NoError(t, reports.TransitionStatus(ctx, report.ID, models.StatusClosed, "90000000002"))
	_, err = interactions.AttachMedia(ctx, report.ID, "https://cdn.example.com/foto2.jpg")
	require.NoError(t, err)

	list, err := interactions.MediaForReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = interactions.AttachMedia(ctx, uuid.New(), "https://cdn.example.com/foto3.jpg")
	assert.Equal(t, models.KindNotFound, models.KindOf(err))
}
