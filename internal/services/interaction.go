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

// InteractionService records citizen engagement with reports. An
// interaction and its kind-specific payload row are written in one
// transaction, both-or-neither.
type InteractionService struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewInteractionService creates a new interaction service
func NewInteractionService(db *pgxpool.Pool, logger *zap.SugaredLogger) *InteractionService {
	return &InteractionService{db: db, logger: logger}
}

// Record writes one interaction against a report. Closed reports accept
// no new interactions. Rating scores are validated before any write, so
// an out-of-range score can never be read back.
func (s *InteractionService) Record(ctx context.Context, citizenCPF string, reportID uuid.UUID, kind models.InteractionKind, payload models.InteractionPayload) (*models.Interaction, error) {
	if kind == models.KindRating && (payload.Score < 1 || payload.Score > 5) {
		return nil, models.E(models.KindInvalidInput, "rating", reportID.String(),
			fmt.Sprintf("score %d outside 1..5", payload.Score))
	}
	if kind == models.KindComment && payload.Text == "" {
		return nil, models.E(models.KindInvalidInput, "comment", reportID.String(), "text must not be empty")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin interaction tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Status check shares the transaction with the writes, so a
	// concurrent close cannot slip an interaction onto a closed report.
	var status models.ReportStatus
	err = tx.QueryRow(ctx,
		`SELECT status FROM reports WHERE id = $1 FOR SHARE`,
		reportID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "report", reportID.String(), "report does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select report status: %w", err)
	}
	if status == models.StatusClosed {
		return nil, models.E(models.KindIllegalState, "report", reportID.String(), "report is closed")
	}

	interaction := &models.Interaction{
		ID:         uuid.New(),
		ReportID:   reportID,
		CitizenCPF: citizenCPF,
		Kind:       kind,
	}
	err = tx.QueryRow(ctx,
		`INSERT INTO interactions (id, report_id, citizen_cpf, kind)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at`,
		interaction.ID, reportID, citizenCPF, kind,
	).Scan(&interaction.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}

	switch kind {
	case models.KindComment:
		if _, err := tx.Exec(ctx,
			`INSERT INTO comments (interaction_id, text) VALUES ($1, $2)`,
			interaction.ID, payload.Text,
		); err != nil {
			return nil, fmt.Errorf("insert comment: %w", err)
		}
		interaction.Text = &payload.Text
	case models.KindRating:
		if _, err := tx.Exec(ctx,
			`INSERT INTO ratings (interaction_id, score, note) VALUES ($1, $2, $3)`,
			interaction.ID, payload.Score, nullable(payload.Note),
		); err != nil {
			return nil, fmt.Errorf("insert rating: %w", err)
		}
		score := payload.Score
		interaction.Score = &score
		if payload.Note != "" {
			note := payload.Note
			interaction.Note = &note
		}
	case models.KindUpvote:
		// No payload row.
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit interaction tx: %w", err)
	}

	s.logger.Infow("Interaction recorded",
		"id", interaction.ID,
		"report", reportID,
		"citizen", citizenCPF,
		"kind", kind,
	)
	return interaction, nil
}

// AttachMedia links a media item to a report. Media may document any
// report state, so there is no status restriction.
func (s *InteractionService) AttachMedia(ctx context.Context, reportID uuid.UUID, link string) (*models.Media, error) {
	if link == "" {
		return nil, models.E(models.KindInvalidInput, "media", reportID.String(), "link must not be empty")
	}

	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`,
		reportID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check report: %w", err)
	}
	if !exists {
		return nil, models.E(models.KindNotFound, "report", reportID.String(), "report does not exist")
	}

	media := &models.Media{ID: uuid.New(), ReportID: reportID, Link: link}
	err := s.db.QueryRow(ctx,
		`INSERT INTO media (id, report_id, link) VALUES ($1, $2, $3)
		 RETURNING uploaded_at`,
		media.ID, reportID, link,
	).Scan(&media.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("insert media: %w", err)
	}

	return media, nil
}

// ForReport returns a report's interactions with payloads joined in,
// ordered by timestamp ascending.
func (s *InteractionService) ForReport(ctx context.Context, reportID uuid.UUID) ([]models.Interaction, error) {
	var exists bool
	if err := s.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM reports WHERE id = $1)`,
		reportID,
	).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check report: %w", err)
	}
	if !exists {
		return nil, models.E(models.KindNotFound, "report", reportID.String(), "report does not exist")
	}

	rows, err := s.db.Query(ctx,
		`SELECT i.id, i.report_id, i.citizen_cpf, i.kind, i.created_at, c.text, r.score, r.note
		 FROM interactions i
		 LEFT JOIN comments c ON c.interaction_id = i.id
		 LEFT JOIN ratings r ON r.interaction_id = i.id
		 WHERE i.report_id = $1
		 ORDER BY i.created_at ASC, i.id ASC`,
		reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("select interactions: %w", err)
	}
	defer rows.Close()

	var interactions []models.Interaction
	for rows.Next() {
		var i models.Interaction
		if err := rows.Scan(&i.ID, &i.ReportID, &i.CitizenCPF, &i.Kind, &i.CreatedAt,
			&i.Text, &i.Score, &i.Note); err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		interactions = append(interactions, i)
	}
	return interactions, rows.Err()
}

// MediaForReport returns a report's media, oldest first.
func (s *InteractionService) MediaForReport(ctx context.Context, reportID uuid.UUID) ([]models.Media, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, report_id, link, uploaded_at FROM media
		 WHERE report_id = $1 ORDER BY uploaded_at ASC`,
		reportID,
	)
	if err != nil {
		return nil, fmt.Errorf("select media: %w", err)
	}
	defer rows.Close()

	var items []models.Media
	for rows.Next() {
		var m models.Media
		if err := rows.Scan(&m.ID, &m.ReportID, &m.Link, &m.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan media: %w", err)
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
