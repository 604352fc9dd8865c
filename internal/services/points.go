package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vozurbana/civic-server/internal/models"
	"go.uber.org/zap"
)

// PointsService is the single point of truth for balance mutation. All
// credits and debits pass through it; the citizen row is locked for the
// duration of each operation, so two concurrent redemptions never both
// succeed against a balance that can satisfy only one.
type PointsService struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewPointsService creates a new points ledger service
func NewPointsService(db *pgxpool.Pool, logger *zap.SugaredLogger) *PointsService {
	return &PointsService{db: db, logger: logger}
}

// Credit awards points to a citizen for a qualifying report. Repeating
// a credit for the same report is a no-op; the new balance is returned
// either way.
func (s *PointsService) Credit(ctx context.Context, citizenCPF string, amount int, reasonReportID uuid.UUID) (int, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin credit tx: %w", err)
	}
	defer tx.Rollback(ctx)

	balance, err := s.CreditInTx(ctx, tx, citizenCPF, amount, reasonReportID)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, ledgerError(err, citizenCPF)
	}
	return balance, nil
}

// CreditInTx applies a credit inside a caller-owned transaction so a
// report insert and its credit commit together. The citizen row is
// locked first; the point_credits insert is the idempotence record.
func (s *PointsService) CreditInTx(ctx context.Context, tx pgx.Tx, citizenCPF string, amount int, reasonReportID uuid.UUID) (int, error) {
	if amount < 0 {
		return 0, models.E(models.KindInvalidInput, "credit", reasonReportID.String(), "amount must be non-negative")
	}

	var balance int
	err := tx.QueryRow(ctx,
		`SELECT points_balance FROM citizens WHERE cpf = $1 FOR UPDATE`,
		citizenCPF,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, models.E(models.KindNotFound, "citizen", citizenCPF, "citizen does not exist")
	}
	if err != nil {
		return 0, ledgerError(err, citizenCPF)
	}

	tag, err := tx.Exec(ctx,
		`INSERT INTO point_credits (report_id, citizen_cpf, amount)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (report_id) DO NOTHING`,
		reasonReportID, citizenCPF, amount,
	)
	if err != nil {
		return 0, ledgerError(err, citizenCPF)
	}
	if tag.RowsAffected() == 0 {
		// Already credited for this report.
		return balance, nil
	}

	err = tx.QueryRow(ctx,
		`UPDATE citizens SET points_balance = points_balance + $1 WHERE cpf = $2
		 RETURNING points_balance`,
		amount, citizenCPF,
	).Scan(&balance)
	if err != nil {
		return 0, ledgerError(err, citizenCPF)
	}

	s.logger.Infow("Points credited",
		"citizen", citizenCPF,
		"amount", amount,
		"report", reasonReportID,
		"balance", balance,
	)
	return balance, nil
}

// Redeem exchanges points for a benefit. The balance decrement and the
// redemption insert happen in one transaction under the citizen row
// lock: all-or-nothing.
func (s *PointsService) Redeem(ctx context.Context, citizenCPF, benefitName string) (*models.Redemption, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin redeem tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var cost int
	err = tx.QueryRow(ctx,
		`SELECT point_cost FROM benefits WHERE name = $1`,
		benefitName,
	).Scan(&cost)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "benefit", benefitName, "benefit does not exist")
	}
	if err != nil {
		return nil, ledgerError(err, citizenCPF)
	}

	var balance int
	err = tx.QueryRow(ctx,
		`SELECT points_balance FROM citizens WHERE cpf = $1 FOR UPDATE`,
		citizenCPF,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "citizen", citizenCPF, "citizen does not exist")
	}
	if err != nil {
		return nil, ledgerError(err, citizenCPF)
	}

	if balance < cost {
		return nil, models.E(models.KindInsufficientBalance, "citizen", citizenCPF,
			fmt.Sprintf("balance %d is below benefit cost %d", balance, cost))
	}

	if _, err := tx.Exec(ctx,
		`UPDATE citizens SET points_balance = points_balance - $1 WHERE cpf = $2`,
		cost, citizenCPF,
	); err != nil {
		return nil, ledgerError(err, citizenCPF)
	}

	var redemption models.Redemption
	redemption.CitizenCPF = citizenCPF
	redemption.BenefitName = benefitName
	redemption.PointsSpent = cost
	err = tx.QueryRow(ctx,
		`INSERT INTO redemptions (citizen_cpf, benefit_name, points_spent)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		citizenCPF, benefitName, cost,
	).Scan(&redemption.ID, &redemption.CreatedAt)
	if err != nil {
		return nil, ledgerError(err, citizenCPF)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, ledgerError(err, citizenCPF)
	}

	s.logger.Infow("Benefit redeemed",
		"citizen", citizenCPF,
		"benefit", benefitName,
		"spent", cost,
		"balance", balance-cost,
	)
	return &redemption, nil
}

// Balance returns the citizen's current points balance.
func (s *PointsService) Balance(ctx context.Context, citizenCPF string) (int, error) {
	var balance int
	err := s.db.QueryRow(ctx,
		`SELECT points_balance FROM citizens WHERE cpf = $1`,
		citizenCPF,
	).Scan(&balance)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, models.E(models.KindNotFound, "citizen", citizenCPF, "citizen does not exist")
	}
	if err != nil {
		return 0, fmt.Errorf("select balance: %w", err)
	}
	return balance, nil
}

// ledgerError maps transient lock contention to ConflictRetry and wraps
// everything else.
func ledgerError(err error, citizenCPF string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "40001", "40P01", "55P03":
			return models.E(models.KindConflictRetry, "citizen", citizenCPF, "balance lock contention, retry")
		}
	}
	return fmt.Errorf("points ledger: %w", err)
}
