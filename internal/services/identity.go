package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/vozurbana/civic-server/internal/models"
	"go.uber.org/zap"
)

// IdentityService manages Person records and their role
// specializations. A person row and its citizen/employee row are
// written in one transaction.
type IdentityService struct {
	db     *pgxpool.Pool
	logger *zap.SugaredLogger
}

// NewIdentityService creates a new identity service
func NewIdentityService(db *pgxpool.Pool, logger *zap.SugaredLogger) *IdentityService {
	return &IdentityService{db: db, logger: logger}
}

// RegisterCitizen creates the person row and the citizen side table
// row with a zero balance.
func (s *IdentityService) RegisterCitizen(ctx context.Context, cpf, name, email string, birthDate time.Time) (*models.Citizen, error) {
	if err := validatePerson(cpf, name, email); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertPerson(ctx, tx, cpf, name, email, birthDate, models.RoleCitizen); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO citizens (cpf, points_balance) VALUES ($1, 0)`,
		cpf,
	); err != nil {
		return nil, fmt.Errorf("insert citizen: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit register tx: %w", err)
	}

	s.logger.Infow("Citizen registered", "cpf", cpf)
	return &models.Citizen{
		Person:        models.Person{CPF: cpf, Name: name, Email: email, BirthDate: birthDate, Role: models.RoleCitizen},
		PointsBalance: 0,
	}, nil
}

// RegisterEmployee creates the person row and the employee side table row.
func (s *IdentityService) RegisterEmployee(ctx context.Context, cpf, name, email string, birthDate time.Time, department, city string) (*models.Employee, error) {
	if err := validatePerson(cpf, name, email); err != nil {
		return nil, err
	}
	if department == "" {
		return nil, models.E(models.KindInvalidInput, "employee", cpf, "department must not be empty")
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin register tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := insertPerson(ctx, tx, cpf, name, email, birthDate, models.RoleEmployee); err != nil {
		return nil, err
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO employees (cpf, department, city) VALUES ($1, $2, $3)`,
		cpf, department, city,
	); err != nil {
		return nil, fmt.Errorf("insert employee: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit register tx: %w", err)
	}

	s.logger.Infow("Employee registered", "cpf", cpf, "department", department)
	return &models.Employee{
		Person:     models.Person{CPF: cpf, Name: name, Email: email, BirthDate: birthDate, Role: models.RoleEmployee},
		Department: department,
		City:       city,
	}, nil
}

// GetCitizen returns one citizen with their balance.
func (s *IdentityService) GetCitizen(ctx context.Context, cpf string) (*models.Citizen, error) {
	var c models.Citizen
	err := s.db.QueryRow(ctx,
		`SELECT p.cpf, p.name, p.email, p.birth_date, p.role, c.points_balance
		 FROM persons p JOIN citizens c ON c.cpf = p.cpf
		 WHERE p.cpf = $1`,
		cpf,
	).Scan(&c.CPF, &c.Name, &c.Email, &c.BirthDate, &c.Role, &c.PointsBalance)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "citizen", cpf, "citizen does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select citizen: %w", err)
	}
	return &c, nil
}

// GetEmployee returns one employee.
func (s *IdentityService) GetEmployee(ctx context.Context, cpf string) (*models.Employee, error) {
	var e models.Employee
	err := s.db.QueryRow(ctx,
		`SELECT p.cpf, p.name, p.email, p.birth_date, p.role, e.department, e.city
		 FROM persons p JOIN employees e ON e.cpf = p.cpf
		 WHERE p.cpf = $1`,
		cpf,
	).Scan(&e.CPF, &e.Name, &e.Email, &e.BirthDate, &e.Role, &e.Department, &e.City)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.E(models.KindNotFound, "employee", cpf, "employee does not exist")
	}
	if err != nil {
		return nil, fmt.Errorf("select employee: %w", err)
	}
	return &e, nil
}

// ListCitizens returns all citizens ordered by name.
func (s *IdentityService) ListCitizens(ctx context.Context) ([]models.Citizen, error) {
	rows, err := s.db.Query(ctx,
		`SELECT p.cpf, p.name, p.email, p.birth_date, p.role, c.points_balance
		 FROM persons p JOIN citizens c ON c.cpf = p.cpf
		 ORDER BY p.name ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("select citizens: %w", err)
	}
	defer rows.Close()

	var citizens []models.Citizen
	for rows.Next() {
		var c models.Citizen
		if err := rows.Scan(&c.CPF, &c.Name, &c.Email, &c.BirthDate, &c.Role, &c.PointsBalance); err != nil {
			return nil, fmt.Errorf("scan citizen: %w", err)
		}
		citizens = append(citizens, c)
	}
	return citizens, rows.Err()
}

func validatePerson(cpf, name, email string) error {
	if cpf == "" {
		return models.E(models.KindInvalidInput, "person", "", "cpf must not be empty")
	}
	if name == "" {
		return models.E(models.KindInvalidInput, "person", cpf, "name must not be empty")
	}
	if email == "" {
		return models.E(models.KindInvalidInput, "person", cpf, "email must not be empty")
	}
	return nil
}

func insertPerson(ctx context.Context, tx pgx.Tx, cpf, name, email string, birthDate time.Time, role models.Role) error {
	if _, err := tx.Exec(ctx,
		`INSERT INTO persons (cpf, name, email, birth_date, role)
		 VALUES ($1, $2, $3, $4, $5)`,
		cpf, name, email, birthDate, role,
	); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.E(models.KindInvalidInput, "person", cpf, "cpf already registered")
		}
		return fmt.Errorf("insert person: %w", err)
	}
	return nil
}
