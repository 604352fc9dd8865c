// Package models defines the data structures used across the application.
// These map to the PostgreSQL schema created by cmd/migrate.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Role discriminates the two Person specializations.
type Role string

const (
	RoleCitizen  Role = "citizen"
	RoleEmployee Role = "employee"
)

// Person is the base identity record, keyed by CPF. Exactly one
// specialization row (citizens or employees) exists per person,
// selected by Role.
type Person struct {
	CPF       string    `json:"cpf" db:"cpf"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	BirthDate time.Time `json:"birth_date" db:"birth_date"`
	Role      Role      `json:"role" db:"role"`
}

// Citizen is the citizen specialization: the points balance lives here
// and is only ever mutated through the points ledger.
type Citizen struct {
	Person
	PointsBalance int `json:"points_balance" db:"points_balance"`
}

// Employee is the employee specialization.
type Employee struct {
	Person
	Department string `json:"department" db:"department"`
	City       string `json:"city" db:"city"`
}

// Category is reference data; PointValue is the credit a citizen earns
// for filing a report in it.
type Category struct {
	ID         uuid.UUID `json:"id" db:"id"`
	Name       string    `json:"name" db:"name"`
	PointValue int       `json:"point_value" db:"point_value"`
}

// Report is the lifecycle-governed core entity. ID is immutable after
// creation; CategoryID changes only through EditAttribute("category").
type Report struct {
	ID          uuid.UUID    `json:"id" db:"id"`
	Title       string       `json:"title" db:"title"`
	Location    string       `json:"location" db:"location"`
	Description string       `json:"description" db:"description"`
	Status      ReportStatus `json:"status" db:"status"`
	CategoryID  uuid.UUID    `json:"category_id" db:"category_id"`
	AuthorCPF   string       `json:"author_cpf" db:"author_cpf"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
}

// InteractionKind discriminates the interaction payload variants.
type InteractionKind string

const (
	KindComment InteractionKind = "comment"
	KindUpvote  InteractionKind = "upvote"
	KindRating  InteractionKind = "rating"
)

// Interaction records one citizen engagement with a report. The payload
// fields are populated according to Kind: Text for comments, Score and
// Note for ratings, nothing for upvotes.
type Interaction struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	ReportID   uuid.UUID       `json:"report_id" db:"report_id"`
	CitizenCPF string          `json:"citizen_cpf" db:"citizen_cpf"`
	Kind       InteractionKind `json:"kind" db:"kind"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
	Text       *string         `json:"text,omitempty" db:"text"`
	Score      *int            `json:"score,omitempty" db:"score"`
	Note       *string         `json:"note,omitempty" db:"note"`
}

// InteractionPayload carries the kind-specific input for Record.
type InteractionPayload struct {
	Text  string `json:"text,omitempty"`
	Score int    `json:"score,omitempty"`
	Note  string `json:"note,omitempty"`
}

// Media is a link attached to a report, any number per report.
type Media struct {
	ID         uuid.UUID `json:"id" db:"id"`
	ReportID   uuid.UUID `json:"report_id" db:"report_id"`
	Link       string    `json:"link" db:"link"`
	UploadedAt time.Time `json:"uploaded_at" db:"uploaded_at"`
}

// Benefit is reference data redeemable for points.
type Benefit struct {
	Name        string `json:"name" db:"name"`
	PointCost   int    `json:"point_cost" db:"point_cost"`
	Description string `json:"description" db:"description"`
}

// Redemption is the debit event written atomically with the balance
// decrement. PointsSpent is the benefit cost at redemption time.
type Redemption struct {
	ID          int64     `json:"id" db:"id"`
	CitizenCPF  string    `json:"citizen_cpf" db:"citizen_cpf"`
	BenefitName string    `json:"benefit_name" db:"benefit_name"`
	PointsSpent int       `json:"points_spent" db:"points_spent"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// UpdateHistory is the append-only audit trail of employee edits. It
// records which attribute changed, never the value.
type UpdateHistory struct {
	ID               int64     `json:"id" db:"id"`
	EmployeeCPF      string    `json:"employee_cpf" db:"employee_cpf"`
	ReportID         uuid.UUID `json:"report_id" db:"report_id"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	AttributeChanged string    `json:"attribute_changed" db:"attribute_changed"`
}

// RegisterCitizenRequest is the body for POST /citizens.
type RegisterCitizenRequest struct {
	CPF       string `json:"cpf"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
}

// RegisterEmployeeRequest is the body for POST /employees.
type RegisterEmployeeRequest struct {
	CPF        string `json:"cpf"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	BirthDate  string `json:"birth_date"` // YYYY-MM-DD
	Department string `json:"department"`
	City       string `json:"city"`
}

// FileReportRequest is the body for POST /reports.
type FileReportRequest struct {
	AuthorCPF   string `json:"author_cpf"`
	CategoryID  string `json:"category_id"`
	Title       string `json:"title"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// TransitionRequest is the body for POST /reports/{id}/status.
type TransitionRequest struct {
	NewStatus   string `json:"new_status"`
	EmployeeCPF string `json:"employee_cpf"`
}

// EditAttributeRequest is the body for POST /reports/{id}/edit.
type EditAttributeRequest struct {
	Attribute   string `json:"attribute"`
	NewValue    string `json:"new_value"`
	EmployeeCPF string `json:"employee_cpf"`
}

// RecordInteractionRequest is the body for POST /reports/{id}/interactions.
type RecordInteractionRequest struct {
	CitizenCPF string             `json:"citizen_cpf"`
	Kind       string             `json:"kind"`
	Payload    InteractionPayload `json:"payload"`
}

// AttachMediaRequest is the body for POST /reports/{id}/media.
type AttachMediaRequest struct {
	Link string `json:"link"`
}

// RedeemRequest is the body for POST /citizens/{cpf}/redeem.
type RedeemRequest struct {
	BenefitName string `json:"benefit_name"`
}

// CreateCategoryRequest is the body for POST /categories.
type CreateCategoryRequest struct {
	Name       string `json:"name"`
	PointValue int    `json:"point_value"`
}

// CreateBenefitRequest is the body for POST /benefits.
type CreateBenefitRequest struct {
	Name        string `json:"name"`
	PointCost   int    `json:"point_cost"`
	Description string `json:"description"`
}

// ReportInteractionCount is one row of the interaction-count ranking.
type ReportInteractionCount struct {
	ReportID          uuid.UUID    `json:"report_id"`
	Title             string       `json:"title"`
	Category          string       `json:"category"`
	Status            ReportStatus `json:"status"`
	TotalInteractions int          `json:"total_interactions"`
}

// EmployeeProductivity is one row of the productivity ranking.
type EmployeeProductivity struct {
	CPF                    string `json:"cpf"`
	Name                   string `json:"name"`
	Department             string `json:"department"`
	DistinctReportsUpdated int    `json:"distinct_reports_updated"`
}

// CategoryQuality is one row of the high-quality-categories query.
type CategoryQuality struct {
	CategoryID    uuid.UUID `json:"category_id"`
	Category      string    `json:"category"`
	AverageRating float64   `json:"average_rating"`
}

// ExpertEmployee is an employee whose updates span the whole catalog.
type ExpertEmployee struct {
	CPF        string `json:"cpf"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

// CriticalReport is a stale, heavily-interacted, still-active report.
type CriticalReport struct {
	ReportID          uuid.UUID    `json:"report_id"`
	Title             string       `json:"title"`
	Location          string       `json:"location"`
	Status            ReportStatus `json:"status"`
	TotalInteractions int          `json:"total_interactions"`
}

// HotspotLocation is one row of the hotspot ranking.
type HotspotLocation struct {
	Location          string  `json:"location"`
	ActiveReportCount int     `json:"active_report_count"`
	AverageHoursOpen  float64 `json:"average_hours_open"`
}

// HealthStatus is the health check response.
type HealthStatus struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	Uptime   string `json:"uptime"`
	Database string `json:"database,omitempty"`
}
