package models

import (
	"time"

	"gorm.io/gorm"
)

// Module is a product area of the dashboard (CV builder, cover letters, ...).
// Permissions and pricing options both hang off a module.
type Module struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`

	Permissions []Permission `json:"permissions,omitempty"`
}

type Permission struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Name is "<module>:<action>", e.g. "candidates:read"
	Name     string `gorm:"uniqueIndex;not null" json:"name"`
	Action   string `gorm:"not null" json:"action"`
	ModuleID uint   `gorm:"index" json:"module_id"`
}

type Role struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string       `gorm:"uniqueIndex;not null" json:"name"`
	Description string       `json:"description"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Active       bool   `json:"active"`

	RoleID uint `json:"role_id"`
	Role   Role `json:"role"`

	// Pack is set by the billing webhook once a checkout completes.
	PackID           *uint  `json:"pack_id"`
	Pack             *Pack  `json:"pack,omitempty"`
	StripeCustomerID string `json:"-"`
}

type Candidate struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `json:"-"`

	Headline        string   `json:"headline"`
	Location        string   `json:"location"`
	Summary         string   `gorm:"type:text" json:"summary"`
	Skills          []string `gorm:"serializer:json" json:"skills"`
	YearsExperience int      `json:"years_experience"`
}

// Option is a sellable feature of a module, e.g. "cover letters per month".
type Option struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	ModuleID    uint   `gorm:"index" json:"module_id"`
	Module      Module `json:"module"`
}

// Pack intervals
const (
	IntervalMonth   = "month"
	IntervalYear    = "year"
	IntervalOneTime = "one_time"
)

type Pack struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name        string `gorm:"uniqueIndex;not null" json:"name"`
	Description string `json:"description"`
	PriceCents  int64  `json:"price_cents"`
	Currency    string `gorm:"default:'eur'" json:"currency"`
	Interval    string `gorm:"column:billing_interval;default:'month'" json:"interval"`
	Active      bool   `json:"active"`
	Position    int    `json:"position"`

	StripeProductID string `json:"-"`
	StripePriceID   string `json:"-"`

	Options []PackOption `gorm:"foreignKey:PackID" json:"options,omitempty"`
}

// IsFree reports whether the pack can be granted without a checkout.
func (p *Pack) IsFree() bool { return p.PriceCents == 0 }

// PackOption links an option to a pack. Quota 0 means unlimited.
type PackOption struct {
	PackID   uint   `gorm:"primaryKey" json:"pack_id"`
	OptionID uint   `gorm:"primaryKey" json:"option_id"`
	Option   Option `json:"option"`
	Quota    int    `json:"quota"`
}

type OnboardingSession struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	UserID    uint              `gorm:"index;not null" json:"user_id"`
	Step      int               `json:"step"`
	Completed bool              `json:"completed"`
	Answers   map[string]string `gorm:"serializer:json" json:"answers"`
	ExpiresAt time.Time         `json:"expires_at"`
}

// Job statuses
const (
	StatusApplied   = "APPLIED"
	StatusInterview = "INTERVIEW"
	StatusOffer     = "OFFER"
	StatusRejected  = "REJECTED"
	StatusWithdrawn = "WITHDRAWN"
)

// ValidJobStatus reports whether s is a known application status.
func ValidJobStatus(s string) bool {
	switch s {
	case StatusApplied, StatusInterview, StatusOffer, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name string `gorm:"uniqueIndex;not null" json:"company_name"`

	// 'omitempty' prevents infinite loops when fetching a Job -> Company -> Jobs -> ...
	Jobs []Job `json:"jobs,omitempty"`
}

// Job is an application a candidate is tracking.
type Job struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	CandidateID uint    `gorm:"index;not null" json:"candidate_id"`
	CompanyID   uint    `json:"company_id"`
	Company     Company `json:"company"`

	Title       string   `gorm:"not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	JobLink     string   `json:"job_link"`
	Location    string   `json:"location"`
	SalaryRange string   `json:"salary_range"`
	TechStack   []string `gorm:"serializer:json" json:"tech_stack"`
	Status      string   `gorm:"default:'APPLIED'" json:"status"`
	ResumeLink  string   `json:"resume_link"`
}

type JobEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JobID     uint      `gorm:"index" json:"job_id"`
	EventType string    `json:"event_type"`
	Details   string    `gorm:"type:text" json:"details"`
}

type CoverLetter struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CandidateID uint   `gorm:"index;not null" json:"candidate_id"`
	JobID       *uint  `json:"job_id"`
	Tone        string `json:"tone"`
	Content     string `gorm:"type:text" json:"content"`
}

// Document kinds
const (
	DocumentKindCV = "cv"
)

// Document is an uploaded file whose bytes live in object storage.
type Document struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	CandidateID   uint   `gorm:"index;not null" json:"candidate_id"`
	Kind          string `gorm:"not null" json:"kind"`
	FileName      string `json:"file_name"`
	MimeType      string `json:"mime_type"`
	Size          int64  `json:"size"`
	StorageKey    string `gorm:"uniqueIndex;not null" json:"-"`
	ExtractedText string `gorm:"type:text" json:"-"`
}

// All lists every model for migrations.
func All() []any {
	return []any{
		&Module{}, &Permission{}, &Role{}, &User{}, &Candidate{},
		&Option{}, &Pack{}, &PackOption{}, &OnboardingSession{},
		&Company{}, &Job{}, &JobEvent{}, &CoverLetter{}, &Document{},
	}
}
