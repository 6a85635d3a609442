package models

import "time"

// JobRow is a row of jobs left-joined with its company.
type JobRow struct {
	ID              string    `db:"id"`
	Title           string    `db:"title"`
	Description     string    `db:"description"`
	CompanyID       *string   `db:"company_id"`
	CompanyName     *string   `db:"company_name"`
	CompanyLogoURL  *string   `db:"company_logo_url"`
	Location        string    `db:"location"`
	CategoryID      *string   `db:"category_id"`
	Salary          *string   `db:"salary"`
	JobType         *string   `db:"job_type"`
	ExperienceLevel *string   `db:"experience_level"`
	IsFeatured      bool      `db:"is_featured"`
	IsHot           bool      `db:"is_hot"`
	IsUrgent        bool      `db:"is_urgent"`
	EmployerID      *string   `db:"employer_id"`
	CreatedAt       time.Time `db:"created_at"`
}

// ProfileRow is a candidate profile.
type ProfileRow struct {
	ID              string    `db:"id"`
	FullName        *string   `db:"full_name"`
	Headline        *string   `db:"headline"`
	Bio             *string   `db:"bio"`
	AvatarURL       *string   `db:"avatar_url"`
	Location        *string   `db:"location"`
	CategoryID      *string   `db:"category_id"`
	JobType         *string   `db:"job_type"`
	ExperienceLevel *string   `db:"experience_level"`
	ExpectedSalary  *string   `db:"expected_salary"`
	IsFeatured      bool      `db:"is_featured"`
	CreatedAt       time.Time `db:"created_at"`
}

type CompanyRow struct {
	ID          string    `db:"id"`
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	LogoURL     *string   `db:"logo_url"`
	Location    *string   `db:"location"`
	Industry    *string   `db:"industry"`
	IsVerified  bool      `db:"is_verified"`
	CreatedAt   time.Time `db:"created_at"`
}

type Application struct {
	ID          string    `db:"id" json:"id"`
	JobID       string    `db:"job_id" json:"job_id"`
	CandidateID string    `db:"candidate_id" json:"candidate_id"`
	CoverLetter *string   `db:"cover_letter" json:"cover_letter,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

const (
	ApplicationStatusPending = "pending"
)

type Notification struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	Message   string    `db:"message" json:"message"`
	Link      *string   `db:"link" json:"link,omitempty"`
	IsRead    bool      `db:"is_read" json:"is_read"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

const (
	NotificationTypeApplication = "application"
)
