package search

import (
	"fmt"
	"time"

	"topmarketingjobs/internal/models"
)

const (
	UnknownCompany   = "Unknown Company"
	PlaceholderLogo  = "/placeholder.svg"
	AnonymousName    = "Ứng viên"
	NegotiableSalary = "Thỏa thuận"
)

// ListingRecord is the view model of one job listing.
type ListingRecord struct {
	ID               string `json:"id"`
	Title            string `json:"title"`
	CompanyName      string `json:"company_name"`
	CompanyLogoURL   string `json:"company_logo_url"`
	Location         string `json:"location"`
	SalaryText       string `json:"salary"`
	JobType          string `json:"job_type"`
	ExperienceLevel  string `json:"experience_level"`
	PostedAtRelative string `json:"posted_at_relative"`
	IsFeatured       bool   `json:"is_featured"`
	IsHot            bool   `json:"is_hot"`
	IsUrgent         bool   `json:"is_urgent"`
}

func (r ListingRecord) RankTitle() string  { return r.Title }
func (r ListingRecord) RankFeatured() bool { return r.IsFeatured }

type CandidateRecord struct {
	ID               string `json:"id"`
	FullName         string `json:"full_name"`
	Headline         string `json:"headline"`
	AvatarURL        string `json:"avatar_url"`
	Location         string `json:"location"`
	JobType          string `json:"job_type"`
	ExperienceLevel  string `json:"experience_level"`
	ExpectedSalary   string `json:"expected_salary"`
	JoinedAtRelative string `json:"joined_at_relative"`
	IsFeatured       bool   `json:"is_featured"`
}

func (r CandidateRecord) RankTitle() string  { return r.Headline }
func (r CandidateRecord) RankFeatured() bool { return r.IsFeatured }

type CompanyRecord struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	LogoURL          string `json:"logo_url"`
	Location         string `json:"location"`
	Industry         string `json:"industry"`
	JoinedAtRelative string `json:"joined_at_relative"`
	IsVerified       bool   `json:"is_verified"`
}

func (r CompanyRecord) RankTitle() string  { return r.Name }
func (r CompanyRecord) RankFeatured() bool { return r.IsVerified }

func FormatJob(row models.JobRow, now time.Time) ListingRecord {
	return ListingRecord{
		ID:               row.ID,
		Title:            row.Title,
		CompanyName:      valueOr(row.CompanyName, UnknownCompany),
		CompanyLogoURL:   valueOr(row.CompanyLogoURL, PlaceholderLogo),
		Location:         row.Location,
		SalaryText:       valueOr(row.Salary, NegotiableSalary),
		JobType:          valueOr(row.JobType, ""),
		ExperienceLevel:  valueOr(row.ExperienceLevel, ""),
		PostedAtRelative: PostedAgo(row.CreatedAt, now),
		IsFeatured:       row.IsFeatured,
		IsHot:            row.IsHot,
		IsUrgent:         row.IsUrgent,
	}
}

func FormatCandidate(row models.ProfileRow, now time.Time) CandidateRecord {
	return CandidateRecord{
		ID:               row.ID,
		FullName:         valueOr(row.FullName, AnonymousName),
		Headline:         valueOr(row.Headline, ""),
		AvatarURL:        valueOr(row.AvatarURL, PlaceholderLogo),
		Location:         valueOr(row.Location, ""),
		JobType:          valueOr(row.JobType, ""),
		ExperienceLevel:  valueOr(row.ExperienceLevel, ""),
		ExpectedSalary:   valueOr(row.ExpectedSalary, NegotiableSalary),
		JoinedAtRelative: PostedAgo(row.CreatedAt, now),
		IsFeatured:       row.IsFeatured,
	}
}

func FormatCompany(row models.CompanyRow, now time.Time) CompanyRecord {
	name := row.Name
	if name == "" {
		name = UnknownCompany
	}
	return CompanyRecord{
		ID:               row.ID,
		Name:             name,
		Description:      valueOr(row.Description, ""),
		LogoURL:          valueOr(row.LogoURL, PlaceholderLogo),
		Location:         valueOr(row.Location, ""),
		Industry:         valueOr(row.Industry, ""),
		JoinedAtRelative: PostedAgo(row.CreatedAt, now),
		IsVerified:       row.IsVerified,
	}
}

// PostedAgo labels the whole days elapsed since t. Days are truncated, never
// rounded: 29 days is still "4 tuần trước".
func PostedAgo(t, now time.Time) string {
	days := int(now.Sub(t) / (24 * time.Hour))
	switch {
	case days <= 0:
		return "Hôm nay"
	case days == 1:
		return "Hôm qua"
	case days < 7:
		return fmt.Sprintf("%d ngày trước", days)
	case days < 30:
		return fmt.Sprintf("%d tuần trước", days/7)
	default:
		return fmt.Sprintf("%d tháng trước", days/30)
	}
}

func valueOr(s *string, fallback string) string {
	if s == nil || *s == "" {
		return fallback
	}
	return *s
}
