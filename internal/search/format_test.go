package search_test

import (
	"testing"
	"time"

	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"
)

func TestPostedAgo(t *testing.T) {
	now := time.Date(2024, 5, 31, 15, 0, 0, 0, time.UTC)
	day := 24 * time.Hour

	cases := []struct {
		ago  time.Duration
		want string
	}{
		{0, "Hôm nay"},
		{23 * time.Hour, "Hôm nay"},
		{-2 * time.Hour, "Hôm nay"},
		{day, "Hôm qua"},
		{day + 23*time.Hour, "Hôm qua"},
		{2 * day, "2 ngày trước"},
		{6 * day, "6 ngày trước"},
		{7 * day, "1 tuần trước"},
		{8 * day, "1 tuần trước"},
		{29 * day, "4 tuần trước"},
		{29*day + 23*time.Hour, "4 tuần trước"},
		{30 * day, "1 tháng trước"},
		{95 * day, "3 tháng trước"},
	}
	for _, c := range cases {
		if got := search.PostedAgo(now.Add(-c.ago), now); got != c.want {
			t.Errorf("PostedAgo(now-%v) = %q, want %q", c.ago, got, c.want)
		}
	}
}

func TestFormatJob_Fallbacks(t *testing.T) {
	now := time.Now()
	row := models.JobRow{
		ID:        "j1",
		Title:     "SEO Specialist",
		Location:  "Hà Nội",
		CreatedAt: now,
	}

	rec := search.FormatJob(row, now)

	if rec.CompanyName != search.UnknownCompany {
		t.Errorf("CompanyName = %q, want %q", rec.CompanyName, search.UnknownCompany)
	}
	if rec.CompanyLogoURL != search.PlaceholderLogo {
		t.Errorf("CompanyLogoURL = %q, want %q", rec.CompanyLogoURL, search.PlaceholderLogo)
	}
	if rec.SalaryText != search.NegotiableSalary {
		t.Errorf("SalaryText = %q, want %q", rec.SalaryText, search.NegotiableSalary)
	}
	if rec.PostedAtRelative != "Hôm nay" {
		t.Errorf("PostedAtRelative = %q", rec.PostedAtRelative)
	}
}

func TestFormatJob_WithCompany(t *testing.T) {
	now := time.Now()
	name, logo, salary := "Ogilvy", "https://cdn/ogilvy.png", "15-20 triệu"
	row := models.JobRow{
		ID:             "j2",
		Title:          "Content Lead",
		CompanyName:    &name,
		CompanyLogoURL: &logo,
		Salary:         &salary,
		IsFeatured:     true,
		IsUrgent:       true,
		CreatedAt:      now.Add(-3 * 24 * time.Hour),
	}

	rec := search.FormatJob(row, now)

	if rec.CompanyName != name || rec.CompanyLogoURL != logo || rec.SalaryText != salary {
		t.Errorf("unexpected record %+v", rec)
	}
	if !rec.IsFeatured || !rec.IsUrgent || rec.IsHot {
		t.Errorf("flags not copied: %+v", rec)
	}
	if rec.PostedAtRelative != "3 ngày trước" {
		t.Errorf("PostedAtRelative = %q", rec.PostedAtRelative)
	}
}

func TestFormatCompany_EmptyName(t *testing.T) {
	rec := search.FormatCompany(models.CompanyRow{ID: "c1"}, time.Now())
	if rec.Name != search.UnknownCompany || rec.LogoURL != search.PlaceholderLogo {
		t.Errorf("unexpected record %+v", rec)
	}
}
