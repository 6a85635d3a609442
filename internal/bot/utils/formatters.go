package utils

import (
	"fmt"
	"strings"
	"time"

	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"
)

const maxTitleLen = 120

// FormatJobCard renders one listing for Telegram MarkdownV2.
func FormatJobCard(job search.ListingRecord, jobURL string) string {
	var sb strings.Builder

	title := EscapeMarkdown(TruncateString(job.Title, maxTitleLen))
	switch {
	case job.IsFeatured:
		title = "⭐ " + title
	case job.IsHot:
		title = "🔥 " + title
	}
	sb.WriteString(fmt.Sprintf("*%s*\n", title))

	sb.WriteString(fmt.Sprintf("🏢 %s\n", EscapeMarkdown(job.CompanyName)))
	if job.Location != "" {
		sb.WriteString(fmt.Sprintf("📍 %s\n", EscapeMarkdown(job.Location)))
	}
	sb.WriteString(fmt.Sprintf("💰 %s\n", EscapeMarkdown(job.SalaryText)))

	if job.JobType != "" {
		sb.WriteString(fmt.Sprintf("📋 %s\n", EscapeMarkdown(models.GetJobTypeDisplayName(job.JobType))))
	}
	if job.ExperienceLevel != "" {
		sb.WriteString(fmt.Sprintf("💼 %s\n", EscapeMarkdown(models.GetExperienceDisplayName(job.ExperienceLevel))))
	}
	if job.IsUrgent {
		sb.WriteString("⏰ Tuyển gấp\n")
	}

	sb.WriteString(fmt.Sprintf("📅 %s", EscapeMarkdown(job.PostedAtRelative)))

	if jobURL != "" {
		sb.WriteString(fmt.Sprintf("\n🔗 [Xem chi tiết](%s)", jobURL))
	}

	return sb.String()
}

// FormatResultsPage renders a whole result page as one message so that
// paging can edit it in place.
func FormatResultsPage(page search.ResultPage[search.ListingRecord], fs search.FilterSet, jobURL func(id string) string) string {
	if page.Empty() {
		return FormatNoResultsMessage()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 *Tìm thấy %d việc làm* \\(trang %d/%d\\)\n",
		page.TotalCount, page.Page, page.TotalPages()))
	if summary := FormatFilterSummary(fs); summary != "" {
		sb.WriteString(summary)
		sb.WriteString("\n")
	}

	for i, job := range page.Items {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("*%d\\.* ", (page.Page-1)*page.PageSize+i+1))
		sb.WriteString(FormatJobCard(job, jobURL(job.ID)))
		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatFilterSummary lists the active filters on one line.
func FormatFilterSummary(fs search.FilterSet) string {
	var parts []string

	if fs.Keyword != "" {
		parts = append(parts, "🔍 "+fs.Keyword)
	}
	if fs.Location != "" && fs.Location != search.SentinelAll {
		parts = append(parts, "📍 "+fs.Location)
	}
	if fs.JobType != "" && fs.JobType != search.SentinelAll {
		parts = append(parts, "📋 "+models.GetJobTypeDisplayName(fs.JobType))
	}
	if fs.ExperienceLevel != "" && fs.ExperienceLevel != search.SentinelAll {
		parts = append(parts, "💼 "+models.GetExperienceDisplayName(fs.ExperienceLevel))
	}
	if fs.SalaryRange != nil {
		parts = append(parts, fmt.Sprintf("💰 %g-%g triệu", fs.SalaryRange.Min, fs.SalaryRange.Max))
	} else if fs.SalaryText != "" {
		parts = append(parts, "💰 "+fs.SalaryText)
	}
	if fs.FeaturedOnly {
		parts = append(parts, "⭐ nổi bật")
	}

	if len(parts) == 0 {
		return ""
	}
	return "_" + EscapeMarkdown(strings.Join(parts, " · ")) + "_"
}

func FormatWelcomeMessage(firstName string) string {
	name := firstName
	if name == "" {
		name = "bạn"
	}

	return fmt.Sprintf(`👋 Xin chào, *%s*\!

Mình là bot tìm việc của TopMarketingJobs\.

*Mình có thể:*
• Tìm việc marketing theo từ khóa hoặc đường dẫn tìm kiếm
• Gửi thông báo khi có việc mới phù hợp

*Lệnh:*
/jobs \<từ khóa\> \- tìm việc
/alert \- nhận thông báo cho lần tìm gần nhất
/alert off \- tắt thông báo
/alert status \- xem thông báo đang bật
/stop \- xóa dữ liệu của bạn
/help \- trợ giúp`, EscapeMarkdown(name))
}

func FormatHelpMessage() string {
	return `*📖 Trợ giúp*

/jobs content marketing \- tìm theo từ khóa
/jobs https://topmarketingjobs\.vn/jobs?location\=ha\-noi \- dán đường dẫn tìm kiếm từ web
/alert \- lưu lần tìm gần nhất làm thông báo việc mới
/alert off \- tắt thông báo
/alert status \- xem thông báo đang bật
/stop \- xóa dữ liệu của bạn

Dùng các nút bên dưới kết quả để chuyển trang hoặc đổi cách sắp xếp\.`
}

func FormatNoResultsMessage() string {
	return `😔 *Không tìm thấy việc làm phù hợp*

Hãy thử từ khóa khác hoặc bỏ bớt bộ lọc\.`
}

func FormatNoSearchMessage() string {
	return `ℹ️ Bạn chưa tìm kiếm lần nào\. Gõ /jobs \<từ khóa\> để bắt đầu\.`
}

func FormatAlertSavedMessage(fs search.FilterSet) string {
	summary := FormatFilterSummary(fs)
	if summary == "" {
		summary = "_tất cả việc làm_"
	}
	return "✅ *Đã bật thông báo việc mới*\n\n" + summary
}

func FormatAlertStatusMessage(fs search.FilterSet, lastCheck *time.Time, stats map[string]interface{}) string {
	var sb strings.Builder

	sb.WriteString("🔔 *Thông báo việc mới đang bật*\n\n")
	if summary := FormatFilterSummary(fs); summary != "" {
		sb.WriteString(summary)
	} else {
		sb.WriteString("_tất cả việc làm_")
	}
	sb.WriteString("\n\n")

	if lastCheck != nil {
		sb.WriteString(fmt.Sprintf("🕐 Lần kiểm tra gần nhất: %s\n", EscapeMarkdown(lastCheck.Format("02/01/2006 15:04"))))
	} else {
		sb.WriteString("🕐 Chưa kiểm tra lần nào\n")
	}

	if n, ok := stats["seen_jobs_count"].(int); ok {
		sb.WriteString(fmt.Sprintf("📨 Đã gửi: %d việc làm", n))
	}

	return sb.String()
}

func FormatAlertHeader(count int) string {
	return fmt.Sprintf("🔔 *Có %d việc làm mới phù hợp với bạn\\!*", count)
}

// EscapeMarkdown escapes special characters for Telegram MarkdownV2
func EscapeMarkdown(text string) string {
	// _ * [ ] ( ) ~ ` > # + - = | { } . !
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)

	return replacer.Replace(text)
}

// TruncateString cuts s to maxLen runes.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-3]) + "..."
}
