package utils

import (
	"strconv"

	"topmarketingjobs/internal/models"
	"topmarketingjobs/internal/search"

	tele "gopkg.in/telebot.v3"
)

// Callback uniques of the inline buttons.
const (
	CallbackPage  = "page"
	CallbackSort  = "sort"
	CallbackAlert = "alert_save"
	CallbackNoop  = "noop"
)

// Reply keyboard labels.
const (
	BtnSearch = "🔍 Tìm việc"
	BtnAlert  = "🔔 Thông báo việc mới"
	BtnHelp   = "❓ Trợ giúp"
)

func MainMenuKeyboard() *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{ResizeKeyboard: true}

	menu.Reply(
		menu.Row(menu.Text(BtnSearch), menu.Text(BtnAlert)),
		menu.Row(menu.Text(BtnHelp)),
	)

	return menu
}

func RemoveKeyboard() *tele.ReplyMarkup {
	return &tele.ReplyMarkup{RemoveKeyboard: true}
}

func InlineJobKeyboard(jobURL string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}

	menu.Inline(
		menu.Row(menu.URL("🔗 Xem chi tiết", jobURL)),
	)

	return menu
}

// InlineSearchKeyboard renders the page window, prev/next and sort toggles of
// a result page. The current page and sort are shown but not clickable.
func InlineSearchKeyboard(page, totalPages int, sort search.SortBy, searchURL string) *tele.ReplyMarkup {
	menu := &tele.ReplyMarkup{}
	var rows []tele.Row

	if totalPages > 1 {
		var pages []tele.Btn
		for _, p := range search.PageWindow(page, totalPages) {
			label := strconv.Itoa(p)
			unique := CallbackPage
			if p == page {
				label = "· " + label + " ·"
				unique = CallbackNoop
			}
			pages = append(pages, menu.Data(label, unique, strconv.Itoa(p)))
		}
		rows = append(rows, menu.Row(pages...))

		var nav []tele.Btn
		if page > 1 {
			nav = append(nav, menu.Data("⬅️ Trước", CallbackPage, strconv.Itoa(page-1)))
		}
		if page < totalPages {
			nav = append(nav, menu.Data("Sau ➡️", CallbackPage, strconv.Itoa(page+1)))
		}
		if len(nav) > 0 {
			rows = append(rows, menu.Row(nav...))
		}
	}

	var sorts []tele.Btn
	for _, s := range []search.SortBy{search.SortRecent, search.SortRelevant, search.SortFeatured} {
		label := models.GetSortDisplayName(string(s))
		unique := CallbackSort
		if s == sort {
			label = "✓ " + label
			unique = CallbackNoop
		}
		sorts = append(sorts, menu.Data(label, unique, string(s)))
	}
	rows = append(rows, menu.Row(sorts...))

	bottom := []tele.Btn{menu.Data("🔔 Nhận thông báo", CallbackAlert)}
	if searchURL != "" {
		bottom = append(bottom, menu.URL("🌐 Mở trên web", searchURL))
	}
	rows = append(rows, menu.Row(bottom...))

	menu.Inline(rows...)
	return menu
}
