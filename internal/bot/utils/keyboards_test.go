package utils

import (
	"strings"
	"testing"

	"topmarketingjobs/internal/search"

	tele "gopkg.in/telebot.v3"
)

func buttonTexts(row []tele.InlineButton) []string {
	var out []string
	for _, b := range row {
		out = append(out, b.Text)
	}
	return out
}

func TestInlineSearchKeyboard(t *testing.T) {
	markup := InlineSearchKeyboard(2, 3, search.SortRelevant, "https://example.com/jobs?page=2")
	rows := markup.InlineKeyboard

	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4 (pages, nav, sort, bottom)", len(rows))
	}

	pages := rows[0]
	if got := strings.Join(buttonTexts(pages), ","); got != "1,· 2 ·,3" {
		t.Errorf("page row = %q", got)
	}
	if pages[1].Unique != CallbackNoop {
		t.Errorf("current page button unique = %q, want noop", pages[1].Unique)
	}
	if pages[2].Unique != CallbackPage || pages[2].Data != "3" {
		t.Errorf("page 3 button = %q|%q", pages[2].Unique, pages[2].Data)
	}

	if nav := rows[1]; len(nav) != 2 {
		t.Errorf("nav row has %d buttons, want prev and next", len(nav))
	}

	sorts := rows[2]
	if len(sorts) != 3 {
		t.Fatalf("sort row has %d buttons", len(sorts))
	}
	if !strings.HasPrefix(sorts[1].Text, "✓ ") {
		t.Errorf("active sort not marked: %q", sorts[1].Text)
	}
	if sorts[0].Unique != CallbackSort || sorts[0].Data != "recent" {
		t.Errorf("sort button = %q|%q", sorts[0].Unique, sorts[0].Data)
	}

	bottom := rows[3]
	if len(bottom) != 2 || bottom[1].URL == "" {
		t.Errorf("bottom row = %+v, want alert and web link", bottom)
	}
}

func TestInlineSearchKeyboardSinglePage(t *testing.T) {
	markup := InlineSearchKeyboard(1, 1, search.SortRecent, "")
	rows := markup.InlineKeyboard

	if len(rows) != 2 {
		t.Fatalf("rows = %d, want sort and bottom only", len(rows))
	}
	if len(rows[1]) != 1 {
		t.Errorf("bottom row without link = %d buttons", len(rows[1]))
	}
}

func TestInlineSearchKeyboardEdges(t *testing.T) {
	first := InlineSearchKeyboard(1, 7, search.SortRecent, "")
	if nav := first.InlineKeyboard[1]; len(nav) != 1 || nav[0].Data != "2" {
		t.Errorf("first page nav = %+v, want next only", nav)
	}
	if got := strings.Join(buttonTexts(first.InlineKeyboard[0]), ","); got != "· 1 ·,2,3,4,5" {
		t.Errorf("first page window = %q", got)
	}

	last := InlineSearchKeyboard(7, 7, search.SortRecent, "")
	if nav := last.InlineKeyboard[1]; len(nav) != 1 || nav[0].Data != "6" {
		t.Errorf("last page nav = %+v, want prev only", nav)
	}
}
