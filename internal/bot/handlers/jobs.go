package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"topmarketingjobs/internal/bot/utils"
	"topmarketingjobs/internal/search"
	"topmarketingjobs/internal/storage/redis"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const searchTimeout = 15 * time.Second

// /jobs <keywords | search link>
func HandleJobs(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		payload := strings.TrimSpace(c.Message().Payload)

		if payload == "" {
			fs, ok := storedSearch(ctx, c.Chat().ID)
			if !ok {
				return askKeywords(ctx, c)
			}
			return runSearch(ctx, c, fs)
		}

		fs, err := ParseSearchInput(payload)
		if err != nil {
			ctx.Logger.Warn("search input partly ignored",
				zap.Int64("chat_id", c.Chat().ID),
				zap.String("input", payload),
				zap.Error(err),
			)
		}

		return runSearch(ctx, c, fs)
	}
}

// ParseSearchInput turns what the user typed after /jobs into filters. A
// link copied from the website (or a bare query string) is decoded as is;
// anything else is a keyword search.
func ParseSearchInput(text string) (search.FilterSet, error) {
	text = strings.TrimSpace(text)

	switch {
	case text == "":
		return search.NewFilterSet(), nil
	case strings.HasPrefix(text, "http://"), strings.HasPrefix(text, "https://"):
		u, err := url.Parse(text)
		if err != nil {
			return search.NewFilterSet(), fmt.Errorf("parse link: %w", err)
		}
		return search.Decode(u.RawQuery)
	case strings.HasPrefix(text, "?"):
		return search.Decode(text)
	case strings.Contains(text, "=") && !strings.ContainsAny(text, " \t"):
		return search.Decode(text)
	}

	fs, err := search.NewFilterSet().Update(search.KeyQuery, text)
	return fs, err
}

// runSearch loads fs in the chat session and sends the page as a new message.
func runSearch(ctx *Context, c tele.Context, fs search.FilterSet) error {
	chatID := c.Chat().ID

	reqCtx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	page, err := ctx.Sessions.Get(chatID).Load(reqCtx, fs)
	if err != nil {
		return searchFailed(ctx, chatID, err)
	}

	text, markup := renderPage(ctx, chatID, page)
	return c.Send(text, markup, tele.ModeMarkdownV2, tele.NoPreview)
}

// renderPage stores the search now on screen and builds the message for it.
func renderPage(ctx *Context, chatID int64, page search.ResultPage[search.ListingRecord]) (string, *tele.ReplyMarkup) {
	_, fs, _ := ctx.Sessions.Get(chatID).Current()
	fs.Page = page.Page

	saveSearch(ctx, chatID, fs)

	base := ctx.Config.PublicBaseURL
	text := utils.FormatResultsPage(page, fs, func(id string) string {
		return utils.JobURL(base, id)
	})
	markup := utils.InlineSearchKeyboard(page.Page, page.TotalPages(), fs.SortBy, utils.SearchURL(base, fs))

	return text, markup
}

// searchFailed logs a failed load. The session has already told the user.
func searchFailed(ctx *Context, chatID int64, err error) error {
	if errors.Is(err, search.ErrStaleResult) {
		ctx.Logger.Debug("stale search result dropped", zap.Int64("chat_id", chatID))
		return nil
	}

	ctx.Logger.Error("search failed",
		zap.Int64("chat_id", chatID),
		zap.Error(err),
	)
	return nil
}

func saveSearch(ctx *Context, chatID int64, fs search.FilterSet) {
	cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := ctx.Cache.SetSearchState(cacheCtx, chatID, search.Encode(fs)); err != nil {
		ctx.Logger.Warn("failed to save search state",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// storedSearch returns the last search of a chat, if any.
func storedSearch(ctx *Context, chatID int64) (search.FilterSet, bool) {
	cacheCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	query, err := ctx.Cache.GetSearchState(cacheCtx, chatID)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			ctx.Logger.Warn("failed to load search state",
				zap.Int64("chat_id", chatID),
				zap.Error(err),
			)
		}
		return search.FilterSet{}, false
	}

	fs, err := search.Decode(query)
	if err != nil {
		ctx.Logger.Warn("stored search partly ignored",
			zap.Int64("chat_id", chatID),
			zap.String("query", query),
			zap.Error(err),
		)
	}

	return fs, true
}

func askKeywords(ctx *Context, c tele.Context) error {
	if err := setUserState(ctx, c.Sender().ID, StateAwaitingKeywords); err != nil {
		ctx.Logger.Warn("failed to set user state", zap.Error(err))
	}

	return c.Send(
		"🔍 Nhập từ khóa bạn muốn tìm (ví dụ: *content marketing*) hoặc dán đường dẫn tìm kiếm từ website\\.",
		utils.RemoveKeyboard(),
		tele.ModeMarkdownV2,
	)
}
