package handlers

import (
	"context"
	"strings"
	"time"

	"topmarketingjobs/internal/api/webhook"
	"topmarketingjobs/internal/bot/utils"
	"topmarketingjobs/internal/search"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /alert [off|status]
func HandleAlert(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		switch strings.ToLower(strings.TrimSpace(c.Message().Payload)) {
		case "off":
			return disableAlert(ctx, c)
		case "status":
			return alertStatus(ctx, c)
		default:
			return saveAlert(ctx, c)
		}
	}
}

// saveAlert turns the search on screen into the user's job alert.
func saveAlert(ctx *Context, c tele.Context) error {
	fs, ok := storedSearch(ctx, c.Chat().ID)
	if !ok {
		return c.Send(utils.FormatNoSearchMessage(), tele.ModeMarkdownV2)
	}

	fs = AlertFilters(fs)
	query := search.Encode(fs)

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := ensureUser(dbCtx, ctx, c.Sender())
	if err != nil {
		return c.Send("😔 Lỗi. Vui lòng thử lại sau.")
	}

	if err := ctx.Store.SetAlert(dbCtx, user.ID, query); err != nil {
		return c.Send("😔 Không lưu được thông báo. Vui lòng thử lại sau.")
	}

	if ctx.Webhook != nil {
		sent := ctx.Webhook.SendEvent(webhook.EventAlertSubscribed, map[string]any{
			"telegram_user_id": user.ID,
			"query":            query,
			"search_url":       utils.SearchURL(ctx.Config.PublicBaseURL, fs),
		})
		ctx.Logger.Debug("alert event", zap.Bool("sent", sent))
	}

	return c.Send(utils.FormatAlertSavedMessage(fs), utils.MainMenuKeyboard(), tele.ModeMarkdownV2)
}

func disableAlert(ctx *Context, c tele.Context) error {
	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := ctx.Store.SetAlert(dbCtx, c.Sender().ID, ""); err != nil {
		return c.Send("😔 Lỗi. Vui lòng thử lại sau.")
	}

	return c.Send("🔕 Đã tắt thông báo việc mới.", utils.MainMenuKeyboard())
}

// AlertFilters normalises a search for alerting: alerts always look at the
// newest listings from the first page.
func AlertFilters(fs search.FilterSet) search.FilterSet {
	fs.Page = 1
	fs.SortBy = search.SortRecent
	return fs
}

func alertStatus(ctx *Context, c tele.Context) error {
	userID := c.Sender().ID

	dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	user, err := ctx.Store.GetUser(dbCtx, userID)
	if err != nil {
		return c.Send("😔 Lỗi. Vui lòng thử lại sau.")
	}
	if user == nil || !user.AlertEnabled {
		return c.Send("🔕 Bạn chưa bật thông báo việc mới. Gõ /alert sau khi tìm kiếm để bật.")
	}

	stats, err := ctx.Store.GetUserStats(dbCtx, userID)
	if err != nil {
		ctx.Logger.Error("failed to get user stats",
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
		stats = map[string]interface{}{}
	}

	fs, err := search.Decode(user.AlertQuery)
	if err != nil {
		ctx.Logger.Warn("alert query partly ignored", zap.Int64("user_id", userID), zap.Error(err))
	}

	return c.Send(utils.FormatAlertStatusMessage(fs, user.LastCheck, stats), tele.ModeMarkdownV2)
}
