package handlers

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"topmarketingjobs/internal/bot/utils"
	"topmarketingjobs/internal/search"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// HandleCallback processes all callback queries from inline buttons
func HandleCallback(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			ctx.Logger.Warn("callback is nil")
			return nil
		}

		action, args := ParseCallback(cb.Data)

		ctx.Logger.Debug("routing callback",
			zap.String("action", action),
			zap.Strings("args", args),
			zap.Int64("user_id", c.Sender().ID),
		)

		switch action {
		case utils.CallbackPage:
			return handlePage(ctx, c, args)
		case utils.CallbackSort:
			return handleSort(ctx, c, args)
		case utils.CallbackAlert:
			if err := saveAlert(ctx, c); err != nil {
				return err
			}
			return c.Respond()
		case utils.CallbackNoop:
			return c.Respond()
		default:
			ctx.Logger.Warn("unknown callback action",
				zap.String("action", action),
				zap.String("data", cb.Data),
			)
			return c.Respond(&tele.CallbackResponse{Text: "❓ Thao tác không hợp lệ"})
		}
	}
}

// ParseCallback splits inline button data into its unique and arguments.
// Buttons built with ReplyMarkup.Data arrive as "\funique|arg|arg".
func ParseCallback(data string) (string, []string) {
	data = strings.TrimPrefix(data, "\f")
	if data == "" {
		return "", nil
	}

	parts := strings.Split(data, "|")
	return parts[0], parts[1:]
}

func handlePage(ctx *Context, c tele.Context, args []string) error {
	if len(args) < 1 {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Sai định dạng"})
	}

	requested, err := strconv.Atoi(args[0])
	if err != nil {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Sai định dạng"})
	}

	return reloadInPlace(ctx, c, func(reqCtx context.Context, session *search.Session[search.ListingRecord]) (search.ResultPage[search.ListingRecord], error) {
		return session.GoTo(reqCtx, requested)
	})
}

func handleSort(ctx *Context, c tele.Context, args []string) error {
	if len(args) < 1 {
		return c.Respond(&tele.CallbackResponse{Text: "❌ Sai định dạng"})
	}

	return reloadInPlace(ctx, c, func(reqCtx context.Context, session *search.Session[search.ListingRecord]) (search.ResultPage[search.ListingRecord], error) {
		return session.Change(reqCtx, search.KeySort, args[0])
	})
}

type sessionAction func(context.Context, *search.Session[search.ListingRecord]) (search.ResultPage[search.ListingRecord], error)

// reloadInPlace runs action on the chat session and edits the results
// message with the new page. After a restart the session is first rebuilt
// from the stored search.
func reloadInPlace(ctx *Context, c tele.Context, action sessionAction) error {
	chatID := c.Chat().ID
	session := ctx.Sessions.Get(chatID)

	reqCtx, cancel := context.WithTimeout(context.Background(), searchTimeout)
	defer cancel()

	if _, _, ok := session.Current(); !ok {
		fs, ok := storedSearch(ctx, chatID)
		if !ok {
			return c.Respond(&tele.CallbackResponse{Text: "⌛ Kết quả đã hết hạn, hãy tìm lại bằng /jobs"})
		}
		if _, err := session.Load(reqCtx, fs); err != nil {
			_ = searchFailed(ctx, chatID, err)
			return c.Respond()
		}
	}

	page, err := action(reqCtx, session)
	switch {
	case errors.Is(err, search.ErrPageOutOfRange):
		return c.Respond(&tele.CallbackResponse{Text: "❌ Trang không tồn tại"})
	case errors.Is(err, search.ErrUnknownKey):
		return c.Respond(&tele.CallbackResponse{Text: "❌ Sai định dạng"})
	case err != nil:
		_ = searchFailed(ctx, chatID, err)
		return c.Respond()
	}

	text, markup := renderPage(ctx, chatID, page)
	if err := c.Edit(text, markup, tele.ModeMarkdownV2, tele.NoPreview); err != nil {
		ctx.Logger.Warn("failed to edit message", zap.Error(err))
		if err := c.Send(text, markup, tele.ModeMarkdownV2, tele.NoPreview); err != nil {
			return err
		}
	}

	return c.Respond()
}
