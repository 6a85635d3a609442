package handlers

import (
	"context"
	"time"

	"topmarketingjobs/internal/bot/utils"
	"topmarketingjobs/internal/models"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// /start command
func HandleStart(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		sender := c.Sender()

		ctx.Logger.Info("user started bot",
			zap.Int64("user_id", sender.ID),
			zap.String("username", sender.Username),
		)

		dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if _, err := ensureUser(dbCtx, ctx, sender); err != nil {
			return c.Send("😔 Lỗi khi đăng ký. Vui lòng thử lại sau.")
		}

		return c.Send(
			utils.FormatWelcomeMessage(sender.FirstName),
			utils.MainMenuKeyboard(),
			tele.ModeMarkdownV2,
		)
	}
}

// /stop forgets the user together with their alert and seen jobs.
func HandleStop(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		userID := c.Sender().ID

		dbCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := ctx.Store.DeleteUser(dbCtx, userID); err != nil {
			return c.Send("😔 Lỗi. Vui lòng thử lại sau.")
		}

		if err := clearUserState(ctx, userID); err != nil {
			ctx.Logger.Warn("failed to clear state", zap.Error(err))
		}

		return c.Send("👋 Đã xóa dữ liệu của bạn. Gõ /start để bắt đầu lại.", utils.RemoveKeyboard())
	}
}

func ensureUser(dbCtx context.Context, ctx *Context, sender *tele.User) (*models.User, error) {
	user, err := ctx.Store.GetOrCreateUser(dbCtx, &models.User{
		ID:        sender.ID,
		Username:  stringPtr(sender.Username),
		FirstName: stringPtr(sender.FirstName),
	})
	if err != nil {
		ctx.Logger.Error("failed to get or create user",
			zap.Int64("user_id", sender.ID),
			zap.Error(err),
		)
		return nil, err
	}
	return user, nil
}

func stringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
