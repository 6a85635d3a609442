package handlers

import (
	"context"
	"errors"
	"strings"
	"time"

	"topmarketingjobs/internal/bot/utils"
	"topmarketingjobs/internal/storage/redis"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// User states for conversation flow
const (
	StateIdle             = ""
	StateAwaitingKeywords = "awaiting_keywords"
)

const (
	stateKey = "state"
	stateTTL = 30 * time.Minute
)

// HandleText processes all text messages
func HandleText(ctx *Context) tele.HandlerFunc {
	return func(c tele.Context) error {
		text := strings.TrimSpace(c.Text())
		userID := c.Sender().ID

		state, err := getUserState(ctx, userID)
		if err != nil {
			ctx.Logger.Warn("failed to get user state", zap.Error(err))
			state = StateIdle
		}

		switch text {
		case utils.BtnSearch:
			return askKeywords(ctx, c)
		case utils.BtnAlert:
			return saveAlert(ctx, c)
		case utils.BtnHelp:
			return HandleHelp(ctx)(c)
		}

		if state == StateAwaitingKeywords {
			if err := clearUserState(ctx, userID); err != nil {
				ctx.Logger.Warn("failed to clear state", zap.Error(err))
			}

			fs, err := ParseSearchInput(text)
			if err != nil {
				ctx.Logger.Warn("search input partly ignored",
					zap.Int64("user_id", userID),
					zap.String("input", text),
					zap.Error(err),
				)
			}
			return runSearch(ctx, c, fs)
		}

		return c.Reply("Hãy dùng các nút trong menu hoặc lệnh /jobs", utils.MainMenuKeyboard())
	}
}

func setUserState(ctx *Context, userID int64, state string) error {
	return ctx.Cache.SetTempData(context.Background(), userID, stateKey, state, stateTTL)
}

func getUserState(ctx *Context, userID int64) (string, error) {
	var state string
	err := ctx.Cache.GetTempData(context.Background(), userID, stateKey, &state)
	if errors.Is(err, redis.ErrCacheMiss) {
		return StateIdle, nil
	}
	return state, err
}

func clearUserState(ctx *Context, userID int64) error {
	return ctx.Cache.DeleteTempData(context.Background(), userID, stateKey)
}
