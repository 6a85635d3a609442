package middleware

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

const (
	MaxRequestsPerMinute = 50
)

// Counter counts requests of a subject in the current rate limit window.
type Counter interface {
	IncrementRateLimit(ctx context.Context, subject string) (int64, error)
}

func RateLimit(counter Counter, logger *zap.Logger) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			count, err := counter.IncrementRateLimit(ctx, fmt.Sprintf("tg:%d", user.ID))
			if err != nil {
				logger.Error("failed to check rate limit",
					zap.Int64("user_id", user.ID),
					zap.Error(err),
				)
				return next(c)
			}

			if count > MaxRequestsPerMinute {
				logger.Warn("rate limit exceeded",
					zap.Int64("user_id", user.ID),
					zap.Int64("count", count),
				)

				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: "⚠️ Bạn thao tác quá nhanh, hãy đợi một phút."})
				}

				return c.Reply(fmt.Sprintf(
					"⚠️ Bạn đã gửi quá nhiều yêu cầu. Vui lòng đợi một phút.\n"+
						"Tối đa: %d yêu cầu mỗi phút.",
					MaxRequestsPerMinute,
				))
			}

			return next(c)
		}
	}
}
