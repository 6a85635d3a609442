package models

import "time"

// User is a Telegram chat user of the job alert bot.
type User struct {
	ID           int64      `db:"id"`
	Username     *string    `db:"username"`
	FirstName    *string    `db:"first_name"`
	CreatedAt    time.Time  `db:"created_at"`
	LastCheck    *time.Time `db:"last_check"`
	AlertEnabled bool       `db:"alert_enabled"`
	AlertQuery   string     `db:"alert_query"` // encoded filter query
}
