package handlers

import (
	"context"
	"sync"
	"time"

	"topmarketingjobs/internal/search"

	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"
)

// MessageSender is the part of *tele.Bot used to push messages to a chat.
type MessageSender interface {
	Send(to tele.Recipient, what interface{}, opts ...interface{}) (*tele.Message, error)
}

type chatSession struct {
	session  *search.Session[search.ListingRecord]
	lastUsed time.Time
}

// Sessions keeps one search session per chat so that a slow page load can
// never overwrite the answer to a newer button press.
type Sessions struct {
	search search.SearchFunc[search.ListingRecord]
	sender MessageSender
	logger *zap.Logger
	now    func() time.Time

	mu     sync.Mutex
	byChat map[int64]*chatSession
}

func NewSessions(fn search.SearchFunc[search.ListingRecord], sender MessageSender, logger *zap.Logger) *Sessions {
	return &Sessions{
		search: fn,
		sender: sender,
		logger: logger,
		now:    time.Now,
		byChat: make(map[int64]*chatSession),
	}
}

func (s *Sessions) Get(chatID int64) *search.Session[search.ListingRecord] {
	s.mu.Lock()
	defer s.mu.Unlock()

	cs, ok := s.byChat[chatID]
	if !ok {
		notifier := &chatNotifier{sender: s.sender, chat: &tele.Chat{ID: chatID}, logger: s.logger}
		cs = &chatSession{session: search.NewSession(s.search, notifier)}
		s.byChat[chatID] = cs
	}
	cs.lastUsed = s.now()

	return cs.session
}

// Prune drops sessions idle for longer than idle and returns how many were
// removed. A pruned chat is restored from its stored search on next use.
func (s *Sessions) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for chatID, cs := range s.byChat {
		if cs.lastUsed.Before(cutoff) {
			delete(s.byChat, chatID)
			removed++
		}
	}

	return removed
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byChat)
}

type chatNotifier struct {
	sender MessageSender
	chat   *tele.Chat
	logger *zap.Logger
}

func (n *chatNotifier) Notify(_ context.Context, message string) {
	if n.sender == nil {
		return
	}
	if _, err := n.sender.Send(n.chat, "⚠️ "+message); err != nil {
		n.logger.Warn("failed to notify chat",
			zap.Int64("chat_id", n.chat.ID),
			zap.Error(err),
		)
	}
}
