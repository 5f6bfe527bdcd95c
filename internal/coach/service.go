package coach

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrEmptyMessage = errors.New("message text required")

// Service keeps the chat log, which starts with the coach's greeting.
type Service struct {
	responder Responder
	now       func() time.Time

	mu       sync.Mutex
	messages []Message
}

func NewService(responder Responder, now func() time.Time) *Service {
	if responder == nil {
		responder = CannedResponder{}
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		responder: responder,
		now:       now,
		messages:  []Message{{ID: uuid.NewString(), Text: Greeting, Timestamp: now()}},
	}
}

func (s *Service) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// Send appends the user's message, asks the responder, and appends the
// reply. A failed reply keeps the user's message in the log.
func (s *Service) Send(ctx context.Context, text string) (SendResponse, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return SendResponse{}, ErrEmptyMessage
	}

	s.mu.Lock()
	msg := Message{ID: uuid.NewString(), Text: text, FromUser: true, Timestamp: s.now()}
	s.messages = append(s.messages, msg)
	history := make([]Message, len(s.messages))
	copy(history, s.messages)
	s.mu.Unlock()

	reply, err := s.responder.Reply(ctx, history, text)
	if err != nil {
		return SendResponse{Message: msg}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	out := Message{ID: uuid.NewString(), Text: reply, Timestamp: s.now()}
	s.messages = append(s.messages, out)
	return SendResponse{Message: msg, Reply: out}, nil
}
