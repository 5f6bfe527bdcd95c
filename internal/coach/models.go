package coach

import "time"

const (
	Greeting    = "Hi! I'm your AI fitness coach. I can help you with nutrition advice, workout planning, and recovery tips. What would you like to know?"
	CannedReply = "Thanks for your question! Based on your recent activity, I recommend focusing on recovery and maintaining your current nutrition plan. Would you like specific meal suggestions?"
)

type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	FromUser  bool      `json:"is_user"`
	Timestamp time.Time `json:"timestamp"`
}

type SendRequest struct {
	Text string `json:"text"`
}

type SendResponse struct {
	Message Message `json:"message"`
	Reply   Message `json:"reply"`
}
