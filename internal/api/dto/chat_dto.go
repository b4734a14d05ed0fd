package dto

// ChatRequest carries one user utterance. An empty session_id starts a
// new session.
type ChatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// ChatResponse carries the bot reply.
type ChatResponse struct {
	SessionID  string `json:"session_id"`
	Reply      string `json:"reply"`
	Suspicious bool   `json:"suspicious"`
}
