package handlers

// LoginRequest is the request body for admin login
type LoginRequest struct {
	Password string `json:"password"`
}

// BindMessageRequest binds a platform message id to a bracket entry
type BindMessageRequest struct {
	ChannelID string `json:"channel_id"`
	ThreadID  string `json:"thread_id,omitempty"`
	MessageID string `json:"message_id"`
	Index     int    `json:"index"`
}
