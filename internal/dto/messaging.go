package dto

// SendMessageRequest captures POST /api/messages, either as JSON or as multipart form fields.
type SendMessageRequest struct {
	Sender   string `json:"sender" form:"sender"`
	Receiver string `json:"receiver" form:"receiver" validate:"required"`
	Subject  string `json:"subject" form:"subject" validate:"required"`
	Message  string `json:"message" form:"message" validate:"required"`
	Priority string `json:"priority" form:"priority" validate:"omitempty,oneof=Normal Urgent"`
	Category string `json:"category" form:"category"`
}

// ReplyRequest captures POST /api/messages/:id/replies.
type ReplyRequest struct {
	Sender  string `json:"sender"`
	Message string `json:"message" validate:"required"`
}

// CreateNotificationRequest captures POST /api/notifications.
type CreateNotificationRequest struct {
	Type     string `json:"type" validate:"required,oneof=announcement event"`
	Message  string `json:"message" validate:"required"`
	Date     string `json:"date" validate:"required"`
	Audience string `json:"audience" validate:"omitempty,oneof=All Students Teachers"`
}
