package model

import "time"

const (
	NotificationComponentGrading = "grading"
	NotificationSender           = "submitty-admin"
)

// Notification строка таблицы notifications в базе курса
type Notification struct {
	Component  string    `json:"component"`
	Metadata   string    `json:"metadata"` // JSON вида {"url": "..."}
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
	FromUserID string    `json:"from_user_id"`
	ToUserID   string    `json:"to_user_id"`
}

// Email строка очереди emails в главной базе
type Email struct {
	Subject      string    `json:"subject"`
	Body         string    `json:"body"`
	Created      time.Time `json:"created"`
	UserID       string    `json:"user_id"`
	EmailAddress string    `json:"email_address"`
	Term         string    `json:"term"`
	Course       string    `json:"course"`
}
