package model

// StudentGroup значение users.user_group для студентов
const StudentGroup = 4

// Recipient пользователь курса, подписанный на уведомления
type Recipient struct {
	UserID string `json:"user_id"`
	Email  string `json:"user_email"`
}
