package model

import "time"

type Gradeable struct {
	ID                string    `json:"g_id"`
	Title             string    `json:"g_title"`
	GradeReleasedDate time.Time `json:"g_grade_released_date"`
	StudentView       bool      `json:"eg_student_view"`
	NotificationSent  bool      `json:"g_notification_state"`
}
