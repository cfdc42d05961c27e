package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/model"
	"github.com/Freeeeeet/grade_notifier/internal/repository/base"
)

var notificationColumns = []string{"component", "metadata", "content", "created_at", "from_user_id", "to_user_id"}

// CourseRepository работает с базой отдельного курса
type CourseRepository struct {
	*base.Repository
}

func NewCourseRepository(db base.DBTX) *CourseRepository {
	return &CourseRepository{Repository: base.NewRepository(db)}
}

// ReleasedGradeables получает видимые студентам работы с уже опубликованными
// оценками, по которым уведомления ещё не отправлялись
func (r *CourseRepository) ReleasedGradeables(ctx context.Context, now time.Time, limit int) ([]model.Gradeable, error) {
	query := `
		SELECT gradeable.g_id, gradeable.g_title, gradeable.g_grade_released_date
		FROM electronic_gradeable
		JOIN gradeable ON gradeable.g_id = electronic_gradeable.g_id
		WHERE gradeable.g_grade_released_date < $1
			AND electronic_gradeable.eg_student_view = true
			AND gradeable.g_notification_state = false
		ORDER BY gradeable.g_grade_released_date, gradeable.g_id
		LIMIT $2
	`

	rows, err := r.DB().Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get released gradeables: %w", err)
	}
	defer rows.Close()

	var gradeables []model.Gradeable
	for rows.Next() {
		g := model.Gradeable{StudentView: true}
		if err := rows.Scan(&g.ID, &g.Title, &g.GradeReleasedDate); err != nil {
			return nil, fmt.Errorf("scan gradeable: %w", err)
		}
		gradeables = append(gradeables, g)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gradeables: %w", err)
	}

	return gradeables, nil
}

// InAppRecipients студенты, включившие уведомления на сайте
func (r *CourseRepository) InAppRecipients(ctx context.Context) ([]model.Recipient, error) {
	query := `
		SELECT users.user_id, users.user_email
		FROM users
		JOIN notification_settings ON notification_settings.user_id = users.user_id
		WHERE notification_settings.all_released_grades = true AND users.user_group = $1
		ORDER BY users.user_id
	`
	return r.recipients(ctx, "in-app", query)
}

// EmailRecipients студенты, включившие уведомления по почте
func (r *CourseRepository) EmailRecipients(ctx context.Context) ([]model.Recipient, error) {
	query := `
		SELECT users.user_id, users.user_email
		FROM users
		JOIN notification_settings ON notification_settings.user_id = users.user_id
		WHERE notification_settings.all_released_grades_email = true AND users.user_group = $1
		ORDER BY users.user_id
	`
	return r.recipients(ctx, "email", query)
}

func (r *CourseRepository) recipients(ctx context.Context, kind, query string) ([]model.Recipient, error) {
	rows, err := r.DB().Query(ctx, query, model.StudentGroup)
	if err != nil {
		return nil, fmt.Errorf("get %s recipients: %w", kind, err)
	}
	defer rows.Close()

	var recipients []model.Recipient
	for rows.Next() {
		var rcpt model.Recipient
		var email *string
		if err := rows.Scan(&rcpt.UserID, &email); err != nil {
			return nil, fmt.Errorf("scan %s recipient: %w", kind, err)
		}
		if email != nil {
			rcpt.Email = *email
		}
		recipients = append(recipients, rcpt)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s recipients: %w", kind, err)
	}

	return recipients, nil
}

// InsertNotifications вставляет уведомления одним COPY без лимита параметров
func (r *CourseRepository) InsertNotifications(ctx context.Context, notifications []model.Notification) (int64, error) {
	if len(notifications) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(notifications))
	for _, n := range notifications {
		rows = append(rows, []any{n.Component, n.Metadata, n.Content, n.CreatedAt, n.FromUserID, n.ToUserID})
	}

	n, err := r.CopyRows(ctx, "notifications", notificationColumns, rows)
	if err != nil {
		return 0, fmt.Errorf("insert notifications: %w", err)
	}

	return n, nil
}

// MarkNotified помечает работы как разосланные
func (r *CourseRepository) MarkNotified(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `
		UPDATE gradeable
		SET g_notification_state = true
		WHERE g_id = ANY($1)
	`

	if _, err := r.ExecAffected(ctx, query, ids); err != nil {
		return fmt.Errorf("mark gradeables notified: %w", err)
	}

	return nil
}
