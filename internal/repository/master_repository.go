package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/model"
	"github.com/Freeeeeet/grade_notifier/internal/repository/base"
)

// SweepLockKey ключ advisory lock, под которым выполняется рассылка
const SweepLockKey int64 = 0x5355424e4f5446 // "SUBNOTF"

var emailColumns = []string{"subject", "body", "created", "user_id", "email_address", "term", "course"}

// MasterRepository работает с главной базой submitty
type MasterRepository struct {
	*base.Repository
}

func NewMasterRepository(db base.DBTX) *MasterRepository {
	return &MasterRepository{Repository: base.NewRepository(db)}
}

// ActiveTerms получает семестры, окно которых содержит now
func (r *MasterRepository) ActiveTerms(ctx context.Context, now time.Time) ([]model.Term, error) {
	query := `
		SELECT term_id, start_date, end_date
		FROM terms
		WHERE start_date < $1 AND end_date > $1
		ORDER BY start_date DESC, term_id
	`

	rows, err := r.DB().Query(ctx, query, now)
	if err != nil {
		return nil, fmt.Errorf("get active terms: %w", err)
	}
	defer rows.Close()

	var terms []model.Term
	for rows.Next() {
		var term model.Term
		if err := rows.Scan(&term.ID, &term.StartDate, &term.EndDate); err != nil {
			return nil, fmt.Errorf("scan term: %w", err)
		}
		terms = append(terms, term)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate terms: %w", err)
	}

	return terms, nil
}

// CoursesForTerm получает курсы семестра
func (r *MasterRepository) CoursesForTerm(ctx context.Context, term string) ([]model.Course, error) {
	query := `
		SELECT term, course
		FROM courses
		WHERE term = $1
		ORDER BY course
	`

	rows, err := r.DB().Query(ctx, query, term)
	if err != nil {
		return nil, fmt.Errorf("get courses for term: %w", err)
	}
	defer rows.Close()

	var courses []model.Course
	for rows.Next() {
		var course model.Course
		if err := rows.Scan(&course.Term, &course.Course); err != nil {
			return nil, fmt.Errorf("scan course: %w", err)
		}
		courses = append(courses, course)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate courses: %w", err)
	}

	return courses, nil
}

// InsertEmails ставит письма в очередь одной вставкой
func (r *MasterRepository) InsertEmails(ctx context.Context, emails []model.Email) (int64, error) {
	if len(emails) == 0 {
		return 0, nil
	}

	rows := make([][]any, 0, len(emails))
	for _, e := range emails {
		rows = append(rows, []any{e.Subject, e.Body, e.Created, e.UserID, e.EmailAddress, e.Term, e.Course})
	}

	n, err := r.CopyRows(ctx, "emails", emailColumns, rows)
	if err != nil {
		return 0, fmt.Errorf("insert emails: %w", err)
	}

	return n, nil
}

// TryAdvisoryLock пытается взять сессионный advisory lock рассылки
func (r *MasterRepository) TryAdvisoryLock(ctx context.Context) (bool, error) {
	var locked bool
	if err := r.DB().QueryRow(ctx, `SELECT pg_try_advisory_lock($1)`, SweepLockKey).Scan(&locked); err != nil {
		return false, fmt.Errorf("try advisory lock: %w", err)
	}
	return locked, nil
}

// AdvisoryUnlock отпускает lock, взятый TryAdvisoryLock
func (r *MasterRepository) AdvisoryUnlock(ctx context.Context) error {
	var released bool
	if err := r.DB().QueryRow(ctx, `SELECT pg_advisory_unlock($1)`, SweepLockKey).Scan(&released); err != nil {
		return fmt.Errorf("advisory unlock: %w", err)
	}
	if !released {
		return fmt.Errorf("advisory lock was not held")
	}
	return nil
}
