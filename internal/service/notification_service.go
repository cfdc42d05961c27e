package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/grade_notifier/internal/model"
	"github.com/Freeeeeet/grade_notifier/internal/pkg/clock"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GradeablesPerCourse сколько работ обрабатывается в одном курсе за запуск
const GradeablesPerCourse = 1

// ErrNoActiveTerm нет семестра, в окно которого попадает текущее время
var ErrNoActiveTerm = errors.New("no active term")

// MasterStore операции над главной базой
type MasterStore interface {
	ActiveTerms(ctx context.Context, now time.Time) ([]model.Term, error)
	CoursesForTerm(ctx context.Context, term string) ([]model.Course, error)
	InsertEmails(ctx context.Context, emails []model.Email) (int64, error)
}

// CourseStore операции над базой курса
type CourseStore interface {
	ReleasedGradeables(ctx context.Context, now time.Time, limit int) ([]model.Gradeable, error)
	InAppRecipients(ctx context.Context) ([]model.Recipient, error)
	EmailRecipients(ctx context.Context) ([]model.Recipient, error)
	InsertNotifications(ctx context.Context, notifications []model.Notification) (int64, error)
	MarkNotified(ctx context.Context, ids []string) error
}

// CourseOpener открывает базу курса. Возвращённый close закрывает соединение.
type CourseOpener func(ctx context.Context, course model.Course) (CourseStore, func(context.Context) error, error)

// CourseResult итог обработки одного курса
type CourseResult struct {
	Course        model.Course
	Gradeables    []string
	Notifications int64
	Emails        int64
}

// SweepResult итог одного прохода рассылки
type SweepResult struct {
	RunID   string
	Term    string
	Courses []CourseResult
}

// Gradeables общее число обработанных работ
func (r *SweepResult) Gradeables() int {
	total := 0
	for _, c := range r.Courses {
		total += len(c.Gradeables)
	}
	return total
}

type NotificationService struct {
	master     MasterStore
	openCourse CourseOpener
	baseURL    string
	clock      clock.Clock
	logger     *zap.Logger
}

func NewNotificationService(
	master MasterStore,
	openCourse CourseOpener,
	baseURL string,
	clk clock.Clock,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		master:     master,
		openCourse: openCourse,
		baseURL:    baseURL,
		clock:      clk,
		logger:     logger,
	}
}

// Sweep находит работы с опубликованными оценками и рассылает уведомления.
// Курсы обрабатываются последовательно; первая ошибка прерывает проход,
// уже выполненные вставки по предыдущим курсам остаются.
func (s *NotificationService) Sweep(ctx context.Context) (*SweepResult, error) {
	now := s.clock.Now()
	result := &SweepResult{RunID: uuid.NewString()}
	logger := s.logger.With(zap.String("run_id", result.RunID))

	terms, err := s.master.ActiveTerms(ctx, now)
	if err != nil {
		return result, err
	}
	if len(terms) == 0 {
		return result, ErrNoActiveTerm
	}
	if len(terms) > 1 {
		logger.Warn("Multiple active terms, using the first",
			zap.String("term", terms[0].ID),
			zap.Int("active_terms", len(terms)))
	}
	result.Term = terms[0].ID

	courses, err := s.master.CoursesForTerm(ctx, result.Term)
	if err != nil {
		return result, err
	}

	logger.Info("Starting notification sweep",
		zap.String("term", result.Term),
		zap.Int("courses", len(courses)))

	for _, course := range courses {
		courseResult, err := s.sweepCourse(ctx, course, now, logger)
		if err != nil {
			return result, fmt.Errorf("course %s/%s: %w", course.Term, course.Course, err)
		}
		result.Courses = append(result.Courses, *courseResult)
	}

	logger.Info("Notification sweep completed",
		zap.String("term", result.Term),
		zap.Int("gradeables", result.Gradeables()))

	return result, nil
}

func (s *NotificationService) sweepCourse(ctx context.Context, course model.Course, now time.Time, logger *zap.Logger) (*CourseResult, error) {
	store, closeCourse, err := s.openCourse(ctx, course)
	if err != nil {
		return nil, err
	}
	defer func() {
		if closeErr := closeCourse(ctx); closeErr != nil {
			logger.Warn("Failed to close course database",
				zap.String("course", course.Course),
				zap.Error(closeErr))
		}
	}()

	gradeables, err := store.ReleasedGradeables(ctx, now, GradeablesPerCourse)
	if err != nil {
		return nil, err
	}

	result := &CourseResult{Course: course}

	for _, g := range gradeables {
		notifications, emails, err := s.notifyGradeable(ctx, store, course, g, now)
		if err != nil {
			return nil, fmt.Errorf("gradeable %s: %w", g.ID, err)
		}

		result.Notifications += notifications
		result.Emails += emails
		result.Gradeables = append(result.Gradeables, g.ID)

		logger.Info("Gradeable notifications sent",
			zap.String("course", course.Course),
			zap.String("gradeable_id", g.ID),
			zap.Int64("notifications", notifications),
			zap.Int64("emails", emails))
	}

	if len(result.Gradeables) > 0 {
		if err := store.MarkNotified(ctx, result.Gradeables); err != nil {
			return nil, err
		}
	}

	return result, nil
}

func (s *NotificationService) notifyGradeable(ctx context.Context, store CourseStore, course model.Course, g model.Gradeable, now time.Time) (int64, int64, error) {
	url := GradeableURL(s.baseURL, course.Term, course.Course, g.ID)

	metadata, err := NotificationMetadata(url)
	if err != nil {
		return 0, 0, err
	}
	content := NotificationContent(g.Title)

	inApp, err := store.InAppRecipients(ctx)
	if err != nil {
		return 0, 0, err
	}

	notifications := make([]model.Notification, 0, len(inApp))
	for _, rcpt := range inApp {
		notifications = append(notifications, model.Notification{
			Component:  model.NotificationComponentGrading,
			Metadata:   metadata,
			Content:    content,
			CreatedAt:  now,
			FromUserID: model.NotificationSender,
			ToUserID:   rcpt.UserID,
		})
	}

	var inserted int64
	if len(notifications) > 0 {
		inserted, err = store.InsertNotifications(ctx, notifications)
		if err != nil {
			return 0, 0, err
		}
	}

	emailRecipients, err := store.EmailRecipients(ctx)
	if err != nil {
		return inserted, 0, err
	}

	subject := EmailSubject(course.Course, g.Title)
	body := EmailBody(course.Course, g.Title, url)

	emails := make([]model.Email, 0, len(emailRecipients))
	for _, rcpt := range emailRecipients {
		emails = append(emails, model.Email{
			Subject:      subject,
			Body:         body,
			Created:      now,
			UserID:       rcpt.UserID,
			EmailAddress: rcpt.Email,
			Term:         course.Term,
			Course:       course.Course,
		})
	}

	var queued int64
	if len(emails) > 0 {
		queued, err = s.master.InsertEmails(ctx, emails)
		if err != nil {
			return inserted, 0, err
		}
	}

	return inserted, queued, nil
}
