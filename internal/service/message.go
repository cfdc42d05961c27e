package service

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MaxNotificationContent максимальная длина текста уведомления на сайте
	MaxNotificationContent = 40

	truncatedContentLength = 36
	ellipsis               = "..."
)

const emailBodyTemplate = "An Instructor has released scores in:\n%s\nScores have been released for %s.\n\n" +
	"Author: System\nClick here for more info: %s\n\n--\n" +
	"NOTE: This is an automated email notification, which is unable to receive replies.\n" +
	"Please refer to the course syllabus for contact information for your teaching staff."

// GradeableURL ссылка на страницу работы
func GradeableURL(baseURL, term, course, gradeableID string) string {
	return fmt.Sprintf("%s/courses/%s/%s/gradeable/%s", strings.TrimRight(baseURL, "/"), term, course, gradeableID)
}

// NotificationMetadata JSON с url для строки notifications
func NotificationMetadata(url string) (string, error) {
	data, err := json.Marshal(struct {
		URL string `json:"url"`
	}{URL: url})
	if err != nil {
		return "", fmt.Errorf("marshal notification metadata: %w", err)
	}
	return string(data), nil
}

// NotificationContent текст уведомления, обрезанный до 36 символов + "..." если длиннее 40
func NotificationContent(title string) string {
	content := "Grade Released: " + title
	if utf8.RuneCountInString(content) <= MaxNotificationContent {
		return content
	}
	runes := []rune(content)
	return string(runes[:truncatedContentLength]) + ellipsis
}

func EmailSubject(course, title string) string {
	return fmt.Sprintf("[Submitty %s] Grade Released: %s", course, title)
}

func EmailBody(course, title, url string) string {
	return fmt.Sprintf(emailBodyTemplate, course, title, url)
}
