package service

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotificationContent(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{
			name:  "short title kept",
			title: "HW 1",
			want:  "Grade Released: HW 1",
		},
		{
			name:  "exactly 40 characters kept",
			title: strings.Repeat("x", 24),
			want:  "Grade Released: " + strings.Repeat("x", 24),
		},
		{
			name:  "41 characters truncated",
			title: strings.Repeat("x", 25),
			want:  "Grade Released: " + strings.Repeat("x", 20) + "...",
		},
		{
			name:  "long title truncated",
			title: "Midterm Released to Everyone Now",
			want:  "Grade Released: Midterm Released to ...",
		},
		{
			name:  "multibyte characters counted as characters",
			title: strings.Repeat("é", 30),
			want:  "Grade Released: " + strings.Repeat("é", 20) + "...",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NotificationContent(tt.title)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, utf8.RuneCountInString(got), MaxNotificationContent)
		})
	}
}

func TestNotificationContent_TruncatedLength(t *testing.T) {
	got := NotificationContent(strings.Repeat("long title ", 10))
	assert.Equal(t, 39, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
}

func TestGradeableURL(t *testing.T) {
	assert.Equal(t,
		"https://submitty.example.edu/courses/20231/cs101/gradeable/g1",
		GradeableURL("https://submitty.example.edu", "20231", "cs101", "g1"))
	assert.Equal(t,
		"https://submitty.example.edu/courses/20231/cs101/gradeable/g1",
		GradeableURL("https://submitty.example.edu/", "20231", "cs101", "g1"))
}

func TestNotificationMetadata(t *testing.T) {
	meta, err := NotificationMetadata("https://submitty.example.edu/courses/20231/cs101/gradeable/g1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"url": "https://submitty.example.edu/courses/20231/cs101/gradeable/g1"}`, meta)
}

func TestEmail(t *testing.T) {
	assert.Equal(t, "[Submitty cs101] Grade Released: Midterm", EmailSubject("cs101", "Midterm"))

	body := EmailBody("cs101", "Midterm", "https://x/courses/20231/cs101/gradeable/g1")
	assert.True(t, strings.HasPrefix(body, "An Instructor has released scores in:\ncs101\nScores have been released for Midterm.\n\n"))
	assert.Contains(t, body, "Click here for more info: https://x/courses/20231/cs101/gradeable/g1\n")
	assert.True(t, strings.HasSuffix(body, "contact information for your teaching staff."))
}
