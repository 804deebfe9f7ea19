package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/qboard/qboard/internal/core/errors"
)

// QuestionStatus represents the moderation state of a question.
type QuestionStatus string

const (
	StatusPending   QuestionStatus = "Pending"
	StatusEscalated QuestionStatus = "Escalated"
	StatusAnswered  QuestionStatus = "Answered"
)

const (
	MaxContentLength     = 10000
	MaxDisplayNameLength = 100
	DefaultDisplayName   = "Anonymous"
)

// IsValidStatus reports whether s is one of the known question statuses.
func IsValidStatus(s string) bool {
	switch QuestionStatus(s) {
	case StatusPending, StatusEscalated, StatusAnswered:
		return true
	}
	return false
}

// Question is the core domain entity of the board.
type Question struct {
	ID          int64
	Content     string
	DisplayName string
	Status      QuestionStatus
	UserID      *uuid.UUID
	CreatedAt   time.Time
	Answers     []*Answer
}

// NewQuestion is a factory function to create a valid new question.
// A nil userID means the question is anonymous.
func NewQuestion(content, displayName string, userID *uuid.UUID) (*Question, error) {
	if content == "" {
		return nil, apperrors.ErrContentRequired
	}
	if len(content) > MaxContentLength {
		return nil, apperrors.ErrContentTooLong
	}
	if displayName == "" {
		displayName = DefaultDisplayName
	}

	return &Question{
		Content:     content,
		DisplayName: displayName,
		Status:      StatusPending,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
		Answers:     []*Answer{},
	}, nil
}

// RecordAnswer applies the single automatic lifecycle transition: a
// pending question escalates when its first answer arrives. It reports
// whether the status actually changed so callers know whether an
// update event is warranted. Recording further answers never changes
// the status.
func (q *Question) RecordAnswer() bool {
	if q.Status != StatusPending {
		return false
	}
	q.Status = StatusEscalated
	return true
}

// ApplyStatus sets the status explicitly. Unlike RecordAnswer this is
// never automatic: it models an authorized moderator action and always
// counts as a change. Value validation happens at the HTTP boundary.
func (q *Question) ApplyStatus(status QuestionStatus) {
	q.Status = status
}

// IsOwnedBy reports whether the question was created by the given user.
func (q *Question) IsOwnedBy(userID uuid.UUID) bool {
	return q.UserID != nil && *q.UserID == userID
}
