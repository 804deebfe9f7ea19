package domain

import (
	"time"

	"github.com/google/uuid"

	apperrors "github.com/qboard/qboard/internal/core/errors"
)

// Answer is a volunteer's reply to a question. It always belongs to
// exactly one question; deleting a question cascades to its answers.
type Answer struct {
	ID          int64
	QuestionID  int64
	Content     string
	DisplayName string
	UserID      *uuid.UUID
	CreatedAt   time.Time
}

// NewAnswer is a factory function to create a valid new answer.
// A nil userID means the answer is anonymous.
func NewAnswer(questionID int64, content, displayName string, userID *uuid.UUID) (*Answer, error) {
	if questionID <= 0 {
		return nil, apperrors.ErrQuestionIDRequired
	}
	if content == "" {
		return nil, apperrors.ErrContentRequired
	}
	if len(content) > MaxContentLength {
		return nil, apperrors.ErrContentTooLong
	}
	if displayName == "" {
		displayName = DefaultDisplayName
	}

	return &Answer{
		QuestionID:  questionID,
		Content:     content,
		DisplayName: displayName,
		UserID:      userID,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
