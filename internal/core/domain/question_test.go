package domain_test

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qboard/qboard/internal/core/domain"
	apperrors "github.com/qboard/qboard/internal/core/errors"
)

func TestIsValidStatus(t *testing.T) {
	tests := []struct {
		name   string
		status string
		want   bool
	}{
		{"Pending is valid", "Pending", true},
		{"Escalated is valid", "Escalated", true},
		{"Answered is valid", "Answered", true},
		{"empty is invalid", "", false},
		{"lowercase is invalid", "pending", false},
		{"Closed is invalid", "Closed", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, domain.IsValidStatus(tt.status))
		})
	}
}

func TestNewQuestion(t *testing.T) {
	authorID := uuid.New()

	t.Run("valid question", func(t *testing.T) {
		question, err := domain.NewQuestion("How does this work?", "Alice", &authorID)

		require.NoError(t, err)
		assert.Equal(t, "How does this work?", question.Content)
		assert.Equal(t, "Alice", question.DisplayName)
		assert.Equal(t, domain.StatusPending, question.Status)
		assert.Equal(t, &authorID, question.UserID)
		assert.NotNil(t, question.Answers)
		assert.Empty(t, question.Answers)
	})

	t.Run("anonymous question gets default display name", func(t *testing.T) {
		question, err := domain.NewQuestion("Who am I?", "", nil)

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDisplayName, question.DisplayName)
		assert.Nil(t, question.UserID)
	})

	t.Run("empty content", func(t *testing.T) {
		question, err := domain.NewQuestion("", "Alice", nil)

		assert.Nil(t, question)
		assert.ErrorIs(t, err, apperrors.ErrContentRequired)
	})

	t.Run("content too long", func(t *testing.T) {
		question, err := domain.NewQuestion(strings.Repeat("a", domain.MaxContentLength+1), "Alice", nil)

		assert.Nil(t, question)
		assert.ErrorIs(t, err, apperrors.ErrContentTooLong)
	})

	t.Run("content at the limit is accepted", func(t *testing.T) {
		_, err := domain.NewQuestion(strings.Repeat("a", domain.MaxContentLength), "Alice", nil)
		assert.NoError(t, err)
	})
}

func TestQuestion_RecordAnswer(t *testing.T) {
	tests := []struct {
		name          string
		initialStatus domain.QuestionStatus
		wantChanged   bool
		wantStatus    domain.QuestionStatus
	}{
		{"pending escalates on first answer", domain.StatusPending, true, domain.StatusEscalated},
		{"escalated stays escalated", domain.StatusEscalated, false, domain.StatusEscalated},
		{"answered stays answered", domain.StatusAnswered, false, domain.StatusAnswered},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			question := &domain.Question{ID: 1, Status: tt.initialStatus}

			changed := question.RecordAnswer()

			assert.Equal(t, tt.wantChanged, changed)
			assert.Equal(t, tt.wantStatus, question.Status)
		})
	}
}

func TestQuestion_RecordAnswer_OnlyFirstAnswerEscalates(t *testing.T) {
	question := &domain.Question{ID: 1, Status: domain.StatusPending}

	assert.True(t, question.RecordAnswer())
	assert.False(t, question.RecordAnswer())
	assert.False(t, question.RecordAnswer())
	assert.Equal(t, domain.StatusEscalated, question.Status)
}

func TestQuestion_ApplyStatus(t *testing.T) {
	// Explicit moderator changes are unconditional, including moving a
	// question back to Pending.
	question := &domain.Question{ID: 1, Status: domain.StatusEscalated}

	question.ApplyStatus(domain.StatusAnswered)
	assert.Equal(t, domain.StatusAnswered, question.Status)

	question.ApplyStatus(domain.StatusPending)
	assert.Equal(t, domain.StatusPending, question.Status)
}

func TestQuestion_IsOwnedBy(t *testing.T) {
	ownerID := uuid.New()
	otherID := uuid.New()

	owned := &domain.Question{ID: 1, UserID: &ownerID}
	assert.True(t, owned.IsOwnedBy(ownerID))
	assert.False(t, owned.IsOwnedBy(otherID))

	anonymous := &domain.Question{ID: 2}
	assert.False(t, anonymous.IsOwnedBy(ownerID))
}

func TestNewAnswer(t *testing.T) {
	authorID := uuid.New()

	t.Run("valid answer", func(t *testing.T) {
		answer, err := domain.NewAnswer(1, "Here is how", "Bob", &authorID)

		require.NoError(t, err)
		assert.Equal(t, int64(1), answer.QuestionID)
		assert.Equal(t, "Here is how", answer.Content)
		assert.Equal(t, "Bob", answer.DisplayName)
	})

	t.Run("anonymous answer gets default display name", func(t *testing.T) {
		answer, err := domain.NewAnswer(1, "Anonymously helpful", "", nil)

		require.NoError(t, err)
		assert.Equal(t, domain.DefaultDisplayName, answer.DisplayName)
		assert.Nil(t, answer.UserID)
	})

	t.Run("missing question id", func(t *testing.T) {
		answer, err := domain.NewAnswer(0, "Orphan", "Bob", nil)

		assert.Nil(t, answer)
		assert.ErrorIs(t, err, apperrors.ErrQuestionIDRequired)
	})

	t.Run("empty content", func(t *testing.T) {
		answer, err := domain.NewAnswer(1, "", "Bob", nil)

		assert.Nil(t, answer)
		assert.ErrorIs(t, err, apperrors.ErrContentRequired)
	})

	t.Run("content too long", func(t *testing.T) {
		answer, err := domain.NewAnswer(1, strings.Repeat("a", domain.MaxContentLength+1), "Bob", nil)

		assert.Nil(t, answer)
		assert.ErrorIs(t, err, apperrors.ErrContentTooLong)
	})
}
