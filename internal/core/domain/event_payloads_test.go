package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qboard/qboard/internal/core/domain"
)

func TestNewQuestionEvent_WireShape(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	question := &domain.Question{
		ID:          42,
		Content:     "What is the answer?",
		DisplayName: "Deep Thought",
		Status:      domain.StatusPending,
		CreatedAt:   createdAt,
		Answers:     []*domain.Answer{{ID: 1}},
	}

	raw, err := json.Marshal(domain.NewQuestionEvent(question))
	require.NoError(t, err)

	// Answers is always the empty list on the wire, even when the
	// in-memory question already has answers attached.
	assert.JSONEq(t, `{
		"type": "new_question",
		"data": {
			"id": 42,
			"content": "What is the answer?",
			"status": "Pending",
			"created_at": "2025-03-14T09:26:53Z",
			"display_name": "Deep Thought",
			"answers": []
		}
	}`, string(raw))
}

func TestNewAnswerEvent_WireShape(t *testing.T) {
	createdAt := time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
	answer := &domain.Answer{
		ID:          7,
		QuestionID:  42,
		Content:     "Forty-two",
		DisplayName: "Deep Thought",
		CreatedAt:   createdAt,
	}

	raw, err := json.Marshal(domain.NewAnswerEvent(answer))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "new_answer",
		"data": {
			"id": 7,
			"question_id": 42,
			"display_name": "Deep Thought",
			"content": "Forty-two",
			"created_at": "2025-03-14T09:30:00Z"
		}
	}`, string(raw))
}

func TestUpdateQuestionEvent_WireShape(t *testing.T) {
	raw, err := json.Marshal(domain.UpdateQuestionEvent(42, domain.StatusEscalated))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "update_question",
		"data": {"id": 42, "status": "Escalated"}
	}`, string(raw))
}

func TestDeleteQuestionEvent_WireShape(t *testing.T) {
	raw, err := json.Marshal(domain.DeleteQuestionEvent(42))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "delete_question",
		"data": {"id": 42}
	}`, string(raw))
}

func TestDeleteAnswerEvent_WireShape(t *testing.T) {
	raw, err := json.Marshal(domain.DeleteAnswerEvent(7, 42))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"type": "delete_answer",
		"data": {"id": 7, "question_id": 42}
	}`, string(raw))
}

func TestEventTimestampsAreUTC(t *testing.T) {
	// Local timestamps are normalized to UTC on the wire.
	loc := time.FixedZone("UTC+2", 2*60*60)
	question := &domain.Question{
		ID:        1,
		Content:   "tz",
		Status:    domain.StatusPending,
		CreatedAt: time.Date(2025, 3, 14, 11, 0, 0, 0, loc),
	}

	event := domain.NewQuestionEvent(question)
	payload, ok := event.Data.(domain.QuestionPayload)
	require.True(t, ok)
	assert.Equal(t, "2025-03-14T09:00:00Z", payload.CreatedAt)
}
