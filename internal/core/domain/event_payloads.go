package domain

import "time"

// QuestionPayload matches the wire shape for new_question events.
// Answers is always the empty list at creation time.
type QuestionPayload struct {
	ID          int64           `json:"id"`
	Content     string          `json:"content"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
	DisplayName string          `json:"display_name"`
	Answers     []AnswerPayload `json:"answers"`
}

// AnswerPayload matches the wire shape for new_answer events.
type AnswerPayload struct {
	ID          int64  `json:"id"`
	QuestionID  int64  `json:"question_id"`
	DisplayName string `json:"display_name"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
}

// QuestionStatusPayload matches the wire shape for update_question events.
type QuestionStatusPayload struct {
	ID     int64  `json:"id"`
	Status string `json:"status"`
}

// QuestionRefPayload matches the wire shape for delete_question events.
type QuestionRefPayload struct {
	ID int64 `json:"id"`
}

// AnswerRefPayload matches the wire shape for delete_answer events.
type AnswerRefPayload struct {
	ID         int64 `json:"id"`
	QuestionID int64 `json:"question_id"`
}

// NewQuestionEvent builds the event emitted after a question is created.
func NewQuestionEvent(q *Question) Event {
	return Event{
		Type: EventNewQuestion,
		Data: QuestionPayload{
			ID:          q.ID,
			Content:     q.Content,
			Status:      string(q.Status),
			CreatedAt:   q.CreatedAt.UTC().Format(time.RFC3339),
			DisplayName: q.DisplayName,
			Answers:     []AnswerPayload{},
		},
	}
}

// NewAnswerEvent builds the event emitted after an answer is created.
func NewAnswerEvent(a *Answer) Event {
	return Event{
		Type: EventNewAnswer,
		Data: AnswerPayload{
			ID:          a.ID,
			QuestionID:  a.QuestionID,
			DisplayName: a.DisplayName,
			Content:     a.Content,
			CreatedAt:   a.CreatedAt.UTC().Format(time.RFC3339),
		},
	}
}

// UpdateQuestionEvent builds the event emitted after a status change,
// whether automatic (escalation) or explicit (moderator action).
func UpdateQuestionEvent(questionID int64, status QuestionStatus) Event {
	return Event{
		Type: EventUpdateQuestion,
		Data: QuestionStatusPayload{
			ID:     questionID,
			Status: string(status),
		},
	}
}

// DeleteQuestionEvent builds the event emitted after a question and its
// answers have been durably removed. Cascaded answers do not get
// per-answer delete events.
func DeleteQuestionEvent(questionID int64) Event {
	return Event{
		Type: EventDeleteQuestion,
		Data: QuestionRefPayload{ID: questionID},
	}
}

// DeleteAnswerEvent builds the event emitted after a single answer is
// removed.
func DeleteAnswerEvent(answerID, questionID int64) Event {
	return Event{
		Type: EventDeleteAnswer,
		Data: AnswerRefPayload{ID: answerID, QuestionID: questionID},
	}
}
