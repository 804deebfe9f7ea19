package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/qboard/qboard/internal/core/domain"
	"github.com/qboard/qboard/internal/core/ports"
)

// QuestionService implements business logic for question management.
// Every mutation persists first and broadcasts after: an event is only
// ever emitted for a mutation that durably committed.
type QuestionService struct {
	questionRepo ports.QuestionRepository
	authzSvc     ports.AuthorizationService
	broadcaster  ports.EventBroadcaster
	notifier     ports.Notifier
}

var _ ports.QuestionService = (*QuestionService)(nil)

// NewQuestionService creates a new question service.
func NewQuestionService(
	questionRepo ports.QuestionRepository,
	authzSvc ports.AuthorizationService,
	broadcaster ports.EventBroadcaster,
	notifier ports.Notifier,
) ports.QuestionService {
	return &QuestionService{
		questionRepo: questionRepo,
		authzSvc:     authzSvc,
		broadcaster:  broadcaster,
		notifier:     notifier,
	}
}

// Create handles the use case for submitting a new question. Anyone may
// submit; AuthorID is best-effort attribution and never a gate.
func (s *QuestionService) Create(ctx context.Context, params ports.CreateQuestionParams) (*domain.Question, error) {
	question, err := domain.NewQuestion(params.Content, params.DisplayName, params.AuthorID)
	if err != nil {
		return nil, err
	}

	created, err := s.questionRepo.Create(ctx, question)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.NewQuestionEvent(created))

	return created, nil
}

// Get retrieves a single question with its answers.
func (s *QuestionService) Get(ctx context.Context, id int64) (*domain.Question, error) {
	return s.questionRepo.GetByID(ctx, id)
}

// List retrieves questions, escalated first, newest first.
func (s *QuestionService) List(ctx context.Context, params ports.ListQuestionsParams) ([]*domain.Question, error) {
	status := params.Status
	if status != nil && *status == "All" {
		status = nil
	}

	return s.questionRepo.List(ctx, ports.ListQuestionsRepoParams{
		Status: status,
		Limit:  int32(params.Limit),
		Offset: int32(params.Offset),
	})
}

// ListByAuthor retrieves the questions created by a specific user.
func (s *QuestionService) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Question, error) {
	return s.questionRepo.ListByAuthor(ctx, userID)
}

// UpdateStatus applies an explicit status change. This is never
// automatic: it requires an admin actor and always emits an
// update_question event on success.
func (s *QuestionService) UpdateStatus(ctx context.Context, params ports.UpdateQuestionStatusParams) (*domain.Question, error) {
	if err := s.authzSvc.RequireAdmin(ctx, params.ActorID); err != nil {
		return nil, err
	}

	updated, err := s.questionRepo.UpdateStatus(ctx, params.QuestionID, params.Status)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.UpdateQuestionEvent(updated.ID, updated.Status))

	if updated.Status == domain.StatusAnswered && updated.UserID != nil {
		go s.notifier.Notify(ctx, ports.NotificationParams{
			RecipientUserID: *updated.UserID,
			Subject:         "Your question has been answered",
			QuestionID:      updated.ID,
		})
	}

	return updated, nil
}

// Delete removes a question and all of its answers. The answers are
// removed in the same transaction as the question; a single
// delete_question event is emitted afterwards, with no per-answer
// delete events for the cascade.
func (s *QuestionService) Delete(ctx context.Context, params ports.DeleteQuestionParams) error {
	if err := s.authzSvc.RequireAdmin(ctx, params.ActorID); err != nil {
		return err
	}

	if err := s.questionRepo.Delete(ctx, params.QuestionID); err != nil {
		return err
	}

	s.broadcaster.Broadcast(domain.DeleteQuestionEvent(params.QuestionID))

	return nil
}
