package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/qboard/qboard/internal/core/domain"
	"github.com/qboard/qboard/internal/core/ports"
)

// AnswerService implements the business logic for answers, including
// the automatic escalation of the parent question on its first answer.
type AnswerService struct {
	answerRepo  ports.AnswerRepository
	authzSvc    ports.AuthorizationService
	broadcaster ports.EventBroadcaster
}

var _ ports.AnswerService = (*AnswerService)(nil)

// NewAnswerService creates a new answer service.
func NewAnswerService(
	answerRepo ports.AnswerRepository,
	authzSvc ports.AuthorizationService,
	broadcaster ports.EventBroadcaster,
) ports.AnswerService {
	return &AnswerService{
		answerRepo:  answerRepo,
		authzSvc:    authzSvc,
		broadcaster: broadcaster,
	}
}

// Create records a new answer. The repository escalates a still-pending
// question in the same transaction as the insert, so the answer and its
// escalation side effect are durable together. On success the new_answer
// event is emitted first, then update_question iff escalation happened,
// in that order within the same mutation.
func (s *AnswerService) Create(ctx context.Context, params ports.CreateAnswerParams) (*domain.Answer, error) {
	answer, err := domain.NewAnswer(params.QuestionID, params.Content, params.DisplayName, params.AuthorID)
	if err != nil {
		return nil, err
	}

	created, escalated, err := s.answerRepo.Create(ctx, answer)
	if err != nil {
		return nil, err
	}

	s.broadcaster.Broadcast(domain.NewAnswerEvent(created))
	if escalated {
		s.broadcaster.Broadcast(domain.UpdateQuestionEvent(created.QuestionID, domain.StatusEscalated))
	}

	return created, nil
}

// ListByAuthor retrieves the answers written by a specific user.
func (s *AnswerService) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Answer, error) {
	return s.answerRepo.ListByAuthor(ctx, userID)
}

// Delete removes a single answer and emits delete_answer. Requires an
// admin actor.
func (s *AnswerService) Delete(ctx context.Context, params ports.DeleteAnswerParams) error {
	if err := s.authzSvc.RequireAdmin(ctx, params.ActorID); err != nil {
		return err
	}

	deleted, err := s.answerRepo.Delete(ctx, params.AnswerID)
	if err != nil {
		return err
	}

	s.broadcaster.Broadcast(domain.DeleteAnswerEvent(deleted.ID, deleted.QuestionID))

	return nil
}
