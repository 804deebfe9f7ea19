package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/qboard/qboard/internal/core/domain"
)

// ListQuestionsRepoParams defines filtering and pagination for question
// listing. A nil Status means no filter.
type ListQuestionsRepoParams struct {
	Status *string
	Limit  int32
	Offset int32
}

// QuestionRepository is the port for question persistence.
type QuestionRepository interface {
	Create(ctx context.Context, question *domain.Question) (*domain.Question, error)

	// GetByID returns the question with its answers loaded, or
	// errors.ErrQuestionNotFound.
	GetByID(ctx context.Context, id int64) (*domain.Question, error)

	// List returns questions with answers loaded, escalated questions
	// first, then newest first.
	List(ctx context.Context, params ListQuestionsRepoParams) ([]*domain.Question, error)

	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Question, error)

	// UpdateStatus persists an explicit status change and returns the
	// updated question, or errors.ErrQuestionNotFound.
	UpdateStatus(ctx context.Context, id int64, status domain.QuestionStatus) (*domain.Question, error)

	// Delete removes the question and all of its answers atomically:
	// child rows first, then the parent, in one transaction.
	Delete(ctx context.Context, id int64) error
}

// AnswerRepository is the port for answer persistence.
type AnswerRepository interface {
	// Create inserts the answer and, in the same transaction, escalates
	// the parent question if it is still pending. The returned flag
	// reports whether that escalation happened.
	Create(ctx context.Context, answer *domain.Answer) (*domain.Answer, bool, error)

	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Answer, error)

	// Delete removes a single answer and returns it (the caller needs
	// the question id for the delete event), or errors.ErrAnswerNotFound.
	Delete(ctx context.Context, id int64) (*domain.Answer, error)
}

// UserRepository is the port for user persistence.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	List(ctx context.Context, limit, offset int32) ([]*domain.User, error)

	// SetAdmin grants or revokes admin rights and returns the updated
	// user, or errors.ErrUserNotFound.
	SetAdmin(ctx context.Context, id uuid.UUID, isAdmin bool) (*domain.User, error)
}
