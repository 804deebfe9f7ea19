package ports

import (
	"context"

	"github.com/google/uuid"

	"github.com/qboard/qboard/internal/core/domain"
)

// EventBroadcaster is the port for pushing events to live viewers.
// Broadcast never fails from the caller's perspective: per-connection
// delivery problems are contained inside the implementation.
type EventBroadcaster interface {
	Broadcast(event domain.Event)
}

// IdentityResolver resolves an optional bearer credential to a user.
// Resolution never fails: a missing, malformed, or expired credential,
// an unknown subject, or an internal lookup error all degrade to the
// anonymous identity (nil user).
type IdentityResolver interface {
	Resolve(ctx context.Context, credential string) *domain.User
}

// AuthorizationService gates operations reserved for admins. Unlike
// identity resolution, authorization failure is a hard rejection.
type AuthorizationService interface {
	// RequireAdmin returns nil iff the user exists and is an admin;
	// otherwise errors.ErrForbidden.
	RequireAdmin(ctx context.Context, userID uuid.UUID) error
}

// CreateQuestionParams defines the input for submitting a question.
// A nil AuthorID means anonymous attribution.
type CreateQuestionParams struct {
	Content     string
	DisplayName string
	AuthorID    *uuid.UUID
}

// ListQuestionsParams defines the input for listing questions. A nil
// Status (or the literal "All") means no filter.
type ListQuestionsParams struct {
	Status *string
	Limit  int
	Offset int
}

// UpdateQuestionStatusParams defines the input for an explicit,
// admin-authorized status change.
type UpdateQuestionStatusParams struct {
	QuestionID int64
	Status     domain.QuestionStatus
	ActorID    uuid.UUID
}

// DeleteQuestionParams defines the input for deleting a question.
type DeleteQuestionParams struct {
	QuestionID int64
	ActorID    uuid.UUID
}

// CreateAnswerParams defines the input for submitting an answer.
type CreateAnswerParams struct {
	QuestionID  int64
	Content     string
	DisplayName string
	AuthorID    *uuid.UUID
}

// DeleteAnswerParams defines the input for deleting an answer.
type DeleteAnswerParams struct {
	AnswerID int64
	ActorID  uuid.UUID
}

// NotificationParams holds the details of an out-of-band notification
// to a registered user.
type NotificationParams struct {
	RecipientUserID uuid.UUID
	Subject         string
	QuestionID      int64
}

// Notifier delivers out-of-band notifications, for example to tell a
// registered author their question was answered. Delivery is
// best-effort and must never fail the triggering operation.
type Notifier interface {
	Notify(ctx context.Context, params NotificationParams)
}

// QuestionService defines the core business operations for questions.
type QuestionService interface {
	Create(ctx context.Context, params CreateQuestionParams) (*domain.Question, error)
	Get(ctx context.Context, id int64) (*domain.Question, error)
	List(ctx context.Context, params ListQuestionsParams) ([]*domain.Question, error)
	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Question, error)
	UpdateStatus(ctx context.Context, params UpdateQuestionStatusParams) (*domain.Question, error)
	Delete(ctx context.Context, params DeleteQuestionParams) error
}

// AnswerService defines the core business operations for answers.
type AnswerService interface {
	Create(ctx context.Context, params CreateAnswerParams) (*domain.Answer, error)
	ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Answer, error)
	Delete(ctx context.Context, params DeleteAnswerParams) error
}

// AuthService defines the port for authentication business logic.
type AuthService interface {
	Register(ctx context.Context, params domain.UserRegistrationParams) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, error)
}

// AdminService defines the port for user management. Listing requires
// any authenticated caller; granting or revoking admin rights requires
// an admin actor.
type AdminService interface {
	ListUsers(ctx context.Context, limit, offset int) ([]*domain.User, error)
	SetAdmin(ctx context.Context, actorID, userID uuid.UUID, isAdmin bool) (*domain.User, error)
}
