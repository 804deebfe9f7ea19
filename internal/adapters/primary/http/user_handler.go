package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	mw "github.com/qboard/qboard/internal/adapters/primary/http/middleware"
	"github.com/qboard/qboard/internal/adapters/primary/validation"
	"github.com/qboard/qboard/internal/core/domain"
	"github.com/qboard/qboard/internal/core/ports"
)

const maxUsersPerPage = 100

// UserHandler handles HTTP requests for user accounts and the
// authenticated user's own content
type UserHandler struct {
	adminService    ports.AdminService
	questionService ports.QuestionService
	answerService   ports.AnswerService
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(
	adminService ports.AdminService,
	questionService ports.QuestionService,
	answerService ports.AnswerService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *UserHandler {
	return &UserHandler{
		adminService:    adminService,
		questionService: questionService,
		answerService:   answerService,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "user"),
	}
}

// RegisterRoutes sets up the routing for all user endpoints. Everything
// here requires authentication; registration (POST /users) stays public
// and lives on the auth handler.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireUser)

		r.Get("/", h.HandleListUsers)

		r.Route("/me", func(r chi.Router) {
			r.Get("/", h.HandleMe)
			r.Get("/questions", h.HandleMyQuestions)
			r.Get("/answers", h.HandleMyAnswers)
		})

		r.Post("/{userID}/promote", h.HandlePromote)
		r.Post("/{userID}/revoke", h.HandleRevoke)
	})
}

// --- Handlers ---

// HandleListUsers handles GET /users
func (h *UserHandler) HandleListUsers(w http.ResponseWriter, r *http.Request) {
	pagination := validation.ParsePagination(r, maxUsersPerPage)

	users, err := h.adminService.ListUsers(r.Context(), pagination.Limit+1, pagination.Offset)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginated(w, toUserDTOs(users), pagination.Limit, pagination.Offset)
}

// HandleMe handles GET /users/me
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

// HandleMyQuestions handles GET /users/me/questions
func (h *UserHandler) HandleMyQuestions(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	questions, err := h.questionService.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toQuestionDTOs(questions))
}

// HandleMyAnswers handles GET /users/me/answers
func (h *UserHandler) HandleMyAnswers(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	answers, err := h.answerService.ListByAuthor(r.Context(), user.ID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteList(w, toAnswerDTOs(answers))
}

// HandlePromote handles POST /users/{userID}/promote
func (h *UserHandler) HandlePromote(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, true)
}

// HandleRevoke handles POST /users/{userID}/revoke
func (h *UserHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	h.setAdmin(w, r, false)
}

func (h *UserHandler) setAdmin(w http.ResponseWriter, r *http.Request, isAdmin bool) {
	actor, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	userID, err := parseUserID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	user, err := h.adminService.SetAdmin(r.Context(), actor.ID, userID, isAdmin)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("admin rights changed",
		"target_user_id", userID,
		"is_admin", isAdmin,
		"actor_id", actor.ID,
	)

	WriteJSON(w, http.StatusOK, toUserDTO(user))
}

// --- Helper methods ---

// currentUser extracts the authenticated user from the request context
func (h *UserHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
	user, ok := mw.GetUser(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return nil, false
	}
	return user, true
}

// parseUserID extracts and validates the user ID from the URL
func parseUserID(r *http.Request) (uuid.UUID, error) {
	userIDStr := chi.URLParam(r, "userID")
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		v := validation.NewValidator()
		v.Custom("userID", false, "Must be a valid UUID")
		return uuid.Nil, v.Errors()
	}
	return userID, nil
}
