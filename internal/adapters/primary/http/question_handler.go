package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/qboard/qboard/internal/adapters/primary/http/middleware"
	"github.com/qboard/qboard/internal/adapters/primary/validation"
	"github.com/qboard/qboard/internal/core/domain"
	"github.com/qboard/qboard/internal/core/ports"
)

const maxQuestionsPerPage = 100

// statusFilters are the accepted values for the status query parameter.
// "All" disables filtering.
var statusFilters = []string{
	string(domain.StatusPending),
	string(domain.StatusEscalated),
	string(domain.StatusAnswered),
	"All",
}

// QuestionHandler handles HTTP requests for questions
type QuestionHandler struct {
	questionService ports.QuestionService
	answerHandler   *AnswerHandler
	errorHandler    *ErrorHandler
	logger          *slog.Logger
}

// NewQuestionHandler creates a new question handler
func NewQuestionHandler(
	questionService ports.QuestionService,
	answerHandler *AnswerHandler,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *QuestionHandler {
	return &QuestionHandler{
		questionService: questionService,
		answerHandler:   answerHandler,
		errorHandler:    errorHandler,
		logger:          logger.With("handler", "question"),
	}
}

// Router sets up a new chi Router for all question-related routes.
func (h *QuestionHandler) Router() http.Handler {
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

// RegisterRoutes sets up the routing for all question endpoints.
// Reading and submitting are open to anonymous visitors; moderation
// requires an authenticated admin, enforced in the service layer.
func (h *QuestionHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.HandleListQuestions)
	r.Post("/", h.HandleCreateQuestion)

	r.Route("/{questionID}", func(r chi.Router) {
		r.Get("/", h.HandleGetQuestion)

		r.Group(func(r chi.Router) {
			r.Use(mw.RequireUser)
			r.Patch("/status", h.HandleUpdateQuestionStatus)
			r.Delete("/", h.HandleDeleteQuestion)
		})

		if h.answerHandler != nil {
			r.Post("/answers", h.answerHandler.HandleCreateAnswer)
		}
	})
}

// --- Request/Response DTOs ---

// CreateQuestionRequest defines the expected JSON body for submitting a question
type CreateQuestionRequest struct {
	Content     string `json:"content"`
	DisplayName string `json:"display_name"`
}

// Validate validates the create question request
func (r *CreateQuestionRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("content", r.Content).
		MaxLength("content", r.Content, domain.MaxContentLength)

	v.MaxLength("display_name", r.DisplayName, domain.MaxDisplayNameLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// UpdateQuestionStatusRequest defines the expected JSON body for status updates
type UpdateQuestionStatusRequest struct {
	Status string `json:"status"`
}

// Validate validates the update status request
func (r *UpdateQuestionStatusRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("status", r.Status).
		OneOf("status", r.Status, []string{
			string(domain.StatusPending),
			string(domain.StatusEscalated),
			string(domain.StatusAnswered),
		})

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// QuestionDTO defines the JSON response for questions.
type QuestionDTO struct {
	ID          int64       `json:"id"`
	Content     string      `json:"content"`
	Status      string      `json:"status"`
	DisplayName string      `json:"display_name"`
	CreatedAt   string      `json:"created_at"`
	Answers     []AnswerDTO `json:"answers"`
}

func toQuestionDTO(question *domain.Question) QuestionDTO {
	return QuestionDTO{
		ID:          question.ID,
		Content:     question.Content,
		Status:      string(question.Status),
		DisplayName: question.DisplayName,
		CreatedAt:   question.CreatedAt.UTC().Format(time.RFC3339),
		Answers:     toAnswerDTOs(question.Answers),
	}
}

func toQuestionDTOs(questions []*domain.Question) []QuestionDTO {
	response := make([]QuestionDTO, 0, len(questions))
	for _, question := range questions {
		response = append(response, toQuestionDTO(question))
	}
	return response
}

// --- Handlers ---

// HandleListQuestions handles GET /questions
func (h *QuestionHandler) HandleListQuestions(w http.ResponseWriter, r *http.Request) {
	pagination := validation.ParsePagination(r, maxQuestionsPerPage)
	status := validation.ParseStringQueryParam(r, "status")

	if status != nil {
		v := validation.NewValidator()
		v.OneOf("status", *status, statusFilters)
		if v.HasErrors() {
			h.errorHandler.Handle(w, r, v.Errors())
			return
		}
	}

	params := ports.ListQuestionsParams{
		Status: status,
		Limit:  pagination.Limit + 1,
		Offset: pagination.Offset,
	}

	questions, err := h.questionService.List(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WritePaginated(w, toQuestionDTOs(questions), pagination.Limit, pagination.Offset)
}

// HandleCreateQuestion handles POST /questions
func (h *QuestionHandler) HandleCreateQuestion(w http.ResponseWriter, r *http.Request) {
	req, err := validation.DecodeAndValidate[CreateQuestionRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateQuestionParams{
		Content:     req.Content,
		DisplayName: req.DisplayName,
	}

	// Submissions are open to everyone; a logged-in author is recorded
	// when present.
	var actor any = "anonymous"
	if user, ok := mw.GetUser(r.Context()); ok {
		params.AuthorID = &user.ID
		if params.DisplayName == "" {
			params.DisplayName = user.Username
		}
		actor = user.ID
	}

	question, err := h.questionService.Create(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("question created",
		"question_id", question.ID,
		"user_id", actor,
	)

	WriteCreated(w, toQuestionDTO(question))
}

// HandleGetQuestion handles GET /questions/{questionID}
func (h *QuestionHandler) HandleGetQuestion(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseQuestionID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	question, err := h.questionService.Get(r.Context(), questionID)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	WriteJSON(w, http.StatusOK, toQuestionDTO(question))
}

// HandleUpdateQuestionStatus handles PATCH /questions/{questionID}/status
func (h *QuestionHandler) HandleUpdateQuestionStatus(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	questionID, err := parseQuestionID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[UpdateQuestionStatusRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.UpdateQuestionStatusParams{
		QuestionID: questionID,
		Status:     domain.QuestionStatus(req.Status),
		ActorID:    user.ID,
	}

	question, err := h.questionService.UpdateStatus(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("question status updated",
		"question_id", questionID,
		"new_status", req.Status,
		"user_id", user.ID,
	)

	WriteJSON(w, http.StatusOK, toQuestionDTO(question))
}

// HandleDeleteQuestion handles DELETE /questions/{questionID}
func (h *QuestionHandler) HandleDeleteQuestion(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	questionID, err := parseQuestionID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.DeleteQuestionParams{
		QuestionID: questionID,
		ActorID:    user.ID,
	}

	if err := h.questionService.Delete(r.Context(), params); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("question deleted",
		"question_id", questionID,
		"user_id", user.ID,
	)

	WriteNoContent(w)
}

// --- Helper methods ---

// currentUser extracts the authenticated user from the request context
func (h *QuestionHandler) currentUser(w http.ResponseWriter, r *http.Request) (*domain.User, bool) {
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

// parseQuestionID extracts and validates the question ID from the URL
func parseQuestionID(r *http.Request) (int64, error) {
	questionIDStr := chi.URLParam(r, "questionID")
	questionID, err := strconv.ParseInt(questionIDStr, 10, 64)
	if err != nil || questionID <= 0 {
		v := validation.NewValidator()
		v.Custom("questionID", false, "Invalid question ID")
		return 0, v.Errors()
	}
	return questionID, nil
}
