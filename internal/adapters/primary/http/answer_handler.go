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

// AnswerHandler handles HTTP requests for answers
type AnswerHandler struct {
	answerService ports.AnswerService
	errorHandler  *ErrorHandler
	logger        *slog.Logger
}

// NewAnswerHandler creates a new answer handler
func NewAnswerHandler(
	answerService ports.AnswerService,
	errorHandler *ErrorHandler,
	logger *slog.Logger,
) *AnswerHandler {
	return &AnswerHandler{
		answerService: answerService,
		errorHandler:  errorHandler,
		logger:        logger.With("handler", "answer"),
	}
}

// RegisterRoutes sets up the top-level answer endpoints. Creation is
// nested under /questions/{questionID}/answers and is registered by the
// question handler.
func (h *AnswerHandler) RegisterRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(mw.RequireUser)
		r.Delete("/{answerID}", h.HandleDeleteAnswer)
	})
}

// --- Request/Response DTOs ---

// CreateAnswerRequest defines the expected JSON body for submitting an answer
type CreateAnswerRequest struct {
	Content     string `json:"content"`
	DisplayName string `json:"display_name"`
}

// Validate validates the create answer request
func (r *CreateAnswerRequest) Validate() error {
	v := validation.NewValidator()

	v.Required("content", r.Content).
		MaxLength("content", r.Content, domain.MaxContentLength)

	v.MaxLength("display_name", r.DisplayName, domain.MaxDisplayNameLength)

	if v.HasErrors() {
		return v.Errors()
	}
	return nil
}

// AnswerDTO defines the JSON response for answers.
type AnswerDTO struct {
	ID          int64  `json:"id"`
	QuestionID  int64  `json:"question_id"`
	Content     string `json:"content"`
	DisplayName string `json:"display_name"`
	CreatedAt   string `json:"created_at"`
}

func toAnswerDTO(answer *domain.Answer) AnswerDTO {
	return AnswerDTO{
		ID:          answer.ID,
		QuestionID:  answer.QuestionID,
		Content:     answer.Content,
		DisplayName: answer.DisplayName,
		CreatedAt:   answer.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toAnswerDTOs(answers []*domain.Answer) []AnswerDTO {
	response := make([]AnswerDTO, 0, len(answers))
	for _, answer := range answers {
		response = append(response, toAnswerDTO(answer))
	}
	return response
}

// --- Handlers ---

// HandleCreateAnswer handles POST /questions/{questionID}/answers
func (h *AnswerHandler) HandleCreateAnswer(w http.ResponseWriter, r *http.Request) {
	questionID, err := parseQuestionID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	req, err := validation.DecodeAndValidate[CreateAnswerRequest](r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	if err := req.Validate(); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.CreateAnswerParams{
		QuestionID:  questionID,
		Content:     req.Content,
		DisplayName: req.DisplayName,
	}

	var actor any = "anonymous"
	if user, ok := mw.GetUser(r.Context()); ok {
		params.AuthorID = &user.ID
		if params.DisplayName == "" {
			params.DisplayName = user.Username
		}
		actor = user.ID
	}

	answer, err := h.answerService.Create(r.Context(), params)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("answer created",
		"answer_id", answer.ID,
		"question_id", questionID,
		"user_id", actor,
	)

	WriteCreated(w, toAnswerDTO(answer))
}

// HandleDeleteAnswer handles DELETE /answers/{answerID}
func (h *AnswerHandler) HandleDeleteAnswer(w http.ResponseWriter, r *http.Request) {
	user, ok := mw.GetUser(r.Context())
	if !ok {
		WriteJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error: "Not authorized",
			Code:  "UNAUTHORIZED",
		})
		return
	}

	answerID, err := parseAnswerID(r)
	if err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	params := ports.DeleteAnswerParams{
		AnswerID: answerID,
		ActorID:  user.ID,
	}

	if err := h.answerService.Delete(r.Context(), params); err != nil {
		h.errorHandler.Handle(w, r, err)
		return
	}

	h.logger.Info("answer deleted",
		"answer_id", answerID,
		"user_id", user.ID,
	)

	WriteNoContent(w)
}

// parseAnswerID extracts and validates the answer ID from the URL
func parseAnswerID(r *http.Request) (int64, error) {
	answerIDStr := chi.URLParam(r, "answerID")
	answerID, err := strconv.ParseInt(answerIDStr, 10, 64)
	if err != nil || answerID <= 0 {
		v := validation.NewValidator()
		v.Custom("answerID", false, "Invalid answer ID")
		return 0, v.Errors()
	}
	return answerID, nil
}
