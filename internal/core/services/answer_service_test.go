package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/qboard/qboard/internal/core/domain"
	apperrors "github.com/qboard/qboard/internal/core/errors"
	"github.com/qboard/qboard/internal/core/mocks"
	"github.com/qboard/qboard/internal/core/ports"
	"github.com/qboard/qboard/internal/core/services"
)

func TestAnswerService_Create(t *testing.T) {
	ctx := context.Background()
	questionID := int64(3)

	t.Run("first answer escalates and emits events in order", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Answer")).
			Return(&domain.Answer{
				ID:          1,
				QuestionID:  questionID,
				Content:     "Try turning it off and on again",
				DisplayName: "Bob",
			}, true, nil)

		answer, err := svc.Create(ctx, ports.CreateAnswerParams{
			QuestionID:  questionID,
			Content:     "Try turning it off and on again",
			DisplayName: "Bob",
		})

		require.NoError(t, err)
		assert.Equal(t, int64(1), answer.ID)

		// new_answer first, then the escalation update, always in that order.
		require.Len(t, broadcaster.Events, 2)
		assert.Equal(t, domain.EventNewAnswer, broadcaster.Events[0].Type)
		assert.Equal(t, domain.EventUpdateQuestion, broadcaster.Events[1].Type)

		statusPayload, ok := broadcaster.Events[1].Data.(domain.QuestionStatusPayload)
		require.True(t, ok)
		assert.Equal(t, questionID, statusPayload.ID)
		assert.Equal(t, string(domain.StatusEscalated), statusPayload.Status)
	})

	t.Run("subsequent answer emits only new_answer", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Answer")).
			Return(&domain.Answer{ID: 2, QuestionID: questionID, Content: "Another take"}, false, nil)

		_, err := svc.Create(ctx, ports.CreateAnswerParams{
			QuestionID: questionID,
			Content:    "Another take",
		})

		require.NoError(t, err)
		require.Len(t, broadcaster.Events, 1)
		assert.Equal(t, domain.EventNewAnswer, broadcaster.Events[0].Type)
	})

	t.Run("empty content is rejected before persistence", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		answer, err := svc.Create(ctx, ports.CreateAnswerParams{QuestionID: questionID, Content: ""})

		assert.Nil(t, answer)
		assert.ErrorIs(t, err, apperrors.ErrContentRequired)
		assert.Empty(t, broadcaster.Events)
		mockRepo.AssertNotCalled(t, "Create")
	})

	t.Run("unknown question yields not found and no events", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Answer")).
			Return(nil, false, apperrors.ErrQuestionNotFound)

		answer, err := svc.Create(ctx, ports.CreateAnswerParams{QuestionID: 404, Content: "Hello?"})

		assert.Nil(t, answer)
		assert.ErrorIs(t, err, apperrors.ErrQuestionNotFound)
		assert.Empty(t, broadcaster.Events)
	})

	t.Run("no event when persistence fails", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.Answer")).
			Return(nil, false, errors.New("connection lost"))

		_, err := svc.Create(ctx, ports.CreateAnswerParams{QuestionID: questionID, Content: "Lost"})

		assert.Error(t, err)
		assert.Empty(t, broadcaster.Events)
	})
}

func TestAnswerService_Delete(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()
	answerID := int64(5)

	t.Run("success broadcasts delete_answer with both ids", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		mockAuthz.On("RequireAdmin", ctx, adminID).Return(nil)
		mockRepo.On("Delete", ctx, answerID).
			Return(&domain.Answer{ID: answerID, QuestionID: 3}, nil)

		err := svc.Delete(ctx, ports.DeleteAnswerParams{AnswerID: answerID, ActorID: adminID})

		require.NoError(t, err)
		require.Len(t, broadcaster.Events, 1)
		assert.Equal(t, domain.EventDeleteAnswer, broadcaster.Events[0].Type)
		assert.Equal(t, domain.AnswerRefPayload{ID: answerID, QuestionID: 3}, broadcaster.Events[0].Data)
	})

	t.Run("non-admin is forbidden", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		userID := uuid.New()
		mockAuthz.On("RequireAdmin", ctx, userID).Return(apperrors.ErrForbidden)

		err := svc.Delete(ctx, ports.DeleteAnswerParams{AnswerID: answerID, ActorID: userID})

		assert.ErrorIs(t, err, apperrors.ErrForbidden)
		assert.Empty(t, broadcaster.Events)
		mockRepo.AssertNotCalled(t, "Delete")
	})

	t.Run("answer not found", func(t *testing.T) {
		mockRepo := mocks.NewMockAnswerRepository()
		mockAuthz := mocks.NewMockAuthorizationService()
		broadcaster := &mocks.RecordingBroadcaster{}

		svc := services.NewAnswerService(mockRepo, mockAuthz, broadcaster)

		mockAuthz.On("RequireAdmin", ctx, adminID).Return(nil)
		mockRepo.On("Delete", ctx, answerID).Return(nil, apperrors.ErrAnswerNotFound)

		err := svc.Delete(ctx, ports.DeleteAnswerParams{AnswerID: answerID, ActorID: adminID})

		assert.ErrorIs(t, err, apperrors.ErrAnswerNotFound)
		assert.Empty(t, broadcaster.Events)
	})
}
