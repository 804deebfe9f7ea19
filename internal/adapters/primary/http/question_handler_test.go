package http

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"log/slog"
	stdhttp "net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	mw "github.com/qboard/qboard/internal/adapters/primary/http/middleware"
	wsAdapter "github.com/qboard/qboard/internal/adapters/primary/websocket"
	"github.com/qboard/qboard/internal/adapters/secondary/email"
	pgadapter "github.com/qboard/qboard/internal/adapters/secondary/postgres"
	"github.com/qboard/qboard/internal/auth"
	"github.com/qboard/qboard/internal/core/domain"
	"github.com/qboard/qboard/internal/core/services"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	pgContainer, err := pgcontainer.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		pgcontainer.WithDatabase("test-db"),
		pgcontainer.WithUsername("user"),
		pgcontainer.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second),
		),
	)
	if err != nil {
		log.Fatalf("could not start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		log.Fatalf("could not get connection string: %v", err)
	}

	migrationsPath, err := filepath.Abs("../../../../migrations")
	if err != nil {
		log.Fatalf("could not find migrations directory: %v", err)
	}

	migrationURL := "file://" + migrationsPath
	mig, err := migrate.New(migrationURL, connStr)
	if err != nil {
		log.Fatalf("could not create migrate instance: %v", err)
	}
	if err := mig.Up(); err != nil && err != migrate.ErrNoChange {
		log.Fatalf("could not run migrations: %v", err)
	}

	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		log.Fatalf("could not create connection pool: %v", err)
	}

	code := m.Run()

	testPool.Close()
	if err := pgContainer.Terminate(ctx); err != nil {
		log.Fatalf("could not terminate postgres container: %v", err)
	}

	os.Exit(code)
}

// newBoardRouter wires the API router the way the composition root does,
// minus rate limiting and the event stream endpoint.
func newBoardRouter() (*chi.Mux, *auth.TokenManager) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	userRepo := pgadapter.NewUserRepository(testPool)
	questionRepo := pgadapter.NewQuestionRepository(testPool)
	answerRepo := pgadapter.NewAnswerRepository(testPool)

	tokenManager := auth.NewTokenManager("test-secret", time.Hour)
	hub := wsAdapter.NewHub(logger)
	notifier := email.NewMockSMTPNotifier(userRepo, logger)

	identityService := services.NewIdentityService(tokenManager, userRepo, logger)
	authService := services.NewAuthService(userRepo)
	questionService := services.NewQuestionService(questionRepo, identityService, hub, notifier)
	answerService := services.NewAnswerService(answerRepo, identityService, hub)
	adminService := services.NewAdminService(userRepo, identityService)

	errorHandler := NewErrorHandler(logger)
	authHandler := NewAuthHandler(authService, tokenManager, errorHandler, logger)
	answerHandler := NewAnswerHandler(answerService, errorHandler, logger)
	questionHandler := NewQuestionHandler(questionService, answerHandler, errorHandler, logger)
	userHandler := NewUserHandler(adminService, questionService, answerService, errorHandler, logger)

	router := chi.NewRouter()
	router.Use(mw.Identity(identityService))
	router.Post("/token", authHandler.HandleLogin)
	router.Route("/users", func(r chi.Router) {
		r.Post("/", authHandler.HandleRegister)
		userHandler.RegisterRoutes(r)
	})
	router.Route("/questions", questionHandler.RegisterRoutes)
	router.Route("/answers", answerHandler.RegisterRoutes)

	return router, tokenManager
}

func doJSON(t *testing.T, router *chi.Mux, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func decodeInto[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(recorder.Body).Decode(&v))
	return v
}

// registerUser creates an account through the API and returns its DTO.
func registerUser(t *testing.T, router *chi.Mux) (UserDTO, string) {
	t.Helper()

	password := "Sup3rSecret"
	recorder := doJSON(t, router, stdhttp.MethodPost, "/users", "", RegisterRequest{
		Username: "user-" + uuid.NewString()[:8],
		Email:    uuid.NewString() + "@example.com",
		FullName: "Test User",
		Password: password,
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	return decodeInto[UserDTO](t, recorder), password
}

func loginAs(t *testing.T, router *chi.Mux, email, password string) string {
	t.Helper()

	recorder := doJSON(t, router, stdhttp.MethodPost, "/token", "", LoginRequest{
		Email:    email,
		Password: password,
	})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	response := decodeInto[TokenResponse](t, recorder)
	require.NotEmpty(t, response.AccessToken)
	assert.Equal(t, "bearer", response.TokenType)
	return response.AccessToken
}

func promoteToAdmin(t *testing.T, id string) {
	t.Helper()

	userID, err := uuid.Parse(id)
	require.NoError(t, err)

	_, err = pgadapter.NewUserRepository(testPool).SetAdmin(context.Background(), userID, true)
	require.NoError(t, err)
}

func TestQuestionLifecycle(t *testing.T) {
	router, _ := newBoardRouter()

	// Anyone may submit a question, no account needed.
	recorder := doJSON(t, router, stdhttp.MethodPost, "/questions", "", CreateQuestionRequest{
		Content: "How do I get a refund?",
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	question := decodeInto[QuestionDTO](t, recorder)
	assert.Equal(t, string(domain.StatusPending), question.Status)
	assert.Equal(t, domain.DefaultDisplayName, question.DisplayName)
	assert.Empty(t, question.Answers)

	questionPath := "/questions/" + jsonID(question.ID)

	// The first answer escalates the question automatically.
	recorder = doJSON(t, router, stdhttp.MethodPost, questionPath+"/answers", "", CreateAnswerRequest{
		Content:     "Contact support within 30 days.",
		DisplayName: "Helpful Volunteer",
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	recorder = doJSON(t, router, stdhttp.MethodGet, questionPath, "", nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	escalated := decodeInto[QuestionDTO](t, recorder)
	assert.Equal(t, string(domain.StatusEscalated), escalated.Status)
	require.Len(t, escalated.Answers, 1)
	assert.Equal(t, "Helpful Volunteer", escalated.Answers[0].DisplayName)

	// Marking as answered is an admin action.
	admin, password := registerUser(t, router)
	promoteToAdmin(t, admin.ID)
	adminToken := loginAs(t, router, admin.Email, password)

	recorder = doJSON(t, router, stdhttp.MethodPatch, questionPath+"/status", adminToken,
		UpdateQuestionStatusRequest{Status: string(domain.StatusAnswered)})
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	answered := decodeInto[QuestionDTO](t, recorder)
	assert.Equal(t, string(domain.StatusAnswered), answered.Status)

	// Deleting removes the question together with its answers.
	recorder = doJSON(t, router, stdhttp.MethodDelete, questionPath, adminToken, nil)
	require.Equal(t, stdhttp.StatusNoContent, recorder.Code)

	recorder = doJSON(t, router, stdhttp.MethodGet, questionPath, "", nil)
	require.Equal(t, stdhttp.StatusNotFound, recorder.Code)
}

func TestQuestionModeration_Authorization(t *testing.T) {
	router, _ := newBoardRouter()

	recorder := doJSON(t, router, stdhttp.MethodPost, "/questions", "", CreateQuestionRequest{
		Content: "Moderation target",
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)
	question := decodeInto[QuestionDTO](t, recorder)
	statusPath := "/questions/" + jsonID(question.ID) + "/status"

	t.Run("anonymous caller gets 401", func(t *testing.T) {
		recorder := doJSON(t, router, stdhttp.MethodPatch, statusPath, "",
			UpdateQuestionStatusRequest{Status: string(domain.StatusAnswered)})
		assert.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
	})

	t.Run("regular user gets 403", func(t *testing.T) {
		user, password := registerUser(t, router)
		token := loginAs(t, router, user.Email, password)

		recorder := doJSON(t, router, stdhttp.MethodPatch, statusPath, token,
			UpdateQuestionStatusRequest{Status: string(domain.StatusAnswered)})
		assert.Equal(t, stdhttp.StatusForbidden, recorder.Code)
	})

	t.Run("invalid status value is rejected", func(t *testing.T) {
		user, password := registerUser(t, router)
		token := loginAs(t, router, user.Email, password)

		recorder := doJSON(t, router, stdhttp.MethodPatch, statusPath, token,
			UpdateQuestionStatusRequest{Status: "Closed"})
		assert.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
	})
}

func TestCreateQuestion_Validation(t *testing.T) {
	router, _ := newBoardRouter()

	recorder := doJSON(t, router, stdhttp.MethodPost, "/questions", "", CreateQuestionRequest{})
	assert.Equal(t, stdhttp.StatusUnprocessableEntity, recorder.Code)
}

func TestCreateQuestion_AuthenticatedAuthorDefaults(t *testing.T) {
	router, _ := newBoardRouter()

	user, password := registerUser(t, router)
	token := loginAs(t, router, user.Email, password)

	// With no display name the author's username is used.
	recorder := doJSON(t, router, stdhttp.MethodPost, "/questions", token, CreateQuestionRequest{
		Content: "Attributed submission",
	})
	require.Equal(t, stdhttp.StatusCreated, recorder.Code)

	question := decodeInto[QuestionDTO](t, recorder)
	assert.Equal(t, user.Username, question.DisplayName)

	// The question shows up under /users/me/questions.
	recorder = doJSON(t, router, stdhttp.MethodGet, "/users/me/questions", token, nil)
	require.Equal(t, stdhttp.StatusOK, recorder.Code)

	mine := decodeInto[ListResponse[QuestionDTO]](t, recorder)
	require.Equal(t, 1, mine.Count)
	assert.Equal(t, question.ID, mine.Data[0].ID)
}

func TestRegisterAndLogin(t *testing.T) {
	router, _ := newBoardRouter()

	user, password := registerUser(t, router)
	assert.False(t, user.IsAdmin)

	t.Run("duplicate email is rejected", func(t *testing.T) {
		recorder := doJSON(t, router, stdhttp.MethodPost, "/users", "", RegisterRequest{
			Username: "another-" + uuid.NewString()[:8],
			Email:    user.Email,
			FullName: "Someone Else",
			Password: password,
		})
		assert.Equal(t, stdhttp.StatusConflict, recorder.Code)
	})

	t.Run("wrong password is rejected", func(t *testing.T) {
		recorder := doJSON(t, router, stdhttp.MethodPost, "/token", "", LoginRequest{
			Email:    user.Email,
			Password: "WrongPassw0rd",
		})
		assert.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
	})

	t.Run("me endpoint returns the logged in user", func(t *testing.T) {
		token := loginAs(t, router, user.Email, password)

		recorder := doJSON(t, router, stdhttp.MethodGet, "/users/me", token, nil)
		require.Equal(t, stdhttp.StatusOK, recorder.Code)

		me := decodeInto[UserDTO](t, recorder)
		assert.Equal(t, user.ID, me.ID)
		assert.Equal(t, user.Username, me.Username)
	})

	t.Run("me endpoint requires a credential", func(t *testing.T) {
		recorder := doJSON(t, router, stdhttp.MethodGet, "/users/me", "", nil)
		assert.Equal(t, stdhttp.StatusUnauthorized, recorder.Code)
	})
}

func jsonID(id int64) string {
	return strconv.FormatInt(id, 10)
}
