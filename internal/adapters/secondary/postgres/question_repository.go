package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qboard/qboard/internal/core/domain"
	apperrors "github.com/qboard/qboard/internal/core/errors"
	"github.com/qboard/qboard/internal/core/ports"
	"github.com/qboard/qboard/internal/core/utils"
)

const questionColumns = `id, content, display_name, status, user_id, created_at`

// QuestionRepository is the secondary adapter for question persistence.
type QuestionRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

// Ensure QuestionRepository implements the ports.QuestionRepository interface.
var _ ports.QuestionRepository = (*QuestionRepository)(nil)

// NewQuestionRepository creates a new question repository.
func NewQuestionRepository(pool *pgxpool.Pool) ports.QuestionRepository {
	return &QuestionRepository{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

// scanQuestion scans a single question row.
func scanQuestion(row pgx.Row) (*domain.Question, error) {
	var (
		question  domain.Question
		userID    pgtype.UUID
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&question.ID,
		&question.Content,
		&question.DisplayName,
		&question.Status,
		&userID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	question.UserID = utils.FromNullUUID(userID)
	question.CreatedAt = createdAt.Time

	return &question, nil
}

func scanQuestionRows(rows pgx.Rows) ([]*domain.Question, error) {
	defer rows.Close()

	var questions []*domain.Question
	for rows.Next() {
		question, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, question)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return questions, nil
}

// Create persists a new question entity.
func (r *QuestionRepository) Create(ctx context.Context, question *domain.Question) (*domain.Question, error) {
	query := `
		INSERT INTO questions (content, display_name, status, user_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + questionColumns

	created, err := scanQuestion(r.pool.QueryRow(ctx, query,
		question.Content,
		question.DisplayName,
		string(question.Status),
		utils.ToNullUUID(question.UserID),
		question.CreatedAt,
	))
	if err != nil {
		return nil, err
	}

	return created, nil
}

// GetByID retrieves a single question with its answers.
func (r *QuestionRepository) GetByID(ctx context.Context, id int64) (*domain.Question, error) {
	query := `SELECT ` + questionColumns + ` FROM questions WHERE id = $1`

	question, err := scanQuestion(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, err
	}

	if err := r.attachAnswers(ctx, []*domain.Question{question}); err != nil {
		return nil, err
	}

	return question, nil
}

// List retrieves questions with answers, escalated questions first, then
// newest first. A nil status filter returns every question.
func (r *QuestionRepository) List(ctx context.Context, params ports.ListQuestionsRepoParams) ([]*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE ($1::text IS NULL OR status = $1)
		ORDER BY (status = 'Escalated') DESC, created_at DESC, id DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, params.Status, params.Limit, params.Offset)
	if err != nil {
		return nil, err
	}

	questions, err := scanQuestionRows(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachAnswers(ctx, questions); err != nil {
		return nil, err
	}

	return questions, nil
}

// ListByAuthor retrieves the questions submitted by a given user, newest
// first, with answers loaded.
func (r *QuestionRepository) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Question, error) {
	query := `
		SELECT ` + questionColumns + `
		FROM questions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, utils.ToUUID(userID))
	if err != nil {
		return nil, err
	}

	questions, err := scanQuestionRows(rows)
	if err != nil {
		return nil, err
	}

	if err := r.attachAnswers(ctx, questions); err != nil {
		return nil, err
	}

	return questions, nil
}

// UpdateStatus persists an explicit status change.
func (r *QuestionRepository) UpdateStatus(ctx context.Context, id int64, status domain.QuestionStatus) (*domain.Question, error) {
	query := `
		UPDATE questions
		SET status = $2
		WHERE id = $1
		RETURNING ` + questionColumns

	question, err := scanQuestion(r.pool.QueryRow(ctx, query, id, string(status)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrQuestionNotFound
		}
		return nil, err
	}

	if err := r.attachAnswers(ctx, []*domain.Question{question}); err != nil {
		return nil, err
	}

	return question, nil
}

// Delete removes the question and all of its answers in one transaction.
// Answers go first so the foreign key constraint never fires.
func (r *QuestionRepository) Delete(ctx context.Context, id int64) error {
	return r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM answers WHERE question_id = $1`, id); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return apperrors.ErrQuestionNotFound
		}

		return nil
	})
}

// attachAnswers batch-loads the answers for the given questions, oldest
// first within each question.
func (r *QuestionRepository) attachAnswers(ctx context.Context, questions []*domain.Question) error {
	if len(questions) == 0 {
		return nil
	}

	byID := make(map[int64]*domain.Question, len(questions))
	ids := make([]int64, 0, len(questions))
	for _, question := range questions {
		question.Answers = []*domain.Answer{}
		byID[question.ID] = question
		ids = append(ids, question.ID)
	}

	query := `
		SELECT ` + answerColumns + `
		FROM answers
		WHERE question_id = ANY($1)
		ORDER BY created_at ASC, id ASC`

	rows, err := r.pool.Query(ctx, query, ids)
	if err != nil {
		return err
	}

	answers, err := scanAnswerRows(rows)
	if err != nil {
		return err
	}

	for _, answer := range answers {
		if question, ok := byID[answer.QuestionID]; ok {
			question.Answers = append(question.Answers, answer)
		}
	}

	return nil
}
