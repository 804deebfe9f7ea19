package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/qboard/qboard/internal/core/domain"
	apperrors "github.com/qboard/qboard/internal/core/errors"
	"github.com/qboard/qboard/internal/core/ports"
	"github.com/qboard/qboard/internal/core/utils"
)

const answerColumns = `id, question_id, content, display_name, user_id, created_at`

// foreignKeyViolation is the PostgreSQL error code for FK failures.
const foreignKeyViolation = "23503"

// AnswerRepository is the secondary adapter for answer persistence.
type AnswerRepository struct {
	pool *pgxpool.Pool
	tm   *TransactionManager
}

// Ensure AnswerRepository implements the ports.AnswerRepository interface.
var _ ports.AnswerRepository = (*AnswerRepository)(nil)

// NewAnswerRepository creates a new answer repository.
func NewAnswerRepository(pool *pgxpool.Pool) ports.AnswerRepository {
	return &AnswerRepository{
		pool: pool,
		tm:   NewTransactionManager(pool),
	}
}

// scanAnswer scans a single answer row.
func scanAnswer(row pgx.Row) (*domain.Answer, error) {
	var (
		answer    domain.Answer
		userID    pgtype.UUID
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&answer.ID,
		&answer.QuestionID,
		&answer.Content,
		&answer.DisplayName,
		&userID,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	answer.UserID = utils.FromNullUUID(userID)
	answer.CreatedAt = createdAt.Time

	return &answer, nil
}

func scanAnswerRows(rows pgx.Rows) ([]*domain.Answer, error) {
	defer rows.Close()

	var answers []*domain.Answer
	for rows.Next() {
		answer, err := scanAnswer(rows)
		if err != nil {
			return nil, err
		}
		answers = append(answers, answer)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return answers, nil
}

// Create inserts the answer and, in the same transaction, escalates the
// parent question if it is still pending. The conditional update makes
// the first-answer escalation race-free: exactly one concurrent insert
// observes the Pending state and wins the status change.
func (r *AnswerRepository) Create(ctx context.Context, answer *domain.Answer) (*domain.Answer, bool, error) {
	var (
		created   *domain.Answer
		escalated bool
	)

	err := r.tm.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		insert := `
			INSERT INTO answers (question_id, content, display_name, user_id, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING ` + answerColumns

		var err error
		created, err = scanAnswer(tx.QueryRow(ctx, insert,
			answer.QuestionID,
			answer.Content,
			answer.DisplayName,
			utils.ToNullUUID(answer.UserID),
			answer.CreatedAt,
		))
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx,
			`UPDATE questions SET status = $1 WHERE id = $2 AND status = $3`,
			string(domain.StatusEscalated),
			answer.QuestionID,
			string(domain.StatusPending),
		)
		if err != nil {
			return err
		}
		escalated = tag.RowsAffected() > 0

		return nil
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation {
			return nil, false, apperrors.ErrQuestionNotFound
		}
		return nil, false, err
	}

	return created, escalated, nil
}

// ListByAuthor retrieves the answers submitted by a given user, newest first.
func (r *AnswerRepository) ListByAuthor(ctx context.Context, userID uuid.UUID) ([]*domain.Answer, error) {
	query := `
		SELECT ` + answerColumns + `
		FROM answers
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, utils.ToUUID(userID))
	if err != nil {
		return nil, err
	}

	return scanAnswerRows(rows)
}

// Delete removes a single answer and returns the deleted row.
func (r *AnswerRepository) Delete(ctx context.Context, id int64) (*domain.Answer, error) {
	query := `DELETE FROM answers WHERE id = $1 RETURNING ` + answerColumns

	answer, err := scanAnswer(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAnswerNotFound
		}
		return nil, err
	}

	return answer, nil
}
