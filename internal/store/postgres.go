package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const responseColumns = `id, created_at, survey_id, answer_value, free_response, respondent_name,
	hash_md5, ip_address, user_agent, location, is_suspected_bot`

// PostgresStore implements Store on the tables created by database.InitPostgresTables.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var s models.Submission
	var free, name, hash, ip, ua, loc sql.NullString
	err := row.Scan(
		&s.ID, &s.CreatedAt, &s.SurveyID, &s.AnswerValue, &free, &name,
		&hash, &ip, &ua, &loc, &s.IsSuspectedBot,
	)
	if err != nil {
		return nil, err
	}
	s.FreeResponse = nullString(free)
	s.RespondentName = nullString(name)
	s.HashMD5 = nullString(hash)
	s.IPAddress = nullString(ip)
	s.UserAgent = nullString(ua)
	s.Location = nullString(loc)
	return &s, nil
}

func nullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func scanSurvey(row rowScanner) (*models.Survey, error) {
	var s models.Survey
	err := row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.UserID, &s.Title, &s.RequireName, &s.UniqueLinkID, &s.IsActive)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

const surveyColumns = `id, created_at, updated_at, user_id, title, require_name, unique_link_id, is_active`

func (p *PostgresStore) GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	s, err := scanSurvey(p.db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get survey: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) GetSurveyByLinkID(ctx context.Context, linkID string) (*models.Survey, error) {
	s, err := scanSurvey(p.db.QueryRowContext(ctx, `SELECT `+surveyColumns+` FROM surveys WHERE unique_link_id = $1`, linkID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get survey by link: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	s, err := scanSubmission(p.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM responses WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get response: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) FindByHash(ctx context.Context, surveyID uuid.UUID, hash string) (*models.Submission, error) {
	s, err := scanSubmission(p.db.QueryRowContext(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE survey_id = $1 AND hash_md5 = $2
		ORDER BY created_at ASC
		LIMIT 1
	`, surveyID, hash))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find response by hash: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) FindLatestByAddress(ctx context.Context, surveyID uuid.UUID, address string, since time.Time) (*models.Submission, error) {
	s, err := scanSubmission(p.db.QueryRowContext(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE survey_id = $1 AND ip_address = $2 AND created_at >= $3
		ORDER BY created_at DESC
		LIMIT 1
	`, surveyID, address, since))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find response by address: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) ListByAddressSince(ctx context.Context, address string, since time.Time) ([]models.Submission, error) {
	return p.list(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE ip_address = $1 AND created_at >= $2
		ORDER BY created_at DESC
	`, address, since)
}

func (p *PostgresStore) ListBySurvey(ctx context.Context, surveyID uuid.UUID, includeBots bool) ([]models.Submission, error) {
	return p.list(ctx, `
		SELECT `+responseColumns+` FROM responses
		WHERE survey_id = $1 AND ($2 OR NOT is_suspected_bot)
		ORDER BY created_at DESC
	`, surveyID, includeBots)
}

func (p *PostgresStore) list(ctx context.Context, query string, args ...any) ([]models.Submission, error) {
	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list responses: %w", err)
	}
	defer rows.Close()

	out := make([]models.Submission, 0)
	for rows.Next() {
		s, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("scan response: %w", err)
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (p *PostgresStore) InsertSubmission(ctx context.Context, sub *models.Submission) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO responses (`+responseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`,
		sub.ID, sub.CreatedAt, sub.SurveyID, sub.AnswerValue, sub.FreeResponse, sub.RespondentName,
		sub.HashMD5, sub.IPAddress, sub.UserAgent, sub.Location, sub.IsSuspectedBot,
	)
	if err != nil {
		return fmt.Errorf("insert response: %w", err)
	}
	return nil
}

func (p *PostgresStore) OverrideSubmission(ctx context.Context, sub *models.Submission) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE responses
		SET answer_value = $2, ip_address = $3, user_agent = $4, location = $5, is_suspected_bot = $6
		WHERE id = $1
	`, sub.ID, sub.AnswerValue, sub.IPAddress, sub.UserAgent, sub.Location, sub.IsSuspectedBot)
	if err != nil {
		return fmt.Errorf("override response: %w", err)
	}
	return expectRow(res)
}

func (p *PostgresStore) UpdateDetails(ctx context.Context, id uuid.UUID, patch DetailsPatch) (*models.Submission, error) {
	s, err := scanSubmission(p.db.QueryRowContext(ctx, `
		UPDATE responses
		SET free_response = COALESCE($2, free_response),
			respondent_name = COALESCE(respondent_name, $3),
			is_suspected_bot = CASE WHEN $4 THEN FALSE ELSE is_suspected_bot END
		WHERE id = $1
		RETURNING `+responseColumns,
		id, patch.FreeResponse, patch.RespondentName, patch.ClearSuspectedBot,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update response details: %w", err)
	}
	return s, nil
}

func (p *PostgresStore) FlagSuspectedBots(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = id.String()
	}
	res, err := p.db.ExecContext(ctx, `
		UPDATE responses SET is_suspected_bot = TRUE
		WHERE id = ANY($1::uuid[])
	`, pq.Array(strIDs))
	if err != nil {
		return 0, fmt.Errorf("flag suspected bots: %w", err)
	}
	return res.RowsAffected()
}

func (p *PostgresStore) DeleteSubmission(ctx context.Context, surveyID uuid.UUID, id uuid.UUID) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM responses WHERE id = $1 AND survey_id = $2`, id, surveyID)
	if err != nil {
		return fmt.Errorf("delete response: %w", err)
	}
	return expectRow(res)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
