package store

import (
	"context"
	"errors"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/google/uuid"
)

// ErrNotFound is returned by the Get* and Delete* methods when no row matches.
var ErrNotFound = errors.New("not found")

// DetailsPatch is applied by UpdateDetails. Nil fields are left untouched and
// RespondentName is only written when the row has no name yet.
type DetailsPatch struct {
	FreeResponse      *string
	RespondentName    *string
	ClearSuspectedBot bool
}

// Store is the record store behind the submission engine. Find* methods return
// (nil, nil) when nothing matches.
type Store interface {
	GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error)
	GetSurveyByLinkID(ctx context.Context, linkID string) (*models.Survey, error)

	GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error)
	FindByHash(ctx context.Context, surveyID uuid.UUID, hash string) (*models.Submission, error)
	// FindLatestByAddress returns the newest submission for the address created at or after since.
	FindLatestByAddress(ctx context.Context, surveyID uuid.UUID, address string, since time.Time) (*models.Submission, error)
	// ListByAddressSince spans every survey.
	ListByAddressSince(ctx context.Context, address string, since time.Time) ([]models.Submission, error)
	// ListBySurvey returns newest first.
	ListBySurvey(ctx context.Context, surveyID uuid.UUID, includeBots bool) ([]models.Submission, error)

	InsertSubmission(ctx context.Context, sub *models.Submission) error
	// OverrideSubmission rewrites answer, address, user agent, location and the bot flag of sub.ID.
	OverrideSubmission(ctx context.Context, sub *models.Submission) error
	UpdateDetails(ctx context.Context, id uuid.UUID, patch DetailsPatch) (*models.Submission, error)
	// FlagSuspectedBots sets is_suspected_bot on every listed id and returns the rows touched.
	FlagSuspectedBots(ctx context.Context, ids []uuid.UUID) (int64, error)
	DeleteSubmission(ctx context.Context, surveyID uuid.UUID, id uuid.UUID) error
}
