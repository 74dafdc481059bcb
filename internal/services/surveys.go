package services

import (
	"context"
	"errors"
	"strings"

	"github.com/AnshRaj112/pulse-backend/internal/apperr"
	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/store"
	"github.com/google/uuid"
)

// SurveyService serves the read side of surveys: the public lookup behind a link and
// the owner's views of collected responses.
type SurveyService struct {
	store   store.Store
	auditor ScanAuditor
	live    LivePublisher
}

func NewSurveyService(s store.Store, auditor ScanAuditor, live LivePublisher) *SurveyService {
	return &SurveyService{store: s, auditor: auditor, live: live}
}

func surveyNotFound() error {
	return apperr.NotFound(apperr.CodeSurveyNotFound, "Survey not found")
}

// PublicSurvey looks a survey up by the id embedded in its share link.
func (s *SurveyService) PublicSurvey(ctx context.Context, linkID string) (*models.Survey, error) {
	linkID = strings.TrimSpace(linkID)
	if linkID == "" {
		return nil, surveyNotFound()
	}
	survey, err := s.store.GetSurveyByLinkID(ctx, linkID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, surveyNotFound()
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return survey, nil
}

// OwnedSurvey returns the survey only if userID owns it. Foreign surveys look missing.
func (s *SurveyService) OwnedSurvey(ctx context.Context, userID uuid.UUID, surveyID string) (*models.Survey, error) {
	id, err := uuid.Parse(strings.TrimSpace(surveyID))
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidID, "Invalid survey id")
	}
	survey, err := s.store.GetSurvey(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, surveyNotFound()
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if survey.UserID != userID {
		return nil, surveyNotFound()
	}
	return survey, nil
}

// ListResponses returns the survey's responses newest first. Suspected bots are
// hidden unless includeBots is set.
func (s *SurveyService) ListResponses(ctx context.Context, userID uuid.UUID, surveyID string, includeBots bool) ([]models.Submission, error) {
	survey, err := s.OwnedSurvey(ctx, userID, surveyID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListBySurvey(ctx, survey.ID, includeBots)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return subs, nil
}

func (s *SurveyService) DeleteResponse(ctx context.Context, userID uuid.UUID, surveyID, responseID string) error {
	survey, err := s.OwnedSurvey(ctx, userID, surveyID)
	if err != nil {
		return err
	}
	id, err := uuid.Parse(strings.TrimSpace(responseID))
	if err != nil {
		return apperr.Validation(apperr.CodeInvalidID, "Invalid response id")
	}

	err = s.store.DeleteSubmission(ctx, survey.ID, id)
	if errors.Is(err, store.ErrNotFound) {
		return apperr.NotFound(apperr.CodeResponseMissing, "Response not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}

	logger.FromContext(ctx).Info("response deleted", "survey_id", survey.ID, "response_id", id)
	if s.live != nil {
		event := LiveEvent{Type: LiveResponseDeleted, SurveyID: survey.ID.String(), ResponseID: id.String()}
		if err := s.live.Publish(ctx, event); err != nil {
			logger.FromContext(ctx).Debug("live publish failed", "error", err)
		}
	}
	return nil
}

// Results aggregates every response of an owned survey.
func (s *SurveyService) Results(ctx context.Context, userID uuid.UUID, surveyID string) (*Results, error) {
	survey, err := s.OwnedSurvey(ctx, userID, surveyID)
	if err != nil {
		return nil, err
	}
	subs, err := s.store.ListBySurvey(ctx, survey.ID, true)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	res := Summarize(subs)
	res.SurveyID = survey.ID
	return &res, nil
}

// ScannerEvents lists scanner-pattern flaggings that touched an owned survey.
func (s *SurveyService) ScannerEvents(ctx context.Context, userID uuid.UUID, surveyID string, limit int64) ([]models.ScannerEvent, error) {
	survey, err := s.OwnedSurvey(ctx, userID, surveyID)
	if err != nil {
		return nil, err
	}
	if s.auditor == nil {
		return []models.ScannerEvent{}, nil
	}
	events, err := s.auditor.ListScans(ctx, survey.ID.String(), limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return events, nil
}
