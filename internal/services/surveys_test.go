package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/apperr"
	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSurveyFixture(t *testing.T) (*SurveyService, *store.MemoryStore, models.Survey, *recordingPublisher, *MemoryScanAuditor) {
	t.Helper()
	mem := store.NewMemoryStore()
	survey := models.Survey{ID: uuid.New(), UserID: uuid.New(), Title: "Onboarding", UniqueLinkID: "onb-2026", IsActive: true}
	mem.PutSurvey(survey)
	live := &recordingPublisher{}
	auditor := &MemoryScanAuditor{}
	return NewSurveyService(mem, auditor, live), mem, survey, live, auditor
}

func TestSurveyService_PublicSurvey(t *testing.T) {
	svc, _, survey, _, _ := newSurveyFixture(t)

	got, err := svc.PublicSurvey(context.Background(), "onb-2026")
	require.NoError(t, err)
	assert.Equal(t, survey.ID, got.ID)

	_, err = svc.PublicSurvey(context.Background(), "missing")
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestSurveyService_ForeignSurveyLooksMissing(t *testing.T) {
	svc, _, survey, _, _ := newSurveyFixture(t)

	_, err := svc.ListResponses(context.Background(), uuid.New(), survey.ID.String(), false)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, e.Status())
	assert.Equal(t, apperr.CodeSurveyNotFound, e.Code())

	_, err = svc.ListResponses(context.Background(), survey.UserID, "nope", false)
	assert.Equal(t, http.StatusBadRequest, apperr.StatusOf(err))
}

func TestSurveyService_ListAndDelete(t *testing.T) {
	svc, mem, survey, live, _ := newSurveyFixture(t)
	now := time.Now().UTC()
	human := models.Submission{ID: uuid.New(), SurveyID: survey.ID, AnswerValue: "yes", CreatedAt: now.Add(-time.Minute)}
	bot := models.Submission{ID: uuid.New(), SurveyID: survey.ID, AnswerValue: "no", CreatedAt: now, IsSuspectedBot: true}
	mem.PutSubmission(human)
	mem.PutSubmission(bot)
	ctx := context.Background()

	visible, err := svc.ListResponses(ctx, survey.UserID, survey.ID.String(), false)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, human.ID, visible[0].ID)

	all, err := svc.ListResponses(ctx, survey.UserID, survey.ID.String(), true)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	require.NoError(t, svc.DeleteResponse(ctx, survey.UserID, survey.ID.String(), bot.ID.String()))
	assert.Equal(t, 1, mem.Count())
	assert.Equal(t, []string{LiveResponseDeleted}, live.types())

	err = svc.DeleteResponse(ctx, survey.UserID, survey.ID.String(), bot.ID.String())
	assert.Equal(t, http.StatusNotFound, apperr.StatusOf(err))
}

func TestSurveyService_Results(t *testing.T) {
	svc, mem, survey, _, _ := newSurveyFixture(t)
	mem.PutSubmission(models.Submission{ID: uuid.New(), SurveyID: survey.ID, AnswerValue: "yes"})
	mem.PutSubmission(models.Submission{ID: uuid.New(), SurveyID: survey.ID, AnswerValue: "no", IsSuspectedBot: true})

	res, err := svc.Results(context.Background(), survey.UserID, survey.ID.String())
	require.NoError(t, err)
	assert.Equal(t, survey.ID, res.SurveyID)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, 1, res.SuspectedBots)
}

func TestSurveyService_ScannerEvents(t *testing.T) {
	svc, _, survey, _, auditor := newSurveyFixture(t)
	ctx := context.Background()
	require.NoError(t, auditor.RecordScan(ctx, models.ScannerEvent{IPAddress: "52.1.2.3", SurveyIDs: []string{survey.ID.String()}}))
	require.NoError(t, auditor.RecordScan(ctx, models.ScannerEvent{IPAddress: "52.9.9.9", SurveyIDs: []string{uuid.NewString()}}))

	events, err := svc.ScannerEvents(ctx, survey.UserID, survey.ID.String(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "52.1.2.3", events[0].IPAddress)
	assert.False(t, events[0].ID.IsZero())
}
