package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/apperr"
	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/store"
	"github.com/google/uuid"
)

// Outcome is what Create did with an incoming submission.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeOverridden   Outcome = "overridden"
	OutcomeDeduplicated Outcome = "deduplicated"
)

// CreateInput is a click-through on a survey link. IPAddress is empty when unknown;
// UserAgent is nil when the header was absent.
type CreateInput struct {
	SurveyID       string
	AnswerValue    string
	FreeResponse   *string
	RespondentName *string
	HashMD5        *string
	IPAddress      string
	UserAgent      *string
}

type CreateResult struct {
	Submission *models.Submission
	Outcome    Outcome
}

// Status is 201 for a new row and 200 when an existing one was returned.
func (r CreateResult) Status() int {
	if r.Outcome == OutcomeCreated {
		return http.StatusCreated
	}
	return http.StatusOK
}

// UpdateInput appends details to an existing submission.
type UpdateInput struct {
	ResponseID     string
	FreeResponse   *string
	RespondentName *string
	IPAddress      string
}

// SubmissionDeps wires a SubmissionService. Only Store is required.
type SubmissionDeps struct {
	Store       store.Store
	Locator     Locator
	Scanner     *ScannerDetector
	Hooks       HookRunner
	Live        LivePublisher
	Now         func() time.Time
	DedupWindow time.Duration
}

// SubmissionService decides whether a click is new, a repeat, or a real user
// reclaiming a slot a bot took.
type SubmissionService struct {
	store       store.Store
	resolver    *IdentityResolver
	locator     Locator
	scanner     *ScannerDetector
	hooks       HookRunner
	live        LivePublisher
	now         func() time.Time
	dedupWindow time.Duration
}

func NewSubmissionService(deps SubmissionDeps) *SubmissionService {
	s := &SubmissionService{
		store:       deps.Store,
		locator:     deps.Locator,
		scanner:     deps.Scanner,
		hooks:       deps.Hooks,
		live:        deps.Live,
		now:         deps.Now,
		dedupWindow: deps.DedupWindow,
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.dedupWindow <= 0 {
		s.dedupWindow = DefaultDedupWindow
	}
	if s.locator == nil {
		s.locator = NoopLocator{}
	}
	if s.hooks == nil {
		s.hooks = InlineRunner{}
	}
	s.resolver = NewIdentityResolver(deps.Store, s.now)
	return s
}

func (s *SubmissionService) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	surveyIDStr := strings.TrimSpace(in.SurveyID)
	answer := strings.TrimSpace(in.AnswerValue)
	if surveyIDStr == "" || answer == "" {
		return CreateResult{}, apperr.Validation(apperr.CodeMissingFields, "Missing required fields")
	}
	surveyID, err := uuid.Parse(surveyIDStr)
	if err != nil {
		return CreateResult{}, apperr.Validation(apperr.CodeInvalidID, "Invalid survey id")
	}

	survey, err := s.store.GetSurvey(ctx, surveyID)
	if errors.Is(err, store.ErrNotFound) {
		return CreateResult{}, apperr.NotFound(apperr.CodeSurveyNotFound, "Survey not found")
	}
	if err != nil {
		return CreateResult{}, apperr.Internal(err)
	}
	if !survey.IsActive {
		return CreateResult{}, apperr.Validation(apperr.CodeSurveyInactive, "Survey is not accepting responses")
	}

	address := optional(strings.TrimSpace(in.IPAddress))
	ctx = logger.With(ctx, "survey_id", surveyID.String())
	log := logger.FromContext(ctx)

	existing, err := s.resolver.Resolve(ctx, surveyID, IdentityFor(in.HashMD5, address, s.dedupWindow))
	if err != nil {
		return CreateResult{}, apperr.Internal(err)
	}

	verdict := Classify(in.UserAgent)
	if verdict.Suspected {
		attrs := []any{"reason", verdict.Reason}
		if verdict.Rule != nil {
			attrs = append(attrs, "category", verdict.Rule.Category, "pattern", verdict.Rule.Pattern.String())
		}
		log.Debug("suspected bot user agent", attrs...)
	}

	switch {
	case existing == nil:
		return s.insert(ctx, surveyID, answer, address, in, verdict.Suspected)

	case existing.IsSuspectedBot && !verdict.Suspected:
		existing.AnswerValue = answer
		existing.IPAddress = address
		existing.UserAgent = in.UserAgent
		existing.Location = s.locate(ctx, address)
		existing.IsSuspectedBot = false
		if err := s.store.OverrideSubmission(ctx, existing); err != nil {
			return CreateResult{}, apperr.Internal(err)
		}
		log.Info("bot slot reclaimed", "response_id", existing.ID)
		s.afterCommit(ctx, LiveResponseOverridden, existing, nil)
		return CreateResult{Submission: existing, Outcome: OutcomeOverridden}, nil

	default:
		return CreateResult{Submission: existing, Outcome: OutcomeDeduplicated}, nil
	}
}

func (s *SubmissionService) insert(ctx context.Context, surveyID uuid.UUID, answer string, address *string, in CreateInput, suspected bool) (CreateResult, error) {
	sub := &models.Submission{
		ID:             uuid.New(),
		CreatedAt:      s.now().UTC(),
		SurveyID:       surveyID,
		AnswerValue:    answer,
		FreeResponse:   trimmedOptional(in.FreeResponse),
		RespondentName: trimmedOptional(in.RespondentName),
		HashMD5:        trimmedOptional(in.HashMD5),
		IPAddress:      address,
		UserAgent:      in.UserAgent,
		Location:       s.locate(ctx, address),
		IsSuspectedBot: suspected,
	}
	if err := s.store.InsertSubmission(ctx, sub); err != nil {
		return CreateResult{}, apperr.Internal(err)
	}

	var scan Hook
	if s.scanner != nil && address != nil {
		ip := *address
		scan = func(ctx context.Context) error {
			_, err := s.scanner.Detect(ctx, surveyID, ip)
			return err
		}
	}
	s.afterCommit(ctx, LiveResponseCreated, sub, scan)
	return CreateResult{Submission: sub, Outcome: OutcomeCreated}, nil
}

// afterCommit publishes the change and then runs scan, off the request path.
func (s *SubmissionService) afterCommit(ctx context.Context, eventType string, sub *models.Submission, scan Hook) {
	if s.live == nil && scan == nil {
		return
	}
	event := LiveEvent{
		Type:           eventType,
		SurveyID:       sub.SurveyID.String(),
		ResponseID:     sub.ID.String(),
		AnswerValue:    sub.AnswerValue,
		IsSuspectedBot: sub.IsSuspectedBot,
	}

	log := logger.FromContext(ctx)
	if sub.IPAddress != nil {
		log = log.With("ip", *sub.IPAddress)
	}
	s.hooks.Run(ctx, eventType, log, func(ctx context.Context) error {
		ctx = logger.WithLogger(ctx, log)
		if s.live != nil {
			if err := s.live.Publish(ctx, event); err != nil {
				log.Debug("live publish failed", "error", err)
			}
		}
		if scan != nil {
			return scan(ctx)
		}
		return nil
	})
}

func (s *SubmissionService) UpdateDetails(ctx context.Context, in UpdateInput) (*models.Submission, error) {
	idStr := strings.TrimSpace(in.ResponseID)
	if idStr == "" {
		return nil, apperr.Validation(apperr.CodeMissingFields, "Response ID is required")
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, apperr.Validation(apperr.CodeInvalidID, "Invalid response id")
	}

	free := trimmedOptional(in.FreeResponse)
	name := trimmedOptional(in.RespondentName)
	if free == nil && name == nil {
		return nil, apperr.Validation(apperr.CodeNothingToUpdate, "Nothing to update. Please provide a response or name.")
	}

	existing, err := s.store.GetSubmission(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeResponseMissing, "Response not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	caller := strings.TrimSpace(in.IPAddress)
	if caller != "" && (existing.IPAddress == nil || *existing.IPAddress != caller) {
		logger.FromContext(ctx).Warn("detail update from a different address",
			"response_id", id, "ip", caller)
		return nil, apperr.Forbidden(apperr.CodeAddressMismatch, "You can only add details to your own response")
	}

	updated, err := s.store.UpdateDetails(ctx, id, store.DetailsPatch{
		FreeResponse:      free,
		RespondentName:    name,
		ClearSuspectedBot: free != nil,
	})
	if errors.Is(err, store.ErrNotFound) {
		return nil, apperr.NotFound(apperr.CodeResponseMissing, "Response not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.afterCommit(ctx, LiveResponseUpdated, updated, nil)
	return updated, nil
}

func (s *SubmissionService) locate(ctx context.Context, address *string) *string {
	if address == nil {
		return nil
	}
	return s.locator.Locate(ctx, *address)
}

func trimmedOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(strings.TrimSpace(*s))
}
