package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/logger"
	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/store"
	"github.com/google/uuid"
)

// DefaultScanWindow is how far back the detector looks for same-address activity.
const DefaultScanWindow = 10 * time.Minute

// ScanResult describes one detector pass.
type ScanResult struct {
	WindowSize      int
	DistinctAnswers int // within the triggering survey
	DistinctSurveys int // across all surveys
	Triggered       bool
	Flagged         []uuid.UUID
}

// ScannerDetector retroactively flags rapid multi-answer or multi-survey activity from
// one address. Audit and live-feed failures are logged; only store errors are returned.
type ScannerDetector struct {
	store   store.Store
	window  time.Duration
	now     func() time.Time
	auditor ScanAuditor
	live    LivePublisher
}

type ScannerOption func(*ScannerDetector)

func WithScanAuditor(a ScanAuditor) ScannerOption {
	return func(d *ScannerDetector) { d.auditor = a }
}

func WithScanLive(p LivePublisher) ScannerOption {
	return func(d *ScannerDetector) { d.live = p }
}

func NewScannerDetector(s store.Store, window time.Duration, now func() time.Time, opts ...ScannerOption) *ScannerDetector {
	if window <= 0 {
		window = DefaultScanWindow
	}
	if now == nil {
		now = time.Now
	}
	d := &ScannerDetector{store: s, window: window, now: now}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Detect inspects the window ending now for address. surveyID is the survey of the
// submission that triggered the pass.
func (d *ScannerDetector) Detect(ctx context.Context, surveyID uuid.UUID, address string) (ScanResult, error) {
	var result ScanResult
	if address == "" {
		return result, nil
	}

	recent, err := d.store.ListByAddressSince(ctx, address, d.now().Add(-d.window))
	if err != nil {
		return result, fmt.Errorf("load recent submissions: %w", err)
	}
	result.WindowSize = len(recent)
	if len(recent) < 2 {
		return result, nil
	}

	answers := make(map[string]struct{})
	surveys := make(map[uuid.UUID]struct{})
	for _, s := range recent {
		surveys[s.SurveyID] = struct{}{}
		if s.SurveyID == surveyID {
			answers[s.AnswerValue] = struct{}{}
		}
	}
	result.DistinctAnswers = len(answers)
	result.DistinctSurveys = len(surveys)
	result.Triggered = len(answers) > 1 || len(surveys) > 1
	if !result.Triggered {
		return result, nil
	}

	for _, s := range recent {
		// A real comment is proof of a human; already-flagged rows need no write.
		if s.HasFreeResponse() || s.IsSuspectedBot {
			continue
		}
		result.Flagged = append(result.Flagged, s.ID)
	}
	if len(result.Flagged) == 0 {
		return result, nil
	}

	if _, err := d.store.FlagSuspectedBots(ctx, result.Flagged); err != nil {
		return result, fmt.Errorf("flag suspected bots: %w", err)
	}

	log := logger.FromContext(ctx)
	log.Info("scanner pattern flagged submissions",
		"ip", address,
		"window_size", result.WindowSize,
		"distinct_answers", result.DistinctAnswers,
		"distinct_surveys", result.DistinctSurveys,
		"flagged", len(result.Flagged),
	)

	d.record(ctx, surveyID, address, recent, result)
	d.announce(ctx, recent, result.Flagged)
	return result, nil
}

func (d *ScannerDetector) record(ctx context.Context, surveyID uuid.UUID, address string, recent []models.Submission, result ScanResult) {
	if d.auditor == nil {
		return
	}

	event := models.ScannerEvent{
		DetectedAt:      d.now().UTC(),
		IPAddress:       address,
		TriggerSurveyID: surveyID.String(),
		WindowSize:      result.WindowSize,
		SurveyIDs:       distinctSorted(recent, func(s models.Submission) string { return s.SurveyID.String() }),
		AnswerValues:    distinctSorted(recent, func(s models.Submission) string { return s.AnswerValue }),
		FlaggedIDs:      make([]string, len(result.Flagged)),
	}
	for i, id := range result.Flagged {
		event.FlaggedIDs[i] = id.String()
	}

	if err := d.auditor.RecordScan(ctx, event); err != nil {
		logger.FromContext(ctx).Warn("failed to record scanner event", "ip", address, "error", err)
	}
}

// announce sends one flagged event per affected survey.
func (d *ScannerDetector) announce(ctx context.Context, recent []models.Submission, flagged []uuid.UUID) {
	if d.live == nil {
		return
	}

	ids := make(map[uuid.UUID]struct{}, len(flagged))
	for _, id := range flagged {
		ids[id] = struct{}{}
	}
	bySurvey := make(map[uuid.UUID][]string)
	for _, s := range recent {
		if _, ok := ids[s.ID]; ok {
			bySurvey[s.SurveyID] = append(bySurvey[s.SurveyID], s.ID.String())
		}
	}

	for sid, list := range bySurvey {
		err := d.live.Publish(ctx, LiveEvent{
			Type:           LiveResponsesFlagged,
			SurveyID:       sid.String(),
			IsSuspectedBot: true,
			FlaggedIDs:     list,
		})
		if err != nil {
			logger.FromContext(ctx).Debug("live publish failed", "survey_id", sid, "error", err)
		}
	}
}

func distinctSorted(subs []models.Submission, key func(models.Submission) string) []string {
	seen := make(map[string]struct{}, len(subs))
	out := make([]string, 0, len(subs))
	for _, s := range subs {
		k := key(s)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
