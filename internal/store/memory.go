package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in maps. Used by tests and local runs without Postgres.
type MemoryStore struct {
	mu      sync.RWMutex
	surveys map[uuid.UUID]models.Survey
	subms   map[uuid.UUID]models.Submission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		surveys: make(map[uuid.UUID]models.Survey),
		subms:   make(map[uuid.UUID]models.Submission),
	}
}

// PutSurvey inserts or replaces a survey.
func (m *MemoryStore) PutSurvey(s models.Survey) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.surveys[s.ID] = s
}

// PutSubmission inserts or replaces a submission as-is, keeping its CreatedAt.
func (m *MemoryStore) PutSubmission(s models.Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subms[s.ID] = cloneSubmission(s)
}

// Count returns the number of stored submissions.
func (m *MemoryStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.subms)
}

func (m *MemoryStore) GetSurvey(ctx context.Context, id uuid.UUID) (*models.Survey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.surveys[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (m *MemoryStore) GetSurveyByLinkID(ctx context.Context, linkID string) (*models.Survey, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, s := range m.surveys {
		if s.UniqueLinkID == linkID {
			s := s
			return &s, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) GetSubmission(ctx context.Context, id uuid.UUID) (*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.subms[id]
	if !ok {
		return nil, ErrNotFound
	}
	c := cloneSubmission(s)
	return &c, nil
}

func (m *MemoryStore) FindByHash(ctx context.Context, surveyID uuid.UUID, hash string) (*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *models.Submission
	for _, s := range m.subms {
		if s.SurveyID != surveyID || s.HashMD5 == nil || *s.HashMD5 != hash {
			continue
		}
		if found == nil || s.CreatedAt.Before(found.CreatedAt) {
			c := cloneSubmission(s)
			found = &c
		}
	}
	return found, nil
}

func (m *MemoryStore) FindLatestByAddress(ctx context.Context, surveyID uuid.UUID, address string, since time.Time) (*models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var found *models.Submission
	for _, s := range m.subms {
		if s.SurveyID != surveyID || s.IPAddress == nil || *s.IPAddress != address {
			continue
		}
		if s.CreatedAt.Before(since) {
			continue
		}
		if found == nil || s.CreatedAt.After(found.CreatedAt) {
			c := cloneSubmission(s)
			found = &c
		}
	}
	return found, nil
}

func (m *MemoryStore) ListByAddressSince(ctx context.Context, address string, since time.Time) ([]models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []models.Submission
	for _, s := range m.subms {
		if s.IPAddress == nil || *s.IPAddress != address || s.CreatedAt.Before(since) {
			continue
		}
		out = append(out, cloneSubmission(s))
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) ListBySurvey(ctx context.Context, surveyID uuid.UUID, includeBots bool) ([]models.Submission, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Submission, 0)
	for _, s := range m.subms {
		if s.SurveyID != surveyID {
			continue
		}
		if s.IsSuspectedBot && !includeBots {
			continue
		}
		out = append(out, cloneSubmission(s))
	}
	sortNewestFirst(out)
	return out, nil
}

func (m *MemoryStore) InsertSubmission(ctx context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subms[sub.ID] = cloneSubmission(*sub)
	return nil
}

func (m *MemoryStore) OverrideSubmission(ctx context.Context, sub *models.Submission) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subms[sub.ID]
	if !ok {
		return ErrNotFound
	}
	s.AnswerValue = sub.AnswerValue
	s.IPAddress = cloneString(sub.IPAddress)
	s.UserAgent = cloneString(sub.UserAgent)
	s.Location = cloneString(sub.Location)
	s.IsSuspectedBot = sub.IsSuspectedBot
	m.subms[sub.ID] = s
	return nil
}

func (m *MemoryStore) UpdateDetails(ctx context.Context, id uuid.UUID, patch DetailsPatch) (*models.Submission, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subms[id]
	if !ok {
		return nil, ErrNotFound
	}
	if patch.FreeResponse != nil {
		s.FreeResponse = cloneString(patch.FreeResponse)
	}
	if patch.RespondentName != nil && s.RespondentName == nil {
		s.RespondentName = cloneString(patch.RespondentName)
	}
	if patch.ClearSuspectedBot {
		s.IsSuspectedBot = false
	}
	m.subms[id] = s
	c := cloneSubmission(s)
	return &c, nil
}

func (m *MemoryStore) FlagSuspectedBots(ctx context.Context, ids []uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, id := range ids {
		s, ok := m.subms[id]
		if !ok {
			continue
		}
		s.IsSuspectedBot = true
		m.subms[id] = s
		n++
	}
	return n, nil
}

func (m *MemoryStore) DeleteSubmission(ctx context.Context, surveyID uuid.UUID, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subms[id]
	if !ok || s.SurveyID != surveyID {
		return ErrNotFound
	}
	delete(m.subms, id)
	return nil
}

func sortNewestFirst(subs []models.Submission) {
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].CreatedAt.After(subs[j].CreatedAt)
	})
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneSubmission(s models.Submission) models.Submission {
	s.FreeResponse = cloneString(s.FreeResponse)
	s.RespondentName = cloneString(s.RespondentName)
	s.HashMD5 = cloneString(s.HashMD5)
	s.IPAddress = cloneString(s.IPAddress)
	s.UserAgent = cloneString(s.UserAgent)
	s.Location = cloneString(s.Location)
	return s
}
