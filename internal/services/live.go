package services

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Live event types pushed to survey owners.
const (
	LiveResponseCreated    = "response.created"
	LiveResponseOverridden = "response.overridden"
	LiveResponseUpdated    = "response.updated"
	LiveResponseDeleted    = "response.deleted"
	LiveResponsesFlagged   = "responses.flagged"
)

const (
	liveChannelPrefix = "survey:live:"
	liveRecentSuffix  = ":recent"
	liveRecentMaxLen  = 50
	liveRecentTTL     = 1 * time.Hour
)

// LiveEvent is broadcast over Redis and WebSocket. It never carries tracking data.
type LiveEvent struct {
	Type           string    `json:"type"`
	SurveyID       string    `json:"survey_id"`
	ResponseID     string    `json:"response_id,omitempty"`
	AnswerValue    string    `json:"answer_value,omitempty"`
	IsSuspectedBot bool      `json:"is_suspected_bot"`
	FlaggedIDs     []string  `json:"flagged_ids,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// LivePublisher is what the submission path needs from the feed.
type LivePublisher interface {
	Publish(ctx context.Context, event LiveEvent) error
}

// LiveConn is the minimal interface our WebSocket implementation must satisfy.
type LiveConn interface {
	WriteJSON(v any) error
	Close() error
}

type liveSubscriber struct {
	conn LiveConn
	mu   sync.Mutex // one writer at a time
}

func (s *liveSubscriber) send(event LiveEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteJSON(event)
}

// LiveFeed fans survey events out to connected owners. With a Redis client, events go
// through pub/sub so every instance sees them; without one, delivery is local only.
type LiveFeed struct {
	client *redis.Client
	log    *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[*liveSubscriber]struct{}

	startOnce sync.Once
}

func NewLiveFeed(client *redis.Client, log *slog.Logger) *LiveFeed {
	if log == nil {
		log = slog.Default()
	}
	return &LiveFeed{
		client: client,
		log:    log,
		subs:   make(map[string]map[*liveSubscriber]struct{}),
	}
}

func liveChannel(surveyID string) string {
	return liveChannelPrefix + surveyID
}

func liveRecentKey(surveyID string) string {
	return liveChannelPrefix + surveyID + liveRecentSuffix
}

// Subscribe registers conn for a survey's events. The returned func unregisters it.
func (f *LiveFeed) Subscribe(surveyID string, conn LiveConn) func() {
	sub := &liveSubscriber{conn: conn}

	f.mu.Lock()
	if f.subs[surveyID] == nil {
		f.subs[surveyID] = make(map[*liveSubscriber]struct{})
	}
	f.subs[surveyID][sub] = struct{}{}
	f.mu.Unlock()

	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[surveyID], sub)
		if len(f.subs[surveyID]) == 0 {
			delete(f.subs, surveyID)
		}
	}
}

// Subscribers returns how many local connections watch a survey.
func (f *LiveFeed) Subscribers(surveyID string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.subs[surveyID])
}

// Publish records the event in the recent list and broadcasts it.
func (f *LiveFeed) Publish(ctx context.Context, event LiveEvent) error {
	if event.SurveyID == "" {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	if f.client == nil {
		f.fanOut(event)
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	key := liveRecentKey(event.SurveyID)
	pipe := f.client.Pipeline()
	pipe.LPush(ctx, key, data)
	pipe.LTrim(ctx, key, 0, liveRecentMaxLen-1)
	pipe.Expire(ctx, key, liveRecentTTL)
	pipe.Publish(ctx, liveChannel(event.SurveyID), data)
	_, err = pipe.Exec(ctx)
	return err
}

// Recent returns the buffered events for a survey, oldest first.
func (f *LiveFeed) Recent(ctx context.Context, surveyID string) ([]LiveEvent, error) {
	if f.client == nil {
		return nil, nil
	}

	raw, err := f.client.LRange(ctx, liveRecentKey(surveyID), 0, -1).Result()
	if err != nil {
		return nil, err
	}

	events := make([]LiveEvent, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		var e LiveEvent
		if json.Unmarshal([]byte(raw[i]), &e) != nil {
			continue
		}
		events = append(events, e)
	}
	return events, nil
}

func (f *LiveFeed) fanOut(event LiveEvent) {
	f.mu.RLock()
	targets := make([]*liveSubscriber, 0, len(f.subs[event.SurveyID]))
	for sub := range f.subs[event.SurveyID] {
		targets = append(targets, sub)
	}
	f.mu.RUnlock()

	for _, sub := range targets {
		if err := sub.send(event); err != nil {
			f.log.Debug("live event write failed", "survey_id", event.SurveyID, "error", err)
		}
	}
}

// Start runs the shared Redis listener until ctx is done. Safe to call more than once.
func (f *LiveFeed) Start(ctx context.Context) {
	if f.client == nil {
		f.log.Info("redis not configured; live feed is local only")
		return
	}
	f.startOnce.Do(func() {
		go f.run(ctx)
	})
}

func (f *LiveFeed) run(ctx context.Context) {
	backoff := time.Second

	for ctx.Err() == nil {
		func() {
			pubsub := f.client.PSubscribe(ctx, liveChannelPrefix+"*")
			defer pubsub.Close()

			f.log.Info("live feed subscriber started", "pattern", liveChannelPrefix+"*")

			for {
				msg, err := pubsub.ReceiveMessage(ctx)
				if err != nil {
					if ctx.Err() != nil {
						return
					}
					f.log.Warn("live feed subscriber error", "error", err, "retry_in", backoff)
					select {
					case <-ctx.Done():
					case <-time.After(backoff):
					}
					backoff = min(backoff*2, 30*time.Second)
					return
				}
				backoff = time.Second

				if strings.HasSuffix(msg.Channel, liveRecentSuffix) {
					continue
				}

				var event LiveEvent
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					f.log.Warn("failed to unmarshal live event", "error", err)
					continue
				}
				f.fanOut(event)
			}
		}()
	}
}
