package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	mu     sync.Mutex
	writes []any
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) Close() error { return nil }

func (c *fakeConn) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func TestLiveFeed_LocalFanOut(t *testing.T) {
	feed := NewLiveFeed(nil, nil)
	watching, other := &fakeConn{}, &fakeConn{}

	unsubscribe := feed.Subscribe("s1", watching)
	feed.Subscribe("s2", other)
	assert.Equal(t, 1, feed.Subscribers("s1"))

	require.NoError(t, feed.Publish(context.Background(), LiveEvent{Type: LiveResponseCreated, SurveyID: "s1", ResponseID: "r1"}))
	require.Equal(t, 1, watching.count())
	assert.Equal(t, 0, other.count())

	event := watching.writes[0].(LiveEvent)
	assert.Equal(t, "r1", event.ResponseID)
	assert.False(t, event.Timestamp.IsZero())

	unsubscribe()
	assert.Equal(t, 0, feed.Subscribers("s1"))
	require.NoError(t, feed.Publish(context.Background(), LiveEvent{Type: LiveResponseCreated, SurveyID: "s1"}))
	assert.Equal(t, 1, watching.count())
}

func TestLiveFeed_IgnoresEventsWithoutSurvey(t *testing.T) {
	feed := NewLiveFeed(nil, nil)
	conn := &fakeConn{}
	feed.Subscribe("", conn)

	require.NoError(t, feed.Publish(context.Background(), LiveEvent{Type: LiveResponseCreated}))
	assert.Equal(t, 0, conn.count())

	recent, err := feed.Recent(context.Background(), "s1")
	require.NoError(t, err)
	assert.Empty(t, recent)
}
