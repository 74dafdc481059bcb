package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/store"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityFor(t *testing.T) {
	assert.Equal(t, ByHash{Hash: "abc"}, IdentityFor(ua(" abc "), ua("1.2.3.4"), time.Hour))
	assert.Equal(t, ByAddress{Address: "1.2.3.4", Window: time.Hour}, IdentityFor(ua("  "), ua("1.2.3.4"), time.Hour))
	assert.Equal(t, ByAddress{Address: "1.2.3.4", Window: time.Hour}, IdentityFor(nil, ua("1.2.3.4"), time.Hour))
	assert.Nil(t, IdentityFor(nil, nil, time.Hour))
	assert.Nil(t, IdentityFor(ua(""), ua(""), time.Hour))
}

func TestIdentityResolver_Resolve(t *testing.T) {
	mem := store.NewMemoryStore()
	clock := newFakeClock()
	surveyID := uuid.New()
	ip, hash := "1.2.3.4", "abc"
	sub := models.Submission{ID: uuid.New(), SurveyID: surveyID, HashMD5: &hash, IPAddress: &ip, CreatedAt: clock.Now()}
	mem.PutSubmission(sub)

	r := NewIdentityResolver(mem, clock.Now)
	ctx := context.Background()

	got, err := r.Resolve(ctx, surveyID, ByHash{Hash: "abc"})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, sub.ID, got.ID)

	got, err = r.Resolve(ctx, uuid.New(), ByHash{Hash: "abc"})
	require.NoError(t, err)
	assert.Nil(t, got)

	clock.Advance(2 * time.Hour)
	got, err = r.Resolve(ctx, surveyID, ByAddress{Address: ip, Window: time.Hour})
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = r.Resolve(ctx, surveyID, ByAddress{Address: ip, Window: 3 * time.Hour})
	require.NoError(t, err)
	require.NotNil(t, got)

	got, err = r.Resolve(ctx, surveyID, nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}
