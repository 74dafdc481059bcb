package services

import (
	"context"
	"strings"
	"time"

	"github.com/AnshRaj112/pulse-backend/internal/models"
	"github.com/AnshRaj112/pulse-backend/internal/store"
	"github.com/google/uuid"
)

// DefaultDedupWindow is how long an address keeps its canonical submission.
const DefaultDedupWindow = 24 * time.Hour

// Identity is the dedup key of an incoming submission: either ByHash or ByAddress.
type Identity interface {
	identity()
}

// ByHash matches on the client-supplied content hash, with no time limit.
type ByHash struct {
	Hash string
}

// ByAddress matches the most recent submission from Address inside Window.
type ByAddress struct {
	Address string
	Window  time.Duration
}

func (ByHash) identity()    {}
func (ByAddress) identity() {}

// IdentityFor picks the dedup key. A nil result means no lookup is possible.
func IdentityFor(contentHash, address *string, window time.Duration) Identity {
	if contentHash != nil {
		if h := strings.TrimSpace(*contentHash); h != "" {
			return ByHash{Hash: h}
		}
	}
	if address != nil && *address != "" {
		return ByAddress{Address: *address, Window: window}
	}
	return nil
}

// IdentityResolver finds the existing submission an Identity points at.
type IdentityResolver struct {
	store store.Store
	now   func() time.Time
}

func NewIdentityResolver(s store.Store, now func() time.Time) *IdentityResolver {
	if now == nil {
		now = time.Now
	}
	return &IdentityResolver{store: s, now: now}
}

// Resolve returns (nil, nil) when nothing matches; errors come only from the store.
func (r *IdentityResolver) Resolve(ctx context.Context, surveyID uuid.UUID, id Identity) (*models.Submission, error) {
	switch id := id.(type) {
	case ByHash:
		return r.store.FindByHash(ctx, surveyID, id.Hash)
	case ByAddress:
		window := id.Window
		if window <= 0 {
			window = DefaultDedupWindow
		}
		return r.store.FindLatestByAddress(ctx, surveyID, id.Address, r.now().Add(-window))
	default:
		return nil, nil
	}
}
