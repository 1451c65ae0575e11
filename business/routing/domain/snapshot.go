package domain

import (
	"time"

	"github.com/fd1az/solana-router/internal/apperror"
	"github.com/fd1az/solana-router/internal/asset"
)

// Snapshot is a frozen set of venues as of one logical point in time.
// Routers only read from it, so one snapshot can serve concurrent calls.
type Snapshot struct {
	venues  []Venue
	takenAt time.Time
}

// NewSnapshot copies venues into a new snapshot.
func NewSnapshot(takenAt time.Time, venues ...Venue) Snapshot {
	return Snapshot{
		venues:  append([]Venue(nil), venues...),
		takenAt: takenAt,
	}
}

// Len is the number of venues.
func (s Snapshot) Len() int { return len(s.venues) }

// IsEmpty reports whether the snapshot has no venues.
func (s Snapshot) IsEmpty() bool { return len(s.venues) == 0 }

// At returns venue i in snapshot order.
func (s Snapshot) At(i int) Venue { return s.venues[i] }

// TakenAt is when the provider captured the snapshot.
func (s Snapshot) TakenAt() time.Time { return s.takenAt }

// Venues returns a copy of all venues in snapshot order.
func (s Snapshot) Venues() []Venue {
	return append([]Venue(nil), s.venues...)
}

// Validate checks every venue.
func (s Snapshot) Validate() error {
	for _, v := range s.venues {
		if err := v.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Assets returns the distinct assets traded in the snapshot, in first-seen order.
func (s Snapshot) Assets() []asset.AssetID {
	seen := make(map[asset.AssetID]struct{}, len(s.venues)*2)
	var out []asset.AssetID
	for _, v := range s.venues {
		a, b := v.AssetPair()
		for _, id := range [2]asset.AssetID{a, b} {
			if _, ok := seen[id]; !ok {
				seen[id] = struct{}{}
				out = append(out, id)
			}
		}
	}
	return out
}

// Request is a routing request: sell AmountIn of TokenIn for TokenOut.
type Request struct {
	TokenIn  asset.AssetID
	TokenOut asset.AssetID
	AmountIn uint64
}

// Validate rejects degenerate requests with InvalidRequest.
func (r Request) Validate() error {
	switch {
	case r.TokenIn.IsZero() || r.TokenOut.IsZero():
		return apperror.New(apperror.CodeInvalidRequest, apperror.WithContext("token mint is required"))
	case r.TokenIn.Equals(r.TokenOut):
		return apperror.New(apperror.CodeInvalidRequest, apperror.WithContextf("source equals destination %s", r.TokenIn))
	case r.AmountIn == 0:
		return apperror.New(apperror.CodeInvalidRequest, apperror.WithContext("amount_in must be positive"))
	}
	return nil
}
