// Package progress stores the permanent, per-visitor record of what has been
// found in the world. Saves merge with what is already stored, so a retried
// or out-of-order save can never lose progress.
package progress

import (
	"context"
	"errors"
	"slices"
	"time"
)

var ErrNoVisitor = errors.New("visitor id is required")

// Progress is a visitor's permanent record. Each list is a sorted set.
type Progress struct {
	VisitorID        string    `json:"visitorId"`
	Collectibles     []string  `json:"collectibles"`
	Achievements     []string  `json:"achievements"`
	VisitedBuildings []string  `json:"visitedBuildings"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// New returns empty progress for a visitor.
func New(visitorID string) Progress {
	return Progress{VisitorID: visitorID}
}

// HasCollectible reports whether id has been collected.
func (p Progress) HasCollectible(id string) bool {
	_, found := slices.BinarySearch(p.Collectibles, id)
	return found
}

// HasVisited reports whether building has been parked at.
func (p Progress) HasVisited(building string) bool {
	_, found := slices.BinarySearch(p.VisitedBuildings, building)
	return found
}

// WithCollectible returns a copy of p including id.
func (p Progress) WithCollectible(id string) Progress {
	p.Collectibles = union(p.Collectibles, []string{id})
	return p
}

// WithAchievement returns a copy of p including id.
func (p Progress) WithAchievement(id string) Progress {
	p.Achievements = union(p.Achievements, []string{id})
	return p
}

// WithVisited returns a copy of p including building.
func (p Progress) WithVisited(building string) Progress {
	p.VisitedBuildings = union(p.VisitedBuildings, []string{building})
	return p
}

// CollectibleSet returns the collected ids as a fresh set.
func (p Progress) CollectibleSet() map[string]struct{} {
	set := make(map[string]struct{}, len(p.Collectibles))
	for _, id := range p.Collectibles {
		set[id] = struct{}{}
	}
	return set
}

// Merge is the set union of a and b. The visitor id comes from a unless it
// is empty, and the later UpdatedAt wins.
func Merge(a, b Progress) Progress {
	out := Progress{
		VisitorID:        a.VisitorID,
		Collectibles:     union(a.Collectibles, b.Collectibles),
		Achievements:     union(a.Achievements, b.Achievements),
		VisitedBuildings: union(a.VisitedBuildings, b.VisitedBuildings),
		UpdatedAt:        a.UpdatedAt,
	}
	if out.VisitorID == "" {
		out.VisitorID = b.VisitorID
	}
	if b.UpdatedAt.After(out.UpdatedAt) {
		out.UpdatedAt = b.UpdatedAt
	}
	return out
}

func union(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.Sort(out)
	return slices.Compact(out)
}

// Store loads and saves progress.
type Store interface {
	// Load returns the stored progress, or empty progress for an unknown
	// visitor.
	Load(ctx context.Context, visitorID string) (Progress, error)

	// Save merges p into the stored copy and returns the merged result.
	Save(ctx context.Context, p Progress) (Progress, error)
}
