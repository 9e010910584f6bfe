package domain

import (
	"context"
	"time"
)

// Placement tracking is a planned integration. The types and the source
// contract are reserved here (and in migrations) so review platforms can be
// linked to placements later; no connector implements PlacementSource yet.

type PlacementStatus string

const (
	PlacementInquiry       PlacementStatus = "inquiry"
	PlacementTourScheduled PlacementStatus = "tour_scheduled"
	PlacementPlaced        PlacementStatus = "placed"
	PlacementLost          PlacementStatus = "lost"
)

type Placement struct {
	ID         int64
	Platform   Platform
	ExternalID string
	Status     PlacementStatus
	Source     string
	Notes      string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PlacementSource is the per-integration contract, mirroring Connector.
type PlacementSource interface {
	Platform() Platform
	FetchInquiries(ctx context.Context, since *time.Time) ([]Placement, error)
	UpdateStatus(ctx context.Context, externalID string, status PlacementStatus) error
}
