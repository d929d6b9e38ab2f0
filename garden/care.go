package garden

import (
	"context"
	"math"
	"time"
)

type CareStatus string

const (
	CareHealthy   CareStatus = "healthy"
	CareAttention CareStatus = "attention"
	CareNeglected CareStatus = "neglected"
)

// CareEngine classifies how recently a plant was cared for. Spray events do
// not count as care here; spraying has its own forecast.
type CareEngine struct {
	repo *Repository
	now  func() time.Time
}

func NewCareEngine(repo *Repository) *CareEngine {
	return &CareEngine{repo: repo, now: time.Now}
}

func (e *CareEngine) Status(ctx context.Context, plantID uint) (CareStatus, error) {
	events, err := e.repo.EventsForPlant(ctx, plantID)
	if err != nil {
		return "", err
	}

	var lastCare *Event
	for i := range events {
		if events[i].EventType != EventSpray {
			lastCare = &events[i]
			break
		}
	}
	if lastCare == nil {
		return CareNeglected, nil
	}

	last, err := parseDate(lastCare.Date)
	if err != nil {
		return "", err
	}
	daysSince := int(math.Floor(e.now().Sub(last).Hours() / 24))

	switch {
	case daysSince <= 7:
		return CareHealthy, nil
	case daysSince <= 14:
		return CareAttention, nil
	default:
		return CareNeglected, nil
	}
}
