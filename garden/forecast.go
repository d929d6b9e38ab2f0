package garden

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

type ForecastStatus string

const (
	ForecastNever   ForecastStatus = "never"
	ForecastOverdue ForecastStatus = "overdue"
	ForecastSoon    ForecastStatus = "soon"
	ForecastOK      ForecastStatus = "ok"
)

// Forecast is the computed next-spray outlook for one plant. Date and
// DaysUntil are nil when status is "never".
type Forecast struct {
	Status    ForecastStatus `json:"status"`
	Date      *string        `json:"date"`
	DaysUntil *int           `json:"daysUntil"`
}

// SprayConfig is one entry of the sprayIntervals setting. A nil Spray means
// the type has no spray schedule.
type SprayConfig struct {
	Spray *int `json:"spray"`
}

const settingSprayIntervals = "sprayIntervals"

func defaultIntervals() map[PlantType]SprayConfig {
	grape, fruit := 14, 21
	return map[PlantType]SprayConfig{
		PlantTypeGrape: {Spray: &grape},
		PlantTypeFruit: {Spray: &fruit},
		PlantTypeBed:   {},
		PlantTypeOther: {},
	}
}

// ForecastEngine derives next-spray status from the plant type's configured
// interval and the most recent spray event. Pure read path; recomputed from
// fresh repository reads on every call.
type ForecastEngine struct {
	repo *Repository
	now  func() time.Time
}

func NewForecastEngine(repo *Repository) *ForecastEngine {
	return &ForecastEngine{repo: repo, now: time.Now}
}

// NextSpray returns nil without error when the plant does not exist or its
// type has no configured interval.
func (e *ForecastEngine) NextSpray(ctx context.Context, plantID uint) (*Forecast, error) {
	plant, err := e.repo.Plant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if plant == nil {
		return nil, nil
	}

	interval, err := e.intervalFor(ctx, plant.Type)
	if err != nil {
		return nil, err
	}
	if interval == nil {
		return nil, nil
	}

	lastSpray, err := e.repo.LastEventOfType(ctx, plantID, EventSpray)
	if err != nil {
		return nil, err
	}
	if lastSpray == nil {
		return &Forecast{Status: ForecastNever}, nil
	}

	last, err := parseDate(lastSpray.Date)
	if err != nil {
		return nil, err
	}
	next := last.AddDate(0, 0, *interval)
	daysUntil := int(math.Ceil(next.Sub(e.now()).Hours() / 24))

	status := ForecastOK
	switch {
	case daysUntil < 0:
		status = ForecastOverdue
	case daysUntil <= 3:
		status = ForecastSoon
	}

	date := next.Format(time.DateOnly)
	return &Forecast{Status: status, Date: &date, DaysUntil: &daysUntil}, nil
}

// intervalFor resolves the spray interval for a plant type. A stored
// sprayIntervals setting replaces the whole default table; the built-in
// defaults apply only when the key is absent. An interval of zero (or
// less) means no spray schedule.
func (e *ForecastEngine) intervalFor(ctx context.Context, pt PlantType) (*int, error) {
	raw, err := e.repo.Setting(ctx, settingSprayIntervals, nil)
	if err != nil {
		return nil, err
	}
	intervals := defaultIntervals()
	if raw != nil {
		intervals = map[PlantType]SprayConfig{}
		if err := json.Unmarshal(raw, &intervals); err != nil {
			return nil, err
		}
	}
	interval := intervals[pt].Spray
	if interval == nil || *interval <= 0 {
		return nil, nil
	}
	return interval, nil
}

// parseDate reads the calendar-date prefix of an ISO date string. Any
// time-of-day suffix is ignored; dates are treated as UTC midnight.
func parseDate(s string) (time.Time, error) {
	if len(s) > len(time.DateOnly) {
		s = s[:len(time.DateOnly)]
	}
	return time.Parse(time.DateOnly, s)
}
