// Package garden holds the plant inventory, care event log and the
// derivations (spray forecast, care status) computed over them.
package garden

import (
	"time"

	"gorm.io/datatypes"
)

type PlantType string

const (
	PlantTypeGrape    PlantType = "grape"
	PlantTypeFruit    PlantType = "fruit"
	PlantTypeBed      PlantType = "bed"
	PlantTypeOther    PlantType = "other"
	PlantTypeBedPlant PlantType = "bed-plant"
)

type EventType string

const (
	EventPlanted   EventType = "planted"
	EventFlowering EventType = "flowering"
	EventSpray     EventType = "spray"
	EventPruned    EventType = "pruned"
	EventHarvested EventType = "harvested"
	EventSickness  EventType = "sickness"
	EventCrop      EventType = "crop"
	EventWatered   EventType = "watered"
	EventOther     EventType = "other"
)

// Plant is a located garden entity, or a bed-contained one when Type is
// bed-plant (BedID set, coordinates cleared).
type Plant struct {
	ID    uint      `gorm:"primarykey" json:"id"`
	Name  string    `gorm:"index" json:"name"`
	Type  PlantType `gorm:"index" json:"type"`
	Row   *int      `gorm:"index" json:"row"`
	X     *float64  `gorm:"index" json:"x"`
	Y     *float64  `gorm:"index" json:"y"`
	Emoji *string   `gorm:"index" json:"emoji,omitempty"`
	BedID *uint     `gorm:"index" json:"bedId,omitempty"`
	Notes *string   `json:"notes"`
}

// Event is a dated care action against exactly one plant. Date is a plain
// calendar date (YYYY-MM-DD); ModifiedAt is stamped by the repository on
// every add/update and carries no business meaning.
type Event struct {
	ID         uint      `gorm:"primarykey" json:"id"`
	PlantID    uint      `gorm:"index;index:idx_events_plant_event,priority:1" json:"plantId"`
	EventType  EventType `gorm:"index;index:idx_events_plant_event,priority:2" json:"eventType"`
	Date       string    `gorm:"index" json:"date"`
	Notes      *string   `json:"notes"`
	ModifiedAt time.Time `gorm:"index" json:"modifiedAt"`
}

// Setting is a singleton key/value pair, e.g. "sprayIntervals".
type Setting struct {
	Key   string         `gorm:"primaryKey" json:"key"`
	Value datatypes.JSON `json:"value"`
}

// Photo is a compressed image attached to a plant. At most MaxPhotosPerPlant
// exist per plant and exactly one carries IsMain whenever any exist.
type Photo struct {
	ID          uint      `gorm:"primarykey" json:"id"`
	PlantID     uint      `gorm:"index" json:"plantId"`
	Data        []byte    `gorm:"type:blob" json:"-"`
	ContentType string    `json:"contentType"`
	IsMain      bool      `gorm:"index" json:"isMain"`
	CreatedAt   time.Time `json:"createdAt"`
}
