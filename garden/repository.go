package garden

import (
	"context"
	"errors"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository is the only component that touches the store. It enforces the
// two integrity rules SQLite does not: cascading plant deletion and the
// modifiedAt stamp on events. Referential integrity on creation is the
// caller's problem.
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// plantCols and eventCols translate the JSON field names accepted in
// partial patches to their column names. Unknown keys are dropped.
var plantCols = map[string]string{
	"name": "name", "type": "type", "row": "row", "x": "x", "y": "y",
	"emoji": "emoji", "bedId": "bed_id", "notes": "notes",
}

var eventCols = map[string]string{
	"plantId": "plant_id", "eventType": "event_type", "date": "date", "notes": "notes",
}

func filterPatch(patch map[string]any, cols map[string]string) map[string]any {
	out := make(map[string]any, len(patch))
	for k, v := range patch {
		if col, ok := cols[k]; ok {
			out[col] = v
		}
	}
	return out
}

// --- Plants ---

func (r *Repository) AddPlant(ctx context.Context, p *Plant) (uint, error) {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return 0, err
	}
	return p.ID, nil
}

// AddPlantToBed creates a bed-contained plant: type forced to bed-plant,
// row and coordinates cleared, bed back-reference set.
func (r *Repository) AddPlantToBed(ctx context.Context, bedID uint, p *Plant) (uint, error) {
	p.Type = PlantTypeBedPlant
	p.BedID = &bedID
	p.Row = nil
	p.X = nil
	p.Y = nil
	return r.AddPlant(ctx, p)
}

// Plant returns nil without error when the id is unknown.
func (r *Repository) Plant(ctx context.Context, id uint) (*Plant, error) {
	var p Plant
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) AllPlants(ctx context.Context) ([]Plant, error) {
	var plants []Plant
	err := r.db.WithContext(ctx).Order("id").Find(&plants).Error
	return plants, err
}

func (r *Repository) PlantsInBed(ctx context.Context, bedID uint) ([]Plant, error) {
	var plants []Plant
	err := r.db.WithContext(ctx).Where("bed_id = ?", bedID).Order("id").Find(&plants).Error
	return plants, err
}

// UpdatePlant merges a partial patch into the stored record. A missing id
// is a no-op.
func (r *Repository) UpdatePlant(ctx context.Context, id uint, patch map[string]any) error {
	cols := filterPatch(patch, plantCols)
	if len(cols) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&Plant{}).Where("id = ?", id).Updates(cols).Error
}

// DeletePlant removes the plant together with every event and photo that
// references it, in one transaction.
func (r *Repository) DeletePlant(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("plant_id = ?", id).Delete(&Event{}).Error; err != nil {
			return err
		}
		if err := tx.Where("plant_id = ?", id).Delete(&Photo{}).Error; err != nil {
			return err
		}
		return tx.Delete(&Plant{}, id).Error
	})
}

// --- Events ---

// AddEvent stamps ModifiedAt, overriding any caller-supplied value.
func (r *Repository) AddEvent(ctx context.Context, e *Event) (uint, error) {
	e.ModifiedAt = r.now()
	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return 0, err
	}
	return e.ID, nil
}

func (r *Repository) Event(ctx context.Context, id uint) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).First(&e, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *Repository) UpdateEvent(ctx context.Context, id uint, patch map[string]any) error {
	cols := filterPatch(patch, eventCols)
	cols["modified_at"] = r.now()
	return r.db.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Updates(cols).Error
}

func (r *Repository) DeleteEvent(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&Event{}, id).Error
}

// EventsForPlant returns the plant's events most recent first. Date ties
// break on descending id.
func (r *Repository) EventsForPlant(ctx context.Context, plantID uint) ([]Event, error) {
	var events []Event
	err := r.db.WithContext(ctx).
		Where("plant_id = ?", plantID).
		Order("date DESC, id DESC").
		Find(&events).Error
	return events, err
}

// LastEventOfType resolves over the (plant_id, event_type) composite index;
// nil without error when no such event exists.
func (r *Repository) LastEventOfType(ctx context.Context, plantID uint, et EventType) (*Event, error) {
	var e Event
	err := r.db.WithContext(ctx).
		Where("plant_id = ? AND event_type = ?", plantID, et).
		Order("date DESC, id DESC").
		First(&e).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// --- Settings ---

// Setting returns the stored value for key, or def when absent.
func (r *Repository) Setting(ctx context.Context, key string, def datatypes.JSON) (datatypes.JSON, error) {
	var s Setting
	err := r.db.WithContext(ctx).First(&s, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return def, nil
	}
	if err != nil {
		return nil, err
	}
	return s.Value, nil
}

// PutSetting upserts by key.
func (r *Repository) PutSetting(ctx context.Context, key string, value datatypes.JSON) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&Setting{Key: key, Value: value}).Error
}

// --- Photos (storage level; invariants live in PhotoService) ---

func (r *Repository) Photo(ctx context.Context, id uint) (*Photo, error) {
	var p Photo
	err := r.db.WithContext(ctx).First(&p, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) PhotosForPlant(ctx context.Context, plantID uint) ([]Photo, error) {
	var photos []Photo
	err := r.db.WithContext(ctx).Where("plant_id = ?", plantID).Order("id").Find(&photos).Error
	return photos, err
}

// MainPhotoForPlant prefers the flagged photo, falls back to the first one,
// and returns nil when the plant has no photos at all.
func (r *Repository) MainPhotoForPlant(ctx context.Context, plantID uint) (*Photo, error) {
	var p Photo
	err := r.db.WithContext(ctx).
		Where("plant_id = ? AND is_main = ?", plantID, true).
		First(&p).Error
	if err == nil {
		return &p, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	photos, err := r.PhotosForPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, nil
	}
	return &photos[0], nil
}
