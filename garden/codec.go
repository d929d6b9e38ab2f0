package garden

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ExportedPhoto mirrors Photo with the binary payload framed as a
// self-describing data URI so the document stays JSON-portable.
type ExportedPhoto struct {
	ID        uint      `json:"id"`
	PlantID   uint      `json:"plantId"`
	Data      string    `json:"data"`
	IsMain    bool      `json:"isMain"`
	CreatedAt time.Time `json:"createdAt"`
}

// ExportDocument is the portable snapshot of the whole store.
type ExportDocument struct {
	Plants     []Plant         `json:"plants"`
	Events     []Event         `json:"events"`
	Settings   []Setting       `json:"settings"`
	Photos     []ExportedPhoto `json:"photos"`
	ExportedAt string          `json:"exportedAt"`
}

// Codec serializes the full repository state and restores it transactionally.
type Codec struct {
	db  *gorm.DB
	now func() time.Time
}

func NewCodec(db *gorm.DB) *Codec {
	return &Codec{db: db, now: time.Now}
}

func (c *Codec) Export(ctx context.Context) (*ExportDocument, error) {
	doc := &ExportDocument{
		Plants:   []Plant{},
		Events:   []Event{},
		Settings: []Setting{},
		Photos:   []ExportedPhoto{},
	}
	db := c.db.WithContext(ctx)

	if err := db.Order("id").Find(&doc.Plants).Error; err != nil {
		return nil, err
	}
	if err := db.Order("id").Find(&doc.Events).Error; err != nil {
		return nil, err
	}
	if err := db.Order("key").Find(&doc.Settings).Error; err != nil {
		return nil, err
	}

	var photos []Photo
	if err := db.Order("id").Find(&photos).Error; err != nil {
		return nil, err
	}
	for _, p := range photos {
		doc.Photos = append(doc.Photos, ExportedPhoto{
			ID:        p.ID,
			PlantID:   p.PlantID,
			Data:      encodeDataURI(p.ContentType, p.Data),
			IsMain:    p.IsMain,
			CreatedAt: p.CreatedAt,
		})
	}

	doc.ExportedAt = c.now().UTC().Format(time.RFC3339)
	return doc, nil
}

// Import replaces the entire store with the document's records. The clear
// and bulk insert of all four collections run in one transaction; a failure
// anywhere rolls the whole thing back.
func (c *Codec) Import(ctx context.Context, doc *ExportDocument) error {
	// Decode payloads up front so a malformed document never reaches the store.
	photos := make([]Photo, 0, len(doc.Photos))
	for _, ep := range doc.Photos {
		contentType, data, err := decodeDataURI(ep.Data)
		if err != nil {
			return err
		}
		photos = append(photos, Photo{
			ID:          ep.ID,
			PlantID:     ep.PlantID,
			Data:        data,
			ContentType: contentType,
			IsMain:      ep.IsMain,
			CreatedAt:   ep.CreatedAt,
		})
	}

	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"plants", "events", "settings", "photos"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return err
			}
		}
		if len(doc.Plants) > 0 {
			if err := tx.Create(&doc.Plants).Error; err != nil {
				return err
			}
		}
		if len(doc.Events) > 0 {
			if err := tx.Create(&doc.Events).Error; err != nil {
				return err
			}
		}
		if len(doc.Settings) > 0 {
			if err := tx.Create(&doc.Settings).Error; err != nil {
				return err
			}
		}
		if len(photos) > 0 {
			if err := tx.Create(&photos).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func encodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

func decodeDataURI(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing data: prefix", ErrImageDecode)
	}
	contentType, payload, ok := strings.Cut(rest, ";base64,")
	if !ok {
		return "", nil, fmt.Errorf("%w: not base64-framed", ErrImageDecode)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}
	return contentType, data, nil
}
