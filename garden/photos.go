package garden

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disintegration/imaging"
	"gorm.io/gorm"
)

const (
	// MaxPhotosPerPlant bounds the photo set; a fourth add is rejected.
	MaxPhotosPerPlant = 3

	maxImageDimension = 800
	jpegQuality       = 70
)

// PhotoService ingests raw image bytes, normalizes them and keeps the
// per-plant invariants: at most MaxPhotosPerPlant photos, exactly one main
// photo whenever any exist.
type PhotoService struct {
	db   *gorm.DB
	repo *Repository
	now  func() time.Time
}

func NewPhotoService(db *gorm.DB, repo *Repository) *PhotoService {
	return &PhotoService{db: db, repo: repo, now: time.Now}
}

// Compress decodes the input, scales it down so the longer side is at most
// maxImageDimension (aspect preserved, never upscaled) and re-encodes as
// JPEG at the fixed quality.
func (s *PhotoService) Compress(input []byte) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(input), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageDecode, err)
	}

	bounds := img.Bounds()
	if bounds.Dx() > maxImageDimension || bounds.Dy() > maxImageDimension {
		img = imaging.Fit(img, maxImageDimension, maxImageDimension, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(jpegQuality)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageEncode, err)
	}
	return buf.Bytes(), nil
}

// AddPhoto compresses and stores a new photo. The first photo of a plant
// becomes the main one. Returns ErrPhotoLimit when the plant already holds
// MaxPhotosPerPlant; nothing is persisted when compression fails.
func (s *PhotoService) AddPhoto(ctx context.Context, plantID uint, input []byte) (*Photo, error) {
	existing, err := s.repo.PhotosForPlant(ctx, plantID)
	if err != nil {
		return nil, err
	}
	if len(existing) >= MaxPhotosPerPlant {
		return nil, fmt.Errorf("%w: plant %d already has %d", ErrPhotoLimit, plantID, len(existing))
	}

	data, err := s.Compress(input)
	if err != nil {
		return nil, err
	}

	photo := &Photo{
		PlantID:     plantID,
		Data:        data,
		ContentType: "image/jpeg",
		IsMain:      len(existing) == 0,
		CreatedAt:   s.now(),
	}
	if err := s.db.WithContext(ctx).Create(photo).Error; err != nil {
		return nil, err
	}
	return photo, nil
}

// SetMainPhoto flags the given photo as main and clears the flag on its
// siblings, atomically. Unknown ids are a no-op.
func (s *PhotoService) SetMainPhoto(ctx context.Context, photoID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var photo Photo
		err := tx.First(&photo, photoID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Model(&Photo{}).
			Where("plant_id = ?", photo.PlantID).
			Update("is_main", false).Error; err != nil {
			return err
		}
		return tx.Model(&Photo{}).
			Where("id = ?", photoID).
			Update("is_main", true).Error
	})
}

// DeletePhoto removes a photo; when the main one goes and siblings remain,
// one of them is promoted.
func (s *PhotoService) DeletePhoto(ctx context.Context, photoID uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var photo Photo
		err := tx.First(&photo, photoID).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := tx.Delete(&Photo{}, photoID).Error; err != nil {
			return err
		}
		if !photo.IsMain {
			return nil
		}
		var next Photo
		err = tx.Where("plant_id = ?", photo.PlantID).Order("id").First(&next).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return tx.Model(&Photo{}).Where("id = ?", next.ID).Update("is_main", true).Error
	})
}
