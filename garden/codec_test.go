package garden

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedStore(t *testing.T, db *gorm.DB, repo *Repository) (photoBytes []byte) {
	t.Helper()
	ctx := context.Background()

	bedID, err := repo.AddPlant(ctx, &Plant{Name: "Bed B", Type: PlantTypeBed, X: floatPtr(200), Y: floatPtr(220), Notes: strPtr("Cucumbers, zucchini")})
	require.NoError(t, err)
	vineID, err := repo.AddPlant(ctx, &Plant{Name: "Vine 1-2", Type: PlantTypeGrape, Row: intPtr(1), X: floatPtr(125), Y: floatPtr(345), Emoji: strPtr("🍇")})
	require.NoError(t, err)
	_, err = repo.AddPlantToBed(ctx, bedID, &Plant{Name: "Zucchini"})
	require.NoError(t, err)

	_, err = repo.AddEvent(ctx, &Event{PlantID: vineID, EventType: EventSpray, Date: "2026-01-28"})
	require.NoError(t, err)
	_, err = repo.AddEvent(ctx, &Event{PlantID: vineID, EventType: EventPruned, Date: "2026-02-01", Notes: strPtr("winter pruning")})
	require.NoError(t, err)

	require.NoError(t, repo.PutSetting(ctx, settingSprayIntervals, []byte(`{"grape":{"spray":10}}`)))

	photoBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0x01, 0x02, 0x03, 0x04}
	require.NoError(t, db.Create(&Photo{
		PlantID:     vineID,
		Data:        photoBytes,
		ContentType: "image/jpeg",
		IsMain:      true,
		CreatedAt:   time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC),
	}).Error)
	return photoBytes
}

// TestExportImportRoundTrip covers the round-trip law: export, marshal to
// JSON, import onto an empty store, and get an equivalent record set back,
// photo payloads byte-for-byte.
func TestExportImportRoundTrip(t *testing.T) {
	src := newTestDB(t)
	srcRepo := NewRepository(src)
	photoBytes := seedStore(t, src, srcRepo)
	ctx := context.Background()

	doc, err := NewCodec(src).Export(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, doc.ExportedAt)
	require.Len(t, doc.Photos, 1)
	assert.True(t, strings.HasPrefix(doc.Photos[0].Data, "data:image/jpeg;base64,"))

	// through the portable JSON form
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	restored := new(ExportDocument)
	require.NoError(t, json.Unmarshal(raw, restored))

	dst := newTestDB(t)
	require.NoError(t, NewCodec(dst).Import(ctx, restored))

	dstRepo := NewRepository(dst)
	plants, err := dstRepo.AllPlants(ctx)
	require.NoError(t, err)
	srcPlants, err := srcRepo.AllPlants(ctx)
	require.NoError(t, err)
	assert.Equal(t, srcPlants, plants)

	events, err := dstRepo.EventsForPlant(ctx, 2)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, EventPruned, events[0].EventType)

	val, err := dstRepo.Setting(ctx, settingSprayIntervals, nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"grape":{"spray":10}}`, string(val))

	photo, err := dstRepo.Photo(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, photo)
	assert.Equal(t, photoBytes, photo.Data, "photo payload must survive byte-for-byte")
	assert.Equal(t, "image/jpeg", photo.ContentType)
	assert.True(t, photo.IsMain)
}

// TestImportReplacesExistingState verifies import is replace, not merge.
func TestImportReplacesExistingState(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seedStore(t, db, repo)
	ctx := context.Background()

	doc := &ExportDocument{
		Plants:     []Plant{{ID: 42, Name: "Lone Walnut", Type: PlantTypeFruit}},
		ExportedAt: "2026-02-05T00:00:00Z",
	}
	require.NoError(t, NewCodec(db).Import(ctx, doc))

	plants, err := repo.AllPlants(ctx)
	require.NoError(t, err)
	require.Len(t, plants, 1)
	assert.Equal(t, uint(42), plants[0].ID)

	var eventCount, settingCount, photoCount int64
	db.Model(&Event{}).Count(&eventCount)
	db.Model(&Setting{}).Count(&settingCount)
	db.Model(&Photo{}).Count(&photoCount)
	assert.Zero(t, eventCount)
	assert.Zero(t, settingCount)
	assert.Zero(t, photoCount)
}

// TestImportFailureLeavesStoreIntact verifies the all-or-nothing guarantee:
// a malformed document must not clear anything.
func TestImportFailureLeavesStoreIntact(t *testing.T) {
	db := newTestDB(t)
	repo := NewRepository(db)
	seedStore(t, db, repo)
	ctx := context.Background()

	bad := &ExportDocument{
		Photos: []ExportedPhoto{{ID: 1, PlantID: 1, Data: "not a data uri"}},
	}
	err := NewCodec(db).Import(ctx, bad)
	require.Error(t, err)

	var plantCount, eventCount, settingCount, photoCount int64
	db.Model(&Plant{}).Count(&plantCount)
	db.Model(&Event{}).Count(&eventCount)
	db.Model(&Setting{}).Count(&settingCount)
	db.Model(&Photo{}).Count(&photoCount)
	assert.Equal(t, int64(3), plantCount)
	assert.Equal(t, int64(2), eventCount)
	assert.Equal(t, int64(1), settingCount)
	assert.Equal(t, int64(1), photoCount)
}

func TestDataURICodec(t *testing.T) {
	uri := encodeDataURI("image/png", []byte{1, 2, 3})
	assert.Equal(t, "data:image/png;base64,AQID", uri)

	ct, data, err := decodeDataURI(uri)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)
	assert.Equal(t, []byte{1, 2, 3}, data)

	_, _, err = decodeDataURI("data:image/png;base64,!!!")
	assert.Error(t, err)
	_, _, err = decodeDataURI("image/png;base64,AQID")
	assert.Error(t, err)
}
