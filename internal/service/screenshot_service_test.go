package service

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/config"
	"github.com/rmn-lab/roster-api/pkg/storage"
)

type fakeBlobStore struct {
	files   map[string][]byte
	mtimes  map[string]time.Time
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{files: map[string][]byte{}, mtimes: map[string]time.Time{}}
}

func (f *fakeBlobStore) Save(filename string, data []byte) (string, error) {
	f.files[filename] = data
	f.mtimes[filename] = time.Now()
	return filename, nil
}

func (f *fakeBlobStore) Open(string) (*os.File, error) { return nil, os.ErrNotExist }

func (f *fakeBlobStore) Delete(filename string) error {
	delete(f.files, filename)
	delete(f.mtimes, filename)
	f.deleted = append(f.deleted, filename)
	return nil
}

func (f *fakeBlobStore) List(dir, ext string) ([]storage.FileInfo, error) {
	var out []storage.FileInfo
	for rel, data := range f.files {
		if filepath.Dir(rel) != dir || filepath.Ext(rel) != ext {
			continue
		}
		out = append(out, storage.FileInfo{
			Name:    filepath.Base(rel),
			Path:    rel,
			Size:    int64(len(data)),
			ModTime: f.mtimes[rel],
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ModTime.After(out[j].ModTime) })
	return out, nil
}

func (f *fakeBlobStore) Exists(filename string) bool {
	_, ok := f.files[filename]
	return ok
}

func (f *fakeBlobStore) Path(filename string) string { return filename }

type fakeScreenshotStore struct {
	created []models.Screenshot
	deleted []string
}

func (f *fakeScreenshotStore) Create(_ context.Context, shot *models.Screenshot) error {
	f.created = append(f.created, *shot)
	return nil
}

func (f *fakeScreenshotStore) DeleteByFilename(_ context.Context, _ int, filename string) error {
	f.deleted = append(f.deleted, filename)
	return nil
}

func (f *fakeScreenshotStore) ListByWorkplace(context.Context, int) ([]models.ScreenshotDetail, error) {
	return nil, nil
}

type fakeClassroomStore struct {
	enabled bool
}

func (f *fakeClassroomStore) GetOrCreate(_ context.Context, id string) (*models.Classroom, error) {
	return &models.Classroom{ID: id, ScreenshotsEnabled: f.enabled}, nil
}

func (f *fakeClassroomStore) SetScreenshotsEnabled(_ context.Context, _ string, enabled bool) error {
	f.enabled = enabled
	return nil
}

type fakeLatestPlacement struct {
	placement *models.PlacementDetail
}

func (f *fakeLatestPlacement) LatestForAliases(context.Context, []string) (*models.PlacementDetail, error) {
	return f.placement, nil
}

func retentionConfig() config.ScreenshotsConfig {
	return config.ScreenshotsConfig{
		RecentKeep:        100,
		ThinInterval:      15 * time.Minute,
		MaxAge:            365 * 24 * time.Hour,
		CompressThreshold: 1 << 20,
		JPEGQuality:       85,
	}
}

func newScreenshotService(blobs *fakeBlobStore, shots *fakeScreenshotStore, now time.Time) *ScreenshotService {
	svc := NewScreenshotService(shots, &fakeClassroomStore{enabled: true}, &fakeLatestPlacement{}, blobs, retentionConfig(), "329", zap.NewNop())
	svc.now = func() time.Time { return now }
	return svc
}

func seedCapture(blobs *fakeBlobStore, seat int, taken time.Time, size int) string {
	name := taken.Format(models.ScreenshotTimeFormat) + ".png"
	rel := filepath.Join(strconv.Itoa(seat), name)
	blobs.files[rel] = make([]byte, size)
	blobs.mtimes[rel] = taken
	return name
}

func TestEnforceRetentionKeepsRecentFiles(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.Local)
	blobs := newFakeBlobStore()
	shots := &fakeScreenshotStore{}

	// 106 captures one minute apart. The 100 newest are untouchable; of
	// the 6 aged ones only the newest survives the 15-minute thinning.
	for i := 0; i < 106; i++ {
		seedCapture(blobs, 7, now.Add(-time.Duration(i)*time.Minute), 100)
	}

	svc := newScreenshotService(blobs, shots, now)
	res, err := svc.EnforceRetention(context.Background(), 7)
	require.NoError(t, err)

	assert.Equal(t, 106, res.Examined)
	assert.Equal(t, 5, res.Deleted)
	assert.Len(t, blobs.files, 101)
	assert.Len(t, shots.deleted, 5)
}

func TestEnforceRetentionThinsByInterval(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.Local)
	blobs := newFakeBlobStore()
	shots := &fakeScreenshotStore{}

	cfg := retentionConfig()
	cfg.RecentKeep = 2
	svc := NewScreenshotService(shots, &fakeClassroomStore{}, &fakeLatestPlacement{}, blobs, cfg, "329", zap.NewNop())
	svc.now = func() time.Time { return now }

	// Two recent files, then an aged run: the first aged file seeds the
	// cursor, a file 10 minutes behind it is thinned, one 20 minutes
	// behind the cursor is kept and moves the cursor forward.
	seedCapture(blobs, 3, now.Add(-1*time.Minute), 100)
	seedCapture(blobs, 3, now.Add(-2*time.Minute), 100)
	kept1 := seedCapture(blobs, 3, now.Add(-30*time.Minute), 100)
	thinned := seedCapture(blobs, 3, now.Add(-40*time.Minute), 100)
	kept2 := seedCapture(blobs, 3, now.Add(-50*time.Minute), 100)

	res, err := svc.EnforceRetention(context.Background(), 3)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Deleted)
	assert.Contains(t, shots.deleted, thinned)
	assert.True(t, blobs.Exists(filepath.Join("3", kept1)))
	assert.True(t, blobs.Exists(filepath.Join("3", kept2)))
}

func TestEnforceRetentionDropsExpiredAndUnparsable(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.Local)
	blobs := newFakeBlobStore()
	shots := &fakeScreenshotStore{}

	cfg := retentionConfig()
	cfg.RecentKeep = 1
	svc := NewScreenshotService(shots, &fakeClassroomStore{}, &fakeLatestPlacement{}, blobs, cfg, "329", zap.NewNop())
	svc.now = func() time.Time { return now }

	seedCapture(blobs, 5, now.Add(-1*time.Minute), 100)
	expired := seedCapture(blobs, 5, now.Add(-366*24*time.Hour), 100)
	blobs.files[filepath.Join("5", "copy of screenshot.png")] = make([]byte, 100)
	blobs.mtimes[filepath.Join("5", "copy of screenshot.png")] = now.Add(-2 * time.Hour)

	res, err := svc.EnforceRetention(context.Background(), 5)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Deleted)
	assert.False(t, blobs.Exists(filepath.Join("5", expired)))
	assert.False(t, blobs.Exists(filepath.Join("5", "copy of screenshot.png")))
}

func TestEnforceRetentionNoopUnderLimit(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.Local)
	blobs := newFakeBlobStore()
	shots := &fakeScreenshotStore{}

	for i := 0; i < 10; i++ {
		seedCapture(blobs, 9, now.Add(-time.Duration(i)*time.Hour), 100)
	}
	svc := newScreenshotService(blobs, shots, now)

	res, err := svc.EnforceRetention(context.Background(), 9)
	require.NoError(t, err)
	assert.Zero(t, res.Deleted)
	assert.Len(t, blobs.files, 10)
}

func TestIngestStoresFileAndAttributesUser(t *testing.T) {
	now := time.Date(2026, 3, 16, 10, 15, 30, 0, time.Local)
	blobs := newFakeBlobStore()
	shots := &fakeScreenshotStore{}
	svc := NewScreenshotService(shots, &fakeClassroomStore{}, &fakeLatestPlacement{
		placement: &models.PlacementDetail{UserID: "u-1"},
	}, blobs, retentionConfig(), "329", zap.NewNop())
	svc.now = func() time.Time { return now }

	shot, err := svc.Ingest(context.Background(), 7, []byte("png-bytes"))
	require.NoError(t, err)

	assert.Equal(t, "20260316_101530.png", shot.Filename)
	assert.Equal(t, 7, shot.WorkplaceNumber)
	require.NotNil(t, shot.UserID)
	assert.Equal(t, "u-1", *shot.UserID)
	assert.True(t, blobs.Exists(filepath.Join("7", shot.Filename)))
	require.Len(t, shots.created, 1)
}

func TestIngestRejectsEmptyUpload(t *testing.T) {
	blobs := newFakeBlobStore()
	svc := newScreenshotService(blobs, &fakeScreenshotStore{}, time.Now())

	_, err := svc.Ingest(context.Background(), 7, nil)
	assert.Error(t, err)
}

func TestSetEnabledRoundTrip(t *testing.T) {
	rooms := &fakeClassroomStore{enabled: true}
	svc := NewScreenshotService(&fakeScreenshotStore{}, rooms, &fakeLatestPlacement{}, newFakeBlobStore(), retentionConfig(), "329", zap.NewNop())

	require.NoError(t, svc.SetEnabled(context.Background(), false))
	enabled, err := svc.Enabled(context.Background())
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestListFallsBackToFilesystem(t *testing.T) {
	now := time.Date(2026, 3, 16, 12, 0, 0, 0, time.Local)
	blobs := newFakeBlobStore()
	seedCapture(blobs, 7, now.Add(-time.Minute), 100)
	seedCapture(blobs, 7, now.Add(-2*time.Minute), 100)

	svc := newScreenshotService(blobs, &fakeScreenshotStore{}, now)
	items, err := svc.List(context.Background(), 7)
	require.NoError(t, err)

	require.Len(t, items, 2)
	assert.Equal(t, "20260316_115900.png", items[0].Filename)
	assert.Equal(t, now.Add(-time.Minute), items[0].CreatedAt)
	assert.Nil(t, items[0].UserName)
}
