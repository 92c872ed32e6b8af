package service

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png" // capture agents upload PNG
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/rmn-lab/roster-api/internal/models"
	"github.com/rmn-lab/roster-api/pkg/config"
	"github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/jobs"
	"github.com/rmn-lab/roster-api/pkg/storage"
)

type screenshotStore interface {
	Create(ctx context.Context, shot *models.Screenshot) error
	DeleteByFilename(ctx context.Context, workplaceNumber int, filename string) error
	ListByWorkplace(ctx context.Context, workplaceNumber int) ([]models.ScreenshotDetail, error)
}

type screenshotClassroomStore interface {
	GetOrCreate(ctx context.Context, classroomID string) (*models.Classroom, error)
	SetScreenshotsEnabled(ctx context.Context, classroomID string, enabled bool) error
}

type screenshotPlacementStore interface {
	LatestForAliases(ctx context.Context, aliases []string) (*models.PlacementDetail, error)
}

type screenshotBlobStore interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Delete(filename string) error
	List(dir, ext string) ([]storage.FileInfo, error)
	Exists(filename string) bool
	Path(filename string) string
}

// RetentionResult summarizes one retention sweep over a seat directory.
type RetentionResult struct {
	Examined   int
	Deleted    int
	Compressed int
}

// ScreenshotService ingests workstation captures and enforces the
// retention policy: the newest files stay untouched, older ones are
// thinned to one per interval, compressed when large, and dropped
// entirely past the maximum age.
type ScreenshotService struct {
	shots      screenshotStore
	classrooms screenshotClassroomStore
	placements screenshotPlacementStore
	blobs      screenshotBlobStore
	cfg        config.ScreenshotsConfig
	classroom  string
	log        *zap.Logger
	queue      *jobs.Queue
	metrics    *MetricsService
	now        func() time.Time

	mu        sync.Mutex
	seatLocks map[int]*sync.Mutex
}

// NewScreenshotService constructs a ScreenshotService. The retention
// queue is optional; without it sweeps run inline after each upload.
func NewScreenshotService(shots screenshotStore, classrooms screenshotClassroomStore, placements screenshotPlacementStore, blobs screenshotBlobStore, cfg config.ScreenshotsConfig, classroomID string, log *zap.Logger) *ScreenshotService {
	return &ScreenshotService{
		shots:      shots,
		classrooms: classrooms,
		placements: placements,
		blobs:      blobs,
		cfg:        cfg,
		classroom:  classroomID,
		log:        log,
		now:        time.Now,
		seatLocks:  make(map[int]*sync.Mutex),
	}
}

// SetQueue attaches a started background queue for retention sweeps.
func (s *ScreenshotService) SetQueue(q *jobs.Queue) { s.queue = q }

// SetMetrics attaches the Prometheus collectors.
func (s *ScreenshotService) SetMetrics(m *MetricsService) { s.metrics = m }

// RetentionHandler adapts EnforceRetention to the jobs queue contract.
// The payload is the seat number.
func (s *ScreenshotService) RetentionHandler(ctx context.Context, job jobs.Job) error {
	seat, ok := job.Payload.(int)
	if !ok {
		return fmt.Errorf("retention job payload %T is not a seat number", job.Payload)
	}
	_, err := s.EnforceRetention(ctx, seat)
	return err
}

func (s *ScreenshotService) seatLock(seat int) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.seatLocks[seat]
	if !ok {
		lock = &sync.Mutex{}
		s.seatLocks[seat] = lock
	}
	return lock
}

// Enabled reports the room capture switch.
func (s *ScreenshotService) Enabled(ctx context.Context) (bool, error) {
	room, err := s.classrooms.GetOrCreate(ctx, s.classroom)
	if err != nil {
		return false, errors.WithCause(errors.ErrInternal, err)
	}
	return room.ScreenshotsEnabled, nil
}

// SetEnabled flips the room capture switch.
func (s *ScreenshotService) SetEnabled(ctx context.Context, enabled bool) error {
	if err := s.classrooms.SetScreenshotsEnabled(ctx, s.classroom, enabled); err != nil {
		return errors.WithCause(errors.ErrInternal, err)
	}
	s.log.Info("screenshots toggled", zap.Bool("enabled", enabled))
	return nil
}

// Ingest stores an uploaded capture for a seat and records who was placed
// there at the time. Uploads within the same second overwrite each other,
// which is fine for periodic captures. The retention sweep for the seat
// runs afterwards, inline or queued.
func (s *ScreenshotService) Ingest(ctx context.Context, seat int, data []byte) (*models.Screenshot, error) {
	if len(data) == 0 {
		return nil, errors.Clone(errors.ErrValidation, "empty screenshot upload")
	}

	lock := s.seatLock(seat)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	filename := now.Format(models.ScreenshotTimeFormat) + ".png"
	rel := filepath.Join(strconv.Itoa(seat), filename)
	if _, err := s.blobs.Save(rel, data); err != nil {
		return nil, errors.WithCause(errors.ErrStorageFailure, err)
	}

	shot := &models.Screenshot{
		ID:              uuid.NewString(),
		WorkplaceNumber: seat,
		Filename:        filename,
		CreatedAt:       now,
	}
	if placed, err := s.placements.LatestForAliases(ctx, seatAliases(s.classroom, seat)); err != nil {
		s.log.Warn("screenshot user attribution failed", zap.Int("seat", seat), zap.Error(err))
	} else if placed != nil {
		shot.UserID = &placed.UserID
	}
	if err := s.shots.Create(ctx, shot); err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	if s.metrics != nil {
		s.metrics.CountIngest()
	}

	if s.queue != nil {
		job := jobs.Job{ID: uuid.NewString(), Type: "screenshot_retention", Payload: seat}
		if err := s.queue.Enqueue(job); err != nil {
			s.log.Warn("retention enqueue failed, running inline", zap.Error(err))
			if _, err := s.enforceRetentionLocked(ctx, seat); err != nil {
				s.log.Error("retention sweep failed", zap.Int("seat", seat), zap.Error(err))
			}
		}
	} else {
		if _, err := s.enforceRetentionLocked(ctx, seat); err != nil {
			s.log.Error("retention sweep failed", zap.Int("seat", seat), zap.Error(err))
		}
	}
	return shot, nil
}

// List returns the capture history for a seat, newest first, with the
// placed user's name when attribution succeeded.
func (s *ScreenshotService) List(ctx context.Context, seat int) ([]models.ScreenshotDetail, error) {
	items, err := s.shots.ListByWorkplace(ctx, seat)
	if err != nil {
		return nil, errors.WithCause(errors.ErrInternal, err)
	}
	if len(items) > 0 {
		return items, nil
	}
	// Captures written before their metadata rows existed still live on
	// disk; list them without attribution.
	files, err := s.blobs.List(strconv.Itoa(seat), ".png")
	if err != nil {
		return nil, errors.WithCause(errors.ErrStorageFailure, err)
	}
	for _, file := range files {
		detail := models.ScreenshotDetail{Filename: file.Name, CreatedAt: file.ModTime}
		if taken, ok := parseCaptureTime(file.Name); ok {
			detail.CreatedAt = taken
		}
		items = append(items, detail)
	}
	return items, nil
}

// OpenFile returns a read handle for one stored capture. Filename must
// already be validated by the transport layer.
func (s *ScreenshotService) OpenFile(seat int, filename string) (*os.File, error) {
	rel := filepath.Join(strconv.Itoa(seat), filename)
	if !s.blobs.Exists(rel) {
		return nil, errors.Clone(errors.ErrNotFound, "screenshot not found")
	}
	file, err := s.blobs.Open(rel)
	if err != nil {
		return nil, errors.WithCause(errors.ErrStorageFailure, err)
	}
	return file, nil
}

// EnforceRetention runs one sweep over a seat directory under the seat
// lock. Safe to call concurrently with uploads.
func (s *ScreenshotService) EnforceRetention(ctx context.Context, seat int) (RetentionResult, error) {
	lock := s.seatLock(seat)
	lock.Lock()
	defer lock.Unlock()
	return s.enforceRetentionLocked(ctx, seat)
}

// enforceRetentionLocked walks the seat directory newest first. The first
// RecentKeep files always survive. Older files are deleted when their name
// does not parse as a capture timestamp, when they exceed MaxAge, or when
// they fall closer than ThinInterval to the previously kept file. Survivors
// of the aged tier are recompressed once they exceed CompressThreshold.
func (s *ScreenshotService) enforceRetentionLocked(ctx context.Context, seat int) (RetentionResult, error) {
	var res RetentionResult
	sweepStart := s.now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveSweep(res, time.Since(sweepStart))
		}
	}()
	files, err := s.blobs.List(strconv.Itoa(seat), ".png")
	if err != nil {
		return res, errors.WithCause(errors.ErrStorageFailure, err)
	}
	res.Examined = len(files)
	if len(files) <= s.cfg.RecentKeep {
		return res, nil
	}

	now := s.now()
	var cursor time.Time
	haveCursor := false
	for _, file := range files[s.cfg.RecentKeep:] {
		taken, ok := parseCaptureTime(file.Name)
		if !ok {
			s.deleteCapture(ctx, seat, file.Name, &res)
			continue
		}
		if now.Sub(taken) > s.cfg.MaxAge {
			s.deleteCapture(ctx, seat, file.Name, &res)
			continue
		}
		if haveCursor && cursor.Sub(taken) < s.cfg.ThinInterval {
			s.deleteCapture(ctx, seat, file.Name, &res)
			continue
		}
		cursor = taken
		haveCursor = true
		if file.Size > s.cfg.CompressThreshold {
			if err := s.compressCapture(file); err != nil {
				s.log.Warn("screenshot compression failed",
					zap.Int("seat", seat), zap.String("filename", file.Name), zap.Error(err))
				continue
			}
			res.Compressed++
		}
	}

	if res.Deleted > 0 || res.Compressed > 0 {
		s.log.Info("retention sweep finished",
			zap.Int("seat", seat),
			zap.Int("examined", res.Examined),
			zap.Int("deleted", res.Deleted),
			zap.Int("compressed", res.Compressed))
	}
	return res, nil
}

func (s *ScreenshotService) deleteCapture(ctx context.Context, seat int, filename string, res *RetentionResult) {
	rel := filepath.Join(strconv.Itoa(seat), filename)
	if err := s.blobs.Delete(rel); err != nil {
		s.log.Warn("screenshot delete failed", zap.Int("seat", seat), zap.String("filename", filename), zap.Error(err))
		return
	}
	if err := s.shots.DeleteByFilename(ctx, seat, filename); err != nil {
		s.log.Warn("screenshot row delete failed", zap.Int("seat", seat), zap.String("filename", filename), zap.Error(err))
	}
	res.Deleted++
}

// compressCapture halves the image on each axis and re-encodes it lossy
// in place. The .png name is kept so references stay valid; every decoder
// sniffs content, not extensions.
func (s *ScreenshotService) compressCapture(file storage.FileInfo) error {
	src, err := os.Open(file.Path)
	if err != nil {
		return fmt.Errorf("open capture: %w", err)
	}
	img, _, err := image.Decode(src)
	src.Close() //nolint:errcheck
	if err != nil {
		return fmt.Errorf("decode capture: %w", err)
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx()/2, bounds.Dy()/2))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)

	var buf bytes.Buffer
	quality := s.cfg.JPEGQuality
	if quality <= 0 || quality > 100 {
		quality = jpeg.DefaultQuality
	}
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode capture: %w", err)
	}
	if int64(buf.Len()) >= file.Size {
		return nil
	}
	if err := os.WriteFile(file.Path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("rewrite capture: %w", err)
	}
	return nil
}

func parseCaptureTime(filename string) (time.Time, bool) {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	taken, err := time.ParseInLocation(models.ScreenshotTimeFormat, base, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return taken, true
}

func seatAliases(classroomID string, seat int) []string {
	number := strconv.Itoa(seat)
	return []string{number, classroomID + "-" + number}
}
