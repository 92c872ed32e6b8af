package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/rmn-lab/roster-api/internal/dto"
	"github.com/rmn-lab/roster-api/pkg/errors"
	"github.com/rmn-lab/roster-api/pkg/export"
)

type snapshotSource interface {
	Snapshot(ctx context.Context, query dto.SnapshotQuery) (*dto.SnapshotResponse, error)
}

// ExportService renders the seating chart as a downloadable document.
type ExportService struct {
	snapshots snapshotSource
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	log       *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(snapshots snapshotSource, log *zap.Logger) *ExportService {
	return &ExportService{
		snapshots: snapshots,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		log:       log,
	}
}

// Render builds the seating chart for the query in the requested format.
// Returns the document bytes, the content type and a filename.
func (s *ExportService) Render(ctx context.Context, query dto.SnapshotQuery, format string) ([]byte, string, string, error) {
	snapshot, err := s.snapshots.Snapshot(ctx, query)
	if err != nil {
		return nil, "", "", err
	}
	data := seatingDataset(snapshot)
	base := fmt.Sprintf("seating_%s_lessons_%d-%d", snapshot.Date, snapshot.LessonFrom, snapshot.LessonTo)

	switch strings.ToLower(format) {
	case "csv", "":
		body, err := s.csv.Render(data)
		if err != nil {
			return nil, "", "", errors.WithCause(errors.ErrInternal, err)
		}
		return body, "text/csv", base + ".csv", nil
	case "pdf":
		title := fmt.Sprintf("Кабінет %s, %s, уроки %d-%d",
			snapshot.ClassroomID, snapshot.Date, snapshot.LessonFrom, snapshot.LessonTo)
		body, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, "", "", errors.WithCause(errors.ErrInternal, err)
		}
		return body, "application/pdf", base + ".pdf", nil
	default:
		return nil, "", "", errors.Clone(errors.ErrValidation, "format must be csv or pdf")
	}
}

// seatingDataset flattens the snapshot into one row per seat occupancy.
// Empty seats still produce a row so the chart shows the whole room.
func seatingDataset(snapshot *dto.SnapshotResponse) export.Dataset {
	data := export.Dataset{Headers: []string{"Seat", "Student", "Login", "Placed at"}}
	appendBank := func(bank []dto.WorkplaceState) {
		for _, seat := range bank {
			if len(seat.Placements) == 0 {
				data.Rows = append(data.Rows, map[string]string{"Seat": fmt.Sprintf("%d", seat.Number)})
				continue
			}
			for _, p := range seat.Placements {
				name, login := "", ""
				if p.User != nil {
					name = p.User.DisplayName()
					login = p.User.Username
				}
				data.Rows = append(data.Rows, map[string]string{
					"Seat":      fmt.Sprintf("%d", seat.Number),
					"Student":   name,
					"Login":     login,
					"Placed at": p.CreatedAt.Format("2006-01-02 15:04"),
				})
			}
		}
	}
	appendBank(snapshot.Workplaces1)
	appendBank(snapshot.Workplaces2)
	return data
}
