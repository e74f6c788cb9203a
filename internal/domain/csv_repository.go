package domain

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"
	"tour-monitor/models"

	"go.uber.org/zap"
)

var csvHeader = []string{"origin", "destination", "nights", "price", "observed_at", "run_id"}

// CSVRepository appends observations to a CSV file. The last matching row in file order is
// the latest price of a route.
// Malformed rows are skipped, so one bad line never hides the rest of the history.
type CSVRepository struct {
	filePath string
	log      *zap.Logger
}

func NewCSVRepository(filePath string, log *zap.Logger) *CSVRepository {
	if log == nil {
		log = zap.NewNop()
	}
	return &CSVRepository{
		filePath: filePath,
		log:      log.Named("store"),
	}
}

func (r *CSVRepository) Latest(ctx context.Context, route models.Route) (int, bool, error) {
	file, err := os.Open(r.filePath)
	if errors.Is(err, os.ErrNotExist) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	var (
		latest int
		found  bool
	)
	for line := 1; ; line++ {
		if err := ctx.Err(); err != nil {
			return 0, false, err
		}
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false, fmt.Errorf("read %s: %w", r.filePath, err)
		}
		if line == 1 && rec[0] == csvHeader[0] {
			continue
		}
		if len(rec) != len(csvHeader) {
			r.skip(line, fmt.Errorf("%d fields, want %d", len(rec), len(csvHeader)))
			continue
		}
		if rec[0] != route.Origin || rec[1] != route.Destination {
			continue
		}
		nights, err := strconv.Atoi(rec[2])
		if err != nil {
			r.skip(line, fmt.Errorf("nights: %w", err))
			continue
		}
		if nights != route.Nights {
			continue
		}
		price, err := strconv.Atoi(rec[3])
		if err != nil {
			r.skip(line, fmt.Errorf("price: %w", err))
			continue
		}
		latest, found = price, true
	}
	return latest, found, nil
}

func (r *CSVRepository) skip(line int, err error) {
	r.log.Warn("skipping malformed history row", zap.String("file", r.filePath), zap.Int("line", line), zap.Error(err))
}

func (r *CSVRepository) Insert(_ context.Context, obs models.PriceObservation) error {
	file, err := os.OpenFile(r.filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(csvHeader); err != nil {
			return err
		}
	}

	if err := writer.Write([]string{
		obs.Route.Origin,
		obs.Route.Destination,
		strconv.Itoa(obs.Route.Nights),
		strconv.Itoa(obs.Price),
		obs.ObservedAt.UTC().Format(time.RFC3339),
		obs.RunID,
	}); err != nil {
		return err
	}

	writer.Flush()
	return writer.Error()
}
