package db

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// csvColumns maps accepted header names to column roles.
var csvColumns = map[string]string{
	"lat": "lat", "latitud": "lat", "latitude": "lat",
	"lon": "lon", "longitud": "lon", "longitude": "lon",
	"fp_t31": "t31",
	"fp_t21": "t21",
}

// ImportCSV reads "lat,lon,fp_t31,fp_t21" rows and inserts them in batches.
// A header row, when present, may reorder the columns. Empty channel cells
// are stored as absent.
func (db *DB) ImportCSV(ctx context.Context, r io.Reader, batchSize int) (int, error) {
	if batchSize <= 0 {
		batchSize = 1000
	}

	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	idx := map[string]int{"lat": 0, "lon": 1, "t31": 2, "t21": 3}
	total, line := 0, 0
	batch := make([]temperature.RawSample, 0, batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := db.InsertSamples(ctx, batch)
		if err != nil {
			return err
		}
		total += n
		batch = batch[:0]
		log.Printf("INFO: db: imported %d samples", total)
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}

		if line == 1 && isHeader(record) {
			if idx, err = headerIndex(record); err != nil {
				return 0, err
			}
			continue
		}

		s, err := parseRecord(record, idx)
		if err != nil {
			return total, fmt.Errorf("line %d: %w", line, err)
		}
		batch = append(batch, s)

		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}

	if err := flush(); err != nil {
		return total, err
	}
	return total, nil
}

func isHeader(record []string) bool {
	if len(record) == 0 {
		return false
	}
	_, err := strconv.ParseFloat(strings.TrimSpace(record[0]), 64)
	return err != nil
}

func headerIndex(record []string) (map[string]int, error) {
	idx := map[string]int{}
	for i, name := range record {
		if role, ok := csvColumns[strings.ToLower(strings.TrimSpace(name))]; ok {
			idx[role] = i
		}
	}
	for _, role := range []string{"lat", "lon", "t31", "t21"} {
		if _, ok := idx[role]; !ok {
			return nil, fmt.Errorf("csv header is missing a %s column", role)
		}
	}
	return idx, nil
}

func parseRecord(record []string, idx map[string]int) (temperature.RawSample, error) {
	field := func(role string) string {
		if i := idx[role]; i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}

	var (
		s   temperature.RawSample
		err error
	)
	if s.Lat, err = strconv.ParseFloat(field("lat"), 64); err != nil {
		return s, fmt.Errorf("invalid lat %q", field("lat"))
	}
	if s.Lon, err = strconv.ParseFloat(field("lon"), 64); err != nil {
		return s, fmt.Errorf("invalid lon %q", field("lon"))
	}
	if s.EncodedT31, err = parseChannel(field("t31")); err != nil {
		return s, fmt.Errorf("invalid fp_t31: %w", err)
	}
	if s.EncodedT21, err = parseChannel(field("t21")); err != nil {
		return s, fmt.Errorf("invalid fp_t21: %w", err)
	}
	return s, nil
}

func parseChannel(raw string) (*int64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
