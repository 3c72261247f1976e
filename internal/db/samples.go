package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/i474232898/modis-temperature/internal/temperature"
)

// InsertSamples stores raw samples in a single transaction and returns how
// many rows were written. Absent channels are stored as NULL.
func (db *DB) InsertSamples(ctx context.Context, samples []temperature.RawSample) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO modis_samples (lat, lon, fp_t31, fp_t21) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return 0, err
	}
	defer stmt.Close()

	for i, s := range samples {
		if _, err := stmt.ExecContext(ctx, s.Lat, s.Lon, nullInt(s.EncodedT31), nullInt(s.EncodedT21)); err != nil {
			return 0, fmt.Errorf("failed to insert sample %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(samples), nil
}

// SamplesNear returns samples with both channels present whose planar
// distance to point, scaled to meters, is within radiusMeters. A bounding box
// narrows the scan using the (lat, lon) index; the exact radius test is the
// one shared with every other sample source. limit <= 0 means no limit.
func (db *DB) SamplesNear(ctx context.Context, point temperature.GeoPoint, radiusMeters, limit int) ([]temperature.RawSample, error) {
	// Padded so rounding never drops a point the exact test would keep.
	span := float64(radiusMeters)/temperature.MetersPerDegree*(1+1e-9) + 1e-12

	rows, err := db.QueryContext(ctx, `
		SELECT lat, lon, fp_t31, fp_t21
		FROM modis_samples
		WHERE fp_t21 IS NOT NULL AND fp_t31 IS NOT NULL
		AND lat BETWEEN ? AND ?
		AND lon BETWEEN ? AND ?
		ORDER BY id`,
		point.Lat-span, point.Lat+span, point.Lon-span, point.Lon+span,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	var samples []temperature.RawSample
	for rows.Next() {
		var (
			s        temperature.RawSample
			t31, t21 sql.NullInt64
		)
		if err := rows.Scan(&s.Lat, &s.Lon, &t31, &t21); err != nil {
			return nil, err
		}
		if !temperature.WithinRadius(point, s.Point(), radiusMeters) {
			continue
		}
		s.EncodedT31 = fromNullInt(t31)
		s.EncodedT21 = fromNullInt(t21)
		samples = append(samples, s)

		if limit > 0 && len(samples) >= limit {
			break
		}
	}
	return samples, rows.Err()
}

// CountSamples returns the total number of stored samples.
func (db *DB) CountSamples(ctx context.Context) (int, error) {
	var n int
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM modis_samples`).Scan(&n)
	return n, err
}

func nullInt(v *int64) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *v, Valid: true}
}

func fromNullInt(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}
