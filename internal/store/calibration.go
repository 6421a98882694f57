package store

import (
	"database/sql"
	"time"

	"github.com/ayusman/mudra/internal/calibration"
)

// CalibrationRepository persists calibration reference points.
type CalibrationRepository struct {
	db *sql.DB
}

// Calibration returns the calibration repository for this store.
func (s *Store) Calibration() *CalibrationRepository {
	return &CalibrationRepository{db: s.db}
}

// Save stores the point for slot, replacing any previous value.
func (r *CalibrationRepository) Save(slot int, x, y float64) error {
	_, err := r.db.Exec(
		`INSERT INTO calibration_points (slot, x, y, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(slot) DO UPDATE SET x = excluded.x, y = excluded.y, updated_at = excluded.updated_at`,
		slot, x, y, time.Now().UTC(),
	)
	return err
}

// Load returns the stored slots. Slots never saved are returned unset.
func (r *CalibrationRepository) Load() ([calibration.NumPoints]calibration.Slot, error) {
	var slots [calibration.NumPoints]calibration.Slot

	rows, err := r.db.Query(`SELECT slot, x, y FROM calibration_points ORDER BY slot`)
	if err != nil {
		return slots, err
	}
	defer rows.Close()

	for rows.Next() {
		var slot int
		var x, y float64
		if err := rows.Scan(&slot, &x, &y); err != nil {
			return slots, err
		}
		if slot >= 0 && slot < calibration.NumPoints {
			slots[slot] = calibration.Slot{Set: true, X: x, Y: y}
		}
	}

	return slots, rows.Err()
}

// Clear removes all stored points.
func (r *CalibrationRepository) Clear() error {
	_, err := r.db.Exec(`DELETE FROM calibration_points`)
	return err
}
