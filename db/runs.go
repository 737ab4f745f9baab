package db

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"climate-scraper/models"
)

// Run is one archived scrape
type Run struct {
	ID           int
	URL          string
	Status       string // "done", "failed"
	RecordsCount int
	LastError    sql.NullString
	CreatedAt    time.Time
}

// ErrNoRuns is returned when no successful run has been archived yet
var ErrNoRuns = errors.New("no completed runs")

// SaveRun stores a completed run and its records in one transaction
func (db *DB) SaveRun(url string, records models.ResultSet) (runID int, err error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRow(`
		INSERT INTO scrape_runs (url, status, records_count)
		VALUES ($1, 'done', $2)
		RETURNING id
	`, url, len(records)).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO climate_records (run_id, position, city, koppen_code)
		VALUES ($1, $2, $3, $4)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare record insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		if _, err = stmt.Exec(runID, i, r.City, r.KoppenCode); err != nil {
			return 0, fmt.Errorf("failed to insert record %d: %w", i, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit run: %w", err)
	}

	return runID, nil
}

// RecordFailure archives a run that stopped before producing records
func (db *DB) RecordFailure(url string, cause error) (int, error) {
	var runID int
	err := db.conn.QueryRow(`
		INSERT INTO scrape_runs (url, status, last_error)
		VALUES ($1, 'failed', $2)
		RETURNING id
	`, url, cause.Error()).Scan(&runID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert failed run: %w", err)
	}
	return runID, nil
}

// GetRun retrieves a run by ID
func (db *DB) GetRun(runID int) (*Run, error) {
	var run Run
	err := db.conn.QueryRow(`
		SELECT id, url, status, records_count, last_error, created_at
		FROM scrape_runs
		WHERE id = $1
	`, runID).Scan(&run.ID, &run.URL, &run.Status, &run.RecordsCount, &run.LastError, &run.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// LatestRecords returns the records of the newest completed run for url, in extraction order
func (db *DB) LatestRecords(url string) (models.ResultSet, error) {
	var runID int
	err := db.conn.QueryRow(`
		SELECT id FROM scrape_runs
		WHERE url = $1 AND status = 'done'
		ORDER BY id DESC
		LIMIT 1
	`, url).Scan(&runID)
	if err == sql.ErrNoRows {
		return nil, ErrNoRuns
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest run: %w", err)
	}

	rows, err := db.conn.Query(`
		SELECT city, koppen_code
		FROM climate_records
		WHERE run_id = $1
		ORDER BY position
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	var records models.ResultSet
	for rows.Next() {
		var r models.ClimateRecord
		if err := rows.Scan(&r.City, &r.KoppenCode); err != nil {
			return nil, err
		}
		records = append(records, r)
	}

	return records, rows.Err()
}
