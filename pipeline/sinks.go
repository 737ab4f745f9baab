package pipeline

import (
	"fmt"
	"log"
	"time"

	"climate-scraper/csvfile"
	"climate-scraper/db"
	"climate-scraper/models"
	"climate-scraper/sheets"
)

// CSVSink writes the result set to a local CSV file
type CSVSink struct {
	Path string
}

func (s CSVSink) Name() string { return "csv:" + s.Path }

func (s CSVSink) Write(_ string, records models.ResultSet) error {
	return csvfile.Write(records, s.Path)
}

// SheetsSink writes the result set to a new tab of a Google spreadsheet
type SheetsSink struct {
	Writer *sheets.Writer
	Now    func() time.Time
}

func (s SheetsSink) Name() string { return "google-sheets" }

func (s SheetsSink) Write(sourceURL string, records models.ResultSet) error {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	sheetName := fmt.Sprintf("Climate_%s", now().Format("20060102_150405"))
	_, _, err := s.Writer.CreateSheetAndWriteRecords(sheetName, records, sourceURL)
	return err
}

// DBSink archives runs in Postgres. LastRunID holds the ID of the last run
// it saved.
type DBSink struct {
	DB        *db.DB
	LastRunID int
}

func (s *DBSink) Name() string { return "postgres" }

func (s *DBSink) Write(sourceURL string, records models.ResultSet) error {
	runID, err := s.DB.SaveRun(sourceURL, records)
	if err != nil {
		return err
	}
	s.LastRunID = runID
	log.Printf("Archived run %d\n", runID)
	return nil
}

func (s *DBSink) RecordFailure(sourceURL string, cause error) error {
	_, err := s.DB.RecordFailure(sourceURL, cause)
	return err
}
