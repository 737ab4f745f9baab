package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"climate-scraper/config"
	"climate-scraper/csvfile"
	"climate-scraper/db"
	"climate-scraper/fetcher"
	"climate-scraper/filter"
	"climate-scraper/models"
	"climate-scraper/parser"
	"climate-scraper/pipeline"
	"climate-scraper/sheets"
)

// options holds the command line flags
type options struct {
	url             string
	output          string
	configPath      string
	browser         bool
	spreadsheetURL  string
	credentialsPath string
	useDB           bool
	verify          bool
}

func main() {
	opts := options{}
	flag.StringVar(&opts.url, "url", config.DefaultURL, "Climate table page URL")
	flag.StringVar(&opts.output, "output", config.DefaultOutputPath, "Path of the CSV file to write")
	flag.StringVar(&opts.configPath, "config", "config.yaml", "Path to configuration file")
	flag.BoolVar(&opts.browser, "browser", false, "Fetch the page with a headless browser instead of a plain HTTP client")
	flag.StringVar(&opts.spreadsheetURL, "spreadsheet", "", "Google Sheets URL to also write the records to (optional)")
	flag.StringVar(&opts.credentialsPath, "credentials", "", "Path to Google service account credentials JSON file (or use GOOGLE_SHEETS_CREDENTIALS env var)")
	flag.BoolVar(&opts.useDB, "db", false, "Archive the run in Postgres (DATABASE_URL or DB_* env vars)")
	flag.BoolVar(&opts.verify, "verify", false, "Re-read the CSV (and the Postgres archive with -db) after writing and check it matches the extracted records")
	flag.Parse()

	set := make(map[string]bool)
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	cfg, err := loadConfig(opts.configPath, set["config"])
	if err != nil {
		log.Fatalf("Failed to load config file: %v\n", err)
	}
	applyFlags(cfg, opts, set)
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v\n", err)
	}

	if err := run(cfg, opts.useDB || os.Getenv("DATABASE_URL") != "", opts.verify); err != nil {
		log.Fatalf("Run failed: %v\n", err)
	}
}

// run builds the pipeline from cfg and executes it once
func run(cfg *config.Config, useDB, verify bool) error {
	f, closeFetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	defer closeFetcher()

	p := pipeline.New(
		f,
		parser.NewParser(
			parser.WithMapping(parser.PositionalMapping{
				CodeIndex:   cfg.Extraction.CodeColumn,
				CitiesIndex: cfg.Extraction.CitiesColumn,
			}),
			parser.WithHeaderRows(cfg.Extraction.HeaderRows),
			parser.WithStrictRows(cfg.Extraction.ShortRows == config.ShortRowsFail),
		),
		filter.NewFilter(cfg.Filters.Codes),
	)

	// The archive goes first so a failed insert leaves no CSV behind
	var archive *pipeline.DBSink
	if useDB {
		database, err := db.NewDB("")
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer database.Close()
		archive = &pipeline.DBSink{DB: database}
		p.AddSink(archive, true)
	}

	p.AddSink(pipeline.CSVSink{Path: cfg.Output.Path}, true)

	if cfg.Sheets.SpreadsheetURL != "" {
		if writer := newSheetsWriter(cfg); writer != nil {
			p.AddSink(pipeline.SheetsSink{Writer: writer}, false)
		}
	}

	records, err := p.Run(cfg.Source.URL)
	if err != nil {
		return err
	}

	if verify {
		written, err := csvfile.Read(cfg.Output.Path)
		if err != nil {
			return fmt.Errorf("verify: %w", err)
		}
		if len(written) != len(records) {
			return fmt.Errorf("verify: wrote %d records but read back %d", len(records), len(written))
		}
		for i := range records {
			if written[i] != records[i] {
				return fmt.Errorf("verify: record %d mismatch: wrote %+v, read %+v", i, records[i], written[i])
			}
		}
		log.Printf("Verified %d records in %s\n", len(written), cfg.Output.Path)

		if archive != nil {
			if err := verifyArchive(archive.DB, archive.LastRunID, cfg.Source.URL, records); err != nil {
				return fmt.Errorf("verify: %w", err)
			}
			log.Printf("Verified archived run %d\n", archive.LastRunID)
		}
	}

	fmt.Printf("Wrote %d records to %s\n", len(records), cfg.Output.Path)
	return nil
}

// newFetcher picks the fetch implementation; the returned func releases its resources
func newFetcher(cfg *config.Config) (fetcher.Fetcher, func(), error) {
	if !cfg.Source.Browser {
		return fetcher.NewCollyFetcher(cfg.Source.UserAgent, cfg.Source.Timeout), func() {}, nil
	}

	rodFetcher, err := fetcher.NewRodFetcher(cfg.Source.UserAgent)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create browser fetcher: %w", err)
	}
	return rodFetcher, func() {
		if err := rodFetcher.Close(); err != nil {
			log.Printf("Warning: Failed to close browser: %v\n", err)
		}
	}, nil
}

// newSheetsWriter returns nil when Google Sheets output cannot be set up
func newSheetsWriter(cfg *config.Config) *sheets.Writer {
	spreadsheetID := sheets.ExtractSpreadsheetID(cfg.Sheets.SpreadsheetURL)
	if spreadsheetID == "" {
		log.Printf("Warning: Could not extract spreadsheet ID from URL: %s\n", cfg.Sheets.SpreadsheetURL)
		return nil
	}

	writer, err := sheets.NewWriter(context.Background(), spreadsheetID, cfg.Sheets.CredentialsPath)
	if err != nil {
		log.Printf("Warning: Failed to initialize Google Sheets writer: %v\n", err)
		return nil
	}
	return writer
}

// runArchive is the read side of db.DB used by verifyArchive
type runArchive interface {
	GetRun(runID int) (*db.Run, error)
	LatestRecords(url string) (models.ResultSet, error)
}

// verifyArchive checks that run runID was stored as done and that its records
// read back equal to records
func verifyArchive(archive runArchive, runID int, url string, records models.ResultSet) error {
	stored, err := archive.GetRun(runID)
	if err != nil {
		return fmt.Errorf("failed to read run %d: %w", runID, err)
	}
	if stored.Status != "done" {
		return fmt.Errorf("run %d has status %q", runID, stored.Status)
	}
	if stored.RecordsCount != len(records) {
		return fmt.Errorf("run %d archived %d records, extracted %d", runID, stored.RecordsCount, len(records))
	}

	latest, err := archive.LatestRecords(url)
	if err != nil {
		return fmt.Errorf("failed to read archived records: %w", err)
	}
	if len(latest) != len(records) {
		return fmt.Errorf("archive holds %d records for %s, extracted %d", len(latest), url, len(records))
	}
	for i := range records {
		if latest[i] != records[i] {
			return fmt.Errorf("archived record %d mismatch: wrote %+v, read %+v", i, records[i], latest[i])
		}
	}
	return nil
}

// loadConfig loads configuration from file. A missing file falls back to
// defaults unless the path was given explicitly.
func loadConfig(configPath string, explicit bool) (*config.Config, error) {
	if _, err := os.Stat(configPath); err != nil {
		if explicit {
			return nil, err
		}
		log.Println("Config file not found. Using default configuration.")
		return config.GetDefaultConfig(), nil
	}

	return config.LoadConfig(configPath)
}

// applyFlags copies explicitly set flags over the file configuration
func applyFlags(cfg *config.Config, opts options, set map[string]bool) {
	if set["url"] {
		cfg.Source.URL = opts.url
	}
	if set["output"] {
		cfg.Output.Path = opts.output
	}
	if set["browser"] {
		cfg.Source.Browser = opts.browser
	}
	if set["spreadsheet"] {
		cfg.Sheets.SpreadsheetURL = opts.spreadsheetURL
	}
	if set["credentials"] {
		cfg.Sheets.CredentialsPath = opts.credentialsPath
	}
}
