package csvfile

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"

	"climate-scraper/models"
)

// Header is the first line of every file written by Write
var Header = []string{"City", "Koppen Code"}

// Write serializes records to path, replacing any existing file.
// Parent directories are not created.
func Write(records models.ResultSet, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	return Encode(f, records)
}

// Encode writes the header and one line per record to w
func Encode(w io.Writer, records models.ResultSet) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = runtime.GOOS == "windows"

	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range records {
		if err := cw.Write([]string{r.City, r.KoppenCode}); err != nil {
			return fmt.Errorf("failed to write record %q: %w", r.City, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush output: %w", err)
	}
	return nil
}

// Read loads a file produced by Write
func Read(path string) (models.ResultSet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

// Decode parses CSV with the City,Koppen Code header
func Decode(r io.Reader) (models.ResultSet, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, errors.New("missing header line")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	if header[0] != Header[0] || header[1] != Header[1] {
		return nil, fmt.Errorf("unexpected header %q", header)
	}

	var records models.ResultSet
	for {
		line, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read record: %w", err)
		}
		records = append(records, models.ClimateRecord{City: line[0], KoppenCode: line[1]})
	}

	return records, nil
}
