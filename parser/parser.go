package parser

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"climate-scraper/models"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	// ErrShortRow means the row has fewer cells than the column mapping needs
	ErrShortRow = errors.New("row has too few cells")
	// ErrEmptyCode means the row lists cities but its classification cell is blank
	ErrEmptyCode = errors.New("row lists cities but has no classification code")
)

// RowError ties a structural problem to the row it was found in
type RowError struct {
	Row   int // zero-based position among all rows in the document, header included
	Cells int
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("row %d (%d cells): %v", e.Row, e.Cells, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// RawRow is one table row as found in the document
type RawRow struct {
	Index int
	Cells *goquery.Selection
}

// ColumnMapping picks the classification code and the city names out of a row.
// Implementations return ErrShortRow when the row lacks the cells they read.
type ColumnMapping interface {
	Map(row RawRow) (code string, cities []string, err error)
}

// PositionalMapping reads the code and the linked city names from fixed cell positions
type PositionalMapping struct {
	CodeIndex   int
	CitiesIndex int
}

// DefaultMapping matches the climate-data.org layout: code in the third cell, cities in the fourth
func DefaultMapping() PositionalMapping {
	return PositionalMapping{CodeIndex: 2, CitiesIndex: 3}
}

// Map implements ColumnMapping
func (m PositionalMapping) Map(row RawRow) (string, []string, error) {
	if row.Cells.Length() <= max(m.CodeIndex, m.CitiesIndex) {
		return "", nil, ErrShortRow
	}

	code := strippedText(row.Cells.Eq(m.CodeIndex))

	var cities []string
	row.Cells.Eq(m.CitiesIndex).Find("a").Each(func(_ int, a *goquery.Selection) {
		if name := strings.TrimSpace(a.Text()); name != "" {
			cities = append(cities, name)
		}
	})

	if len(cities) > 0 && code == "" {
		return "", nil, ErrEmptyCode
	}
	return code, cities, nil
}

// strippedText joins the trimmed text nodes under sel, so markup inside a
// cell ("Cwa <sup>1</sup>") collapses to "Cwa1"
func strippedText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(n, &b)
	}
	return b.String()
}

func collectText(n *html.Node, b *strings.Builder) {
	if n.Type == html.TextNode {
		b.WriteString(strings.TrimSpace(n.Data))
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(c, b)
	}
}

// Parser extracts climate records from the cities-by-climate table
type Parser struct {
	mapping    ColumnMapping
	headerRows int
	strict     bool
}

// Option configures a Parser
type Option func(*Parser)

// WithMapping swaps the column mapping
func WithMapping(m ColumnMapping) Option {
	return func(p *Parser) { p.mapping = m }
}

// WithHeaderRows sets how many leading rows are skipped as headers
func WithHeaderRows(n int) Option {
	return func(p *Parser) { p.headerRows = n }
}

// WithStrictRows makes malformed rows fail the extraction instead of being skipped
func WithStrictRows(strict bool) Option {
	return func(p *Parser) { p.strict = strict }
}

// NewParser creates a new Parser instance
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		mapping:    DefaultMapping(),
		headerRows: 1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseHTML parses htmlContent and extracts its climate records
func (p *Parser) ParseHTML(htmlContent string) (models.ResultSet, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return p.Extract(doc)
}

// Extract walks every tr in the document in order, skips the header rows and
// emits one record per linked city in each remaining row.
func (p *Parser) Extract(doc *goquery.Document) (models.ResultSet, error) {
	rows := doc.Find("tr")

	var records models.ResultSet
	skipped := 0

	for i := p.headerRows; i < rows.Length(); i++ {
		row := RawRow{Index: i, Cells: rows.Eq(i).Find("td")}

		code, cities, err := p.mapping.Map(row)
		if err != nil {
			rowErr := &RowError{Row: i, Cells: row.Cells.Length(), Err: err}
			if p.strict {
				return nil, rowErr
			}
			log.Printf("Warning: Skipping %v\n", rowErr)
			skipped++
			continue
		}

		for _, city := range cities {
			records = append(records, models.ClimateRecord{
				City:       city,
				KoppenCode: code,
			})
		}
	}

	log.Printf("Extracted %d records from %d rows (%d skipped)\n", len(records), max(rows.Length()-p.headerRows, 0), skipped)
	return records, nil
}
