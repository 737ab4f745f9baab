package pipeline

import (
	"fmt"
	"log"
	"strings"

	"climate-scraper/fetcher"
	"climate-scraper/filter"
	"climate-scraper/models"

	"github.com/PuerkitoBio/goquery"
)

// Extractor turns a parsed document into climate records
type Extractor interface {
	Extract(doc *goquery.Document) (models.ResultSet, error)
}

// Sink receives the final result set
type Sink interface {
	Name() string
	Write(sourceURL string, records models.ResultSet) error
}

// FailureRecorder is implemented by sinks that also want to know about runs
// that stopped before any records were produced
type FailureRecorder interface {
	RecordFailure(sourceURL string, cause error) error
}

type sinkEntry struct {
	sink     Sink
	required bool
}

// Pipeline runs fetch -> parse -> extract -> filter -> write, stopping at the first failed stage
type Pipeline struct {
	fetcher   fetcher.Fetcher
	extractor Extractor
	filter    *filter.Filter
	sinks     []sinkEntry
}

// New creates a Pipeline. A nil filter keeps every record.
func New(f fetcher.Fetcher, e Extractor, flt *filter.Filter) *Pipeline {
	if flt == nil {
		flt = filter.NewFilter(nil)
	}
	return &Pipeline{
		fetcher:   f,
		extractor: e,
		filter:    flt,
	}
}

// AddSink registers a sink. Errors from a required sink fail the run;
// errors from optional sinks are only logged.
func (p *Pipeline) AddSink(s Sink, required bool) {
	p.sinks = append(p.sinks, sinkEntry{sink: s, required: required})
}

// Run executes the pipeline once for url
func (p *Pipeline) Run(url string) (models.ResultSet, error) {
	records, err := p.collect(url)
	if err != nil {
		p.recordFailure(url, err)
		return nil, err
	}

	if len(records) == 0 {
		log.Printf("Warning: No climate records extracted from %s\n", url)
	} else {
		log.Printf("Collected %d records across %d Köppen codes\n", len(records), len(records.Codes()))
	}

	for _, entry := range p.sinks {
		if err := entry.sink.Write(url, records); err != nil {
			if entry.required {
				return nil, fmt.Errorf("%s sink: %w", entry.sink.Name(), err)
			}
			log.Printf("Warning: %s sink failed: %v\n", entry.sink.Name(), err)
			continue
		}
		log.Printf("Wrote %d records to %s\n", len(records), entry.sink.Name())
	}

	return records, nil
}

// collect runs the fetch, parse, extract and filter stages
func (p *Pipeline) collect(url string) (models.ResultSet, error) {
	body, err := p.fetcher.Fetch(url)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	records, err := p.extractor.Extract(doc)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}

	return p.filter.Apply(records), nil
}

func (p *Pipeline) recordFailure(url string, cause error) {
	for _, entry := range p.sinks {
		recorder, ok := entry.sink.(FailureRecorder)
		if !ok {
			continue
		}
		if err := recorder.RecordFailure(url, cause); err != nil {
			log.Printf("Warning: %s could not record failed run: %v\n", entry.sink.Name(), err)
		}
	}
}
