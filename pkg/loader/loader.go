package loader

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ha1tch/drugref/pkg/models"
	"github.com/ha1tch/drugref/pkg/validation"
)

// Paths locates the input files. Empty paths are skipped.
type Paths struct {
	Drugs      string
	Trials     string
	PubmedCSV  string
	PubmedJSON string
}

// Dataset holds the parsed inputs of a build
type Dataset struct {
	Drugs        []models.Drug
	Trials       []models.Record
	Publications []models.Record
	// Issues lists the rows that were dropped while loading
	Issues []error
}

// RowError describes a row that could not be turned into a record
type RowError struct {
	File string
	Row  int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("%s row %d: %v", e.File, e.Row, e.Err)
}

func (e *RowError) Unwrap() error {
	return e.Err
}

// LoadAll reads every input file concurrently. Publications from the CSV file
// come first, followed by the JSON publications with corrected ids.
func LoadAll(ctx context.Context, paths Paths) (*Dataset, error) {
	var (
		drugs                   []models.Drug
		trials, pubCSV, pubJSON []models.Record
		drugIssues, trialIssues []error
		pubIssues               []error
	)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if paths.Drugs == "" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		drugs, drugIssues, err = ReadDrugsFile(paths.Drugs)
		return err
	})
	g.Go(func() error {
		if paths.Trials == "" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		trials, trialIssues, err = ReadRecordsFile(paths.Trials)
		return err
	})
	g.Go(func() error {
		if paths.PubmedCSV == "" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		pubCSV, pubIssues, err = ReadRecordsFile(paths.PubmedCSV)
		return err
	})
	g.Go(func() error {
		if paths.PubmedJSON == "" {
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		records, err := ReadPublicationsJSONFile(paths.PubmedJSON)
		if err != nil {
			return err
		}
		pubJSON, err = CorrectPublicationIDs(records)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	ds := &Dataset{
		Drugs:        drugs,
		Trials:       trials,
		Publications: append(pubCSV, pubJSON...),
	}
	ds.Issues = append(ds.Issues, drugIssues...)
	ds.Issues = append(ds.Issues, trialIssues...)
	ds.Issues = append(ds.Issues, pubIssues...)
	return ds, nil
}

// ReadDrugsFile reads a drugs CSV file (atccode,drug)
func ReadDrugsFile(path string) ([]models.Drug, []error, error) {
	rows, err := readCSVFile(path)
	if err != nil {
		return nil, nil, err
	}

	var drugs []models.Drug
	var issues []error
	for i, row := range rows {
		if len(row) < 2 {
			issues = append(issues, &RowError{File: path, Row: i + 1,
				Err: fmt.Errorf("%w: expected 2 columns, got %d", validation.ErrMissingField, len(row))})
			continue
		}
		drugs = append(drugs, models.Drug{ID: row[0], Name: row[1]})
	}
	return drugs, issues, nil
}

// ReadRecordsFile reads a trials or publications CSV file (id,title,date,journal)
func ReadRecordsFile(path string) ([]models.Record, []error, error) {
	rows, err := readCSVFile(path)
	if err != nil {
		return nil, nil, err
	}

	var records []models.Record
	var issues []error
	for i, row := range rows {
		if len(row) < 4 {
			issues = append(issues, &RowError{File: path, Row: i + 1,
				Err: fmt.Errorf("%w: expected 4 columns, got %d", validation.ErrMissingField, len(row))})
			continue
		}
		records = append(records, models.Record{ID: row[0], Title: row[1], Date: row[2], Journal: row[3]})
	}
	return records, issues, nil
}

// readCSVFile returns the data rows of a CSV file without its header
func readCSVFile(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	rows, err := ReadCSV(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, nil
}

// ReadCSV parses comma separated rows and drops the header row
func ReadCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[1:], nil
}

// jsonPublication accepts ids written either as numbers or as strings
type jsonPublication struct {
	ID      json.RawMessage `json:"id"`
	Title   string          `json:"title"`
	Date    string          `json:"date"`
	Journal string          `json:"journal"`
}

// ReadPublicationsJSONFile reads a JSON array of publications
func ReadPublicationsJSONFile(path string) ([]models.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	records, err := ParsePublicationsJSON(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return records, nil
}

// ParsePublicationsJSON decodes a JSON array of publications
func ParsePublicationsJSON(data []byte) ([]models.Record, error) {
	var raw []jsonPublication
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	records := make([]models.Record, 0, len(raw))
	for _, p := range raw {
		records = append(records, models.Record{
			ID:      rawID(p.ID),
			Title:   p.Title,
			Date:    p.Date,
			Journal: p.Journal,
		})
	}
	return records, nil
}

func rawID(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// CorrectPublicationIDs renumbers publications sequentially starting from the
// id of the first one
func CorrectPublicationIDs(records []models.Record) ([]models.Record, error) {
	if len(records) == 0 {
		return records, nil
	}

	start, err := strconv.Atoi(strings.TrimSpace(records[0].ID))
	if err != nil {
		return nil, fmt.Errorf("invalid first publication id %q: %w", records[0].ID, err)
	}

	out := make([]models.Record, len(records))
	for i, r := range records {
		r.ID = strconv.Itoa(start + i)
		out[i] = r
	}
	return out, nil
}

// WritePublicationsCSV writes publications to a CSV file with a header row,
// replacing any existing file
func WritePublicationsCSV(path string, records []models.Record) error {
	tempFile := path + ".tmp"
	file, err := os.Create(tempFile)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	if err := w.Write([]string{"id", "title", "date", "journal"}); err != nil {
		return err
	}
	for _, r := range records {
		if err := w.Write([]string{r.ID, r.Title, r.Date, r.Journal}); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	if err := file.Close(); err != nil {
		return err
	}

	return os.Rename(tempFile, path)
}
