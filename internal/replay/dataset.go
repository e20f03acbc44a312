// Package replay loads a historical vitals dataset and serves it
// back one time window at a time.
package replay

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wardsight/wardsight/internal/domain/vitals"
)

// Row is one patient's summarized vitals for one time window.
type Row struct {
	PatientID string
	Window    int
	Values    vitals.Canonical
}

// Dataset is an immutable windowed view over the historical CSV.
type Dataset struct {
	rows      map[int]map[string]Row
	patients  []string
	maxWindow int
}

// Load reads the dataset from a CSV file. Headers are normalized to
// lower snake case; patient IDs are reduced to their digits so
// "P-010" and "010" both become "10". Rows without a parseable
// patient ID or window are skipped.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses dataset CSV from a reader.
func Read(r io.Reader) (*Dataset, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read dataset header: %w", err)
	}
	columns := make([]string, len(header))
	for i, col := range header {
		columns[i] = normalizeHeader(col)
	}

	idCol, windowCol := -1, -1
	for i, col := range columns {
		switch col {
		case "patientid":
			idCol = i
		case "window":
			windowCol = i
		}
	}
	if idCol < 0 {
		return nil, ErrMissingPatientColumn
	}
	if windowCol < 0 {
		return nil, ErrMissingWindowColumn
	}

	d := &Dataset{rows: make(map[int]map[string]Row)}
	seen := make(map[string]struct{})

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read dataset row: %w", err)
		}

		patientID := normalizePatientID(field(record, idCol))
		if patientID == "" {
			continue
		}
		window, err := strconv.Atoi(strings.TrimSpace(field(record, windowCol)))
		if err != nil {
			continue
		}

		row := Row{PatientID: patientID, Window: window, Values: make(vitals.Canonical)}
		for i, col := range columns {
			if !vitals.IsTracked(col) {
				continue
			}
			row.Values[col] = vitals.Parse(field(record, i))
		}

		if d.rows[window] == nil {
			d.rows[window] = make(map[string]Row)
		}
		d.rows[window][patientID] = row
		if window > d.maxWindow {
			d.maxWindow = window
		}
		if _, ok := seen[patientID]; !ok {
			seen[patientID] = struct{}{}
			d.patients = append(d.patients, patientID)
		}
	}

	if len(d.patients) == 0 {
		return nil, ErrEmptyDataset
	}
	sort.Slice(d.patients, func(i, j int) bool {
		a, _ := strconv.Atoi(d.patients[i])
		b, _ := strconv.Atoi(d.patients[j])
		return a < b
	})
	return d, nil
}

// Row returns one patient's vitals at a window.
func (d *Dataset) Row(window int, patientID string) (Row, bool) {
	byPatient, ok := d.rows[window]
	if !ok {
		return Row{}, false
	}
	row, ok := byPatient[patientID]
	return row, ok
}

// Patients returns every patient ID in the dataset, numerically
// sorted.
func (d *Dataset) Patients() []string {
	out := make([]string, len(d.patients))
	copy(out, d.patients)
	return out
}

// MaxWindow returns the highest window index in the dataset.
func (d *Dataset) MaxWindow() int {
	return d.maxWindow
}

func normalizeHeader(col string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(col), " ", "_"))
}

// normalizePatientID strips everything but digits and drops leading
// zeros, so padded and prefixed IDs compare equal.
func normalizePatientID(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if digits == "" {
		return ""
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return ""
	}
	return strconv.Itoa(n)
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
