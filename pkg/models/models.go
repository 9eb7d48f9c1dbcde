package models

import "time"

// Row is one positional record of text fields
type Row []string

// Dataset is the ordered output of a single extraction attempt
type Dataset []Row

// Clone returns a deep copy so callers can't alias a strategy's rows
func (d Dataset) Clone() Dataset {
	if d == nil {
		return nil
	}
	out := make(Dataset, len(d))
	for i, row := range d {
		out[i] = append(Row(nil), row...)
	}
	return out
}

// Result is what every extraction strategy returns: either a non-empty
// Dataset or nothing. A zero-row success cannot be constructed.
type Result struct {
	rows Dataset
}

// Found wraps rows in a Result. Empty rows produce an absent Result.
func Found(rows Dataset) Result {
	if len(rows) == 0 {
		return Result{}
	}
	return Result{rows: rows}
}

// Absent is the Result of a strategy that could not produce usable data
func Absent() Result {
	return Result{}
}

// Rows returns the dataset and whether the Result holds one
func (r Result) Rows() (Dataset, bool) {
	return r.rows, len(r.rows) > 0
}

// OK reports whether the Result holds a dataset
func (r Result) OK() bool {
	return len(r.rows) > 0
}

// Outcome summarizes one invocation of the extractor
type Outcome struct {
	RunID    string        `json:"run_id"`
	URL      string        `json:"url"`
	Strategy string        `json:"strategy"`
	Path     string        `json:"path"`
	Rows     int           `json:"rows"`
	Sample   bool          `json:"sample"`
	Written  bool          `json:"written"`
	Elapsed  time.Duration `json:"elapsed"`
}
