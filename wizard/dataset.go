package wizard

import "sort"

// Dataset describes the uploaded file as reported by the trainer.
// Preview carries the first rows verbatim, so values may be of any JSON
// type, including nulls substituted for non-JSON numeric sentinels.
type Dataset struct {
	Columns []string         `json:"columns,omitempty"`
	NumRows int              `json:"num_rows"`
	NumCols int              `json:"num_cols"`
	Preview []map[string]any `json:"preview,omitempty"`
}

// ResolveColumns returns the column list to offer at the preprocess stage:
// the explicit columns when present, otherwise the keys of the first
// preview row (sorted, since map order is not stable), otherwise an empty
// slice. Callers must treat the empty result as a degraded state, not an
// error.
func (d *Dataset) ResolveColumns() []string {
	if d == nil {
		return []string{}
	}
	if len(d.Columns) > 0 {
		return d.Columns
	}
	if len(d.Preview) > 0 {
		cols := make([]string, 0, len(d.Preview[0]))
		for k := range d.Preview[0] {
			cols = append(cols, k)
		}
		sort.Strings(cols)

		return cols
	}

	return []string{}
}

// HasColumn reports whether name resolves against the dataset.
func (d *Dataset) HasColumn(name string) bool {
	for _, c := range d.ResolveColumns() {
		if c == name {
			return true
		}
	}

	return false
}
