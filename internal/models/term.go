package models

// Status is the outcome of a search term. The string values are exactly what
// lands in the resultado column of the input spreadsheet.
type Status string

const (
	StatusPending  Status = ""
	StatusOK       Status = "OK"
	StatusNotFound Status = "nao-encontrado"
	StatusError    Status = "erro"
)

// ParseStatus maps a resultado cell back to a Status. Anything unrecognized
// is treated as pending so the row gets re-processed.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusOK, StatusNotFound, StatusError:
		return Status(s)
	default:
		return StatusPending
	}
}

// Terminal reports whether no further automatic retry occurs for this status.
func (s Status) Terminal() bool {
	return s == StatusOK || s == StatusNotFound || s == StatusError
}

// TermRecord tracks one input row through the run. Rows are identified by
// position, so duplicate terms are processed independently. Attempts counts
// search attempts within the current run pass only; it is not persisted.
type TermRecord struct {
	Row      int
	Term     string
	Status   Status
	Attempts int
}

// RunStats summarizes a run. Always derived from the final record set,
// never accumulated independently.
type RunStats struct {
	Total       int     `json:"total"`
	Processed   int     `json:"processed"`
	Found       int     `json:"found"`
	NotFound    int     `json:"not_found"`
	Errors      int     `json:"errors"`
	Pending     int     `json:"pending"`
	SuccessRate float64 `json:"success_rate"`
}

// ComputeStats recomputes run statistics from a record set.
func ComputeStats(records []TermRecord) RunStats {
	var stats RunStats
	for _, rec := range records {
		stats.Total++
		switch rec.Status {
		case StatusOK:
			stats.Found++
		case StatusNotFound:
			stats.NotFound++
		case StatusError:
			stats.Errors++
		default:
			stats.Pending++
		}
	}
	stats.Processed = stats.Found + stats.NotFound + stats.Errors
	if stats.Processed > 0 {
		stats.SuccessRate = float64(stats.Found) / float64(stats.Processed) * 100
	}
	return stats
}
