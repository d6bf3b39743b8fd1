package domain

// Status classifies what happened to a single time entry during a run.
type Status string

const (
	StatusCreated   Status = "created"
	StatusSkipped   Status = "skipped"
	StatusDuplicate Status = "duplicate"
	StatusFailed    Status = "failed"
)

// Outcome is the per-entry result of a sync run.
type Outcome struct {
	EntryID int64
	Status  Status
	PageID  string
	Reason  string
	Err     error
}

// Created returns a successful outcome.
func Created(entryID int64, pageID string) Outcome {
	return Outcome{EntryID: entryID, Status: StatusCreated, PageID: pageID}
}

// Skipped returns an outcome for an entry that was intentionally not written.
func Skipped(entryID int64, reason string) Outcome {
	return Outcome{EntryID: entryID, Status: StatusSkipped, Reason: reason}
}

// Duplicate returns an outcome for an entry that an earlier run already wrote.
func Duplicate(entryID int64, pageID string) Outcome {
	return Outcome{EntryID: entryID, Status: StatusDuplicate, PageID: pageID}
}

// Failed returns an outcome for an entry whose write failed.
func Failed(entryID int64, err error) Outcome {
	return Outcome{EntryID: entryID, Status: StatusFailed, Err: err}
}

// Report summarizes a sync run.
type Report struct {
	Fetched        int
	Qualified      int
	Created        int
	Skipped        int
	Duplicates     int
	Failed         int
	ProjectFetches int
	ClientFetches  int
	Outcomes       []Outcome
}

// Add records an outcome and updates the counters.
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Status {
	case StatusCreated:
		r.Created++
	case StatusSkipped:
		r.Skipped++
	case StatusDuplicate:
		r.Duplicates++
	case StatusFailed:
		r.Failed++
	}
}

// Partial reports whether any entry was skipped or failed.
func (r Report) Partial() bool { return r.Skipped > 0 || r.Failed > 0 }
