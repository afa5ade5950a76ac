package render

import (
	"github.com/a-h/weaviatesearch/models"
)

type Kind int

const (
	Idle Kind = iota
	Loading
	Succeeded
	Failed
)

func (k Kind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Status is the state of the most recent search.
type Status struct {
	Kind    Kind
	Results []models.SearchResult
	Err     error
}

func IdleStatus() Status    { return Status{Kind: Idle} }
func LoadingStatus() Status { return Status{Kind: Loading} }

func SucceededStatus(results []models.SearchResult) Status {
	return Status{Kind: Succeeded, Results: results}
}

func FailedStatus(err error) Status {
	return Status{Kind: Failed, Err: err}
}

// Tracker owns the status of a search page. Each submission gets a sequence
// number, and only the response to the latest submission is applied.
// Tracker is not safe for concurrent use.
type Tracker struct {
	seq    uint64
	status Status
}

func (t *Tracker) Status() Status {
	return t.status
}

// Submit moves to Loading and returns the sequence number the response must carry.
func (t *Tracker) Submit() (seq uint64) {
	t.seq++
	t.status = LoadingStatus()
	return t.seq
}

// Reject fails the page without a backend call, e.g. for a blank query.
// Any in-flight response becomes stale.
func (t *Tracker) Reject(err error) {
	t.seq++
	t.status = FailedStatus(err)
}

// Resolve applies a response. It returns false, and changes nothing, if a
// newer submission has been made since seq was issued.
func (t *Tracker) Resolve(seq uint64, results []models.SearchResult, err error) (applied bool) {
	if seq != t.seq || t.status.Kind != Loading {
		return false
	}
	if err != nil {
		t.status = FailedStatus(err)
		return true
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	t.status = SucceededStatus(results)
	return true
}
