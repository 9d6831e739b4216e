package models

import (
	"github.com/google/uuid"
)

// MatchAlgorithm selects how filter queries compare candidate values.
type MatchAlgorithm string

const (
	MatchExact       MatchAlgorithm = "exact"
	MatchVariant     MatchAlgorithm = "variant"
	MatchSoundex     MatchAlgorithm = "soundex"
	MatchUnspecified MatchAlgorithm = ""
)

// PersistenceMode distinguishes production writes from debugging/test writes.
type PersistenceMode string

const (
	ModeProduction PersistenceMode = "production"
	ModeDebugging  PersistenceMode = "debugging"
)

// QueryDescriptor carries the options of one retrieval. It is immutable for
// the duration of the retrieval; QueryID is the de-duplication and
// continuation key.
type QueryDescriptor struct {
	QueryID        uuid.UUID      `json:"query_id"`
	IsSummary      bool           `json:"is_summary,omitempty"`
	IncludeHistory bool           `json:"include_history,omitempty"`
	IncludeNotes   bool           `json:"include_notes,omitempty"`
	MaxResults     int            `json:"max_results"`
	MinMatchDegree float32        `json:"min_match_degree,omitempty"`
	MatchAlgorithm MatchAlgorithm `json:"match_algorithm,omitempty"`
	// OriginatingQuery is the requesting record: its participants are the
	// requesters, and it may carry a policy override and a filter.
	OriginatingQuery *Record `json:"originating_query,omitempty"`
	Originator       string  `json:"originator,omitempty"`
	// OriginalMessageQueryID echoes the caller's own query identifier, if any.
	OriginalMessageQueryID string `json:"original_message_query_id,omitempty"`
}

// RetrievalOutcome is the result of one retrieval. Results is positionally
// aligned with the first len(Results) requested identifiers; a nil slot means
// that record failed, was absent, or was masked.
type RetrievalOutcome struct {
	QueryID           uuid.UUID `json:"query_id"`
	Results           []*Record `json:"results"`
	TotalCandidates   int       `json:"total_candidates"`
	StartRecordNumber int       `json:"start_record_number"`
}

// EmptyOutcome is returned on every fast-fail path.
func EmptyOutcome(queryID uuid.UUID) RetrievalOutcome {
	return RetrievalOutcome{QueryID: queryID, Results: []*Record{}}
}

// Disclosed returns the non-nil records in request order.
func (o RetrievalOutcome) Disclosed() []*Record {
	out := make([]*Record, 0, len(o.Results))
	for _, r := range o.Results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out
}

// QuerySet is what a continuation collaborator keeps for a registered query.
type QuerySet struct {
	QueryID     uuid.UUID          `json:"query_id"`
	Identifiers []RecordIdentifier `json:"identifiers"`
	Descriptor  QueryDescriptor    `json:"descriptor"`
}
