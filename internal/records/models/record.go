package models

import (
	"maps"
	"slices"
	"time"
)

// ParticipantRole is the role a participant plays on a record.
type ParticipantRole string

const (
	RoleAuthor    ParticipantRole = "AuthorOf"
	RoleSubject   ParticipantRole = "SubjectOf"
	RoleInformant ParticipantRole = "InformantTo"
	RoleReceiver  ParticipantRole = "ReceiverOf"
)

// Participant is a person or provider attached to a record.
type Participant struct {
	ID   string          `json:"id"`
	Name string          `json:"name,omitempty"`
	Role ParticipantRole `json:"role"`
}

// IsAuthor reports whether the participant authored the record.
func (p Participant) IsAuthor() bool {
	return p.Role == RoleAuthor
}

// HistoryEntry is one prior version of a record.
type HistoryEntry struct {
	Version    string            `json:"version"`
	RecordedAt time.Time         `json:"recorded_at"`
	Status     string            `json:"status,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Annotation is a free-text note on a record. Masked annotations stay attached
// but consumers must not disclose their text.
type Annotation struct {
	Text     string `json:"text"`
	Author   string `json:"author,omitempty"`
	IsMasked bool   `json:"is_masked,omitempty"`
}

// PolicyOverride references the consent-override form that authorises access
// to otherwise masked records.
type PolicyOverride struct {
	FormID RecordIdentifier `json:"form_id"`
	Reason string           `json:"reason,omitempty"`
}

// Filter is the query-by-example component of an originating query record.
type Filter struct {
	Domain     string            `json:"domain,omitempty"`
	Type       string            `json:"type,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f *Filter) IsEmpty() bool {
	return f == nil || (f.Domain == "" && f.Type == "" && len(f.Attributes) == 0)
}

// Record is the domain object persisted and retrieved through the gateway.
// The orchestration core only reads it and flips mask flags; the typed
// components exist so history and annotations can be stripped selectively.
type Record struct {
	ID            RecordIdentifier  `json:"id"`
	Type          string            `json:"type,omitempty"`
	Status        string            `json:"status,omitempty"`
	EffectiveTime time.Time         `json:"effective_time,omitzero"`
	Confidential  bool              `json:"confidential,omitempty"`
	IsMasked      bool              `json:"is_masked,omitempty"`
	Attributes    map[string]string `json:"attributes,omitempty"`
	History       []HistoryEntry    `json:"history,omitempty"`
	Annotations   []Annotation      `json:"annotations,omitempty"`
	Participants  []Participant     `json:"participants,omitempty"`

	// PolicyOverride and Filter only appear on requesting (query) records.
	PolicyOverride *PolicyOverride `json:"policy_override,omitempty"`
	Filter         *Filter         `json:"filter,omitempty"`
}

// StripHistory drops all version-history components.
func (r *Record) StripHistory() {
	r.History = nil
}

// MaskAnnotations flags every annotation as masked without removing it.
func (r *Record) MaskAnnotations() {
	for i := range r.Annotations {
		r.Annotations[i].IsMasked = true
	}
}

// Supersede makes r the successor of prev: prev's history is carried over
// and prev itself becomes the newest history entry.
func (r *Record) Supersede(prev *Record, at time.Time) {
	history := make([]HistoryEntry, 0, len(prev.History)+1)
	for _, h := range prev.History {
		h.Attributes = maps.Clone(h.Attributes)
		history = append(history, h)
	}
	r.History = append(history, HistoryEntry{
		Version:    prev.ID.Version,
		RecordedAt: at,
		Status:     prev.Status,
		Attributes: maps.Clone(prev.Attributes),
	})
}

// Author returns the authoring participant, if any.
func (r *Record) Author() (Participant, bool) {
	for _, p := range r.Participants {
		if p.IsAuthor() {
			return p, true
		}
	}
	return Participant{}, false
}

// Clone returns a deep copy, used by stores so callers never share state with
// what is persisted.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := *r
	out.Attributes = maps.Clone(r.Attributes)
	out.Annotations = slices.Clone(r.Annotations)
	out.Participants = slices.Clone(r.Participants)
	if r.History != nil {
		out.History = make([]HistoryEntry, len(r.History))
		for i, h := range r.History {
			h.Attributes = maps.Clone(h.Attributes)
			out.History[i] = h
		}
	}
	if r.PolicyOverride != nil {
		po := *r.PolicyOverride
		out.PolicyOverride = &po
	}
	if r.Filter != nil {
		f := *r.Filter
		f.Attributes = maps.Clone(r.Filter.Attributes)
		out.Filter = &f
	}
	return &out
}
