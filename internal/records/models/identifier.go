package models

import "fmt"

// RecordIdentifier names a record within an assigning domain, optionally pinned
// to one version. Values are immutable once constructed.
type RecordIdentifier struct {
	Domain     string `json:"domain"`
	Identifier string `json:"identifier"`
	Version    string `json:"version,omitempty"`
}

// NewRecordIdentifier builds an unversioned identifier.
func NewRecordIdentifier(domain, identifier string) RecordIdentifier {
	return RecordIdentifier{Domain: domain, Identifier: identifier}
}

// Matches reports structural equality on domain and identifier. Version is
// ignored so a versioned result can fill the slot of an unversioned request.
func (id RecordIdentifier) Matches(other RecordIdentifier) bool {
	return id.Domain == other.Domain && id.Identifier == other.Identifier
}

// IsZero reports whether both domain and identifier are empty.
func (id RecordIdentifier) IsZero() bool {
	return id.Domain == "" && id.Identifier == ""
}

// String renders domain@identifier, the form used in audit object IDs and messages.
func (id RecordIdentifier) String() string {
	return fmt.Sprintf("%s@%s", id.Domain, id.Identifier)
}
