package audit

import (
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This enables different retention policies, storage backends, and routing.
type EventCategory string

const (
	// CategoryCompliance covers successful writes with legal/regulatory significance.
	// These require tamper-proof storage and long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers hard failures, which feed alerting pipelines.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine disclosure (query) events.
	CategoryOperations EventCategory = "operations"
)

// Action is the operation being audited.
type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
)

// Outcome is the audited result of the operation.
type Outcome string

const (
	OutcomeSuccess   Outcome = "success"
	OutcomeMinorFail Outcome = "minor_fail"
	OutcomeEpicFail  Outcome = "epic_fail"
)

// EventType identifies the kind of logical operation that triggered the event.
type EventType string

const (
	EventTypeQuery        EventType = "query"
	EventTypeProvisioning EventType = "provisioning"
)

// NetworkAccessPointType describes how an actor's network access point is expressed.
type NetworkAccessPointType string

const (
	NetworkAccessPointMachineName NetworkAccessPointType = "machine_name"
	NetworkAccessPointIPAddress   NetworkAccessPointType = "ip_address"
)

// ObjectIDType describes what ObjectID identifies.
type ObjectIDType string

const (
	ObjectIDReportNumber   ObjectIDType = "report_number"
	ObjectIDUserIdentifier ObjectIDType = "user_identifier"
)

// ObjectRole is the role an auditable object plays in the event.
type ObjectRole string

const (
	ObjectRoleReport           ObjectRole = "report"
	ObjectRoleProvider         ObjectRole = "provider"
	ObjectRoleSecurityResource ObjectRole = "security_resource"
)

// ObjectType is the broad type of an auditable object.
type ObjectType string

const (
	ObjectTypePerson       ObjectType = "person"
	ObjectTypeSystemObject ObjectType = "system_object"
)

// Lifecycle is the data lifecycle stage an auditable object went through.
// The zero value means no lifecycle was recorded.
type Lifecycle string

const (
	LifecycleNone                Lifecycle = ""
	LifecycleCreation            Lifecycle = "creation"
	LifecycleAmendment           Lifecycle = "amendment"
	LifecycleDisclosure          Lifecycle = "disclosure"
	LifecycleReceiptOfDisclosure Lifecycle = "receipt_of_disclosure"
	LifecycleVerification        Lifecycle = "verification"
)

// Actor is a participant (human or system) in an audited operation.
type Actor struct {
	UserID                 string                 `json:"user_id,omitempty"`
	UserName               string                 `json:"user_name,omitempty"`
	RoleCodes              []string               `json:"role_codes,omitempty"`
	NetworkAccessPoint     string                 `json:"network_access_point,omitempty"`
	NetworkAccessPointType NetworkAccessPointType `json:"network_access_point_type,omitempty"`
	UserIsRequestor        bool                   `json:"user_is_requestor"`
}

// AuditableObject is an object touched by an audited operation.
type AuditableObject struct {
	ObjectID  string       `json:"object_id"`
	IDType    ObjectIDType `json:"id_type"`
	Role      ObjectRole   `json:"role"`
	Type      ObjectType   `json:"type"`
	Lifecycle Lifecycle    `json:"lifecycle,omitempty"`
}

// Event is built once per logical operation. Keep it transport-agnostic so
// stores and sinks can fan out.
type Event struct {
	ID        uuid.UUID         `json:"id"`
	Timestamp time.Time         `json:"timestamp"`
	Action    Action            `json:"action"`
	Outcome   Outcome           `json:"outcome"`
	EventType EventType         `json:"event_type"`
	Actors    []Actor           `json:"actors"`
	Objects   []AuditableObject `json:"objects"`
	// RequestID is the correlation ID from the HTTP request context.
	RequestID string `json:"request_id,omitempty"`
}

// NewEvent starts an event with a fresh ID.
func NewEvent(ts time.Time, action Action, outcome Outcome, eventType EventType) Event {
	return Event{
		ID:        uuid.New(),
		Timestamp: ts,
		Action:    action,
		Outcome:   outcome,
		EventType: eventType,
	}
}

// Category derives the routing category from the outcome and action.
func (e Event) Category() EventCategory {
	switch {
	case e.Outcome == OutcomeEpicFail:
		return CategorySecurity
	case e.Action == ActionRead:
		return CategoryOperations
	default:
		return CategoryCompliance
	}
}

// ObjectIDs returns the object identifiers in order.
func (e Event) ObjectIDs() []string {
	ids := make([]string, 0, len(e.Objects))
	for _, o := range e.Objects {
		ids = append(ids, o.ObjectID)
	}
	return ids
}
