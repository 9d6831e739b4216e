// Package auditing builds audit events from the records involved in an
// operation. Composition is pure: it only reads the record graph.
package auditing

import (
	"context"
	"fmt"

	"recordgate/internal/records/models"
	"recordgate/pkg/platform/audit"
	"recordgate/pkg/requestcontext"
)

// ReceiverRoleCode marks the actor representing this node.
const ReceiverRoleCode = "RCV"

// Composer stamps node identity onto audit events.
type Composer struct {
	nodeName string
	pidRoot  string
}

// NewComposer creates a composer. pidRoot prefixes participant identifiers
// (pidRoot@participantID); an empty root falls back to "CR_PID".
func NewComposer(nodeName, pidRoot string) *Composer {
	if pidRoot == "" {
		pidRoot = "CR_PID"
	}
	return &Composer{nodeName: nodeName, pidRoot: pidRoot}
}

// NewEvent starts an event timestamped from the request clock and correlated
// with the request ID.
func (c *Composer) NewEvent(ctx context.Context, action audit.Action, outcome audit.Outcome, eventType audit.EventType) audit.Event {
	event := audit.NewEvent(requestcontext.Now(ctx), action, outcome, eventType)
	event.RequestID = requestcontext.RequestID(ctx)
	return event
}

// AddParticipants adds the receiver actor for this node, then inspects trigger
// for a policy override (a security-resource object) and participants (each an
// actor and a person object). lifecycle is only recorded on the author's object.
func (c *Composer) AddParticipants(event *audit.Event, trigger *models.Record, lifecycle audit.Lifecycle) {
	event.Actors = append(event.Actors, audit.Actor{
		RoleCodes:              []string{ReceiverRoleCode},
		NetworkAccessPoint:     c.nodeName,
		NetworkAccessPointType: audit.NetworkAccessPointMachineName,
		UserIsRequestor:        false,
	})
	if trigger == nil {
		return
	}

	if po := trigger.PolicyOverride; po != nil {
		event.Objects = append(event.Objects, audit.AuditableObject{
			ObjectID:  po.FormID.String(),
			IDType:    audit.ObjectIDReportNumber,
			Role:      audit.ObjectRoleSecurityResource,
			Type:      audit.ObjectTypeSystemObject,
			Lifecycle: audit.LifecycleVerification,
		})
	}

	for _, p := range trigger.Participants {
		userID := c.participantID(p)
		event.Actors = append(event.Actors, audit.Actor{
			UserID:          userID,
			UserName:        p.Name,
			RoleCodes:       []string{string(p.Role)},
			UserIsRequestor: p.IsAuthor(),
		})
		obj := audit.AuditableObject{
			ObjectID: userID,
			IDType:   audit.ObjectIDUserIdentifier,
			Role:     audit.ObjectRoleProvider,
			Type:     audit.ObjectTypePerson,
		}
		if p.IsAuthor() {
			obj.Lifecycle = lifecycle
		}
		event.Objects = append(event.Objects, obj)
	}
}

// AddRecords adds one report object per identifier.
func (c *Composer) AddRecords(event *audit.Event, lifecycle audit.Lifecycle, ids ...models.RecordIdentifier) {
	for _, id := range ids {
		event.Objects = append(event.Objects, audit.AuditableObject{
			ObjectID:  id.String(),
			IDType:    audit.ObjectIDReportNumber,
			Role:      audit.ObjectRoleReport,
			Type:      audit.ObjectTypeSystemObject,
			Lifecycle: lifecycle,
		})
	}
}

// Query builds the single audit event for a batch retrieval. disclosed may be
// empty, e.g. on hard failures.
func (c *Composer) Query(ctx context.Context, outcome audit.Outcome, requester *models.Record, disclosed []models.RecordIdentifier) audit.Event {
	event := c.NewEvent(ctx, audit.ActionRead, outcome, audit.EventTypeQuery)
	c.AddParticipants(&event, requester, audit.LifecycleReceiptOfDisclosure)
	c.AddRecords(&event, audit.LifecycleDisclosure, disclosed...)
	return event
}

// Write builds the audit event for one register or update attempt. stored is
// nil on failure; on success it is the identifier the store returned.
func (c *Composer) Write(ctx context.Context, action audit.Action, outcome audit.Outcome, record *models.Record, stored *models.RecordIdentifier) audit.Event {
	event := c.NewEvent(ctx, action, outcome, audit.EventTypeProvisioning)
	c.AddParticipants(&event, record, audit.LifecycleNone)
	if stored != nil {
		lifecycle := audit.LifecycleCreation
		if action == audit.ActionUpdate {
			lifecycle = audit.LifecycleAmendment
		}
		c.AddRecords(&event, lifecycle, *stored)
	}
	return event
}

func (c *Composer) participantID(p models.Participant) string {
	return fmt.Sprintf("%s@%s", c.pidRoot, p.ID)
}
