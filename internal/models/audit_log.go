// Package models provides data structures and operations for the settings
// service. This file contains the append-only audit trail of configuration
// changes and the display-formatting contract used when rendering diffs.
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dotmac-platform/settings-service/internal/constants"
	"github.com/dotmac-platform/settings-service/internal/utils"
)

// AuditAction classifies what kind of change an audit entry records.
type AuditAction string

// Audit actions. Update and import entries always carry at least one field
// change; an operation that changed nothing records no entry at all.
const (
	ActionUpdate  AuditAction = "update"
	ActionRestore AuditAction = "restore"
	ActionReset   AuditAction = "reset"
	ActionImport  AuditAction = "import"
)

// ValidAuditAction reports whether the action is one of the known values.
func ValidAuditAction(a AuditAction) bool {
	switch a {
	case ActionUpdate, ActionRestore, ActionReset, ActionImport:
		return true
	}
	return false
}

// FieldChange records the before and after values of a single field.
type FieldChange struct {
	// Old is the value before the change
	Old any `json:"old"`

	// New is the value after the change
	New any `json:"new"`
}

// AuditLogEntry represents one applied configuration change.
// Entries are immutable once created and are never deleted; the audit
// trail is strictly append-only.
type AuditLogEntry struct {
	// ID is the unique identifier for this entry
	ID string `json:"id" db:"entry_id"`

	// Timestamp records when the change was applied
	Timestamp time.Time `json:"timestamp" db:"created_at"`

	// UserEmail identifies the administrator who made the change
	UserEmail string `json:"user_email" db:"user_email"`

	// Category is the settings partition that was changed
	Category string `json:"category" db:"category"`

	// Action classifies the change
	Action AuditAction `json:"action" db:"action"`

	// Changes maps field name to its before/after values. Never empty for
	// update and import entries.
	Changes map[string]FieldChange `json:"changes" db:"changes"`

	// Reason is the optional operator-supplied explanation
	Reason string `json:"reason,omitempty" db:"reason"`

	// IPAddress is the client address the change originated from
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	// UserAgent is the client software that submitted the change
	UserAgent string `json:"user_agent,omitempty" db:"user_agent"`
}

// NewAuditLogEntry creates an audit entry with a fresh UUID and the current
// timestamp. Callers must only record entries with a non-empty change set.
func NewAuditLogEntry(userEmail, category string, action AuditAction, changes map[string]FieldChange) *AuditLogEntry {
	return &AuditLogEntry{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		UserEmail: userEmail,
		Category:  category,
		Action:    action,
		Changes:   changes,
	}
}

// TableName returns the database table name for the AuditLogEntry model.
func (e *AuditLogEntry) TableName() string {
	return constants.TableAuditLog
}

// Actor identifies who performed a mutation, for audit attribution.
type Actor struct {
	// Email is the authenticated administrator's email address
	Email string

	// IPAddress is the client address the request arrived from
	IPAddress string

	// UserAgent is the client's User-Agent header
	UserAgent string
}

// RequestMeta captures the client metadata attached to audit entries.
type RequestMeta struct {
	Reason    string
	IPAddress string
	UserAgent string
}

// WithRequestMeta attaches client metadata to the entry and returns it,
// allowing call chaining at the creation site.
func (e *AuditLogEntry) WithRequestMeta(meta RequestMeta) *AuditLogEntry {
	e.Reason = meta.Reason
	e.IPAddress = meta.IPAddress
	e.UserAgent = meta.UserAgent
	return e
}

// FormattedChange is the display form of one field diff, paired with the
// raw values so clients never need to re-implement the transform.
type FormattedChange struct {
	Old          any    `json:"old"`
	New          any    `json:"new"`
	OldFormatted string `json:"old_formatted"`
	NewFormatted string `json:"new_formatted"`
}

// AuditLogEntryView is the list-endpoint shape of an audit entry: the raw
// entry plus pre-formatted change values and a change count for collapsed
// rows.
type AuditLogEntryView struct {
	ID          string                     `json:"id"`
	Timestamp   time.Time                  `json:"timestamp"`
	UserEmail   string                     `json:"user_email"`
	Category    string                     `json:"category"`
	Action      AuditAction                `json:"action"`
	ChangeCount int                        `json:"change_count"`
	Changes     map[string]FormattedChange `json:"changes"`
	Reason      string                     `json:"reason,omitempty"`
	IPAddress   string                     `json:"ip_address,omitempty"`
	UserAgent   string                     `json:"user_agent,omitempty"`
}

// View converts the entry to its display form.
func (e *AuditLogEntry) View() *AuditLogEntryView {
	changes := make(map[string]FormattedChange, len(e.Changes))
	for field, c := range e.Changes {
		changes[field] = FormattedChange{
			Old:          c.Old,
			New:          c.New,
			OldFormatted: FormatValue(c.Old),
			NewFormatted: FormatValue(c.New),
		}
	}

	return &AuditLogEntryView{
		ID:          e.ID,
		Timestamp:   e.Timestamp,
		UserEmail:   e.UserEmail,
		Category:    e.Category,
		Action:      e.Action,
		ChangeCount: len(e.Changes),
		Changes:     changes,
		Reason:      e.Reason,
		IPAddress:   e.IPAddress,
		UserAgent:   e.UserAgent,
	}
}

// FormatValue renders a field value for human display: nil becomes
// "(empty)", booleans become "true"/"false", composite values are
// JSON-stringified, and long strings are truncated with a trailing
// ellipsis. This transform is display-only and must never be applied to
// values before they are stored or transported.
func FormatValue(value any) string {
	var s string
	switch v := value.(type) {
	case nil:
		return "(empty)"
	case bool:
		if v {
			return "true"
		}
		return "false"
	case string:
		s = v
	case map[string]any, []any:
		encoded, err := json.Marshal(v)
		if err != nil {
			return "(unrenderable)"
		}
		s = string(encoded)
	default:
		s = fmt.Sprintf("%v", v)
	}

	return utils.TruncateString(s, constants.MaxDisplayValueLength)
}
