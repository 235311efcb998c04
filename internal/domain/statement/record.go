// Package statement defines the domain types shared by the payment statement
// parser and the validation service: line-item records, practitioner roles,
// document header metadata, and the parser configuration supplied by callers.
package statement

import (
	"time"

	"github.com/assislucian/glosa-audit/pkg/money"
)

// Role is the professional role a practitioner performed for one line item.
type Role string

const (
	RoleSurgeon         Role = "surgeon"
	RoleAnesthetist     Role = "anesthetist"
	RoleFirstAssistant  Role = "first_assistant"
	RoleSecondAssistant Role = "second_assistant"
	RoleThirdAssistant  Role = "third_assistant"
	RoleInstrumentator  Role = "instrumentator"

	// RoleUnknown marks a label no configured rule matched. It stays visible
	// in output so an unrecognized label is never mistaken for a confirmed
	// assistant role.
	RoleUnknown Role = "unknown"
)

// Record is one normalized line item extracted from a payment statement.
type Record struct {
	// GuideNumber correlates the line to an authorization guide.
	// Opaque; not validated for format.
	GuideNumber string `json:"guide_number,omitempty"`

	// ServiceDate is the date the procedure occurred. Shared across the
	// document unless the row carries its own date column.
	ServiceDate time.Time `json:"service_date"`

	// ProcedureCode is kept as a string: CBHPM codes can carry leading
	// zeros and non-numeric suffixes.
	ProcedureCode string `json:"procedure_code"`

	// Description is the procedure description as printed.
	Description string `json:"description"`

	// Role is the classified professional role; RoleLabel preserves the
	// raw printed label for auditability.
	Role      Role   `json:"role"`
	RoleLabel string `json:"role_label,omitempty"`

	// PractitionerCRM is the professional registration number this line
	// belongs to. Inherited from the document header when the statement
	// has no per-row CRM column.
	PractitionerCRM string `json:"practitioner_crm"`

	Quantity int `json:"quantity"`

	PresentedValue money.Amount `json:"presented_value"`
	ApprovedValue  money.Amount `json:"approved_value"`
}

// Header is the document-level metadata extracted before row parsing.
type Header struct {
	// CRM is the practitioner registration number. Required: parsing a
	// document without it fails, since it is the access-control filter
	// over the extracted rows.
	CRM string `json:"crm"`

	// PractitionerName is optional; statements do not always print it.
	PractitionerName string `json:"practitioner_name,omitempty"`

	// StatementDate defaults to the parse time when the document does not
	// print one.
	StatementDate time.Time `json:"statement_date"`
}
