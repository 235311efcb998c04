package statement

// DocumentType selects which default field configuration applies.
type DocumentType string

const (
	// DocumentTypeDemonstrativo is a payment statement: what the payer
	// actually approved per line.
	DocumentTypeDemonstrativo DocumentType = "DEMONSTRATIVO"

	// DocumentTypeGuia is an authorization guide: what was authorized
	// before the procedure.
	DocumentTypeGuia DocumentType = "GUIA"
)

// Field names a semantic column of the statement table.
type Field string

const (
	FieldGuide       Field = "guide_number"
	FieldServiceDate Field = "service_date"
	FieldCode        Field = "procedure_code"
	FieldDescription Field = "description"
	FieldRole        Field = "role"
	FieldCRM         Field = "practitioner_crm"
	FieldQuantity    Field = "quantity"
	FieldPresented   Field = "presented_value"
	FieldApproved    Field = "approved_value"
)

// ParserContext is the caller-supplied parsing configuration. The parser owns
// none of it: the surrounding application decides which labels its payers
// print and how strictly currency failures are treated.
type ParserContext struct {
	DocumentType DocumentType

	// RequiredHeaders are lowercase tokens that must all appear (as
	// substrings) in a line for it to be the table header. Substring
	// containment is deliberate: it tolerates OCR noise and uneven
	// spacing.
	RequiredHeaders []string

	// ColumnMappings maps each required field to the label substring that
	// locates its column. A label that cannot be located is fatal.
	ColumnMappings map[Field]string

	// OptionalMappings are located best-effort; an absent label leaves
	// the field unset (guide number, per-row date, per-row CRM, quantity).
	OptionalMappings map[Field]string

	// RoleRules classify the raw role label. First matching substring
	// wins; no match yields RoleUnknown.
	RoleRules []RoleRule

	// StrictCurrency drops a row whose monetary column is unparseable
	// instead of recording zero. Either way the case is logged; it is
	// never silently conflated with "zero paid".
	StrictCurrency bool
}

// DefaultDemonstrativoContext returns the configuration for the payment
// statement layouts Brazilian payers commonly print.
func DefaultDemonstrativoContext() ParserContext {
	return ParserContext{
		DocumentType:    DocumentTypeDemonstrativo,
		RequiredHeaders: []string{"código", "descrição", "valor"},
		ColumnMappings: map[Field]string{
			FieldCode:        "código",
			FieldDescription: "descrição",
			FieldRole:        "part",
			FieldPresented:   "valor apresentado",
			FieldApproved:    "valor aprovado",
		},
		OptionalMappings: map[Field]string{
			FieldGuide:       "guia",
			FieldServiceDate: "data",
			FieldCRM:         "crm",
			FieldQuantity:    "qtd",
		},
		RoleRules: DefaultRoleRules(),
	}
}

// DefaultGuiaContext returns the configuration for authorization guides,
// which print authorized rather than approved values.
func DefaultGuiaContext() ParserContext {
	return ParserContext{
		DocumentType:    DocumentTypeGuia,
		RequiredHeaders: []string{"código", "descrição"},
		ColumnMappings: map[Field]string{
			FieldCode:        "código",
			FieldDescription: "descrição",
			FieldRole:        "part",
			FieldPresented:   "valor solicitado",
			FieldApproved:    "valor autorizado",
		},
		OptionalMappings: map[Field]string{
			FieldGuide:       "guia",
			FieldServiceDate: "data",
			FieldCRM:         "crm",
			FieldQuantity:    "qtd",
		},
		RoleRules: DefaultRoleRules(),
	}
}
