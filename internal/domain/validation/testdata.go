package validation

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/assislucian/glosa-audit/internal/domain/cbhpm"
	"github.com/assislucian/glosa-audit/internal/domain/statement"
	"github.com/assislucian/glosa-audit/pkg/money"
)

// TestDataGenerator produces realistic statement records and a matching fee
// table for tests and benchmarks.
type TestDataGenerator struct {
	faker *gofakeit.Faker
	crm   string
}

// NewTestDataGenerator creates a generator with a fixed seed so generated
// batches are reproducible.
func NewTestDataGenerator(seed int64) *TestDataGenerator {
	faker := gofakeit.New(seed)
	return &TestDataGenerator{
		faker: faker,
		crm:   fmt.Sprintf("%06d", faker.Number(100000, 999999)),
	}
}

// CRM returns the practitioner registration number shared by all generated
// records.
func (g *TestDataGenerator) CRM() string { return g.crm }

var generatorRoles = []statement.Role{
	statement.RoleSurgeon,
	statement.RoleAnesthetist,
	statement.RoleFirstAssistant,
	statement.RoleSecondAssistant,
}

// Batch generates n records and a fee table covering every generated code.
// Roughly a third of the records are underpaid beyond any usual tolerance.
func (g *TestDataGenerator) Batch(n int) ([]statement.Record, *cbhpm.Table) {
	records := make([]statement.Record, 0, n)
	entries := make([]cbhpm.Entry, 0, n)
	ratios := DefaultRoleRatios()

	for i := 0; i < n; i++ {
		// Unique per record so the table covers exactly one entry per code.
		code := fmt.Sprintf("3%07d", i*100+g.faker.Number(0, 99))
		value := money.FromCents(int64(g.faker.Number(5000, 500000)))
		role := generatorRoles[g.faker.Number(0, len(generatorRoles)-1)]

		entries = append(entries, cbhpm.Entry{
			Code:        code,
			Description: g.faker.Sentence(3),
			Value:       value,
		})

		expected := value.ApplyRatio(ratios[role])
		approved := expected
		if g.faker.Number(0, 2) == 0 {
			// Glosa: underpay by 10-60%.
			cut := decimal.NewFromInt(int64(g.faker.Number(40, 90))).Div(decimal.NewFromInt(100))
			approved = expected.ApplyRatio(cut)
		}

		records = append(records, statement.Record{
			GuideNumber:     fmt.Sprintf("G-%04d", i),
			ServiceDate:     g.faker.DateRange(time.Now().AddDate(0, -3, 0), time.Now()),
			ProcedureCode:   code,
			Description:     g.faker.Sentence(3),
			Role:            role,
			PractitionerCRM: g.crm,
			Quantity:        1,
			PresentedValue:  expected,
			ApprovedValue:   approved,
		})
	}

	return records, cbhpm.NewTable(entries)
}
