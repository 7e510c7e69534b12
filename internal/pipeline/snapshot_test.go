package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/deal-analyzer/internal/model"
)

func TestBuildSnapshot_Normalization(t *testing.T) {
	input := model.DealInput{
		AskingPrice:       f64(-100),
		GrossIncomeAnnual: f64(220000),
		AnnualNet:         nil,
		FacilitySizeSqft:  f64(2400),
		PropertyAddress:   "  123 Main St, Springfield, IL 62704-1234  ",
		Lease: &model.LeaseInput{
			MonthlyRent:    f64(4000),
			YearsRemaining: f64(-3),
			RenewalOptions: "2x5yr",
		},
		Expenses: []model.ExpenseInput{
			{ExpenseName: "Rent", AmountAnnual: f64(48000)},
			{ExpenseName: "   ", AmountAnnual: f64(999)},
			{ExpenseName: "Utilities", AmountAnnual: f64(-5)},
		},
		MachineInventory: []model.MachineInput{
			{Type: "washer", Brand: "Speed Queen", Count: 20, VendPrice: f64(3.5)},
		},
	}

	snap := BuildSnapshot(input, "deal-9", "user-9")

	assert.Equal(t, "deal-9", snap.DealID)
	assert.Equal(t, "user-9", snap.UserID)

	// Negative money becomes absent, valid money survives.
	assert.Nil(t, snap.AskingPrice)
	require.NotNil(t, snap.GrossIncomeAnnual)
	assert.Equal(t, 220000.0, *snap.GrossIncomeAnnual)
	assert.Nil(t, snap.AnnualNet)

	assert.Equal(t, "123 Main St, Springfield, IL 62704-1234", snap.PropertyAddress)
	assert.Equal(t, "62704", snap.Zip)
	assert.Equal(t, "123 main st springfield il 62704 1234", snap.LocationKey)

	require.NotNil(t, snap.Lease)
	assert.Nil(t, snap.Lease.YearsRemaining)
	require.NotNil(t, snap.Lease.MonthlyRent)
	assert.Equal(t, 4000.0, *snap.Lease.MonthlyRent)

	// Nameless expense kept under a placeholder, order and cardinality
	// match the input, negative amount zeroed.
	require.Len(t, snap.Expenses, 3)
	assert.Equal(t, "Rent", snap.Expenses[0].Name)
	assert.Equal(t, 48000.0, snap.Expenses[0].AmountAnnual)
	assert.Equal(t, "unnamed expense", snap.Expenses[1].Name)
	assert.Equal(t, 999.0, snap.Expenses[1].AmountAnnual)
	assert.Equal(t, "Utilities", snap.Expenses[2].Name)
	assert.Equal(t, 0.0, snap.Expenses[2].AmountAnnual)

	require.Len(t, snap.Machines, 1)
	assert.Equal(t, 20, snap.Machines[0].Count)
}

func TestBuildSnapshot_EmptyInput(t *testing.T) {
	snap := BuildSnapshot(model.DealInput{}, "d", "u")

	assert.Empty(t, snap.Zip)
	assert.Empty(t, snap.LocationKey)
	assert.Nil(t, snap.Lease)
	assert.Empty(t, snap.Expenses)
	assert.Empty(t, snap.Machines)
}

func TestExtractZip(t *testing.T) {
	tests := []struct {
		name    string
		address string
		want    string
	}{
		{"standard", "123 Main St, Springfield, IL 62704", "62704"},
		{"zip plus four", "123 Main St, Springfield, IL 62704-1234", "62704"},
		{"five digit street number", "10001 Elm Ave, Denver, CO 80210", "80210"},
		{"no zip", "123 Main St, Springfield", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractZip(tt.address))
		})
	}
}

func TestLocationKey(t *testing.T) {
	assert.Equal(t, "123 main st springfield il 62704",
		locationKey("123 Main St., Springfield,  IL 62704"))
	assert.Equal(t, locationKey("123 MAIN ST Springfield IL"),
		locationKey("  123 Main-St,   Springfield, IL  "))
	assert.Equal(t, "", locationKey("   "))
}

func TestRenderSnapshot_OmitsAbsentAsNA(t *testing.T) {
	out := renderSnapshot(BuildSnapshot(model.DealInput{}, "d", "u"))
	assert.Contains(t, out, "Asking price: N/A")
	assert.Contains(t, out, "Address: N/A")
	assert.NotContains(t, out, "Lease:")
}

func TestRenderStandards_NilTolerant(t *testing.T) {
	assert.Contains(t, renderStandards(nil), "unavailable")

	out := renderStandards(&model.StandardsContext{
		Location: "Springfield, IL",
		RentPct:  &model.Range{Min: 15, Max: 25},
	})
	assert.Contains(t, out, "Springfield, IL")
	assert.Contains(t, out, "Rent (% of gross): 15.0-25.0%")
	assert.Contains(t, out, "Cap rate: unavailable")
}
