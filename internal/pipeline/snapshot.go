// Package pipeline orchestrates the multi-stage laundromat deal analysis
// workflow: snapshot normalization, benchmark resolution, concurrent LLM
// analysis stages, expense validation, recommendation synthesis, scoring,
// and background persistence.
package pipeline

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/sells-group/deal-analyzer/internal/model"
)

// zipPattern matches a 5-digit ZIP code, with an optional +4 suffix that is
// discarded. Word-bounded so street numbers don't match mid-token.
var zipPattern = regexp.MustCompile(`\b(\d{5})(?:-\d{4})?\b`)

// extractZip pulls the last 5-digit ZIP code out of a free-form address.
// US addresses put the ZIP at the end, so the last match wins over street
// numbers that happen to be five digits. Returns "" when none is present.
func extractZip(address string) string {
	matches := zipPattern.FindAllStringSubmatch(address, -1)
	if len(matches) == 0 {
		return ""
	}
	return matches[len(matches)-1][1]
}

// locationKey normalizes an address into a stable key for market data
// deduplication: lowercased, punctuation stripped, whitespace collapsed.
func locationKey(address string) string {
	lower := strings.ToLower(strings.TrimSpace(address))
	var b strings.Builder
	lastSpace := true
	for _, r := range lower {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}

// nonNegative clamps negative monetary inputs to absent. A negative asking
// price or income is bad data, not a real value.
func nonNegative(v *float64) *float64 {
	if v == nil || *v < 0 {
		return nil
	}
	out := *v
	return &out
}

// BuildSnapshot normalizes raw deal input into an immutable DealSnapshot.
// All monetary fields come out non-negative or nil. Expenses keep their
// input order and cardinality; a line with no name is kept under a
// placeholder so one validation record still comes out per input line.
func BuildSnapshot(input model.DealInput, dealID, userID string) model.DealSnapshot {
	snap := model.DealSnapshot{
		DealID:            dealID,
		UserID:            userID,
		AskingPrice:       nonNegative(input.AskingPrice),
		GrossIncomeAnnual: nonNegative(input.GrossIncomeAnnual),
		AnnualNet:         nonNegative(input.AnnualNet),
		FacilitySizeSqft:  nonNegative(input.FacilitySizeSqft),
		PropertyAddress:   strings.TrimSpace(input.PropertyAddress),
		Equipment:         strings.TrimSpace(input.Equipment),
	}
	snap.Zip = extractZip(snap.PropertyAddress)
	snap.LocationKey = locationKey(snap.PropertyAddress)

	if input.Lease != nil {
		snap.Lease = &model.Lease{
			MonthlyRent:    nonNegative(input.Lease.MonthlyRent),
			YearsRemaining: nonNegative(input.Lease.YearsRemaining),
			RenewalOptions: strings.TrimSpace(input.Lease.RenewalOptions),
			AnnualIncrease: nonNegative(input.Lease.AnnualIncrease),
		}
	}

	for _, e := range input.Expenses {
		name := strings.TrimSpace(e.ExpenseName)
		if name == "" {
			name = "unnamed expense"
		}
		line := model.ExpenseLine{Name: name}
		if amt := nonNegative(e.AmountAnnual); amt != nil {
			line.AmountAnnual = *amt
		}
		snap.Expenses = append(snap.Expenses, line)
	}

	for _, m := range input.MachineInventory {
		snap.Machines = append(snap.Machines, model.Machine{
			Type:      strings.TrimSpace(m.Type),
			Brand:     strings.TrimSpace(m.Brand),
			Count:     m.Count,
			AgeYears:  nonNegative(m.AgeYears),
			VendPrice: nonNegative(m.VendPrice),
		})
	}

	return snap
}

// fmtMoney renders an optional dollar amount for prompt text.
func fmtMoney(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("$%.0f", *v)
}

// fmtNumber renders an optional numeric value for prompt text.
func fmtNumber(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.0f", *v)
}

func orNA(s string) string {
	if strings.TrimSpace(s) == "" {
		return "N/A"
	}
	return s
}

// renderSnapshot formats the deal facts shared by every stage prompt.
func renderSnapshot(snap model.DealSnapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Address: %s\n", orNA(snap.PropertyAddress))
	fmt.Fprintf(&b, "Asking price: %s\n", fmtMoney(snap.AskingPrice))
	fmt.Fprintf(&b, "Gross income (annual): %s\n", fmtMoney(snap.GrossIncomeAnnual))
	fmt.Fprintf(&b, "Net income (annual): %s\n", fmtMoney(snap.AnnualNet))
	fmt.Fprintf(&b, "Facility size (sqft): %s\n", fmtNumber(snap.FacilitySizeSqft))
	if snap.Lease != nil {
		fmt.Fprintf(&b, "Lease: monthly rent %s, years remaining %s, renewal options %s, annual increase %s%%\n",
			fmtMoney(snap.Lease.MonthlyRent), fmtNumber(snap.Lease.YearsRemaining),
			orNA(snap.Lease.RenewalOptions), fmtNumber(snap.Lease.AnnualIncrease))
	}
	if len(snap.Expenses) > 0 {
		b.WriteString("Reported expenses (annual):\n")
		for _, e := range snap.Expenses {
			fmt.Fprintf(&b, "  - %s: $%.0f\n", e.Name, e.AmountAnnual)
		}
	}
	if snap.Equipment != "" {
		fmt.Fprintf(&b, "Equipment notes: %s\n", snap.Equipment)
	}
	if len(snap.Machines) > 0 {
		b.WriteString("Machine inventory:\n")
		for _, m := range snap.Machines {
			fmt.Fprintf(&b, "  - %dx %s %s (age %s yrs, vend price %s)\n",
				m.Count, orNA(m.Brand), orNA(m.Type), fmtNumber(m.AgeYears), fmtMoney(m.VendPrice))
		}
	}
	return b.String()
}

// renderStandards formats resolved industry benchmarks for prompt text.
// A nil context, or any nil range inside it, renders as unavailable rather
// than failing the stage.
func renderStandards(standards *model.StandardsContext) string {
	if standards == nil {
		return "Industry benchmarks: unavailable for this location.\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Industry benchmarks (%s):\n", orNA(standards.Location))
	writeRange := func(label, unit string, r *model.Range) {
		if r == nil {
			fmt.Fprintf(&b, "  - %s: unavailable\n", label)
			return
		}
		fmt.Fprintf(&b, "  - %s: %.1f-%.1f%s\n", label, r.Min, r.Max, unit)
	}
	writeRange("Rent (% of gross)", "%", standards.RentPct)
	writeRange("Utilities (% of gross)", "%", standards.UtilitiesPct)
	writeRange("Labor (% of gross)", "%", standards.LaborPct)
	writeRange("Cap rate", "%", standards.CapRate)
	writeRange("NOI multiple", "x", standards.NOIMultiple)
	writeRange("Ancillary revenue (% of gross)", "%", standards.AncillaryRevenue)
	return b.String()
}
