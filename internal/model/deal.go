package model

// DealInput is the raw deal payload as received from the webhook. Every
// field except the expense and machine lists is optional; malformed or
// missing values are normalized away by the snapshot builder rather than
// rejected here.
type DealInput struct {
	AskingPrice       *float64       `json:"askingPrice,omitempty"`
	GrossIncomeAnnual *float64       `json:"grossIncomeAnnual,omitempty"`
	AnnualNet         *float64       `json:"annualNet,omitempty"`
	FacilitySizeSqft  *float64       `json:"facilitySizeSqft,omitempty"`
	PropertyAddress   string         `json:"propertyAddress,omitempty"`
	Lease             *LeaseInput    `json:"lease,omitempty"`
	Expenses          []ExpenseInput `json:"expenses,omitempty"`
	Equipment         string         `json:"equipment,omitempty"`
	MachineInventory  []MachineInput `json:"machineInventory,omitempty"`
}

// LeaseInput holds the reported lease terms.
type LeaseInput struct {
	MonthlyRent    *float64 `json:"monthlyRent,omitempty"`
	YearsRemaining *float64 `json:"yearsRemaining,omitempty"`
	RenewalOptions string   `json:"renewalOptions,omitempty"`
	AnnualIncrease *float64 `json:"annualIncrease,omitempty"`
}

// ExpenseInput is one reported expense line item.
type ExpenseInput struct {
	ExpenseName  string   `json:"expenseName"`
	AmountAnnual *float64 `json:"amountAnnual,omitempty"`
}

// MachineInput describes one machine (or machine group) in the inventory.
type MachineInput struct {
	Type      string   `json:"type,omitempty"`
	Brand     string   `json:"brand,omitempty"`
	Count     int      `json:"count,omitempty"`
	AgeYears  *float64 `json:"ageYears,omitempty"`
	VendPrice *float64 `json:"vendPrice,omitempty"`
}

// DealSnapshot is the normalized, immutable record every pipeline stage
// reads. Monetary fields are non-negative or nil, never negative and never
// a non-numeric placeholder. Built once per request by BuildSnapshot and
// read-only afterwards.
type DealSnapshot struct {
	DealID            string
	UserID            string
	AskingPrice       *float64
	GrossIncomeAnnual *float64
	AnnualNet         *float64
	FacilitySizeSqft  *float64
	PropertyAddress   string
	Zip               string
	LocationKey       string
	Lease             *Lease
	Expenses          []ExpenseLine
	Equipment         string
	Machines          []Machine
}

// Lease is the normalized lease record.
type Lease struct {
	MonthlyRent    *float64
	YearsRemaining *float64
	RenewalOptions string
	AnnualIncrease *float64
}

// ExpenseLine is one normalized expense line item. AmountAnnual is zero
// when the reported amount was missing or negative.
type ExpenseLine struct {
	Name         string
	AmountAnnual float64
}

// Machine is one normalized machine inventory entry.
type Machine struct {
	Type      string
	Brand     string
	Count     int
	AgeYears  *float64
	VendPrice *float64
}
