package model

// Range is a benchmark min/max band, expressed as a percentage of gross
// revenue unless noted otherwise.
type Range struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// StandardsContext holds industry benchmark figures for a location. A nil
// *StandardsContext is a legitimate value everywhere in the pipeline: prompts
// simply omit the benchmark section and validations fall back to generic
// reasoning.
type StandardsContext struct {
	Location         string `json:"location,omitempty" yaml:"location,omitempty"`
	RentPct          *Range `json:"rentPct,omitempty" yaml:"rent_pct,omitempty"`
	UtilitiesPct     *Range `json:"utilitiesPct,omitempty" yaml:"utilities_pct,omitempty"`
	LaborPct         *Range `json:"laborPct,omitempty" yaml:"labor_pct,omitempty"`
	CapRate          *Range `json:"capRate,omitempty" yaml:"cap_rate,omitempty"`
	NOIMultiple      *Range `json:"noiMultiple,omitempty" yaml:"noi_multiple,omitempty"`
	AncillaryRevenue *Range `json:"ancillaryRevenue,omitempty" yaml:"ancillary_revenue,omitempty"`
}
