package yieldcurve

// Instrument is one reference treasury instrument anchoring the curve.
type Instrument struct {
	MaturityYears int
	Symbol        string
	Label         string
}

// Treasuries is the fixed set of reference instruments, keyed by the
// Yahoo index symbols for the CBOE treasury yield indices.
var Treasuries = []Instrument{
	{MaturityYears: 1, Symbol: "^IRX", Label: "1-year"},
	{MaturityYears: 5, Symbol: "^FVX", Label: "5-year"},
	{MaturityYears: 10, Symbol: "^TNX", Label: "10-year"},
	{MaturityYears: 30, Symbol: "^TYX", Label: "30-year"},
}
