package constants

// Sentinel values substituted when extraction finds nothing. Downstream
// consumers require every field to be populated, so misses never surface
// as empty records.
const (
	UnknownVendor = "Unknown Vendor"
	UnknownClient = "Unknown Client"

	// Placeholder line item emitted when the item scan finds nothing;
	// postings require at least one item.
	PlaceholderItemCode        = "GEN-001"
	PlaceholderItemDescription = "Servicios / productos facturados"
)

// MinPlausibleTotal is the floor for a numeric token to count as a
// document total; smaller numbers are almost always quantities, rates
// or line numbers.
const MinPlausibleTotal = 100

// DefaultAgentConfidence is the minimum agent confidence accepted before
// escalating to triage.
const DefaultAgentConfidence = 0.75
