package constants

// Stage names the originating component of a log entry.
type Stage string

// Stable values (rendered verbatim in the activity log).
const (
	StageIdentification Stage = "RFP-ID-AGENT"
	StageMatching       Stage = "MATCH-AGENT"
	StagePricing        Stage = "PRICING-AGENT"
	StageDrafting       Stage = "WRITER-AGENT"
	StageSystem         Stage = "SYSTEM"
)

// Severity is the level of a pipeline log entry.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// InputMode selects how the identification stage obtains its BidExtract.
type InputMode string

const (
	ModeFreeText   InputMode = "freeText"
	ModePortalScan InputMode = "portalScan"
)

// SendStatus is the outcome of the send action.
type SendStatus string

const (
	SendStatusSent           SendStatus = "sent"
	SendStatusReviewRequired SendStatus = "review_required"
)

// LineKind distinguishes the three layers of a priced quote.
type LineKind string

const (
	LineKindCatalog LineKind = "catalog"
	LineKindService LineKind = "service"
	LineKindLabFee  LineKind = "lab_fee"
)
