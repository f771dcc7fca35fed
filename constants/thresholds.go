package constants

// Identification.
const (
	FallbackContactEmail = "procurement@client.com"
	PortalContactEmail   = "procurement@nexushealth.com"
	MinPriorityScore     = 1
	MaxPriorityScore     = 100
)

// Matching and guardrail.
const (
	DefaultQuantity         = 100
	MaxRecommendations      = 3
	GuardrailScoreCap       = 55
	GuardrailConfidence     = 0.55
	GuardrailMinLength      = 30
	LowConfidenceMatchScore = 60
)

// Pricing.
const (
	BulkDiscountThreshold = 1000
	BulkDiscountRate      = 0.15
)

// Integrity index.
const (
	PricingConfidenceScore = 95
	AIConfidenceScore      = 90
	WeightSpecMatch        = 0.4
	WeightPricing          = 0.3
	WeightAIConfidence     = 0.3
	IntegrityPassThreshold = 85 // strictly greater passes
	IntegritySendThreshold = 70 // strictly lower blocks send
)

// Portal scan.
const PortalMaxDaysToDeadline = 90
