package pricing

import "strings"

// ServiceCategory groups service/constraint requirements for market-rate estimation.
type ServiceCategory string

const (
	ServiceDelivery   ServiceCategory = "delivery"
	ServiceCompliance ServiceCategory = "compliance"
	ServiceSupport    ServiceCategory = "support"
	ServiceWarranty   ServiceCategory = "warranty"
	ServiceAdmin      ServiceCategory = "admin"
)

type serviceRate struct {
	anchor    float64
	label     string
	rationale string
	keywords  []string
}

// Checked in this order; admin is the fallback.
var serviceOrder = []ServiceCategory{ServiceWarranty, ServiceCompliance, ServiceSupport, ServiceDelivery, ServiceAdmin}

var serviceRates = map[ServiceCategory]serviceRate{
	ServiceDelivery: {
		anchor: 2500, label: "Delivery/Logistics",
		rationale: "Market rate for delivery and logistics",
		keywords:  []string{"deliver", "logistic", "shipping", "ship ", "transport", "freight", "dispatch", "site within"},
	},
	ServiceCompliance: {
		anchor: 750, label: "Compliance/Certification",
		rationale: "Market rate for compliance documentation and certification",
		keywords:  []string{"complian", "certif", "iso ", "iso-", "standard", "regulat", "audit", "msds", "test report"},
	},
	ServiceSupport: {
		anchor: 1500, label: "Technical Support",
		rationale: "Market rate for on-site technical support",
		keywords:  []string{"support", "training", "technical", "supervis", "install", "on-site", "onsite", "application"},
	},
	ServiceWarranty: {
		anchor: 1000, label: "Extended Warranty",
		rationale: "Market rate for extended warranty cover",
		keywords:  []string{"warrant", "guarantee"},
	},
	ServiceAdmin: {
		anchor: 500, label: "Admin/Processing",
		rationale: "Market rate for administrative processing",
		keywords:  []string{"admin", "processing", "paperwork", "documentation", "invoice"},
	},
}

// Classify maps a service/constraint requirement onto a category by keyword.
func Classify(text string) ServiceCategory {
	t := strings.ToLower(text)
	for _, c := range serviceOrder {
		for _, kw := range serviceRates[c].keywords {
			if strings.Contains(t, kw) {
				return c
			}
		}
	}
	return ServiceAdmin
}

// ParseServiceCategory accepts a provider-reported category.
func ParseServiceCategory(s string) (ServiceCategory, bool) {
	c := ServiceCategory(strings.ToLower(strings.TrimSpace(s)))
	_, ok := serviceRates[c]
	return c, ok
}

// AnchorPrice returns the illustrative fixed price of a category.
func AnchorPrice(c ServiceCategory) float64 {
	if r, ok := serviceRates[c]; ok {
		return r.anchor
	}
	return serviceRates[ServiceAdmin].anchor
}

func rationale(c ServiceCategory) string {
	r, ok := serviceRates[c]
	if !ok {
		r = serviceRates[ServiceAdmin]
	}
	return r.rationale + " (" + r.label + ")"
}
