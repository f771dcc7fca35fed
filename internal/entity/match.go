package entity

import "sort"

// Recommendation is one ranked catalog candidate for a requirement.
type Recommendation struct {
	Rank           int     `json:"rank"`
	ProductID      string  `json:"product_id"`
	ProductName    string  `json:"product_name"`
	SpecMatchScore int     `json:"spec_match_score"`
	Confidence     float64 `json:"confidence"`
	Reasoning      string  `json:"reasoning"`
}

// MatchedItem pairs a requirement with its ranked recommendations. The top-level
// product fields mirror rank 1 and are empty for service/constraint items.
type MatchedItem struct {
	Requirement       string           `json:"requirement"`
	EstimatedQuantity int              `json:"estimated_quantity"`
	Recommendations   []Recommendation `json:"recommendations"`

	ProductID      string  `json:"product_id,omitempty"`
	ProductName    string  `json:"product_name,omitempty"`
	Confidence     float64 `json:"confidence,omitempty"`
	SpecMatchScore int     `json:"spec_match_score,omitempty"`
	Reasoning      string  `json:"reasoning,omitempty"`
}

// IsService reports whether the item is a service/constraint (no catalog candidates).
func (m MatchedItem) IsService() bool {
	return len(m.Recommendations) == 0
}

// SortRecommendations orders recommendations by rank ascending (stable).
func (m *MatchedItem) SortRecommendations() {
	sort.SliceStable(m.Recommendations, func(i, j int) bool {
		return m.Recommendations[i].Rank < m.Recommendations[j].Rank
	})
}

// DeriveTop re-derives every recommendation's confidence from its score and
// copies rank 1 into the top-level fields. Recommendations must already be sorted.
func (m *MatchedItem) DeriveTop() {
	for i := range m.Recommendations {
		m.Recommendations[i].Confidence = float64(m.Recommendations[i].SpecMatchScore) / 100
	}
	if len(m.Recommendations) == 0 {
		m.ProductID, m.ProductName, m.Reasoning = "", "", ""
		m.Confidence, m.SpecMatchScore = 0, 0
		return
	}
	top := m.Recommendations[0]
	m.ProductID = top.ProductID
	m.ProductName = top.ProductName
	m.Confidence = top.Confidence
	m.SpecMatchScore = top.SpecMatchScore
	m.Reasoning = top.Reasoning
}

// Clone returns a deep copy of the item.
func (m MatchedItem) Clone() MatchedItem {
	m.Recommendations = append([]Recommendation(nil), m.Recommendations...)
	return m
}

// CloneMatches deep-copies a match list; nil stays nil.
func CloneMatches(in []MatchedItem) []MatchedItem {
	if in == nil {
		return nil
	}
	out := make([]MatchedItem, len(in))
	for i, m := range in {
		out[i] = m.Clone()
	}
	return out
}
