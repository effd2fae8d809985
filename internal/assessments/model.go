// Package assessments turns raw engine replies into assessment records and
// keeps the per-user assessment history.
package assessments

import "time"

// Variant tags which shape a Record carries.
type Variant string

const (
	// VariantStructured records were parsed from a valid JSON block and carry scores.
	VariantStructured Variant = "structured"
	// VariantUnstructured records keep the raw reply and never carry scores.
	VariantUnstructured Variant = "unstructured"
)

// RequirementLevel grades a certification.
type RequirementLevel string

const (
	LevelMandatory   RequirementLevel = "mandatory"
	LevelRecommended RequirementLevel = "recommended"
	LevelOptional    RequirementLevel = "optional"
)

// Priority grades a compliance gap.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// CategoryScores are the four 0-100 sub-scores averaged into the overall score.
type CategoryScores struct {
	RegulatoryCompliance   float64 `json:"regulatoryCompliance"`
	MarketViability        float64 `json:"marketViability"`
	DocumentationReadiness float64 `json:"documentationReadiness"`
	CompetitivePositioning float64 `json:"competitivePositioning"`
}

// Mean returns the arithmetic mean of the four scores.
func (s CategoryScores) Mean() float64 {
	return (s.RegulatoryCompliance + s.MarketViability + s.DocumentationReadiness + s.CompetitivePositioning) / 4
}

type Certification struct {
	Name             string           `json:"name"`
	RequirementLevel RequirementLevel `json:"requirementLevel"`
	EstimatedTime    string           `json:"estimatedTime,omitempty"`
	EstimatedCost    string           `json:"estimatedCost,omitempty"`
	IssuingBody      string           `json:"issuingBody,omitempty"`
}

type ComplianceGap struct {
	Type           string   `json:"type,omitempty"`
	Description    string   `json:"description"`
	RequiredAction string   `json:"requiredAction,omitempty"`
	Priority       Priority `json:"priority"`
}

type Recommendation struct {
	Category  string `json:"category,omitempty"`
	Text      string `json:"text"`
	Rationale string `json:"rationale,omitempty"`
}

// Commentary holds numbers found in prose of an unstructured reply. It is
// informational only.
type Commentary struct {
	MentionedScores []int `json:"mentionedScores,omitempty"`
}

// Record is a normalized assessment. Structured records set OverallScore
// and Scores; unstructured records set FallbackText instead.
type Record struct {
	Variant         Variant          `json:"variant"`
	OverallScore    *int             `json:"overallScore,omitempty"`
	Scores          *CategoryScores  `json:"scores,omitempty"`
	Certifications  []Certification  `json:"certifications,omitempty"`
	Gaps            []ComplianceGap  `json:"gaps,omitempty"`
	Recommendations []Recommendation `json:"recommendations,omitempty"`
	Timeline        string           `json:"timeline,omitempty"`

	ActionItems           []string `json:"actionItems,omitempty"`
	ReadinessLevel        string   `json:"readinessLevel,omitempty"`
	MarketInsights        string   `json:"marketInsights,omitempty"`
	CompetitiveAdvantages []string `json:"competitiveAdvantages,omitempty"`
	PotentialChallenges   []string `json:"potentialChallenges,omitempty"`

	DeclaredOverall   *float64 `json:"declaredOverall,omitempty"`
	OverallOverridden bool     `json:"overallOverridden,omitempty"`

	FallbackText string      `json:"fallbackText,omitempty"`
	Commentary   *Commentary `json:"commentary,omitempty"`
}

// Structured reports whether r is the structured variant.
func (r Record) Structured() bool {
	return r.Variant == VariantStructured && r.OverallScore != nil && r.Scores != nil
}

// Overall returns the overall score of a structured record.
func (r Record) Overall() (int, bool) {
	if !r.Structured() {
		return 0, false
	}
	return *r.OverallScore, true
}

// Entry is one appended history item.
type Entry struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Seq        int64     `json:"seq"`
	Country    string    `json:"country"`
	CreatedAt  time.Time `json:"createdAt"`
	Record     Record    `json:"record"`
	PromptHash string    `json:"promptHash,omitempty"`
}
