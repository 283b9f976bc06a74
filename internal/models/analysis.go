package models

import "time"

// LabelScore is a candidate label and the score the classifier gave it
type LabelScore struct {
	Label string  `bson:"label" json:"label"`
	Score float64 `bson:"score" json:"score"`
}

// AnalysisResult is the outcome of analyzing a project description
type AnalysisResult struct {
	Technologies     []string     `bson:"technologies" json:"technologies"`
	Complexity       string       `bson:"complexity" json:"complexity"`
	Expertise        string       `bson:"expertise" json:"expertise"`
	TechnologyScores []LabelScore `bson:"technologyScores" json:"technology_scores"`
	ComplexityScores []LabelScore `bson:"complexityScores" json:"complexity_scores"`
	ExpertiseScores  []LabelScore `bson:"expertiseScores" json:"expertise_scores"`
	AnalyzedAt       time.Time    `bson:"analyzedAt" json:"analyzed_at"`
}

// Requirements converts the analysis into the requirements embedded on a user.
func (a *AnalysisResult) Requirements(description string) *ProjectRequirements {
	return &ProjectRequirements{
		Description:  description,
		Technologies: a.Technologies,
		Complexity:   a.Complexity,
		Expertise:    a.Expertise,
		AnalyzedAt:   a.AnalyzedAt,
	}
}

// DeveloperMatch is a developer ranked against a project description
type DeveloperMatch struct {
	Developer *PublicProfile `json:"developer"`
	Skills    []string       `json:"skills,omitempty"`
	Score     float64        `json:"score"`
}
