package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"creatorsmeet/internal/config"
	"creatorsmeet/internal/huggingface"
	"creatorsmeet/internal/models"
)

// maxCandidateDevelopers bounds how many developer profiles are sent to the model at once
const maxCandidateDevelopers = 50

// ErrNoDevelopers is returned when there is nobody to match against
var ErrNoDevelopers = errors.New("no developers available")

// Classifier scores candidate labels against free text
type Classifier interface {
	Classify(ctx context.Context, text string, labels []string, multiLabel bool) (*huggingface.Classification, error)
}

// LabelSource provides the current candidate label sets
type LabelSource interface {
	Get() *config.Labels
}

// DeveloperDirectory lists users by role
type DeveloperDirectory interface {
	ListByRole(ctx context.Context, role models.Role, limit int64) ([]models.User, error)
}

// AnalysisService turns project descriptions into structured requirements
type AnalysisService struct {
	classifier Classifier
	labels     LabelSource
	developers DeveloperDirectory
	now        func() time.Time
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(classifier Classifier, labels LabelSource, developers DeveloperDirectory) *AnalysisService {
	return &AnalysisService{
		classifier: classifier,
		labels:     labels,
		developers: developers,
		now:        time.Now,
	}
}

// Analyze classifies description against the technology, complexity and
// expertise label sets. Technologies are scored independently and every label
// at or above the threshold is kept, best first, up to the configured maximum.
// Complexity and expertise take the single best label.
func (s *AnalysisService) Analyze(ctx context.Context, description string) (*models.AnalysisResult, error) {
	labels := s.labels.Get()

	techs, err := s.classifier.Classify(ctx, description, labels.Technologies, true)
	if err != nil {
		return nil, fmt.Errorf("technology classification failed: %w", err)
	}
	complexity, err := s.classifier.Classify(ctx, description, labels.Complexity, false)
	if err != nil {
		return nil, fmt.Errorf("complexity classification failed: %w", err)
	}
	expertise, err := s.classifier.Classify(ctx, description, labels.Expertise, false)
	if err != nil {
		return nil, fmt.Errorf("expertise classification failed: %w", err)
	}

	result := &models.AnalysisResult{
		Technologies:     selectTechnologies(techs, labels.TechnologyThreshold, labels.MaxTechnologies),
		TechnologyScores: toLabelScores(techs),
		ComplexityScores: toLabelScores(complexity),
		ExpertiseScores:  toLabelScores(expertise),
		AnalyzedAt:       s.now(),
	}
	if best, ok := complexity.Best(); ok {
		result.Complexity = best.Label
	}
	if best, ok := expertise.Best(); ok {
		result.Expertise = best.Label
	}
	return result, nil
}

// MatchDevelopers ranks developers against description. Each developer is
// presented to the model as one candidate label built from their profile.
func (s *AnalysisService) MatchDevelopers(ctx context.Context, description string, limit int) ([]models.DeveloperMatch, error) {
	developers, err := s.developers.ListByRole(ctx, models.RoleDeveloper, maxCandidateDevelopers)
	if err != nil {
		return nil, err
	}
	if len(developers) == 0 {
		return nil, ErrNoDevelopers
	}

	labels, owners := developerLabels(developers)
	classification, err := s.classifier.Classify(ctx, description, labels, true)
	if err != nil {
		return nil, fmt.Errorf("developer classification failed: %w", err)
	}

	matches := make([]models.DeveloperMatch, 0, len(labels))
	for _, ranked := range classification.Ranked() {
		dev, ok := owners[ranked.Label]
		if !ok {
			continue
		}
		matches = append(matches, models.DeveloperMatch{
			Developer: dev.ToPublicProfile(),
			Skills:    dev.Skills,
			Score:     ranked.Score,
		})
	}
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// developerLabels builds one distinct label per developer and maps it back.
func developerLabels(developers []models.User) ([]string, map[string]*models.User) {
	labels := make([]string, 0, len(developers))
	owners := make(map[string]*models.User, len(developers))

	for i := range developers {
		dev := &developers[i]
		label := dev.Name
		if len(dev.Skills) > 0 {
			label += ": " + strings.Join(dev.Skills, ", ")
		}
		if dev.Bio != "" {
			label += ". " + dev.Bio
		}
		if _, taken := owners[label]; taken {
			label += " (" + dev.ID.Hex() + ")"
		}
		labels = append(labels, label)
		owners[label] = dev
	}
	return labels, owners
}

func selectTechnologies(c *huggingface.Classification, threshold float64, max int) []string {
	selected := []string{}
	for _, ranked := range c.Ranked() {
		if ranked.Score < threshold {
			break
		}
		if max > 0 && len(selected) >= max {
			break
		}
		selected = append(selected, ranked.Label)
	}
	return selected
}

func toLabelScores(c *huggingface.Classification) []models.LabelScore {
	ranked := c.Ranked()
	scores := make([]models.LabelScore, len(ranked))
	for i, r := range ranked {
		scores[i] = models.LabelScore{Label: r.Label, Score: r.Score}
	}
	return scores
}
