package services

import (
	"testing"

	"github.com/toxzak-svg/Axievale/internal/models"
)

func makeParts(class models.Class, names ...string) []models.Part {
	parts := make([]models.Part, 0, len(names))
	for i, name := range names {
		parts = append(parts, models.Part{
			ID:    name,
			Name:  name,
			Class: class,
			Type:  []string{"eyes", "ears", "mouth", "horn", "back", "tail"}[i%6],
		})
	}
	return parts
}

func TestAnalyzeTraitsPureAxie(t *testing.T) {
	axie := &models.Axie{
		ID:    "1",
		Class: models.ClassAquatic,
		Parts: makeParts(models.ClassAquatic, "Anemone", "Hermit", "Oranda", "Shoal Star", "Babylonia", "Tri Feather"),
		Stats: models.Stats{HP: 45, Speed: 57, Skill: 35, Morale: 21},
	}

	analysis := AnalyzeTraits(axie)

	if analysis.Purity != 100 {
		t.Errorf("Expected purity 100, got %f", analysis.Purity)
	}
	if !analysis.IsPure {
		t.Error("Expected IsPure to be true")
	}
	if analysis.MatchingParts != 6 {
		t.Errorf("Expected 6 matching parts, got %d", analysis.MatchingParts)
	}
	if analysis.TotalStats != 158 {
		t.Errorf("Expected total stats 158, got %d", analysis.TotalStats)
	}
}

func TestAnalyzeTraitsMixedClasses(t *testing.T) {
	parts := makeParts(models.ClassAquatic, "Anemone", "Hermit", "Oranda")
	parts = append(parts, makeParts(models.ClassBeast, "Puppy", "Confident", "Furball")...)

	axie := &models.Axie{ID: "2", Class: models.ClassAquatic, Parts: parts}
	analysis := AnalyzeTraits(axie)

	if analysis.Purity != 50 {
		t.Errorf("Expected purity 50, got %f", analysis.Purity)
	}
	if analysis.IsPure {
		t.Error("Expected IsPure to be false")
	}
}

func TestAnalyzeTraitsEmptyParts(t *testing.T) {
	axie := &models.Axie{ID: "3", Class: models.ClassPlant}
	analysis := AnalyzeTraits(axie)

	if analysis.Purity != 0 {
		t.Errorf("Expected purity 0 for empty parts, got %f", analysis.Purity)
	}
	if analysis.MatchingParts != 0 {
		t.Errorf("Expected 0 matching parts, got %d", analysis.MatchingParts)
	}
	if analysis.OverallScore < 0 || analysis.OverallScore > 100 {
		t.Errorf("Overall score out of range: %d", analysis.OverallScore)
	}
}

func TestAnalyzeTraitsPurityUsesFixedDivisor(t *testing.T) {
	// Purity divides by the 6 body slots even when the marketplace returns
	// fewer parts.
	axie := &models.Axie{
		ID:    "4",
		Class: models.ClassBird,
		Parts: makeParts(models.ClassBird, "Doubletalk", "Pigeon Post", "Little Owl"),
	}
	analysis := AnalyzeTraits(axie)

	if analysis.Purity != 50 {
		t.Errorf("Expected purity 50 with 3 of 6 slots matching, got %f", analysis.Purity)
	}
}

func TestBreedScoreClampedAtZero(t *testing.T) {
	for _, breedCount := range []int{7, 8, 10, 100} {
		axie := &models.Axie{ID: "5", Class: models.ClassBeast, BreedCount: breedCount}
		analysis := AnalyzeTraits(axie)
		if analysis.BreedScore != 0 {
			t.Errorf("breedCount=%d: expected breed score 0, got %f", breedCount, analysis.BreedScore)
		}
	}

	axie := &models.Axie{ID: "6", Class: models.ClassBeast, BreedCount: 2}
	if got := AnalyzeTraits(axie).BreedScore; got != 70 {
		t.Errorf("breedCount=2: expected breed score 70, got %f", got)
	}
}

func TestIdentifyValuablePartsCaseInsensitive(t *testing.T) {
	parts := []models.Part{
		{Name: "RISKY FISH", Class: models.ClassAquatic},
		{Name: "risky fish", Class: models.ClassAquatic},
		{Name: "Anemone", Class: models.ClassAquatic},
	}

	valuable := identifyValuableParts(parts)
	if len(valuable) != 2 {
		t.Errorf("Expected 2 valuable parts, got %d", len(valuable))
	}
}

func TestOverallScoreStaysInRange(t *testing.T) {
	tests := []struct {
		name string
		axie *models.Axie
	}{
		{
			"everything maxed",
			&models.Axie{
				Class: models.ClassAquatic,
				Parts: makeParts(models.ClassAquatic, "Risky Fish", "Nimo", "Koi", "Goldfish", "Lam", "Risky Fish"),
				Stats: models.Stats{HP: 200, Speed: 200, Skill: 200, Morale: 200},
			},
		},
		{
			"everything zero",
			&models.Axie{Class: models.ClassDusk, BreedCount: 20},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := AnalyzeTraits(tt.axie).OverallScore
			if score < 0 || score > 100 {
				t.Errorf("Overall score out of range: %d", score)
			}
		})
	}
}
