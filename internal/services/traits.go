package services

import (
	"math"
	"strings"

	"github.com/toxzak-svg/Axievale/internal/models"
)

// Scoring weights for the overall quality score.
const (
	purityWeight = 0.30
	partsWeight  = 0.25
	breedWeight  = 0.25
	statsWeight  = 0.20

	// maxTotalStats is the practical maximum combined stat value; totals
	// above it are clamped before weighting.
	maxTotalStats = 164

	// partSlots is the fixed number of body slots. Purity is always computed
	// against this divisor, even if the marketplace returns fewer parts.
	partSlots = 6
)

// valuablePartNames are meta-relevant part names, matched case-insensitively
// as substrings. Tunable as the meta shifts.
var valuablePartNames = []string{
	// Aquatic parts
	"Risky Fish", "Nimo", "Lam", "Koi", "Goldfish",
	// Beast parts
	"Ronin", "Imp", "Nut Cracker", "Goda", "Dual Blade",
	// Bird parts
	"Dark Swoop", "Blackmail", "Eggbomb", "Post Fight", "Cupid",
	// Bug parts
	"Sticky Goo", "Buzz Buzz", "Third Glance", "Gravel Ant",
	// Plant parts
	"October Treat", "Disguise", "Leaf Bug", "Cactus", "Serious",
	// Reptile parts
	"Tiny Dino", "Kotaro", "Green Thorns", "Snail Shell",
}

// AnalyzeTraits computes the quality scorecard for an Axie. It is a pure
// function: no external calls, no failure modes.
func AnalyzeTraits(axie *models.Axie) models.TraitScorecard {
	matching := 0
	for _, part := range axie.Parts {
		if part.Class == axie.Class {
			matching++
		}
	}
	purity := float64(matching) / partSlots * 100

	valuable := identifyValuableParts(axie.Parts)
	totalStats := axie.Stats.Total()
	breedScore := math.Max(0, 100-float64(axie.BreedCount)*15)

	return models.TraitScorecard{
		Purity:        purity,
		IsPure:        purity == 100,
		MatchingParts: matching,
		ValuableParts: valuable,
		TotalStats:    totalStats,
		BreedCount:    axie.BreedCount,
		BreedScore:    breedScore,
		Class:         axie.Class,
		OverallScore:  overallScore(purity, len(valuable), breedScore, totalStats),
	}
}

// identifyValuableParts returns the parts whose names match the curated
// valuable-part list.
func identifyValuableParts(parts []models.Part) []models.Part {
	var valuable []models.Part
	for _, part := range parts {
		lower := strings.ToLower(part.Name)
		for _, name := range valuablePartNames {
			if strings.Contains(lower, strings.ToLower(name)) {
				valuable = append(valuable, part)
				break
			}
		}
	}
	return valuable
}

// overallScore is the weighted quality composite, clamped to [0, 100].
func overallScore(purity float64, valuableCount int, breedScore float64, totalStats int) int {
	normalizedStats := math.Min(100, float64(totalStats)/maxTotalStats*100)
	partsScore := math.Min(100, float64(valuableCount)*25)

	return int(math.Round(
		purity*purityWeight +
			partsScore*partsWeight +
			breedScore*breedWeight +
			normalizedStats*statsWeight))
}
