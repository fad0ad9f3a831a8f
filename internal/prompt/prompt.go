// Package prompt builds the instruction text sent to the generative model.
// All functions are pure: creative parameters in, compiled text out.
package prompt

import (
	"fmt"
	"strings"
)

// Quality selects how much detail the generation prompt asks for.
type Quality string

const (
	QualityStandard Quality = "standard"
	QualityHD       Quality = "hd"
)

// AspectRatios lists the supported output aspect ratios.
var AspectRatios = []string{"1:1", "3:4", "4:3", "9:16", "16:9"}

// ValidAspectRatio reports whether ar is a supported aspect ratio.
func ValidAspectRatio(ar string) bool {
	for _, a := range AspectRatios {
		if a == ar {
			return true
		}
	}
	return false
}

// clauseSeparator joins compiled clauses in insertion order.
const clauseSeparator = ", "

const (
	styleTag = "visual-novel illustration, anime style"
	hdClause = "ultra-detailed, best quality, 8k, finely rendered"
)

// Slider thresholds. Values at the boundaries trigger no clause; only the
// extremes add explicit instruction.
const (
	sliderLow  = 25
	sliderHigh = 75
)

// Generation compiles the image generation instruction. The aspect ratio is
// carried in the prompt text because the image model reads it from there.
func Generation(userPrompt, aspectRatio string, quality Quality) string {
	qualityClause := ""
	if quality == QualityHD {
		qualityClause = hdClause + clauseSeparator
	}
	return fmt.Sprintf("%s, aspect ratio %s, %s%s", styleTag, aspectRatio, qualityClause, userPrompt)
}

// Edit compiles the image edit instruction from the base prompt and the
// slider-style creative parameters. Style strength and creativity are in
// [0,100]; the middle band [25,75] adds nothing.
func Edit(userPrompt string, styleStrength, creativity int, negativePrompt string) string {
	clauses := []string{userPrompt}

	switch {
	case styleStrength < sliderLow:
		clauses = append(clauses, "make only minor changes", "preserve the original art style as much as possible")
	case styleStrength > sliderHigh:
		clauses = append(clauses, "make significant changes", "the art style may change substantially")
	}

	switch {
	case creativity < sliderLow:
		clauses = append(clauses, "follow the description strictly")
	case creativity > sliderHigh:
		clauses = append(clauses, "take creative liberties")
	}

	if neg := strings.TrimSpace(negativePrompt); neg != "" {
		clauses = append(clauses, "avoid the following: "+neg)
	}

	return strings.Join(clauses, clauseSeparator)
}

// Scene compiles the scene-description expansion instruction.
func Scene(idea string) string {
	return fmt.Sprintf("Based on the following idea, write a rich, detailed, and expressive scene description suitable for a visual-novel illustration. Describe the character's appearance, expression, and pose, the environment, the lighting, and the overall mood. Idea: %q", idea)
}

// Ideas compiles the grounded character-idea instruction. The question is
// sent as-is; web grounding is enabled at the request level.
func Ideas(question string) string {
	return question
}
