package prompt

import (
	"strings"

	"github.com/MalinduDS/styleshot/internal/catalog"
	"github.com/MalinduDS/styleshot/internal/lighting"
)

const (
	// Threshold is the slider magnitude a value must exceed before it shows up in the prompt.
	Threshold = 20

	WearingConnective = ", wearing this, "
	FallbackSubject   = "A professional photo of this clothing item"
)

type fragmentRule struct {
	value    func(lighting.State) int
	positive string
	negative string
}

// Order matters: brightness, then contrast, then warmth.
var fragmentRules = []fragmentRule{
	{
		value:    func(s lighting.State) int { return s.Brightness },
		positive: ", bright lighting",
		negative: ", dim, moody lighting",
	},
	{
		value:    func(s lighting.State) int { return s.Contrast },
		positive: ", high contrast, sharp details",
		negative: ", low contrast, soft focus",
	},
	{
		value:    func(s lighting.State) int { return s.Warmth },
		positive: ", warm tones, golden hour style",
		negative: ", cool tones, blueish tint",
	},
}

// Compose builds the generation prompt from the selected model, the scene text and the
// lighting values. A nil model falls back to a generic product-photo subject.
func Compose(model *catalog.VirtualModel, scene string, l lighting.State) string {
	var b strings.Builder
	if model != nil {
		b.WriteString(model.Description)
		b.WriteString(WearingConnective)
	} else {
		b.WriteString(FallbackSubject)
		b.WriteString(", ")
	}
	b.WriteString(scene)
	b.WriteString(LightingFragments(l))
	return b.String()
}

// LightingFragments returns the adjective suffix derived from l.
func LightingFragments(l lighting.State) string {
	var b strings.Builder
	for _, r := range fragmentRules {
		switch v := r.value(l); {
		case v > Threshold:
			b.WriteString(r.positive)
		case v < -Threshold:
			b.WriteString(r.negative)
		}
	}
	return b.String()
}
