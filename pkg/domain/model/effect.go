package model

// EffectAttribute identifies a presentation attribute kind (heading,
// paragraph, image, ...) that receives a visual effect value
type EffectAttribute string

const (
	EffectHeading   EffectAttribute = "heading"
	EffectParagraph EffectAttribute = "paragraph"
	EffectImage     EffectAttribute = "image"
	EffectCard      EffectAttribute = "card"
	EffectCTA       EffectAttribute = "cta"
)

// EffectPools maps each attribute kind to its small fixed pool of allowed
// effect values
type EffectPools map[EffectAttribute][]string

// DefaultEffectPools returns the built-in animation pools used when the
// policy file does not override them
func DefaultEffectPools() EffectPools {
	return EffectPools{
		EffectHeading:   {"fade-up", "fade-down", "slide-left", "slide-right", "zoom-in"},
		EffectParagraph: {"fade-up", "fade-in", "slide-up"},
		EffectImage:     {"zoom-in", "fade-in", "flip-left", "flip-right"},
		EffectCard:      {"fade-up", "zoom-in", "flip-up"},
		EffectCTA:       {"zoom-in", "fade-up", "pulse"},
	}
}
