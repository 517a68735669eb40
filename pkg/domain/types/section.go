package types

import (
	"github.com/m-mizutani/goerr/v2"
)

// SectionType represents the structural slot on a page that a component fills
type SectionType string

const (
	SectionHero         SectionType = "hero"
	SectionAbout        SectionType = "about"
	SectionServices     SectionType = "services"
	SectionGallery      SectionType = "gallery"
	SectionPricing      SectionType = "pricing"
	SectionTestimonials SectionType = "testimonials"
	SectionContact      SectionType = "contact"
	SectionCTA          SectionType = "cta"
)

// Validate checks if the SectionType is valid
func (s SectionType) Validate() error {
	if s == "" {
		return goerr.New("section type cannot be empty")
	}
	if !idPattern.MatchString(string(s)) {
		return goerr.New("section type must be lowercase alphanumeric with hyphens", goerr.V("section", s))
	}
	return nil
}

// String returns the string representation of SectionType
func (s SectionType) String() string {
	return string(s)
}

// DefaultSectionPriority is the substitution order used when a duplicate
// layout must be repaired. Front sections dominate visual identity, so
// they are replaced first.
var DefaultSectionPriority = []SectionType{
	SectionHero,
	SectionAbout,
	SectionServices,
	SectionGallery,
	SectionPricing,
	SectionTestimonials,
	SectionContact,
	SectionCTA,
}
