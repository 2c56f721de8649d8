// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package deck

// Condition enumerates the inputs that may be missing or broken while a
// deck is assembled.
type Condition int

const (
	// CondUnknownToken is a template token with no placeholder entry.
	CondUnknownToken Condition = iota

	// CondMissingLogo is an organization with no matching logo asset.
	CondMissingLogo

	// CondVectorConversionFailed is a logo whose SVG could not be rasterized.
	CondVectorConversionFailed

	// CondMissingMetric is a case study slot with no usable metric value.
	CondMissingMetric

	// CondMissingBullet is a narrative block with fewer fragments than the
	// template has bullet slots.
	CondMissingBullet
)

// Outcome is the degraded output substituted for one Condition. Exactly one
// of Literal/BlankShape is set for non-text conditions; text conditions
// carry the substitute string.
type Outcome struct {
	// Literal leaves the template token verbatim in the output.
	Literal bool

	// BlankShape removes or blanks the placeholder shape.
	BlankShape bool

	// Text is the substitute value for text conditions.
	Text string
}

// Policy is the single place every missing-input decision lives. All
// conditions degrade to visible partial output; none abort a generation.
var Policy = map[Condition]Outcome{
	CondUnknownToken:           {Literal: true},
	CondMissingLogo:            {BlankShape: true},
	CondVectorConversionFailed: {BlankShape: true},
	CondMissingMetric:          {Text: "-"},
	CondMissingBullet:          {Text: ""},
}

// Degrade looks up the outcome for a condition.
func Degrade(c Condition) Outcome { return Policy[c] }
