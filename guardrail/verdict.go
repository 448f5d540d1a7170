package guardrail

import (
	"errors"
	"fmt"
	"strings"
)

// Category is a moderation class.
type Category string

const (
	CategoryInappropriate Category = "INAPPROPRIATE"
	CategoryOffTopic      Category = "OFF_TOPIC"
	CategoryNonEnglish    Category = "NON_ENGLISH"
	CategoryNone          Category = "NONE"
)

// Categories lists every category in prompt order.
var Categories = []Category{CategoryInappropriate, CategoryOffTopic, CategoryNonEnglish, CategoryNone}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	switch c {
	case CategoryInappropriate, CategoryOffTopic, CategoryNonEnglish, CategoryNone:
		return true
	}
	return false
}

// Verdict is the classification of one piece of text.
type Verdict struct {
	ModerationCategory Category `json:"moderationCategory"`
	Reason             string   `json:"reason"`

	// SourceText is the text that was classified.
	SourceText string `json:"testText"`
}

// TripwireTriggered reports whether the text was classified as anything
// other than NONE.
func (v Verdict) TripwireTriggered() bool {
	return v.ModerationCategory != CategoryNone
}

func (v Verdict) validate() error {
	if !v.ModerationCategory.Valid() {
		return fmt.Errorf("unknown moderation category %q", v.ModerationCategory)
	}
	if strings.TrimSpace(v.Reason) == "" {
		return errors.New("verdict has no reason")
	}
	return nil
}

// Policy describes the application the classifier moderates for.
type Policy struct {
	AppName string
	Context string
}

// DefaultPolicy is the policy of the Englify English tutor.
func DefaultPolicy() Policy {
	return Policy{
		AppName: "Englify",
		Context: "English language learning assistant (teacher). The assistant should keep students " +
			"focused on practicing English politely and safely.",
	}
}
