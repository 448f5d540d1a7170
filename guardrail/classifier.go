package guardrail

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	ai "github.com/englify/tutorkit"
	"github.com/englify/tutorkit/gateway"
)

const (
	// DefaultModel is a small model suited to classification.
	DefaultModel = "gpt-4o-mini"

	schemaName = "output_format"
)

// Stage names where a classification failed.
const (
	StageRequest = "request"
	StageParse   = "parse"
)

// ClassificationError reports a failed classification.
type ClassificationError struct {
	Stage string
	Err   error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("guardrail: classification %s failed: %v", e.Stage, e.Err)
}

func (e *ClassificationError) Unwrap() error { return e.Err }

// Classifier asks a reasoning backend to classify text.
type Classifier struct {
	gateway gateway.Gateway
	model   string
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithModel sets the classification model.
func WithModel(model string) ClassifierOption {
	return func(c *Classifier) {
		if model != "" {
			c.model = model
		}
	}
}

// NewClassifier creates a classifier that sends through gw.
func NewClassifier(gw gateway.Gateway, opts ...ClassifierOption) *Classifier {
	c := &Classifier{gateway: gw, model: DefaultModel}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify returns the verdict for text under policy p. The verdict's
// SourceText is always text.
func (c *Classifier) Classify(ctx context.Context, text string, p Policy) (Verdict, error) {
	req := ai.NewRequest(c.model, nil, ai.NewUserMessage(buildPrompt(text, p)))
	req.ResponseFormat = &ai.ResponseSchema{Name: schemaName, Schema: outputSchema()}

	resp, err := c.gateway.Send(ctx, req)
	if err != nil {
		return Verdict{}, &ClassificationError{Stage: StageRequest, Err: err}
	}

	v, err := parseVerdict(resp.Text())
	if err != nil {
		return Verdict{}, &ClassificationError{Stage: StageParse, Err: err}
	}
	v.SourceText = text
	return v, nil
}

func parseVerdict(raw string) (Verdict, error) {
	var v Verdict
	dec := json.NewDecoder(strings.NewReader(strings.TrimSpace(raw)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return Verdict{}, err
	}
	if dec.More() {
		return Verdict{}, errors.New("unexpected data after verdict")
	}
	if err := v.validate(); err != nil {
		return Verdict{}, err
	}
	return v, nil
}
