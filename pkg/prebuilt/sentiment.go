// Package prebuilt provides ready-made graphs built on the core engine:
// keyword sentiment analysis, query triage with session persistence, a
// completion-backed assistant loop, and a supervisor/verifier review board.
package prebuilt

import (
	"context"
	"fmt"
	"strings"

	"github.com/stategraph/stategraph/internal/core/graph"
	"github.com/stategraph/stategraph/internal/core/schema"
)

// Field names of the sentiment graph state.
const (
	FieldFeedback   = "customer_feedback"
	FieldSentiment  = "sentiment"
	FieldConfidence = "confidence_score"
	FieldResponse   = "response_template"
)

var (
	positiveWords = []string{"great", "excellent", "love", "amazing", "happy", "satisfied", "wonderful", "perfect"}
	negativeWords = []string{"bad", "terrible", "hate", "disappointed", "issue", "problem", "awful", "horrible"}
)

// NewSentimentGraph builds a two-node linear graph: classify customer
// feedback by keyword matching, then generate a canned response for the
// detected sentiment.
func NewSentimentGraph() (*graph.CompiledGraph, error) {
	s, err := schema.Define(
		schema.Field{Name: FieldFeedback},
		schema.Field{Name: FieldSentiment},
		schema.Field{Name: FieldConfidence, Default: 0.0},
		schema.Field{Name: FieldResponse},
	)
	if err != nil {
		return nil, err
	}

	b := graph.NewBuilder(s)
	if err := b.AddNode("sentiment_analyzer", analyzeSentiment); err != nil {
		return nil, err
	}
	if err := b.AddNode("response_generator", generateResponse); err != nil {
		return nil, err
	}
	if err := b.AddEdge("sentiment_analyzer", "response_generator"); err != nil {
		return nil, err
	}
	if err := b.AddEdge("response_generator", graph.End); err != nil {
		return nil, err
	}
	b.SetEntry("sentiment_analyzer")
	return b.Compile(graph.Config{Name: "sentiment", StepLimit: 4})
}

func analyzeSentiment(_ context.Context, st schema.State) (schema.State, error) {
	feedback := strings.ToLower(st.GetString(FieldFeedback))

	positive := countMatches(feedback, positiveWords)
	negative := countMatches(feedback, negativeWords)

	if positive+negative == 0 {
		return schema.State{FieldSentiment: "neutral", FieldConfidence: 0.5}, nil
	}
	if positive > negative {
		return schema.State{
			FieldSentiment:  "positive",
			FieldConfidence: confidence(positive - negative),
		}, nil
	}
	if negative > positive {
		return schema.State{
			FieldSentiment:  "negative",
			FieldConfidence: confidence(negative - positive),
		}, nil
	}
	return schema.State{FieldSentiment: "neutral", FieldConfidence: 0.5}, nil
}

func countMatches(text string, words []string) int {
	n := 0
	for _, w := range words {
		if strings.Contains(text, w) {
			n++
		}
	}
	return n
}

func confidence(margin int) float64 {
	c := 0.5 + float64(margin)*0.1
	if c > 0.99 {
		c = 0.99
	}
	return c
}

func generateResponse(_ context.Context, st schema.State) (schema.State, error) {
	conf, _ := st[FieldConfidence].(float64)
	feedback := st.GetString(FieldFeedback)

	var reply string
	switch st.GetString(FieldSentiment) {
	case "positive":
		reply = fmt.Sprintf("POSITIVE FEEDBACK (Confidence: %.0f%%)\nThank you for your positive feedback! We are delighted you enjoyed our service.\nOriginal: %q", conf*100, feedback)
	case "negative":
		reply = fmt.Sprintf("NEGATIVE FEEDBACK (Confidence: %.0f%%)\nWe sincerely apologize for your experience. Our support team will contact you within 24 hours.\nOriginal: %q", conf*100, feedback)
	default:
		reply = fmt.Sprintf("NEUTRAL FEEDBACK (Confidence: %.0f%%)\nThank you for your feedback. We appreciate all customer input.\nOriginal: %q", conf*100, feedback)
	}
	return schema.State{FieldResponse: reply}, nil
}
