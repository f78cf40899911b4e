package tutor

import "github.com/aischool/aischool/internal/llm"

// RecommendationSchema defines the JSON schema for a learning recommendation.
var RecommendationSchema = &llm.Schema{
	Name:        "learning-recommendation",
	Description: "One concise, actionable learning recommendation for a student",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"recommendation": map[string]any{
				"type":        "string",
				"description": "A short, encouraging sentence suggesting what to learn or practice next",
			},
		},
		"required":             []any{"recommendation"},
		"additionalProperties": false,
	},
}
