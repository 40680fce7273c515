package ai

import "context"

// RubricCriterion is one scoring criterion handed to the evaluator.
type RubricCriterion struct {
	ID          uint
	Description string
	MaxScore    float64
}

// EvaluationInput contains the artefacts needed to grade a submission
// against its rubric.
type EvaluationInput struct {
	TemplateName    string
	QuestionContext string
	SubmissionText  string
	Rubrics         []RubricCriterion
	AdditionalNotes string
}

// RubricScore is the evaluator's score for a single rubric criterion.
type RubricScore struct {
	RubricItemID uint    `json:"rubric_item_id"`
	Score        float64 `json:"score"`
	Comments     string  `json:"comments"`
}

// EvaluationResult is the structured feedback returned by the AI evaluator.
type EvaluationResult struct {
	Scores   []RubricScore          `json:"scores"`
	Feedback string                 `json:"feedback"`
	Raw      map[string]interface{} `json:"raw,omitempty"`
}

// Evaluator describes an AI model capable of grading a submission rubric by
// rubric.
type Evaluator interface {
	Evaluate(ctx context.Context, input EvaluationInput) (EvaluationResult, error)
}
