package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	aiDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "apsas",
		Subsystem: "ai",
		Name:      "evaluation_duration_seconds",
		Help:      "Duration of AI grading requests",
	}, []string{"model"})

	aiFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "apsas",
		Subsystem: "ai",
		Name:      "evaluation_failures_total",
		Help:      "Number of AI grading failures",
	}, []string{"model"})
)

// OpenAIConfig defines configuration options for the OpenAI evaluator.
type OpenAIConfig struct {
	APIKey      string
	Model       string
	MaxTokens   int
	Temperature float32
	Logger      zerolog.Logger
}

// OpenAIEvaluator implements Evaluator against the OpenAI chat completion API.
type OpenAIEvaluator struct {
	client *openai.Client
	cfg    OpenAIConfig
	tracer trace.Tracer
	logger zerolog.Logger
}

// NewOpenAIEvaluator builds a new evaluator using the provided configuration.
func NewOpenAIEvaluator(cfg OpenAIConfig) (*OpenAIEvaluator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}

	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}

	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	tracer := otel.Tracer("github.com/apsas-edu/apsas-api/pkg/ai/openai")
	logger := cfg.Logger
	if logger.GetLevel() == zerolog.Disabled {
		logger = zerolog.Nop()
	}

	config := openai.DefaultConfig(cfg.APIKey)
	client := openai.NewClientWithConfig(config)

	return &OpenAIEvaluator{
		client: client,
		cfg:    cfg,
		tracer: tracer,
		logger: logger,
	}, nil
}

// Evaluate sends the grading request to OpenAI and parses the response.
func (e *OpenAIEvaluator) Evaluate(parent context.Context, input EvaluationInput) (EvaluationResult, error) {
	ctx, span := e.tracer.Start(parent, "openai.evaluate", trace.WithAttributes(
		attribute.String("model", e.cfg.Model),
		attribute.Int("rubric_count", len(input.Rubrics)),
	))
	defer span.End()

	start := time.Now()
	request := openai.ChatCompletionRequest{
		Model:       e.cfg.Model,
		MaxTokens:   e.cfg.MaxTokens,
		Temperature: e.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: graderSystemPrompt(),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildGradingPrompt(input),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject},
	}

	resp, err := e.client.CreateChatCompletion(ctx, request)
	duration := time.Since(start)
	aiDuration.WithLabelValues(e.cfg.Model).Observe(duration.Seconds())
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, fmt.Errorf("openai evaluate: %w", err)
	}

	if len(resp.Choices) == 0 {
		err := fmt.Errorf("no choices returned from openai")
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	result, err := parseGradingResponse(content, input.Rubrics)
	if err != nil {
		aiFailures.WithLabelValues(e.cfg.Model).Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return EvaluationResult{}, err
	}

	result.Raw = map[string]interface{}{
		"usage": resp.Usage,
	}

	return result, nil
}

func graderSystemPrompt() string {
	return "You are an automated assessment grader. Score the submission against each rubric criterion. " +
		"Respond with a JSON object containing scores (array of {rubric_item_id, score, comments}) and feedback. " +
		"A criterion's score must not exceed its max score."
}

func buildGradingPrompt(input EvaluationInput) string {
	builder := strings.Builder{}
	builder.WriteString("# Assessment\n")
	builder.WriteString(input.TemplateName)
	if input.QuestionContext != "" {
		builder.WriteString("\n\n## Question\n")
		builder.WriteString(input.QuestionContext)
	}
	builder.WriteString("\n\n## Rubric\n")
	for _, rubric := range input.Rubrics {
		builder.WriteString(fmt.Sprintf("- [%d] %s (max %.2f)\n", rubric.ID, rubric.Description, rubric.MaxScore))
	}
	builder.WriteString("\n## Submission\n")
	builder.WriteString(input.SubmissionText)
	if input.AdditionalNotes != "" {
		builder.WriteString("\n\n## Notes\n")
		builder.WriteString(input.AdditionalNotes)
	}
	builder.WriteString("\nReturn JSON.")
	return builder.String()
}

func parseGradingResponse(content string, rubrics []RubricCriterion) (EvaluationResult, error) {
	type payload struct {
		Scores   []RubricScore `json:"scores"`
		Feedback string        `json:"feedback"`
	}

	var data payload
	if err := json.Unmarshal([]byte(content), &data); err != nil {
		return EvaluationResult{}, fmt.Errorf("parse grading json: %w", err)
	}

	maxByID := make(map[uint]float64, len(rubrics))
	for _, rubric := range rubrics {
		maxByID[rubric.ID] = rubric.MaxScore
	}

	scores := make([]RubricScore, 0, len(data.Scores))
	for _, score := range data.Scores {
		max, known := maxByID[score.RubricItemID]
		if !known {
			// The model invented a criterion; drop it.
			continue
		}
		if score.Score < 0 {
			score.Score = 0
		}
		if score.Score > max {
			score.Score = max
		}
		scores = append(scores, score)
	}

	return EvaluationResult{
		Scores:   scores,
		Feedback: data.Feedback,
	}, nil
}
