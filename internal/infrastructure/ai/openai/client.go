// Package openai provides the OpenAI chat-completions backed plan generator and
// substitution suggester. With no API key configured it talks to a local Ollama
// instance instead, so development works offline.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/planforge/v1/internal/domain/plan"
	"github.com/planforge/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// Config holds the client settings, mapped from the application config.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Client implements the plan generation and AI suggestion ports against a
// chat-completions API.
type Client struct {
	apiKey      string
	baseURL     string
	model       string
	temperature float64
	client      *http.Client
	logger      *zap.Logger
}

// NewClient creates a new chat-completions client.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	apiKey := cfg.APIKey
	baseURL := cfg.BaseURL
	model := cfg.Model

	if apiKey == "" {
		logger.Info("OpenAI API key not found, using local Ollama for AI features")
		baseURL = "http://localhost:11434/v1"
		apiKey = "ollama"
		model = "llama3.2:3b"
	} else if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if model == "" {
		model = "gpt-4o-mini"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		apiKey:      apiKey,
		baseURL:     baseURL,
		model:       model,
		temperature: cfg.Temperature,
		client:      &http.Client{Timeout: timeout},
		logger:      logger.Named("openai"),
	}
}

// OpenAI API structures
type chatCompletionRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []choice `json:"choices"`
	Usage   usage    `json:"usage"`
}

type choice struct {
	Message      message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Wire shapes the model is asked to produce.
type draftPlanPayload struct {
	Meals []mealPayload `json:"meals"`
	// Some models answer with "exercises" despite the requested key.
	Workouts  []workoutPayload `json:"workouts"`
	Exercises []workoutPayload `json:"exercises"`
}

type mealPayload struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

type workoutPayload struct {
	Name              string `json:"name"`
	Duration          string `json:"duration"`
	EstimatedCalories int    `json:"estimated_calories"`
}

type replacementPayload struct {
	Name              string  `json:"name"`
	Reason            string  `json:"reason"`
	Calories          int     `json:"calories"`
	Protein           float64 `json:"protein"`
	Carbs             float64 `json:"carbs"`
	Fat               float64 `json:"fat"`
	Duration          string  `json:"duration"`
	EstimatedCalories int     `json:"estimated_calories"`
}

// GenerateDraftPlan asks the model for a one-day plan biased toward the
// catalog. The returned draft is normalized (deduplicated, defaults filled) but
// NOT safety-checked.
func (c *Client) GenerateDraftPlan(ctx context.Context, req outbound.DraftPlanRequest) (*plan.DraftPlan, error) {
	response, err := c.callChatCompletions(ctx, c.buildPlanPrompt(req), 1.0)
	if err != nil {
		return nil, err
	}

	payload := draftPlanPayload{}
	if err := parseModelJSON(response, &payload); err != nil {
		c.logger.Error("Failed to parse draft plan response",
			zap.Error(err),
			zap.String("response", response),
		)
		return nil, fmt.Errorf("failed to parse draft plan: %w", err)
	}

	workouts := payload.Workouts
	if len(workouts) == 0 {
		workouts = payload.Exercises
	}

	draft := &plan.DraftPlan{Goal: req.Goal}
	draft.Meals = dedupMeals(payload.Meals)
	draft.Exercises = dedupWorkouts(workouts)

	c.logger.Info("Draft plan generated",
		zap.Int("meals", len(draft.Meals)),
		zap.Int("exercises", len(draft.Exercises)),
		zap.Int("raw_meals", len(payload.Meals)),
		zap.Int("raw_workouts", len(workouts)),
	)

	return draft, nil
}

// SuggestReplacement asks the model for one safe alternative to an unsafe item.
func (c *Client) SuggestReplacement(ctx context.Context, item plan.ConsumableItem, hazard string, goal string) (*outbound.AISuggestion, error) {
	var prompt string
	if item.Kind == plan.KindMeal {
		prompt = c.buildMealReplacementPrompt(item.Name, hazard, goal)
	} else {
		prompt = c.buildExerciseReplacementPrompt(item.Name, hazard, goal)
	}

	response, err := c.callChatCompletions(ctx, prompt, 0.5)
	if err != nil {
		return nil, err
	}

	payload := replacementPayload{}
	if err := parseModelJSON(response, &payload); err != nil {
		return nil, fmt.Errorf("failed to parse replacement suggestion: %w", err)
	}
	if strings.TrimSpace(payload.Name) == "" {
		return nil, nil
	}

	suggestion := &outbound.AISuggestion{
		Item: plan.ConsumableItem{
			Name: payload.Name,
			Kind: item.Kind,
		},
		Reason: strings.TrimSpace(payload.Reason),
	}
	if item.Kind == plan.KindMeal {
		suggestion.Item.Meal = &plan.MealFacts{
			Calories: payload.Calories,
			Protein:  payload.Protein,
			Carbs:    payload.Carbs,
			Fat:      payload.Fat,
		}
	} else {
		duration := payload.Duration
		if duration == "" {
			duration = "3 sets of 10"
		}
		calories := payload.EstimatedCalories
		if calories == 0 {
			calories = 150
		}
		suggestion.Item.Exercise = &plan.ExerciseFacts{
			Duration:          duration,
			EstimatedCalories: calories,
		}
	}

	return suggestion, nil
}

// ValidateExerciseSafety asks the model for a one-word safety verdict.
func (c *Client) ValidateExerciseSafety(ctx context.Context, exerciseName string, injuries []plan.Injury, goal string) (bool, error) {
	prompt := fmt.Sprintf(`You are a certified physical therapist AI.

The user has the following injuries: %s.%s
Determine if the exercise %q is safe to perform.

Respond ONLY with one word: "safe" or "unsafe".`,
		describeInjuries(injuries), goalSentence(goal), exerciseName)

	response, err := c.callChatCompletions(ctx, prompt, 0)
	if err != nil {
		return false, err
	}

	answer := strings.ToLower(strings.TrimSpace(response))
	c.logger.Debug("Exercise safety verdict",
		zap.String("exercise", exerciseName),
		zap.String("answer", answer),
	)
	return strings.HasPrefix(answer, "safe"), nil
}

func (c *Client) buildPlanPrompt(req outbound.DraftPlanRequest) string {
	allergyText := "none"
	if len(req.Allergies) > 0 {
		allergyText = strings.Join(req.Allergies, ", ")
	}
	injuryText := describeInjuries(req.Injuries)

	var b strings.Builder
	b.WriteString("You are an AI fitness and nutrition assistant.\n\n")
	b.WriteString("Respond ONLY with valid JSON. No Markdown, no code fences, no explanations.\n\n")
	fmt.Fprintf(&b, "Create a one-day workout and diet plan for a user whose goal is: %q.\n\n", req.Goal)
	fmt.Fprintf(&b, "- User allergies: %s.\n", allergyText)
	fmt.Fprintf(&b, "- User injuries and severities: %s.\n\n", injuryText)
	if len(req.AvailableFoods) > 0 {
		fmt.Fprintf(&b, "Try to primarily use foods from this list: %s\n", strings.Join(req.AvailableFoods, ", "))
	}
	if len(req.AvailableExercises) > 0 {
		fmt.Fprintf(&b, "Try to primarily use exercises from this list: %s\n", strings.Join(req.AvailableExercises, ", "))
	}
	b.WriteString(`
Requirements:
- Generate EXACTLY 4-6 meals and EXACTLY 4-6 workouts.
- NO TWO MEALS and NO TWO WORKOUTS may share a name.
- Mix workout types: at least 1 cardio, at least 1 strength, at least 1 core/flexibility.
- Avoid foods conflicting with the allergies and exercises unsafe for the injuries.
- Each meal includes: name, calories (integer), protein, carbs, fat (grams).
- Each workout includes: name, duration (string), estimated_calories (integer).

Return JSON with this exact structure:
{
  "meals": [
    { "name": "Scrambled Eggs with Spinach", "calories": 250, "protein": 18, "carbs": 5, "fat": 15 }
  ],
  "workouts": [
    { "name": "Stationary Bike", "duration": "20 minutes", "estimated_calories": 200 }
  ]
}

Return ONLY the JSON.`)
	return b.String()
}

func (c *Client) buildMealReplacementPrompt(name, allergen, goal string) string {
	return fmt.Sprintf(`You are a nutrition assistant.

The user is allergic to %q. The meal %q is not safe.
Suggest a single safe replacement meal that:
- avoids the allergen
- is realistic for a normal person
- supports the user's goal.%s

Return ONLY a JSON object like:
{
  "name": "Safe Meal Name",
  "reason": "one short sentence on why this swap works",
  "calories": 400,
  "protein": 25,
  "carbs": 30,
  "fat": 10
}

Include realistic nutritional values (protein, carbs, fat in grams).`,
		allergen, name, goalSentence(goal))
}

func (c *Client) buildExerciseReplacementPrompt(name, injury, goal string) string {
	return fmt.Sprintf(`You are a physical therapist and strength coach.

The user has this injury: %s.
The exercise %q is not safe.

Suggest ONE alternative exercise that:
- is safe for this injury
- still helps the user work toward their goal.%s

Return ONLY a JSON object like:
{
  "name": "Safe Exercise",
  "reason": "one short sentence on why this swap works",
  "duration": "3 sets of 12",
  "estimated_calories": 150
}

Include estimated calories burned.`,
		injury, name, goalSentence(goal))
}

// callChatCompletions makes the actual API call.
func (c *Client) callChatCompletions(ctx context.Context, prompt string, temperature float64) (string, error) {
	if c.temperature > 0 {
		temperature = c.temperature
	}

	reqBody := chatCompletionRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: temperature,
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(body))
	}

	var chatResp chatCompletionResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("no response choices returned")
	}

	c.logger.Debug("Chat completion succeeded",
		zap.Int("prompt_tokens", chatResp.Usage.PromptTokens),
		zap.Int("completion_tokens", chatResp.Usage.CompletionTokens),
	)

	return chatResp.Choices[0].Message.Content, nil
}

// parseModelJSON extracts the JSON object from a model answer that may carry
// code fences or prose around it.
func parseModelJSON(response string, out interface{}) error {
	response = strings.TrimSpace(response)

	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		return fmt.Errorf("no valid JSON found in response")
	}

	return json.Unmarshal([]byte(response[start:end+1]), out)
}

// dedupMeals drops repeated meal names (case-insensitive, first occurrence
// wins) and fills missing macros with zeroes.
func dedupMeals(meals []mealPayload) []plan.ConsumableItem {
	seen := map[string]bool{}
	out := make([]plan.ConsumableItem, 0, len(meals))
	for _, m := range meals {
		key := plan.NormalizeName(m.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, plan.ConsumableItem{
			Name: m.Name,
			Kind: plan.KindMeal,
			Meal: &plan.MealFacts{
				Calories: m.Calories,
				Protein:  m.Protein,
				Carbs:    m.Carbs,
				Fat:      m.Fat,
			},
		})
	}
	return out
}

// dedupWorkouts mirrors dedupMeals and fills missing duration and calories
// with sane defaults.
func dedupWorkouts(workouts []workoutPayload) []plan.ConsumableItem {
	seen := map[string]bool{}
	out := make([]plan.ConsumableItem, 0, len(workouts))
	for _, w := range workouts {
		key := plan.NormalizeName(w.Name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true

		duration := w.Duration
		if duration == "" {
			duration = "30 minutes"
		}
		calories := w.EstimatedCalories
		if calories == 0 {
			calories = 200
		}
		out = append(out, plan.ConsumableItem{
			Name: w.Name,
			Kind: plan.KindExercise,
			Exercise: &plan.ExerciseFacts{
				Duration:          duration,
				EstimatedCalories: calories,
			},
		})
	}
	return out
}

func describeInjuries(injuries []plan.Injury) string {
	if len(injuries) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(injuries))
	for _, inj := range injuries {
		severity := inj.Severity
		if severity == "" {
			severity = plan.SeverityModerate
		}
		parts = append(parts, fmt.Sprintf("%s (%s)", inj.Name, severity))
	}
	return strings.Join(parts, ", ")
}

func goalSentence(goal string) string {
	if goal == "" {
		return ""
	}
	return fmt.Sprintf(" The user's overall goal is %q.", goal)
}
