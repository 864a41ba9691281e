package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/forgefit/forge/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/codes"
)

const parserSystemPrompt = `You are a nutrition and fitness logging assistant. Parse user input about food, drinks, or activities into structured data.

For food/drink input, extract:
- description: Brief description of what was consumed
- calories: Estimated calories (integer)
- protein_g: Protein in grams
- carbs_g: Carbohydrates in grams
- fat_g: Fat in grams
- fiber_g: Fiber in grams (if applicable)
- water_oz: Water/liquid in ounces (if applicable)
- meal_type: One of: breakfast, lunch, dinner, snack

For quantities:
- "a" or "an" = 1
- "couple" = 2
- Standard serving sizes when not specified

Respond ONLY with valid JSON, no markdown or explanation. Example:
{"description": "apple", "calories": 95, "protein_g": 0.5, "carbs_g": 25, "fat_g": 0.3, "fiber_g": 4.4, "water_oz": null, "meal_type": "snack"}

For water/drinks without calories:
{"description": "water", "calories": 0, "protein_g": 0, "carbs_g": 0, "fat_g": 0, "fiber_g": 0, "water_oz": 24, "meal_type": null}

If you cannot parse the input or it's not food/fitness related, respond with:
{"error": "Could not parse input", "reason": "brief explanation"}`

// Parsed is the structured reading of one free-text intake message.
type Parsed struct {
	Description string   `json:"description"`
	Calories    *int     `json:"calories"`
	ProteinG    *float64 `json:"protein_g"`
	CarbsG      *float64 `json:"carbs_g"`
	FatG        *float64 `json:"fat_g"`
	FiberG      *float64 `json:"fiber_g"`
	WaterOz     *float64 `json:"water_oz"`
	MealType    *string  `json:"meal_type"`
}

// ParseError is the recoverable failure mode: the model understood the
// request but could not extract nutrition data from the text. Callers
// surface the reason to the user instead of failing the request.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse failure: %s", e.Reason)
}

type Parser struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewParser(baseURL, apiKey, model string, httpClient *http.Client) *Parser {
	return &Parser{
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
		httpClient: httpClient,
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	System    string    `json:"system"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Parse sends the free text through the model and returns the structured
// reading. A *ParseError means the text was not parseable as food/fitness
// input; any other error is an upstream failure.
func (p *Parser) Parse(ctx context.Context, text string) (_ *Parsed, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "nutritionParser.parse")
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "input parsed")
		}
	}()

	reqBytes, err := json.Marshal(messagesRequest{
		Model:     p.model,
		MaxTokens: 500,
		System:    parserSystemPrompt,
		Messages: []message{
			{Role: "user", Content: text},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("marshal messages request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost,
		p.baseURL+"/v1/messages",
		bytes.NewReader(reqBytes),
	)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", p.apiKey)
	req.Header.Set("Anthropic-Version", "2023-06-01")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http client do: %w", err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read messages response: %w", err)
	}

	var msgResp messagesResponse
	if err := json.Unmarshal(respBytes, &msgResp); err != nil {
		return nil, fmt.Errorf("unmarshal messages response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if msgResp.Error != nil {
			return nil, fmt.Errorf("messages api: %s: %s", msgResp.Error.Type, msgResp.Error.Message)
		}
		return nil, fmt.Errorf("messages api: unexpected status %d", resp.StatusCode)
	}
	if len(msgResp.Content) == 0 {
		return nil, fmt.Errorf("messages api: empty content")
	}

	return decodeParsed(msgResp.Content[0].Text)
}

// decodeParsed reads the model output, tolerating a markdown code fence
// around the JSON despite the prompt asking for none.
func decodeParsed(text string) (*Parsed, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		lines := strings.Split(text, "\n")
		if len(lines) >= 2 {
			text = strings.Join(lines[1:len(lines)-1], "\n")
		}
	}

	var failure struct {
		Error  string `json:"error"`
		Reason string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(text), &failure); err != nil {
		log.Tracef("parser returned non-json output: %s", text)
		return nil, &ParseError{Reason: "failed to parse response"}
	}
	if failure.Error != "" {
		reason := failure.Reason
		if reason == "" {
			reason = failure.Error
		}
		return nil, &ParseError{Reason: reason}
	}

	var parsed Parsed
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return nil, &ParseError{Reason: "failed to parse response"}
	}
	if parsed.Description == "" {
		return nil, &ParseError{Reason: "no description extracted"}
	}
	return &parsed, nil
}
