package services

import (
	"context"
	"encoding/json"
	"lifeline/models"
	"lifeline/utils"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"
)

const symptomSystemPrompt = `You are the triage assistant of an emergency response app.
Reply with a single JSON object and nothing else:
{"type": "symptom" | "hospital" | "first_aid", "summary": "<two or three sentences>",
 "severity": "Low" | "Medium" | "High" | "Critical", "advice": ["<short step>", ...],
 "emergency": <true if the person needs help right now>}
If the user is asking for immediate help, reply with the single word HELP.
You do not diagnose. Always recommend professional care for anything serious.`

// Symptom result types besides the ones the assistant returns.
const (
	SymptomTypeEmergency = "emergency"
	SymptomTypeNavigate  = "navigate"
	SymptomTypeText      = "text"
)

// SymptomService asks an OpenAI-compatible model for a first triage read.
type SymptomService struct {
	client *openai.Client
	model  string
}

func NewSymptomService(apiKey, baseURL, model string) *SymptomService {
	if apiKey == "" {
		logrus.Warn("LLM API key not configured, symptom checker disabled")
		return &SymptomService{model: model}
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &SymptomService{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}
}

func (ss *SymptomService) Enabled() bool {
	return ss.client != nil
}

func (ss *SymptomService) Check(ctx context.Context, req models.SymptomCheckRequest) (*models.SymptomCheckResult, error) {
	if !ss.Enabled() {
		return nil, utils.NewNotConfiguredError("Symptom checker")
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return nil, utils.NewValidationError("prompt is required")
	}

	resp, err := ss.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: ss.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: symptomSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: 0.2,
	})
	if err != nil {
		logrus.Errorf("Symptom check failed: %v", err)
		return nil, utils.NewUpstreamError("LLM", err)
	}
	if len(resp.Choices) == 0 {
		return nil, utils.NewUpstreamError("LLM", nil)
	}

	return ParseAssistantReply(resp.Choices[0].Message.Content), nil
}

// ParseAssistantReply reads the model output. A JSON object anywhere in the
// reply wins; otherwise HELP means an SOS and "open <page>" a navigation.
func ParseAssistantReply(reply string) *models.SymptomCheckResult {
	result := &models.SymptomCheckResult{Raw: reply}

	first, last := strings.Index(reply, "{"), strings.LastIndex(reply, "}")
	if first > -1 && last > first {
		var parsed models.SymptomCheckResult
		if err := json.Unmarshal([]byte(reply[first:last+1]), &parsed); err == nil {
			parsed.Raw = reply
			if parsed.Type == "" {
				parsed.Type = SymptomTypeText
			}
			return &parsed
		}
	}

	trimmed := strings.TrimSpace(reply)
	switch {
	case strings.Contains(trimmed, "HELP"):
		result.Type = SymptomTypeEmergency
		result.Emergency = true
		result.Summary = "Raising an SOS. Your emergency contacts will be alerted."
	case strings.HasPrefix(strings.ToLower(trimmed), "open "):
		result.Type = SymptomTypeNavigate
		result.Summary = strings.ToLower(strings.Join(strings.Fields(trimmed[5:]), ""))
	default:
		result.Type = SymptomTypeText
		result.Summary = trimmed
	}
	return result
}
