package models

type SendMessageRequest struct {
	Message string `json:"message" validate:"max=1600"`
	To      string `json:"to,omitempty" validate:"omitempty,phone"`
}

type SendMessageResponse struct {
	Success   bool   `json:"success"`
	MessageID string `json:"messageId,omitempty"`
	Error     string `json:"error,omitempty"`
}

type SymptomCheckRequest struct {
	Prompt string `json:"prompt" validate:"required,max=4000"`
}

// SymptomCheckResult mirrors the JSON the assistant is asked to produce.
type SymptomCheckResult struct {
	Type      string   `json:"type"`
	Summary   string   `json:"summary"`
	Severity  string   `json:"severity,omitempty"`
	Advice    []string `json:"advice,omitempty"`
	Emergency bool     `json:"emergency"`
	Raw       string   `json:"raw,omitempty"`
}
