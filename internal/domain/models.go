package domain

import "strings"

// Phase is the position of one pipeline operation in its state machine.
type Phase string

const (
	PhaseIdle      Phase = "idle"
	PhaseRunning   Phase = "running"
	PhaseSucceeded Phase = "succeeded"
	PhaseFailed    Phase = "failed"
)

// SimplificationResult is the plain-language rewrite and the key terms found in the document.
type SimplificationResult struct {
	SimplifiedText string   `json:"simplifiedText"`
	Highlights     []string `json:"highlights"` // model order, duplicates kept
}

// QAExchange is the single retained question and its answer
type QAExchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// PipelineState is the session state rendered by the presentation layer.
// Values handed out by the controller are copies.
type PipelineState struct {
	Document       string                `json:"document"`
	Question       string                `json:"question"`
	Simplification *SimplificationResult `json:"simplification,omitempty"`
	Exchange       *QAExchange           `json:"exchange,omitempty"`
	Simplifying    bool                  `json:"simplifying"`
	Answering      bool                  `json:"answering"`
	SimplifyPhase  Phase                 `json:"simplifyPhase"`
	AnswerPhase    Phase                 `json:"answerPhase"`
	Error          string                `json:"error,omitempty"`
}

// NewPipelineState returns the empty state of a fresh session.
func NewPipelineState() PipelineState {
	return PipelineState{
		SimplifyPhase: PhaseIdle,
		AnswerPhase:   PhaseIdle,
	}
}

// Clone returns a deep copy so callers cannot reach the controller's fields.
func (s PipelineState) Clone() PipelineState {
	out := s
	if s.Simplification != nil {
		res := *s.Simplification
		res.Highlights = append([]string{}, s.Simplification.Highlights...)
		out.Simplification = &res
	}
	if s.Exchange != nil {
		ex := *s.Exchange
		out.Exchange = &ex
	}
	return out
}

// HasSimplifiedText reports whether a completed simplification left usable text.
func (s PipelineState) HasSimplifiedText() bool {
	return s.Simplification != nil && s.Simplification.SimplifiedText != ""
}

// Content is one turn of a generation request.
type Content struct {
	Role  string `json:"role,omitempty"`
	Parts []Part `json:"parts"`
}

// Part is a text fragment of a Content turn.
type Part struct {
	Text string `json:"text"`
}

// GenerationConfig carries optional output constraints.
type GenerationConfig struct {
	ResponseMIMEType string `json:"responseMimeType,omitempty"`
}

// GenerationRequest is the payload sent to the text-generation service.
type GenerationRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// Prompt returns the concatenated text of all parts.
func (r *GenerationRequest) Prompt() string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	for _, c := range r.Contents {
		for _, p := range c.Parts {
			sb.WriteString(p.Text)
		}
	}
	return sb.String()
}

// WantsJSON reports whether the request asks for a JSON-constrained response.
func (r *GenerationRequest) WantsJSON() bool {
	return r != nil && r.GenerationConfig != nil && r.GenerationConfig.ResponseMIMEType == "application/json"
}
