// Package prompt renders the instructions sent to the text-generation service.
package prompt

import (
	"fmt"

	"github.com/spherical/legal-simplifier/internal/domain"
)

const jsonMIMEType = "application/json"

// simplifyTemplate is the simplify-and-extract instruction. The wording is part of the
// contract with the model; edit it only as a deliberate behavior change.
const simplifyTemplate = `
Simplify the following legal document into plain, easy-to-understand language.
Extract key legal terms from the document such as "deadline", "obligation", "risk", "penalty", "termination" and any other relevant legal or financial terms.

Your response must be a single JSON object with two fields:
1. "simplifiedText": The simplified text as a string.
2. "highlights": An array of strings, where each string is a key term extracted from the original document.

Do not include any other text or formatting outside of the JSON object.

Legal Document:
%s
`

// answerTemplate is the grounded question-answering instruction.
const answerTemplate = `
You are a legal assistant. Answer the following question based on the provided text. Keep the answer concise and to the point.

Simplified Text:
%s

Question:
%s
`

// BuildSimplifyPrompt creates the simplify-and-extract request for documentText.
// The request asks for a JSON-constrained response.
func BuildSimplifyPrompt(documentText string) *domain.GenerationRequest {
	return &domain.GenerationRequest{
		Contents: []domain.Content{
			{Parts: []domain.Part{{Text: fmt.Sprintf(simplifyTemplate, documentText)}}},
		},
		GenerationConfig: &domain.GenerationConfig{
			ResponseMIMEType: jsonMIMEType,
		},
	}
}

// BuildAnswerPrompt creates the question-answering request grounded in simplifiedText.
func BuildAnswerPrompt(simplifiedText, question string) *domain.GenerationRequest {
	return &domain.GenerationRequest{
		Contents: []domain.Content{
			{Parts: []domain.Part{{Text: fmt.Sprintf(answerTemplate, simplifiedText, question)}}},
		},
	}
}
