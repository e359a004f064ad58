// Package pipeline owns the session state and sequences extraction,
// simplification and question answering.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spherical/legal-simplifier/internal/domain"
	"github.com/spherical/legal-simplifier/internal/observability"
	"github.com/spherical/legal-simplifier/internal/prompt"
	"github.com/spherical/legal-simplifier/internal/response"
	"golang.org/x/sync/semaphore"
)

// Session error messages.
const (
	MsgNoDocument     = "Please upload or paste a document first."
	MsgNoQuestion     = "Please simplify a document and ask a question."
	MsgLoadFailed     = "Failed to load PDF. Please try a different file."
	msgSimplifyFailed = "Error simplifying document: "
	msgAnswerFailed   = "Error generating answer: "
)

// Controller is the session state machine. Operations never return pipeline
// failures; they are recorded in the state. The only error returned is
// domain.ErrBusy when an operation of the same kind is already running.
type Controller struct {
	extractor domain.TextExtractor
	generator domain.Generator
	logger    *observability.Logger

	mu    sync.RWMutex
	state domain.PipelineState

	simplifySem *semaphore.Weighted
	answerSem   *semaphore.Weighted
}

// NewController creates a controller with an empty session.
func NewController(extractor domain.TextExtractor, generator domain.Generator, logger *observability.Logger) *Controller {
	if logger == nil {
		logger = observability.Nop()
	}
	return &Controller{
		extractor:   extractor,
		generator:   generator,
		logger:      logger.WithComponent("pipeline"),
		state:       domain.NewPipelineState(),
		simplifySem: semaphore.NewWeighted(1),
		answerSem:   semaphore.NewWeighted(1),
	}
}

// State returns a copy of the current session state.
func (c *Controller) State() domain.PipelineState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state.Clone()
}

// SetDocumentText replaces the document. No other state changes.
func (c *Controller) SetDocumentText(text string) {
	c.mu.Lock()
	c.state.Document = text
	c.mu.Unlock()
}

// SetQuestion replaces the draft question.
func (c *Controller) SetQuestion(question string) {
	c.mu.Lock()
	c.state.Question = question
	c.mu.Unlock()
}

// LoadFromFile extracts text from a PDF payload and installs it as the document.
// On failure the document is left unchanged and the session error is set.
func (c *Controller) LoadFromFile(ctx context.Context, data []byte) {
	ctx = context.WithoutCancel(ctx)
	log := c.attemptLogger("load")
	start := time.Now()

	text, err := c.extractor.Extract(ctx, data)
	if err != nil {
		log.Warn().Err(err).Int("bytes", len(data)).Msg("Document load failed")
		c.setError(MsgLoadFailed)
		return
	}

	c.mu.Lock()
	c.state.Document = text
	c.state.Error = ""
	c.mu.Unlock()

	log.Info().Int("bytes", len(data)).Int("chars", len(text)).Dur("elapsed", time.Since(start)).Msg("Document loaded")
}

// Simplify rewrites the current document in plain language and extracts key terms.
func (c *Controller) Simplify(ctx context.Context) error {
	if !c.simplifySem.TryAcquire(1) {
		return domain.ErrBusy
	}
	defer c.simplifySem.Release(1)

	ctx = context.WithoutCancel(ctx)
	log := c.attemptLogger("simplify")

	c.mu.Lock()
	document := c.state.Document
	if strings.TrimSpace(document) == "" {
		c.mu.Unlock()
		c.reject(log, domain.PreconditionError(MsgNoDocument, nil))
		return nil
	}
	c.state.Error = ""
	if c.state.Simplification != nil {
		c.state.Simplification.Highlights = []string{}
	}
	c.state.Simplifying = true
	c.state.SimplifyPhase = domain.PhaseRunning
	c.mu.Unlock()

	start := time.Now()
	log.Info().Int("document_chars", len(document)).Msg("Simplification started")

	result, err := c.simplify(ctx, document)

	c.mu.Lock()
	c.state.Simplification = &result
	c.state.Simplifying = false
	if err != nil {
		c.state.Error = msgSimplifyFailed + domain.UserMessage(err)
		c.state.SimplifyPhase = domain.PhaseFailed
	} else {
		c.state.SimplifyPhase = domain.PhaseSucceeded
	}
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Simplification failed")
	} else {
		log.Info().
			Int("simplified_chars", len(result.SimplifiedText)).
			Int("highlights", len(result.Highlights)).
			Dur("elapsed", time.Since(start)).
			Msg("Simplification complete")
	}
	return nil
}

// simplify always returns a usable result; err explains any degradation.
func (c *Controller) simplify(ctx context.Context, document string) (domain.SimplificationResult, error) {
	raw, err := c.generator.Generate(ctx, prompt.BuildSimplifyPrompt(document))
	switch {
	case errors.Is(err, domain.ErrNoContent):
		return response.FailedSimplification(response.SimplifyNoContentText), err
	case err != nil:
		return response.FailedSimplification(response.SimplifyErrorText), err
	}
	return response.ParseSimplification(raw)
}

// AskQuestion answers question against the current simplified text. The
// question also becomes the draft question.
func (c *Controller) AskQuestion(ctx context.Context, question string) error {
	if !c.answerSem.TryAcquire(1) {
		return domain.ErrBusy
	}
	defer c.answerSem.Release(1)

	ctx = context.WithoutCancel(ctx)
	log := c.attemptLogger("ask")

	c.mu.Lock()
	c.state.Question = question
	if strings.TrimSpace(question) == "" || !c.state.HasSimplifiedText() {
		c.mu.Unlock()
		c.reject(log, domain.PreconditionError(MsgNoQuestion, nil))
		return nil
	}
	simplified := c.state.Simplification.SimplifiedText
	c.state.Error = ""
	c.state.Exchange = nil
	c.state.Answering = true
	c.state.AnswerPhase = domain.PhaseRunning
	c.mu.Unlock()

	start := time.Now()
	log.Info().Int("question_chars", len(question)).Msg("Answer started")

	answer := response.NoAnswerText
	raw, err := c.generator.Generate(ctx, prompt.BuildAnswerPrompt(simplified, question))
	switch {
	case errors.Is(err, domain.ErrNoContent):
		err = nil
	case err != nil:
		answer = response.AnswerErrorText
	default:
		answer = response.ParseAnswer(raw)
	}

	c.mu.Lock()
	c.state.Exchange = &domain.QAExchange{Question: question, Answer: answer}
	c.state.Answering = false
	if err != nil {
		c.state.Error = msgAnswerFailed + domain.UserMessage(err)
		c.state.AnswerPhase = domain.PhaseFailed
	} else {
		c.state.AnswerPhase = domain.PhaseSucceeded
	}
	c.mu.Unlock()

	if err != nil {
		log.Warn().Err(err).Dur("elapsed", time.Since(start)).Msg("Answer failed")
	} else {
		log.Info().Int("answer_chars", len(answer)).Dur("elapsed", time.Since(start)).Msg("Answer complete")
	}
	return nil
}

// reject records a precondition failure. No generation call is made.
func (c *Controller) reject(log *observability.Logger, err error) {
	c.setError(domain.UserMessage(err))
	log.Info().Err(err).Msg("Operation rejected")
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	c.state.Error = msg
	c.mu.Unlock()
}

func (c *Controller) attemptLogger(op string) *observability.Logger {
	return c.logger.With().Str("attempt_id", uuid.NewString()).Logger().WithOperation(op)
}
