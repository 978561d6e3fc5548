package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capstone-recommender/backend/internal/domain"
	"github.com/capstone-recommender/backend/internal/metrics"
	"github.com/capstone-recommender/backend/internal/retrieval"
	"github.com/capstone-recommender/backend/pkg/logger"
)

// Fixed user-facing messages for generation failures. They name the failure
// kind and nothing else; raw backend errors stay in the internal log.
const (
	apologyTimeout     = "Sorry, I couldn't generate an answer because the language model timed out. Please try again in a moment."
	apologyUnavailable = "Sorry, I couldn't generate an answer because the language model is unavailable right now. Please try again in a moment."
)

// stage names for the turn pipeline. A turn walks them in order; best-effort
// stages degrade on failure, generation is the only stage that fails the
// turn, and a persistence failure after generation is logged only.
const (
	stageReceived   = "received"
	stageEmbedding  = "embedding"
	stageRetrieving = "retrieving"
	stageAssembling = "assembling"
	stageGenerating = "generating"
	stagePersisting = "persisting"
	stageCompleted  = "completed"
	stageFailed     = "failed"
)

// Config collects the turn-pipeline knobs. It is passed explicitly into New;
// the agent keeps no process-wide mutable settings.
type Config struct {
	HistoryLimit  int
	ContextBudget int
}

// Agent drives one conversational turn: embed, retrieve, assemble, generate,
// persist. One turn is strictly sequential; turns for different chats may run
// concurrently against the shared index and store. Turns for the same chat
// are not serialized here; callers needing strict per-chat ordering keep one
// turn in flight per chat.
type Agent struct {
	retriever    *retrieval.Retriever
	assembler    *Assembler
	generator    domain.Generator
	store        domain.ChatStore
	formatter    RecommendationFormatter
	historyLimit int
}

// TurnResult is what a turn hands back to the API layer. Answer is always
// non-empty: stage failures become a degraded answer, never an error.
type TurnResult struct {
	ChatID        string
	Answer        string
	EvidenceCount int
	Degraded      bool
	FailureStage  string
	LatencyMS     int
}

func New(retriever *retrieval.Retriever, generator domain.Generator, store domain.ChatStore, cfg Config) *Agent {
	historyLimit := cfg.HistoryLimit
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Agent{
		retriever:    retriever,
		assembler:    NewAssembler(cfg.ContextBudget),
		generator:    generator,
		store:        store,
		historyLimit: historyLimit,
	}
}

// HandleTurn answers one free-text query in the given chat. The only error
// it returns is input validation; everything after that is absorbed into the
// result. Replaying the same query appends new turns and may produce a
// different answer.
func (a *Agent) HandleTurn(ctx context.Context, query, chatID string) (*TurnResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if chatID == "" {
		chatID = uuid.NewString()
	}
	return a.runTurn(ctx, chatID, query, query, "chat")
}

// HandleRecommendation answers a structured recommendation request. The
// request is reduced to a retrieval query and an instruction template; the
// rendered instruction is also what gets persisted as the user turn.
func (a *Agent) HandleRecommendation(ctx context.Context, req domain.RecommendationRequest, chatID string) (*TurnResult, error) {
	req = req.Normalize()
	if req.Interests == "" {
		return nil, errors.New("interests must not be empty")
	}
	if chatID == "" {
		chatID = uuid.NewString()
	}
	return a.runTurn(ctx, chatID, a.formatter.Query(req), a.formatter.Instruction(req), "recommendation")
}

func (a *Agent) runTurn(ctx context.Context, chatID, retrievalQuery, userContent, turnType string) (*TurnResult, error) {
	start := time.Now()
	log := logger.Log.With(
		zap.String("turn_id", uuid.NewString()),
		zap.String("chat_id", chatID),
		zap.String("turn_type", turnType),
	)
	log.Info("turn started", zap.String("stage", stageReceived))

	// History is best-effort: a store outage must not block the answer.
	history, err := a.store.Recent(ctx, chatID, a.historyLimit)
	if err != nil {
		log.Warn("history read failed, continuing without history", zap.Error(err))
		metrics.StageDegraded.WithLabelValues("history").Inc()
		history = nil
	}

	// Embedding and retrieval are best-effort too: on failure the turn
	// degrades to generation without project context instead of aborting.
	degraded := false
	failureStage := ""
	evidence, err := a.retriever.Retrieve(ctx, retrievalQuery)
	if err != nil {
		degraded = true
		failureStage = retrievalFailureStage(err)
		log.Warn("retrieval degraded to no context",
			zap.String("stage", failureStage),
			zap.Error(err),
		)
		metrics.StageDegraded.WithLabelValues(failureStage).Inc()
		evidence = nil
	}
	metrics.EvidenceRetrieved.Observe(float64(len(evidence)))

	log.Debug("assembling prompt",
		zap.String("stage", stageAssembling),
		zap.Int("history_turns", len(history)),
		zap.Int("evidence_items", len(evidence)),
	)
	prompt := a.assembler.Build(history, evidence, userContent)

	log.Debug("generating answer", zap.String("stage", stageGenerating))
	answer, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		// Generation is the one mandatory stage. Nothing is persisted so the
		// log keeps no dangling user turn without a reply.
		log.Error("generation failed, turn aborted",
			zap.String("stage", stageFailed),
			zap.Error(err),
		)
		metrics.TurnTotal.WithLabelValues(turnType, stageFailed).Inc()
		metrics.TurnDuration.WithLabelValues(turnType).Observe(time.Since(start).Seconds())

		return &TurnResult{
			ChatID:       chatID,
			Answer:       apologyFor(err),
			Degraded:     true,
			FailureStage: stageGenerating,
			LatencyMS:    int(time.Since(start).Milliseconds()),
		}, nil
	}

	// The user already has their answer; a store outage here is logged and
	// accepted rather than turned into a failed turn.
	if err := a.persistExchange(ctx, chatID, userContent, answer); err != nil {
		log.Warn("failed to persist exchange, returning answer anyway",
			zap.String("stage", stagePersisting),
			zap.Error(err),
		)
		metrics.PersistFailures.Inc()
	}

	status := stageCompleted
	if degraded {
		status = "degraded"
	}
	metrics.TurnTotal.WithLabelValues(turnType, status).Inc()
	metrics.TurnDuration.WithLabelValues(turnType).Observe(time.Since(start).Seconds())

	latency := int(time.Since(start).Milliseconds())
	log.Info("turn completed",
		zap.String("stage", stageCompleted),
		zap.Bool("degraded", degraded),
		zap.Int("evidence_items", len(evidence)),
		zap.Int("latency_ms", latency),
	)

	return &TurnResult{
		ChatID:        chatID,
		Answer:        answer,
		EvidenceCount: len(evidence),
		Degraded:      degraded,
		FailureStage:  failureStage,
		LatencyMS:     latency,
	}, nil
}

func (a *Agent) persistExchange(ctx context.Context, chatID, userContent, answer string) error {
	if err := a.store.Append(ctx, chatID, domain.RoleUser, userContent); err != nil {
		return err
	}
	return a.store.Append(ctx, chatID, domain.RoleAssistant, answer)
}

func retrievalFailureStage(err error) string {
	if errors.Is(err, domain.ErrEmbeddingUnavailable) || errors.Is(err, domain.ErrDimensionMismatch) {
		return stageEmbedding
	}
	return stageRetrieving
}

func apologyFor(err error) string {
	if errors.Is(err, domain.ErrGenerationTimeout) {
		return apologyTimeout
	}
	return apologyUnavailable
}
