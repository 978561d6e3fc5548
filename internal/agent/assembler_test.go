package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capstone-recommender/backend/internal/domain"
)

func TestBuildContainsAllSections(t *testing.T) {
	a := NewAssembler(12000)

	history := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: "earlier question"},
		{Role: domain.RoleAssistant, Content: "earlier answer"},
	}
	evidence := []domain.EvidenceItem{
		{ID: "a", Text: "chunk one", Score: 0.8, Metadata: map[string]string{"title": "Smart Greenhouse"}},
	}

	prompt := a.Build(history, evidence, "current question")

	require.Contains(t, prompt, systemInstruction)
	require.Contains(t, prompt, "[Project 1]")
	require.Contains(t, prompt, "Title: Smart Greenhouse")
	require.Contains(t, prompt, "chunk one")
	require.Contains(t, prompt, "user: earlier question")
	require.Contains(t, prompt, "Student request:\ncurrent question")
}

func TestBuildEvidenceOrderedByScore(t *testing.T) {
	a := NewAssembler(12000)

	evidence := []domain.EvidenceItem{
		{ID: "low", Text: "low scored", Score: 0.2},
		{ID: "high", Text: "high scored", Score: 0.9},
		{ID: "mid", Text: "mid scored", Score: 0.5},
	}

	prompt := a.Build(nil, evidence, "q")

	high := strings.Index(prompt, "high scored")
	mid := strings.Index(prompt, "mid scored")
	low := strings.Index(prompt, "low scored")
	require.Less(t, high, mid)
	require.Less(t, mid, low)
}

func TestBuildNoEvidenceMarker(t *testing.T) {
	a := NewAssembler(12000)

	prompt := a.Build(nil, nil, "q")
	require.Contains(t, prompt, noEvidenceMarker)
}

func TestBuildRespectsBudget(t *testing.T) {
	budget := len(systemInstruction) + 600
	a := NewAssembler(budget)

	var history []domain.ChatTurn
	for i := 0; i < 30; i++ {
		history = append(history, domain.ChatTurn{
			Role:    domain.RoleUser,
			Content: strings.Repeat("x", 200),
		})
	}
	evidence := []domain.EvidenceItem{
		{ID: "a", Text: strings.Repeat("y", 300), Score: 0.9},
		{ID: "b", Text: strings.Repeat("z", 300), Score: 0.5},
	}

	prompt := a.Build(history, evidence, "short query")
	require.LessOrEqual(t, len(prompt), budget)
	require.Contains(t, prompt, "short query")
	require.Contains(t, prompt, systemInstruction)
}

func TestBuildTrimsOldestHistoryFirst(t *testing.T) {
	history := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: "oldest turn " + strings.Repeat("a", 100)},
		{Role: domain.RoleUser, Content: "middle turn " + strings.Repeat("b", 100)},
		{Role: domain.RoleUser, Content: "newest turn"},
	}
	evidence := []domain.EvidenceItem{
		{ID: "top", Text: "top evidence chunk", Score: 0.9},
	}

	// Budget sized so dropping the two long old turns is enough, keeping the
	// newest turn and the evidence.
	full := NewAssembler(100000).Build(history, evidence, "q")
	budget := len(full) - 1
	a := NewAssembler(budget)

	prompt := a.Build(history, evidence, "q")
	require.LessOrEqual(t, len(prompt), budget)
	require.NotContains(t, prompt, "oldest turn")
	require.Contains(t, prompt, "newest turn")
	require.Contains(t, prompt, "top evidence chunk")
}

func TestBuildTrimsEvidenceAfterHistory(t *testing.T) {
	// Only history exhausted first forces evidence trimming, lowest score
	// going first.
	evidence := []domain.EvidenceItem{
		{ID: "top", Text: "keep this chunk", Score: 0.9},
		{ID: "bottom", Text: "drop this chunk " + strings.Repeat("c", 400), Score: 0.1},
	}

	full := NewAssembler(100000).Build(nil, evidence, "q")
	a := NewAssembler(len(full) - 1)

	prompt := a.Build(nil, evidence, "q")
	require.Contains(t, prompt, "keep this chunk")
	require.NotContains(t, prompt, "drop this chunk")
}

func TestBuildPrefersEvidenceOverLastHistoryTurn(t *testing.T) {
	history := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: "the only history turn " + strings.Repeat("h", 200)},
	}
	evidence := []domain.EvidenceItem{
		{ID: "top", Text: "the top evidence chunk " + strings.Repeat("e", 200), Score: 0.9},
	}

	// Sized so the prompt can hold the evidence or the history turn, not
	// both: history goes first.
	withEvidenceOnly := NewAssembler(100000).Build(nil, evidence, "q")
	a := NewAssembler(len(withEvidenceOnly) + 50)

	prompt := a.Build(history, evidence, "q")
	require.Contains(t, prompt, "the top evidence chunk")
	require.NotContains(t, prompt, "the only history turn")
}

func TestBuildNeverDropsQuery(t *testing.T) {
	a := NewAssembler(len(systemInstruction) + 10)

	query := strings.Repeat("q", 500)
	prompt := a.Build(nil, nil, query)

	// The system instruction and query alone exceed the budget; both are
	// still present.
	require.Contains(t, prompt, systemInstruction)
	require.Contains(t, prompt, query)
}

func TestBuildDeterministic(t *testing.T) {
	a := NewAssembler(2000)

	history := []domain.ChatTurn{
		{Role: domain.RoleUser, Content: strings.Repeat("h", 300)},
		{Role: domain.RoleAssistant, Content: strings.Repeat("i", 300)},
	}
	evidence := []domain.EvidenceItem{
		{ID: "a", Text: strings.Repeat("e", 300), Score: 0.7},
		{ID: "b", Text: strings.Repeat("f", 300), Score: 0.3},
	}

	first := a.Build(history, evidence, "query")
	for i := 0; i < 5; i++ {
		require.Equal(t, first, a.Build(history, evidence, "query"))
	}
}

func TestBuildDoesNotMutateInput(t *testing.T) {
	a := NewAssembler(12000)

	evidence := []domain.EvidenceItem{
		{ID: "low", Text: "l", Score: 0.1},
		{ID: "high", Text: "h", Score: 0.9},
	}

	a.Build(nil, evidence, "q")
	require.Equal(t, "low", evidence[0].ID)
	require.Equal(t, "high", evidence[1].ID)
}
