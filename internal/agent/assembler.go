package agent

import (
	"fmt"
	"sort"
	"strings"

	"github.com/capstone-recommender/backend/internal/domain"
)

const systemInstruction = `You are an expert capstone project advisor. You help students find suitable capstone project ideas based on their interests, skills, and requirements. Ground your advice in the past-project context provided below, and consider the student's technical skill level, available time and resources, learning objectives, and the feasibility of implementation. Be encouraging and provide practical next steps.`

// noEvidenceMarker tells the model explicitly that retrieval came back
// empty or was skipped, so it answers from general knowledge instead of
// inventing past projects.
const noEvidenceMarker = "No relevant project information found."

// Assembler merges retrieved evidence and recent chat history with the
// current query into one prompt under a character budget.
//
// Trim order when the budget is tight: oldest history turns go first, then
// the lowest-scored evidence items. Stale conversation turns are more
// likely to be irrelevant than a highly ranked retrieved chunk. The system
// instruction and the current query are never dropped, so output can exceed
// the budget only when those two alone do not fit.
type Assembler struct {
	budget int
}

func NewAssembler(budget int) *Assembler {
	if budget <= 0 {
		budget = 12000
	}
	return &Assembler{budget: budget}
}

// Build is deterministic: the same history, evidence and query always
// produce the same prompt.
func (a *Assembler) Build(history []domain.ChatTurn, evidence []domain.EvidenceItem, query string) string {
	ranked := make([]domain.EvidenceItem, len(evidence))
	copy(ranked, evidence)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	evidenceParts := make([]string, len(ranked))
	for i, item := range ranked {
		evidenceParts[i] = formatEvidence(i+1, item)
	}

	historyParts := make([]string, len(history))
	for i, turn := range history {
		historyParts[i] = fmt.Sprintf("%s: %s", turn.Role, turn.Content)
	}

	for {
		prompt := compose(evidenceParts, historyParts, query)
		if len(prompt) <= a.budget {
			return prompt
		}
		if len(historyParts) > 0 {
			historyParts = historyParts[1:]
			continue
		}
		if len(evidenceParts) > 0 {
			evidenceParts = evidenceParts[:len(evidenceParts)-1]
			continue
		}
		return prompt
	}
}

func compose(evidenceParts, historyParts []string, query string) string {
	var b strings.Builder

	b.WriteString(systemInstruction)
	b.WriteString("\n\nRelevant past projects:\n")

	if len(evidenceParts) == 0 {
		b.WriteString(noEvidenceMarker)
		b.WriteString("\n")
	} else {
		for _, part := range evidenceParts {
			b.WriteString(part)
		}
	}

	if len(historyParts) > 0 {
		b.WriteString("\nConversation so far:\n")
		for _, part := range historyParts {
			b.WriteString(part)
			b.WriteString("\n")
		}
	}

	b.WriteString("\nStudent request:\n")
	b.WriteString(query)

	return b.String()
}

func formatEvidence(ordinal int, item domain.EvidenceItem) string {
	var b strings.Builder

	fmt.Fprintf(&b, "[Project %d]\n", ordinal)
	if title := item.Meta("title"); title != "" {
		fmt.Fprintf(&b, "Title: %s\n", title)
	}
	if description := item.Meta("description"); description != "" {
		fmt.Fprintf(&b, "Description: %s\n", description)
	}
	if technologies := item.Meta("technologies"); technologies != "" {
		fmt.Fprintf(&b, "Technologies: %s\n", technologies)
	}
	fmt.Fprintf(&b, "Content: %s\n", item.Text)
	fmt.Fprintf(&b, "Relevance Score: %.3f\n\n", item.Score)

	return b.String()
}
