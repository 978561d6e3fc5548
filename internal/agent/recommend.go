package agent

import (
	"fmt"

	"github.com/capstone-recommender/backend/internal/domain"
)

// RecommendationFormatter turns a structured recommendation request into a
// retrieval query and a generation instruction. The five-recommendation
// layout below is a prompt-level contract: the generator is instructed to
// follow it, but its output is not parsed or validated against it.
type RecommendationFormatter struct{}

// Query concatenates interests with preferred technologies so retrieval
// recalls matches on both axes. Blank technologies add nothing.
func (RecommendationFormatter) Query(req domain.RecommendationRequest) string {
	req = req.Normalize()
	if req.Technologies == "" {
		return req.Interests
	}
	return req.Interests + " technologies: " + req.Technologies
}

// Instruction renders the fixed recommendation template. It is always
// non-empty for a request with non-empty interests.
func (RecommendationFormatter) Instruction(req domain.RecommendationRequest) string {
	req = req.Normalize()

	technologies := req.Technologies
	if technologies == "" {
		technologies = "no specific preference"
	}

	return fmt.Sprintf(`I need capstone project recommendations with the following requirements:
- Interests: %s
- Skill level: %s
- Preferred technologies: %s
- Project duration: %s

Provide exactly 5 project recommendations. For each one include:
1. Project title
2. Brief description (2-3 sentences)
3. Key technologies and tools
4. Learning outcomes
5. Estimated difficulty level
6. Suggested datasets or resources

Make the recommendations diverse in scope and approach.`,
		req.Interests, req.SkillLevel, technologies, req.Duration)
}
