package domain

import (
	"strings"
	"time"
)

// Role tags one message in a conversation log.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// ChatTurn is one role-tagged message in a chat. Turns for a chat are
// totally ordered by timestamp; Recent returns them oldest-first.
type ChatTurn struct {
	ChatID    string
	Role      Role
	Content   string
	Timestamp time.Time
}

// EvidenceItem is one retrieved chunk of past-project text. Score is a
// similarity score, higher is more relevant; it is not bounded below.
type EvidenceItem struct {
	ID       string
	Text     string
	Score    float32
	Metadata map[string]string
}

// Meta returns the metadata value for key, or "" when the key is absent.
func (e EvidenceItem) Meta(key string) string {
	if e.Metadata == nil {
		return ""
	}
	return e.Metadata[key]
}

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// RecommendationRequest is the structured variant of a free-text query.
type RecommendationRequest struct {
	Interests    string
	SkillLevel   SkillLevel
	Technologies string
	Duration     string
}

// Normalize fills the documented defaults: skill level intermediate and a
// one-semester duration. Interests are left as-is; callers validate them.
func (r RecommendationRequest) Normalize() RecommendationRequest {
	r.Interests = strings.TrimSpace(r.Interests)
	r.Technologies = strings.TrimSpace(r.Technologies)
	r.Duration = strings.TrimSpace(r.Duration)

	switch r.SkillLevel {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
	default:
		r.SkillLevel = SkillIntermediate
	}
	if r.Duration == "" {
		r.Duration = "one semester"
	}
	return r
}
