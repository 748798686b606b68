// Package training tracks the human player's progress across hands.
package training

import (
	"fmt"
	"strings"

	"github.com/lox/holdem-coach/internal/game"
)

// SkillLevel is the coarse tier assigned by a skill assessment.
type SkillLevel string

const (
	Beginner     SkillLevel = "Beginner"
	Intermediate SkillLevel = "Intermediate"
	Advanced     SkillLevel = "Advanced"
	Pro          SkillLevel = "Pro"
)

// SkillLevels lists the tiers from lowest to highest.
var SkillLevels = []SkillLevel{Beginner, Intermediate, Advanced, Pro}

// ParseSkillLevel matches a tier name case-insensitively.
func ParseSkillLevel(s string) (SkillLevel, error) {
	for _, level := range SkillLevels {
		if strings.EqualFold(strings.TrimSpace(s), string(level)) {
			return level, nil
		}
	}
	return "", fmt.Errorf("unknown skill level %q", s)
}

// Assessment is the result of reviewing a batch of hands.
type Assessment struct {
	SkillLevel SkillLevel `json:"skill_level"`
	Strengths  []string   `json:"strengths"`
	Weaknesses []string   `json:"weaknesses"`
}

// Profile accumulates results for one player.
type Profile struct {
	GamesPlayed        int        `json:"games_played"`
	HandsWon           int        `json:"hands_won"`
	TotalWinnings      int        `json:"total_winnings"`
	SkillLevel         SkillLevel `json:"skill_level"`
	Strengths          []string   `json:"strengths"`
	Weaknesses         []string   `json:"weaknesses"`
	AssessmentComplete bool       `json:"assessment_complete"`
}

// NewProfile returns an unassessed beginner profile.
func NewProfile() Profile {
	return Profile{
		SkillLevel: Beginner,
		Strengths:  []string{},
		Weaknesses: []string{},
	}
}

// RecordHand counts a finished hand for the player seated as userID.
// TotalWinnings moves by the seat's net chip result, so losses count too.
// Hands the player did not sit in are ignored.
func (p *Profile) RecordHand(rec game.HandRecord, userID string) {
	seat, ok := rec.Seat(userID)
	if !ok {
		return
	}
	p.GamesPlayed++
	if rec.WinnerID == userID {
		p.HandsWon++
	}
	p.TotalWinnings += seat.Delta()
}

// ApplyAssessment stores an assessment result on the profile.
func (p *Profile) ApplyAssessment(a Assessment) {
	p.SkillLevel = a.SkillLevel
	p.Strengths = append([]string{}, a.Strengths...)
	p.Weaknesses = append([]string{}, a.Weaknesses...)
	p.AssessmentComplete = true
}

// WinRate is the share of recorded hands the player won.
func (p Profile) WinRate() float64 {
	if p.GamesPlayed == 0 {
		return 0
	}
	return float64(p.HandsWon) / float64(p.GamesPlayed)
}
