package models

import (
	"fmt"

	"github.com/smartcourt/smartcourt-engine/pkg/apperrors"
)

// MaxScore is the highest star rating for a single dimension.
const MaxScore = 5

// Scores is a five-dimension rating. 0 means "not rated", otherwise 1..MaxScore.
type Scores struct {
	Accuracy     int `json:"accuracy"`
	Completeness int `json:"completeness"`
	Detail       int `json:"detail"`
	Usefulness   int `json:"usefulness"`
	Satisfaction int `json:"satisfaction"`
}

// Validate rejects any dimension outside 0..MaxScore.
func (s Scores) Validate() error {
	for name, v := range s.named() {
		if v < 0 || v > MaxScore {
			return fmt.Errorf("%s=%d: %w", name, v, apperrors.ErrInvalidScore)
		}
	}
	return nil
}

// Rated reports whether at least one dimension carries a rating.
func (s Scores) Rated() bool {
	for _, v := range s.named() {
		if v > 0 {
			return true
		}
	}
	return false
}

func (s Scores) named() map[string]int {
	return map[string]int{
		"accuracy":     s.Accuracy,
		"completeness": s.Completeness,
		"detail":       s.Detail,
		"usefulness":   s.Usefulness,
		"satisfaction": s.Satisfaction,
	}
}
