package linear

import (
	"errors"
	"fmt"
)

// Classifier is a pre-fit one-vs-rest linear model: one coefficient row per
// class, or a single row for a binary problem.
type Classifier struct {
	Classes   []string    `json:"classes"`
	Coef      [][]float64 `json:"coef"`
	Intercept []float64   `json:"intercept"`
}

func (c *Classifier) validate(dims int) error {
	if len(c.Classes) < 2 {
		return errors.New("classifier needs at least two classes")
	}
	binary := len(c.Classes) == 2 && len(c.Coef) == 1
	if !binary && len(c.Coef) != len(c.Classes) {
		return fmt.Errorf("classifier coef/classes mismatch: %d/%d", len(c.Coef), len(c.Classes))
	}
	if len(c.Intercept) != len(c.Coef) {
		return fmt.Errorf("classifier intercept/coef mismatch: %d/%d", len(c.Intercept), len(c.Coef))
	}
	for i, row := range c.Coef {
		if len(row) != dims {
			return fmt.Errorf("classifier coef row %d has %d features, vectorizer has %d", i, len(row), dims)
		}
	}
	return nil
}

// Predict returns the highest-scoring class for a sparse feature vector.
func (c *Classifier) Predict(features []Feature) string {
	if len(c.Coef) == 1 {
		if c.decision(0, features) > 0 {
			return c.Classes[1]
		}
		return c.Classes[0]
	}

	best := 0
	bestScore := c.decision(0, features)
	for i := 1; i < len(c.Coef); i++ {
		if score := c.decision(i, features); score > bestScore {
			best, bestScore = i, score
		}
	}
	return c.Classes[best]
}

func (c *Classifier) decision(row int, features []Feature) float64 {
	score := c.Intercept[row]
	weights := c.Coef[row]
	for _, f := range features {
		score += weights[f.Index] * f.Value
	}
	return score
}
