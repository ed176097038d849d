package linear

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// tokenPattern matches the default scikit-learn token_pattern (?u)\b\w\w+\b.
var tokenPattern = regexp.MustCompile(`[\p{L}\p{M}\p{N}_]{2,}`)

// Feature is one non-zero entry of a sparse vector.
type Feature struct {
	Index int
	Value float64
}

// Vectorizer is a pre-fit TF-IDF transform exported by the training pipeline.
type Vectorizer struct {
	Vocabulary  map[string]int `json:"vocabulary"`
	IDF         []float64      `json:"idf"`
	Lowercase   bool           `json:"lowercase"`
	SublinearTF bool           `json:"sublinear_tf"`
	Norm        string         `json:"norm"`
	NgramRange  [2]int         `json:"ngram_range"`
	StopWords   []string       `json:"stop_words,omitempty"`

	stop map[string]struct{}
}

// UnmarshalJSON defaults lowercase to true when the artifact omits it.
func (v *Vectorizer) UnmarshalJSON(data []byte) error {
	type plain Vectorizer
	aux := struct {
		*plain
		Lowercase *bool `json:"lowercase"`
	}{plain: (*plain)(v)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	v.Lowercase = aux.Lowercase == nil || *aux.Lowercase
	return nil
}

func (v *Vectorizer) validate() error {
	if len(v.Vocabulary) == 0 {
		return fmt.Errorf("vectorizer vocabulary is empty")
	}
	if len(v.IDF) != len(v.Vocabulary) {
		return fmt.Errorf("vectorizer idf/vocabulary mismatch: %d/%d", len(v.IDF), len(v.Vocabulary))
	}
	for term, idx := range v.Vocabulary {
		if idx < 0 || idx >= len(v.IDF) {
			return fmt.Errorf("vectorizer term %q has out-of-range index %d", term, idx)
		}
	}
	if v.NgramRange[0] <= 0 {
		v.NgramRange[0] = 1
	}
	if v.NgramRange[1] < v.NgramRange[0] {
		v.NgramRange[1] = v.NgramRange[0]
	}
	switch v.Norm {
	case "", "l1", "l2", "none":
	default:
		return fmt.Errorf("unsupported vectorizer norm %q", v.Norm)
	}
	v.stop = make(map[string]struct{}, len(v.StopWords))
	for _, w := range v.StopWords {
		v.stop[w] = struct{}{}
	}
	return nil
}

// Dimensions is the length of the feature space.
func (v *Vectorizer) Dimensions() int {
	return len(v.IDF)
}

// Transform returns the sparse feature vector for text, ordered by index so
// that every sum over it is computed in the same order.
func (v *Vectorizer) Transform(text string) []Feature {
	if v.Lowercase {
		text = strings.ToLower(text)
	}
	tokens := tokenPattern.FindAllString(text, -1)
	if len(v.stop) > 0 {
		kept := tokens[:0]
		for _, tok := range tokens {
			if _, ok := v.stop[tok]; !ok {
				kept = append(kept, tok)
			}
		}
		tokens = kept
	}

	counts := make(map[int]int)
	for n := v.NgramRange[0]; n <= v.NgramRange[1]; n++ {
		for i := 0; i+n <= len(tokens); i++ {
			gram := tokens[i]
			if n > 1 {
				gram = strings.Join(tokens[i:i+n], " ")
			}
			if idx, ok := v.Vocabulary[gram]; ok {
				counts[idx]++
			}
		}
	}

	features := make([]Feature, 0, len(counts))
	for idx, count := range counts {
		tf := float64(count)
		if v.SublinearTF {
			tf = 1 + math.Log(tf)
		}
		features = append(features, Feature{Index: idx, Value: tf * v.IDF[idx]})
	}
	sort.Slice(features, func(i, j int) bool { return features[i].Index < features[j].Index })

	var norm float64
	switch v.Norm {
	case "l1":
		for _, f := range features {
			norm += math.Abs(f.Value)
		}
	case "", "l2":
		for _, f := range features {
			norm += f.Value * f.Value
		}
		norm = math.Sqrt(norm)
	}
	if norm > 0 {
		for i := range features {
			features[i].Value /= norm
		}
	}
	return features
}
