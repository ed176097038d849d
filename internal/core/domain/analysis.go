package domain

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

const (
	// SummaryInstruction is prepended to the text handed to the summarizer.
	SummaryInstruction = "summarize: "
	// SummaryMaxNewTokens bounds generated summary length.
	SummaryMaxNewTokens = 120
	// MinSubmitChars is the front-end gate applied to normalized text.
	MinSubmitChars = 50
)

type EntityLabel string

const (
	LabelOrganization EntityLabel = "ORG"
	LabelGeopolitical EntityLabel = "GPE"
	LabelPerson       EntityLabel = "PERSON"
	LabelMoney        EntityLabel = "MONEY"
	LabelDate         EntityLabel = "DATE"
)

// DefaultEntityLabels is the set of labels surfaced to callers.
var DefaultEntityLabels = []EntityLabel{
	LabelOrganization,
	LabelGeopolitical,
	LabelPerson,
	LabelMoney,
	LabelDate,
}

var labelDescriptions = map[EntityLabel]string{
	LabelOrganization: "organization",
	LabelGeopolitical: "geopolitical entity",
	LabelPerson:       "person",
	LabelMoney:        "monetary amount",
	LabelDate:         "date",
}

func (l EntityLabel) Description() string {
	if d, ok := labelDescriptions[l]; ok {
		return d
	}
	return strings.ToLower(string(l))
}

// Entity is a (span, label) pair. It travels as a two-element JSON array.
type Entity struct {
	Text  string
	Label EntityLabel
}

func (e Entity) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]string{e.Text, string(e.Label)})
}

func (e *Entity) UnmarshalJSON(data []byte) error {
	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("entity must be a [text, label] pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("entity must be a [text, label] pair, got %d elements", len(pair))
	}
	e.Text = pair[0]
	e.Label = EntityLabel(pair[1])
	return nil
}

// EntityCandidate is raw tagger output before label filtering.
type EntityCandidate struct {
	Text  string
	Label string
	Start int
	End   int
	Score float64
}

type AnalysisResult struct {
	Category string   `json:"category"`
	Entities []Entity `json:"entities"`
	Summary  string   `json:"summary"`
}

// LabelPolicy decides which tagger labels reach callers. Aliases map
// model-specific label names onto the canonical codes.
type LabelPolicy struct {
	allowed map[EntityLabel]struct{}
	aliases map[string]EntityLabel
}

func NewLabelPolicy(allowed []EntityLabel, aliases map[string]EntityLabel) LabelPolicy {
	p := LabelPolicy{
		allowed: make(map[EntityLabel]struct{}, len(allowed)),
		aliases: make(map[string]EntityLabel, len(aliases)),
	}
	for _, label := range allowed {
		label = EntityLabel(strings.ToUpper(strings.TrimSpace(string(label))))
		if label == "" {
			continue
		}
		p.allowed[label] = struct{}{}
	}
	for from, to := range aliases {
		key := strings.ToUpper(strings.TrimSpace(from))
		if key == "" {
			continue
		}
		p.aliases[key] = EntityLabel(strings.ToUpper(strings.TrimSpace(string(to))))
	}
	return p
}

func DefaultLabelPolicy() LabelPolicy {
	return NewLabelPolicy(DefaultEntityLabels, map[string]EntityLabel{
		"PER":          LabelPerson,
		"ORGANIZATION": LabelOrganization,
	})
}

// Resolve normalizes a raw tagger label and reports whether it belongs to the
// allowed set. Tagging-scheme prefixes (IOB, BIOES, BILOU) are stripped.
func (p LabelPolicy) Resolve(raw string) (EntityLabel, bool) {
	label := strings.ToUpper(strings.TrimSpace(raw))
	if len(label) > 2 && label[1] == '-' && label[0] >= 'A' && label[0] <= 'Z' {
		label = label[2:]
	}
	if alias, ok := p.aliases[label]; ok {
		label = string(alias)
	}
	resolved := EntityLabel(label)
	_, ok := p.allowed[resolved]
	return resolved, ok
}

func (p LabelPolicy) Allows(label EntityLabel) bool {
	_, ok := p.allowed[label]
	return ok
}

func (p LabelPolicy) Labels() []EntityLabel {
	out := make([]EntityLabel, 0, len(p.allowed))
	for label := range p.allowed {
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Filter keeps allowed candidates in their original order.
func (p LabelPolicy) Filter(candidates []EntityCandidate) []Entity {
	entities := make([]Entity, 0, len(candidates))
	for _, c := range candidates {
		label, ok := p.Resolve(c.Label)
		if !ok {
			continue
		}
		text := strings.TrimSpace(c.Text)
		if text == "" {
			continue
		}
		entities = append(entities, Entity{Text: text, Label: label})
	}
	return entities
}
