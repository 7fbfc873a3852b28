package gauntlet

import (
	"strings"

	"github.com/kingrea/gauntlet/internal/phonetic"
	"github.com/kingrea/gauntlet/internal/tokenize"
)

// DefaultTarget is the acrostic every submission must spell.
const DefaultTarget = "VILLAGECODES"

// ApproximateWarning is the first warning of every result produced without a
// pronunciation dictionary.
const ApproximateWarning = "pronunciation dictionary unavailable; syllables/rhymes use heuristic fallback"

// Result is the verdict for one poem.
type Result struct {
	OK       bool     `json:"ok" yaml:"ok"`
	Failures []string `json:"failures" yaml:"failures"`
	Warnings []string `json:"warnings" yaml:"warnings"`
	Details  Details  `json:"details" yaml:"details"`
}

// Details carries per-constraint diagnostics. Field names follow the
// constraint names.
type Details struct {
	PhoneticProvider      string              `json:"phonetic_provider" yaml:"phonetic_provider"`
	LineCount             int                 `json:"line_count" yaml:"line_count"`
	Acrostic              string              `json:"acrostic" yaml:"acrostic"`
	SyllablesPerLine      []int               `json:"syllables_per_line" yaml:"syllables_per_line"`
	SemanticDetected      map[string][]string `json:"semantic_detected" yaml:"semantic_detected"`
	RepeatedWords         []Repeat            `json:"repeated_words" yaml:"repeated_words"`
	FourPlusSyllableWords []string            `json:"four_plus_syllable_words" yaml:"four_plus_syllable_words"`
	ThemeKeywordsDetected []string            `json:"theme_keywords_detected" yaml:"theme_keywords_detected"`
	TerminalPunctuation   bool                `json:"terminal_punctuation" yaml:"terminal_punctuation"`
	RhymePairs            []RhymePair         `json:"rhyme_pairs" yaml:"rhyme_pairs"`
	LinesWith5LetterWord  []int               `json:"lines_with_5_letter_word" yaml:"lines_with_5_letter_word"`
	BannedStarts          []BannedStart       `json:"banned_starts" yaml:"banned_starts"`
	AlliterationLines     []int               `json:"alliteration_lines" yaml:"alliteration_lines"`
}

// Repeat records a content word seen on FirstLine and again on Line.
type Repeat struct {
	Word      string `json:"word" yaml:"word"`
	FirstLine int    `json:"first_line" yaml:"first_line"`
	Line      int    `json:"line" yaml:"line"`
}

// RhymePair records the couplet check for two adjacent lines.
type RhymePair struct {
	Lines     [2]int   `json:"lines" yaml:"lines,flow"`
	W1        string   `json:"w1" yaml:"w1"`
	W2        string   `json:"w2" yaml:"w2"`
	Intersect []string `json:"intersect" yaml:"intersect,flow"`
	Missing   bool     `json:"missing,omitempty" yaml:"missing,omitempty"`
}

// BannedStart records a line opening with a banned word.
type BannedStart struct {
	Line int    `json:"line" yaml:"line"`
	Word string `json:"word" yaml:"word"`
}

// HouseRule is an extra advisory check configured per project. Its messages
// become warnings prefixed with the rule name; it never affects Result.OK.
type HouseRule struct {
	Name  string
	Check func(poem []string) []string
}

// Engine evaluates poems. The zero value is not usable; call New.
type Engine struct {
	phonetics phonetic.Provider
	target    string
	house     []HouseRule
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPhonetics sets the phonetic provider. The default is the heuristic.
func WithPhonetics(p phonetic.Provider) Option {
	return func(e *Engine) {
		if p != nil {
			e.phonetics = p
		}
	}
}

// WithTarget overrides the acrostic target.
func WithTarget(target string) Option {
	return func(e *Engine) {
		if t := strings.TrimSpace(target); t != "" {
			e.target = t
		}
	}
}

// WithHouseRules appends project advisory checks, run after the built-in
// constraints in the order given.
func WithHouseRules(rules ...HouseRule) Option {
	return func(e *Engine) {
		for _, r := range rules {
			if r.Check != nil {
				e.house = append(e.house, r)
			}
		}
	}
}

// New builds an engine.
func New(opts ...Option) *Engine {
	e := &Engine{
		phonetics: phonetic.Heuristic{},
		target:    DefaultTarget,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// Target returns the acrostic the engine checks for.
func (e *Engine) Target() string {
	return e.target
}

// HouseRules returns the configured project checks.
func (e *Engine) HouseRules() []HouseRule {
	return append([]HouseRule(nil), e.house...)
}

// Phonetics returns the provider in use.
func (e *Engine) Phonetics() phonetic.Provider {
	return e.phonetics
}

// Validate runs every constraint against poem.
func (e *Engine) Validate(poem []string) Result {
	ev := newEvaluation(e, poem)
	res := Result{
		Failures: []string{},
		Warnings: []string{},
	}
	if e.phonetics.Approximate() {
		res.Warnings = append(res.Warnings, ApproximateWarning)
	}
	for _, c := range constraints {
		problem := c.check(ev)
		if problem == "" {
			continue
		}
		if c.Advisory {
			res.Warnings = append(res.Warnings, problem)
		} else {
			res.Failures = append(res.Failures, problem)
		}
	}
	for _, rule := range e.house {
		for _, msg := range rule.Check(append([]string(nil), poem...)) {
			if msg = strings.TrimSpace(msg); msg != "" {
				res.Warnings = append(res.Warnings, rule.Name+": "+msg)
			}
		}
	}
	res.Details = ev.details
	res.OK = len(res.Failures) == 0
	return res
}

// evaluation is the per-call scratch state shared by the constraint checks.
type evaluation struct {
	engine  *Engine
	lines   []string
	tokens  [][]string
	text    string
	details Details
}

func newEvaluation(e *Engine, poem []string) *evaluation {
	lines := append([]string(nil), poem...)
	tokens := make([][]string, len(lines))
	for i, line := range lines {
		tokens[i] = tokenize.Words(line)
	}
	return &evaluation{
		engine: e,
		lines:  lines,
		tokens: tokens,
		text:   strings.ToLower(strings.Join(lines, " ")),
		details: Details{
			PhoneticProvider: phonetic.Name(e.phonetics),
		},
	}
}

func (ev *evaluation) syllables(word string) int {
	return ev.engine.phonetics.Syllables(word)
}
