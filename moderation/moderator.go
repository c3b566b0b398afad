// Package moderation masks censored words in user supplied focus content.
package moderation

import (
	"log/slog"
	"strings"
	"unicode"

	"huddle/contract"
	"huddle/errors"

	goahocorasick "github.com/anknown/ahocorasick"
)

var _ contract.ContentFilter = (*Moderator)(nil)

// Moderator matches words case-insensitively, ignoring punctuation, spaces and common leet
// substitutions, and masks every matched rune of the original text.
type Moderator struct {
	machine     *goahocorasick.Machine
	replacement rune
	log         *slog.Logger
}

// ParseWords splits a comma separated list, dropping blanks.
func ParseWords(list string) []string {
	var words []string
	for _, w := range strings.Split(list, ",") {
		if w = strings.TrimSpace(w); w != "" {
			words = append(words, w)
		}
	}
	return words
}

// NewModerator builds the automaton. With no usable word Censor returns its input unchanged.
func NewModerator(words []string, replacement rune, log *slog.Logger) (*Moderator, error) {
	var patterns [][]rune
	for _, word := range words {
		if folded, _ := fold(word); len(folded) > 0 {
			patterns = append(patterns, folded)
		}
	}
	m := &Moderator{replacement: replacement, log: log}
	if len(patterns) == 0 {
		log.Debug("Moderation disabled", "error", errors.ErrEmptyWords)
		return m, nil
	}
	m.machine = new(goahocorasick.Machine)
	if err := m.machine.Build(patterns); err != nil {
		return nil, err
	}
	log.Info("Moderation enabled", "words", len(patterns))
	return m, nil
}

func (m *Moderator) Censor(content string) string {
	if m.machine == nil || content == "" {
		return content
	}
	folded, positions := fold(content)
	if len(folded) == 0 {
		return content
	}
	terms := m.machine.MultiPatternSearch(folded, false)
	if len(terms) == 0 {
		return content
	}
	out := []rune(content)
	for _, term := range terms {
		end := term.Pos + len(term.Word)
		if term.Pos < 0 || end > len(positions) {
			continue
		}
		for i := positions[term.Pos]; i <= positions[end-1]; i++ {
			out[i] = m.replacement
		}
	}
	return string(out)
}

// fold lower-cases, undoes leet speak and drops noise, returning for each kept rune
// its index in the original text.
func fold(s string) ([]rune, []int) {
	runes := []rune(s)
	folded := make([]rune, 0, len(runes))
	positions := make([]int, 0, len(runes))
	for i, r := range runes {
		r = unleet(r)
		if unicode.IsPunct(r) || unicode.IsSpace(r) || unicode.IsSymbol(r) {
			continue
		}
		folded = append(folded, unicode.ToLower(r))
		positions = append(positions, i)
	}
	return folded, positions
}

func unleet(r rune) rune {
	switch r {
	case '4', '@':
		return 'a'
	case '3', '€':
		return 'e'
	case '1', '!', '|':
		return 'i'
	case '0':
		return 'o'
	case '5', '$':
		return 's'
	}
	return r
}
