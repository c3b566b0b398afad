package moderation

import (
	"log/slog"
	"testing"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

const replacementChar = '*'

// The dictionary uses specific words to avoid partial collisions (e.g., "he" inside "The")
func TestModerator_Censor(t *testing.T) {
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	mod, err := NewModerator([]string{"badger", "snake", "mushroom"}, replacementChar, log)
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Simple word and space preservation", "The badger is here", "The ****** is here"},
		{"Multiple occurrences", "badger badger badger", "****** ****** ******"},
		{"Leet speak and internal punctuation", "Look at B.4.d.g.€r !", "Look at ********** !"},
		{"Uppercase and extreme noise", "S-N-A-K-E is a B.A.D.G.E.R", "********* is a ***********"},
		{"Accents are preserved", "Un été avec un badger", "Un été avec un ******"},
		{"Trailing punctuation kept", "I love badger!", "I love ******!"},
		{"Nothing to censor", "What is the next question?", "What is the next question?"},
		{"Empty string", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, mod.Censor(tt.input))
		})
	}
}

func TestModerator_Without_Words_Is_Pass_Through(t *testing.T) {
	req := require.New(t)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)

	// Given only noise in the dictionary
	mod, err := NewModerator([]string{"...", ",,,", ""}, replacementChar, log)
	req.NoError(err)

	req.Equal("The badger is safe...", mod.Censor("The badger is safe..."))
}

func TestParseWords(t *testing.T) {
	req := require.New(t)
	req.Equal([]string{"badger", "snake"}, ParseWords(" badger, ,snake ,"))
	req.Nil(ParseWords(""))
}
