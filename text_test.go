package fuse

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func words(pairs ...interface{}) []Token {
	tokens := make([]Token, 0)
	for i := 0; i < len(pairs); i += 2 {
		tokens = append(tokens, Token{
			Index: len(tokens),
			Text:  pairs[i].(string),
			Break: pairs[i+1].(BreakType),
		})
	}
	return tokens
}

func TestJoinTokens(t *testing.T) {
	tests := []struct {
		name   string
		tokens []Token
		want   string
	}{
		{"hyphen", words("Hydro", BreakHyphen, "gen", BreakNone), "Hydro - gen"},
		{"line break", words("Line1", BreakLineBreak, "Line2", BreakNone), "Line1\nLine2"},
		{"eol sure space", words("Label", BreakEOLSureSpace, "Other", BreakNone), "Label\nOther"},
		{"space", words("word1", BreakSpace, "word2", BreakNone), "word1 word2"},
		{"sure space", words("word1", BreakSureSpace, "word2", BreakNone), "word1 word2"},
		{"no break glues", words("қаз", BreakNone, "ақ", BreakNone), "қазақ"},
		{"unknown break glues", words("a", BreakType("UNKNOWN"), "b", BreakNone), "ab"},
		{"last break ignored", words("end", BreakLineBreak), "end"},
		{"trimmed", words(" padded", BreakSpace, "text ", BreakSpace), "padded text"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, JoinTokens(tt.tokens), tt.want)
		})
	}
}
