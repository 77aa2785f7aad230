package fuse

import "strings"

// BreakType is the separator a recognizer detected after a token.
type BreakType string

const (
	BreakNone         BreakType = ""
	BreakSpace        BreakType = "SPACE"
	BreakSureSpace    BreakType = "SURE_SPACE"
	BreakEOLSureSpace BreakType = "EOL_SURE_SPACE"
	BreakLineBreak    BreakType = "LINE_BREAK"
	BreakHyphen       BreakType = "HYPHEN"
)

// Separator is the text inserted between a token carrying this break and
// the token that follows it.
func (b BreakType) Separator() string {
	switch b {
	case BreakEOLSureSpace, BreakLineBreak:
		return "\n"
	case BreakSpace, BreakSureSpace:
		return " "
	case BreakHyphen:
		// keep the hyphenation visible instead of gluing the halves back together
		return " - "
	default:
		return ""
	}
}

// JoinTokens reconstructs the text of a run of tokens. The break of the last
// token is ignored, and the result is trimmed.
func JoinTokens(tokens []Token) string {
	var sb strings.Builder
	for i, t := range tokens {
		sb.WriteString(t.Text)
		if i < len(tokens)-1 {
			sb.WriteString(t.Break.Separator())
		}
	}
	return strings.TrimSpace(sb.String())
}
