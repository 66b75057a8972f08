package shell

import (
	"strings"
)

// TokenKind classifies a token.
type TokenKind int

const (
	// TokenWord is unquoted text.
	TokenWord TokenKind = iota
	// TokenQuoted is text that contained at least one double-quoted span.
	TokenQuoted
	// TokenOperator is one of ; | &&
	TokenOperator
)

const (
	OpSequence = ";"
	OpPipe     = "|"
	OpAnd      = "&&"
)

// Token is a single lexical unit of a line.
type Token struct {
	Kind TokenKind
	// Text holds the decoded content with quotes removed and escapes
	// resolved.
	Text string
	// Raw holds the token exactly as it was typed.
	Raw string
}

// IsOperator returns true if the token is an unquoted operator.
func (t Token) IsOperator() bool {
	return t.Kind == TokenOperator
}

// Tokenize splits a line into words, quoted literals and operators.
//
// Whitespace separates tokens, double quotes group text, a backslash makes
// the next character literal and ; | && are operators. Nothing else is
// special; # doesn't start a comment and a lone & is text.
func Tokenize(line string) ([]Token, error) {
	var (
		out     []Token
		buf     strings.Builder
		inToken bool
		quoted  bool
		start   int

		// segment is where the current command starts, command its name.
		segment int
		command string
	)

	flush := func(end int) {
		if !inToken {
			return
		}
		kind := TokenWord
		if quoted {
			kind = TokenQuoted
		}
		if command == "" {
			command = buf.String()
		}
		out = append(out, Token{Kind: kind, Text: buf.String(), Raw: line[start:end]})
		buf.Reset()
		inToken = false
		quoted = false
	}

	begin := func(i int) {
		if !inToken {
			inToken = true
			start = i
		}
	}

	operator := func(i int, op string) {
		flush(i)
		out = append(out, Token{Kind: TokenOperator, Text: op, Raw: op})
		segment = i + len(op)
		command = ""
	}

	fail := func(offset int, msg string) *ParseError {
		name := command
		if name == "" && inToken {
			name = buf.String()
		}
		return &ParseError{
			Command: name,
			Text:    strings.TrimSpace(line[segment:]),
			Offset:  offset,
			Msg:     msg,
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\':
			if i+1 >= len(line) {
				return nil, fail(i, "unterminated escape")
			}
			begin(i)
			i++
			buf.WriteByte(line[i])

		case c == '"':
			begin(i)
			quoted = true
			end, ok := readQuoted(line, i, &buf)
			if !ok {
				return nil, fail(i, "unterminated quoted string")
			}
			i = end

		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			flush(i)

		case c == ';' || c == '|':
			operator(i, string(c))

		case c == '&' && i+1 < len(line) && line[i+1] == '&':
			operator(i, OpAnd)
			i++

		default:
			begin(i)
			buf.WriteByte(c)
		}
	}
	flush(len(line))

	return out, nil
}

// readQuoted decodes the double-quoted span starting at open into buf and
// returns the index of the closing quote, ok is false if there is none.
func readQuoted(line string, open int, buf *strings.Builder) (end int, ok bool) {
	for i := open + 1; i < len(line); i++ {
		switch line[i] {
		case '\\':
			if i+1 >= len(line) {
				return 0, false
			}
			i++
			buf.WriteByte(line[i])
		case '"':
			return i, true
		default:
			buf.WriteByte(line[i])
		}
	}
	return 0, false
}
