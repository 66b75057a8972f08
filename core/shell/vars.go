package shell

import "strings"

var valueEscaper = strings.NewReplacer(
	`\`, `\\`,
	`"`, `\"`,
	`;`, `\;`,
	`|`, `\|`,
	`&`, `\&`,
)

// EscapeValue backslash-escapes the characters the tokenizer treats as
// quotes or operators so a substituted value can't change how a line is
// split into commands.
func EscapeValue(value string) string {
	return valueEscaper.Replace(value)
}

// VariableLookup returns the value of a variable.
type VariableLookup func(name string) (string, bool)

// ExpandVariables replaces every ${name} in line with the value returned by
// lookup, names without a value expand to the empty string. Escaped
// sequences are copied unchanged so the tokenizer can decode \${name} to a
// literal ${name}. An unterminated ${ is kept as is.
func ExpandVariables(line string, lookup VariableLookup) string {
	if !strings.Contains(line, "${") {
		return line
	}

	var out strings.Builder
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '\\' && i+1 < len(line):
			out.WriteByte(c)
			out.WriteByte(line[i+1])
			i++

		case c == '$' && i+1 < len(line) && line[i+1] == '{':
			end := strings.IndexByte(line[i+2:], '}')
			if end < 0 {
				out.WriteString(line[i:])
				return out.String()
			}
			name := line[i+2 : i+2+end]
			if lookup != nil {
				if value, ok := lookup(name); ok {
					out.WriteString(value)
				}
			}
			i += end + 2

		default:
			out.WriteByte(c)
		}
	}
	return out.String()
}
