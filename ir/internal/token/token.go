// Package token splits the graph text format into tokens.
package token

import "unicode"

type Type int

const (
	LParen Type = iota
	RParen
	Ident
	String
	Number
)

func (t Type) String() string {
	switch t {
	case LParen:
		return "'('"
	case RParen:
		return "')'"
	case Ident:
		return "identifier"
	case String:
		return "string"
	case Number:
		return "number"
	}
	return "unknown"
}

type Token struct {
	Value string
	Type  Type
	Line  int
}

// Tokenize splits input into tokens. ";;" starts a comment running to the
// end of the line. Unterminated strings run to the end of input.
func Tokenize(input string) []Token {
	var tokens []Token
	line := 1
	runes := []rune(input)

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' {
			line++
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		if r == ';' && i+1 < len(runes) && runes[i+1] == ';' {
			for i < len(runes) && runes[i] != '\n' {
				i++
			}
			line++
			continue
		}

		if r == '(' {
			tokens = append(tokens, Token{"(", LParen, line})
			continue
		}
		if r == ')' {
			tokens = append(tokens, Token{")", RParen, line})
			continue
		}

		if r == '"' {
			start := line
			var val []rune
			i++
			for i < len(runes) && runes[i] != '"' {
				if runes[i] == '\\' && i+1 < len(runes) {
					i++
				}
				if runes[i] == '\n' {
					line++
				}
				val = append(val, runes[i])
				i++
			}
			tokens = append(tokens, Token{string(val), String, start})
			continue
		}

		if r == '-' || r == '+' || unicode.IsDigit(r) {
			start := i
			i++
			for i < len(runes) && (unicode.IsDigit(runes[i]) || runes[i] == '_') {
				i++
			}
			tokens = append(tokens, Token{string(runes[start:i]), Number, line})
			i--
			continue
		}

		start := i
		for i < len(runes) {
			c := runes[i]
			if unicode.IsSpace(c) || c == '(' || c == ')' || c == '"' || c == ';' {
				break
			}
			i++
		}
		tokens = append(tokens, Token{string(runes[start:i]), Ident, line})
		i--
	}

	return tokens
}
