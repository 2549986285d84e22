package lexer

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// Special
	EOF     = "EOF"
	ILLEGAL = "ILLEGAL"

	// Literals
	IDENT  = "IDENT"  // identifiers: x, _tmp, readInt, …
	INT    = "INT"    // integer literals: 0, 42, …
	FLOAT  = "FLOAT"  // decimal literals: 3.14, 1e10, 2.5E-3, …
	STRING = "STRING" // string literals: "hi", """ … """

	// Keywords
	VAR    = "VAR"
	LET    = "LET"
	FUNC   = "FUNC"
	RETURN = "RETURN"
	IF     = "IF"
	ELSE   = "ELSE"
	WHILE  = "WHILE"
	NIL    = "NIL"

	// Type keywords
	INTTYPE    = "INTTYPE"    // Int
	DOUBLETYPE = "DOUBLETYPE" // Double
	STRINGTYPE = "STRINGTYPE" // String

	// Delimiters
	LPAREN     = "LPAREN"     // (
	RPAREN     = "RPAREN"     // )
	LBRACE     = "LBRACE"     // {
	RBRACE     = "RBRACE"     // }
	SEMICOLON  = "SEMICOLON"  // ;
	COLON      = "COLON"      // :
	COMMA      = "COMMA"      // ,
	UNDERSCORE = "UNDERSCORE" // _

	// Operators
	ARROW    = "ARROW"    // ->
	ASSIGN   = "ASSIGN"   // =
	PLUS     = "PLUS"     // +
	MINUS    = "MINUS"    // -
	STAR     = "STAR"     // *
	SLASH    = "SLASH"    // /
	BANG     = "BANG"     // !
	QUESTION = "QUESTION" // ?
	COALESCE = "COALESCE" // ??

	// Comparison operators
	EQ  = "EQ"  // ==
	NEQ = "NEQ" // !=
	LT  = "LT"  // <
	GT  = "GT"  // >
	LTE = "LTE" // <=
	GTE = "GTE" // >=

	// Logical operators
	AND = "AND" // &&
	OR  = "OR"  // ||
)

// keywords includes the three type names, which are reserved.
var keywords = map[string]string{
	"var":    VAR,
	"let":    LET,
	"func":   FUNC,
	"return": RETURN,
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"nil":    NIL,
	"Int":    INTTYPE,
	"Double": DOUBLETYPE,
	"String": STRINGTYPE,
}

// Token is one lexeme with its 1-based position.
type Token struct {
	Type    string
	Value   string // decoded text for STRING tokens, the lexeme otherwise
	Line    int
	Column  int
	Newline bool // a line break separates this token from the previous one
}

func newToken(typ, value string, line, col int) Token {
	return Token{Type: typ, Value: value, Line: line, Column: col}
}

// LexError is reported for malformed input. Lexing continues after it.
type LexError struct {
	Message string
	Lexeme  string
	Line    int
	Column  int
}

func (e LexError) Error() string {
	return fmt.Sprintf("line %d, col %d: %s (got %q)", e.Line, e.Column, e.Message, e.Lexeme)
}

/**
* Splits the source into Tokens terminated by EOF. Tokens that start a new line are flagged so the parser can separate statements.
* @param input The program text.
* @return The tokens and every lexical error found.
 */
func Lex(input string) ([]Token, []LexError) {
	var tokens []Token
	var errors []LexError
	line, col, i := 1, 1, 0
	sawNewline := false

	emit := func(tok Token) {
		tok.Newline = sawNewline && len(tokens) > 0
		tokens = append(tokens, tok)
		sawNewline = false
	}

	for i < len(input) {
		ch := input[i]
		if isWhitespace(ch) {
			if ch == '\n' {
				line++
				col = 1
				sawNewline = true
			} else if ch != '\r' {
				col++
			}
			i++
			continue
		}

		// Ignore comments
		if ch == '/' && i+1 < len(input) {
			// Single-line comment: // …
			if input[i+1] == '/' {
				i, col = skipLineComment(input, i, col)
				continue
			}
			// Multi-line comment: /* … */, may nest.
			if input[i+1] == '*' {
				var err *LexError
				startLine := line
				i, line, col, err = skipBlockComment(input, i, line, col)
				if err != nil {
					errors = append(errors, *err)
				}
				if line != startLine {
					sawNewline = true
				}
				continue
			}
		}

		// Strings
		if ch == '"' {
			var tok *Token
			var errs []LexError
			if strings.HasPrefix(input[i:], `"""`) {
				tok, errs, i, line, col = lexMultilineString(input, i, line, col)
			} else {
				tok, errs, i, line, col = lexString(input, i, line, col)
			}
			errors = append(errors, errs...)
			if tok != nil {
				emit(*tok)
			}
			continue
		}

		if isDigit(ch) {
			tok, err, newI, newCol := lexNumber(input, i, line, col)
			if err != nil {
				errors = append(errors, *err)
			}
			emit(tok)
			i, col = newI, newCol
			continue
		}

		// Identifiers, keywords, lone '_'
		if isIdentStart(ch) {
			tok, newI, newCol := lexIdentifier(input, i, line, col)
			emit(tok)
			i, col = newI, newCol
			continue
		}

		// Operators and punctuation
		if tok, width := lexOperatorOrDelimiter(input, i, line, col); width > 0 {
			emit(tok)
			i += width
			col += width
			continue
		}

		// Unknown characters
		errors = append(errors, LexError{
			Message: "unexpected character",
			Lexeme:  string(ch),
			Line:    line,
			Column:  col,
		})
		i++
		col++
	}

	emit(newToken(EOF, "", line, col))
	return tokens, errors
}

func skipLineComment(input string, i int, col int) (int, int) {
	for i < len(input) && input[i] != '\n' {
		i++
		col++
	}
	return i, col
}

func skipBlockComment(input string, i int, line int, col int) (int, int, int, *LexError) {
	startLine, startCol := line, col
	depth := 0

	for i < len(input) {
		if input[i] == '/' && i+1 < len(input) && input[i+1] == '*' {
			depth++
			i += 2
			col += 2
			continue
		}
		if input[i] == '*' && i+1 < len(input) && input[i+1] == '/' {
			depth--
			i += 2
			col += 2
			if depth == 0 {
				return i, line, col, nil
			}
			continue
		}
		if input[i] == '\n' {
			line++
			col = 1
		} else if input[i] != '\r' {
			col++
		}
		i++
	}

	return i, line, col, &LexError{
		Message: "unterminated block comment",
		Lexeme:  "/*",
		Line:    startLine,
		Column:  startCol,
	}
}

// lexString scans a single-line string literal and decodes its escapes.
func lexString(input string, start int, line int, col int) (*Token, []LexError, int, int, int) {
	startLine, startCol := line, col
	var errs []LexError
	var sb strings.Builder
	i := start + 1
	col++

	for i < len(input) {
		ch := input[i]

		// Single-line strings cannot span lines.
		if ch == '\n' || ch == '\r' {
			errs = append(errs, LexError{
				Message: "unterminated string literal (newline in string)",
				Lexeme:  input[start:i],
				Line:    startLine,
				Column:  startCol,
			})
			return nil, errs, i, line, col
		}

		if ch == '\\' {
			r, width, err := decodeEscape(input, i, line, col)
			if err != nil {
				errs = append(errs, *err)
			} else {
				sb.WriteRune(r)
			}
			i += width
			col += width
			continue
		}

		// Closing quote.
		if ch == '"' {
			tok := newToken(STRING, sb.String(), startLine, startCol)
			i++
			col++
			return &tok, errs, i, line, col
		}

		sb.WriteByte(ch)
		i++
		col++
	}

		errs = append(errs, LexError{
		Message: "unterminated string literal (reached end of input)",
		Lexeme:  input[start:],
		Line:    startLine,
		Column:  startCol,
	})
	return nil, errs, i, line, col
}

// lexMultilineString scans a """ … """ literal. The opening delimiter must be
// followed by a line break and the closing one must start its own line; the
// closing delimiter's indentation is removed from every content line.
func lexMultilineString(input string, start int, line int, col int) (*Token, []LexError, int, int, int) {
	startLine, startCol := line, col
	i := start + 3
	col += 3

	for i < len(input) && (input[i] == ' ' || input[i] == '\t' || input[i] == '\r') {
		i++
		col++
	}
	if i >= len(input) || input[i] != '\n' {
		return nil, []LexError{{
			Message: "multi-line string literal must begin on a new line",
			Lexeme:  `"""`,
			Line:    startLine,
			Column:  startCol,
		}}, i, line, col
	}
	i++
	line++
	col = 1

	var lines []string
	var errs []LexError
	for i < len(input) {
		end := strings.IndexByte(input[i:], '\n')
		raw := input[i:]
		if end >= 0 {
			raw = input[i : i+end]
		}
		trimmed := strings.TrimLeft(strings.TrimRight(raw, "\r"), " \t")
		if strings.HasPrefix(trimmed, `"""`) {
			indent := raw[:len(raw)-len(strings.TrimLeft(raw, " \t"))]
			value, decodeErrs := decodeLines(lines, indent, startLine+1)
			errs = append(errs, decodeErrs...)
			col = len(indent) + 1
			tok := newToken(STRING, value, startLine, startCol)
			return &tok, errs, i + len(indent) + 3, line, col + 3
		}
		lines = append(lines, strings.TrimRight(raw, "\r"))
		if end < 0 {
			i = len(input)
			break
		}
		i += end + 1
		line++
	}

	errs = append(errs, LexError{
		Message: "unterminated multi-line string literal",
		Lexeme:  `"""`,
		Line:    startLine,
		Column:  startCol,
	})
	return nil, errs, i, line, col
}

// decodeLines strips indent from each content line and decodes escapes.
func decodeLines(lines []string, indent string, firstLine int) (string, []LexError) {
	var errs []LexError
	var sb strings.Builder
	for n, l := range lines {
		if n > 0 {
			sb.WriteByte('\n')
		}
		l = strings.TrimPrefix(l, indent)
		for j := 0; j < len(l); {
			if l[j] == '\\' {
				r, width, err := decodeEscape(l, j, firstLine+n, j+len(indent)+1)
				if err != nil {
					errs = append(errs, *err)
				} else {
					sb.WriteRune(r)
				}
				j += width
				continue
			}
			sb.WriteByte(l[j])
			j++
		}
	}
	return sb.String(), errs
}

// decodeEscape decodes the escape sequence starting at input[i] == '\\' and
// returns the rune and the number of bytes consumed.
func decodeEscape(input string, i int, line int, col int) (rune, int, *LexError) {
	if i+1 >= len(input) {
		return 0, 1, &LexError{
			Message: "unterminated escape sequence at end of input",
			Lexeme:  "\\",
			Line:    line,
			Column:  col,
		}
	}
	switch input[i+1] {
	case 'n':
		return '\n', 2, nil
	case 'r':
		return '\r', 2, nil
	case 't':
		return '\t', 2, nil
	case '\\':
		return '\\', 2, nil
	case '"':
		return '"', 2, nil
	case 'u':
		return decodeUnicodeEscape(input, i, line, col)
	}
	return 0, 2, &LexError{
		Message: fmt.Sprintf("invalid escape sequence '\\%c'", input[i+1]),
		Lexeme:  input[i : i+2],
		Line:    line,
		Column:  col,
	}
}

// decodeUnicodeEscape decodes \u{XXXX} with one to eight hex digits.
func decodeUnicodeEscape(input string, i int, line int, col int) (rune, int, *LexError) {
	j := i + 2
	bad := func(width int) (rune, int, *LexError) {
		return 0, width, &LexError{
			Message: "malformed unicode escape sequence",
			Lexeme:  input[i : i+width],
			Line:    line,
			Column:  col,
		}
	}
	if j >= len(input) || input[j] != '{' {
		return bad(j - i)
	}
	j++
	digits := j
	for j < len(input) && isHexDigit(input[j]) {
		j++
	}
	if j >= len(input) || input[j] != '}' || j == digits || j-digits > 8 {
		return bad(j - i)
	}
	v, err := strconv.ParseUint(input[digits:j], 16, 32)
	if err != nil || v > 0x10FFFF {
		return bad(j + 1 - i)
	}
	return rune(v), j + 1 - i, nil
}

// lexNumber scans an integer or decimal literal.
// Supports: integer (42), fraction (3.14), and exponent (1.5e10, 2E-3).
// A dot is only part of the number when a digit follows it.
func lexNumber(input string, start int, line int, col int) (Token, *LexError, int, int) {
	i := start
	startCol := col
	isFloat := false

	// Decimal integer part
	for i < len(input) && isDigit(input[i]) {
		i++
		col++
	}

	// Fractional part
	if i < len(input) && input[i] == '.' && i+1 < len(input) && isDigit(input[i+1]) {
		isFloat = true
		i++ // consume '.'
		col++
		for i < len(input) && isDigit(input[i]) {
			i++
			col++
		}
	}

	// Exponent part: e/E followed by optional +/- and at least one digit.
	var err *LexError
	if i < len(input) && (input[i] == 'e' || input[i] == 'E') {
		isFloat = true
		i++ // consume 'e'
		col++
		if i < len(input) && (input[i] == '+' || input[i] == '-') {
			i++
			col++
		}
		if i >= len(input) || !isDigit(input[i]) {
			err = &LexError{
				Message: "malformed exponent in number literal",
				Lexeme:  input[start:i],
				Line:    line,
				Column:  startCol,
			}
		}
		for i < len(input) && isDigit(input[i]) {
			i++
			col++
		}
	}

	tokType := INT
	if isFloat {
		tokType = FLOAT
	}
	return newToken(tokType, input[start:i], line, startCol), err, i, col
}

func lexIdentifier(input string, start int, line int, col int) (Token, int, int) {
	i := start
	startCol := col
	for i < len(input) && isIdentPart(input[i]) {
		i++
		col++
	}
	word := input[start:i]
	tokType := IDENT
	if word == "_" {
		tokType = UNDERSCORE
	} else if kw, ok := keywords[word]; ok {
		tokType = kw
	}
	return newToken(tokType, word, line, startCol), i, col
}

// lexOperatorOrDelimiter matches the longest operator at input[i]. A width
// of 0 means no operator starts there.
func lexOperatorOrDelimiter(input string, i int, line int, col int) (Token, int) {
	ch := input[i]
	var next byte
	if i+1 < len(input) {
		next = input[i+1]
	}

	// Two-character tokens
	switch ch {
	case '-':
		if next == '>' {
			return newToken(ARROW, "->", line, col), 2
		}
		return newToken(MINUS, "-", line, col), 1
	case '=':
		if next == '=' {
			return newToken(EQ, "==", line, col), 2
		}
		return newToken(ASSIGN, "=", line, col), 1
	case '!':
		if next == '=' {
			return newToken(NEQ, "!=", line, col), 2
		}
		return newToken(BANG, "!", line, col), 1
	case '?':
		if next == '?' {
			return newToken(COALESCE, "??", line, col), 2
		}
		return newToken(QUESTION, "?", line, col), 1
	case '<':
		if next == '=' {
			return newToken(LTE, "<=", line, col), 2
		}
		return newToken(LT, "<", line, col), 1
	case '>':
		if next == '=' {
			return newToken(GTE, ">=", line, col), 2
		}
		return newToken(GT, ">", line, col), 1
	case '&':
		if next == '&' {
			return newToken(AND, "&&", line, col), 2
		}
		return Token{}, 0
	case '|':
		if next == '|' {
			return newToken(OR, "||", line, col), 2
		}
		return Token{}, 0
	}

	switch ch {
	case '(':
		return newToken(LPAREN, "(", line, col), 1
	case ')':
		return newToken(RPAREN, ")", line, col), 1
	case '{':
		return newToken(LBRACE, "{", line, col), 1
	case '}':
		return newToken(RBRACE, "}", line, col), 1
	case ';':
		return newToken(SEMICOLON, ";", line, col), 1
	case ':':
		return newToken(COLON, ":", line, col), 1
	case ',':
		return newToken(COMMA, ",", line, col), 1
	case '+':
		return newToken(PLUS, "+", line, col), 1
	case '*':
		return newToken(STAR, "*", line, col), 1
	case '/':
		return newToken(SLASH, "/", line, col), 1
	}

	return Token{}, 0
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\n' || ch == '\r'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return isDigit(ch) || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentStart(ch byte) bool {
	return isLetter(ch) || ch == '_'
}

func isIdentPart(ch byte) bool {
	return isLetter(ch) || isDigit(ch) || ch == '_'
}
