package syntax

import (
	"bufio"
	"strings"

	"lunec/report"
)

// Lexer is responsible for tokenizing a source file.  It works one character
// ahead: the current character and its position are kept on the lexer, and a
// token's position is the position of its first character.
type Lexer struct {
	file *bufio.Reader
	path string

	// The current character, or -1 once the file has ended.
	c int

	// The position of the current character.
	line, col int

	// The position of the first character of the token being lexed.
	startLine, startCol int
}

// NewLexer creates a new lexer for the given source file.  A UTF-8 byte order
// mark at the start of the file is skipped; a truncated mark is an
// IllegalFileFormat error.
func NewLexer(path string, file *bufio.Reader) (*Lexer, *report.CompileError) {
	l := &Lexer{file: file, path: path, line: 1, col: 1}

	b, err := file.ReadByte()
	if err != nil {
		l.c = -1
		return l, nil
	}
	l.c = int(b)

	if l.c == 0xEF {
		for _, want := range []int{0xBB, 0xBF} {
			b, err = file.ReadByte()
			if err != nil || int(b) != want {
				return nil, report.NewError(report.ErrIllegalFileFormat, path, report.NewTextPos(1, 1))
			}
		}

		b, err = file.ReadByte()
		if err != nil {
			l.c = -1
		} else {
			l.c = int(b)
		}
	}

	return l, nil
}

// NextToken retrieves the next token from the input file.  If the file has
// ended, this will be an EOF token.
func (l *Lexer) NextToken() (*Token, *report.CompileError) {
	for {
		switch l.c {
		case -1:
			l.mark()
			return l.makeToken(EOF, ""), nil
		case ' ', '\t', '\r', '\n':
			l.advance()
		case '/':
			if tok, err := l.lexCommentOrDiv(); tok != nil || err != nil {
				return tok, err
			}
		case '"':
			return l.lexStringLit()
		default:
			return l.lexOther()
		}
	}
}

// -----------------------------------------------------------------------------

// symbolPatterns maps single-character symbols to their token kind.
var symbolPatterns = map[int]int{
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	',': COMMA,
	';': SEMICOLON,
	'+': PLUS,
	'-': MINUS,
	'*': STAR,
	'%': PERCENT,
}

// lexOther lexes punctuation, identifiers, keywords, and numeric literals.
func (l *Lexer) lexOther() (*Token, *report.CompileError) {
	l.mark()

	if kind, ok := symbolPatterns[l.c]; ok {
		value := string(rune(l.c))
		l.advance()
		return l.makeToken(kind, value), nil
	}

	switch l.c {
	case '=':
		l.advance()
		if l.c == '=' {
			l.advance()
			return l.makeToken(EQ, "=="), nil
		}
		return l.makeToken(ASSIGN, "="), nil
	case '!':
		l.advance()
		if l.c == '=' {
			l.advance()
			return l.makeToken(NEQ, "!="), nil
		}
		return nil, l.errorHere(report.ErrUnexpectedCharactor)
	case '|':
		l.advance()
		if l.c == '|' {
			l.advance()
			return l.makeToken(LOR, "||"), nil
		}
		return nil, l.errorHere(report.ErrUnexpectedCharactor)
	case '&':
		l.advance()
		if l.c == '&' {
			l.advance()
			return l.makeToken(LAND, "&&"), nil
		}
		return l.makeToken(AMPERSAND, "&"), nil
	case '<':
		l.advance()
		if l.c == '=' {
			l.advance()
			return l.makeToken(LTEQ, "<="), nil
		}
		return l.makeToken(LT, "<"), nil
	case '>':
		l.advance()
		if l.c == '=' {
			l.advance()
			return l.makeToken(GTEQ, ">="), nil
		}
		return l.makeToken(GT, ">"), nil
	case '.':
		l.advance()
		if l.c == '.' {
			l.advance()
			if l.c == '.' {
				l.advance()
				return l.makeToken(ELLIPSIS, "..."), nil
			}
			return nil, l.errorHere(report.ErrUnexpectedCharactor)
		}
		return l.makeToken(DOT, "."), nil
	}

	if l.c == '_' || isAlpha(l.c) {
		return l.lexIdentOrKeyword(), nil
	}
	if isDigit(l.c) {
		return l.lexNumericLit(), nil
	}

	return nil, l.errorHere(report.ErrUnexpectedCharactor)
}

// lexIdentOrKeyword lexes an identifier and resolves it against the keyword
// table.
func (l *Lexer) lexIdentOrKeyword() *Token {
	sb := &strings.Builder{}
	for l.c == '_' || isAlpha(l.c) || isDigit(l.c) {
		sb.WriteByte(byte(l.c))
		l.advance()
	}

	value := sb.String()
	if kind, ok := keywordPatterns[value]; ok {
		return l.makeToken(kind, value)
	}

	return l.makeToken(SYMBOL, value)
}

// lexNumericLit lexes an integer or float literal.  Underscores may separate
// digits; a dot continues the literal as a float.
func (l *Lexer) lexNumericLit() *Token {
	sb := &strings.Builder{}
	l.lexDigits(sb)

	if l.c == '.' {
		sb.WriteByte('.')
		l.advance()
		l.lexDigits(sb)
		return l.makeToken(CONSTANT_FLOAT, sb.String())
	}

	return l.makeToken(CONSTANT_INTEGER, sb.String())
}

func (l *Lexer) lexDigits(sb *strings.Builder) {
	for l.c == '_' || isDigit(l.c) {
		if l.c != '_' {
			sb.WriteByte(byte(l.c))
		}
		l.advance()
	}
}

// lexStringLit lexes a string literal.  The `\r \n \t \\ \"` escape sequences
// are recognised; the token value is the unescaped content.
func (l *Lexer) lexStringLit() (*Token, *report.CompileError) {
	l.mark()
	l.advance()

	sb := &strings.Builder{}
	for l.c != '"' {
		switch l.c {
		case -1:
			return nil, l.errorHere(report.ErrUnexpectedEof)
		case '\\':
			l.advance()
			switch l.c {
			case 'r':
				sb.WriteByte('\r')
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '"':
				sb.WriteByte(byte(l.c))
			default:
				return nil, l.errorHere(report.ErrUnexpectedCharactor)
			}
			l.advance()
		default:
			sb.WriteByte(byte(l.c))
			l.advance()
		}
	}
	l.advance()

	return l.makeToken(CONSTANT_STRING, sb.String()), nil
}

// lexCommentOrDiv handles the `/` character: a line comment, a block comment,
// or the division operator.  For comments it returns (nil, nil) so the caller
// keeps scanning.
func (l *Lexer) lexCommentOrDiv() (*Token, *report.CompileError) {
	l.mark()
	l.advance()

	switch l.c {
	case '/':
		for l.c != '\r' && l.c != '\n' && l.c != -1 {
			l.advance()
		}
		return nil, nil
	case '*':
		l.advance()
		for {
			switch l.c {
			case -1:
				return nil, l.errorHere(report.ErrUnexpectedEof)
			case '*':
				l.advance()
				if l.c == '/' {
					l.advance()
					return nil, nil
				}
			default:
				l.advance()
			}
		}
	}

	return l.makeToken(SLASH, "/"), nil
}

// -----------------------------------------------------------------------------

// advance consumes the current character and reads the next one, updating the
// lexer's position.  A `\r\n` pair counts as a single newline.
func (l *Lexer) advance() {
	if l.c == -1 {
		return
	}

	newline := false
	switch l.c {
	case '\n':
		newline = true
	case '\r':
		newline = true
		if b, err := l.file.ReadByte(); err == nil {
			if int(b) != '\n' {
				// Not part of the pair: deliver it as the next character.
				l.c = int(b)
				l.line++
				l.col = 1
				return
			}
		} else {
			l.c = -1
			return
		}
	}

	if newline {
		l.line++
		l.col = 1
	} else {
		l.col++
	}

	if b, err := l.file.ReadByte(); err != nil {
		l.c = -1
	} else {
		l.c = int(b)
	}
}

// mark records the position of the current character as the start of the
// token being lexed.
func (l *Lexer) mark() {
	l.startLine, l.startCol = l.line, l.col
}

// makeToken creates a token of the given kind starting at the marked
// position.
func (l *Lexer) makeToken(kind int, value string) *Token {
	return &Token{
		Kind:  kind,
		Value: value,
		Path:  l.path,
		Pos:   report.NewTextPos(l.startLine, l.startCol),
	}
}

// errorHere creates a lexical error at the current character.
func (l *Lexer) errorHere(name string) *report.CompileError {
	return report.NewError(name, l.path, report.NewTextPos(l.line, l.col))
}

func isAlpha(c int) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c int) bool {
	return '0' <= c && c <= '9'
}
