package lexer

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const indentTabWidth = 8

// Lexer tokenizes the indentation-sensitive source subset. Indentation is
// turned into explicit INDENT/DEDENT/NEWLINE tokens up front so the parser
// never has to reason about column positions directly, mirroring how the
// whitespace-insignificant lexer this one is descended from hands the
// parser a flat token stream.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           rune
	line         int
	column       int
	file         string

	parenDepth int
	atLineStart bool
	indentStack []int
	pending     []Token
	sawContent  bool // whether any non-blank line has been emitted yet
	lastReal    TokenType
}

// New creates a Lexer over input. Callers should pass input through
// Normalize first.
func New(input string, filename string) *Lexer {
	l := &Lexer{
		input:       input,
		file:        filename,
		line:        1,
		column:      0,
		atLineStart: true,
		indentStack: []int{0},
		lastReal:    NEWLINE,
	}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
		l.position = l.readPosition
	} else {
		var size int
		l.ch, size = utf8.DecodeRuneInString(l.input[l.readPosition:])
		l.position = l.readPosition
		l.readPosition += size
		l.column++
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
	}
}

func (l *Lexer) peekChar() rune {
	if l.readPosition >= len(l.input) {
		return 0
	}
	ch, _ := utf8.DecodeRuneInString(l.input[l.readPosition:])
	return ch
}

// NextToken returns the next token in the stream.
func (l *Lexer) NextToken() Token {
	if len(l.pending) > 0 {
		tok := l.pending[0]
		l.pending = l.pending[1:]
		l.lastReal = tok.Type
		return tok
	}

	if l.atLineStart && l.parenDepth == 0 {
		if tok, ok := l.handleLineStart(); ok {
			l.lastReal = tok.Type
			return tok
		}
	}

	tok := l.scanToken()
	l.lastReal = tok.Type
	return tok
}

// handleLineStart measures indentation, skips blank/comment-only lines, and
// produces INDENT/DEDENT/EOF tokens when appropriate. ok is false when the
// caller should fall through to normal scanning on the same line.
func (l *Lexer) handleLineStart() (Token, bool) {
	for {
		width, blank := l.measureIndent()
		if blank {
			continue // blank or comment-only line: no INDENT/DEDENT, no NEWLINE
		}
		if l.ch == 0 {
			return l.finishAtEOF()
		}

		l.atLineStart = false
		top := l.indentStack[len(l.indentStack)-1]
		switch {
		case width > top:
			l.indentStack = append(l.indentStack, width)
			return NewToken(INDENT, "", l.line, l.column, l.file), true
		case width < top:
			var toks []Token
			for len(l.indentStack) > 1 && l.indentStack[len(l.indentStack)-1] > width {
				l.indentStack = l.indentStack[:len(l.indentStack)-1]
				toks = append(toks, NewToken(DEDENT, "", l.line, l.column, l.file))
			}
			if l.indentStack[len(l.indentStack)-1] != width {
				return NewToken(ILLEGAL, "inconsistent dedent", l.line, l.column, l.file), true
			}
			l.pending = append(l.pending, toks[1:]...)
			return toks[0], true
		default:
			return Token{}, false
		}
	}
}

// measureIndent consumes leading whitespace on a line and reports its width.
// blank is true for an empty or comment-only line, which the caller should
// skip entirely (including its trailing newline).
func (l *Lexer) measureIndent() (width int, blank bool) {
	for {
		switch l.ch {
		case ' ':
			width++
			l.readChar()
		case '\t':
			width += indentTabWidth - (width % indentTabWidth)
			l.readChar()
		case '\r':
			l.readChar()
		case '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case '\n':
			l.readChar()
			return 0, true
		case 0:
			return width, false
		default:
			return width, false
		}
	}
}

func (l *Lexer) finishAtEOF() (Token, bool) {
	if len(l.indentStack) > 1 {
		l.indentStack = l.indentStack[:len(l.indentStack)-1]
		var toks []Token
		for len(l.indentStack) > 1 {
			l.indentStack = l.indentStack[:len(l.indentStack)-1]
			toks = append(toks, NewToken(DEDENT, "", l.line, l.column, l.file))
		}
		toks = append(toks, NewToken(EOF, "", l.line, l.column, l.file))
		l.pending = append(l.pending, toks...)
		return NewToken(DEDENT, "", l.line, l.column, l.file), true
	}
	return NewToken(EOF, "", l.line, l.column, l.file), true
}

func (l *Lexer) scanToken() Token {
	var tok Token
	l.skipInlineWhitespaceAndComments()

	line, column := l.line, l.column

	switch l.ch {
	case '\n':
		l.readChar()
		if l.parenDepth > 0 {
			return l.NextToken()
		}
		l.atLineStart = true
		if !l.sawContent {
			// file began with only blank lines; nothing to terminate yet
			return l.NextToken()
		}
		return NewToken(NEWLINE, "\\n", line, column, l.file)
	case 0:
		if l.parenDepth > 0 {
			return NewToken(ILLEGAL, "unexpected EOF inside brackets", line, column, l.file)
		}
		if l.sawContent && l.lastReal != NEWLINE && l.lastReal != DEDENT {
			return NewToken(NEWLINE, "\\n", line, column, l.file)
		}
		l.atLineStart = true
		tok, _ := l.finishAtEOF()
		return tok
	case '+':
		if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(PLUSEQ, "+=", line, column, l.file)
		} else {
			tok = NewToken(PLUS, "+", line, column, l.file)
		}
	case '-':
		if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(MINUSEQ, "-=", line, column, l.file)
		} else if l.peekChar() == '>' {
			l.readChar()
			tok = NewToken(ARROW, "->", line, column, l.file)
		} else {
			tok = NewToken(MINUS, "-", line, column, l.file)
		}
	case '*':
		if l.peekChar() == '*' {
			l.readChar()
			tok = NewToken(POWER, "**", line, column, l.file)
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(STAREQ, "*=", line, column, l.file)
		} else {
			tok = NewToken(STAR, "*", line, column, l.file)
		}
	case '/':
		if l.peekChar() == '/' {
			l.readChar()
			tok = NewToken(SLASHSLASH, "//", line, column, l.file)
		} else if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(SLASHEQ, "/=", line, column, l.file)
		} else {
			tok = NewToken(SLASH, "/", line, column, l.file)
		}
	case '%':
		if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(PERCENTEQ, "%=", line, column, l.file)
		} else {
			tok = NewToken(PERCENT, "%", line, column, l.file)
		}
	case '=':
		if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(EQ, "==", line, column, l.file)
		} else {
			tok = NewToken(ASSIGN, "=", line, column, l.file)
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(NEQ, "!=", line, column, l.file)
		} else {
			tok = NewToken(ILLEGAL, "!", line, column, l.file)
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(LTE, "<=", line, column, l.file)
		} else {
			tok = NewToken(LT, "<", line, column, l.file)
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok = NewToken(GTE, ">=", line, column, l.file)
		} else {
			tok = NewToken(GT, ">", line, column, l.file)
		}
	case '(':
		l.parenDepth++
		tok = NewToken(LPAREN, "(", line, column, l.file)
	case ')':
		l.parenDepth--
		tok = NewToken(RPAREN, ")", line, column, l.file)
	case '[':
		l.parenDepth++
		tok = NewToken(LBRACKET, "[", line, column, l.file)
	case ']':
		l.parenDepth--
		tok = NewToken(RBRACKET, "]", line, column, l.file)
	case '{':
		l.parenDepth++
		tok = NewToken(LBRACE, "{", line, column, l.file)
	case '}':
		l.parenDepth--
		tok = NewToken(RBRACE, "}", line, column, l.file)
	case ',':
		tok = NewToken(COMMA, ",", line, column, l.file)
	case '.':
		tok = NewToken(DOT, ".", line, column, l.file)
	case ':':
		tok = NewToken(COLON, ":", line, column, l.file)
	case ';':
		tok = NewToken(SEMICOLON, ";", line, column, l.file)
	case '"', '\'':
		quote := l.ch
		tok.Type = STRING
		tok.Literal = l.readString(quote)
		tok.Line, tok.Column, tok.File = line, column, l.file
		l.sawContent = true
		return tok
	default:
		if isLetter(l.ch) {
			lit := l.readIdentifier()
			tok = NewToken(LookupIdent(lit), lit, line, column, l.file)
			l.sawContent = true
			return tok
		}
		if isDigit(l.ch) {
			lit, isFloat := l.readNumber()
			if isFloat {
				tok = NewToken(FLOAT, lit, line, column, l.file)
			} else {
				tok = NewToken(INT, lit, line, column, l.file)
			}
			l.sawContent = true
			return tok
		}
		tok = NewToken(ILLEGAL, string(l.ch), line, column, l.file)
	}

	l.sawContent = true
	l.readChar()
	return tok
}

// skipInlineWhitespaceAndComments skips spaces, tabs and a trailing comment
// on the current line without crossing a newline (newlines are handled by
// scanToken itself so NEWLINE tokens can be emitted).
func (l *Lexer) skipInlineWhitespaceAndComments() {
	for {
		switch l.ch {
		case ' ', '\t', '\r':
			l.readChar()
		case '#':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		default:
			return
		}
	}
}

func (l *Lexer) readIdentifier() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.position]
}

func (l *Lexer) readNumber() (string, bool) {
	start := l.position
	isFloat := false
	for isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	if l.ch == '.' && isDigit(l.peekChar()) {
		isFloat = true
		l.readChar()
		for isDigit(l.ch) || l.ch == '_' {
			l.readChar()
		}
	}
	if l.ch == 'e' || l.ch == 'E' {
		isFloat = true
		l.readChar()
		if l.ch == '+' || l.ch == '-' {
			l.readChar()
		}
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return strings.ReplaceAll(l.input[start:l.position], "_", ""), isFloat
}

func (l *Lexer) readString(quote rune) string {
	var out strings.Builder
	l.readChar() // opening quote
	for l.ch != quote && l.ch != 0 {
		if l.ch == '\\' {
			l.readChar()
			switch l.ch {
			case 'n':
				out.WriteRune('\n')
			case 't':
				out.WriteRune('\t')
			case 'r':
				out.WriteRune('\r')
			case '\\':
				out.WriteRune('\\')
			case quote:
				out.WriteRune(quote)
			default:
				out.WriteRune(l.ch)
			}
		} else {
			out.WriteRune(l.ch)
		}
		l.readChar()
	}
	l.readChar() // closing quote
	return out.String()
}

func isLetter(ch rune) bool {
	return ch == '_' || unicode.IsLetter(ch)
}

func isDigit(ch rune) bool {
	return unicode.IsDigit(ch)
}
