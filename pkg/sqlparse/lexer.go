package sqlparse

// Lexer tokenizes SQL input.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      byte // current char under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based)
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next character.
func (l *Lexer) readChar() {
	if l.readPos >= len(l.input) {
		l.ch = 0 // ASCII NUL = EOF
	} else {
		l.ch = l.input[l.readPos]
	}
	l.pos = l.readPos
	l.readPos++

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next character without advancing.
func (l *Lexer) peekChar() byte {
	if l.readPos >= len(l.input) {
		return 0
	}
	return l.input[l.readPos]
}

// currentPos returns the current position.
func (l *Lexer) currentPos() Position {
	return Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	if ok := l.skipWhitespaceAndComments(); !ok {
		return Token{Type: TOKEN_ILLEGAL, Literal: "unterminated comment", Pos: l.currentPos()}
	}

	pos := l.currentPos()
	var tok Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = TOKEN_EOF
	case '.':
		tok = l.newToken(TOKEN_DOT, ".")
	case ',':
		tok = l.newToken(TOKEN_COMMA, ",")
	case '(':
		tok = l.newToken(TOKEN_LPAREN, "(")
	case ')':
		tok = l.newToken(TOKEN_RPAREN, ")")
	case ';':
		tok = l.newToken(TOKEN_SEMICOLON, ";")
	case '*':
		tok = l.newToken(TOKEN_STAR, "*")
	case '\'':
		lit, ok := l.readString()
		if !ok {
			return Token{Type: TOKEN_ILLEGAL, Literal: "unterminated string literal", Pos: pos}
		}
		tok.Type = TOKEN_STRING
		tok.Literal = lit
		return tok
	case '"':
		lit, ok := l.readQuotedIdent()
		if !ok {
			return Token{Type: TOKEN_ILLEGAL, Literal: "unterminated quoted identifier", Pos: pos}
		}
		tok.Type = TOKEN_IDENT
		tok.Literal = lit
		return tok
	default:
		switch {
		case isIdentStart(l.ch):
			lit := l.readIdent()
			tok.Type = LookupIdent(lit)
			tok.Literal = lit
			return tok
		case isDigit(l.ch):
			tok.Type = TOKEN_NUMBER
			tok.Literal = l.readNumber()
			return tok
		default:
			// Operators and punctuation the analyzer does not
			// interpret are lexed as a single opaque token.
			tok = l.newToken(TOKEN_OP, string(l.ch))
		}
	}

	return tok
}

// newToken creates a single-character token and advances.
func (l *Lexer) newToken(t TokenType, literal string) Token {
	tok := Token{Type: t, Literal: literal, Pos: l.currentPos()}
	l.readChar()
	return tok
}

// skipWhitespaceAndComments skips whitespace, -- line comments and
// /* block comments */. Returns false on an unterminated block comment.
func (l *Lexer) skipWhitespaceAndComments() bool {
	for {
		switch {
		case l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r':
			l.readChar()
		case l.ch == '-' && l.peekChar() == '-':
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
		case l.ch == '/' && l.peekChar() == '*':
			l.readChar() // consume /
			l.readChar() // consume *
			for {
				if l.ch == 0 {
					return false
				}
				if l.ch == '*' && l.peekChar() == '/' {
					l.readChar()
					l.readChar()
					break
				}
				l.readChar()
			}
		default:
			return true
		}
	}
}

// readString reads a single-quoted string literal.
// Doubled quotes ('') are the SQL escape for a literal quote.
func (l *Lexer) readString() (string, bool) {
	var out []byte
	l.readChar() // consume opening quote
	for {
		switch l.ch {
		case 0:
			return "", false
		case '\'':
			if l.peekChar() == '\'' {
				out = append(out, '\'')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar() // consume closing quote
			return string(out), true
		default:
			out = append(out, l.ch)
			l.readChar()
		}
	}
}

// readQuotedIdent reads a double-quoted identifier.
func (l *Lexer) readQuotedIdent() (string, bool) {
	var out []byte
	l.readChar() // consume opening quote
	for {
		switch l.ch {
		case 0:
			return "", false
		case '"':
			if l.peekChar() == '"' {
				out = append(out, '"')
				l.readChar()
				l.readChar()
				continue
			}
			l.readChar()
			return string(out), true
		default:
			out = append(out, l.ch)
			l.readChar()
		}
	}
}

// readIdent reads an unquoted identifier or keyword.
func (l *Lexer) readIdent() string {
	start := l.pos
	for isIdentPart(l.ch) {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal.
func (l *Lexer) readNumber() string {
	start := l.pos
	for isDigit(l.ch) || l.ch == '.' || l.ch == 'e' || l.ch == 'E' {
		if (l.ch == 'e' || l.ch == 'E') && (l.peekChar() == '+' || l.peekChar() == '-') {
			l.readChar()
		}
		l.readChar()
	}
	return l.input[start:l.pos]
}

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch >= 0x80
}

func isIdentPart(ch byte) bool {
	return isIdentStart(ch) || isDigit(ch)
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}
