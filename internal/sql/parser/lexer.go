package parser

type TokenType int

const (
	EOF TokenType = iota
	Illegal
	Word   // bare identifier or keyword
	String // '...' with '' as an escaped quote
	Number
	Comma
	ParenOpen
	ParenClose
	Semicolon
	Operator // = <> < > <= >=
)

var tokenNames = [...]string{
	EOF:        "end of input",
	Illegal:    "illegal",
	Word:       "word",
	String:     "quoted string",
	Number:     "number",
	Comma:      "','",
	ParenOpen:  "'('",
	ParenClose: "')'",
	Semicolon:  "';'",
	Operator:   "comparator",
}

func (t TokenType) String() string { return tokenNames[t] }

type Token struct {
	Type  TokenType
	Value string
	Pos   int
}

func (t Token) String() string {
	switch t.Type {
	case EOF, Comma, ParenOpen, ParenClose, Semicolon:
		return t.Type.String()
	case String:
		return "'" + t.Value + "'"
	default:
		return t.Value
	}
}

// Lexer splits one statement into tokens, byte by byte.
type Lexer struct {
	input        string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() Token {
	l.skipWhitespace()
	pos := l.position

	switch ch := l.ch; {
	case ch == 0:
		return Token{Type: EOF, Pos: pos}
	case ch == ',':
		l.readChar()
		return Token{Type: Comma, Value: ",", Pos: pos}
	case ch == '(':
		l.readChar()
		return Token{Type: ParenOpen, Value: "(", Pos: pos}
	case ch == ')':
		l.readChar()
		return Token{Type: ParenClose, Value: ")", Pos: pos}
	case ch == ';':
		l.readChar()
		return Token{Type: Semicolon, Value: ";", Pos: pos}
	case ch == '\'':
		s, ok := l.readString()
		if !ok {
			return Token{Type: Illegal, Value: l.input[pos:], Pos: pos}
		}
		return Token{Type: String, Value: s, Pos: pos}
	case ch == '=' || ch == '<' || ch == '>':
		return Token{Type: Operator, Value: l.readOperator(), Pos: pos}
	case isDigit(ch) || ((ch == '-' || ch == '+') && isDigit(l.peekChar())):
		return Token{Type: Number, Value: l.readNumber(), Pos: pos}
	case isLetter(ch):
		return Token{Type: Word, Value: l.readWord(), Pos: pos}
	default:
		l.readChar()
		return Token{Type: Illegal, Value: string(ch), Pos: pos}
	}
}

// PeekToken returns the next token without consuming it.
func (l *Lexer) PeekToken() Token {
	position, readPosition, ch := l.position, l.readPosition, l.ch
	tok := l.NextToken()
	l.position, l.readPosition, l.ch = position, readPosition, ch
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

func (l *Lexer) readWord() string {
	start := l.position
	for isLetter(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start:l.position]
}

// readString consumes a quoted string. ok is false when the closing quote is missing.
func (l *Lexer) readString() (s string, ok bool) {
	var buf []byte
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return "", false
		case '\'':
			if l.peekChar() != '\'' {
				l.readChar()
				return string(buf), true
			}
			l.readChar()
		}
		buf = append(buf, l.ch)
	}
}

// readNumber reads [+-]digits with an optional '.' or ',' fraction.
func (l *Lexer) readNumber() string {
	start := l.position
	if l.ch == '-' || l.ch == '+' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	if (l.ch == '.' || l.ch == ',') && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[start:l.position]
}

func (l *Lexer) readOperator() string {
	first := l.ch
	l.readChar()
	switch {
	case first == '<' && (l.ch == '=' || l.ch == '>'):
		op := string([]byte{first, l.ch})
		l.readChar()
		return op
	case first == '>' && l.ch == '=':
		l.readChar()
		return ">="
	default:
		return string(first)
	}
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool { return '0' <= ch && ch <= '9' }
