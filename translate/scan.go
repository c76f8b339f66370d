package translate

import (
	"strings"
	"unicode/utf8"

	"github.com/smasher164/xid"

	"github.com/vippsas/thorn/internal/keyword"
)

// Scanner is a cursor into one .thorn source file. Unlike a stream that
// buffers every token up front, Scanner is driven directly by the
// recursive-descent parser in translate.go, one NextToken call per
// decision point — the same cursor-over-a-buffer shape the teacher's own
// dialect scanners use (sqlparser/pgsql/scanner.go, sqlparser/mssql/scanner.go),
// adapted here to a mixed SQL/Go token stream instead of pure SQL.
type Scanner struct {
	file FileRef
	src  string
	pos  int // byte offset of the next unread byte
	line int
	col  int

	tok    Token
	peeked *Token
}

// NewScanner returns a Scanner positioned before the first token of src.
func NewScanner(file FileRef, src string) *Scanner {
	return &Scanner{file: file, src: src, line: 1, col: 1}
}

func (s *Scanner) currentPos() Pos {
	return Pos{File: s.file, Line: s.line, Col: s.col}
}

func (s *Scanner) peekByte() (byte, bool) {
	if s.pos >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos], true
}

func (s *Scanner) peekAt(offset int) (byte, bool) {
	if s.pos+offset >= len(s.src) {
		return 0, false
	}
	return s.src[s.pos+offset], true
}

func (s *Scanner) advanceByte() byte {
	b := s.src[s.pos]
	s.pos++
	if b == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return b
}

func (s *Scanner) skipWhitespaceAndComments() {
	for {
		b, ok := s.peekByte()
		if !ok {
			return
		}
		switch {
		case b == ' ' || b == '\t' || b == '\r' || b == '\n':
			s.advanceByte()
		case b == '/' && peekIs(s, 1, '/'):
			for {
				c, ok := s.peekByte()
				if !ok || c == '\n' {
					break
				}
				s.advanceByte()
			}
		case b == '/' && peekIs(s, 1, '*'):
			s.advanceByte()
			s.advanceByte()
			for {
				c, ok := s.peekByte()
				if !ok {
					break
				}
				if c == '*' && peekIs(s, 1, '/') {
					s.advanceByte()
					s.advanceByte()
					break
				}
				s.advanceByte()
			}
		default:
			return
		}
	}
}

func peekIs(s *Scanner, offset int, want byte) bool {
	b, ok := s.peekAt(offset)
	return ok && b == want
}

// Peek returns the next token without consuming it; repeated calls before a
// Next return the same token.
func (s *Scanner) Peek() (Token, error) {
	if s.peeked == nil {
		tok, err := s.scan()
		if err != nil {
			return Token{}, err
		}
		s.peeked = &tok
	}
	return *s.peeked, nil
}

// Next consumes and returns the next token.
func (s *Scanner) Next() (Token, error) {
	if s.peeked != nil {
		tok := *s.peeked
		s.peeked = nil
		return tok, nil
	}
	return s.scan()
}

func (s *Scanner) scan() (Token, error) {
	s.skipWhitespaceAndComments()
	start := s.currentPos()

	b, ok := s.peekByte()
	if !ok {
		return Token{Kind: EOF, Pos: start}, nil
	}

	switch {
	case b == '-' && peekIs(s, 1, '-'):
		s.advanceByte()
		s.advanceByte()
		return Token{Kind: DashDash, Text: "--", Pos: start}, nil

	case b == '\'':
		return s.scanString(start)

	case b == 'b' && peekIs(s, 1, '\''):
		s.advanceByte()
		return s.scanByteString(start)

	case isDigit(b):
		return s.scanNumber(start)

	case xid.Start(rune(b)) || b == '_' || b >= utf8.RuneSelf:
		return s.scanIdent(start)

	case b == '"':
		return s.scanQuotedIdent(start)

	default:
		return s.scanPunct(start)
	}
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func (s *Scanner) scanIdent(start Pos) (Token, error) {
	var sb strings.Builder
	for {
		if s.pos >= len(s.src) {
			break
		}
		r, size := utf8.DecodeRuneInString(s.src[s.pos:])
		if !(xid.Continue(r) || r == '_' || r == '$') {
			break
		}
		for i := 0; i < size; i++ {
			s.advanceByte()
		}
		sb.WriteRune(r)
	}
	return Token{Kind: Ident, Text: sb.String(), Pos: start}, nil
}

// scanQuotedIdent scans a double-quoted token (a doubled `""` stands for
// one quote) and yields it as a String token, so a host string such as the
// separator in `join("AND")` keeps its quotes when tokenSource reassembles it.
func (s *Scanner) scanQuotedIdent(start Pos) (Token, error) {
	s.advanceByte() // opening quote
	var sb strings.Builder
	for {
		b, ok := s.peekByte()
		if !ok {
			return Token{}, newError(start, ErrUnsupportedForm, "unterminated double-quoted string")
		}
		if b == '"' {
			s.advanceByte()
			if nb, ok := s.peekByte(); ok && nb == '"' {
				s.advanceByte()
				sb.WriteByte('"')
				continue
			}
			break
		}
		sb.WriteByte(s.advanceByte())
	}
	return Token{Kind: String, Text: sb.String(), Pos: start}, nil
}

func (s *Scanner) scanString(start Pos) (Token, error) {
	s.advanceByte() // opening '
	var sb strings.Builder
	for {
		b, ok := s.peekByte()
		if !ok {
			return Token{}, newError(start, ErrUnsupportedForm, "unterminated string literal")
		}
		if b == '\\' {
			s.advanceByte()
			if nb, ok := s.peekByte(); ok {
				sb.WriteByte(s.advanceByte())
				_ = nb
			}
			continue
		}
		if b == '\'' {
			s.advanceByte()
			if nb, ok := s.peekByte(); ok && nb == '\'' {
				s.advanceByte()
				sb.WriteByte('\'')
				continue
			}
			break
		}
		sb.WriteByte(s.advanceByte())
	}
	return Token{Kind: String, Text: sb.String(), Pos: start}, nil
}

func (s *Scanner) scanByteString(start Pos) (Token, error) {
	s.advanceByte() // opening '
	var sb strings.Builder
	for {
		b, ok := s.peekByte()
		if !ok {
			return Token{}, newError(start, ErrUnsupportedForm, "unterminated byte string literal")
		}
		if b == '\'' {
			s.advanceByte()
			break
		}
		sb.WriteByte(s.advanceByte())
	}
	return Token{Kind: ByteString, Text: sb.String(), Pos: start}, nil
}

func (s *Scanner) scanNumber(start Pos) (Token, error) {
	var sb strings.Builder
	isFloat := false
	for {
		b, ok := s.peekByte()
		if !ok {
			break
		}
		if isDigit(b) {
			sb.WriteByte(s.advanceByte())
			continue
		}
		if b == '.' && !isFloat {
			if nb, ok := s.peekAt(1); ok && isDigit(nb) {
				isFloat = true
				sb.WriteByte(s.advanceByte())
				continue
			}
		}
		if (b == 'e' || b == 'E') && sb.Len() > 0 {
			isFloat = true
			sb.WriteByte(s.advanceByte())
			if nb, ok := s.peekByte(); ok && (nb == '+' || nb == '-') {
				sb.WriteByte(s.advanceByte())
			}
			continue
		}
		// trailing Rust-style type suffix (_i64, _f64, ...) is passthrough noise
		if b == '_' {
			for {
				nb, ok := s.peekByte()
				if !ok || (!xid.Continue(rune(nb)) && nb != '_') {
					break
				}
				s.advanceByte()
			}
			continue
		}
		break
	}
	kind := Int
	if isFloat {
		kind = Float
	}
	return Token{Kind: kind, Text: sb.String(), Pos: start}, nil
}

// captureBraceBody assumes the opening `{` of a `{ ... }`, `@{ ... }`,
// `::{ ... }`, `#{ ... }` or `${ ... }` block has just been consumed as a
// token, and that no token has been scanned past it yet (the peek buffer
// must be empty). It reads raw source bytes — not tokens — tracking nested
// brace/paren/bracket depth and skipping over quoted strings, until the
// matching closing `}`, and returns the inner text with the closing brace
// consumed. This is the one place the scanner steps outside tokenization:
// block contents are host Go expressions, which this package does not
// parse, only captures verbatim for codegen to splice into the generated
// function body.
func (s *Scanner) captureBraceBody() (string, error) {
	if s.peeked != nil {
		return "", newError(s.currentPos(), ErrUnsupportedForm, "internal: captureBraceBody called with pending peeked token")
	}
	start := s.currentPos()
	depth := 1
	var sb strings.Builder
	for {
		b, ok := s.peekByte()
		if !ok {
			return "", newError(start, ErrUnsupportedForm, "unterminated block, missing closing }")
		}
		switch b {
		case '{':
			depth++
			sb.WriteByte(s.advanceByte())
		case '}':
			depth--
			if depth == 0 {
				s.advanceByte()
				return sb.String(), nil
			}
			sb.WriteByte(s.advanceByte())
		case '\'', '"':
			quote := b
			sb.WriteByte(s.advanceByte())
			for {
				nb, ok := s.peekByte()
				if !ok {
					return "", newError(start, ErrUnsupportedForm, "unterminated string inside block")
				}
				if nb == '\\' {
					sb.WriteByte(s.advanceByte())
					if _, ok := s.peekByte(); ok {
						sb.WriteByte(s.advanceByte())
					}
					continue
				}
				sb.WriteByte(s.advanceByte())
				if nb == quote {
					break
				}
			}
		default:
			sb.WriteByte(s.advanceByte())
		}
	}
}

func (s *Scanner) scanPunct(start Pos) (Token, error) {
	rest := s.src[s.pos:]

	if op, n := keyword.MatchOperator(rest); n > 0 {
		for i := 0; i < n; i++ {
			s.advanceByte()
		}
		return Token{Kind: Operator, Text: op, Pos: start}, nil
	}

	b := s.advanceByte()
	switch b {
	case '.':
		if nb, ok := s.peekByte(); ok && nb == '/' {
			s.advanceByte()
			return Token{Kind: DotSlash, Text: "./", Pos: start}, nil
		}
		return Token{Kind: Dot, Text: ".", Pos: start}, nil
	case ':':
		if nb, ok := s.peekByte(); ok && nb == ':' {
			s.advanceByte()
			return Token{Kind: DoubleColon, Text: "::", Pos: start}, nil
		}
		return Token{Kind: Colon, Text: ":", Pos: start}, nil
	case ',':
		return Token{Kind: Comma, Text: ",", Pos: start}, nil
	case ';':
		return Token{Kind: Semi, Text: ";", Pos: start}, nil
	case '@':
		return Token{Kind: At, Text: "@", Pos: start}, nil
	case '#':
		return Token{Kind: Pound, Text: "#", Pos: start}, nil
	case '$':
		return Token{Kind: Dollar, Text: "$", Pos: start}, nil
	case '!':
		return Token{Kind: Bang, Text: "!", Pos: start}, nil
	case '=':
		return Token{Kind: Eq, Text: "=", Pos: start}, nil
	case '(':
		return Token{Kind: LParen, Text: "(", Pos: start}, nil
	case ')':
		return Token{Kind: RParen, Text: ")", Pos: start}, nil
	case '[':
		return Token{Kind: LBracket, Text: "[", Pos: start}, nil
	case ']':
		return Token{Kind: RBracket, Text: "]", Pos: start}, nil
	case '{':
		return Token{Kind: LBrace, Text: "{", Pos: start}, nil
	case '}':
		return Token{Kind: RBrace, Text: "}", Pos: start}, nil
	default:
		if keyword.IsSingleCharOperator(b) {
			return Token{Kind: Operator, Text: string(b), Pos: start}, nil
		}
		return Token{}, newError(start, ErrUnsupportedForm, "unexpected character %q", b)
	}
}
