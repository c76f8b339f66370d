package translate

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vippsas/thorn/internal/keyword"
	"github.com/vippsas/thorn/schema"
)

// passthroughSchemaPrefixes are the schema prefixes whose dotted-pair
// references pass straight through as raw text instead of being lowered
// through write_column, per SPEC_FULL.md §4.3.1's resolution of the open
// question in spec.md §9: the passthrough set is exactly PostgreSQL's own
// system-catalog and metadata-view schemas.
var passthroughSchemaPrefixes = []string{"pg_", "information_schema"}

func hasPassthroughPrefix(ident string) bool {
	lower := strings.ToLower(ident)
	for _, prefix := range passthroughSchemaPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// Translator walks one .thorn source file and lowers it into a Program.
// It is the compile-time walker (T) of SPEC_FULL.md §2: it drives the
// Classifier (internal/keyword) to decide token roles and lowers control
// flow and literals into calls against the Emitter (emit.Builder), which
// the generated code executes at call time.
type Translator struct {
	sc      *Scanner
	binds   *bindings
	exports *exportSet
	dynamic bool

	// lastTableIdent is the most recently parsed bare table/CTE-target
	// identifier, consulted by parseAsForm when an `AS Alias` or `AS [NOT]
	// [MATERIALIZED] ( ... )` clause immediately follows it. This is the
	// one place the parser keeps a short-lived "what came before" memory
	// outside the explicit scope value, since the AS clause is parsed as
	// its own top-level form (parseOne sees the `Ident` and the `AS`
	// token on separate iterations) rather than as a single lookahead.
	lastTableIdent string
}

// New returns a Translator positioned at the start of src, identified as
// file for error spans.
func New(file FileRef, src string) *Translator {
	return &Translator{
		sc:      NewScanner(file, src),
		binds:   newBindings(),
		exports: newExportSet(),
	}
}

// Translate lowers the entire source into a Program.
func (t *Translator) Translate() (*Program, error) {
	nodes, err := t.parseUntil(rootScope())
	if err != nil {
		return nil, err
	}
	return &Program{Nodes: nodes, Dynamic: t.dynamic, Exports: t.exports.names()}, nil
}

func (t *Translator) markDynamic() { t.dynamic = true }

// parseUntil parses a sequence of forms until EOF or an unconsumed closing
// delimiter (RParen, RBracket, RBrace) is the next token; the caller of a
// nested parseUntil is responsible for consuming that closing token itself.
func (t *Translator) parseUntil(sc scope) ([]Node, error) {
	var out []Node
	for {
		tok, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		switch tok.Kind {
		case EOF, RParen, RBracket, RBrace:
			return out, nil
		}

		nodes, err := t.parseOne(sc)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
}

// parseOne parses exactly one syntactic form (spec.md §4.3's table) and
// returns the Nodes it lowers to (usually one, sometimes a short run, e.g.
// a table reference followed by its alias).
func (t *Translator) parseOne(sc scope) ([]Node, error) {
	tok, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}

	switch tok.Kind {
	case DashDash:
		t.sc.Next()
		return []Node{WriteStrNode{Str: "$$"}}, nil

	case Int, Float, String, ByteString:
		return t.parseLiteralToken()

	case Pound:
		return t.parseParam()

	case At:
		return t.parseRawInterp()

	case Dollar:
		return t.parsePassthroughBlock()

	case DoubleColon:
		return t.parseCast()

	case LBrace:
		return t.parseLiteralInterp()

	case LParen:
		t.sc.Next()
		inner, err := t.parseUntil(sc.nested())
		if err != nil {
			return nil, err
		}
		if err := t.rejectTrailingComma(inner); err != nil {
			return nil, err
		}
		if _, err := t.expect(RParen); err != nil {
			return nil, err
		}
		return joinDelimited("(", inner, ")"), nil

	case LBracket:
		t.sc.Next()
		inner, err := t.parseUntil(sc.nested())
		if err != nil {
			return nil, err
		}
		if err := t.rejectTrailingComma(inner); err != nil {
			return nil, err
		}
		if _, err := t.expect(RBracket); err != nil {
			return nil, err
		}
		return joinDelimited("[", inner, "]"), nil

	case Comma:
		return t.parseComma(sc)

	case Ident:
		return t.parseIdentForm(sc)

	default:
		// Pass through ordinary punctuation/operators verbatim, matching the
		// macro's final catch-all arm (push whatever token tree comes next).
		t.sc.Next()
		return []Node{WriteStrNode{Str: tok.Text}}, nil
	}
}

func (t *Translator) expect(k Kind) (Token, error) {
	tok, err := t.sc.Next()
	if err != nil {
		return Token{}, err
	}
	if tok.Kind != k {
		return Token{}, newError(tok.Pos, ErrUnsupportedForm, "expected %v, got %q", k, tok.Text)
	}
	return tok, nil
}

func joinDelimited(open string, inner []Node, close string) []Node {
	out := make([]Node, 0, len(inner)+2)
	out = append(out, WriteStrNode{Str: open})
	out = append(out, inner...)
	out = append(out, WriteStrNode{Str: close})
	return out
}

// rejectTrailingComma enforces spec.md §4.3's "trailing `,` before a
// closing `)`, `]`" rule by inspecting the already-lowered node sequence
// for a dangling WriteStrNode{","} at the end.
func (t *Translator) rejectTrailingComma(nodes []Node) error {
	if len(nodes) == 0 {
		return nil
	}
	last, ok := nodes[len(nodes)-1].(WriteStrNode)
	if ok && last.Str == "," {
		return newError(t.sc.currentPos(), ErrTrailingComma, "trailing comma before closing delimiter")
	}
	return nil
}

// parseComma consumes a `,` token, rejecting it outright if it is
// immediately followed by FROM, WHERE or end of input (spec.md §4.3's
// trailing-comma-before-FROM/WHERE rule; the before-`)`/`]` half is enforced
// by rejectTrailingComma at the delimiter's own close).
func (t *Translator) parseComma(sc scope) ([]Node, error) {
	comma, _ := t.sc.Next()
	next, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if next.Kind == EOF {
		return nil, newError(comma.Pos, ErrTrailingComma, "trailing comma at end of input")
	}
	if next.Kind == Ident && strings.ToUpper(next.Text) == kwFROM {
		return nil, newError(comma.Pos, ErrTrailingComma, "trailing comma before FROM")
	}
	if next.Kind == Ident && strings.ToUpper(next.Text) == kwWHERE {
		return nil, newError(comma.Pos, ErrTrailingComma, "trailing comma before WHERE")
	}
	return []Node{WriteStrNode{Str: ","}}, nil
}

func (t *Translator) parseLiteralToken() ([]Node, error) {
	tok, _ := t.sc.Next()
	switch tok.Kind {
	case Int:
		return []Node{WriteLiteralNode{Expr: fmt.Sprintf("emit.IntLiteral(%s)", tok.Text)}}, nil
	case Float:
		return []Node{WriteLiteralNode{Expr: fmt.Sprintf("emit.FloatLiteral(%s)", tok.Text)}}, nil
	case String:
		return []Node{WriteLiteralNode{Expr: fmt.Sprintf("emit.StringLiteral(%q)", tok.Text)}}, nil
	case ByteString:
		return []Node{WriteLiteralNode{Expr: fmt.Sprintf("emit.ByteStringLiteral([]byte(%q))", tok.Text)}}, nil
	default:
		return nil, newError(tok.Pos, ErrUnsupportedForm, "unrecognized literal token %q", tok.Text)
	}
}

// parseParam lowers `#{ expr as Type }`.
func (t *Translator) parseParam() ([]Node, error) {
	pos := t.sc.currentPos()
	t.sc.Next() // '#'
	if _, err := t.expect(LBrace); err != nil {
		return nil, err
	}
	raw, err := t.sc.captureBraceBody()
	if err != nil {
		return nil, err
	}
	expr, typ, ok := splitExprAsType(raw)
	if !ok {
		return nil, newError(pos, ErrUnsupportedForm, "parameter block %q is missing ` as Type`", raw)
	}
	return []Node{ParamNode{Expr: expr, Type: typ}}, nil
}

// splitExprAsType splits "expr as Type" on the last top-level (depth-0,
// outside quotes) " as " occurrence.
func splitExprAsType(raw string) (expr, typ string, ok bool) {
	depth := 0
	inQuote := byte(0)
	lastAs := -1
	for i := 0; i < len(raw); i++ {
		b := raw[i]
		if inQuote != 0 {
			if b == '\\' {
				i++
				continue
			}
			if b == inQuote {
				inQuote = 0
			}
			continue
		}
		switch b {
		case '\'', '"':
			inQuote = b
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		}
		if depth == 0 && i+4 <= len(raw) && raw[i:i+4] == " as " {
			lastAs = i
		}
	}
	if lastAs < 0 {
		return "", "", false
	}
	return strings.TrimSpace(raw[:lastAs]), strings.TrimSpace(raw[lastAs+4:]), true
}

// parseRawInterp lowers `@{ block }`.
func (t *Translator) parseRawInterp() ([]Node, error) {
	t.sc.Next() // '@'
	if _, err := t.expect(LBrace); err != nil {
		return nil, err
	}
	raw, err := t.sc.captureBraceBody()
	if err != nil {
		return nil, err
	}
	t.markDynamic()
	return []Node{RawInterpNode{Expr: raw}}, nil
}

// parseLiteralInterp lowers `{ block }`.
func (t *Translator) parseLiteralInterp() ([]Node, error) {
	t.sc.Next() // '{'
	raw, err := t.sc.captureBraceBody()
	if err != nil {
		return nil, err
	}
	t.markDynamic()
	return []Node{LiteralInterpNode{Expr: raw}}, nil
}

// parsePassthroughBlock lowers `${ block }`.
func (t *Translator) parsePassthroughBlock() ([]Node, error) {
	t.sc.Next() // '$'
	if _, err := t.expect(LBrace); err != nil {
		return nil, err
	}
	raw, err := t.sc.captureBraceBody()
	if err != nil {
		return nil, err
	}
	return []Node{PassthroughNode{Code: raw}}, nil
}

// parseCast lowers `::Ident` and `::{ block }`.
func (t *Translator) parseCast() ([]Node, error) {
	t.sc.Next() // '::'
	tok, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if tok.Kind == LBrace {
		t.sc.Next()
		raw, err := t.sc.captureBraceBody()
		if err != nil {
			return nil, err
		}
		t.markDynamic()
		return []Node{CastDynamicNode{Expr: raw}}, nil
	}
	ident, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	return []Node{CastNode{TypeName: ident.Text}}, nil
}

// parseIdentForm handles every form whose first token is a bare
// identifier: keyword passthrough, table references, Ident.Ident /
// Ident./Ident, Ident AS ..., INSERT/UPDATE/DO-UPDATE, named column lists,
// function calls, AS @Name / AS Ident.Col shortcuts, host control flow
// (if/match/for/struct/use/let/const), and passthrough identifiers.
func (t *Translator) parseIdentForm(sc scope) ([]Node, error) {
	tok, _ := t.sc.Next()
	upper := strings.ToUpper(tok.Text)

	switch tok.Text {
	case hostIF:
		return t.parseIf(sc)
	case hostMATCH:
		return t.parseMatch(sc)
	case hostFOR:
		return t.parseFor(sc)
	case hostSTRUCT:
		return t.parsePassthroughStatement(tok)
	case hostUSE, hostLET, hostCONST:
		return t.parsePassthroughStatement(tok)
	case "true", "false":
		return []Node{WriteStrNode{Str: upper}}, nil
	}

	switch upper {
	case kwAS:
		return t.parseAsForm(sc, tok)
	case kwINSERT:
		return t.parseInsert(sc)
	case kwUPDATE:
		return t.parseUpdate(sc)
	case kwDO:
		return t.parseDoUpdate(sc)
	case kwON:
		return t.parseOnClause(sc)
	}

	if keyword.IsKeyword(upper) {
		return []Node{WriteStrNode{Str: upper}}, nil
	}

	return t.parseIdentReference(sc, tok)
}

// parseIdentReference handles a non-keyword bare identifier: the table
// reference / column / alias / CTE / named-column-list / function-call
// family of forms, all of which start by peeking what follows the
// identifier.
func (t *Translator) parseIdentReference(sc scope, ident Token) ([]Node, error) {
	next, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}

	switch next.Kind {
	case Dot:
		return t.parseDottedColumn(ident)
	case DotSlash:
		t.sc.Next()
		col, err := t.expect(Ident)
		if err != nil {
			return nil, err
		}
		return []Node{WriteColumnNameNode{Col: col.Text}}, nil
	case LParen:
		// .func(args) is only reached via the Dot branch above with a
		// function-call identifier on the right; a bare `Ident (` at
		// statement position is a named column list declaring a CTE or
		// INSERT target, e.g. `Ident ( col1, col2 ) AS ...`.
		return t.parseNamedColumnList(sc, ident)
	default:
		t.binds.declare(ident.Text, tableBinding{declaredIdent: ident.Text, effectiveName: fmt.Sprintf("%s.Relation()", ident.Text)})
		t.lastTableIdent = ident.Text
		return []Node{WriteTableNode{Ident: ident.Text}}, nil
	}
}

// parseDottedColumn lowers `Ident.Ident` (qualified column) and
// `Ident.func(args)` (function call), and passes through verbatim when the
// left identifier carries a recognized passthrough schema prefix.
func (t *Translator) parseDottedColumn(ident Token) ([]Node, error) {
	t.sc.Next() // '.'
	right, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}

	if hasPassthroughPrefix(ident.Text) {
		return []Node{WriteStrNode{Str: ident.Text + "." + right.Text}}, nil
	}

	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == LParen {
		return t.parseFuncCall(ident, right)
	}

	binding, ok := t.binds.lookup(ident.Text)
	effective := fmt.Sprintf("%s.Relation()", ident.Text)
	if ok {
		effective = binding.effectiveName
	}
	colNode := []Node{WriteColumnNode{Ident: ident.Text, Col: right.Text, Effective: effective}}

	return t.maybeAppendColumnShortcutExport(colNode, ident.Text, right.Text)
}

// maybeAppendColumnShortcutExport implements the `Ident.Col AS @_`
// shortcut: if the column reference just lowered is immediately followed
// by `AS @_`, it emits the `AS "ident_col_snake"` suffix and registers the
// export under the concatenated name (spec.md §4.3, §4.6's boundary case).
func (t *Translator) maybeAppendColumnShortcutExport(colNode []Node, ident, col string) ([]Node, error) {
	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if !(peek.Kind == Ident && strings.ToUpper(peek.Text) == kwAS) {
		return colNode, nil
	}

	save := *t.sc
	t.sc.Next() // AS
	atTok, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if atTok.Kind != At {
		*t.sc = save
		return colNode, nil
	}
	t.sc.Next() // @
	underscore, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if !(underscore.Kind == Ident && underscore.Text == "_") {
		*t.sc = save
		return colNode, nil
	}
	t.sc.Next() // _

	name := exportNameFromColumnShortcut(ident, col)
	if _, err := t.exports.add(underscore.Pos, name); err != nil {
		return nil, err
	}
	snake := schema.ToSnakeCase(name)
	return append(colNode,
		WriteStrNode{Str: "AS"},
		WriteStrNode{Str: `"` + snake + `"`},
		ExportNode{Name: name},
	), nil
}

// parseFuncCall lowers `Ident.func(args)`. The resulting FuncCallNode
// carries the call site's argument count and position; cmd/thorngen
// statically resolves the named descriptor's declared arity from the
// target package's source where it can (see resolveArity in
// cmd/thorngen/cmd) and rejects a mismatch before generating any code,
// raising ErrArityMismatch through NewArityMismatchError — the compile-time
// half of spec.md §4.3's "verifies ... that the argument count matches the
// declared arity". Codegen also emits a call to `<Ident>.CheckArity(N)` so a
// descriptor this package can't statically resolve is still checked at
// runtime.
func (t *Translator) parseFuncCall(recv, fn Token) ([]Node, error) {
	t.sc.Next() // '('
	var args [][]Node
	for {
		peek, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if peek.Kind == RParen {
			break
		}
		argScope := scope{}.nested()
		argNodes, err := t.parseUntilComma(argScope)
		if err != nil {
			return nil, err
		}
		args = append(args, argNodes)
		peek, err = t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if peek.Kind == Comma {
			comma, _ := t.sc.Next()
			after, err := t.sc.Peek()
			if err != nil {
				return nil, err
			}
			if after.Kind == RParen {
				return nil, newError(comma.Pos, ErrTrailingComma, "trailing comma in argument list")
			}
			continue
		}
		break
	}
	if _, err := t.expect(RParen); err != nil {
		return nil, err
	}

	out := []Node{
		FuncCallNode{Ident: recv.Text + "." + fn.Text, Arity: len(args), Pos: recv.Pos},
		WriteStrNode{Str: "("},
	}
	for i, a := range args {
		if i > 0 {
			out = append(out, WriteStrNode{Str: ","})
		}
		out = append(out, a...)
	}
	out = append(out, WriteStrNode{Str: ")"})
	return out, nil
}

// parseUntilComma parses forms until a top-level comma or RParen, used for
// function-call argument lists where a bare comma separates arguments
// rather than lowering to a literal "," token via parseComma's FROM/EOF
// trailing-comma checks (those don't apply inside an argument list).
func (t *Translator) parseUntilComma(sc scope) ([]Node, error) {
	var out []Node
	for {
		tok, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if tok.Kind == Comma || tok.Kind == RParen || tok.Kind == EOF {
			return out, nil
		}
		nodes, err := t.parseOne(sc)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
}

// parseNamedColumnList lowers `Ident ( col1, col2 ) AS ...`: a CTE or
// INSERT target's column list. Trailing commas are rejected; columns must
// be bare names (enforced implicitly — only Ident tokens are accepted).
func (t *Translator) parseNamedColumnList(sc scope, ident Token) ([]Node, error) {
	t.sc.Next() // '('
	cols, err := t.parseBareColumnList()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(RParen); err != nil {
		return nil, err
	}

	out := []Node{WriteTableNode{Ident: ident.Text}, WriteStrNode{Str: "("}}
	for i, c := range cols {
		if i > 0 {
			out = append(out, WriteStrNode{Str: ","})
		}
		out = append(out, WriteColumnNameNode{Col: c})
	}
	out = append(out, WriteStrNode{Str: ")"})
	t.lastTableIdent = ident.Text

	asNodes, err := t.parseOptionalAsClause(sc, ident)
	if err != nil {
		return nil, err
	}
	return append(out, asNodes...), nil
}

// parseBareColumnList parses a comma-separated list of bare identifiers up
// to (not including) the closing `)`, rejecting table-qualified names
// (spec.md §7, "INSERT/UPDATE column list using table-qualified names")
// and trailing commas.
func (t *Translator) parseBareColumnList() ([]string, error) {
	var cols []string
	for {
		peek, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if peek.Kind == RParen {
			break
		}
		col, err := t.expect(Ident)
		if err != nil {
			return nil, err
		}
		dotPeek, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if dotPeek.Kind == Dot {
			return nil, newError(dotPeek.Pos, ErrQualifiedColumnInList, "column list entries must be bare names, got %q.%q", col.Text, "...")
		}
		cols = append(cols, col.Text)

		peek, err = t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if peek.Kind == Comma {
			comma, _ := t.sc.Next()
			after, err := t.sc.Peek()
			if err != nil {
				return nil, err
			}
			if after.Kind == RParen {
				return nil, newError(comma.Pos, ErrTrailingComma, "trailing comma in column list")
			}
			continue
		}
		break
	}
	return cols, nil
}

// parseOptionalAsClause consumes an `AS Alias` or `AS [NOT] [MATERIALIZED]
// ( ... )` CTE body following a table/column-list form, if present.
func (t *Translator) parseOptionalAsClause(sc scope, ident Token) ([]Node, error) {
	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if !(peek.Kind == Ident && strings.ToUpper(peek.Text) == kwAS) {
		return nil, nil
	}
	t.sc.Next() // AS
	return t.parseAsForm(sc, Token{Kind: Ident, Text: kwAS})
}

// parseAsForm dispatches the several meanings of a leading `AS` token:
// `AS @Name` (export), `AS Ident` (table alias), and `AS [NOT]
// [MATERIALIZED] ( ... )` (CTE body). asTok is the AS token that was
// already consumed.
func (t *Translator) parseAsForm(sc scope, asTok Token) ([]Node, error) {
	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}

	if peek.Kind == At {
		t.sc.Next()
		nameTok, err := t.expect(Ident)
		if err != nil {
			return nil, err
		}
		idx, err := t.exports.add(nameTok.Pos, nameTok.Text)
		if err != nil {
			return nil, err
		}
		if sc.inBranch {
			return nil, newError(nameTok.Pos, ErrExportInBranch, "export %q not allowed inside a branch, loop, or match arm", nameTok.Text)
		}
		if !sc.topLevel {
			return nil, newError(nameTok.Pos, ErrExportInBranch, "export %q only allowed at the top emission scope", nameTok.Text)
		}
		snake := schema.ToSnakeCase(nameTok.Text)
		_ = idx
		return []Node{
			WriteStrNode{Str: "AS"},
			WriteStrNode{Str: `"` + snake + `"`},
			ExportNode{Name: nameTok.Text},
		}, nil
	}

	isCTEKeyword := peek.Kind == Ident && (strings.ToUpper(peek.Text) == kwNOT || strings.ToUpper(peek.Text) == kwMATERIALIZED)
	if isCTEKeyword || peek.Kind == LParen {
		return t.parseCTEBody(sc)
	}

	if peek.Kind == Ident {
		// Lookahead for the `AS Name.Col` output-column form: an identifier
		// immediately followed by `.Ident`, distinct from the plain `AS
		// Alias` table-alias form below.
		save := *t.sc
		nameTok, _ := t.sc.Next()
		dotPeek, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if dotPeek.Kind == Dot {
			t.sc.Next() // '.'
			colTok, err := t.expect(Ident)
			if err != nil {
				return nil, err
			}
			if sc.currentCTEName != "" && nameTok.Text != sc.currentCTEName {
				return nil, newError(nameTok.Pos, ErrCTENameMismatch,
					"AS %s.%s inside CTE %q must reference the current CTE name",
					nameTok.Text, colTok.Text, sc.currentCTEName)
			}
			return []Node{WriteStrNode{Str: "AS"}, WriteColumnNameNode{Col: colTok.Text}}, nil
		}
		*t.sc = save

		aliasTok, _ := t.sc.Next()
		snake := schema.ToSnakeCase(aliasTok.Text)
		quoted := `"` + snake + `"`
		t.binds.declare(aliasTok.Text, tableBinding{declaredIdent: aliasTok.Text, effectiveName: quoted})
		t.lastTableIdent = aliasTok.Text
		return []Node{WriteStrNode{Str: "AS"}, WriteStrNode{Str: quoted}}, nil
	}

	return nil, newError(peek.Pos, ErrUnexpectedAS, "unexpected right-hand side of AS: %q", peek.Text)
}

// parseCTEBody lowers `AS [NOT] [MATERIALIZED] ( ... )`. The CTE name
// registered for the body is t.lastTableIdent — the identifier the caller
// most recently parsed a bare table reference or named column list for —
// consulted here rather than threaded as a parameter, since an `AS` clause
// is always parsed as its own top-level form one parseOne iteration after
// the identifier it attaches to (see parseIdentReference's default case).
func (t *Translator) parseCTEBody(sc scope) ([]Node, error) {
	var out []Node
	peek, _ := t.sc.Peek()
	if peek.Kind == Ident && strings.ToUpper(peek.Text) == kwNOT {
		t.sc.Next()
		out = append(out, WriteStrNode{Str: "NOT"})
		peek, _ = t.sc.Peek()
	}
	if peek.Kind == Ident && strings.ToUpper(peek.Text) == kwMATERIALIZED {
		t.sc.Next()
		out = append(out, WriteStrNode{Str: "MATERIALIZED"})
	}
	if _, err := t.expect(LParen); err != nil {
		return nil, err
	}
	out = append(out, WriteStrNode{Str: "("})

	cteName := t.lastTableIdent
	t.binds.declare(cteName, tableBinding{declaredIdent: cteName, effectiveName: `"` + schema.ToSnakeCase(cteName) + `"`, isCTE: true})

	inner, err := t.parseUntil(sc.withCTE(cteName))
	if err != nil {
		return nil, err
	}
	out = append(out, inner...)

	if _, err := t.expect(RParen); err != nil {
		return nil, err
	}
	out = append(out, WriteStrNode{Str: ")"})
	return out, nil
}

// parseInsert lowers `INSERT INTO Ident [AS Alias] ( col1, ... )`.
func (t *Translator) parseInsert(sc scope) ([]Node, error) {
	out := []Node{WriteStrNode{Str: "INSERT"}}
	intoTok, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	if strings.ToUpper(intoTok.Text) != kwINTO {
		return nil, newError(intoTok.Pos, ErrUnsupportedForm, "expected INTO after INSERT, got %q", intoTok.Text)
	}
	out = append(out, WriteStrNode{Str: "INTO"})

	identTok, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	t.binds.declare(identTok.Text, tableBinding{declaredIdent: identTok.Text, effectiveName: fmt.Sprintf("%s.Relation()", identTok.Text)})
	t.lastTableIdent = identTok.Text
	out = append(out, WriteTableNode{Ident: identTok.Text})

	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == Ident && strings.ToUpper(peek.Text) == kwAS {
		t.sc.Next()
		asNodes, err := t.parseAsForm(sc, Token{})
		if err != nil {
			return nil, err
		}
		out = append(out, asNodes...)
	}

	if _, err := t.expect(LParen); err != nil {
		return nil, err
	}
	cols, err := t.parseBareColumnList()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(RParen); err != nil {
		return nil, err
	}
	out = append(out, WriteStrNode{Str: "("})
	for i, c := range cols {
		if i > 0 {
			out = append(out, WriteStrNode{Str: ","})
		}
		out = append(out, WriteColumnNameNode{Col: c})
	}
	out = append(out, WriteStrNode{Str: ")"})
	return out, nil
}

// parseUpdate lowers `UPDATE [ONLY] Ident [AS Alias] SET ( col, ... ) ...`,
// rejecting the bare `UPDATE T SET col = expr` single-assignment form at
// compile time (spec.md §7).
func (t *Translator) parseUpdate(sc scope) ([]Node, error) {
	out := []Node{WriteStrNode{Str: "UPDATE"}}

	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == Ident && strings.ToUpper(peek.Text) == kwONLY {
		t.sc.Next()
		out = append(out, WriteStrNode{Str: "ONLY"})
	}

	identTok, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	t.binds.declare(identTok.Text, tableBinding{declaredIdent: identTok.Text, effectiveName: fmt.Sprintf("%s.Relation()", identTok.Text)})
	t.lastTableIdent = identTok.Text
	out = append(out, WriteTableNode{Ident: identTok.Text})

	peek, err = t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == Ident && strings.ToUpper(peek.Text) == kwAS {
		t.sc.Next()
		asNodes, err := t.parseAsForm(sc, Token{})
		if err != nil {
			return nil, err
		}
		out = append(out, asNodes...)
	}

	setTok, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	if strings.ToUpper(setTok.Text) != kwSET {
		return nil, newError(setTok.Pos, ErrUnsupportedForm, "expected SET after UPDATE target")
	}
	out = append(out, WriteStrNode{Str: "SET"})

	peek, err = t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind != LParen {
		return nil, newError(peek.Pos, ErrBareUpdateAssignment, "UPDATE ... SET col = expr is not supported, use the multi-column form")
	}
	t.sc.Next()
	cols, err := t.parseBareColumnList()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(RParen); err != nil {
		return nil, err
	}
	out = append(out, WriteStrNode{Str: "("})
	for i, c := range cols {
		if i > 0 {
			out = append(out, WriteStrNode{Str: ","})
		}
		out = append(out, WriteColumnNameNode{Col: c})
	}
	out = append(out, WriteStrNode{Str: ")"})

	return out, nil
}

// parseOnClause lowers the `ON CONFLICT ( col1, col2 )` target-column list
// of an INSERT's conflict clause — the one other place a parenthesized bare
// column list appears outside INSERT/UPDATE/DO-UPDATE's own column lists.
// Any other use of `ON` (a JOIN condition, `ON CONSTRAINT name`) passes
// through as a plain keyword token and its following expression is parsed
// generically, since only the literal `ON CONFLICT (` shape needs bare,
// not dotted, column names.
func (t *Translator) parseOnClause(sc scope) ([]Node, error) {
	out := []Node{WriteStrNode{Str: kwON}}

	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if !(peek.Kind == Ident && strings.ToUpper(peek.Text) == kwCONFLICT) {
		return out, nil
	}
	t.sc.Next()
	out = append(out, WriteStrNode{Str: kwCONFLICT})

	peek, err = t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind != LParen {
		return out, nil
	}
	t.sc.Next()
	cols, err := t.parseBareColumnList()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(RParen); err != nil {
		return nil, err
	}
	out = append(out, WriteStrNode{Str: "("})
	for i, c := range cols {
		if i > 0 {
			out = append(out, WriteStrNode{Str: ","})
		}
		out = append(out, WriteColumnNameNode{Col: c})
	}
	out = append(out, WriteStrNode{Str: ")"})
	return out, nil
}

// parseDoUpdate lowers the `DO UPDATE Ident SET ( col1, col2 )` conflict
// clause, rejecting a bare `DO UPDATE SET` with no table name.
func (t *Translator) parseDoUpdate(sc scope) ([]Node, error) {
	out := []Node{WriteStrNode{Str: "DO"}}

	updateTok, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	if strings.ToUpper(updateTok.Text) != kwUPDATE {
		return nil, newError(updateTok.Pos, ErrUnsupportedForm, "expected UPDATE after DO")
	}
	out = append(out, WriteStrNode{Str: "UPDATE"})

	identTok, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if identTok.Kind != Ident || strings.ToUpper(identTok.Text) == kwSET {
		return nil, newError(identTok.Pos, ErrBareDoUpdate, "DO UPDATE SET requires a table name")
	}
	t.sc.Next()

	setTok, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	if strings.ToUpper(setTok.Text) != kwSET {
		return nil, newError(setTok.Pos, ErrUnsupportedForm, "expected SET after DO UPDATE target")
	}
	out = append(out, WriteStrNode{Str: "SET"})

	if _, err := t.expect(LParen); err != nil {
		return nil, err
	}
	cols, err := t.parseBareColumnList()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(RParen); err != nil {
		return nil, err
	}
	out = append(out, WriteStrNode{Str: "("})
	for i, c := range cols {
		if i > 0 {
			out = append(out, WriteStrNode{Str: ","})
		}
		out = append(out, WriteColumnNameNode{Col: c})
	}
	out = append(out, WriteStrNode{Str: ")"})
	return out, nil
}

// parsePassthroughStatement captures a `struct`/`use`/`let`/`const`
// statement verbatim up to its terminating `;`, passed through unchanged
// into the generated function body (spec.md §4.3).
func (t *Translator) parsePassthroughStatement(lead Token) ([]Node, error) {
	var sb strings.Builder
	sb.WriteString(lead.Text)
	for {
		tok, err := t.sc.Next()
		if err != nil {
			return nil, err
		}
		if tok.Kind == Semi || tok.Kind == EOF {
			break
		}
		sb.WriteString(" ")
		sb.WriteString(tok.Text)
	}
	return []Node{PassthroughNode{Code: sb.String()}}, nil
}

// parseIf lowers `if cond { ... } [else if ... { ... }] [else { ... }]`.
func (t *Translator) parseIf(sc scope) ([]Node, error) {
	t.markDynamic()
	branchSc := sc.branch()

	cond, err := t.captureHostExprUntilBrace()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(LBrace); err != nil {
		return nil, err
	}
	then, err := t.parseUntil(branchSc)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(RBrace); err != nil {
		return nil, err
	}

	node := IfNode{Cond: cond, Then: then}

	for {
		peek, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if !(peek.Kind == Ident && peek.Text == hostELSE) {
			break
		}
		t.sc.Next()
		peek2, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if peek2.Kind == Ident && peek2.Text == hostIF {
			t.sc.Next()
			elifCond, err := t.captureHostExprUntilBrace()
			if err != nil {
				return nil, err
			}
			if _, err := t.expect(LBrace); err != nil {
				return nil, err
			}
			body, err := t.parseUntil(branchSc)
			if err != nil {
				return nil, err
			}
			if _, err := t.expect(RBrace); err != nil {
				return nil, err
			}
			node.ElseIfs = append(node.ElseIfs, ElseIf{Cond: elifCond, Body: body})
			continue
		}
		if _, err := t.expect(LBrace); err != nil {
			return nil, err
		}
		body, err := t.parseUntil(branchSc)
		if err != nil {
			return nil, err
		}
		if _, err := t.expect(RBrace); err != nil {
			return nil, err
		}
		node.Else = body
		node.HasElse = true
		break
	}

	return []Node{node}, nil
}

// parseMatch lowers `match expr { pat [if guard] => { ... }, ... }`.
func (t *Translator) parseMatch(sc scope) ([]Node, error) {
	t.markDynamic()
	branchSc := sc.branch()

	expr, err := t.captureHostExprUntilBrace()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(LBrace); err != nil {
		return nil, err
	}

	var arms []MatchArm
	for {
		peek, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if peek.Kind == RBrace {
			break
		}
		pattern, guard, err := t.captureMatchArmHead()
		if err != nil {
			return nil, err
		}
		if _, err := t.expect(LBrace); err != nil {
			return nil, err
		}
		body, err := t.parseUntil(branchSc)
		if err != nil {
			return nil, err
		}
		if _, err := t.expect(RBrace); err != nil {
			return nil, err
		}
		arms = append(arms, MatchArm{Pattern: pattern, Guard: guard, Body: body})

		peek, err = t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if peek.Kind == Comma {
			t.sc.Next()
		}
	}
	if _, err := t.expect(RBrace); err != nil {
		return nil, err
	}

	return []Node{MatchNode{Expr: expr, Arms: arms}}, nil
}

// parseFor lowers `for [join[(sep)]] pat in expr { ... }`. A loop label is
// not parsed: the ForNode's Label is always empty.
func (t *Translator) parseFor(sc scope) ([]Node, error) {
	t.markDynamic()
	branchSc := sc.branch()

	var label string
	var hasJoin bool
	var joinSep string

	peek, err := t.sc.Peek()
	if err != nil {
		return nil, err
	}
	if peek.Kind == Ident && peek.Text == hostJOIN {
		t.sc.Next()
		hasJoin = true
		joinSep = `","`
		afterJoin, err := t.sc.Peek()
		if err != nil {
			return nil, err
		}
		if afterJoin.Kind == LParen {
			t.sc.Next()
			raw, err := t.captureHostExprUntilParenClose()
			if err != nil {
				return nil, err
			}
			joinSep = raw
		}
	}

	pattern, err := t.captureIdentChain(hostIN)
	if err != nil {
		return nil, err
	}
	inTok, err := t.expect(Ident)
	if err != nil {
		return nil, err
	}
	if inTok.Text != hostIN {
		return nil, newError(inTok.Pos, ErrUnsupportedForm, "expected `in` in for loop")
	}
	iter, err := t.captureHostExprUntilBrace()
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(LBrace); err != nil {
		return nil, err
	}
	body, err := t.parseUntil(branchSc)
	if err != nil {
		return nil, err
	}
	if _, err := t.expect(RBrace); err != nil {
		return nil, err
	}

	return []Node{ForNode{
		Label:   label,
		JoinSep: joinSep,
		HasJoin: hasJoin,
		Pattern: pattern,
		Iter:    iter,
		Body:    body,
	}}, nil
}

// tokenSource reconstructs a token's original Go-source spelling for
// splicing into a captured host expression. Most kinds round-trip through
// Text unchanged, but the scanner normalizes String tokens to their decoded
// content (quotes stripped, escapes resolved) for SQL-literal lowering
// elsewhere in this package — reassembling a host expression like
// `join("AND")` needs the quotes back, or the generated code references an
// undefined bare identifier instead of a string constant.
func tokenSource(tok Token) string {
	switch tok.Kind {
	case String:
		return strconv.Quote(tok.Text)
	case ByteString:
		return strconv.Quote(tok.Text)
	default:
		return tok.Text
	}
}

// captureHostExprUntilBrace reads raw tokens (re-joined with single
// spaces) up to, but not including, the next top-level `{`. Used for `if`
// conditions, `match` scrutinees, and `for` iterables, which are host Go
// expressions this package does not need to understand structurally.
func (t *Translator) captureHostExprUntilBrace() (string, error) {
	var sb strings.Builder
	for {
		peek, err := t.sc.Peek()
		if err != nil {
			return "", err
		}
		if peek.Kind == LBrace || peek.Kind == EOF {
			return strings.TrimSpace(sb.String()), nil
		}
		tok, _ := t.sc.Next()
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(tokenSource(tok))
	}
}

// captureHostExprUntilParenClose reads raw tokens up to the matching `)`,
// consuming it, for the `join(sep)` separator expression.
func (t *Translator) captureHostExprUntilParenClose() (string, error) {
	depth := 1
	var sb strings.Builder
	for {
		tok, err := t.sc.Next()
		if err != nil {
			return "", err
		}
		if tok.Kind == LParen {
			depth++
		}
		if tok.Kind == RParen {
			depth--
			if depth == 0 {
				return strings.TrimSpace(sb.String()), nil
			}
		}
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(tokenSource(tok))
	}
}

// captureIdentChain reads a host binding pattern (an identifier, possibly
// with leading `&`/`*`/tuple punctuation) up to the given stop identifier.
func (t *Translator) captureIdentChain(stop string) (string, error) {
	var sb strings.Builder
	for {
		peek, err := t.sc.Peek()
		if err != nil {
			return "", err
		}
		if peek.Kind == Ident && peek.Text == stop {
			return strings.TrimSpace(sb.String()), nil
		}
		if peek.Kind == EOF {
			return "", newError(peek.Pos, ErrUnsupportedForm, "unexpected end of input in for-loop pattern")
		}
		tok, _ := t.sc.Next()
		sb.WriteString(tokenSource(tok))
	}
}

// captureMatchArmHead reads a match arm's pattern and optional `if guard`,
// up to (not including) the arm's `{`. The `=>` between the head and the
// `{ ... }` body scans as `=` then `>`; it is dropped from the end of the
// returned pattern or guard.
func (t *Translator) captureMatchArmHead() (pattern, guard string, err error) {
	trimArrow := func(s string) string {
		s = strings.TrimSpace(s)
		for _, arrow := range []string{"= >", "=>"} {
			if strings.HasSuffix(s, arrow) {
				return strings.TrimSpace(strings.TrimSuffix(s, arrow))
			}
		}
		return s
	}
	var sb strings.Builder
	for {
		peek, perr := t.sc.Peek()
		if perr != nil {
			return "", "", perr
		}
		if peek.Kind == LBrace {
			break
		}
		if peek.Kind == Ident && peek.Text == hostIF {
			t.sc.Next()
			g, gerr := t.captureHostExprUntilBrace()
			if gerr != nil {
				return "", "", gerr
			}
			return strings.TrimSpace(sb.String()), trimArrow(g), nil
		}
		tok, _ := t.sc.Next()
		if sb.Len() > 0 {
			sb.WriteString(" ")
		}
		sb.WriteString(tokenSource(tok))
	}
	return trimArrow(sb.String()), "", nil
}
