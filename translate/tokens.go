package translate

// Kind enumerates the lexical categories the scanner produces. Thorn's
// source stream interleaves SQL-shaped tokens with host Go syntax, so the
// set is a superset of what a pure SQL scanner would need — it also has to
// recognize enough of Go's own punctuation (`{`, `}`, `!`, `::` is not Go
// but is reserved here for casts) to hand whole statements to the
// passthrough path untouched.
type Kind int

const (
	EOF Kind = iota
	Ident
	Int
	Float
	String
	ByteString
	Byte
	Dot        // .
	DotSlash   // ./
	Comma      // ,
	Colon      // :
	DoubleColon // ::
	At         // @
	Pound      // #
	Dollar     // $
	Bang       // !
	LParen
	RParen
	LBracket
	RBracket
	LBrace
	RBrace
	DashDash // the two-dash dollar-quote marker, not a SQL comment here
	Operator // a multi- or single-character SQL operator, per internal/keyword
	Semi
	Eq // =, passed through to the SQL text
)

// Token is one lexical unit together with its source position.
type Token struct {
	Kind Kind
	Text string
	Pos  Pos
}

func (t Token) String() string {
	return t.Text
}

// SQL-grammar keywords the parser dispatches on directly (not through
// internal/keyword's reserved-word set, which governs classification of
// identifier *values*, not grammar dispatch). Matched case-sensitively
// against an identifier's canonical uppercase form, mirroring the
// teacher's `kw.INTO`/`kw.FROM`/`kw.AS` custom-keyword idiom from the
// original macro.
const (
	kwAS           = "AS"
	kwINSERT       = "INSERT"
	kwINTO         = "INTO"
	kwUPDATE       = "UPDATE"
	kwONLY         = "ONLY"
	kwSET          = "SET"
	kwDO           = "DO"
	kwNOT          = "NOT"
	kwMATERIALIZED = "MATERIALIZED"
	kwFROM         = "FROM"
	kwWHERE        = "WHERE"
	kwON           = "ON"
	kwCONFLICT     = "CONFLICT"
)

// Host-language control-flow keywords, lowercase, matched against the raw
// identifier spelling exactly as the embedding Go-like syntax spells them
// (the spec's own grammar table writes these lowercase: `if`, `match`,
// `for`, `join`, `in`).
const (
	hostIF     = "if"
	hostELSE   = "else"
	hostMATCH  = "match"
	hostFOR    = "for"
	hostJOIN   = "join"
	hostIN     = "in"
	hostSTRUCT = "struct"
	hostUSE    = "use"
	hostLET    = "let"
	hostCONST  = "const"
)
