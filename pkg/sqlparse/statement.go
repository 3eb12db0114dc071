package sqlparse

import "strings"

// Dialect names the SQL dialect used for parsing. Only DuckDB is
// currently supported; the value is carried so callers do not hardcode
// dialect assumptions.
type Dialect string

// DialectDuckDB is the default and only supported dialect.
const DialectDuckDB Dialect = "duckdb"

// StmtKind classifies a statement for governing-statement selection.
type StmtKind int

const (
	// StmtOther covers setup statements: DDL, SET, ATTACH, pragmas.
	StmtOther StmtKind = iota
	// StmtSelect covers result-producing statements: SELECT, WITH,
	// FROM-first queries, VALUES, PIVOT and UNPIVOT forms.
	StmtSelect
	// StmtMutating covers INSERT, UPDATE, DELETE, MERGE and COPY.
	StmtMutating
)

// Statement is one statement split out of a unit's query text.
type Statement struct {
	Text   string
	Kind   StmtKind
	Tokens []Token
}

// SplitStatements tokenizes sql and splits it into statements on
// semicolons. Statement text preserves the original spelling (minus the
// terminating semicolon). Returns a ParseError if the input cannot be
// tokenized or contains no statements.
func SplitStatements(sql string) ([]Statement, error) {
	lex := NewLexer(sql)

	var stmts []Statement
	var cur []Token
	start := -1

	flush := func(end int) {
		if len(cur) == 0 {
			return
		}
		text := strings.TrimSpace(sql[start:end])
		stmts = append(stmts, Statement{
			Text:   text,
			Kind:   classify(cur),
			Tokens: cur,
		})
		cur = nil
		start = -1
	}

	for {
		tok := lex.NextToken()
		switch tok.Type {
		case TOKEN_EOF:
			flush(len(sql))
			if len(stmts) == 0 {
				return nil, &ParseError{Message: "no statements found"}
			}
			return stmts, nil
		case TOKEN_ILLEGAL:
			return nil, &ParseError{Pos: tok.Pos, Message: tok.Literal}
		case TOKEN_SEMICOLON:
			flush(tok.Pos.Offset)
		default:
			if start < 0 {
				start = tok.Pos.Offset
			}
			cur = append(cur, tok)
		}
	}
}

// classify determines a statement's kind from its leading token.
func classify(toks []Token) StmtKind {
	if len(toks) == 0 {
		return StmtOther
	}
	switch toks[0].Type {
	case TOKEN_SELECT, TOKEN_WITH, TOKEN_FROM, TOKEN_VALUES, TOKEN_PIVOT, TOKEN_UNPIVOT, TOKEN_LPAREN:
		return StmtSelect
	case TOKEN_INSERT, TOKEN_UPDATE, TOKEN_DELETE, TOKEN_MERGE, TOKEN_COPY:
		return StmtMutating
	default:
		return StmtOther
	}
}

// Governing picks the single governing (materializable) statement out
// of a unit's statement list, per these rules:
//
//   - more than one SELECT-shaped statement is ambiguous;
//   - exactly one mutating statement alongside other statements governs,
//     the rest are setup;
//   - otherwise the single SELECT-shaped statement governs.
//
// Setup statements are returned in their original order and must be
// executed verbatim before the governing statement is materialized.
func Governing(stmts []Statement) (Statement, []Statement, error) {
	if len(stmts) == 0 {
		return Statement{}, nil, &ParseError{Message: "no statements found"}
	}

	var selects, mutating []int
	for i, s := range stmts {
		switch s.Kind {
		case StmtSelect:
			selects = append(selects, i)
		case StmtMutating:
			mutating = append(mutating, i)
		}
	}

	if len(selects) > 1 {
		return Statement{}, nil, &AmbiguousResultError{Count: len(selects)}
	}

	gov := -1
	switch {
	case len(mutating) == 1 && len(stmts) > 1:
		gov = mutating[0]
	case len(selects) == 1:
		gov = selects[0]
	case len(stmts) == 1:
		gov = 0
	default:
		return Statement{}, nil, &ParseError{Message: "no result-producing statement found"}
	}

	setup := make([]Statement, 0, len(stmts)-1)
	for i, s := range stmts {
		if i != gov {
			setup = append(setup, s)
		}
	}
	return stmts[gov], setup, nil
}
