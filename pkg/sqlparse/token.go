package sqlparse

import "fmt"

// TokenType represents the type of a lexical token.
type TokenType int

//nolint:revive // TOKEN_* names are intentionally ALL_CAPS for SQL token conventions
const (
	// TOKEN_EOF represents end of input.
	TOKEN_EOF TokenType = iota
	// TOKEN_ILLEGAL represents an illegal/unrecognized token.
	TOKEN_ILLEGAL

	// TOKEN_IDENT represents an identifier (bare or double-quoted).
	TOKEN_IDENT
	// TOKEN_NUMBER represents a numeric literal.
	TOKEN_NUMBER
	// TOKEN_STRING represents a single-quoted string literal.
	TOKEN_STRING
	// TOKEN_OP represents an operator we tokenize but do not interpret.
	TOKEN_OP

	TOKEN_DOT       // .
	TOKEN_COMMA     // ,
	TOKEN_LPAREN    // (
	TOKEN_RPAREN    // )
	TOKEN_SEMICOLON // ;
	TOKEN_STAR      // *

	// Keywords (alphabetical)
	TOKEN_ALL
	TOKEN_ANTI
	TOKEN_AS
	TOKEN_ASOF
	TOKEN_ATTACH
	TOKEN_BY
	TOKEN_COPY
	TOKEN_CREATE
	TOKEN_CROSS
	TOKEN_DELETE
	TOKEN_DROP
	TOKEN_EXCEPT
	TOKEN_EXISTS
	TOKEN_FROM
	TOKEN_FULL
	TOKEN_GROUP
	TOKEN_HAVING
	TOKEN_IN
	TOKEN_INNER
	TOKEN_INSERT
	TOKEN_INSTALL
	TOKEN_INTERSECT
	TOKEN_JOIN
	TOKEN_LATERAL
	TOKEN_LEFT
	TOKEN_LIMIT
	TOKEN_LOAD
	TOKEN_MERGE
	TOKEN_NATURAL
	TOKEN_ON
	TOKEN_ORDER
	TOKEN_OUTER
	TOKEN_PIVOT
	TOKEN_POSITIONAL
	TOKEN_QUALIFY
	TOKEN_RECURSIVE
	TOKEN_RIGHT
	TOKEN_SELECT
	TOKEN_SEMI
	TOKEN_SET
	TOKEN_UNION
	TOKEN_UNPIVOT
	TOKEN_UPDATE
	TOKEN_USE
	TOKEN_USING
	TOKEN_VALUES
	TOKEN_WHERE
	TOKEN_WINDOW
	TOKEN_WITH
)

// Token represents a lexical token with position information.
type Token struct {
	Type    TokenType
	Literal string
	Pos     Position
}

// Position represents a location in the source text.
type Position struct {
	Line   int // 1-based line number
	Column int // 1-based column number
	Offset int // 0-based byte offset
}

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", int(t))
}

var tokenNames = map[TokenType]string{
	TOKEN_EOF:     "EOF",
	TOKEN_ILLEGAL: "ILLEGAL",

	TOKEN_IDENT:  "IDENT",
	TOKEN_NUMBER: "NUMBER",
	TOKEN_STRING: "STRING",
	TOKEN_OP:     "OP",

	TOKEN_DOT:       ".",
	TOKEN_COMMA:     ",",
	TOKEN_LPAREN:    "(",
	TOKEN_RPAREN:    ")",
	TOKEN_SEMICOLON: ";",
	TOKEN_STAR:      "*",

	TOKEN_ALL:        "ALL",
	TOKEN_ANTI:       "ANTI",
	TOKEN_AS:         "AS",
	TOKEN_ASOF:       "ASOF",
	TOKEN_ATTACH:     "ATTACH",
	TOKEN_BY:         "BY",
	TOKEN_COPY:       "COPY",
	TOKEN_CREATE:     "CREATE",
	TOKEN_CROSS:      "CROSS",
	TOKEN_DELETE:     "DELETE",
	TOKEN_DROP:       "DROP",
	TOKEN_EXCEPT:     "EXCEPT",
	TOKEN_EXISTS:     "EXISTS",
	TOKEN_FROM:       "FROM",
	TOKEN_FULL:       "FULL",
	TOKEN_GROUP:      "GROUP",
	TOKEN_HAVING:     "HAVING",
	TOKEN_IN:         "IN",
	TOKEN_INNER:      "INNER",
	TOKEN_INSERT:     "INSERT",
	TOKEN_INSTALL:    "INSTALL",
	TOKEN_INTERSECT:  "INTERSECT",
	TOKEN_JOIN:       "JOIN",
	TOKEN_LATERAL:    "LATERAL",
	TOKEN_LEFT:       "LEFT",
	TOKEN_LIMIT:      "LIMIT",
	TOKEN_LOAD:       "LOAD",
	TOKEN_MERGE:      "MERGE",
	TOKEN_NATURAL:    "NATURAL",
	TOKEN_ON:         "ON",
	TOKEN_ORDER:      "ORDER",
	TOKEN_OUTER:      "OUTER",
	TOKEN_PIVOT:      "PIVOT",
	TOKEN_POSITIONAL: "POSITIONAL",
	TOKEN_QUALIFY:    "QUALIFY",
	TOKEN_RECURSIVE:  "RECURSIVE",
	TOKEN_RIGHT:      "RIGHT",
	TOKEN_SELECT:     "SELECT",
	TOKEN_SEMI:       "SEMI",
	TOKEN_SET:        "SET",
	TOKEN_UNION:      "UNION",
	TOKEN_UNPIVOT:    "UNPIVOT",
	TOKEN_UPDATE:     "UPDATE",
	TOKEN_USE:        "USE",
	TOKEN_USING:      "USING",
	TOKEN_VALUES:     "VALUES",
	TOKEN_WHERE:      "WHERE",
	TOKEN_WINDOW:     "WINDOW",
	TOKEN_WITH:       "WITH",
}

// keywords maps lowercase keyword strings to their token types.
var keywords = map[string]TokenType{
	"all":        TOKEN_ALL,
	"anti":       TOKEN_ANTI,
	"as":         TOKEN_AS,
	"asof":       TOKEN_ASOF,
	"attach":     TOKEN_ATTACH,
	"by":         TOKEN_BY,
	"copy":       TOKEN_COPY,
	"create":     TOKEN_CREATE,
	"cross":      TOKEN_CROSS,
	"delete":     TOKEN_DELETE,
	"drop":       TOKEN_DROP,
	"except":     TOKEN_EXCEPT,
	"exists":     TOKEN_EXISTS,
	"from":       TOKEN_FROM,
	"full":       TOKEN_FULL,
	"group":      TOKEN_GROUP,
	"having":     TOKEN_HAVING,
	"in":         TOKEN_IN,
	"inner":      TOKEN_INNER,
	"insert":     TOKEN_INSERT,
	"install":    TOKEN_INSTALL,
	"intersect":  TOKEN_INTERSECT,
	"join":       TOKEN_JOIN,
	"lateral":    TOKEN_LATERAL,
	"left":       TOKEN_LEFT,
	"limit":      TOKEN_LIMIT,
	"load":       TOKEN_LOAD,
	"merge":      TOKEN_MERGE,
	"natural":    TOKEN_NATURAL,
	"on":         TOKEN_ON,
	"order":      TOKEN_ORDER,
	"outer":      TOKEN_OUTER,
	"pivot":      TOKEN_PIVOT,
	"positional": TOKEN_POSITIONAL,
	"qualify":    TOKEN_QUALIFY,
	"recursive":  TOKEN_RECURSIVE,
	"right":      TOKEN_RIGHT,
	"select":     TOKEN_SELECT,
	"semi":       TOKEN_SEMI,
	"set":        TOKEN_SET,
	"union":      TOKEN_UNION,
	"unpivot":    TOKEN_UNPIVOT,
	"update":     TOKEN_UPDATE,
	"use":        TOKEN_USE,
	"using":      TOKEN_USING,
	"values":     TOKEN_VALUES,
	"where":      TOKEN_WHERE,
	"window":     TOKEN_WINDOW,
	"with":       TOKEN_WITH,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned.
// Otherwise, TOKEN_IDENT is returned.
func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[lower(ident)]; ok {
		return tok
	}
	return TOKEN_IDENT
}

// lower is an ASCII-only strings.ToLower. SQL keywords are ASCII.
func lower(s string) string {
	hasUpper := false
	for i := 0; i < len(s); i++ {
		if s[i] >= 'A' && s[i] <= 'Z' {
			hasUpper = true
			break
		}
	}
	if !hasUpper {
		return s
	}
	b := []byte(s)
	for i := 0; i < len(b); i++ {
		if b[i] >= 'A' && b[i] <= 'Z' {
			b[i] += 'a' - 'A'
		}
	}
	return string(b)
}
