// Package sqlparse provides a narrow SQL analyzer for dependency
// extraction: it splits a unit's query text into statements, picks the
// single governing result-producing statement, and collects the table
// names that statement reads from. It is not a general SQL validator;
// the grammar covers exactly what table-reference and CTE-alias
// extraction requires.
package sqlparse

// fileReadingBuiltins are DuckDB table functions whose first string
// argument is a file path. The path, not the function name, is the
// dependency identifier.
var fileReadingBuiltins = map[string]bool{
	"read_parquet":   true,
	"parquet_scan":   true,
	"read_csv":       true,
	"read_csv_auto":  true,
	"read_json":      true,
	"read_json_auto": true,
}

// Dependencies returns the set of table names the query text's
// governing statement reads from, in first-reference order. CTE aliases
// defined within the statement are excluded; multi-part names are
// joined with dots; file-reading table functions contribute their
// literal path argument.
func Dependencies(sql string, dialect Dialect) ([]string, error) {
	stmts, err := SplitStatements(sql)
	if err != nil {
		return nil, err
	}
	gov, _, err := Governing(stmts)
	if err != nil {
		return nil, err
	}
	return Tables(gov), nil
}

// Tables extracts the external table references of a single statement.
func Tables(stmt Statement) []string {
	ctes := cteNames(stmt.Tokens)

	var deps []string
	seen := make(map[string]bool)
	add := func(name string) {
		if name == "" || ctes[name] || seen[name] {
			return
		}
		seen[name] = true
		deps = append(deps, name)
	}

	toks := stmt.Tokens
	// Each open paren is classified when pushed: parens that open a
	// function-call argument list suppress FROM handling inside them,
	// so EXTRACT(month FROM ts) does not produce a phantom dependency.
	var parens []bool

	inFuncParen := func() bool {
		for _, f := range parens {
			if f {
				return true
			}
		}
		return false
	}

	for i := 0; i < len(toks); i++ {
		switch toks[i].Type {
		case TOKEN_LPAREN:
			isFunc := i > 0 && toks[i-1].Type == TOKEN_IDENT
			parens = append(parens, isFunc)
		case TOKEN_RPAREN:
			if len(parens) > 0 {
				parens = parens[:len(parens)-1]
			}
		case TOKEN_FROM:
			if inFuncParen() {
				continue
			}
			i = collectTableRefs(toks, i+1, true, add)
		case TOKEN_JOIN, TOKEN_PIVOT, TOKEN_UNPIVOT:
			i = collectTableRefs(toks, i+1, false, add)
		}
	}

	if deps == nil {
		return []string{}
	}
	return deps
}

// collectTableRefs parses the table reference(s) starting at toks[i]
// and reports each dependency through add. When commaList is true a
// comma-separated FROM list is followed. Returns the index of the last
// consumed token; subqueries are left unconsumed so the caller's scan
// descends into them.
func collectTableRefs(toks []Token, i int, commaList bool, add func(string)) int {
	for {
		// LATERAL prefixes a subquery or function reference.
		if i < len(toks) && toks[i].Type == TOKEN_LATERAL {
			i++
		}
		if i >= len(toks) || toks[i].Type != TOKEN_IDENT {
			// Derived table, VALUES list, or end of clause: nothing to
			// record here, the main scan handles the inside.
			return i - 1
		}

		name, j := readDottedName(toks, i)
		if j < len(toks) && toks[j].Type == TOKEN_LPAREN {
			// Table function call.
			if fileReadingBuiltins[lower(name)] {
				if path, ok := firstStringArg(toks, j); ok {
					add(path)
				}
			}
			j = skipBalanced(toks, j)
		} else {
			add(name)
		}
		i = j

		// Optional alias: [AS] ident, optionally with a column list.
		if i < len(toks) && toks[i].Type == TOKEN_AS {
			i++
		}
		if i < len(toks) && toks[i].Type == TOKEN_IDENT {
			i++
			if i < len(toks) && toks[i].Type == TOKEN_LPAREN {
				i = skipBalanced(toks, i)
			}
		}

		if commaList && i < len(toks) && toks[i].Type == TOKEN_COMMA {
			i++
			continue
		}
		return i - 1
	}
}

// readDottedName reads ident (DOT ident)* starting at toks[i] and
// returns the dotted name plus the index just past it.
func readDottedName(toks []Token, i int) (string, int) {
	name := toks[i].Literal
	i++
	for i+1 < len(toks) && toks[i].Type == TOKEN_DOT && toks[i+1].Type == TOKEN_IDENT {
		name += "." + toks[i+1].Literal
		i += 2
	}
	return name, i
}

// firstStringArg returns the first string literal inside the paren
// group opening at toks[open].
func firstStringArg(toks []Token, open int) (string, bool) {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Type {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
			if depth == 0 {
				return "", false
			}
		case TOKEN_STRING:
			return toks[i].Literal, true
		}
	}
	return "", false
}

// skipBalanced returns the index just past the paren group opening at
// toks[open].
func skipBalanced(toks []Token, open int) int {
	depth := 0
	for i := open; i < len(toks); i++ {
		switch toks[i].Type {
		case TOKEN_LPAREN:
			depth++
		case TOKEN_RPAREN:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return len(toks)
}

// cteNames collects every common-table-expression alias defined in the
// statement, at any nesting depth. A name only counts as a CTE alias if
// the full `name [(cols)] AS (` shape is present.
func cteNames(toks []Token) map[string]bool {
	names := make(map[string]bool)

	for i := 0; i < len(toks); i++ {
		if toks[i].Type != TOKEN_WITH {
			continue
		}
		j := i + 1
		if j < len(toks) && toks[j].Type == TOKEN_RECURSIVE {
			j++
		}
		for {
			if j >= len(toks) || toks[j].Type != TOKEN_IDENT {
				break
			}
			name := toks[j].Literal
			j++
			if j < len(toks) && toks[j].Type == TOKEN_LPAREN {
				j = skipBalanced(toks, j)
			}
			if j >= len(toks) || toks[j].Type != TOKEN_AS {
				break // not a CTE definition (e.g. WITH ORDINALITY)
			}
			j++
			if j >= len(toks) || toks[j].Type != TOKEN_LPAREN {
				break
			}
			j = skipBalanced(toks, j)
			names[name] = true
			if j < len(toks) && toks[j].Type == TOKEN_COMMA {
				j++
				continue
			}
			break
		}
	}
	return names
}
