package debtgraph

import (
	"DebtGraph/backend/go/internal/apperr"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Template is a read query split into the part before its single top-level
// RETURN (body) and the projection that follows it. Keeping the projection as
// its own field lets the executor derive count and paged variants without
// searching the query text again.
type Template struct {
	body       string
	projection string
}

// NewTemplate builds a template from a body and a projection. The body must
// not contain a top-level RETURN and the projection must not carry its own
// SKIP or LIMIT.
func NewTemplate(body, projection string) (Template, error) {
	body = strings.TrimSpace(body)
	projection = strings.TrimSpace(projection)
	if projection == "" {
		return Template{}, fmt.Errorf("%w: empty projection", apperr.ErrMalformedTemplate)
	}
	if body == "" {
		return ParseTemplate("RETURN " + projection)
	}
	return ParseTemplate(body + "\nRETURN " + projection)
}

// MustTemplate is like NewTemplate but panics on error. It is meant for
// package-level query definitions.
func MustTemplate(body, projection string) Template {
	t, err := NewTemplate(body, projection)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTemplate splits a complete query at its top-level RETURN. Queries with
// zero or several top-level RETURN clauses (UNION, for instance) are rejected
// with apperr.ErrMalformedTemplate. RETURN inside subqueries, literals or
// comments is ignored.
func ParseTemplate(cypher string) (Template, error) {
	words, err := scanTopLevel(cypher)
	if err != nil {
		return Template{}, err
	}

	returnAt := -1
	for _, w := range words {
		if w.word != "RETURN" {
			continue
		}
		if returnAt >= 0 {
			return Template{}, fmt.Errorf("%w: more than one top-level RETURN", apperr.ErrMalformedTemplate)
		}
		returnAt = w.pos
	}
	if returnAt < 0 {
		return Template{}, fmt.Errorf("%w: no top-level RETURN", apperr.ErrMalformedTemplate)
	}
	for _, w := range words {
		if w.pos > returnAt && (w.word == "SKIP" || w.word == "LIMIT") {
			return Template{}, fmt.Errorf("%w: projection must not contain %s", apperr.ErrMalformedTemplate, w.word)
		}
	}

	t := Template{
		body:       strings.TrimSpace(cypher[:returnAt]),
		projection: strings.TrimSpace(cypher[returnAt+len("RETURN"):]),
	}
	if t.projection == "" {
		return Template{}, fmt.Errorf("%w: empty projection", apperr.ErrMalformedTemplate)
	}
	return t, nil
}

// Body returns the query text before RETURN.
func (t Template) Body() string { return t.body }

// Projection returns the expressions after RETURN.
func (t Template) Projection() string { return t.projection }

// Cypher returns the full, unpaged query.
func (t Template) Cypher() string {
	return t.prefix() + "RETURN " + t.projection
}

// CountCypher returns the query with its projection replaced by a row count.
// The count is taken over the rows the body produces, so a DISTINCT or
// aggregating projection is not reflected in it.
func (t Template) CountCypher() string {
	return t.prefix() + "RETURN count(*) AS " + countColumn
}

// PageCypher returns the full query with bound pagination clauses. LIMIT is
// only added when the page has a positive limit.
func (t Template) PageCypher(p Page) string {
	q := t.Cypher() + "\nSKIP $" + skipParam
	if p.Limited() {
		q += "\nLIMIT $" + limitParam
	}
	return q
}

// And returns a copy of the template whose last clause is further restricted
// by predicate. It joins with AND when the last top-level clause is already a
// WHERE, and opens a new WHERE otherwise. The result never matches more rows
// than t.
func (t Template) And(predicate string) (Template, error) {
	words, err := scanTopLevel(t.body)
	if err != nil {
		return Template{}, err
	}
	last := ""
	for _, w := range words {
		switch w.word {
		case "MATCH", "WITH", "WHERE", "UNWIND", "CALL":
			last = w.word
		}
	}
	joiner := "\nWHERE "
	if last == "WHERE" {
		joiner = "\n  AND "
	}
	return NewTemplate(t.body+joiner+"("+predicate+")", t.projection)
}

func (t Template) prefix() string {
	if t.body == "" {
		return ""
	}
	return t.body + "\n"
}

type topLevelWord struct {
	word string
	pos  int
}

// keywords the scanner reports; anything else is skipped.
var scannedKeywords = map[string]bool{
	"RETURN": true, "SKIP": true, "LIMIT": true,
	"MATCH": true, "WITH": true, "WHERE": true, "UNWIND": true, "CALL": true,
}

// scanTopLevel walks a query and reports the interesting keywords that are
// not nested in brackets, literals, escaped identifiers or comments. Positions
// are byte offsets into q.
func scanTopLevel(q string) ([]topLevelWord, error) {
	if !utf8.ValidString(q) {
		return nil, fmt.Errorf("%w: query is not valid UTF-8", apperr.ErrMalformedTemplate)
	}
	var (
		words []topLevelWord
		depth int
	)
	for i := 0; i < len(q); {
		r, size := utf8.DecodeRuneInString(q[i:])
		switch {
		case r == '\'' || r == '"' || r == '`':
			end := closeQuote(q, i)
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated %c", apperr.ErrMalformedTemplate, r)
			}
			i = end + 1
		case strings.HasPrefix(q[i:], "//"):
			end := strings.IndexByte(q[i:], '\n')
			if end < 0 {
				return words, checkDepth(depth)
			}
			i += end + 1
		case strings.HasPrefix(q[i:], "/*"):
			end := strings.Index(q[i+2:], "*/")
			if end < 0 {
				return nil, fmt.Errorf("%w: unterminated comment", apperr.ErrMalformedTemplate)
			}
			i += 2 + end + 2
		case r == '(' || r == '[' || r == '{':
			depth++
			i += size
		case r == ')' || r == ']' || r == '}':
			depth--
			if depth < 0 {
				return nil, fmt.Errorf("%w: unbalanced %c", apperr.ErrMalformedTemplate, r)
			}
			i += size
		case isIdentStart(r):
			start := i
			for i += size; i < len(q); i += size {
				if r, size = utf8.DecodeRuneInString(q[i:]); !isIdentPart(r) {
					break
				}
			}
			// property keys, parameters and labels may be spelled like keywords.
			if depth > 0 || (start > 0 && strings.IndexByte(".$:", q[start-1]) >= 0) {
				continue
			}
			word := strings.ToUpper(q[start:i])
			if scannedKeywords[word] {
				words = append(words, topLevelWord{word: word, pos: start})
			}
		default:
			i += size
		}
	}
	return words, checkDepth(depth)
}

func checkDepth(depth int) error {
	if depth != 0 {
		return fmt.Errorf("%w: unbalanced brackets", apperr.ErrMalformedTemplate)
	}
	return nil
}

// closeQuote returns the byte index of the quote closing the one at start, or
// -1. Backslash escapes apply inside string literals; backtick identifiers
// escape a backtick by doubling it.
func closeQuote(q string, start int) int {
	quote := q[start]
	for i := start + 1; i < len(q); i++ {
		switch {
		case quote != '`' && q[i] == '\\':
			i++
		case q[i] == quote:
			if quote == '`' && i+1 < len(q) && q[i+1] == '`' {
				i++
				continue
			}
			return i
		}
	}
	return -1
}

func isIdentStart(r rune) bool { return r == '_' || unicode.IsLetter(r) }

func isIdentPart(r rune) bool { return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r) }
