package parser

import "strings"

// SOQLQuery is the structural form of one inline query. Sub-selects are
// parsed recursively into SubQueries, so a parent's clause booleans never
// see a sub-select's clauses and vice versa. HasStructure is false when
// the text could not be broken into SELECT/FROM sections; callers must
// fall back to textual inspection of Raw in that case.
type SOQLQuery struct {
	Raw          string
	SelectFields []string
	FromObject   string
	HasWhere     bool
	HasLimit     bool
	HasStructure bool
	SubQueries   []*SOQLQuery
	Line         int
}

// textSpan marks a byte range within query text.
// start is the index of '(' and end the index of the matching ')'.
type textSpan struct {
	start int
	end   int
}

// ParseSOQL breaks query text into its structural parts.
// line is the 1-based source line where the query text begins.
func ParseSOQL(raw string, line int) *SOQLQuery {
	q := &SOQLQuery{Raw: strings.TrimSpace(raw), Line: line}

	spans := subSelectSpans(raw)
	for _, sp := range spans {
		subLine := line + strings.Count(raw[:sp.start], "\n")
		q.SubQueries = append(q.SubQueries, ParseSOQL(raw[sp.start+1:sp.end], subLine))
	}

	// Sub-selects are blanked before clause inspection so the outer
	// query is evaluated on its own clauses only.
	flat := maskSpans(raw, spans)

	selectPos := queryKeywordIndex(flat, "select")
	fromPos := queryKeywordIndex(flat, "from")
	if selectPos < 0 || fromPos < 0 || fromPos < selectPos {
		return q
	}
	q.HasStructure = true
	q.HasWhere = queryKeywordIndex(flat, "where") >= 0
	q.HasLimit = queryKeywordIndex(flat, "limit") >= 0

	fieldsText := flat[selectPos+len("select") : fromPos]
	for _, part := range splitTopLevel(fieldsText, ',') {
		field := strings.TrimSpace(part)
		if field == "" {
			// Blanked sub-select slot
			continue
		}
		q.SelectFields = append(q.SelectFields, field)
	}

	q.FromObject = firstWord(flat[fromPos+len("from"):])
	return q
}

// HasSubquery reports whether the query nests a sub-select. The textual
// probe covers queries whose sub-select never closed and therefore
// produced no parsed SubQueries entry.
func (q *SOQLQuery) HasSubquery() bool {
	if len(q.SubQueries) > 0 {
		return true
	}
	return containsSubSelect(q.Raw)
}

// ContainsClauseKeyword reports whether keyword appears as a standalone
// word outside string literals, with sub-selects masked out first. This
// is the textual fallback for queries that did not parse structurally.
func ContainsClauseKeyword(raw, keyword string) bool {
	flat := maskSpans(raw, subSelectSpans(raw))
	return queryKeywordIndex(flat, keyword) >= 0
}

// KeywordIndex returns the position of keyword as a standalone word at
// paren depth zero outside string literals, or -1. Matching is
// case-insensitive. Unlike ContainsClauseKeyword, sub-selects are not
// masked; callers that must not see into sub-selects mask or reject them
// first.
func KeywordIndex(raw, keyword string) int {
	return queryKeywordIndex(raw, keyword)
}

// subSelectSpans finds every outermost parenthesized sub-select.
// Sub-selects nested inside another sub-select belong to that inner
// span and are not reported separately.
func subSelectSpans(s string) []textSpan {
	var spans []textSpan
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			if !startsWithKeyword(s[i+1:], "select") {
				continue
			}
			end := matchParen(s, i)
			if end < 0 {
				return spans
			}
			spans = append(spans, textSpan{start: i, end: end})
			i = end
		}
	}
	return spans
}

// containsSubSelect is a lenient probe that also matches unbalanced text.
func containsSubSelect(s string) bool {
	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			if startsWithKeyword(s[i+1:], "select") {
				return true
			}
		}
	}
	return false
}

// matchParen returns the index of the ')' matching the '(' at open,
// or -1 when the text is unbalanced.
func matchParen(s string, open int) int {
	depth := 1
	inString := false
	for i := open + 1; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// maskSpans blanks the given spans with spaces, keeping newlines so
// line arithmetic on the result stays valid.
func maskSpans(s string, spans []textSpan) string {
	if len(spans) == 0 {
		return s
	}
	b := []byte(s)
	for _, sp := range spans {
		for i := sp.start; i <= sp.end && i < len(b); i++ {
			if b[i] != '\n' {
				b[i] = ' '
			}
		}
	}
	return string(b)
}

// queryKeywordIndex returns the index of keyword as a standalone word at
// paren depth zero outside string literals, or -1. Matching is
// case-insensitive.
func queryKeywordIndex(s, keyword string) int {
	depth := 0
	inString := false
	for i := 0; i+len(keyword) <= len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
			continue
		case '(':
			depth++
			continue
		case ')':
			depth--
			continue
		}
		if depth != 0 {
			continue
		}
		if i > 0 && isWordChar(s[i-1]) {
			continue
		}
		if !strings.EqualFold(s[i:i+len(keyword)], keyword) {
			continue
		}
		if i+len(keyword) < len(s) && isWordChar(s[i+len(keyword)]) {
			continue
		}
		return i
	}
	return -1
}

// splitTopLevel splits on sep at paren depth zero outside string literals.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	inString := false
	start := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		if inString {
			if c == '\\' {
				i++
			} else if c == '\'' {
				inString = false
			}
			continue
		}
		switch c {
		case '\'':
			inString = true
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}

// startsWithKeyword reports whether s begins, after optional whitespace,
// with keyword as a standalone word.
func startsWithKeyword(s, keyword string) bool {
	i := 0
	for i < len(s) && isQuerySpace(s[i]) {
		i++
	}
	if i+len(keyword) > len(s) {
		return false
	}
	if !strings.EqualFold(s[i:i+len(keyword)], keyword) {
		return false
	}
	if i+len(keyword) < len(s) && isWordChar(s[i+len(keyword)]) {
		return false
	}
	return true
}

func firstWord(s string) string {
	i := 0
	for i < len(s) && isQuerySpace(s[i]) {
		i++
	}
	start := i
	for i < len(s) && (isWordChar(s[i]) || s[i] == '.') {
		i++
	}
	return s[start:i]
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' || c == '_'
}

func isQuerySpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
