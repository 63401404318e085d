package parser

// QuerySpan records one inline [SELECT ...] or [FIND ...] block found
// during normalization.
type QuerySpan struct {
	StartByte uint32 // offset of '[' in the source
	EndByte   uint32 // offset just past ']'
	NullByte  uint32 // offset of the placeholder written into the normalized text
	StartLine int    // 1-based
	StartCol  int    // 0-based, in bytes
	EndLine   int
	EndCol    int
	Text      string // query text between the brackets
	IsSearch  bool   // FIND block rather than SELECT
}

// noPlaceholder marks a span whose placeholder could not be written.
const noPlaceholder = ^uint32(0)

// normalizeSource rewrites Apex-specific surface syntax into the Java
// grammar's vocabulary without moving a single byte. Every replacement
// is length-preserving and keeps newlines, so positions reported
// against the normalized text are valid for the original source.
//
// Inline query blocks are blanked and a null placeholder is written
// into each; the returned spans let the tree builder substitute a
// query node wherever that placeholder surfaces as a literal.
func normalizeSource(src []byte) ([]byte, []QuerySpan) {
	out := make([]byte, len(src))
	copy(out, src)

	var spans []QuerySpan
	for i := 0; i < len(src); {
		c := src[i]
		switch {
		case c == '\'':
			i = normalizeStringLiteral(out, src, i)
		case c == '/' && i+1 < len(src) && src[i+1] == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < len(src) && src[i+1] == '*':
			i += 2
			for i+1 < len(src) && !(src[i] == '*' && src[i+1] == '/') {
				i++
			}
			if i+1 < len(src) {
				i += 2
			} else {
				i = len(src)
			}
		case c == '[':
			end, isSearch, ok := scanQueryBlock(src, i)
			if !ok {
				i++
				continue
			}
			spans = append(spans, maskQueryBlock(out, src, i, end, isSearch))
			i = end + 1
		case c == '?' && i+1 < len(src) && src[i+1] == '.':
			// Safe navigation; plain member access reads the same shape.
			out[i] = '.'
			out[i+1] = ' '
			i += 2
		case c == '?' && i+1 < len(src) && src[i+1] == '?':
			// Null coalescing; any binary operator keeps the expression parseable.
			out[i] = '='
			out[i+1] = '='
			i += 2
		case isIdentStart(c) && (i == 0 || !isIdentChar(src[i-1])):
			j := i + 1
			for j < len(src) && isIdentChar(src[j]) {
				j++
			}
			i = normalizeWord(out, src, i, j)
		default:
			i++
		}
	}
	return out, spans
}

// normalizeStringLiteral swaps the single-quote delimiters for double
// quotes and blanks any inner double quote so the result stays a valid
// Java string. Returns the index just past the closing quote.
func normalizeStringLiteral(out, src []byte, start int) int {
	out[start] = '"'
	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			if i+1 < len(src) && src[i+1] == '"' {
				out[i] = ' '
				out[i+1] = ' '
			}
			i += 2
		case '\'':
			out[i] = '"'
			return i + 1
		case '"':
			out[i] = ' '
			i++
		default:
			i++
		}
	}
	return len(src)
}

// scanQueryBlock reports whether the '[' at open begins an inline query
// block, returning the index of the matching ']'.
func scanQueryBlock(src []byte, open int) (end int, isSearch bool, ok bool) {
	i := open + 1
	for i < len(src) && isQuerySpace(src[i]) {
		i++
	}
	j := i
	for j < len(src) && isIdentChar(src[j]) {
		j++
	}
	switch {
	case foldEqual(src[i:j], "select"):
		isSearch = false
	case foldEqual(src[i:j], "find"):
		isSearch = true
	default:
		return 0, false, false
	}
	end = closingIndex(src, open, '[', ']')
	if end < 0 {
		return 0, false, false
	}
	return end, isSearch, true
}

// maskQueryBlock blanks the block in out, preserving newlines, and
// writes a null placeholder into the first run of the blanked region
// that does not cross a line break.
func maskQueryBlock(out, src []byte, open, close int, isSearch bool) QuerySpan {
	for i := open; i <= close; i++ {
		if out[i] != '\n' {
			out[i] = ' '
		}
	}
	placeholder := noPlaceholder
	for p := open; p+3 <= close; p++ {
		if out[p] != '\n' && out[p+1] != '\n' && out[p+2] != '\n' && out[p+3] != '\n' {
			copy(out[p:p+4], "null")
			placeholder = uint32(p)
			break
		}
	}

	startLine, startCol := lineColAt(src, open)
	endLine, endCol := lineColAt(src, close+1)
	return QuerySpan{
		StartByte: uint32(open),
		EndByte:   uint32(close + 1),
		NullByte:  placeholder,
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   endLine,
		EndCol:    endCol,
		Text:      string(src[open+1 : close]),
		IsSearch:  isSearch,
	}
}

// normalizeWord rewrites one identifier-shaped word when it is an Apex
// construct the Java grammar does not know. Returns the index scanning
// should resume from.
func normalizeWord(out, src []byte, start, end int) int {
	word := src[start:end]
	switch {
	case foldEqual(word, "global"):
		copy(out[start:end], "public")
	case foldEqual(word, "testmethod"), foldEqual(word, "webservice"):
		blankRange(out, start, end)
	case foldEqual(word, "with"), foldEqual(word, "without"), foldEqual(word, "inherited"):
		if se := sharingEnd(src, end); se > 0 {
			blankRange(out, start, se)
			return se
		}
	case foldEqual(word, "trigger"):
		if ne := normalizeTriggerHeader(out, src, start, end); ne > 0 {
			return ne
		}
	}
	return end
}

// sharingEnd returns the index just past a "sharing" word following
// offset, or 0 when the next word is something else.
func sharingEnd(src []byte, offset int) int {
	i := offset
	for i < len(src) && isQuerySpace(src[i]) {
		i++
	}
	j := i
	for j < len(src) && isIdentChar(src[j]) {
		j++
	}
	if !foldEqual(src[i:j], "sharing") {
		return 0
	}
	return j
}

// normalizeTriggerHeader rewrites "trigger Name on Object (events)"
// into a class declaration header. The class body is opened inside the
// blanked event region, so the trigger's own brace becomes an
// initializer block and the bare statements inside it parse as block
// statements; the unmatched class brace is recovered at end of input.
// Returns 0 when the text does not match the trigger shape.
func normalizeTriggerHeader(out, src []byte, start, end int) int {
	i := end
	for i < len(src) && isQuerySpace(src[i]) {
		i++
	}
	nameEnd := i
	for nameEnd < len(src) && isIdentChar(src[nameEnd]) {
		nameEnd++
	}
	if nameEnd == i {
		return 0
	}
	j := nameEnd
	for j < len(src) && isQuerySpace(src[j]) {
		j++
	}
	onEnd := j
	for onEnd < len(src) && isIdentChar(src[onEnd]) {
		onEnd++
	}
	if !foldEqual(src[j:onEnd], "on") {
		return 0
	}
	blankTo := onEnd
	for blankTo < len(src) && src[blankTo] != '(' && src[blankTo] != '{' {
		blankTo++
	}
	if blankTo < len(src) && src[blankTo] == '(' {
		if c := closingIndex(src, blankTo, '(', ')'); c > 0 {
			blankTo = c + 1
		}
	}
	copy(out[start:end], "class  ")
	blankRange(out, j, blankTo)
	out[j] = '{'
	return blankTo
}

// closingIndex returns the index of the closeCh matching the openCh at
// open, skipping single-quoted strings, or -1 when unbalanced.
func closingIndex(src []byte, open int, openCh, closeCh byte) int {
	depth := 1
	inString := false
	for i := open + 1; i < len(src); i++ {
		c := src[i]
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
		case openCh:
			depth++
		case closeCh:
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// lineColAt converts a byte offset into a 1-based line and 0-based
// column, matching the grammar's position convention.
func lineColAt(src []byte, offset int) (line, col int) {
	line = 1
	last := -1
	for i := 0; i < offset && i < len(src); i++ {
		if src[i] == '\n' {
			line++
			last = i
		}
	}
	return line, offset - last - 1
}

func blankRange(out []byte, start, end int) {
	for i := start; i < end && i < len(out); i++ {
		if out[i] != '\n' {
			out[i] = ' '
		}
	}
}

// foldEqual compares ASCII bytes to a lowercase keyword without allocating.
func foldEqual(b []byte, keyword string) bool {
	if len(b) != len(keyword) {
		return false
	}
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c != keyword[i] {
			return false
		}
	}
	return true
}

func isIdentStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}

func isIdentChar(c byte) bool {
	return isIdentStart(c) || c >= '0' && c <= '9' || c == '$'
}
