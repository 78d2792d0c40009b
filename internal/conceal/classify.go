package conceal

import "unicode"

// OpenCol marks a span edge that extends beyond the row: an open start means
// the span begins on an earlier row, an open end means it continues past this
// row's last column.
const OpenCol = -1

// Classify decides whether the concealed portion of a row hides the whole
// row or only part of it. A row is WholeLine when everything before startCol
// and after endCol is whitespace (an empty row fully covered by a span is
// WholeLine). Columns are rune indices; OpenCol edges contribute an empty
// prefix or suffix.
func Classify(rowText string, startCol, endCol int) Kind {
	runes := []rune(rowText)
	if startCol != OpenCol {
		if startCol > len(runes) {
			startCol = len(runes)
		}
		if !isBlank(runes[:startCol]) {
			return Partial
		}
	}
	if endCol != OpenCol {
		if endCol > len(runes) {
			endCol = len(runes)
		}
		if endCol < 0 {
			endCol = 0
		}
		if !isBlank(runes[endCol:]) {
			return Partial
		}
	}
	return WholeLine
}

func isBlank(runes []rune) bool {
	for _, r := range runes {
		if !unicode.IsSpace(r) {
			return false
		}
	}
	return true
}
