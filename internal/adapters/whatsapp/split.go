package whatsapp

// SplitMessage cuts text into parts of at most maxLen runes. A cut prefers the
// last paragraph break in the window (when it leaves more than 100 runes
// behind), then the last sentence end (more than 50 runes), then a hard cut.
func SplitMessage(text string, maxLen int) []string {
	runes := []rune(text)
	if maxLen <= 0 || len(runes) <= maxLen {
		return []string{text}
	}

	var parts []string
	start := 0
	for start < len(runes) {
		end := min(start+maxLen, len(runes))
		if end < len(runes) {
			if p := lastIndex(runes, start, end, "\n\n"); p > start+100 {
				end = p + 2
			} else if s := lastIndex(runes, start, end, ". "); s > start+50 {
				end = s + 2
			}
		}
		parts = append(parts, string(runes[start:end]))
		start = end
	}
	return parts
}

// lastIndex finds the last occurrence of sep fully inside runes[from:to], or -1.
func lastIndex(runes []rune, from, to int, sep string) int {
	needle := []rune(sep)
	for i := to - len(needle); i >= from; i-- {
		match := true
		for j, r := range needle {
			if runes[i+j] != r {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}
