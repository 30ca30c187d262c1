package text

// ChunkPolicy is the per-format size/overlap lookup: sizes are in
// characters (runes), and Overlap characters are carried forward from the
// end of each chunk into the next.
type ChunkPolicy struct {
	Size    int
	Overlap int
}

var (
	// Tabular rows are already dense facts; smaller chunks keep each row's
	// neighborhood tight.
	PolicyTabular = ChunkPolicy{Size: 1500, Overlap: 200}
	// Prose and slides need more room to preserve paragraph context.
	PolicyProse = ChunkPolicy{Size: 2000, Overlap: 300}
)

// Chunk splits content into overlapping chunks under the policy. Cuts
// prefer paragraph breaks, then line breaks, then sentence ends, then word
// breaks, falling back to a hard cut. Chunks are exact slices of the input:
// concatenating them with overlaps removed reproduces the original text.
func Chunk(content string, p ChunkPolicy) []string {
	if content == "" {
		return nil
	}
	if p.Size <= 0 {
		p.Size = PolicyProse.Size
	}
	if p.Overlap < 0 {
		p.Overlap = 0
	}
	if p.Overlap >= p.Size {
		p.Overlap = p.Size / 2
	}

	runes := []rune(content)
	if len(runes) <= p.Size {
		return []string{content}
	}

	var chunks []string
	pos := 0
	for pos < len(runes) {
		end := pos + p.Size
		if end >= len(runes) {
			chunks = append(chunks, string(runes[pos:]))
			break
		}

		cut := splitPoint(runes, pos, end)
		chunks = append(chunks, string(runes[pos:cut]))

		next := cut - p.Overlap
		if next <= pos {
			next = cut
		}
		pos = next
	}

	return chunks
}

// splitPoint searches backwards from the hard limit for the best natural
// boundary, never retreating past the midpoint of the window.
func splitPoint(runes []rune, lo, hi int) int {
	floor := lo + (hi-lo)/2

	if i := lastParagraphBreak(runes, floor, hi); i > 0 {
		return i
	}
	for i := hi - 1; i > floor; i-- {
		if runes[i] == '\n' {
			return i + 1
		}
	}
	for i := hi - 1; i > floor; i-- {
		if isSentenceEnd(runes[i]) && i+1 < hi && runes[i+1] == ' ' {
			return i + 2
		}
	}
	for i := hi - 1; i > floor; i-- {
		if runes[i] == ' ' {
			return i + 1
		}
	}
	return hi
}

func lastParagraphBreak(runes []rune, floor, hi int) int {
	for i := hi - 1; i > floor; i-- {
		if runes[i] == '\n' && runes[i-1] == '\n' {
			return i + 1
		}
	}
	return 0
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
