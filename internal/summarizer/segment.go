package summarizer

const (
	minSegments        = 5
	maxSegments        = 12
	sentencesPerTarget = 8
)

// SegmentCount is the desired number of segments for n sentences:
// n/8 (1 when that is zero) clamped into [5, 12].
func SegmentCount(n int) int {
	q := n / sentencesPerTarget
	if q == 0 {
		q = 1
	}
	return min(maxSegments, max(minSegments, q))
}

// Segment partitions sentences into contiguous chunks of ceil(len/k).
// The last chunk may be shorter. Chunks share the backing array of sentences.
func Segment(sentences []string, k int) [][]string {
	if len(sentences) == 0 {
		return nil
	}
	k = max(1, k)
	size := max(1, (len(sentences)+k-1)/k)

	chunks := make([][]string, 0, (len(sentences)+size-1)/size)
	for i := 0; i < len(sentences); i += size {
		end := min(i+size, len(sentences))
		chunks = append(chunks, sentences[i:end:end])
	}
	return chunks
}
