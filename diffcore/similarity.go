package diffcore

import (
	"bytes"

	"github.com/cespare/xxhash/v2"
)

// maxChunkSize bounds the size of a fingerprint chunk, so binary blobs
// without newlines still split into comparable pieces.
const maxChunkSize = 64

// fingerprint is a bag of content chunks, each represented by its
// xxhash and weighted by its size in bytes.
type fingerprint struct {
	chunks map[uint64]int
	size   int
}

// newFingerprint chunks content on line boundaries, splitting oversize
// lines into fixed blocks.
func newFingerprint(content []byte) *fingerprint {
	fp := &fingerprint{chunks: make(map[uint64]int), size: len(content)}

	rest := content
	for len(rest) > 0 {
		chunk := rest
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 && i < maxChunkSize {
			chunk = chunk[:i+1]
		} else if len(chunk) > maxChunkSize {
			chunk = chunk[:maxChunkSize]
		}

		fp.chunks[xxhash.Sum64(chunk)] += len(chunk)
		rest = rest[len(chunk):]
	}

	return fp
}

// similarity is the amount of content shared with other, in percent of
// the larger blob. Two empty blobs count as identical.
func (fp *fingerprint) similarity(other *fingerprint) int {
	larger := fp.size
	if other.size > larger {
		larger = other.size
	}
	if larger == 0 {
		return maxScore
	}

	common := 0
	for h, n := range fp.chunks {
		if m, ok := other.chunks[h]; ok {
			if m < n {
				n = m
			}
			common += n
		}
	}

	return common * maxScore / larger
}

// nameSimilarityScore is a tiebreaker between equally similar
// candidates: paths sharing leading directories and trailing name
// characters score higher.
func nameSimilarityScore(a, b string) int {
	if a == b {
		return maxScore
	}

	limit := len(a)
	if len(b) < limit {
		limit = len(b)
	}

	prefix := 0
	for prefix < limit && a[prefix] == b[prefix] {
		prefix++
	}
	// count only whole leading directories
	for prefix > 0 && (prefix >= len(a) || a[prefix-1] != '/') {
		prefix--
	}

	suffix := 0
	for suffix < limit-prefix && a[len(a)-1-suffix] == b[len(b)-1-suffix] {
		suffix++
	}

	return (prefix + suffix) * maxScore / (len(a) + len(b))
}
