package chunk

import (
	"fmt"

	"github.com/kailas-cloud/headrag/internal/domain"
)

// Chunk is a bounded span of the source document. Offsets and lengths are in runes.
type Chunk struct {
	startOffset int
	length      int
	text        string
	header      string
}

// New creates a chunk without a header.
func New(startOffset int, text string) Chunk {
	return Chunk{startOffset: startOffset, length: len([]rune(text)), text: text}
}

// WithHeader returns a copy of the chunk carrying the synthesized header.
func (c Chunk) WithHeader(header string) Chunk {
	c.header = header
	return c
}

// StartOffset returns the rune offset of the chunk in the document.
func (c Chunk) StartOffset() int { return c.startOffset }

// Length returns the chunk length in runes.
func (c Chunk) Length() int { return c.length }

// End returns the exclusive end offset.
func (c Chunk) End() int { return c.startOffset + c.length }

// Text returns the chunk body.
func (c Chunk) Text() string { return c.text }

// Header returns the synthesized header, empty until set.
func (c Chunk) Header() string { return c.header }

// Split cuts text into windows of windowSize runes, each starting stride = windowSize-overlap
// runes after the previous one, until the start offset reaches the end of the text.
// The last windows may be shorter than windowSize.
func Split(text string, windowSize, overlap int) ([]Chunk, error) {
	if err := Validate(windowSize, overlap); err != nil {
		return nil, err
	}

	runes := []rune(text)
	stride := windowSize - overlap
	chunks := make([]Chunk, 0, Count(len(runes), windowSize, overlap))

	for start := 0; start < len(runes); start += stride {
		end := min(start+windowSize, len(runes))
		chunks = append(chunks, Chunk{
			startOffset: start,
			length:      end - start,
			text:        string(runes[start:end]),
		})
	}

	return chunks, nil
}

// Validate checks window parameters: windowSize > 0 and 0 <= overlap < windowSize.
func Validate(windowSize, overlap int) error {
	if windowSize <= 0 {
		return fmt.Errorf("window size must be positive, got %d: %w",
			windowSize, domain.ErrInvalidConfiguration)
	}
	if overlap < 0 || overlap >= windowSize {
		return fmt.Errorf("overlap must be in [0, %d), got %d: %w",
			windowSize, overlap, domain.ErrInvalidConfiguration)
	}
	return nil
}

// Count returns the number of chunks Split produces for a text of n runes.
func Count(n, windowSize, overlap int) int {
	if n <= 0 || Validate(windowSize, overlap) != nil {
		return 0
	}
	stride := windowSize - overlap
	return (n + stride - 1) / stride
}

// Reconstruct concatenates chunk bodies, dropping the overlap-length prefix of every chunk
// but the first. For chunks produced by Split it returns the original text.
func Reconstruct(chunks []Chunk, overlap int) string {
	var out []rune
	for i, c := range chunks {
		r := []rune(c.text)
		if i > 0 {
			r = r[min(overlap, len(r)):]
		}
		out = append(out, r...)
	}
	return string(out)
}
