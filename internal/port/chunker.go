package port

// Chunker splits raw text into ordered, deduplicated segments of text.
type Chunker interface {
	Chunk(text string) []string
}
