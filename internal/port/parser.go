package port

// ParsedDocument is the text and metadata extracted from raw fetched content.
type ParsedDocument struct {
	Text     string
	Metadata map[string]any
}

// Parser extracts readable text and metadata from raw content. A failed or
// unsupported parse returns a zero ParsedDocument and an error; parsers never
// panic on malformed input.
type Parser interface {
	Parse(raw string, contentType string) (ParsedDocument, error)
}
