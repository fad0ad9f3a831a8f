// Package studio holds the session state of the illustration studio: the
// undo/redo result timeline, the bounded interaction log, and the session
// controller that drives the four creative operations.
package studio

// ResultKind tags the variant held by a Result.
type ResultKind int

const (
	// KindEmpty is the seeded "nothing displayed" state.
	KindEmpty ResultKind = iota
	// KindImage holds an encoded image (data URL).
	KindImage
	// KindText holds a text body with optional grounding sources.
	KindText
)

// Source is a web citation returned alongside a grounded text result.
// Ordering follows the provider's order and is preserved as-is.
type Source struct {
	URI   string `json:"uri"`
	Title string `json:"title"`
}

// Result is the single currently displayed creative artifact. Exactly one
// variant is populated, selected by Kind.
type Result struct {
	Kind    ResultKind
	Image   string // data URL, set when Kind == KindImage
	Text    string // markdown body, set when Kind == KindText
	Sources []Source
}

// EmptyResult returns the Empty variant.
func EmptyResult() Result {
	return Result{Kind: KindEmpty}
}

// ImageResult returns an Image variant holding the given data URL.
func ImageResult(dataURL string) Result {
	return Result{Kind: KindImage, Image: dataURL}
}

// TextResult returns a Text variant with the given body and sources.
func TextResult(body string, sources []Source) Result {
	return Result{Kind: KindText, Text: body, Sources: sources}
}

// IsEmpty reports whether the result holds no artifact.
func (r Result) IsEmpty() bool {
	return r.Kind == KindEmpty
}
