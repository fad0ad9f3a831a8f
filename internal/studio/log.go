package studio

import (
	"crypto/rand"
	"time"

	"github.com/oklog/ulid/v2"
)

// Action identifies which operation produced a log entry.
type Action string

const (
	ActionGenerate Action = "generate"
	ActionEdit     Action = "edit"
	ActionScene    Action = "scene"
	ActionIdeas    Action = "ideas"
)

// LogCapacity bounds the interaction log; the oldest entry is evicted once
// the capacity is exceeded.
const LogCapacity = 20

// PreviewMaxChars is the rune budget for text previews; longer text is
// truncated with an ellipsis marker.
const PreviewMaxChars = 100

// Entry is an immutable record of one completed, successful operation.
// Artifact carries the full payload (encoded image or full text); Preview is
// the short form shown in recall lists.
type Entry struct {
	ID        string `json:"id"`
	Action    Action `json:"action"`
	CreatedAt int64  `json:"created_at"`
	Prompt    string `json:"prompt"`
	Artifact  string `json:"artifact"`
	Preview   string `json:"preview"`
}

// Log is an append-only, capacity-bounded, newest-first record of completed
// operations. Session-only: created empty, never persisted.
type Log struct {
	entries []Entry
}

// NewLog returns an empty interaction log.
func NewLog() *Log {
	return &Log{}
}

// Record assigns a fresh ID and timestamp, prepends the entry, and evicts
// anything beyond capacity. Returns the constructed entry.
func (l *Log) Record(action Action, promptText, artifact, preview string) (Entry, error) {
	id, err := newEntryID()
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        id,
		Action:    action,
		CreatedAt: time.Now().Unix(),
		Prompt:    promptText,
		Artifact:  artifact,
		Preview:   preview,
	}

	l.entries = append([]Entry{entry}, l.entries...)
	if len(l.entries) > LogCapacity {
		l.entries = l.entries[:LogCapacity]
	}
	return entry, nil
}

// Entries returns the log contents, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Get looks up an entry by ID.
func (l *Log) Get(id string) (Entry, bool) {
	for _, e := range l.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// Len returns the number of recorded entries.
func (l *Log) Len() int {
	return len(l.entries)
}

// SelectResult projects a log entry back into a displayable Result. Image
// actions yield an Image result from the full artifact; text actions yield a
// Text result without sources — grounding sources are not persisted into log
// entries and cannot be recovered on replay.
func SelectResult(e Entry) Result {
	switch e.Action {
	case ActionGenerate, ActionEdit:
		return ImageResult(e.Artifact)
	default:
		return TextResult(e.Artifact, nil)
	}
}

// TruncatePreview shortens text to the preview budget, appending an ellipsis
// marker when truncation occurred. Counts runes, not bytes.
func TruncatePreview(text string) string {
	runes := []rune(text)
	if len(runes) <= PreviewMaxChars {
		return text
	}
	return string(runes[:PreviewMaxChars]) + "..."
}

// newEntryID generates a ULID for a log entry.
func newEntryID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
