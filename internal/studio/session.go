package studio

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/hpungsan/atelier/internal/errors"
	"github.com/hpungsan/atelier/internal/prompt"
)

// Mode identifies the active creative mode.
type Mode string

const (
	ModeGenerate Mode = "generate"
	ModeEdit     Mode = "edit"
	ModeScene    Mode = "scene"
	ModeIdeas    Mode = "ideas"
)

// Generator is the façade over the four external operations. Image operations
// return the artifact as a data URL; CharacterIdeas additionally returns the
// grounding sources in provider order.
type Generator interface {
	GenerateImage(ctx context.Context, promptText, aspectRatio string, quality prompt.Quality) (string, error)
	EditImage(ctx context.Context, req EditRequest) (string, error)
	ExpandScene(ctx context.Context, idea string) (string, error)
	CharacterIdeas(ctx context.Context, question string) (string, []Source, error)
}

// EditRequest carries an image edit: the staged source image plus the raw
// creative parameters. Prompt compilation happens inside the client.
type EditRequest struct {
	Prompt         string
	MIMEType       string
	Data           []byte
	StyleStrength  int
	Creativity     int
	NegativePrompt string
}

// EditSource is the image staged for editing. At most one is staged; staging
// a new one replaces it wholesale, and it persists across mode changes until
// explicitly replaced.
type EditSource struct {
	Name     string
	MIMEType string
	Data     []byte
	DataURL  string
}

// GenerateInput contains parameters for image generation.
type GenerateInput struct {
	Prompt      string
	AspectRatio string         // defaults to 3:4
	Quality     prompt.Quality // defaults to standard
}

// EditInput contains parameters for editing the staged image.
type EditInput struct {
	Prompt         string
	StyleStrength  int // 0-100
	Creativity     int // 0-100
	NegativePrompt string
}

// Session owns the result timeline, the interaction log, and the staged edit
// source for the lifetime of one session. A single-slot in-flight guard
// rejects overlapping submissions, so commits apply in completion order with
// at most one call outstanding.
type Session struct {
	gen Generator

	mu       sync.Mutex
	busy     bool
	mode     Mode
	timeline *Timeline
	log      *Log
	staged   *EditSource
	lastErr  string
	// cleared marks a display reset after a failed action: the visible
	// result reads as Empty without the timeline being touched.
	cleared bool
}

// NewSession creates a session in generate mode with an empty timeline and log.
func NewSession(gen Generator) *Session {
	return &Session{
		gen:      gen,
		mode:     ModeGenerate,
		timeline: NewTimeline(),
		log:      NewLog(),
	}
}

// GenerateImage runs the image generation action: validate, invoke, commit,
// record. Returns the new log entry on success.
func (s *Session) GenerateImage(ctx context.Context, in GenerateInput) (Entry, error) {
	if in.AspectRatio == "" {
		in.AspectRatio = "3:4"
	}
	if in.Quality == "" {
		in.Quality = prompt.QualityStandard
	}

	err := s.begin(func() error {
		if in.Prompt == "" {
			return errors.NewInvalidRequest("prompt is required")
		}
		if !prompt.ValidAspectRatio(in.AspectRatio) {
			return errors.NewInvalidRequest("unsupported aspect ratio: " + in.AspectRatio)
		}
		if in.Quality != prompt.QualityStandard && in.Quality != prompt.QualityHD {
			return errors.NewInvalidRequest("quality must be standard or hd")
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	dataURL, err := s.gen.GenerateImage(ctx, in.Prompt, in.AspectRatio, in.Quality)
	if err != nil {
		return Entry{}, s.fail(err)
	}
	return s.succeed(ActionGenerate, in.Prompt, ImageResult(dataURL), dataURL, dataURL)
}

// EditImage runs the image edit action against the staged edit source.
func (s *Session) EditImage(ctx context.Context, in EditInput) (Entry, error) {
	var src EditSource
	err := s.begin(func() error {
		if in.Prompt == "" {
			return errors.NewInvalidRequest("edit instruction is required")
		}
		if s.staged == nil {
			return errors.NewInvalidRequest("no image staged for editing; stage one first")
		}
		if in.StyleStrength < 0 || in.StyleStrength > 100 {
			return errors.NewInvalidRequest("style strength must be between 0 and 100")
		}
		if in.Creativity < 0 || in.Creativity > 100 {
			return errors.NewInvalidRequest("creativity must be between 0 and 100")
		}
		src = *s.staged
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	dataURL, err := s.gen.EditImage(ctx, EditRequest{
		Prompt:         in.Prompt,
		MIMEType:       src.MIMEType,
		Data:           src.Data,
		StyleStrength:  in.StyleStrength,
		Creativity:     in.Creativity,
		NegativePrompt: in.NegativePrompt,
	})
	if err != nil {
		return Entry{}, s.fail(err)
	}
	return s.succeed(ActionEdit, in.Prompt, ImageResult(dataURL), dataURL, dataURL)
}

// ExpandScene runs the scene description expansion action.
func (s *Session) ExpandScene(ctx context.Context, idea string) (Entry, error) {
	err := s.begin(func() error {
		if idea == "" {
			return errors.NewInvalidRequest("scene idea is required")
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	text, err := s.gen.ExpandScene(ctx, idea)
	if err != nil {
		return Entry{}, s.fail(err)
	}
	return s.succeed(ActionScene, idea, TextResult(text, nil), text, TruncatePreview(text))
}

// CharacterIdeas runs the grounded idea retrieval action. The sources are
// part of the displayed result but are not retained in the log entry.
func (s *Session) CharacterIdeas(ctx context.Context, question string) (Entry, error) {
	err := s.begin(func() error {
		if question == "" {
			return errors.NewInvalidRequest("question is required")
		}
		return nil
	})
	if err != nil {
		return Entry{}, err
	}

	text, sources, err := s.gen.CharacterIdeas(ctx, question)
	if err != nil {
		return Entry{}, s.fail(err)
	}
	return s.succeed(ActionIdeas, question, TextResult(text, sources), text, TruncatePreview(text))
}

// begin validates under the lock and claims the in-flight slot. On any error
// the slot is not claimed, no history is touched, and the error message
// becomes visible.
func (s *Session) begin(validate func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.busy {
		err := errors.NewBusy()
		s.lastErr = err.Message
		return err
	}
	if err := validate(); err != nil {
		s.lastErr = errors.Message(err)
		return err
	}
	s.busy = true
	s.lastErr = ""
	return nil
}

// succeed commits the result, records the log entry, and releases the slot.
func (s *Session) succeed(action Action, promptText string, res Result, artifact, preview string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	entry, err := s.log.Record(action, promptText, artifact, preview)
	if err != nil {
		s.lastErr = errors.Message(err)
		return Entry{}, errors.NewInternal(err)
	}
	s.timeline.Commit(res, false)
	s.cleared = false
	return entry, nil
}

// fail surfaces the error and resets the displayed result to Empty. This is
// a display reset only: the timeline is not committed to, so undo/redo
// history stays exactly as it was.
func (s *Session) fail(err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.busy = false
	s.lastErr = errors.Message(err)
	s.cleared = true
	return err
}

// StageFile reads an image file and stages it for editing, committing it to
// the timeline as the displayed result.
func (s *Session) StageFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.NewInvalidRequest("cannot read image file: " + err.Error())
	}
	mimeType := GuessMIME(path)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.staged = &EditSource{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Data:     data,
		DataURL:  ToDataURL(mimeType, data),
	}
	s.timeline.Commit(ImageResult(s.staged.DataURL), false)
	s.lastErr = ""
	s.cleared = false
	return nil
}

// TransferToEdit decodes the current image result into the staged edit
// source and switches to edit mode. Fails if the current result is not a
// well-formed encoded image.
func (s *Session) TransferToEdit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur := s.currentLocked()
	if cur.Kind != KindImage {
		err := errors.NewInvalidRequest("current result is not an image")
		s.lastErr = err.Message
		return err
	}
	mimeType, data, err := ParseDataURL(cur.Image)
	if err != nil {
		s.lastErr = "cannot convert the image for editing"
		return err
	}

	s.staged = &EditSource{
		Name:     "generated-image",
		MIMEType: mimeType,
		Data:     data,
		DataURL:  cur.Image,
	}
	s.mode = ModeEdit
	return nil
}

// Recall projects a log entry into a Result and commits it as the new
// displayed result.
func (s *Session) Recall(id string) (Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.log.Get(id)
	if !ok {
		return Result{}, errors.NewInvalidRequest("history entry not found: " + id)
	}
	res := SelectResult(entry)
	s.timeline.Commit(res, false)
	s.cleared = false
	return res, nil
}

// Clear commits an Empty snapshot and drops any visible error.
func (s *Session) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.timeline.Commit(EmptyResult(), false)
	s.lastErr = ""
	s.cleared = false
}

// Undo steps the displayed result back one snapshot.
func (s *Session) Undo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.Undo()
	s.cleared = false
}

// Redo steps the displayed result forward one snapshot.
func (s *Session) Redo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeline.Redo()
	s.cleared = false
}

// CanUndo reports whether an undo step is available.
func (s *Session) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.CanUndo()
}

// CanRedo reports whether a redo step is available.
func (s *Session) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.timeline.CanRedo()
}

// Current returns the displayed result: Empty after a failed action's
// display reset, the timeline's current snapshot otherwise.
func (s *Session) Current() Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked()
}

func (s *Session) currentLocked() Result {
	if s.cleared {
		return EmptyResult()
	}
	return s.timeline.Current()
}

// History returns the interaction log entries, newest first.
func (s *Session) History() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.log.Entries()
}

// Err returns the last user-visible error message, or "" if none.
func (s *Session) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

// Loading reports whether an action is in flight.
func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.busy
}

// Mode returns the active creative mode.
func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

// SetMode switches the active creative mode. The staged edit source is kept.
func (s *Session) SetMode(m Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.mode = m
}

// Staged returns the staged edit source, or nil if none is staged.
func (s *Session) Staged() *EditSource {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.staged == nil {
		return nil
	}
	src := *s.staged
	return &src
}
