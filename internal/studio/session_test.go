package studio

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/atelier/internal/errors"
	"github.com/hpungsan/atelier/internal/prompt"
)

// fakeGenerator records calls and returns canned responses.
type fakeGenerator struct {
	calls    int
	imageURL string
	text     string
	sources  []Source
	err      error

	lastEdit EditRequest
}

func (f *fakeGenerator) GenerateImage(_ context.Context, _, _ string, _ prompt.Quality) (string, error) {
	f.calls++
	return f.imageURL, f.err
}

func (f *fakeGenerator) EditImage(_ context.Context, req EditRequest) (string, error) {
	f.calls++
	f.lastEdit = req
	return f.imageURL, f.err
}

func (f *fakeGenerator) ExpandScene(_ context.Context, _ string) (string, error) {
	f.calls++
	return f.text, f.err
}

func (f *fakeGenerator) CharacterIdeas(_ context.Context, _ string) (string, []Source, error) {
	f.calls++
	return f.text, f.sources, f.err
}

const testImageURL = "data:image/png;base64,iVBORw=="

func TestSession_GenerateImageSuccess(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	entry, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "a silver-haired girl"})
	require.NoError(t, err)

	require.Equal(t, ActionGenerate, entry.Action)
	require.Equal(t, "a silver-haired girl", entry.Prompt)
	require.Equal(t, testImageURL, entry.Artifact)
	require.Equal(t, testImageURL, entry.Preview, "image previews carry the full payload")

	cur := s.Current()
	require.Equal(t, KindImage, cur.Kind)
	require.Equal(t, testImageURL, cur.Image)
	require.True(t, s.CanUndo())
	require.Empty(t, s.Err())
	require.False(t, s.Loading())
	require.Len(t, s.History(), 1)
}

func TestSession_ValidationBlocksCall(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	_, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: ""})
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	require.Equal(t, 0, gen.calls, "validation failure must not reach the client")
	require.Len(t, s.History(), 0)
	require.False(t, s.CanUndo(), "validation failure must not touch the timeline")
	require.Equal(t, "prompt is required", s.Err())
}

func TestSession_InvalidAspectRatio(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	_, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "p", AspectRatio: "2:3"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Equal(t, 0, gen.calls)
}

func TestSession_FailureLeavesHistoryIntact(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	// Build timeline [Empty, A, B], cursor at B
	_, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "A"})
	require.NoError(t, err)
	_, err = s.GenerateImage(context.Background(), GenerateInput{Prompt: "B"})
	require.NoError(t, err)

	gen.err = errors.NewGenerationFailed("image generation")
	_, err = s.GenerateImage(context.Background(), GenerateInput{Prompt: "C"})
	require.Error(t, err)

	// Displayed result resets to Empty without the timeline being touched
	require.True(t, s.Current().IsEmpty())
	require.Contains(t, s.Err(), "safety filtering")
	require.False(t, s.Loading())
	require.Len(t, s.History(), 2, "failed action must not produce a log entry")

	// Undo then redo still navigates the intact [Empty, A, B] history
	require.True(t, s.CanUndo())
	s.Undo()
	require.Equal(t, KindImage, s.Current().Kind)
	require.True(t, s.CanRedo())
	s.Redo()
	require.Equal(t, KindImage, s.Current().Kind, "snapshot B survived the failure")
}

func TestSession_UndoRestoresDisplayAfterFailure(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	_, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "A"})
	require.NoError(t, err)

	gen.err = errors.NewProvider(nil)
	_, err = s.GenerateImage(context.Background(), GenerateInput{Prompt: "B"})
	require.Error(t, err)
	require.True(t, s.Current().IsEmpty())

	// Navigating history lifts the display reset
	s.Undo()
	s.Redo()
	require.Equal(t, KindImage, s.Current().Kind)
}

func TestSession_EditRequiresStagedImage(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	_, err := s.EditImage(context.Background(), EditInput{Prompt: "make it pink"})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Equal(t, 0, gen.calls)
}

func TestSession_StageFileAndEdit(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	path := filepath.Join(t.TempDir(), "input.jpg")
	raw := []byte{0xff, 0xd8, 0xff}
	require.NoError(t, os.WriteFile(path, raw, 0600))

	require.NoError(t, s.StageFile(path))

	staged := s.Staged()
	require.NotNil(t, staged)
	require.Equal(t, "input.jpg", staged.Name)
	require.Equal(t, "image/jpeg", staged.MIMEType)
	require.Equal(t, raw, staged.Data)

	// Staging displays the uploaded image
	require.Equal(t, KindImage, s.Current().Kind)

	_, err := s.EditImage(context.Background(), EditInput{
		Prompt:        "make her hair pink",
		StyleStrength: 50,
		Creativity:    50,
	})
	require.NoError(t, err)
	require.Equal(t, "image/jpeg", gen.lastEdit.MIMEType)
	require.Equal(t, raw, gen.lastEdit.Data)
}

func TestSession_SliderRangeValidation(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	path := filepath.Join(t.TempDir(), "x.png")
	require.NoError(t, os.WriteFile(path, []byte{1}, 0600))
	require.NoError(t, s.StageFile(path))

	_, err := s.EditImage(context.Background(), EditInput{Prompt: "p", StyleStrength: 101})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = s.EditImage(context.Background(), EditInput{Prompt: "p", Creativity: -1})
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Equal(t, 0, gen.calls)
}

func TestSession_SceneAndIdeas(t *testing.T) {
	longText := strings.Repeat("a", 150)
	gen := &fakeGenerator{
		text:    longText,
		sources: []Source{{URI: "https://example.com", Title: "Example"}},
	}
	s := NewSession(gen)

	entry, err := s.ExpandScene(context.Background(), "midnight library")
	require.NoError(t, err)
	require.Equal(t, ActionScene, entry.Action)
	require.Equal(t, longText, entry.Artifact, "artifact carries the full text")
	require.Equal(t, strings.Repeat("a", 100)+"...", entry.Preview)

	entry, err = s.CharacterIdeas(context.Background(), "popular archetypes?")
	require.NoError(t, err)
	require.Equal(t, ActionIdeas, entry.Action)

	cur := s.Current()
	require.Equal(t, KindText, cur.Kind)
	require.Equal(t, []Source{{URI: "https://example.com", Title: "Example"}}, cur.Sources)

	// Recall loses the grounding sources by design
	res, err := s.Recall(entry.ID)
	require.NoError(t, err)
	require.Equal(t, KindText, res.Kind)
	require.Nil(t, res.Sources)
}

func TestSession_RecallCommitsToTimeline(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	entry, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "A"})
	require.NoError(t, err)

	s.Clear()
	require.True(t, s.Current().IsEmpty())

	res, err := s.Recall(entry.ID)
	require.NoError(t, err)
	require.Equal(t, KindImage, res.Kind)
	require.Equal(t, KindImage, s.Current().Kind)

	// Recall is a commit: undo goes back to the cleared state
	s.Undo()
	require.True(t, s.Current().IsEmpty())
}

func TestSession_RecallUnknownID(t *testing.T) {
	s := NewSession(&fakeGenerator{})
	_, err := s.Recall("01JUNKID")
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestSession_TransferToEdit(t *testing.T) {
	gen := &fakeGenerator{imageURL: testImageURL}
	s := NewSession(gen)

	_, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "A"})
	require.NoError(t, err)

	require.NoError(t, s.TransferToEdit())
	require.Equal(t, ModeEdit, s.Mode())

	staged := s.Staged()
	require.NotNil(t, staged)
	require.Equal(t, "image/png", staged.MIMEType)
	require.Equal(t, testImageURL, staged.DataURL)
}

func TestSession_TransferToEditRequiresImage(t *testing.T) {
	gen := &fakeGenerator{text: "just text"}
	s := NewSession(gen)

	_, err := s.ExpandScene(context.Background(), "idea")
	require.NoError(t, err)

	err = s.TransferToEdit()
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))
	require.Equal(t, ModeGenerate, s.Mode(), "mode unchanged on failed transfer")
}

func TestSession_BusyRejectsOverlap(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	gen := &blockingGenerator{release: release, started: started}
	s := NewSession(gen)

	done := make(chan error, 1)
	go func() {
		_, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "slow"})
		done <- err
	}()

	<-started
	require.True(t, s.Loading())

	_, err := s.GenerateImage(context.Background(), GenerateInput{Prompt: "overlapping"})
	require.True(t, errors.Is(err, errors.ErrBusy))

	close(release)
	require.NoError(t, <-done)
	require.False(t, s.Loading())
}

// blockingGenerator parks GenerateImage until released.
type blockingGenerator struct {
	release chan struct{}
	started chan struct{}
}

func (b *blockingGenerator) GenerateImage(_ context.Context, _, _ string, _ prompt.Quality) (string, error) {
	close(b.started)
	<-b.release
	return testImageURL, nil
}

func (b *blockingGenerator) EditImage(_ context.Context, _ EditRequest) (string, error) {
	return "", nil
}

func (b *blockingGenerator) ExpandScene(_ context.Context, _ string) (string, error) {
	return "", nil
}

func (b *blockingGenerator) CharacterIdeas(_ context.Context, _ string) (string, []Source, error) {
	return "", nil, nil
}
