package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/atelier/internal/errors"
	"github.com/hpungsan/atelier/internal/prompt"
	"github.com/hpungsan/atelier/internal/render"
	"github.com/hpungsan/atelier/internal/studio"
)

// Handlers holds the long-lived session driven by the MCP tools.
type Handlers struct {
	session *studio.Session
}

// NewHandlers creates a Handlers instance around one session.
func NewHandlers(session *studio.Session) *Handlers {
	return &Handlers{session: session}
}

// Request types for each tool

// GenerateRequest represents the arguments for studio_generate.
type GenerateRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
	Quality     string `json:"quality,omitempty"`
}

// EditRequest represents the arguments for studio_edit.
type EditRequest struct {
	Prompt         string `json:"prompt"`
	StyleStrength  *int   `json:"style_strength,omitempty"`
	Creativity     *int   `json:"creativity,omitempty"`
	NegativePrompt string `json:"negative_prompt,omitempty"`
}

// SceneRequest represents the arguments for studio_scene.
type SceneRequest struct {
	Idea string `json:"idea"`
}

// IdeasRequest represents the arguments for studio_ideas.
type IdeasRequest struct {
	Question string `json:"question"`
}

// StageRequest represents the arguments for studio_stage.
type StageRequest struct {
	Path string `json:"path"`
}

// RecallRequest represents the arguments for studio_recall.
type RecallRequest struct {
	ID string `json:"id"`
}

// SaveRequest represents the arguments for studio_save.
type SaveRequest struct {
	Path string `json:"path"`
}

// Response payloads

// entrySummary is a log entry without its full artifact, which can be large
// for images. Use studio_current or studio_save to get at the payload.
type entrySummary struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	CreatedAt int64  `json:"created_at"`
	Prompt    string `json:"prompt"`
	Preview   string `json:"preview,omitempty"`
}

// actionResult reports a completed operation plus the navigation state.
type actionResult struct {
	Entry   entrySummary `json:"entry"`
	Kind    string       `json:"kind"`
	CanUndo bool         `json:"can_undo"`
	CanRedo bool         `json:"can_redo"`
}

// currentResult is the studio_current payload.
type currentResult struct {
	Kind    string          `json:"kind"`
	Image   string          `json:"image,omitempty"`
	Text    string          `json:"text,omitempty"`
	Sources []studio.Source `json:"sources,omitempty"`
	Error   string          `json:"error,omitempty"`
	CanUndo bool            `json:"can_undo"`
	CanRedo bool            `json:"can_redo"`
}

func summarize(e studio.Entry) entrySummary {
	s := entrySummary{
		ID:        e.ID,
		Action:    string(e.Action),
		CreatedAt: e.CreatedAt,
		Prompt:    e.Prompt,
	}
	// Image previews duplicate the artifact; only text previews are useful here
	if e.Action == studio.ActionScene || e.Action == studio.ActionIdeas {
		s.Preview = e.Preview
	}
	return s
}

func kindName(k studio.ResultKind) string {
	switch k {
	case studio.KindImage:
		return "image"
	case studio.KindText:
		return "text"
	default:
		return "empty"
	}
}

func (h *Handlers) action(entry studio.Entry) (*mcp.CallToolResult, error) {
	return successResult(actionResult{
		Entry:   summarize(entry),
		Kind:    kindName(h.session.Current().Kind),
		CanUndo: h.session.CanUndo(),
		CanRedo: h.session.CanRedo(),
	})
}

// Handler implementations

// HandleGenerate handles the studio_generate tool call.
func (h *Handlers) HandleGenerate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GenerateRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entry, err := h.session.GenerateImage(ctx, studio.GenerateInput{
		Prompt:      input.Prompt,
		AspectRatio: input.AspectRatio,
		Quality:     prompt.Quality(input.Quality),
	})
	if err != nil {
		return errorResult(err), nil
	}
	return h.action(entry)
}

// HandleEdit handles the studio_edit tool call.
func (h *Handlers) HandleEdit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[EditRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	in := studio.EditInput{
		Prompt:         input.Prompt,
		StyleStrength:  50,
		Creativity:     50,
		NegativePrompt: input.NegativePrompt,
	}
	if input.StyleStrength != nil {
		in.StyleStrength = *input.StyleStrength
	}
	if input.Creativity != nil {
		in.Creativity = *input.Creativity
	}

	entry, err := h.session.EditImage(ctx, in)
	if err != nil {
		return errorResult(err), nil
	}
	return h.action(entry)
}

// HandleScene handles the studio_scene tool call.
func (h *Handlers) HandleScene(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SceneRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entry, err := h.session.ExpandScene(ctx, input.Idea)
	if err != nil {
		return errorResult(err), nil
	}
	return h.action(entry)
}

// HandleIdeas handles the studio_ideas tool call.
func (h *Handlers) HandleIdeas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[IdeasRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	entry, err := h.session.CharacterIdeas(ctx, input.Question)
	if err != nil {
		return errorResult(err), nil
	}
	return h.action(entry)
}

// HandleStage handles the studio_stage tool call.
func (h *Handlers) HandleStage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[StageRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	if err := h.session.StageFile(input.Path); err != nil {
		return errorResult(err), nil
	}
	staged := h.session.Staged()
	return successResult(map[string]any{
		"staged":    staged.Name,
		"mime_type": staged.MIMEType,
	})
}

// HandleTransfer handles the studio_transfer tool call.
func (h *Handlers) HandleTransfer(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if err := h.session.TransferToEdit(); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"mode": string(h.session.Mode())})
}

// HandleUndo handles the studio_undo tool call.
func (h *Handlers) HandleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.session.Undo()
	return h.currentPayload()
}

// HandleRedo handles the studio_redo tool call.
func (h *Handlers) HandleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.session.Redo()
	return h.currentPayload()
}

// HandleClear handles the studio_clear tool call.
func (h *Handlers) HandleClear(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.session.Clear()
	return h.currentPayload()
}

// HandleCurrent handles the studio_current tool call.
func (h *Handlers) HandleCurrent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return h.currentPayload()
}

func (h *Handlers) currentPayload() (*mcp.CallToolResult, error) {
	cur := h.session.Current()
	out := currentResult{
		Kind:    kindName(cur.Kind),
		Error:   h.session.Err(),
		CanUndo: h.session.CanUndo(),
		CanRedo: h.session.CanRedo(),
	}
	switch cur.Kind {
	case studio.KindImage:
		out.Image = cur.Image
	case studio.KindText:
		out.Text = cur.Text
		out.Sources = cur.Sources
	}
	return successResult(out)
}

// HandleHistory handles the studio_history tool call.
func (h *Handlers) HandleHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	entries := h.session.History()
	summaries := make([]entrySummary, len(entries))
	for i, e := range entries {
		summaries[i] = summarize(e)
	}
	return successResult(map[string]any{"entries": summaries})
}

// HandleRecall handles the studio_recall tool call.
func (h *Handlers) HandleRecall(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[RecallRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if _, err := h.session.Recall(input.ID); err != nil {
		return errorResult(err), nil
	}
	return h.currentPayload()
}

// HandleSave handles the studio_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.Path == "" {
		return errorResult(errors.NewInvalidRequest("path is required")), nil
	}

	if err := render.SaveResult(h.session.Current(), input.Path); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{"saved": input.Path})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if aErr, ok := err.(*errors.AtelierError); ok {
		payload = map[string]any{
			"error": map[string]any{
				"code":    aErr.Code,
				"message": aErr.Message,
				"status":  aErr.Status,
			},
		}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
