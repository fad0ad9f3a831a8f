// Package mcp exposes the studio session as MCP tools over stdio, so agent
// clients can drive generation, editing, and history navigation against one
// long-lived session.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/atelier/internal/studio"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"studio_generate": {
		def:     generateToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGenerate },
	},
	"studio_edit": {
		def:     editToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleEdit },
	},
	"studio_scene": {
		def:     sceneToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleScene },
	},
	"studio_ideas": {
		def:     ideasToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleIdeas },
	},
	"studio_stage": {
		def:     stageToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleStage },
	},
	"studio_transfer": {
		def:     transferToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleTransfer },
	},
	"studio_undo": {
		def:     undoToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleUndo },
	},
	"studio_redo": {
		def:     redoToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRedo },
	},
	"studio_current": {
		def:     currentToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCurrent },
	},
	"studio_history": {
		def:     historyToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleHistory },
	},
	"studio_clear": {
		def:     clearToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleClear },
	},
	"studio_recall": {
		def:     recallToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleRecall },
	},
	"studio_save": {
		def:     saveToolDef(),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
}

func generateToolDef() mcp.Tool {
	return mcp.NewTool("studio_generate",
		mcp.WithDescription("Generate an illustration from a text prompt. The result becomes the current displayed result and is recorded in the session history."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Description of the illustration to generate")),
		mcp.WithString("aspect_ratio", mcp.Description("Aspect ratio: 1:1, 3:4, 4:3, 9:16, or 16:9 (default 3:4)")),
		mcp.WithString("quality", mcp.Description("Output quality: standard or hd (default standard)")),
	)
}

func editToolDef() mcp.Tool {
	return mcp.NewTool("studio_edit",
		mcp.WithDescription("Edit the staged image with a text instruction. Stage an image first via studio_stage or studio_transfer."),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Edit instruction")),
		mcp.WithNumber("style_strength", mcp.Description("0-100; below 25 preserves the original style, above 75 allows style shifts (default 50)")),
		mcp.WithNumber("creativity", mcp.Description("0-100; below 25 follows the instruction strictly, above 75 takes creative liberties (default 50)")),
		mcp.WithString("negative_prompt", mcp.Description("Things to avoid in the output")),
	)
}

func sceneToolDef() mcp.Tool {
	return mcp.NewTool("studio_scene",
		mcp.WithDescription("Expand a short idea into a rich scene description suitable for an illustration prompt."),
		mcp.WithString("idea", mcp.Required(), mcp.Description("The scene idea to expand")),
	)
}

func ideasToolDef() mcp.Tool {
	return mcp.NewTool("studio_ideas",
		mcp.WithDescription("Fetch web-grounded character ideas with source citations."),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to research")),
	)
}

func stageToolDef() mcp.Tool {
	return mcp.NewTool("studio_stage",
		mcp.WithDescription("Stage an image file for editing. Replaces any previously staged image."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path to the image file")),
	)
}

func transferToolDef() mcp.Tool {
	return mcp.NewTool("studio_transfer",
		mcp.WithDescription("Stage the current image result for editing and switch to edit mode."),
	)
}

func undoToolDef() mcp.Tool {
	return mcp.NewTool("studio_undo",
		mcp.WithDescription("Step the displayed result back one snapshot."),
	)
}

func redoToolDef() mcp.Tool {
	return mcp.NewTool("studio_redo",
		mcp.WithDescription("Step the displayed result forward one snapshot."),
	)
}

func currentToolDef() mcp.Tool {
	return mcp.NewTool("studio_current",
		mcp.WithDescription("Return the current displayed result, including grounding sources for idea results."),
	)
}

func historyToolDef() mcp.Tool {
	return mcp.NewTool("studio_history",
		mcp.WithDescription("List the session's interaction history, newest first (previews only)."),
	)
}

func clearToolDef() mcp.Tool {
	return mcp.NewTool("studio_clear",
		mcp.WithDescription("Clear the displayed result and drop any visible error. Commits an empty snapshot, so the cleared state is undoable."),
	)
}

func recallToolDef() mcp.Tool {
	return mcp.NewTool("studio_recall",
		mcp.WithDescription("Make a history entry the current displayed result again."),
		mcp.WithString("id", mcp.Required(), mcp.Description("History entry ID")),
	)
}

func saveToolDef() mcp.Tool {
	return mcp.NewTool("studio_save",
		mcp.WithDescription("Write the current result to a file: raw image bytes, markdown, or HTML when the path ends in .html."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Destination file path")),
	)
}

// NewServer creates an MCP server with the studio tools registered against
// the given session.
func NewServer(session *studio.Session, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"atelier",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(session)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}
	return s
}

// Run starts the MCP server on stdio.
func Run(session *studio.Session, version string) error {
	return server.ServeStdio(NewServer(session, version))
}
