package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/hpungsan/atelier/internal/config"
	"github.com/hpungsan/atelier/internal/errors"
	"github.com/hpungsan/atelier/internal/prompt"
	"github.com/hpungsan/atelier/internal/render"
	"github.com/hpungsan/atelier/internal/studio"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(session *studio.Session, store *config.Store) *cli.App {
	app := &cli.App{
		Name:    "atelier",
		Usage:   "Generative illustration studio",
		Version: Version,
		Commands: []*cli.Command{
			generateCmd(session),
			editCmd(session),
			sceneCmd(session),
			ideasCmd(session),
			keyCmd(store),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

// actionSummary is the JSON shape CLI commands print on success.
type actionSummary struct {
	ID      string          `json:"id"`
	Action  string          `json:"action"`
	Kind    string          `json:"kind"`
	Text    string          `json:"text,omitempty"`
	Sources []studio.Source `json:"sources,omitempty"`
	Saved   string          `json:"saved,omitempty"`
}

// finish saves the current result if requested and prints the summary.
func finish(session *studio.Session, entry studio.Entry, outPath string) error {
	cur := session.Current()

	summary := actionSummary{
		ID:     entry.ID,
		Action: string(entry.Action),
	}
	switch cur.Kind {
	case studio.KindImage:
		summary.Kind = "image"
	case studio.KindText:
		summary.Kind = "text"
		summary.Text = cur.Text
		summary.Sources = cur.Sources
	default:
		summary.Kind = "empty"
	}

	if outPath != "" {
		if err := render.SaveResult(cur, outPath); err != nil {
			return outputError(err)
		}
		summary.Saved = outPath
	} else if cur.Kind == studio.KindImage {
		fmt.Fprintln(os.Stderr, "note: image result held in memory only; pass --out to save it")
	}

	return outputJSON(summary)
}

// generateCmd creates the generate command.
func generateCmd(session *studio.Session) *cli.Command {
	return &cli.Command{
		Name:      "generate",
		Usage:     "Generate an illustration from a text prompt",
		ArgsUsage: "<prompt>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "aspect-ratio", Aliases: []string{"a"}, Value: "3:4", Usage: "Aspect ratio: 1:1|3:4|4:3|9:16|16:9"},
			&cli.StringFlag{Name: "quality", Aliases: []string{"q"}, Value: "standard", Usage: "Output quality: standard|hd"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the image to this path"},
		},
		Action: func(c *cli.Context) error {
			promptText := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if promptText == "" {
				return outputError(errors.NewInvalidRequest("prompt is required"))
			}

			entry, err := session.GenerateImage(c.Context, studio.GenerateInput{
				Prompt:      promptText,
				AspectRatio: c.String("aspect-ratio"),
				Quality:     prompt.Quality(c.String("quality")),
			})
			if err != nil {
				return outputError(err)
			}
			return finish(session, entry, c.String("out"))
		},
	}
}

// editCmd creates the edit command.
func editCmd(session *studio.Session) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit an image with a text instruction",
		ArgsUsage: "<instruction>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "image", Aliases: []string{"i"}, Required: true, Usage: "Path to the image to edit"},
			&cli.IntFlag{Name: "style-strength", Value: 50, Usage: "0-100; low preserves the original style, high allows style shifts"},
			&cli.IntFlag{Name: "creativity", Value: 50, Usage: "0-100; low follows the instruction strictly, high takes liberties"},
			&cli.StringFlag{Name: "negative", Usage: "Things to avoid in the output"},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the edited image to this path"},
		},
		Action: func(c *cli.Context) error {
			instruction := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
			if instruction == "" {
				return outputError(errors.NewInvalidRequest("edit instruction is required"))
			}

			if err := session.StageFile(c.String("image")); err != nil {
				return outputError(err)
			}

			entry, err := session.EditImage(c.Context, studio.EditInput{
				Prompt:         instruction,
				StyleStrength:  c.Int("style-strength"),
				Creativity:     c.Int("creativity"),
				NegativePrompt: c.String("negative"),
			})
			if err != nil {
				return outputError(err)
			}
			return finish(session, entry, c.String("out"))
		},
	}
}

// sceneCmd creates the scene command.
func sceneCmd(session *studio.Session) *cli.Command {
	return &cli.Command{
		Name:      "scene",
		Usage:     "Expand a short idea into a rich scene description",
		ArgsUsage: "<idea>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the description to this path (.html renders a page)"},
		},
		Action: func(c *cli.Context) error {
			idea := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))

			entry, err := session.ExpandScene(c.Context, idea)
			if err != nil {
				return outputError(err)
			}
			return finish(session, entry, c.String("out"))
		},
	}
}

// ideasCmd creates the ideas command.
func ideasCmd(session *studio.Session) *cli.Command {
	return &cli.Command{
		Name:      "ideas",
		Usage:     "Fetch web-grounded character ideas with source citations",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write the ideas to this path (.html renders a page)"},
		},
		Action: func(c *cli.Context) error {
			question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))

			entry, err := session.CharacterIdeas(c.Context, question)
			if err != nil {
				return outputError(err)
			}
			return finish(session, entry, c.String("out"))
		},
	}
}

// keyCmd creates the key command with its set/show/clear subcommands.
func keyCmd(store *config.Store) *cli.Command {
	return &cli.Command{
		Name:  "key",
		Usage: "Manage the Gemini API key",
		Subcommands: []*cli.Command{
			{
				Name:      "set",
				Usage:     "Store the API key",
				ArgsUsage: "<key>",
				Action: func(c *cli.Context) error {
					key := c.Args().First()
					if key == "" {
						return outputError(errors.NewInvalidRequest("key is required"))
					}
					if err := store.Set(key); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]string{"status": "stored"})
				},
			},
			{
				Name:  "show",
				Usage: "Show whether a key is configured (masked)",
				Action: func(c *cli.Context) error {
					key := store.APIKey()
					if key == "" {
						return outputJSON(map[string]any{"configured": false})
					}
					return outputJSON(map[string]any{
						"configured": true,
						"key":        maskKey(key),
					})
				},
			},
			{
				Name:  "clear",
				Usage: "Remove the stored API key",
				Action: func(c *cli.Context) error {
					if err := store.Set(""); err != nil {
						return outputError(err)
					}
					return outputJSON(map[string]string{"status": "cleared"})
				},
			},
		},
	}
}

// Helper functions

// maskKey hides all but the last four characters of a key.
func maskKey(key string) string {
	if len(key) <= 4 {
		return strings.Repeat("*", len(key))
	}
	return strings.Repeat("*", len(key)-4) + key[len(key)-4:]
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if aErr, ok := err.(*errors.AtelierError); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", aErr.Code, aErr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}
