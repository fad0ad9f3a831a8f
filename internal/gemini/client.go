// Package gemini wraps the Gemini SDK behind the four studio operations:
// image generation, image editing, scene expansion, and grounded idea
// retrieval. Each operation is a single round trip; there is no retry,
// caching, or rate limiting.
package gemini

import (
	"context"
	"sync"

	"google.golang.org/genai"

	"github.com/hpungsan/atelier/internal/config"
	"github.com/hpungsan/atelier/internal/errors"
	"github.com/hpungsan/atelier/internal/prompt"
	"github.com/hpungsan/atelier/internal/studio"
)

// untitledSource is the placeholder title for grounding citations that come
// back without one.
const untitledSource = "untitled"

// generateFunc matches the SDK's Models.GenerateContent signature. Injectable
// so tests can fabricate responses and count calls without network I/O.
type generateFunc func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

// Client is the façade over the external generative service. The underlying
// SDK client is created lazily from the credential store and rebuilt whenever
// the key changes.
type Client struct {
	creds *config.Store
	cfg   *config.Config

	mu     sync.Mutex
	sdk    *genai.Client
	sdkKey string

	invoke generateFunc // test seam; nil uses the SDK
}

var _ studio.Generator = (*Client)(nil)

// New creates a client backed by the given credential store and model
// configuration.
func New(creds *config.Store, cfg *config.Config) *Client {
	return &Client{creds: creds, cfg: cfg}
}

// GenerateImage compiles the generation prompt and returns the first inline
// image from the response as a data URL.
func (c *Client) GenerateImage(ctx context.Context, promptText, aspectRatio string, quality prompt.Quality) (string, error) {
	compiled := prompt.Generation(promptText, aspectRatio, quality)
	res, err := c.generate(ctx, c.cfg.ImageModel, genai.Text(compiled), &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return "", err
	}
	return firstImageDataURL(res, "image generation")
}

// EditImage sends the staged image alongside the compiled edit instruction
// and returns the first inline image from the response as a data URL.
func (c *Client) EditImage(ctx context.Context, req studio.EditRequest) (string, error) {
	compiled := prompt.Edit(req.Prompt, req.StyleStrength, req.Creativity, req.NegativePrompt)
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: req.MIMEType, Data: req.Data}},
		genai.NewPartFromText(compiled),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	res, err := c.generate(ctx, c.cfg.ImageModel, contents, &genai.GenerateContentConfig{
		ResponseModalities: []string{"IMAGE"},
	})
	if err != nil {
		return "", err
	}
	return firstImageDataURL(res, "image edit")
}

// ExpandScene asks the text model for an expanded scene description with an
// extended reasoning budget.
func (c *Client) ExpandScene(ctx context.Context, idea string) (string, error) {
	compiled := prompt.Scene(idea)
	res, err := c.generate(ctx, c.cfg.SceneModel, genai.Text(compiled), &genai.GenerateContentConfig{
		ThinkingConfig: &genai.ThinkingConfig{
			ThinkingBudget: genai.Ptr(c.cfg.SceneThinkingBudget),
		},
	})
	if err != nil {
		return "", err
	}
	return responseText(res), nil
}

// CharacterIdeas asks the text model with web search enabled and extracts the
// grounding citations, in provider order, alongside the text.
func (c *Client) CharacterIdeas(ctx context.Context, question string) (string, []studio.Source, error) {
	res, err := c.generate(ctx, c.cfg.IdeasModel, genai.Text(prompt.Ideas(question)), &genai.GenerateContentConfig{
		Tools: []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}},
	})
	if err != nil {
		return "", nil, err
	}
	return responseText(res), extractSources(res), nil
}

// generate checks the credential, resolves the SDK client, and performs one
// call. Provider failures are surfaced as-is under the PROVIDER_ERROR code.
func (c *Client) generate(ctx context.Context, model string, contents []*genai.Content, gcfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	key := c.creds.APIKey()
	if key == "" {
		return nil, errors.NewMissingAPIKey()
	}

	call := c.invoke
	if call == nil {
		sdk, err := c.sdkClient(ctx, key)
		if err != nil {
			return nil, err
		}
		call = sdk.Models.GenerateContent
	}

	res, err := call(ctx, model, contents, gcfg)
	if err != nil {
		return nil, errors.NewProvider(err)
	}
	return res, nil
}

// sdkClient returns the cached SDK client, rebuilding it when the key has
// changed since it was created.
func (c *Client) sdkClient(ctx context.Context, key string) (*genai.Client, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.sdk != nil && c.sdkKey == key {
		return c.sdk, nil
	}
	sdk, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.NewProvider(err)
	}
	c.sdk = sdk
	c.sdkKey = key
	return sdk, nil
}

// firstImageDataURL scans the response for the first part carrying inline
// image data. No usable image is a GENERATION_FAILED, commonly caused by
// safety filtering or malformed input.
func firstImageDataURL(res *genai.GenerateContentResponse, action string) (string, error) {
	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		for _, part := range res.Candidates[0].Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				mimeType := part.InlineData.MIMEType
				if mimeType == "" {
					mimeType = "image/png"
				}
				return studio.ToDataURL(mimeType, part.InlineData.Data), nil
			}
		}
	}
	return "", errors.NewGenerationFailed(action)
}

// responseText concatenates the text parts of the first candidate.
func responseText(res *genai.GenerateContentResponse) string {
	var out string
	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		for _, part := range res.Candidates[0].Content.Parts {
			out += part.Text
		}
	}
	return out
}

// extractSources pulls web citations out of the grounding metadata.
// Citations lacking a web reference are omitted; empty titles default to a
// placeholder. Provider order is preserved and duplicates are kept.
func extractSources(res *genai.GenerateContentResponse) []studio.Source {
	if len(res.Candidates) == 0 || res.Candidates[0].GroundingMetadata == nil {
		return nil
	}

	var sources []studio.Source
	for _, chunk := range res.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web == nil || chunk.Web.URI == "" {
			continue
		}
		title := chunk.Web.Title
		if title == "" {
			title = untitledSource
		}
		sources = append(sources, studio.Source{URI: chunk.Web.URI, Title: title})
	}
	return sources
}
