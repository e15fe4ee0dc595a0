package ai

import (
	"context"
	"fmt"
	"io"
	"strings"

	"google.golang.org/genai"

	"parley-go/internal/parley"
)

// Gemini translates text and recorded speech with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	logger parley.Logger
}

var (
	_ parley.Translator  = (*Gemini)(nil)
	_ parley.Transcriber = (*Gemini)(nil)
)

// NewGemini creates a client for the Gemini developer API.
func NewGemini(ctx context.Context, apiKey, model string, logger parley.Logger) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	if model == "" {
		model = DefaultModel
	}
	if logger == nil {
		logger = parley.NewNopLogger()
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{client: client, model: model, logger: logger}, nil
}

// Translate returns the model's best translation of text. A response with no
// text yields "", which callers treat as no translation.
func (g *Gemini) Translate(ctx context.Context, text string, targetLanguage string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(textPrompt(text, targetLanguage)), nil)
	if err != nil {
		return "", fmt.Errorf("generating translation: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}

// TranscribeAudio uploads the recording and asks for an English translation
// of the speech in it. The uploaded file is removed afterwards.
func (g *Gemini) TranscribeAudio(ctx context.Context, audio io.Reader, mimeType string) (string, error) {
	file, err := g.client.Files.Upload(ctx, audio, &genai.UploadFileConfig{MIMEType: mimeType})
	if err != nil {
		return "", fmt.Errorf("uploading audio: %w", err)
	}
	defer func() {
		if _, err := g.client.Files.Delete(context.WithoutCancel(ctx), file.Name, nil); err != nil {
			g.logger.Warn("deleting uploaded audio failed", "file", file.Name, "error", err)
		}
	}()
	g.logger.Debug("audio uploaded", "file", file.Name, "mime_type", file.MIMEType)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromURI(file.URI, file.MIMEType),
			genai.NewPartFromText(audioPrompt),
		}, genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("generating audio translation: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
