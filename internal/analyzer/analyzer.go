// Package analyzer turns raw journal text into a structured GrowthNote,
// either through the Gemini REST API or through a deterministic keyword
// fallback when the API is unavailable.
package analyzer

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/tendjournal/tend/internal/config"
	"github.com/tendjournal/tend/internal/history"
	"github.com/tendjournal/tend/internal/model"
)

// Narrow failure kinds the journal path absorbs into the fallback.
// Anything else (context cancellation included) propagates to the caller.
var (
	ErrNoCredential      = errors.New("analyzer: no api key configured")
	ErrTransport         = errors.New("analyzer: transport failure")
	ErrMalformedResponse = errors.New("analyzer: malformed api response")
)

// Meta describes how an analysis was produced.
type Meta struct {
	Model    string
	Elapsed  time.Duration
	Fallback bool
	APICost  float64
}

// Analyzer is the contract the journal service depends on.
type Analyzer interface {
	Analyze(ctx context.Context, text string, areas []*model.GrowthArea, hist *history.Context) (*model.GrowthNote, Meta, error)
	ExtractText(ctx context.Context, image []byte, mimeType string) (string, Meta, error)
}

const fallbackModel = "keyword-fallback"

// gemini-2.0-flash list pricing per million tokens
const (
	promptTokenRate = 0.10 / 1e6
	outputTokenRate = 0.40 / 1e6
)

// Gemini calls the generateContent REST endpoint.
type Gemini struct {
	client *resty.Client
	apiKey string
	model  string
}

// New builds a Gemini analyzer from config. An empty API key is valid:
// Analyze then always takes the fallback path and ExtractText fails.
func New(cfg *config.Config) *Gemini {
	client := resty.New().
		SetBaseURL(cfg.GeminiBaseURL).
		SetTimeout(60 * time.Second)
	return &Gemini{client: client, apiKey: cfg.GeminiAPIKey, model: cfg.GeminiModel}
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inline_data,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	UsageMetadata struct {
		PromptTokenCount     int `json:"promptTokenCount"`
		CandidatesTokenCount int `json:"candidatesTokenCount"`
	} `json:"usageMetadata"`
}

// Analyze produces a GrowthNote for one entry. The keyword fallback covers
// missing credentials and transport or envelope failures; a response that
// arrives but does not parse as a note yields the placeholder note instead.
func (g *Gemini) Analyze(ctx context.Context, text string, areas []*model.GrowthArea, hist *history.Context) (*model.GrowthNote, Meta, error) {
	start := time.Now()

	if g.apiKey == "" {
		note := Fallback(text)
		return note, Meta{Model: fallbackModel, Elapsed: time.Since(start), Fallback: true}, nil
	}

	prompt := BuildPrompt(text, areas, hist)
	raw, cost, err := g.generate(ctx, []part{{Text: prompt}})
	if err != nil {
		if errors.Is(err, ErrTransport) || errors.Is(err, ErrMalformedResponse) {
			note := Fallback(text)
			return note, Meta{Model: fallbackModel, Elapsed: time.Since(start), Fallback: true}, nil
		}
		return nil, Meta{}, err
	}

	note := parseNote(raw)
	return note, Meta{Model: g.model, Elapsed: time.Since(start), APICost: cost}, nil
}

const ocrPrompt = "Extract all text from this image. Return only the extracted text, no commentary."

// ExtractText runs the vision OCR path. There is no fallback here: if the
// image cannot be read the caller surfaces the failure.
func (g *Gemini) ExtractText(ctx context.Context, image []byte, mimeType string) (string, Meta, error) {
	start := time.Now()

	if g.apiKey == "" {
		return "", Meta{}, ErrNoCredential
	}
	if mimeType == "" {
		mimeType = "image/png"
	}

	parts := []part{
		{Text: ocrPrompt},
		{InlineData: &inlineData{MimeType: mimeType, Data: base64.StdEncoding.EncodeToString(image)}},
	}
	raw, cost, err := g.generate(ctx, parts)
	if err != nil {
		return "", Meta{}, err
	}
	return raw, Meta{Model: g.model, Elapsed: time.Since(start), APICost: cost}, nil
}

func (g *Gemini) generate(ctx context.Context, parts []part) (string, float64, error) {
	var out generateResponse
	path := fmt.Sprintf("/v1beta/models/%s:generateContent", g.model)

	resp, err := g.client.R().
		SetContext(ctx).
		SetQueryParam("key", g.apiKey).
		SetBody(generateRequest{Contents: []content{{Parts: parts}}}).
		SetResult(&out).
		Post(path)
	if err != nil {
		if ctx.Err() != nil {
			return "", 0, ctx.Err()
		}
		return "", 0, errors.Wrap(ErrTransport, err.Error())
	}
	if resp.StatusCode() != 200 {
		return "", 0, errors.Wrapf(ErrTransport, "status %d: %s", resp.StatusCode(), resp.String())
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", 0, errors.Wrap(ErrMalformedResponse, "no candidates in response")
	}

	cost := float64(out.UsageMetadata.PromptTokenCount)*promptTokenRate +
		float64(out.UsageMetadata.CandidatesTokenCount)*outputTokenRate
	return out.Candidates[0].Content.Parts[0].Text, cost, nil
}
