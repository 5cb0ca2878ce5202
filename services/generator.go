package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/gsinghjay/gpt-character-gen/models"
)

// ErrGeneration is the single failure callers see for any image acquisition
// problem. The specific cause (provider error, empty URL, download failure,
// disk write failure) is logged for operators but never leaks upstream detail
// to API clients.
var ErrGeneration = errors.New("image generation failed")

// Generator turns a character description, plus optional variation
// attributes, into a saved portrait file. One provider call, one download,
// one disk write per invocation; nothing is retried.
type Generator struct {
	provider ImageProvider
	images   *ImageStore
	download *http.Client
	log      *zap.SugaredLogger
}

// NewGenerator wires a generator. downloadTimeout bounds the fetch of the
// provider's result URL.
func NewGenerator(provider ImageProvider, images *ImageStore, downloadTimeout time.Duration, log *zap.SugaredLogger) *Generator {
	return &Generator{
		provider: provider,
		images:   images,
		download: &http.Client{Timeout: downloadTimeout},
		log:      log,
	}
}

// GenerateCharacterImage produces a portrait for the character and returns
// the saved file's path relative to the static root. A nil params generates
// the base image; otherwise a variation image.
func (g *Generator) GenerateCharacterImage(ctx context.Context, c *models.Character, params *VariationParams) (string, error) {
	prompt := BuildPrompt(c, params)
	g.log.Infow("generating image", "character", c.ID, "variation", params != nil)

	// Record a seed alongside the base image. The provider API has no seed
	// parameter today, so this is bookkeeping for future regeneration only.
	if params == nil && c.ImageSeed == nil {
		seed := int64(rand.Int31n(math.MaxInt32)) + 1
		c.ImageSeed = &seed
	}

	url, err := g.provider.GenerateImage(ctx, prompt)
	if err != nil {
		g.log.Errorw("provider call failed", "character", c.ID, "error", err)
		return "", ErrGeneration
	}

	data, err := g.fetchImage(ctx, url)
	if err != nil {
		g.log.Errorw("image download failed", "character", c.ID, "url", url, "error", err)
		return "", ErrGeneration
	}

	rel, err := g.images.SaveImage(c.ID, params != nil, data)
	if err != nil {
		g.log.Errorw("image write failed", "character", c.ID, "error", err)
		return "", ErrGeneration
	}

	g.log.Infow("image saved", "character", c.ID, "path", rel)
	return rel, nil
}

// fetchImage downloads the generated image bytes from the provider's result
// URL with the bounded download timeout.
func (g *Generator) fetchImage(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.download.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("download status %s", resp.Status)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("download read: %w", err)
	}
	return data, nil
}
