package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/user/caption-service/internal/entity"
	"github.com/user/caption-service/internal/repository"
)

const (
	captionPrompt = "Write a single short sentence describing this image, like an image caption. " +
		"Reply with the caption only."
	genderNeutralInstruction = " Do not use gendered words: say person instead of man or woman, child instead of boy or girl."
)

// VisionImpl captions images with a Gemini multimodal model.
// Text-read is not supported; ReadLines is always empty.
type VisionImpl struct {
	client *genai.Client
	model  string
}

// NewVision builds a Gemini API client. baseURL may be empty for the public endpoint.
func NewVision(ctx context.Context, baseURL, apiKey, model string, httpClient *http.Client) (*VisionImpl, error) {
	if apiKey == "" {
		return nil, errors.New("api key is required")
	}
	if model == "" {
		return nil, errors.New("model is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      apiKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  httpClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: baseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &VisionImpl{client: client, model: model}, nil
}

func (v *VisionImpl) Name() string {
	return "gemini"
}

func (v *VisionImpl) Analyze(ctx context.Context, image []byte, opts entity.AnalysisOptions) (*entity.AnalysisResult, error) {
	result := &entity.AnalysisResult{ModelVersion: v.model}
	if !opts.Has(entity.FeatureCaption) {
		return result, nil
	}

	prompt := captionPrompt
	if opts.GenderNeutralCaption {
		prompt += genderNeutralInstruction
	}

	parts := []*genai.Part{
		genai.NewPartFromText(prompt),
		genai.NewPartFromBytes(image, http.DetectContentType(image)),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	resp, err := v.client.Models.GenerateContent(ctx, v.model, contents, &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0.2),
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", repository.ErrVisionTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrVisionUnavailable, err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidates returned", repository.ErrVisionMalformedResponse)
	}

	if text := strings.TrimSpace(resp.Text()); text != "" {
		result.Caption = &entity.Caption{Text: text}
	}
	return result, nil
}
