package azurevision

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/user/caption-service/internal/entity"
	"github.com/user/caption-service/internal/repository"
)

const (
	analyzePath     = "/computervision/imageanalysis:analyze"
	subscriptionKey = "Ocp-Apim-Subscription-Key"
	maxErrorBody    = 4 << 10
)

// ClientImpl talks to the Azure AI Vision Image Analysis REST API.
// It makes exactly one attempt per call; deadlines come from ctx.
type ClientImpl struct {
	endpoint   string
	key        string
	apiVersion string
	httpClient *http.Client
}

// NewClient validates the endpoint and returns a client. httpClient may be nil.
func NewClient(endpoint, key, apiVersion string, httpClient *http.Client) (*ClientImpl, error) {
	if endpoint == "" || key == "" {
		return nil, errors.New("endpoint and key are required")
	}
	u, err := url.Parse(endpoint)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q", endpoint)
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &ClientImpl{
		endpoint:   strings.TrimRight(endpoint, "/"),
		key:        key,
		apiVersion: apiVersion,
		httpClient: httpClient,
	}, nil
}

func (c *ClientImpl) Name() string {
	return "azure"
}

// Analyze posts the raw image bytes and decodes the caption and text-read results.
func (c *ClientImpl) Analyze(ctx context.Context, image []byte, opts entity.AnalysisOptions) (*entity.AnalysisResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.analyzeURL(opts), bytes.NewReader(image))
	if err != nil {
		return nil, fmt.Errorf("failed to build analyze request: %w", err)
	}
	req.Header.Set("Content-Type", "application/octet-stream")
	req.Header.Set(subscriptionKey, c.key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", repository.ErrVisionTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrVisionUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp)
	}

	var body analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", repository.ErrVisionTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrVisionMalformedResponse, err)
	}

	result := toEntity(&body)
	slog.Debug("Azure image analysis completed",
		"model_version", result.ModelVersion,
		"has_caption", result.Caption != nil,
		"read_lines", len(result.ReadLines),
	)
	return result, nil
}

func (c *ClientImpl) analyzeURL(opts entity.AnalysisOptions) string {
	features := make([]string, 0, len(opts.Features))
	for _, f := range opts.Features {
		features = append(features, string(f))
	}

	q := url.Values{}
	q.Set("api-version", c.apiVersion)
	q.Set("features", strings.Join(features, ","))
	if opts.Has(entity.FeatureCaption) {
		q.Set("gender-neutral-caption", fmt.Sprintf("%t", opts.GenderNeutralCaption))
	}
	return c.endpoint + analyzePath + "?" + q.Encode()
}

func (c *ClientImpl) statusError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	detail := strings.TrimSpace(string(raw))
	var body errorResponse
	if json.Unmarshal(raw, &body) == nil && body.Error.Code != "" {
		detail = body.Error.Code + ": " + body.Error.Message
	}

	var sentinel error
	switch {
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		sentinel = repository.ErrVisionUnauthorized
	case resp.StatusCode == http.StatusBadRequest, resp.StatusCode == http.StatusUnsupportedMediaType,
		resp.StatusCode == http.StatusRequestEntityTooLarge:
		sentinel = repository.ErrVisionInvalidImage
	case resp.StatusCode == http.StatusTooManyRequests:
		sentinel = repository.ErrVisionThrottled
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusGatewayTimeout:
		sentinel = repository.ErrVisionTimeout
	default:
		sentinel = repository.ErrVisionUnavailable
	}
	return fmt.Errorf("%w: status %d: %s", sentinel, resp.StatusCode, detail)
}

func toEntity(body *analyzeResponse) *entity.AnalysisResult {
	result := &entity.AnalysisResult{
		ModelVersion: body.ModelVersion,
		Width:        body.Metadata.Width,
		Height:       body.Metadata.Height,
	}
	if body.CaptionResult != nil {
		result.Caption = &entity.Caption{
			Text:       body.CaptionResult.Text,
			Confidence: body.CaptionResult.Confidence,
		}
	}
	if body.ReadResult != nil {
		for _, block := range body.ReadResult.Blocks {
			for _, line := range block.Lines {
				tl := entity.TextLine{Text: line.Text}
				for _, p := range line.BoundingPolygon {
					tl.BoundingPolygon = append(tl.BoundingPolygon, entity.Point{X: p.X, Y: p.Y})
				}
				for _, w := range line.Words {
					tl.Words = append(tl.Words, entity.TextWord{Text: w.Text, Confidence: w.Confidence})
				}
				result.ReadLines = append(result.ReadLines, tl)
			}
		}
	}
	return result
}
