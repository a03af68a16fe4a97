package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/talenthub/abacus-api/internal/dto"
	"github.com/talenthub/abacus-api/internal/generator"
)

// Client is the session runtime's view of the paper API. The machine only
// depends on this interface; tests substitute a fake.
type Client interface {
	Preview(ctx context.Context, req dto.PaperConfigDTO) (*dto.PreviewResponseDTO, error)
	PresetBlocks(ctx context.Context, level string) ([]generator.BlockConfig, error)
	StartAttempt(ctx context.Context, req dto.AttemptCreateDTO) (*dto.AttemptResponseDTO, error)
	SubmitAttempt(ctx context.Context, attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptResponseDTO, error)
	GetAttempt(ctx context.Context, attemptID uint) (*dto.AttemptDetailResponseDTO, error)
	ValidateAttempt(ctx context.Context, attemptID uint) (*dto.AttemptValidityDTO, error)
	AttemptCount(ctx context.Context, seed int64, paperTitle string) (*dto.AttemptCountDTO, error)
}

// HTTPClient talks to the API over HTTP with a bearer token. Every request
// carries a fresh uuid correlation id so server logs can be matched to one
// client action across retries.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

func NewHTTPClient(baseURL, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) Preview(ctx context.Context, req dto.PaperConfigDTO) (*dto.PreviewResponseDTO, error) {
	var resp dto.PreviewResponseDTO
	if err := c.do(ctx, http.MethodPost, "/papers/preview", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) PresetBlocks(ctx context.Context, level string) ([]generator.BlockConfig, error) {
	var blocks []generator.BlockConfig
	path := "/papers/presets/" + url.PathEscape(level)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &blocks); err != nil {
		return nil, err
	}
	return blocks, nil
}

func (c *HTTPClient) StartAttempt(ctx context.Context, req dto.AttemptCreateDTO) (*dto.AttemptResponseDTO, error) {
	var resp dto.AttemptResponseDTO
	if err := c.do(ctx, http.MethodPost, "/papers/attempt", nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) SubmitAttempt(ctx context.Context, attemptID uint, req dto.AttemptSubmitDTO) (*dto.AttemptResponseDTO, error) {
	var resp dto.AttemptResponseDTO
	path := "/papers/attempt/" + strconv.FormatUint(uint64(attemptID), 10)
	if err := c.do(ctx, http.MethodPut, path, nil, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) GetAttempt(ctx context.Context, attemptID uint) (*dto.AttemptDetailResponseDTO, error) {
	var resp dto.AttemptDetailResponseDTO
	path := "/papers/attempt/" + strconv.FormatUint(uint64(attemptID), 10)
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) ValidateAttempt(ctx context.Context, attemptID uint) (*dto.AttemptValidityDTO, error) {
	var resp dto.AttemptValidityDTO
	path := "/papers/attempt/" + strconv.FormatUint(uint64(attemptID), 10) + "/validate"
	if err := c.do(ctx, http.MethodGet, path, nil, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) AttemptCount(ctx context.Context, seed int64, paperTitle string) (*dto.AttemptCountDTO, error) {
	var resp dto.AttemptCountDTO
	query := url.Values{}
	query.Set("seed", strconv.FormatInt(seed, 10))
	query.Set("paper_title", paperTitle)
	if err := c.do(ctx, http.MethodGet, "/papers/attempt-count", query, nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	if c.token == "" {
		return ErrAuthentication
	}

	fullURL := c.baseURL + "/api/v1" + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		// Caller-driven cancellation is not a transport fault.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return c.decodeError(resp, method, path, requestID)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	return nil
}

func (c *HTTPClient) decodeError(resp *http.Response, method, path, requestID string) error {
	var apiErr dto.ErrorResponse
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	_ = json.Unmarshal(raw, &apiErr)

	log.Debug().Str("request_id", requestID).Str("path", path).
		Int("status", resp.StatusCode).Str("error", apiErr.Error).Msg("API error response")

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return ErrAuthentication
	case http.StatusNotFound:
		if strings.HasPrefix(path, "/papers/attempt/") {
			return ErrAttemptNotFound
		}
	case http.StatusBadRequest:
		if apiErr.Error == "Attempt already completed" {
			return ErrAlreadyCompleted
		}
	}
	if apiErr.Error != "" {
		return fmt.Errorf("%s %s: %s", method, path, apiErr.Error)
	}
	return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
}
