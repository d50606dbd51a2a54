package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/acrolabs/counsel/pkg/schema"
)

// Client talks to the remote counsel backend over HTTP. All methods translate
// transport and status failures into the package's typed errors so callers
// never see raw net/http errors.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient builds a Client for the given base URL with a sane default
// timeout. The timeout bounds whole requests, including body reads.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}
}

var _ SurveyService = (*Client)(nil)

func (c *Client) CreateSession(ctx context.Context) (string, error) {
	var reply struct {
		SessionID string `json:"session_id"`
	}
	if err := c.do(ctx, http.MethodPost, "/sessions", struct{}{}, &reply); err != nil {
		return "", &SessionCreateError{Err: err}
	}
	if reply.SessionID == "" {
		return "", &SessionCreateError{Err: fmt.Errorf("empty session_id in response")}
	}
	return reply.SessionID, nil
}

func (c *Client) CurrentStep(ctx context.Context, sessionID string) (*schema.StepDescriptor, error) {
	var step schema.StepDescriptor
	path := fmt.Sprintf("/sessions/%s/step", sessionID)
	if err := c.do(ctx, http.MethodGet, path, nil, &step); err != nil {
		return nil, &StepLoadError{SessionID: sessionID, Err: err}
	}
	return &step, nil
}

func (c *Client) SubmitAnswer(ctx context.Context, sessionID, stepID string, answer schema.Answer) (SubmitOutcome, error) {
	body := struct {
		StepID string        `json:"step_id"`
		Answer schema.Answer `json:"answer"`
	}{StepID: stepID, Answer: answer}

	var outcome SubmitOutcome
	path := fmt.Sprintf("/sessions/%s/answer", sessionID)
	if err := c.do(ctx, http.MethodPost, path, body, &outcome); err != nil {
		return SubmitOutcome{}, &AnswerSubmitError{StepID: stepID, Err: err}
	}
	return outcome, nil
}

func (c *Client) ComputeResult(ctx context.Context, sessionID string) (*schema.Result, error) {
	var result schema.Result
	path := fmt.Sprintf("/sessions/%s/calculate-with-agents", sessionID)
	if err := c.do(ctx, http.MethodPost, path, struct{}{}, &result); err != nil {
		return nil, &ComputeError{SessionID: sessionID, Err: err}
	}
	return &result, nil
}

// do performs one JSON round trip. A nil body sends no request body; a nil
// out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Read a bounded slice of the body for diagnostics; backends return
		// short JSON error objects here.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
