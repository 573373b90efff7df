package wa

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/nochlab/nochgpt/internal/config"
	apperrors "github.com/nochlab/nochgpt/internal/errors"
	"github.com/nochlab/nochgpt/internal/logger"
	"github.com/nochlab/nochgpt/internal/metrics"
	"github.com/nochlab/nochgpt/internal/ratelimit"
)

// Client talks to the Graph API for outbound sends and media resolution.
// All sends pass the shared token-bucket limiter first.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	phoneID    string
	limiter    *ratelimit.Limiter
	metrics    *metrics.Metrics
	log        *logger.Logger
}

// ClientConfig configures a Client.
type ClientConfig struct {
	BaseURL    string
	Token      string
	PhoneID    string
	Limiter    *ratelimit.Limiter
	Metrics    *metrics.Metrics
	Logger     *logger.Logger
	HTTPClient *http.Client // Optional override for tests
}

// NewClient creates a Graph API client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		phoneID:    cfg.PhoneID,
		limiter:    cfg.Limiter,
		metrics:    cfg.Metrics,
		log:        cfg.Logger,
	}
}

// ReplyButton is one option of an interactive button message.
type ReplyButton struct {
	ID    string
	Title string
}

// MediaInfo is the resolved download location of an attachment.
type MediaInfo struct {
	URL      string `json:"url"`
	MimeType string `json:"mime_type"`
	FileSize int64  `json:"file_size"`
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) error {
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"text":              map[string]string{"body": body},
	}
	err := c.send(ctx, payload)
	c.recordSend("text", err)
	return err
}

// SendButtons sends an interactive message with up to three reply buttons.
func (c *Client) SendButtons(ctx context.Context, to, bodyText string, buttons []ReplyButton) error {
	actions := make([]map[string]any, 0, len(buttons))
	for _, b := range buttons {
		actions = append(actions, map[string]any{
			"type":  "reply",
			"reply": map[string]string{"id": b.ID, "title": b.Title},
		})
	}
	payload := map[string]any{
		"messaging_product": "whatsapp",
		"to":                to,
		"type":              "interactive",
		"interactive": map[string]any{
			"type":   "button",
			"body":   map[string]string{"text": bodyText},
			"action": map[string]any{"buttons": actions},
		},
	}
	err := c.send(ctx, payload)
	c.recordSend("buttons", err)
	return err
}

func (c *Client) send(ctx context.Context, payload any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("send limiter: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, config.GraphRequest)
	defer cancel()

	url := fmt.Sprintf("%s/%s/messages", c.baseURL, c.phoneID)
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal send payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewGraphError(url, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return apperrors.NewGraphError(url, 0, apperrors.ErrProviderTimeout)
		}
		return apperrors.NewGraphError(url, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return apperrors.NewGraphError(url, resp.StatusCode, errors.New(string(detail)))
	}
	return nil
}

// MediaURL resolves the signed download URL of an uploaded attachment.
// The signed URL expires quickly; download right after resolving.
func (c *Client) MediaURL(ctx context.Context, mediaID string) (*MediaInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, config.GraphRequest)
	defer cancel()

	url := fmt.Sprintf("%s/%s", c.baseURL, mediaID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, apperrors.NewGraphError(url, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewGraphError(url, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, apperrors.NewGraphError(url, resp.StatusCode, errors.New(string(detail)))
	}

	var info MediaInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, apperrors.NewGraphError(url, resp.StatusCode, err)
	}
	if info.URL == "" {
		return nil, apperrors.NewGraphError(url, resp.StatusCode, errors.New("no url in media response"))
	}
	return &info, nil
}

// DownloadMedia fetches attachment bytes from a signed URL. The same bearer
// token authorizes this second hop. Returns ErrMediaTooLarge when the body
// exceeds maxBytes.
func (c *Client) DownloadMedia(ctx context.Context, signedURL string, maxBytes int64) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, config.MediaDownload)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return nil, apperrors.NewGraphError(signedURL, 0, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewGraphError(signedURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.NewGraphError(signedURL, resp.StatusCode, errors.New("media download failed"))
	}
	if resp.ContentLength > maxBytes {
		return nil, fmt.Errorf("content length %d: %w", resp.ContentLength, apperrors.ErrMediaTooLarge)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read media body: %w", err)
	}
	if int64(len(data)) > maxBytes {
		return nil, apperrors.ErrMediaTooLarge
	}
	return data, nil
}

func (c *Client) recordSend(kind string, err error) {
	if c.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	c.metrics.RecordSend(kind, status)
}
