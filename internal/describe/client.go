package describe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/frasal/image_describer/internal/config"
)

const (
	defaultPrompt = "Describe the uploaded image in full detail, applying your expertise as a highly scrupulous image analysis agent. " +
		"Carefully observe and report every visible element, no matter how small, and provide a thorough, context-aware description. " +
		"Analyze the relationships, interactions, and possible intentions of objects and subjects in the image. " +
		"Ensure your description is precise, comprehensive, and avoids assumptions not supported by the image content."

	defaultSystemPrompt = "You are an expert image analysis agent. Your task is to provide extremely detailed, accurate, and context-aware descriptions of images. " +
		"You never miss any detail, no matter how small, and you always strive to understand and explain the context, relationships, and concepts present in the image. " +
		"Your analysis should be thorough, objective, and insightful, covering not only visible objects but also their arrangement, interactions, possible intentions, emotions, and any relevant background information. " +
		"Always avoid assumptions not supported by the image, and ensure your description is clear, precise, and comprehensive."

	defaultMaxTokens   = 4000
	defaultTemperature = 0.5

	defaultTimeout = 90 * time.Second
)

type Option func(*Client)

func WithPrompt(prompt string) Option {
	return func(c *Client) { c.prompt = prompt }
}

func WithSystemPrompt(systemPrompt string) Option {
	return func(c *Client) { c.systemPrompt = systemPrompt }
}

func WithGenerationParams(maxTokens int, temperature float64) Option {
	return func(c *Client) {
		c.maxTokens = maxTokens
		c.temperature = temperature
	}
}

// Client sends an image plus a fixed prompt pair to the remote
// inference endpoint and returns the description text.
type Client struct {
	log    *slog.Logger
	url    string
	apiKey string

	prompt       string
	systemPrompt string
	maxTokens    int
	temperature  float64

	httpClient *http.Client
}

func New(log *slog.Logger, cfg config.Describe, opts ...Option) *Client {
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	c := &Client{
		log:          log,
		url:          cfg.URL,
		apiKey:       cfg.APIKey,
		prompt:       defaultPrompt,
		systemPrompt: defaultSystemPrompt,
		maxTokens:    defaultMaxTokens,
		temperature:  defaultTemperature,
		httpClient:   &http.Client{Timeout: timeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Describe sends the image at imagePath for analysis. A missing output
// field in a successful response yields an empty string, not an error;
// deciding whether empty text is acceptable is the caller's business.
func (c *Client) Describe(ctx context.Context, imagePath string) (string, error) {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", fmt.Errorf("failed to read image %q: %w", imagePath, err)
	}

	body, contentType, err := c.buildForm(data, filepath.Base(imagePath))
	if err != nil {
		return "", fmt.Errorf("failed to build request form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-API-Key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send describe request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4*1024))
		if len(strings.TrimSpace(string(msg))) == 0 {
			return "", fmt.Errorf("describe API error: status %d", resp.StatusCode)
		}
		return "", fmt.Errorf("describe API error: status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var decoded struct {
		Output string `json:"output"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("failed to decode describe response: %w", err)
	}

	c.log.DebugContext(ctx, "received description", slog.Int("length", len(decoded.Output)))

	return decoded.Output, nil
}

func (c *Client) buildForm(image []byte, filename string) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	fields := map[string]string{
		"prompt":        c.prompt,
		"system_prompt": c.systemPrompt,
		"max_tokens":    strconv.Itoa(c.maxTokens),
		"temperature":   strconv.FormatFloat(c.temperature, 'f', -1, 64),
	}
	for name, value := range fields {
		if err := mw.WriteField(name, value); err != nil {
			return nil, "", err
		}
	}

	fw, err := mw.CreateFormFile("images", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := fw.Write(image); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}

	return buf, mw.FormDataContentType(), nil
}
