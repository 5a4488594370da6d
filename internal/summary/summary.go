package summary

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/rohits-web03/otadash/internal/apperr"
	"github.com/rohits-web03/otadash/internal/config"
	"github.com/rohits-web03/otadash/internal/logs"
)

// MaxWords bounds the length of a returned summary.
const MaxWords = 200

const failureMessage = "Failed to generate summary. Please try again later."

// Request describes the collection to summarize.
type Request struct {
	Collection string
	Count      int
	Facts      []string
}

type Result struct {
	Collection  string    `json:"collection"`
	Summary     string    `json:"summary"`
	Cached      bool      `json:"cached"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Cache stores generated summaries.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// Client calls an OpenAI compatible chat completion endpoint.
type Client struct {
	http  *resty.Client
	url   string
	key   string
	model string
	ttl   time.Duration
	cache Cache
	now   func() time.Time
	log   *logrus.Entry
}

func New(cfg config.SummaryConfig, cache Cache) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http:  resty.New().SetTimeout(timeout).SetHeader("Content-Type", "application/json"),
		url:   cfg.APIURL,
		key:   cfg.APIKey,
		model: cfg.Model,
		ttl:   cfg.CacheTTL,
		cache: cache,
		now:   time.Now,
		log:   logs.WithComponent("summary"),
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type chatError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Summarize returns a short manager-oriented summary of the collection.
func (c *Client) Summarize(ctx context.Context, req Request) (Result, error) {
	if c.url == "" || c.key == "" {
		return Result{}, apperr.NewUnavailableError(failureMessage, errors.New("summary endpoint not configured"))
	}

	key := cacheKey(req)
	if c.cache != nil {
		if cached, err := c.cache.Get(ctx, key); err == nil && cached != "" {
			return Result{Collection: req.Collection, Summary: cached, Cached: true, GeneratedAt: c.now()}, nil
		}
	}

	var out chatResponse
	var apiErr chatError
	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(c.key).
		SetBody(chatRequest{
			Model: c.model,
			Messages: []chatMessage{
				{Role: "system", Content: "You are an AI assistant helping managers understand their data."},
				{Role: "user", Content: Prompt(req)},
			},
			Temperature: 0.3,
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post(c.url)
	if err != nil {
		return Result{}, apperr.NewUnavailableError(failureMessage, err)
	}
	if resp.IsError() {
		return Result{}, apperr.NewUnavailableError(failureMessage,
			fmt.Errorf("summary endpoint returned %d: %s", resp.StatusCode(), apiErr.Error.Message))
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return Result{}, apperr.NewUnavailableError(failureMessage, errors.New("empty completion"))
	}

	text := Truncate(strings.TrimSpace(out.Choices[0].Message.Content), MaxWords)
	if c.cache != nil && c.ttl > 0 {
		if err := c.cache.Set(ctx, key, text, c.ttl); err != nil {
			c.log.WithError(err).Warn("caching summary failed")
		}
	}
	c.log.WithFields(logrus.Fields{"collection": req.Collection, "records": req.Count}).Info("summary generated")
	return Result{Collection: req.Collection, Summary: text, GeneratedAt: c.now()}, nil
}

// Prompt builds the user message for req.
func Prompt(req Request) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Summarize the key data points from the following collection: %s. ", req.Collection)
	b.WriteString("Focus on trends and important metrics. ")
	b.WriteString("The summary should be concise and easy to understand for a manager. ")
	fmt.Fprintf(&b, "Make sure your response is less than %d words.\n\n", MaxWords)
	fmt.Fprintf(&b, "The collection has %d records.\n", req.Count)
	for _, f := range req.Facts {
		b.WriteString("- ")
		b.WriteString(f)
		b.WriteByte('\n')
	}
	return b.String()
}

// Truncate keeps text under max words.
func Truncate(text string, max int) string {
	words := strings.Fields(text)
	if len(words) < max {
		return text
	}
	return strings.Join(words[:max-1], " ") + "…"
}

func cacheKey(req Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s|%d|", req.Collection, req.Count)
	for _, f := range req.Facts {
		h.Write([]byte(f))
		h.Write([]byte{0})
	}
	return "summary:" + req.Collection + ":" + hex.EncodeToString(h.Sum(nil))[:16]
}
