package verisure

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"verisure/internal/config"
	"verisure/internal/errors"
	"verisure/internal/metrics"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// InvalidResponse is reported when the API answers with something other
// than JSON.
const InvalidResponse = "Invalid server response"

const (
	contentTypeForm = "application/x-www-form-urlencoded;charset=UTF-8"
	contentTypeJSON = "text/plain;charset=utf-8"
)

// Client talks to the VeriSure API. Every action is a POST to one endpoint;
// account actions are form-encoded and issuance actions carry a JSON body.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewClient creates a client for the configured endpoint.
func NewClient(cfg config.APIConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: cfg.URL,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		logger: logger.Named("verisure"),
	}
}

// reply is a response body that is always valid JSON. A non-JSON body is
// replaced by {"error": InvalidResponse, "raw": <body>}.
type reply struct {
	body    []byte
	invalid bool
}

func (r reply) get(path string) gjson.Result {
	return gjson.GetBytes(r.body, path)
}

// errorMessage returns the error field when it is truthy.
func (r reply) errorMessage() (string, bool) {
	e := r.get("error")
	if !truthy(e) {
		return "", false
	}
	return e.String(), true
}

// fail converts a reported or fallback message into the matching error.
func (r reply) fail(fallback string) error {
	msg, ok := r.errorMessage()
	if !ok {
		msg = fallback
	}
	if r.invalid {
		return errors.TransportError(msg, nil)
	}
	return errors.ServerError(msg)
}

// postForm sends fields url-encoded.
func (c *Client) postForm(ctx context.Context, action string, fields url.Values) (reply, error) {
	return c.post(ctx, action, contentTypeForm, []byte(fields.Encode()))
}

// postJSON sends payload as a JSON body labelled text/plain so the endpoint
// receives it without a preflight.
func (c *Client) postJSON(ctx context.Context, action string, payload any) (reply, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return reply{}, errors.Wrap(err, "failed to encode request")
	}
	return c.post(ctx, action, contentTypeJSON, body)
}

func (c *Client) post(ctx context.Context, action, contentType string, body []byte) (reply, error) {
	start := time.Now()
	defer func() {
		metrics.APIRequestDuration.WithLabelValues(action).Observe(time.Since(start).Seconds())
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return reply{}, errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("request failed", zap.String("action", action), zap.Error(err))
		return reply{}, errors.TransportError("Could not reach the VeriSure service. Please try again.", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return reply{}, errors.TransportError("Could not read the VeriSure response. Please try again.", err)
	}

	c.logger.Debug("api response",
		zap.String("action", action),
		zap.Int("status", resp.StatusCode),
		zap.Int("bytes", len(data)),
		zap.Duration("elapsed", time.Since(start)))

	if !gjson.ValidBytes(data) || len(bytes.TrimSpace(data)) == 0 {
		c.logger.Warn("non-JSON response",
			zap.String("action", action),
			zap.Int("status", resp.StatusCode),
			zap.String("raw", truncate(string(data), 512)))
		wrapped, err := json.Marshal(map[string]string{"error": InvalidResponse, "raw": string(data)})
		if err != nil {
			return reply{}, errors.Wrap(err, "failed to wrap response")
		}
		return reply{body: wrapped, invalid: true}, nil
	}
	return reply{body: data}, nil
}

// truthy follows the loose truthiness the API's flags are written for.
func truthy(r gjson.Result) bool {
	switch r.Type {
	case gjson.True:
		return true
	case gjson.String:
		return r.Str != ""
	case gjson.Number:
		return r.Num != 0
	case gjson.JSON:
		return true
	default:
		return false
	}
}

// strictTrue reports whether the value is the JSON literal true.
func strictTrue(r gjson.Result) bool {
	return r.Type == gjson.True
}

// strictFalse reports whether the value is the JSON literal false.
func strictFalse(r gjson.Result) bool {
	return r.Type == gjson.False
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return strings.ToValidUTF8(s[:n], "") + "…"
}
