package hertzclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"flashmirror/internal/app/ports"

	"github.com/cloudwego/hertz/pkg/app/client"
	"github.com/cloudwego/hertz/pkg/protocol"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

const defaultTimeout = 10 * time.Second

var ErrInvalidConfig = errors.New("invalid gateway config")

type Config struct {
	BaseURL string
	Timeout time.Duration
}

type Gateway struct {
	baseURL string
	timeout time.Duration
	client  *client.Client
}

func New(cfg Config) (*Gateway, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: empty base url", ErrInvalidConfig)
	}
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		return nil, fmt.Errorf("%w: base url %q needs an http(s) scheme", ErrInvalidConfig, base)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c, err := client.NewClient(client.WithDialTimeout(timeout))
	if err != nil {
		return nil, fmt.Errorf("new hertz client: %w", err)
	}
	return &Gateway{baseURL: base, timeout: timeout, client: c}, nil
}

func (g *Gateway) Send(ctx context.Context, method, path string, body any) (ports.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return ports.Envelope{}, ports.NetworkError(0, "request not sent", err)
	}

	req := protocol.AcquireRequest()
	resp := protocol.AcquireResponse()
	defer protocol.ReleaseRequest(req)
	defer protocol.ReleaseResponse(resp)

	req.SetMethod(method)
	req.SetRequestURI(g.baseURL + "/" + strings.TrimLeft(path, "/"))
	req.Header.Set("Accept", "application/json")
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return ports.Envelope{}, fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.SetBody(b)
	}

	if err := g.client.DoTimeout(ctx, req, resp, g.timeout); err != nil {
		return ports.Envelope{}, ports.NetworkError(0, fmt.Sprintf("%s %s: %v", method, path, err), err)
	}

	status := resp.StatusCode()
	raw := append([]byte(nil), resp.Body()...)
	if status < consts.StatusOK || status >= consts.StatusMultipleChoices {
		msg := fmt.Sprintf("%s %s: http %d", method, path, status)
		if m := peekMessage(raw); m != "" {
			msg += ": " + m
		}
		return ports.Envelope{}, ports.NetworkError(status, msg, nil)
	}
	return decodeEnvelope(status, raw)
}
