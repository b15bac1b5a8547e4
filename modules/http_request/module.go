package http_request

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/dataflowgo/internal/ctxlog"
	"github.com/specialistvlad/dataflowgo/internal/handlers"
	"github.com/specialistvlad/dataflowgo/internal/model"
	"github.com/specialistvlad/dataflowgo/internal/registry"
)

// Module implements the handlers.Module interface for this package.
type Module struct {
	// Client is shared by every http_request builder. Defaults to a client
	// with a 30 second timeout.
	Client *http.Client
}

// Input defines the arguments for the 'arguments' HCL block. URL is evaluated
// against the consumed items on every run.
type Input struct {
	URL    hcl.Expression `hcl:"url"`
	Method string         `hcl:"method,optional"`
}

type builder struct {
	meta   model.BuilderMeta
	input  *Input
	client *http.Client
}

// Build performs the request and produces an object with the status code and
// body. Responses with a 4xx or 5xx status fail the builder.
func (b *builder) Build(ctx context.Context, bc *model.BuildContext) (*model.Data, error) {
	url, err := handlers.EvalString(b.input.URL, b.meta, bc)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate url: %w", err)
	}
	method := b.input.Method
	if method == "" {
		method = http.MethodGet
	}
	logger := ctxlog.FromContext(ctx)
	logger.Info("Making HTTP request", "method", method, "url", url)

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	logger.Info("Received HTTP response", "status", resp.Status)

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, registry.NewBuildError("request failed with status "+resp.Status, map[string]any{
			"STATUS_CODE": resp.StatusCode,
			"URL":         url,
			"BODY":        string(bodyBytes),
		})
	}

	return model.DataFromGo(b.meta.Produces, response{
		StatusCode: resp.StatusCode,
		Body:       string(bodyBytes),
	})
}

// response is the produced object.
type response struct {
	StatusCode int    `cty:"status_code"`
	Body       string `cty:"body"`
}

// Register registers the handler with the catalog.
func (m *Module) Register(h *handlers.Handlers) {
	client := m.Client
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	h.RegisterHandler("http_request", &handlers.RegisteredHandler{
		NewInput: func() any { return new(Input) },
		New: func(meta model.BuilderMeta, input any) (registry.Builder, error) {
			in, _ := input.(*Input)
			if in == nil || in.URL == nil {
				return nil, errors.New("http_request requires a url argument")
			}
			return &builder{meta: meta, input: in, client: client}, nil
		},
	})
}
