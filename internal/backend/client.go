package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/ratelimit"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/yazelin/jaba-ai/internal/config"
	"github.com/yazelin/jaba-ai/internal/menu"
)

// Client talks to the recognition collaborator. It owns every outbound
// call of the workflow: recognize, store create/list, menu writes and
// the existing-menu fetch.
type Client struct {
	http *resty.Client
	rl   ratelimit.Limiter
	log  *zap.Logger
}

func NewClient(cfg config.BackendConfig, logger *zap.Logger) *Client {
	rps := cfg.MaxRequestsPerSecond
	if rps <= 0 {
		rps = 5
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetHeader("Accept", "application/json")

	if cfg.Token != "" {
		client.SetAuthToken(cfg.Token)
	}

	return &Client{
		http: client,
		rl:   ratelimit.New(rps),
		log:  logger,
	}
}

// Recognize posts the image as a single-file multipart payload. A reply
// that is not valid JSON is reported as an error; a JSON reply is returned
// as-is, including backend-reported failures in its Error field.
func (c *Client) Recognize(ctx context.Context, scope Scope, storeID string, image []byte) (*RecognizeResponse, error) {
	c.rl.Take()

	resp, err := c.http.R().
		SetContext(ctx).
		SetFileReader("file", "menu.jpg", bytes.NewReader(image)).
		Post(scope.RecognizeURL(storeID))
	if err != nil {
		return nil, fmt.Errorf("recognize request failed: %w", err)
	}

	body := []byte(resp.String())
	var result RecognizeResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("recognize returned non-JSON body (status %d)", resp.StatusCode())
	}

	if result.Error == "" && resp.IsError() {
		result.Error = errorDetail(body, fmt.Sprintf("HTTP %d", resp.StatusCode()))
	}

	c.log.Info("recognize call finished",
		zap.String("store_id", storeID),
		zap.Int("status", resp.StatusCode()),
		zap.Bool("enveloped", result.Enveloped()),
	)
	return &result, nil
}

// CreateStore registers a new store and returns its identifier.
func (c *Client) CreateStore(ctx context.Context, scope Scope, name string) (string, error) {
	req := CreateStoreRequest{Name: name}
	if !scope.grouped() {
		req.Scope = "global"
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post(scope.StoresURL())
	if err != nil {
		return "", fmt.Errorf("create store request failed: %w", err)
	}

	body := []byte(resp.String())
	if resp.IsError() {
		return "", fmt.Errorf("%s", errorDetail(body, "store creation failed"))
	}

	var created Store
	if err := json.Unmarshal(body, &created); err != nil || created.ID == "" {
		return "", fmt.Errorf("create store returned no id")
	}
	return created.ID, nil
}

// ReplaceMenu writes the full category set for a store.
func (c *Client) ReplaceMenu(ctx context.Context, scope Scope, storeID string, req ReplaceMenuRequest) error {
	return c.postJSON(ctx, scope.MenuURL(storeID), req, "menu write failed")
}

// ApplyMenuDiff sends the selected changes as a partial update.
func (c *Client) ApplyMenuDiff(ctx context.Context, scope Scope, storeID string, req ApplyDiffRequest) error {
	return c.postJSON(ctx, scope.MenuSaveURL(storeID), req, "menu update failed")
}

// FetchMenu loads a store's current menu.
func (c *Client) FetchMenu(ctx context.Context, scope Scope, storeID string) (*menu.RecognizedMenu, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(scope.MenuFetchURL(storeID))
	if err != nil {
		return nil, fmt.Errorf("menu fetch failed: %w", err)
	}

	body := []byte(resp.String())
	if resp.IsError() {
		return nil, fmt.Errorf("%s", errorDetail(body, "menu fetch failed"))
	}

	var m menu.RecognizedMenu
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("menu fetch returned non-JSON body: %w", err)
	}
	return &m, nil
}

// ListStores loads the store directory for the scope.
func (c *Client) ListStores(ctx context.Context, scope Scope) ([]Store, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get(scope.StoresURL())
	if err != nil {
		return nil, fmt.Errorf("store list failed: %w", err)
	}

	body := []byte(resp.String())
	if resp.IsError() {
		return nil, fmt.Errorf("%s", errorDetail(body, "store list failed"))
	}

	var stores []Store
	if err := json.Unmarshal(body, &stores); err != nil {
		// Some deployments wrap the list.
		var wrapped struct {
			Stores []Store `json:"stores"`
		}
		if err2 := json.Unmarshal(body, &wrapped); err2 != nil {
			return nil, fmt.Errorf("store list returned unexpected body: %w", err)
		}
		stores = wrapped.Stores
	}
	return stores, nil
}

func (c *Client) postJSON(ctx context.Context, url string, body any, fallback string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(url)
	if err != nil {
		return fmt.Errorf("%s: %w", fallback, err)
	}
	if resp.IsError() {
		return fmt.Errorf("%s", errorDetail([]byte(resp.String()), fallback))
	}
	return nil
}

// errorDetail extracts the collaborator's reported reason from an error
// body ("detail" in the admin API, "error" elsewhere).
func errorDetail(body []byte, fallback string) string {
	var parsed struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Detail != "" {
			return parsed.Detail
		}
		if parsed.Error != "" {
			return parsed.Error
		}
	}
	return fallback
}
