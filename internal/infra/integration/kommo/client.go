package kommo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

const defaultTimeout = 10 * time.Second

var ErrNotConfigured = errors.New("kommo: api token not configured")

// Client pushes captured leads into a Kommo pipeline.
type Client struct {
	baseURL  string
	token    string
	statusID int
	http     *http.Client
	logger   *zap.Logger
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		token:    cfg.Token,
		statusID: cfg.StatusID,
		http:     &http.Client{Timeout: timeout},
		logger:   logger,
	}
}

// CreateLead links the lead to an existing contact matched by email, or to a
// new one, and returns the CRM lead id.
func (c *Client) CreateLead(ctx context.Context, input LeadInput) (int, error) {
	if c.token == "" {
		return 0, ErrNotConfigured
	}

	contactID, err := c.findOrCreateContact(ctx, input)
	if err != nil {
		return 0, fmt.Errorf("kommo contact: %w", err)
	}

	lead := map[string]any{
		"name": leadTitle(input),
		"_embedded": map[string]any{
			"tags":     leadTags(input),
			"contacts": []map[string]any{{"id": contactID}},
		},
	}
	if c.statusID > 0 {
		lead["status_id"] = c.statusID
	}

	var result embedded
	if err := c.do(ctx, http.MethodPost, "/leads", []map[string]any{lead}, &result); err != nil {
		return 0, fmt.Errorf("kommo lead: %w", err)
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, errors.New("kommo lead: empty response")
	}

	leadID := result.Embedded.Leads[0].ID
	c.logger.Info("crm lead created", zap.Int("crm_lead_id", leadID), zap.Int("contact_id", contactID))
	return leadID, nil
}

func (c *Client) findOrCreateContact(ctx context.Context, input LeadInput) (int, error) {
	id, err := c.findContact(ctx, input.Email)
	if err != nil {
		return 0, err
	}
	if id > 0 {
		c.logger.Debug("crm contact found", zap.Int("contact_id", id))
		return id, nil
	}
	return c.createContact(ctx, input)
}

func (c *Client) findContact(ctx context.Context, query string) (int, error) {
	if strings.TrimSpace(query) == "" {
		return 0, nil
	}

	var result embedded
	err := c.do(ctx, http.MethodGet, "/contacts?query="+url.QueryEscape(strings.TrimSpace(query)), nil, &result)
	if err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, nil
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (c *Client) createContact(ctx context.Context, input LeadInput) (int, error) {
	contact := map[string]any{
		"name": input.Name,
		"custom_fields_values": []map[string]any{
			{
				"field_code": "PHONE",
				"values":     []map[string]any{{"value": input.Phone, "enum_code": "WORK"}},
			},
			{
				"field_code": "EMAIL",
				"values":     []map[string]any{{"value": input.Email, "enum_code": "WORK"}},
			},
		},
	}
	if input.CompanyName != "" {
		contact["company_name"] = input.CompanyName
	}

	var result embedded
	if err := c.do(ctx, http.MethodPost, "/contacts", []map[string]any{contact}, &result); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, errors.New("contact id missing from response")
	}
	return result.Embedded.Contacts[0].ID, nil
}

// do sends body as JSON and decodes a 2xx response into out. Kommo answers a
// contact search with no match as 204.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out == nil || len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

func leadTitle(input LeadInput) string {
	if input.ExhibitionName == "" {
		return input.Name
	}
	return input.Name + " - " + input.ExhibitionName
}

func leadTags(input LeadInput) []map[string]any {
	tags := []map[string]any{{"name": "exhibition_lead"}}
	if input.ExhibitionName != "" {
		tags = append(tags, map[string]any{"name": input.ExhibitionName})
	}
	for _, p := range input.ProductNames {
		tags = append(tags, map[string]any{"name": p})
	}
	return tags
}
