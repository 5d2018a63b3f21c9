package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"platconf/hub"
	"platconf/models"
	"time"
)

// Client is the HTTP client for talking to the platconf server
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a new HTTP client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// doRequest executes an HTTP request
func (c *Client) doRequest(method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %v", err)
		}
		bodyReader = bytes.NewBuffer(jsonData)
	}

	url := c.baseURL + path
	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %v", err)
	}

	return resp, nil
}

// handleResponse handles an HTTP response
func (c *Client) handleResponse(resp *http.Response, result interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(bodyBytes))
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}
	return nil
}

// ListSettings fetches all settings
func (c *Client) ListSettings() ([]models.SettingRead, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/settings", nil)
	if err != nil {
		return nil, err
	}
	var settings []models.SettingRead
	if err := c.handleResponse(resp, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// ListSettingsByCategory fetches the settings of one category
func (c *Client) ListSettingsByCategory(category string) ([]models.SettingRead, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/settings/category/"+category, nil)
	if err != nil {
		return nil, err
	}
	var settings []models.SettingRead
	if err := c.handleResponse(resp, &settings); err != nil {
		return nil, err
	}
	return settings, nil
}

// GetSetting fetches a single setting
func (c *Client) GetSetting(key string) (*models.SettingRead, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/settings/"+key, nil)
	if err != nil {
		return nil, err
	}
	var setting models.SettingRead
	if err := c.handleResponse(resp, &setting); err != nil {
		return nil, err
	}
	return &setting, nil
}

// SetSetting writes a single setting
func (c *Client) SetSetting(key, value string, encrypted bool) error {
	resp, err := c.doRequest(http.MethodPut, "/api/settings/"+key, models.SettingUpdate{
		Value:       value,
		IsEncrypted: encrypted,
	})
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

// DeleteSetting removes a setting
func (c *Client) DeleteSetting(key string) (bool, error) {
	resp, err := c.doRequest(http.MethodDelete, "/api/settings/"+key, nil)
	if err != nil {
		return false, err
	}
	var result struct {
		Deleted bool `json:"deleted"`
	}
	if err := c.handleResponse(resp, &result); err != nil {
		return false, err
	}
	return result.Deleted, nil
}

// InitializeDefaults seeds the default settings catalog
func (c *Client) InitializeDefaults() error {
	resp, err := c.doRequest(http.MethodPost, "/api/settings/initialize", nil)
	if err != nil {
		return err
	}
	return c.handleResponse(resp, nil)
}

// ConnectionStats fetches hub diagnostics
func (c *Client) ConnectionStats() (*hub.Stats, error) {
	resp, err := c.doRequest(http.MethodGet, "/api/ws/stats", nil)
	if err != nil {
		return nil, err
	}
	var stats hub.Stats
	if err := c.handleResponse(resp, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}
