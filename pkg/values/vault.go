package values

import (
	"fmt"
	"strings"

	"github.com/hashicorp/vault/api"
)

// Client is a read-only Vault client used to pull placeholder values from a
// KV store. The tool never writes to Vault.
type Client struct {
	client *api.Client
}

// NewClient connects to Vault and verifies the connection.
func NewClient(address, token string) (*Client, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Vault client: %w", err)
	}
	client.SetToken(token)

	if _, err := client.Sys().Health(); err != nil {
		return nil, fmt.Errorf("failed to connect to Vault at %s: %w", address, err)
	}
	return &Client{client: client}, nil
}

// Read returns the key/value pairs at path as strings, trying KV v2 first
// and falling back to KV v1. Non-string values are stringified with %v.
func (c *Client) Read(path string) (map[string]string, error) {
	mountPath, secretPath := splitMount(path)

	if data, err := c.readKVv2(mountPath, secretPath); err == nil {
		return stringify(data), nil
	}
	data, err := c.readKVv1(path)
	if err != nil {
		return nil, err
	}
	return stringify(data), nil
}

func (c *Client) readKVv1(path string) (map[string]interface{}, error) {
	secret, err := c.client.Logical().Read(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from path %s: %w", path, err)
	}
	if secret == nil {
		return nil, fmt.Errorf("no secret found at path %s", path)
	}
	return secret.Data, nil
}

func (c *Client) readKVv2(mountPath, secretPath string) (map[string]interface{}, error) {
	// KV v2 reads go through the data/ prefix
	fullPath := fmt.Sprintf("%s/data/%s", mountPath, secretPath)

	secret, err := c.client.Logical().Read(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read secret from KV v2 path %s: %w", fullPath, err)
	}
	if secret == nil {
		return nil, fmt.Errorf("no secret found at KV v2 path %s", fullPath)
	}
	if data, ok := secret.Data["data"].(map[string]interface{}); ok {
		return data, nil
	}
	return nil, fmt.Errorf("invalid KV v2 secret format at path %s", fullPath)
}

func splitMount(path string) (string, string) {
	parts := strings.SplitN(path, "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func stringify(data map[string]interface{}) map[string]string {
	out := make(map[string]string, len(data))
	for k, v := range data {
		if s, ok := v.(string); ok {
			out[k] = s
		} else {
			out[k] = fmt.Sprintf("%v", v)
		}
	}
	return out
}
