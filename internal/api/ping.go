package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
)

// PingPreamble starts every /ping answer from a CloudSpill server.
const PingPreamble = "CloudSpill server."

// Ping checks that the configured URL is a CloudSpill server.
func (c *Client) Ping(ctx context.Context) (*ServerInfo, error) {
	resp, err := c.do(ctx, http.MethodGet, "/ping", nil)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(strings.TrimSpace(string(resp.body)), PingPreamble) {
		return nil, fmt.Errorf("%s does not look like a CloudSpill server", c.baseURL)
	}
	return &ServerInfo{
		DataVersion: resp.header.Get("Data-Version"),
		PublicURL:   resp.header.Get("Url"),
	}, nil
}
