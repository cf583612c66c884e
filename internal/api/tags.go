package api

import (
	"context"
	"fmt"
)

// KnownTags returns every tag the server knows about, for autocomplete.
func (c *Client) KnownTags(ctx context.Context) ([]string, error) {
	data, err := c.get(ctx, "/tags")
	if err != nil {
		return nil, err
	}
	return decodeJSON[[]string](data)
}

// PutItemTags applies a comma-joined tag change spec to one item. Tags
// prefixed with "-" are removed.
func (c *Client) PutItemTags(ctx context.Context, id int64, spec string) error {
	_, err := c.put(ctx, fmt.Sprintf("/item/%d/tags", id), textBody(spec))
	return err
}

// PutMassTags applies a tag change spec to several items at once.
func (c *Client) PutMassTags(ctx context.Context, ids []int64, spec string) error {
	_, err := c.put(ctx, "/tags", MassTagging{IDs: ids, Tags: spec})
	return err
}
