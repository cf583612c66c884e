package api

import (
	"context"
	"fmt"
)

// GetItem fetches one gallery item with its tags.
func (c *Client) GetItem(ctx context.Context, id int64) (*Item, error) {
	data, err := c.get(ctx, fmt.Sprintf("/api/item/%d", id))
	if err != nil {
		return nil, err
	}
	item, err := decodeJSON[Item](data)
	if err != nil {
		return nil, err
	}
	return &item, nil
}

// ItemTags returns just the tags of one item.
func (c *Client) ItemTags(ctx context.Context, id int64) ([]string, error) {
	item, err := c.GetItem(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	return append([]string{}, item.Tags...), nil
}
