package api

import (
	"encoding/json"
	"strings"
)

// TagList decodes either a JSON array of tags or the comma-separated string
// form the gallery uses in item metadata.
type TagList []string

func (t *TagList) UnmarshalJSON(data []byte) error {
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*t = list
		return nil
	}
	var joined string
	if err := json.Unmarshal(data, &joined); err != nil {
		return err
	}
	out := TagList{}
	for _, part := range strings.Split(joined, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*t = out
	return nil
}

// Item is a gallery item as returned by the item endpoint.
type Item struct {
	ID   int64   `json:"id"`
	User string  `json:"user"`
	Path string  `json:"path"`
	Type string  `json:"type"`
	Tags TagList `json:"tags"`
}

// MassTagging is the body of a multi-item tag update.
type MassTagging struct {
	IDs  []int64 `json:"ids"`
	Tags string  `json:"tags"`
}

// ServerInfo is what /ping tells about the server.
type ServerInfo struct {
	DataVersion string
	PublicURL   string
}
