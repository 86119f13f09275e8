package extract

import (
	"encoding/json"
	"fmt"
	"strings"
)

// canvasFormat extracts text from drawing-canvas files (.excalidraw). The
// document is JSON holding a flat list of labeled elements; only elements
// tagged "text" carry user-visible content.
type canvasFormat struct{}

type canvasDocument struct {
	Elements []canvasElement `json:"elements"`
}

type canvasElement struct {
	Type      string `json:"type"`
	Text      string `json:"text,omitempty"`
	IsDeleted bool   `json:"isDeleted,omitempty"`
}

func (canvasFormat) Extract(content []byte) (string, error) {
	var doc canvasDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		return "", fmt.Errorf("extract canvas: %w", err)
	}
	var parts []string
	for _, el := range doc.Elements {
		if el.Type != "text" || el.IsDeleted {
			continue
		}
		if t := strings.TrimSpace(el.Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " "), nil
}
