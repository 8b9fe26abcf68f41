// Package codec is a small bundled SDK family exposing encoding utilities.
// Its methods take no context, which exercises the engine's context-free
// call path.
package codec

import (
	"encoding/base64"
	"fmt"
)

// Client exposes the codec operations. It holds no state; it exists so the
// surface walker has a receiver to enumerate.
type Client struct{}

// NewClient creates the codec client.
func NewClient() *Client {
	return &Client{}
}

// EncodeRequest carries the text to encode.
type EncodeRequest struct {
	Content string `json:"content" desc:"The text content to encode as base64"`
}

// EncodeResult carries the encoded output.
type EncodeResult struct {
	Encoded string `json:"encoded"`
	Length  int    `json:"length"`
}

// EncodeBase64 encodes text content as standard base64.
func (c *Client) EncodeBase64(req *EncodeRequest) (*EncodeResult, error) {
	encoded := base64.StdEncoding.EncodeToString([]byte(req.Content))
	return &EncodeResult{Encoded: encoded, Length: len(encoded)}, nil
}

// DecodeRequest carries the base64 text to decode.
type DecodeRequest struct {
	Content string `json:"content" desc:"The base64 content to decode"`
	URLSafe bool   `json:"url_safe,omitempty" default:"false" desc:"Use the URL-safe base64 alphabet"`
}

// DecodeResult carries the decoded output.
type DecodeResult struct {
	Decoded string `json:"decoded"`
	Length  int    `json:"length"`
}

// DecodeBase64 decodes base64 content back to text.
func (c *Client) DecodeBase64(req *DecodeRequest) (*DecodeResult, error) {
	encoding := base64.StdEncoding
	if req.URLSafe {
		encoding = base64.URLEncoding
	}

	decoded, err := encoding.DecodeString(req.Content)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 content: %w", err)
	}

	return &DecodeResult{Decoded: string(decoded), Length: len(decoded)}, nil
}

// ToolDocs provides the native descriptions for the codec operations.
func (c *Client) ToolDocs() map[string]string {
	return map[string]string{
		"encode_base64": "Encode text content as base64. Useful for preparing Kubernetes secret values.",
		"decode_base64": "Decode base64 content back to text. Useful for reading Kubernetes secret values.",
	}
}
