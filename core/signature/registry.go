package signature

import (
	"context"
	"encoding/json"

	"github.com/AvaProtocol/txdecode/core/transport"
	"github.com/AvaProtocol/txdecode/model"
)

// RegistryResponse is a page of the 4byte.directory signatures endpoint.
type RegistryResponse struct {
	Count   int             `json:"count"`
	Next    *string         `json:"next"`
	Results []RegistryEntry `json:"results"`
}

type RegistryEntry struct {
	ID            int    `json:"id"`
	TextSignature string `json:"text_signature"`
	HexSignature  string `json:"hex_signature"`
}

// Registry queries a 4byte compatible signature directory.
type Registry struct {
	transport *transport.Client
	url       string
}

func NewRegistry(t *transport.Client, url string) *Registry {
	return &Registry{
		transport: t,
		url:       url,
	}
}

// Lookup returns every text signature registered for selector, in the order
// the registry lists them. Only the first page is read.
func (r *Registry) Lookup(ctx context.Context, selector string) ([]string, error) {
	body, err := r.transport.Get(ctx, r.url, map[string]string{
		"format":        "json",
		"hex_signature": selector,
	})
	if err != nil {
		return nil, err
	}

	var page RegistryResponse
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, model.NewError(model.TransportError, err, "malformed registry response")
	}

	signatures := make([]string, 0, len(page.Results))
	for _, entry := range page.Results {
		signatures = append(signatures, entry.TextSignature)
	}
	return signatures, nil
}
