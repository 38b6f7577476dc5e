package rubygems

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/rubygems/configure-trusted-publisher/internal/domain/model"
)

const mediaTypeJSON = "application/json"

// publisherJSON is one element of the trusted publishers listing, and the
// shape of the creation payload.
type publisherJSON struct {
	TrustedPublisher     map[string]any `json:"trusted_publisher"`
	TrustedPublisherType string         `json:"trusted_publisher_type"`
}

// List retrieves the trusted publishers configured for gem. A 401 that
// survives the MFA flow is an AuthenticationError; any other status than 200
// is returned as a RegistryRequestError carrying the raw body.
func (c *Client) List(ctx context.Context, gem string) ([]model.ExistingPublisherRecord, error) {
	cred, err := c.Authenticate(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   trustedPublishersPath(gem),
		accept: mediaTypeJSON,
		auth:   func(req *http.Request) { c.AttachCredential(req, cred) },
	})
	if err != nil {
		return nil, fmt.Errorf("listing trusted publishers for %s: %w", gem, err)
	}
	if resp.status == http.StatusUnauthorized {
		return nil, c.rejected(resp)
	}
	if resp.status != http.StatusOK {
		return nil, &model.RegistryRequestError{Op: "get", Gem: gem, Status: resp.status, Body: string(resp.body)}
	}

	var raw []publisherJSON
	if err := json.Unmarshal(resp.body, &raw); err != nil {
		return nil, fmt.Errorf("decoding trusted publishers for %s: %w", gem, err)
	}

	records := make([]model.ExistingPublisherRecord, 0, len(raw))
	for _, p := range raw {
		records = append(records, model.ExistingPublisherRecord{
			Type:       model.PublisherType(p.TrustedPublisherType),
			Attributes: p.TrustedPublisher,
		})
	}
	return records, nil
}

// Create registers spec as a trusted publisher of gem. Only 201 Created
// counts as success.
func (c *Client) Create(ctx context.Context, gem string, spec model.TrustedPublisherSpec) error {
	cred, err := c.Authenticate(ctx)
	if err != nil {
		return err
	}

	fields := make(map[string]any, len(spec.Fields()))
	for k, v := range spec.Fields() {
		fields[k] = v
	}
	payload, err := json.Marshal(publisherJSON{
		TrustedPublisher:     fields,
		TrustedPublisherType: string(spec.Type),
	})
	if err != nil {
		return fmt.Errorf("encoding trusted publisher: %w", err)
	}

	resp, err := c.do(ctx, request{
		method:    http.MethodPost,
		path:      trustedPublishersPath(gem),
		accept:    mediaTypeJSON,
		mediaType: mediaTypeJSON,
		body:      func() io.Reader { return bytes.NewReader(payload) },
		auth:      func(req *http.Request) { c.AttachCredential(req, cred) },
	})
	if err != nil {
		return fmt.Errorf("creating trusted publisher for %s: %w", gem, err)
	}
	if resp.status == http.StatusUnauthorized {
		return c.rejected(resp)
	}
	if resp.status != http.StatusCreated {
		return &model.RegistryRequestError{Op: "create", Gem: gem, Status: resp.status, Body: string(resp.body)}
	}
	return nil
}

// rejected reports a credential the registry refused after the MFA retry.
func (c *Client) rejected(resp response) error {
	return &model.AuthenticationError{Host: c.host.ForDisplay(), Status: resp.status, Body: string(resp.body)}
}

func trustedPublishersPath(gem string) string {
	return "api/v1/gems/" + url.PathEscape(gem) + "/trusted_publishers"
}
