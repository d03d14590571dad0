package chaosconfig

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/cockroachdb/errors"
)

// HostedBackend fetches configuration from the local AppConfig-style
// extension process that runs alongside the function, over plain HTTP
// on localhost. The extension itself owns caching and refresh against
// the actual hosted configuration service, which is why the loader
// defaults this backend's own TTL to zero.
type HostedBackend struct {
	Application   string
	Environment   string
	Configuration string
	Port          string

	// Client is overridable for tests; defaults to http.DefaultClient.
	Client *http.Client
}

func (b *HostedBackend) Name() string { return "hosted" }

func (b *HostedBackend) url() string {
	return fmt.Sprintf("http://localhost:%s/applications/%s/environments/%s/configurations/%s",
		b.Port, b.Application, b.Environment, b.Configuration)
}

func (b *HostedBackend) client() *http.Client {
	if b.Client != nil {
		return b.Client
	}
	return http.DefaultClient
}

func (b *HostedBackend) Fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.url(), nil)
	if err != nil {
		return nil, errors.Wrap(err, "building hosted-config request")
	}

	resp, err := b.client().Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "fetching hosted configuration")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Newf("hosted configuration endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "reading hosted configuration response")
	}
	return body, nil
}
