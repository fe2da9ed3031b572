package marketplace

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/pkg/errors"

	"github.com/jingkaihe/plugmark/pkg/logger"
	"github.com/jingkaihe/plugmark/pkg/manifest"
)

const (
	fetchTimeout  = 30 * time.Second
	fetchAttempts = 3
	maxBodySize   = 4 << 20 // manifests are small; refuse anything bigger
)

// FetchManifest downloads and parses a remote marketplace.json. Transient
// HTTP failures are retried with backoff.
func FetchManifest(ctx context.Context, url string) (*manifest.MarketplaceManifest, []byte, error) {
	client := &http.Client{Timeout: fetchTimeout}

	var body []byte
	err := retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
			if err != nil {
				return retry.Unrecoverable(errors.Wrap(err, "failed to build request"))
			}

			resp, err := client.Do(req)
			if err != nil {
				return errors.Wrap(err, "request failed")
			}
			defer resp.Body.Close()

			switch {
			case resp.StatusCode >= 500:
				return errors.Errorf("server error: %s", resp.Status)
			case resp.StatusCode != http.StatusOK:
				return retry.Unrecoverable(errors.Errorf("unexpected status: %s", resp.Status))
			}

			body, err = io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
			if err != nil {
				return errors.Wrap(err, "failed to read response body")
			}
			if len(body) > maxBodySize {
				return retry.Unrecoverable(errors.Errorf("manifest exceeds %d bytes", maxBodySize))
			}
			return nil
		},
		retry.Attempts(fetchAttempts),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.Context(ctx),
		retry.OnRetry(func(n uint, err error) {
			logger.G(ctx).WithError(err).WithFields(map[string]any{
				"url":     url,
				"attempt": n + 1,
			}).Warn("retrying marketplace fetch")
		}),
	)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to fetch marketplace manifest from %s", url)
	}

	parsed, err := manifest.ParseMarketplace(body)
	if err != nil {
		return nil, nil, err
	}

	return parsed, body, nil
}
