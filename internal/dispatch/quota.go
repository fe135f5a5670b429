package dispatch

import (
	"context"
	"errors"
	"io"
	"sync"
)

// QuotaStatus is the outcome of probing one credential
type QuotaStatus struct {
	Stats      CredentialStats
	Active     bool
	HTTPStatus int
	Err        error
}

// CheckQuota probes every credential concurrently against the list-models
// endpoint. Probes do not touch the dispatch counters.
func (d *Dispatcher) CheckQuota(ctx context.Context) []QuotaStatus {
	results := make([]QuotaStatus, len(d.creds))

	var wg sync.WaitGroup
	for i, c := range d.creds {
		wg.Add(1)
		go func(i int, c *credential) {
			defer wg.Done()
			results[i] = d.probe(ctx, c)
		}(i, c)
	}
	wg.Wait()

	return results
}

func (d *Dispatcher) probe(ctx context.Context, c *credential) QuotaStatus {
	ctx, cancel := context.WithTimeout(ctx, d.quotaTimeout)
	defer cancel()

	status := QuotaStatus{Stats: c.stats()}

	req, err := d.builder.BuildListModels(ctx, d.quotaURL, c.key)
	if err != nil {
		status.Err = err
		return status
	}

	resp, err := d.client.Do(req)
	if err != nil {
		status.Err = errors.New(transportMessage(err))
		return status
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	status.HTTPStatus = resp.StatusCode
	status.Active = resp.StatusCode >= 200 && resp.StatusCode < 300
	return status
}
