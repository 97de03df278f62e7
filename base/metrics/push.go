package metrics

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

const pushInterval = 1 * time.Minute

// WriteMetrics writes all registered metrics to the given writer.
func WriteMetrics(w io.Writer) {
	registryLock.RLock()
	defer registryLock.RUnlock()

	for _, metric := range registry {
		metric.WritePrometheus(w)
	}
}

func writeMetricsTo(ctx context.Context, url string) error {
	// First, collect metrics into buffer.
	buf := &bytes.Buffer{}
	WriteMetrics(buf)

	// Check if there is something to send.
	if buf.Len() == 0 {
		log.Debugf("metrics: not pushing metrics, nothing to send")
		return nil
	}

	// Create request
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, buf)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	// Send.
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	// Check return status.
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		return nil
	}

	// Get and return error.
	body, _ := io.ReadAll(resp.Body)
	return fmt.Errorf(
		"got %s while writing metrics to %s: %s",
		resp.Status,
		url,
		body,
	)
}

func metricsWriter(ctx *mgr.WorkerCtx) error {
	pushURL := pushOption()
	ticker := time.NewTicker(pushInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := writeMetricsTo(ctx.Ctx(), pushURL)
			if err != nil {
				return err
			}
		}
	}
}
