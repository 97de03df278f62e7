package headers

import (
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/metrics"
)

var headersStrippedTotal *metrics.Counter

// RegisterMetrics registers the stripping counter.
// The extension module calls this on start.
func RegisterMetrics() (err error) {
	headersStrippedTotal, err = metrics.NewCounter(
		"headers/stripped/total",
		nil,
		&metrics.Options{
			Name:       "Stripped Security Headers",
			InternalID: "stripped_security_headers",
		},
	)
	return err
}
