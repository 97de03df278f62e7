package colortag

import (
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/metrics"
)

var (
	resourcesTaggedTotal   *metrics.Counter
	navigationsTaggedTotal *metrics.Counter
)

// RegisterMetrics registers the tagging counters.
// The extension module calls this on start.
func RegisterMetrics() (err error) {
	resourcesTaggedTotal, err = metrics.NewCounter(
		"colortag/resources/total",
		nil,
		&metrics.Options{
			Name:       "Tagged Container Resources",
			InternalID: "tagged_resources",
		},
	)
	if err != nil {
		return err
	}

	navigationsTaggedTotal, err = metrics.NewCounter(
		"colortag/navigations/total",
		nil,
		&metrics.Options{
			Name:       "Tagged Navigations",
			InternalID: "tagged_navigations",
		},
	)
	if err != nil {
		return err
	}

	return nil
}
