package browser

import (
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/metrics"
)

var (
	proxyDispatchTotal           *metrics.Counter
	preRequestDispatchTotal      *metrics.Counter
	preSendHeadersDispatchTotal  *metrics.Counter
	headersReceivedDispatchTotal *metrics.Counter
	dispatchFailedTotal          *metrics.Counter
)

func registerMetrics() (err error) {
	proxyDispatchTotal, err = metrics.NewCounter(
		"browser/dispatch/proxy/total",
		nil,
		&metrics.Options{
			Name:       "Proxy Decisions",
			InternalID: "proxy_decisions",
		},
	)
	if err != nil {
		return err
	}

	preRequestDispatchTotal, err = metrics.NewCounter(
		"browser/dispatch/prerequest/total",
		nil,
		&metrics.Options{
			Name: "Pre-Request Dispatches",
		},
	)
	if err != nil {
		return err
	}

	preSendHeadersDispatchTotal, err = metrics.NewCounter(
		"browser/dispatch/presendheaders/total",
		nil,
		&metrics.Options{
			Name: "Pre-Send-Headers Dispatches",
		},
	)
	if err != nil {
		return err
	}

	headersReceivedDispatchTotal, err = metrics.NewCounter(
		"browser/dispatch/headersreceived/total",
		nil,
		&metrics.Options{
			Name: "Headers-Received Dispatches",
		},
	)
	if err != nil {
		return err
	}

	dispatchFailedTotal, err = metrics.NewCounter(
		"browser/dispatch/failed/total",
		nil,
		&metrics.Options{
			Name:       "Failed Handler Dispatches",
			InternalID: "failed_dispatches",
		},
	)
	if err != nil {
		return err
	}

	return nil
}
