package metrics

import (
	"os"
	"strings"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
)

// Configuration Keys.
var (
	CfgOptionInstanceKey = "core/metrics/instance"
	instanceOption       config.StringOption

	CfgOptionPushKey = "core/metrics/push"
	pushOption       config.StringOption

	defaultInstance string
)

func init() {
	// Use the hostname as default instance label, if it is usable.
	hostname, err := os.Hostname()
	if err == nil {
		hostname = strings.ReplaceAll(hostname, "-", "")
		if prometheusFormat.MatchString(hostname) {
			defaultInstance = hostname
		}
	}
}

func prepConfig() error {
	err := config.Register(&config.Option{
		Name:            "Metrics Instance Name",
		Key:             CfgOptionInstanceKey,
		Description:     "Define the prometheus instance label for all exported metrics.",
		OptType:         config.OptTypeString,
		DefaultValue:    defaultInstance,
		RequiresRestart: true,
		Annotations: config.Annotations{
			config.DisplayOrderAnnotation: 514,
			config.CategoryAnnotation:     "Development",
		},
		ValidationRegex: "^(" + prometheusBaseFormat + ")?$",
	})
	if err != nil {
		return err
	}
	instanceOption = config.Concurrent.GetAsString(CfgOptionInstanceKey, defaultInstance)

	err = config.Register(&config.Option{
		Name:            "Push Prometheus Metrics",
		Key:             CfgOptionPushKey,
		Description:     "Push metrics to this URL in the prometheus format.",
		OptType:         config.OptTypeString,
		DefaultValue:    "",
		RequiresRestart: true,
		Annotations: config.Annotations{
			config.DisplayOrderAnnotation: 515,
			config.CategoryAnnotation:     "Development",
		},
	})
	if err != nil {
		return err
	}
	pushOption = config.Concurrent.GetAsString(CfgOptionPushKey, "")

	return nil
}
