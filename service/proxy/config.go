package proxy

import (
	"fmt"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
)

// Configuration keys.
var (
	CfgOptionBurpHostKey = "burpProxyHost"
	burpHost             config.StringOption

	CfgOptionBurpPortKey = "burpProxyPort"
	burpPort             config.IntOption
)

const (
	defaultBurpHost = "127.0.0.1"
	defaultBurpPort = 8080
)

// RegisterConfig registers the proxy target options and creates their
// getters. The extension module calls this before start, as the routing
// features themselves live there.
func RegisterConfig() error {
	if err := config.Register(&config.Option{
		Name:         "Intercept Proxy Host",
		Key:          CfgOptionBurpHostKey,
		Description:  "Host the intercepting proxy, such as Burp or Caido, listens on.",
		OptType:      config.OptTypeString,
		DefaultValue: defaultBurpHost,
		Annotations: config.Annotations{
			config.DisplayOrderAnnotation: 16,
			config.CategoryAnnotation:     "Proxy",
		},
		ValidationRegex: `^\S+$`,
	}); err != nil {
		return err
	}
	burpHost = config.Concurrent.GetAsString(CfgOptionBurpHostKey, defaultBurpHost)

	if err := config.Register(&config.Option{
		Name:         "Intercept Proxy Port",
		Key:          CfgOptionBurpPortKey,
		Description:  "Port the intercepting proxy, such as Burp or Caido, listens on.",
		OptType:      config.OptTypeInt,
		DefaultValue: defaultBurpPort,
		Annotations: config.Annotations{
			config.DisplayOrderAnnotation: 17,
			config.CategoryAnnotation:     "Proxy",
		},
		ValidationFunc: validatePort,
	}); err != nil {
		return err
	}
	burpPort = config.Concurrent.GetAsInt(CfgOptionBurpPortKey, defaultBurpPort)

	return nil
}

func validatePort(value interface{}) error {
	port, ok := value.(int64)
	if !ok {
		return fmt.Errorf("expected an integer, got %T", value)
	}
	if port < 1 || port > 65535 {
		return fmt.Errorf("port %d is out of range", port)
	}
	return nil
}
