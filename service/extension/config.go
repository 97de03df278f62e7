package extension

import (
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
)

// Configuration keys. The names match what the extension popup stores, so
// the config file stays interchangeable with an existing profile.
var (
	CfgOptionEnabledKey = "enabled"

	CfgOptionProxyAllKey        = "useBurpProxyAll"
	CfgOptionProxyContainersKey = "useBurpProxyContainer"
	CfgOptionTagResourcesKey    = "addContainerHeader"
	CfgOptionStripHeadersKey    = "removeSecurityHeaders"
	CfgOptionColorizeNavKey     = "colorizeTopLevelNavigation"
	CfgOptionInjectToolboxKey   = "injectToolbox"
	CfgOptionLogPostMessageKey  = "logPostMessage"
)

// RegisterConfig registers the feature switches with the config system.
// pwnfoxctl calls it standalone to validate edits against the same options.
func RegisterConfig() error {
	for _, opt := range []*config.Option{
		{
			Name:         "PwnFox Enabled",
			Key:          CfgOptionEnabledKey,
			Description:  "Master switch. While off, no feature is active regardless of its own setting.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 1,
				config.CategoryAnnotation:     "General",
			},
		},
		{
			Name:         "Proxy All Requests",
			Key:          CfgOptionProxyAllKey,
			Description:  "Route every request through the intercepting proxy.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 2,
				config.CategoryAnnotation:     "Features",
			},
		},
		{
			Name:         "Proxy Container Requests",
			Key:          CfgOptionProxyContainersKey,
			Description:  "Route requests from container tabs through the intercepting proxy. Tabs outside any container stay direct.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 3,
				config.CategoryAnnotation:     "Features",
			},
		},
		{
			Name:         "Tag Container Requests",
			Key:          CfgOptionTagResourcesKey,
			Description:  "Append the container color to request URLs so the proxy can group traffic by container.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 4,
				config.CategoryAnnotation:     "Features",
			},
		},
		{
			Name:         "Strip Security Headers",
			Key:          CfgOptionStripHeadersKey,
			Description:  "Remove security headers from responses so injected tooling is not blocked.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 5,
				config.CategoryAnnotation:     "Features",
			},
		},
		{
			Name:         "Colorize Navigations",
			Key:          CfgOptionColorizeNavKey,
			Description:  "Tag top level navigations with the fixed navigation color.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 6,
				config.CategoryAnnotation:     "Features",
			},
		},
		{
			Name:         "Inject Toolbox",
			Key:          CfgOptionInjectToolboxKey,
			Description:  "Inject the selected toolbox script into every page.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 7,
				config.CategoryAnnotation:     "Features",
			},
		},
		{
			Name:         "Log PostMessage",
			Key:          CfgOptionLogPostMessageKey,
			Description:  "Mirror window message traffic to the page console.",
			OptType:      config.OptTypeBool,
			DefaultValue: false,
			Annotations: config.Annotations{
				config.DisplayOrderAnnotation: 8,
				config.CategoryAnnotation:     "Features",
			},
		},
	} {
		if err := config.Register(opt); err != nil {
			return err
		}
	}
	return nil
}
