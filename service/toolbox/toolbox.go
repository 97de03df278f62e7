// Package toolbox injects the selected toolbox script into every page.
package toolbox

import (
	"github.com/tidwall/gjson"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
)

// Configuration keys.
var (
	CfgOptionActiveToolboxKey = "activeToolbox"
	activeToolbox             config.StringOption

	CfgOptionSavedToolboxKey = "savedToolbox"
	savedToolbox             config.StringOption
)

// RegisterConfig registers the toolbox options and creates their getters.
// The extension module calls this before start.
func RegisterConfig() error {
	if err := config.Register(&config.Option{
		Name:         "Active Toolbox",
		Key:          CfgOptionActiveToolboxKey,
		Description:  "Name of the toolbox script injected into pages while toolbox injection is active.",
		OptType:      config.OptTypeString,
		DefaultValue: "",
		Annotations: config.Annotations{
			config.DisplayOrderAnnotation: 32,
			config.CategoryAnnotation:     "Toolbox",
		},
	}); err != nil {
		return err
	}
	activeToolbox = config.Concurrent.GetAsString(CfgOptionActiveToolboxKey, "")

	if err := config.Register(&config.Option{
		Name:         "Saved Toolboxes",
		Key:          CfgOptionSavedToolboxKey,
		Description:  "JSON object mapping toolbox names to script text. Managed with pwnfoxctl toolbox.",
		OptType:      config.OptTypeString,
		DefaultValue: "{}",
		Annotations: config.Annotations{
			config.DisplayOrderAnnotation: 33,
			config.CategoryAnnotation:     "Toolbox",
		},
	}); err != nil {
		return err
	}
	savedToolbox = config.Concurrent.GetAsString(CfgOptionSavedToolboxKey, "{}")

	return nil
}

// ActiveName returns the currently selected toolbox name.
func ActiveName() string {
	return activeToolbox()
}

// ResolveScript returns the script text saved under the given toolbox name.
// Unknown names and broken saved data resolve to an empty script.
func ResolveScript(name string) string {
	if name == "" {
		return ""
	}

	// Look the name up as a literal key, not as a gjson path, so dots in
	// toolbox names cannot traverse into nested values.
	entry, ok := gjson.Parse(savedToolbox()).Map()[name]
	if !ok {
		log.Debugf("toolbox: no script saved under %q", name)
		return ""
	}
	if entry.Type != gjson.String {
		log.Debugf("toolbox: saved entry %q is not script text", name)
		return ""
	}
	return entry.String()
}
