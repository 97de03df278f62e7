package extension

import (
	"sync"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/colortag"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/headers"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/postmsg"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/proxy"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/toolbox"
)

// registrationHooks returns an activation hook pair around a single hub
// registration. Activation deregisters a stale registration before making
// the new one, so repeated activation cannot stack handlers.
func registrationHooks(hub *browser.Browser, register func() (browser.Registration, error)) (onActivate, onDeactivate func() error) {
	var (
		lock sync.Mutex
		reg  browser.Registration
		live bool
	)

	onActivate = func() error {
		lock.Lock()
		defer lock.Unlock()

		if live {
			hub.Unregister(reg)
			live = false
		}

		fresh, err := register()
		if err != nil {
			return err
		}
		reg = fresh
		live = true
		return nil
	}

	onDeactivate = func() error {
		lock.Lock()
		defer lock.Unlock()

		if live {
			hub.Unregister(reg)
			live = false
		}
		return nil
	}

	return onActivate, onDeactivate
}

// buildFeatures constructs the feature set in its fixed order.
func (e *Extension) buildFeatures(hub *browser.Browser) {
	e.set = NewFeatureSet("pwnfox features", CfgOptionEnabledKey, e.reportTransition)

	onActivate, onDeactivate := registrationHooks(hub, func() (browser.Registration, error) {
		return hub.RegisterProxyHandler([]string{browser.AllURLs}, proxy.Decider(false))
	})
	e.set.Add("Proxy All Requests", CfgOptionProxyAllKey, onActivate, onDeactivate)

	onActivate, onDeactivate = registrationHooks(hub, func() (browser.Registration, error) {
		return hub.RegisterProxyHandler([]string{browser.AllURLs}, proxy.Decider(true))
	})
	e.set.Add("Proxy Container Requests", CfgOptionProxyContainersKey, onActivate, onDeactivate)

	onActivate, onDeactivate = registrationHooks(hub, func() (browser.Registration, error) {
		return hub.RegisterPreRequestHandler([]string{browser.AllURLs}, colortag.ResourceHandler(hub))
	})
	e.set.Add("Tag Container Requests", CfgOptionTagResourcesKey, onActivate, onDeactivate)

	onActivate, onDeactivate = registrationHooks(hub, func() (browser.Registration, error) {
		return hub.RegisterHeadersReceivedHandler([]string{browser.AllURLs}, headers.Handler())
	})
	e.set.Add("Strip Security Headers", CfgOptionStripHeadersKey, onActivate, onDeactivate)

	onActivate, onDeactivate = registrationHooks(hub, func() (browser.Registration, error) {
		return hub.RegisterPreSendHeadersHandler([]string{browser.AllURLs}, colortag.NavigationHandler())
	})
	e.set.Add("Colorize Navigations", CfgOptionColorizeNavKey, onActivate, onDeactivate)

	injector := toolbox.NewInjector(hub)
	e.toolboxFeature = e.set.Add("Inject Toolbox", CfgOptionInjectToolboxKey, injector.Activate, injector.Deactivate)

	logger := postmsg.NewLogger(hub)
	e.set.Add("Log PostMessage", CfgOptionLogPostMessageKey, logger.Activate, logger.Deactivate)
}
