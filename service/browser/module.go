package browser

import (
	"errors"
	"sync"
	"sync/atomic"

	"github.com/tevino/abool"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

// Browser is the in-process stand-in for the browser surfaces the extension
// bridges over native messaging. Feature modules register handlers on it,
// the messaging frontend feeds it requests and container events.
type Browser struct {
	mgr      *mgr.Manager
	instance instance

	handlersLock    sync.RWMutex
	proxyHandlers   []*proxyRegistration
	preRequest      []*blockingRegistration
	preSendHeaders  []*blockingRegistration
	headersReceived []*blockingRegistration

	identityLock sync.RWMutex
	tabStores    map[int]string
	identities   map[string]*ContextualIdentity

	scriptsLock sync.Mutex
	scripts     map[string]ContentScript
	outbound    Outbound
}

// Manager returns the module manager.
func (b *Browser) Manager() *mgr.Manager {
	return b.mgr
}

// Start starts the module.
func (b *Browser) Start() error {
	getConfig()
	return registerMetrics()
}

// Stop stops the module.
func (b *Browser) Stop() error {
	return nil
}

var (
	devMode     config.BoolOption
	configReady = abool.New()
)

func getConfig() {
	devMode = config.Concurrent.GetAsBool(config.CfgDevModeKey, false)
	configReady.Set()
}

func devModeEnabled() bool {
	return configReady.IsSet() && devMode()
}

var (
	module     *Browser
	shimLoaded atomic.Bool
)

// New returns a new Browser module.
func New(instance instance) (*Browser, error) {
	if !shimLoaded.CompareAndSwap(false, true) {
		return nil, errors.New("only one instance allowed")
	}
	m := mgr.New("Browser")
	module = &Browser{
		mgr:      m,
		instance: instance,

		tabStores:  make(map[int]string),
		identities: make(map[string]*ContextualIdentity),
		scripts:    make(map[string]ContentScript),
	}

	return module, nil
}

type instance interface{}
