package extscript

import (
	"fmt"
	"path/filepath"

	"github.com/dop251/goja"

	"github.com/jarvest/jarvest/pkg/logger"
)

// Adapter is a loaded site adapter script. Either hook may be absent; the
// engine falls back to its built-in behavior for missing hooks.
type Adapter struct {
	rt         *Runtime
	deriveAuth goja.Callable
	touchURLs  goja.Callable
	log        logger.Logger
}

// Load reads and executes the adapter script, then resolves the optional
// deriveAuth(ts, cookies, origin) and touchUrls() hooks.
func Load(l logger.Logger, path string) (*Adapter, error) {
	rt, err := NewRuntime(l, filepath.Dir(path))
	if err != nil {
		return nil, err
	}
	if err := rt.RunFile(path); err != nil {
		return nil, err
	}

	a := &Adapter{rt: rt, log: l}
	if fn, ok := rt.Func("deriveAuth"); ok {
		a.deriveAuth = fn
	}
	if fn, ok := rt.Func("touchUrls"); ok {
		a.touchURLs = fn
	}
	if a.deriveAuth == nil && a.touchURLs == nil {
		return nil, fmt.Errorf("adapter script defines neither deriveAuth nor touchUrls")
	}
	return a, nil
}

// DeriveAuth asks the script for an auth header. The second return is false
// when the hook is absent or failed, which tells the caller to use the
// built-in scheme instead.
func (a *Adapter) DeriveAuth(ts int64, cookies map[string]string, origin string) (string, bool) {
	if a == nil || a.deriveAuth == nil {
		return "", false
	}
	v, err := a.deriveAuth(goja.Undefined(),
		a.rt.ToValue(ts), a.rt.ToValue(cookies), a.rt.ToValue(origin))
	if err != nil {
		a.log.Warning("adapter deriveAuth failed: %v", err)
		return "", false
	}
	header, ok := v.Export().(string)
	if !ok || header == "" {
		return "", false
	}
	return header, true
}

// TouchURLs returns extra URLs to navigate before the primary target, or
// nil when the hook is absent.
func (a *Adapter) TouchURLs() []string {
	if a == nil || a.touchURLs == nil {
		return nil
	}
	v, err := a.touchURLs(goja.Undefined())
	if err != nil {
		a.log.Warning("adapter touchUrls failed: %v", err)
		return nil
	}
	raw, ok := v.Export().([]interface{})
	if !ok {
		return nil
	}
	urls := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok && s != "" {
			urls = append(urls, s)
		}
	}
	return urls
}
