// Package server exposes the harvest engine over JSON-RPC 2.0: an HTTP
// bridge on loopback TCP plus a local transport (Unix socket or Windows
// named pipe), with a WebSocket endpoint for push-capable clients.
package server

import (
	"context"
	"net/http"

	"github.com/creachadair/jrpc2"
	"github.com/creachadair/jrpc2/handler"
	"github.com/creachadair/jrpc2/jhttp"

	"github.com/jarvest/jarvest/internal/harvest"
	"github.com/jarvest/jarvest/pkg/logger"
)

// Custom JSON-RPC error codes for harvest operations.
const (
	codeHarvestFailed = jrpc2.Code(-32001)
	codeInvalidParams = jrpc2.Code(-32602)
)

// Harvester is the engine surface the RPC layer needs.
type Harvester interface {
	GetSessionMaterial(ctx context.Context, p harvest.MaterialParams) (harvest.Material, error)
	SetSeedHeader(raw string) error
	ClearSeedHeader() error
	Invalidate()
}

// RPCConfig holds configuration for the JSON-RPC endpoint.
type RPCConfig struct {
	Secret  string // Auth token (required -- empty means every request is rejected)
	Version string // Daemon version
}

// RPCServer manages the JSON-RPC 2.0 bridge and method handlers.
type RPCServer struct {
	bridge   jhttp.Bridge
	methods  handler.Map
	secret   string
	version  string
	engine   Harvester
	notifier *RPCNotifier
	log      logger.Logger
}

// VersionResult is the response for system.getVersion.
type VersionResult struct {
	Version string `json:"version"`
}

// SeedParams is the input for seed.set.
type SeedParams struct {
	Header string `json:"header"`
}

// EmptyResult is a placeholder for methods that return no data.
type EmptyResult struct{}

// NewRPCServer creates a new RPCServer with method handlers and HTTP bridge.
func NewRPCServer(cfg *RPCConfig, engine Harvester, l logger.Logger) *RPCServer {
	rs := &RPCServer{
		secret:   cfg.Secret,
		version:  cfg.Version,
		engine:   engine,
		notifier: NewRPCNotifier(l),
		log:      l,
	}

	rs.methods = handler.Map{
		"system.getVersion":  handler.New(rs.systemGetVersion),
		"session.get":        handler.New(rs.sessionGet),
		"session.invalidate": handler.New(rs.sessionInvalidate),
		"seed.set":           handler.New(rs.seedSet),
		"seed.clear":         handler.New(rs.seedClear),
	}

	rs.bridge = jhttp.NewBridge(rs.methods, nil)
	return rs
}

// Handler returns the authenticated HTTP surface: the JSON-RPC bridge at
// "/" and the WebSocket upgrade at "/ws". With an empty secret every
// request is rejected; the TCP transport never runs keyless.
func (rs *RPCServer) Handler() http.Handler {
	return requireToken(rs.secret, rs.mux())
}

// localHandler is the surface for the local transport (Unix socket or
// named pipe). Without a configured key it serves open: the transport
// itself is restricted to the daemon's own user.
func (rs *RPCServer) localHandler() http.Handler {
	if rs.secret == "" {
		return rs.mux()
	}
	return rs.Handler()
}

func (rs *RPCServer) mux() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/ws", rs.wsHandler())
	mux.Handle("/", rs.bridge)
	return mux
}

func (rs *RPCServer) systemGetVersion(_ context.Context) (*VersionResult, error) {
	return &VersionResult{Version: rs.version}, nil
}

// sessionGet runs (or serves from cache) a harvest and returns the
// session material. Completed fresh harvests are pushed to WebSocket
// subscribers as harvest.completed notifications.
func (rs *RPCServer) sessionGet(ctx context.Context, p *harvest.MaterialParams) (*harvest.Material, error) {
	m, err := rs.engine.GetSessionMaterial(ctx, *p)
	if err != nil {
		return nil, &jrpc2.Error{Code: codeHarvestFailed, Message: err.Error()}
	}
	if !m.ServedFromCache {
		rs.notifier.Broadcast("harvest.completed", &HarvestCompletedNotification{
			PickedProfile: m.PickedProfile,
			Authenticated: m.Authenticated(),
			Attempts:      len(m.Attempts),
		})
	}
	return &m, nil
}

func (rs *RPCServer) sessionInvalidate(_ context.Context) (*EmptyResult, error) {
	rs.engine.Invalidate()
	return &EmptyResult{}, nil
}

func (rs *RPCServer) seedSet(_ context.Context, p *SeedParams) (*EmptyResult, error) {
	if p.Header == "" {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: "missing required param: header"}
	}
	if err := rs.engine.SetSeedHeader(p.Header); err != nil {
		return nil, &jrpc2.Error{Code: codeInvalidParams, Message: err.Error()}
	}
	return &EmptyResult{}, nil
}

func (rs *RPCServer) seedClear(_ context.Context) (*EmptyResult, error) {
	if err := rs.engine.ClearSeedHeader(); err != nil {
		return nil, &jrpc2.Error{Code: codeHarvestFailed, Message: err.Error()}
	}
	return &EmptyResult{}, nil
}

// Close shuts down the jrpc2 bridge, releasing internal goroutines.
func (rs *RPCServer) Close() {
	rs.bridge.Close()
}
