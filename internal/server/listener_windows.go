//go:build windows

package server

import (
	"net"

	"github.com/Microsoft/go-winio"

	"github.com/jarvest/jarvest/common"
)

// pipeSecurityDescriptor restricts pipe access to:
// - SYSTEM: Full control (for service scenarios)
// - Built-in Administrators: Full control
// - Creator Owner: Full control (the user running the daemon)
// The pipe hands out live session credentials, so nobody else connects.
const pipeSecurityDescriptor = "D:(A;;GA;;;SY)(A;;GA;;;BA)(A;;GA;;;CO)"

// createListener creates the Windows named pipe listener.
func (s *Server) createListener() (net.Listener, error) {
	cfg := &winio.PipeConfig{
		SecurityDescriptor: pipeSecurityDescriptor,
	}
	return winio.ListenPipe(common.PipePath(), cfg)
}
