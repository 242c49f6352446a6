//go:build !windows

package server

import (
	"net"
	"os"
)

// createListener creates the Unix domain socket listener. The socket is
// owner-only: it hands out live session credentials.
func (s *Server) createListener() (net.Listener, error) {
	path := socketPath()
	_ = os.Remove(path)
	l, err := net.ListenUnix("unix", &net.UnixAddr{
		Name: path,
		Net:  "unix",
	})
	if err != nil {
		return nil, err
	}
	_ = os.Chmod(path, 0o600)
	return l, nil
}
