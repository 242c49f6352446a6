// Package common provides shared types and constants used across the jarvest
// daemon and its serving layer.
package common

// Version is the daemon version reported by system.getVersion.
const Version = "v0.2.1"

// AppName identifies the daemon in keyring entries, temp directories and
// the default pipe/socket names.
const AppName = "jarvest"

// TCPHost is the loopback host used for the JSON-RPC HTTP endpoint.
const TCPHost = "127.0.0.1"

// DefaultTCPPort is the default port for the JSON-RPC HTTP endpoint.
const DefaultTCPPort = 6942
