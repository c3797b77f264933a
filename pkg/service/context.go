// Package service implements the workspace JSON-RPC methods: create,
// delete, copy/move, ls, get, permission management, download ticket
// issuance, and the metadata reconciliation entry points. It is the one
// place that orchestrates pkg/wspath, pkg/metadata, pkg/blob,
// pkg/reconciler, pkg/authtoken, and pkg/payload/fs together; everything
// below it is a plain repository or client.
package service

import "time"

// Caller identifies who is making a request and under what elevation.
type Caller struct {
	User      string // empty for an anonymous/no-token caller
	AdminMode bool   // true once the dispatcher has granted admin elevation
}

// Config carries the deployment-specific knobs the service layer needs.
type Config struct {
	AdminUsers      []string
	DownloadLifetime time.Duration
	DownloadURLBase  string
	ShockServerURL   string
}

func (c Config) isAdmin(user string) bool {
	for _, u := range c.AdminUsers {
		if u == user {
			return true
		}
	}
	return false
}

// ResolveAdminMode grants admin elevation only when the caller both asked
// for it and is present in the configured admin list: asking alone is
// never enough, and being an admin without asking leaves the caller at
// their ordinary permission rank.
func (c Config) ResolveAdminMode(user string, requested bool) bool {
	return requested && c.isAdmin(user)
}
