// Package rpc implements the JSON-RPC 2.0 dispatcher: envelope decoding,
// method routing to pkg/service, per-method token policy enforcement,
// admin elevation, and domain-error-to-JSON-RPC-error translation.
package rpc

// TokenPolicy governs how a method treats the caller's bearer token.
type TokenPolicy int

const (
	// PolicyNone always clears any token from the request context.
	PolicyNone TokenPolicy = iota
	// PolicyOptional validates a present token but tolerates its absence
	// or failure: an invalid token is simply treated as anonymous.
	PolicyOptional
	// PolicyRequired rejects the request outright if the token is
	// missing or fails validation.
	PolicyRequired
)

// methodPolicies assigns each Workspace.* method its token policy. Reads
// (ls, get, list_permissions, get_download_url) are optional so public
// workspaces remain browsable anonymously; every mutation requires an
// authenticated caller since object ownership has to name someone.
var methodPolicies = map[string]TokenPolicy{
	"ls":                PolicyOptional,
	"get":               PolicyOptional,
	"list_permissions":  PolicyOptional,
	"get_download_url":  PolicyOptional,
	"create":            PolicyRequired,
	"delete":            PolicyRequired,
	"copy":              PolicyRequired,
	"set_permissions":   PolicyRequired,
	"update_metadata":   PolicyRequired,
	"update_auto_meta":  PolicyRequired,
}

func policyFor(method string) (TokenPolicy, bool) {
	p, ok := methodPolicies[method]
	return p, ok
}
