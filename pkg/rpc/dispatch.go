package rpc

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/authtoken"
	"github.com/wsobjects/wsd/pkg/service"
	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// Dispatcher decodes a JSON-RPC envelope, resolves the caller's identity
// per the method's token policy, and routes to the matching pkg/service
// method.
type Dispatcher struct {
	svc       *service.Service
	verifier  *authtoken.Verifier
	whitelist *service.TypeWhitelist
	cfg       service.Config
}

// New builds a Dispatcher.
func New(svc *service.Service, verifier *authtoken.Verifier, whitelist *service.TypeWhitelist, cfg service.Config) *Dispatcher {
	return &Dispatcher{svc: svc, verifier: verifier, whitelist: whitelist, cfg: cfg}
}

// Result is what the HTTP front end needs to write a response.
type Result struct {
	HTTPStatus int
	Body       []byte
}

// Dispatch handles one JSON-RPC request body. rawToken is the bearer
// token extracted from the Authorization header, if any; it may be empty.
func (d *Dispatcher) Dispatch(ctx context.Context, rawToken string, body []byte) Result {
	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		return respond(500, errorResponse(nil, codeParseError, "invalid JSON: "+err.Error()))
	}
	if req.Method == "" {
		return respond(500, errorResponse(req.ID, codeInvalidRequest, "missing method"))
	}

	methodName := strings.TrimPrefix(req.Method, "Workspace.")
	if methodName == req.Method {
		return respond(500, errorResponse(req.ID, codeMethodNotFound, "unknown service: "+req.Method))
	}

	policy, known := policyFor(methodName)
	if !known {
		return respond(500, errorResponse(req.ID, codeMethodNotFound, "unknown method: "+req.Method))
	}

	if len(req.Params) < 1 {
		return respond(500, errorResponse(req.ID, codeInvalidParams, "missing params[0]"))
	}

	caller, rejected := d.resolveCaller(ctx, policy, rawToken)
	if rejected {
		return respond(403, errorResponse(req.ID, codeAuthRequired, "token required or invalid"))
	}
	caller.AdminMode = d.resolveAdminMode(req.Params[0], caller)

	result, err := d.invoke(ctx, methodName, caller, req.Params[0])
	if err != nil {
		rpcErr := wrapDomainErr(err)
		status := 500
		if rpcErr.Code == codeAuthRequired {
			status = 403
		}
		return respond(status, Response{JSONRPC: "2.0", ID: req.ID, Error: rpcErr})
	}
	return respond(200, resultResponse(req.ID, result))
}

// resolveCaller applies the method's token policy. rejected is true only
// for PolicyRequired when the token is missing or fails verification.
func (d *Dispatcher) resolveCaller(ctx context.Context, policy TokenPolicy, rawToken string) (service.Caller, bool) {
	if policy == PolicyNone || rawToken == "" {
		if policy == PolicyRequired {
			return service.Caller{}, true
		}
		return service.Caller{}, false
	}

	tok, err := authtoken.Parse(rawToken)
	if err == nil {
		err = d.verifier.Verify(ctx, tok)
	}
	if err != nil {
		logger.WarnCtx(ctx, "rpc: token rejected", logger.Err(err))
		if policy == PolicyRequired {
			return service.Caller{}, true
		}
		return service.Caller{}, false
	}
	return service.Caller{User: tok.User}, false
}

func (d *Dispatcher) resolveAdminMode(params json.RawMessage, caller service.Caller) bool {
	var probe struct {
		AdminMode bool `json:"adminmode"`
	}
	if err := json.Unmarshal(params, &probe); err != nil {
		return false
	}
	granted := d.cfg.ResolveAdminMode(caller.User, probe.AdminMode)
	if granted {
		logger.Info("rpc: admin elevation granted", logger.User(caller.User))
	}
	return granted
}

func respond(httpStatus int, resp Response) Result {
	body, err := json.Marshal(resp)
	if err != nil {
		return Result{HTTPStatus: 500, Body: []byte(`{"jsonrpc":"2.0","error":{"code":-32603,"message":"internal marshal error"}}`)}
	}
	return Result{HTTPStatus: httpStatus, Body: body}
}

// wrapDomainErr maps a wsdomain error into an envelope-level JSON-RPC
// error for the rare case a service method returns a whole-request
// failure (everything else is a per-object ObjectMeta error, per the
// local-failure policy).
func wrapDomainErr(err error) *Error {
	code, ok := wsdomain.CodeOf(err)
	if !ok {
		return &Error{Code: -32603, Message: err.Error()}
	}
	switch code {
	case wsdomain.ErrTokenInvalid:
		return &Error{Code: codeAuthRequired, Message: err.Error()}
	default:
		return &Error{Code: codeInvalidParams, Message: err.Error()}
	}
}
