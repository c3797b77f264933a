package rpc

import (
	"context"
	"encoding/json"

	"github.com/wsobjects/wsd/pkg/service"
	"github.com/wsobjects/wsd/pkg/wsdomain"
)

// invoke unmarshals rawParams into the method's param type and calls the
// matching service method. Any error here is an envelope-level failure
// (malformed params, or a whole-request domain error); per-object
// failures are already folded into the result by the service layer.
func (d *Dispatcher) invoke(ctx context.Context, method string, caller service.Caller, rawParams json.RawMessage) (any, error) {
	switch method {
	case "ls":
		var p service.LsParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.Ls(ctx, caller, p)

	case "get":
		var p service.GetParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.Get(ctx, caller, p)

	case "create":
		var p service.CreateParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.Create(ctx, caller, d.whitelist, p)

	case "delete":
		var p service.DeleteParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.Delete(ctx, caller, p)

	case "copy":
		var p service.CopyParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.Copy(ctx, caller, p)

	case "list_permissions":
		var p service.ListPermissionsParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.ListPermissions(ctx, caller, p)

	case "set_permissions":
		var p service.SetPermissionsParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.SetPermissions(ctx, caller, p)

	case "get_download_url":
		var p service.GetDownloadURLParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.GetDownloadURL(ctx, caller, p)

	case "update_metadata":
		var p service.UpdateMetadataParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.UpdateMetadata(ctx, caller, d.whitelist, p)

	case "update_auto_meta":
		var p service.UpdateAutoMetaParams
		if err := json.Unmarshal(rawParams, &p); err != nil {
			return nil, badParams(err)
		}
		return d.svc.UpdateAutoMeta(ctx, caller, p)

	default:
		return nil, wsdomain.InvalidArgument("unhandled method: " + method)
	}
}

func badParams(err error) error {
	return wsdomain.InvalidArgument("malformed params: " + err.Error())
}
