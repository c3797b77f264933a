package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/wsobjects/wsd/internal/logger"
	"github.com/wsobjects/wsd/pkg/metrics"
	"github.com/wsobjects/wsd/pkg/rpc"
)

const maxRequestBody = 64 << 20 // 64 MiB inline-upload ceiling

func newRPCHandler(dispatcher *rpc.Dispatcher, mtr *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody+1))
		if err != nil {
			http.Error(w, "failed to read request body", http.StatusInternalServerError)
			return
		}
		if len(body) > maxRequestBody {
			http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
			return
		}

		token := bearerToken(r.Header.Get("Authorization"))
		result := dispatcher.Dispatch(r.Context(), token, body)

		method := methodNameFor(body)
		if mtr != nil {
			mtr.ObserveRequest(method, result.HTTPStatus == http.StatusOK, time.Since(start).Seconds())
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(result.HTTPStatus)
		if _, err := w.Write(result.Body); err != nil {
			logger.WarnCtx(r.Context(), "http: failed writing rpc response", logger.Err(err))
		}
	}
}

func bearerToken(authHeader string) string {
	const prefix = "Bearer "
	if strings.HasPrefix(authHeader, prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}
	return strings.TrimSpace(authHeader)
}

// methodNameFor extracts the JSON-RPC method for metrics labeling without
// re-dispatching; a malformed body yields the "unknown" label.
func methodNameFor(body []byte) string {
	var probe struct {
		Method string `json:"method"`
	}
	if json.Unmarshal(body, &probe) != nil {
		return "unknown"
	}
	return strings.TrimPrefix(probe.Method, "Workspace.")
}
