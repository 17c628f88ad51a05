package easyHttp

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// Perform runs one transfer and returns its status code. Codes 200-299
// notify the success callback; anything else, including 0 for a transfer
// that got no response, notifies the failure callback. Transfer problems
// never surface as an error here: see LastError.
func (h *Handle) Perform(ctx context.Context) int {
	ctx, span := h.tracer.Start(ctx, "easy.perform")
	defer span.End()
	span.SetAttributes(
		attribute.String("handle_id", h.id),
		attribute.String("http.method", string(h.method)),
		attribute.String("http.url", h.url),
	)

	if err := h.rotateProxy(); err != nil {
		h.log.Error("can not set proxy from manager", zap.Error(err))
	}
	h.pushHeaders()

	err := h.engine.Perform(ctx)
	code := h.ResponseCode()
	h.state.err = err
	h.state.responseHeader = copyBytes(h.engine.ResponseHeader())
	h.state.responseBody = copyBytes(h.engine.ResponseBody())
	if err != nil {
		h.log.Error("transfer failed", zap.String("url", h.url), zap.Error(err))
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Int("http.status_code", code))

	if code >= 200 && code <= 299 {
		h.log.Debug("transfer succeeded", zap.Int("status", code))
		h.success()
	} else {
		span.SetStatus(codes.Error, fmt.Sprintf("status %d", code))
		h.log.Debug("transfer failed with status", zap.Int("status", code))
		h.failure()
	}
	return code
}

// pushHeaders hands the header mapping to the engine as "key: value"
// lines. Nothing is sent for an empty mapping.
func (h *Handle) pushHeaders() {
	if len(h.headers) == 0 {
		return
	}
	for key, value := range h.headers {
		h.engine.AddHeader(key + ": " + value)
	}
	h.engine.CommitHeaders()
}

func (h *Handle) rotateProxy() error {
	if h.proxyManager == nil || h.proxySet {
		return nil
	}
	proxy := h.proxyManager.GetProxy()
	if proxy == "" {
		return nil
	}
	return h.setOption(OptProxy, StringValue(proxy))
}

// OnSuccess registers the callback for 2xx responses, replacing any
// previous one.
func (h *Handle) OnSuccess(cb Callback) {
	h.onSuccess = cb
}

// OnFailure registers the callback for every other outcome, replacing
// any previous one.
func (h *Handle) OnFailure(cb Callback) {
	h.onFailure = cb
}

func (h *Handle) success() {
	if h.onSuccess != nil {
		h.onSuccess(h)
	}
}

func (h *Handle) failure() {
	if h.onFailure != nil {
		h.onFailure(h)
	}
}

// LastError returns why the last transfer got no response, if it did not.
func (h *Handle) LastError() error {
	return h.state.err
}

func (h *Handle) ResponseHeader() []byte {
	return h.state.responseHeader
}

func (h *Handle) ResponseBody() []byte {
	return h.state.responseBody
}

func copyBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	cb := make([]byte, len(b))
	copy(cb, b)
	return cb
}
