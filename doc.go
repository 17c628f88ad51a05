// Package easyHttp is a reusable single-request HTTP handle. A Handle
// turns a request description into option directives for an Engine,
// performs one transfer, classifies the status and notifies a success or
// failure callback.
//
// The handle never retries by itself. Callers write the loop:
//
//	h, _ := easyHttp.New(log, &easyHttp.Config{MaxRetries: 3})
//	_ = h.SetURL("http://example.com/")
//	h.OnFailure(func(h *easyHttp.Handle) {
//		if h.TimedOut() {
//			log.Warn("timed out", zap.Int("retry", h.Retries()))
//		}
//	})
//	for code := h.Perform(ctx); code < 200 || code > 299; code = h.Perform(ctx) {
//		if h.MaxRetriesReached() {
//			break
//		}
//		h.IncrementRetries()
//	}
//
// Reset clears the retry count together with the last response.
package easyHttp
