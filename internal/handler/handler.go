// Package handler exposes the coupon service over HTTP with hand-written
// routes and jx JSON codecs.
package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
)

// maxBodyBytes caps request body size; coupon payloads are small.
const maxBodyBytes = 1 << 20

// Handler serves the coupon API. It holds no business logic: creation
// validation lives on the domain types and evaluation inside the picker.
type Handler struct {
	catalog coupon.Catalog
	picker  *coupon.Picker
}

// New constructs a Handler over the given catalog and picker.
func New(catalog coupon.Catalog, picker *coupon.Picker) *Handler {
	return &Handler{catalog: catalog, picker: picker}
}

// Register mounts all API routes on the mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/coupons", h.createCoupon)
	mux.HandleFunc("GET /api/coupons", h.listCoupons)
	mux.HandleFunc("GET /api/coupons/{code}", h.getCoupon)
	mux.HandleFunc("POST /api/best-coupon", h.findBestCoupon)
}

// readBody drains the request body up to maxBodyBytes and returns a decoder
// over it.
func readBody(w http.ResponseWriter, r *http.Request) (*jx.Decoder, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	return jx.DecodeBytes(data), nil
}

// writeJSON writes the encoder's buffer with the given status.
func writeJSON(w http.ResponseWriter, status int, e *jx.Encoder) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes a {code, message} error body.
func writeError(w http.ResponseWriter, status int, message string) {
	var e jx.Encoder
	e.Obj(func(e *jx.Encoder) {
		e.Field("code", func(e *jx.Encoder) { e.Int(status) })
		e.Field("message", func(e *jx.Encoder) { e.Str(message) })
	})
	writeJSON(w, status, &e)
}

// writeInternalError logs the error with the request-scoped logger and
// responds 500 without leaking details.
func writeInternalError(w http.ResponseWriter, r *http.Request, err error) {
	zctx.From(r.Context()).Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal error")
}
