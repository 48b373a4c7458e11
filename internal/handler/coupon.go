package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"github.com/xenking/coupon-engine/internal/domain/coupon"
)

// createCoupon handles POST /api/coupons. The code is normalized before
// insertion; a duplicate normalized code is rejected with 409 and the
// catalog is left unchanged.
func (h *Handler) createCoupon(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	c, err := decodeCoupon(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	c.Normalize()
	if err := c.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.catalog.Insert(r.Context(), &c); err != nil {
		if errors.Is(err, coupon.ErrDuplicateCode) {
			writeError(w, http.StatusConflict, "coupon code already exists")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCoupon(&e, &c)
	writeJSON(w, http.StatusCreated, &e)
}

// getCoupon handles GET /api/coupons/{code}. Lookup folds the code, so any
// casing of an existing code resolves.
func (h *Handler) getCoupon(w http.ResponseWriter, r *http.Request) {
	c, err := h.catalog.GetByCode(r.Context(), r.PathValue("code"))
	if err != nil {
		if errors.Is(err, coupon.ErrNotFound) {
			writeError(w, http.StatusNotFound, "coupon not found")
			return
		}
		writeInternalError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeCoupon(&e, c)
	writeJSON(w, http.StatusOK, &e)
}

// listCoupons handles GET /api/coupons and returns the full catalog snapshot.
func (h *Handler) listCoupons(w http.ResponseWriter, r *http.Request) {
	coupons, err := h.catalog.ListAll(r.Context())
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for i := range coupons {
			encodeCoupon(e, &coupons[i])
		}
	})
	writeJSON(w, http.StatusOK, &e)
}

// findBestCoupon handles POST /api/best-coupon. A request that yields no
// eligible coupon returns a null coupon with a zero discount and mutates no
// usage counter.
func (h *Handler) findBestCoupon(w http.ResponseWriter, r *http.Request) {
	d, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "unable to read request body")
		return
	}

	req, err := decodeBestCouponRequest(d)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.picker.FindBest(r.Context(), req.User, req.Cart)
	if err != nil {
		writeInternalError(w, r, err)
		return
	}

	var e jx.Encoder
	encodeBestCouponResponse(&e, res)
	writeJSON(w, http.StatusOK, &e)
}
