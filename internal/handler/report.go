package handler

import (
	"crypto/hmac"
	"crypto/sha256"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/buanay/pos/internal/domain/report"
)

const triggerHeader = "X-Trigger-Secret"

// GetRevenueReport computes the revenue report for the bucket containing
// now. Admin only.
func (h *Handler) GetRevenueReport(w http.ResponseWriter, r *http.Request) {
	rep, ok := h.computeReport(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// DispatchReport computes the current revenue report and hands it to the
// notification pipeline. The caller is an external scheduler, not a
// logged-in user, so the route is guarded by a shared secret instead of
// a bearer token.
func (h *Handler) DispatchReport(w http.ResponseWriter, r *http.Request) {
	if !h.validTriggerSecret(r.Header.Get(triggerHeader)) {
		writeError(w, http.StatusUnauthorized, "invalid trigger secret")
		return
	}

	rep, ok := h.computeReport(w, r)
	if !ok {
		return
	}

	h.dispatcher.ReportReady(rep)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "dispatched"})
}

func (h *Handler) computeReport(w http.ResponseWriter, r *http.Request) (*report.Report, bool) {
	period := report.Period(r.URL.Query().Get("period"))
	if period == "" {
		period = report.PeriodDay
	}

	rep, err := h.reports.Report(r.Context(), period, time.Now())
	if err != nil {
		if errors.Is(err, report.ErrUnknownPeriod) {
			writeError(w, http.StatusBadRequest, "period must be day, week, or month")
			return nil, false
		}
		zctx.From(r.Context()).Error("compute revenue report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to compute report")
		return nil, false
	}
	return rep, true
}

// validTriggerSecret compares the presented secret against the
// configured one. Both sides are hashed first so the comparison stays
// constant time regardless of length.
func (h *Handler) validTriggerSecret(presented string) bool {
	if len(h.triggerSecret) == 0 || presented == "" {
		return false
	}
	want := sha256.Sum256(h.triggerSecret)
	got := sha256.Sum256([]byte(presented))
	return hmac.Equal(want[:], got[:])
}
