// Package httpapi exposes the bridge operations as a REST surface. Input
// size bounds are enforced here so the service layer only ever sees
// well-formed values.
package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/R3E-Network/bridge_layer/internal/app/metrics"
	"github.com/R3E-Network/bridge_layer/internal/app/services/bridge"
	apperr "github.com/R3E-Network/bridge_layer/internal/errors"
	"github.com/R3E-Network/bridge_layer/internal/middleware"
	"github.com/R3E-Network/bridge_layer/pkg/logger"
)

const (
	maxRecipientLen    = 64
	maxChainIDLen      = 20
	maxExternalTxIDLen = 64
	maxEvidenceLen     = 256
	maxSignatures      = 10
)

type handler struct {
	bridge *bridge.Service
	log    *logger.Logger
	audit  *auditLog
}

// NewHandler returns a router exposing the bridge REST API. Privileged
// operations are recorded in an in-memory audit trail; auditPath, when
// non-empty, additionally appends entries to a JSONL file.
func NewHandler(svc *bridge.Service, log *logger.Logger, auditPath string) (http.Handler, error) {
	if log == nil {
		log = logger.NewDefault("httpapi")
	}
	sink, err := newFileAuditSink(auditPath)
	if err != nil {
		return nil, fmt.Errorf("open audit sink: %w", err)
	}
	h := &handler{bridge: svc, log: log, audit: newAuditLog(0, sink)}

	r := mux.NewRouter()
	r.HandleFunc("/health", h.health).Methods(http.MethodGet)
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/transfers", h.lock).Methods(http.MethodPost)
	r.HandleFunc("/transfers", h.listTransfers).Methods(http.MethodGet)
	r.HandleFunc("/transfers/{id:[0-9]+}", h.getTransfer).Methods(http.MethodGet)
	r.HandleFunc("/transfers/{id:[0-9]+}/execute", h.execute).Methods(http.MethodPost)
	r.HandleFunc("/transfers/{id:[0-9]+}/proofs", h.submitProof).Methods(http.MethodPost)
	r.HandleFunc("/proofs/{id:[0-9]+}", h.getProof).Methods(http.MethodGet)
	r.HandleFunc("/proofs/{id:[0-9]+}/resolve", h.resolveProof).Methods(http.MethodPost)

	r.HandleFunc("/claims", h.claim).Methods(http.MethodPost)
	r.HandleFunc("/claims/{external_tx_id}", h.getClaim).Methods(http.MethodGet)

	r.HandleFunc("/validators", h.addValidator).Methods(http.MethodPost)
	r.HandleFunc("/validators", h.listValidators).Methods(http.MethodGet)
	r.HandleFunc("/validators/{account}", h.removeValidator).Methods(http.MethodDelete)
	r.HandleFunc("/validators/{account}", h.isValidator).Methods(http.MethodGet)

	r.HandleFunc("/chains/{chain_id}", h.setChainConfig).Methods(http.MethodPut)
	r.HandleFunc("/threshold", h.setThreshold).Methods(http.MethodPut)
	r.HandleFunc("/paused", h.setPaused).Methods(http.MethodPut)

	r.HandleFunc("/withdrawals/emergency", h.emergencyWithdraw).Methods(http.MethodPost)
	r.HandleFunc("/stats", h.stats).Methods(http.MethodGet)
	r.HandleFunc("/fee", h.calculateFee).Methods(http.MethodGet)
	r.HandleFunc("/audit", h.listAudit).Methods(http.MethodGet)

	return r, nil
}

func (h *handler) recordAudit(r *http.Request, operation string, status int) {
	h.audit.add(auditEntry{
		Time:       time.Now().UTC(),
		Caller:     middleware.Caller(r.Context()),
		Operation:  operation,
		Path:       r.URL.Path,
		Method:     r.Method,
		Status:     status,
		RemoteAddr: r.RemoteAddr,
	})
}

func (h *handler) listAudit(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	writeJSON(w, http.StatusOK, h.audit.listLimit(limit))
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) lock(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Amount      uint64 `json:"amount"`
		Recipient   string `json:"recipient"`
		TargetChain string `json:"target_chain"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Recipient == "" || len(payload.Recipient) > maxRecipientLen {
		writeOpError(w, apperr.InvalidInput(fmt.Sprintf("recipient must be 1-%d characters", maxRecipientLen)))
		return
	}
	if payload.TargetChain == "" || len(payload.TargetChain) > maxChainIDLen {
		writeOpError(w, apperr.InvalidInput(fmt.Sprintf("target_chain must be 1-%d characters", maxChainIDLen)))
		return
	}

	res, err := h.bridge.Lock(r.Context(), middleware.Caller(r.Context()), payload.Amount, payload.Recipient, payload.TargetChain)
	metrics.RecordOperation("lock", err)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *handler) listTransfers(w http.ResponseWriter, r *http.Request) {
	sender := r.URL.Query().Get("sender")
	if sender == "" {
		writeOpError(w, apperr.InvalidInput("sender query parameter is required"))
		return
	}
	transfers, err := h.bridge.ListTransfersBySender(r.Context(), sender)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, transfers)
}

func (h *handler) getTransfer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	t, err := h.bridge.GetTransfer(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, t)
}

func (h *handler) execute(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	err = h.bridge.Execute(r.Context(), id)
	metrics.RecordOperation("execute", err)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"executed": true})
}

func (h *handler) submitProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var payload struct {
		Evidence string `json:"evidence"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(payload.Evidence) > maxEvidenceLen {
		writeOpError(w, apperr.InvalidInput(fmt.Sprintf("evidence exceeds %d characters", maxEvidenceLen)))
		return
	}

	proofID, err := h.bridge.SubmitFraudProof(r.Context(), middleware.Caller(r.Context()), id, payload.Evidence)
	metrics.RecordOperation("submit_fraud_proof", err)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"proof_id": proofID})
}

func (h *handler) resolveProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var payload struct {
		Valid bool `json:"valid"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err = h.bridge.ResolveFraudProof(r.Context(), middleware.Caller(r.Context()), id, payload.Valid)
	metrics.RecordOperation("resolve_fraud_proof", err)
	h.recordAudit(r, "resolve_fraud_proof", statusFor(err, http.StatusOK))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"resolved": true})
}

func (h *handler) getProof(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.bridge.GetFraudProof(r.Context(), id)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handler) claim(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		ExternalTxID string   `json:"external_tx_id"`
		Recipient    string   `json:"recipient"`
		Amount       uint64   `json:"amount"`
		SourceChain  string   `json:"source_chain"`
		Signatures   []string `json:"signatures"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.ExternalTxID == "" || len(payload.ExternalTxID) > maxExternalTxIDLen {
		writeOpError(w, apperr.InvalidInput(fmt.Sprintf("external_tx_id must be 1-%d characters", maxExternalTxIDLen)))
		return
	}
	if payload.Recipient == "" {
		writeOpError(w, apperr.InvalidInput("recipient is required"))
		return
	}
	if len(payload.Signatures) > maxSignatures {
		writeOpError(w, apperr.InvalidInput(fmt.Sprintf("at most %d signatures accepted", maxSignatures)))
		return
	}

	released, err := h.bridge.Claim(r.Context(), payload.ExternalTxID, payload.Recipient, payload.Amount, payload.SourceChain, payload.Signatures)
	metrics.RecordOperation("claim", err)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]uint64{"released": released})
}

func (h *handler) getClaim(w http.ResponseWriter, r *http.Request) {
	externalTxID := mux.Vars(r)["external_tx_id"]
	c, err := h.bridge.GetClaim(r.Context(), externalTxID)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *handler) addValidator(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Account string `json:"account"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if payload.Account == "" {
		writeOpError(w, apperr.InvalidInput("account is required"))
		return
	}

	err := h.bridge.AddValidator(r.Context(), middleware.Caller(r.Context()), payload.Account)
	metrics.RecordOperation("add_validator", err)
	h.recordAudit(r, "add_validator", statusFor(err, http.StatusCreated))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]bool{"added": true})
}

func (h *handler) removeValidator(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	err := h.bridge.RemoveValidator(r.Context(), middleware.Caller(r.Context()), account)
	metrics.RecordOperation("remove_validator", err)
	h.recordAudit(r, "remove_validator", statusFor(err, http.StatusOK))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": true})
}

func (h *handler) listValidators(w http.ResponseWriter, r *http.Request) {
	vals, err := h.bridge.ListValidators(r.Context())
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vals)
}

func (h *handler) isValidator(w http.ResponseWriter, r *http.Request) {
	account := mux.Vars(r)["account"]
	active, err := h.bridge.IsValidator(r.Context(), account)
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"account": account, "active": active})
}

func (h *handler) setChainConfig(w http.ResponseWriter, r *http.Request) {
	chainID := mux.Vars(r)["chain_id"]
	if len(chainID) > maxChainIDLen {
		writeOpError(w, apperr.InvalidInput(fmt.Sprintf("chain id exceeds %d characters", maxChainIDLen)))
		return
	}
	var payload struct {
		Enabled       bool   `json:"enabled"`
		FeeMultiplier uint64 `json:"fee_multiplier"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	err := h.bridge.SetChainConfig(r.Context(), middleware.Caller(r.Context()), chainID, payload.Enabled, payload.FeeMultiplier)
	metrics.RecordOperation("set_chain_config", err)
	h.recordAudit(r, "set_chain_config", statusFor(err, http.StatusOK))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": true})
}

func (h *handler) setThreshold(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Threshold uint64 `json:"threshold"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	applied, err := h.bridge.SetThreshold(r.Context(), middleware.Caller(r.Context()), payload.Threshold)
	metrics.RecordOperation("set_threshold", err)
	h.recordAudit(r, "set_threshold", statusFor(err, http.StatusOK))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"threshold": applied})
}

func (h *handler) setPaused(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Paused bool `json:"paused"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	applied, err := h.bridge.SetPaused(r.Context(), middleware.Caller(r.Context()), payload.Paused)
	metrics.RecordOperation("set_paused", err)
	h.recordAudit(r, "set_paused", statusFor(err, http.StatusOK))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"paused": applied})
}

func (h *handler) emergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	withdrawn, err := h.bridge.EmergencyWithdraw(r.Context(), middleware.Caller(r.Context()))
	metrics.RecordOperation("emergency_withdraw", err)
	h.recordAudit(r, "emergency_withdraw", statusFor(err, http.StatusOK))
	if err != nil {
		writeOpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]uint64{"withdrawn": withdrawn})
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.bridge.Stats(r.Context()))
}

func (h *handler) calculateFee(w http.ResponseWriter, r *http.Request) {
	amount, err := strconv.ParseUint(r.URL.Query().Get("amount"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid amount: %w", err))
		return
	}
	chainID := r.URL.Query().Get("chain")
	writeJSON(w, http.StatusOK, map[string]uint64{"fee": h.bridge.CalculateFee(r.Context(), amount, chainID)})
}

func statusFor(err error, success int) int {
	if err == nil {
		return success
	}
	return apperr.HTTPStatusOf(err)
}

func pathID(r *http.Request, name string) (uint64, error) {
	return strconv.ParseUint(mux.Vars(r)[name], 10, 64)
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}

func writeOpError(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(apperr.HTTPStatusOf(err))
	_ = json.NewEncoder(w).Encode(map[string]string{
		"error":   string(apperr.CodeOf(err)),
		"message": err.Error(),
	})
}
