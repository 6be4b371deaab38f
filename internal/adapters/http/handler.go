package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/workgrid/contract-engine/internal/application"
	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/domain"
	"github.com/workgrid/contract-engine/internal/ports"
)

type Handler struct {
	svc *application.Service
}

func NewHandler(svc *application.Service) *Handler {
	return &Handler{svc: svc}
}

func decode(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func (h *Handler) ProposeContract(w http.ResponseWriter, r *http.Request) {
	var req contracts.ProposeContractRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	contract, err := h.svc.Propose(r.Context(), actorFrom(r.Context()), application.ProposeInput{
		Type:           req.Type,
		CounterpartyID: req.CounterpartyID,
		Title:          req.Title,
		Description:    req.Description,
		Terms:          termsFromRequest(req.Terms),
		ExpiresAt:      req.ExpiresAt,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "contract proposed", contractResponse(contract))
}

func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	query := ports.ContractListQuery{
		Status: r.URL.Query().Get("status"),
		Type:   r.URL.Query().Get("type"),
		Limit:  queryInt(r, "limit", 20),
		Offset: queryInt(r, "offset", 0),
	}
	out, err := h.svc.ListContracts(r.Context(), actorFrom(r.Context()), query)
	if err != nil {
		writeError(w, r, err)
		return
	}
	items := make([]contracts.ContractResponse, 0, len(out.Items))
	for _, c := range out.Items {
		items = append(items, contractResponse(c))
	}
	writeSuccess(w, http.StatusOK, "", contracts.ContractListResponse{
		Items: items,
		Pagination: contracts.Pagination{
			Limit:  query.Limit,
			Offset: query.Offset,
			Total:  out.Total,
		},
	})
}

func (h *Handler) GetContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.svc.GetContract(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	payload := struct {
		contracts.ContractResponse
		Audit []contracts.AuditEntryResponse `json:"audit,omitempty"`
	}{
		ContractResponse: contractResponse(contract),
		Audit:            auditResponses(contract.Audit),
	}
	writeSuccess(w, http.StatusOK, "", payload)
}

func (h *Handler) SignContract(w http.ResponseWriter, r *http.Request) {
	var req contracts.SignContractRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	contract, err := h.svc.Sign(r.Context(), actorFrom(r.Context()), application.SignInput{
		ContractID: chi.URLParam(r, "contractID"),
		FullName:   req.FullName,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "contract signed", contractResponse(contract))
}

func (h *Handler) RejectContract(w http.ResponseWriter, r *http.Request) {
	var req contracts.RejectContractRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	contract, err := h.svc.Reject(r.Context(), actorFrom(r.Context()), application.RejectInput{
		ContractID: chi.URLParam(r, "contractID"),
		Reason:     req.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "contract rejected", contractResponse(contract))
}

func (h *Handler) CancelContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.svc.Cancel(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "contract cancelled", contractResponse(contract))
}

func (h *Handler) CompleteContract(w http.ResponseWriter, r *http.Request) {
	contract, err := h.svc.Complete(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "contract completed", contractResponse(contract))
}

func (h *Handler) TerminateContract(w http.ResponseWriter, r *http.Request) {
	var req contracts.TerminateContractRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	contract, err := h.svc.Terminate(r.Context(), actorFrom(r.Context()), application.TerminateInput{
		ContractID: chi.URLParam(r, "contractID"),
		Reason:     req.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "contract terminated", contractResponse(contract))
}

func (h *Handler) DisputeContract(w http.ResponseWriter, r *http.Request) {
	var req contracts.DisputeContractRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	contract, err := h.svc.Dispute(r.Context(), actorFrom(r.Context()), application.DisputeInput{
		ContractID: chi.URLParam(r, "contractID"),
		Reason:     req.Reason,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "contract disputed", contractResponse(contract))
}

func (h *Handler) SubmitMilestoneEvidence(w http.ResponseWriter, r *http.Request) {
	var req contracts.SubmitMilestoneEvidenceRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	contract, err := h.svc.SubmitMilestoneEvidence(r.Context(), actorFrom(r.Context()), application.MilestoneEvidenceInput{
		ContractID:  chi.URLParam(r, "contractID"),
		MilestoneID: chi.URLParam(r, "milestoneID"),
		Evidence:    req.Evidence,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "milestone evidence submitted", contractResponse(contract))
}

func (h *Handler) ApproveMilestone(w http.ResponseWriter, r *http.Request) {
	contract, err := h.svc.ApproveMilestone(r.Context(), actorFrom(r.Context()), application.ApproveMilestoneInput{
		ContractID:  chi.URLParam(r, "contractID"),
		MilestoneID: chi.URLParam(r, "milestoneID"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "milestone approved", contractResponse(contract))
}

func (h *Handler) GetEscrowHold(w http.ResponseWriter, r *http.Request) {
	hold, err := h.svc.GetEscrowHold(r.Context(), actorFrom(r.Context()), chi.URLParam(r, "contractID"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", holdResponse(hold))
}

func (h *Handler) GetWallet(w http.ResponseWriter, r *http.Request) {
	wallet, txns, err := h.svc.GetWallet(r.Context(), actorFrom(r.Context()),
		chi.URLParam(r, "ownerID"), chi.URLParam(r, "ownerType"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "", walletResponse(wallet, txns))
}

func (h *Handler) Deposit(w http.ResponseWriter, r *http.Request) {
	var req contracts.DepositRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	wallet, err := h.svc.Deposit(r.Context(), actorFrom(r.Context()), application.DepositInput{
		OwnerID:   chi.URLParam(r, "ownerID"),
		OwnerType: chi.URLParam(r, "ownerType"),
		Amount:    req.Amount,
		Currency:  req.Currency,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "deposit recorded", walletResponse(wallet, nil))
}

func (h *Handler) Withdraw(w http.ResponseWriter, r *http.Request) {
	var req contracts.WithdrawRequest
	if err := decode(r, &req); err != nil {
		writeBadRequest(w, r, "malformed request body")
		return
	}
	wallet, err := h.svc.Withdraw(r.Context(), actorFrom(r.Context()), application.WithdrawInput{
		OwnerID:   chi.URLParam(r, "ownerID"),
		OwnerType: chi.URLParam(r, "ownerType"),
		Amount:    req.Amount,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeSuccess(w, http.StatusOK, "withdrawal recorded", walletResponse(wallet, nil))
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func termsFromRequest(req contracts.TermsRequest) domain.Terms {
	milestones := make([]domain.Milestone, 0, len(req.Milestones))
	for _, m := range req.Milestones {
		milestones = append(milestones, domain.Milestone{
			MilestoneID: m.MilestoneID,
			Title:       m.Title,
			Amount:      m.Amount,
		})
	}
	return domain.Terms{
		Amount:      req.Amount,
		Currency:    req.Currency,
		ProjectID:   req.ProjectID,
		WorkspaceID: req.WorkspaceID,
		TaskID:      req.TaskID,
		AgencyID:    req.AgencyID,
		Role:        req.Role,
		Milestones:  milestones,
		StartsAt:    req.StartsAt,
		EndsAt:      req.EndsAt,
	}
}

func contractResponse(c domain.Contract) contracts.ContractResponse {
	milestones := make([]contracts.MilestoneResponse, 0, len(c.Terms.Milestones))
	for _, m := range c.Terms.Milestones {
		milestones = append(milestones, contracts.MilestoneResponse{
			MilestoneID: m.MilestoneID,
			Title:       m.Title,
			Amount:      m.Amount,
			Status:      m.Status,
			SubmittedAt: m.SubmittedAt,
			PaidAt:      m.PaidAt,
		})
	}
	return contracts.ContractResponse{
		ContractID:     c.ContractID,
		Type:           c.Type,
		Status:         c.Status,
		InitiatorID:    c.InitiatorID,
		CounterpartyID: c.CounterpartyID,
		Title:          c.Title,
		Description:    c.Description,
		Amount:         c.Terms.Amount,
		Currency:       c.Terms.Currency,
		EscrowID:       c.EscrowID,
		Milestones:     milestones,
		ExpiresAt:      c.ExpiresAt,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
	}
}

func auditResponses(entries []domain.AuditEntry) []contracts.AuditEntryResponse {
	out := make([]contracts.AuditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, contracts.AuditEntryResponse{
			ActorID:    e.ActorID,
			Action:     e.Action,
			Detail:     e.Detail,
			OccurredAt: e.OccurredAt,
		})
	}
	return out
}

func holdResponse(h domain.EscrowHold) contracts.HoldResponse {
	return contracts.HoldResponse{
		EscrowID:        h.EscrowID,
		ContractID:      h.ContractID,
		Status:          h.Status,
		Currency:        h.Currency,
		OriginalAmount:  h.OriginalAmount,
		RemainingAmount: h.RemainingAmount,
		ReleasedAmount:  h.ReleasedAmount,
		RefundedAmount:  h.RefundedAmount,
	}
}

func walletResponse(w domain.Wallet, txns []domain.Transaction) contracts.WalletResponse {
	out := contracts.WalletResponse{
		WalletID:  w.WalletID,
		OwnerID:   w.OwnerID,
		OwnerType: w.OwnerType,
		Currency:  w.Currency,
		Balance:   w.Balance,
	}
	for _, t := range txns {
		out.Transactions = append(out.Transactions, contracts.TransactionResponse{
			TransactionID: t.TransactionID,
			Type:          t.Type,
			Amount:        t.Amount,
			Status:        t.Status,
			ContractID:    t.ContractID,
			OccurredAt:    t.OccurredAt,
		})
	}
	return out
}
