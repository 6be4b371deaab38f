package postgres

import (
	"encoding/json"
	"fmt"

	"github.com/workgrid/contract-engine/internal/contracts"
	"github.com/workgrid/contract-engine/internal/domain"
)

func toContractModel(row domain.Contract) (contractModel, error) {
	terms, err := json.Marshal(row.Terms)
	if err != nil {
		return contractModel{}, fmt.Errorf("marshal terms: %w", err)
	}
	var escrowID *string
	if row.EscrowID != "" {
		escrowID = &row.EscrowID
	}
	return contractModel{
		ContractID:     row.ContractID,
		Type:           row.Type,
		Status:         row.Status,
		InitiatorID:    row.InitiatorID,
		CounterpartyID: row.CounterpartyID,
		Title:          row.Title,
		Description:    row.Description,
		Terms:          string(terms),
		EscrowID:       escrowID,
		SignedName:     row.SignedName,
		ExpiresAt:      row.ExpiresAt,
		CreatedAt:      row.CreatedAt,
		UpdatedAt:      row.UpdatedAt,
	}, nil
}

func fromContractModel(m contractModel) (domain.Contract, error) {
	var terms domain.Terms
	if m.Terms != "" {
		if err := json.Unmarshal([]byte(m.Terms), &terms); err != nil {
			return domain.Contract{}, fmt.Errorf("unmarshal terms: %w", err)
		}
	}
	escrowID := ""
	if m.EscrowID != nil {
		escrowID = *m.EscrowID
	}
	return domain.Contract{
		ContractID:     m.ContractID,
		Type:           m.Type,
		Status:         m.Status,
		InitiatorID:    m.InitiatorID,
		CounterpartyID: m.CounterpartyID,
		Title:          m.Title,
		Description:    m.Description,
		Terms:          terms,
		EscrowID:       escrowID,
		SignedName:     m.SignedName,
		ExpiresAt:      m.ExpiresAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}, nil
}

func toHoldModel(row domain.EscrowHold) escrowHoldModel {
	return escrowHoldModel{
		EscrowID:        row.EscrowID,
		ContractID:      row.ContractID,
		PayerID:         row.PayerID,
		PayeeID:         row.PayeeID,
		PayerWalletID:   row.PayerWalletID,
		PayeeWalletID:   row.PayeeWalletID,
		Currency:        row.Currency,
		OriginalAmount:  row.OriginalAmount,
		ReleasedAmount:  row.ReleasedAmount,
		RefundedAmount:  row.RefundedAmount,
		RemainingAmount: row.RemainingAmount,
		Status:          row.Status,
		HeldAt:          row.HeldAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func fromHoldModel(m escrowHoldModel) domain.EscrowHold {
	return domain.EscrowHold{
		EscrowID:        m.EscrowID,
		ContractID:      m.ContractID,
		PayerID:         m.PayerID,
		PayeeID:         m.PayeeID,
		PayerWalletID:   m.PayerWalletID,
		PayeeWalletID:   m.PayeeWalletID,
		Currency:        m.Currency,
		OriginalAmount:  m.OriginalAmount,
		ReleasedAmount:  m.ReleasedAmount,
		RefundedAmount:  m.RefundedAmount,
		RemainingAmount: m.RemainingAmount,
		Status:          m.Status,
		HeldAt:          m.HeldAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func fromWalletModel(m walletModel) domain.Wallet {
	return domain.Wallet{
		WalletID:  m.WalletID,
		OwnerID:   m.OwnerID,
		OwnerType: m.OwnerType,
		Currency:  m.Currency,
		Balance:   m.Balance,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toTransactionModel(txn domain.Transaction) transactionModel {
	var contractID *string
	if txn.ContractID != "" {
		contractID = &txn.ContractID
	}
	return transactionModel{
		TransactionID: txn.TransactionID,
		WalletID:      txn.WalletID,
		Type:          txn.Type,
		Amount:        txn.Amount,
		Status:        txn.Status,
		ContractID:    contractID,
		Detail:        txn.Detail,
		OccurredAt:    txn.OccurredAt,
	}
}

func fromTransactionModel(m transactionModel) domain.Transaction {
	contractID := ""
	if m.ContractID != nil {
		contractID = *m.ContractID
	}
	return domain.Transaction{
		TransactionID: m.TransactionID,
		WalletID:      m.WalletID,
		Type:          m.Type,
		Amount:        m.Amount,
		Status:        m.Status,
		ContractID:    contractID,
		Detail:        m.Detail,
		OccurredAt:    m.OccurredAt,
	}
}

func fromAuditModel(m auditEntryModel) domain.AuditEntry {
	return domain.AuditEntry{
		EntryID:    m.EntryID,
		ContractID: m.ContractID,
		ActorID:    m.ActorID,
		Action:     m.Action,
		Detail:     m.Detail,
		OccurredAt: m.OccurredAt,
	}
}

func marshalEnvelope(env contracts.EventEnvelope) (string, error) {
	b, err := json.Marshal(env)
	if err != nil {
		return "", fmt.Errorf("marshal envelope: %w", err)
	}
	return string(b), nil
}

func unmarshalEnvelope(raw string) (contracts.EventEnvelope, error) {
	var env contracts.EventEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return contracts.EventEnvelope{}, fmt.Errorf("unmarshal envelope: %w", err)
	}
	return env, nil
}
