package models

import (
	"time"
)

// Wallet is a user's stored-value account. Balance is whole rupees and is
// never allowed below zero; every mutation leaves a WalletTransaction row.
type Wallet struct {
	ID        string    `json:"id" db:"id"`
	UserID    string    `json:"user_id" db:"user_id"`
	Holder    string    `json:"holder_name" db:"holder_name"`
	PAN       string    `json:"pan" db:"pan"`
	Balance   int64     `json:"balance" db:"balance"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// WalletTxType distinguishes money entering the wallet from money leaving it
type WalletTxType string

const (
	WalletTxCredit WalletTxType = "credit"
	WalletTxDebit  WalletTxType = "debit"
)

// WalletTxStatus represents the settlement state of a wallet mutation
// Matches PostgreSQL ENUM: wallet_tx_status
type WalletTxStatus string

const (
	WalletTxInitiated WalletTxStatus = "initiated"
	WalletTxCompleted WalletTxStatus = "completed"
	WalletTxFailed    WalletTxStatus = "failed"
)

// WalletTransaction is the audit record of one balance mutation. Top-ups stay
// initiated until the funding session reports paid; the reconciliation sweep
// promotes or deletes them.
type WalletTransaction struct {
	ID        string         `json:"id" db:"id"`
	UserID    string         `json:"user_id" db:"user_id"`
	WalletID  string         `json:"wallet_id" db:"wallet_id"`
	TxRef     string         `json:"tx_ref" db:"tx_ref"` // funding session id or synthetic ewtr_ ref
	Type      WalletTxType   `json:"tx_type" db:"tx_type"`
	Status    WalletTxStatus `json:"tx_status" db:"tx_status"`
	Amount    int64          `json:"amount" db:"amount"`
	Narration string         `json:"narration" db:"narration"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

// ApplyWalletRequest opens a wallet for the authenticated user.
type ApplyWalletRequest struct {
	Holder string `json:"holder_name" binding:"required"`
	PAN    string `json:"pan" binding:"required,len=10"`
}

// TopUpRequest starts a hosted-checkout funding session for a wallet credit.
type TopUpRequest struct {
	Amount int64 `json:"amount" binding:"required,min=1"`
}
