package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eazybus/booking-backend/internal/models"
)

// WalletRepository handles wallet and wallet transaction database operations
type WalletRepository struct {
	db *sqlx.DB
}

// NewWalletRepository creates a new WalletRepository
func NewWalletRepository(db *sqlx.DB) *WalletRepository {
	return &WalletRepository{db: db}
}

// ============================================================================
// WALLET OPERATIONS
// ============================================================================

// Create opens a wallet for a user with zero balance. The user_id unique
// constraint rejects a second wallet.
func (r *WalletRepository) Create(w *models.Wallet) error {
	w.ID = uuid.New().String()
	w.CreatedAt = time.Now()
	w.UpdatedAt = w.CreatedAt

	query := `
		INSERT INTO wallets (id, user_id, holder_name, pan, balance, created_at, updated_at)
		VALUES ($1, $2, $3, $4, 0, $5, $6)`

	_, err := r.db.Exec(query, w.ID, w.UserID, w.Holder, w.PAN, w.CreatedAt, w.UpdatedAt)
	return err
}

// GetByUser retrieves a user's wallet
func (r *WalletRepository) GetByUser(userID string) (*models.Wallet, error) {
	var w models.Wallet
	query := `
		SELECT id, user_id, holder_name, pan, balance, created_at, updated_at
		FROM wallets WHERE user_id = $1`

	err := r.db.Get(&w, query, userID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// Credit adds to the wallet balance as a single atomic increment
func (r *WalletRepository) Credit(walletID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	result, err := r.db.Exec(
		`UPDATE wallets SET balance = balance + $1, updated_at = NOW() WHERE id = $2`,
		amount, walletID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("wallet %s not found", walletID)
	}
	return nil
}

// Debit subtracts from the wallet balance, guarded so the balance can never
// go below zero. Concurrent debits race safely: the balance check and the
// decrement are one statement.
func (r *WalletRepository) Debit(walletID string, amount int64) error {
	if amount <= 0 {
		return fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	result, err := r.db.Exec(
		`UPDATE wallets SET balance = balance - $1, updated_at = NOW() WHERE id = $2 AND balance >= $1`,
		amount, walletID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInsufficientFunds
	}
	return nil
}

// ============================================================================
// WALLET TRANSACTION OPERATIONS
// ============================================================================

const walletTxColumns = `
	id, user_id, wallet_id, tx_ref, tx_type, tx_status, amount, narration,
	created_at, updated_at`

// CreateTransaction records one balance mutation attempt
func (r *WalletRepository) CreateTransaction(tx *models.WalletTransaction) error {
	tx.ID = uuid.New().String()
	tx.CreatedAt = time.Now()
	tx.UpdatedAt = tx.CreatedAt

	query := `
		INSERT INTO wallet_transactions (` + walletTxColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(query,
		tx.ID, tx.UserID, tx.WalletID, tx.TxRef, tx.Type, tx.Status,
		tx.Amount, tx.Narration, tx.CreatedAt, tx.UpdatedAt,
	)
	return err
}

// ListTransactionsByUser retrieves a user's transactions, newest first
func (r *WalletRepository) ListTransactionsByUser(userID string) ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	query := `SELECT ` + walletTxColumns + ` FROM wallet_transactions WHERE user_id = $1 ORDER BY created_at DESC`

	err := r.db.Select(&txs, query, userID)
	return txs, err
}

// ListInitiatedCredits retrieves credit transactions still waiting on their
// funding session. The reconciliation sweep polls these.
func (r *WalletRepository) ListInitiatedCredits() ([]models.WalletTransaction, error) {
	var txs []models.WalletTransaction
	query := `
		SELECT ` + walletTxColumns + `
		FROM wallet_transactions
		WHERE tx_type = $1 AND tx_status = $2`

	err := r.db.Select(&txs, query, models.WalletTxCredit, models.WalletTxInitiated)
	return txs, err
}

// SettleTransaction moves an initiated transaction to its terminal status.
// Keyed on the current status so replays cannot double-settle.
func (r *WalletRepository) SettleTransaction(id string, status models.WalletTxStatus) (bool, error) {
	query := `
		UPDATE wallet_transactions
		SET tx_status = $1, updated_at = NOW()
		WHERE id = $2 AND tx_status = $3`

	result, err := r.db.Exec(query, status, id, models.WalletTxInitiated)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// DeleteTransaction removes an abandoned initiated transaction
func (r *WalletRepository) DeleteTransaction(id string) error {
	_, err := r.db.Exec(
		`DELETE FROM wallet_transactions WHERE id = $1 AND tx_status = $2`,
		id, models.WalletTxInitiated,
	)
	return err
}
