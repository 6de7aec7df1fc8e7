package database

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/eazybus/booking-backend/internal/models"
)

// GiftCardRepository handles gift card database operations
type GiftCardRepository struct {
	db *sqlx.DB
}

// NewGiftCardRepository creates a new GiftCardRepository
func NewGiftCardRepository(db *sqlx.DB) *GiftCardRepository {
	return &GiftCardRepository{db: db}
}

const giftCardColumns = `
	id, code, purchaser_id, recipient_email, message, amount, pin_hash,
	session_ref, status, payment_status, redeemed_by, created_at, updated_at`

// Create inserts a new gift card in initiated payment state
func (r *GiftCardRepository) Create(g *models.GiftCard) error {
	g.ID = uuid.New().String()
	g.CreatedAt = time.Now()
	g.UpdatedAt = g.CreatedAt

	query := `
		INSERT INTO gift_cards (` + giftCardColumns + `
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.Exec(query,
		g.ID, g.Code, g.PurchaserID, g.RecipientMail, g.Message, g.Amount,
		g.PINHash, g.SessionRef, g.Status, g.PaymentStatus, g.RedeemedBy,
		g.CreatedAt, g.UpdatedAt,
	)
	return err
}

// GetByCode retrieves a gift card by its claim code
func (r *GiftCardRepository) GetByCode(code string) (*models.GiftCard, error) {
	var g models.GiftCard
	query := `SELECT ` + giftCardColumns + ` FROM gift_cards WHERE code = $1`

	err := r.db.Get(&g, query, code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// ListInitiatedPurchases retrieves cards still waiting on their funding
// session, for the reconciliation sweep.
func (r *GiftCardRepository) ListInitiatedPurchases() ([]models.GiftCard, error) {
	var cards []models.GiftCard
	query := `SELECT ` + giftCardColumns + ` FROM gift_cards WHERE payment_status = $1`

	err := r.db.Select(&cards, query, models.GiftCardPaymentInitiated)
	return cards, err
}

// MarkPaymentCompleted settles the purchase. Keyed on the current payment
// status so a replayed poll cannot re-trigger delivery.
func (r *GiftCardRepository) MarkPaymentCompleted(id string) (bool, error) {
	query := `
		UPDATE gift_cards
		SET payment_status = $1, updated_at = NOW()
		WHERE id = $2 AND payment_status = $3`

	result, err := r.db.Exec(query, models.GiftCardPaymentCompleted, id, models.GiftCardPaymentInitiated)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

// Delete removes an abandoned initiated purchase
func (r *GiftCardRepository) Delete(id string) error {
	_, err := r.db.Exec(
		`DELETE FROM gift_cards WHERE id = $1 AND payment_status = $2`,
		id, models.GiftCardPaymentInitiated,
	)
	return err
}

// Redeem claims an open, settled card for a user. Returns false when the card
// was already redeemed or its purchase never settled, making redemption
// race-safe under concurrent attempts.
func (r *GiftCardRepository) Redeem(id, userID string) (bool, error) {
	query := `
		UPDATE gift_cards
		SET status = $1, redeemed_by = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4 AND payment_status = $5`

	result, err := r.db.Exec(query,
		models.GiftCardRedeemed, userID, id, models.GiftCardOpen, models.GiftCardPaymentCompleted)
	if err != nil {
		return false, err
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}
