package models

import (
	"time"
)

// GiftCardStatus represents redemption state
// Matches PostgreSQL ENUM: gift_card_status
type GiftCardStatus string

const (
	GiftCardOpen     GiftCardStatus = "open"
	GiftCardRedeemed GiftCardStatus = "redeemed"
)

// GiftCardPaymentStatus tracks whether the purchase settled
type GiftCardPaymentStatus string

const (
	GiftCardPaymentInitiated GiftCardPaymentStatus = "initiated"
	GiftCardPaymentCompleted GiftCardPaymentStatus = "completed"
)

// GiftCard is a prepaid voucher purchased by one user and redeemable into any
// user's wallet. The PIN is stored as a bcrypt hash; the clear PIN exists only
// in the delivery email.
type GiftCard struct {
	ID            string                `json:"id" db:"id"`
	Code          string                `json:"code" db:"code"` // caller-visible, unique
	PurchaserID   string                `json:"purchaser_id" db:"purchaser_id"`
	RecipientMail string                `json:"recipient_email" db:"recipient_email"`
	Message       string                `json:"message" db:"message"`
	Amount        int64                 `json:"amount" db:"amount"`
	PINHash       string                `json:"-" db:"pin_hash"`
	SessionRef    string                `json:"session_ref" db:"session_ref"` // funding session id
	Status        GiftCardStatus        `json:"status" db:"status"`
	PaymentStatus GiftCardPaymentStatus `json:"payment_status" db:"payment_status"`
	RedeemedBy    string                `json:"redeemed_by" db:"redeemed_by"` // user id, empty while open
	CreatedAt     time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time             `json:"updated_at" db:"updated_at"`
}

// Redeemable reports whether the card can still be claimed: purchase settled
// and not yet redeemed.
func (g *GiftCard) Redeemable() bool {
	return g.Status == GiftCardOpen && g.PaymentStatus == GiftCardPaymentCompleted
}

// PurchaseGiftCardRequest starts a gift card purchase via hosted checkout.
type PurchaseGiftCardRequest struct {
	RecipientMail string `json:"recipient_email" binding:"required,email"`
	Message       string `json:"message"`
	Amount        int64  `json:"amount" binding:"required,min=1"`
}

// RedeemGiftCardRequest claims a card into the authenticated user's wallet.
type RedeemGiftCardRequest struct {
	Code string `json:"code" binding:"required"`
	PIN  string `json:"pin" binding:"required,len=6"`
}
