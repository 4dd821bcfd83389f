package domain

import (
	"errors"
	"math"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCompleted BookingStatus = "Completed"
	BookingCancelled BookingStatus = "Cancelled"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentFailed  PaymentStatus = "Failed"
)

type PaymentMethod string

const (
	PaymentOnline PaymentMethod = "Online"
	PaymentCash   PaymentMethod = "Cash"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentOnline || m == PaymentCash
}

// TaxMultiplier is applied to the cart subtotal to get the booking total.
const TaxMultiplier = 1.05

type Booking struct {
	ID            string        `json:"id" firestore:"id"`
	Items         []CartItem    `json:"items" firestore:"items"`
	TotalAmount   float64       `json:"totalAmount" firestore:"totalAmount"`
	Date          string        `json:"date" firestore:"date"`
	Time          string        `json:"time" firestore:"time"`
	CustomerName  string        `json:"customerName" firestore:"customerName"`
	CustomerEmail string        `json:"customerEmail" firestore:"customerEmail"`
	CustomerPhone string        `json:"customerPhone" firestore:"customerPhone"`
	Address       string        `json:"address" firestore:"address"`
	Status        BookingStatus `json:"status" firestore:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus" firestore:"paymentStatus"`
	PaymentMethod PaymentMethod `json:"paymentMethod" firestore:"paymentMethod"`
	TransactionID string        `json:"transactionId,omitempty" firestore:"transactionId,omitempty"`
	CreatedAt     time.Time     `json:"createdAt" firestore:"createdAt"`

	// Older records carried a single flat price instead of items.
	LegacyPrice float64 `json:"price,omitempty" firestore:"price,omitempty"`
}

// TotalWithTax rounds subtotal * TaxMultiplier to cents.
func TotalWithTax(subtotal float64) float64 {
	return math.Round(subtotal*TaxMultiplier*100) / 100
}

const amountTolerance = 0.01

// Validate checks the creation invariants of a booking record.
func (b *Booking) Validate() error {
	if b.ID == "" {
		return errors.New("booking id is required")
	}
	if len(b.Items) == 0 {
		return ErrEmptyCart
	}
	var subtotal float64
	for _, item := range b.Items {
		subtotal += item.Price
	}
	if math.Abs(b.TotalAmount-subtotal*TaxMultiplier) > amountTolerance {
		return errors.New("total amount does not match items")
	}
	if !b.Status.Valid() {
		return ErrInvalidStatus
	}
	return nil
}

// Amount is the revenue value of the booking, falling back to the legacy
// flat price for records written before items existed.
func (b Booking) Amount() float64 {
	if b.TotalAmount != 0 {
		return b.TotalAmount
	}
	return b.LegacyPrice
}

// BookingStats is the aggregate shown on the admin dashboard.
type BookingStats struct {
	Revenue   float64 `json:"revenue"`
	Pending   int     `json:"pending"`
	Completed int     `json:"completed"`
	Total     int     `json:"total"`
}

func Aggregate(bookings []Booking) BookingStats {
	stats := BookingStats{Total: len(bookings)}
	for _, b := range bookings {
		if b.Status != BookingCancelled {
			stats.Revenue += b.Amount()
		}
		switch b.Status {
		case BookingPending:
			stats.Pending++
		case BookingCompleted:
			stats.Completed++
		}
	}
	stats.Revenue = math.Round(stats.Revenue*100) / 100
	return stats
}
