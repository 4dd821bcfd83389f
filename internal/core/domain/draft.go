package domain

import (
	"strings"
	"time"
)

type Step int

const (
	StepSelectServices Step = 1
	StepSchedule       Step = 2
	StepContact        Step = 3
	StepPayment        Step = 4
	StepDone           Step = 5
)

func (s Step) String() string {
	switch s {
	case StepSelectServices:
		return "SelectingServices"
	case StepSchedule:
		return "Scheduling"
	case StepContact:
		return "ContactDetails"
	case StepPayment:
		return "Payment"
	case StepDone:
		return "Completed"
	}
	return "Unknown"
}

// TimeSlots are the bookable hourly start times.
var TimeSlots = []string{
	"08:00 AM", "09:00 AM", "10:00 AM", "11:00 AM", "12:00 PM",
	"01:00 PM", "02:00 PM", "03:00 PM", "04:00 PM",
}

func ValidTimeSlot(slot string) bool {
	for _, s := range TimeSlots {
		if s == slot {
			return true
		}
	}
	return false
}

const MaxPhoneDigits = 10

// SanitizePhone keeps digits only, capped at MaxPhoneDigits.
func SanitizePhone(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if r < '0' || r > '9' {
			continue
		}
		if b.Len() == MaxPhoneDigits {
			break
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CapturedPayment is the gateway outcome kept on the draft so a re-submit
// after a storage failure never charges twice.
type CapturedPayment struct {
	Status        PaymentStatus `json:"status"`
	TransactionID string        `json:"transactionId,omitempty"`
}

// BookingDraft is the working state of one wizard session.
type BookingDraft struct {
	ID                string        `json:"id"`
	Step              Step          `json:"step"`
	Cart              Cart          `json:"cart"`
	SelectedServiceID string        `json:"selectedServiceId,omitempty"`
	Date              string        `json:"date"`
	Time              string        `json:"time"`
	CustomerName      string        `json:"customerName"`
	CustomerEmail     string        `json:"customerEmail"`
	CustomerPhone     string        `json:"customerPhone"`
	Address           string        `json:"address"`
	PaymentMethod     PaymentMethod `json:"paymentMethod"`

	Payment   *CapturedPayment `json:"payment,omitempty"`
	Pending   *Booking         `json:"pendingBooking,omitempty"`
	BookingID string           `json:"bookingId,omitempty"`
	LastError string           `json:"lastError,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

func NewBookingDraft(id string) *BookingDraft {
	return &BookingDraft{
		ID:            id,
		Step:          StepSelectServices,
		PaymentMethod: PaymentOnline,
	}
}

func (d *BookingDraft) Completed() bool {
	return d.Step == StepDone
}

// locked returns ErrDraftCompleted once the wizard has finished.
func (d *BookingDraft) locked() error {
	if d.Completed() {
		return ErrDraftCompleted
	}
	return nil
}

func (d *BookingDraft) SelectService(serviceID string) error {
	if err := d.locked(); err != nil {
		return err
	}
	d.SelectedServiceID = serviceID
	return nil
}

// AddItem adds a package of svc to the cart and clears the selected service
// so another one can be picked.
func (d *BookingDraft) AddItem(svc Service, pkgID string) (CartItem, error) {
	if err := d.editable(); err != nil {
		return CartItem{}, err
	}

	item, err := d.Cart.Add(svc, pkgID)
	if err != nil {
		return CartItem{}, err
	}
	d.SelectedServiceID = ""

	return item, nil
}

func (d *BookingDraft) RemoveItem(index int) (bool, error) {
	if err := d.editable(); err != nil {
		return false, err
	}
	return d.Cart.Remove(index), nil
}

// editable rejects changes to booking details once a payment was captured;
// the record assembled at that point is what gets stored.
func (d *BookingDraft) editable() error {
	if err := d.locked(); err != nil {
		return err
	}
	if d.Payment != nil {
		return ErrCartLocked
	}
	return nil
}

func (d *BookingDraft) SetSchedule(date, slot string) error {
	if err := d.editable(); err != nil {
		return err
	}
	d.Date = strings.TrimSpace(date)
	d.Time = slot
	return nil
}

func (d *BookingDraft) SetContact(name, email, phone, address string) error {
	if err := d.editable(); err != nil {
		return err
	}
	d.CustomerName = strings.TrimSpace(name)
	d.CustomerEmail = strings.TrimSpace(email)
	d.CustomerPhone = SanitizePhone(phone)
	d.Address = strings.TrimSpace(address)
	return nil
}

func (d *BookingDraft) SetPaymentMethod(m PaymentMethod) error {
	if err := d.locked(); err != nil {
		return err
	}
	if !m.Valid() {
		return newValidationError(StepPayment, "paymentMethod", "must be Online or Cash")
	}
	if d.Payment != nil && m != d.PaymentMethod {
		return ErrCartLocked
	}
	d.PaymentMethod = m
	return nil
}

// CheckStep returns the first unmet precondition for leaving the current
// step, or nil.
func (d *BookingDraft) CheckStep() error {
	return d.checkStep(d.Step)
}

func (d *BookingDraft) checkStep(step Step) error {
	switch step {
	case StepSelectServices:
		if d.Cart.IsEmpty() {
			return ErrEmptyCart
		}
	case StepSchedule:
		if d.Date == "" {
			return newValidationError(step, "date", "is required")
		}
		if !ValidTimeSlot(d.Time) {
			return newValidationError(step, "time", "must be one of the available slots")
		}
	case StepContact:
		if d.CustomerName == "" {
			return newValidationError(step, "customerName", "is required")
		}
		if d.CustomerPhone == "" {
			return newValidationError(step, "customerPhone", "is required")
		}
		if d.Address == "" {
			return newValidationError(step, "address", "is required")
		}
	case StepDone:
		return ErrDraftCompleted
	}
	return nil
}

// Continue moves to the next step when the current one is satisfied. The
// payment step only leaves through Submit.
func (d *BookingDraft) Continue() error {
	if err := d.CheckStep(); err != nil {
		return err
	}
	if d.Step >= StepPayment {
		return newValidationError(d.Step, "step", "use submit to finish the booking")
	}
	d.Step++
	return nil
}

// Back moves one step back without clearing anything already entered.
func (d *BookingDraft) Back() error {
	if err := d.locked(); err != nil {
		return err
	}
	if d.Step > StepSelectServices {
		d.Step--
	}
	return nil
}

// CheckSubmit validates the Payment -> Submit gate. Every earlier step gate
// is checked again, since fields stay editable after their step was left.
// The card number is only checked for presence.
func (d *BookingDraft) CheckSubmit(cardNumber string) error {
	if err := d.locked(); err != nil {
		return err
	}
	if d.Step != StepPayment {
		return newValidationError(d.Step, "step", "booking can only be submitted from the payment step")
	}
	for step := StepSelectServices; step < StepPayment; step++ {
		if err := d.checkStep(step); err != nil {
			return err
		}
	}
	if d.PaymentMethod == PaymentOnline && d.Payment == nil && strings.TrimSpace(cardNumber) == "" {
		return newValidationError(d.Step, "cardNumber", "is required for online payment")
	}
	return nil
}

// NewBooking assembles the durable record from the draft.
func (d *BookingDraft) NewBooking(id string, payment CapturedPayment, now time.Time) *Booking {
	return &Booking{
		ID:            id,
		Items:         d.Cart.Snapshot(),
		TotalAmount:   TotalWithTax(d.Cart.Total()),
		Date:          d.Date,
		Time:          d.Time,
		CustomerName:  d.CustomerName,
		CustomerEmail: d.CustomerEmail,
		CustomerPhone: d.CustomerPhone,
		Address:       d.Address,
		Status:        BookingPending,
		PaymentStatus: payment.Status,
		PaymentMethod: d.PaymentMethod,
		TransactionID: payment.TransactionID,
		CreatedAt:     now.UTC().Truncate(time.Millisecond),
	}
}

// Complete marks the wizard finished and exposes the booking id.
func (d *BookingDraft) Complete(bookingID string) {
	d.Step = StepDone
	d.BookingID = bookingID
	d.Pending = nil
	d.LastError = ""
}
