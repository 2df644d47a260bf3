package domain

import (
	"encoding/json"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

func ParseBookingStatus(s string) (BookingStatus, bool) {
	switch BookingStatus(s) {
	case BookingPending, BookingConfirmed, BookingCompleted, BookingCancelled:
		return BookingStatus(s), true
	default:
		return "", false
	}
}

type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentRefunded PaymentStatus = "refunded"
)

func ParsePaymentStatus(s string) (PaymentStatus, bool) {
	switch PaymentStatus(s) {
	case PaymentPending, PaymentPaid, PaymentRefunded:
		return PaymentStatus(s), true
	default:
		return "", false
	}
}

type BookingType string

const (
	BookingCostume BookingType = "costume"
	BookingPackage BookingType = "package"
	BookingBoth    BookingType = "both"
)

func ParseBookingType(s string) (BookingType, bool) {
	switch BookingType(s) {
	case BookingCostume, BookingPackage, BookingBoth:
		return BookingType(s), true
	default:
		return "", false
	}
}

type Booking struct {
	ID     int64
	UserID int64

	BookingType BookingType

	EventDate     time.Time // date only
	EventTime     string
	EventLocation string
	EventAddress  string
	NumChildren   *int

	CostumeID *int64
	PackageID *int64

	SpecialRequests string
	TotalPrice      float64

	Status        BookingStatus
	PaymentStatus PaymentStatus

	CreatedAt time.Time
	UpdatedAt time.Time
}

// BookingCreateReq is the create payload. The date arrives as a string and
// the ids as json.Number, which accepts both numeric and quoted ids, so
// malformed values fail validation instead of being dropped by the decoder.
type BookingCreateReq struct {
	BookingType     string      `json:"booking_type"`
	EventDate       string      `json:"event_date"`
	EventTime       string      `json:"event_time"`
	EventLocation   string      `json:"event_location"`
	EventAddress    string      `json:"event_address"`
	NumChildren     *int        `json:"num_children"`
	CostumeID       json.Number `json:"costume_id"`
	PackageID       json.Number `json:"package_id"`
	SpecialRequests string      `json:"special_requests"`
	TotalPrice      *float64    `json:"total_price"`
}

type BookingPatch struct {
	EventDate       *string  `json:"event_date"`
	EventTime       *string  `json:"event_time"`
	EventLocation   *string  `json:"event_location"`
	EventAddress    *string  `json:"event_address"`
	NumChildren     *int     `json:"num_children"`
	SpecialRequests *string  `json:"special_requests"`
	TotalPrice      *float64 `json:"total_price"`
	Status          *string  `json:"status"`
	PaymentStatus   *string  `json:"payment_status"`
}

type BookingDTO struct {
	ID              int64             `json:"id"`
	UserID          int64             `json:"user_id"`
	UserName        string            `json:"user_name,omitempty"`
	UserEmail       string            `json:"user_email,omitempty"`
	BookingType     string            `json:"booking_type"`
	EventDate       string            `json:"event_date"`
	EventTime       string            `json:"event_time,omitempty"`
	EventLocation   string            `json:"event_location,omitempty"`
	EventAddress    string            `json:"event_address,omitempty"`
	NumChildren     *int              `json:"num_children,omitempty"`
	Costume         *Costume          `json:"costume,omitempty"`
	Package         *AnimationPackage `json:"package,omitempty"`
	SpecialRequests string            `json:"special_requests,omitempty"`
	TotalPrice      float64           `json:"total_price"`
	Status          string            `json:"status"`
	PaymentStatus   string            `json:"payment_status"`
	CreatedAt       time.Time         `json:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at"`
}

const DateLayout = "2006-01-02"

func (b *Booking) DTO(owner *User, costume *Costume, pkg *AnimationPackage) BookingDTO {
	dto := BookingDTO{
		ID:              b.ID,
		UserID:          b.UserID,
		BookingType:     string(b.BookingType),
		EventDate:       b.EventDate.Format(DateLayout),
		EventTime:       b.EventTime,
		EventLocation:   b.EventLocation,
		EventAddress:    b.EventAddress,
		NumChildren:     b.NumChildren,
		Costume:         costume,
		Package:         pkg,
		SpecialRequests: b.SpecialRequests,
		TotalPrice:      b.TotalPrice,
		Status:          string(b.Status),
		PaymentStatus:   string(b.PaymentStatus),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if owner != nil {
		dto.UserName = owner.Name
		dto.UserEmail = owner.Email
	}
	return dto
}
