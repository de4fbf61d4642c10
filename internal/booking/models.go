package booking

import (
	"time"
)

// Variant identifies which booking domain a booking belongs to
type Variant string

const (
	VariantHotel   Variant = "hotel"
	VariantEvent   Variant = "event"
	VariantSession Variant = "session"
	VariantItem    Variant = "item"
)

// Variants lists every supported booking variant
var Variants = []Variant{VariantHotel, VariantEvent, VariantSession, VariantItem}

// Booking is implemented by the four booking variants
type Booking interface {
	Variant() Variant
	Common() *Base
}

// User represents a platform account referenced by a booking
type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	PushToken string `json:"push_token,omitempty"`
}

// Base holds the attributes shared by every booking variant
type Base struct {
	ID            string    `json:"id"`
	User          *User     `json:"user" validate:"required"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"payment_status"`
	CreatedAt     time.Time `json:"created_at"`
}

// Common returns the shared booking attributes
func (b *Base) Common() *Base {
	return b
}

// Hotel represents a hotel listing
type Hotel struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Owner   *User  `json:"owner,omitempty"`
}

// HotelBooking represents a hotel stay
type HotelBooking struct {
	Base
	Hotel           *Hotel    `json:"hotel" validate:"required"`
	CheckIn         time.Time `json:"check_in"`
	CheckOut        time.Time `json:"check_out"`
	Rooms           int       `json:"rooms"`
	Guests          int       `json:"guests"`
	SpecialRequests string    `json:"special_requests,omitempty"`
}

// Variant returns VariantHotel
func (b *HotelBooking) Variant() Variant { return VariantHotel }

// Event represents a scheduled event
type Event struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Date      time.Time `json:"date"`
	StartTime string    `json:"start_time,omitempty"`
	EndTime   string    `json:"end_time,omitempty"`
	Location  string    `json:"location,omitempty"`
	City      string    `json:"city,omitempty"`
	Country   string    `json:"country,omitempty"`
}

// EventBooking represents a reservation for an event
type EventBooking struct {
	Base
	Event        *Event `json:"event" validate:"required"`
	Participants int    `json:"participants"`
	ContactEmail string `json:"contact_email,omitempty"`
	ContactPhone string `json:"contact_phone,omitempty"`
	Instructors  []User `json:"instructors,omitempty"`
}

// Variant returns VariantEvent
func (b *EventBooking) Variant() Variant { return VariantEvent }

// Session represents a guided adventure session
type Session struct {
	ID            string    `json:"id"`
	AdventureName string    `json:"adventure_name"`
	StartTime     time.Time `json:"start_time"`
	ExpiresAt     time.Time `json:"expires_at"`
	Location      string    `json:"location,omitempty"`
	Instructor    *User     `json:"instructor,omitempty"`
}

// GroupMember is a companion travelling with the booking user
type GroupMember struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// SessionBooking represents a reservation for an adventure session
type SessionBooking struct {
	Base
	Session      *Session      `json:"session" validate:"required"`
	GroupMembers []GroupMember `json:"group_members,omitempty"`
}

// Variant returns VariantSession
func (b *SessionBooking) Variant() Variant { return VariantSession }

// Item represents a product that can be bought or rented
type Item struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Owner *User   `json:"owner,omitempty"`
}

// LineItem is a single entry of an item order
type LineItem struct {
	Item        *Item      `json:"item"`
	Quantity    int        `json:"quantity"`
	Rental      bool       `json:"rental"`
	RentalStart *time.Time `json:"rental_start,omitempty"`
	RentalEnd   *time.Time `json:"rental_end,omitempty"`
}

// ItemBooking represents an order of purchased or rented items
type ItemBooking struct {
	Base
	Items []LineItem `json:"items"`
}

// Variant returns VariantItem
func (b *ItemBooking) Variant() Variant { return VariantItem }
