package notification

import (
	"fmt"

	"github.com/alexnthnz/booking-notifications/internal/booking"
)

// RenderChatMessage renders the automated message a provider sends to the
// customer, ending with a link to the chat thread with targetUserID.
func (r *Renderer) RenderChatMessage(b booking.Booking, role Role, targetUserID string) string {
	customer := "there"
	if u := b.Common().User; u != nil && u.Name != "" {
		customer = u.Name
	}

	var text string
	switch bk := b.(type) {
	case *booking.SessionBooking:
		text = fmt.Sprintf("Hi %s! Your session for %s on %s at %s is confirmed.",
			customer, bk.Session.AdventureName, r.locale.date(bk.Session.StartTime), r.locale.clock(bk.Session.StartTime))
	case *booking.HotelBooking:
		text = fmt.Sprintf("Hi %s! Your stay at %s from %s to %s is confirmed.",
			customer, bk.Hotel.Name, r.locale.date(bk.CheckIn), r.locale.date(bk.CheckOut))
	case *booking.EventBooking:
		text = fmt.Sprintf("Hi %s! Your place at %s on %s is confirmed.",
			customer, bk.Event.Title, r.locale.date(bk.Event.Date))
	default:
		text = fmt.Sprintf("Hi %s! Your booking is confirmed.", customer)
	}

	name := counterpartyName(b, role, targetUserID)
	if name == "" {
		name = "your instructor"
	}
	return fmt.Sprintf("%s If you have any questions, chat with %s here: /chat?chat=%s", text, name, targetUserID)
}

// counterpartyName finds the display name of the provider with the given id
func counterpartyName(b booking.Booking, role Role, userID string) string {
	switch bk := b.(type) {
	case *booking.HotelBooking:
		if role == RoleHotelOwner && bk.Hotel.Owner != nil && bk.Hotel.Owner.ID == userID {
			return bk.Hotel.Owner.Name
		}
	case *booking.SessionBooking:
		if role == RoleInstructor && bk.Session.Instructor != nil && bk.Session.Instructor.ID == userID {
			return bk.Session.Instructor.Name
		}
	case *booking.EventBooking:
		if role == RoleInstructor {
			for _, i := range bk.Instructors {
				if i.ID == userID {
					return i.Name
				}
			}
		}
	case *booking.ItemBooking:
		if role == RoleItemOwner {
			for _, line := range bk.Items {
				if line.Item != nil && line.Item.Owner != nil && line.Item.Owner.ID == userID {
					return line.Item.Owner.Name
				}
			}
		}
	}
	return ""
}

// RenderTextSummary renders the one-line confirmation mirrored to SMS and push
func (r *Renderer) RenderTextSummary(b booking.Booking) string {
	symbol := r.locale.CurrencySymbol
	if b.Variant() == booking.VariantItem {
		symbol = r.locale.ItemCurrencySymbol
	}
	base := b.Common()
	return fmt.Sprintf("Your %s booking %s is confirmed. Total: %s.", b.Variant(), base.ID, money(symbol, base.Amount))
}
