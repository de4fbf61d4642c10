package notification

import (
	"github.com/alexnthnz/booking-notifications/internal/booking"
)

// ResolveRecipients returns the parties to notify for a populated booking.
// The customer always comes first; owners and instructors follow in the order
// they are first encountered. Missing optional contacts are omitted.
func ResolveRecipients(b booking.Booking) ([]Recipient, error) {
	if err := booking.Validate(b); err != nil {
		return nil, err
	}

	user := b.Common().User
	recipients := []Recipient{{
		Role:     RoleCustomer,
		Variant:  b.Variant(),
		Contacts: []Contact{contactOf(user)},
	}}

	switch bk := b.(type) {
	case *booking.HotelBooking:
		if owner := bk.Hotel.Owner; owner != nil && owner.Email != "" {
			recipients = append(recipients, Recipient{
				Role:     RoleHotelOwner,
				Variant:  booking.VariantHotel,
				Contacts: []Contact{contactOf(owner)},
			})
		}

	case *booking.EventBooking:
		seen := make(map[string]bool)
		var contacts []Contact
		for i := range bk.Instructors {
			instructor := &bk.Instructors[i]
			if instructor.Email == "" || seen[instructor.Email] {
				continue
			}
			seen[instructor.Email] = true
			contacts = append(contacts, contactOf(instructor))
		}
		if len(contacts) > 0 {
			recipients = append(recipients, Recipient{
				Role:     RoleInstructor,
				Variant:  booking.VariantEvent,
				Contacts: contacts,
			})
		}

	case *booking.SessionBooking:
		if instructor := bk.Session.Instructor; instructor != nil && instructor.Email != "" {
			recipients = append(recipients, Recipient{
				Role:     RoleInstructor,
				Variant:  booking.VariantSession,
				Contacts: []Contact{contactOf(instructor)},
			})
		}

	case *booking.ItemBooking:
		index := make(map[string]int)
		for _, line := range bk.Items {
			if line.Item == nil || line.Item.Owner == nil || line.Item.Owner.Email == "" {
				continue
			}
			email := line.Item.Owner.Email
			if i, ok := index[email]; ok {
				recipients[i].Items = append(recipients[i].Items, line)
				continue
			}
			index[email] = len(recipients)
			recipients = append(recipients, Recipient{
				Role:     RoleItemOwner,
				Variant:  booking.VariantItem,
				Contacts: []Contact{contactOf(line.Item.Owner)},
				Items:    []booking.LineItem{line},
			})
		}
	}

	return recipients, nil
}

func contactOf(u *booking.User) Contact {
	return Contact{UserID: u.ID, Name: u.Name, Email: u.Email}
}
