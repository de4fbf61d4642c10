package notification

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexnthnz/booking-notifications/internal/booking"
)

const (
	accentCustomer = "#2c7a7b"
	accentProvider = "#2b6cb0"
)

func greeting(name, fallback string) string {
	if name == "" {
		name = fallback
	}
	return fmt.Sprintf("Dear %s,", name)
}

func count(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func customerHotelView(l Locale, b booking.Booking, _ Recipient) emailView {
	bk := b.(*booking.HotelBooking)
	v := emailView{
		Subject:  "Booking Confirmation - " + bk.Hotel.Name,
		Heading:  "Your Stay is Confirmed",
		Accent:   accentCustomer,
		Greeting: greeting(bk.User.Name, "Guest"),
		Intro:    fmt.Sprintf("Thank you for booking with us. Your reservation at %s is confirmed.", bk.Hotel.Name),
		Closing:  "We hope you enjoy your stay.",
	}
	v.row("Booking ID", bk.ID)
	v.row("Hotel", bk.Hotel.Name)
	v.row("Address", bk.Hotel.Address)
	v.row("Check-in", l.date(bk.CheckIn))
	v.row("Check-out", l.date(bk.CheckOut))
	v.row("Rooms", count(bk.Rooms))
	v.row("Guests", count(bk.Guests))
	v.row("Special Requests", bk.SpecialRequests)
	v.row("Total Amount", money(l.CurrencySymbol, bk.Amount))
	return v
}

func ownerHotelView(l Locale, b booking.Booking, r Recipient) emailView {
	bk := b.(*booking.HotelBooking)
	v := emailView{
		Subject:  "New Booking - " + bk.Hotel.Name,
		Heading:  "New Booking Received",
		Accent:   accentProvider,
		Greeting: greeting(r.Primary().Name, "Host"),
		Intro:    fmt.Sprintf("A new booking has been made at %s.", bk.Hotel.Name),
		Closing:  "Please make sure everything is ready for your guest's arrival.",
	}
	v.row("Booking ID", bk.ID)
	v.row("Guest", bk.User.Name)
	v.row("Guest Email", bk.User.Email)
	v.row("Guest Phone", bk.User.Phone)
	v.row("Check-in", l.date(bk.CheckIn))
	v.row("Check-out", l.date(bk.CheckOut))
	v.row("Rooms", count(bk.Rooms))
	v.row("Guests", count(bk.Guests))
	v.row("Special Requests", bk.SpecialRequests)
	v.row("Total Amount", money(l.CurrencySymbol, bk.Amount))
	return v
}

func eventTime(e *booking.Event) string {
	switch {
	case e.StartTime != "" && e.EndTime != "":
		return e.StartTime + " - " + e.EndTime
	default:
		return e.StartTime
	}
}

func eventPlace(e *booking.Event) string {
	var parts []string
	for _, p := range []string{e.Location, e.City, e.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

func instructorNames(instructors []booking.User) string {
	var names []string
	for _, i := range instructors {
		if i.Name != "" {
			names = append(names, i.Name)
		}
	}
	return strings.Join(names, ", ")
}

func customerEventView(l Locale, b booking.Booking, _ Recipient) emailView {
	bk := b.(*booking.EventBooking)
	v := emailView{
		Subject:  "Event Booking Confirmation - " + bk.Event.Title,
		Heading:  "You're Going!",
		Accent:   accentCustomer,
		Greeting: greeting(bk.User.Name, "Participant"),
		Intro:    fmt.Sprintf("Your booking for %s is confirmed.", bk.Event.Title),
		Closing:  "We look forward to seeing you there.",
	}
	v.row("Booking ID", bk.ID)
	v.row("Event", bk.Event.Title)
	v.row("Date", l.date(bk.Event.Date))
	v.row("Time", eventTime(bk.Event))
	v.row("Location", eventPlace(bk.Event))
	v.row("Participants", count(bk.Participants))
	v.row("Instructor", instructorNames(bk.Instructors))
	v.row("Total Amount", money(l.CurrencySymbol, bk.Amount))
	return v
}

func instructorEventView(l Locale, b booking.Booking, _ Recipient) emailView {
	bk := b.(*booking.EventBooking)
	email := bk.ContactEmail
	if email == "" {
		email = bk.User.Email
	}
	phone := bk.ContactPhone
	if phone == "" {
		phone = bk.User.Phone
	}
	v := emailView{
		Subject:  "New Participant Booking - " + bk.Event.Title,
		Heading:  "New Event Booking",
		Accent:   accentProvider,
		Greeting: "Hello,",
		Intro:    fmt.Sprintf("A new participant has booked %s.", bk.Event.Title),
	}
	v.row("Booking ID", bk.ID)
	v.row("Event", bk.Event.Title)
	v.row("Date", l.date(bk.Event.Date))
	v.row("Time", eventTime(bk.Event))
	v.row("Location", eventPlace(bk.Event))
	v.row("Participant", bk.User.Name)
	v.row("Contact Email", email)
	v.row("Contact Phone", phone)
	v.row("Participants", count(bk.Participants))
	return v
}

func groupNames(members []booking.GroupMember) string {
	var names []string
	for _, m := range members {
		if m.Name != "" {
			names = append(names, m.Name)
		}
	}
	return strings.Join(names, ", ")
}

func instructorName(s *booking.Session) string {
	if s.Instructor == nil {
		return ""
	}
	return s.Instructor.Name
}

func customerSessionView(l Locale, b booking.Booking, _ Recipient) emailView {
	bk := b.(*booking.SessionBooking)
	s := bk.Session
	v := emailView{
		Subject:  "Session Booking Confirmation - " + s.AdventureName,
		Heading:  "Your Adventure Awaits",
		Accent:   accentCustomer,
		Greeting: greeting(bk.User.Name, "Adventurer"),
		Intro:    fmt.Sprintf("Your session for %s is confirmed.", s.AdventureName),
		Closing:  "Please arrive a few minutes early.",
	}
	v.row("Booking ID", bk.ID)
	v.row("Adventure", s.AdventureName)
	v.row("Date", l.date(s.StartTime))
	v.row("Time", l.clock(s.StartTime))
	v.row("Location", s.Location)
	v.row("Instructor", instructorName(s))
	v.row("Group Members", groupNames(bk.GroupMembers))
	v.row("Total Amount", money(l.CurrencySymbol, bk.Amount))
	return v
}

func instructorSessionView(l Locale, b booking.Booking, r Recipient) emailView {
	bk := b.(*booking.SessionBooking)
	s := bk.Session
	v := emailView{
		Subject:  "New Session Booking - " + s.AdventureName,
		Heading:  "New Session Booking",
		Accent:   accentProvider,
		Greeting: greeting(r.Primary().Name, "Instructor"),
		Intro:    fmt.Sprintf("%s has booked your session for %s.", participantName(bk.User), s.AdventureName),
	}
	v.row("Booking ID", bk.ID)
	v.row("Participant", bk.User.Name)
	v.row("Participant Email", bk.User.Email)
	v.row("Participant Phone", bk.User.Phone)
	v.row("Date", l.date(s.StartTime))
	v.row("Time", l.clock(s.StartTime))
	if len(bk.GroupMembers) > 0 {
		v.row("Group Size", strconv.Itoa(len(bk.GroupMembers)+1))
	}
	return v
}

func participantName(u *booking.User) string {
	if u.Name == "" {
		return "A participant"
	}
	return u.Name
}

// itemLine renders "Kayak x1 - Rental: 1/1/2024 to 1/5/2024"
func itemLine(l Locale, line booking.LineItem) string {
	name := "Item"
	if line.Item != nil && line.Item.Name != "" {
		name = line.Item.Name
	}
	text := fmt.Sprintf("%s x%d", name, line.Quantity)
	if !line.Rental {
		return text + " - Purchase"
	}
	text += " - Rental"
	if line.RentalStart != nil && line.RentalEnd != nil {
		text += fmt.Sprintf(": %s to %s", l.date(*line.RentalStart), l.date(*line.RentalEnd))
	}
	return text
}

func itemLines(l Locale, lines []booking.LineItem) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, itemLine(l, line))
	}
	return out
}

func customerItemView(l Locale, b booking.Booking, _ Recipient) emailView {
	bk := b.(*booking.ItemBooking)
	v := emailView{
		Subject:    "Order Confirmation - #" + bk.ID,
		Heading:    "Thank You for Your Order",
		Accent:     accentCustomer,
		Greeting:   greeting(bk.User.Name, "Customer"),
		Intro:      "Your order has been confirmed.",
		LinesLabel: "Items",
		Lines:      itemLines(l, bk.Items),
	}
	v.row("Order ID", bk.ID)
	v.row("Total Amount", money(l.ItemCurrencySymbol, bk.Amount))
	return v
}

func ownerItemView(l Locale, b booking.Booking, r Recipient) emailView {
	bk := b.(*booking.ItemBooking)
	v := emailView{
		Subject:    "New Order for Your Items - #" + bk.ID,
		Heading:    "You Have a New Order",
		Accent:     accentProvider,
		Greeting:   greeting(r.Primary().Name, "Seller"),
		Intro:      "A customer has ordered the following items from you.",
		LinesLabel: "Items",
		Lines:      itemLines(l, r.Items),
		Closing:    "Please prepare the items for the customer.",
	}
	v.row("Order ID", bk.ID)
	v.row("Customer", bk.User.Name)
	v.row("Customer Email", bk.User.Email)
	v.row("Customer Phone", bk.User.Phone)
	return v
}
