package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/alexnthnz/booking-notifications/internal/booking"
)

func testLocale() Locale {
	l := DefaultLocale()
	l.Location = time.UTC
	return l
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func hotelBooking() *booking.HotelBooking {
	return &booking.HotelBooking{
		Base: booking.Base{
			ID:     "HB-1",
			User:   &booking.User{ID: "u-guest", Name: "Grace", Email: "grace@example.com"},
			Amount: 320,
		},
		Hotel: &booking.Hotel{
			ID:      "h1",
			Name:    "Lakeside Lodge",
			Address: "1 Shore Road",
			Owner:   &booking.User{ID: "u-owner", Name: "Olive", Email: "olive@lodge.com"},
		},
		CheckIn:  date(2024, time.March, 1),
		CheckOut: date(2024, time.March, 4),
		Rooms:    1,
		Guests:   2,
	}
}

func eventBooking() *booking.EventBooking {
	return &booking.EventBooking{
		Base: booking.Base{
			ID:     "EB-1",
			User:   &booking.User{ID: "u-guest", Name: "Grace", Email: "grace@example.com"},
			Amount: 75,
		},
		Event: &booking.Event{
			Title:     "Night Climb",
			Date:      date(2024, time.June, 10),
			StartTime: "18:00",
			EndTime:   "22:00",
			City:      "Keswick",
		},
		Participants: 2,
		Instructors: []booking.User{
			{ID: "i1", Name: "Ivan", Email: "ivan@x.com"},
			{ID: "i2", Name: "Jade"},
			{ID: "i3", Name: "Kim", Email: "kim@x.com"},
			{ID: "i4", Name: "Ivan Again", Email: "ivan@x.com"},
		},
	}
}

func sessionBooking() *booking.SessionBooking {
	return &booking.SessionBooking{
		Base: booking.Base{
			ID:     "SB-1",
			User:   &booking.User{ID: "u-a", Name: "Alice", Email: "a@x.com"},
			Amount: 49.99,
		},
		Session: &booking.Session{
			AdventureName: "Canyon Trek",
			StartTime:     time.Date(2024, time.March, 14, 9, 30, 0, 0, time.UTC),
			Location:      "Basecamp",
			Instructor:    &booking.User{ID: "u-b", Name: "Bob", Email: "b@x.com"},
		},
	}
}

func itemBooking() *booking.ItemBooking {
	start, end := date(2024, time.January, 1), date(2024, time.January, 5)
	owner := &booking.User{ID: "u-shop", Name: "Shop", Email: "owner@shop.com"}
	return &booking.ItemBooking{
		Base: booking.Base{
			ID:     "IB-1",
			User:   &booking.User{ID: "u-guest", Name: "Grace", Email: "grace@example.com"},
			Amount: 120,
		},
		Items: []booking.LineItem{
			{Item: &booking.Item{Name: "Helmet", Owner: owner}, Quantity: 2},
			{Item: &booking.Item{Name: "Kayak", Owner: owner}, Quantity: 1, Rental: true, RentalStart: &start, RentalEnd: &end},
		},
	}
}

type fakeTransport struct {
	mu     sync.Mutex
	sent   []Email
	failOn map[string]bool
}

func (f *fakeTransport) Send(_ context.Context, email Email) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, to := range email.To {
		if f.failOn[to] {
			return "", errors.New("smtp: connection reset")
		}
	}
	f.sent = append(f.sent, email)
	return fmt.Sprintf("msg-%d", len(f.sent)), nil
}

func (f *fakeTransport) sentTo(addr string) []Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Email
	for _, e := range f.sent {
		for _, to := range e.To {
			if to == addr {
				out = append(out, e)
			}
		}
	}
	return out
}

type fakeStore struct {
	mu       sync.Mutex
	messages []ChatMessage
	err      error
}

func (f *fakeStore) Create(_ context.Context, msg ChatMessage) (*ChatMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	msg.ID = fmt.Sprintf("chat-%d", len(f.messages)+1)
	f.messages = append(f.messages, msg)
	return &msg, nil
}

type fakeNotifier struct {
	channel Channel
	mu      sync.Mutex
	texts   []string
	err     error
}

func (f *fakeNotifier) Channel() Channel { return f.channel }

func (f *fakeNotifier) Address(u *booking.User) string {
	if f.channel == ChannelSMS {
		return u.Phone
	}
	return u.PushToken
}

func (f *fakeNotifier) SendText(_ context.Context, to, _, body string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.texts = append(f.texts, to+": "+body)
	return "text-1", nil
}

type panickingTransport struct{}

func (panickingTransport) Send(context.Context, Email) (string, error) {
	panic("nil provider client")
}
