package booking

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"

	"github.com/go-playground/validator/v10"
)

var (
	ErrUnknownVariant = errors.New("unknown booking variant")
	ErrInvalidBooking = errors.New("invalid booking")
	ErrMissingUser    = errors.New("booking has no owning user")
)

var validate = validator.New()

// ParseVariant converts a raw variant name into a Variant
func ParseVariant(s string) (Variant, error) {
	for _, v := range Variants {
		if string(v) == s {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownVariant, s)
}

// New returns an empty booking of the given variant
func New(variant Variant) (Booking, error) {
	switch variant {
	case VariantHotel:
		return &HotelBooking{}, nil
	case VariantEvent:
		return &EventBooking{}, nil
	case VariantSession:
		return &SessionBooking{}, nil
	case VariantItem:
		return &ItemBooking{}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownVariant, variant)
}

// Decode unmarshals a populated booking document of the given variant
func Decode(variant Variant, data []byte) (Booking, error) {
	b, err := New(variant)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, b); err != nil {
		return nil, fmt.Errorf("%w: failed to decode %s booking: %v", ErrInvalidBooking, variant, err)
	}
	return b, nil
}

// Validate checks that a booking carries the references notification needs:
// an owning user and the variant's primary hotel, event or session.
func Validate(b Booking) error {
	if b == nil {
		return fmt.Errorf("%w: nil booking", ErrInvalidBooking)
	}
	if v := reflect.ValueOf(b); v.Kind() == reflect.Ptr && v.IsNil() {
		return fmt.Errorf("%w: nil %s booking", ErrInvalidBooking, b.Variant())
	}
	if b.Common().User == nil {
		return ErrMissingUser
	}
	if err := validate.Struct(b); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidBooking, err)
	}
	return nil
}
