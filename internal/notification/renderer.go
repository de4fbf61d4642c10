package notification

import (
	"fmt"
	"html/template"
	"regexp"
	"strings"
	"time"

	"github.com/alexnthnz/booking-notifications/internal/booking"
	"github.com/alexnthnz/booking-notifications/internal/config"
)

// Locale controls currency and date presentation in rendered messages
type Locale struct {
	CurrencySymbol     string
	ItemCurrencySymbol string
	DateLayout         string
	TimeLayout         string
	Location           *time.Location
}

// DefaultLocale matches the historical rendering: "£" amounts, no symbol on
// item orders, US short dates and local times in the host zone.
func DefaultLocale() Locale {
	return Locale{
		CurrencySymbol:     "£",
		ItemCurrencySymbol: "",
		DateLayout:         "1/2/2006",
		TimeLayout:         "3:04:05 PM",
		Location:           time.Local,
	}
}

// LocaleFromConfig builds a Locale from configuration, keeping the default
// layouts for fields left empty
func LocaleFromConfig(cfg config.LocaleConfig) (Locale, error) {
	loc, err := cfg.LoadLocation()
	if err != nil {
		return Locale{}, err
	}

	l := DefaultLocale()
	l.CurrencySymbol = cfg.CurrencySymbol
	l.ItemCurrencySymbol = cfg.ItemCurrencySymbol
	if cfg.DateLayout != "" {
		l.DateLayout = cfg.DateLayout
	}
	if cfg.TimeLayout != "" {
		l.TimeLayout = cfg.TimeLayout
	}
	l.Location = loc
	return l, nil
}

func (l Locale) date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(l.location()).Format(l.DateLayout)
}

func (l Locale) clock(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(l.location()).Format(l.TimeLayout)
}

func (l Locale) location() *time.Location {
	if l.Location == nil {
		return time.Local
	}
	return l.Location
}

func money(symbol string, amount float64) string {
	return fmt.Sprintf("%s%.2f", symbol, amount)
}

type templateKey struct {
	variant booking.Variant
	role    Role
}

// detailRow is one "Label: Value" line of the detail block
type detailRow struct {
	Label string
	Value string
}

// emailView is the data bound to the shared email layout
type emailView struct {
	Subject    string
	Heading    string
	Accent     string
	Greeting   string
	Intro      string
	Rows       []detailRow
	LinesLabel string
	Lines      []string
	Closing    string
	Footer     string
}

// row appends a detail row unless value is empty
func (v *emailView) row(label, value string) {
	if value == "" {
		return
	}
	v.Rows = append(v.Rows, detailRow{Label: label, Value: value})
}

type viewBuilder func(l Locale, b booking.Booking, r Recipient) emailView

const footerText = "This is an automated message. Please do not reply to this email."

var layout = template.Must(template.New("email").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="margin:0;padding:0;background-color:#f4f4f4;font-family:Arial,Helvetica,sans-serif;">
<table width="100%" cellpadding="0" cellspacing="0" style="max-width:600px;margin:0 auto;">
<tr><td style="background-color:{{.Accent}};padding:24px;text-align:center;color:#ffffff;">
<h1 style="margin:0;font-size:24px;">{{.Heading}}</h1>
</td></tr>
<tr><td style="padding:24px;background-color:#ffffff;color:#333333;font-size:14px;line-height:1.5;">
<p>{{.Greeting}}</p>
<p>{{.Intro}}</p>
{{range .Rows}}<p style="margin:4px 0;"><strong>{{.Label}}:</strong> {{.Value}}</p>
{{end}}{{if .Lines}}<p style="margin:12px 0 4px;"><strong>{{.LinesLabel}}:</strong></p>
<p style="margin:4px 0;">{{range $i, $line := .Lines}}{{if $i}}<br>{{end}}{{$line}}{{end}}</p>
{{end}}{{if .Closing}}<p>{{.Closing}}</p>
{{end}}</td></tr>
<tr><td style="padding:16px;text-align:center;font-size:12px;color:#888888;">{{.Footer}}</td></tr>
</table>
</body>
</html>
`))

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// PlainText strips HTML tags. Entities are left as they are.
func PlainText(html string) string {
	return tagPattern.ReplaceAllString(html, "")
}

// Renderer builds email and chat content for booking recipients
type Renderer struct {
	locale   Locale
	builders map[templateKey]viewBuilder
}

// NewRenderer creates a renderer for the given locale
func NewRenderer(locale Locale) *Renderer {
	return &Renderer{
		locale: locale,
		builders: map[templateKey]viewBuilder{
			{booking.VariantHotel, RoleCustomer}:     customerHotelView,
			{booking.VariantHotel, RoleHotelOwner}:   ownerHotelView,
			{booking.VariantEvent, RoleCustomer}:     customerEventView,
			{booking.VariantEvent, RoleInstructor}:   instructorEventView,
			{booking.VariantSession, RoleCustomer}:   customerSessionView,
			{booking.VariantSession, RoleInstructor}: instructorSessionView,
			{booking.VariantItem, RoleCustomer}:      customerItemView,
			{booking.VariantItem, RoleItemOwner}:     ownerItemView,
		},
	}
}

// HasTemplate reports whether an email exists for the variant and role
func (r *Renderer) HasTemplate(variant booking.Variant, role Role) bool {
	_, ok := r.builders[templateKey{variant, role}]
	return ok
}

// RenderEmail renders the email for a recipient of a booking
func (r *Renderer) RenderEmail(b booking.Booking, recipient Recipient) (RenderedEmail, error) {
	build, ok := r.builders[templateKey{b.Variant(), recipient.Role}]
	if !ok {
		return RenderedEmail{}, fmt.Errorf("no email template for %s booking and role %s", b.Variant(), recipient.Role)
	}

	view := build(r.locale, b, recipient)
	view.Footer = footerText

	var out strings.Builder
	if err := layout.Execute(&out, view); err != nil {
		return RenderedEmail{}, fmt.Errorf("failed to render %s email for %s: %w", b.Variant(), recipient.Role, err)
	}

	html := out.String()
	return RenderedEmail{
		Subject: view.Subject,
		HTML:    html,
		Text:    PlainText(html),
	}, nil
}
