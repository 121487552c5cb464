package email

import (
	"context"
	"fmt"
	"strings"

	"carexyz/internal/booking"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var amounts = message.NewPrinter(language.English)

func (s *Service) NotifyBookingCreated(ctx context.Context, to, name string, b booking.Booking) error {
	subject := fmt.Sprintf("Booking Confirmation - %s #%s", b.ServiceName, b.Ref())
	intro := "Thank you for booking with Care.xyz! Your booking has been received and our team will contact you shortly."
	outro := "Our customer service team will reach out to you within 24 hours to confirm the details and schedule your care service."

	return s.enqueue(ctx, Job{
		Type:    "booking_created",
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    s.invoice(name, intro, outro, b),
	})
}

func (s *Service) NotifyPaymentReceived(ctx context.Context, to, name string, b booking.Booking) error {
	subject := fmt.Sprintf("Payment Received - %s #%s", b.ServiceName, b.Ref())
	intro := "We have received your payment. Thank you for choosing Care.xyz!"
	outro := "Keep this email as your receipt."

	return s.enqueue(ctx, Job{
		Type:    "payment_received",
		To:      to,
		Name:    name,
		Subject: subject,
		Body:    s.invoice(name, intro, outro, b),
	})
}

func (s *Service) invoice(name, intro, outro string, b booking.Booking) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Dear %s,\n\n%s\n\n", name, intro)
	sb.WriteString("Booking Invoice\n")
	sb.WriteString("---------------\n")
	fmt.Fprintf(&sb, "Service:      %s\n", b.ServiceName)
	fmt.Fprintf(&sb, "Duration:     %d %s\n", b.Duration.Value, b.Duration.Unit)
	fmt.Fprintf(&sb, "Location:     %s, %s, %s, %s\n", b.Location.Area, b.Location.City, b.Location.District, b.Location.Division)
	fmt.Fprintf(&sb, "Address:      %s\n", b.Location.Address)
	fmt.Fprintf(&sb, "Booking Date: %s\n", b.CreatedAt.Format("January 2, 2006"))
	fmt.Fprintf(&sb, "Booking ID:   #%s\n", b.Ref())
	fmt.Fprintf(&sb, "Status:       %s\n", b.Status)
	fmt.Fprintf(&sb, "Payment:      %s\n", b.PaymentStatus)
	fmt.Fprintf(&sb, "Total Cost:   %s\n\n", formatTaka(b.TotalCost))
	sb.WriteString(outro + "\n")
	if s.appURL != "" {
		fmt.Fprintf(&sb, "\nView your bookings: %s/my-bookings\n", s.appURL)
	}
	sb.WriteString("\n- Care.xyz Team\n")
	return sb.String()
}

func formatTaka(amount float64) string {
	return amounts.Sprintf("৳%.2f", amount)
}
