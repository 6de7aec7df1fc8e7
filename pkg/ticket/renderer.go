package ticket

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/phpdave11/gofpdf"

	"github.com/eazybus/booking-backend/internal/models"
)

// Renderer produces the PDF artifacts handed to passengers: the travel
// ticket and the tax invoice. Rendering failures never roll back a booking;
// callers log and move on.
type Renderer struct{}

// NewRenderer creates a new Renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderTicket produces the travel ticket PDF for a paid booking.
func (r *Renderer) RenderTicket(b *models.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.Cell(0, 12, "EazyBus E-Ticket")
	pdf.Ln(16)

	pdf.SetFont("Helvetica", "", 11)
	r.row(pdf, "Booking ID", b.BookingID)
	r.row(pdf, "Journey Date", b.JourneyDate)
	r.row(pdf, "Service", fmt.Sprintf("%s (%s)", b.BusName, b.ServiceNo))
	r.row(pdf, "Route", fmt.Sprintf("%s to %s", b.Origin, b.Destination))
	r.row(pdf, "Departure", fmt.Sprintf("%s from %s", b.DepTime, b.BoardingPt))
	r.row(pdf, "Arrival", fmt.Sprintf("%s at %s", b.ArrTime, b.DropPt))
	r.row(pdf, "Seats", strings.Join(b.Seats, ", "))
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 8, "Passenger")
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 11)
	r.row(pdf, "Name", b.PaxName)
	r.row(pdf, "Age", b.PaxAge)
	r.row(pdf, "Phone", b.PaxPhone)
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "B", 12)
	r.row(pdf, "Fare Paid", fmt.Sprintf("INR %d", b.Fare))

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.MultiCell(0, 5, "Carry a government photo ID matching the passenger name. "+
		"Report to the boarding point 15 minutes before departure.", "", "L", false)

	return r.output(pdf)
}

// RenderInvoice produces the tax invoice PDF for a paid booking.
func (r *Renderer) RenderInvoice(b *models.Booking) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 12, "Tax Invoice")
	pdf.Ln(14)

	pdf.SetFont("Helvetica", "", 11)
	r.row(pdf, "Invoice Ref", b.BookingID)
	r.row(pdf, "Invoice Date", b.BookingDate)
	r.row(pdf, "Billed To", b.PaxName)
	r.row(pdf, "Payment Ref", b.PaymentRef)
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Description", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, "Amount (INR)", "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 11)
	desc := fmt.Sprintf("Bus fare %s to %s, %s, seats %s",
		b.Origin, b.Destination, b.JourneyDate, strings.Join(b.Seats, ", "))
	pdf.CellFormat(120, 8, desc, "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", b.Fare), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(120, 8, "Total", "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, fmt.Sprintf("%d", b.Fare), "1", 1, "R", false, 0, "")

	return r.output(pdf)
}

func (r *Renderer) row(pdf *gofpdf.Fpdf, label, value string) {
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(45, 7, label, "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 11)
	pdf.CellFormat(0, 7, value, "", 1, "L", false, 0, "")
}

func (r *Renderer) output(pdf *gofpdf.Fpdf) ([]byte, error) {
	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
