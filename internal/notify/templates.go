package notify

import "github.com/kursadbilgin/orderflow/internal/schema"

type templateSet struct {
	subject  string
	body     string
	statuses map[string]string
	fallback string
}

const orderConfirmationBody = `Dear {{.CustomerName}},

Thank you for your steel order. We are pleased to confirm the following details:

ORDER DETAILS:
Order ID: {{.OrderID}}
Batch ID: {{.BatchID}}
Steel Grade: {{.SteelGrade}}
Steel Type: {{.SteelType}}
Dimensions: {{.Thickness}}mm x {{.Width}}mm x {{.Length}}mm
Weight: {{grouped .Weight 1}} kg
Total Price: ${{grouped .TotalPrice 2}}

PRODUCTION DETAILS:
Production Line: {{.ProductionLine}}
Expected Production Date: {{.ProductionDate}}
Expected Delivery Date: {{.DeliveryDate}}
Quality Grade: {{.QualityGrade}}
Warehouse: {{.Warehouse}}

Your order is currently: {{.Status}}
{{statusMessage .Status}}

We will keep you updated on the progress of your order. Please contact us if you have any questions.

Best regards,
Steel Corporation Production Team`

const reservationConfirmationBody = `Dear {{.Passenger}},

Your flight reservation is confirmed:

PNR: {{.PNR}}
Route: {{.Origin}} -> {{.Destination}}
Travel Date: {{.TravelDate}}
Booked On: {{.BookingDate}}
Fare: ${{grouped .Fare 2}}
Status: {{.Status}}

{{statusMessage .Status}}

Have a pleasant trip.`

var templateSets = map[string]templateSet{
	schema.OrdersName: {
		subject: "Steel Order Confirmation - {{.OrderID}}",
		body:    orderConfirmationBody,
		statuses: map[string]string{
			"Pending":         "Your order is pending approval and will enter production soon.",
			"In Production":   "Your order is currently being manufactured on our production line.",
			"Quality Check":   "Your order is undergoing final quality inspection.",
			"Ready":           "Your order has passed quality control and is ready for shipment.",
			"Shipped":         "Your order has been shipped and is on its way to you.",
			"Delivered":       "Your order has been successfully delivered.",
			"Hold":            "Your order is temporarily on hold. We will contact you shortly.",
			"Rework Required": "Your order requires rework to meet quality standards.",
		},
		fallback: "Please contact us for current status.",
	},
	schema.ReservationsName: {
		subject: "Flight Reservation Confirmation - {{.PNR}}",
		body:    reservationConfirmationBody,
		statuses: map[string]string{
			"Confirmed":  "Your seat is confirmed. Online check-in opens 24 hours before departure.",
			"Pending":    "Your booking is pending payment confirmation.",
			"Checked-in": "You are checked in. Please arrive at the gate 30 minutes before departure.",
			"Completed":  "Thank you for flying with us.",
			"Cancelled":  "Your booking has been cancelled. Any refund will be issued to the original payment method.",
		},
		fallback: "Please contact us for your booking status.",
	},
}
