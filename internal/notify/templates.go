package notify

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/skip2/go-qrcode"

	"storefront/internal/models"
)

var orderConfirmationTmpl = template.Must(template.New("order").Funcs(template.FuncMap{
	"money": func(v float64) string { return fmt.Sprintf("₹%.2f", v) },
	"mul":   func(p float64, q int) float64 { return p * float64(q) },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="UTF-8"><title>{{.Subject}}</title></head>
<body style="font-family: Arial, sans-serif; background-color: #f9f9f9; padding: 20px;">
<div style="max-width: 600px; margin: auto; background-color: white; padding: 20px; border-radius: 10px;">
	<h2>{{.Heading}}</h2>
	<p>Hi {{.Name}},</p>
	<p>{{.Intro}}</p>
	<table style="width: 100%; border-collapse: collapse; margin: 20px 0;">
		<thead><tr><th align="left">Product</th><th align="left">Qty</th><th align="left">Price</th><th align="left">Total</th></tr></thead>
		<tbody>
		{{range .Order.Items}}<tr><td>{{.Title}}</td><td>{{.Quantity}}</td><td>{{money .Price}}</td><td>{{money (mul .Price .Quantity)}}</td></tr>
		{{end}}</tbody>
	</table>
	<p>Subtotal: {{money .Order.TotalAmount}}</p>
	{{if .Order.CouponCode}}<p>Coupon {{.Order.CouponCode}}: -{{money .Order.DiscountAmount}}</p>{{end}}
	<p><strong>Total: {{money .Order.PayableAmount}}</strong> ({{.Order.PaymentMethod}}, {{.Order.PaymentStatus}})</p>
	<p>Shipping to {{.Order.ShippingAddress.FullName}}, {{.Order.ShippingAddress.Address}}, {{.Order.ShippingAddress.City}} {{.Order.ShippingAddress.PostalCode}}, {{.Order.ShippingAddress.Country}}</p>
	<p><a href="{{.OrderURL}}">View your order</a></p>
</div>
</body>
</html>`))

type orderView struct {
	Subject  string
	Heading  string
	Intro    string
	Name     string
	OrderURL string
	Order    *models.Order
}

// OrderEmailKind selects the wording of an order e-mail.
type OrderEmailKind int

const (
	OrderPlaced OrderEmailKind = iota
	OrderPaid
)

// RenderOrderEmail builds the e-mail sent for an order event. A QR code linking to
// the order page is attached.
func RenderOrderEmail(kind OrderEmailKind, order *models.Order, user *models.User, orderURL string) (Message, error) {
	view := orderView{
		Name:     user.Name,
		OrderURL: orderURL,
		Order:    order,
	}
	switch kind {
	case OrderPaid:
		view.Subject = fmt.Sprintf("Payment received for order %s", order.ID)
		view.Heading = "Payment received"
		view.Intro = "We have received your payment. Your order is being prepared."
	default:
		view.Subject = fmt.Sprintf("Order %s confirmed", order.ID)
		view.Heading = "Thanks for your order"
		view.Intro = "Your order has been placed successfully."
	}

	var body bytes.Buffer
	if err := orderConfirmationTmpl.Execute(&body, view); err != nil {
		return Message{}, fmt.Errorf("failed to render order e-mail: %w", err)
	}

	png, err := qrcode.Encode(orderURL, qrcode.Medium, 256)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode order qr code: %w", err)
	}

	return Message{
		To:      user.Email,
		Subject: view.Subject,
		HTML:    body.String(),
		Attachments: []Attachment{
			{Name: "order-qr.png", Data: png},
		},
	}, nil
}
