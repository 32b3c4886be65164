package email

import (
	"fmt"
	"html"
	"strings"
)

// OrderItem is one line of an order as shown in mail. Amounts are preformatted.
type OrderItem struct {
	VariantID string
	Name      string
	Quantity  int
	Price     string
	Amount    string
}

// Order is the mail view of an order. Amounts are preformatted in the order currency.
type Order struct {
	Number    string
	Items     []OrderItem
	ItemTotal string
	ShipTotal string
	TaxTotal  string
	Total     string
}

// BuildOrderConfirmationBody builds the HTML body for order confirmation email
func BuildOrderConfirmationBody(o Order) string {
	return layout(
		"Thank you for your order",
		"We received your order and will let you know when it ships.",
		o,
	)
}

// BuildOrderCancellationBody builds the HTML body for order cancellation email
func BuildOrderCancellationBody(o Order) string {
	return layout(
		"Your order was canceled",
		"Your order has been canceled. Any payment taken will be credited back to you.",
		o,
	)
}

func layout(title, intro string, o Order) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
	<div style="background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%); padding: 30px; border-radius: 10px 10px 0 0;">
		<h1 style="color: white; margin: 0; font-size: 24px;">%s</h1>
	</div>

	<div style="background: #fff; padding: 30px; border: 1px solid #eee; border-top: none; border-radius: 0 0 10px 10px;">
		<p style="margin-top: 0;">%s</p>

		<div style="background: #f8f9fa; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<p style="margin: 0; font-size: 14px; color: #666;">Order number</p>
			<p style="margin: 5px 0 0 0; font-size: 18px; font-weight: bold; font-family: monospace;">%s</p>
		</div>

		<table style="width: 100%%; border-collapse: collapse; margin: 20px 0;">
			<thead>
				<tr style="background: #f8f9fa;">
					<th style="padding: 12px; text-align: left; font-weight: 600;">Item</th>
					<th style="padding: 12px; text-align: center; font-weight: 600;">Qty</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Price</th>
					<th style="padding: 12px; text-align: right; font-weight: 600;">Subtotal</th>
				</tr>
			</thead>
			<tbody>
				%s
			</tbody>
		</table>

		<table style="width: 100%%; border-collapse: collapse;">
			%s
		</table>
	</div>
</body>
</html>`,
		html.EscapeString(title),
		html.EscapeString(intro),
		html.EscapeString(o.Number),
		itemRows(o.Items),
		totalRows(o),
	)
}

func itemRows(items []OrderItem) string {
	var rows strings.Builder
	for _, item := range items {
		name := item.Name
		if name == "" {
			name = item.VariantID
		}
		fmt.Fprintf(&rows,
			`<tr>
				<td style="padding: 12px; border-bottom: 1px solid #eee;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: center;">%d</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
				<td style="padding: 12px; border-bottom: 1px solid #eee; text-align: right;">%s</td>
			</tr>`,
			html.EscapeString(name),
			item.Quantity,
			html.EscapeString(item.Price),
			html.EscapeString(item.Amount),
		)
	}
	return rows.String()
}

func totalRows(o Order) string {
	var rows strings.Builder
	lines := []struct{ label, value string }{
		{"Items", o.ItemTotal},
		{"Shipping", o.ShipTotal},
		{"Tax", o.TaxTotal},
		{"Total", o.Total},
	}
	for _, l := range lines {
		if l.value == "" {
			continue
		}
		fmt.Fprintf(&rows,
			`<tr><td style="padding: 6px 12px; text-align: right; color: #666;">%s</td><td style="padding: 6px 12px; text-align: right; font-weight: bold;">%s</td></tr>`,
			l.label, html.EscapeString(l.value),
		)
	}
	return rows.String()
}
