package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"marketplace/internal/model"

	"github.com/shopspring/decimal"
)

type emailLine struct {
	ProductID string
	Size      string
	Color     string
	Quantity  int
	UnitPrice string
	LineTotal string
}

type customerEmail struct {
	Name      string
	OrderID   string
	Lines     []emailLine
	Total     string
	Discount  string
	Final     string
	HasCoupon bool
}

type shopEmail struct {
	ShopName   string
	OrderID    string
	Customer   model.Contact
	Lines      []emailLine
	Subtotal   string
	Discount   string
	Final      string
	HasCoupon  bool
	ParentID   string
	PlacedDate string
}

var customerTmpl = template.Must(template.New("customer").Parse(`<html><body>
<p>Hi {{.Name}},</p>
<p>Thank you for your order <strong>{{.OrderID}}</strong>.</p>
<table>
<tr><th>Product</th><th>Size</th><th>Color</th><th>Qty</th><th>Price</th><th>Total</th></tr>
{{range .Lines}}<tr><td>{{.ProductID}}</td><td>{{.Size}}</td><td>{{.Color}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Total: {{.Total}}</p>
{{if .HasCoupon}}<p>Discount: -{{.Discount}}</p>
{{end}}<p><strong>Amount due: {{.Final}}</strong></p>
</body></html>`))

var shopTmpl = template.Must(template.New("shop").Parse(`<html><body>
<p>Hello {{.ShopName}},</p>
<p>You have a new order <strong>{{.OrderID}}</strong> (checkout {{.ParentID}}) placed on {{.PlacedDate}}.</p>
<p>Ship to: {{.Customer.FullName}}, {{.Customer.StreetAddressLine1}}{{if .Customer.StreetAddressLine2}}, {{.Customer.StreetAddressLine2}}{{end}}, {{.Customer.City}}, {{.Customer.State}} {{.Customer.ZipCode}}, {{.Customer.Country}}. Phone {{.Customer.PhoneNumber}}.</p>
<table>
<tr><th>Product</th><th>Size</th><th>Color</th><th>Qty</th><th>Price</th><th>Total</th></tr>
{{range .Lines}}<tr><td>{{.ProductID}}</td><td>{{.Size}}</td><td>{{.Color}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.LineTotal}}</td></tr>
{{end}}</table>
<p>Subtotal: {{.Subtotal}}</p>
{{if .HasCoupon}}<p>Coupon discount: -{{.Discount}}</p>
{{end}}<p><strong>Order total: {{.Final}}</strong></p>
</body></html>`))

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

func toLines(items []model.OrderLineItem) []emailLine {
	lines := make([]emailLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, emailLine{
			ProductID: item.ProductID,
			Size:      item.Size,
			Color:     item.Color,
			Quantity:  item.Quantity,
			UnitPrice: money(item.UnitPrice),
			LineTotal: money(item.LineTotal()),
		})
	}
	return lines
}

func textBody(header string, lines []emailLine, footer ...string) string {
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n\n")
	for _, l := range lines {
		fmt.Fprintf(&b, "%s (%s, %s) x%d @ %s = %s\n", l.ProductID, l.Size, l.Color, l.Quantity, l.UnitPrice, l.LineTotal)
	}
	b.WriteString("\n")
	for _, f := range footer {
		b.WriteString(f)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderCustomerEmail builds the confirmation sent to the buyer. It lists
// every item of the checkout with the parent order's amounts.
func RenderCustomerEmail(ev OrderPlaced) (Message, error) {
	var lines []emailLine
	for _, sub := range ev.SubOrders {
		lines = append(lines, toLines(sub.Items)...)
	}

	data := customerEmail{
		Name:      ev.Parent.Contact.FullName,
		OrderID:   ev.Parent.ID.String(),
		Lines:     lines,
		Total:     money(ev.Parent.TotalAmount),
		Discount:  money(ev.Parent.DiscountAmount),
		Final:     money(ev.Parent.FinalAmount),
		HasCoupon: ev.Parent.DiscountAmount.IsPositive(),
	}

	var html bytes.Buffer
	if err := customerTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render customer email: %w", err)
	}

	footer := []string{"Total: " + data.Total}
	if data.HasCoupon {
		footer = append(footer, "Discount: -"+data.Discount)
	}
	footer = append(footer, "Amount due: "+data.Final)

	return Message{
		To:       ev.Parent.Contact.Email,
		Subject:  "Your order " + data.OrderID + " has been placed",
		HTMLBody: html.String(),
		TextBody: textBody("Thank you for your order "+data.OrderID+".", lines, footer...),
	}, nil
}

// RenderShopEmail builds the notice sent to one vendor. It only contains the
// vendor's own sub-order.
func RenderShopEmail(shop model.Shop, parent model.Order, sub model.SubOrderDetail) (Message, error) {
	lines := toLines(sub.Items)
	data := shopEmail{
		ShopName:   shop.Name,
		OrderID:    sub.ID.String(),
		Customer:   sub.Contact,
		Lines:      lines,
		Subtotal:   money(sub.TotalAmount),
		Discount:   money(sub.DiscountAmount),
		Final:      money(sub.FinalAmount),
		HasCoupon:  sub.DiscountAmount.IsPositive(),
		ParentID:   parent.ID.String(),
		PlacedDate: sub.CreatedAt.UTC().Format("2006-01-02 15:04 MST"),
	}

	var html bytes.Buffer
	if err := shopTmpl.Execute(&html, data); err != nil {
		return Message{}, fmt.Errorf("failed to render shop email: %w", err)
	}

	footer := []string{"Subtotal: " + data.Subtotal}
	if data.HasCoupon {
		footer = append(footer, "Coupon discount: -"+data.Discount)
	}
	footer = append(footer, "Order total: "+data.Final)

	return Message{
		To:       shop.Email,
		Subject:  "New order " + data.OrderID,
		HTMLBody: html.String(),
		TextBody: textBody("New order "+data.OrderID+" for "+shop.Name+".", lines, footer...),
	}, nil
}
