package main

import (
	"github.com/example/ec-checkout/internal/domain/payment"
	"github.com/example/ec-checkout/internal/domain/shipping"
	"github.com/example/ec-checkout/internal/domain/tax"
	"github.com/shopspring/decimal"
)

func shippingMethods() *shipping.Catalog {
	return shipping.NewCatalog(
		shipping.Method{
			ID:         "standard",
			Name:       "Standard",
			Countries:  []string{"US", "CA"},
			Calculator: shipping.DefaultPriceSack(),
		},
		shipping.Method{
			ID:        "express",
			Name:      "Express",
			Countries: []string{"US"},
			Calculator: shipping.FlexiRate{
				FirstItem:      decimal.NewFromInt(15),
				AdditionalItem: decimal.NewFromInt(5),
			},
		},
		shipping.Method{
			ID:         "international",
			Name:       "International",
			Calculator: shipping.PerItem{Amount: decimal.NewFromInt(12)},
		},
		shipping.Method{
			ID:         "store_pickup",
			Name:       "Store Pickup",
			DisplayOn:  shipping.DisplayBackEnd,
			Calculator: shipping.FlatRate{Amount: decimal.Zero},
		},
	)
}

func paymentMethods() *payment.Registry {
	return payment.NewRegistry(
		payment.Method{ID: "card", Name: "Credit Card", Active: true, Gateway: &payment.BogusGateway{}},
		payment.Method{ID: "saved_card", Name: "Saved Card", Active: true, SupportsProfiles: true, Gateway: &payment.BogusGateway{}},
		payment.Method{ID: "check", Name: "Check", Active: true, DisplayOn: payment.DisplayBackEnd},
	)
}

func taxRates() []tax.Rate {
	return []tax.Rate{
		{ID: "us-sales", Label: "Sales Tax", Country: "US", Amount: decimal.RequireFromString("0.08")},
		{ID: "ca-gst", Label: "GST", Country: "CA", Amount: decimal.RequireFromString("0.05")},
	}
}
