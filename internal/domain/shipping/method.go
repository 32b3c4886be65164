package shipping

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/example/ec-checkout/internal/domain/order"
)

var ErrMethodNotFound = errors.New("shipping method not found")

// Display selects which audience a method is offered to.
type Display string

const (
	DisplayBoth     Display = "both"
	DisplayFrontEnd Display = "front_end"
	DisplayBackEnd  Display = "back_end"
)

// Method is a shipping option limited to a zone of countries. An empty zone ships anywhere.
type Method struct {
	ID         string
	Name       string
	Countries  []string
	DisplayOn  Display
	Calculator Calculator
}

// AvailableFor reports whether the method serves the address for the given audience.
func (m Method) AvailableFor(addr *order.Address, display Display) bool {
	if m.DisplayOn != "" && m.DisplayOn != DisplayBoth && display != DisplayBoth && m.DisplayOn != display {
		return false
	}
	if len(m.Countries) == 0 {
		return true
	}
	if addr == nil {
		return false
	}
	return slices.ContainsFunc(m.Countries, func(c string) bool {
		return strings.EqualFold(c, addr.Country)
	})
}

// Availability lists the shipping methods an order may use.
type Availability interface {
	AvailableMethods(ctx context.Context, o *order.Order, display Display) ([]Method, error)
	Method(id string) (Method, error)
}

// Catalog is an in-memory Availability over a fixed method list.
type Catalog struct {
	methods []Method
}

func NewCatalog(methods ...Method) *Catalog {
	return &Catalog{methods: methods}
}

// AvailableMethods keeps catalog order.
func (c *Catalog) AvailableMethods(_ context.Context, o *order.Order, display Display) ([]Method, error) {
	var available []Method
	for _, m := range c.methods {
		if m.AvailableFor(o.ShipAddress, display) {
			available = append(available, m)
		}
	}
	return available, nil
}

func (c *Catalog) Method(id string) (Method, error) {
	for _, m := range c.methods {
		if m.ID == id {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: %s", ErrMethodNotFound, id)
}
