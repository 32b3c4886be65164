package payment

import (
	"errors"
	"fmt"
)

var ErrMethodNotFound = errors.New("payment method not found")

type Display string

const (
	DisplayBoth     Display = "both"
	DisplayFrontEnd Display = "front_end"
	DisplayBackEnd  Display = "back_end"
)

// Method is a way to pay. Methods without a Gateway are settled offline and
// their payments stay pending.
type Method struct {
	ID               string
	Name             string
	Active           bool
	DisplayOn        Display
	SupportsProfiles bool
	Gateway          Gateway
}

// Registry is the set of configured payment methods.
type Registry struct {
	methods []Method
}

func NewRegistry(methods ...Method) *Registry {
	return &Registry{methods: methods}
}

func (r *Registry) Get(id string) (Method, error) {
	for _, m := range r.methods {
		if m.ID == id {
			return m, nil
		}
	}
	return Method{}, fmt.Errorf("%w: %s", ErrMethodNotFound, id)
}

// Available lists active methods shown to the given audience.
func (r *Registry) Available(display Display) []Method {
	var out []Method
	for _, m := range r.methods {
		if !m.Active {
			continue
		}
		if m.DisplayOn == "" || m.DisplayOn == DisplayBoth || display == DisplayBoth || m.DisplayOn == display {
			out = append(out, m)
		}
	}
	return out
}
