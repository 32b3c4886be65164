package order

import (
	"fmt"
	"strings"
)

type Address struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Address1  string `json:"address1"`
	Address2  string `json:"address2,omitempty"`
	City      string `json:"city"`
	Zipcode   string `json:"zipcode"`
	State     string `json:"state,omitempty"`
	Country   string `json:"country"`
	Phone     string `json:"phone"`
}

// Validate reports every missing required field at once.
func (a *Address) Validate() error {
	if a == nil {
		return fmt.Errorf("%w: address is required", ErrValidation)
	}
	var missing []string
	required := []struct{ name, value string }{
		{"first_name", a.FirstName},
		{"last_name", a.LastName},
		{"address1", a.Address1},
		{"city", a.City},
		{"zipcode", a.Zipcode},
		{"country", a.Country},
		{"phone", a.Phone},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: address missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

func (a *Address) Clone() *Address {
	if a == nil {
		return nil
	}
	c := *a
	return &c
}

func (a *Address) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}
