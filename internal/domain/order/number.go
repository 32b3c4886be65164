package order

import (
	"fmt"
	"math/rand/v2"
)

// NewNumber returns a random "R" + 9 digit order number. Uniqueness is
// enforced by Repository.Create.
func NewNumber() string {
	return fmt.Sprintf("R%09d", rand.IntN(1_000_000_000))
}
