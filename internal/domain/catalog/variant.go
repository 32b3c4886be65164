package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/ec-checkout/internal/domain/aggregate"
	"github.com/example/ec-checkout/internal/domain/money"
	"github.com/example/ec-checkout/internal/infrastructure/store"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const AggregateType = "Variant"

var (
	ErrVariantNotFound = errors.New("variant not found")
	ErrNoPrice         = errors.New("variant has no price in currency")
	ErrInvalidPrice    = errors.New("price must not be negative")
	ErrInvalidName     = errors.New("name is required")
)

// Variant is a sellable SKU with one price per currency.
type Variant struct {
	ID        string                     `json:"id"`
	SKU       string                     `json:"sku"`
	Name      string                     `json:"name"`
	Prices    map[string]decimal.Decimal `json:"prices"`
	IsDeleted bool                       `json:"is_deleted,omitempty"`
	CreatedAt time.Time                  `json:"created_at"`
	UpdatedAt time.Time                  `json:"updated_at"`
	Version   int                        `json:"version"`
}

// Aggregate interface implementation
func (v *Variant) GetID() string    { return v.ID }
func (v *Variant) GetVersion() int  { return v.Version }
func (v *Variant) SetVersion(n int) { v.Version = n }

// ApplyEvent applies a single event to the variant state (implements aggregate.Aggregate)
func (v *Variant) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventVariantCreated:
		var data VariantCreated
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		v.ID = data.VariantID
		v.SKU = data.SKU
		v.Name = data.Name
		v.Prices = data.Prices
		v.CreatedAt = data.CreatedAt
		v.UpdatedAt = data.CreatedAt
	case EventVariantPriceSet:
		var data VariantPriceSet
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		if v.Prices == nil {
			v.Prices = make(map[string]decimal.Decimal)
		}
		v.Prices[data.Currency] = data.Amount
		v.UpdatedAt = data.UpdatedAt
	case EventVariantDeleted:
		var data VariantDeleted
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		v.IsDeleted = true
		v.UpdatedAt = data.DeletedAt
	}
	v.Version = event.Version
	return nil
}

// PriceIn returns the variant's price in currency.
func (v *Variant) PriceIn(currency string) (decimal.Decimal, error) {
	price, ok := v.Prices[strings.ToUpper(currency)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s %s", ErrNoPrice, v.ID, currency)
	}
	return price, nil
}

type Service struct {
	eventStore store.EventStoreInterface
}

func NewService(es store.EventStoreInterface) *Service {
	return &Service{eventStore: es}
}

func (s *Service) Create(ctx context.Context, sku, name string, prices map[string]decimal.Decimal) (*Variant, error) {
	if strings.TrimSpace(name) == "" {
		return nil, ErrInvalidName
	}
	normalized := make(map[string]decimal.Decimal, len(prices))
	for code, amount := range prices {
		if amount.IsNegative() {
			return nil, ErrInvalidPrice
		}
		c, err := money.ValidateCurrency(code)
		if err != nil {
			return nil, err
		}
		normalized[c] = amount
	}

	event := VariantCreated{
		VariantID: uuid.New().String(),
		SKU:       sku,
		Name:      name,
		Prices:    normalized,
		CreatedAt: time.Now(),
	}

	stored, err := s.eventStore.Append(ctx, event.VariantID, AggregateType, EventVariantCreated, event)
	if err != nil {
		return nil, err
	}

	v := &Variant{}
	if err := v.ApplyEvent(*stored); err != nil {
		return nil, err
	}
	return v, nil
}

// Get loads a live variant; deleted or unknown ids are ErrVariantNotFound.
func (s *Service) Get(ctx context.Context, variantID string) (*Variant, error) {
	v, found, err := aggregate.LoadAggregate(ctx, s.eventStore, variantID, func() *Variant { return &Variant{} })
	if err != nil {
		return nil, err
	}
	if !found || v.IsDeleted {
		return nil, fmt.Errorf("%w: %s", ErrVariantNotFound, variantID)
	}
	return v, nil
}

func (s *Service) SetPrice(ctx context.Context, variantID, currency string, amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrInvalidPrice
	}
	code, err := money.ValidateCurrency(currency)
	if err != nil {
		return err
	}
	v, err := s.Get(ctx, variantID)
	if err != nil {
		return err
	}

	stored, err := s.eventStore.Append(ctx, variantID, AggregateType, EventVariantPriceSet, VariantPriceSet{
		VariantID: variantID,
		Currency:  code,
		Amount:    amount,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return err
	}
	if err := v.ApplyEvent(*stored); err != nil {
		return err
	}
	return aggregate.MaybeCreateSnapshot(ctx, s.eventStore, v, AggregateType)
}

func (s *Service) Delete(ctx context.Context, variantID string) error {
	if _, err := s.Get(ctx, variantID); err != nil {
		return err
	}
	_, err := s.eventStore.Append(ctx, variantID, AggregateType, EventVariantDeleted, VariantDeleted{
		VariantID: variantID,
		DeletedAt: time.Now(),
	})
	return err
}

// Price resolves the price of a variant in currency.
func (s *Service) Price(ctx context.Context, variantID, currency string) (decimal.Decimal, error) {
	v, err := s.Get(ctx, variantID)
	if err != nil {
		return decimal.Zero, err
	}
	return v.PriceIn(currency)
}
