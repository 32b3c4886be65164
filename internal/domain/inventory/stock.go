package inventory

import (
	"encoding/json"

	"github.com/example/ec-checkout/internal/infrastructure/store"
)

const AggregateType = "Stock"

// Stock is the on-hand count of one variant. It goes negative while units are backordered.
type Stock struct {
	VariantID string `json:"variant_id"`
	OnHand    int    `json:"on_hand"`
	Version   int    `json:"version"`
}

// Aggregate interface implementation
func (s *Stock) GetID() string    { return s.VariantID }
func (s *Stock) GetVersion() int  { return s.Version }
func (s *Stock) SetVersion(v int) { s.Version = v }

// ApplyEvent applies a single event to the stock state (implements aggregate.Aggregate)
func (s *Stock) ApplyEvent(event store.Event) error {
	switch event.EventType {
	case EventStockAdded:
		var data StockAdded
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		s.VariantID = data.VariantID
		s.OnHand += data.Quantity
	case EventStockSold:
		var data StockSold
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		s.VariantID = data.VariantID
		s.OnHand -= data.Quantity
	case EventStockRestocked:
		var data StockRestocked
		if err := json.Unmarshal(event.Data, &data); err != nil {
			return err
		}
		s.VariantID = data.VariantID
		s.OnHand += data.Quantity
	}
	s.Version = event.Version
	return nil
}

// backorderFor splits a demand of quantity into the part on_hand cannot cover.
func (s *Stock) backorderFor(quantity int) int {
	available := max(s.OnHand, 0)
	if available >= quantity {
		return 0
	}
	return quantity - available
}
