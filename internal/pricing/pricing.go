package pricing

import "github.com/ads-marketplace/tactics/internal/models"

// DefaultSignalSurcharge is the flat CPM addend applied when a tactic
// references a signal.
const DefaultSignalSurcharge = 2.50

// SignalPricer returns the CPM surcharge for a signal.
type SignalPricer interface {
	SignalCPM(signalID string) float64
}

// FlatSignalPricer charges the same surcharge for every signal.
type FlatSignalPricer float64

func (p FlatSignalPricer) SignalCPM(string) float64 {
	return float64(p)
}

type Calculator struct {
	signals SignalPricer
}

func NewCalculator(signals SignalPricer) *Calculator {
	if signals == nil {
		signals = FlatSignalPricer(DefaultSignalSurcharge)
	}
	return &Calculator{signals: signals}
}

// Effective computes the effective pricing for a base CPM. signalID may be
// nil or empty when the tactic has no signal.
func (c *Calculator) Effective(cpm float64, signalID *string, currency string) models.EffectivePricing {
	p := models.EffectivePricing{
		CPM:      cpm,
		TotalCPM: cpm,
		Currency: currency,
	}
	if signalID != nil && *signalID != "" {
		cost := c.signals.SignalCPM(*signalID)
		p.SignalCost = &cost
		p.TotalCPM = cpm + cost
	}
	return p
}
