// Package strategy holds what every pluggable business rule shares.
package strategy

// StrategyType groups rules that compete in the same chain
type StrategyType string

// StrategyTypeDiscount marks the rules of the discount resolver chain
const StrategyTypeDiscount StrategyType = "discount"

func (t StrategyType) String() string {
	return string(t)
}

// Strategy identifies a rule in logs and rule listings
type Strategy interface {
	Name() string
	Type() StrategyType
	Description() string
}

// BaseStrategy is embedded by concrete rules
type BaseStrategy struct {
	name         string
	description  string
	strategyType StrategyType
}

// NewBaseStrategy creates a BaseStrategy
func NewBaseStrategy(name string, strategyType StrategyType, description string) BaseStrategy {
	return BaseStrategy{name: name, strategyType: strategyType, description: description}
}

func (s BaseStrategy) Name() string { return s.name }

func (s BaseStrategy) Type() StrategyType { return s.strategyType }

func (s BaseStrategy) Description() string { return s.description }
