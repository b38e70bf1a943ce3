// =============================
// File: internal/launchpad/config.go
// =============================
package launchpad

import (
	"errors"
	"fmt"

	"cosmossdk.io/math"

	"github.com/rovshanmuradov/woofpad/internal/dex/curve"
	"github.com/rovshanmuradov/woofpad/internal/dex/fees"
)

// Config holds the protocol-wide parameters. Only Owner may change it.
type Config struct {
	Owner                 string         `json:"owner"`
	TokenFactory          string         `json:"token_factory"`
	FeeCollector          string         `json:"fee_collector"`
	MakerFee              math.LegacyDec `json:"maker_fee"`
	TakerFee              math.LegacyDec `json:"taker_fee"`
	QuoteTokenTotalSupply math.Int       `json:"quote_token_total_supply"`
	BondingCurveSupply    math.Int       `json:"bonding_curve_supply"`
	LPSupply              math.Int       `json:"lp_supply"`
	SecondaryAMMAddress   string         `json:"secondary_amm_address"`
	BaseTokenDenom        string         `json:"base_token_denom"`
	Enabled               bool           `json:"enabled"`
}

// Fees returns the fee schedule.
func (c Config) Fees() fees.Schedule {
	return fees.Schedule{MakerRate: c.MakerFee, TakerRate: c.TakerFee}
}

// Validate checks every field and the supply split.
func (c Config) Validate() error {
	if c.Owner == "" {
		return errors.New("owner is required")
	}
	if c.TokenFactory == "" {
		return errors.New("token_factory is required")
	}
	if c.FeeCollector == "" {
		return errors.New("fee_collector is required")
	}
	if c.SecondaryAMMAddress == "" {
		return errors.New("secondary_amm_address is required")
	}
	if c.BaseTokenDenom == "" {
		return errors.New("base_token_denom is required")
	}
	if err := c.Fees().Validate(); err != nil {
		return err
	}
	for name, v := range map[string]math.Int{
		"quote_token_total_supply": c.QuoteTokenTotalSupply,
		"bonding_curve_supply":     c.BondingCurveSupply,
		"lp_supply":                c.LPSupply,
	} {
		if v.IsNil() || v.IsNegative() {
			return fmt.Errorf("%s must be set and not negative", name)
		}
	}
	if !c.BondingCurveSupply.IsPositive() {
		return errors.New("bonding_curve_supply must be positive")
	}
	if c.BondingCurveSupply.GT(curve.MaxSupply) || c.LPSupply.GT(curve.MaxSupply) {
		return fmt.Errorf("bonding_curve_supply and lp_supply must not exceed %s", curve.MaxSupply)
	}
	if !c.BondingCurveSupply.Add(c.LPSupply).Equal(c.QuoteTokenTotalSupply) {
		return fmt.Errorf("bonding_curve_supply %s + lp_supply %s != quote_token_total_supply %s",
			c.BondingCurveSupply, c.LPSupply, c.QuoteTokenTotalSupply)
	}
	return nil
}

// ConfigUpdate is a partial update; nil fields keep their value.
type ConfigUpdate struct {
	TokenFactory          *string         `json:"token_factory,omitempty"`
	FeeCollector          *string         `json:"fee_collector,omitempty"`
	MakerFee              *math.LegacyDec `json:"maker_fee,omitempty"`
	TakerFee              *math.LegacyDec `json:"taker_fee,omitempty"`
	QuoteTokenTotalSupply *math.Int       `json:"quote_token_total_supply,omitempty"`
	BondingCurveSupply    *math.Int       `json:"bonding_curve_supply,omitempty"`
	LPSupply              *math.Int       `json:"lp_supply,omitempty"`
	SecondaryAMMAddress   *string         `json:"secondary_amm_address,omitempty"`
	Enabled               *bool           `json:"enabled,omitempty"`
}

// Apply merges u onto a copy of c. The result still has to be validated.
func (u ConfigUpdate) Apply(c Config) Config {
	if u.TokenFactory != nil {
		c.TokenFactory = *u.TokenFactory
	}
	if u.FeeCollector != nil {
		c.FeeCollector = *u.FeeCollector
	}
	if u.MakerFee != nil {
		c.MakerFee = *u.MakerFee
	}
	if u.TakerFee != nil {
		c.TakerFee = *u.TakerFee
	}
	if u.QuoteTokenTotalSupply != nil {
		c.QuoteTokenTotalSupply = *u.QuoteTokenTotalSupply
	}
	if u.BondingCurveSupply != nil {
		c.BondingCurveSupply = *u.BondingCurveSupply
	}
	if u.LPSupply != nil {
		c.LPSupply = *u.LPSupply
	}
	if u.SecondaryAMMAddress != nil {
		c.SecondaryAMMAddress = *u.SecondaryAMMAddress
	}
	if u.Enabled != nil {
		c.Enabled = *u.Enabled
	}
	return c
}

// Empty reports whether the update changes nothing.
func (u ConfigUpdate) Empty() bool {
	return u == ConfigUpdate{}
}
