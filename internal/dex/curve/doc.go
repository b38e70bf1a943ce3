// Package curve implements the per-token bonding curve that prices a launch
// before it graduates to the order book and the secondary AMM.
//
// The curve is linear in cumulative supply sold:
//
//	price(s) = 0.0001 + slope * s * 1e-18
//
// All arithmetic is carried out on integer atto units (1e-18 of a base unit),
// so every implementation computes identical quotes. The cost of buying d
// tokens from supply s is the exact definite integral of price over [s, s+d]:
//
//	cost_atto(s, d) = 1e14*d + slope*d*(2s+d)/2
//
// Buys are charged the ceiling of cost_atto/1e18 base units, sells are paid
// the floor, so rounding always stays inside the pool.
//
// Key Types and Functions:
//
//   - Pool: reserve, price and volume state of one token while it trades on the curve.
//   - Pool.Quote(): prices a buy or sell without touching state.
//   - Pool.Apply(): commits a quote to the pool.
//   - SpotPrice(), CostAtto(): the pure pricing functions.
//   - VolumeWindow: hourly buckets backing the rolling 24h volume.
//
// Files:
//   - pricing.go: pricing functions and rounding helpers.
//   - pool.go: Pool state, quoting and the Bonding -> Graduated phase machine.
//   - volume.go: rolling 24h volume.
package curve
