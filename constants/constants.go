// Package constants provides configuration constants for the Pacifica API.
package constants

import "time"

const (
	// MainnetAPIURL is the URL for Pacifica mainnet API
	MainnetAPIURL = "https://api.pacifica.fi"

	// TestnetAPIURL is the URL for Pacifica testnet API
	TestnetAPIURL = "https://test-api.pacifica.fi"

	// DefaultTimeout is the default HTTP request timeout
	DefaultTimeout = 30 * time.Second

	// ExpiryWindowMs is the signature expiry window attached to every signed
	// request, in milliseconds. The API rejects envelopes older than this.
	ExpiryWindowMs = 5000

	// DefaultSlippagePercent is the slippage tolerance sent with market
	// orders when the caller does not supply one ("0.5" = 0.5%)
	DefaultSlippagePercent = "0.5"

	// DefaultMarketSlippage is the slippage fraction used by MarketOpen and
	// MarketClose when the caller passes 0 (5%)
	DefaultMarketSlippage = 0.05

	// DefaultSzDecimals is the size-decimals value reported for markets that
	// omit the field
	DefaultSzDecimals = 8

	// DefaultMetaMaxLeverage is the max-leverage fallback for the compat
	// meta universe
	DefaultMetaMaxLeverage = 50

	// DefaultMarketMaxLeverage is the max-leverage fallback for the detailed
	// market descriptor list
	DefaultMarketMaxLeverage = 100

	// DisplayLeverage is the conventional leverage rendered for a position
	// whose leverage could not be resolved. Display fallback only; leverage
	// resolution itself never substitutes a value.
	DisplayLeverage = 20

	// BalanceHistoryLimit is the number of recent balance events fetched
	// when building non-funding ledger updates
	BalanceHistoryLimit = 100
)

// Signature types carried in the signing header. The order endpoints pick
// between the limit and market variants based on the final payload shape.
const (
	SigTypeCreateLimitOrder  = "create_limit_order"
	SigTypeCreateMarketOrder = "create_market_order"
	SigTypeCancelOrder       = "cancel_order"
	SigTypeUpdateLeverage    = "update_leverage"
	SigTypeUpdateMarginMode  = "update_margin_mode"
	SigTypeMarginAction      = "margin_action"
)

// LedgerEventTypes is the whitelist of balance-history event kinds that
// count as non-funding ledger updates. Anything else (fees in particular)
// is excluded.
var LedgerEventTypes = map[string]bool{
	"deposit":             true,
	"deposit_release":     true,
	"withdraw":            true,
	"subaccount_transfer": true,
}
