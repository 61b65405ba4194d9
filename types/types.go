// Package types provides type definitions for the Pacifica SDK.
package types

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Side represents the order side in compatibility responses
type Side string

const (
	// SideAsk represents a sell order
	SideAsk Side = "A"
	// SideBid represents a buy order
	SideBid Side = "B"
)

// Tif represents Time In Force for limit orders
type Tif string

const (
	// TifGtc is Good Till Cancel
	TifGtc Tif = "Gtc"
	// TifIoc is Immediate Or Cancel
	TifIoc Tif = "Ioc"
	// TifAlo is Add Liquidity Only (maker-only)
	TifAlo Tif = "Alo"
	// TifTob is Top Of Book
	TifTob Tif = "Tob"
)

// LimitOrderType represents a limit order configuration
type LimitOrderType struct {
	Tif Tif `json:"tif"`
}

// MarketOrderType represents a market order configuration.
// SlippagePercent is a formatted decimal string ("0.5" = 0.5%); empty means
// the default tolerance.
type MarketOrderType struct {
	SlippagePercent string `json:"slippage_percent,omitempty"`
}

// OrderType represents the order kind as a tagged variant (limit or market).
// Exactly one field must be set.
type OrderType struct {
	Limit  *LimitOrderType  `json:"limit,omitempty"`
	Market *MarketOrderType `json:"market,omitempty"`
}

// OrderTypeFromString normalizes a legacy string order kind ("limit" or
// "market", case-insensitive) into the tagged variant form.
func OrderTypeFromString(kind string) (OrderType, error) {
	switch strings.ToLower(kind) {
	case "limit":
		return OrderType{Limit: &LimitOrderType{Tif: TifGtc}}, nil
	case "market":
		return OrderType{Market: &MarketOrderType{}}, nil
	default:
		return OrderType{}, fmt.Errorf("unknown order type: %s", kind)
	}
}

// OrderRequest represents a request to place an order
type OrderRequest struct {
	Coin       string       `json:"coin"`
	IsBuy      bool         `json:"is_buy"`
	Sz         float64      `json:"sz"`
	LimitPx    float64      `json:"limit_px"`
	OrderType  OrderType    `json:"order_type"`
	ReduceOnly bool         `json:"reduce_only"`
	Cloid      string       `json:"cloid,omitempty"`
	Builder    *BuilderInfo `json:"builder,omitempty"`
}

// CancelRequest represents a request to cancel an order.
// Exactly one of Oid and Cloid must be set.
type CancelRequest struct {
	Coin  string `json:"coin"`
	Oid   int64  `json:"oid,omitempty"`
	Cloid string `json:"cloid,omitempty"`
}

// LeverageUpdate represents a single entry of a batch leverage update
type LeverageUpdate struct {
	Coin     string `json:"coin"`
	Leverage int    `json:"leverage"`
	IsCross  bool   `json:"is_cross"`
}

// BuilderInfo represents builder fee attribution
type BuilderInfo struct {
	B string `json:"b"` // builder address
	F int    `json:"f"` // fee in tenths of basis points
}

// NewClientOrderID returns a fresh client order id in the 36-character
// UUID format the exchange requires.
func NewClientOrderID() string {
	return uuid.NewString()
}

// NormalizeClientOrderID returns a usable client order id. Empty input gets
// a fresh id. Legacy 0x-prefixed hex tokens are not accepted upstream, so
// they are silently replaced with a fresh id rather than rejected. Any other
// non-empty value passes through unchanged.
func NormalizeClientOrderID(cloid string) string {
	if cloid == "" || strings.HasPrefix(cloid, "0x") {
		return NewClientOrderID()
	}
	return cloid
}

// Leverage represents position leverage
type Leverage struct {
	Type   string  `json:"type"` // "cross" or "isolated"
	Value  int     `json:"value"`
	RawUsd *string `json:"rawUsd"` // only for isolated
}

// Position represents a trading position
type Position struct {
	Coin           string   `json:"coin"`
	EntryPx        string   `json:"entryPx"`
	Leverage       Leverage `json:"leverage"`
	LiquidationPx  *string  `json:"liquidationPx"`
	MarginUsed     string   `json:"marginUsed"`
	MaxTradeSz     string   `json:"maxTradeSz"`
	PositionValue  string   `json:"positionValue"`
	ReturnOnEquity string   `json:"returnOnEquity"`
	Szi            string   `json:"szi"`
	UnrealizedPnl  string   `json:"unrealizedPnl"`
}

// AssetPosition represents an asset position wrapper
type AssetPosition struct {
	Position Position `json:"position"`
}

// MarginSummary represents margin summary information.
// Withdrawable is only populated inside the top-level marginSummary block.
type MarginSummary struct {
	AccountValue    string `json:"accountValue"`
	TotalMarginUsed string `json:"totalMarginUsed"`
	TotalNtlPos     string `json:"totalNtlPos"`
	TotalRawUsd     string `json:"totalRawUsd"`
	Withdrawable    string `json:"withdrawable,omitempty"`
}

// UserState represents user trading state
type UserState struct {
	AssetPositions             []AssetPosition `json:"assetPositions"`
	CrossMaintenanceMarginUsed string          `json:"crossMaintenanceMarginUsed"`
	CrossMarginSummary         MarginSummary   `json:"crossMarginSummary"`
	MarginSummary              MarginSummary   `json:"marginSummary"`
	Withdrawable               string          `json:"withdrawable"`
}

// OpenOrder represents an open order
type OpenOrder struct {
	Coin      string  `json:"coin"`
	LimitPx   string  `json:"limitPx"`
	Oid       int64   `json:"oid"`
	OrigSz    string  `json:"origSz"`
	Side      Side    `json:"side"`
	Sz        string  `json:"sz"`
	Timestamp int64   `json:"timestamp"`
	Cloid     *string `json:"cloid"`
}

// Fill represents a trade fill
type Fill struct {
	Coin          string  `json:"coin"`
	Px            string  `json:"px"`
	Sz            string  `json:"sz"`
	Side          Side    `json:"side"`
	Time          int64   `json:"time"`
	StartPosition string  `json:"startPosition"`
	Dir           string  `json:"dir"`
	ClosedPnl     string  `json:"closedPnl"`
	Hash          string  `json:"hash"`
	Oid           int64   `json:"oid"`
	Crossed       bool    `json:"crossed"`
	Fee           string  `json:"fee"`
	Tid           int64   `json:"tid"`
	Liquidation   bool    `json:"liquidation"`
	Cloid         *string `json:"cloid"`
}

// UserFunding represents a funding payment event
type UserFunding struct {
	Coin        string `json:"coin"`
	FundingRate string `json:"fundingRate"`
	Szi         string `json:"szi"`
	Type        string `json:"type"`
	Time        int64  `json:"time"`
	Hash        string `json:"hash"`
	Usdc        string `json:"usdc"`
}

// LedgerDelta describes the balance movement of a ledger update
type LedgerDelta struct {
	Type string `json:"type"`
	Coin string `json:"coin"`
	Usdc string `json:"usdc"`
}

// LedgerUpdate represents a non-funding ledger update
type LedgerUpdate struct {
	Time  int64       `json:"time"`
	Hash  string      `json:"hash"`
	Delta LedgerDelta `json:"delta"`
}

// AssetMeta represents one market in the compat meta universe
type AssetMeta struct {
	Name           string `json:"name"`
	SzDecimals     int    `json:"szDecimals"`
	MaxLeverage    int    `json:"maxLeverage"`
	OnlyIsolated   bool   `json:"onlyIsolated"`
	MarginMode     string `json:"marginMode"`
	Dex            string `json:"dex"`
	NormalizedName string `json:"normalized_name"`
}

// Meta represents exchange metadata
type Meta struct {
	Universe []AssetMeta `json:"universe"`
}

// MarketEntry is the detailed per-market descriptor
type MarketEntry struct {
	Name            string `json:"name"`
	SzDecimals      int    `json:"szDecimals"`
	MaxLeverage     int    `json:"maxLeverage"`
	OnlyIsolated    bool   `json:"onlyIsolated"`
	LotSize         string `json:"lotSize"`
	TickSize        string `json:"tickSize"`
	MinTick         string `json:"minTick"`
	MaxTick         string `json:"maxTick"`
	MinOrderSize    string `json:"minOrderSize"`
	MaxOrderSize    string `json:"maxOrderSize"`
	FundingRate     string `json:"fundingRate"`
	NextFundingRate string `json:"nextFundingRate"`
	CreatedAt       *int64 `json:"createdAt"`
}

// L2Level represents a level in the L2 order book
type L2Level struct {
	N  int    `json:"n"`
	Px string `json:"px"`
	Sz string `json:"sz"`
}

// L2Book represents L2 order book data.
// Levels holds a single [bids, asks] pair, each side ranked 1-based.
type L2Book struct {
	Coin   string         `json:"coin"`
	Levels [][2][]L2Level `json:"levels"`
	Time   int64          `json:"time"`
}

// Candle represents an OHLCV bar
type Candle struct {
	T int64  `json:"T"`
	C string `json:"c"`
	H string `json:"h"`
	L string `json:"l"`
	O string `json:"o"`
	V string `json:"v"`
	S string `json:"s"`
	I string `json:"i"`
	N int    `json:"n"`
}

// FundingRate represents a market funding rate
type FundingRate struct {
	Coin        string `json:"coin"`
	FundingRate string `json:"fundingRate"`
	Premium     string `json:"premium"`
	Time        int64  `json:"time"`
}

// OpenInterest represents open interest for one market
type OpenInterest struct {
	Oi      string `json:"oi"`
	OiValue string `json:"oiValue"`
}

// RateLimit represents API rate limit usage
type RateLimit struct {
	NRequestsUsed int   `json:"nRequestsUsed"`
	NRequestsCap  int   `json:"nRequestsCap"`
	ResetTime     int64 `json:"resetTime"`
}
