package types

import (
	"fmt"

	json "github.com/goccy/go-json"
)

// Raw wire schemas as the exchange returns them, before translation to the
// compatibility shapes above.

// RawAccount is the account summary payload
type RawAccount struct {
	Balance             string `json:"balance"`
	AccountEquity       string `json:"account_equity"`
	AvailableToWithdraw string `json:"available_to_withdraw"`
	TotalMarginUsed     string `json:"total_margin_used"`
	CrossMMR            string `json:"cross_mmr"`
}

// RawPosition is one open position.
// Leverage is nil when the exchange omits it; callers resolve it from
// account settings or market limits.
type RawPosition struct {
	Symbol           string  `json:"symbol"`
	Side             string  `json:"side"` // "bid" or "ask"
	Amount           string  `json:"amount"`
	EntryPrice       string  `json:"entry_price"`
	Isolated         bool    `json:"isolated"`
	Leverage         *int    `json:"leverage"`
	LiquidationPrice *string `json:"liquidation_price"`
	Margin           string  `json:"margin"`
	MaxTradeSize     string  `json:"max_trade_size"`
	Roe              string  `json:"roe"`
	UnrealizedPnl    string  `json:"unrealized_pnl"`
}

// RawOrder is one open order
type RawOrder struct {
	Symbol          string  `json:"symbol"`
	Side            string  `json:"side"`
	OrderID         int64   `json:"order_id"`
	Price           string  `json:"price"`
	InitialPrice    string  `json:"initial_price"`
	Amount          string  `json:"amount"`
	InitialAmount   string  `json:"initial_amount"`
	RemainingAmount string  `json:"remaining_amount"`
	CreatedAt       int64   `json:"created_at"`
	ClientOrderID   *string `json:"client_order_id"`
}

// RawTrade is one fill from trade history
type RawTrade struct {
	Symbol        string  `json:"symbol"`
	Side          string  `json:"side"` // bid, ask, long_open, long_close, short_open, short_close
	Price         string  `json:"price"`
	Amount        string  `json:"amount"`
	CreatedAt     int64   `json:"created_at"`
	StartPosition string  `json:"start_position"`
	Pnl           string  `json:"pnl"`
	TxHash        string  `json:"tx_hash"`
	OrderID       int64   `json:"order_id"`
	EventType     string  `json:"event_type"`
	Fee           string  `json:"fee"`
	HistoryID     int64   `json:"history_id"`
	IsLiquidation bool    `json:"is_liquidation"`
	ClientOrderID *string `json:"client_order_id"`
}

// RawFunding is one funding payment
type RawFunding struct {
	Symbol        string `json:"symbol"`
	FundingRate   string `json:"funding_rate"`
	PositionSize  string `json:"position_size"`
	Timestamp     int64  `json:"timestamp"`
	TxHash        string `json:"tx_hash"`
	FundingAmount string `json:"funding_amount"`
}

// RawBalanceEvent is one balance-history entry
type RawBalanceEvent struct {
	EventType string `json:"event_type"`
	Amount    string `json:"amount"`
	CreatedAt int64  `json:"created_at"`
	TxHash    string `json:"tx_hash"`
}

// RawMarket is one market descriptor. The exchange has served the leverage
// cap under both max_leverage and maxLeverage; MaxLev resolves whichever is
// present.
type RawMarket struct {
	Symbol          string  `json:"symbol"`
	SizeDecimals    *int    `json:"size_decimals"`
	MaxLeverage     *int    `json:"max_leverage"`
	MaxLeverageAlt  *int    `json:"maxLeverage"`
	IsolatedOnly    bool    `json:"isolated_only"`
	LotSize         string  `json:"lot_size"`
	TickSize        string  `json:"tick_size"`
	MinTick         string  `json:"min_tick"`
	MaxTick         string  `json:"max_tick"`
	MinOrderSize    string  `json:"min_order_size"`
	MaxOrderSize    string  `json:"max_order_size"`
	FundingRate     string  `json:"funding_rate"`
	NextFundingRate string  `json:"next_funding_rate"`
	CreatedAt       *int64  `json:"created_at"`
}

// MaxLev returns the leverage cap under either key, nil when absent.
func (m *RawMarket) MaxLev() *int {
	if m.MaxLeverage != nil {
		return m.MaxLeverage
	}
	return m.MaxLeverageAlt
}

// RawPrice is one market price snapshot
type RawPrice struct {
	Symbol   string  `json:"symbol"`
	Mid      *string `json:"mid"`
	MidPrice *string `json:"mid_price"`
	Bid      *string `json:"bid"`
	Ask      *string `json:"ask"`
	Price    *string `json:"price"`
}

// RawBookLevel is one order book level. The exchange has served levels both
// as {"price": ..., "size": ...} objects and as [price, size] pairs, so
// decoding accepts either.
type RawBookLevel struct {
	Price string
	Size  string
}

func (l *RawBookLevel) UnmarshalJSON(data []byte) error {
	var obj struct {
		Price string `json:"price"`
		Size  string `json:"size"`
	}
	if err := json.Unmarshal(data, &obj); err == nil && (obj.Price != "" || obj.Size != "") {
		l.Price = obj.Price
		l.Size = obj.Size
		return nil
	}
	var pair []string
	if err := json.Unmarshal(data, &pair); err == nil && len(pair) >= 2 {
		l.Price = pair[0]
		l.Size = pair[1]
		return nil
	}
	return fmt.Errorf("unrecognized book level shape: %s", data)
}

// RawBook is an order book snapshot
type RawBook struct {
	Symbol    string         `json:"symbol"`
	Bids      []RawBookLevel `json:"bids"`
	Asks      []RawBookLevel `json:"asks"`
	Timestamp int64          `json:"timestamp"`
}

// RawCandle is one OHLCV bar
type RawCandle struct {
	Timestamp   int64  `json:"timestamp"`
	Open        string `json:"open"`
	High        string `json:"high"`
	Low         string `json:"low"`
	Close       string `json:"close"`
	Volume      string `json:"volume"`
	TradesCount int    `json:"trades_count"`
}

// RawFundingRate is one market funding rate
type RawFundingRate struct {
	Symbol          string `json:"symbol"`
	FundingRate     string `json:"funding_rate"`
	Premium         string `json:"premium"`
	NextFundingTime int64  `json:"next_funding_time"`
}

// RawOpenInterest is open interest for one market
type RawOpenInterest struct {
	Symbol            string `json:"symbol"`
	OpenInterest      string `json:"open_interest"`
	OpenInterestValue string `json:"open_interest_value"`
}

// RawRateLimit is the API usage payload
type RawRateLimit struct {
	RequestsUsed int   `json:"requests_used"`
	RequestsCap  int   `json:"requests_cap"`
	ResetTime    int64 `json:"reset_time"`
}
