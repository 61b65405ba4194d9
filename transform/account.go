// Package transform maps raw Pacifica responses onto the Hyperliquid
// compatibility shapes. All functions are pure.
package transform

import (
	"strings"

	json "github.com/goccy/go-json"
	"github.com/shopspring/decimal"

	"github.com/dwdwow/pacifica-go/constants"
	"github.com/dwdwow/pacifica-go/types"
)

// notional returns |amount * price| as a normalized decimal string.
// Unparseable inputs collapse to zero rather than poisoning the whole
// response.
func notional(amount, price string) decimal.Decimal {
	a, err := decimal.NewFromString(amount)
	if err != nil {
		return decimal.Zero
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return decimal.Zero
	}
	return a.Mul(p).Abs()
}

func decimalString(d decimal.Decimal) string {
	s := d.String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimRight(s, ".")
	}
	if s == "" || s == "-0" {
		s = "0"
	}
	return s
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// UserState merges an account summary and its positions into the user
// state shape. Position leverage must already be resolved onto the raw
// positions; entries still missing it render the conventional display
// value without claiming the exchange reported it.
func UserState(account types.RawAccount, positions []types.RawPosition) types.UserState {
	assetPositions := make([]types.AssetPosition, 0, len(positions))
	totalNtl := decimal.Zero

	for _, pos := range positions {
		// Signed size keeps the exchange's exact digits: shorts get a
		// minus prefix, never a reformat.
		szi := pos.Amount
		if pos.Side != "bid" {
			szi = "-" + pos.Amount
		}

		ntl := notional(pos.Amount, pos.EntryPrice)
		totalNtl = totalNtl.Add(ntl)

		levType := "cross"
		var rawUsd *string
		if pos.Isolated {
			levType = "isolated"
			margin := orDefault(pos.Margin, "0")
			rawUsd = &margin
		}
		levValue := constants.DisplayLeverage
		if pos.Leverage != nil {
			levValue = *pos.Leverage
		}

		assetPositions = append(assetPositions, types.AssetPosition{
			Position: types.Position{
				Coin:    pos.Symbol,
				EntryPx: pos.EntryPrice,
				Leverage: types.Leverage{
					Type:   levType,
					Value:  levValue,
					RawUsd: rawUsd,
				},
				LiquidationPx:  pos.LiquidationPrice,
				MarginUsed:     orDefault(pos.Margin, "0"),
				MaxTradeSz:     orDefault(pos.MaxTradeSize, "0"),
				PositionValue:  decimalString(ntl),
				ReturnOnEquity: orDefault(pos.Roe, "0"),
				Szi:            szi,
				UnrealizedPnl:  orDefault(pos.UnrealizedPnl, "0"),
			},
		})
	}

	totalNtlPos := "0"
	if len(positions) > 0 {
		totalNtlPos = decimalString(totalNtl)
	}

	summary := types.MarginSummary{
		AccountValue:    orDefault(account.AccountEquity, "0"),
		TotalMarginUsed: orDefault(account.TotalMarginUsed, "0"),
		TotalNtlPos:     totalNtlPos,
		TotalRawUsd:     orDefault(account.Balance, "0"),
	}
	withSummary := summary
	withSummary.Withdrawable = orDefault(account.AvailableToWithdraw, "0")

	return types.UserState{
		AssetPositions:             assetPositions,
		CrossMaintenanceMarginUsed: orDefault(account.CrossMMR, "0"),
		CrossMarginSummary:         summary,
		MarginSummary:              withSummary,
		Withdrawable:               orDefault(account.AvailableToWithdraw, "0"),
	}
}

// OpenOrders maps raw open orders to the open order shape. The limit price
// prefers the initial price, and the size field carries the remaining
// amount while origSz keeps the full original size.
func OpenOrders(orders []types.RawOrder) []types.OpenOrder {
	out := make([]types.OpenOrder, 0, len(orders))
	for _, o := range orders {
		side := types.SideAsk
		if o.Side == "bid" {
			side = types.SideBid
		}
		out = append(out, types.OpenOrder{
			Coin:      o.Symbol,
			LimitPx:   orDefault(orDefault(o.InitialPrice, o.Price), "0"),
			Oid:       o.OrderID,
			OrigSz:    orDefault(orDefault(o.Amount, o.InitialAmount), "0"),
			Side:      side,
			Sz:        orDefault(orDefault(o.RemainingAmount, o.Amount), "0"),
			Timestamp: o.CreatedAt,
			Cloid:     o.ClientOrderID,
		})
	}
	return out
}

// UserFills maps trade history to the fills shape. A non-zero oid keeps
// only fills of that order; no matches is an empty slice, not an error.
func UserFills(trades []types.RawTrade, oid int64) []types.Fill {
	out := make([]types.Fill, 0, len(trades))
	for _, t := range trades {
		if oid != 0 && t.OrderID != oid {
			continue
		}

		side := types.SideAsk
		switch t.Side {
		case "bid", "long_open", "short_close":
			side = types.SideBid
		}

		dir := "Trade"
		if strings.Contains(t.Side, "open") {
			dir = "Open"
		} else if strings.Contains(t.Side, "close") {
			dir = "Close"
		}

		out = append(out, types.Fill{
			Coin:          t.Symbol,
			Px:            t.Price,
			Sz:            t.Amount,
			Side:          side,
			Time:          t.CreatedAt,
			StartPosition: orDefault(t.StartPosition, "0"),
			Dir:           dir,
			ClosedPnl:     orDefault(t.Pnl, "0"),
			Hash:          t.TxHash,
			Oid:           t.OrderID,
			Crossed:       t.EventType == "fulfill_taker",
			Fee:           orDefault(t.Fee, "0"),
			Tid:           t.HistoryID,
			Liquidation:   t.IsLiquidation,
			Cloid:         t.ClientOrderID,
		})
	}
	return out
}

// UserFunding maps funding history to the funding payment shape. Signs
// pass through untouched.
func UserFunding(fundings []types.RawFunding) []types.UserFunding {
	out := make([]types.UserFunding, 0, len(fundings))
	for _, f := range fundings {
		out = append(out, types.UserFunding{
			Coin:        f.Symbol,
			FundingRate: orDefault(f.FundingRate, "0"),
			Szi:         orDefault(f.PositionSize, "0"),
			Type:        "funding",
			Time:        f.Timestamp,
			Hash:        f.TxHash,
			Usdc:        orDefault(f.FundingAmount, "0"),
		})
	}
	return out
}

// NonFundingLedgerUpdates filters balance history down to deposit,
// withdraw and transfer movements in the ledger update shape. Events
// arrive newest first, so iteration stops at the first event older than
// startTime. Events newer than endTime are skipped; a zero endTime means
// no upper bound. Order is preserved.
func NonFundingLedgerUpdates(events []types.RawBalanceEvent, startTime, endTime int64) []types.LedgerUpdate {
	out := make([]types.LedgerUpdate, 0, len(events))
	for _, ev := range events {
		if ev.CreatedAt < startTime {
			break
		}
		if endTime > 0 && ev.CreatedAt > endTime {
			continue
		}
		if !constants.LedgerEventTypes[ev.EventType] {
			continue
		}
		kind := ev.EventType
		switch kind {
		case "deposit_release":
			kind = "deposit"
		case "subaccount_transfer":
			kind = "transfer"
		}
		out = append(out, types.LedgerUpdate{
			Time: ev.CreatedAt,
			Hash: ev.TxHash,
			Delta: types.LedgerDelta{
				Type: kind,
				Coin: "USDC",
				Usdc: orDefault(ev.Amount, "0"),
			},
		})
	}
	return out
}

// AllMids maps price snapshots to a symbol-to-mid map. The mid comes from
// the first available of: reported mid, bid/ask midpoint, last price.
func AllMids(prices []types.RawPrice) map[string]string {
	mids := make(map[string]string, len(prices))
	for _, p := range prices {
		if p.Symbol == "" {
			continue
		}
		switch {
		case p.MidPrice != nil:
			mids[p.Symbol] = *p.MidPrice
		case p.Mid != nil:
			mids[p.Symbol] = *p.Mid
		case p.Bid != nil && p.Ask != nil:
			bid, berr := decimal.NewFromString(*p.Bid)
			ask, aerr := decimal.NewFromString(*p.Ask)
			if berr != nil || aerr != nil {
				mids[p.Symbol] = "0"
				continue
			}
			mids[p.Symbol] = decimalString(bid.Add(ask).Div(decimal.NewFromInt(2)))
		case p.Price != nil:
			mids[p.Symbol] = *p.Price
		default:
			mids[p.Symbol] = "0"
		}
	}
	return mids
}

// Meta maps market descriptors to the compact meta universe.
func Meta(markets []types.RawMarket) types.Meta {
	universe := make([]types.AssetMeta, 0, len(markets))
	for _, m := range markets {
		szDecimals := constants.DefaultSzDecimals
		if m.SizeDecimals != nil {
			szDecimals = *m.SizeDecimals
		}
		maxLev := constants.DefaultMetaMaxLeverage
		if lev := m.MaxLev(); lev != nil {
			maxLev = *lev
		}
		marginMode := "cross"
		if m.IsolatedOnly {
			marginMode = "isolated"
		}
		universe = append(universe, types.AssetMeta{
			Name:           m.Symbol,
			SzDecimals:     szDecimals,
			MaxLeverage:    maxLev,
			OnlyIsolated:   m.IsolatedOnly,
			MarginMode:     marginMode,
			Dex:            "pacifica",
			NormalizedName: strings.ToUpper(m.Symbol),
		})
	}
	return types.Meta{Universe: universe}
}

// UserRateLimit maps the API usage payload.
func UserRateLimit(r types.RawRateLimit) types.RateLimit {
	requestsCap := r.RequestsCap
	if requestsCap == 0 {
		requestsCap = 1000
	}
	return types.RateLimit{
		NRequestsUsed: r.RequestsUsed,
		NRequestsCap:  requestsCap,
		ResetTime:     r.ResetTime,
	}
}

// ParseLeverageSettings extracts per-symbol leverage overrides from the
// account settings payload, which the exchange has served both as a
// symbol-keyed object and as a list of entries.
func ParseLeverageSettings(data json.RawMessage) map[string]int {
	out := map[string]int{}
	if len(data) == 0 {
		return out
	}

	var asMap map[string]struct {
		Leverage *int `json:"leverage"`
	}
	if err := json.Unmarshal(data, &asMap); err == nil {
		for symbol, entry := range asMap {
			if entry.Leverage != nil {
				out[symbol] = *entry.Leverage
			}
		}
		return out
	}

	var asList []struct {
		Symbol   string `json:"symbol"`
		Leverage *int   `json:"leverage"`
	}
	if err := json.Unmarshal(data, &asList); err == nil {
		for _, entry := range asList {
			if entry.Symbol != "" && entry.Leverage != nil {
				if _, seen := out[entry.Symbol]; !seen {
					out[entry.Symbol] = *entry.Leverage
				}
			}
		}
	}
	return out
}

// ResolveLeverage stamps each position with its effective leverage:
// account settings override, then the market's cap. Positions matching
// neither are left as-is.
func ResolveLeverage(positions []types.RawPosition, settings map[string]int, markets []types.RawMarket) {
	maxLev := make(map[string]int, len(markets))
	for _, m := range markets {
		if lev := m.MaxLev(); lev != nil && m.Symbol != "" {
			maxLev[m.Symbol] = *lev
		}
	}
	for i := range positions {
		if positions[i].Leverage != nil {
			continue
		}
		if lev, ok := settings[positions[i].Symbol]; ok {
			positions[i].Leverage = &lev
		} else if lev, ok := maxLev[positions[i].Symbol]; ok {
			positions[i].Leverage = &lev
		}
	}
}
