package transform

import (
	"github.com/dwdwow/pacifica-go/constants"
	"github.com/dwdwow/pacifica-go/types"
)

// MarketMeta maps market descriptors to the detailed market list, filling
// exchange-conventional defaults for fields a market omits.
func MarketMeta(markets []types.RawMarket) []types.MarketEntry {
	out := make([]types.MarketEntry, 0, len(markets))
	for _, m := range markets {
		szDecimals := constants.DefaultSzDecimals
		if m.SizeDecimals != nil {
			szDecimals = *m.SizeDecimals
		}
		maxLev := constants.DefaultMarketMaxLeverage
		if lev := m.MaxLev(); lev != nil {
			maxLev = *lev
		}
		out = append(out, types.MarketEntry{
			Name:            m.Symbol,
			SzDecimals:      szDecimals,
			MaxLeverage:     maxLev,
			OnlyIsolated:    m.IsolatedOnly,
			LotSize:         orDefault(m.LotSize, "0.00001"),
			TickSize:        orDefault(m.TickSize, "0.01"),
			MinTick:         orDefault(m.MinTick, "0"),
			MaxTick:         orDefault(m.MaxTick, "1000000"),
			MinOrderSize:    orDefault(m.MinOrderSize, "10"),
			MaxOrderSize:    orDefault(m.MaxOrderSize, "5000000"),
			FundingRate:     orDefault(m.FundingRate, "0"),
			NextFundingRate: orDefault(m.NextFundingRate, "0"),
			CreatedAt:       m.CreatedAt,
		})
	}
	return out
}

// L2Book maps a book snapshot to the levels shape: one [bids, asks] pair,
// each side ranked 1-based from the top of book.
func L2Book(book types.RawBook) types.L2Book {
	bids := make([]types.L2Level, 0, len(book.Bids))
	for i, lvl := range book.Bids {
		bids = append(bids, types.L2Level{
			N:  i + 1,
			Px: orDefault(lvl.Price, "0"),
			Sz: orDefault(lvl.Size, "0"),
		})
	}
	asks := make([]types.L2Level, 0, len(book.Asks))
	for i, lvl := range book.Asks {
		asks = append(asks, types.L2Level{
			N:  i + 1,
			Px: orDefault(lvl.Price, "0"),
			Sz: orDefault(lvl.Size, "0"),
		})
	}
	return types.L2Book{
		Coin:   book.Symbol,
		Levels: [][2][]types.L2Level{{bids, asks}},
		Time:   book.Timestamp,
	}
}

// Candles maps OHLCV bars, stamping the requested coin and interval onto
// every bar.
func Candles(candles []types.RawCandle, coin, interval string) []types.Candle {
	out := make([]types.Candle, 0, len(candles))
	for _, c := range candles {
		out = append(out, types.Candle{
			T: c.Timestamp,
			C: orDefault(c.Close, "0"),
			H: orDefault(c.High, "0"),
			L: orDefault(c.Low, "0"),
			O: orDefault(c.Open, "0"),
			V: orDefault(c.Volume, "0"),
			S: coin,
			I: interval,
			N: c.TradesCount,
		})
	}
	return out
}

// FundingRates maps market funding rates. The time field carries the next
// funding time.
func FundingRates(rates []types.RawFundingRate) []types.FundingRate {
	out := make([]types.FundingRate, 0, len(rates))
	for _, r := range rates {
		out = append(out, types.FundingRate{
			Coin:        r.Symbol,
			FundingRate: orDefault(r.FundingRate, "0"),
			Premium:     orDefault(r.Premium, "0"),
			Time:        r.NextFundingTime,
		})
	}
	return out
}

// OpenInterest maps per-market open interest keyed by symbol.
func OpenInterest(items []types.RawOpenInterest) map[string]types.OpenInterest {
	out := make(map[string]types.OpenInterest, len(items))
	for _, item := range items {
		out[item.Symbol] = types.OpenInterest{
			Oi:      orDefault(item.OpenInterest, "0"),
			OiValue: orDefault(item.OpenInterestValue, "0"),
		}
	}
	return out
}
