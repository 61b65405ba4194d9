package client

import (
	"context"
	"fmt"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/dwdwow/pacifica-go/constants"
	"github.com/dwdwow/pacifica-go/transform"
	"github.com/dwdwow/pacifica-go/types"
)

const infoConcurrency = 4

// Info reads market and account data and returns it in the Hyperliquid
// compatibility shapes.
type Info struct {
	api    *API
	logger *zap.Logger
}

// NewInfo creates an Info client on a transport.
func NewInfo(api *API, logger *zap.Logger) *Info {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Info{api: api, logger: logger}
}

// resolveAddress falls back to the signer's account when no address is
// given.
func (in *Info) resolveAddress(address string) (string, error) {
	if address != "" {
		return address, nil
	}
	if s := in.api.Signer(); s != nil {
		return s.Account(), nil
	}
	return "", ErrMissingAddress
}

func (in *Info) getJSON(ctx context.Context, path string, params map[string]string, out any) error {
	data, err := in.api.Get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// UserState returns the account state: balances, margin summaries and open
// positions with resolved leverage. Account, positions, leverage settings
// and market caps are fetched in parallel. Each constituent degrades
// independently: a failed account fetch yields zero balances, failed
// positions an empty position list, failed settings or market info an
// unresolved leverage. Unknown accounts land on the same zero state.
func (in *Info) UserState(ctx context.Context, address string) (types.UserState, error) {
	address, err := in.resolveAddress(address)
	if err != nil {
		return types.UserState{}, err
	}

	var (
		account      types.RawAccount
		positions    []types.RawPosition
		settingsRaw  json.RawMessage
		markets      []types.RawMarket
		accountErr   error
		positionsErr error
	)

	p := pool.New().WithMaxGoroutines(infoConcurrency)
	p.Go(func() {
		accountErr = in.getJSON(ctx, "/api/v1/account", map[string]string{"account": address}, &account)
	})
	p.Go(func() {
		positionsErr = in.getJSON(ctx, "/api/v1/positions", map[string]string{"account": address}, &positions)
	})
	p.Go(func() {
		data, err := in.api.Get(ctx, "/api/v1/account/settings", map[string]string{"account": address})
		if err != nil {
			in.logger.Debug("account settings unavailable", zap.Error(err))
			return
		}
		settingsRaw = data
	})
	p.Go(func() {
		if err := in.getJSON(ctx, "/api/v1/info", nil, &markets); err != nil {
			in.logger.Debug("market info unavailable", zap.Error(err))
		}
	})
	p.Wait()

	if accountErr != nil {
		in.logger.Warn("account unavailable", zap.Error(accountErr))
		account = types.RawAccount{}
	}
	if positionsErr != nil {
		in.logger.Warn("positions unavailable", zap.Error(positionsErr))
		positions = nil
	}

	transform.ResolveLeverage(positions, transform.ParseLeverageSettings(settingsRaw), markets)
	return transform.UserState(account, positions), nil
}

// OpenOrders returns the user's open orders.
func (in *Info) OpenOrders(ctx context.Context, address string) ([]types.OpenOrder, error) {
	address, err := in.resolveAddress(address)
	if err != nil {
		return nil, err
	}
	var orders []types.RawOrder
	if err := in.getJSON(ctx, "/api/v1/orders", map[string]string{"account": address}, &orders); err != nil {
		return nil, err
	}
	return transform.OpenOrders(orders), nil
}

// UserFills returns the user's trade fills, optionally filtered to one
// order id. No matching fills is an empty slice.
func (in *Info) UserFills(ctx context.Context, address string, oid int64) ([]types.Fill, error) {
	address, err := in.resolveAddress(address)
	if err != nil {
		return nil, err
	}
	var trades []types.RawTrade
	if err := in.getJSON(ctx, "/api/v1/trades/history", map[string]string{"account": address}, &trades); err != nil {
		return nil, err
	}
	return transform.UserFills(trades, oid), nil
}

// UserFunding returns the user's funding payment history from startTime.
// A zero startTime means the full available history.
func (in *Info) UserFunding(ctx context.Context, address string, startTime int64) ([]types.UserFunding, error) {
	address, err := in.resolveAddress(address)
	if err != nil {
		return nil, err
	}
	params := map[string]string{"account": address}
	if startTime > 0 {
		params["start_time"] = strconv.FormatInt(startTime, 10)
	}
	var fundings []types.RawFunding
	if err := in.getJSON(ctx, "/api/v1/funding/history", params, &fundings); err != nil {
		in.logger.Debug("funding history unavailable", zap.Error(err))
		return []types.UserFunding{}, nil
	}
	return transform.UserFunding(fundings), nil
}

// NonFundingLedgerUpdates returns deposit, withdraw and transfer events
// within [startTime, endTime] from the recent balance history. A zero
// endTime means no upper bound.
func (in *Info) NonFundingLedgerUpdates(ctx context.Context, address string, startTime, endTime int64) ([]types.LedgerUpdate, error) {
	address, err := in.resolveAddress(address)
	if err != nil {
		return nil, err
	}
	var events []types.RawBalanceEvent
	params := map[string]string{
		"account": address,
		"limit":   strconv.Itoa(constants.BalanceHistoryLimit),
	}
	if err := in.getJSON(ctx, "/api/v1/account/balance/history", params, &events); err != nil {
		return nil, err
	}
	return transform.NonFundingLedgerUpdates(events, startTime, endTime), nil
}

// UserRateLimit returns the user's API usage.
func (in *Info) UserRateLimit(ctx context.Context, address string) (types.RateLimit, error) {
	address, err := in.resolveAddress(address)
	if err != nil {
		return types.RateLimit{}, err
	}
	var raw types.RawRateLimit
	if err := in.getJSON(ctx, "/api/v1/account/rate_limit", map[string]string{"account": address}, &raw); err != nil {
		return types.RateLimit{}, err
	}
	return transform.UserRateLimit(raw), nil
}

// Meta returns the market universe in the compact meta shape.
func (in *Info) Meta(ctx context.Context) (types.Meta, error) {
	var markets []types.RawMarket
	if err := in.getJSON(ctx, "/api/v1/info", nil, &markets); err != nil {
		return types.Meta{}, err
	}
	return transform.Meta(markets), nil
}

// Markets returns the detailed per-market descriptors.
func (in *Info) Markets(ctx context.Context) ([]types.MarketEntry, error) {
	var markets []types.RawMarket
	if err := in.getJSON(ctx, "/api/v1/info", nil, &markets); err != nil {
		return nil, err
	}
	return transform.MarketMeta(markets), nil
}

// AllMids returns the mid price for every market.
func (in *Info) AllMids(ctx context.Context) (map[string]string, error) {
	var prices []types.RawPrice
	if err := in.getJSON(ctx, "/api/v1/info/prices", nil, &prices); err != nil {
		return nil, err
	}
	return transform.AllMids(prices), nil
}

// L2Book returns the order book for a coin.
func (in *Info) L2Book(ctx context.Context, coin string) (types.L2Book, error) {
	var book types.RawBook
	if err := in.getJSON(ctx, "/api/v1/book", map[string]string{"symbol": coin}, &book); err != nil {
		return types.L2Book{}, err
	}
	return transform.L2Book(book), nil
}

// L2Snapshot is an alias for L2Book.
func (in *Info) L2Snapshot(ctx context.Context, coin string) (types.L2Book, error) {
	return in.L2Book(ctx, coin)
}

// Candles returns OHLCV bars for a coin over [startTime, endTime].
func (in *Info) Candles(ctx context.Context, coin, interval string, startTime, endTime int64) ([]types.Candle, error) {
	var candles []types.RawCandle
	params := map[string]string{
		"symbol":     coin,
		"interval":   interval,
		"start_time": strconv.FormatInt(startTime, 10),
		"end_time":   strconv.FormatInt(endTime, 10),
	}
	if err := in.getJSON(ctx, "/api/v1/candles", params, &candles); err != nil {
		return nil, err
	}
	return transform.Candles(candles, coin, interval), nil
}

// CandlesSnapshot is an alias for Candles.
func (in *Info) CandlesSnapshot(ctx context.Context, coin, interval string, startTime, endTime int64) ([]types.Candle, error) {
	return in.Candles(ctx, coin, interval, startTime, endTime)
}

// FundingRates returns current funding rates for all markets. An
// unavailable endpoint yields an empty slice.
func (in *Info) FundingRates(ctx context.Context) ([]types.FundingRate, error) {
	var rates []types.RawFundingRate
	if err := in.getJSON(ctx, "/api/v1/funding/rates", nil, &rates); err != nil {
		in.logger.Debug("funding rates unavailable", zap.Error(err))
		return []types.FundingRate{}, nil
	}
	return transform.FundingRates(rates), nil
}

// OpenInterest returns open interest keyed by symbol. An unavailable
// endpoint yields an empty map.
func (in *Info) OpenInterest(ctx context.Context) (map[string]types.OpenInterest, error) {
	var items []types.RawOpenInterest
	if err := in.getJSON(ctx, "/api/v1/stats/open_interest", nil, &items); err != nil {
		in.logger.Debug("open interest unavailable", zap.Error(err))
		return map[string]types.OpenInterest{}, nil
	}
	return transform.OpenInterest(items), nil
}

// AccountSummary bundles the user's state, orders, fills and funding, all
// fetched in parallel. A failed constituent comes back empty instead of
// failing the summary.
type AccountSummary struct {
	UserState   *types.UserState    `json:"user_state"`
	OpenOrders  []types.OpenOrder   `json:"open_orders"`
	UserFills   []types.Fill        `json:"user_fills"`
	UserFunding []types.UserFunding `json:"user_funding"`
}

// GetAccountSummary fetches the account summary.
func (in *Info) GetAccountSummary(ctx context.Context, address string) (AccountSummary, error) {
	address, err := in.resolveAddress(address)
	if err != nil {
		return AccountSummary{}, err
	}

	summary := AccountSummary{
		OpenOrders:  []types.OpenOrder{},
		UserFills:   []types.Fill{},
		UserFunding: []types.UserFunding{},
	}

	p := pool.New().WithMaxGoroutines(infoConcurrency)
	p.Go(func() {
		state, err := in.UserState(ctx, address)
		if err != nil {
			in.logger.Warn("user state unavailable", zap.Error(err))
			return
		}
		summary.UserState = &state
	})
	p.Go(func() {
		orders, err := in.OpenOrders(ctx, address)
		if err != nil {
			in.logger.Warn("open orders unavailable", zap.Error(err))
			return
		}
		summary.OpenOrders = orders
	})
	p.Go(func() {
		fills, err := in.UserFills(ctx, address, 0)
		if err != nil {
			in.logger.Warn("user fills unavailable", zap.Error(err))
			return
		}
		summary.UserFills = fills
	})
	p.Go(func() {
		funding, err := in.UserFunding(ctx, address, 0)
		if err != nil {
			in.logger.Warn("user funding unavailable", zap.Error(err))
			return
		}
		summary.UserFunding = funding
	})
	p.Wait()

	return summary, nil
}

// MarketSummary bundles meta, mids, funding rates and open interest, all
// fetched in parallel with the same degradation rules.
type MarketSummary struct {
	Meta         types.Meta                    `json:"meta"`
	AllMids      map[string]string             `json:"all_mids"`
	FundingRates []types.FundingRate           `json:"funding_rates"`
	OpenInterest map[string]types.OpenInterest `json:"open_interest"`
}

// GetMarketSummary fetches the market summary.
func (in *Info) GetMarketSummary(ctx context.Context) (MarketSummary, error) {
	summary := MarketSummary{
		AllMids:      map[string]string{},
		FundingRates: []types.FundingRate{},
		OpenInterest: map[string]types.OpenInterest{},
	}

	p := pool.New().WithMaxGoroutines(infoConcurrency)
	p.Go(func() {
		meta, err := in.Meta(ctx)
		if err != nil {
			in.logger.Warn("meta unavailable", zap.Error(err))
			return
		}
		summary.Meta = meta
	})
	p.Go(func() {
		mids, err := in.AllMids(ctx)
		if err != nil {
			in.logger.Warn("mids unavailable", zap.Error(err))
			return
		}
		summary.AllMids = mids
	})
	p.Go(func() {
		rates, _ := in.FundingRates(ctx)
		summary.FundingRates = rates
	})
	p.Go(func() {
		oi, _ := in.OpenInterest(ctx)
		summary.OpenInterest = oi
	})
	p.Wait()

	return summary, nil
}

// MultipleOrderbooks fetches order books for several coins in parallel.
// Failed books are left out of the result.
func (in *Info) MultipleOrderbooks(ctx context.Context, coins []string) (map[string]types.L2Book, error) {
	books := make([]*types.L2Book, len(coins))

	p := pool.New().WithMaxGoroutines(infoConcurrency)
	for i, coin := range coins {
		p.Go(func() {
			book, err := in.L2Book(ctx, coin)
			if err != nil {
				in.logger.Warn("orderbook unavailable", zap.String("coin", coin), zap.Error(err))
				return
			}
			books[i] = &book
		})
	}
	p.Wait()

	out := make(map[string]types.L2Book, len(coins))
	for i, coin := range coins {
		if books[i] != nil {
			out[coin] = *books[i]
		}
	}
	return out, nil
}
