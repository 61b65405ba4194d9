package client

import (
	"context"
	"errors"
	"net/http"
	"testing"
)

func TestUserStateAggregatesParallelFetches(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/account":
			if r.URL.Query().Get("account") == "" {
				t.Error("account param missing")
			}
			w.Write([]byte(`{"success":true,"data":{
				"account_equity":"10000.50","balance":"8500.00",
				"available_to_withdraw":"5000.00","total_margin_used":"3500.50",
				"cross_mmr":"1200.25"}}`))
		case "/api/v1/positions":
			w.Write([]byte(`{"success":true,"data":[
				{"symbol":"BTC","side":"bid","amount":"0.5","entry_price":"50000.00","isolated":false,"margin":"2500.00"}]}`))
		case "/api/v1/account/settings":
			w.Write([]byte(`{"success":true,"data":{"BTC":{"leverage":15}}}`))
		case "/api/v1/info":
			w.Write([]byte(`{"success":true,"data":[{"symbol":"BTC","max_leverage":50}]}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))

	state, err := info.UserState(context.Background(), "some-address")
	if err != nil {
		t.Fatalf("UserState() error = %v", err)
	}

	if state.Withdrawable != "5000.00" {
		t.Errorf("withdrawable = %s", state.Withdrawable)
	}
	if len(state.AssetPositions) != 1 {
		t.Fatalf("positions = %d", len(state.AssetPositions))
	}
	// Settings leverage wins over the market cap
	if got := state.AssetPositions[0].Position.Leverage.Value; got != 15 {
		t.Errorf("leverage = %d, want settings value 15", got)
	}
}

func TestUserStateSettingsFailureFallsBackToMarketCap(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/account":
			w.Write([]byte(`{"success":true,"data":{"account_equity":"100","balance":"100"}}`))
		case "/api/v1/positions":
			w.Write([]byte(`{"success":true,"data":[{"symbol":"BTC","side":"bid","amount":"1","entry_price":"100"}]}`))
		case "/api/v1/account/settings":
			w.WriteHeader(http.StatusInternalServerError)
		case "/api/v1/info":
			w.Write([]byte(`{"success":true,"data":[{"symbol":"BTC","max_leverage":50}]}`))
		}
	}))

	state, err := info.UserState(context.Background(), "addr")
	if err != nil {
		t.Fatalf("UserState() error = %v", err)
	}
	if got := state.AssetPositions[0].Position.Leverage.Value; got != 50 {
		t.Errorf("leverage = %d, want market cap 50", got)
	}
}

func TestUserStateUnknownAccountYieldsEmptyState(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/account", "/api/v1/positions":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.Write([]byte(`{"success":true,"data":[]}`))
		}
	}))

	state, err := info.UserState(context.Background(), "unknown")
	if err != nil {
		t.Fatalf("UserState() error = %v, want empty state", err)
	}
	if len(state.AssetPositions) != 0 {
		t.Errorf("positions = %v", state.AssetPositions)
	}
	if state.Withdrawable != "0" {
		t.Errorf("withdrawable = %s, want 0", state.Withdrawable)
	}
}

func TestUserStateDegradesOnPositionsFailure(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/account":
			w.Write([]byte(`{"success":true,"data":{"account_equity":"10000.50","balance":"8500.00","available_to_withdraw":"5000.00"}}`))
		case "/api/v1/positions":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"success":true,"data":[]}`))
		}
	}))

	// A transient positions failure must not take down the whole read
	state, err := info.UserState(context.Background(), "addr")
	if err != nil {
		t.Fatalf("UserState() error = %v, want degraded state", err)
	}
	if state.Withdrawable != "5000.00" {
		t.Errorf("withdrawable = %s, account data lost", state.Withdrawable)
	}
	if len(state.AssetPositions) != 0 {
		t.Errorf("positions = %v, want empty", state.AssetPositions)
	}
}

func TestUserStateDegradesOnAccountFailure(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/account":
			w.WriteHeader(http.StatusInternalServerError)
		case "/api/v1/positions":
			w.Write([]byte(`{"success":true,"data":[{"symbol":"BTC","side":"bid","amount":"1","entry_price":"100"}]}`))
		default:
			w.Write([]byte(`{"success":true,"data":[]}`))
		}
	}))

	state, err := info.UserState(context.Background(), "addr")
	if err != nil {
		t.Fatalf("UserState() error = %v, want degraded state", err)
	}
	if state.Withdrawable != "0" {
		t.Errorf("withdrawable = %s, want zero default", state.Withdrawable)
	}
	if len(state.AssetPositions) != 1 {
		t.Errorf("positions = %v, surviving constituent lost", state.AssetPositions)
	}
}

func TestOpenOrdersDefaultsToSignerAccount(t *testing.T) {
	var queried string
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		queried = r.URL.Query().Get("account")
		w.Write([]byte(`{"success":true,"data":[]}`))
	}))

	if _, err := info.OpenOrders(context.Background(), ""); err != nil {
		t.Fatalf("OpenOrders() error = %v", err)
	}
	if queried != info.api.Signer().Account() {
		t.Errorf("queried account = %q, want signer account", queried)
	}
}

func TestOpenOrdersWithoutAddressOrSigner(t *testing.T) {
	api := NewAPI("http://127.0.0.1:0", nil, nil)
	info := NewInfo(api, nil)

	_, err := info.OpenOrders(context.Background(), "")
	if !errors.Is(err, ErrMissingAddress) {
		t.Errorf("error = %v, want ErrMissingAddress", err)
	}
}

func TestUserFillsOidFilter(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"symbol":"BTC","order_id":1,"side":"bid","price":"10","amount":"1","history_id":100},
			{"symbol":"BTC","order_id":2,"side":"ask","price":"11","amount":"1","history_id":101}]}`))
	}))

	fills, err := info.UserFills(context.Background(), "addr", 2)
	if err != nil {
		t.Fatalf("UserFills() error = %v", err)
	}
	if len(fills) != 1 || fills[0].Oid != 2 {
		t.Errorf("fills = %+v", fills)
	}
}

func TestNonFundingLedgerUpdates(t *testing.T) {
	var limit string
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/account/balance/history" {
			t.Errorf("path = %s", r.URL.Path)
		}
		limit = r.URL.Query().Get("limit")
		w.Write([]byte(`{"success":true,"data":[
			{"amount":"10.00","event_type":"fee","created_at":300,"tx_hash":"0xfee"},
			{"amount":"50.00","event_type":"deposit_release","created_at":200,"tx_hash":"0xrel"},
			{"amount":"500.00","event_type":"withdraw","created_at":100,"tx_hash":"0xwith"}]}`))
	}))

	updates, err := info.NonFundingLedgerUpdates(context.Background(), "addr", 150, 0)
	if err != nil {
		t.Fatalf("NonFundingLedgerUpdates() error = %v", err)
	}
	if limit != "100" {
		t.Errorf("limit param = %q", limit)
	}
	if len(updates) != 1 {
		t.Fatalf("updates = %+v", updates)
	}
	if updates[0].Delta.Type != "deposit" || updates[0].Hash != "0xrel" {
		t.Errorf("update = %+v", updates[0])
	}
}

func TestNonFundingLedgerUpdatesEndTime(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[
			{"amount":"50.00","event_type":"deposit","created_at":300,"tx_hash":"0xnew"},
			{"amount":"20.00","event_type":"deposit","created_at":200,"tx_hash":"0xmid"},
			{"amount":"10.00","event_type":"withdraw","created_at":100,"tx_hash":"0xold"}]}`))
	}))

	updates, err := info.NonFundingLedgerUpdates(context.Background(), "addr", 150, 250)
	if err != nil {
		t.Fatalf("NonFundingLedgerUpdates() error = %v", err)
	}
	if len(updates) != 1 || updates[0].Hash != "0xmid" {
		t.Errorf("updates = %+v, want only the in-window event", updates)
	}
}

func TestMetaAndMarketsVariants(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":[{"symbol":"NEW"}]}`))
	}))

	meta, err := info.Meta(context.Background())
	if err != nil {
		t.Fatalf("Meta() error = %v", err)
	}
	if meta.Universe[0].MaxLeverage != 50 {
		t.Errorf("meta default leverage = %d, want 50", meta.Universe[0].MaxLeverage)
	}

	markets, err := info.Markets(context.Background())
	if err != nil {
		t.Fatalf("Markets() error = %v", err)
	}
	if markets[0].MaxLeverage != 100 {
		t.Errorf("markets default leverage = %d, want 100", markets[0].MaxLeverage)
	}
}

func TestGetMarketSummaryDegradesGracefully(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/info":
			w.Write([]byte(`{"success":true,"data":[{"symbol":"BTC"}]}`))
		case "/api/v1/info/prices":
			w.Write([]byte(`{"success":true,"data":[{"symbol":"BTC","mid":"50000"}]}`))
		default:
			// funding rates and open interest down
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	summary, err := info.GetMarketSummary(context.Background())
	if err != nil {
		t.Fatalf("GetMarketSummary() error = %v", err)
	}
	if len(summary.Meta.Universe) != 1 {
		t.Errorf("meta = %+v", summary.Meta)
	}
	if summary.AllMids["BTC"] != "50000" {
		t.Errorf("mids = %v", summary.AllMids)
	}
	if summary.FundingRates == nil || len(summary.FundingRates) != 0 {
		t.Errorf("fundingRates = %v, want empty", summary.FundingRates)
	}
	if summary.OpenInterest == nil || len(summary.OpenInterest) != 0 {
		t.Errorf("openInterest = %v, want empty", summary.OpenInterest)
	}
}

func TestMultipleOrderbooksSkipsFailures(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		symbol := r.URL.Query().Get("symbol")
		if symbol == "BAD" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"success":false,"error":"unknown symbol"}`))
			return
		}
		w.Write([]byte(`{"success":true,"data":{"symbol":"` + symbol + `","bids":[],"asks":[],"timestamp":1}}`))
	}))

	books, err := info.MultipleOrderbooks(context.Background(), []string{"BTC", "BAD", "ETH"})
	if err != nil {
		t.Fatalf("MultipleOrderbooks() error = %v", err)
	}
	if len(books) != 2 {
		t.Fatalf("books = %v", books)
	}
	if _, ok := books["BAD"]; ok {
		t.Error("failed book present in result")
	}
	if books["BTC"].Coin != "BTC" {
		t.Errorf("BTC book = %+v", books["BTC"])
	}
}

func TestCandlesStampCoinAndInterval(t *testing.T) {
	_, info, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/candles" {
			t.Errorf("path = %s", r.URL.Path)
		}
		q := r.URL.Query()
		if q.Get("symbol") != "BTC" || q.Get("interval") != "1h" {
			t.Errorf("params = %v", q)
		}
		w.Write([]byte(`{"success":true,"data":[{"timestamp":1,"open":"1","high":"2","low":"0.5","close":"1.5","volume":"10","trades_count":3}]}`))
	}))

	candles, err := info.Candles(context.Background(), "BTC", "1h", 0, 100)
	if err != nil {
		t.Fatalf("Candles() error = %v", err)
	}
	if candles[0].S != "BTC" || candles[0].I != "1h" {
		t.Errorf("candle stamp = %s %s", candles[0].S, candles[0].I)
	}
}
