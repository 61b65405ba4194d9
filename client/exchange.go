package client

import (
	"context"
	"fmt"
	"math"
	"strconv"

	json "github.com/goccy/go-json"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/dwdwow/pacifica-go/constants"
	"github.com/dwdwow/pacifica-go/signing"
	"github.com/dwdwow/pacifica-go/types"
	"github.com/dwdwow/pacifica-go/utils"
)

const batchConcurrency = 8

// Exchange executes trading operations. Responses come back as the
// Hyperliquid-style status envelopes existing integrations expect.
type Exchange struct {
	api    *API
	info   *Info
	logger *zap.Logger
}

// NewExchange creates an Exchange on a transport.
func NewExchange(api *API, info *Info, logger *zap.Logger) *Exchange {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exchange{api: api, info: info, logger: logger}
}

func okEnvelope(respType string, data any) map[string]any {
	return map[string]any{
		"status": "ok",
		"response": map[string]any{
			"type": respType,
			"data": data,
		},
	}
}

func errEnvelope(msg string) map[string]any {
	return map[string]any{
		"status": "error",
		"response": map[string]any{
			"type": "error",
			"data": map[string]any{"msg": msg},
		},
	}
}

// buildOrderPayload translates an order request to the wire payload and
// picks the signature type from the final shape: a price field makes it a
// limit order, a slippage field a market order.
func buildOrderPayload(req types.OrderRequest) (map[string]any, string, string, error) {
	amount, err := utils.FormatNumber(req.Sz)
	if err != nil {
		return nil, "", "", fmt.Errorf("format size: %w", err)
	}

	side := "ask"
	if req.IsBuy {
		side = "bid"
	}
	cloid := types.NormalizeClientOrderID(req.Cloid)

	payload := map[string]any{
		"symbol":          req.Coin,
		"side":            side,
		"amount":          amount,
		"reduce_only":     req.ReduceOnly,
		"client_order_id": cloid,
	}

	switch {
	case req.OrderType.Limit != nil:
		price, err := utils.FormatNumber(req.LimitPx)
		if err != nil {
			return nil, "", "", fmt.Errorf("format price: %w", err)
		}
		payload["price"] = price
		switch req.OrderType.Limit.Tif {
		case types.TifIoc:
			payload["tif"] = "IOC"
		case types.TifTob:
			payload["tif"] = "TOB"
		case types.TifAlo:
			payload["tif"] = "ALO"
			payload["post_only"] = true
		default:
			payload["tif"] = "GTC"
		}
	case req.OrderType.Market != nil:
		slippage := req.OrderType.Market.SlippagePercent
		if slippage == "" {
			slippage = constants.DefaultSlippagePercent
		}
		payload["slippage_percent"] = slippage
	default:
		return nil, "", "", fmt.Errorf("order type must be limit or market")
	}

	if req.Builder != nil {
		if req.Builder.B == "" {
			return nil, "", "", ErrMissingBuilderAddress
		}
		payload["builder_code"] = req.Builder.B
		payload["builder_fee"] = req.Builder.F
	}

	sigType := constants.SigTypeCreateMarketOrder
	if _, ok := payload["price"]; ok {
		sigType = constants.SigTypeCreateLimitOrder
	}
	return payload, cloid, sigType, nil
}

// Order places a single order.
func (e *Exchange) Order(ctx context.Context, req types.OrderRequest) (map[string]any, error) {
	payload, cloid, sigType, err := buildOrderPayload(req)
	if err != nil {
		return errEnvelope(err.Error()), err
	}

	request, err := signing.BuildRequest(e.api.Signer(), sigType, payload)
	if err != nil {
		return errEnvelope(err.Error()), err
	}

	data, err := e.api.Post(ctx, "/api/v1/orders/create", request, nil)
	if err != nil {
		return errEnvelope(err.Error()), err
	}

	var result struct {
		OrderID int64 `json:"order_id"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return errEnvelope(err.Error()), fmt.Errorf("decode order response: %w", err)
	}

	return okEnvelope("order", map[string]any{
		"statuses": []any{
			map[string]any{
				"resting": map[string]any{
					"oid":   result.OrderID,
					"cloid": cloid,
				},
			},
		},
	}), nil
}

// BatchOrders places multiple orders in one call. Each order is signed
// independently and the per-order statuses come back in request order.
func (e *Exchange) BatchOrders(ctx context.Context, reqs []types.OrderRequest) (map[string]any, error) {
	actions := make([]any, 0, len(reqs))
	for i, req := range reqs {
		payload, _, sigType, err := buildOrderPayload(req)
		if err != nil {
			return errEnvelope(err.Error()), fmt.Errorf("order %d: %w", i, err)
		}
		signed, err := signing.BuildRequest(e.api.Signer(), sigType, payload)
		if err != nil {
			return errEnvelope(err.Error()), fmt.Errorf("sign order %d: %w", i, err)
		}
		actions = append(actions, map[string]any{
			"type": "Create",
			"data": signed,
		})
	}

	data, err := e.api.Post(ctx, "/api/v1/orders/batch", map[string]any{"actions": actions}, nil)
	if err != nil {
		return errEnvelope(err.Error()), err
	}

	var result struct {
		Results []struct {
			Success       bool    `json:"success"`
			OrderID       int64   `json:"order_id"`
			ClientOrderID *string `json:"client_order_id"`
			Error         string  `json:"error"`
		} `json:"results"`
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return errEnvelope(err.Error()), fmt.Errorf("decode batch response: %w", err)
	}

	statuses := make([]any, 0, len(result.Results))
	for _, r := range result.Results {
		if r.Success {
			statuses = append(statuses, map[string]any{
				"resting": map[string]any{
					"oid":   r.OrderID,
					"cloid": r.ClientOrderID,
				},
			})
		} else {
			msg := r.Error
			if msg == "" {
				msg = "unknown error"
			}
			statuses = append(statuses, map[string]any{"error": msg})
		}
	}
	return okEnvelope("batchOrder", map[string]any{"statuses": statuses}), nil
}

// BulkOrders is an alias for BatchOrders.
func (e *Exchange) BulkOrders(ctx context.Context, reqs []types.OrderRequest) (map[string]any, error) {
	return e.BatchOrders(ctx, reqs)
}

func (e *Exchange) cancel(ctx context.Context, coin string, oid int64, cloid string) (map[string]any, error) {
	payload := map[string]any{"symbol": coin}
	switch {
	case oid != 0:
		payload["order_id"] = oid
	case cloid != "":
		payload["client_order_id"] = cloid
	default:
		return errEnvelope(ErrMissingOrderID.Error()), ErrMissingOrderID
	}

	request, err := signing.BuildRequest(e.api.Signer(), constants.SigTypeCancelOrder, payload)
	if err != nil {
		return errEnvelope(err.Error()), err
	}
	if _, err := e.api.Post(ctx, "/api/v1/orders/cancel", request, nil); err != nil {
		return errEnvelope(err.Error()), err
	}
	return okEnvelope("cancel", map[string]any{"statuses": []any{"success"}}), nil
}

// Cancel cancels an order by exchange order id.
func (e *Exchange) Cancel(ctx context.Context, coin string, oid int64) (map[string]any, error) {
	return e.cancel(ctx, coin, oid, "")
}

// CancelByCloid cancels an order by client order id.
func (e *Exchange) CancelByCloid(ctx context.Context, coin string, cloid string) (map[string]any, error) {
	return e.cancel(ctx, coin, 0, cloid)
}

// BatchCancel cancels multiple orders in parallel. The status slice keeps
// request order: statuses[i] reports cancels[i].
func (e *Exchange) BatchCancel(ctx context.Context, cancels []types.CancelRequest) (map[string]any, error) {
	statuses := make([]any, len(cancels))

	p := pool.New().WithMaxGoroutines(batchConcurrency)
	for i, req := range cancels {
		p.Go(func() {
			if _, err := e.cancel(ctx, req.Coin, req.Oid, req.Cloid); err != nil {
				e.logger.Warn("cancel failed",
					zap.String("coin", req.Coin), zap.Int64("oid", req.Oid), zap.Error(err))
				statuses[i] = "error"
				return
			}
			statuses[i] = "success"
		})
	}
	p.Wait()

	return okEnvelope("batchCancel", map[string]any{"statuses": statuses}), nil
}

// BulkCancel is an alias for BatchCancel.
func (e *Exchange) BulkCancel(ctx context.Context, cancels []types.CancelRequest) (map[string]any, error) {
	return e.BatchCancel(ctx, cancels)
}

// CancelAllOrders cancels every open order, optionally restricted to the
// given coins.
func (e *Exchange) CancelAllOrders(ctx context.Context, coins ...string) (map[string]any, error) {
	signer := e.api.Signer()
	if signer == nil {
		return errEnvelope(ErrNoSigner.Error()), ErrNoSigner
	}

	open, err := e.info.OpenOrders(ctx, signer.Account())
	if err != nil {
		return errEnvelope(err.Error()), err
	}

	wanted := map[string]bool{}
	for _, c := range coins {
		wanted[c] = true
	}
	cancels := make([]types.CancelRequest, 0, len(open))
	for _, o := range open {
		if len(wanted) > 0 && !wanted[o.Coin] {
			continue
		}
		cancels = append(cancels, types.CancelRequest{Coin: o.Coin, Oid: o.Oid})
	}
	return e.BatchCancel(ctx, cancels)
}

// flatSignedRequest assembles and signs an account-management request.
// These endpoints sign the flat request map itself rather than wrapping
// the payload in a data envelope, and echo the operation type as a
// request header.
func (e *Exchange) flatSignedRequest(ctx context.Context, path, opType string, fields map[string]any) (json.RawMessage, error) {
	signer := e.api.Signer()
	if signer == nil {
		return nil, ErrNoSigner
	}

	request := map[string]any{
		"account":   signer.PublicKey(),
		"timestamp": utils.GetTimestampMs(),
		"type":      opType,
	}
	for k, v := range fields {
		request[k] = v
	}
	signature, err := signer.SignFlat(request)
	if err != nil {
		return nil, fmt.Errorf("sign %s: %w", opType, err)
	}
	request["signature"] = signature

	return e.api.Post(ctx, path, request, map[string]string{"type": opType})
}

// UpdateLeverage sets the leverage for a symbol.
func (e *Exchange) UpdateLeverage(ctx context.Context, leverage int, coin string, isCross bool) (map[string]any, error) {
	data, err := e.flatSignedRequest(ctx, "/api/v1/account/leverage", constants.SigTypeUpdateLeverage, map[string]any{
		"symbol":   coin,
		"leverage": leverage,
	})
	if err != nil {
		return errEnvelope(err.Error()), err
	}
	return okEnvelope("updateLeverage", rawToAny(data)), nil
}

// UpdateMarginMode switches a symbol between cross and isolated margin.
func (e *Exchange) UpdateMarginMode(ctx context.Context, coin string, isCross bool) (map[string]any, error) {
	data, err := e.flatSignedRequest(ctx, "/api/v1/account/margin", constants.SigTypeUpdateMarginMode, map[string]any{
		"symbol":      coin,
		"is_isolated": !isCross,
	})
	if err != nil {
		return errEnvelope(err.Error()), err
	}
	return okEnvelope("updateMarginMode", rawToAny(data)), nil
}

func (e *Exchange) marginAction(ctx context.Context, coin, action string, amount float64, respType string) (map[string]any, error) {
	formatted, err := utils.FormatNumber(math.Abs(amount))
	if err != nil {
		return errEnvelope(err.Error()), err
	}
	data, err := e.flatSignedRequest(ctx, "/api/v1/account/margin", constants.SigTypeMarginAction, map[string]any{
		"symbol":      coin,
		"amount":      formatted,
		"is_isolated": true,
		"action":      action,
	})
	if err != nil {
		return errEnvelope(err.Error()), err
	}
	return okEnvelope(respType, rawToAny(data)), nil
}

// AddMargin adds margin to an isolated position.
func (e *Exchange) AddMargin(ctx context.Context, coin string, amount float64) (map[string]any, error) {
	return e.marginAction(ctx, coin, "add", amount, "addMargin")
}

// RemoveMargin removes margin from an isolated position.
func (e *Exchange) RemoveMargin(ctx context.Context, coin string, amount float64) (map[string]any, error) {
	return e.marginAction(ctx, coin, "remove", amount, "removeMargin")
}

// UpdateIsolatedMargin adjusts isolated margin by a signed amount:
// positive adds, negative removes.
func (e *Exchange) UpdateIsolatedMargin(ctx context.Context, amount float64, coin string) (map[string]any, error) {
	if amount < 0 {
		return e.RemoveMargin(ctx, coin, -amount)
	}
	return e.AddMargin(ctx, coin, amount)
}

// BatchUpdateLeverage applies leverage updates in parallel and reports a
// per-update status in request order.
func (e *Exchange) BatchUpdateLeverage(ctx context.Context, updates []types.LeverageUpdate) (map[string]any, error) {
	statuses := make([]any, len(updates))

	p := pool.New().WithMaxGoroutines(batchConcurrency)
	for i, u := range updates {
		p.Go(func() {
			if _, err := e.UpdateLeverage(ctx, u.Leverage, u.Coin, u.IsCross); err != nil {
				statuses[i] = map[string]any{"coin": u.Coin, "status": "error", "msg": err.Error()}
				return
			}
			statuses[i] = map[string]any{"coin": u.Coin, "status": "success"}
		})
	}
	p.Wait()

	return okEnvelope("batchUpdateLeverage", map[string]any{"statuses": statuses}), nil
}

// MarketOpen opens a position at market. With a reference price the order
// goes out as an IOC limit at the price adjusted by the slippage fraction,
// otherwise as a market order. A slippage of 0 uses the default.
func (e *Exchange) MarketOpen(ctx context.Context, coin string, isBuy bool, sz float64, px *float64, slippage float64, cloid string) (map[string]any, error) {
	if slippage == 0 {
		slippage = constants.DefaultMarketSlippage
	}

	var orderType types.OrderType
	limitPx := 0.0
	if px != nil {
		if isBuy {
			limitPx = *px * (1 + slippage)
		} else {
			limitPx = *px * (1 - slippage)
		}
		orderType = types.OrderType{Limit: &types.LimitOrderType{Tif: types.TifIoc}}
	} else {
		orderType = types.OrderType{Market: &types.MarketOrderType{
			SlippagePercent: strconv.FormatFloat(slippage*100, 'f', -1, 64),
		}}
	}

	return e.Order(ctx, types.OrderRequest{
		Coin:      coin,
		IsBuy:     isBuy,
		Sz:        sz,
		LimitPx:   limitPx,
		OrderType: orderType,
		Cloid:     cloid,
	})
}

// MarketClose closes a position at market. The closing direction comes
// from the live position's signed size; with no open position the close
// fails rather than guessing a side. A nil sz closes the full position.
func (e *Exchange) MarketClose(ctx context.Context, coin string, sz *float64, px *float64, slippage float64, cloid string) (map[string]any, error) {
	signer := e.api.Signer()
	if signer == nil {
		return errEnvelope(ErrNoSigner.Error()), ErrNoSigner
	}

	state, err := e.info.UserState(ctx, signer.Account())
	if err != nil {
		return errEnvelope(err.Error()), err
	}

	for _, ap := range state.AssetPositions {
		if ap.Position.Coin != coin {
			continue
		}
		szi, err := strconv.ParseFloat(ap.Position.Szi, 64)
		if err != nil || szi == 0 {
			break
		}
		size := math.Abs(szi)
		if sz != nil {
			size = *sz
		}
		if slippage == 0 {
			slippage = constants.DefaultMarketSlippage
		}

		isBuy := szi < 0
		var orderType types.OrderType
		limitPx := 0.0
		if px != nil {
			if isBuy {
				limitPx = *px * (1 + slippage)
			} else {
				limitPx = *px * (1 - slippage)
			}
			orderType = types.OrderType{Limit: &types.LimitOrderType{Tif: types.TifIoc}}
		} else {
			orderType = types.OrderType{Market: &types.MarketOrderType{
				SlippagePercent: strconv.FormatFloat(slippage*100, 'f', -1, 64),
			}}
		}

		return e.Order(ctx, types.OrderRequest{
			Coin:       coin,
			IsBuy:      isBuy,
			Sz:         size,
			LimitPx:    limitPx,
			OrderType:  orderType,
			ReduceOnly: true,
			Cloid:      cloid,
		})
	}

	err = fmt.Errorf("%w: %s", ErrNoPosition, coin)
	return errEnvelope(err.Error()), err
}

// rawToAny decodes a raw payload for embedding in a status envelope.
func rawToAny(data json.RawMessage) any {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return string(data)
	}
	return v
}
