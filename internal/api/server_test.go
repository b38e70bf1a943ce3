package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/woofpad/internal/dex/amm"
	"github.com/rovshanmuradov/woofpad/internal/events"
	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/utils/metrics"
)

const (
	admin     = "woof1admin"
	baseDenom = "uhuahua"
	alice     = "woof1alice"
	bob       = "woof1bob"
)

type testEnv struct {
	t      *testing.T
	srv    *httptest.Server
	hub    *Hub
	venue  *amm.Venue
	bus    *events.Bus
	height int
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zap.NewNop()
	reg := prometheus.NewRegistry()
	collector, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	bus := events.NewBus(logger, 64)
	venue := amm.NewVenue(30, logger)
	engine, err := launchpad.New(launchpad.Config{
		Owner:                 admin,
		TokenFactory:          "woof1factory",
		FeeCollector:          "woof1fees",
		MakerFee:              math.LegacyMustNewDecFromStr("0.001"),
		TakerFee:              math.LegacyMustNewDecFromStr("0.002"),
		QuoteTokenTotalSupply: math.NewInt(1_000_000_000),
		BondingCurveSupply:    math.NewInt(800_000_000),
		LPSupply:              math.NewInt(200_000_000),
		SecondaryAMMAddress:   "woof1amm",
		BaseTokenDenom:        baseDenom,
		Enabled:               true,
	},
		launchpad.WithLogger(logger),
		launchpad.WithPublisher(bus),
		launchpad.WithSecondaryAMM(venue),
		launchpad.WithRecorder(collector),
	)
	require.NoError(t, err)

	hub := NewHub(logger, collector.UpdateWebsocketClients)
	bus.SubscribeAll(hub)

	server := NewServer(Options{
		Engine:   engine,
		Venue:    venue,
		Hub:      hub,
		Gatherer: reg,
		Logger:   logger,
	})
	srv := httptest.NewServer(server.Handler())
	t.Cleanup(func() {
		hub.Close()
		srv.Close()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = bus.Shutdown(ctx)
	})
	return &testEnv{t: t, srv: srv, hub: hub, venue: venue, bus: bus}
}

// envelope wraps msg, a JSON object literal, in a signed envelope.
func (e *testEnv) envelope(sender, msg, funds string) string {
	e.height++
	blockTime := time.Date(2024, 5, 1, 12, 0, e.height, 0, time.UTC).Format(time.RFC3339)
	if funds == "" {
		funds = "[]"
	}
	return fmt.Sprintf(`{"sender":%q,"block_height":%d,"block_time":%q,"funds":%s,"msg":%s}`,
		sender, e.height, blockTime, funds, msg)
}

func (e *testEnv) post(path, body string) (int, []byte) {
	e.t.Helper()
	resp, err := http.Post(e.srv.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(e.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

func (e *testEnv) get(path string) (int, []byte) {
	e.t.Helper()
	resp, err := http.Get(e.srv.URL + path)
	require.NoError(e.t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

func (e *testEnv) createWoof() string {
	e.t.Helper()
	msg := `{"create_token":{"name":"Woof","symbol":"WOOF","decimals":6,"uri":"ipfs://woof","max_price_impact":10,"curve_slope":"500"}}`
	status, body := e.post("/api/v1/execute", e.envelope(alice, msg, ""))
	require.Equal(e.t, http.StatusOK, status, string(body))

	var resp launchpad.Response
	require.NoError(e.t, json.Unmarshal(body, &resp))
	require.NotNil(e.t, resp.Token)
	return resp.Token.Address
}

func (e *testEnv) buy(sender, token string, amount, funds int) (int, []byte) {
	msg := fmt.Sprintf(`{"swap":{"token_address":%q,"amount":"%d","order_type":"Buy"}}`, token, amount)
	return e.post("/api/v1/execute", e.envelope(sender, msg, fmt.Sprintf(`[{"denom":%q,"amount":"%d"}]`, baseDenom, funds)))
}

func decodeError(t *testing.T, body []byte) ErrorDetail {
	t.Helper()
	var out ErrorBody
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out.Error
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	status, body := env.get("/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"healthy","service":"woofpad"}`, string(body))
}

func TestExecuteSwapAndReadPool(t *testing.T) {
	env := newTestEnv(t)
	token := env.createWoof()

	status, body := env.buy(bob, token, 1_000_000, 150)
	require.Equal(t, http.StatusOK, status, string(body))
	var resp launchpad.Response
	require.NoError(t, json.Unmarshal(body, &resp))
	require.Len(t, resp.Trades, 1)
	assert.Equal(t, "101", resp.Trades[0].QuoteAmount.String())

	status, body = env.get("/api/v1/pools/" + token)
	require.Equal(t, http.StatusOK, status, string(body))
	var view struct {
		Pool    map[string]interface{} `json:"pool"`
		Display map[string]string      `json:"display"`
	}
	require.NoError(t, json.Unmarshal(body, &view))
	assert.Equal(t, "1000000", view.Pool["curve_supply_sold"])
	assert.Equal(t, "0.000101", view.Display["reserve_base"])
	assert.Equal(t, "1", view.Display["curve_supply_sold"])

	status, body = env.get("/api/v1/users/" + bob + "/trades")
	require.Equal(t, http.StatusOK, status)
	var trades launchpad.TradesResponse
	require.NoError(t, json.Unmarshal(body, &trades))
	assert.Len(t, trades.Trades, 1)

	status, body = env.get("/api/v1/users/" + bob + "/balances")
	require.Equal(t, http.StatusOK, status)
	var balances balancesResponse
	require.NoError(t, json.Unmarshal(body, &balances))
	assert.Equal(t, "998000", balances.Balances.AmountOf(token).String())
	require.Len(t, balances.Estimates, 1)
	assert.Equal(t, token, balances.Estimates[0].TokenAddress)
}

func TestExecuteRejectsMalformedEnvelope(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name string
		body string
	}{
		{"not json", `{`},
		{"missing msg", `{"sender":"woof1bob","block_height":1,"block_time":"2024-05-01T12:00:00Z"}`},
		{"numeric amount", env.envelope(bob, `{"swap":{"token_address":"x","amount":5,"order_type":"Buy"}}`, "")},
		{"two variants", env.envelope(bob, `{"graduate":{"token_address":"x"},"cancel_order":{"order_id":1,"pair_id":"p"}}`, "")},
		{"unknown variant", env.envelope(bob, `{"burn":{}}`, "")},
		{"bad side", env.envelope(bob, `{"swap":{"token_address":"x","amount":"5","order_type":"hold"}}`, "")},
		{"oversized amount", env.envelope(bob, fmt.Sprintf(`{"place_limit_order":{"token_address":"x","amount":%q,"price":"1","is_buy":"Buy"}}`, strings.Repeat("9", 60)), "")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := env.post("/api/v1/execute", tt.body)
			assert.Equal(t, http.StatusBadRequest, status)
			detail := decodeError(t, body)
			assert.Equal(t, KindInvalidRequest, detail.Kind)
			assert.NotEmpty(t, detail.Violations)
		})
	}
}

func TestEngineErrorStatus(t *testing.T) {
	env := newTestEnv(t)
	token := env.createWoof()

	status, body := env.buy(bob, "woof1missing", 10, 10)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "PairNotFound", decodeError(t, body).Kind)

	status, body = env.post("/api/v1/execute", env.envelope(bob, `{"update_config":{"enabled":false}}`, ""))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unauthorized", decodeError(t, body).Kind)

	status, body = env.post("/api/v1/execute", env.envelope(bob, fmt.Sprintf(`{"graduate":{"token_address":%q}}`, token), ""))
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Unauthorized", decodeError(t, body).Kind)

	status, body = env.post("/api/v1/execute", env.envelope(admin, fmt.Sprintf(`{"graduate":{"token_address":%q}}`, token), ""))
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "ThresholdNotMet", decodeError(t, body).Kind)

	status, body = env.get("/api/v1/orders/42")
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "OrderNotFound", decodeError(t, body).Kind)
}

func TestStatusFor(t *testing.T) {
	tests := map[launchpad.Kind]int{
		launchpad.KindUnauthorized:          http.StatusForbidden,
		launchpad.KindNotOwner:              http.StatusForbidden,
		launchpad.KindPairNotFound:          http.StatusNotFound,
		launchpad.KindOrderNotFound:         http.StatusNotFound,
		launchpad.KindAmountZero:            http.StatusBadRequest,
		launchpad.KindInvalidConfig:         http.StatusBadRequest,
		launchpad.KindSlippageExceeded:      http.StatusUnprocessableEntity,
		launchpad.KindCurveClosed:           http.StatusUnprocessableEntity,
		launchpad.KindInsufficientLiquidity: http.StatusUnprocessableEntity,
	}
	for kind, want := range tests {
		assert.Equal(t, want, StatusFor(kind), kind)
	}
}

func TestQueryEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createWoof()

	status, body := env.post("/api/v1/query", `{"get_config":{}}`)
	require.Equal(t, http.StatusOK, status, string(body))
	var cfg launchpad.Config
	require.NoError(t, json.Unmarshal(body, &cfg))
	assert.Equal(t, admin, cfg.Owner)

	status, body = env.post("/api/v1/query", `{"list_token_pairs":{}}`)
	require.Equal(t, http.StatusOK, status)
	var pairs launchpad.PairsResponse
	require.NoError(t, json.Unmarshal(body, &pairs))
	require.Len(t, pairs.Pairs, 1)
	assert.Equal(t, "WOOF/huahua", pairs.Pairs[0].PairID)

	status, _ = env.post("/api/v1/query", `{"get_config":{},"get_system_stats":{}}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.get("/api/v1/orderbook?pair_id=WOOF/huahua&depth=5")
	require.Equal(t, http.StatusOK, status, string(body))

	status, _ = env.get("/api/v1/orderbook")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = env.get("/api/v1/trades?limit=abc")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAMMQuote(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.get("/api/v1/amm/quote?token=woof1tok&side=buy&amount=1000")
	assert.Equal(t, http.StatusNotFound, status)

	require.NoError(t, env.venue.AddLiquidity(context.Background(), amm.Liquidity{
		TokenAddress: "woof1tok",
		PairID:       "TOK/huahua",
		TokenAmount:  math.NewInt(1_000_000),
		BaseAmount:   math.NewInt(1_000_000),
	}))

	status, body := env.get("/api/v1/amm/quote?token=woof1tok&side=buy&amount=1000")
	require.Equal(t, http.StatusOK, status, string(body))
	var quote quoteResponse
	require.NoError(t, json.Unmarshal(body, &quote))
	assert.Equal(t, "996", quote.AmountOut.String())

	status, _ = env.get("/api/v1/amm/quote?token=woof1tok&side=hold&amount=1000")
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = env.get("/api/v1/amm/pools/woof1tok")
	require.Equal(t, http.StatusOK, status)
	var pool amm.Pool
	require.NoError(t, json.Unmarshal(body, &pool))
	assert.Equal(t, uint64(30), pool.FeeBps)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.createWoof()

	status, body := env.get("/metrics")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), `woofpad_messages_total{action="create_token",result="ok"} 1`)
}

func TestWebsocketFeed(t *testing.T) {
	env := newTestEnv(t)
	token := env.createWoof()

	url := "ws" + strings.TrimPrefix(env.srv.URL, "http") + "/ws?types=trade.executed"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.Eventually(t, func() bool { return env.hub.Clients() == 1 }, time.Second, 10*time.Millisecond)

	status, body := env.buy(bob, token, 1_000_000, 150)
	require.Equal(t, http.StatusOK, status, string(body))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var ev events.TradeExecutedEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, events.TradeExecuted, ev.EventType)
	assert.Equal(t, "WOOF/huahua", ev.PairID)
	assert.Equal(t, "curve", ev.Source)
	assert.Equal(t, bob, ev.Buyer)
}
