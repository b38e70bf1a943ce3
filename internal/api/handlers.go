package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"cosmossdk.io/math"
	"github.com/gorilla/mux"

	"github.com/rovshanmuradov/woofpad/internal/dex/model"
	"github.com/rovshanmuradov/woofpad/internal/launchpad"
	"github.com/rovshanmuradov/woofpad/internal/types"
)

const maxBodyBytes = 1 << 20

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// handleExecute validates an envelope against the schema, then runs it.
func (s *Server) handleExecute(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	if err := ValidateEnvelope(body); err != nil {
		writeSchemaError(w, err)
		return
	}
	var env launchpad.Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		writeError(w, http.StatusBadRequest, string(launchpad.KindInvalidMessage), err.Error())
		return
	}
	resp, err := s.engine.Execute(r.Context(), env)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	if err := ValidateQuery(body); err != nil {
		writeSchemaError(w, err)
		return
	}
	var q launchpad.QueryMsg
	if err := json.Unmarshal(body, &q); err != nil {
		writeError(w, http.StatusBadRequest, string(launchpad.KindInvalidMessage), err.Error())
		return
	}
	s.query(w, r, q)
}

func (s *Server) query(w http.ResponseWriter, r *http.Request, q launchpad.QueryMsg) {
	res, err := s.engine.Query(r.Context(), q)
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// poolResponse is a pool with display strings and its migration record.
type poolResponse struct {
	model.PoolView
	Migration *launchpad.Migration `json:"migration,omitempty"`
}

func (s *Server) handleGetPool(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]
	res, err := s.engine.Query(r.Context(), launchpad.QueryMsg{GetPool: &launchpad.GetPoolQuery{TokenAddress: token}})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	pool := res.(launchpad.PoolResponse)
	res, err = s.engine.Query(r.Context(), launchpad.QueryMsg{GetTokenInfo: &launchpad.TokenQuery{TokenAddress: token}})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	info := res.(launchpad.TokenInfoResponse)
	writeJSON(w, http.StatusOK, poolResponse{
		PoolView:  model.NewPoolView(pool.Pool, info.Pair),
		Migration: pool.Migration,
	})
}

func (s *Server) handleListPairs(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	s.query(w, r, launchpad.QueryMsg{ListTokenPairs: &launchpad.ListTokenPairsQuery{
		StartAfter: r.URL.Query().Get("start_after"),
		Limit:      limit,
	}})
}

func (s *Server) handleGetOrderBook(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	pairID := params.Get("pair_id")
	if pairID == "" {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, "pair_id is required")
		return
	}
	depth := 0
	if raw := params.Get("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			writeError(w, http.StatusBadRequest, KindInvalidRequest, fmt.Sprintf("invalid depth %q", raw))
			return
		}
		depth = d
	}
	s.query(w, r, launchpad.QueryMsg{GetOrderBook: &launchpad.GetOrderBookQuery{PairID: pairID, Depth: depth}})
}

func (s *Server) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	s.query(w, r, launchpad.QueryMsg{GetOrder: &launchpad.GetOrderQuery{OrderID: id}})
}

func (s *Server) handleUserOrders(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	startAfter, err := uintParam(r, "start_after")
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	status := types.OrderStatus(params.Get("status"))
	if status != "" && !status.Valid() {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, fmt.Sprintf("invalid status %q", status))
		return
	}
	s.query(w, r, launchpad.QueryMsg{GetUserOrders: &launchpad.GetUserOrdersQuery{
		Address:    mux.Vars(r)["address"],
		PairID:     params.Get("pair_id"),
		Status:     status,
		StartAfter: startAfter,
		Limit:      limit,
	}})
}

func (s *Server) handleUserTrades(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	startAfter, err := uintParam(r, "start_after")
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	s.query(w, r, launchpad.QueryMsg{GetUserTrades: &launchpad.GetUserTradesQuery{
		Address:    mux.Vars(r)["address"],
		PairID:     r.URL.Query().Get("pair_id"),
		StartAfter: startAfter,
		Limit:      limit,
	}})
}

// balancesResponse adds a base-denominated estimate for each launched token held.
type balancesResponse struct {
	launchpad.BalanceResponse
	Estimates []model.TokenEstimate `json:"estimates"`
}

func (s *Server) handleUserBalances(w http.ResponseWriter, r *http.Request) {
	address := mux.Vars(r)["address"]
	res, err := s.engine.Query(r.Context(), launchpad.QueryMsg{GetBalance: &launchpad.GetBalanceQuery{
		Address: address,
		Denom:   r.URL.Query().Get("denom"),
	}})
	if err != nil {
		s.writeEngineError(w, err)
		return
	}
	out := balancesResponse{BalanceResponse: res.(launchpad.BalanceResponse), Estimates: []model.TokenEstimate{}}
	for _, coin := range out.Balances {
		priced, err := s.engine.Query(r.Context(), launchpad.QueryMsg{GetCurrentPrice: &launchpad.TokenQuery{TokenAddress: coin.Denom}})
		if err != nil {
			// Not a launched token, e.g. the base denom.
			continue
		}
		info, err := s.engine.Query(r.Context(), launchpad.QueryMsg{GetTokenInfo: &launchpad.TokenQuery{TokenAddress: coin.Denom}})
		if err != nil {
			continue
		}
		price := priced.(launchpad.CurrentPriceResponse).Price
		out.Estimates = append(out.Estimates, model.Estimate(coin.Denom, coin.Amount, price, info.(launchpad.TokenInfoResponse).Pair))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRecentTrades(w http.ResponseWriter, r *http.Request) {
	limit, err := limitParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	startFrom, err := uintParam(r, "start_from")
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	s.query(w, r, launchpad.QueryMsg{GetRecentTrades: &launchpad.GetRecentTradesQuery{StartFrom: startFrom, Limit: limit}})
}

func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, launchpad.QueryMsg{GetConfig: &struct{}{}})
}

func (s *Server) handleGetStats(w http.ResponseWriter, r *http.Request) {
	s.query(w, r, launchpad.QueryMsg{GetSystemStats: &struct{}{}})
}

func (s *Server) handleAMMPool(w http.ResponseWriter, r *http.Request) {
	if s.venue == nil {
		writeError(w, http.StatusNotFound, string(launchpad.KindPairNotFound), "no secondary AMM configured")
		return
	}
	token := mux.Vars(r)["token"]
	pool, ok := s.venue.Pool(token)
	if !ok {
		writeError(w, http.StatusNotFound, string(launchpad.KindPairNotFound), fmt.Sprintf("no AMM pool for %s", token))
		return
	}
	writeJSON(w, http.StatusOK, pool)
}

type quoteResponse struct {
	TokenAddress string     `json:"token_address"`
	Side         types.Side `json:"side"`
	AmountIn     math.Int   `json:"amount_in"`
	AmountOut    math.Int   `json:"amount_out"`
}

func (s *Server) handleAMMQuote(w http.ResponseWriter, r *http.Request) {
	if s.venue == nil {
		writeError(w, http.StatusNotFound, string(launchpad.KindPairNotFound), "no secondary AMM configured")
		return
	}
	params := r.URL.Query()
	token := params.Get("token")
	side, err := types.ParseSide(params.Get("side"))
	if err != nil {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, err.Error())
		return
	}
	amount, ok := math.NewIntFromString(params.Get("amount"))
	if !ok || !amount.IsPositive() {
		writeError(w, http.StatusBadRequest, KindInvalidRequest, fmt.Sprintf("invalid amount %q", params.Get("amount")))
		return
	}
	out, err := s.venue.Quote(token, side, amount)
	if err != nil {
		writeError(w, http.StatusNotFound, string(launchpad.KindPairNotFound), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{TokenAddress: token, Side: side, AmountIn: amount, AmountOut: out})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "woofpad",
	})
}

func limitParam(r *http.Request) (*uint32, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid limit %q", raw)
	}
	limit := uint32(n)
	return &limit, nil
}

func uintParam(r *http.Request, name string) (uint64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return n, nil
}
