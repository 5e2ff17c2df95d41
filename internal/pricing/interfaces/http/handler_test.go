package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/response"
)

type stubService struct {
	priceErr   error
	lastPrice  application.PriceOptionCommand
	lastBatch  application.BatchPriceOptionsCommand
	lastLimit  int
	latestErr  error
	riskResult *application.PortfolioRisk
}

func (s *stubService) PriceOption(_ context.Context, cmd application.PriceOptionCommand) (*domain.PricingResult, error) {
	s.lastPrice = cmd
	if s.priceErr != nil {
		return nil, s.priceErr
	}
	return &domain.PricingResult{ResultID: "r-1", Symbol: cmd.Symbol}, nil
}

func (s *stubService) BatchPriceOptions(_ context.Context, cmd application.BatchPriceOptionsCommand) (*application.BatchPricingResult, error) {
	s.lastBatch = cmd
	return &application.BatchPricingResult{BatchID: cmd.BatchID, SuccessCount: len(cmd.Contracts), Failures: []application.BatchFailure{}}, nil
}

func (s *stubService) GetLatestResult(_ context.Context, symbol string) (*domain.PricingResult, error) {
	if s.latestErr != nil {
		return nil, s.latestErr
	}
	return &domain.PricingResult{Symbol: symbol}, nil
}

func (s *stubService) GetHistory(_ context.Context, _ string, limit int) ([]*domain.PricingResult, error) {
	s.lastLimit = limit
	return []*domain.PricingResult{}, nil
}

func (s *stubService) ImpliedVolatility(_ context.Context, q application.ImpliedVolatilityQuery) (*application.ImpliedVolatilityResult, error) {
	return &application.ImpliedVolatilityResult{Symbol: q.Symbol, ImpliedVolatility: 0.2}, nil
}

func (s *stubService) CalculatePortfolioRisk(_ context.Context, cmd application.PortfolioRiskCommand) (*application.PortfolioRisk, error) {
	if s.riskResult == nil {
		return nil, fmt.Errorf("%w: portfolio has no positions", domain.ErrInvalidArgument)
	}
	s.riskResult.PortfolioID = cmd.PortfolioID
	return s.riskResult, nil
}

func newRouter(s *stubService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewPricingHandler(s, s, s).RegisterRoutes(r)
	return r
}

func do(t *testing.T, r http.Handler, method, path string, body any) (*httptest.ResponseRecorder, response.Response) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestPriceOptionRoute(t *testing.T) {
	s := &stubService{}
	r := newRouter(s)

	w, resp := do(t, r, http.MethodPost, "/api/v1/pricing/option/price", map[string]any{
		"symbol":           "AAPL",
		"option_type":      "CALL",
		"strike_price":     100,
		"time_to_expiry":   1,
		"underlying_price": 101.5,
		"volatility":       0.2,
		"risk_free_rate":   0.05,
		"pricing_model":    "BINOMIAL",
		"binomial_steps":   300,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "AAPL", s.lastPrice.Symbol)
	assert.Equal(t, 101.5, s.lastPrice.UnderlyingPrice)
	assert.Equal(t, 300, s.lastPrice.BinomialSteps)
	assert.Equal(t, "BINOMIAL", s.lastPrice.PricingModel)

	w, _ = do(t, r, http.MethodPost, "/api/v1/pricing/option/price", map[string]any{"symbol": "AAPL"})
	assert.Equal(t, http.StatusBadRequest, w.Code, "underlying_price is required")
}

func TestErrorStatusMapping(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: strike must be positive", domain.ErrInvalidArgument), http.StatusBadRequest, "INVALID_ARGUMENT"},
		{fmt.Errorf("%w: no engine", domain.ErrUnsupportedConfiguration), http.StatusUnprocessableEntity, "UNSUPPORTED_CONFIGURATION"},
		{fmt.Errorf("%w: p out of range", domain.ErrComputationFault), http.StatusInternalServerError, "COMPUTATION_FAULT"},
		{context.DeadlineExceeded, http.StatusServiceUnavailable, "INTERNAL"},
		{errors.New("db down"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, c := range cases {
		t.Run(c.code, func(t *testing.T) {
			r := newRouter(&stubService{priceErr: c.err})
			w, resp := do(t, r, http.MethodPost, "/api/v1/pricing/option/price", map[string]any{"underlying_price": 100})
			assert.Equal(t, c.status, w.Code)
			assert.Equal(t, c.status, resp.Code)
			assert.Equal(t, c.code, resp.Error)
			assert.Equal(t, c.err.Error(), resp.Message)
		})
	}
}

func TestBatchRoute(t *testing.T) {
	s := &stubService{}
	r := newRouter(s)

	w, _ := do(t, r, http.MethodPost, "/api/v1/pricing/option/batch", map[string]any{
		"batch_id": "b-1",
		"contracts": []map[string]any{
			{"symbol": "AAPL", "underlying_price": 100},
			{"symbol": "MSFT", "underlying_price": 300},
		},
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b-1", s.lastBatch.BatchID)
	require.Len(t, s.lastBatch.Contracts, 2)
	assert.Equal(t, 300.0, s.lastBatch.Contracts[1].UnderlyingPrice)

	w, _ = do(t, r, http.MethodPost, "/api/v1/pricing/option/batch", map[string]any{"contracts": []any{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestResultRoutes(t *testing.T) {
	s := &stubService{}
	r := newRouter(s)

	w, _ := do(t, r, http.MethodGet, "/api/v1/pricing/results/AAPL", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w, _ = do(t, r, http.MethodGet, "/api/v1/pricing/results/AAPL/history?limit=5", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, s.lastLimit)

	w, _ = do(t, r, http.MethodGet, "/api/v1/pricing/results/AAPL/history?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.latestErr = domain.ErrResultNotFound
	w, resp := do(t, r, http.MethodGet, "/api/v1/pricing/results/TSLA", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", resp.Error)
}

func TestImpliedVolatilityAndRiskRoutes(t *testing.T) {
	s := &stubService{}
	r := newRouter(s)

	w, resp := do(t, r, http.MethodPost, "/api/v1/pricing/option/implied-volatility", map[string]any{
		"symbol": "AAPL", "option_type": "CALL", "market_price": 10.45,
	})
	assert.Equal(t, http.StatusOK, w.Code)
	data := resp.Data.(map[string]any)
	assert.Equal(t, 0.2, data["implied_volatility"])

	w, _ = do(t, r, http.MethodPost, "/api/v1/pricing/portfolio/risk", map[string]any{"portfolio_id": "pf"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	s.riskResult = &application.PortfolioRisk{VaR95: 12.5}
	w, resp = do(t, r, http.MethodPost, "/api/v1/pricing/portfolio/risk", map[string]any{"portfolio_id": "pf"})
	assert.Equal(t, http.StatusOK, w.Code)
	data = resp.Data.(map[string]any)
	assert.Equal(t, "pf", data["portfolio_id"])
	assert.Equal(t, 12.5, data["var_95"])
}
