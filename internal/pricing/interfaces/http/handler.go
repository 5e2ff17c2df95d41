package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/response"
)

// PricingCommands 定价写操作
type PricingCommands interface {
	PriceOption(ctx context.Context, cmd application.PriceOptionCommand) (*domain.PricingResult, error)
	BatchPriceOptions(ctx context.Context, cmd application.BatchPriceOptionsCommand) (*application.BatchPricingResult, error)
}

// PricingQueries 定价查询
type PricingQueries interface {
	GetLatestResult(ctx context.Context, symbol string) (*domain.PricingResult, error)
	GetHistory(ctx context.Context, symbol string, limit int) ([]*domain.PricingResult, error)
	ImpliedVolatility(ctx context.Context, q application.ImpliedVolatilityQuery) (*application.ImpliedVolatilityResult, error)
}

// RiskCalculator 组合风险
type RiskCalculator interface {
	CalculatePortfolioRisk(ctx context.Context, cmd application.PortfolioRiskCommand) (*application.PortfolioRisk, error)
}

// PricingHandler HTTP 处理器
// 负责处理与定价相关的 HTTP 请求
type PricingHandler struct {
	cmd   PricingCommands
	query PricingQueries
	risk  RiskCalculator
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(cmd PricingCommands, query PricingQueries, risk RiskCalculator) *PricingHandler {
	return &PricingHandler{cmd: cmd, query: query, risk: risk}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由
func (h *PricingHandler) RegisterRoutes(router gin.IRouter) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/option/price", h.PriceOption)
		api.POST("/option/batch", h.BatchPriceOptions)
		api.POST("/option/implied-volatility", h.ImpliedVolatility)
		api.POST("/portfolio/risk", h.PortfolioRisk)
		api.GET("/results/:symbol", h.GetLatestResult)
		api.GET("/results/:symbol/history", h.GetHistory)
	}
}

// PricingRequest 定价请求
type PricingRequest struct {
	application.ContractSpec
	UnderlyingPrice float64 `json:"underlying_price" binding:"required"`
	Volatility      float64 `json:"volatility"`
	RiskFreeRate    float64 `json:"risk_free_rate"`
}

func (r PricingRequest) command() application.PriceOptionCommand {
	return application.PriceOptionCommand{
		ContractSpec:    r.ContractSpec,
		UnderlyingPrice: r.UnderlyingPrice,
		Volatility:      r.Volatility,
		RiskFreeRate:    r.RiskFreeRate,
	}
}

// BatchPricingRequest 批量定价请求
type BatchPricingRequest struct {
	BatchID   string           `json:"batch_id"`
	Contracts []PricingRequest `json:"contracts" binding:"required,min=1,dive"`
}

// PriceOption 期权定价并返回价格与 Greeks
func (h *PricingHandler) PriceOption(c *gin.Context) {
	var req PricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.cmd.PriceOption(c.Request.Context(), req.command())
	if err != nil {
		h.fail(c, "Failed to price option", err)
		return
	}
	response.Success(c, result)
}

// BatchPriceOptions 批量定价
func (h *PricingHandler) BatchPriceOptions(c *gin.Context) {
	var req BatchPricingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	cmd := application.BatchPriceOptionsCommand{
		BatchID:   req.BatchID,
		Contracts: make([]application.PriceOptionCommand, len(req.Contracts)),
	}
	for i, r := range req.Contracts {
		cmd.Contracts[i] = r.command()
	}

	result, err := h.cmd.BatchPriceOptions(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "Failed to price batch", err)
		return
	}
	response.Success(c, result)
}

// ImpliedVolatility 反解隐含波动率
func (h *PricingHandler) ImpliedVolatility(c *gin.Context) {
	var q application.ImpliedVolatilityQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.query.ImpliedVolatility(c.Request.Context(), q)
	if err != nil {
		h.fail(c, "Failed to solve implied volatility", err)
		return
	}
	response.Success(c, result)
}

// PortfolioRisk 计算组合风险
func (h *PricingHandler) PortfolioRisk(c *gin.Context) {
	var cmd application.PortfolioRiskCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.risk.CalculatePortfolioRisk(c.Request.Context(), cmd)
	if err != nil {
		h.fail(c, "Failed to calculate portfolio risk", err)
		return
	}
	response.Success(c, result)
}

// GetLatestResult 获取最新定价结果
func (h *PricingHandler) GetLatestResult(c *gin.Context) {
	result, err := h.query.GetLatestResult(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		h.fail(c, "Failed to get latest pricing result", err)
		return
	}
	response.Success(c, result)
}

// GetHistory 获取定价历史，limit 由查询参数指定
func (h *PricingHandler) GetHistory(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", "")
			return
		}
		limit = n
	}

	results, err := h.query.GetHistory(c.Request.Context(), c.Param("symbol"), limit)
	if err != nil {
		h.fail(c, "Failed to get pricing history", err)
		return
	}
	response.Success(c, gin.H{
		"symbol":  c.Param("symbol"),
		"results": results,
	})
}

func (h *PricingHandler) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), msg, "error", err)
	} else {
		logger.Warn(c.Request.Context(), msg, "error", err)
	}
	code := domain.ErrorCode(err)
	if status == http.StatusNotFound {
		code = "NOT_FOUND"
	}
	response.ErrorWithStatus(c, status, err.Error(), code)
}

// statusFor 错误类型到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrResultNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrUnsupportedConfiguration):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
