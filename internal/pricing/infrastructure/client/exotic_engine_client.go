package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

const (
	barrierPath = "/v1/barrier/price"
	asianPath   = "/v1/asian/price"
)

// ExoticEngineClient 通过 HTTP 调用外部奇异期权定价引擎
type ExoticEngineClient struct {
	http    *resty.Client
	timeout time.Duration
}

type priceResponse struct {
	Price float64 `json:"price"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// NewExoticEngine baseURL 为空时返回 nil 接口，障碍/亚式期权定价随之报 ErrUnsupportedConfiguration
func NewExoticEngine(baseURL string, timeout time.Duration) domain.ExoticEngine {
	if baseURL == "" {
		return nil
	}
	return NewExoticEngineClient(baseURL, timeout)
}

// NewExoticEngineClient 创建引擎客户端
func NewExoticEngineClient(baseURL string, timeout time.Duration) *ExoticEngineClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(100 * time.Millisecond).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || r.StatusCode() >= http.StatusInternalServerError
		}).
		SetHeader("Content-Type", "application/json")
	return &ExoticEngineClient{http: c, timeout: timeout}
}

var _ domain.ExoticEngine = (*ExoticEngineClient)(nil)

// BarrierPrice 障碍期权定价
func (c *ExoticEngineClient) BarrierPrice(q domain.BarrierQuote) (float64, error) {
	return c.post(barrierPath, q)
}

// AsianPrice 亚式期权定价
func (c *ExoticEngineClient) AsianPrice(q domain.AsianQuote) (float64, error) {
	return c.post(asianPath, q)
}

func (c *ExoticEngineClient) post(path string, body any) (float64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	var (
		out     priceResponse
		errBody errorResponse
	)
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		SetResult(&out).
		SetError(&errBody).
		Post(path)
	if err != nil {
		return 0, fmt.Errorf("%w: exotic pricing engine unreachable: %v", domain.ErrUnsupportedConfiguration, err)
	}

	switch {
	case resp.StatusCode() == http.StatusOK:
		return out.Price, nil
	case resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusNotImplemented:
		return 0, fmt.Errorf("%w: exotic pricing engine does not support %s", domain.ErrUnsupportedConfiguration, path)
	case resp.StatusCode() >= 400 && resp.StatusCode() < 500:
		return 0, fmt.Errorf("%w: exotic pricing engine rejected request: %s", domain.ErrInvalidArgument, errBody.Error)
	default:
		return 0, fmt.Errorf("%w: exotic pricing engine returned %d: %s", domain.ErrComputationFault, resp.StatusCode(), errBody.Error)
	}
}
