package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/contactkeval/iv-calculator/internal/batch"
	"github.com/contactkeval/iv-calculator/internal/data"
	"github.com/contactkeval/iv-calculator/internal/logger"
	"github.com/contactkeval/iv-calculator/internal/pricing"
)

// maxBatchRecords caps the size of a single /batch request.
const maxBatchRecords = 10000

// RegisterRoutes binds the pricing endpoints under router.
func (s *Server) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/price", s.price)
	router.POST("/implied-volatility", s.impliedVolatility)
	router.POST("/batch", s.processBatch)
}

// Contract is the part of every request that describes the option.
type Contract struct {
	Type   string  `json:"type" binding:"required"`
	Asset  float64 `json:"asset_price"`
	Strike float64 `json:"strike_price"`
	Time   float64 `json:"time_to_expiry"`
	Rate   float64 `json:"risk_free_rate"`
}

func (c Contract) record() data.OptionRecord {
	return data.OptionRecord{Type: c.Type, Asset: c.Asset, Strike: c.Strike, Time: c.Time, Rate: c.Rate}
}

// PriceRequest prices an option from its volatility.
type PriceRequest struct {
	Contract
	Volatility *float64 `json:"volatility"`
}

// PriceResponse is the priced record plus its vega.
type PriceResponse struct {
	data.OptionRecord
	Vega *float64 `json:"vega,omitempty"`
}

// ImpliedVolRequest solves for the volatility behind a market price.
type ImpliedVolRequest struct {
	Contract
	Price  *float64 `json:"price"`
	Method string   `json:"method"`
}

// ImpliedVolResponse is the solved record plus solver details.
type ImpliedVolResponse struct {
	data.OptionRecord
	Method     string `json:"method"`
	Iterations int    `json:"iterations"`
}

// BatchRequest evaluates many records in one call.
type BatchRequest struct {
	Method  string              `json:"method"`
	Records []data.OptionRecord `json:"records" binding:"required"`
}

// BatchResponse carries the evaluated records in request order.
type BatchResponse struct {
	Records []data.OptionRecord `json:"records"`
	Summary batch.Summary       `json:"summary"`
}

func (s *Server) price(c *gin.Context) {
	var req PriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	rec := req.record()
	rec.Volatility = req.Volatility
	if _, err := s.proc.Evaluate(&rec, s.proc.Method()); err != nil {
		abort(c, statusFor(err), err)
		return
	}

	resp := PriceResponse{OptionRecord: rec}
	if vega, err := rec.Spec(*rec.Volatility).Vega(); err == nil {
		resp.Vega = &vega
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) impliedVolatility(c *gin.Context) {
	var req ImpliedVolRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	method, err := s.method(req.Method)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	rec := req.record()
	rec.Price = req.Price
	sol, err := s.proc.Evaluate(&rec, method)
	if err != nil {
		abort(c, statusFor(err), err)
		return
	}
	c.JSON(http.StatusOK, ImpliedVolResponse{
		OptionRecord: rec,
		Method:       sol.Method.String(),
		Iterations:   sol.Iterations,
	})
}

func (s *Server) processBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}
	if len(req.Records) > maxBatchRecords {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many records"})
		return
	}
	method, err := s.method(req.Method)
	if err != nil {
		abort(c, http.StatusBadRequest, err)
		return
	}

	summary, err := s.proc.WithMethod(method).Process(c.Request.Context(), req.Records)
	if err != nil {
		logger.Errorf("server: batch aborted: %v", err)
		abort(c, http.StatusServiceUnavailable, err)
		return
	}
	c.JSON(http.StatusOK, BatchResponse{Records: req.Records, Summary: summary})
}

// method resolves a request's solver name, defaulting to the processor's.
func (s *Server) method(name string) (pricing.Method, error) {
	if name == "" {
		return s.proc.Method(), nil
	}
	return pricing.ParseMethod(name)
}

// statusFor maps evaluation errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case pricing.IsInvalidInput(err):
		return http.StatusBadRequest
	case pricing.IsNonConvergence(err):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func abort(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Errorf("server: %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}
