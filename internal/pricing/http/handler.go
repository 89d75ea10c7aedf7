package http

import (
	"context"
	"net/http"

	"github.com/fairwaylabs/teetime-backend/internal/pkg/request"
	"github.com/fairwaylabs/teetime-backend/internal/pkg/response"
	"github.com/fairwaylabs/teetime-backend/internal/pricing"
	"github.com/gin-gonic/gin"
)

type Handler struct {
	service pricing.Service
	dedupe  *pricing.DedupeService
}

func NewHandler(service pricing.Service, dedupe *pricing.DedupeService) *Handler {
	return &Handler{
		service: service,
		dedupe:  dedupe,
	}
}

// Calculate is the public price-explanation endpoint.
func (h *Handler) Calculate(c *gin.Context) {
	var body CalculateRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	result, err := h.service.Calculate(c.Request.Context(), pricing.CalculateRequest{
		CourseID:         body.CourseID,
		Date:             body.Date,
		Time:             body.Time,
		Players:          body.Players,
		LeadTimeHours:    body.LeadTimeHours,
		OccupancyPercent: body.OccupancyPercent,
		FallbackBase:     body.BasePrice,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewCalculateResponse(result))
}

// GetRuleSet dumps a course's full pricing configuration.
func (h *Handler) GetRuleSet(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}

	rs, err := h.service.GetRuleSet(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewRuleSetResponse(rs))
}

func (h *Handler) CreateSeason(c *gin.Context) {
	var body SeasonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	s := body.ToModel()
	if err := h.service.CreateSeason(c.Request.Context(), s); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewSeasonResponse(s))
}

func (h *Handler) UpdateSeason(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body SeasonBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	s := body.ToModel()
	s.ID = uri.ID
	if err := h.service.UpdateSeason(c.Request.Context(), s); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSeasonResponse(s))
}

func (h *Handler) DeleteSeason(c *gin.Context) {
	h.deleteScoped(c, h.service.DeleteSeason)
}

func (h *Handler) CreateTimeBand(c *gin.Context) {
	var body TimeBandBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	b := body.ToModel()
	if err := h.service.CreateTimeBand(c.Request.Context(), b); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewTimeBandResponse(b))
}

func (h *Handler) UpdateTimeBand(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body TimeBandBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	b := body.ToModel()
	b.ID = uri.ID
	if err := h.service.UpdateTimeBand(c.Request.Context(), b); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewTimeBandResponse(b))
}

func (h *Handler) DeleteTimeBand(c *gin.Context) {
	h.deleteScoped(c, h.service.DeleteTimeBand)
}

func (h *Handler) CreatePriceRule(c *gin.Context) {
	var body PriceRuleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	p := body.ToModel()
	if err := h.service.CreatePriceRule(c.Request.Context(), p); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPriceRuleResponse(p))
}

func (h *Handler) UpdatePriceRule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body PriceRuleBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	p := body.ToModel()
	p.ID = uri.ID
	if err := h.service.UpdatePriceRule(c.Request.Context(), p); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewPriceRuleResponse(p))
}

func (h *Handler) DeletePriceRule(c *gin.Context) {
	h.deleteScoped(c, h.service.DeletePriceRule)
}

func (h *Handler) CreateOverride(c *gin.Context) {
	var body OverrideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	o := body.ToModel()
	if err := h.service.CreateOverride(c.Request.Context(), o); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewOverrideResponse(o))
}

func (h *Handler) UpdateOverride(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body OverrideBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	o := body.ToModel()
	o.ID = uri.ID
	if err := h.service.UpdateOverride(c.Request.Context(), o); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewOverrideResponse(o))
}

func (h *Handler) DeleteOverride(c *gin.Context) {
	h.deleteScoped(c, h.service.DeleteOverride)
}

// UpsertBaseProduct sets a course's base fees.
func (h *Handler) UpsertBaseProduct(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body BaseProductBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	p := &pricing.BaseProduct{
		CourseID:        uri.ID,
		GreenFeeBaseUSD: body.GreenFeeBaseUSD,
		CartFeeUSD:      body.CartFeeUSD,
		CaddieFeeUSD:    body.CaddieFeeUSD,
		InsuranceFeeUSD: body.InsuranceFeeUSD,
	}
	if err := h.service.UpsertBaseProduct(c.Request.Context(), p); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// ReplaceCanonicalBands sets a course's canonical band allowlist.
func (h *Handler) ReplaceCanonicalBands(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var body CanonicalBandsBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	bands := make([]pricing.CanonicalBand, 0, len(body.Bands))
	for _, b := range body.Bands {
		start, _ := pricing.ParseClock(b.StartTime)
		end, _ := pricing.ParseClock(b.EndTime)
		bands = append(bands, pricing.CanonicalBand{
			CourseID:    uri.ID,
			Label:       b.Label,
			StartMinute: start,
			EndMinute:   end,
		})
	}
	if err := h.service.ReplaceCanonicalBands(c.Request.Context(), uri.ID, bands); err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, body)
}

// Dedupe runs the administrative deduplication routine. Runs for one course
// must be serialized by the operator; the service does not lock.
func (h *Handler) Dedupe(c *gin.Context) {
	var body DedupeRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	ctx := c.Request.Context()
	removed := 0

	switch body.Type {
	case "time_bands":
		n, err := h.dedupe.DedupeTimeBands(ctx, body.CourseID)
		if err != nil {
			response.Error(c, err)
			return
		}
		removed = n
	case "price_rules":
		n, err := h.dedupe.DedupePriceRules(ctx, body.CourseID)
		if err != nil {
			response.Error(c, err)
			return
		}
		removed = n
	case "price_rules_by_name":
		strategy := pricing.DedupeStrategy(body.Strategy)
		if strategy == "" {
			strategy = pricing.StrategyHighestPriority
		}
		n, err := h.dedupe.DedupePriceRulesByName(ctx, body.CourseID, strategy)
		if err != nil {
			response.Error(c, err)
			return
		}
		removed = n
	case "all":
		nBands, err := h.dedupe.DedupeTimeBands(ctx, body.CourseID)
		if err != nil {
			response.Error(c, err)
			return
		}
		nRules, err := h.dedupe.DedupePriceRules(ctx, body.CourseID)
		if err != nil {
			response.Error(c, err)
			return
		}
		removed = nBands + nRules
	}

	c.JSON(http.StatusOK, DedupeResponse{RemovedCount: removed})
}

// deleteScoped handles the shared delete shape: record id in the path,
// course_id as a query parameter scoping the delete.
func (h *Handler) deleteScoped(c *gin.Context, del func(ctx context.Context, courseID, id string) error) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	var q ByCourseRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	if err := del(c.Request.Context(), q.CourseID, uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ByCourseRequest scopes an operation to one course.
type ByCourseRequest struct {
	CourseID string `form:"course_id" binding:"required,uuid"`
}
