package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/sessioncache/internal/data/uow"
	"github.com/yungbote/sessioncache/internal/http/response"
	"github.com/yungbote/sessioncache/internal/services"
)

const defaultDemoProductID int64 = 1

type DemoHandler struct {
	orders services.OrderService
}

func NewDemoHandler(orders services.OrderService) *DemoHandler {
	return &DemoHandler{orders: orders}
}

// GET /demo/place-order?productId=1[&policy=shared|copy][&strategy=in_place|clone]
func (h *DemoHandler) PlaceOrder(c *gin.Context) {
	productID := defaultDemoProductID
	if raw := strings.TrimSpace(c.Query("productId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			response.RespondError(c, http.StatusBadRequest, "invalid_product_id", fmt.Errorf("invalid productId %q", raw))
			return
		}
		productID = id
	}

	var opts services.PlaceOrderOptions
	if raw := strings.TrimSpace(c.Query("policy")); raw != "" {
		p, err := uow.ParsePolicy(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_policy", err)
			return
		}
		opts.Policy = p
	}
	if raw := strings.TrimSpace(c.Query("strategy")); raw != "" {
		s, err := services.ParseStrategy(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, "invalid_strategy", err)
			return
		}
		opts.Strategy = s
	}

	res, err := h.orders.PlaceOrder(c.Request.Context(), productID, opts)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
