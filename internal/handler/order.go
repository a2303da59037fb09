package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/giftnest/storefront/internal/domain/catalog"
	"github.com/giftnest/storefront/internal/domain/order"
)

type createOrderRequest struct {
	ProductID string          `json:"productId"`
	Buyer     order.Buyer     `json:"buyer"`
	Qty       int             `json:"qty"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	GST       decimal.Decimal `json:"gst"`
	Delivery  decimal.Decimal `json:"delivery"`
	Total     decimal.Decimal `json:"total"`
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	o, err := h.orders.PlaceOrder(r.Context(), order.PlaceOrderRequest{
		ProductID: req.ProductID,
		Buyer:     req.Buyer,
		Qty:       req.Qty,
		Subtotal:  req.Subtotal,
		GST:       req.GST,
		Delivery:  req.Delivery,
		Total:     req.Total,
	})
	if err != nil {
		h.writeOrderError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	o, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, order.ErrNotFound) {
			writeMsg(w, http.StatusNotFound, "Order not found")
			return
		}
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.ListOrders(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type updateOrderRequest struct {
	Status order.Status `json:"status"`
}

type updateOrderResponse struct {
	Msg   string       `json:"msg"`
	Order *order.Order `json:"order"`
}

func (h *Handler) updateOrderStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMsg(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	o, err := h.orders.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		var isErr *order.InvalidStatusError
		switch {
		case errors.As(err, &isErr):
			writeMsg(w, http.StatusBadRequest, isErr.Error())
		case errors.Is(err, order.ErrNotFound):
			writeMsg(w, http.StatusNotFound, "Order not found")
		default:
			serverError(w, r, err)
		}
		return
	}
	writeJSON(w, http.StatusOK, updateOrderResponse{Msg: "Updated!", Order: o})
}

// writeOrderError maps order placement failures to the client contract.
func (h *Handler) writeOrderError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *order.ValidationError
	switch {
	case errors.As(err, &vErr):
		writeMsg(w, http.StatusBadRequest, vErr.Error())
	case errors.Is(err, order.ErrInsufficientStock):
		writeMsg(w, http.StatusBadRequest, "Insufficient stock")
	case errors.Is(err, catalog.ErrNotFound):
		writeMsg(w, http.StatusNotFound, "Product not found")
	default:
		serverError(w, r, err)
	}
}
