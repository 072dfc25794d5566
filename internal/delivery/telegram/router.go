package telegram

import (
	"context"
	"log"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Callback data identifiers. The menu buttons carry these; product-scoped
// actions append the product id after the prefix.
const (
	cbProducts    = "products"
	cbSupport     = "support"
	cbAdminPanel  = "admin_panel"
	cbAddProduct  = "add_product"
	cbDeleteList  = "delete_product"
	cbViewList    = "view_products"
	cbBackToMenu  = "back_to_menu"
	cbBackToAdmin = "back_to_admin"

	prefixProduct       = "product:"
	prefixConfirmDelete = "confirm_delete:"
)

type callbackFunc func(ctx context.Context, cq *tgbotapi.CallbackQuery)

type prefixFunc func(ctx context.Context, cq *tgbotapi.CallbackQuery, arg string)

type prefixRoute struct {
	prefix string
	fn     prefixFunc
}

// buildRoutes constructs the callback routing table once at startup.
func (h *BotHandler) buildRoutes() {
	h.routes = map[string]callbackFunc{
		cbProducts:    h.handleProductsMenu,
		cbSupport:     h.handleSupport,
		cbAdminPanel:  h.handleAdminPanel,
		cbAddProduct:  h.handleAddProduct,
		cbDeleteList:  h.handleDeleteList,
		cbViewList:    h.handleViewProducts,
		cbBackToMenu:  h.handleBackToMenu,
		cbBackToAdmin: h.handleAdminPanel,
	}
	h.prefixRoutes = []prefixRoute{
		{prefix: prefixProduct, fn: h.handleProductDetails},
		{prefix: prefixConfirmDelete, fn: h.handleConfirmDelete},
	}
}

// handleCallback dispatches a button selection through the routing table.
func (h *BotHandler) handleCallback(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	// Answer the callback first to stop the client spinner.
	callback := tgbotapi.NewCallback(cq.ID, "")
	if _, err := h.api.Request(callback); err != nil {
		log.Printf("Failed to answer callback: %v", err)
	}

	if fn, ok := h.routes[cq.Data]; ok {
		fn(ctx, cq)
		return
	}

	for _, route := range h.prefixRoutes {
		if strings.HasPrefix(cq.Data, route.prefix) {
			route.fn(ctx, cq, strings.TrimPrefix(cq.Data, route.prefix))
			return
		}
	}

	// unknown callback data is ignored
}
