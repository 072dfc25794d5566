package telegram

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/shopspring/decimal"
	"github.com/yourusername/telegram-shop-bot/internal/usecase"
)

type addStage int

const (
	addStageNeedName addStage = iota
	addStageNeedDescription
	addStageNeedPhoto
	addStageNeedPrice
	addStageNeedQuantity
)

// addSession accumulates the fields of one product across several turns.
// Keyed by user id; created by the "add product" button, discarded on commit.
type addSession struct {
	Stage       addStage
	Name        string
	Description string
	PhotoID     string
	Price       float64
	Quantity    int
	StartedAt   time.Time
}

// startAddSession begins a new add-product wizard for the user. Any session
// already in progress is replaced.
func (h *BotHandler) startAddSession(userID int64) {
	h.addMu.Lock()
	h.addSessions[userID] = &addSession{
		Stage:     addStageNeedName,
		StartedAt: time.Now(),
	}
	h.addMu.Unlock()
}

func (h *BotHandler) hasAddSession(userID int64) bool {
	h.addMu.RLock()
	defer h.addMu.RUnlock()
	_, ok := h.addSessions[userID]
	return ok
}

// handleAddFlow advances the add-product wizard by one step. Invalid input
// keeps the stage and everything collected so far.
func (h *BotHandler) handleAddFlow(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID
	chatID := message.Chat.ID

	// Each step arrives as an independent message; membership is
	// re-checked here, not only when the session was opened.
	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, userID)
	if !isAdmin {
		return
	}

	h.addMu.Lock()
	session, ok := h.addSessions[userID]
	if !ok {
		h.addMu.Unlock()
		return
	}

	switch session.Stage {
	case addStageNeedName:
		if strings.TrimSpace(message.Text) == "" {
			h.addMu.Unlock()
			h.sendMessage(chatID, "Отправьте название товара.")
			return
		}
		session.Name = message.Text
		session.Stage = addStageNeedDescription
		h.addMu.Unlock()
		h.sendMessage(chatID, "Отправьте описание товара.")
	case addStageNeedDescription:
		session.Description = message.Text
		session.Stage = addStageNeedPhoto
		h.addMu.Unlock()
		h.sendMessage(chatID, "Отправьте фото товара.")
	case addStageNeedPhoto:
		if len(message.Photo) == 0 {
			h.addMu.Unlock()
			h.sendMessage(chatID, "Пожалуйста, отправьте фото товара.")
			return
		}
		// last PhotoSize is the largest rendition
		session.PhotoID = message.Photo[len(message.Photo)-1].FileID
		session.Stage = addStageNeedPrice
		h.addMu.Unlock()
		h.sendMessage(chatID, "Отправьте цену товара.")
	case addStageNeedPrice:
		price, err := parsePrice(message.Text)
		if err != nil {
			h.addMu.Unlock()
			h.sendMessage(chatID, "Цена должна быть числом. Попробуйте снова.")
			return
		}
		session.Price = price
		session.Stage = addStageNeedQuantity
		h.addMu.Unlock()
		h.sendMessage(chatID, "Отправьте количество товара на складе.")
	case addStageNeedQuantity:
		quantity, err := parseQuantity(message.Text)
		if err != nil {
			h.addMu.Unlock()
			h.sendMessage(chatID, "Количество товара должно быть целым числом. Попробуйте снова.")
			return
		}
		session.Quantity = quantity
		completed := *session
		delete(h.addSessions, userID)
		h.addMu.Unlock()
		h.finishAddSession(ctx, userID, chatID, completed)
	default:
		delete(h.addSessions, userID)
		h.addMu.Unlock()
	}
}

// finishAddSession commits the collected product and returns to the main menu.
func (h *BotHandler) finishAddSession(ctx context.Context, userID, chatID int64, session addSession) {
	product, err := h.productUseCase.Create(ctx, usecase.CreateProductInput{
		Name:        session.Name,
		Description: session.Description,
		Price:       session.Price,
		PhotoID:     session.PhotoID,
		Quantity:    session.Quantity,
	})
	if err != nil {
		log.Printf("Failed to save product: %v", err)
		h.sendMessage(chatID, "❌ Не удалось сохранить товар. Попробуйте ещё раз.")
		h.sendMainMenu(ctx, chatID, userID)
		return
	}

	_ = h.adminUseCase.LogAction(ctx, userID, "add_product", product.Name)

	h.sendMessage(chatID, fmt.Sprintf("Товар '%s' добавлен!", product.Name))
	h.sendMainMenu(ctx, chatID, userID)
}

// parsePrice accepts any non-negative decimal number.
func parsePrice(text string) (float64, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(text))
	if err != nil {
		return 0, err
	}
	if price.IsNegative() {
		return 0, fmt.Errorf("price must not be negative")
	}
	return price.InexactFloat64(), nil
}

// parseQuantity accepts any non-negative integer.
func parseQuantity(text string) (int, error) {
	quantity, err := strconv.Atoi(strings.TrimSpace(text))
	if err != nil {
		return 0, err
	}
	if quantity < 0 {
		return 0, fmt.Errorf("quantity must not be negative")
	}
	return quantity, nil
}
