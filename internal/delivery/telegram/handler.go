package telegram

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/usecase"
)

const maxImportFileSize = 5 * 1024 * 1024

// api is the subset of the bot client the handler talks to. Extracted so
// tests can substitute a recording fake for the real transport.
type api interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error)
}

// BotHandler wires Telegram updates to the shop use cases.
type BotHandler struct {
	api   api
	bot   *tgbotapi.BotAPI // set only when constructed with a real token
	token string

	productUseCase usecase.ProductUseCase
	adminUseCase   usecase.AdminUseCase

	addMu       sync.RWMutex
	addSessions map[int64]*addSession

	routes       map[string]callbackFunc
	prefixRoutes []prefixRoute
}

// NewBotHandler creates the handler together with a real Telegram client.
func NewBotHandler(
	token string,
	productUseCase usecase.ProductUseCase,
	adminUseCase usecase.AdminUseCase,
) (*BotHandler, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	h := newHandler(bot, token, productUseCase, adminUseCase)
	h.bot = bot
	return h, nil
}

// newHandler does all wiring that does not need a live Telegram connection.
func newHandler(
	a api,
	token string,
	productUseCase usecase.ProductUseCase,
	adminUseCase usecase.AdminUseCase,
) *BotHandler {
	h := &BotHandler{
		api:            a,
		token:          token,
		productUseCase: productUseCase,
		adminUseCase:   adminUseCase,
		addSessions:    make(map[int64]*addSession),
	}
	h.buildRoutes()
	return h
}

// Start runs the update loop until the context is cancelled.
func (h *BotHandler) Start(ctx context.Context) error {
	log.Printf("Bot @%s is running", h.bot.Self.UserName)

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := h.bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			log.Println("Bot is shutting down...")
			return ctx.Err()
		case update := <-updates:
			if update.CallbackQuery != nil {
				go h.handleCallback(ctx, update.CallbackQuery)
				continue
			}

			if update.Message == nil {
				continue
			}

			go h.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage dispatches one incoming message.
func (h *BotHandler) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	userID := message.From.ID

	// A running wizard consumes every message of that user, photos included.
	if h.hasAddSession(userID) {
		h.handleAddFlow(ctx, message)
		return
	}

	if message.Document != nil {
		h.handleDocumentMessage(ctx, message)
		return
	}

	if message.IsCommand() {
		h.handleCommand(ctx, message)
		return
	}

	if message.Text != "" {
		h.sendMessage(message.Chat.ID, "Используйте меню: /start")
	}
}

// handleCommand processes bot commands.
func (h *BotHandler) handleCommand(ctx context.Context, message *tgbotapi.Message) {
	switch message.Command() {
	case "start":
		h.sendMessage(message.Chat.ID, "Привет, ты в моем магазине!")
		h.sendMainMenu(ctx, message.Chat.ID, message.From.ID)
	case "help":
		h.sendMessage(message.Chat.ID, "Команды:\n/start - главное меню\n/help - помощь\n/log - журнал действий (для админов)")
	case "log":
		h.handleLogCommand(ctx, message)
	default:
		h.sendMessage(message.Chat.ID, "Неизвестная команда. /help для справки.")
	}
}

// handleLogCommand shows the recent admin audit trail.
func (h *BotHandler) handleLogCommand(ctx context.Context, message *tgbotapi.Message) {
	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, message.From.ID)
	if !isAdmin {
		h.sendMessage(message.Chat.ID, "Эта команда только для админов.")
		return
	}

	actions, err := h.adminUseCase.RecentActions(ctx, 20)
	if err != nil || len(actions) == 0 {
		h.sendMessage(message.Chat.ID, "Журнал пуст.")
		return
	}

	var sb strings.Builder
	sb.WriteString("Последние действия:\n")
	for _, action := range actions {
		sb.WriteString(fmt.Sprintf("%s | %d | %s: %s\n",
			action.Timestamp.Format("02.01 15:04"), action.UserID, action.Action, action.Details))
	}
	h.sendMessage(message.Chat.ID, sb.String())
}

// sendMainMenu renders the root menu. The admin button is shown only to
// allow-listed users.
func (h *BotHandler) sendMainMenu(ctx context.Context, chatID, userID int64) {
	rows := [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Товары🛍", cbProducts),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Саппорт🤝", cbSupport),
		),
	}

	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, userID)
	if isAdmin {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Админ-панель🔧", cbAdminPanel),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "Выберите раздел:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send main menu: %v", err)
	}
}

// sendAdminPanel renders the admin actions menu.
func (h *BotHandler) sendAdminPanel(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, "Админ-панель:\nВыберите действие:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Добавить товар", cbAddProduct),
			tgbotapi.NewInlineKeyboardButtonData("Удалить товар", cbDeleteList),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Посмотреть товары", cbViewList),
			tgbotapi.NewInlineKeyboardButtonData("Назад", cbBackToMenu),
		),
	)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send admin panel: %v", err)
	}
}

// handleProductsMenu lists the catalog as buttons for public browsing.
func (h *BotHandler) handleProductsMenu(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID

	products, err := h.productUseCase.GetAll(ctx)
	if err != nil {
		log.Printf("Failed to load products: %v", err)
		h.sendMessage(chatID, "❌ Не удалось загрузить товары.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, product := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🔧 "+product.Name, prefixProduct+product.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Назад", cbBackToMenu),
	))

	msg := tgbotapi.NewMessage(chatID, "Выберите товар:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send products menu: %v", err)
	}
}

// handleProductDetails shows one product card, looked up by id.
func (h *BotHandler) handleProductDetails(ctx context.Context, cq *tgbotapi.CallbackQuery, id string) {
	chatID := cq.Message.Chat.ID

	product, err := h.productUseCase.GetByID(ctx, id)
	if err != nil {
		// stale button after a delete
		h.sendMessage(chatID, "Товар не найден.")
		return
	}

	h.sendProductCard(chatID, *product)
}

// handleSupport sends the static support reply.
func (h *BotHandler) handleSupport(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	h.sendMessage(cq.Message.Chat.ID, "Если нужна помощь с ботом - напишите нам.")
}

// handleAdminPanel opens the admin panel. Unauthorized callbacks are
// silently ignored.
func (h *BotHandler) handleAdminPanel(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, cq.From.ID)
	if !isAdmin {
		return
	}
	h.sendAdminPanel(cq.Message.Chat.ID)
}

// handleAddProduct starts the add-product wizard.
func (h *BotHandler) handleAddProduct(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, cq.From.ID)
	if !isAdmin {
		return
	}

	h.startAddSession(cq.From.ID)
	h.sendMessage(cq.Message.Chat.ID, "Отправьте название товара.")
}

// handleDeleteList renders one delete button per product.
func (h *BotHandler) handleDeleteList(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, cq.From.ID)
	if !isAdmin {
		return
	}

	chatID := cq.Message.Chat.ID
	products, err := h.productUseCase.GetAll(ctx)
	if err != nil {
		log.Printf("Failed to load products: %v", err)
		h.sendMessage(chatID, "❌ Не удалось загрузить товары.")
		return
	}

	if len(products) == 0 {
		h.sendMessage(chatID, "Товары не найдены.")
		h.sendAdminPanel(chatID)
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, product := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Удалить "+product.Name, prefixConfirmDelete+product.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Назад", cbBackToAdmin),
	))

	msg := tgbotapi.NewMessage(chatID, "Выберите товар для удаления:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send delete menu: %v", err)
	}
}

// handleConfirmDelete deletes the selected product. Selecting the button is
// the confirmation; a stale id deletes nothing and is still a success.
func (h *BotHandler) handleConfirmDelete(ctx context.Context, cq *tgbotapi.CallbackQuery, id string) {
	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, cq.From.ID)
	if !isAdmin {
		return
	}

	chatID := cq.Message.Chat.ID
	if err := h.productUseCase.Delete(ctx, id); err != nil {
		log.Printf("Failed to delete product %s: %v", id, err)
		h.sendMessage(chatID, "❌ Не удалось удалить товар.")
		return
	}

	_ = h.adminUseCase.LogAction(ctx, cq.From.ID, "delete_product", id)

	h.sendMessage(chatID, "Товар удален!")
	h.sendAdminPanel(chatID)
}

// handleViewProducts sends every product card to the admin.
func (h *BotHandler) handleViewProducts(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, cq.From.ID)
	if !isAdmin {
		return
	}

	chatID := cq.Message.Chat.ID
	products, err := h.productUseCase.GetAll(ctx)
	if err != nil {
		log.Printf("Failed to load products: %v", err)
		h.sendMessage(chatID, "❌ Не удалось загрузить товары.")
		return
	}

	if len(products) == 0 {
		h.sendMessage(chatID, "Товары не найдены.")
	} else {
		for _, product := range products {
			h.sendProductCard(chatID, product)
		}
	}

	h.sendAdminPanel(chatID)
}

// handleBackToMenu returns to the root menu.
func (h *BotHandler) handleBackToMenu(ctx context.Context, cq *tgbotapi.CallbackQuery) {
	h.sendMainMenu(ctx, cq.Message.Chat.ID, cq.From.ID)
}

// handleDocumentMessage handles a catalog spreadsheet upload.
func (h *BotHandler) handleDocumentMessage(ctx context.Context, message *tgbotapi.Message) {
	chatID := message.Chat.ID

	isAdmin, _ := h.adminUseCase.IsAdmin(ctx, message.From.ID)
	if !isAdmin {
		h.sendMessage(chatID, "❌ Загружать файлы могут только админы.")
		return
	}

	doc := message.Document
	if doc.FileSize > maxImportFileSize {
		h.sendMessage(chatID, "❌ Файл не должен превышать 5MB!")
		return
	}
	if !strings.HasSuffix(doc.FileName, ".xlsx") && !strings.HasSuffix(doc.FileName, ".xls") {
		h.sendMessage(chatID, "❌ Принимаются только Excel файлы (.xlsx, .xls)!")
		return
	}

	h.sendMessage(chatID, "⏳ Файл загружается и обрабатывается...")

	fileBytes, err := h.downloadFile(doc.FileID)
	if err != nil {
		log.Printf("File download error: %v", err)
		h.sendMessage(chatID, "❌ Не удалось загрузить файл.")
		return
	}

	count, err := h.adminUseCase.ImportCatalog(ctx, message.From.ID, fileBytes, doc.FileName)
	if err != nil {
		log.Printf("Import catalog error: %v", err)
		h.sendMessage(chatID, fmt.Sprintf("❌ Ошибка импорта: %v", err))
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Импортировано товаров: %d", count))
	h.sendAdminPanel(chatID)
}

// downloadFile fetches a file from Telegram by its file id.
func (h *BotHandler) downloadFile(fileID string) ([]byte, error) {
	file, err := h.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, err
	}

	resp, err := http.Get(file.Link(h.token))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	return io.ReadAll(resp.Body)
}

// sendProductCard sends a photo with the product caption, or plain text for
// photo-less products (bulk imports carry no photo).
func (h *BotHandler) sendProductCard(chatID int64, product entity.Product) {
	caption := formatProductCaption(product)

	if product.PhotoID == "" {
		h.sendMessage(chatID, caption)
		return
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileID(product.PhotoID))
	photo.Caption = caption
	if _, err := h.api.Send(photo); err != nil {
		log.Printf("Failed to send product photo: %v", err)
	}
}

func formatProductCaption(product entity.Product) string {
	return fmt.Sprintf("Товар: %s\nОписание: %s\nЦена: %s₽\nКоличество: %d",
		product.Name,
		product.Description,
		strconv.FormatFloat(product.Price, 'f', -1, 64),
		product.Quantity,
	)
}

// sendMessage sends a plain text message.
func (h *BotHandler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.api.Send(msg); err != nil {
		log.Printf("Failed to send message: %v", err)
	}
}
