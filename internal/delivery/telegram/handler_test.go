package telegram

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/infrastructure/storage"
	"github.com/yourusername/telegram-shop-bot/internal/usecase"
)

const (
	adminID  = int64(1)
	publicID = int64(99)
	chatID   = int64(500)
)

// fakeAPI records everything the handler sends.
type fakeAPI struct {
	sent []tgbotapi.Chattable
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFile(cfg tgbotapi.FileConfig) (tgbotapi.File, error) {
	return tgbotapi.File{FileID: cfg.FileID}, nil
}

// texts returns the plain text messages sent so far, in order.
func (f *fakeAPI) texts() []string {
	var out []string
	for _, c := range f.sent {
		if msg, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, msg.Text)
		}
	}
	return out
}

func (f *fakeAPI) lastText(t *testing.T) string {
	t.Helper()
	texts := f.texts()
	require.NotEmpty(t, texts)
	return texts[len(texts)-1]
}

// lastMarkup returns the inline keyboard of the last message that carried one.
func (f *fakeAPI) lastMarkup(t *testing.T) tgbotapi.InlineKeyboardMarkup {
	t.Helper()
	for i := len(f.sent) - 1; i >= 0; i-- {
		msg, ok := f.sent[i].(tgbotapi.MessageConfig)
		if !ok {
			continue
		}
		if markup, ok := msg.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup); ok {
			return markup
		}
	}
	t.Fatal("no message with inline keyboard was sent")
	return tgbotapi.InlineKeyboardMarkup{}
}

type testEnv struct {
	api       *fakeAPI
	handler   *BotHandler
	productUC usecase.ProductUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	api := &fakeAPI{}
	productUC := usecase.NewProductUseCase(storage.NewMemoryProductRepository())
	adminUC := usecase.NewAdminUseCase(
		storage.NewMemoryAdminRepository([]int64{adminID}),
		storage.NewMemoryProductRepository(),
		nil,
	)
	return &testEnv{
		api:       api,
		handler:   newHandler(api, "test-token", productUC, adminUC),
		productUC: productUC,
	}
}

func textMessage(userID int64, text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Text: text,
	}
}

func photoMessage(userID int64, fileID string) *tgbotapi.Message {
	return &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: chatID},
		Photo: []tgbotapi.PhotoSize{
			{FileID: "thumb-" + fileID},
			{FileID: fileID},
		},
	}
}

func callback(userID int64, data string) *tgbotapi.CallbackQuery {
	return &tgbotapi.CallbackQuery{
		ID:      "cq-1",
		From:    &tgbotapi.User{ID: userID},
		Data:    data,
		Message: &tgbotapi.Message{Chat: &tgbotapi.Chat{ID: chatID}},
	}
}

func TestAddProductWizardHappyPath(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.handleCallback(ctx, callback(adminID, cbAddProduct))
	assert.True(t, env.handler.hasAddSession(adminID))
	assert.Equal(t, "Отправьте название товара.", env.api.lastText(t))

	env.handler.handleMessage(ctx, textMessage(adminID, "Шапка"))
	assert.Equal(t, "Отправьте описание товара.", env.api.lastText(t))

	env.handler.handleMessage(ctx, textMessage(adminID, "Хлопковая кепка"))
	assert.Equal(t, "Отправьте фото товара.", env.api.lastText(t))

	env.handler.handleMessage(ctx, photoMessage(adminID, "photo-1"))
	assert.Equal(t, "Отправьте цену товара.", env.api.lastText(t))

	env.handler.handleMessage(ctx, textMessage(adminID, "1500"))
	assert.Equal(t, "Отправьте количество товара на складе.", env.api.lastText(t))

	env.handler.handleMessage(ctx, textMessage(adminID, "10"))

	assert.False(t, env.handler.hasAddSession(adminID))
	assert.Contains(t, env.api.texts(), "Товар 'Шапка' добавлен!")

	products, err := env.productUC.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)

	p := products[0]
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Шапка", p.Name)
	assert.Equal(t, "Хлопковая кепка", p.Description)
	assert.Equal(t, 1500.0, p.Price)
	assert.Equal(t, "photo-1", p.PhotoID)
	assert.Equal(t, 10, p.Quantity)
}

func TestWizardInvalidPriceKeepsCollectedFields(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.handleCallback(ctx, callback(adminID, cbAddProduct))
	env.handler.handleMessage(ctx, textMessage(adminID, "Шапка"))
	env.handler.handleMessage(ctx, textMessage(adminID, "Хлопковая кепка"))
	env.handler.handleMessage(ctx, photoMessage(adminID, "photo-1"))

	env.handler.handleMessage(ctx, textMessage(adminID, "abc"))
	assert.Equal(t, "Цена должна быть числом. Попробуйте снова.", env.api.lastText(t))
	assert.True(t, env.handler.hasAddSession(adminID))

	// nothing persisted while the session is still open
	products, err := env.productUC.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)

	env.handler.handleMessage(ctx, textMessage(adminID, "-5"))
	assert.Equal(t, "Цена должна быть числом. Попробуйте снова.", env.api.lastText(t))

	env.handler.handleMessage(ctx, textMessage(adminID, "1500"))
	assert.Equal(t, "Отправьте количество товара на складе.", env.api.lastText(t))

	env.handler.handleMessage(ctx, textMessage(adminID, "10"))

	products, err = env.productUC.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Шапка", products[0].Name)
	assert.Equal(t, "Хлопковая кепка", products[0].Description)
	assert.Equal(t, "photo-1", products[0].PhotoID)
}

func TestWizardInvalidQuantityKeepsStage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.handleCallback(ctx, callback(adminID, cbAddProduct))
	env.handler.handleMessage(ctx, textMessage(adminID, "Шапка"))
	env.handler.handleMessage(ctx, textMessage(adminID, "описание"))
	env.handler.handleMessage(ctx, photoMessage(adminID, "photo-1"))
	env.handler.handleMessage(ctx, textMessage(adminID, "1500"))

	for _, input := range []string{"3.5", "-2", "много"} {
		env.handler.handleMessage(ctx, textMessage(adminID, input))
		assert.Equal(t, "Количество товара должно быть целым числом. Попробуйте снова.", env.api.lastText(t))
		assert.True(t, env.handler.hasAddSession(adminID))
	}

	env.handler.handleMessage(ctx, textMessage(adminID, "10"))
	assert.False(t, env.handler.hasAddSession(adminID))

	products, err := env.productUC.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, 10, products[0].Quantity)
}

func TestWizardMissingPhotoReprompts(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.handleCallback(ctx, callback(adminID, cbAddProduct))
	env.handler.handleMessage(ctx, textMessage(adminID, "Шапка"))
	env.handler.handleMessage(ctx, textMessage(adminID, "описание"))

	env.handler.handleMessage(ctx, textMessage(adminID, "вот фото"))
	assert.Equal(t, "Пожалуйста, отправьте фото товара.", env.api.lastText(t))
	assert.True(t, env.handler.hasAddSession(adminID))

	env.handler.handleMessage(ctx, photoMessage(adminID, "photo-2"))
	assert.Equal(t, "Отправьте цену товара.", env.api.lastText(t))
}

func TestNonAdminCallbacksAreSilentlyIgnored(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, data := range []string{cbAdminPanel, cbAddProduct, cbDeleteList, cbViewList, prefixConfirmDelete + "some-id"} {
		env.handler.handleCallback(ctx, callback(publicID, data))
	}

	assert.Empty(t, env.api.texts(), "unauthorized admin actions must produce no reply")
	assert.False(t, env.handler.hasAddSession(publicID))

	products, err := env.productUC.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductsMenuEmptyCatalogShowsOnlyBack(t *testing.T) {
	env := newTestEnv(t)

	env.handler.handleCallback(context.Background(), callback(publicID, cbProducts))

	markup := env.api.lastMarkup(t)
	require.Len(t, markup.InlineKeyboard, 1)
	require.Len(t, markup.InlineKeyboard[0], 1)
	assert.Equal(t, "Назад", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, cbBackToMenu, *markup.InlineKeyboard[0][0].CallbackData)
}

func TestProductsMenuListsCatalogByID(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.productUC.Create(ctx, usecase.CreateProductInput{Name: "Шапка", Price: 1500, Quantity: 10})
	require.NoError(t, err)

	env.handler.handleCallback(ctx, callback(publicID, cbProducts))

	markup := env.api.lastMarkup(t)
	require.Len(t, markup.InlineKeyboard, 2)
	assert.Equal(t, "🔧 Шапка", markup.InlineKeyboard[0][0].Text)
	assert.Equal(t, prefixProduct+created.ID, *markup.InlineKeyboard[0][0].CallbackData)
}

func TestProductDetailsSendsPhotoCard(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.productUC.Create(ctx, usecase.CreateProductInput{
		Name:        "Шапка",
		Description: "Хлопковая кепка",
		Price:       1500,
		PhotoID:     "photo-1",
		Quantity:    10,
	})
	require.NoError(t, err)

	env.handler.handleCallback(ctx, callback(publicID, prefixProduct+created.ID))

	require.NotEmpty(t, env.api.sent)
	photo, ok := env.api.sent[len(env.api.sent)-1].(tgbotapi.PhotoConfig)
	require.True(t, ok, "product card with a photo must be sent as a photo")
	assert.Equal(t, "Товар: Шапка\nОписание: Хлопковая кепка\nЦена: 1500₽\nКоличество: 10", photo.Caption)
}

func TestProductDetailsUnknownID(t *testing.T) {
	env := newTestEnv(t)

	env.handler.handleCallback(context.Background(), callback(publicID, prefixProduct+"missing"))

	assert.Equal(t, "Товар не найден.", env.api.lastText(t))
}

func TestDeleteFlowRemovesExactlyOneProduct(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	first, err := env.productUC.Create(ctx, usecase.CreateProductInput{Name: "Шапка", Price: 1500, Quantity: 10})
	require.NoError(t, err)
	second, err := env.productUC.Create(ctx, usecase.CreateProductInput{Name: "Кепка", Price: 900, Quantity: 3})
	require.NoError(t, err)

	env.handler.handleCallback(ctx, callback(adminID, prefixConfirmDelete+first.ID))
	assert.Contains(t, env.api.texts(), "Товар удален!")

	products, err := env.productUC.GetAll(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, second.ID, products[0].ID)

	// deleting an id that is already gone is still a silent success
	env.handler.handleCallback(ctx, callback(adminID, prefixConfirmDelete+first.ID))
	products, err = env.productUC.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestMainMenuShowsAdminButtonOnlyToAdmins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.handler.sendMainMenu(ctx, chatID, adminID)
	adminMarkup := env.api.lastMarkup(t)
	require.Len(t, adminMarkup.InlineKeyboard, 3)
	assert.Equal(t, "Админ-панель🔧", adminMarkup.InlineKeyboard[2][0].Text)

	env.api.sent = nil
	env.handler.sendMainMenu(ctx, chatID, publicID)
	publicMarkup := env.api.lastMarkup(t)
	assert.Len(t, publicMarkup.InlineKeyboard, 2)
}

func TestViewProductsSendsCardsAndReturnsToPanel(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.productUC.Create(ctx, usecase.CreateProductInput{Name: "Шапка", Price: 1500, PhotoID: "photo-1", Quantity: 10})
	require.NoError(t, err)

	env.handler.handleCallback(ctx, callback(adminID, cbViewList))

	var photos int
	for _, c := range env.api.sent {
		if _, ok := c.(tgbotapi.PhotoConfig); ok {
			photos++
		}
	}
	assert.Equal(t, 1, photos)
	assert.Contains(t, env.api.lastText(t), "Админ-панель")
}

func TestNonAdminDocumentUploadRejected(t *testing.T) {
	env := newTestEnv(t)

	msg := textMessage(publicID, "")
	msg.Document = &tgbotapi.Document{FileName: "catalog.xlsx", FileSize: 100}
	env.handler.handleMessage(context.Background(), msg)

	assert.Equal(t, "❌ Загружать файлы могут только админы.", env.api.lastText(t))
}

func TestPhotolessProductCardFallsBackToText(t *testing.T) {
	env := newTestEnv(t)

	env.handler.sendProductCard(chatID, entity.Product{Name: "Шапка", Price: 1500, Quantity: 2})

	assert.Equal(t, "Товар: Шапка\nОписание: \nЦена: 1500₽\nКоличество: 2", env.api.lastText(t))
}
