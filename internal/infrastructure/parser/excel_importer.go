package parser

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"github.com/yourusername/telegram-shop-bot/internal/domain/entity"
	"github.com/yourusername/telegram-shop-bot/internal/domain/repository"
)

type excelImporter struct{}

// NewExcelImporter creates a CatalogImporter for .xlsx/.xls uploads.
func NewExcelImporter() repository.CatalogImporter {
	return &excelImporter{}
}

// ParseProducts reads products from raw file bytes. The first sheet is used.
// A header row ("name", "price", ...) is detected and mapped; without one the
// columns are assumed to be name, price, quantity, description in that order.
func (e *excelImporter) ParseProducts(ctx context.Context, data []byte, filename string) ([]entity.Product, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open excel file %s: %w", filename, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("excel file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("excel file is empty")
	}

	columns, startRow := mapColumns(rows)

	var products []entity.Product
	for i := startRow; i < len(rows); i++ {
		product, ok := parseRow(rows[i], columns)
		if !ok {
			continue
		}
		products = append(products, product)
	}

	if len(products) == 0 {
		return nil, fmt.Errorf("no valid product rows found")
	}
	return products, nil
}

// columnMap holds the index of each recognized column, -1 when absent.
type columnMap struct {
	name        int
	price       int
	quantity    int
	description int
}

// mapColumns inspects the first row. If its price column parses as a number
// the file has no header and default positions are used.
func mapColumns(rows [][]string) (columnMap, int) {
	columns := columnMap{name: 0, price: 1, quantity: 2, description: 3}

	first := rows[0]
	if len(first) > 1 {
		raw := strings.ReplaceAll(strings.TrimSpace(first[1]), ",", "")
		if _, err := strconv.ParseFloat(raw, 64); err == nil {
			return columns, 0 // numeric second column: data, not header
		}
	}

	columns = columnMap{name: -1, price: -1, quantity: -1, description: -1}
	for idx, cell := range first {
		switch strings.ToLower(strings.TrimSpace(cell)) {
		case "name", "nomi", "название", "товар":
			columns.name = idx
		case "price", "narx", "цена":
			columns.price = idx
		case "quantity", "stock", "soni", "количество":
			columns.quantity = idx
		case "description", "tavsif", "описание":
			columns.description = idx
		}
	}

	if columns.name == -1 {
		columns.name = 0
	}
	if columns.price == -1 && len(first) > 1 {
		columns.price = 1
	}
	return columns, 1
}

// parseRow converts one data row into a product. Rows without a name or with
// an unparseable price are skipped.
func parseRow(row []string, columns columnMap) (entity.Product, bool) {
	name := cellAt(row, columns.name)
	if name == "" {
		return entity.Product{}, false
	}

	rawPrice := strings.ReplaceAll(cellAt(row, columns.price), ",", "")
	price, err := strconv.ParseFloat(rawPrice, 64)
	if err != nil || price < 0 {
		return entity.Product{}, false
	}

	quantity := 0
	if raw := cellAt(row, columns.quantity); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed >= 0 {
			quantity = parsed
		}
	}

	return entity.Product{
		Name:        name,
		Description: cellAt(row, columns.description),
		Price:       price,
		Quantity:    quantity,
	}, true
}

func cellAt(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
