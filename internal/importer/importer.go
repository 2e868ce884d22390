package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"localmarket/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type ShopWriter interface {
	Upsert(ctx context.Context, shop domain.Shop) (*domain.Shop, error)
}

// CSVImporter loads a catalog export into the shops and products tables.
//
// Expected columns: id, shop_id, shop_name, name, price_cents (or price as a
// decimal amount), image_url, stock, category. Unknown columns are ignored.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductWriter
	shops    ShopWriter
	log      zerolog.Logger

	// shop name or id -> stored shop id, so each shop is written once per run
	seenShops map[string]string
}

func NewCSVImporter(r io.Reader, products ProductWriter, shops ShopWriter, log zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:    csvr,
		products:  products,
		shops:     shops,
		log:       log.With().Str("component", "importer").Logger(),
		seenShops: map[string]string{},
	}
}

type csvRow struct {
	line     int
	ID       string
	ShopID   string
	ShopName string
	Name     string
	Cents    int64
	ImageURL string
	Stock    int
	Category string
}

// Run parses every row and upserts its shop and product. It stops at the
// first invalid row and returns how many products were written before it.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	if _, ok := index["name"]; !ok {
		return 0, errors.New("read headers: name column is required")
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}

		row, err := parseRow(record, index, line)
		if err != nil {
			return imported, err
		}
		if row == nil {
			continue
		}
		if err := i.save(ctx, row); err != nil {
			return imported, err
		}
		imported++
	}

	i.log.Info().Int("products", imported).Int("shops", len(i.seenShops)).Msg("import finished")
	return imported, nil
}

func (i *CSVImporter) save(ctx context.Context, row *csvRow) error {
	shopID, err := i.ensureShop(ctx, row)
	if err != nil {
		return err
	}

	p := domain.Product{
		ID:         row.ID,
		ShopID:     shopID,
		Name:       row.Name,
		PriceCents: row.Cents,
		ImageURL:   row.ImageURL,
		Stock:      row.Stock,
		Category:   row.Category,
	}
	if _, err := i.products.Upsert(ctx, p); err != nil {
		return fmt.Errorf("row %d: upsert product %q: %w", row.line, row.Name, err)
	}
	return nil
}

func (i *CSVImporter) ensureShop(ctx context.Context, row *csvRow) (string, error) {
	cacheKey := row.ShopID
	if cacheKey == "" {
		cacheKey = "name:" + strings.ToLower(row.ShopName)
	}
	if id, ok := i.seenShops[cacheKey]; ok {
		return id, nil
	}
	if row.ShopName == "" {
		// Existing shop referenced by id only.
		i.seenShops[cacheKey] = row.ShopID
		return row.ShopID, nil
	}

	shop, err := i.shops.Upsert(ctx, domain.Shop{ID: row.ShopID, Name: row.ShopName})
	if err != nil {
		return "", fmt.Errorf("row %d: upsert shop %q: %w", row.line, row.ShopName, err)
	}
	i.seenShops[cacheKey] = shop.ID
	return shop.ID, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int, line int) (*csvRow, error) {
	row := &csvRow{
		line:     line,
		ID:       pick(record, index, "id"),
		ShopID:   pick(record, index, "shop_id"),
		ShopName: pick(record, index, "shop_name"),
		Name:     pick(record, index, "name"),
		ImageURL: pick(record, index, "image_url"),
		Category: pick(record, index, "category"),
	}
	if row.Name == "" && row.ShopID == "" && row.ShopName == "" {
		return nil, nil // blank line
	}
	if row.Name == "" {
		return nil, fmt.Errorf("row %d: name is required", line)
	}
	if row.ShopID == "" && row.ShopName == "" {
		return nil, fmt.Errorf("row %d: shop_id or shop_name is required", line)
	}
	for _, id := range []string{row.ID, row.ShopID} {
		if id == "" {
			continue
		}
		if _, err := uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("row %d: invalid id %q", line, id)
		}
	}

	cents, err := parsePrice(pick(record, index, "price_cents"), pick(record, index, "price"))
	if err != nil {
		return nil, fmt.Errorf("row %d: %w", line, err)
	}
	row.Cents = cents

	if s := pick(record, index, "stock"); s != "" {
		stock, err := strconv.Atoi(s)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("row %d: invalid stock %q", line, s)
		}
		row.Stock = stock
	}
	return row, nil
}

// parsePrice prefers integer cents and falls back to a decimal amount.
func parsePrice(centsStr, amountStr string) (int64, error) {
	switch {
	case centsStr != "":
		cents, err := strconv.ParseInt(centsStr, 10, 64)
		if err != nil || cents < 0 {
			return 0, fmt.Errorf("invalid price_cents %q", centsStr)
		}
		return cents, nil
	case amountStr != "":
		amount, err := decimal.NewFromString(amountStr)
		if err != nil || amount.IsNegative() {
			return 0, fmt.Errorf("invalid price %q", amountStr)
		}
		return amount.Shift(2).Round(0).IntPart(), nil
	default:
		return 0, errors.New("price_cents or price is required")
	}
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
