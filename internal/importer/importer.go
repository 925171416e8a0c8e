// Package importer loads catalogue products from CSV.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"directsales/internal/domain"
	"directsales/internal/logging"
	catalogsvc "directsales/internal/service/catalog"
)

// Columns understood by the importer. Only name and price are required.
const (
	colName        = "name"
	colDescription = "description"
	colPrice       = "price"
	colCategory    = "category"
	colVPPoints    = "vp_points"
	colImageURL    = "image_url"
	colStock       = "stock"
)

type ProductCreator interface {
	Create(ctx context.Context, in catalogsvc.ProductInput) (*domain.Product, error)
}

// RowError reports a rejected CSV line.
type RowError struct {
	Line int
	Err  error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// CSVImporter reads product rows and creates them through the catalogue.
type CSVImporter struct {
	reader   *csv.Reader
	products ProductCreator
	logger   *zap.Logger

	// DryRun validates every row without writing.
	DryRun bool
}

func NewCSVImporter(r io.Reader, products ProductCreator, logger *zap.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:   csvr,
		products: products,
		logger:   logging.OrNop(logger).Named("importer"),
	}
}

// Run imports every row and returns the number written. It stops at the
// first invalid row; rows before it stay imported.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, required := range []string{colName, colPrice} {
		if _, ok := index[required]; !ok {
			return 0, fmt.Errorf("missing %q column", required)
		}
	}

	imported := 0
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)
		if blank(record) {
			continue
		}

		in, err := parseRow(record, index)
		if err != nil {
			return imported, &RowError{Line: line, Err: err}
		}
		if i.DryRun {
			if _, err := catalogsvc.Validate(in); err != nil {
				return imported, &RowError{Line: line, Err: err}
			}
			imported++
			continue
		}
		p, err := i.products.Create(ctx, in)
		if err != nil {
			return imported, &RowError{Line: line, Err: err}
		}
		i.logger.Debug("product imported", zap.String("id", p.ID), zap.String("name", p.Name))
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (catalogsvc.ProductInput, error) {
	in := catalogsvc.ProductInput{
		Name:        pick(record, index, colName),
		Description: pick(record, index, colDescription),
		Category:    pick(record, index, colCategory),
		ImageURL:    pick(record, index, colImageURL),
	}

	price, err := decimal.NewFromString(pick(record, index, colPrice))
	if err != nil {
		return in, domain.Invalid(colPrice, "must be a decimal amount")
	}
	if !price.Shift(2).Equal(price.Shift(2).Truncate(0)) {
		return in, domain.Invalid(colPrice, "must have at most 2 decimal places")
	}
	in.PriceCents = price.Shift(2).IntPart()

	if v := pick(record, index, colVPPoints); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return in, domain.Invalid(colVPPoints, "must be an integer")
		}
		in.VPPoints = n
	}
	if v := pick(record, index, colStock); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return in, domain.Invalid(colStock, "must be an integer")
		}
		in.Stock = n
	}
	return in, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF")))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
