// Package importer moves catalog products between CSV files and the API.
package importer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/google/renameio/v2"
	"github.com/kalaasutra/storefront/internal/models"
)

// ProductRow is one CSV line of a catalog file. The id column is written on
// export and ignored on import; the server assigns ids.
type ProductRow struct {
	ID          string  `csv:"id"`
	Name        string  `csv:"name"`
	Category    string  `csv:"category"`
	Price       float64 `csv:"price"`
	Description string  `csv:"description"`
	ModelURL    string  `csv:"model_url"`
	Font        string  `csv:"font"`
	Color       string  `csv:"color"`

	source string // file or URL the row came from, set by Loader.Load
	line   int    // 1-based line in source, header is line 1
}

// Location names where the row was read, as "source:line" or "line N".
// It is empty for rows built in code.
func (r ProductRow) Location() string {
	switch {
	case r.source != "" && r.line > 0:
		return fmt.Sprintf("%s:%d", r.source, r.line)
	case r.line > 0:
		return fmt.Sprintf("line %d", r.line)
	}
	return ""
}

// Validate checks the fields the API would reject
func (r ProductRow) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name is required")
	}
	if strings.TrimSpace(r.Category) == "" {
		return errors.New("category is required")
	}
	if r.Price < 0 || math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return errors.New("price cannot be negative")
	}
	return nil
}

// ProductCreate converts the row to a create request
func (r ProductRow) ProductCreate() models.ProductCreate {
	in := models.ProductCreate{
		Name:        strings.TrimSpace(r.Name),
		Category:    strings.TrimSpace(r.Category),
		Price:       r.Price,
		Description: r.Description,
		ModelURL:    r.ModelURL,
	}
	if r.Font != "" || r.Color != "" {
		in.Templates = models.NormalizeTemplates([]models.ProductTemplate{{Font: r.Font, Color: r.Color}})
	}
	return in
}

// RowFromProduct flattens a product for export. Only the first template is kept.
func RowFromProduct(p models.Product) ProductRow {
	row := ProductRow{
		ID:          p.ID,
		Name:        p.Name,
		Category:    p.Category,
		Price:       p.Price,
		Description: p.Description,
		ModelURL:    p.ModelURL,
	}
	if len(p.Templates) > 0 {
		row.Font = p.Templates[0].Font
		row.Color = p.Templates[0].Color
	}
	return row
}

// ParseRows reads CSV with a header line. Each row records its line number,
// assuming no field spans lines.
func ParseRows(r io.Reader) ([]ProductRow, error) {
	var rows []ProductRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	for i := range rows {
		rows[i].line = i + 2
	}
	return rows, nil
}

// ProductCreator is the product write the import needs
type ProductCreator interface {
	Create(ctx context.Context, in models.ProductCreate) (*models.Product, error)
}

// Result summarizes an import
type Result struct {
	Created int
	Failed  int
}

// Import creates every valid row. Invalid rows and failed creates do not stop
// the import; they are joined into the returned error.
func Import(ctx context.Context, creator ProductCreator, rows []ProductRow) (Result, error) {
	var (
		res  Result
		errs []error
	)

	for i, row := range rows {
		loc := row.Location()
		if loc == "" {
			loc = fmt.Sprintf("row %d", i+1)
		}

		if err := row.Validate(); err != nil {
			res.Failed++
			errs = append(errs, fmt.Errorf("%s: invalid product %q: %w", loc, row.Name, err))
			continue
		}

		if _, err := creator.Create(ctx, row.ProductCreate()); err != nil {
			if ctx.Err() != nil {
				return res, errors.Join(append(errs, ctx.Err())...)
			}
			res.Failed++
			errs = append(errs, fmt.Errorf("%s: failed to create %q: %w", loc, row.Name, err))
			continue
		}
		res.Created++
	}

	return res, errors.Join(errs...)
}

// MarshalRows renders products as CSV
func MarshalRows(products []models.Product) ([]byte, error) {
	rows := make([]ProductRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, RowFromProduct(p))
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(rows, &buf); err != nil {
		return nil, fmt.Errorf("failed to write CSV: %w", err)
	}
	return buf.Bytes(), nil
}

// Export writes products to path as CSV. The file is replaced atomically.
func Export(path string, products []models.Product) error {
	data, err := MarshalRows(products)
	if err != nil {
		return err
	}
	if err := renameio.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
