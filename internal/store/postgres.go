package store

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/atmx/listing-metrics/internal/model"
)

//go:embed schema.sql
var schemaSQL string

// PostgresStore implements Store using PostgreSQL as the source of truth.
// All monetary values are stored as NUMERIC for exact decimal precision.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL-backed store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Migrate creates the tables if they do not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

const listingColumns = `id, name, product_id,
		        sale_price::TEXT, cost_price::TEXT,
		        fee_kind, fee_value::TEXT, marketplace_fee_amount::TEXT,
		        tax_rate::TEXT, tax_amount::TEXT, shipping_cost::TEXT,
		        gross_profit::TEXT, margin_ratio::TEXT, created_at`

func (s *PostgresStore) InsertListing(ctx context.Context, l *model.Listing) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO listings (id, name, product_id, sale_price, cost_price,
		                       fee_kind, fee_value, marketplace_fee_amount,
		                       tax_rate, tax_amount, shipping_cost,
		                       gross_profit, margin_ratio, created_at)
		 VALUES ($1, $2, $3, $4::NUMERIC, $5::NUMERIC, $6, $7::NUMERIC, $8::NUMERIC,
		         $9::NUMERIC, $10::NUMERIC, $11::NUMERIC, $12::NUMERIC, $13::NUMERIC, $14)`,
		l.ID, l.Name, l.ProductID,
		l.SalePrice.String(), l.CostPrice.String(),
		string(l.MarketplaceFee.Kind), l.MarketplaceFee.Value.String(), l.MarketplaceFeeAmount.String(),
		l.TaxRate.String(), l.TaxAmount.String(), l.ShippingCost.String(),
		l.GrossProfit.String(), l.MarginRatio.String(), l.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: listing %s", ErrDuplicateID, l.ID)
	}
	return err
}

func (s *PostgresStore) ReplaceListing(ctx context.Context, l *model.Listing) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE listings
		 SET name = $2, product_id = $3,
		     sale_price = $4::NUMERIC, cost_price = $5::NUMERIC,
		     fee_kind = $6, fee_value = $7::NUMERIC, marketplace_fee_amount = $8::NUMERIC,
		     tax_rate = $9::NUMERIC, tax_amount = $10::NUMERIC, shipping_cost = $11::NUMERIC,
		     gross_profit = $12::NUMERIC, margin_ratio = $13::NUMERIC
		 WHERE id = $1`,
		l.ID, l.Name, l.ProductID,
		l.SalePrice.String(), l.CostPrice.String(),
		string(l.MarketplaceFee.Kind), l.MarketplaceFee.Value.String(), l.MarketplaceFeeAmount.String(),
		l.TaxRate.String(), l.TaxAmount.String(), l.ShippingCost.String(),
		l.GrossProfit.String(), l.MarginRatio.String(),
	)
	if err != nil {
		return fmt.Errorf("replace listing %s: %w", l.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s", ErrNotFound, l.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteListing(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM listings WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete listing %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: listing %s", ErrNotFound, id)
	}
	return nil
}

func (s *PostgresStore) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+listingColumns+` FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: listing %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get listing %s: %w", id, err)
	}
	return &l, nil
}

func (s *PostgresStore) ListListings(ctx context.Context) ([]model.Listing, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+listingColumns+` FROM listings ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []model.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

func (s *PostgresStore) CreateProduct(ctx context.Context, p *model.Product) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO products (id, name, weight_grams, dimensions, cost_price,
		                       material, size, colors, created_at, updated_at)
		 VALUES ($1, $2, $3::NUMERIC, $4, $5::NUMERIC, $6, $7, $8, $9, $10)`,
		p.ID, p.Name, p.WeightGrams.String(), p.Dimensions, p.CostPrice.String(),
		p.Material, p.Size, colorsOrEmpty(p.Colors), p.CreatedAt, p.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: product %s", ErrDuplicateID, p.ID)
	}
	return err
}

func (s *PostgresStore) UpdateProduct(ctx context.Context, p *model.Product) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE products
		 SET name = $2, weight_grams = $3::NUMERIC, dimensions = $4,
		     cost_price = $5::NUMERIC, material = $6, size = $7,
		     colors = $8, updated_at = $9
		 WHERE id = $1`,
		p.ID, p.Name, p.WeightGrams.String(), p.Dimensions,
		p.CostPrice.String(), p.Material, p.Size,
		colorsOrEmpty(p.Colors), p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update product %s: %w", p.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, p.ID)
	}
	return nil
}

func (s *PostgresStore) DeleteProduct(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	return nil
}

const productColumns = `id, name, weight_grams::TEXT, dimensions, cost_price::TEXT,
		        material, size, colors, created_at, updated_at`

func (s *PostgresStore) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
	p, err := scanProduct(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get product %s: %w", id, err)
	}
	return &p, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]model.Product, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+productColumns+` FROM products ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// rowScanner is satisfied by both pgx.Row and pgx.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (model.Listing, error) {
	var l model.Listing
	var feeKind string
	var sale, cost, feeValue, feeAmount, taxRate, taxAmount, shipping, gross, margin string

	if err := row.Scan(&l.ID, &l.Name, &l.ProductID,
		&sale, &cost,
		&feeKind, &feeValue, &feeAmount,
		&taxRate, &taxAmount, &shipping,
		&gross, &margin, &l.CreatedAt); err != nil {
		return l, err
	}

	l.SalePrice, _ = decimal.NewFromString(sale)
	l.CostPrice, _ = decimal.NewFromString(cost)
	l.MarketplaceFee.Kind = model.FeeKind(feeKind)
	l.MarketplaceFee.Value, _ = decimal.NewFromString(feeValue)
	l.MarketplaceFeeAmount, _ = decimal.NewFromString(feeAmount)
	l.TaxRate, _ = decimal.NewFromString(taxRate)
	l.TaxAmount, _ = decimal.NewFromString(taxAmount)
	l.ShippingCost, _ = decimal.NewFromString(shipping)
	l.GrossProfit, _ = decimal.NewFromString(gross)
	l.MarginRatio, _ = decimal.NewFromString(margin)
	return l, nil
}

func scanProduct(row rowScanner) (model.Product, error) {
	var p model.Product
	var weight, cost string

	if err := row.Scan(&p.ID, &p.Name, &weight, &p.Dimensions, &cost,
		&p.Material, &p.Size, &p.Colors, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return p, err
	}

	p.WeightGrams, _ = decimal.NewFromString(weight)
	p.CostPrice, _ = decimal.NewFromString(cost)
	return p, nil
}

func colorsOrEmpty(colors []string) []string {
	if colors == nil {
		return []string{}
	}
	return colors
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
