package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/repository"
	"github.com/utafrali/variantcatalog/pkg/database"
	apperrors "github.com/utafrali/variantcatalog/pkg/errors"
)

const combinationsTable = "product_combinations"

// The table is created by migrations/001_create_product_combinations.up.sql.
const combinationColumns = `id, product_id, variant_values, sku, price, quantity, is_default,
		variant_strings, search_tags, exact_match, fuzzy_match, type_match, price_range,
		created_at, updated_at`

// CombinationRepository implements repository.CombinationRepository using
// PostgreSQL array columns.
type CombinationRepository struct {
	pool database.DBTX
}

// NewCombinationRepository creates a new PostgreSQL-backed combination repository.
func NewCombinationRepository(pool database.DBTX) *CombinationRepository {
	return &CombinationRepository{pool: pool}
}

// ReplaceForProduct deletes the stored combinations of productID and inserts
// the new set within one transaction.
func (r *CombinationRepository) ReplaceForProduct(ctx context.Context, productID string, combinations []domain.ProductCombination) (err error) {
	ctx, end := database.TraceQuery(ctx, "ReplaceCombinations", combinationsTable, "DELETE+INSERT")
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	if _, err = tx.Exec(ctx, `DELETE FROM product_combinations WHERE product_id = $1`, productID); err != nil {
		return fmt.Errorf("delete previous combinations: %w", err)
	}

	insert := `
		INSERT INTO product_combinations (` + combinationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

	now := time.Now().UTC()
	for i := range combinations {
		c := &combinations[i]
		c.ProductID = productID
		if c.CreatedAt.IsZero() {
			c.CreatedAt = now
		}
		c.UpdatedAt = now

		valuesJSON, mErr := json.Marshal(c.VariantValues)
		if mErr != nil {
			return fmt.Errorf("marshal variant values: %w", mErr)
		}

		_, err = tx.Exec(ctx, insert,
			c.ID,
			c.ProductID,
			valuesJSON,
			c.SKU,
			c.Price.StringFixed(2),
			c.Quantity,
			c.IsDefault,
			nonNil(c.VariantStrings),
			nonNil(c.SearchTags),
			nonNil(c.Filters.ExactMatch),
			nonNil(c.Filters.FuzzyMatch),
			nonNil(c.Filters.TypeMatch),
			nonNil(c.Filters.PriceRange),
			c.CreatedAt,
			c.UpdatedAt,
		)
		if err != nil {
			if database.IsUniqueViolation(err) {
				return apperrors.InvalidInput(fmt.Sprintf("duplicate combination id %s", c.ID))
			}
			return fmt.Errorf("insert combination: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// ListByProduct returns the combinations of productID, default first.
func (r *CombinationRepository) ListByProduct(ctx context.Context, productID string) (_ []domain.ProductCombination, err error) {
	query := `SELECT ` + combinationColumns + `
		FROM product_combinations
		WHERE product_id = $1
		ORDER BY is_default DESC, sku ASC`

	ctx, end := database.TraceQuery(ctx, "ListCombinations", combinationsTable, query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list combinations: %w", err)
	}
	defer rows.Close()

	combinations := []domain.ProductCombination{}
	for rows.Next() {
		c, sErr := scanCombination(rows)
		if sErr != nil {
			return nil, sErr
		}
		combinations = append(combinations, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate combination rows: %w", err)
	}
	return combinations, nil
}

// GetByID retrieves a combination by its ID.
func (r *CombinationRepository) GetByID(ctx context.Context, id string) (_ *domain.ProductCombination, err error) {
	query := `SELECT ` + combinationColumns + ` FROM product_combinations WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetCombination", combinationsTable, query)
	defer func() { end(err) }()

	c, err := scanCombination(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("combination", id)
		}
		return nil, err
	}
	return c, nil
}

// Search returns combinations matching filter with the total count.
func (r *CombinationRepository) Search(ctx context.Context, filter repository.CombinationFilter) (_ []domain.ProductCombination, _ int, err error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	add := func(format string, arg any) {
		conditions = append(conditions, fmt.Sprintf(format, argIndex))
		args = append(args, arg)
		argIndex++
	}

	if filter.ProductID != nil {
		add("product_id = $%d", *filter.ProductID)
	}
	if len(filter.ExactMatch) > 0 {
		add("exact_match @> $%d", filter.ExactMatch)
	}
	if len(filter.TypeMatch) > 0 {
		add("type_match @> $%d", filter.TypeMatch)
	}
	if len(filter.SearchTags) > 0 {
		add("search_tags @> $%d", filter.SearchTags)
	}
	if len(filter.FuzzyMatch) > 0 {
		add("fuzzy_match && $%d", filter.FuzzyMatch)
	}
	if len(filter.PriceRange) > 0 {
		add("price_range && $%d", filter.PriceRange)
	}
	if filter.InStock != nil {
		if *filter.InStock {
			conditions = append(conditions, "quantity > 0")
		} else {
			conditions = append(conditions, "quantity <= 0")
		}
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`
		SELECT %s,
			   count(*) OVER() AS total_count
		FROM product_combinations
		%s
		ORDER BY product_id, is_default DESC, sku ASC
		LIMIT $%d OFFSET $%d`,
		combinationColumns, whereClause, argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 20
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	args = append(args, limit, offset)

	ctx, end := database.TraceQuery(ctx, "SearchCombinations", combinationsTable, query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search combinations: %w", err)
	}
	defer rows.Close()

	var (
		combinations = []domain.ProductCombination{}
		totalCount   int
	)
	for rows.Next() {
		c, sErr := scanCombination(rows, &totalCount)
		if sErr != nil {
			return nil, 0, sErr
		}
		combinations = append(combinations, *c)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate combination rows: %w", err)
	}
	return combinations, totalCount, nil
}

// UpdateQuantity sets the stock quantity of a combination.
func (r *CombinationRepository) UpdateQuantity(ctx context.Context, id string, quantity int) (_ *domain.ProductCombination, err error) {
	query := `
		UPDATE product_combinations
		SET quantity = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + combinationColumns

	ctx, end := database.TraceQuery(ctx, "UpdateCombinationQuantity", combinationsTable, query)
	defer func() { end(err) }()

	c, err := scanCombination(r.pool.QueryRow(ctx, query, quantity, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("combination", id)
		}
		return nil, err
	}
	return c, nil
}

// DeleteByProduct removes all combinations of productID.
func (r *CombinationRepository) DeleteByProduct(ctx context.Context, productID string) (_ int64, err error) {
	query := `DELETE FROM product_combinations WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteCombinations", combinationsTable, query)
	defer func() { end(err) }()

	ct, err := r.pool.Exec(ctx, query, productID)
	if err != nil {
		return 0, fmt.Errorf("delete combinations: %w", err)
	}
	return ct.RowsAffected(), nil
}

// scanCombination reads one row in combinationColumns order followed by any
// extra destinations.
func scanCombination(row pgx.Row, extra ...any) (*domain.ProductCombination, error) {
	var (
		c          domain.ProductCombination
		valuesJSON []byte
		price      string
	)

	dest := []any{
		&c.ID,
		&c.ProductID,
		&valuesJSON,
		&c.SKU,
		&price,
		&c.Quantity,
		&c.IsDefault,
		&c.VariantStrings,
		&c.SearchTags,
		&c.Filters.ExactMatch,
		&c.Filters.FuzzyMatch,
		&c.Filters.TypeMatch,
		&c.Filters.PriceRange,
		&c.CreatedAt,
		&c.UpdatedAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan combination: %w", err)
	}

	if len(valuesJSON) > 0 {
		if err := json.Unmarshal(valuesJSON, &c.VariantValues); err != nil {
			return nil, fmt.Errorf("unmarshal variant values: %w", err)
		}
	}

	p, err := decimal.NewFromString(price)
	if err != nil {
		return nil, fmt.Errorf("parse price %q: %w", price, err)
	}
	c.Price = p

	return &c, nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
