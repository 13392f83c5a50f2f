package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/utafrali/variantcatalog/internal/client"
	"github.com/utafrali/variantcatalog/internal/combination"
	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/repository"
	apperrors "github.com/utafrali/variantcatalog/pkg/errors"
)

// ReasonManual tags combinations deleted through the API.
const ReasonManual = "manual"

// EventPublisher publishes combination domain events.
type EventPublisher interface {
	PublishCombinationsGenerated(ctx context.Context, productID string, combinations []domain.ProductCombination) error
	PublishCombinationsDeleted(ctx context.Context, productID string, deleted int64, reason string) error
	PublishStockUpdated(ctx context.Context, c *domain.ProductCombination) error
}

// ProductLookup fetches products from the product service.
type ProductLookup interface {
	GetProduct(ctx context.Context, id string) (*client.Product, error)
}

// TemplateCatalog resolves variant templates by id.
type TemplateCatalog interface {
	GetVariantTemplate(id string) (domain.VariantTemplate, bool)
}

// SelectionInput selects options of one template. Values are looked up in the
// catalog; Options, when set, are used as given.
type SelectionInput struct {
	TemplateID string
	Values     []string
	Options    []domain.VariantOption
}

// GenerateInput holds the parameters for generating combinations.
type GenerateInput struct {
	Selections []SelectionInput
	BasePrice  *decimal.Decimal
	BaseSKU    string
}

// CombinationService implements generation, storage and lookup of product
// combinations.
type CombinationService struct {
	generator       *combination.Generator
	templates       TemplateCatalog
	repo            repository.CombinationRepository
	cache           repository.CombinationCache
	events          EventPublisher
	products        ProductLookup
	maxCombinations int
	strict          bool
	logger          *slog.Logger
}

// CombinationOption configures optional collaborators.
type CombinationOption func(*CombinationService)

// WithCache serves List from cache when possible.
func WithCache(cache repository.CombinationCache) CombinationOption {
	return func(s *CombinationService) { s.cache = cache }
}

// WithProductLookup verifies products before saving and fills the base price
// and SKU the input omits.
func WithProductLookup(products ProductLookup) CombinationOption {
	return func(s *CombinationService) { s.products = products }
}

// WithLimits sets the combination ceiling and strict catalog validation.
func WithLimits(maxCombinations int, strict bool) CombinationOption {
	return func(s *CombinationService) {
		s.maxCombinations = maxCombinations
		s.strict = strict
	}
}

// NewCombinationService creates a new combination service.
func NewCombinationService(
	generator *combination.Generator,
	templates TemplateCatalog,
	repo repository.CombinationRepository,
	events EventPublisher,
	logger *slog.Logger,
	opts ...CombinationOption,
) *CombinationService {
	s := &CombinationService{
		generator:       generator,
		templates:       templates,
		repo:            repo,
		events:          events,
		maxCombinations: 1000,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Preview generates combinations without storing them.
func (s *CombinationService) Preview(ctx context.Context, input *GenerateInput) ([]domain.ProductCombination, error) {
	basePrice := decimal.Zero
	if input.BasePrice != nil {
		basePrice = *input.BasePrice
	}
	return s.generate(ctx, input, basePrice, input.BaseSKU)
}

// Save generates combinations for productID and replaces the stored set.
func (s *CombinationService) Save(ctx context.Context, productID string, input *GenerateInput) ([]domain.ProductCombination, error) {
	if strings.TrimSpace(productID) == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}

	basePrice := decimal.Zero
	if input.BasePrice != nil {
		basePrice = *input.BasePrice
	}
	baseSKU := input.BaseSKU

	if s.products != nil {
		product, err := s.products.GetProduct(ctx, productID)
		if err != nil {
			return nil, fmt.Errorf("lookup product: %w", err)
		}
		if input.BasePrice == nil {
			basePrice = product.Price()
		}
		if baseSKU == "" {
			baseSKU = product.BaseSKU()
		}
	}
	if baseSKU == "" {
		return nil, apperrors.InvalidInput("base sku is required")
	}

	combinations, err := s.generate(ctx, input, basePrice, baseSKU)
	if err != nil {
		return nil, err
	}

	if err := s.repo.ReplaceForProduct(ctx, productID, combinations); err != nil {
		return nil, fmt.Errorf("store combinations: %w", err)
	}
	s.invalidate(ctx, productID)

	if err := s.events.PublishCombinationsGenerated(ctx, productID, combinations); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish combinations.generated event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "combinations saved",
		slog.String("product_id", productID),
		slog.Int("count", len(combinations)),
	)
	return combinations, nil
}

// List returns the stored combinations of productID, narrowed by filters
// (variant type to allowed values) when given.
func (s *CombinationService) List(ctx context.Context, productID string, filters map[string][]string) ([]domain.ProductCombination, error) {
	combinations, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	if len(filters) == 0 {
		return combinations, nil
	}
	return combination.Filter(combinations, filters), nil
}

// Facets returns the distinct values per variant type across the stored
// combinations of productID.
func (s *CombinationService) Facets(ctx context.Context, productID string) (map[string][]string, error) {
	combinations, err := s.load(ctx, productID)
	if err != nil {
		return nil, err
	}
	return combination.UniqueVariantValues(combinations), nil
}

// Get returns one stored combination.
func (s *CombinationService) Get(ctx context.Context, id string) (*domain.ProductCombination, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get combination: %w", err)
	}
	return c, nil
}

// Search queries stored combinations by their filter arrays.
func (s *CombinationService) Search(ctx context.Context, filter repository.CombinationFilter) ([]domain.ProductCombination, int, error) {
	combinations, total, err := s.repo.Search(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("search combinations: %w", err)
	}
	return combinations, total, nil
}

// UpdateQuantity sets the stock of one combination.
func (s *CombinationService) UpdateQuantity(ctx context.Context, id string, quantity int) (*domain.ProductCombination, error) {
	if quantity < 0 {
		return nil, apperrors.InvalidInput("quantity must not be negative")
	}

	c, err := s.repo.UpdateQuantity(ctx, id, quantity)
	if err != nil {
		return nil, fmt.Errorf("update quantity: %w", err)
	}
	s.invalidate(ctx, c.ProductID)

	if err := s.events.PublishStockUpdated(ctx, c); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish combination.stock_updated event",
			slog.String("combination_id", id),
			slog.String("error", err.Error()),
		)
	}
	return c, nil
}

// Delete removes the stored combinations of productID.
func (s *CombinationService) Delete(ctx context.Context, productID string) (int64, error) {
	return s.DeleteForProduct(ctx, productID, ReasonManual)
}

// DeleteForProduct removes the stored combinations of productID and records
// why.
func (s *CombinationService) DeleteForProduct(ctx context.Context, productID, reason string) (int64, error) {
	n, err := s.repo.DeleteByProduct(ctx, productID)
	if err != nil {
		return 0, fmt.Errorf("delete combinations: %w", err)
	}
	s.invalidate(ctx, productID)

	if n > 0 {
		if err := s.events.PublishCombinationsDeleted(ctx, productID, n, reason); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish combinations.deleted event",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "combinations deleted",
		slog.String("product_id", productID),
		slog.Int64("deleted", n),
		slog.String("reason", reason),
	)
	return n, nil
}

func (s *CombinationService) generate(ctx context.Context, input *GenerateInput, basePrice decimal.Decimal, baseSKU string) ([]domain.ProductCombination, error) {
	if basePrice.IsNegative() {
		return nil, apperrors.InvalidInput("base price must not be negative")
	}

	selections, err := s.selections(input.Selections)
	if err != nil {
		return nil, err
	}

	if n := combination.Count(selections); n > s.maxCombinations {
		s.logger.WarnContext(ctx, "combination limit exceeded",
			slog.Int("count", n),
			slog.Int("limit", s.maxCombinations),
		)
		return nil, apperrors.TooManyCombinations(n, s.maxCombinations)
	}

	combinations, err := s.generator.Generate(selections, basePrice, baseSKU)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownTemplate) || errors.Is(err, domain.ErrUnknownOption) {
			return nil, apperrors.Unprocessable(err.Error(), err)
		}
		if errors.Is(err, domain.ErrDuplicateTemplate) {
			return nil, apperrors.InvalidInput(err.Error())
		}
		return nil, fmt.Errorf("generate combinations: %w", err)
	}
	return combinations, nil
}

// selections resolves option values against the catalog. Outside strict mode
// unknown templates and values become plain zero-priced options, which the
// encoder later skips. Each template may be selected once; repeated values
// and inline options collapse to their first occurrence.
func (s *CombinationService) selections(inputs []SelectionInput) ([]domain.VariantSelection, error) {
	out := make([]domain.VariantSelection, 0, len(inputs))
	templates := make(map[string]struct{}, len(inputs))
	for _, in := range inputs {
		if in.TemplateID == "" {
			return nil, apperrors.InvalidInput("template_id is required for every selection")
		}
		if _, dup := templates[in.TemplateID]; dup {
			return nil, apperrors.InvalidInput(fmt.Sprintf("template_id %q is selected more than once", in.TemplateID))
		}
		templates[in.TemplateID] = struct{}{}

		if len(in.Options) > 0 {
			out = append(out, domain.VariantSelection{TemplateID: in.TemplateID, Options: combination.UniqueOptions(in.Options)})
			continue
		}

		tpl, known := s.templates.GetVariantTemplate(in.TemplateID)
		if !known && s.strict {
			err := fmt.Errorf("template %q: %w", in.TemplateID, domain.ErrUnknownTemplate)
			return nil, apperrors.Unprocessable(err.Error(), err)
		}

		sel := domain.VariantSelection{TemplateID: in.TemplateID, Options: make([]domain.VariantOption, 0, len(in.Values))}
		seen := make(map[string]struct{}, len(in.Values))
		for _, v := range in.Values {
			if _, dup := seen[v]; dup {
				continue
			}
			seen[v] = struct{}{}

			if known {
				if opt, ok := tpl.Option(v); ok {
					sel.Options = append(sel.Options, opt)
					continue
				}
				if s.strict && tpl.InputType != domain.InputTypeText {
					err := fmt.Errorf("template %q value %q: %w", in.TemplateID, v, domain.ErrUnknownOption)
					return nil, apperrors.Unprocessable(err.Error(), err)
				}
			}
			sel.Options = append(sel.Options, domain.NewPlainOption(v, v, decimal.Zero))
		}
		out = append(out, sel)
	}
	return out, nil
}

// load reads combinations through the cache. Cache failures fall back to the
// repository.
func (s *CombinationService) load(ctx context.Context, productID string) ([]domain.ProductCombination, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, productID)
		if err != nil {
			s.logger.WarnContext(ctx, "combination cache read failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
		if ok {
			return cached, nil
		}
	}

	combinations, err := s.repo.ListByProduct(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list combinations: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, productID, combinations); err != nil {
			s.logger.WarnContext(ctx, "combination cache write failed",
				slog.String("product_id", productID),
				slog.String("error", err.Error()),
			)
		}
	}
	return combinations, nil
}

func (s *CombinationService) invalidate(ctx context.Context, productID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "combination cache invalidation failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}
