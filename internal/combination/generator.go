// Package combination expands variant selections into purchasable product
// combinations and filters them.
package combination

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/variantcatalog/internal/domain"
	"github.com/utafrali/variantcatalog/internal/variant"
)

// Generator computes the cartesian product of variant selections.
type Generator struct {
	encoder *variant.Encoder
	opts    variant.EncodeOptions
	strict  bool
	newID   func() string
}

// Option configures a Generator.
type Option func(*Generator)

// WithStrict makes Generate reject values whose template or option is not in
// the catalog instead of skipping them while encoding.
func WithStrict(strict bool) Option {
	return func(g *Generator) { g.strict = strict }
}

// WithIDFunc overrides how combination IDs are generated.
func WithIDFunc(fn func() string) Option {
	return func(g *Generator) { g.newID = fn }
}

// EncodeOptions returns the token options the generator encodes with.
func (g *Generator) EncodeOptions() variant.EncodeOptions {
	return g.opts
}

// NewGenerator creates a Generator encoding with the template name prefix and
// price suffix enabled.
func NewGenerator(encoder *variant.Encoder, opts ...Option) *Generator {
	encodeOpts := variant.DefaultEncodeOptions()
	encodeOpts.IncludeName = true

	g := &Generator{
		encoder: encoder,
		opts:    encodeOpts,
		newID:   func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Count returns how many combinations Generate would produce. The result
// saturates at math.MaxInt instead of overflowing.
func Count(selections []domain.VariantSelection) int {
	total := 0
	for _, s := range selections {
		n := len(s.Options)
		if n == 0 {
			continue
		}
		if total == 0 {
			total = 1
		}
		if total > math.MaxInt/n {
			return math.MaxInt
		}
		total *= n
	}
	return total
}

// Generate expands selections into combinations. Selections without options
// do not participate; when none remain the result is empty. Dimensions keep
// the input order, which fixes both the VariantValues order and the SKU
// suffix order. Only the first combination is marked default. A template may
// appear in only one selection, and repeated option values within a
// selection collapse to the first.
func (g *Generator) Generate(selections []domain.VariantSelection, basePrice decimal.Decimal, baseSku string) ([]domain.ProductCombination, error) {
	start := time.Now()
	defer func() { GenerationDuration.Observe(time.Since(start).Seconds()) }()

	dims, err := dimensions(selections)
	if err != nil {
		return nil, fmt.Errorf("generate combinations: %w", err)
	}
	if len(dims) == 0 {
		return []domain.ProductCombination{}, nil
	}

	out := make([]domain.ProductCombination, 0, Count(dims))
	idx := make([]int, len(dims))
	for {
		values := make(domain.VariantValues, 0, len(dims))
		price := basePrice
		for d, sel := range dims {
			opt := sel.Options[idx[d]]
			values = values.Set(sel.TemplateID, opt.Value)
			price = price.Add(opt.AdditionalPrice)
		}

		if g.strict {
			if err := g.encoder.Validate(values); err != nil {
				StrictRejections.Inc()
				return nil, fmt.Errorf("generate combinations: %w", err)
			}
		}

		if price.IsNegative() {
			price = decimal.Zero
		}

		out = append(out, domain.ProductCombination{
			ID:             g.newID(),
			VariantValues:  values,
			SKU:            BuildSKU(baseSku, values),
			Price:          price,
			IsDefault:      len(out) == 0,
			VariantStrings: g.encoder.Encode(values, g.opts),
			SearchTags:     g.encoder.SearchTags(values),
			Filters:        g.encoder.FilterArrays(values),
		})

		if !advance(idx, dims) {
			break
		}
	}

	CombinationsGenerated.Add(float64(len(out)))
	return out, nil
}

// dimensions drops empty selections and de-duplicates option values.
func dimensions(selections []domain.VariantSelection) ([]domain.VariantSelection, error) {
	dims := make([]domain.VariantSelection, 0, len(selections))
	templates := make(map[string]struct{}, len(selections))
	for _, s := range selections {
		if _, dup := templates[s.TemplateID]; dup {
			return nil, fmt.Errorf("template %q: %w", s.TemplateID, domain.ErrDuplicateTemplate)
		}
		templates[s.TemplateID] = struct{}{}
		if len(s.Options) == 0 {
			continue
		}
		dims = append(dims, domain.VariantSelection{
			TemplateID: s.TemplateID,
			Options:    UniqueOptions(s.Options),
		})
	}
	return dims, nil
}

// UniqueOptions returns options without repeated values, keeping the first
// occurrence of each.
func UniqueOptions(options []domain.VariantOption) []domain.VariantOption {
	out := make([]domain.VariantOption, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, o := range options {
		if _, dup := seen[o.Value]; dup {
			continue
		}
		seen[o.Value] = struct{}{}
		out = append(out, o)
	}
	return out
}

// advance steps the odometer with the last dimension varying fastest. It
// reports false after the last tuple.
func advance(idx []int, dims []domain.VariantSelection) bool {
	for d := len(idx) - 1; d >= 0; d-- {
		idx[d]++
		if idx[d] < len(dims[d].Options) {
			return true
		}
		idx[d] = 0
	}
	return false
}
