package variant

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/utafrali/variantcatalog/internal/domain"
)

const (
	pricePrefix = "price-"
	pricePlus   = "plus"
	priceMinus  = "minus"
)

var priceToken = regexp.MustCompile(`price-(plus|minus)(\d+)`)

// TemplateLookup resolves variant templates by ID.
type TemplateLookup interface {
	GetVariantTemplate(id string) (domain.VariantTemplate, bool)
}

// EncodeOptions controls the token format.
type EncodeOptions struct {
	// Separator joins the tokens of one combination into a single string.
	Separator string
	// PriceSeparator precedes the price suffix inside a token.
	PriceSeparator string
	IncludePrice   bool
	IncludeName    bool
	MaxLength      int
}

// DefaultEncodeOptions returns the options used when none are given.
func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		Separator:      "/",
		PriceSeparator: "_",
		IncludePrice:   true,
		IncludeName:    false,
		MaxLength:      100,
	}
}

func (o EncodeOptions) normalized() EncodeOptions {
	def := DefaultEncodeOptions()
	if o.Separator == "" {
		o.Separator = def.Separator
	}
	if o.PriceSeparator == "" {
		o.PriceSeparator = def.PriceSeparator
	}
	if o.MaxLength <= 0 {
		o.MaxLength = def.MaxLength
	}
	return o
}

// Encoder turns variant values into encoded tokens, search tags and filter
// arrays. Templates or options missing from the lookup are skipped rather
// than reported, except by Validate.
type Encoder struct {
	templates TemplateLookup
}

// NewEncoder creates an Encoder resolving templates through lookup.
func NewEncoder(lookup TemplateLookup) *Encoder {
	return &Encoder{templates: lookup}
}

// resolved is one template/value pair with its template and, when known,
// the matching option.
type resolved struct {
	template  domain.VariantTemplate
	value     string
	option    domain.VariantOption
	hasOption bool
}

func (e *Encoder) resolve(values domain.VariantValues) []resolved {
	out := make([]resolved, 0, len(values))
	for _, p := range values {
		tpl, ok := e.templates.GetVariantTemplate(p.TemplateID)
		if !ok {
			continue
		}
		opt, found := tpl.Option(p.Value)
		out = append(out, resolved{template: tpl, value: p.Value, option: opt, hasOption: found})
	}
	return out
}

// Encode builds one token per resolvable template. Tokens longer than
// MaxLength are cut at the end, which may corrupt the price suffix.
func (e *Encoder) Encode(values domain.VariantValues, opts EncodeOptions) []string {
	opts = opts.normalized()

	tokens := make([]string, 0, len(values))
	for _, r := range e.resolve(values) {
		var b strings.Builder
		if opts.IncludeName {
			b.WriteString(CleanString(r.template.ID))
			b.WriteByte('-')
		}
		b.WriteString(CleanString(r.value))
		if opts.IncludePrice && r.hasOption && !r.option.AdditionalPrice.IsZero() {
			direction := pricePlus
			if r.option.AdditionalPrice.IsNegative() {
				direction = priceMinus
			}
			b.WriteString(opts.PriceSeparator)
			b.WriteString(pricePrefix)
			b.WriteString(direction)
			b.WriteString(r.option.AdditionalPrice.Abs().String())
		}

		token := b.String()
		if len(token) > opts.MaxLength {
			token = token[:opts.MaxLength]
		}
		tokens = append(tokens, token)
	}
	return tokens
}

// EncodeJoined encodes values and joins the tokens with the separator.
func (e *Encoder) EncodeJoined(values domain.VariantValues, opts EncodeOptions) string {
	opts = opts.normalized()
	return strings.Join(e.Encode(values, opts), opts.Separator)
}

// Validate reports the first template or option in values the lookup does not
// know. Free text templates accept any value.
func (e *Encoder) Validate(values domain.VariantValues) error {
	for _, p := range values {
		tpl, ok := e.templates.GetVariantTemplate(p.TemplateID)
		if !ok {
			return fmt.Errorf("template %q: %w", p.TemplateID, domain.ErrUnknownTemplate)
		}
		if tpl.InputType == domain.InputTypeText {
			continue
		}
		if _, ok := tpl.Option(p.Value); !ok {
			return fmt.Errorf("template %q value %q: %w", p.TemplateID, p.Value, domain.ErrUnknownOption)
		}
	}
	return nil
}

// StripPrice removes the price suffix from a token.
func StripPrice(token string, opts EncodeOptions) string {
	opts = opts.normalized()
	if i := strings.Index(token, opts.PriceSeparator+pricePrefix); i >= 0 {
		return token[:i]
	}
	return token
}

// Decode parses encoded tokens. The first Separator-delimited segment of each
// token, without its price suffix, is split at the first '-' into type and
// value; a segment without '-' is a bare value. Decoding does not undo
// CleanString.
func Decode(tokens []string, opts EncodeOptions) []domain.DecodedVariant {
	opts = opts.normalized()

	out := make([]domain.DecodedVariant, 0, len(tokens))
	for _, token := range tokens {
		parts := strings.Split(token, opts.Separator)

		var d domain.DecodedVariant
		first := StripPrice(parts[0], opts)
		if i := strings.Index(first, "-"); i >= 0 {
			d.VariantType = first[:i]
			d.Value = first[i+1:]
		} else {
			d.Value = first
		}

		for _, part := range parts {
			if !strings.Contains(part, pricePrefix) {
				continue
			}
			m := priceToken.FindStringSubmatch(part)
			if m == nil {
				continue
			}
			n, err := strconv.ParseInt(m[2], 10, 64)
			if err != nil {
				continue
			}
			if m[1] == priceMinus {
				n = -n
			}
			d.HasPrice = true
			d.PriceModifier = n
			break
		}
		out = append(out, d)
	}
	return out
}
