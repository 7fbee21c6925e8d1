package catalog_test

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"

	"github.com/nkins/storefront/internal/catalog"
)

func TestEffectivePrice(t *testing.T) {
	p := catalog.Product{ID: "p1", BasePrice: 35000}
	v := catalog.Variant{ID: "v1", PriceAdjustment: 2500}
	price, err := catalog.EffectivePrice(p, v)
	require.NoError(t, err)
	require.EqualValues(t, 37500, price)

	v.PriceAdjustment = -35000
	price, err = catalog.EffectivePrice(p, v)
	require.NoError(t, err)
	require.EqualValues(t, 0, price)

	v.PriceAdjustment = -35001
	_, err = catalog.EffectivePrice(p, v)
	require.ErrorIs(t, err, catalog.ErrInvalidPrice)
}

func TestDeriveSlug(t *testing.T) {
	cases := map[string]string{
		"Ankara Maxi Dress":     "ankara-maxi-dress",
		"  Silk -- Scarf!  ":    "silk-scarf",
		"Tote (Large) 2024":     "tote-large-2024",
		"---":                   "",
		"ALL CAPS":              "all-caps",
		"already-a-slug":        "already-a-slug",
		"tabs\tand\nnewlines":   "tabs-and-newlines",
		"trailing punctuation.": "trailing-punctuation",
	}
	for input, want := range cases {
		require.Equal(t, want, catalog.DeriveSlug(input), "input %q", input)
	}
}

func TestDeriveSlugIdempotentAndWellFormed(t *testing.T) {
	wellFormed := regexp.MustCompile(`^$|^[a-z0-9]+(-[a-z0-9]+)*$`)
	rng := rand.New(rand.NewSource(42))
	alphabet := []rune("abcXYZ 019!@#$-_./é世")
	for i := 0; i < 500; i++ {
		var b strings.Builder
		n := rng.Intn(24)
		for j := 0; j < n; j++ {
			b.WriteRune(alphabet[rng.Intn(len(alphabet))])
		}
		input := b.String()
		slug := catalog.DeriveSlug(input)
		require.Regexp(t, wellFormed, slug, "input %q", input)
		require.Equal(t, slug, catalog.DeriveSlug(slug), "not idempotent for %q", input)
	}
}

func TestDeriveSku(t *testing.T) {
	sku := catalog.DeriveSku("ankara-maxi-dress", []string{"emerald", "black"}, []string{"x l", "m"})
	require.Equal(t, "ANKAR-EME-XL", sku)

	sku = catalog.DeriveSku("tote", nil, nil)
	require.Equal(t, "TOTE-CLR-SZ", sku)

	sku = catalog.DeriveSku("ab", []string{""}, []string{"   "})
	require.Equal(t, "AB-CLR-SZ", sku)
}

func TestDeriveSkuMultiByteColor(t *testing.T) {
	sku := catalog.DeriveSku("ankara-scarf", []string{"émeraude"}, []string{"XL"})
	require.Equal(t, "ANKAR-ÉME-XL", sku)
	require.True(t, utf8.ValidString(sku))

	sku = catalog.DeriveSku("tote", []string{"红色"}, []string{"M"})
	require.True(t, utf8.ValidString(sku))
	require.Equal(t, "TOTE-红色-M", sku)
}

func TestNormalizeFillsDerivedFields(t *testing.T) {
	p := catalog.Product{
		Name:      "  Ankara Maxi Dress  ",
		BasePrice: 35000,
		Variants: []catalog.Variant{
			{Colors: []string{"emerald"}, Sizes: []string{"M"}, Stock: 4, ImageURL: "https://cdn/x.jpg"},
			{Colors: []string{"black"}, Sizes: []string{"L"}, SKU: "CUSTOM-1"},
		},
	}
	require.NoError(t, catalog.Normalize(&p))
	require.Equal(t, "Ankara Maxi Dress", p.Name)
	require.Equal(t, "ankara-maxi-dress", p.Slug)
	require.NotEmpty(t, p.Variants[0].ID)
	require.Equal(t, "ANKAR-EME-M", p.Variants[0].SKU)
	require.Equal(t, "CUSTOM-1", p.Variants[1].SKU, "explicit SKU is preserved")

	// running it again must not change anything
	before := p
	require.NoError(t, catalog.Normalize(&p))
	require.Equal(t, before.Slug, p.Slug)
	require.Equal(t, before.Variants[0].SKU, p.Variants[0].SKU)
}

func TestNormalizeRejectsBadProducts(t *testing.T) {
	p := catalog.Product{Name: "No Variants", BasePrice: 100}
	require.ErrorIs(t, catalog.Normalize(&p), catalog.ErrInvalidInput)

	p = catalog.Product{Name: "Bad Price", BasePrice: 100, Variants: []catalog.Variant{{PriceAdjustment: -200}}}
	require.ErrorIs(t, catalog.Normalize(&p), catalog.ErrInvalidPrice)

	p = catalog.Product{Name: "", BasePrice: 100, Variants: []catalog.Variant{{}}}
	require.ErrorIs(t, catalog.Normalize(&p), catalog.ErrInvalidInput)

	p = catalog.Product{Name: "Neg Stock", BasePrice: 100, Variants: []catalog.Variant{{Stock: -1}}}
	require.ErrorIs(t, catalog.Normalize(&p), catalog.ErrInvalidInput)
}
