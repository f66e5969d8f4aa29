package link

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"link-checker/internal/domain"
)

func TestNormalize(t *testing.T) {
	base, err := url.Parse("https://example.com/docs/guide/index.html?lang=en")
	require.NoError(t, err)

	tests := []struct {
		name string
		href string
		want string
		skip bool
	}{
		{name: "Root-relative path", href: "/path", want: "https://example.com/path"},
		{name: "Parent-relative path", href: "../x", want: "https://example.com/docs/x"},
		{name: "Document-relative path", href: "page.html", want: "https://example.com/docs/guide/page.html"},
		{name: "Query only", href: "?lang=fr", want: "https://example.com/docs/guide/index.html?lang=fr"},
		{name: "Protocol-relative", href: "//cdn.example.org/a.js", want: "https://cdn.example.org/a.js"},
		{name: "Absolute passes through", href: "http://other.test/a?b=c#d", want: "http://other.test/a?b=c#d"},
		{name: "Surrounding whitespace trimmed", href: "  /trim  ", want: "https://example.com/trim"},
		{name: "Empty", href: "", skip: true},
		{name: "Blank", href: "   ", skip: true},
		{name: "Fragment only", href: "#section", skip: true},
		{name: "Mailto", href: "mailto:someone@example.com", skip: true},
		{name: "Tel", href: "tel:+15555555555", skip: true},
		{name: "Javascript", href: "javascript:void(0)", skip: true},
		{name: "Javascript mixed case", href: "JavaScript:alert(1)", skip: true},
		{name: "Data", href: "data:text/plain;base64,SGVsbG8=", skip: true},
		{name: "FTP", href: "ftp://files.example.com/a", skip: true},
		{name: "Unparsable", href: "http://[::1", skip: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Normalize(tt.href, base)
			if tt.skip {
				assert.False(t, ok)
				assert.Empty(t, got)
				return
			}
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize_AbsoluteUnchanged(t *testing.T) {
	bases := []string{"https://example.com/", "http://a.test/deep/path/", "https://b.test/file?q=1"}
	hrefs := []string{
		"https://example.com/a/b",
		"http://example.org/?x=1&y=2",
		"https://example.net/path#frag",
		"HTTP://Example.com/a",
		"https://example.com/with space",
	}

	for _, b := range bases {
		base, err := url.Parse(b)
		require.NoError(t, err)
		for _, href := range hrefs {
			got, ok := Normalize(href, base)
			require.True(t, ok)
			assert.Equal(t, href, got, "base %s", b)
		}
	}
}

func TestParseSeeds(t *testing.T) {
	t.Run("Valid seeds keep input order", func(t *testing.T) {
		seeds, err := ParseSeeds([]string{" https://b.test/ ", "", "http://a.test/page"}, 100)
		require.NoError(t, err)
		assert.Equal(t, []domain.SeedPage{
			{Index: 0, URL: "https://b.test/"},
			{Index: 1, URL: "http://a.test/page"},
		}, seeds)
	})

	t.Run("One error per bad line", func(t *testing.T) {
		_, err := ParseSeeds([]string{"https://ok.test/", "example.com/no-scheme", "ftp://files.test/", "https://"}, 100)
		require.Error(t, err)

		var inputErr *domain.InputError
		require.True(t, errors.As(err, &inputErr))
		assert.Len(t, multierr.Errors(inputErr.Err), 3)
		assert.Contains(t, err.Error(), "line 2")
		assert.Contains(t, err.Error(), "line 3")
		assert.Contains(t, err.Error(), "line 4")
	})

	t.Run("Line numbers count blank lines", func(t *testing.T) {
		_, err := ParseSeeds([]string{"", "bad", "  ", "https://ok.test/", "also bad"}, 100)
		var inputErr *domain.InputError
		require.True(t, errors.As(err, &inputErr))
		errs := multierr.Errors(inputErr.Err)
		require.Len(t, errs, 2)
		assert.Contains(t, errs[0].Error(), "line 2:")
		assert.Contains(t, errs[1].Error(), "line 5:")
	})

	t.Run("Too many seeds", func(t *testing.T) {
		raw := make([]string, 101)
		for i := range raw {
			raw[i] = fmt.Sprintf("https://example.com/%d", i)
		}
		_, err := ParseSeeds(raw, 100)
		var inputErr *domain.InputError
		require.True(t, errors.As(err, &inputErr))
		assert.Contains(t, err.Error(), "too many seed URLs")

		_, err = ParseSeeds(raw[:100], 100)
		assert.NoError(t, err)
	})

	t.Run("Configured cap is honoured", func(t *testing.T) {
		_, err := ParseSeeds([]string{"https://a.test/", "https://b.test/"}, 1)
		assert.Error(t, err)
	})

	t.Run("Empty input", func(t *testing.T) {
		_, err := ParseSeeds([]string{"", "  "}, 100)
		var inputErr *domain.InputError
		assert.True(t, errors.As(err, &inputErr))
	})
}
