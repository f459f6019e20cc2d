package pathpattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternAccessors(t *testing.T) {
	p := MustParse("/users/{id}/posts/{slug}")
	assert.Equal(t, "/users/{id}/posts/{slug}", p.String())
	assert.Equal(t, byte('/'), p.Separator())
	assert.True(t, p.CaseSensitive())
	assert.True(t, p.MatchOptionalTrailingSlash())
	assert.False(t, p.HasMultiWildcard())

	names := p.VarNames()
	assert.Equal(t, []string{"id", "slug"}, names)

	names[0] = "changed"
	assert.Equal(t, []string{"id", "slug"}, p.VarNames(), "VarNames must return a copy")
}

func TestIsCatchAll(t *testing.T) {
	assert.True(t, MustParse("**").IsCatchAll())
	assert.True(t, MustParse("/**").IsCatchAll())
	assert.False(t, MustParse("/**/").IsCatchAll())
	assert.False(t, MustParse("/foo/**").IsCatchAll())
	assert.False(t, MustParse("/*").IsCatchAll())
	assert.False(t, MustParse("").IsCatchAll())
}

func TestLiteralPrefix(t *testing.T) {
	tests := []struct {
		template string
		want     string
	}{
		{template: "", want: ""},
		{template: "/", want: "/"},
		{template: "/foo/bar", want: "/foo/bar"},
		{template: "/foo/{id}", want: "/foo/"},
		{template: "/foo/*", want: "/foo/"},
		{template: "/foo/**", want: "/foo"},
		{template: "/**", want: ""},
		{template: "**", want: ""},
		{template: "/files/{name}.{ext}", want: "/files/"},
		{template: "/{id}/foo", want: "/"},
	}

	for _, tt := range tests {
		t.Run(tt.template, func(t *testing.T) {
			assert.Equal(t, tt.want, MustParse(tt.template).LiteralPrefix())
		})
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name     string
		template string
		vars     map[string]string
		want     string
		err      error
	}{
		{name: "literal", template: "/foo/bar", want: "/foo/bar"},
		{name: "capture", template: "/users/{id}", vars: map[string]string{"id": "42"}, want: "/users/42"},
		{name: "constraint", template: "/users/{id:int}", vars: map[string]string{"id": "42"}, want: "/users/42"},
		{name: "extra vars ignored", template: "/users/{id}", vars: map[string]string{"id": "1", "x": "y"}, want: "/users/1"},
		{name: "composite", template: "/files/{name}.{ext}", vars: map[string]string{"name": "report", "ext": "pdf"}, want: "/files/report.pdf"},
		{name: "missing", template: "/users/{id}", vars: map[string]string{}, err: ErrMissingVariable},
		{name: "constraint violation", template: "/users/{id:int}", vars: map[string]string{"id": "abc"}, err: ErrInvalidVariable},
		{name: "empty value", template: "/users/{id}", vars: map[string]string{"id": ""}, err: ErrInvalidVariable},
		{name: "value with separator", template: "/users/{id}", vars: map[string]string{"id": "a/b"}, err: ErrInvalidVariable},
		{name: "strict macro", template: "/items/{id:uuid}", vars: map[string]string{"id": "not-a-uuid"}, err: ErrInvalidVariable},
		{name: "composite violation", template: "/v{n:int}", vars: map[string]string{"n": "x"}, err: ErrInvalidVariable},
		{name: "wildcard", template: "/foo/*", err: ErrNotExpandable},
		{name: "multi wildcard", template: "/foo/**", err: ErrNotExpandable},
		{name: "composite wildcard", template: "/*.html", err: ErrNotExpandable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MustParse(tt.template).Expand(tt.vars)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				assert.Empty(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpandThenMatch(t *testing.T) {
	p := MustParse("/api/{version}/users/{id:int}/{name}.{ext}")
	vars := map[string]string{"version": "v2", "id": "7", "name": "avatar", "ext": "png"}

	path, err := p.Expand(vars)
	require.NoError(t, err)

	res, ok := p.MatchAndExtract(path)
	require.True(t, ok)
	assert.Equal(t, vars, res.Vars())
}

func TestCombine(t *testing.T) {
	tests := []struct {
		a, b string
		want string
	}{
		{a: "", b: "", want: ""},
		{a: "/hotels", b: "", want: "/hotels"},
		{a: "", b: "/hotels", want: "/hotels"},
		{a: "/hotels", b: "/bookings", want: "/hotels/bookings"},
		{a: "/hotels", b: "bookings", want: "/hotels/bookings"},
		{a: "/hotels/", b: "/bookings", want: "/hotels/bookings"},
		{a: "/hotels/*", b: "/bookings", want: "/hotels/bookings"},
		{a: "/hotels/**", b: "/bookings", want: "/hotels/bookings"},
		{a: "/hotels", b: "/{hotel}", want: "/hotels/{hotel}"},
		{a: "/hotels/{hotel}", b: "/bookings", want: "/hotels/{hotel}/bookings"},
		{a: "/*", b: "/hotel", want: "/hotel"},
		{a: "/**", b: "/hotel", want: "/hotel"},
		{a: "/", b: "/hotel", want: "/hotel"},
		{a: "/api", b: "/", want: "/api/"},
	}

	for _, tt := range tests {
		t.Run(tt.a+"+"+tt.b, func(t *testing.T) {
			got, err := MustParse(tt.a).Combine(MustParse(tt.b))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestCombineKeepsParserOptions(t *testing.T) {
	parser := NewParser(WithSeparator('.'), WithCaseSensitive(false))
	a, err := parser.Parse("com.example")
	require.NoError(t, err)
	b, err := parser.Parse("{host}")
	require.NoError(t, err)

	got, err := a.Combine(b)
	require.NoError(t, err)
	assert.Equal(t, "com.example.{host}", got.String())
	assert.False(t, got.CaseSensitive())
	assert.True(t, got.Matches("COM.EXAMPLE.www"))
}

func TestCombineDuplicateCapture(t *testing.T) {
	_, err := MustParse("/{id}").Combine(MustParse("/{id}"))
	assert.ErrorIs(t, err, ErrDuplicateCapture)
}
