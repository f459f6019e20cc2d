package registry

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/pathpattern/pathpattern"
	"github.com/vitalvas/pathpattern/patterncache"
)

func newRegistry(t testing.TB, templates ...string) *Registry[string] {
	t.Helper()
	return newRegistryWith(t, nil, templates...)
}

func newRegistryWith(t testing.TB, parser Parser, templates ...string) *Registry[string] {
	t.Helper()
	r := New[string](parser)
	for _, tpl := range templates {
		_, err := r.Register(tpl, tpl)
		require.NoError(t, err)
	}
	return r
}

func matchedTemplates(matches []*Match[string]) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Entry.Pattern.String()
	}
	return out
}

func TestLookup(t *testing.T) {
	r := newRegistry(t, "/foo/bar", "/foo/{id}", "/foo/*", "/**", "/static/**", "/users/{id:int}")

	tests := []struct {
		path string
		want string
	}{
		{path: "/foo/bar", want: "/foo/bar"},
		{path: "/foo/bar/", want: "/foo/bar"},
		{path: "/foo/42", want: "/foo/*"},
		{path: "/static/css/site.css", want: "/static/**"},
		{path: "/static", want: "/static/**"},
		{path: "/users/7", want: "/**"},
		{path: "/users/abc", want: "/**"},
		{path: "/anything/else", want: "/**"},
		{path: "", want: "/**"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := r.Lookup(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Entry.Pattern.String())
			assert.Equal(t, tt.want, m.Entry.Value)
		})
	}
}

func TestLookupCaptures(t *testing.T) {
	r := newRegistry(t, "/users/{id:int}", "/users/{name}", "/users/me", "/{kind}/{id}", "/static/**")

	tests := []struct {
		path string
		want string
	}{
		{path: "/users/me", want: "/users/me"},
		{path: "/users/7", want: "/users/{id:int}"},
		{path: "/users/bob", want: "/users/{name}"},
		{path: "/teams/7", want: "/{kind}/{id}"},
		{path: "/static/7", want: "/static/**"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := r.Lookup(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.want, m.Entry.Value)
		})
	}
}

func TestLookupVars(t *testing.T) {
	r := newRegistry(t, "/users/{id:int}/posts/{slug}", "/files/**")

	m, ok := r.Lookup("/users/42/posts/hello")
	require.True(t, ok)
	id, _ := m.Get("id")
	assert.Equal(t, "42", id)
	assert.Equal(t, map[string]string{"id": "42", "slug": "hello"}, m.Vars())

	m, ok = r.Lookup("/files/a/b.txt")
	require.True(t, ok)
	rem, has := m.Remainder()
	assert.True(t, has)
	assert.Equal(t, "a/b.txt", rem)
}

func TestLookupMiss(t *testing.T) {
	r := newRegistry(t, "/foo/{id}", "/bar")

	m, ok := r.Lookup("/baz")
	assert.False(t, ok)
	assert.Nil(t, m)

	_, ok = r.Lookup("/foo")
	assert.False(t, ok)

	_, ok = New[int](nil).Lookup("/")
	assert.False(t, ok)
}

func TestLookupAll(t *testing.T) {
	r := newRegistry(t, "/**", "/foo/{id}", "/foo/bar", "/foo/*", "/other")

	assert.Equal(t,
		[]string{"/foo/bar", "/foo/*", "/**", "/foo/{id}"},
		matchedTemplates(r.LookupAll("/foo/bar")),
	)
	assert.Equal(t, []string{"/**"}, matchedTemplates(r.LookupAll("/nothing")))
	assert.Empty(t, newRegistry(t, "/a").LookupAll("/b"))
}

func TestLookupEmptyPattern(t *testing.T) {
	r := newRegistry(t, "", "/a")

	m, ok := r.Lookup("")
	require.True(t, ok)
	assert.Equal(t, "", m.Entry.Pattern.String())

	m, ok = r.Lookup("/")
	require.True(t, ok)
	assert.Equal(t, "", m.Entry.Pattern.String())

	m, ok = r.Lookup("/a")
	require.True(t, ok)
	assert.Equal(t, "/a", m.Entry.Pattern.String())
}

func TestLookupCaseInsensitive(t *testing.T) {
	r := New[string](pathpattern.NewParser(pathpattern.WithCaseSensitive(false)))
	_, err := r.Register("/API/Users/{id}", "users")
	require.NoError(t, err)

	m, ok := r.Lookup("/api/users/7")
	require.True(t, ok)
	assert.Equal(t, "users", m.Entry.Value)

	_, ok = r.Lookup("/Api/USERS/7")
	assert.True(t, ok)

	t.Run("unicode folding", func(t *testing.T) {
		r := newRegistryWith(t, pathpattern.NewParser(pathpattern.WithCaseSensitive(false)),
			"/s/x", "/kelvin/{id}", "/Straße/*")

		tests := []struct {
			path string
			want string
		}{
			{path: "/\u017f/x", want: "/s/x"},
			{path: "/\u017f/X", want: "/s/x"},
			{path: "/\u212aELVIN/1", want: "/kelvin/{id}"},
			{path: "/stra\u1e9ee/a", want: "/Straße/*"},
		}

		for _, tt := range tests {
			m, ok := r.Lookup(tt.path)
			require.True(t, ok, tt.path)
			assert.Equal(t, tt.want, m.Entry.Value)
			assert.True(t, m.Entry.Pattern.Matches(tt.path))
		}

		_, ok := r.Lookup("/STRASSE/a")
		assert.False(t, ok)
	})
}

func TestLookupCustomSeparator(t *testing.T) {
	r := New[string](pathpattern.NewParser(pathpattern.WithSeparator('.')))
	for _, tpl := range []string{"com.example.*", "com.example.www", "com.**"} {
		_, err := r.Register(tpl, tpl)
		require.NoError(t, err)
	}

	m, ok := r.Lookup("com.example.www")
	require.True(t, ok)
	assert.Equal(t, "com.example.www", m.Entry.Value)

	m, ok = r.Lookup("com.example.api")
	require.True(t, ok)
	assert.Equal(t, "com.example.*", m.Entry.Value)

	m, ok = r.Lookup("com.other.api")
	require.True(t, ok)
	assert.Equal(t, "com.**", m.Entry.Value)
}

func TestRegisterErrors(t *testing.T) {
	r := New[int](nil)

	_, err := r.RegisterNamed("user", "/users/{id}", 1)
	require.NoError(t, err)

	t.Run("duplicate pattern", func(t *testing.T) {
		_, err := r.Register("/users/{id}", 2)
		assert.ErrorIs(t, err, ErrDuplicatePattern)
	})

	t.Run("duplicate name", func(t *testing.T) {
		_, err := r.RegisterNamed("user", "/people/{id}", 2)
		assert.ErrorIs(t, err, ErrDuplicateName)
	})

	t.Run("parse error", func(t *testing.T) {
		_, err := r.Register("/users/{id", 3)
		assert.ErrorIs(t, err, pathpattern.ErrUnbalancedBraces)

		var pe *pathpattern.ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, 7, pe.Pos)
	})

	assert.Equal(t, 1, r.Len())
}

func TestRemove(t *testing.T) {
	r := New[string](nil)
	_, err := r.RegisterNamed("item", "/items/{id}", "specific")
	require.NoError(t, err)
	_, err = r.Register("/{kind}/{id}", "fallback")
	require.NoError(t, err)

	m, ok := r.Lookup("/items/1")
	require.True(t, ok)
	assert.Equal(t, "specific", m.Entry.Value)

	require.NoError(t, r.Remove("/items/{id}"))
	assert.Equal(t, 1, r.Len())

	m, ok = r.Lookup("/items/1")
	require.True(t, ok)
	assert.Equal(t, "fallback", m.Entry.Value)

	_, ok = r.Get("item")
	assert.False(t, ok)

	assert.ErrorIs(t, r.Remove("/items/{id}"), ErrNotFound)

	_, err = r.RegisterNamed("item", "/items/{id}", "again")
	assert.NoError(t, err)

	require.NoError(t, r.Remove("/items/**"))
	require.NoError(t, r.Remove("/items/{id}"))
	assert.Equal(t, 0, r.Len())
	_, ok = r.Lookup("/items/1")
	assert.False(t, ok)
}

func TestGetAndURL(t *testing.T) {
	r := New[string](nil)
	_, err := r.RegisterNamed("article", "/articles/{category}/{id:int}", "articles")
	require.NoError(t, err)
	_, err = r.RegisterNamed("static", "/static/**", "static")
	require.NoError(t, err)

	e, ok := r.Get("article")
	require.True(t, ok)
	assert.Equal(t, "article", e.Name)
	assert.Equal(t, "articles", e.Value)

	_, ok = r.Get("missing")
	assert.False(t, ok)

	t.Run("builds path", func(t *testing.T) {
		u, err := r.URL("article", "category", "technology", "id", "42")
		require.NoError(t, err)
		assert.Equal(t, "/articles/technology/42", u)
	})

	t.Run("odd pairs", func(t *testing.T) {
		_, err := r.URL("article", "category")
		assert.ErrorContains(t, err, "multiple of 2")
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := r.URL("missing")
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing variable", func(t *testing.T) {
		_, err := r.URL("article", "category", "technology")
		assert.ErrorIs(t, err, pathpattern.ErrMissingVariable)
	})

	t.Run("invalid variable", func(t *testing.T) {
		_, err := r.URL("article", "category", "technology", "id", "abc")
		assert.ErrorIs(t, err, pathpattern.ErrInvalidVariable)
	})

	t.Run("wildcard", func(t *testing.T) {
		_, err := r.URL("static")
		assert.ErrorIs(t, err, pathpattern.ErrNotExpandable)
	})
}

func TestWalk(t *testing.T) {
	r := newRegistry(t, "/c", "/a", "/b")

	t.Run("registration order", func(t *testing.T) {
		var seen []string
		err := r.Walk(func(e *Entry[string]) error {
			seen = append(seen, e.Pattern.String())
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"/c", "/a", "/b"}, seen)
	})

	t.Run("SkipAll stops the walk", func(t *testing.T) {
		count := 0
		err := r.Walk(func(*Entry[string]) error {
			count++
			return SkipAll
		})
		assert.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("error is returned", func(t *testing.T) {
		expectedErr := errors.New("walk error")
		err := r.Walk(func(*Entry[string]) error {
			return expectedErr
		})
		assert.Equal(t, expectedErr, err)
	})

	t.Run("registry can be modified during walk", func(t *testing.T) {
		r := newRegistry(t, "/x", "/y")
		err := r.Walk(func(e *Entry[string]) error {
			return r.Remove(e.Pattern.String())
		})
		require.NoError(t, err)
		assert.Equal(t, 0, r.Len())
	})
}

func TestRegistryWithPatternCache(t *testing.T) {
	cache, err := patterncache.New(nil, 16)
	require.NoError(t, err)

	r := New[string](cache)
	_, err = r.Register("/users/{id}", "users")
	require.NoError(t, err)

	m, ok := r.Lookup("/users/1")
	require.True(t, ok)
	assert.Equal(t, "users", m.Entry.Value)
	assert.GreaterOrEqual(t, cache.Len(), 1)
}

func TestRegistryConcurrent(t *testing.T) {
	r := newRegistry(t, "/api/{resource}/{id}", "/api/users/{id}")

	var wg sync.WaitGroup
	for i := range 4 {
		wg.Go(func() {
			for j := range 50 {
				tpl := fmt.Sprintf("/w%d/%d/{id}", i, j)
				_, err := r.Register(tpl, tpl)
				assert.NoError(t, err)
			}
		})
	}
	for range 8 {
		wg.Go(func() {
			for range 200 {
				m, ok := r.Lookup("/api/users/1")
				if assert.True(t, ok) {
					assert.Equal(t, "/api/users/{id}", m.Entry.Value)
				}
			}
		})
	}
	wg.Wait()

	assert.Equal(t, 2+4*50, r.Len())
}

// --- Benchmarks ---

func BenchmarkLookup(b *testing.B) {
	r := New[int](nil)
	for i := range 200 {
		_, err := r.Register(fmt.Sprintf("/api/v1/resource%d/{id}", i), i)
		require.NoError(b, err)
		_, err = r.Register(fmt.Sprintf("/api/v1/resource%d/{id}/items/**", i), i)
		require.NoError(b, err)
	}
	_, err := r.Register("/**", -1)
	require.NoError(b, err)

	b.Run("hit", func(b *testing.B) {
		for b.Loop() {
			r.Lookup("/api/v1/resource150/42")
		}
	})

	b.Run("multi wildcard", func(b *testing.B) {
		for b.Loop() {
			r.Lookup("/api/v1/resource150/42/items/a/b")
		}
	})

	b.Run("fallback", func(b *testing.B) {
		for b.Loop() {
			r.Lookup("/unknown/path")
		}
	})
}
