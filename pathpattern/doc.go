// Package pathpattern compiles URI path templates and matches request
// paths against them.
//
// # Templates
//
// A template is split into segments by a separator character ("/" by
// default). Each segment is one of:
//
//	literal   - text without '{', '}' or '*'         /users
//	{name}    - captures exactly one segment           /users/{id}
//	{name:re} - captures one segment matching re       /users/{id:[0-9]+}
//	*         - matches exactly one segment            /users/*/posts
//	**        - matches zero or more trailing segments /static/**
//
// "**" is only valid as the final segment. A segment may also mix literal
// text with captures and '*', as in "{name}.{ext}" or "*.html"; such a
// segment is compiled into a single regular expression.
//
// Braces inside a constraint are allowed ("{code:[A-Z]{3}}") and the
// separator inside braces does not split the segment.
//
// # Constraint Macros
//
// Instead of writing a full regular expression, a capture may use a named
// macro:
//
//	uuid     - RFC 4122 UUID (e.g. 550e8400-e29b-41d4-a716-446655440000)
//	int      - unsigned integer (e.g. 42)
//	float    - decimal number (e.g. 3.14, 42, .5)
//	slug     - URL-safe slug (e.g. my-post-title)
//	alpha    - alphabetic characters (e.g. hello)
//	alphanum - alphanumeric characters (e.g. abc123)
//	date     - ISO 8601 date (e.g. 2024-01-15)
//	hex      - hexadecimal string (e.g. deadBEEF)
//	domain   - domain name per RFC 1123, checked with IDNA lookup rules
//
// Any other constraint text is treated as a regular expression that must
// match the whole segment.
//
// # Parsing
//
// Templates are compiled by a Parser:
//
//	p := pathpattern.NewParser(
//	    pathpattern.WithCaseSensitive(false),
//	    pathpattern.WithMatchOptionalTrailingSlash(true),
//	)
//	pat, err := p.Parse("/articles/{category}/{id:int}")
//
// Parse fails with a *ParseError carrying the offset of the offending
// character; errors.Is reports its kind (ErrUnbalancedBraces,
// ErrEmptyCaptureName, ErrDuplicateCapture, ErrMisplacedWildcard,
// ErrInvalidRegexp, ...). Configuration that supplies templates should
// parse them at startup so that mistakes surface before the first match.
//
// # Matching
//
// A compiled Pattern is immutable and may be shared by any number of
// goroutines:
//
//	if res, ok := pat.MatchAndExtract("/articles/go/42"); ok {
//	    id, _ := res.Get("id")
//	}
//
// Matching never fails with an error; a path that does not match is a
// plain negative result.
//
// # Specificity
//
// When several patterns match the same path, Compare ranks them: fewer
// captures first, then fewer wildcards, then more literal text, then a
// pattern without a trailing "**", then the longer template and finally
// the lexically smaller one.
//
//	pathpattern.SortBySpecificity(patterns)
package pathpattern
