package client

import (
	"net/url"
	"slices"
	"strings"
)

type Query map[string][]string

func NewQuery() Query {
	return make(Query)
}

func (q Query) WithValue(key string, values ...string) Query {
	q[key] = append(q[key], values...)
	return q
}

// Encode renders the query in the application/x-www-form-urlencoded form. Keys are
// sorted, so the result is deterministic. A key without values is rendered alone.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}

	keys := make([]string, 0, len(q))
	for key := range q {
		keys = append(keys, key)
	}

	slices.Sort(keys)

	var b strings.Builder
	for _, key := range keys {
		escaped := url.QueryEscape(key)
		values := q[key]
		if len(values) == 0 {
			if b.Len() > 0 {
				b.WriteByte('&')
			}

			b.WriteString(escaped)
			continue
		}

		for _, value := range values {
			if b.Len() > 0 {
				b.WriteByte('&')
			}

			b.WriteString(escaped)
			b.WriteByte('=')
			b.WriteString(url.QueryEscape(value))
		}
	}

	return b.String()
}
