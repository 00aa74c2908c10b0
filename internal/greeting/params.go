package greeting

import (
	"encoding/base64"
	"encoding/json"
	"net/url"
	"strings"
)

const DefaultLocale = "v"

var hints = map[string]string{
	"c": "Agita o toca",
	"v": "Sacsa o toca",
	"e": "Shake or touch",
}

var texts = map[string]string{
	"c": "Feliz año 2022",
	"v": "Bon any 2022",
	"e": "Happy 2022",
}

// Locales lists the supported locale keys.
func Locales() []string {
	return []string{"c", "e", "v"}
}

// Params selects what the card says.
type Params struct {
	Name   string `json:"n"`
	Locale string `json:"l"`
}

func (p Params) Hint() string {
	return hints[p.locale()]
}

func (p Params) Text() string {
	return texts[p.locale()]
}

func (p Params) locale() string {
	if _, ok := texts[p.Locale]; ok {
		return p.Locale
	}
	return DefaultLocale
}

// Normalized returns p with an unknown locale replaced by the default.
func (p Params) Normalized() Params {
	p.Locale = p.locale()
	return p
}

// ParseParams reads n and l from the query. A k value holding URL-escaped
// base64 JSON ({"n": ..., "l": ...}) overrides them; if k cannot be decoded
// it is ignored.
func ParseParams(query url.Values) Params {
	p := Params{Locale: DefaultLocale}
	if query.Has("n") {
		p.Name = query.Get("n")
	}
	if query.Has("l") {
		p.Locale = query.Get("l")
	}
	if query.Has("k") {
		if decoded, ok := DecodeKey(query.Get("k")); ok {
			p = decoded
		}
	}
	return p.Normalized()
}

// DecodeKey unpacks a shared card key. Missing fields take their defaults; a
// key holding JSON null counts as undecodable.
func DecodeKey(key string) (Params, bool) {
	unescaped, err := url.PathUnescape(key)
	if err != nil {
		return Params{}, false
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimSpace(unescaped))
	if err != nil {
		return Params{}, false
	}
	var decoded *Params
	if err := json.Unmarshal(raw, &decoded); err != nil || decoded == nil {
		return Params{}, false
	}
	p := *decoded
	if p.Locale == "" {
		p.Locale = DefaultLocale
	}
	return p, true
}

// EncodeKey is the inverse of DecodeKey.
func EncodeKey(p Params) string {
	raw, _ := json.Marshal(p)
	return url.QueryEscape(base64.StdEncoding.EncodeToString(raw))
}
