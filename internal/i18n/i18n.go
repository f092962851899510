// Package i18n holds the localized message tables and resolves the language
// of a request.
package i18n

import (
	"embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed locales/*.yaml
var locales embed.FS

// Fallback is used when a request asks for nothing we support.
const Fallback = "en"

var supported = []language.Tag{language.English, language.Vietnamese}

// Bundle is the set of message tables for every supported language.
type Bundle struct {
	messages map[string]map[string]string
	matcher  language.Matcher
}

// Load reads the embedded message tables.
func Load() (*Bundle, error) {
	b := &Bundle{
		messages: make(map[string]map[string]string, len(supported)),
		matcher:  language.NewMatcher(supported),
	}

	for _, tag := range supported {
		lang := tag.String()

		data, err := locales.ReadFile("locales/" + lang + ".yaml")
		if err != nil {
			return nil, fmt.Errorf("read %s messages: %w", lang, err)
		}

		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse %s messages: %w", lang, err)
		}

		table := make(map[string]string)
		flatten("", raw, table)
		b.messages[lang] = table
	}

	return b, nil
}

var (
	defaultOnce   sync.Once
	defaultBundle *Bundle
)

// Default returns the bundle built from the embedded tables. The tables are
// compiled into the binary, so failing to parse them is a programming error.
func Default() *Bundle {
	defaultOnce.Do(func() {
		b, err := Load()
		if err != nil {
			panic(err)
		}
		defaultBundle = b
	})

	return defaultBundle
}

func flatten(prefix string, in map[string]interface{}, out map[string]string) {
	for k, v := range in {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}

		switch val := v.(type) {
		case map[string]interface{}:
			flatten(key, val, out)
		default:
			out[key] = fmt.Sprint(val)
		}
	}
}

// Languages lists the supported language codes.
func (b *Bundle) Languages() []string {
	langs := make([]string, 0, len(b.messages))
	for l := range b.messages {
		langs = append(langs, l)
	}
	sort.Strings(langs)

	return langs
}

// Translate returns the message for key in lang, falling back to English and
// then to the key itself. {name} placeholders are replaced from args.
func (b *Bundle) Translate(lang, key string, args map[string]interface{}) string {
	msg, ok := b.messages[lang][key]
	if !ok {
		if msg, ok = b.messages[Fallback][key]; !ok {
			msg = key
		}
	}

	if len(args) == 0 {
		return msg
	}

	pairs := make([]string, 0, 2*len(args))
	for name, v := range args {
		pairs = append(pairs, "{"+name+"}", fmt.Sprint(v))
	}

	return strings.NewReplacer(pairs...).Replace(msg)
}

// Match returns the supported language closest to a single language tag.
func (b *Bundle) Match(tag string) string {
	t, err := language.Parse(tag)
	if err != nil {
		return Fallback
	}

	return b.best(t)
}

// MatchAcceptLanguage picks the best supported language for an
// Accept-Language header value.
func (b *Bundle) MatchAcceptLanguage(header string) string {
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return Fallback
	}

	return b.best(tags...)
}

func (b *Bundle) best(tags ...language.Tag) string {
	_, idx, conf := b.matcher.Match(tags...)
	if conf == language.No {
		return Fallback
	}

	return supported[idx].String()
}

// Localizer translates messages into one language.
type Localizer struct {
	bundle *Bundle
	lang   string
}

func (b *Bundle) Localizer(lang string) Localizer {
	return Localizer{bundle: b, lang: lang}
}

func (l Localizer) Lang() string {
	return l.lang
}

func (l Localizer) T(key string, args map[string]interface{}) string {
	return l.bundle.Translate(l.lang, key, args)
}
