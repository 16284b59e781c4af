package ansi

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/htmlindex"
)

// LookupCharset returns the encoding for a locale charset name. UTF-8 and
// the empty name return nil, which selects the built-in UTF-8 path.
func LookupCharset(name string) (encoding.Encoding, error) {
	norm := strings.ToLower(strings.TrimSpace(name))
	switch strings.NewReplacer("-", "", "_", "").Replace(norm) {
	case "", "utf8", "c", "posix", "ansix3.41968", "usascii":
		return nil, nil
	case "iso88591", "latin1", "l1":
		return charmap.ISO8859_1, nil
	case "cp437", "ibm437":
		return charmap.CodePage437, nil
	}

	enc, err := htmlindex.Get(norm)
	if err != nil {
		return nil, fmt.Errorf("unknown charset %q: %w", name, err)
	}
	return enc, nil
}

// CharsetFromEnv derives the charset name from LC_ALL, LC_CTYPE or LANG.
func CharsetFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_CTYPE", "LANG"} {
		v := os.Getenv(key)
		if v == "" {
			continue
		}
		return charsetOfLocale(v)
	}
	return ""
}

func charsetOfLocale(locale string) string {
	if i := strings.IndexByte(locale, '@'); i >= 0 {
		locale = locale[:i]
	}
	if i := strings.IndexByte(locale, '.'); i >= 0 {
		return locale[i+1:]
	}
	return ""
}
