package theme

import (
	"embed"
)

// fallbackFS holds the minimal login stylesheet used when no backup of the
// original was ever captured.
//
//go:embed fallback/login.css
var fallbackFS embed.FS

// FallbackCSS returns the built-in minimal login stylesheet.
func FallbackCSS() string {
	data, err := fallbackFS.ReadFile("fallback/login.css")
	if err != nil {
		// The file is compiled in; this only happens if the embed directive is broken.
		panic("theme: embedded fallback stylesheet missing: " + err.Error())
	}
	return string(data)
}
