package loader

import "regexp"

// Absolute URLs are used verbatim; everything else is resolved against the
// loader's base_url/path/prefix configuration.
var absoluteURL = regexp.MustCompile(`^(?:blob:|data:|capacitor:\/\/|file:\/\/|http:\/\/|https:\/\/|\/\/)`)

func IsAbsoluteURL(url string) bool {
	return absoluteURL.MatchString(url)
}

// resolveURL computes the URL a file will actually be fetched from. A file
// constructed without a URL falls back to "<key>.<defaultExtension>".
func (l *Loader) resolveURL(f *File) string {
	url := f.URL
	if url == "" {
		url = f.Key
		if f.defaultExtension != "" {
			url += "." + f.defaultExtension
		}
	}
	if IsAbsoluteURL(url) {
		return url
	}
	return l.cfg.BaseURL + l.cfg.Path + l.cfg.Prefix + url
}
