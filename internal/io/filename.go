package io

import (
	"crypto/md5"
	"encoding/hex"
	"net/url"
	"strings"
)

// URLHash returns a short, content-free identifier for a URL: the first
// eight hex characters of its MD5 digest.
func URLHash(rawURL string) string {
	sum := md5.Sum([]byte(rawURL))
	return hex.EncodeToString(sum[:])[:8]
}

// LocalFilename derives the on-disk name of an asset from its URL.
//
// The name is the last path segment (bundler directories such as /_next/
// are flattened). Segments without an extension get the URL hash appended
// so distinct extensionless URLs do not collide. URLs that cannot be parsed
// as absolute URLs fall back to asset_<hash>.
func LocalFilename(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "asset_" + URLHash(rawURL)
	}

	path := u.EscapedPath()
	name := path[strings.LastIndex(path, "/")+1:]
	if i := strings.IndexByte(name, '?'); i >= 0 {
		name = name[:i]
	}
	if name == "" || name == "." || name == ".." {
		name = "index"
	}

	if !strings.Contains(name, ".") {
		name = name + "_" + URLHash(rawURL)
	}
	return name
}
