// Package linkheader parses RFC 8288 style Link headers:
//
//	<https://x/users?page=2>; rel="next", <https://x/users?page=9>; rel="last"
package linkheader

import (
	"strings"
)

// Parse returns rel name -> URL. A link with several space-separated
// relations is registered under each; the first occurrence of a relation wins.
func Parse(header string) map[string]string {
	links := make(map[string]string)

	for _, part := range splitLinks(header) {
		part = strings.TrimSpace(part)
		if !strings.HasPrefix(part, "<") {
			continue
		}
		end := strings.Index(part, ">")
		if end < 0 {
			continue
		}
		target := strings.TrimSpace(part[1:end])
		if target == "" {
			continue
		}

		for _, param := range strings.Split(part[end+1:], ";") {
			key, value, ok := strings.Cut(strings.TrimSpace(param), "=")
			if !ok || !strings.EqualFold(strings.TrimSpace(key), "rel") {
				continue
			}
			value = strings.Trim(strings.TrimSpace(value), `"`)
			for _, rel := range strings.Fields(value) {
				rel = strings.ToLower(rel)
				if _, seen := links[rel]; !seen {
					links[rel] = target
				}
			}
		}
	}

	return links
}

// Next is shorthand for Parse(header)["next"].
func Next(header string) string {
	return Parse(header)["next"]
}

// splitLinks splits on commas that sit outside <...>, so URLs carrying commas
// in their query survive.
func splitLinks(header string) []string {
	var parts []string
	depth := 0
	start := 0
	for i, r := range header {
		switch r {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, header[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, header[start:])
}
