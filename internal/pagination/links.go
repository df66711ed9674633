package pagination

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const TotalCountHeader = "X-Total-Count"

// SetHeaders writes X-Total-Count and a Link header with first, prev,
// next and last relations. Other query parameters of base are kept.
func SetHeaders[T any](h http.Header, base *url.URL, page Page[T]) {
	h.Set(TotalCountHeader, strconv.FormatInt(page.Total, 10))
	h.Set("Link", LinkHeader(base, page.Number, page.Size, page.TotalPages()))
}

func LinkHeader(base *url.URL, number, size, totalPages int) string {
	last := 0
	if totalPages > 0 {
		last = totalPages - 1
	}
	var parts []string
	if number < totalPages-1 {
		parts = append(parts, link(base, number+1, size, "next"))
	}
	if number > 0 {
		parts = append(parts, link(base, number-1, size, "prev"))
	}
	parts = append(parts, link(base, last, size, "last"), link(base, 0, size, "first"))
	return strings.Join(parts, ",")
}

func link(base *url.URL, page, size int, rel string) string {
	u := *base
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	q.Set("size", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return fmt.Sprintf(`<%s>; rel="%s"`, u.String(), rel)
}

var (
	linkSplit = regexp.MustCompile(`,\s*<`)
	linkPart  = regexp.MustCompile(`^<?(.*)>$`)
	relPart   = regexp.MustCompile(`rel="?([^"]*)"?`)
)

// ParseLinks maps each relation of a Link header to its page number.
func ParseLinks(header string) (map[string]int, error) {
	header = strings.TrimSpace(header)
	if header == "" {
		return nil, errors.New("link header must not be empty")
	}
	links := map[string]int{}
	for _, section := range linkSplit.Split(header, -1) {
		parts := strings.Split(section, ";")
		if len(parts) < 2 {
			return nil, fmt.Errorf("link section %q could not be split on ';'", section)
		}
		m := linkPart.FindStringSubmatch(strings.TrimSpace(parts[0]))
		if m == nil {
			return nil, fmt.Errorf("malformed link target %q", parts[0])
		}
		u, err := url.Parse(m[1])
		if err != nil {
			return nil, fmt.Errorf("malformed link url: %w", err)
		}
		page, err := strconv.Atoi(u.Query().Get("page"))
		if err != nil {
			return nil, fmt.Errorf("link %q has no page: %w", m[1], err)
		}
		r := relPart.FindStringSubmatch(parts[1])
		if r == nil {
			return nil, fmt.Errorf("link section %q has no rel", section)
		}
		links[r[1]] = page
	}
	return links, nil
}
