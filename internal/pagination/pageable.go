// Package pagination carries page requests, page results and the Link
// header that connects them.
package pagination

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSize = 20
	MaxSize     = 2000
)

var ErrInvalidSort = errors.New("invalid sort property")

type Order struct {
	Property string
	Desc     bool
}

func (o Order) String() string {
	if o.Desc {
		return o.Property + ",desc"
	}
	return o.Property + ",asc"
}

// Pageable is a request for one page, 0-based.
type Pageable struct {
	Page int
	Size int
	Sort []Order
}

func (p Pageable) Offset() int {
	return p.Page * p.Size
}

// ParsePageable reads page, size and repeated sort=property[,direction]
// parameters. Missing or malformed numbers fall back to the defaults.
func ParsePageable(q url.Values) (Pageable, error) {
	p := Pageable{Page: 0, Size: DefaultSize}
	if v, err := strconv.Atoi(q.Get("page")); err == nil && v >= 0 {
		p.Page = v
	}
	if v, err := strconv.Atoi(q.Get("size")); err == nil && v > 0 {
		p.Size = min(v, MaxSize)
	}
	sort, err := ParseSort(q)
	if err != nil {
		return Pageable{}, err
	}
	p.Sort = sort
	return p, nil
}

// ParseSort reads the sort parameters alone.
func ParseSort(q url.Values) ([]Order, error) {
	var orders []Order
	for _, raw := range q["sort"] {
		parts := strings.Split(raw, ",")
		desc := false
		if n := len(parts); n > 1 {
			switch strings.ToLower(strings.TrimSpace(parts[n-1])) {
			case "desc":
				desc = true
				parts = parts[:n-1]
			case "asc":
				parts = parts[:n-1]
			}
		}
		for _, prop := range parts {
			prop = strings.TrimSpace(prop)
			if prop == "" {
				continue
			}
			if !validProperty(prop) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidSort, prop)
			}
			orders = append(orders, Order{Property: prop, Desc: desc})
		}
	}
	return orders, nil
}

func validProperty(s string) bool {
	for _, r := range s {
		if !(r == '.' || r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return false
		}
	}
	return true
}

// Values encodes p back into query parameters.
func (p Pageable) Values() url.Values {
	v := url.Values{}
	v.Set("page", strconv.Itoa(p.Page))
	v.Set("size", strconv.Itoa(p.Size))
	for _, o := range p.Sort {
		v.Add("sort", o.String())
	}
	return v
}
