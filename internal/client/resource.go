package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/pagination"
)

// QueryParams selects a page of a list or search. Page, Size and Sort are
// only sent when Sort is set, so an empty value asks for the server's
// first page in default order.
type QueryParams struct {
	Query string
	Page  int
	Size  int
	Sort  string
}

type ListResult[T any] struct {
	Items      []T
	Links      map[string]int
	TotalItems int
}

// Resource is the client side of /api/<entity>.
type Resource[T any, P domain.EntityPtr[T]] struct {
	c    *Client
	desc domain.Descriptor
}

func NewResource[T any, P domain.EntityPtr[T]](c *Client, desc domain.Descriptor) *Resource[T, P] {
	return &Resource[T, P]{c: c, desc: desc}
}

func (r *Resource[T, P]) Descriptor() domain.Descriptor { return r.desc }

func (r *Resource[T, P]) path() string {
	return "/api/" + r.desc.APIPath
}

func (r *Resource[T, P]) values(p QueryParams) url.Values {
	v := url.Values{}
	if p.Sort == "" {
		return v
	}
	if r.desc.Paginated {
		v.Set("page", strconv.Itoa(p.Page))
		v.Set("size", strconv.Itoa(p.Size))
	}
	v.Set("sort", p.Sort)
	return v
}

func (r *Resource[T, P]) List(ctx context.Context, p QueryParams) (ListResult[P], error) {
	return r.list(ctx, r.path(), r.values(p))
}

func (r *Resource[T, P]) Search(ctx context.Context, p QueryParams) (ListResult[P], error) {
	v := r.values(p)
	if !r.desc.Paginated {
		v = url.Values{}
	}
	v.Set("query", p.Query)
	return r.list(ctx, r.path()+"/_search", v)
}

func (r *Resource[T, P]) list(ctx context.Context, path string, v url.Values) (ListResult[P], error) {
	var res ListResult[P]
	resp, err := r.c.do(ctx, http.MethodGet, path, v, nil, &res.Items)
	if err != nil {
		return res, err
	}
	if r.desc.Paginated {
		if h := resp.Header.Get("Link"); h != "" {
			if res.Links, err = pagination.ParseLinks(h); err != nil {
				return res, err
			}
		}
		res.TotalItems, _ = strconv.Atoi(resp.Header.Get(pagination.TotalCountHeader))
	}
	return res, nil
}

func (r *Resource[T, P]) Get(ctx context.Context, id int64) (P, error) {
	e := P(new(T))
	if _, err := r.c.do(ctx, http.MethodGet, r.itemPath(id), nil, nil, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (r *Resource[T, P]) Create(ctx context.Context, e P) (P, error) {
	out := P(new(T))
	if _, err := r.c.do(ctx, http.MethodPost, r.path(), nil, e, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T, P]) Update(ctx context.Context, e P) (P, error) {
	return r.send(ctx, http.MethodPut, e)
}

func (r *Resource[T, P]) PartialUpdate(ctx context.Context, e P) (P, error) {
	return r.send(ctx, http.MethodPatch, e)
}

func (r *Resource[T, P]) send(ctx context.Context, method string, e P) (P, error) {
	id := e.GetID()
	if id == nil {
		return nil, fmt.Errorf("%s %s: entity has no id", method, r.desc.Name)
	}
	out := P(new(T))
	if _, err := r.c.do(ctx, method, r.itemPath(*id), nil, e, out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Resource[T, P]) Delete(ctx context.Context, id int64) error {
	_, err := r.c.do(ctx, http.MethodDelete, r.itemPath(id), nil, nil, nil)
	return err
}

func (r *Resource[T, P]) Schema(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	_, err := r.c.do(ctx, http.MethodGet, r.path()+"/_schema", nil, nil, &raw)
	return raw, err
}

func (r *Resource[T, P]) itemPath(id int64) string {
	return r.path() + "/" + strconv.FormatInt(id, 10)
}
