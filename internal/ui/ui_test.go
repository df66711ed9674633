package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HankLeo/21-points/internal/client"
	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/store"
	"github.com/HankLeo/21-points/internal/testsupport"
)

func ptr[V any](v V) *V { return &v }

func newPoints(t *testing.T, n int) (*client.Resource[domain.Points, *domain.Points], *store.Slice[domain.Points, *domain.Points]) {
	t.Helper()
	s := testsupport.NewServer(t)
	res := client.NewResource[domain.Points](client.New(s.URL, client.WithToken(s.Token)), domain.PointsDescriptor)
	for i := 1; i <= n; i++ {
		d := domain.NewLocalDate(2024, time.January, i)
		notes := fmt.Sprintf("day %d", i)
		if i%10 == 0 {
			notes = "swim"
		}
		_, err := res.Create(context.Background(), &domain.Points{Date: &d, Exercise: ptr(1), Notes: &notes})
		require.NoError(t, err)
	}
	return res, store.NewSlice[domain.Points](res)
}

func idsOf(list []*domain.Points) []int64 {
	out := make([]int64, len(list))
	for i, p := range list {
		out[i] = *p.ID
	}
	return out
}

func TestListViewLoadMoreAppends(t *testing.T) {
	_, slice := newPoints(t, 25)
	v := NewListView(slice)
	ctx := context.Background()

	require.NoError(t, v.ResetAll(ctx))
	assert.Len(t, v.Items(), 20)
	assert.True(t, v.HasMore())

	require.NoError(t, v.LoadMore(ctx))
	assert.Len(t, v.Items(), 25)
	assert.Equal(t, 2, v.Pagination().ActivePage)
	assert.False(t, v.HasMore())
	assert.Equal(t, 25, v.State().TotalItems)

	require.NoError(t, v.LoadMore(ctx))
	assert.Equal(t, 2, v.Pagination().ActivePage)
}

func TestListViewSortToggles(t *testing.T) {
	_, slice := newPoints(t, 25)
	v := NewListView(slice)
	ctx := context.Background()
	require.NoError(t, v.ResetAll(ctx))

	require.NoError(t, v.Sort(ctx, "id"))
	assert.Equal(t, DESC, v.SortIndicator("id"))
	assert.Equal(t, int64(25), *v.Items()[0].ID)
	assert.Len(t, v.Items(), 20)

	require.NoError(t, v.LoadMore(ctx))
	assert.Equal(t, int64(1), *v.Items()[24].ID)

	require.NoError(t, v.Sort(ctx, "date"))
	assert.Equal(t, ASC, v.SortIndicator("date"))
	assert.Equal(t, "", v.SortIndicator("id"))
	assert.Equal(t, 1, v.Pagination().ActivePage)
	assert.Equal(t, int64(1), *v.Items()[0].ID)
}

func TestListViewSearchAndClear(t *testing.T) {
	_, slice := newPoints(t, 25)
	v := NewListView(slice)
	ctx := context.Background()

	require.NoError(t, v.Search(ctx, "swim"))
	assert.Equal(t, []int64{10, 20}, idsOf(v.Items()))
	assert.Equal(t, "swim", v.Query())

	require.NoError(t, v.Search(ctx, ""))
	assert.Len(t, v.Items(), 2)

	require.NoError(t, v.Clear(ctx))
	assert.Equal(t, "", v.Query())
	assert.Len(t, v.Items(), 20)
}

func TestListViewRefreshAfterWrite(t *testing.T) {
	_, slice := newPoints(t, 2)
	v := NewListView(slice)
	ctx := context.Background()
	require.NoError(t, v.ResetAll(ctx))

	require.NoError(t, v.Refresh(ctx))
	assert.Len(t, v.Items(), 2)

	form := NewUpdateForm(slice, PointsDefaults)
	require.NoError(t, form.Open(ctx, nil))
	_, err := form.Submit(ctx, form.Values())
	require.NoError(t, err)

	require.NoError(t, v.Refresh(ctx))
	assert.Len(t, v.Items(), 3)
}

func TestUpdateFormCreateAndEdit(t *testing.T) {
	res, slice := newPoints(t, 0)
	form := NewUpdateForm(slice, PointsDefaults)
	ctx := context.Background()

	require.NoError(t, form.Open(ctx, nil))
	assert.True(t, form.IsNew())
	values := form.Values()
	assert.Equal(t, domain.Today(), *values.Date)

	values.Meals = ptr(1)
	route, err := form.Submit(ctx, values)
	require.NoError(t, err)
	assert.Equal(t, "/points", route)
	id := *slice.State().Entity.ID

	edit := NewUpdateForm(slice, PointsDefaults)
	require.NoError(t, edit.Open(ctx, &id))
	assert.False(t, edit.IsNew())
	values = edit.Values()
	assert.Equal(t, 1, *values.Meals)

	values.Alcohol = ptr(1)
	_, err = edit.Submit(ctx, values)
	require.NoError(t, err)

	got, err := res.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 1, *got.Alcohol)
	assert.Equal(t, 1, *got.Meals)
}

func TestUpdateFormValuesAreACopy(t *testing.T) {
	_, slice := newPoints(t, 1)
	form := NewUpdateForm(slice, PointsDefaults)
	ctx := context.Background()
	id := int64(1)
	require.NoError(t, form.Open(ctx, &id))

	values := form.Values()
	require.NoError(t, json.Unmarshal([]byte(`{"exercise":7,"notes":"changed"}`), values))
	values.User.Login = "someone"

	stored := slice.State().Entity
	assert.Equal(t, 1, *stored.Exercise)
	assert.Equal(t, "day 1", *stored.Notes)
	assert.Equal(t, testsupport.Login, stored.User.Login)

	_, err := form.Submit(ctx, &domain.Points{Notes: values.Notes})
	require.Error(t, err)
	assert.Equal(t, 1, *slice.State().Entity.Exercise)
}

func TestUpdateFormRejectsBeforeSubmission(t *testing.T) {
	s := testsupport.NewServer(t)
	res := client.NewResource[domain.Preferences](client.New(s.URL, client.WithToken(s.Token)), domain.PreferencesDescriptor)
	form := NewUpdateForm(store.NewSlice[domain.Preferences](res), nil)
	ctx := context.Background()
	require.NoError(t, form.Open(ctx, nil))

	units := domain.UnitsKG
	_, err := form.Submit(ctx, &domain.Preferences{WeeklyGoal: ptr(9), WeightUnits: &units})
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field should be at least 10.", verr.Field("weeklyGoal"))

	list, err := res.List(ctx, client.QueryParams{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	route, err := form.Submit(ctx, &domain.Preferences{WeeklyGoal: ptr(10), WeightUnits: &units})
	require.NoError(t, err)
	assert.Equal(t, "/preferences", route)
}

func TestDeleteDialog(t *testing.T) {
	res, slice := newPoints(t, 1)
	d := NewDeleteDialog(slice)
	ctx := context.Background()

	require.NoError(t, d.Open(ctx, 1))
	assert.Equal(t, int64(1), *d.Entity().ID)

	route, err := d.Confirm(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/points", route)
	assert.True(t, slice.State().UpdateSuccess)

	_, err = res.Get(ctx, 1)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	_, err = d.Confirm(ctx)
	assert.Error(t, err)
}

func TestRouterResolve(t *testing.T) {
	r := NewRouter(domain.Descriptors())
	tests := []struct {
		path   string
		entity string
		page   Page
		id     int64
	}{
		{"/points", "points", ListPage, 0},
		{"/points/new", "points", NewPage, 0},
		{"/weight/7", "weight", DetailPage, 7},
		{"/blood-pressure/3/edit", "bloodPressure", EditPage, 3},
		{"/preferences/12/delete", "preferences", DeletePage, 12},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			m, ok := r.Resolve(tt.path)
			require.True(t, ok)
			assert.Equal(t, tt.entity, m.Entity.Name)
			assert.Equal(t, tt.page, m.Page)
			assert.Equal(t, tt.id, m.ID)
		})
	}

	for _, p := range []string{"/", "/points/abc", "/weights", "/points/1/view"} {
		_, ok := r.Resolve(p)
		assert.False(t, ok, p)
	}
}
