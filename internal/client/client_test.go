package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HankLeo/21-points/internal/domain"
	"github.com/HankLeo/21-points/internal/testsupport"
)

func ptr[V any](v V) *V { return &v }

func TestAuthenticateAndAccount(t *testing.T) {
	s := testsupport.NewServer(t)
	ctx := context.Background()
	c := New(s.URL)

	_, err := c.Authenticate(ctx, testsupport.Login, "nope", false)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.StatusCode)

	tok, err := c.Authenticate(ctx, testsupport.Login, testsupport.Password, true)
	require.NoError(t, err)
	assert.Equal(t, tok, c.Token())

	acct, err := c.Account(ctx)
	require.NoError(t, err)
	assert.Equal(t, testsupport.Login, acct.Login)

	users, err := c.Users(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestResourceCRUD(t *testing.T) {
	s := testsupport.NewServer(t)
	ctx := context.Background()
	weights := NewResource[domain.Weight](New(s.URL, WithToken(s.Token)), domain.WeightDescriptor)

	at := time.Date(2024, 4, 1, 6, 0, 0, 0, time.UTC)
	created, err := weights.Create(ctx, &domain.Weight{Timestamp: &at, Weight: ptr(82.4)})
	require.NoError(t, err)
	require.NotNil(t, created.ID)

	got, err := weights.Get(ctx, *created.ID)
	require.NoError(t, err)
	assert.Equal(t, 82.4, *got.Weight)
	assert.True(t, at.Equal(*got.Timestamp))

	got.Weight = ptr(81.9)
	updated, err := weights.Update(ctx, got)
	require.NoError(t, err)
	assert.Equal(t, 81.9, *updated.Weight)

	patched, err := weights.PartialUpdate(ctx, &domain.Weight{ID: created.ID, Weight: ptr(80.0)})
	require.NoError(t, err)
	assert.Equal(t, 80.0, *patched.Weight)
	assert.True(t, at.Equal(*patched.Timestamp))

	_, err = weights.Update(ctx, &domain.Weight{Weight: ptr(1.0)})
	assert.Error(t, err)

	require.NoError(t, weights.Delete(ctx, *created.ID))
	_, err = weights.Get(ctx, *created.ID)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.StatusCode)

	schema, err := weights.Schema(ctx)
	require.NoError(t, err)
	assert.Contains(t, string(schema), `"timestamp"`)
}

func TestResourceListAndSearch(t *testing.T) {
	s := testsupport.NewServer(t)
	ctx := context.Background()
	points := NewResource[domain.Points](New(s.URL, WithToken(s.Token)), domain.PointsDescriptor)

	for day := 1; day <= 3; day++ {
		d := domain.NewLocalDate(2024, time.July, day)
		_, err := points.Create(ctx, &domain.Points{Date: &d, Notes: ptr("day")})
		require.NoError(t, err)
	}

	res, err := points.List(ctx, QueryParams{Page: 0, Size: 2, Sort: "date,desc"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.TotalItems)
	assert.Equal(t, 1, res.Links["next"])
	assert.Equal(t, 1, res.Links["last"])
	require.Len(t, res.Items, 2)
	assert.Equal(t, "2024-07-03", res.Items[0].Date.String())

	res, err = points.List(ctx, QueryParams{})
	require.NoError(t, err)
	assert.Len(t, res.Items, 3)

	res, err = points.Search(ctx, QueryParams{Query: "date:2024-07-02", Page: 0, Size: 20, Sort: "id,asc"})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 1, res.TotalItems)

	res, err = points.Search(ctx, QueryParams{Query: "nothing-like-this"})
	require.NoError(t, err)
	assert.Empty(t, res.Items)
}

func TestValidationErrorCarriesFields(t *testing.T) {
	s := testsupport.NewServer(t)
	prefs := NewResource[domain.Preferences](New(s.URL, WithToken(s.Token)), domain.PreferencesDescriptor)

	_, err := prefs.Create(context.Background(), &domain.Preferences{WeeklyGoal: ptr(9), WeightUnits: ptr(domain.UnitsKG)})
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 400, apiErr.StatusCode)
	require.Len(t, apiErr.Problem.FieldErrors, 1)
	assert.Equal(t, "weeklyGoal", apiErr.Problem.FieldErrors[0].Field)
}
