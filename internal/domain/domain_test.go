package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestPreferencesWeeklyGoalRange(t *testing.T) {
	kg := UnitsKG
	for _, tc := range []struct {
		goal    int
		wantErr bool
	}{
		{9, true}, {10, false}, {15, false}, {21, false}, {22, true},
	} {
		err := Validate("preferences", &Preferences{WeeklyGoal: intPtr(tc.goal), WeightUnits: &kg})
		if !tc.wantErr {
			assert.NoError(t, err, "goal %d", tc.goal)
			continue
		}
		var verr *ValidationError
		require.ErrorAs(t, err, &verr, "goal %d", tc.goal)
		assert.NotEmpty(t, verr.Field("weeklyGoal"))
	}
}

func TestValidateMessages(t *testing.T) {
	notes := string(make([]byte, 141))
	err := Validate("points", &Points{Notes: &notes})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field is required.", verr.Field("date"))
	assert.Equal(t, "This field cannot be longer than 140 characters.", verr.Field("notes"))
	assert.Equal(t, "points", verr.Fields[0].ObjectName)

	bad := Units("STONE")
	err = Validate("preferences", &Preferences{WeeklyGoal: intPtr(30), WeightUnits: &bad})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "This field cannot be more than 21.", verr.Field("weeklyGoal"))
	assert.Equal(t, "This field should be one of KG, LB.", verr.Field("weightUnits"))
}

func TestLocalDateJSON(t *testing.T) {
	d := NewLocalDate(2024, time.March, 9)
	b, err := json.Marshal(Points{Date: &d})
	require.NoError(t, err)
	assert.JSONEq(t, `{"date":"2024-03-09"}`, string(b))

	var p Points
	require.NoError(t, json.Unmarshal([]byte(`{"date":"2024-12-31","meals":1}`), &p))
	assert.Equal(t, "2024-12-31", p.Date.String())
	assert.Equal(t, 1, *p.Meals)

	assert.Error(t, json.Unmarshal([]byte(`{"date":"31/12/2024"}`), &p))
}

func TestMergeKeepsUnsetFields(t *testing.T) {
	d := NewLocalDate(2024, time.January, 1)
	notes := "rest day"
	p := Points{Date: &d, Exercise: intPtr(1), Notes: &notes}
	p.Merge(&Points{Exercise: intPtr(0), Meals: intPtr(1)})

	assert.Equal(t, "2024-01-01", p.Date.String())
	assert.Equal(t, 0, *p.Exercise)
	assert.Equal(t, 1, *p.Meals)
	assert.Equal(t, "rest day", *p.Notes)
}

func TestLookupDescriptor(t *testing.T) {
	d, ok := LookupDescriptor("blood-pressure")
	require.True(t, ok)
	assert.Equal(t, "blood-pressures", d.APIPath)

	d, ok = LookupDescriptor("weights")
	require.True(t, ok)
	assert.Equal(t, "weight", d.Route)

	_, ok = LookupDescriptor("steps")
	assert.False(t, ok)
}

func TestSchemaDescribesConstraints(t *testing.T) {
	s := Schema[Preferences]()
	b, err := json.Marshal(s)
	require.NoError(t, err)

	var doc struct {
		Properties map[string]map[string]any `json:"properties"`
		Required   []string                  `json:"required"`
	}
	require.NoError(t, json.Unmarshal(b, &doc))
	assert.EqualValues(t, 10, doc.Properties["weeklyGoal"]["minimum"])
	assert.EqualValues(t, 21, doc.Properties["weeklyGoal"]["maximum"])
	assert.ElementsMatch(t, []any{"KG", "LB"}, doc.Properties["weightUnits"]["enum"])

	pts, err := json.Marshal(Schema[Points]())
	require.NoError(t, err)
	assert.Contains(t, string(pts), `"format":"date"`)
}
