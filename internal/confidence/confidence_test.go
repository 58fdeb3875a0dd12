package confidence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sepal-contrib/planet-active-fires-explorer/internal/errs"
	"github.com/sepal-contrib/planet-active-fires-explorer/internal/firms"
)

func TestDiscrete_BoundaryIsInclusive(t *testing.T) {
	var got []int
	for _, v := range []string{"81", "80", "55", "50", "29"} {
		b, err := BucketFor(firms.ModisNRT, v)
		require.NoError(t, err)
		got = append(got, b.Threshold)
	}
	assert.Equal(t, []int{80, 80, 50, 50, 30}, got)
}

func TestDiscrete_LabelsAndColors(t *testing.T) {
	cases := []struct {
		value string
		label string
		color string
	}{
		{"100", ">80", "green"},
		{"79", ">50,<80", "orange"},
		{"30", "<50", "red"},
		{"0", "<50", "red"},
	}
	for _, tc := range cases {
		b, err := Discrete{}.Classify(tc.value)
		require.NoError(t, err)
		assert.Equal(t, tc.label, b.Label, tc.value)
		assert.Equal(t, tc.color, b.Color, tc.value)
	}
}

func TestThresholdRange(t *testing.T) {
	upper, lower, err := ThresholdRange(50)
	require.NoError(t, err)
	assert.Equal(t, [2]int{80, 50}, [2]int{upper, lower})

	upper, lower, err = ThresholdRange(80)
	require.NoError(t, err)
	assert.Equal(t, [2]int{100, 80}, [2]int{upper, lower})

	upper, lower, err = ThresholdRange(30)
	require.NoError(t, err)
	assert.Equal(t, [2]int{50, 30}, [2]int{upper, lower})

	_, _, err = ThresholdRange(40)
	assert.ErrorIs(t, err, errs.ErrClassification)
}

func TestCategorical(t *testing.T) {
	for value, color := range map[string]string{
		"high": "green", "h": "green",
		"nominal": "orange", "n": "orange",
		"low": "red", "l": "red",
	} {
		b, err := BucketFor(firms.ViirsSnppNRT, value)
		require.NoError(t, err)
		assert.Equal(t, color, b.Color, value)
	}
}

func TestClassificationErrors(t *testing.T) {
	_, err := BucketFor(firms.ModisNRT, "high")
	assert.ErrorIs(t, err, errs.ErrClassification, "categorical value on a discrete source")

	_, err = BucketFor(firms.ViirsNoaaNRT, "85")
	assert.ErrorIs(t, err, errs.ErrClassification, "numeric value on a categorical source")

	_, err = BucketFor(firms.ModisNRT, "101")
	assert.ErrorIs(t, err, errs.ErrClassification)

	_, err = BucketFor("goes16", "high")
	assert.ErrorIs(t, err, errs.ErrClassification)
}

func TestSchemeFor(t *testing.T) {
	for _, src := range firms.SatSources {
		s, err := SchemeFor(src)
		require.NoError(t, err)
		if src.IsModis() {
			assert.IsType(t, Discrete{}, s)
		} else {
			assert.IsType(t, Categorical{}, s)
		}
	}
}

func batch(values ...string) []firms.Detection {
	out := make([]firms.Detection, len(values))
	for i, v := range values {
		out[i] = firms.Detection{ID: i, Confidence: v}
	}
	return out
}

func TestSelect_DiscreteRangeQuery(t *testing.T) {
	dets := batch("81", "80", "55", "50", "29", "100")

	high, err := Select(dets, Discrete{}, ">80")
	require.NoError(t, err)
	assert.Equal(t, []string{"81", "100"}, values(high))

	mid, err := Select(dets, Discrete{}, ">50,<80")
	require.NoError(t, err)
	assert.Equal(t, []string{"80", "55"}, values(mid))

	_, err = Select(dets, Discrete{}, "medium")
	assert.ErrorIs(t, err, errs.ErrClassification)
}

func TestSelect_Categorical(t *testing.T) {
	dets := batch("h", "nominal", "high", "l")
	got, err := Select(dets, Categorical{}, "high")
	require.NoError(t, err)
	assert.Equal(t, []string{"h", "high"}, values(got))
}

func TestCounts(t *testing.T) {
	counts, err := Counts(batch("h", "n", "n", "h", "h"), Categorical{})
	require.NoError(t, err)
	require.Len(t, counts, 3)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, 2, counts[1].Count)
	assert.Equal(t, 0, counts[2].Count)

	_, err = Counts(batch("h", "x"), Categorical{})
	assert.ErrorIs(t, err, errs.ErrClassification)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(batch("10", "90"), Discrete{}))
	assert.ErrorIs(t, Validate(batch("10", "n"), Discrete{}), errs.ErrClassification)
}

func values(dets []firms.Detection) []string {
	out := make([]string, len(dets))
	for i, d := range dets {
		out[i] = d.Confidence
	}
	return out
}
