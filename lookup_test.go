package foam

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPropertyNotActivated(t *testing.T) {
	v, reason := FetchProperty(100, RawValues{}, "", "prop")
	assert.Nil(t, v)
	assert.Equal(t, "", reason)
}

func TestFetchPropertyAnyDevice(t *testing.T) {
	v, reason := FetchProperty(42, RawValues{}, "Any", "prop")
	assert.Equal(t, int64(42), v)
	assert.Equal(t, "", reason)
}

func TestFetchPropertyRetrySuffixes(t *testing.T) {
	raw := RawValues{"XGM/OUT": {"intensity.value": 3.5}}
	v, reason := FetchProperty(1, raw, "XGM/OUT", "intensity", "", ".value")
	require.Equal(t, "", reason)
	assert.Equal(t, 3.5, v)
}

func TestFetchPropertyMissingPropertyReportsReason(t *testing.T) {
	raw := RawValues{"XGM/OUT": {"other": 1.0}}
	v, reason := FetchProperty(1, raw, "XGM/OUT", "intensity")
	assert.Nil(t, v)
	assert.NotEqual(t, "", reason)
}

func TestParseTuple(t *testing.T) {
	r, err := ParseTuple("(1.5, 2.5)")
	require.NoError(t, err)
	assert.Equal(t, ParsedRange{Low: 1.5, High: 2.5}, r)

	_, err = ParseTuple("1.5, 2.5")
	assert.Error(t, err)
}

func TestParseList(t *testing.T) {
	vals, err := ParseList("[1, 2, 3.5]")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2, 3.5}, vals)
}

func TestParseSliceWithNone(t *testing.T) {
	s, err := ParseSlice("[None, 10]")
	require.NoError(t, err)
	assert.Nil(t, s.Begin)
	require.NotNil(t, s.End)
	assert.Equal(t, 10, *s.End)
}
