package dates

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"15-01-2025": "15-01-2025",
		"15/01/2025": "15-01-2025",
		"15-01-25":   "15-01-2025",
		"15/01/25":   "15-01-2025",
		"1/2/5":      "1-2-2005",
		"15-01-00":   "15-01-2000",
		" 15/01/99 ": "15-01-2099",
		"hello":      "hello",
		"1-2":        "1-2",
		"15-01-abc":  "15-01-abc",
	}
	for in, want := range cases {
		assert.Equal(t, want, Normalize(in), "input %q", in)
	}
}

func TestParseUserAcceptedForms(t *testing.T) {
	want := Date{Year: 2025, Month: time.January, Day: 15}
	for _, in := range []string{"15-01-2025", "15/01/2025", "15-01-25", "15/01/25", "15/1/25"} {
		got, err := ParseUser(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestParseUserRejects(t *testing.T) {
	for _, in := range []string{"", "30-02-2025", "32-01-2025", "15-13-2025", "2025-01-15", "tomorrow", "15-01-123"} {
		_, err := ParseUser(in)
		assert.ErrorIs(t, err, ErrInvalid, in)
		assert.False(t, Valid(in), in)
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	for _, in := range []string{"15-01-2025", "1/2/25", "29/02/24", "31-12-99"} {
		first, err := Parse(Normalize(in))
		require.NoError(t, err, in)
		second, err := Parse(Normalize(Normalize(in)))
		require.NoError(t, err, in)
		assert.Equal(t, first, second, in)
	}
}

func TestJSONUsesStorageLayout(t *testing.T) {
	d := Date{Year: 2025, Month: time.June, Day: 5}
	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-06-05"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, d, back)

	assert.Error(t, json.Unmarshal([]byte(`"05-06-2025"`), &back))
	assert.Error(t, json.Unmarshal([]byte(`20250605`), &back))
}

func TestDisplayAndEqual(t *testing.T) {
	d := Date{Year: 2025, Month: time.June, Day: 15}
	assert.Equal(t, "empty", Display(nil))
	assert.Equal(t, "15-06-2025", Display(&d))

	other := d
	assert.True(t, Equal(nil, nil))
	assert.True(t, Equal(&d, &other))
	assert.False(t, Equal(&d, nil))
	other.Day = 16
	assert.False(t, Equal(&d, &other))
	assert.True(t, d.Before(other))
}
