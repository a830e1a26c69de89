package avtime_test

import (
	"testing"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPartial_Ranges(t *testing.T) {
	tests := []struct {
		name string
		opts []avtime.FieldOption
	}{
		{"month zero", []avtime.FieldOption{avtime.Month(0)}},
		{"month 13", []avtime.FieldOption{avtime.Month(13)}},
		{"day zero", []avtime.FieldOption{avtime.Day(0)}},
		{"day 32", []avtime.FieldOption{avtime.Day(32)}},
		{"hour 25", []avtime.FieldOption{avtime.Day(1), avtime.Hour(25)}},
		{"minute 60", []avtime.FieldOption{avtime.Hour(1), avtime.Minute(60)}},
		{"hour 24 with minutes", []avtime.FieldOption{avtime.Hour(24), avtime.Minute(30)}},
		{"february 30", []avtime.FieldOption{avtime.Month(2), avtime.Day(30)}},
		{"february 29 in common year", []avtime.FieldOption{avtime.Year(2021), avtime.Month(2), avtime.Day(29)}},
		{"offset beyond 18h", []avtime.FieldOption{avtime.Hour(1), avtime.Offset(19 * 60)}},
		{"no calendar fields", []avtime.FieldOption{avtime.UTC()}},
		{"empty", nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := avtime.NewPartial(tc.opts...)
			require.Error(t, err)
			assert.ErrorIs(t, err, avtime.ErrInvalidFieldValue)
		})
	}
}

func TestNewPartial_LegalCombinations(t *testing.T) {
	tests := []struct {
		name string
		opts []avtime.FieldOption
	}{
		{"hour and minute", []avtime.FieldOption{avtime.Hour(12), avtime.Minute(30)}},
		{"day and hour", []avtime.FieldOption{avtime.Day(27), avtime.Hour(6)}},
		{"end of day", []avtime.FieldOption{avtime.Day(5), avtime.Hour(24), avtime.Minute(0)}},
		{"end of day without minute", []avtime.FieldOption{avtime.Day(5), avtime.Hour(24)}},
		{"february 29 without year", []avtime.FieldOption{avtime.Month(2), avtime.Day(29)}},
		{"day and minute", []avtime.FieldOption{avtime.Day(5), avtime.Minute(30)}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := avtime.NewPartial(tc.opts...)
			assert.NoError(t, err)
		})
	}
}

func TestPartial_Accessors(t *testing.T) {
	p := avtime.MustPartial(avtime.Day(27), avtime.Hour(1), avtime.Minute(0), avtime.UTC())

	d, ok := p.Day()
	assert.True(t, ok)
	assert.Equal(t, 27, d)

	_, ok = p.Month()
	assert.False(t, ok)

	off, ok := p.OffsetMinutes()
	assert.True(t, ok)
	assert.Zero(t, off)

	assert.True(t, p.Has(avtime.FieldDay|avtime.FieldHour))
	assert.False(t, p.Has(avtime.FieldYear))
	assert.False(t, p.IsFull())
	assert.Equal(t, time.UTC, p.Location())
}

func TestPartial_Matches(t *testing.T) {
	p := avtime.MustPartial(avtime.Day(28), avtime.Hour(7))
	assert.True(t, p.Matches(time.Date(2020, 2, 28, 7, 0, 0, 0, time.UTC)))
	assert.True(t, p.Matches(time.Date(2021, 5, 28, 7, 45, 0, 0, time.UTC)))
	assert.False(t, p.Matches(time.Date(2020, 2, 27, 7, 0, 0, 0, time.UTC)))

	endOfDay := avtime.MustPartial(avtime.Day(5), avtime.Hour(24))
	assert.True(t, endOfDay.Matches(time.Date(2020, 3, 6, 0, 0, 0, 0, time.UTC)))
	assert.False(t, endOfDay.Matches(time.Date(2020, 3, 5, 0, 0, 0, 0, time.UTC)))

	zoned := avtime.MustPartial(avtime.Hour(3), avtime.Offset(120))
	assert.True(t, zoned.Matches(time.Date(2020, 3, 5, 1, 0, 0, 0, time.UTC)))
}

func TestFullPartial(t *testing.T) {
	ts := time.Date(2020, 2, 27, 1, 0, 0, 0, time.FixedZone("EET", 2*3600))
	p := avtime.FullPartial(ts)

	assert.True(t, p.IsFull())
	off, ok := p.OffsetMinutes()
	require.True(t, ok)
	assert.Equal(t, 120, off)
	assert.True(t, p.Matches(ts))
	assert.Equal(t, "2020-02-27T01:00+02:00", p.String())
}

func TestParsePartial(t *testing.T) {
	tests := []struct {
		in     string
		fields avtime.FieldMask
		want   string
	}{
		{"--27T01:00Z", avtime.FieldDay | avtime.FieldHour | avtime.FieldMinute | avtime.FieldOffset, "--27T01:00Z"},
		{"--27T1:00Z", avtime.FieldDay | avtime.FieldHour | avtime.FieldMinute | avtime.FieldOffset, "--27T01:00Z"},
		{"--28T07Z", avtime.FieldDay | avtime.FieldHour | avtime.FieldOffset, "--28T07Z"},
		{"2020-02-27T01:00Z", avtime.FieldYear | avtime.FieldMonth | avtime.FieldDay | avtime.FieldHour | avtime.FieldMinute | avtime.FieldOffset, "2020-02-27T01:00Z"},
		{"--02-29T12", avtime.FieldMonth | avtime.FieldDay | avtime.FieldHour, "--02-29T12"},
		{"---05", avtime.FieldDay, "---05"},
		{"--11", avtime.FieldMonth, "--11"},
		{"T12:30-0330", avtime.FieldHour | avtime.FieldMinute | avtime.FieldOffset, "T12:30-03:30"},
		{"T-45Z", avtime.FieldMinute | avtime.FieldOffset, "T-45Z"},
		{"2021", avtime.FieldYear, "2021"},
	}
	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			p, err := avtime.ParsePartial(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.fields, p.Fields())
			assert.Equal(t, tc.want, p.String())
		})
	}
}

func TestParsePartial_Invalid(t *testing.T) {
	for _, in := range []string{"", "Z", "27T01:00Z", "--27T25Z", "--02-30", "T12:30+02:99", "--27T01:00Q"} {
		t.Run(in, func(t *testing.T) {
			_, err := avtime.ParsePartial(in)
			assert.ErrorIs(t, err, avtime.ErrInvalidFieldValue)
		})
	}
}

func TestPartial_MarshalTextGapped(t *testing.T) {
	p := avtime.MustPartial(avtime.Day(5), avtime.Minute(30))
	_, err := p.MarshalText()
	require.Error(t, err)
	assert.Equal(t, "{day=5,minute=30}", p.String())
}

func TestTACGroups(t *testing.T) {
	issue, err := avtime.ParseDayHourMinute("270100Z")
	require.NoError(t, err)
	assert.Equal(t, "--27T01:00Z", issue.String())

	start, end, err := avtime.ParseValidity("2706/2812")
	require.NoError(t, err)
	assert.Equal(t, "--27T06Z", start.String())
	assert.Equal(t, "--28T12Z", end.String())

	_, _, err = avtime.ParseValidity("2706/2825")
	require.ErrorIs(t, err, avtime.ErrInvalidFieldValue)

	_, err = avtime.ParseDayHourMinute("2701Z")
	require.ErrorIs(t, err, avtime.ErrInvalidFieldValue)

	dh, err := avtime.ParseDayHour("0124")
	require.NoError(t, err)
	assert.Equal(t, "--01T24Z", dh.String())
}
