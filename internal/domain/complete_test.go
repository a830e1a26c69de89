package domain

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/couchcryptid/avi-report-etl/internal/avtime"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testAnchor = time.Date(2020, time.February, 27, 1, 0, 0, 0, time.UTC)

func frag(t *testing.T, s string) avtime.Partial {
	t.Helper()
	p, err := avtime.ParsePartial(s)
	require.NoError(t, err)
	return p
}

func instant(t *testing.T, s string) avtime.Instant {
	return avtime.Unresolved(frag(t, s))
}

func instantPtr(t *testing.T, s string) *avtime.Instant {
	in := instant(t, s)
	return &in
}

func period(t *testing.T, start, end string) avtime.Period {
	return avtime.UnresolvedPeriod(frag(t, start), frag(t, end))
}

func periodPtr(t *testing.T, start, end string) *avtime.Period {
	p := period(t, start, end)
	return &p
}

func resolved(t *testing.T, in avtime.Instant) time.Time {
	t.Helper()
	ts, ok := in.Resolved()
	require.True(t, ok, "instant %s not resolved", in)
	return ts
}

func utc(y int, m time.Month, d, h, mi int) time.Time {
	return time.Date(y, m, d, h, mi, 0, 0, time.UTC)
}

func testSIGMET(t *testing.T) SIGMET {
	return SIGMET{
		Status:                        StatusNormal,
		IssuingAirTrafficServicesUnit: "EFIN",
		MeteorologicalWatchOffice:     "EFKL",
		Airspace:                      "EFIN FIR",
		SequenceNumber:                "1",
		Phenomenon:                    "SEV_TURB",
		IssueTime:                     instant(t, "--27T01:00Z"),
		ValidityPeriod:                period(t, "--27T01:00Z", "--27T05:00Z"),
		AnalysisGeometries:            []PhenomenonGeometry{{Time: instantPtr(t, "--27T01:00Z")}},
		ForecastGeometries:            []PhenomenonGeometry{{Time: instantPtr(t, "--27T05:00Z")}},
	}
}

func TestCompleteAllTimes_SIGMET(t *testing.T) {
	in := testSIGMET(t)
	in.CancelledReference = &AirmetSigmetReference{
		SequenceNumber: "3",
		ValidityPeriod: period(t, "--26T22:00Z", "--27T02:00Z"),
	}

	out, err := Complete(in, testAnchor.Add(5*time.Minute), DefaultValidityBounds())
	require.NoError(t, err)

	assert.True(t, IsFullyResolved(out))
	assert.False(t, IsFullyResolved(in), "input must not be modified")

	assert.Equal(t, testAnchor, resolved(t, out.IssueTime))
	assert.Equal(t, utc(2020, time.February, 27, 5, 0), resolved(t, out.ValidityPeriod.End()))
	assert.Equal(t, testAnchor, resolved(t, *out.AnalysisGeometries[0].Time))
	assert.Equal(t, utc(2020, time.February, 27, 5, 0), resolved(t, *out.ForecastGeometries[0].Time))
	assert.Equal(t, utc(2020, time.February, 26, 22, 0), resolved(t, out.CancelledReference.ValidityPeriod.Start()))

	assert.False(t, in.AnalysisGeometries[0].Time.IsComplete())
}

func TestCompleteAllTimes_AggregatesGeometryFailures(t *testing.T) {
	// April has no day 31, so both geometries fail while the rest resolves.
	in := SIGMET{
		MeteorologicalWatchOffice: "EFKL",
		IssueTime:                 instant(t, "--15T10:00Z"),
		ValidityPeriod:            period(t, "--15T10:00Z", "--15T14:00Z"),
		AnalysisGeometries: []PhenomenonGeometry{
			{Time: instantPtr(t, "--31T06:00Z")},
			{Time: instantPtr(t, "--15T10:00Z")},
		},
		ForecastGeometries: []PhenomenonGeometry{
			{Time: instantPtr(t, "--15T14:00Z")},
			{Time: instantPtr(t, "--31T12:00Z")},
		},
	}

	out, err := Complete(in, utc(2020, time.April, 15, 10, 3), DefaultValidityBounds())
	require.Error(t, err)

	var pce *PartialCompletionError
	require.True(t, errors.As(err, &pce))
	assert.Equal(t, KindSIGMET, pce.Kind)
	if diff := cmp.Diff([]string{"analysisGeometries[0].time", "forecastGeometries[1].time"}, pce.Paths()); diff != "" {
		t.Errorf("failed paths mismatch (-want +got):\n%s", diff)
	}
	assert.ErrorIs(t, err, avtime.ErrInvalidFieldValue)

	assert.Equal(t, utc(2020, time.April, 15, 10, 0), resolved(t, out.IssueTime))
	assert.True(t, out.ValidityPeriod.IsComplete())
	assert.True(t, out.AnalysisGeometries[1].Time.IsComplete())
	assert.True(t, out.ForecastGeometries[0].Time.IsComplete())
	assert.False(t, out.AnalysisGeometries[0].Time.IsComplete())
	assert.False(t, IsFullyResolved(out))
}

func TestCompleteAllTimes_IssueFailureBlocksDependents(t *testing.T) {
	in := testSIGMET(t)
	in.IssueTime = instant(t, "--31T01:00Z")
	in.CancelledReference = &AirmetSigmetReference{
		SequenceNumber: "2",
		IssueTime:      instantPtr(t, "--26T21:55Z"),
		ValidityPeriod: period(t, "--26T22:00Z", "--27T02:00Z"),
	}

	out, err := CompleteAllTimes(in, testAnchor, DefaultValidityBounds())
	var pce *PartialCompletionError
	require.True(t, errors.As(err, &pce))

	assert.Equal(t, []string{
		"issueTime",
		"validityPeriod",
		"analysisGeometries[0].time",
		"forecastGeometries[0].time",
	}, pce.Paths())
	assert.ErrorIs(t, pce.Failures[1].Err, ErrUnresolvedAnchor)
	assert.Equal(t, "unresolved_anchor", FailureKind(pce.Failures[1].Err))

	// The reference carries its own issue time and still resolves.
	sig := out.(SIGMET)
	assert.Equal(t, utc(2020, time.February, 26, 21, 55), resolved(t, *sig.CancelledReference.IssueTime))
	assert.True(t, sig.CancelledReference.ValidityPeriod.IsComplete())
}

func TestCompleteAllTimes_AIRMET(t *testing.T) {
	in := AIRMET{
		MeteorologicalWatchOffice: "EFKL",
		Phenomenon:                "MOD_ICE",
		IssueTime:                 instant(t, "--27T00:50Z"),
		ValidityPeriod:            period(t, "--27T01:00Z", "--27T06:00Z"),
		AnalysisGeometries:        []PhenomenonGeometry{{Time: instantPtr(t, "--27T01:00Z")}},
	}

	_, err := Complete(in, testAnchor, DefaultValidityBounds())
	require.Error(t, err)
	assert.ErrorIs(t, err, avtime.ErrImplausiblePeriod)

	loose := DefaultValidityBounds()
	loose.AIRMET = 0
	out, err := Complete(in, testAnchor, loose)
	require.NoError(t, err)
	assert.True(t, IsFullyResolved(out))
}

func TestCompleteAllTimes_TAF(t *testing.T) {
	in := TAF{
		Status:         StatusAmendment,
		Aerodrome:      "EFHK",
		IssueTime:      instant(t, "--27T05:00Z"),
		ValidityPeriod: periodPtr(t, "--27T06Z", "--28T12Z"),
		ChangeForecasts: []TAFChangeForecast{
			{ChangeIndicator: "BECMG", PeriodOfChange: periodPtr(t, "--27T08Z", "--27T10Z")},
			{ChangeIndicator: "FM", InstantOfChange: instantPtr(t, "--28T02:00Z")},
		},
		ReferencedReport: &TAFReference{
			Aerodrome:      "EFHK",
			IssueTime:      instantPtr(t, "--26T23:20Z"),
			ValidityPeriod: period(t, "--27T00Z", "--28T06Z"),
		},
	}

	out, err := Complete(in, utc(2020, time.February, 27, 5, 2), DefaultValidityBounds())
	require.NoError(t, err)
	require.True(t, IsFullyResolved(out))

	d, ok := out.ValidityPeriod.Duration()
	require.True(t, ok)
	assert.Equal(t, 30*time.Hour, d)
	assert.Equal(t, utc(2020, time.February, 28, 2, 0), resolved(t, *out.ChangeForecasts[1].InstantOfChange))
	assert.Equal(t, utc(2020, time.February, 26, 23, 20), resolved(t, *out.ReferencedReport.IssueTime))
	assert.Equal(t, utc(2020, time.February, 28, 6, 0), resolved(t, out.ReferencedReport.ValidityPeriod.End()))
}

func TestCompleteAllTimes_TAFValidityTooLong(t *testing.T) {
	in := TAF{
		Aerodrome:      "EFHK",
		IssueTime:      instant(t, "--27T05:00Z"),
		ValidityPeriod: periodPtr(t, "--27T06Z", "--29T06Z"),
	}

	out, err := Complete(in, testAnchor, DefaultValidityBounds())
	var pce *PartialCompletionError
	require.True(t, errors.As(err, &pce))
	assert.Equal(t, []string{"validityPeriod"}, pce.Paths())
	assert.Equal(t, "implausible_period", FailureKind(pce.Failures[0].Err))
	assert.True(t, out.IssueTime.IsComplete())
	assert.False(t, out.ValidityPeriod.IsComplete())
}

func TestCompleteAllTimes_METARTrendsAndSPECI(t *testing.T) {
	m := METAR{
		Aerodrome: "EFHK",
		IssueTime: instant(t, "--27T00:50Z"),
		Trends: []TrendForecast{
			{ChangeIndicator: "BECMG", PeriodOfChange: periodPtr(t, "T01:10Z", "T01:40Z")},
			{ChangeIndicator: "TEMPO", InstantOfChange: instantPtr(t, "T02:30Z")},
		},
	}

	done, err := Complete(m, testAnchor, DefaultValidityBounds())
	require.NoError(t, err)
	assert.True(t, IsFullyResolved(done))
	assert.Equal(t, utc(2020, time.February, 27, 2, 30), resolved(t, *done.Trends[1].InstantOfChange))

	speci, err := AsSPECI(m)
	require.NoError(t, err)
	assert.Equal(t, KindSPECI, speci.Kind())

	completed, err := Complete(speci, testAnchor, DefaultValidityBounds())
	require.NoError(t, err)
	assert.Equal(t, KindSPECI, completed.Kind())
	assert.True(t, IsFullyResolved(completed))
	assert.Equal(t, KindMETAR, completed.AsMETAR().Kind())

	m.RoutineDelayed = true
	_, err = AsSPECI(m)
	assert.ErrorIs(t, err, ErrRoutineDelayed)
}

func TestCompleteAllTimes_SpaceWeatherAdvisory(t *testing.T) {
	in := SpaceWeatherAdvisory{
		Status:         StatusTest,
		IssuingCenter:  IssuingCenter{Name: "DONLON", Type: "OTHER:SWXC", Designator: "DONLON"},
		AdvisoryNumber: AdvisoryNumber{Year: 2020, Serial: 1},
		IssueTime:      avtime.ResolvedAt(testAnchor),
		Phenomena:      []string{"HF_COM_MOD"},
		Analyses: []SpaceWeatherAnalysis{
			{AnalysisType: AnalysisObservation, Time: instant(t, "--27T01:00Z")},
			{AnalysisType: AnalysisForecast, Time: instant(t, "--27T07:00Z")},
			{AnalysisType: AnalysisForecast, Time: instant(t, "--27T13:00Z")},
			{AnalysisType: AnalysisForecast, Time: instant(t, "--27T19:00Z")},
			{AnalysisType: AnalysisForecast, Time: instant(t, "--28T01:00Z")},
		},
		NextAdvisory: NextAdvisory{TimeSpecifier: NextAdvisoryAt, Time: instantPtr(t, "--27T00:30Z")},
	}

	out, err := Complete(in, testAnchor, DefaultValidityBounds())
	require.NoError(t, err)
	assert.True(t, IsFullyResolved(out))
	assert.Equal(t, utc(2020, time.February, 28, 1, 0), resolved(t, out.Analyses[4].Time))
	// Forward only: 00:30 has passed on the 27th, so the next advisory is a month later.
	assert.Equal(t, utc(2020, time.March, 27, 0, 30), resolved(t, *out.NextAdvisory.Time))

	t.Run("missing next advisory time", func(t *testing.T) {
		in.NextAdvisory = NextAdvisory{TimeSpecifier: NextAdvisoryBy}
		_, err := Complete(in, testAnchor, DefaultValidityBounds())
		require.ErrorIs(t, err, ErrMissingTime)
		assert.False(t, in.AllTimesComplete())
	})

	t.Run("no further advisories", func(t *testing.T) {
		in.NextAdvisory = NextAdvisory{TimeSpecifier: NoFurtherAdvisories}
		out, err := Complete(in, testAnchor, DefaultValidityBounds())
		require.NoError(t, err)
		assert.True(t, IsFullyResolved(out))
	})
}

func TestCompleteAllTimes_GenericMessage(t *testing.T) {
	in := GenericMessage{
		MessageType:     "TAF",
		TargetAerodrome: "EFHK",
		OriginalMessage: "TAF EFHK 270500Z 2706/2812 ...",
		IssueTime:       instant(t, "--27T05:00Z"),
		ValidityTime:    periodPtr(t, "--27T06Z", "--28T12Z"),
	}
	out, err := Complete(in, testAnchor, DefaultValidityBounds())
	require.NoError(t, err)
	assert.True(t, IsFullyResolved(out))
}

func TestCompleteAllTimes_Idempotent(t *testing.T) {
	first, err := Complete(testSIGMET(t), testAnchor, DefaultValidityBounds())
	require.NoError(t, err)

	second, err := Complete(first, testAnchor.AddDate(0, 0, 20), DefaultValidityBounds())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCompleteAllTimes_ConcurrentCallers(t *testing.T) {
	in := testSIGMET(t)
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := Complete(in, testAnchor, DefaultValidityBounds())
			assert.NoError(t, err)
			assert.True(t, IsFullyResolved(out))
			assert.False(t, IsFullyResolved(in))
		}()
	}
	wg.Wait()
}

func TestCompleteAllTimes_NilReport(t *testing.T) {
	_, err := CompleteAllTimes(nil, testAnchor, DefaultValidityBounds())
	require.Error(t, err)
	assert.False(t, IsFullyResolved(nil))
}

func TestPartialCompletionError_Message(t *testing.T) {
	err := &PartialCompletionError{
		Kind: KindTAF,
		Failures: []FieldFailure{
			{Path: "issueTime", Err: avtime.ErrAmbiguousFragment},
			{Path: "validityPeriod", Err: ErrUnresolvedAnchor},
		},
	}
	assert.Equal(t,
		"TAF: 2 time field(s) failed to resolve: issueTime: ambiguous or invalid fragment; validityPeriod: anchor time unresolved",
		err.Error())
	assert.ErrorIs(t, err, avtime.ErrAmbiguousFragment)
}
