package schedule

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseType(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want Type
	}{
		{raw: "every_x_days", want: EveryXDays},
		{raw: "Weekly", want: Weekly},
		{raw: " monthly ", want: Monthly},
	}
	for _, tt := range tests {
		got, err := ParseType(tt.raw)
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got)
	}

	_, err := ParseType("daily")
	require.Error(t, err)
}

func TestParseClock(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw     string
		want    Clock
		wantErr bool
	}{
		{raw: "09:30", want: At(9, 30)},
		{raw: "12:00:00", want: At(12, 0)},
		{raw: "7:05", want: At(7, 5)},
		{raw: "23:59:59.123", want: At(23, 59)},
		{raw: "24:00", wantErr: true},
		{raw: "12:60", wantErr: true},
		{raw: "12:00:61", wantErr: true},
		{raw: "noon", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseClock(tt.raw)
		if tt.wantErr {
			assert.Error(t, err, tt.raw)
			continue
		}
		require.NoError(t, err, tt.raw)
		assert.Equal(t, tt.want, got, tt.raw)
	}
}

func TestClockFormatting(t *testing.T) {
	t.Parallel()
	c := At(9, 5)
	assert.Equal(t, "09:05", c.HHMM())
	assert.Equal(t, "09:05:00", c.String())
	assert.Equal(t, 545, c.MinuteOfDay())

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `"09:05:00"`, string(b))
}

func TestScheduleUnmarshal(t *testing.T) {
	t.Parallel()

	var s Schedule
	err := json.Unmarshal([]byte(`{"name":"updater","type":"every_x_days","day":3,"time":"12:00:00","command":"/bin/true","catch_up":true}`), &s)
	require.NoError(t, err)
	assert.Equal(t, Schedule{Name: "updater", Type: EveryXDays, Day: 3, Time: At(12, 0), Command: "/bin/true", CatchUp: true}, s)

	// legacy key
	var legacy Schedule
	err = json.Unmarshal([]byte(`{"name":"llm_pipeline","stype":"weekly","day":1,"time":"12:00","command":"x","catch_up":false}`), &legacy)
	require.NoError(t, err)
	assert.Equal(t, Weekly, legacy.Type)
}

func TestScheduleUnmarshalRejects(t *testing.T) {
	t.Parallel()
	bad := map[string]string{
		"unknown field": `{"name":"a","type":"weekly","day":1,"time":"12:00","command":"x","catch_up":false,"extra":1}`,
		"bad type":      `{"name":"a","type":"hourly","day":1,"time":"12:00","command":"x","catch_up":false}`,
		"bad time":      `{"name":"a","type":"weekly","day":1,"time":"25:00","command":"x","catch_up":false}`,
		"missing time":  `{"name":"a","type":"weekly","day":1,"command":"x","catch_up":false}`,
		"missing type":  `{"name":"a","day":1,"time":"12:00","command":"x","catch_up":false}`,
		"both types":    `{"name":"a","type":"weekly","stype":"weekly","day":1,"time":"12:00","command":"x","catch_up":false}`,
		"day as string": `{"name":"a","type":"weekly","day":"1","time":"12:00","command":"x","catch_up":false}`,
	}
	for name, doc := range bad {
		var s Schedule
		assert.Error(t, json.Unmarshal([]byte(doc), &s), name)
	}
}

func TestScheduleRoundTrip(t *testing.T) {
	t.Parallel()
	in, err := New("llm_pipeline", "weekly", 1, At(12, 0), "run.sh", true)
	require.NoError(t, err)

	b, err := json.Marshal(in)
	require.NoError(t, err)
	var out Schedule
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestConstructionDoesNotRangeCheckDay(t *testing.T) {
	t.Parallel()
	s, err := New("odd", "weekly", 42, At(1, 0), "x", false)
	require.NoError(t, err)
	assert.Equal(t, 42, s.Day)
}

func TestPathsResolveCommand(t *testing.T) {
	t.Parallel()
	p := NewPaths("/opt/project/", "/home/u")
	assert.Equal(t, "/opt/project", p.ProjectRoot)
	assert.Equal(t, "/opt/project/bin", p.BinDir)

	assert.Equal(t, "/opt/project/bin/indexer --db ./data", p.ResolveCommand("indexer --db ./data"))
	assert.Equal(t, "/usr/bin/env true", p.ResolveCommand("/usr/bin/env true"))
	assert.Equal(t, "", p.ResolveCommand("  "))

	s := p.Resolve(Schedule{Name: "x", Command: "updater"})
	assert.Equal(t, "/opt/project/bin/updater", s.Command)
}
