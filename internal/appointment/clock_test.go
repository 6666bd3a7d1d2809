package appointment

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimeOfDay(t *testing.T) {
	got, err := ParseTimeOfDay("10:15")
	require.NoError(t, err)
	assert.Equal(t, at(10, 15), got)

	got, err = ParseTimeOfDay("10:15:30")
	require.NoError(t, err)
	assert.Equal(t, civil.Time{Hour: 10, Minute: 15, Second: 30}, got)

	for _, bad := range []string{"", "10h15", "24:00", "9"} {
		_, err := ParseTimeOfDay(bad)
		assert.Error(t, err, bad)
	}
}

func TestFormatTimeOfDay(t *testing.T) {
	assert.Equal(t, "09:00", FormatTimeOfDay(at(9, 0)))
	assert.Equal(t, "16:30", FormatTimeOfDay(at(16, 30)))
	assert.Equal(t, "16:30:15", FormatTimeOfDay(civil.Time{Hour: 16, Minute: 30, Second: 15}))
}

func TestAddToTimeWrapsAtMidnight(t *testing.T) {
	assert.Equal(t, at(0, 30), addToTime(at(23, 30), time.Hour))
	assert.Equal(t, at(10, 30), addToTime(at(9, 0), 90*time.Minute))
	assert.Equal(t, at(12, 0), timeAt(12*time.Hour))
}

func TestAddToDateTimeCrossesDate(t *testing.T) {
	got := addToDateTime(civil.DateTime{Date: testToday, Time: at(23, 0)}, 2*time.Hour)
	assert.Equal(t, civil.DateTime{Date: testTomorrow, Time: at(1, 0)}, got)
}

func TestFixedClock(t *testing.T) {
	c := FixedClock(testNow)
	assert.Equal(t, testNow, c.Now())
	assert.Equal(t, testNow, c.Now())
}
