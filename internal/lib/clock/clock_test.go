package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystem_TodayUsesLocation(t *testing.T) {
	loc := time.FixedZone("ART", -3*60*60)
	c := NewSystem(loc)
	// 01:30 UTC 2 марта: это ещё 1 марта в Буэнос-Айресе.
	c.now = func() time.Time { return time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC) }

	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), c.Today())
}

func TestSystem_NilLocation(t *testing.T) {
	c := NewSystem(nil)
	c.now = func() time.Time { return time.Date(2024, 3, 2, 1, 30, 0, 0, time.UTC) }

	assert.Equal(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), c.Today())
}

func TestFixed(t *testing.T) {
	c := Fixed(time.Date(2024, 5, 17, 18, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC), c.Today())
}
