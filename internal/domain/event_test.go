package domain

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
)

func TestDuplicateKey(t *testing.T) {
	a := ExtractionCandidate{Name: "Edina Independence Day Fireworks", LocationName: "Edina", EventDate: "2025-07-04"}
	b := ExtractionCandidate{Name: "Edina July 4th Celebration", LocationName: "Edina", EventDate: "2025-07-04"}
	c := ExtractionCandidate{Name: "Edina Independence Day Fireworks", LocationName: "Edina", EventDate: "2025-07-05"}

	assert.Equal(t, a.DuplicateKey(), b.DuplicateKey(), "name does not enter the grouping key")
	assert.NotEqual(t, a.DuplicateKey(), c.DuplicateKey(), "different dates are different events")
}

func TestSetClock(t *testing.T) {
	frozen := time.Date(2025, 7, 4, 22, 0, 0, 0, time.UTC)
	clk := clockwork.NewFakeClockAt(frozen)

	SetClock(clk)
	defer SetClock(nil)
	assert.Equal(t, frozen, Now())

	clk.Advance(time.Minute)
	assert.Equal(t, frozen.Add(time.Minute), Now())

	SetClock(nil)
	assert.WithinDuration(t, time.Now(), Now(), time.Second)
}
