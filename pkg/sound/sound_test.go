package sound

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayNeverBlocks(t *testing.T) {
	s := &Speaker{sounds: make(chan string, 1)}
	s.Play("a.wav")
	s.Play("b.wav")
	assert.Equal(t, "a.wav", <-s.sounds)
	assert.Len(t, s.sounds, 0)
}

func TestDummyRecords(t *testing.T) {
	var d Dummy
	var i Interface = &d
	i.Play(WarningSound)
	assert.Equal(t, []string{WarningSound}, d.Played)
}
