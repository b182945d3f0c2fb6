package common

import (
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestSafeGo(t *testing.T) {
	var ran atomic.Bool
	SafeGo(arbor.NewNoOpLogger(), "ok", func() { ran.Store(true) }).Wait()
	assert.True(t, ran.Load())
}

func TestSafeGo_RecoversPanic(t *testing.T) {
	wg := SafeGo(arbor.NewNoOpLogger(), "panics", func() { panic("boom") })
	assert.NotPanics(t, wg.Wait)
}
