package handlers

import (
	"sync"

	"github.com/ternarybob/pokedex/internal/services/scheduler"
)

// PrefetchTrigger starts an on-demand cache warm-up and reports scheduler state.
type PrefetchTrigger interface {
	RunNow() *sync.WaitGroup
	Status() scheduler.Status
}
