package obs

import (
	"testing"
	"time"
)

func TestInitAndObserve(t *testing.T) {
	Init()
	InitBuildInfo("test", "none")

	// observations on registered collectors must not panic
	ObserveMutation("cards", "toggle_freeze", "ok")
	ObserveMutation("ops", "add_budget", "not_found")
	ObserveGeneration("statement", 5*time.Millisecond)
	ObserveInsights("error", time.Millisecond)
}
