package viewer

import "testing"

func TestScheduler_GatingTruthTable(t *testing.T) {
	cases := []struct {
		name    string
		loaded  bool
		visible float64
		want    bool
	}{
		{"neither", false, 0, false},
		{"visible only", false, 1, false},
		{"loaded only", true, 0, false},
		{"both", true, 1, true},
		{"loaded, below threshold", true, 0.04, false},
		{"loaded, at threshold", true, 0.05, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s Scheduler
			if tc.loaded {
				s.MarkLoaded()
			}
			s.SetVisibleFraction(tc.visible)
			if s.Running() != tc.want {
				t.Errorf("running = %v, want %v", s.Running(), tc.want)
			}
		})
	}
}

func TestScheduler_StopsOnVisibilityDrop(t *testing.T) {
	var s Scheduler
	s.MarkLoaded()
	s.SetVisibleFraction(1)
	if !s.Running() {
		t.Fatal("expected running")
	}

	s.SetVisibleFraction(0.01)
	if s.Running() {
		t.Error("expected stopped after visibility dropped below threshold")
	}
}

func TestScheduler_IdempotentTransitions(t *testing.T) {
	var starts, stops int
	s := Scheduler{
		OnStart: func() { starts++ },
		OnStop:  func() { stops++ },
	}

	s.MarkLoaded()
	s.SetVisibleFraction(1)
	s.SetVisibleFraction(1)
	s.SetVisibleFraction(0.8)
	s.MarkLoaded()
	if starts != 1 {
		t.Errorf("starts = %d, want 1", starts)
	}

	s.SetVisibleFraction(0)
	s.SetVisibleFraction(0.01)
	s.SetVisibleFraction(0)
	if stops != 1 {
		t.Errorf("stops = %d, want 1", stops)
	}

	s.SetVisibleFraction(1)
	if starts != 2 {
		t.Errorf("starts = %d after re-entry, want 2", starts)
	}
}

func TestScheduler_NeverStartsBeforeLoad(t *testing.T) {
	var s Scheduler
	for _, f := range []float64{0, 0.5, 1, 0.049, 0.051} {
		s.SetVisibleFraction(f)
		if s.Running() {
			t.Fatalf("scheduler ran at fraction %f without a loaded mesh", f)
		}
	}
}
