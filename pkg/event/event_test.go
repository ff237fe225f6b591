package event

import "testing"

func TestDispatchByType(t *testing.T) {
	d := NewDispatcher()
	var waves, all int

	d.Subscribe(WaveStarted, ListenerFunc(func(Event) { waves++ }))
	d.SubscribeAll(ListenerFunc(func(Event) { all++ }))

	d.Dispatch(Event{Type: WaveStarted})
	d.Dispatch(Event{Type: EnemyKilled})

	if waves != 1 {
		t.Errorf("wave listener called %d times, want 1", waves)
	}
	if all != 2 {
		t.Errorf("catch-all listener called %d times, want 2", all)
	}
}

func TestRecorderDrain(t *testing.T) {
	d := NewDispatcher()
	r := &Recorder{}
	d.SubscribeAll(r)

	d.Dispatch(Event{Type: TowerPlaced, Time: 1})
	d.Dispatch(Event{Type: MatchLost, Time: 2})

	got := r.Drain()
	if len(got) != 2 || got[0].Type != TowerPlaced || got[1].Type != MatchLost {
		t.Fatalf("unexpected events %+v", got)
	}
	if again := r.Drain(); len(again) != 0 {
		t.Errorf("second drain returned %d events", len(again))
	}
}
