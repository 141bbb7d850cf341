package domain

import "testing"

func TestParseStatus(t *testing.T) {
	for _, v := range KnownStatuses() {
		got, ok := ParseStatus(string(v))
		if !ok || got != v {
			t.Fatalf("expected %q recognized, got %q ok=%v", v, got, ok)
		}
	}

	got, ok := ParseStatus("GONE FISHING")
	if ok {
		t.Fatalf("expected custom value unrecognized")
	}
	if got != StatusValue("GONE FISHING") {
		t.Fatalf("expected custom value returned unchanged, got %q", got)
	}
}

func TestIsOpenIsStrict(t *testing.T) {
	if !StatusOpenToWork.IsOpen() {
		t.Fatalf("expected OPEN TO WORK to be open")
	}
	for _, v := range []StatusValue{
		StatusBusy,
		StatusOffline,
		StatusTravelling,
		StatusValue("open to work"),
		StatusValue("OPEN TO WORK NOW"),
	} {
		if v.IsOpen() {
			t.Fatalf("expected %q to derive closed", v)
		}
	}
}
