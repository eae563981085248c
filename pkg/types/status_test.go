package types

import "testing"

func TestParseStatus(t *testing.T) {
	cases := map[string]Status{
		"up":       StatusUp,
		" DOWN ":   StatusDown,
		"Slow":     StatusSlow,
		"":         StatusUnknown,
		"degraded": StatusUnknown,
	}
	for in, want := range cases {
		if got := ParseStatus(in); got != want {
			t.Fatalf("ParseStatus(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSignalConstructors(t *testing.T) {
	sig := BadgeSignal(Badge{Message: "120 ms"}, Badge{Message: "99.9%"})
	if sig.Kind != SignalBadges || sig.Badges == nil || sig.Record != nil {
		t.Fatalf("unexpected badge signal: %+v", sig)
	}
	code := 200
	rec := RecordSignal(StructuredRecord{Code: &code})
	if rec.Kind != SignalRecord || rec.Record == nil || rec.Badges != nil {
		t.Fatalf("unexpected record signal: %+v", rec)
	}
	if rec.Kind.String() != "record" || sig.Kind.String() != "badges" {
		t.Fatalf("unexpected kind names %q %q", rec.Kind, sig.Kind)
	}
}
