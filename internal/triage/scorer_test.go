package triage

import "testing"

func TestScore_Tiers(t *testing.T) {
	cases := []struct {
		name      string
		reason    string
		secondary string
		diagnosis string
		want      int
	}{
		{"empty", "", "", "", TierRoutine},
		{"routine checkup", "annual physical", "", "", TierRoutine},
		{"high from reason", "sudden chest pain since morning", "", "", TierCritical},
		{"high from diagnosis", "follow-up", "", "suspected stroke", TierCritical},
		{"medium fever", "running a fever", "", "", TierElevated},
		{"medium urgent", "needs urgent refill", "", "", TierElevated},
		{"case insensitive", "CHEST PAIN", "", "", TierCritical},
		{"secondary field counted", "", "patient is breathless", "", TierCritical},
		{"keyword inside word", "feverish and tired", "", "", TierElevated},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Score(tc.reason, tc.secondary, tc.diagnosis); got != tc.want {
				t.Errorf("Score(%q,%q,%q) = %d, want %d", tc.reason, tc.secondary, tc.diagnosis, got, tc.want)
			}
		})
	}
}

func TestScore_HighBeatsMedium(t *testing.T) {
	// "severe" alone is medium; "severe bleeding" is high and must win even
	// when medium keywords co-occur.
	if got := Score("fever, dizziness and severe bleeding", "", ""); got != TierCritical {
		t.Fatalf("high-severity keyword must dominate, got %d", got)
	}
}

func TestScore_Deterministic(t *testing.T) {
	first := Score("dizziness after standing", "", "")
	for i := 0; i < 10; i++ {
		if got := Score("dizziness after standing", "", ""); got != first {
			t.Fatalf("score not deterministic: %d != %d", got, first)
		}
	}
}
