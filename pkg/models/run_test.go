package models_test

import (
	"testing"

	. "armada/pkg/models"
)

func TestStatusForResult(t *testing.T) {
	cases := []struct {
		exitCode int
		timedOut bool
		want     RunStatus
	}{
		{0, false, RunSucceeded},
		{1, false, RunFailed},
		{137, false, RunFailed},
		{-9, true, RunTimedOut},
		// A process exiting -9 on its own without the watchdog firing is a
		// plain failure, not a timeout.
		{-9, false, RunFailed},
	}

	for _, tc := range cases {
		if got := StatusForResult(tc.exitCode, tc.timedOut); got != tc.want {
			t.Errorf("StatusForResult(%d, %v) = %s, want %s", tc.exitCode, tc.timedOut, got, tc.want)
		}
	}
}

func TestEnvVars_RoundTrip(t *testing.T) {
	env := EnvVars{"A": "1", "B": "two"}

	value, err := env.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}

	var decoded EnvVars
	if err := decoded.Scan(value); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if decoded["A"] != "1" || decoded["B"] != "two" {
		t.Errorf("unexpected decoded env %v", decoded)
	}
}
