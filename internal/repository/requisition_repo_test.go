package repository

import "testing"

func TestNextRequisitionNo(t *testing.T) {
	const prefix = "REQ-20260831-"

	tests := []struct {
		name    string
		highest string
		want    string
	}{
		{"empty sequence starts at 1", "", prefix + "00001"},
		{"succeeds the highest number", prefix + "00002", prefix + "00003"},
		{"foreign prefix starts at 1", "REQ-20260830-00009", prefix + "00001"},
		{"malformed suffix starts at 1", prefix + "abc", prefix + "00001"},
		// Tenant teardown can delete lower numbers; the survivor's suffix
		// must still advance instead of being re-allocated
		{"gaps below the maximum are not reused", prefix + "00002", prefix + "00003"},
		{"suffix beyond five digits still advances", prefix + "100000", prefix + "100001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextRequisitionNo(prefix, tt.highest); got != tt.want {
				t.Errorf("nextRequisitionNo(%q, %q) = %q, want %q", prefix, tt.highest, got, tt.want)
			}
		})
	}
}
