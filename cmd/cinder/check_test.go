package main

import "testing"

func TestWantProgressUI(t *testing.T) {
	tests := []struct {
		flag    string
		want    bool
		wantErr bool
	}{
		{"on", true, false},
		{" ON ", true, false},
		{"off", false, false},
		{"Off", false, false},
		{"tui", false, true},
		{"yes", false, true},
	}
	for _, tt := range tests {
		got, err := wantProgressUI(tt.flag)
		if (err != nil) != tt.wantErr {
			t.Errorf("wantProgressUI(%q) error = %v; wantErr %v", tt.flag, err, tt.wantErr)
			continue
		}
		if err == nil && got != tt.want {
			t.Errorf("wantProgressUI(%q) = %v; want %v", tt.flag, got, tt.want)
		}
	}

	// auto and blank defer to terminal detection; under a test runner
	// stdout is a pipe, so both must resolve without error.
	for _, flag := range []string{"auto", ""} {
		if _, err := wantProgressUI(flag); err != nil {
			t.Errorf("wantProgressUI(%q) error = %v; want nil", flag, err)
		}
	}
}
