package object

import (
	"errors"
	"testing"
)

func TestCleanKey(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		want    string
		wantErr bool
	}{
		{name: "plain", key: "reports/abc/1.json", want: "reports/abc/1.json"},
		{name: "dot segments", key: "reports/./abc/../abc/1.json", want: "reports/abc/1.json"},
		{name: "backslashes", key: `reports\abc\1.json`, want: "reports/abc/1.json"},
		{name: "empty", key: "  ", wantErr: true},
		{name: "absolute", key: "/etc/passwd", wantErr: true},
		{name: "traversal", key: "../secrets", wantErr: true},
		{name: "nested traversal", key: "reports/../../x", wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := CleanKey(tt.key)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidKey) {
					t.Fatalf("expected ErrInvalidKey, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("CleanKey(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}
