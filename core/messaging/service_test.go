package messaging

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestTruncatePreview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{name: "short content untouched", content: "salut", want: "salut"},
		{
			name:    "exactly the limit",
			content: strings.Repeat("a", previewLen),
			want:    strings.Repeat("a", previewLen),
		},
		{
			name:    "ascii cut at the limit",
			content: strings.Repeat("a", previewLen+10),
			want:    strings.Repeat("a", previewLen),
		},
		{
			name:    "rune ending at the limit is kept",
			content: strings.Repeat("a", previewLen-2) + "éé",
			want:    strings.Repeat("a", previewLen-2) + "é",
		},
		{
			name:    "rune straddling the limit is dropped",
			content: strings.Repeat("a", previewLen-1) + "éé",
			want:    strings.Repeat("a", previewLen-1),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := truncatePreview(tt.content)
			if got != tt.want {
				t.Errorf("truncatePreview() = %q, want %q", got, tt.want)
			}
			if !utf8.ValidString(got) {
				t.Errorf("truncatePreview() produced invalid UTF-8: %q", got)
			}
			if len(got) > previewLen {
				t.Errorf("len = %d, want at most %d", len(got), previewLen)
			}
		})
	}
}
