package textclean

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"spaces only", "  \t\n ", ""},
		{"collapse", "a   b\t\tc\n\nd", "a b c d"},
		{"trim", "  hello  ", "hello"},
		{"nbsp", "a\u00a0\u00a0b", "a b"},
		{"nfc", "e\u0301", "\u00e9"},
		{"cjk", " 标题  一 ", "标题 一"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.in); got != tt.want {
				t.Errorf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		n    int
		want string
	}{
		{"hello", 10, "hello"},
		{"hello", 5, "hello"},
		{"hello world", 5, "hello..."},
		{"目录目录", 2, "目录..."},
		{"x", 0, ""},
	}

	for _, tt := range tests {
		if got := Truncate(tt.in, tt.n); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.n, got, tt.want)
		}
	}
}
