package dialog

import "testing"

func TestWithExtension(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"  ":            "",
		"out":           "out.avi",
		"out.avi":       "out.avi",
		"clip.mkv":      "clip.mkv",
		"dir/recording": "dir/recording.avi",
	}
	for in, want := range cases {
		if got := withExtension(in, ".avi"); got != want {
			t.Errorf("withExtension(%q) = %q, want %q", in, got, want)
		}
	}
}
