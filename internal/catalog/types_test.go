package catalog

import "testing"

func TestNewVideo_DerivesTitleFromFilenameStem(t *testing.T) {
	cases := []struct {
		url   string
		title string
	}{
		{"/library/clips/vacation.mp4", "vacation"},
		{"/library/clips/My Trip.mov", "My Trip"},
		{"/library/clips/no-extension", "no-extension"},
	}

	for _, c := range cases {
		v := NewVideo(c.url)
		if v.Title != c.title {
			t.Errorf("NewVideo(%q).Title = %q, want %q", c.url, v.Title, c.title)
		}
	}
}
