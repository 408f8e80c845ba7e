package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestInfo(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	tests := []struct {
		name    string
		version string
		commit  string
		date    string
		want    string
	}{
		{"bare", "1.2.3", "", "", "moveck 1.2.3"},
		{"commit", "1.2.3", "abc123", "", "moveck 1.2.3 (abc123)"},
		{"commit_and_date", "1.2.3", "abc123", "2024-01-15", "moveck 1.2.3 (abc123, 2024-01-15)"},
		{"date_only", "1.2.3-rc1", "", "2024-01-15", "moveck 1.2.3-rc1 (2024-01-15)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
			if got := Info(false); got != tt.want {
				t.Errorf("Info() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestColoredKeepsText(t *testing.T) {
	origVersion, origNoColor := Version, color.NoColor
	t.Cleanup(func() { Version, color.NoColor = origVersion, origNoColor })

	color.NoColor = true
	for _, v := range []string{"0.1.0-dev", "2.0.1+meta", "weird"} {
		Version = v
		if got := Colored(); got != v {
			t.Errorf("Colored() with colors off = %q, want %q", got, v)
		}
	}
}
