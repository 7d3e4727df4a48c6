package engine

import (
	"runtime"
	"testing"
)

func TestParsePlatform(t *testing.T) {
	tests := []struct {
		in      string
		want    Platform
		wantErr bool
	}{
		{"linux/amd64", Platform{ArchX86_64, OSLinux}, false},
		{"darwin/arm64", Platform{ArchARM64, OSDarwin}, false},
		{"windows/x86_64", Platform{ArchX86_64, OSWindows}, false},
		{"plan9/386", Platform{}, true},
		{"linux", Platform{}, true},
	}
	for _, tt := range tests {
		got, err := ParsePlatform(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParsePlatform(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePlatform(%q) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestHost(t *testing.T) {
	host := Host()
	if runtime.GOARCH == "amd64" && host.Arch != ArchX86_64 {
		t.Errorf("Host().Arch = %s on amd64", host.Arch)
	}
	if runtime.GOOS == "linux" && host.OS != OSLinux {
		t.Errorf("Host().OS = %s on linux", host.OS)
	}
}

func TestSuggest(t *testing.T) {
	candidates := []string{"auto", "native", "interp"}
	tests := []struct {
		name string
		want []string
	}{
		{"nativ", []string{"native"}},
		{"interpreter", nil},
		{"inter", []string{"interp"}},
		{"auto", nil},
	}
	for _, tt := range tests {
		got := Suggest(tt.name, candidates, 2)
		if len(got) != len(tt.want) {
			t.Errorf("Suggest(%q) = %v, want %v", tt.name, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Suggest(%q) = %v, want %v", tt.name, got, tt.want)
			}
		}
	}
	if d := levenshteinDistance("kitten", "sitting"); d != 3 {
		t.Errorf("levenshteinDistance(kitten, sitting) = %d, want 3", d)
	}
}
