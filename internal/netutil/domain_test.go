package netutil

import "testing"

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"https://api.spacexdata.com/v5/launches/query", "spacexdata.com"},
		{"https://API.SpaceXData.com./v5", "spacexdata.com"},
		{"images2.imgbox.com:443", "imgbox.com"},
		{"www.flickr.co.uk", "flickr.co.uk"},
		{"http://127.0.0.1:8080/v5", "127.0.0.1"},
		{"[::1]:80", "::1"},
		{"[::1]", "::1"},
		{"localhost:2270", "localhost"},
		{"//spacexdata.com/path", "spacexdata.com"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := RegistrableDomain(tt.input); got != tt.want {
				t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestSameRegistrableDomain(t *testing.T) {
	if !SameRegistrableDomain("https://api.spacexdata.com/v5", "https://www.spacexdata.com/rockets/r1") {
		t.Fatal("subdomains of one site should match")
	}
	if SameRegistrableDomain("https://api.spacexdata.com/v5", "https://images2.imgbox.com/a.png") {
		t.Fatal("different sites should not match")
	}
	if SameRegistrableDomain("", "") {
		t.Fatal("empty targets should not match")
	}
}
