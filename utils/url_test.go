package utils

import (
	"strings"
	"testing"
)

func TestValidateImageURL(t *testing.T) {
	tests := []struct {
		url     string
		wantErr bool
	}{
		// Allowed
		{"http://example.com/backdrop.jpg", false},
		{"https://image.tmdb.org/t/p/original/abc.jpg", false},
		{"HTTP://EXAMPLE.COM/FILE.PNG", false},

		// Blocked
		{"", true},
		{"file:///etc/passwd", true},
		{"ftp://evil.com/payload", true},
		{"gopher://evil.com", true},
		{"data:image/png;base64,AAAA", true},
		{"smb://share/file.jpg", true},
	}

	for _, tt := range tests {
		err := ValidateImageURL(tt.url)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateImageURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
		}
	}
}

func TestEncodeURLWithSpaces(t *testing.T) {
	result, err := EncodeURLWithSpaces("http://example.com/path with spaces/file name.jpg")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "path%20with%20spaces") {
		t.Errorf("expected encoded spaces in path, got %q", result)
	}
	if !strings.Contains(result, "file%20name.jpg") {
		t.Errorf("expected encoded spaces in filename, got %q", result)
	}
}

func TestEncodeURLWithSpacesQuery(t *testing.T) {
	result, err := EncodeURLWithSpaces("http://example.com/search?q=attack on titan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(result, "q=attack%20on%20titan") {
		t.Errorf("expected encoded spaces in query, got %q", result)
	}
}
