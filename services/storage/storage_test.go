package storage

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestStaticURLResolver(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{base: "http://localhost:3333", path: "abc.png", want: "http://localhost:3333/files/abc.png"},
		{base: "http://localhost:3333/", path: "/abc.png", want: "http://localhost:3333/files/abc.png"},
		{base: "http://localhost:3333", path: "", want: ""},
	}
	for _, tt := range tests {
		r := StaticURLResolver{BaseURL: tt.base}
		if got := r.URL(tt.path); got != tt.want {
			t.Errorf("URL(%q) with base %q = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}

func TestNewURLResolver(t *testing.T) {
	r, err := NewURLResolver("http://api", "", "", "", zap.NewNop())
	if err != nil {
		t.Fatalf("NewURLResolver: %v", err)
	}
	if _, ok := r.(StaticURLResolver); !ok {
		t.Fatalf("resolver without cloud name = %T, want StaticURLResolver", r)
	}

	r, err = NewURLResolver("http://api", "demo", "key", "secret", zap.NewNop())
	if err != nil {
		t.Fatalf("NewURLResolver(cloudinary): %v", err)
	}
	url := r.URL("avatars/face")
	if !strings.Contains(url, "res.cloudinary.com/demo") || !strings.Contains(url, "avatars/face") {
		t.Fatalf("cloudinary url = %q", url)
	}
}
