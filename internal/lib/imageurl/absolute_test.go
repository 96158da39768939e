package imageurl

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComposer_Absolute(t *testing.T) {
	tests := []struct {
		name        string
		apiBaseURL  string
		mediaOrigin string
		ref         string
		expected    string
	}{
		{
			name:        "relative path against media origin",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "/uploads/a.jpg",
			expected:    "http://localhost:8080/uploads/a.jpg",
		},
		{
			name:        "absolute http passes through",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "http://cdn.example.com/a.jpg",
			expected:    "http://cdn.example.com/a.jpg",
		},
		{
			name:        "absolute https passes through",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "https://cdn.example.com/a.jpg",
			expected:    "https://cdn.example.com/a.jpg",
		},
		{
			name:        "protocol relative passes through",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "//cdn.example.com/a.jpg",
			expected:    "//cdn.example.com/a.jpg",
		},
		{
			name:        "data uri passes through",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "data:image/png;base64,iVBOR",
			expected:    "data:image/png;base64,iVBOR",
		},
		{
			name:        "blob uri passes through",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "blob:http://localhost/123",
			expected:    "blob:http://localhost/123",
		},
		{
			name:        "uppercase scheme still passes through",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "HTTPS://cdn.example.com/a.jpg",
			expected:    "HTTPS://cdn.example.com/a.jpg",
		},
		{
			name:        "absolute api base overrides media origin",
			apiBaseURL:  "https://hotels.example.com/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "/uploads/a.jpg",
			expected:    "https://hotels.example.com/uploads/a.jpg",
		},
		{
			name:        "empty ref stays empty",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "",
			expected:    "",
		},
		{
			name:        "bare filename resolves against origin root",
			apiBaseURL:  "/api",
			mediaOrigin: "http://localhost:8080",
			ref:         "a.jpg",
			expected:    "http://localhost:8080/a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewComposer(tt.apiBaseURL, tt.mediaOrigin)
			assert.Equal(t, tt.expected, c.Absolute(tt.ref))
		})
	}
}

func TestComposer_AbsoluteIdempotent(t *testing.T) {
	c := NewComposer("/api", "http://localhost:8080")

	once := c.Absolute("/uploads/a.jpg")
	twice := c.Absolute(once)

	assert.Equal(t, once, twice)
}
