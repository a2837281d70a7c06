package utils

import (
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestHash(t *testing.T) {
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", Hash(""))
	assert.Equal(t, Hash("お知らせ"), Hash("お知らせ"))
	assert.NotEqual(t, Hash("a"), Hash("b"))
}

func TestPercentEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"abcXYZ019-._~", "abcXYZ019-._~"},
		{"Hello Ladies + Gentlemen", "Hello%20Ladies%20%2B%20Gentlemen"},
		{"https://asahigaoka-nerima.tokyo/news/a.html", "https%3A%2F%2Fasahigaoka-nerima.tokyo%2Fnews%2Fa.html"},
		{"夏", "%E5%A4%8F"},
		{"a&b=c", "a%26b%3Dc"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, PercentEncode(tt.in))
		})
	}
}
