package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsAllowedFile(t *testing.T) {
	tests := []struct {
		filename string
		want     bool
	}{
		{"photo.JPG", true},
		{"photo.jpg", true},
		{"anim.gif", true},
		{"scan.Jpeg", true},
		{"image.png", true},
		{"archive.tar.png", true},
		{"image.png.exe", false},
		{"doc.pdf", false},
		{"noext", false},
		{"", false},
		{"trailingdot.", false},
		{".png", true},
		{"png", false},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			assert.Equal(t, tt.want, IsAllowedFile(tt.filename, DefaultAllowedExtensions))
		})
	}
}

func TestIsAllowedFile_CustomList(t *testing.T) {
	assert.True(t, IsAllowedFile("a.WEBP", []string{"webp"}))
	assert.False(t, IsAllowedFile("a.png", []string{"webp"}))
	assert.False(t, IsAllowedFile("a.png", nil))
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"My cool movie.mov", "My_cool_movie.mov"},
		{"../../../etc/passwd", "etc_passwd"},
		{`..\..\windows\win.ini`, "windows_win.ini"},
		{"i contain cool ümläuts.txt", "i_contain_cool_umlauts.txt"},
		{"café.png", "cafe.png"},
		{"日本.png", "png"},
		{"a<b>c?.jpg", "abc.jpg"},
		{"  spaced   out .gif ", "spaced_out_.gif"},
		{"...", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeFilename(tt.in))
		})
	}
}

func TestSanitizeFilename_NeverContainsSeparators(t *testing.T) {
	for _, in := range []string{"/abs/path.png", "a/../b.png", `c:\x\y.jpg`} {
		out := SanitizeFilename(in)
		assert.NotContains(t, out, "/")
		assert.NotContains(t, out, `\`)
		assert.NotEqual(t, "..", out)
	}
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, HashBytes([]byte("a cat")), HashBytes([]byte("a cat")))
	assert.NotEqual(t, HashBytes([]byte("a cat")), HashBytes([]byte("a dog")))
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", HashBytes(nil))
}
