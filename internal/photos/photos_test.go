package photos

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilename(t *testing.T) {
	tests := []struct {
		photo Photo
		want  string
	}{
		{Photo{ID: "123", OriginalFormat: "png"}, "123.png"},
		{Photo{ID: "123"}, "123.jpg"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.photo.Filename())
	}
}
