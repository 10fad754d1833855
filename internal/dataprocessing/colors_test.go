package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"voltweb/pkg/contracts/domain"
)

func TestColorAssigner_SingleFile(t *testing.T) {
	c := NewColorAssigner(DefaultPalette, 1)

	seen := make(map[domain.ColorToken]bool)
	for scan := 1; scan <= len(DefaultPalette); scan++ {
		color := c.Assign(0, scan)
		assert.False(t, seen[color], "scan %d reused %s", scan, color)
		seen[color] = true
	}
	assert.Equal(t, DefaultPalette[0], c.Assign(0, 1))
}

func TestColorAssigner_SingleFileWraps(t *testing.T) {
	c := NewColorAssigner(DefaultPalette, 1)
	for scan := 0; scan < len(DefaultPalette); scan++ {
		c.Assign(0, scan)
	}
	assert.Equal(t, DefaultPalette[0], c.Assign(0, len(DefaultPalette)))
}

func TestColorAssigner_MultipleFiles(t *testing.T) {
	c := NewColorAssigner(DefaultPalette, 3)

	file1 := []domain.ColorToken{c.Assign(1, 1), c.Assign(1, 2), c.Assign(1, 3)}
	assert.Equal(t, file1[0], file1[1])
	assert.Equal(t, file1[0], file1[2])

	file0 := c.Assign(0, 1)
	file2 := c.Assign(2, 7)
	assert.NotEqual(t, file1[0], file0)
	assert.NotEqual(t, file1[0], file2)
	assert.NotEqual(t, file0, file2)

	assert.Equal(t, DefaultPalette[0], file0)
	assert.Equal(t, DefaultPalette[1], file1[0])
	assert.Equal(t, DefaultPalette[2], file2)
}

func TestColorAssigner_Deterministic(t *testing.T) {
	run := func() []domain.ColorToken {
		c := NewColorAssigner(nil, 1)
		return []domain.ColorToken{c.Assign(0, 3), c.Assign(0, 1), c.Assign(0, 2), c.Assign(0, 3)}
	}

	first, second := run(), run()
	assert.Equal(t, first, second)
	assert.Equal(t, first[0], first[3])
}

func TestColorAssigner_CustomPalette(t *testing.T) {
	c := NewColorAssigner([]domain.ColorToken{"#000000", "#ffffff"}, 1)
	assert.Equal(t, domain.ColorToken("#000000"), c.Assign(0, 1))
	assert.Equal(t, domain.ColorToken("#ffffff"), c.Assign(0, 2))
	assert.Equal(t, domain.ColorToken("#000000"), c.Assign(0, 3))
}
