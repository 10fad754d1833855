package domain

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func numeric(name string, values ...float64) Column {
	strs := make([]string, len(values))
	for i := range values {
		strs[i] = "x"
	}
	return Column{Name: name, Numeric: true, Floats: values, Strings: strs}
}

func TestNewRawTable(t *testing.T) {
	t.Run("equal lengths", func(t *testing.T) {
		table, err := NewRawTable("a.csv", []Column{numeric("Scan", 1, 1), numeric("I", 2, 3)})
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())
		assert.True(t, table.HasColumn("I"))
		assert.False(t, table.HasColumn("i"))
		assert.Equal(t, []string{"Scan", "I"}, table.ColumnNames())
	})

	t.Run("ragged columns", func(t *testing.T) {
		_, err := NewRawTable("a.csv", []Column{numeric("Scan", 1, 1), numeric("I", 2)})
		assert.Error(t, err)
	})

	t.Run("duplicate header resolves to first", func(t *testing.T) {
		table, err := NewRawTable("a.csv", []Column{numeric("I", 1), numeric("I", 9)})
		require.NoError(t, err)
		col, ok := table.Column("I")
		require.True(t, ok)
		assert.Equal(t, []float64{1}, col.Floats)
	})

	t.Run("empty table", func(t *testing.T) {
		table, err := NewRawTable("empty.csv", nil)
		require.NoError(t, err)
		assert.Equal(t, 0, table.Len())
	})
}

func TestRawTable_ConvertOnce(t *testing.T) {
	table, err := NewRawTable("a.csv", []Column{
		numeric("I", 1, 2, math.NaN()),
		{Name: "Label", Strings: []string{"a", "b", "c"}},
	})
	require.NoError(t, err)

	double := func(v []float64) {
		for i := range v {
			v[i] *= 2
		}
	}

	var wg sync.WaitGroup
	applied := make(chan bool, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := table.ConvertOnce("I", double)
			assert.NoError(t, err)
			applied <- ok
		}()
	}
	wg.Wait()
	close(applied)

	count := 0
	for ok := range applied {
		if ok {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.True(t, table.Converted("I"))

	col, _ := table.Column("I")
	assert.Equal(t, []float64{2, 4}, col.Floats[:2])
	assert.True(t, math.IsNaN(col.Floats[2]))

	_, err = table.ConvertOnce("Label", double)
	assert.Error(t, err)
	_, err = table.ConvertOnce("missing", double)
	assert.Error(t, err)
}

func TestScanSet(t *testing.T) {
	s := ScanSet{3, 1, 2}
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(4))
	assert.Equal(t, ScanSet{1, 2, 3}, s.Sorted())
	assert.Equal(t, ScanSet{3, 1, 2}, s)
}

func TestTechnique_IsKnown(t *testing.T) {
	assert.True(t, TechniqueCV.IsKnown())
	assert.True(t, TechniqueDPV.IsKnown())
	assert.False(t, TechniqueUnknown.IsKnown())
}
