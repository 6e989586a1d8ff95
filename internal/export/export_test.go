package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worldmorph/internal/morph"
)

func newSession(t *testing.T, w, h int) *morph.Session {
	t.Helper()
	s := morph.NewSession(morph.WithSeed(3))
	require.NoError(t, s.Initialize(w, h, morph.DefaultParams()))
	return s
}

func TestBuildMatchesSnapshot(t *testing.T) {
	s := newSession(t, 24, 16)
	for i := 0; i < 10; i++ {
		require.NoError(t, s.Tick(0.016))
	}
	doc, err := Build(s)
	require.NoError(t, err)

	assert.Equal(t, 24, doc.Width)
	assert.Equal(t, 16, doc.Height)
	assert.Equal(t, uint64(10), doc.CycleCount)
	assert.InDelta(t, 0.16, doc.TimeStep, 1e-9)

	cells, err := s.Snapshot()
	require.NoError(t, err)
	for i, c := range cells {
		x, y := i%24, i/24
		if !c.Exists {
			assert.Equal(t, -1, doc.CrystalType[y][x])
			assert.Equal(t, 0, doc.Exists[y][x])
			assert.Equal(t, MissingMantle, doc.MantleEnergy[y][x])
			assert.Equal(t, MissingTemperature, doc.Temperature[y][x])
			continue
		}
		assert.Equal(t, int(c.Crystal), doc.CrystalType[y][x])
		assert.Equal(t, 1, doc.Exists[y][x])
		assert.Equal(t, c.MantleEnergy, doc.MantleEnergy[y][x])
		assert.Equal(t, c.Temperature, doc.Temperature[y][x])
	}
}

func TestBuildUninitialized(t *testing.T) {
	_, err := Build(morph.NewSession())
	assert.ErrorIs(t, err, morph.ErrNotInitialized)
}

func TestWriteUsesDocumentKeys(t *testing.T) {
	s := newSession(t, 4, 3)
	doc, err := Build(s)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.Write(&buf))

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &raw))
	for _, key := range []string{"width", "height", "mantle_energy", "temperature", "crystal_type", "exists", "thunderstorm", "time_step", "cycle_count"} {
		assert.Contains(t, raw, key)
	}

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, doc, back)

	cells, err := s.Snapshot()
	require.NoError(t, err)
	restored := back.Cells()
	require.Len(t, restored, len(cells))
	for i, c := range cells {
		assert.Equal(t, c.Exists, restored[i].Exists)
		assert.Equal(t, c.ExportCode(), restored[i].ExportCode())
	}
}

func TestReadRejectsMismatchedMatrices(t *testing.T) {
	_, err := Read(strings.NewReader(`{"width":2,"height":1,"mantle_energy":[[1]],"temperature":[[1,2]],"crystal_type":[[0,0]],"exists":[[1,1]],"thunderstorm":[[0,0]]}`))
	assert.ErrorIs(t, err, morph.ErrInvalidDimensions)

	_, err = Read(strings.NewReader(`{"width":0,"height":0}`))
	assert.ErrorIs(t, err, morph.ErrInvalidDimensions)

	_, err = Read(strings.NewReader(`not json`))
	assert.Error(t, err)
}

func TestReadRejectsOutOfRangeCodes(t *testing.T) {
	doc := func(crystal, exists, storm int) string {
		return fmt.Sprintf(`{"width":1,"height":1,"mantle_energy":[[5]],"temperature":[[1]],"crystal_type":[[%d]],"exists":[[%d]],"thunderstorm":[[%d]]}`,
			crystal, exists, storm)
	}
	tests := []struct {
		name                   string
		crystal, exists, storm int
	}{
		{"crystal above human", 7, 1, 0},
		{"crystal below missing", -2, 0, 0},
		{"exists not a flag", 1, 2, 0},
		{"thunderstorm not a flag", 1, 1, -1},
		{"terrain marked missing", -1, 1, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(doc(tt.crystal, tt.exists, tt.storm)))
			assert.ErrorIs(t, err, morph.ErrInvalidParameter)
		})
	}

	got, err := Read(strings.NewReader(doc(int(morph.CrystalHuman), 1, 1)))
	require.NoError(t, err)
	cells := got.Cells()
	require.Len(t, cells, 1)
	assert.Equal(t, morph.CrystalHuman, cells[0].Crystal)
	assert.True(t, cells[0].Thunderstorm)
}
