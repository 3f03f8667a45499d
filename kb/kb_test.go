package kb

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medintake-backend/models"
)

func loadTestKB(t *testing.T) *KnowledgeBase {
	t.Helper()
	kb, err := Load(filepath.Join("testdata", "corpus"))
	require.NoError(t, err)
	return kb
}

// copyCorpus duplicates the fixture corpus into dst, skipping named files.
func copyCorpus(t *testing.T, dst string, skip ...string) {
	t.Helper()
	skipped := make(map[string]bool)
	for _, name := range skip {
		skipped[name] = true
	}
	entries, err := os.ReadDir(filepath.Join("testdata", "corpus"))
	require.NoError(t, err)
	for _, entry := range entries {
		if skipped[entry.Name()] {
			continue
		}
		data, err := os.ReadFile(filepath.Join("testdata", "corpus", entry.Name()))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dst, entry.Name()), data, 0644))
	}
}

func TestLoadFullCorpus(t *testing.T) {
	kb := loadTestKB(t)

	assert.Len(t, kb.Chunks(), 18)

	stats := kb.Stats()
	assert.Equal(t, 18, stats.TotalChunks)
	assert.Equal(t, 6, stats.TotalServices)
	assert.Equal(t, 18, stats.TargetChunks)
	assert.False(t, stats.EmbeddingsReady)
	for _, hmo := range models.HMOOrder {
		assert.Equal(t, 6, stats.HMODistribution[hmo], hmo)
	}
}

func TestLoadServiceNames(t *testing.T) {
	kb := loadTestKB(t)

	assert.Equal(t, []string{
		"alternative_medicine",
		"communication_clinic",
		"dental",
		"optometry",
		"pregnancy",
		"workshops",
	}, kb.ServiceNames())
}

func TestLoadChunkContent(t *testing.T) {
	kb := loadTestKB(t)

	chunk, ok := kb.Chunk("dental_maccabi")
	require.True(t, ok)
	assert.Equal(t, "dental", chunk.Service)
	assert.Equal(t, models.HMOMaccabi, chunk.HMO)
	assert.Equal(t, "מכבי", chunk.HMOHebrew)
	assert.Contains(t, chunk.Content, "80% הנחה")
	assert.Contains(t, chunk.Content, "https://www.maccabi4u.co.il/dental")
	assert.NotContains(t, chunk.Content, "<li>")
	assert.NotContains(t, chunk.Content, "מאוחדת: https")

	_, ok = kb.Chunk("dental_unknown")
	assert.False(t, ok)
}

func TestServiceInfoOrder(t *testing.T) {
	kb := loadTestKB(t)

	info := kb.ServiceInfo("optometry")
	require.Len(t, info, 3)
	assert.Equal(t, models.HMOMaccabi, info[0].HMO)
	assert.Equal(t, models.HMOMeuhedet, info[1].HMO)
	assert.Equal(t, models.HMOClalit, info[2].HMO)

	assert.Empty(t, kb.ServiceInfo("no_such_service"))
}

func TestLoadIncompleteCorpus(t *testing.T) {
	dir := t.TempDir()
	copyCorpus(t, dir, "dental_services.html")

	_, err := Load(dir)
	assert.ErrorIs(t, err, ErrCorpusIncomplete)
}

func TestLoadDuplicateService(t *testing.T) {
	dir := t.TempDir()
	copyCorpus(t, dir)

	// dental.html resolves to the same service id as dental_services.html
	data, err := os.ReadFile(filepath.Join("testdata", "corpus", "dental_services.html"))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "dental.html"), data, 0644))

	_, err = Load(dir)
	assert.ErrorIs(t, err, ErrDuplicateChunk)
}

func TestLoadIgnoresNonHTML(t *testing.T) {
	dir := t.TempDir()
	copyCorpus(t, dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("notes"), 0644))

	kb, err := Load(dir)
	require.NoError(t, err)
	assert.Len(t, kb.Chunks(), 18)
}

func TestLoadGenericFallbackContent(t *testing.T) {
	dir := t.TempDir()
	copyCorpus(t, dir, "workshops_services.html")

	// A document that never names an HMO still yields all three chunks.
	bare := `<html><body><h1>סדנאות בריאות</h1><p>מגוון סדנאות לכלל המבוטחים.</p></body></html>`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "workshops_services.html"), []byte(bare), 0644))

	kb, err := Load(dir)
	require.NoError(t, err)

	chunk, ok := kb.Chunk("workshops_clalit")
	require.True(t, ok)
	assert.Contains(t, chunk.Content, "כללית")
	assert.Contains(t, chunk.Content, "מידע כללי")
}

func TestLoadMissingDir(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "does_not_exist"))
	assert.Error(t, err)
}
