package dump

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stringOpener(docs ...string) Opener {
	calls := 0
	return func() (io.ReadCloser, error) {
		doc := docs[min(calls, len(docs)-1)]
		calls++
		return io.NopCloser(strings.NewReader(doc)), nil
	}
}

func checkSamplePages(t *testing.T, pages []Page) {
	t.Helper()
	require.Len(t, pages, 6) // the category page is skipped

	byTitle := make(map[string]Page, len(pages))
	for _, p := range pages {
		byTitle[p.Title] = p
	}
	assert.Equal(t, []uint32{2, 3}, byTitle["Apple"].Links)
	assert.Equal(t, []uint32{1, 3}, byTitle["Apple pie"].Links)
	assert.True(t, byTitle["Pie"].IsRedirect)
	assert.Equal(t, []uint32{2}, byTitle["Pie"].Links)
	assert.True(t, byTitle["List of fruits"].IsListArticle)
	assert.Equal(t, []uint32{1, 3, 7}, byTitle["List of fruits"].Links)
	assert.True(t, byTitle["1999"].IsDateRelated)

	// Dump order is preserved.
	assert.Equal(t, "Apple", pages[0].Title)
	assert.Equal(t, "1999", pages[5].Title)
}

func TestExtract(t *testing.T) {
	for _, workers := range []int{1, 4} {
		pages, err := Extract(context.Background(), stringOpener(sampleDump), Options{Workers: workers, ProgressEvery: 2})
		require.NoError(t, err)
		checkSamplePages(t, pages)
	}
}

func TestExtractFileOpener(t *testing.T) {
	dir := t.TempDir()

	plain := filepath.Join(dir, "dump.xml")
	require.NoError(t, os.WriteFile(plain, []byte(sampleDump), 0o644))

	compressed := filepath.Join(dir, "dump.xml.zst")
	enc, err := zstd.NewWriter(nil)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(compressed, enc.EncodeAll([]byte(sampleDump), nil), 0o644))
	require.NoError(t, enc.Close())

	for _, path := range []string{plain, compressed} {
		pages, err := Extract(context.Background(), FileOpener(path), Options{})
		require.NoError(t, err, path)
		checkSamplePages(t, pages)
	}

	_, err = Extract(context.Background(), FileOpener(filepath.Join(dir, "missing.xml")), Options{})
	assert.Error(t, err)
}

func TestExtractDuplicateTitles(t *testing.T) {
	doc := `<mediawiki>
  <page><title>A</title><ns>0</ns><id>1</id><revision><text>[[B]]</text></revision></page>
  <page><title>B</title><ns>0</ns><id>2</id><revision><text>[[A]]</text></revision></page>
  <page><title>A</title><ns>0</ns><id>3</id><revision><text>[[B]]</text></revision></page>
</mediawiki>`
	pages, err := Extract(context.Background(), stringOpener(doc), Options{})
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, uint32(1), pages[0].ID)
	assert.Equal(t, []uint32{1}, pages[1].Links)
}

func TestExtractDumpChanged(t *testing.T) {
	shorter := `<mediawiki><page><title>Apple</title><ns>0</ns><id>1</id><revision><text/></revision></page></mediawiki>`

	_, err := Extract(context.Background(), stringOpener(sampleDump, shorter), Options{})
	assert.ErrorIs(t, err, ErrDumpChanged)

	_, err = Extract(context.Background(), stringOpener(shorter, sampleDump), Options{})
	assert.ErrorIs(t, err, ErrDumpChanged)
}

func TestExtractCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Extract(ctx, stringOpener(sampleDump), Options{})
	assert.True(t, errors.Is(err, context.Canceled))
}
