package textract

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForPath(t *testing.T) {
	assert.IsType(t, PDFFile{}, ForPath("statement.PDF"))
	assert.IsType(t, TextFile{}, ForPath("statement.txt"))
	assert.IsType(t, TextFile{}, ForPath("noext"))
}

func TestForBytes(t *testing.T) {
	assert.IsType(t, PDFBytes{}, ForBytes([]byte("%PDF-1.7\n...")))
	assert.Equal(t, Plain("hello"), ForBytes([]byte("hello")))
}

func TestTextFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sms.txt")
	require.NoError(t, os.WriteFile(path, []byte("Rs 10.00 debited"), 0o600))

	got, err := ForPath(path).Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Rs 10.00 debited", got)

	_, err = TextFile{Path: filepath.Join(t.TempDir(), "missing.txt")}.Text(context.Background())
	assert.Error(t, err)
}

func TestTextFile_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := TextFile{Path: "whatever"}.Text(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPDF_BrokenInputIsAnError(t *testing.T) {
	_, err := PDFBytes{Data: []byte("%PDF-1.4\nthis is not really a pdf")}.Text(context.Background())
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o600))
	_, err = PDFFile{Path: path}.Text(context.Background())
	assert.Error(t, err)
}

func TestPlain(t *testing.T) {
	got, err := Plain("x").Text(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}
