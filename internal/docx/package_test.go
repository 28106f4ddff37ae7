package docx

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildDocx(t *testing.T, parts map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, content := range parts {
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = io.WriteString(w, content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

func readEntry(t *testing.T, data []byte, name string) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	for _, f := range zr.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		require.NoError(t, err)
		defer rc.Close()
		content, err := io.ReadAll(rc)
		require.NoError(t, err)
		return string(content)
	}
	t.Fatalf("entry %s not found", name)
	return ""
}

func TestReadDocumentXML(t *testing.T) {
	pkg := buildDocx(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   body(p("hello")),
	})

	xml, err := ReadDocumentXML(pkg)
	require.NoError(t, err)
	assert.Contains(t, xml, "hello")

	_, err = ReadDocumentXML(buildDocx(t, map[string]string{"other.xml": "<x/>"}))
	assert.Error(t, err)
}

func TestRewritePackage(t *testing.T) {
	pkg := buildDocx(t, map[string]string{
		"[Content_Types].xml": "<Types/>",
		"word/document.xml":   body(p("old body")),
		"word/header1.xml":    body(p("old header")),
		"word/styles.xml":     "<w:styles/>",
		"word/media/logo.png": "\x89PNGfake",
	})

	out, err := RewritePackage(pkg, func(name, xml string) (string, error) {
		return strings.ReplaceAll(xml, "old", "new"), nil
	})
	require.NoError(t, err)

	assert.Contains(t, readEntry(t, out, "word/document.xml"), "new body")
	assert.Contains(t, readEntry(t, out, "word/header1.xml"), "new header")

	// Non-body parts are copied verbatim.
	assert.Equal(t, "<w:styles/>", readEntry(t, out, "word/styles.xml"))
	assert.Equal(t, "\x89PNGfake", readEntry(t, out, "word/media/logo.png"))
	assert.Equal(t, "<Types/>", readEntry(t, out, "[Content_Types].xml"))
}

func TestRewritePackagePropagatesRewriteError(t *testing.T) {
	pkg := buildDocx(t, map[string]string{"word/document.xml": body(p("x"))})

	_, err := RewritePackage(pkg, func(name, xml string) (string, error) {
		return "", ErrNoSlots
	})
	assert.ErrorIs(t, err, ErrNoSlots)
}
