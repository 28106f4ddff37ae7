package docx

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

// PartRewriter transforms the XML of one package part. Returning the input
// unchanged leaves the part as-is.
type PartRewriter func(name string, xml string) (string, error)

// rewritablePart reports whether a package entry carries WordprocessingML
// body content we know how to edit.
func rewritablePart(name string) bool {
	if name == "word/document.xml" {
		return true
	}
	return strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml") ||
		strings.HasPrefix(name, "word/footer") && strings.HasSuffix(name, ".xml")
}

// ReadDocumentXML extracts word/document.xml from a .docx package.
func ReadDocumentXML(data []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening docx package: %w", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening document.xml: %w", err)
		}
		defer rc.Close()
		xml, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("reading document.xml: %w", err)
		}
		return string(xml), nil
	}
	return "", fmt.Errorf("package has no word/document.xml")
}

// RewritePackage rebuilds a .docx, passing every body part (document.xml,
// headers, footers) through rewrite and copying all other entries verbatim,
// compressed bytes included.
func RewritePackage(data []byte, rewrite PartRewriter) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("opening docx package: %w", err)
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	for _, f := range zr.File {
		if !rewritablePart(f.Name) {
			raw, err := f.OpenRaw()
			if err != nil {
				return nil, fmt.Errorf("opening %s: %w", f.Name, err)
			}
			header := f.FileHeader
			w, err := zw.CreateRaw(&header)
			if err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			if _, err := io.Copy(w, raw); err != nil {
				return nil, fmt.Errorf("copying %s: %w", f.Name, err)
			}
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", f.Name, err)
		}
		xml, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.Name, err)
		}

		out, err := rewrite(f.Name, string(xml))
		if err != nil {
			return nil, fmt.Errorf("rewriting %s: %w", f.Name, err)
		}

		w, err := zw.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
		if _, err := io.WriteString(w, out); err != nil {
			return nil, fmt.Errorf("writing %s: %w", f.Name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("closing docx package: %w", err)
	}
	return buf.Bytes(), nil
}
