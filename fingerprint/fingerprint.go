// Package fingerprint computes the content hash of a module with its
// metadata block excluded, so editing the block never makes it stale.
package fingerprint

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"golang.org/x/text/unicode/norm"

	ierrors "github.com/hannajonsd/ts-introspect/errors"
	"github.com/hannajonsd/ts-introspect/metadata"
)

// Length is the number of hex characters kept from the SHA-256 digest
const Length = 16

// Status compares the stored fingerprint of a file with its current one
type Status struct {
	Current   string `json:"current" yaml:"current"`
	Stored    string `json:"stored,omitempty" yaml:"stored,omitempty"`
	HasStored bool   `json:"hasStored" yaml:"hasStored"`
	Stale     bool   `json:"stale" yaml:"stale"`
}

// Compute returns the fingerprint of content with its metadata block removed
func Compute(content []byte) string {
	doc, err := metadata.Scan(content)
	if err != nil {
		return digest(content)
	}
	return ComputeDocument(content, doc)
}

// ComputeDocument is Compute for content that has already been scanned
func ComputeDocument(content []byte, doc *metadata.Document) string {
	return digest(cut(content, doc))
}

// cut removes the block together with the blank lines around it. Code on
// either side is joined by a single newline.
func cut(content []byte, doc *metadata.Document) []byte {
	if !doc.Found {
		return content
	}
	before := bytes.TrimRight(content[:doc.Block.Start], " \t\r\n")
	after := content[doc.Block.End:]
	lead := len(after) - len(bytes.TrimLeft(after, " \t\r\n"))
	if i := bytes.LastIndexByte(after[:lead], '\n'); i >= 0 {
		after = after[i+1:]
	}
	if len(before) == 0 || len(bytes.TrimSpace(after)) == 0 {
		return append(append([]byte{}, before...), after...)
	}

	out := make([]byte, 0, len(before)+1+len(after))
	out = append(out, before...)
	out = append(out, '\n')
	return append(out, after...)
}

// Stored returns the fingerprint embedded in content's metadata block
func Stored(content []byte) (string, bool) {
	doc, err := metadata.Scan(content)
	if err != nil {
		return "", false
	}
	return doc.StoredHash()
}

// Check computes the current fingerprint and compares it to the stored one.
// A file without a stored fingerprint is never stale.
func Check(content []byte) (Status, error) {
	doc, err := metadata.Scan(content)
	if err != nil {
		return Status{}, ierrors.Wrap(ierrors.ParseFailed, "cannot scan content", err)
	}
	return CheckDocument(content, doc), nil
}

// CheckDocument is Check for content that has already been scanned
func CheckDocument(content []byte, doc *metadata.Document) Status {
	st := Status{Current: ComputeDocument(content, doc)}
	st.Stored, st.HasStored = doc.StoredHash()
	st.Stale = st.HasStored && st.Stored != st.Current
	return st
}

// Update rewrites the stored fingerprint in place with the current one. The
// block must exist and already carry a contentHash string.
func Update(content []byte) ([]byte, error) {
	doc, err := metadata.Scan(content)
	if err != nil {
		return nil, ierrors.Wrap(ierrors.ParseFailed, "cannot scan content", err)
	}
	span, ok := doc.HashSpan()
	if !ok || !doc.Contains(span.Start) {
		return nil, ierrors.New(ierrors.ParseFailed, "metadata block has no contentHash field")
	}

	quote := content[span.Start]
	current := ComputeDocument(content, doc)

	out := make([]byte, 0, len(content))
	out = append(out, content[:span.Start]...)
	out = append(out, quote)
	out = append(out, current...)
	out = append(out, quote)
	return append(out, content[span.End:]...), nil
}

func digest(body []byte) string {
	sum := sha256.Sum256(normalize(body))
	return hex.EncodeToString(sum[:])[:Length]
}

// normalize makes the digest insensitive to Unicode composition, line
// endings, trailing whitespace and leading or trailing blank lines.
func normalize(body []byte) []byte {
	text := norm.NFC.String(string(body))
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
	}
	return []byte(strings.Trim(strings.Join(lines, "\n"), "\n"))
}
