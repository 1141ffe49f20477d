package qrpdf

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

const (
	fileNamePrefix = "QR_Code_"
	fileNameExt    = ".pdf"

	// maxNameBytes bounds the content-derived part of a file name so the
	// whole name stays under the common 255-byte limit.
	maxNameBytes = 120
)

// FileName derives the output file name for content: QR_Code_<name>.pdf.
//
// The content is NFC-normalized; path separators, characters reserved on
// Windows and control characters become '_'; leading and trailing dots and
// spaces are trimmed. When any of that changes the name, or the name is
// too long and gets truncated, a short SHA-256 of the full content is
// appended so distinct payloads keep distinct names ("a/b" and "a_b" do
// not share a file). The fixed prefix keeps names clear of Windows device
// names such as CON or NUL. The result is always a single local path
// element.
func FileName(content string) string {
	nfc := norm.NFC.String(content)
	name := sanitizeName(nfc)
	switch {
	case len(name) > maxNameBytes:
		name = truncateUTF8(name, maxNameBytes) + "-" + shortHash(content, 4)
	case name != nfc:
		name += "-" + shortHash(content, 4)
	}
	out := fileNamePrefix + name + fileNameExt
	if !filepath.IsLocal(out) || strings.ContainsAny(out, `/\`) {
		return fileNamePrefix + shortHash(content, 8) + fileNameExt
	}
	return out
}

// shortHash returns the first n bytes of SHA-256(s) in hex.
func shortHash(s string, n int) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:n])
}

// sanitizeName maps an NFC-normalized string to a safe name component.
func sanitizeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == utf8.RuneError:
			b.WriteByte('_')
		case strings.ContainsRune(`<>:"/\|?*`, r):
			b.WriteByte('_')
		case unicode.IsControl(r):
			b.WriteByte('_')
		default:
			b.WriteRune(r)
		}
	}
	name := strings.Trim(b.String(), ". ")
	if name == "" {
		return "_"
	}
	return name
}

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
