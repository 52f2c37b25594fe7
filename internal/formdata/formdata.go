// Package formdata decodes multipart/form-data bodies the way the
// upload endpoint's existing clients expect: the boundary is recovered
// from the body itself and parts are split on CRLF-delimited lines.
// The decoding is intentionally not binary-safe; it exists to keep the
// exact termination semantics of the note-upload wire format.
package formdata

import (
	"bytes"
	"regexp"

	"github.com/soverin/inkpot/internal/apperr"
)

var (
	boundaryRe = regexp.MustCompile(`--(.+?)\r\n`)
	filenameRe = regexp.MustCompile(`filename="(.+?)"`)
)

var headerEnd = []byte("\r\n\r\n")

// Decode extracts the first uploaded file's name and content from a raw
// multipart body. Parts without a filename attribute are skipped; only
// single-file upload is supported.
func Decode(raw []byte) (filename string, content []byte, err error) {
	m := boundaryRe.FindSubmatch(raw)
	if m == nil {
		return "", nil, apperr.ErrMalformedBody
	}
	delimiter := append([]byte("--"), m[1]...)

	for _, part := range bytes.Split(raw, delimiter) {
		fm := filenameRe.FindSubmatch(part)
		if fm == nil {
			continue
		}
		filename = string(fm[1])

		// Content begins after the blank line terminating the part
		// headers and ends before the CRLF that precedes the next
		// boundary.
		idx := bytes.Index(part, headerEnd)
		if idx < 0 {
			return "", nil, apperr.ErrMalformedBody
		}
		content = bytes.TrimSuffix(part[idx+len(headerEnd):], []byte("\r\n"))

		if len(content) == 0 {
			return "", nil, apperr.ErrEmptyContent
		}
		return filename, content, nil
	}

	return "", nil, apperr.ErrNoFileFound
}
