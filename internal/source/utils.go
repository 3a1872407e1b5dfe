package source

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

var errBinaryContent = errors.New("file looks binary (NUL byte)")

// decodeContent strips a UTF-8 BOM and transcodes BOM-marked UTF-16 input to UTF-8.
func decodeContent(content []byte) ([]byte, FileFlags, error) {
	var flags FileFlags
	if isUTF16BOM(content) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		out, err := dec.Bytes(content)
		if err != nil {
			return nil, 0, fmt.Errorf("decode utf-16: %w", err)
		}
		return out, FileDecodedUTF16 | FileHadBOM, nil
	}
	content, hadBOM := removeBOM(content)
	if hadBOM {
		flags |= FileHadBOM
	}
	if bytes.IndexByte(content, 0) >= 0 {
		return nil, 0, errBinaryContent
	}
	return content, flags, nil
}

func isUTF16BOM(content []byte) bool {
	if len(content) < 2 {
		return false
	}
	return (content[0] == 0xFF && content[1] == 0xFE) || (content[0] == 0xFE && content[1] == 0xFF)
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) < 3 {
		return content, false
	}

	if content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}

	return content, false
}

func hasCRLF(content []byte) bool {
	return bytes.Contains(content, []byte("\r\n"))
}

func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, bytes.Count(content, []byte{'\n'}))
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	// бинпоиск: число переводов строк строго до off
	lo, hi := 0, len(lineIdx)
	for lo < hi {
		mid := (lo + hi) >> 1
		if lineIdx[mid] < off {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	line := lo // индекс строки (0-based)

	var startOff uint32
	if line > 0 {
		startOff = lineIdx[line-1] + 1
	}
	return LineCol{Line: uint32(line + 1), Col: off - startOff + 1}
}

func normalizePath(p string) string {
	// единый вид в кроссплатформенных дифах
	return filepath.ToSlash(filepath.Clean(p))
}

// RelativePath returns path relative to base when it lies inside base,
// otherwise the cleaned path unchanged.
func RelativePath(path, base string) string {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return normalizePath(path)
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return normalizePath(path)
	}
	rel, err := filepath.Rel(absBase, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.ToSlash(absPath)
	}
	return filepath.ToSlash(rel)
}
