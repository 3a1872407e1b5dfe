package source

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32 // просто ID источника
	// FileFlags encodes metadata about a source file.
	FileFlags uint8 // метаданные
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota // добавлен не с диска (тест, stdin)
	// FileHadBOM marks content that started with a UTF-8 byte order mark.
	// The mark is stripped from Content; writers put it back.
	FileHadBOM
	// FileHadCRLF marks content with at least one \r\n terminator.
	// CRLF is kept as-is: fixes are byte-exact edits of the original text.
	FileHadCRLF
	// FileDecodedUTF16 marks content transcoded from UTF-16 on load.
	FileDecodedUTF16
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Hash    [32]byte // blake3 of Content
	Flags   FileFlags
}

// LineCol represents a human-readable position in a source file.
type LineCol struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based, in bytes
}

// Less orders positions by line, then column.
func (lc LineCol) Less(other LineCol) bool {
	if lc.Line != other.Line {
		return lc.Line < other.Line
	}
	return lc.Col < other.Col
}
