package cli

import (
	"io"
	"os"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/coregx/quill/internal/core"
)

// readInput reads path, or standard input when path is "-".
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// parseFilter decodes a filter written as relaxed Extended JSON. Key order
// is kept, so parameters are numbered in the order the file lists them.
func parseFilter(data []byte) (core.Document, error) {
	var doc bson.D
	if err := bson.UnmarshalExtJSON(data, false, &doc); err != nil {
		return nil, core.WrapError(err, "parse filter")
	}
	return core.Document(doc), nil
}

// loadFilter reads and decodes the filter at path. An empty path yields an
// empty filter. On failure the returned code tells which step failed.
func loadFilter(path string, stdin io.Reader) (core.Document, string, error) {
	if path == "" {
		return core.Document{}, "", nil
	}
	data, err := readInput(path, stdin)
	if err != nil {
		return nil, ErrCodeReadFailed, err
	}
	doc, err := parseFilter(data)
	if err != nil {
		return nil, ErrCodeParseFailed, err
	}
	return doc, "", nil
}
