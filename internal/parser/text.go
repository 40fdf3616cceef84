package parser

import (
	"os"
)

// TextBackend reads plain-text sources, one page per form-feed separated block.
// Exported text dumps of the manuals and test fixtures use it.
type TextBackend struct{}

func (TextBackend) Name() string { return "text" }

func (TextBackend) Open(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return newSplitDoc(string(data)), nil
}
