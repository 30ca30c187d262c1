package extract

import (
	"context"
	"fmt"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
)

// extractPlain decodes UTF-8 text, falling back to EUC-KR for legacy
// Korean documents.
func extractPlain(_ context.Context, name string, data []byte) (string, error) {
	s, err := decodeText(data)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", name, err)
	}
	return s, nil
}

func decodeText(data []byte) (string, error) {
	if utf8.Valid(data) {
		return string(data), nil
	}
	decoded, err := korean.EUCKR.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("decode euc-kr: %w", err)
	}
	return string(decoded), nil
}
