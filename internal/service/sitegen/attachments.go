package sitegen

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DecodeAttachment converts a data URL to its raw content. Values without a
// data: scheme pass through untouched.
func DecodeAttachment(dataURL string) (string, error) {
	if !strings.HasPrefix(dataURL, "data:") {
		return dataURL, nil
	}
	_, encoded, found := strings.Cut(dataURL, ",")
	if !found {
		return "", fmt.Errorf("malformed data url")
	}
	decoded, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode data url payload: %w", err)
	}
	return string(decoded), nil
}
