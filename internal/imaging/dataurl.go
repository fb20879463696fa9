package imaging

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// Embed packs raw bytes into a data URL that can be assigned directly to
// a display element without a separate fetch.
func Embed(contentType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
}

// Decode unpacks a data URL back into its content type and raw bytes.
func Decode(dataURL string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("not a data URL")
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("malformed data URL")
	}

	contentType, _ := strings.CutSuffix(meta, ";base64")
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("decode data URL payload: %w", err)
	}
	return contentType, data, nil
}
