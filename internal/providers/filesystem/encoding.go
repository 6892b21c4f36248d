package filesystem

import (
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/saintfish/chardet"
)

// describeNonText explains why bytes could not be returned as text, naming
// the sniffed content type and most likely charset.
func describeNonText(data []byte) string {
	mtype := mimetype.Detect(data)

	charset := "unknown"
	if result, err := chardet.NewTextDetector().DetectBest(data); err == nil && result != nil {
		charset = strings.ToLower(result.Charset)
	}

	return fmt.Sprintf("file is not valid UTF-8 text (detected %s, charset %s)", mtype.String(), charset)
}
