package recording

import (
	"path/filepath"
	"strings"
	"time"
)

// Extension is the container used for every recording.
const Extension = ".avi"

const (
	tempPrefix     = "temp_"
	tempNameLayout = "20060102_150405"
)

// TempFileName returns temp_record_<YYYYMMDD_HHMMSS><ext> for t.
func TempFileName(t time.Time, ext string) string {
	return tempPrefix + "record_" + t.Format(tempNameLayout) + ext
}

// ExportName is the default export name for a temp file: its base name without the temp_ prefix.
func ExportName(tempPath string) string {
	return strings.TrimPrefix(filepath.Base(tempPath), tempPrefix)
}
