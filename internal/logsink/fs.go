package logsink

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// MakeRunDir creates base/<action>/<DD.MM.YYYY>/<action>_<HH-MM-SS> for
// one run and returns it.
func MakeRunDir(base, action string, now time.Time) (string, error) {
	date := now.Format("02.01.2006")
	name := action + "_" + now.Format("15-04-05")

	dir := filepath.Join(base, action, date, name)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("mkdir %q: %w", dir, err)
	}
	return dir, nil
}

// LogPath is the app.log location inside a run dir.
func LogPath(dir string) string { return filepath.Join(dir, "app.log") }
