package theme

import "path/filepath"

const (
	// Ext is the file extension of theme stylesheets.
	Ext = ".css"

	// SidecarExt is the file extension of sidecar metadata files.
	SidecarExt = ".json"

	// ReservedPrefix marks files in the themes directory that are never themes.
	ReservedPrefix = "_"

	// BackupFileName is the name of the original stylesheet backup.
	BackupFileName = ReservedPrefix + "original_backup" + Ext
)

// Paths locates every file the theme manager reads or writes.
// It is built once at startup and passed to each component.
type Paths struct {
	ThemesDir  string // Directory holding <id>.css and <id>.json files
	Stylesheet string // The active login stylesheet served to users
	StateFile  string // The persisted current-theme pointer (config.json)
}

// BackupPath returns the location of the original stylesheet backup.
func (p Paths) BackupPath() string {
	return filepath.Join(p.ThemesDir, BackupFileName)
}

// ThemePath returns the stylesheet path for a theme id.
func (p Paths) ThemePath(id string) string {
	return filepath.Join(p.ThemesDir, id+Ext)
}

// SidecarPath returns the metadata sidecar path for a theme id.
func (p Paths) SidecarPath(id string) string {
	return filepath.Join(p.ThemesDir, id+SidecarExt)
}
