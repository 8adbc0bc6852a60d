package release

import "runtime"

const (
	// ExtensionZip is the archive suffix used on Windows.
	ExtensionZip = "zip"
	// ExtensionTarGz is the archive suffix used everywhere else.
	ExtensionTarGz = "tar.gz"
)

// Platform describes how release archives are named for one target OS.
type Platform struct {
	// Segment is the platform tag in the archive name: linux64, win64 or macos.
	Segment string
	// Extension is the archive suffix without a leading dot.
	Extension string
}

// CurrentPlatform returns the Platform of the running binary.
func CurrentPlatform() Platform {
	return ParsePlatform(runtime.GOOS)
}

// ParsePlatform maps a GOOS value to its Platform.
func ParsePlatform(goos string) Platform {
	switch goos {
	case "windows":
		return Platform{Segment: "win64", Extension: ExtensionZip}
	case "linux":
		return Platform{Segment: "linux64", Extension: ExtensionTarGz}
	default:
		return Platform{Segment: "macos", Extension: ExtensionTarGz}
	}
}

// ArchiveName returns the remote archive file name, e.g. nvim-linux64.tar.gz.
func (p Platform) ArchiveName() string {
	return "nvim-" + p.Segment + "." + p.Extension
}
