package frames

import (
	"path/filepath"
	"strings"
)

// DirPlaceholder, followed by a path separator, stands for the source directory.
const DirPlaceholder = "#dir"

// ResolveOutput appends AnimationExt when missing and expands a leading
// DirPlaceholder against dir.
func ResolveOutput(outfile, dir string) string {
	if !strings.HasSuffix(strings.ToLower(outfile), AnimationExt) {
		outfile += AnimationExt
	}
	for _, sep := range []string{"/", `\`, string(filepath.Separator)} {
		if strings.HasPrefix(outfile, DirPlaceholder+sep) {
			return filepath.Join(dir, outfile[len(DirPlaceholder)+len(sep):])
		}
	}
	return outfile
}
