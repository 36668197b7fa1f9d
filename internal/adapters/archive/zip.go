package archive

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/zip"
	"weddingsite/internal/domain"
)

type zipArchiver struct{}

// NewZipArchiver returns an Archiver producing zip files. Entries are stored
// uncompressed since photos are already compressed formats.
func NewZipArchiver() domain.Archiver {
	return zipArchiver{}
}

func (zipArchiver) Write(ctx context.Context, w io.Writer, entries []domain.ArchiveEntry) error {
	zw := zip.NewWriter(w)
	used := make(map[string]int, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := writeEntry(ctx, zw, uniqueName(used, e.Name), e); err != nil {
			return err
		}
	}
	return zw.Close()
}

func writeEntry(ctx context.Context, zw *zip.Writer, name string, e domain.ArchiveEntry) error {
	rc, err := e.Open(ctx)
	if err != nil {
		return fmt.Errorf("open %s: %w", e.Name, err)
	}
	defer rc.Close()
	fw, err := zw.CreateHeader(&zip.FileHeader{
		Name:     name,
		Method:   zip.Store,
		Modified: e.Modified,
	})
	if err != nil {
		return err
	}
	if _, err := io.Copy(fw, rc); err != nil {
		return fmt.Errorf("copy %s: %w", e.Name, err)
	}
	return nil
}

// uniqueName suffixes repeated file names: a.jpg, a (2).jpg, a (3).jpg.
// used maps every emitted name to the last suffix tried for it, so a
// generated name never collides with one taken earlier in the archive.
func uniqueName(used map[string]int, name string) string {
	name = path.Base(strings.ReplaceAll(name, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		name = "photo"
	}
	if _, taken := used[name]; !taken {
		used[name] = 1
		return name
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := used[name] + 1; ; n++ {
		candidate := fmt.Sprintf("%s (%d)%s", stem, n, ext)
		if _, taken := used[candidate]; !taken {
			used[name] = n
			used[candidate] = 1
			return candidate
		}
	}
}
