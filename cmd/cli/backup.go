package main

import (
	"archive/tar"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ulikunitz/xz"
)

// writeBackup archives every regular file under root into w as tar.xz.
// Paths in the archive are relative to root.
func writeBackup(w io.Writer, root string) (int, error) {
	xw, err := xz.NewWriter(w)
	if err != nil {
		return 0, fmt.Errorf("xz writer: %w", err)
	}
	tw := tar.NewWriter(xw)

	count := 0
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		hdr, err := tar.FileInfoHeader(info, "")
		if err != nil {
			return err
		}
		hdr.Name = filepath.ToSlash(rel)
		if err := tw.WriteHeader(hdr); err != nil {
			return err
		}

		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		if _, err := io.Copy(tw, f); err != nil {
			return fmt.Errorf("archive %s: %w", rel, err)
		}
		count++
		return nil
	})
	if err != nil {
		return count, err
	}

	if err := tw.Close(); err != nil {
		return count, err
	}
	return count, xw.Close()
}
