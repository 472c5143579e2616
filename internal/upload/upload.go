package upload

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log/slog"
	"mime/multipart"
	"path"
	"strings"

	"github.com/nfnt/resize"
	"golang.org/x/image/webp"

	"github.com/theMessiMagic/if-fashion/internal/blob"
	"github.com/theMessiMagic/if-fashion/internal/models"
)

// Blob key prefixes.
const (
	AreaCustomer   = "customer_uploads"
	AreaEmployee   = "employee_docs"
	GalleryHome    = "home"
	GalleryDesigns = "designs"
)

// Uploader writes form uploads into a blob store.
type Uploader struct {
	Blobs blob.Store
	// MaxWidth bounds the width of gallery images. Zero keeps them as uploaded.
	MaxWidth int
}

// Save stores a submission attachment under area. The stored name is derived
// from discriminator and the client's file name.
func (u *Uploader) Save(ctx context.Context, area, discriminator string, fh *multipart.FileHeader, allowed []string) (string, error) {
	if !Allowed(fh.Filename, allowed) {
		return "", ErrDisallowedType
	}
	name, err := StoredName(discriminator, fh.Filename)
	if err != nil {
		return "", err
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	if _, err := u.Blobs.Put(ctx, Key(area, name), f, blob.PutOptions{}); err != nil {
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	slog.Info("Stored upload", "area", area, "file", name, "size", fh.Size)
	return name, nil
}

// SaveGalleryImage stores an image in one of the public galleries, keeping
// the client's (sanitised) file name. A file with the same name is replaced.
func (u *Uploader) SaveGalleryImage(ctx context.Context, gallery string, fh *multipart.FileHeader) (string, error) {
	if !Allowed(fh.Filename, ImageExtensions) {
		return "", ErrDisallowedType
	}
	name := SecureFilename(fh.Filename)
	if name == "" {
		return "", ErrEmptyName
	}
	f, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}
	data = u.optimize(name, data)

	if _, err := u.Blobs.Put(ctx, Key(gallery, name), bytes.NewReader(data), blob.PutOptions{}); err != nil {
		return "", fmt.Errorf("store %s: %w", name, err)
	}
	slog.Info("Stored gallery image", "gallery", gallery, "file", name, "size", len(data))
	return name, nil
}

// optimize downscales png and jpeg images wider than MaxWidth. Anything it
// cannot decode is returned unchanged.
func (u *Uploader) optimize(name string, data []byte) []byte {
	ext := strings.ToLower(path.Ext(name))
	if ext == ".webp" {
		if _, err := webp.DecodeConfig(bytes.NewReader(data)); err != nil {
			slog.Warn("Gallery image is not valid webp, storing as uploaded", "file", name, "error", err)
		}
		return data
	}
	if u.MaxWidth <= 0 {
		return data
	}

	var (
		img image.Image
		err error
	)
	switch ext {
	case ".png":
		img, err = png.Decode(bytes.NewReader(data))
	case ".jpg", ".jpeg":
		img, err = jpeg.Decode(bytes.NewReader(data))
	default:
		return data
	}
	if err != nil {
		slog.Warn("Failed to decode gallery image, storing as uploaded", "file", name, "error", err)
		return data
	}
	if img.Bounds().Dx() <= u.MaxWidth {
		return data
	}

	// Resize keeping aspect ratio
	resized := resize.Resize(uint(u.MaxWidth), 0, img, resize.Lanczos3)
	var buf bytes.Buffer
	if ext == ".png" {
		err = png.Encode(&buf, resized)
	} else {
		err = jpeg.Encode(&buf, resized, &jpeg.Options{Quality: 85})
	}
	if err != nil {
		slog.Warn("Failed to encode resized image, storing as uploaded", "file", name, "error", err)
		return data
	}
	return buf.Bytes()
}

// validName reports whether filename names a single entry inside an area.
func validName(filename string) bool {
	if filename == "" || filename == "." || strings.Contains(filename, "..") {
		return false
	}
	return !strings.ContainsAny(filename, `/\`)
}

// Open returns a stored file for streaming.
func (u *Uploader) Open(ctx context.Context, area, filename string) (blob.Info, io.ReadCloser, error) {
	if !validName(filename) {
		return blob.Info{}, nil, blob.ErrNotFound
	}
	return u.Blobs.Get(ctx, Key(area, filename))
}

// Delete removes a stored file. Missing files and invalid names are not errors.
func (u *Uploader) Delete(ctx context.Context, area, filename string) (bool, error) {
	if !validName(filename) {
		return false, nil
	}
	return u.Blobs.Delete(ctx, Key(area, filename))
}

// ListGallery returns the images stored in a gallery, sorted by name.
func (u *Uploader) ListGallery(ctx context.Context, gallery string) ([]models.GalleryImage, error) {
	infos, err := u.Blobs.List(ctx, gallery+"/")
	if err != nil {
		return nil, err
	}
	images := make([]models.GalleryImage, 0, len(infos))
	for _, info := range infos {
		name := strings.TrimPrefix(info.Key, gallery+"/")
		if strings.Contains(name, "/") {
			continue
		}
		images = append(images, models.GalleryImage{Gallery: gallery, Filename: name, Size: info.Size})
	}
	return images, nil
}
