package fingerprint

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aleister1102/sharewatch/internal/common/errorwrapper"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"
)

// Placeholder values stamped on directories, which have no content to hash.
const (
	DirectoryHash     = "directory"
	DirectoryMimeType = "inode/directory"
	FallbackMimeType  = "application/octet-stream"
)

// Result carries the content-derived metadata of a single path.
type Result struct {
	MD5Hash   string
	MimeType  string
	SizeBytes int64
	IsDir     bool
	ScannedAt time.Time
}

// Fingerprinter computes a content hash and a media-type classification for
// files of arbitrary size via chunked reads. The hash is used for
// deduplication, not security.
type Fingerprinter struct {
	logger zerolog.Logger
}

// NewFingerprinter creates a new Fingerprinter.
func NewFingerprinter(logger zerolog.Logger) *Fingerprinter {
	return &Fingerprinter{
		logger: logger.With().Str("component", "Fingerprinter").Logger(),
	}
}

// Fingerprint stream-reads the file at path and returns its MD5 hash,
// content-sniffed media type and size. A path that vanishes mid-read yields
// ErrFileVanished so the caller can leave it eligible for a later cycle.
func (f *Fingerprinter) Fingerprint(path string) (*Result, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errorwrapper.ErrFileVanished
		}
		return nil, errorwrapper.WrapError(err, "failed to stat "+path)
	}

	if info.IsDir() {
		return &Result{
			MD5Hash:   DirectoryHash,
			MimeType:  DirectoryMimeType,
			IsDir:     true,
			ScannedAt: time.Now(),
		}, nil
	}

	hash, err := f.hashFile(path)
	if err != nil {
		return nil, err
	}

	mime := f.detectMimeType(path)

	return &Result{
		MD5Hash:   hash,
		MimeType:  mime,
		SizeBytes: info.Size(),
		ScannedAt: time.Now(),
	}, nil
}

func (f *Fingerprinter) hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errorwrapper.ErrFileVanished
		}
		return "", errorwrapper.WrapError(err, "failed to open "+path)
	}
	defer file.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, file); err != nil {
		if os.IsNotExist(err) {
			return "", errorwrapper.ErrFileVanished
		}
		return "", errorwrapper.WrapError(err, "failed to hash "+path)
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// detectMimeType sniffs the media type from content, never from the file
// name. Detection failure falls back to application/octet-stream rather than
// failing the whole pipeline.
func (f *Fingerprinter) detectMimeType(path string) string {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		f.logger.Warn().Err(err).Str("path", path).Msg("MIME detection failed, using fallback")
		return FallbackMimeType
	}
	// Strip optional parameters such as "; charset=utf-8" so the value is
	// stable across detector versions and safe to store in a tag.
	mime := mtype.String()
	if idx := strings.IndexByte(mime, ';'); idx != -1 {
		mime = strings.TrimSpace(mime[:idx])
	}
	return mime
}
