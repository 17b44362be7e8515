package storage

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"path"
	"strings"
	"time"
)

type ArchiveResult struct {
	Key      string
	Location string
	ETag     string
}

// Archiver stores finished bracket documents.
type Archiver interface {
	Put(ctx context.Context, key string, contentType string, reader io.Reader) (*ArchiveResult, error)

	Delete(ctx context.Context, key string) error

	PublicURL(key string) string
}

// ArchiveKey names an archived document as
// sessions/<id>/<name>_<hash8>-<unix>.json, the hash being the md5 of the
// content so repeated archives of the same bracket are recognisable.
func ArchiveKey(sessionID int, name string, content []byte, at time.Time) string {
	sum := md5.Sum(content)
	hash := hex.EncodeToString(sum[:])[:8]
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	return fmt.Sprintf("sessions/%d/%s_%s-%d.json", sessionID, base, hash, at.Unix())
}
