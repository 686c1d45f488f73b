package sync

import (
	"crypto/md5"
	"encoding/hex"

	"github.com/schaermu/webglsld/internal/shader"
)

// Fingerprint returns the hex MD5 digest of content
func Fingerprint(content []byte) string {
	sum := md5.Sum(content)
	return hex.EncodeToString(sum[:])
}

// Detector compares content against the last fingerprint committed for
// each pair.
type Detector struct {
	last Fingerprints
}

// NewDetector creates a detector with an empty fingerprint table
func NewDetector() *Detector {
	return &Detector{last: make(Fingerprints)}
}

// Check reports whether content differs from the last committed content
// for pair, along with the new fingerprint. It does not update the table.
func (d *Detector) Check(pair shader.Pair, content []byte) (bool, string) {
	fp := Fingerprint(content)
	return fp != d.last[pair], fp
}

// Commit records fp as the last emitted fingerprint for pair
func (d *Detector) Commit(pair shader.Pair, fp string) {
	d.last[pair] = fp
}

// Last returns the committed fingerprint for pair, or "" if none
func (d *Detector) Last(pair shader.Pair) string {
	return d.last[pair]
}
