// Package emit renders shader source into a JavaScript module and writes it
// to the destination file.
//
// The module form is
//
//	export default `<source>`;
//
// The source is embedded verbatim. Backticks and ${...} sequences in the
// source are not escaped, so such content produces a module that does not
// parse.
package emit

import (
	"bytes"
	"fmt"
	"os"

	"github.com/schaermu/webglsld/internal/shader"
)

const (
	prefix = "export default `"
	suffix = "`;"
)

// Wrap returns content wrapped as a default-exported template string
func Wrap(content []byte) []byte {
	out := make([]byte, 0, len(prefix)+len(content)+len(suffix))
	out = append(out, prefix...)
	out = append(out, content...)
	out = append(out, suffix...)
	return out
}

// Unwrap reverses Wrap. It reports false if module does not carry the
// wrapper prefix and suffix.
func Unwrap(module []byte) ([]byte, bool) {
	if !bytes.HasPrefix(module, []byte(prefix)) {
		return nil, false
	}
	rest := module[len(prefix):]
	if !bytes.HasSuffix(rest, []byte(suffix)) {
		return nil, false
	}
	return rest[:len(rest)-len(suffix)], true
}

// Write truncates the existing file at dest and writes the wrapped content.
// The file is not created if missing and the write is not atomic.
func Write(dest string, content []byte) error {
	f, err := os.OpenFile(dest, os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("%w: open %s: %w", shader.ErrIO, dest, err)
	}

	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: truncate %s: %w", shader.ErrIO, dest, err)
	}

	if _, err := f.Write(Wrap(content)); err != nil {
		_ = f.Close()
		return fmt.Errorf("%w: write %s: %w", shader.ErrIO, dest, err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", shader.ErrIO, dest, err)
	}
	return nil
}

// UpToDate reports whether the module at dest is exactly Wrap(content)
func UpToDate(dest string, content []byte) (bool, error) {
	data, err := os.ReadFile(dest)
	if err != nil {
		return false, fmt.Errorf("%w: read %s: %w", shader.ErrIO, dest, err)
	}
	inner, ok := Unwrap(data)
	if !ok {
		return false, nil
	}
	return bytes.Equal(inner, content), nil
}
