package pptx

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
)

// maxPartSize caps the inflated size of a single part.
const maxPartSize = 256 << 20

var errPartNotFound = errors.New("part not found")

// opcPackage is a read-only view of an OPC zip container. Part names are
// matched case-insensitively, as the packaging format requires.
type opcPackage struct {
	parts map[string]*zip.File
}

func openPackage(data []byte) (*opcPackage, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, err
	}
	pkg := &opcPackage{parts: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		pkg.parts[partKey(f.Name)] = f
	}
	return pkg, nil
}

func partKey(name string) string {
	name = strings.TrimPrefix(strings.ReplaceAll(name, `\`, "/"), "/")
	return strings.ToLower(path.Clean(name))
}

// read returns the inflated bytes of a part. Safe for concurrent use.
func (p *opcPackage) read(name string) ([]byte, error) {
	f, ok := p.parts[partKey(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", errPartNotFound, name)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxPartSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	if len(data) > maxPartSize {
		return nil, fmt.Errorf("part %s exceeds %d bytes", name, maxPartSize)
	}
	return data, nil
}
