// Package netx builds request bodies that the API client sends alongside
// plain JSON, namely multipart forms carrying an optional image.
package netx

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"sort"
)

// File is a single file part of a multipart form.
type File struct {
	Field    string
	Filename string
	Data     []byte
}

// Multipart encodes fields and files as multipart/form-data. Fields are
// written in key order so the body is stable for a given input. Empty field
// values are skipped.
//
// It returns the encoded body and the Content-Type header (with boundary).
func Multipart(fields map[string]string, files ...File) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if fields[k] == "" {
			continue
		}
		if err := w.WriteField(k, fields[k]); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", k, err)
		}
	}

	for _, f := range files {
		if len(f.Data) == 0 {
			continue
		}
		part, err := w.CreateFormFile(f.Field, f.Filename)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %s: %w", f.Field, err)
		}
		if _, err := part.Write(f.Data); err != nil {
			return nil, "", fmt.Errorf("write file part %s: %w", f.Field, err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return body, w.FormDataContentType(), nil
}
