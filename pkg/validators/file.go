package validators

import (
	"errors"
	"mime/multipart"
)

var (
	ErrNoFile       = errors.New("no file provided")
	ErrFileEmpty    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file too large")
)

// FileValidator runs the cheap header checks on an uploaded file. Content
// checks happen once the file is read.
func FileValidator(fh *multipart.FileHeader, maxFileSize int64) error {
	if fh == nil {
		return ErrNoFile
	}

	if fh.Size <= 0 {
		return ErrFileEmpty
	}

	if maxFileSize > 0 && fh.Size > maxFileSize {
		return ErrFileTooLarge
	}

	return nil
}
