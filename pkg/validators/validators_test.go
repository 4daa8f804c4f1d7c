package validators

import (
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{`..\..\windows\system32\cmd.exe`, "cmd.exe"},
		{"/abs/path/file.txt", "file.txt"},
		{"my cool   file.txt", "my_cool_file.txt"},
		{"résumé.docx", "resume.docx"},
		{".hidden", "hidden"},
		{"a:b*c?.txt", "abc.txt"},
		{"CON.txt", "_CON.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := SanitizeFilename(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.NotContains(t, got, "/")
			assert.NotContains(t, got, `\`)
		})
	}
}

func TestSanitizeFilenameRejects(t *testing.T) {
	for _, in := range []string{"", "..", "../", "/", "日本語", "   "} {
		_, err := SanitizeFilename(in)
		assert.ErrorIs(t, err, ErrFileNameEmpty, "input %q", in)
	}

	_, err := SanitizeFilename(strings.Repeat("a", maxFileNameSize+1))
	assert.ErrorIs(t, err, ErrFileNameTooLong)
}

func TestEmailValidator(t *testing.T) {
	assert.NoError(t, EmailValidator("a@x.com"))
	assert.ErrorIs(t, EmailValidator(""), ErrEmailEmpty)
	assert.ErrorIs(t, EmailValidator("not-an-email"), ErrEmailInvalid)
	assert.ErrorIs(t, EmailValidator("Alice <a@x.com>"), ErrEmailInvalid)
}

func TestFileValidator(t *testing.T) {
	assert.ErrorIs(t, FileValidator(nil, 10), ErrNoFile)
	assert.ErrorIs(t, FileValidator(&multipart.FileHeader{Size: 0}, 10), ErrFileEmpty)
	assert.ErrorIs(t, FileValidator(&multipart.FileHeader{Size: 11}, 10), ErrFileTooLarge)
	assert.NoError(t, FileValidator(&multipart.FileHeader{Size: 10}, 10))
	assert.NoError(t, FileValidator(&multipart.FileHeader{Size: 1 << 30}, 0))
}
