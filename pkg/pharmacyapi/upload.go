package pharmacyapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	pkgerrors "github.com/angelmondragon/pharmacy-backoffice/pkg/errors"
)

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// UploadImage sends an image as multipart field "file" and returns where the
// API stored it. The content is sniffed before anything is sent.
func (c *Client) UploadImage(ctx context.Context, name string, content io.Reader) (*UploadedFile, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "pharmacy api client not configured")
	}
	if content == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload content is required")
	}

	reader := content
	if c.maxUploadBytes > 0 {
		reader = io.LimitReader(content, c.maxUploadBytes+1)
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read upload content")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload content is empty")
	}
	if c.maxUploadBytes > 0 && int64(len(data)) > c.maxUploadBytes {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("upload exceeds %d bytes", c.maxUploadBytes))
	}

	detected := mimetype.Detect(data)
	if !isAllowedImage(detected) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unsupported image type %s", detected.String())).
			WithDetails(map[string]string{"file": detected.String()})
	}

	body, contentType, err := multipartImage(uploadName(name, detected), detected.String(), data)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build multipart body")
	}

	req := request{method: http.MethodPost, path: "/upload", body: body, headers: http.Header{}}
	req.headers.Set("Content-Type", contentType)

	var out UploadedFile
	if err := c.call(ctx, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func isAllowedImage(detected *mimetype.MIME) bool {
	for _, allowed := range allowedImageTypes {
		if detected.Is(allowed) {
			return true
		}
	}
	return false
}

func uploadName(name string, detected *mimetype.MIME) string {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "." || base == string(filepath.Separator) || base == "" {
		base = "upload"
	}
	if filepath.Ext(base) == "" {
		base += detected.Extension()
	}
	return base
}

func multipartImage(filename, contentType string, data []byte) (io.Reader, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &buf, writer.FormDataContentType(), nil
}
