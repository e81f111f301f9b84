package comfy

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"

	apperrors "github.com/target/promptwait/internal/errors"
)

// UploadOptions controls where an uploaded input image lands.
type UploadOptions struct {
	Subfolder string
	Overwrite bool
}

// UploadImage sends an input image to the service's input directory so a job
// can reference it by name. Failures are reported as SubmissionError since the
// job cannot be submitted without its input.
func (c *Client) UploadImage(ctx context.Context, name string, r io.Reader, opts UploadOptions) (UploadedImage, error) {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "" || name == "." || name == "/" {
		return UploadedImage{}, apperrors.Validation("upload image: file name is required")
	}

	body, contentType, err := encodeUpload(name, r, opts)
	if err != nil {
		return UploadedImage{}, apperrors.Submission(err, "encode upload %s", name)
	}

	resp, err := c.do(ctx, http.MethodPost, "/upload/image", contentType, body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return UploadedImage{}, ctxErr
		}
		return UploadedImage{}, apperrors.Submission(err, "upload %s", name)
	}
	defer closeBody(resp)

	if !isSuccess(resp.StatusCode) {
		return UploadedImage{}, apperrors.Submission(nil, "upload %s: %s", name, readErrorBody(resp))
	}

	var up UploadedImage
	if err := json.NewDecoder(resp.Body).Decode(&up); err != nil {
		return UploadedImage{}, apperrors.Submission(err, "decode upload response")
	}
	if up.Name == "" {
		return UploadedImage{}, apperrors.Submission(nil, "upload response carries no name")
	}

	c.logger.DebugContext(ctx, "image uploaded", "name", up.Name, "subfolder", up.Subfolder)
	return up, nil
}

func encodeUpload(name string, r io.Reader, opts UploadOptions) (*bytes.Buffer, string, error) {
	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="image"; filename=%q`, name))
	h.Set("Content-Type", imageContentType(name))
	part, err := mw.CreatePart(h)
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, "", fmt.Errorf("read image: %w", err)
	}

	if opts.Overwrite {
		if err := mw.WriteField("overwrite", "true"); err != nil {
			return nil, "", err
		}
	}
	if sub := strings.Trim(opts.Subfolder, "/"); sub != "" {
		if err := mw.WriteField("subfolder", sub); err != nil {
			return nil, "", err
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return buf, mw.FormDataContentType(), nil
}

func imageContentType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
