package clients

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// MaxUploadImages bounds a multi-image upload.
const MaxUploadImages = 4

// File is one upload part.
type File struct {
	Name    string
	Content io.Reader
}

type UploadClient struct{ api *API }

func NewUploadClient(api *API) *UploadClient { return &UploadClient{api: api} }

func (uc *UploadClient) UploadImage(ctx context.Context, f File) (UploadResult, error) {
	body, contentType, err := multipartBody("image", f)
	if err != nil {
		return UploadResult{}, err
	}
	return fetch[UploadResult](ctx, uc.api, request{
		method: http.MethodPost, path: "/upload/image", raw: body, contentType: contentType, auth: true,
	})
}

// UploadImages sends up to MaxUploadImages files in one request. More files
// fail with ErrTooManyImages before anything is sent.
func (uc *UploadClient) UploadImages(ctx context.Context, files []File) (UploadResult, error) {
	if len(files) > MaxUploadImages {
		return UploadResult{}, ErrTooManyImages
	}
	body, contentType, err := multipartBody("images", files...)
	if err != nil {
		return UploadResult{}, err
	}
	return fetch[UploadResult](ctx, uc.api, request{
		method: http.MethodPost, path: "/upload/images", raw: body, contentType: contentType, auth: true,
	})
}

func (uc *UploadClient) DeleteImage(ctx context.Context, path string) error {
	body := struct {
		Path string `json:"path"`
	}{Path: path}
	_, err := call[UploadResult](ctx, uc.api, request{method: http.MethodDelete, path: "/upload/image", body: body, auth: true})
	return err
}

func multipartBody(field string, files ...File) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, f := range files {
		part, err := w.CreateFormFile(field, f.Name)
		if err != nil {
			return nil, "", fmt.Errorf("create form file %s: %w", f.Name, err)
		}
		if _, err := io.Copy(part, f.Content); err != nil {
			return nil, "", fmt.Errorf("read %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}
