package client

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	filesvc "github.com/trezcool/chikoro/services/files"
)

type UploadsAPI struct{ c *Client }

// Upload stores content under a generated name keeping the extension of filename.
func (api UploadsAPI) Upload(ctx context.Context, filename string, content io.Reader) (filesvc.Stored, error) {
	var stored filesvc.Stored
	err := api.c.upload(ctx, "/uploads", nil, filename, content, &stored)
	return stored, err
}

// Download fetches a stored file by its saved name or by the path returned by Upload.
func (api UploadsAPI) Download(ctx context.Context, name string) ([]byte, error) {
	name = strings.TrimPrefix(name, "/api/uploads/")
	return api.c.do(ctx, http.MethodGet, "/uploads/"+url.PathEscape(name), nil, "", nil)
}
