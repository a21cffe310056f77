package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/chikoro/core"
	filesvc "github.com/trezcool/chikoro/services/files"
)

// multipartOverhead is the room left for the multipart envelope around the file.
const multipartOverhead = 64 << 10

type uploadApi struct {
	store    *filesvc.LocalStore
	maxBytes int64
}

func registerUploadAPI(g *echo.Group, jwt echo.MiddlewareFunc, store *filesvc.LocalStore, maxBytes int64) {
	api := uploadApi{store: store, maxBytes: maxBytes}

	ug := g.Group("/uploads")
	ug.POST("", api.upload, jwt)
	ug.GET("/:filename", api.download)
}

func (api *uploadApi) upload(ctx echo.Context) error {
	req := ctx.Request()
	limit := api.maxBytes + multipartOverhead
	if req.ContentLength > limit {
		return errFileTooLarge
	}
	req.Body = http.MaxBytesReader(ctx.Response(), req.Body, limit)

	fh, err := ctx.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return errFileTooLarge
		}
		return core.NewFieldError("file", "a file is required")
	}
	if fh.Size > api.maxBytes {
		return errFileTooLarge
	}

	f, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer f.Close()

	stored, err := api.store.Save(f, fh.Filename)
	if err != nil {
		return errors.Wrap(err, "saving upload")
	}
	return ctx.JSON(http.StatusOK, stored)
}

func (api *uploadApi) download(ctx echo.Context) error {
	fp, err := api.store.Path(ctx.Param("filename"))
	if err != nil {
		return err
	}
	return ctx.File(fp)
}
