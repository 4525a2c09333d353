package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"anoa.com/recipehub/pkg/apperror"
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

const MaxImageSize = 5 << 20

var allowedImageTypes = []string{"image/jpeg", "image/png", "image/webp"}

// PrepareImage reads at most MaxImageSize bytes from r and checks the sniffed
// content type. The returned reader replays the full image.
func PrepareImage(r io.Reader) (io.Reader, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageSize+1))
	if err != nil {
		return nil, apperror.Wrap(apperror.ErrValidation, "failed to read image", err)
	}

	if len(data) == 0 {
		return nil, apperror.Validation("image is empty")
	}
	if len(data) > MaxImageSize {
		return nil, apperror.Validation(fmt.Sprintf("image must not exceed %d MB", MaxImageSize>>20))
	}

	mtype := mimetype.Detect(data)
	if !mimetype.EqualsAny(mtype.String(), allowedImageTypes...) {
		return nil, apperror.Validation("only jpeg, png and webp images are allowed, got " + mtype.String())
	}

	return bytes.NewReader(data), nil
}

// Upload validates the image and stores it in folder. A nil store rejects uploads.
func Upload(ctx context.Context, store ImageStorage, r io.Reader, folder, fileName string) (string, error) {
	if store == nil {
		return "", apperror.Validation("image uploads are not configured")
	}

	img, err := PrepareImage(r)
	if err != nil {
		return "", err
	}

	url, err := store.UploadImage(ctx, img, folder, fileName)
	if err != nil {
		return "", apperror.Internal(err)
	}
	return url, nil
}

// DeleteQuietly removes fileURL and logs failures instead of returning them.
func DeleteQuietly(ctx context.Context, store ImageStorage, fileURL *string) {
	if store == nil || fileURL == nil || *fileURL == "" {
		return
	}
	if err := store.DeleteImage(ctx, *fileURL); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("url", *fileURL).Msg("failed to delete image")
	}
}
