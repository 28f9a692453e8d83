package images

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/ukaji3/xl2doc-go/pkg/xl2doc/models"
)

// ResolveAll crops every image carrying a crop rectangle, decoding at most
// Workers images at a time. The order of imgs is preserved. Only context
// cancellation is reported as an error.
func (c *Cropper) ResolveAll(ctx context.Context, imgs []models.ImageAnchor) ([]models.ImageAnchor, error) {
	out := make([]models.ImageAnchor, len(imgs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.params.Workers)

	for i, img := range imgs {
		if !img.HasCropping() {
			out[i] = img
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[i] = c.Resolve(img)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
