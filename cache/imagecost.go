package cache

import "image"

// bytesPerPixel assumes 32-bit RGBA, the common decoded representation.
const bytesPerPixel = 4

// ImageCost estimates the in-memory byte cost of a decoded image from its
// pixel dimensions. Use it as the SizeFunc for an
// ImageMemoryCache[image.Image]:
//
//	c := cache.NewImage[image.Image](cache.WithSizer[image.Image](cache.ImageCost))
func ImageCost(img image.Image) uint64 {
	if img == nil {
		return 0
	}
	b := img.Bounds()
	return uint64(b.Dx()) * uint64(b.Dy()) * bytesPerPixel
}
