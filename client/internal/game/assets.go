package game

import (
	"fmt"
	"image"
	"net/http"

	_ "image/jpeg"
	_ "image/png"
)

// fetchGameImage downloads and decodes the obscured game image. The decoded
// image is handed back to the game loop, which wraps it for the GPU there.
func fetchGameImage(url string) (image.Image, error) {
	resp, err := http.Get(url)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch: HTTP %d", resp.StatusCode)
	}
	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("image decode: %w", err)
	}
	return img, nil
}
