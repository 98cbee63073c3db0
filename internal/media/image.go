package media

import "path/filepath"

// ImagePath returns the cache path of the story image for word.
func ImagePath(dir, word string) string {
	return filepath.Join(dir, word+"_story.png")
}

// CachedImage returns the story image path for word if it already exists.
func CachedImage(dir, word string) (string, bool) {
	path := ImagePath(dir, word)
	return path, exists(path)
}

// SaveImage stores image bytes as the story image for word.
func SaveImage(dir, word string, data []byte) (string, error) {
	path := ImagePath(dir, word)
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}
