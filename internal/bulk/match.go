package bulk

import (
	"fmt"
	"path"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/goliatone/go-albums/internal/review"
	"github.com/goliatone/go-albums/pkg/interfaces"
)

type filePair struct {
	item review.Item
	file interfaces.UploadFile
}

// matchFiles pairs files with selected images by case-insensitive base name.
// Files without an image and images without a file become failures. Images
// that share a name with another selected image cannot be told apart, so each
// of them fails and files with that name are not sent.
func matchFiles(selection []review.Item, files []interfaces.UploadFile, result *Result) []filePair {
	byName := make(map[string][]review.Item, len(selection))
	names := make([]string, 0, len(selection))
	for _, item := range selection {
		key := fileKey(item.FileName)
		byName[key] = append(byName[key], item)
		names = append(names, item.FileName)
	}

	matched := make(map[string]bool, len(files))
	pairs := make([]filePair, 0, len(files))
	for _, file := range files {
		if file == nil {
			continue
		}
		key := fileKey(file.Name())
		items := byName[key]
		switch {
		case len(items) == 0:
			result.fail(file.Name(), unmatchedReason(file.Name(), names))
		case len(items) > 1:
			matched[key] = true
		case matched[key]:
			result.fail(file.Name(), "more than one file matches "+items[0].FileName)
		default:
			matched[key] = true
			pairs = append(pairs, filePair{item: items[0], file: file})
		}
	}

	for _, item := range selection {
		key := fileKey(item.FileName)
		switch {
		case len(byName[key]) > 1:
			result.fail(item.FileName, fmt.Sprintf("%d selected images share this file name", len(byName[key])))
		case !matched[key]:
			result.fail(item.FileName, "no replacement file provided")
		}
	}
	return pairs
}

func fileKey(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	return strings.ToLower(path.Base(name))
}

func unmatchedReason(fileName string, candidates []string) string {
	reason := "no selected image has this file name"
	if hint := closestName(fileName, candidates); hint != "" {
		reason += fmt.Sprintf("; did you mean %s?", hint)
	}
	return reason
}

// closestName suggests the candidate within a third of the name's length in
// edit distance, or nothing.
func closestName(fileName string, candidates []string) string {
	key := fileKey(fileName)
	best, bestDistance := "", -1
	for _, candidate := range candidates {
		distance := levenshtein.ComputeDistance(key, fileKey(candidate))
		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = candidate, distance
		}
	}
	limit := len(key) / 3
	if limit < 2 {
		limit = 2
	}
	if bestDistance < 0 || bestDistance > limit {
		return ""
	}
	return best
}
