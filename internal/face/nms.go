package face

import "sort"

// NMS performs Non-Maximum Suppression on detected faces.
// The input slice is reordered by descending score.
func NMS(faces []Face, iouThreshold float32) []Face {
	if len(faces) == 0 {
		return faces
	}

	// Sort by score (descending)
	sort.SliceStable(faces, func(i, j int) bool {
		return faces[i].Score > faces[j].Score
	})

	keep := make([]bool, len(faces))
	for i := range keep {
		keep[i] = true
	}

	for i := 0; i < len(faces); i++ {
		if !keep[i] {
			continue
		}
		for j := i + 1; j < len(faces); j++ {
			if !keep[j] {
				continue
			}
			if IoU(faces[i].BoundingBox, faces[j].BoundingBox) > iouThreshold {
				keep[j] = false
			}
		}
	}

	result := make([]Face, 0, len(faces))
	for i, f := range faces {
		if keep[i] {
			result = append(result, f)
		}
	}

	return result
}

// IoU calculates Intersection over Union of two bounding boxes
func IoU(a, b BoundingBox) float32 {
	x1 := max(a.X1, b.X1)
	y1 := max(a.Y1, b.Y1)
	x2 := min(a.X2, b.X2)
	y2 := min(a.Y2, b.Y2)

	if x1 >= x2 || y1 >= y2 {
		return 0
	}

	intersection := (x2 - x1) * (y2 - y1)
	union := a.Area() + b.Area() - intersection

	if union <= 0 {
		return 0
	}

	return intersection / union
}

// ClosestToCenter returns the face whose box center is nearest the image
// center, or nil when there are no faces.
func ClosestToCenter(faces []Face, width, height int) []Face {
	if len(faces) == 0 {
		return nil
	}

	cx, cy := float32(width)/2, float32(height)/2
	best := 0
	bestDist := float32(-1)
	for i, f := range faces {
		c := f.BoundingBox.Center()
		d := (c.X-cx)*(c.X-cx) + (c.Y-cy)*(c.Y-cy)
		if bestDist < 0 || d < bestDist {
			best, bestDist = i, d
		}
	}

	return []Face{faces[best]}
}
