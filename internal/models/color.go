package models

import "hash/fnv"

// labelPalette is the fixed set of badge colors used for module and feature
// labels. A label hashes to the same palette entry for the life of the
// process, so badges stay visually stable across refreshes.
var labelPalette = []string{
	"#3B82F6", // blue
	"#10B981", // green
	"#F59E0B", // yellow
	"#EF4444", // red
	"#8B5CF6", // purple
	"#06B6D4", // cyan
	"#84CC16", // lime
	"#F97316", // orange
	"#EC4899", // pink
	"#6366F1", // indigo
}

// labelColorNone is used for empty/unassigned labels.
const labelColorNone = "#6B7280" // gray

// LabelColor maps a free-text label to a stable palette color.
func LabelColor(label string) string {
	if label == "" {
		return labelColorNone
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(label))
	return labelPalette[h.Sum32()%uint32(len(labelPalette))]
}
