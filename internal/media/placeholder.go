package media

import (
	"fmt"
	"hash/fnv"
	"html"
)

// PlaceholderSVG renders a deterministic header image for articles when no
// generator is configured. The same title always yields the same image.
func PlaceholderSVG(title string) []byte {
	hasher := fnv.New32a()
	hasher.Write([]byte(title))
	hue := hasher.Sum32() % 360

	svg := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" width="1200" height="630" viewBox="0 0 1200 630">
<defs>
<linearGradient id="bg" x1="0" y1="0" x2="1" y2="1">
<stop offset="0%%" stop-color="hsl(%d, 65%%, 35%%)"/>
<stop offset="100%%" stop-color="hsl(%d, 70%%, 20%%)"/>
</linearGradient>
</defs>
<rect width="1200" height="630" fill="url(#bg)"/>
<text x="60" y="340" font-family="Georgia, serif" font-size="56" fill="#ffffff">%s</text>
</svg>
`, hue, (hue+40)%360, html.EscapeString(clipTitle(title, 40)))
	return []byte(svg)
}

func clipTitle(title string, limit int) string {
	count := 0
	for i := range title {
		if count == limit {
			return title[:i] + "…"
		}
		count++
	}
	return title
}
