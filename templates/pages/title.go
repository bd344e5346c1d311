// Package pages assembles full HTML pages from components.
package pages

func bubbleTitle(author string) string {
	if author == "" {
		return "Bubble"
	}
	return "Bubble from " + author
}
