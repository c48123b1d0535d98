package ocr

import (
	"sort"
	"strings"
)

// WordBox represents a recognized word with its bounding box
type WordBox struct {
	X, Y, Width, Height int
	Text                string
	Conf                float64
}

// LineBox represents a line of text containing multiple words
type LineBox struct {
	Words               []WordBox
	X, Y, Width, Height int
}

// Text joins the line's word texts left to right
func (l LineBox) Text() string {
	texts := make([]string, 0, len(l.Words))
	for _, w := range l.Words {
		texts = append(texts, w.Text)
	}
	return strings.Join(texts, " ")
}

// Confidence returns the mean word confidence, 0 for an empty line
func (l LineBox) Confidence() float64 {
	if len(l.Words) == 0 {
		return 0
	}
	var sum float64
	for _, w := range l.Words {
		sum += w.Conf
	}
	return sum / float64(len(l.Words))
}

// LinesFromWords groups word boxes into text lines and converts them to
// Result lines with rectangular polygons. Used by backends that only
// report word-level boxes.
func LinesFromWords(words []WordBox) Result {
	lineBoxes := GroupWordsIntoLines(words)

	var lines []Line
	for _, lb := range lineBoxes {
		lines = append(lines, Line{
			Text: lb.Text(),
			Box: []Point{
				{X: lb.X, Y: lb.Y},
				{X: lb.X + lb.Width, Y: lb.Y},
				{X: lb.X + lb.Width, Y: lb.Y + lb.Height},
				{X: lb.X, Y: lb.Y + lb.Height},
			},
			Score: lb.Confidence(),
		})
	}

	return Result{Lines: lines}
}

// GroupWordsIntoLines clusters word boxes into reading-order lines based
// on their vertical overlap
func GroupWordsIntoLines(words []WordBox) []LineBox {
	if len(words) == 0 {
		return nil
	}

	sorted := make([]WordBox, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		if abs(sorted[i].Y-sorted[j].Y) < max(sorted[i].Height, 1)/2 {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})

	var lines []LineBox
	var currentLineWords []WordBox

	for _, word := range sorted {
		if len(currentLineWords) == 0 {
			currentLineWords = append(currentLineWords, word)
			continue
		}

		if wordsOnSameLine(currentLineWords, word) {
			currentLineWords = append(currentLineWords, word)
		} else {
			lines = append(lines, createLineFromWords(currentLineWords))
			currentLineWords = []WordBox{word}
		}
	}

	if len(currentLineWords) > 0 {
		lines = append(lines, createLineFromWords(currentLineWords))
	}

	return lines
}

func wordsOnSameLine(currentLineWords []WordBox, newWord WordBox) bool {
	if len(currentLineWords) == 0 {
		return true
	}

	avgHeight := 0
	minY, maxY := currentLineWords[0].Y, currentLineWords[0].Y+currentLineWords[0].Height
	for _, word := range currentLineWords {
		avgHeight += word.Height
		if word.Y < minY {
			minY = word.Y
		}
		if word.Y+word.Height > maxY {
			maxY = word.Y + word.Height
		}
	}
	avgHeight /= len(currentLineWords)

	tolerance := avgHeight / 3
	currentLineBottom := maxY + tolerance
	currentLineTop := minY - tolerance

	return newWord.Y+newWord.Height >= currentLineTop && newWord.Y <= currentLineBottom
}

func createLineFromWords(words []WordBox) LineBox {
	if len(words) == 0 {
		return LineBox{}
	}

	sorted := make([]WordBox, len(words))
	copy(sorted, words)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].X < sorted[j].X
	})

	minX, minY := sorted[0].X, sorted[0].Y
	maxX, maxY := sorted[0].X+sorted[0].Width, sorted[0].Y+sorted[0].Height

	for _, word := range sorted[1:] {
		if word.X < minX {
			minX = word.X
		}
		if word.Y < minY {
			minY = word.Y
		}
		if word.X+word.Width > maxX {
			maxX = word.X + word.Width
		}
		if word.Y+word.Height > maxY {
			maxY = word.Y + word.Height
		}
	}

	return LineBox{
		Words:  sorted,
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
