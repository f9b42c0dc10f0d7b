package compose

// Index page text layout. This is deliberately a separate, trivial
// routine: the index page lists documents and start pages, it does not go
// through the grid.

const (
	indexTitle     = "Contents"
	indexTitleSize = 24.0
	indexEntrySize = 12.0
	indexLeading   = 1.8 // line height as a multiple of the entry size
	indexMinInset  = 36.0
)

// ComposeIndex lays out the index page for a plan. The page shares the
// run's fixed dimensions; entries are simple left-aligned lines with the
// start page number right-aligned on the same baseline.
func ComposeIndex(width, height float64, margin, topMargin float64, entries []IndexLine) DrawablePage {
	inset := margin
	if inset < indexMinInset {
		inset = indexMinInset
	}
	top := topMargin
	if top < indexMinInset {
		top = indexMinInset
	}

	page := DrawablePage{Width: width, Height: height}

	y := top + indexTitleSize
	page.Texts = append(page.Texts, TextOp{
		Text: indexTitle,
		X:    inset,
		Y:    y,
		Size: indexTitleSize,
		Bold: true,
	})
	y += indexTitleSize

	for _, entry := range entries {
		y += indexEntrySize * indexLeading
		if y > height-inset {
			// More documents than fit on the index page; the remainder is
			// dropped rather than overflowing onto content pages.
			break
		}
		page.Texts = append(page.Texts,
			TextOp{Text: entry.Name, X: inset, Y: y, Size: indexEntrySize},
			TextOp{Text: entry.PageLabel, X: width - inset, Y: y, Size: indexEntrySize, Bold: true, RightAlign: true},
		)
	}

	return page
}

// IndexLine is one index page row: a document name and its start page,
// already formatted for display.
type IndexLine struct {
	Name      string
	PageLabel string
}
