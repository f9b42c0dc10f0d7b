package layout_test

import (
	"fmt"

	"github.com/mkersting/slidegrid/pkg/layout"
)

func ExampleBuild() {
	// Two decks with 1280x720 slides, two per row.
	docs := []layout.Document{
		{Name: "intro", Pages: []layout.Size{{Width: 960, Height: 540}, {Width: 960, Height: 540}}},
		{Name: "deep-dive", Pages: []layout.Size{{Width: 960, Height: 540}}},
	}

	plan, err := layout.Build(docs, layout.GridConfig{SlidesPerRow: 2, Gap: 10, Margin: 20})
	if err != nil {
		panic(err)
	}

	fmt.Println("Pages:", len(plan.Pages))
	fmt.Println("Cells on page 1:", len(plan.Pages[0].Cells))
	fmt.Printf("Cell size: %gx%g\n", plan.CellWidth, plan.CellHeight)
	// Output:
	// Pages: 1
	// Cells on page 1: 3
	// Cell size: 960x540
}

func ExampleBuild_index() {
	docs := []layout.Document{
		{Name: "alpha", Pages: []layout.Size{{Width: 960, Height: 540}}},
		{Name: "beta", Pages: []layout.Size{{Width: 960, Height: 540}}},
	}

	cfg := layout.GridConfig{SlidesPerRow: 1, RowsPerPage: 1, NewPagePerDocument: true}
	plan, err := layout.Build(docs, cfg, layout.WithIndex())
	if err != nil {
		panic(err)
	}

	for _, entry := range plan.Index {
		fmt.Printf("%s starts on page %d\n", entry.Name, entry.StartPage)
	}
	// Output:
	// alpha starts on page 2
	// beta starts on page 3
}
