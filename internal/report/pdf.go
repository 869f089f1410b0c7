package report

import (
	"fmt"
	"time"

	"github.com/frasal/image_describer/internal/domain"
	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// Generator renders a PDF summary of reviewed submissions for offline
// distribution.
type Generator struct{}

func New() *Generator {
	return &Generator{}
}

func (g *Generator) Generate(entries []domain.GalleryEntry) ([]byte, error) {
	m := maroto.New()

	m.AddRow(10, text.NewCol(12, "Image review report", props.Text{
		Size:  14,
		Style: fontstyle.Bold,
	}))
	m.AddRow(6, text.NewCol(12, fmt.Sprintf("Generated at %s, %d image(s)",
		time.Now().Format(time.RFC3339), len(entries)), props.Text{
		Size: 8,
	}))

	for _, entry := range entries {
		m.AddRow(8, text.NewCol(12, entry.Name, props.Text{
			Size:  10,
			Style: fontstyle.Bold,
			Top:   2,
		}))
		m.AddRow(5,
			text.NewCol(3, "Status: "+reviewStatus(entry.Approved), props.Text{Size: 8}),
			text.NewCol(9, entry.Timestamp, props.Text{Size: 8}),
		)

		if entry.Description != "" {
			m.AddRow(14, text.NewCol(12, entry.Description, props.Text{Size: 8}))
		}
		if entry.Note != "" {
			m.AddRow(6, text.NewCol(12, "Note: "+entry.Note, props.Text{
				Size:  8,
				Style: fontstyle.Italic,
			}))
		}
	}

	document, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate report: %w", err)
	}

	return document.GetBytes(), nil
}

func reviewStatus(approved *bool) string {
	switch {
	case approved == nil:
		return "pending"
	case *approved:
		return "approved"
	default:
		return "rejected"
	}
}
