package editor

import "github.com/dunamismax/pixelpro/internal/domain"

// View is the JSON shape of a session that hosts hand to their UI.
type View struct {
	Mode        Mode                        `json:"mode"`
	Image       *ImageView                  `json:"image,omitempty"`
	Dimensions  domain.OutputDimensions     `json:"dimensions"`
	AspectLock  bool                        `json:"aspect_lock"`
	Adjustments domain.AdjustmentParameters `json:"adjustments"`
	Filter      string                      `json:"filter"`
	Export      ExportView                  `json:"export"`
	Highlight   bool                        `json:"highlight"`
}

type ImageView struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Bytes  int64  `json:"bytes"`
}

type ExportView struct {
	Format    domain.Format `json:"format"`
	Quality   int           `json:"quality"`
	Lossy     bool          `json:"lossy"`
	Extension string        `json:"extension"`
}

func NewView(s State) View {
	view := View{
		Mode:        s.Mode,
		Dimensions:  s.Dimensions,
		AspectLock:  s.AspectLock,
		Adjustments: s.Adjustments,
		Filter:      s.Filter().CSS(),
		Export: ExportView{
			Format:    s.Export.Format,
			Quality:   s.Export.Quality,
			Lossy:     s.Export.Format.Lossy(),
			Extension: s.Export.Format.Extension(),
		},
		Highlight: s.Highlight,
	}
	if s.Source != nil {
		view.Image = &ImageView{
			Name:   s.Source.Name,
			Format: s.Source.Format,
			Width:  s.Source.Width,
			Height: s.Source.Height,
			Bytes:  s.Source.Bytes,
		}
	}
	return view
}
