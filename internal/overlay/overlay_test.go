package overlay_test

import (
	"fmt"
	"image"
	"image/color"
	"testing"

	"github.com/okian/facecam/internal/domain/model"
	"github.com/okian/facecam/internal/overlay"
	"github.com/okian/facecam/internal/render"
	. "github.com/smartystreets/goconvey/convey"
)

// recorder is a Canvas that logs every call.
type recorder struct {
	size  image.Point
	calls []string
	rects []image.Rectangle
	fills []color.Color
	texts []string
	pts   []image.Point
	inks  []color.Color
}

func (r *recorder) Size() image.Point { return r.size }
func (r *recorder) DrawMirroredFrame(image.Image) {
	r.calls = append(r.calls, "frame")
}
func (r *recorder) StrokeRect(rect image.Rectangle, width int, _ color.Color) {
	r.calls = append(r.calls, fmt.Sprintf("stroke%d", width))
	r.rects = append(r.rects, rect)
}
func (r *recorder) FillRect(rect image.Rectangle, c color.Color) {
	r.calls = append(r.calls, "fill")
	r.rects = append(r.rects, rect)
	r.fills = append(r.fills, c)
}
func (r *recorder) MeasureText(text string) int { return 7 * len(text) }
func (r *recorder) DrawText(pt image.Point, text string, c color.Color) {
	r.calls = append(r.calls, "text")
	r.texts = append(r.texts, text)
	r.pts = append(r.pts, pt)
	r.inks = append(r.inks, c)
}

func conf(v float64) *float64 { return &v }

func TestDisplayBox(t *testing.T) {
	Convey("Given boxes in unmirrored source coordinates", t, func() {
		cases := []struct {
			box   model.Box
			width int
			mode  overlay.MirrorMode
			want  image.Rectangle
		}{
			{model.Box{Top: 10, Right: 110, Bottom: 60, Left: 20}, 300, overlay.MirrorReflect, image.Rect(190, 10, 280, 60)},
			{model.Box{Top: 0, Right: 300, Bottom: 10, Left: 0}, 300, overlay.MirrorReflect, image.Rect(0, 0, 300, 10)},
			{model.Box{Top: 5, Right: 50, Bottom: 25, Left: 40}, 100, overlay.MirrorReflect, image.Rect(50, 5, 60, 25)},
			{model.Box{Top: 10, Right: 110, Bottom: 60, Left: 20}, 300, overlay.MirrorPassThrough, image.Rect(20, 10, 110, 60)},
		}
		for _, tc := range cases {
			So(overlay.DisplayBox(tc.box, tc.width, tc.mode), ShouldResemble, tc.want)
		}
	})
}

func TestRender(t *testing.T) {
	Convey("Given a renderer with the default style", t, func() {
		r := overlay.New(overlay.DefaultStyle())
		c := &recorder{size: image.Pt(300, 200)}

		Convey("When the result is empty", func() {
			sum := r.Render(c, nil, model.Result{Faces: []model.Detection{}})

			Convey("Then only the frame is redrawn and the summary says so", func() {
				So(c.calls, ShouldResemble, []string{"frame"})
				So(sum.Text, ShouldEqual, "No faces detected")
				So(sum.Count, ShouldEqual, 0)
			})
		})

		Convey("When two faces are detected", func() {
			res := model.Result{Faces: []model.Detection{
				{Name: "Ana", Confidence: conf(0.876), Box: model.Box{Top: 40, Right: 110, Bottom: 90, Left: 20}},
				{Name: "Unknown", Box: model.Box{Top: 50, Right: 250, Bottom: 120, Left: 200}},
			}}
			sum := r.Render(c, nil, res)

			Convey("Then the frame is drawn once before all boxes", func() {
				So(c.calls, ShouldResemble, []string{
					"frame",
					"stroke3", "fill", "fill", "text",
					"stroke3", "fill", "fill", "text",
				})
			})

			Convey("Then boxes and labels are placed in mirrored space", func() {
				So(c.rects[0], ShouldResemble, image.Rect(190, 40, 280, 90))
				So(c.rects[1], ShouldResemble, image.Rect(190, 40, 280, 90))
				// "Ana (88%)" is 9 glyphs of 7px.
				So(c.rects[2], ShouldResemble, image.Rect(190, 12, 190+63+16, 36))
				So(c.pts[0], ShouldResemble, image.Pt(198, 30))
				So(c.texts, ShouldResemble, []string{"Ana (88%)", "Unknown"})
			})

			Convey("Then colors follow recognition and contrast", func() {
				style := overlay.DefaultStyle()
				So(c.fills[1], ShouldResemble, style.Colors.Success)
				So(c.fills[0], ShouldResemble, color.NRGBA{R: 0x28, G: 0xa7, B: 0x45, A: 26})
				So(c.fills[3], ShouldResemble, style.Colors.Warning)
				So(c.inks[0], ShouldResemble, color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff})
				So(c.inks[1], ShouldResemble, color.RGBA{R: 0x21, G: 0x25, B: 0x29, A: 0xff})
			})

			Convey("Then the summary joins names in order", func() {
				So(sum.Text, ShouldEqual, "Ana, Unknown")
				So(sum.Count, ShouldEqual, 2)
				So(sum.Names, ShouldResemble, []string{"Ana", "Unknown"})
			})
		})
	})
}

func TestLabels(t *testing.T) {
	Convey("Given label formats", t, func() {
		withConf := overlay.New(overlay.DefaultStyle())
		style := overlay.DefaultStyle()
		style.Label = overlay.LabelNameOnly
		nameOnly := overlay.New(style)

		So(withConf.Label(model.Detection{Name: "Ana", Confidence: conf(0.5)}), ShouldEqual, "Ana (50%)")
		So(withConf.Label(model.Detection{Name: "Ana", Confidence: conf(0.994)}), ShouldEqual, "Ana (99%)")
		So(withConf.Label(model.Detection{Name: "Ana", Confidence: conf(0)}), ShouldEqual, "Ana")
		So(withConf.Label(model.Detection{Name: "Ana"}), ShouldEqual, "Ana")
		So(nameOnly.Label(model.Detection{Name: "Ana", Confidence: conf(0.5)}), ShouldEqual, "Ana")
	})

	Convey("Given localized unknown sentinels", t, func() {
		style := overlay.DefaultStyle()
		style.UnknownNames = append(style.UnknownNames, "Desconhecido")

		So(style.IsUnknown("Desconhecido"), ShouldBeTrue)
		So(style.IsUnknown("Unknown"), ShouldBeTrue)
		So(style.IsUnknown(""), ShouldBeTrue)
		So(style.IsUnknown("Ana"), ShouldBeFalse)
	})
}

func TestParseHexColor(t *testing.T) {
	Convey("Given hex colors", t, func() {
		c, err := overlay.ParseHexColor("#ffc107")
		So(err, ShouldBeNil)
		So(c, ShouldResemble, color.RGBA{R: 0xff, G: 0xc1, B: 0x07, A: 0xff})

		c, err = overlay.ParseHexColor("0f0")
		So(err, ShouldBeNil)
		So(c, ShouldResemble, color.RGBA{G: 0xff, A: 0xff})

		_, err = overlay.ParseHexColor("#12345")
		So(err, ShouldNotBeNil)
		_, err = overlay.ParseHexColor("#zzzzzz")
		So(err, ShouldNotBeNil)
	})
}

func TestRenderOnSurface(t *testing.T) {
	Convey("Given a real surface", t, func() {
		s := render.New(image.Pt(300, 200))
		frame := image.NewRGBA(image.Rect(0, 0, 300, 200))
		r := overlay.New(overlay.DefaultStyle())

		Convey("When a known face is rendered", func() {
			r.Render(s, frame, model.Result{Faces: []model.Detection{
				{Name: "Ana", Box: model.Box{Top: 40, Right: 110, Bottom: 90, Left: 20}},
			}})
			out := s.Snapshot()

			Convey("Then the outline sits at the reflected position", func() {
				So(out.RGBAAt(189, 60), ShouldResemble, overlay.DefaultStyle().Colors.Success)
				So(out.RGBAAt(280, 60), ShouldResemble, overlay.DefaultStyle().Colors.Success)
				So(out.RGBAAt(20, 60).G, ShouldEqual, 0)
			})
		})
	})
}
