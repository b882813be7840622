package renderer

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"strings"

	"skillpath_backend/internal/config"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// CanvasRenderer 不依赖浏览器，提取 HTML 中的文本按证书版式绘制
type CanvasRenderer struct {
	cfg     config.RendererConfig
	regular *truetype.Font
	bold    *truetype.Font
}

func NewCanvasRenderer(cfg config.RendererConfig) *CanvasRenderer {
	// 内置字体，解析失败只可能是依赖损坏
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(err)
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		panic(err)
	}
	return &CanvasRenderer{cfg: cfg, regular: regular, bold: bold}
}

func (r *CanvasRenderer) Engine() string {
	return EngineCanvas
}

func (r *CanvasRenderer) Close() error {
	return nil
}

// TextLine HTML 中的一行文本及其所在的块级标签
type TextLine struct {
	Text string
	Tag  string
}

var blockTags = map[atom.Atom]bool{
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true,
	atom.P: true, atom.Div: true, atom.Li: true, atom.Section: true,
	atom.Header: true, atom.Footer: true, atom.Td: true, atom.Tr: true,
}

// ExtractLines 按文档顺序提取块级元素中的文本
func ExtractLines(content string) ([]TextLine, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return nil, err
	}

	var lines []TextLine
	var buf strings.Builder
	curTag := ""

	flush := func() {
		text := strings.Join(strings.Fields(buf.String()), " ")
		if text != "" {
			lines = append(lines, TextLine{Text: text, Tag: curTag})
		}
		buf.Reset()
	}

	var walk func(n *html.Node, tag string)
	walk = func(n *html.Node, tag string) {
		switch n.Type {
		case html.TextNode:
			if strings.TrimSpace(n.Data) == "" {
				return
			}
			if buf.Len() == 0 {
				curTag = tag
			}
			buf.WriteString(n.Data)
			buf.WriteByte(' ')
			return
		case html.ElementNode:
			switch n.DataAtom {
			case atom.Head, atom.Script, atom.Style, atom.Title:
				return
			case atom.Br:
				flush()
				return
			}
			if blockTags[n.DataAtom] {
				flush()
				tag = n.Data
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c, tag)
		}
		if n.Type == html.ElementNode && blockTags[n.DataAtom] {
			flush()
		}
	}
	walk(doc, "")
	flush()

	return lines, nil
}

func (r *CanvasRenderer) face(tag string) (font.Face, float64) {
	switch tag {
	case "h1":
		return truetype.NewFace(r.bold, &truetype.Options{Size: 44}), 44
	case "h2":
		return truetype.NewFace(r.bold, &truetype.Options{Size: 30}), 30
	case "h3", "h4":
		return truetype.NewFace(r.bold, &truetype.Options{Size: 22}), 22
	default:
		return truetype.NewFace(r.regular, &truetype.Options{Size: 18}), 18
	}
}

func (r *CanvasRenderer) Render(ctx context.Context, content string) ([]byte, error) {
	lines, err := ExtractLines(content)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("html has no text to render")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w, h := float64(r.cfg.ViewportWidth), float64(r.cfg.ViewportHeight)
	dc := gg.NewContext(r.cfg.ViewportWidth, r.cfg.ViewportHeight)

	dc.SetColor(color.White)
	dc.Clear()

	// 双层边框
	dc.SetColor(color.NRGBA{R: 0x66, G: 0x7e, B: 0xea, A: 0xff})
	dc.SetLineWidth(8)
	dc.DrawRectangle(20, 20, w-40, h-40)
	dc.Stroke()
	dc.SetColor(color.NRGBA{R: 0x76, G: 0x4b, B: 0xa2, A: 0xff})
	dc.SetLineWidth(2)
	dc.DrawRectangle(36, 36, w-72, h-72)
	dc.Stroke()

	margin := 80.0
	maxWidth := w - 2*margin
	y := 90.0
	for _, line := range lines {
		face, size := r.face(line.Tag)
		dc.SetFontFace(face)
		if line.Tag == "h1" {
			dc.SetColor(color.NRGBA{R: 0x2d, G: 0x37, B: 0x48, A: 0xff})
		} else {
			dc.SetColor(color.NRGBA{R: 0x4a, G: 0x55, B: 0x68, A: 0xff})
		}

		wrapped := dc.WordWrap(line.Text, maxWidth)
		for _, l := range wrapped {
			if y > h-60 {
				break
			}
			dc.DrawStringAnchored(l, w/2, y, 0.5, 0.5)
			y += size * 1.5
		}
		y += size * 0.4
	}

	var out bytes.Buffer
	if err := dc.EncodePNG(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
